// Package pipeline answers staffing queries: embed, rank, synthesize.
package pipeline

import (
	"context"
	"fmt"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/spigell/hr-assistant/internal/embedding"
	"github.com/spigell/hr-assistant/internal/logger"
	"github.com/spigell/hr-assistant/internal/observability"
	"github.com/spigell/hr-assistant/internal/ranking"
	"github.com/spigell/hr-assistant/internal/roster"
	"github.com/spigell/hr-assistant/internal/utils"
)

const queryPreviewLength = 80

// Synthesizer produces the narrative for ranked candidates and never fails.
type Synthesizer interface {
	Synthesize(ctx context.Context, query string, candidates []ranking.Candidate) string
}

// QueryResult is returned for every processed query.
type QueryResult struct {
	Response   string                  `json:"response"`
	Employees  []roster.EmployeeRecord `json:"relevant_employees"`
	Scores     []float64               `json:"scores"`
	Confidence float64                 `json:"confidence_score"`
}

// Pipeline holds the roster and its precomputed embedding matrix. Both are
// read-only after New, so Process is safe for concurrent use.
type Pipeline struct {
	store  *roster.Store
	matrix *ranking.Matrix
	engine embedding.Engine
	synth  Synthesizer
	opts   ranking.Options
	logger *zap.Logger
}

// New embeds every roster projection once. Any embedding failure is returned
// and must stop startup.
func New(ctx context.Context, store *roster.Store, engine embedding.Engine, synth Synthesizer, opts ranking.Options, logger *zap.Logger) (*Pipeline, error) {
	if engine == nil {
		return nil, fmt.Errorf("embedding engine is required")
	}
	if synth == nil {
		return nil, fmt.Errorf("synthesizer is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, span := observability.StartStageSpan(ctx, observability.StageIndex,
		attribute.Int("hr.roster_size", store.Len()),
		attribute.String("hr.embedding_model", engine.Model()),
	)
	defer span.End()

	var rows [][]float32
	if store.Len() > 0 {
		var err error
		rows, err = engine.EmbedMany(ctx, store.Projections())
		if err != nil {
			observability.RecordError(span, err)
			return nil, fmt.Errorf("embed roster: %w", err)
		}
		if len(rows) != store.Len() {
			err := fmt.Errorf("embed roster: got %d vectors for %d records", len(rows), store.Len())
			observability.RecordError(span, err)
			return nil, err
		}
	}

	matrix, err := ranking.NewMatrix(rows)
	if err != nil {
		observability.RecordError(span, err)
		return nil, fmt.Errorf("build roster matrix: %w", err)
	}

	logger.Info("roster indexed",
		zap.Int("employees", matrix.Len()),
		zap.Int("dimension", matrix.Dim()),
		zap.String("embedding_model", engine.Model()),
	)

	return &Pipeline{
		store:  store,
		matrix: matrix,
		engine: engine,
		synth:  synth,
		opts:   opts,
		logger: logger,
	}, nil
}

// Process answers a single query. Only embedding and ranking errors are
// returned; generation problems are absorbed by the synthesizer.
func (p *Pipeline) Process(ctx context.Context, query string) (*QueryResult, error) {
	ctx, span := observability.StartStageSpan(ctx, observability.StageProcess,
		attribute.Int("hr.query_length", utf8.RuneCountInString(query)),
	)
	defer span.End()

	candidates, err := p.retrieve(ctx, query)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	synthCtx, synthSpan := observability.StartStageSpan(ctx, observability.StageSynthesize,
		attribute.Int("hr.candidates", len(candidates)),
	)
	response := p.synth.Synthesize(synthCtx, query, candidates)
	synthSpan.End()

	result := &QueryResult{
		Response:  response,
		Employees: make([]roster.EmployeeRecord, 0, len(candidates)),
		Scores:    make([]float64, 0, len(candidates)),
	}
	for _, c := range candidates {
		result.Employees = append(result.Employees, c.Record)
		result.Scores = append(result.Scores, c.Score)
	}
	if len(candidates) > 0 {
		result.Confidence = candidates[0].Score
	}

	span.SetAttributes(attribute.Float64("hr.confidence", result.Confidence))
	p.logger.Debug("query processed",
		zap.String(logger.FieldQuery, utils.TruncateForLog(query, queryPreviewLength)),
		zap.Int("candidates", len(candidates)),
		zap.Float64("confidence", result.Confidence),
	)

	return result, nil
}

func (p *Pipeline) retrieve(ctx context.Context, query string) ([]ranking.Candidate, error) {
	if p.matrix.Len() == 0 {
		return []ranking.Candidate{}, nil
	}

	embedCtx, embedSpan := observability.StartStageSpan(ctx, observability.StageEmbed)
	vec, err := p.engine.Embed(embedCtx, query)
	if err != nil {
		observability.RecordError(embedSpan, err)
		embedSpan.End()
		return nil, fmt.Errorf("embed query: %w", err)
	}
	embedSpan.End()

	_, rankSpan := observability.StartStageSpan(ctx, observability.StageRank)
	defer rankSpan.End()

	candidates, err := ranking.Rank(vec, p.matrix, p.store.All(), p.opts)
	if err != nil {
		observability.RecordError(rankSpan, err)
		return nil, fmt.Errorf("rank roster: %w", err)
	}
	rankSpan.SetAttributes(attribute.Int("hr.candidates", len(candidates)))

	return candidates, nil
}

// Roster returns the store the pipeline was built from.
func (p *Pipeline) Roster() *roster.Store {
	return p.store
}

// Options returns the ranking options in effect.
func (p *Pipeline) Options() ranking.Options {
	return p.opts
}
