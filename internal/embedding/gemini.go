package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"

	"github.com/spigell/hr-assistant/internal/logger"
)

const (
	defaultGeminiModel = "text-embedding-004"
	// Gemini accepts at most 100 contents per embedding request.
	maxBatchSize       = 100
	defaultConcurrency = 4
	probeText          = "embedding dimension probe"
)

type embedModels interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// Gemini embeds text through the Gemini API embedding endpoint.
type Gemini struct {
	models      embedModels
	model       string
	batchSize   int
	concurrency int
	dim         int
	logger      *zap.Logger
}

// NewGemini creates the client and runs a probe embedding so that a bad key or
// model name fails at startup instead of on the first query.
func NewGemini(ctx context.Context, cfg Config, log *zap.Logger) (*Gemini, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required for embeddings")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	g := newGemini(client.Models, cfg, log)
	if err := g.probe(ctx); err != nil {
		return nil, fmt.Errorf("probe embedding model %s: %w", g.model, err)
	}

	g.logger.Info("embedding model ready", zap.Int("dimension", g.dim))
	return g, nil
}

func newGemini(models embedModels, cfg Config, log *zap.Logger) *Gemini {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultGeminiModel
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 || batchSize > maxBatchSize {
		batchSize = maxBatchSize
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	return &Gemini{
		models:      models,
		model:       model,
		batchSize:   batchSize,
		concurrency: concurrency,
		logger:      logger.WithCommonFields(log, ProviderGemini, model),
	}
}

func (g *Gemini) probe(ctx context.Context) error {
	vecs, err := g.embedBatch(ctx, []string{probeText})
	if err != nil {
		return err
	}
	if len(vecs[0]) == 0 {
		return errors.New("model returned an empty vector")
	}
	g.dim = len(vecs[0])
	return nil
}

func (g *Gemini) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := g.embedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedMany splits texts into request-sized batches and embeds them
// concurrently. The result keeps the order of texts.
func (g *Gemini) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	if len(texts) == 0 {
		return out, nil
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.concurrency)

	for start := 0; start < len(texts); start += g.batchSize {
		end := min(start+g.batchSize, len(texts))
		eg.Go(func() error {
			vecs, err := g.embedBatch(egCtx, texts[start:end])
			if err != nil {
				return fmt.Errorf("batch %d-%d: %w", start, end, err)
			}
			copy(out[start:end], vecs)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	g.logger.Debug("embedded batch", zap.Int("texts", len(texts)))
	return out, nil
}

func (g *Gemini) Dimension() int { return g.dim }

func (g *Gemini) Model() string { return g.model }

func (g *Gemini) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	resp, err := g.models.EmbedContent(ctx, g.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}
	if resp == nil || len(resp.Embeddings) != len(texts) {
		got := 0
		if resp != nil {
			got = len(resp.Embeddings)
		}
		return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", got, len(texts))
	}

	vecs := make([][]float32, len(texts))
	for i, emb := range resp.Embeddings {
		if emb == nil {
			return nil, fmt.Errorf("missing embedding at position %d", i)
		}
		if g.dim > 0 && len(emb.Values) != g.dim {
			return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(emb.Values), g.dim)
		}
		vecs[i] = emb.Values
	}
	return vecs, nil
}
