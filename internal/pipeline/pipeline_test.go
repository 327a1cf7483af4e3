package pipeline

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/hr-assistant/internal/ai"
	"github.com/spigell/hr-assistant/internal/embedding"
	"github.com/spigell/hr-assistant/internal/logger"
	"github.com/spigell/hr-assistant/internal/ranking"
	"github.com/spigell/hr-assistant/internal/roster"
	"github.com/spigell/hr-assistant/internal/synthesis"
)

type failingGenerator struct{}

func (failingGenerator) Generate(context.Context, string, string) ai.Result {
	return ai.Failure(ai.ReasonRequest, errors.New("network unreachable"))
}

func (failingGenerator) Model() string { return "failing" }

// stubEngine maps known texts to fixed vectors.
type stubEngine struct {
	vectors  map[string][]float32
	dim      int
	embedErr error
	manyErr  error
}

func (s *stubEngine) Embed(_ context.Context, text string) ([]float32, error) {
	if s.embedErr != nil {
		return nil, s.embedErr
	}
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return make([]float32, s.dim), nil
}

func (s *stubEngine) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	if s.manyErr != nil {
		return nil, s.manyErr
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i], _ = s.Embed(ctx, text)
	}
	return out, nil
}

func (s *stubEngine) Dimension() int { return s.dim }

func (s *stubEngine) Model() string { return "stub" }

func alice() roster.EmployeeRecord {
	return roster.EmployeeRecord{
		ID:              1,
		Name:            "Alice",
		Skills:          []string{"Python", "ML"},
		ExperienceYears: 5,
		Projects:        []string{"Health AI"},
		Availability:    "available",
	}
}

func newLexicalPipeline(t *testing.T, records []roster.EmployeeRecord) *Pipeline {
	t.Helper()

	store := roster.NewStore(records)
	engine, err := embedding.New(context.Background(), embedding.Config{Provider: embedding.ProviderLexical}, store.Projections(), zap.NewNop())
	if err != nil {
		t.Fatalf("engine: %v", err)
	}

	p, err := New(context.Background(), store, engine, synthesis.New(failingGenerator{}, 0, zap.NewNop()), ranking.DefaultOptions(), zap.NewNop())
	if err != nil {
		t.Fatalf("pipeline: %v", err)
	}
	return p
}

func TestProcessAliceScenario(t *testing.T) {
	p := newLexicalPipeline(t, []roster.EmployeeRecord{alice()})

	res, err := p.Process(context.Background(), "Python developer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Employees) != 1 || res.Employees[0].Name != "Alice" {
		t.Fatalf("expected Alice, got %+v", res.Employees)
	}
	if res.Confidence <= ranking.DefaultMinScore {
		t.Fatalf("expected confidence above floor, got %f", res.Confidence)
	}
	if math.Abs(res.Confidence-1/math.Sqrt(19)) > 1e-6 {
		t.Fatalf("unexpected confidence %f", res.Confidence)
	}
	if len(res.Scores) != 1 || res.Scores[0] != res.Confidence {
		t.Fatalf("expected scores to mirror candidates, got %v", res.Scores)
	}

	for _, part := range []string{"Alice", "5 years", "Python", "Match Score: 22.9%"} {
		if !strings.Contains(res.Response, part) {
			t.Fatalf("response is missing %q:\n%s", part, res.Response)
		}
	}
}

func TestProcessEmptyRoster(t *testing.T) {
	p := newLexicalPipeline(t, nil)

	res, err := p.Process(context.Background(), "anything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Confidence != 0 {
		t.Fatalf("expected zero confidence, got %f", res.Confidence)
	}
	if res.Employees == nil || len(res.Employees) != 0 {
		t.Fatalf("expected empty employee list, got %v", res.Employees)
	}
	if res.Response != synthesis.NoMatchMessage {
		t.Fatalf("unexpected response %q", res.Response)
	}
}

func TestProcessNoKnownWords(t *testing.T) {
	p := newLexicalPipeline(t, []roster.EmployeeRecord{alice()})

	res, err := p.Process(context.Background(), "kubernetes")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Employees) != 0 || res.Response != synthesis.NoMatchMessage {
		t.Fatalf("expected no match, got %+v", res)
	}
}

func TestProcessOrdersByScore(t *testing.T) {
	records := []roster.EmployeeRecord{
		{ID: 1, Name: "Low", Availability: "busy"},
		{ID: 2, Name: "High", Availability: "available"},
		{ID: 3, Name: "Mid", Availability: "available"},
	}
	store := roster.NewStore(records)
	proj := store.Projections()
	engine := &stubEngine{dim: 2, vectors: map[string][]float32{
		proj[0]: {0.2, 1},
		proj[1]: {1, 0},
		proj[2]: {1, 1},
		"query": {1, 0},
	}}

	p, err := New(context.Background(), store, engine, synthesis.New(nil, 0, nil), ranking.DefaultOptions(), nil)
	if err != nil {
		t.Fatalf("pipeline: %v", err)
	}

	res, err := p.Process(context.Background(), "query")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	names := make([]string, 0, len(res.Employees))
	for _, e := range res.Employees {
		names = append(names, e.Name)
	}
	if strings.Join(names, ",") != "High,Mid,Low" {
		t.Fatalf("unexpected order %v", names)
	}
	if res.Confidence != 1 {
		t.Fatalf("expected confidence 1, got %f", res.Confidence)
	}
	if !strings.HasPrefix(res.Response, "Based on your query 'query', I found 3 relevant candidate(s):") {
		t.Fatalf("expected fallback narrative, got %q", res.Response)
	}
}

func TestNewFailsOnEmbeddingError(t *testing.T) {
	store := roster.NewStore([]roster.EmployeeRecord{alice()})
	engine := &stubEngine{dim: 2, manyErr: errors.New("model unavailable")}

	_, err := New(context.Background(), store, engine, synthesis.New(nil, 0, nil), ranking.DefaultOptions(), nil)
	if err == nil || !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("expected startup failure, got %v", err)
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	store := roster.NewStore(nil)
	if _, err := New(context.Background(), store, nil, synthesis.New(nil, 0, nil), ranking.DefaultOptions(), nil); err == nil {
		t.Fatalf("expected error without engine")
	}
	if _, err := New(context.Background(), store, &stubEngine{}, nil, ranking.DefaultOptions(), nil); err == nil {
		t.Fatalf("expected error without synthesizer")
	}
}

func TestProcessQueryEmbeddingError(t *testing.T) {
	store := roster.NewStore([]roster.EmployeeRecord{alice()})
	engine := &stubEngine{dim: 2, vectors: map[string][]float32{store.Projections()[0]: {1, 0}}}

	p, err := New(context.Background(), store, engine, synthesis.New(nil, 0, nil), ranking.DefaultOptions(), nil)
	if err != nil {
		t.Fatalf("pipeline: %v", err)
	}

	engine.embedErr = errors.New("quota")
	if _, err := p.Process(context.Background(), "python"); err == nil {
		t.Fatalf("expected query embedding error")
	}
}

func TestProcessConcurrent(t *testing.T) {
	p := newLexicalPipeline(t, []roster.EmployeeRecord{alice()})

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := p.Process(context.Background(), "Python developer")
			if err != nil {
				errs <- err
				return
			}
			if len(res.Employees) != 1 {
				errs <- errors.New("expected one candidate")
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent process: %v", err)
	}
}

func TestProcessLogsQueryPreview(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	store := roster.NewStore([]roster.EmployeeRecord{alice()})
	engine := &stubEngine{dim: 2, vectors: map[string][]float32{
		roster.Projection(alice()): {1, 0},
		"python":                   {1, 0},
	}}

	p, err := New(context.Background(), store, engine, synthesis.New(nil, 0, zap.NewNop()), ranking.DefaultOptions(), zap.New(core))
	if err != nil {
		t.Fatalf("pipeline: %v", err)
	}
	if _, err := p.Process(context.Background(), "python"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := observed.FilterMessage("query processed").All()
	if len(entries) != 1 {
		t.Fatalf("expected one query log, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields[logger.FieldQuery] != "python" || fields["candidates"] != int64(1) {
		t.Fatalf("unexpected query log fields: %v", fields)
	}
}
