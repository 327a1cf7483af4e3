package ranking

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/spigell/hr-assistant/internal/embedding"
	"github.com/spigell/hr-assistant/internal/roster"
)

const (
	DefaultTopK     = 5
	DefaultMinScore = 0.1
)

// Options bound the result list. TopK <= 0 keeps every candidate.
type Options struct {
	TopK     int     `mapstructure:"top-k"`
	MinScore float64 `mapstructure:"min-score"`
}

func DefaultOptions() Options {
	return Options{TopK: DefaultTopK, MinScore: DefaultMinScore}
}

// Candidate is a roster record with its similarity to the query.
type Candidate struct {
	Record roster.EmployeeRecord
	Index  int
	Score  float64
}

// Rank scores every row of matrix against query, sorts best-first with ties in
// roster order, keeps the first TopK and then drops scores at or below MinScore.
func Rank(query []float32, matrix *Matrix, records []roster.EmployeeRecord, opts Options) ([]Candidate, error) {
	if matrix.Len() == 0 || len(records) == 0 {
		return []Candidate{}, nil
	}
	if matrix.Len() != len(records) {
		return nil, fmt.Errorf("matrix has %d rows for %d records", matrix.Len(), len(records))
	}
	if len(query) != matrix.Dim() {
		return nil, fmt.Errorf("query vector: %w: got %d, want %d", embedding.ErrDimensionMismatch, len(query), matrix.Dim())
	}

	scored := make([]Candidate, len(records))
	for i, record := range records {
		scored[i] = Candidate{
			Record: record,
			Index:  i,
			Score:  CosineSimilarity(query, matrix.Row(i)),
		}
	}

	slices.SortStableFunc(scored, func(a, b Candidate) int {
		return cmp.Compare(b.Score, a.Score)
	})

	if opts.TopK > 0 && len(scored) > opts.TopK {
		scored = scored[:opts.TopK]
	}

	out := make([]Candidate, 0, len(scored))
	for _, c := range scored {
		if c.Score > opts.MinScore {
			out = append(out, c)
		}
	}
	return out, nil
}
