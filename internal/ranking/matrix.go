// Package ranking scores roster records against a query vector.
package ranking

import (
	"fmt"
	"math"

	"github.com/spigell/hr-assistant/internal/embedding"
)

// Matrix holds one embedding row per roster record, in roster order.
type Matrix struct {
	rows [][]float32
	dim  int
}

// NewMatrix checks that every row has the same dimension.
func NewMatrix(rows [][]float32) (*Matrix, error) {
	if len(rows) == 0 {
		return &Matrix{}, nil
	}

	dim := len(rows[0])
	for i, row := range rows {
		if len(row) != dim {
			return nil, fmt.Errorf("row %d: %w: got %d, want %d", i, embedding.ErrDimensionMismatch, len(row), dim)
		}
	}
	return &Matrix{rows: rows, dim: dim}, nil
}

func (m *Matrix) Len() int {
	if m == nil {
		return 0
	}
	return len(m.rows)
}

func (m *Matrix) Dim() int {
	if m == nil {
		return 0
	}
	return m.dim
}

func (m *Matrix) Row(i int) []float32 {
	return m.rows[i]
}

// CosineSimilarity returns 0 when the lengths differ or either vector has zero magnitude.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
