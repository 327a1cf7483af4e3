// Package embedding maps text to fixed-length vectors. An Engine is built once
// at startup and shared by every query.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	ProviderGemini  = "gemini"
	ProviderLexical = "lexical"
)

var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Engine embeds single texts and batches with one fixed model.
type Engine interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedMany(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	Model() string
}

// Config selects and parameterizes the embedding provider.
type Config struct {
	Provider    string
	Model       string
	APIKey      string
	BatchSize   int
	Concurrency int
}

// New builds the configured engine; gemini is used when no provider is set.
// corpus is the roster projection set, the lexical provider is fitted on it and
// must be asked for explicitly. Any failure here is a startup failure.
func New(ctx context.Context, cfg Config, corpus []string, logger *zap.Logger) (Engine, error) {
	switch provider := strings.ToLower(strings.TrimSpace(cfg.Provider)); provider {
	case ProviderGemini, "":
		return NewGemini(ctx, cfg, logger)
	case ProviderLexical:
		return NewLexical(corpus), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}
