package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/hr-assistant/internal/pipeline"
	"github.com/spigell/hr-assistant/internal/roster"
)

func newTestViper(t *testing.T, file string) *viper.Viper {
	t.Helper()
	v := viper.New()
	setDefaults(v)
	require.NoError(t, loadConfig(v, file))
	return v
}

func TestConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	config, err := getConfig(newTestViper(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "file", config.Roster.Source)
	assert.Equal(t, roster.DefaultPath, config.Roster.Path)
	assert.Equal(t, "gemini", config.Embedding.Provider)
	assert.Equal(t, "gemini", config.AI.Provider)
	assert.Equal(t, 5, config.Ranking.TopK)
	assert.InDelta(t, 0.1, config.Ranking.MinScore, 1e-9)
	assert.Equal(t, 20*time.Second, config.Synthesis.Timeout)
	assert.Equal(t, ":8000", config.Server.Addr)
	assert.Equal(t, 8, config.Server.MaxConcurrent)
	assert.Empty(t, config.Tracing.Endpoint)
}

func TestConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
roster:
  path: people.yaml
embedding:
  provider: gemini
  batch-size: 50
ai:
  provider: none
  gemini:
    model: gemini-test
ranking:
  top-k: 3
synthesis:
  timeout: 5s
server:
  max-concurrent: 2
`), 0o600))

	t.Setenv("HR_ASSISTANT_RANKING_MIN_SCORE", "0.25")
	t.Setenv("HR_ASSISTANT_SERVER_ADDR", ":9090")
	t.Setenv("GEMINI_API_KEY", "env-key")

	config, err := getConfig(newTestViper(t, file))
	require.NoError(t, err)

	assert.Equal(t, "people.yaml", config.Roster.Path)
	assert.Equal(t, "gemini", config.Embedding.Provider)
	assert.Equal(t, 50, config.Embedding.BatchSize)
	assert.Equal(t, "none", config.AI.Provider)
	assert.Equal(t, "gemini-test", config.AI.Gemini.Model)
	assert.Equal(t, "env-key", config.AI.Gemini.APIKey)
	assert.Equal(t, 3, config.Ranking.TopK)
	assert.InDelta(t, 0.25, config.Ranking.MinScore, 1e-9)
	assert.Equal(t, 5*time.Second, config.Synthesis.Timeout)
	assert.Equal(t, ":9090", config.Server.Addr)
	assert.Equal(t, 2, config.Server.MaxConcurrent)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	v := viper.New()
	err := loadConfig(v, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRosterSource(t *testing.T) {
	file := rosterSource(&RosterConfig{Source: "file", Path: "a.json"}, zap.NewNop())
	fs, ok := file.(*roster.FileSource)
	require.True(t, ok)
	assert.Equal(t, "a.json", fs.Path)

	db := rosterSource(&RosterConfig{Source: "Postgres", DatabaseURL: "postgres://x", Table: "staff"}, zap.NewNop())
	ps, ok := db.(*roster.PostgresSource)
	require.True(t, ok)
	assert.Equal(t, "staff", ps.Table)
}

func TestNewGenerator(t *testing.T) {
	g, err := newGenerator(context.Background(), &AIConfig{Provider: "none", Gemini: &GeminiConfig{}}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, g)

	_, err = newGenerator(context.Background(), &AIConfig{Provider: "openai", Gemini: &GeminiConfig{}}, zap.NewNop())
	assert.ErrorContains(t, err, "unsupported ai provider")

	t.Setenv("GOOGLE_API_KEY", "")
	_, err = newGenerator(context.Background(), &AIConfig{Provider: "gemini", Gemini: &GeminiConfig{}}, zap.NewNop())
	assert.ErrorContains(t, err, "gemini api key is not configured")
}

func TestRedacted(t *testing.T) {
	config := &Config{
		Roster: &RosterConfig{DatabaseURL: "postgres://user:pass@db/hr"},
		AI:     &AIConfig{Gemini: &GeminiConfig{APIKey: "secret", Model: "m"}},
	}

	out := redacted(config)
	assert.Equal(t, "***", out.AI.Gemini.APIKey)
	assert.Equal(t, "m", out.AI.Gemini.Model)
	assert.Equal(t, "***", out.Roster.DatabaseURL)
	assert.Equal(t, "secret", config.AI.Gemini.APIKey)
	assert.Equal(t, "postgres://user:pass@db/hr", config.Roster.DatabaseURL)
}

func TestRenderResult(t *testing.T) {
	out := renderResult(&pipeline.QueryResult{
		Response:   "Alice fits.",
		Employees:  []roster.EmployeeRecord{{Name: "Alice", ExperienceYears: 5, Availability: "available"}},
		Scores:     []float64{0.5},
		Confidence: 0.5,
	})

	assert.True(t, strings.HasPrefix(out, "Alice fits.\n\n"))
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "5 years,")
	assert.Contains(t, out, "available")
	assert.Contains(t, out, "50.0%")

	empty := renderResult(&pipeline.QueryResult{Response: "nothing"})
	assert.Equal(t, "nothing\n\n", empty)
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, "hr-assistant version: unknown\n", buf.String())
}

func TestEmbeddingEngineNeedsGeminiKeyByDefault(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	config, err := getConfig(newTestViper(t, ""))
	require.NoError(t, err)

	store := roster.NewStore([]roster.EmployeeRecord{{ID: 1, Name: "Alice", Skills: []string{"Python"}, Availability: "available"}})

	_, err = newEmbeddingEngine(context.Background(), config, store, zap.NewNop())
	assert.ErrorContains(t, err, "gemini api key is not configured")

	config.Embedding.Provider = "lexical"
	engine, err := newEmbeddingEngine(context.Background(), config, store, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "lexical-tfidf", engine.Model())
}
