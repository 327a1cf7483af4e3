package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/hr-assistant/internal/ai"
	"github.com/spigell/hr-assistant/internal/ai/gemini"
	"github.com/spigell/hr-assistant/internal/embedding"
	"github.com/spigell/hr-assistant/internal/logger"
	"github.com/spigell/hr-assistant/internal/observability"
	"github.com/spigell/hr-assistant/internal/pipeline"
	"github.com/spigell/hr-assistant/internal/roster"
	"github.com/spigell/hr-assistant/internal/secrets"
	"github.com/spigell/hr-assistant/internal/synthesis"
)

// runtime is the process-wide state built once at startup.
type runtime struct {
	config   *Config
	logger   *zap.Logger
	tracer   *observability.TracerProvider
	pipeline *pipeline.Pipeline
}

func (r *runtime) close(ctx context.Context) {
	if err := r.tracer.Shutdown(ctx); err != nil {
		r.logger.Warn("flushing traces", zap.Error(err))
	}
	_ = r.logger.Sync()
}

func newLogger() *zap.Logger {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}

// bootstrap loads the roster, builds the engines and embeds the roster. Every
// failure here is fatal.
func bootstrap(ctx context.Context, logger *zap.Logger) *runtime {
	config, err := getConfig(viper.GetViper())
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the hr-assistant", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	config.Tracing.ServiceVersion = version
	tracer, err := observability.InitTracing(ctx, &config.Tracing)
	if err != nil {
		logger.Fatal("initializing tracing", zap.Error(err))
	}

	store := roster.Open(ctx, rosterSource(config.Roster, logger), logger)

	engine, err := newEmbeddingEngine(ctx, config, store, logger)
	if err != nil {
		logger.Fatal("creating embedding engine", zap.Error(err))
	}

	generator, err := newGenerator(ctx, config.AI, logger)
	if err != nil {
		logger.Warn("generative responses disabled, using template responses only", zap.Error(err))
	}

	synth := synthesis.New(generator, config.Synthesis.Timeout, logger)

	p, err := pipeline.New(ctx, store, engine, synth, config.Ranking, logger)
	if err != nil {
		logger.Fatal("indexing roster", zap.Error(err))
	}

	return &runtime{
		config:   config,
		logger:   logger,
		tracer:   tracer,
		pipeline: p,
	}
}

func rosterSource(cfg *RosterConfig, logger *zap.Logger) roster.Source {
	if strings.EqualFold(strings.TrimSpace(cfg.Source), "postgres") {
		return &roster.PostgresSource{
			DatabaseURL: cfg.DatabaseURL,
			Table:       cfg.Table,
			Logger:      logger,
		}
	}
	return &roster.FileSource{Path: cfg.Path, Logger: logger}
}

func newEmbeddingEngine(ctx context.Context, config *Config, store *roster.Store, logger *zap.Logger) (embedding.Engine, error) {
	cfg := embedding.Config{
		Provider:    config.Embedding.Provider,
		Model:       config.Embedding.Model,
		BatchSize:   config.Embedding.BatchSize,
		Concurrency: config.Embedding.Concurrency,
	}

	if !strings.EqualFold(strings.TrimSpace(cfg.Provider), embedding.ProviderLexical) {
		apiKey, err := geminiAPIKey(config.AI.Gemini)
		if err != nil {
			return nil, err
		}
		cfg.APIKey = apiKey
	}

	return embedding.New(ctx, cfg, store.Projections(), logger)
}

// newGenerator returns a nil generator when generation is switched off.
func newGenerator(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Generator, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	switch provider {
	case ai.ProviderNone:
		logger.Info("generative responses disabled by configuration")
		return nil, nil
	case "", ai.ProviderGemini:
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := geminiAPIKey(cfg.Gemini)
	if err != nil {
		return nil, err
	}

	g, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxLogLength, logger)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func geminiAPIKey(cfg *GeminiConfig) (string, error) {
	key, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  cfg.APIKeyFile,
		Value: cfg.APIKey,
		Env:   "GOOGLE_API_KEY",
	})
	if err != nil {
		return "", fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
	}
	return key, nil
}

func redacted(config *Config) *Config {
	cp := *config
	if config.AI != nil && config.AI.Gemini != nil {
		aiCfg := *config.AI
		g := *config.AI.Gemini
		if g.APIKey != "" {
			g.APIKey = "***"
		}
		aiCfg.Gemini = &g
		cp.AI = &aiCfg
	}
	if config.Roster != nil && config.Roster.DatabaseURL != "" {
		r := *config.Roster
		r.DatabaseURL = "***"
		cp.Roster = &r
	}
	return &cp
}
