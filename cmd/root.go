package cmd

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/hr-assistant/internal/ai"
	"github.com/spigell/hr-assistant/internal/embedding"
	"github.com/spigell/hr-assistant/internal/observability"
	"github.com/spigell/hr-assistant/internal/ranking"
	"github.com/spigell/hr-assistant/internal/roster"
	"github.com/spigell/hr-assistant/internal/server"
	"github.com/spigell/hr-assistant/internal/synthesis"
)

const (
	app       = "hr-assistant"
	envPrefix = "HR_ASSISTANT"
)

type Config struct {
	Roster    *RosterConfig               `mapstructure:"roster"`
	Embedding *EmbeddingConfig            `mapstructure:"embedding"`
	AI        *AIConfig                   `mapstructure:"ai"`
	Ranking   ranking.Options             `mapstructure:"ranking"`
	Synthesis *SynthesisConfig            `mapstructure:"synthesis"`
	Server    server.Config               `mapstructure:"server"`
	Tracing   observability.TracingConfig `mapstructure:"tracing"`
}

type RosterConfig struct {
	Source      string `mapstructure:"source"`
	Path        string `mapstructure:"path"`
	DatabaseURL string `mapstructure:"database-url"`
	Table       string `mapstructure:"table"`
}

type EmbeddingConfig struct {
	Provider    string `mapstructure:"provider"`
	Model       string `mapstructure:"model"`
	BatchSize   int    `mapstructure:"batch-size"`
	Concurrency int    `mapstructure:"concurrency"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type SynthesisConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "hr-assistant answers staffing questions by ranking an employee roster against a query",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is hr-assistant.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("roster", "", "roster file (default is "+roster.DefaultPath+")")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("roster.path", rootCmd.PersistentFlags().Lookup("roster"))

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("roster.source", "file")
	v.SetDefault("roster.path", roster.DefaultPath)
	v.SetDefault("roster.database-url", "")
	v.SetDefault("roster.table", roster.DefaultTable)
	v.SetDefault("embedding.provider", embedding.ProviderGemini)
	v.SetDefault("embedding.model", "")
	v.SetDefault("embedding.batch-size", 0)
	v.SetDefault("embedding.concurrency", 0)
	v.SetDefault("ai.provider", ai.ProviderGemini)
	v.SetDefault("ai.gemini.model", "")
	v.SetDefault("ai.gemini.max-log-length", 0)
	v.SetDefault("ranking.top-k", ranking.DefaultTopK)
	v.SetDefault("ranking.min-score", ranking.DefaultMinScore)
	v.SetDefault("synthesis.timeout", synthesis.DefaultTimeout)
	v.SetDefault("server.addr", server.DefaultAddr)
	v.SetDefault("server.max-concurrent", server.DefaultMaxConcurrent)
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.sample-rate", 1.0)
}

func initConfig() {
	if err := loadConfig(viper.GetViper(), cfgFile); err != nil {
		log.Fatal(err)
	}
}

// loadConfig wires env overrides and reads the config file. A missing default
// config file is fine; a missing explicit one or a broken file is not.
func loadConfig(v *viper.Viper, file string) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("ai.gemini.api-key", "GEMINI_API_KEY"); err != nil {
		return fmt.Errorf("binding GEMINI_API_KEY environment variable: %w", err)
	}
	if err := v.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		return fmt.Errorf("binding GEMINI_API_KEY_FILE environment variable: %w", err)
	}

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(app)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}

	return nil
}

func getConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config == nil {
		config = &Config{}
	}
	if config.Roster == nil {
		config.Roster = &RosterConfig{}
	}
	if config.Embedding == nil {
		config.Embedding = &EmbeddingConfig{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}
	if config.Synthesis == nil {
		config.Synthesis = &SynthesisConfig{}
	}

	return config, nil
}
