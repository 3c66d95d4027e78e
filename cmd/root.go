package cmd

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MQasim39/career-dashboard/internal/enhance"
	"github.com/MQasim39/career-dashboard/internal/matching"
	"github.com/MQasim39/career-dashboard/internal/ratelimit"
	"github.com/MQasim39/career-dashboard/internal/scoring"
)

const (
	app = "career-dashboard"
)

type Config struct {
	Database   DatabaseConfig   `mapstructure:"database"`
	Matching   MatchingConfig   `mapstructure:"matching"`
	Vocabulary VocabularyConfig `mapstructure:"vocabulary"`
	AI         AIConfig         `mapstructure:"ai"`
	Files      FilesConfig      `mapstructure:"files"`
}

type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"max-conns" validate:"gte=0"`
}

type MatchingConfig struct {
	matching.Config `mapstructure:",squash"`

	Threshold float64         `mapstructure:"threshold" validate:"gte=0,lte=100"`
	Weights   scoring.Weights `mapstructure:"weights"`
}

type VocabularyConfig struct {
	ExtraSkills []string          `mapstructure:"extra-skills"`
	Aliases     map[string]string `mapstructure:"aliases"`
}

type AIConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	Provider          string        `mapstructure:"provider" validate:"omitempty,oneof=gemini openrouter"`
	Model             string        `mapstructure:"model"`
	APIKey            string        `mapstructure:"api-key"`
	APIKeyFile        string        `mapstructure:"api-key-file"`
	BaseURL           string        `mapstructure:"base-url"`
	MaxTokens         int           `mapstructure:"max-tokens" validate:"gte=0"`
	Temperature       float64       `mapstructure:"temperature" validate:"gte=0,lte=2"`
	Timeout           time.Duration `mapstructure:"timeout" validate:"gte=0"`
	MaxRetries        int           `mapstructure:"max-retries" validate:"gte=0"`
	RequestsPerMinute int           `mapstructure:"requests-per-minute" validate:"gte=0"`
	CacheTTL          time.Duration `mapstructure:"cache-ttl" validate:"gte=0"`
	CacheSize         int           `mapstructure:"cache-size" validate:"gte=0"`
	MaxLogLength      int           `mapstructure:"max-log-length" validate:"gte=0"`
}

type FilesConfig struct {
	Resume  string `mapstructure:"resume"`
	Jobs    string `mapstructure:"jobs"`
	Results string `mapstructure:"results"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "career-dashboard extracts résumés and ranks job postings against them",
	}

	validate = validator.New()
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// A missing .env file is fine, the environment may be set up already.
	_ = godotenv.Load()

	envs := map[string][]string{
		"database.url":    {"DATABASE_URL"},
		"ai.api-key-file": {"GEMINI_API_KEY_FILE", "OPENROUTER_API_KEY_FILE"},
	}
	for key, names := range envs {
		if err := viper.BindEnv(append([]string{key}, names...)...); err != nil {
			log.Fatalf("binding %v environment variables: %v", names, err)
		}
	}

	setDefaults()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is career-dashboard.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults() {
	weights := scoring.DefaultWeights()
	remote := enhance.DefaultConfig()

	viper.SetDefault("database.max-conns", 10)
	viper.SetDefault("matching.threshold", matching.DefaultThreshold)
	viper.SetDefault("matching.workers", matching.DefaultWorkers)
	viper.SetDefault("matching.weights.skills", weights.Skills)
	viper.SetDefault("matching.weights.text", weights.Text)
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.max-tokens", remote.MaxTokens)
	viper.SetDefault("ai.temperature", remote.Temperature)
	viper.SetDefault("ai.timeout", remote.Timeout)
	viper.SetDefault("ai.max-retries", 3)
	viper.SetDefault("ai.requests-per-minute", ratelimit.DefaultLimit)
	viper.SetDefault("ai.cache-ttl", time.Hour)
	viper.SetDefault("ai.cache-size", 512)
	viper.SetDefault("ai.max-log-length", remote.MaxLogLength)
}

func initConfig() {
	// Only commands working with stores or models need the config.
	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Defaults and environment are enough when no config was asked for explicitly.
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config == nil {
		config = &Config{}
	}

	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := config.Matching.Weights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid matching weights: %w", err)
	}

	return config, nil
}
