package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	AI       AIConfig
	Matching MatchingConfig
	Stores   StoresConfig
	Cache    CacheConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AIConfig holds semantic matching service configuration. An empty API key
// disables the semantic stage entirely.
type AIConfig struct {
	APIKey     string        `mapstructure:"api_key"`
	BaseURL    string        `mapstructure:"base_url"`
	Model      string        `mapstructure:"model"`
	BatchSizeA int           `mapstructure:"batch_size_a"`
	BatchSizeB int           `mapstructure:"batch_size_b"`
	BatchDelay time.Duration `mapstructure:"batch_delay"`
}

// MatchingConfig holds matching engine configuration
type MatchingConfig struct {
	FuzzyThreshold     float64 `mapstructure:"fuzzy_threshold"`
	MaxCandidates      int     `mapstructure:"max_candidates"`
	QuantityTolerance  float64 `mapstructure:"quantity_tolerance"`
	SemanticItemCap    int     `mapstructure:"semantic_item_cap"`
	SynonymsFile       string  `mapstructure:"synonyms_file"`
	EnableDebugLogging bool    `mapstructure:"enable_debug_logging"`
}

// StoresConfig holds the retailer endpoint base URLs
type StoresConfig struct {
	ItaloBaseURL  string `mapstructure:"italo_base_url"`
	MarconBaseURL string `mapstructure:"marcon_base_url"`
	AlfaBaseURL   string `mapstructure:"alfa_base_url"`
}

// CacheConfig holds scrape-cache configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/comparaprecos/")

	v.SetEnvPrefix("COMPARAPRECOS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults are enough to run.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})

	// AI defaults (empty api_key disables the semantic stage)
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.base_url", "https://ai.gateway.lovable.dev/v1")
	v.SetDefault("ai.model", "google/gemini-2.5-flash")
	v.SetDefault("ai.batch_size_a", 15)
	v.SetDefault("ai.batch_size_b", 30)
	v.SetDefault("ai.batch_delay", "200ms")

	// Matching defaults
	v.SetDefault("matching.fuzzy_threshold", 0.55)
	v.SetDefault("matching.max_candidates", 50)
	v.SetDefault("matching.quantity_tolerance", 0.12)
	v.SetDefault("matching.semantic_item_cap", 100)
	v.SetDefault("matching.enable_debug_logging", false)

	// Store endpoints
	v.SetDefault("stores.italo_base_url", "https://www.italosupermercados.com.br")
	v.SetDefault("stores.marcon_base_url", "https://sense.osuper.com.br/16/32")
	v.SetDefault("stores.alfa_base_url", "https://sense.osuper.com.br/16/33")

	// Cache defaults
	v.SetDefault("cache.ttl", "15m")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Matching.FuzzyThreshold < 0 || config.Matching.FuzzyThreshold > 1 {
		return fmt.Errorf("matching.fuzzy_threshold must be in [0,1], got: %v", config.Matching.FuzzyThreshold)
	}

	if config.Matching.QuantityTolerance < 0 || config.Matching.QuantityTolerance > 1 {
		return fmt.Errorf("matching.quantity_tolerance must be in [0,1], got: %v", config.Matching.QuantityTolerance)
	}

	if config.Stores.ItaloBaseURL == "" || config.Stores.MarconBaseURL == "" || config.Stores.AlfaBaseURL == "" {
		return fmt.Errorf("all three store base URLs must be configured")
	}

	return nil
}
