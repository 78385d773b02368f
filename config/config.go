// Package config provides configuration loading for the ingestion pipeline.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the runtime configuration for a scrape run.
type Config struct {
	// UserAgent is the crawler identity sent with every request and matched
	// against robots User-agent lines.
	UserAgent string `mapstructure:"user_agent"`

	// Sources are the adapter names to run; empty means all registered.
	Sources []string `mapstructure:"sources"`

	// MaxPages bounds pagination per (category, intent) search.
	MaxPages int `mapstructure:"max_pages"`

	// Delay is the courtesy pause between page fetches within one run.
	Delay time.Duration `mapstructure:"delay"`

	// Storage selects the backend: "memory" or "postgres".
	Storage string `mapstructure:"storage"`

	// DatabaseURL is the Postgres connection string, required when the
	// storage backend is "postgres".
	DatabaseURL string `mapstructure:"database_url"`

	// MetricsAddr exposes /metrics when non-empty, e.g. ":9090".
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		UserAgent: "AncerLarinsBot/1.0 (+https://ancerlarins.com/bot)",
		MaxPages:  5,
		Delay:     2 * time.Second,
		Storage:   "memory",
	}
}

// Load reads configuration from the given YAML file (optional) and from
// ANCERLARINS_* environment variables, over the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("user_agent", def.UserAgent)
	v.SetDefault("max_pages", def.MaxPages)
	v.SetDefault("delay", def.Delay)
	v.SetDefault("storage", def.Storage)
	// Registered so env-only overrides are visible to Unmarshal.
	v.SetDefault("sources", []string{})
	v.SetDefault("database_url", "")
	v.SetDefault("metrics_addr", "")

	v.SetEnvPrefix("ANCERLARINS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.UserAgent == "" {
		return fmt.Errorf("user_agent cannot be empty")
	}

	if c.MaxPages < 1 {
		return fmt.Errorf("max_pages must be at least 1")
	}

	if c.Delay < 0 {
		return fmt.Errorf("delay cannot be negative")
	}

	switch c.Storage {
	case "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("postgres storage requires database_url")
		}
	default:
		return fmt.Errorf("invalid storage '%s', must be one of: memory, postgres", c.Storage)
	}

	return nil
}
