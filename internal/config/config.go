package config

import (
	"time"

	"github.com/pagemeta/pagemeta/internal/provider"
	"github.com/pagemeta/pagemeta/internal/ratelimit"
)

// Config represents the complete application configuration.
type Config struct {
	Server       ServerConfig     `mapstructure:"server"`
	Store        StoreConfig      `mapstructure:"store"`
	Cache        CacheConfig      `mapstructure:"cache"`
	Generation   provider.Config  `mapstructure:"generation"`
	RateLimiting ratelimit.Config `mapstructure:"rate_limiting"`
	Logging      LoggingConfig    `mapstructure:"logging"`
	Metrics      MetricsConfig    `mapstructure:"metrics"`

	// PromptsDir overrides the built-in prompt templates.
	PromptsDir string `mapstructure:"prompts_dir"`

	// SiteName feeds the Organization JSON-LD node and og:site_name.
	SiteName string `mapstructure:"site_name"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StoreConfig contains database configuration for the libsql metadata
// cache.
type StoreConfig struct {
	Driver    string `mapstructure:"driver"`
	Path      string `mapstructure:"path"`
	URL       string `mapstructure:"url"`
	AuthToken string `mapstructure:"auth_token"`
}

// CacheConfig contains metadata cache settings.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level controls the minimum log level: debug, info, warn, error.
	Level string `mapstructure:"level"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}
