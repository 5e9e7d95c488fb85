package provider

import "time"

// Config defines the generation backend configuration subtree.
type Config struct {
	DefaultProvider string        `mapstructure:"default_provider"`
	DefaultTimeout  time.Duration `mapstructure:"default_timeout"`

	// Providers is a set of backend instances keyed by a user-defined id
	// (slug). Each instance declares its underlying driver via Type.
	Providers map[string]InstanceConfig `mapstructure:"providers"`
}

// InstanceConfig defines a configured backend instance (e.g. "openai-prod").
type InstanceConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Type is the driver identifier (currently "openai"; any
	// OpenAI-compatible endpoint works via BaseURL).
	Type string `mapstructure:"type"`

	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`

	// Model is the default model for this instance; requests may override.
	Model string `mapstructure:"model"`
}
