// Package config provides centralized configuration management for
// pagemeta: a config file plus environment variables layered over
// dotted-key defaults, all through viper.
package config

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides, e.g.
// PAGEMETA_RATE_LIMITING_ENABLED.
const EnvPrefix = "PAGEMETA"

// SetDefaults registers every dotted-key default on v. Callers can still
// read individual keys through viper before Load decodes the full struct.
func SetDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// Logging defaults
	v.SetDefault("logging.level", "info")

	// Store defaults
	v.SetDefault("store.driver", "libsql")
	v.SetDefault("store.path", "pagemeta.db")
	v.SetDefault("store.url", "")
	v.SetDefault("store.auth_token", "")

	// Cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "24h")

	// Rate limiting defaults
	v.SetDefault("rate_limiting.enabled", true)
	v.SetDefault("rate_limiting.requests_per_minute", 10)
	v.SetDefault("rate_limiting.block_on_limit", true)
	v.SetDefault("rate_limiting.wait_on_limit", false)
	v.SetDefault("rate_limiting.max_wait", "30s")

	// Generation defaults
	v.SetDefault("generation.default_provider", "")
	v.SetDefault("generation.default_timeout", "60s")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
}

// BindEnv wires PAGEMETA_* environment variables onto dotted keys.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load decodes the fully layered configuration. Defaults are applied
// first so a missing file or empty viper still yields a usable config.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}
