package provider

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pagemeta/pagemeta/internal/provider/driver/openai"
)

func testConfig() Config {
	return Config{
		DefaultProvider: "openai-prod",
		Providers: map[string]InstanceConfig{
			"openai-prod": {
				Enabled: true,
				Type:    "openai",
				APIKey:  "test-key",
				Model:   "gpt-4o-mini",
			},
			"compat-local": {
				Enabled: true,
				Type:    "openai",
				BaseURL: "http://localhost:11434/v1",
				APIKey:  "unused",
				Model:   "llama3",
			},
			"disabled-one": {
				Enabled: false,
				Type:    "openai",
				APIKey:  "x",
				Model:   "m",
			},
		},
	}
}

func TestRegistryResolveByName(t *testing.T) {
	r := NewRegistry(testConfig())

	resolved, err := r.Resolve("compat-local")
	require.NoError(t, err)
	require.Equal(t, "compat-local", resolved.ID)
	require.Equal(t, "llama3", resolved.Model)
	require.Equal(t, "openai", resolved.Driver.Name())
}

func TestRegistryResolveDefault(t *testing.T) {
	r := NewRegistry(testConfig())

	resolved, err := r.Resolve("")
	require.NoError(t, err)
	require.Equal(t, "openai-prod", resolved.ID)
	require.Equal(t, "gpt-4o-mini", resolved.Model)
}

func TestRegistryResolveErrors(t *testing.T) {
	r := NewRegistry(testConfig())

	_, err := r.Resolve("nope")
	require.ErrorContains(t, err, "unknown provider")

	_, err = r.Resolve("disabled-one")
	require.ErrorContains(t, err, "disabled")
}

func TestRegistrySingleEnabledFallback(t *testing.T) {
	cfg := Config{
		Providers: map[string]InstanceConfig{
			"only": {Enabled: true, Type: "openai", APIKey: "k", Model: "m"},
		},
	}
	r := NewRegistry(cfg)

	resolved, err := r.Resolve("")
	require.NoError(t, err)
	require.Equal(t, "only", resolved.ID)
}

func TestRegistryRequiresModel(t *testing.T) {
	cfg := Config{
		Providers: map[string]InstanceConfig{
			"only": {Enabled: true, Type: "openai", APIKey: "k"},
		},
	}
	r := NewRegistry(cfg)

	_, err := r.Resolve("only")
	require.ErrorContains(t, err, "model")
}

func TestRegistryCachesDrivers(t *testing.T) {
	r := NewRegistry(testConfig())

	first, err := r.Resolve("openai-prod")
	require.NoError(t, err)
	second, err := r.Resolve("openai-prod")
	require.NoError(t, err)

	require.Same(t, first.Driver.(*openai.Client), second.Driver.(*openai.Client))
}

func TestRegistryNames(t *testing.T) {
	r := NewRegistry(testConfig())

	names := r.Names()
	require.ElementsMatch(t, []string{"openai-prod", "compat-local"}, names)
}
