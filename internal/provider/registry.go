// Package provider resolves named generation backends to drivers and
// invokes them behind the admission-control rate limiter.
package provider

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pagemeta/pagemeta/internal/provider/driver"
	"github.com/pagemeta/pagemeta/internal/provider/driver/openai"
)

// Registry maps configured provider ids to lazily created drivers.
type Registry struct {
	cfg Config

	mu      sync.Mutex
	drivers map[string]driver.Driver
}

// Resolved is a provider instance ready to serve one request.
type Resolved struct {
	ID     string
	Driver driver.Driver
	Model  string
}

// NewRegistry builds a registry from the generation config subtree.
func NewRegistry(cfg Config) *Registry {
	return &Registry{cfg: cfg}
}

// Resolve returns the named provider, or the default provider when name is
// empty. When no default is configured and exactly one instance is
// enabled, that instance is used.
func (r *Registry) Resolve(name string) (*Resolved, error) {
	if r == nil {
		return nil, fmt.Errorf("provider registry not configured")
	}

	id, instance, err := r.resolveInstance(strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}

	drv, err := r.driverFor(id, instance)
	if err != nil {
		return nil, err
	}

	model := strings.TrimSpace(instance.Model)
	if model == "" {
		return nil, fmt.Errorf("no model configured for provider %q", id)
	}

	return &Resolved{ID: id, Driver: drv, Model: model}, nil
}

// Names returns the ids of all enabled provider instances.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}

	names := make([]string, 0, len(r.cfg.Providers))
	for id, instance := range r.cfg.Providers {
		if instance.Enabled {
			names = append(names, id)
		}
	}
	return names
}

func (r *Registry) resolveInstance(name string) (string, InstanceConfig, error) {
	if name != "" {
		instance, ok := r.cfg.Providers[name]
		if !ok {
			return "", InstanceConfig{}, fmt.Errorf("unknown provider %q", name)
		}
		if !instance.Enabled {
			return "", InstanceConfig{}, fmt.Errorf("provider %q is disabled", name)
		}
		return name, instance, nil
	}

	if id := strings.TrimSpace(r.cfg.DefaultProvider); id != "" {
		instance, ok := r.cfg.Providers[id]
		if !ok {
			return "", InstanceConfig{}, fmt.Errorf("default provider %q not configured", id)
		}
		if !instance.Enabled {
			return "", InstanceConfig{}, fmt.Errorf("default provider %q is disabled", id)
		}
		return id, instance, nil
	}

	var onlyID string
	var onlyInstance InstanceConfig
	for id, instance := range r.cfg.Providers {
		if !instance.Enabled {
			continue
		}
		if onlyID != "" {
			return "", InstanceConfig{}, fmt.Errorf("multiple providers enabled and no default_provider set")
		}
		onlyID = id
		onlyInstance = instance
	}
	if onlyID == "" {
		return "", InstanceConfig{}, fmt.Errorf("no enabled providers configured")
	}
	return onlyID, onlyInstance, nil
}

func (r *Registry) driverFor(id string, instance InstanceConfig) (driver.Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.drivers == nil {
		r.drivers = map[string]driver.Driver{}
	}
	if drv, ok := r.drivers[id]; ok {
		return drv, nil
	}

	driverType := strings.ToLower(strings.TrimSpace(instance.Type))
	switch driverType {
	case "openai":
		client := openai.NewClient(instance.BaseURL, instance.APIKey)
		client.Timeout = r.cfg.DefaultTimeout
		r.drivers[id] = client
		return client, nil
	default:
		if driverType == "" {
			driverType = "(unset)"
		}
		return nil, fmt.Errorf("unsupported driver type %q for provider %q", driverType, id)
	}
}
