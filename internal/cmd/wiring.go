package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	appconfig "github.com/pagemeta/pagemeta/internal/config"
	"github.com/pagemeta/pagemeta/internal/core/engine"
	"github.com/pagemeta/pagemeta/internal/core/store"
	"github.com/pagemeta/pagemeta/internal/observability"
	"github.com/pagemeta/pagemeta/internal/provider"
	"github.com/pagemeta/pagemeta/internal/provider/prompt"
	"github.com/pagemeta/pagemeta/internal/ratelimit"
)

// components holds everything a command needs to generate metadata.
type components struct {
	Engine  *engine.Engine
	Limiter *ratelimit.Limiter
	Store   *store.Store
}

// Close releases the store connection if one was opened.
func (c *components) Close() error {
	if c.Store != nil {
		return c.Store.Close()
	}
	return nil
}

// buildComponents wires the limiter, provider registry, invoker, store
// and engine from configuration. With offline set, no invoker is built
// and generation falls back to heuristics.
func buildComponents(ctx context.Context, cfg *appconfig.Config, logger *zap.Logger, offline bool) (*components, error) {
	prompts, err := loadPrompts(cfg)
	if err != nil {
		return nil, err
	}

	c := &components{
		Limiter: ratelimit.New(cfg.RateLimiting),
	}

	eng := &engine.Engine{
		Prompts:  prompts,
		CacheTTL: cfg.Cache.TTL,
		Logger:   logger,
		SiteName: cfg.SiteName,
	}

	if !offline {
		registry := provider.NewRegistry(cfg.Generation)
		eng.Invoker = &provider.Invoker{
			Registry:    registry,
			Limiter:     c.Limiter,
			Logger:      logger,
			WaitOnLimit: cfg.RateLimiting.WaitOnLimit,
			MaxWait:     cfg.RateLimiting.MaxWait,
		}
	}

	if cfg.Cache.Enabled {
		db, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		c.Store = db
		eng.Cache = &store.MetadataCache{Store: db}
	}

	c.Engine = eng
	return c, nil
}

func loadPrompts(cfg *appconfig.Config) (map[string]*prompt.Prompt, error) {
	if cfg.PromptsDir != "" {
		return prompt.Load(cfg.PromptsDir)
	}
	return prompt.Defaults()
}

func cliLogger() *zap.Logger {
	return observability.CLILogger
}
