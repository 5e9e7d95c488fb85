// Package server exposes the pagemeta API over HTTP: metadata
// generation, page analysis, and rate limiter administration.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/pagemeta/pagemeta/internal/config"
	"github.com/pagemeta/pagemeta/internal/core/engine"
	"github.com/pagemeta/pagemeta/internal/core/store"
	"github.com/pagemeta/pagemeta/internal/observability"
	"github.com/pagemeta/pagemeta/internal/ratelimit"
	"github.com/pagemeta/pagemeta/internal/server/handlers"
	servermw "github.com/pagemeta/pagemeta/internal/server/middleware"
)

// Deps are the components the server exposes over HTTP.
type Deps struct {
	Engine  *engine.Engine
	Limiter *ratelimit.Limiter
	Store   *store.Store
	Version string
}

// Server is the pagemeta HTTP server.
type Server struct {
	router *chi.Mux
	server *http.Server
	cfg    config.ServerConfig
	deps   Deps
	health *handlers.HealthManager
}

// New assembles the router and middleware chain.
func New(cfg config.ServerConfig, deps Deps) *Server {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)

	// RequestID → Metrics → Recovery, so panics are still counted and
	// correlated.
	r.Use(servermw.RequestID)
	r.Use(servermw.RequestMetrics)
	r.Use(servermw.Recovery)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		notFound(w, req, "the requested resource was not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, req, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "the requested method is not allowed for this resource", 0)
	})

	s := &Server{
		router: r,
		cfg:    cfg,
		deps:   deps,
		health: handlers.NewHealthManager(deps.Version),
	}

	if deps.Store != nil {
		s.health.RegisterChecker("store", handlers.HealthCheckFunc(func(ctx context.Context) error {
			return deps.Store.DB.PingContext(ctx)
		}))
	}

	s.registerRoutes()
	return s
}

// Start runs the HTTP server until it fails or is shut down.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	observability.ServerLogger.Info("starting http server",
		zap.String("addr", addr))

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	observability.ServerLogger.Info("shutting down http server")
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the underlying router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
