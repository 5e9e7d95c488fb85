package server

import (
	"github.com/go-chi/chi/v5"

	"github.com/pagemeta/pagemeta/internal/observability"
	"github.com/pagemeta/pagemeta/internal/server/handlers"
)

func (s *Server) registerRoutes() {
	s.router.Get("/health", s.health.HealthHandler)
	s.router.Get("/health/live", s.health.LivenessHandler)
	s.router.Get("/health/ready", s.health.ReadinessHandler)

	s.router.Get("/version", handlers.VersionHandler)
	s.router.Method("GET", "/metrics", observability.MetricsHandler())

	s.router.Route("/v1", func(r chi.Router) {
		r.Post("/metadata", s.handleGenerateMetadata)
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/history", s.handleHistory)
		r.Get("/rate-limits", s.handleRateLimits)
		r.Post("/rate-limits/reset", s.handleRateLimitResetAll)
		r.Post("/rate-limits/{provider}/reset", s.handleRateLimitReset)
	})
}
