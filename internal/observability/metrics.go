package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the process-wide metrics registry. Using our own registry
// instead of the default keeps test processes independent.
var Registry = prometheus.NewRegistry()

var (
	// HTTPRequestsTotal counts handled HTTP requests.
	HTTPRequestsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagemeta_http_requests_total",
			Help: "HTTP requests handled, by method, route, and status code.",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration observes request latency.
	HTTPRequestDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pagemeta_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// AdmissionDecisionsTotal counts rate limiter decisions per provider.
	// decision is one of allowed, denied, waited.
	AdmissionDecisionsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagemeta_admission_decisions_total",
			Help: "Rate limiter admission decisions, by provider and decision.",
		},
		[]string{"provider", "decision"},
	)

	// ProviderRequestsTotal counts outbound generation requests.
	ProviderRequestsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagemeta_provider_requests_total",
			Help: "Outbound provider requests, by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)
)

// MetricsHandler serves the registry in Prometheus exposition format.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
