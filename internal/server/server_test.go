package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagemeta/pagemeta/internal/config"
	"github.com/pagemeta/pagemeta/internal/core"
	"github.com/pagemeta/pagemeta/internal/core/engine"
	"github.com/pagemeta/pagemeta/internal/provider/prompt"
	"github.com/pagemeta/pagemeta/internal/ratelimit"
)

const samplePage = `<html><head><title>Acme Widgets</title>
<meta name="description" content="Hand-built widgets shipped worldwide.">
</head><body><h1>Acme Widgets</h1>
<p>Widgets built by hand since 1987. Widgets for every workshop, widgets that last decades.</p>
</body></html>`

func newTestServer(t *testing.T, limiter *ratelimit.Limiter) *Server {
	t.Helper()

	prompts, err := prompt.Defaults()
	require.NoError(t, err)

	eng := &engine.Engine{Prompts: prompts}
	return New(config.ServerConfig{Host: "localhost", Port: 0}, Deps{
		Engine:  eng,
		Limiter: limiter,
		Version: "test",
	})
}

func doJSON(t *testing.T, srv *Server, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)

	for _, path := range []string{"/health", "/health/live", "/health/ready"} {
		rec := doJSON(t, srv, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestVersionEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doJSON(t, srv, http.MethodGet, "/version", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "pagemeta", payload["name"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doJSON(t, srv, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGenerateMetadata(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doJSON(t, srv, http.MethodPost, "/v1/metadata", core.GenerateRequest{
		URL:  "https://example.com/widgets",
		HTML: samplePage,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result core.GenerateResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "Acme Widgets", result.Metadata.Title)
	assert.NotEmpty(t, result.Metadata.Description)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestGenerateMetadataRequiresHTML(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doJSON(t, srv, http.MethodPost, "/v1/metadata", core.GenerateRequest{URL: "https://example.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var payload ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "BAD_REQUEST", payload.Error.Code)
	assert.NotEmpty(t, payload.Error.RequestID)
}

func TestGenerateMetadataRejectsMalformedJSON(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/metadata", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doJSON(t, srv, http.MethodPost, "/v1/analyze", map[string]string{
		"url":  "https://example.com/widgets",
		"html": samplePage,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var analysis map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))
	assert.Equal(t, "Acme Widgets", analysis["title"])
}

func TestRateLimitEndpoints(t *testing.T) {
	limiter := ratelimit.New(ratelimit.Config{
		Enabled:           true,
		RequestsPerMinute: 10,
		BlockOnLimit:      true,
	})

	// Register a bucket by consuming from it.
	allowed, err := limiter.Acquire("openai")
	require.NoError(t, err)
	require.True(t, allowed)

	srv := newTestServer(t, limiter)

	rec := doJSON(t, srv, http.MethodGet, "/v1/rate-limits", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listing RateLimitsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.True(t, listing.Enabled)
	require.Len(t, listing.Buckets, 1)
	assert.Equal(t, "openai", listing.Buckets[0].Provider)
	assert.Equal(t, 5, listing.Buckets[0].Capacity)

	rec = doJSON(t, srv, http.MethodPost, "/v1/rate-limits/openai/reset", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/v1/rate-limits/reset", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitsWithoutLimiter(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doJSON(t, srv, http.MethodGet, "/v1/rate-limits", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listing RateLimitsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.False(t, listing.Enabled)
	assert.Empty(t, listing.Buckets)
}

func TestNotFoundEnvelope(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doJSON(t, srv, http.MethodGet, "/nope", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var payload ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "NOT_FOUND", payload.Error.Code)
}

func TestRateLimitErrorMapsTo429(t *testing.T) {
	_ = newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/metadata", nil)
	rec := httptest.NewRecorder()

	HandleError(rec, req, &ratelimit.ExceededError{Provider: "openai", WaitTime: 2 * time.Second})
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))

	var payload ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "RATE_LIMITED", payload.Error.Code)
	assert.Equal(t, "2s", payload.Error.RetryIn)
}
