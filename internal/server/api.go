package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pagemeta/pagemeta/internal/analyzer"
	"github.com/pagemeta/pagemeta/internal/core"
	"github.com/pagemeta/pagemeta/internal/core/store"
	"github.com/pagemeta/pagemeta/internal/observability"
	"github.com/pagemeta/pagemeta/internal/ratelimit"
)

// maxRequestBody caps inbound request bodies at 4 MiB; page markup
// beyond that is not worth analyzing anyway.
const maxRequestBody = 4 << 20

// handleGenerateMetadata handles POST /v1/metadata.
func (s *Server) handleGenerateMetadata(w http.ResponseWriter, r *http.Request) {
	if s.deps.Engine == nil {
		writeError(w, r, http.StatusServiceUnavailable, "UNAVAILABLE", "metadata engine is not configured", 0)
		return
	}

	var req core.GenerateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	if strings.TrimSpace(req.HTML) == "" {
		badRequest(w, r, "html is required")
		return
	}

	result, err := s.deps.Engine.Generate(r.Context(), req)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	if s.deps.Store != nil {
		entry := historyEntryFor(req, result)
		if err := s.deps.Store.RecordGeneration(r.Context(), entry); err != nil {
			observability.ServerLogger.Warn("recording generation history failed", zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, result)
}

// handleAnalyze handles POST /v1/analyze. It runs the page analysis
// without touching any provider.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL  string `json:"url,omitempty"`
		HTML string `json:"html"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	if strings.TrimSpace(req.HTML) == "" {
		badRequest(w, r, "html is required")
		return
	}

	writeJSON(w, http.StatusOK, analyzer.Analyze(req.HTML, req.URL))
}

// handleHistory handles GET /v1/history.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.deps.Store == nil {
		writeError(w, r, http.StatusServiceUnavailable, "UNAVAILABLE", "store is not configured", 0)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			badRequest(w, r, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	entries, err := s.deps.Store.History(r.Context(), limit)
	if err != nil {
		HandleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// RateLimitsResponse is the rate limiter admin payload.
type RateLimitsResponse struct {
	Enabled bool                     `json:"enabled"`
	Buckets []ratelimit.BucketStatus `json:"buckets"`
}

// handleRateLimits handles GET /v1/rate-limits.
func (s *Server) handleRateLimits(w http.ResponseWriter, r *http.Request) {
	limiter := s.deps.Limiter
	if limiter == nil {
		writeJSON(w, http.StatusOK, RateLimitsResponse{Enabled: false, Buckets: []ratelimit.BucketStatus{}})
		return
	}

	buckets := limiter.Snapshot()
	if buckets == nil {
		buckets = []ratelimit.BucketStatus{}
	}
	writeJSON(w, http.StatusOK, RateLimitsResponse{Enabled: limiter.Enabled(), Buckets: buckets})
}

// handleRateLimitReset handles POST /v1/rate-limits/{provider}/reset.
// Resetting an unknown provider succeeds; there is nothing to restore.
func (s *Server) handleRateLimitReset(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	if strings.TrimSpace(provider) == "" {
		badRequest(w, r, "provider is required")
		return
	}

	if s.deps.Limiter != nil {
		s.deps.Limiter.Reset(provider)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset", "provider": provider})
}

// handleRateLimitResetAll handles POST /v1/rate-limits/reset.
func (s *Server) handleRateLimitResetAll(w http.ResponseWriter, r *http.Request) {
	if s.deps.Limiter != nil {
		s.deps.Limiter.ResetAll()
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func historyEntryFor(req core.GenerateRequest, result *core.GenerateResult) store.HistoryEntry {
	entry := store.HistoryEntry{
		URL:        firstNonEmpty(req.URL, "inline"),
		Provider:   result.Provider,
		PromptSlug: req.Prompt,
		Cached:     result.Cached,
		CreatedAt:  time.Now().UTC(),
	}
	if result.Metadata != nil {
		entry.Title = result.Metadata.Title
	}
	return entry
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
