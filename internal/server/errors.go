package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/pagemeta/pagemeta/internal/ratelimit"
	"github.com/pagemeta/pagemeta/internal/server/middleware"
)

// ErrorResponse is the JSON error envelope for all API errors.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RetryIn   string `json:"retry_in,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// HandleError maps an error to the envelope and status code. Rate limit
// denials become 429 with a Retry-After header.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	var exceeded *ratelimit.ExceededError
	if errors.As(err, &exceeded) {
		retryIn := exceeded.WaitTime
		if retryIn < 0 {
			retryIn = 0
		}
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(retryIn.Round(time.Second).Seconds())))
		writeError(w, r, http.StatusTooManyRequests, "RATE_LIMITED", exceeded.Error(), retryIn)
		return
	}

	writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error(), 0)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, retryIn time.Duration) {
	detail := ErrorDetail{
		Code:      code,
		Message:   message,
		RequestID: middleware.GetRequestID(r.Context()),
	}
	if retryIn > 0 {
		detail.RetryIn = retryIn.Round(time.Millisecond).String()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: detail})
}

func badRequest(w http.ResponseWriter, r *http.Request, message string) {
	writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", message, 0)
}

func notFound(w http.ResponseWriter, r *http.Request, message string) {
	writeError(w, r, http.StatusNotFound, "NOT_FOUND", message, 0)
}
