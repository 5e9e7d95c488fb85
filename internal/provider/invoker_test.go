package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pagemeta/pagemeta/internal/provider/driver"
	"github.com/pagemeta/pagemeta/internal/ratelimit"
)

func newCompletionServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "gpt-4o-mini", payload["model"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"},"finish_reason":"stop"}]}`))
	}))
}

func newTestInvoker(serverURL string, limiter *ratelimit.Limiter) *Invoker {
	cfg := Config{
		DefaultProvider: "openai-prod",
		Providers: map[string]InstanceConfig{
			"openai-prod": {
				Enabled: true,
				Type:    "openai",
				BaseURL: serverURL,
				APIKey:  "test-key",
				Model:   "gpt-4o-mini",
			},
		},
	}
	return &Invoker{Registry: NewRegistry(cfg), Limiter: limiter}
}

func TestInvokerGatesEveryCall(t *testing.T) {
	server := newCompletionServer(t)
	defer server.Close()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := ratelimit.New(ratelimit.Config{Enabled: true, RequestsPerMinute: 10, BlockOnLimit: true})
	limiter.Clock = func() time.Time { return now }

	inv := newTestInvoker(server.URL, limiter)

	// Burst capacity for 10/min is 5 tokens.
	for i := 0; i < 5; i++ {
		resp, err := inv.Complete(context.Background(), "", &driver.Request{Prompt: "page text"})
		require.NoError(t, err)
		require.Equal(t, "ok", resp.Text)
	}

	_, err := inv.Complete(context.Background(), "", &driver.Request{Prompt: "page text"})

	var exceeded *ratelimit.ExceededError
	require.ErrorAs(t, err, &exceeded)
	require.Equal(t, "openai-prod", exceeded.Provider)
	require.Greater(t, exceeded.WaitTime, time.Duration(0))
}

func TestInvokerNonBlockingDenialBecomesError(t *testing.T) {
	server := newCompletionServer(t)
	defer server.Close()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := ratelimit.New(ratelimit.Config{Enabled: true, RequestsPerMinute: 2, BlockOnLimit: false})
	limiter.Clock = func() time.Time { return now }

	inv := newTestInvoker(server.URL, limiter)

	_, err := inv.Complete(context.Background(), "", &driver.Request{Prompt: "x"})
	require.NoError(t, err)

	_, err = inv.Complete(context.Background(), "", &driver.Request{Prompt: "x"})
	var exceeded *ratelimit.ExceededError
	require.ErrorAs(t, err, &exceeded)
}

func TestInvokerWaitOnLimitTimesOut(t *testing.T) {
	server := newCompletionServer(t)
	defer server.Close()

	limiter := ratelimit.New(ratelimit.Config{Enabled: true, RequestsPerMinute: 2, BlockOnLimit: true})
	inv := newTestInvoker(server.URL, limiter)
	inv.WaitOnLimit = true
	inv.MaxWait = 10 * time.Millisecond

	_, err := inv.Complete(context.Background(), "", &driver.Request{Prompt: "x"})
	require.NoError(t, err)

	start := time.Now()
	_, err = inv.Complete(context.Background(), "", &driver.Request{Prompt: "x"})
	var exceeded *ratelimit.ExceededError
	require.ErrorAs(t, err, &exceeded)
	require.Less(t, time.Since(start), time.Second)
}

func TestInvokerNilLimiterAdmitsEverything(t *testing.T) {
	server := newCompletionServer(t)
	defer server.Close()

	inv := newTestInvoker(server.URL, nil)

	for i := 0; i < 20; i++ {
		_, err := inv.Complete(context.Background(), "", &driver.Request{Prompt: "x"})
		require.NoError(t, err)
	}
}

func TestInvokerDisabledLimiterAdmitsEverything(t *testing.T) {
	server := newCompletionServer(t)
	defer server.Close()

	inv := newTestInvoker(server.URL, ratelimit.New(ratelimit.Config{Enabled: false}))

	for i := 0; i < 20; i++ {
		_, err := inv.Complete(context.Background(), "", &driver.Request{Prompt: "x"})
		require.NoError(t, err)
	}
}
