package provider

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/pagemeta/pagemeta/internal/observability"
	"github.com/pagemeta/pagemeta/internal/provider/driver"
	"github.com/pagemeta/pagemeta/internal/ratelimit"
)

// Invoker resolves a provider and runs one completion through it, asking
// the rate limiter for admission immediately before the outbound call. It
// performs no retries; callers apply their own backoff using the wait time
// carried by ratelimit.ExceededError.
type Invoker struct {
	Registry *Registry
	Limiter  *ratelimit.Limiter
	Logger   *zap.Logger

	// WaitOnLimit switches from fail-fast Acquire to the cooperative
	// WaitAndAcquire path, bounded by MaxWait.
	WaitOnLimit bool
	MaxWait     time.Duration
}

// Complete resolves providerName (empty means the configured default),
// acquires admission, and sends the request. The request's Model is filled
// from the instance config when unset.
func (i *Invoker) Complete(ctx context.Context, providerName string, req *driver.Request) (*driver.Response, error) {
	resolved, err := i.Registry.Resolve(providerName)
	if err != nil {
		return nil, err
	}

	if err := i.admit(ctx, resolved.ID); err != nil {
		return nil, err
	}

	if req.Model == "" {
		req.Model = resolved.Model
	}

	resp, err := resolved.Driver.Complete(ctx, req)
	if err != nil {
		observability.ProviderRequestsTotal.WithLabelValues(resolved.ID, "error").Inc()
		i.logger().Warn("provider request failed",
			zap.String("provider", resolved.ID),
			zap.Error(err))
		return nil, err
	}

	observability.ProviderRequestsTotal.WithLabelValues(resolved.ID, "ok").Inc()
	return resp, nil
}

// admit consults the rate limiter. A nil limiter admits everything.
func (i *Invoker) admit(ctx context.Context, name string) error {
	if i.Limiter == nil {
		return nil
	}

	if i.WaitOnLimit {
		maxWait := i.MaxWait
		if maxWait <= 0 {
			maxWait = ratelimit.DefaultMaxWait
		}
		if i.Limiter.WaitAndAcquire(ctx, name, maxWait) {
			observability.AdmissionDecisionsTotal.WithLabelValues(name, "waited").Inc()
			return nil
		}
		observability.AdmissionDecisionsTotal.WithLabelValues(name, "denied").Inc()
		return &ratelimit.ExceededError{Provider: name, WaitTime: i.Limiter.WaitTime(name)}
	}

	allowed, err := i.Limiter.Acquire(name)
	if err != nil {
		observability.AdmissionDecisionsTotal.WithLabelValues(name, "denied").Inc()
		return err
	}
	if !allowed {
		observability.AdmissionDecisionsTotal.WithLabelValues(name, "denied").Inc()
		return &ratelimit.ExceededError{Provider: name, WaitTime: i.Limiter.WaitTime(name)}
	}

	observability.AdmissionDecisionsTotal.WithLabelValues(name, "allowed").Inc()
	return nil
}

func (i *Invoker) logger() *zap.Logger {
	if i.Logger != nil {
		return i.Logger
	}
	return zap.NewNop()
}
