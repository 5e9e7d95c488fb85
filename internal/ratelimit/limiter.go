// Package ratelimit gates outbound calls to generation providers with one
// token bucket per provider name. It decides per request attempt whether
// to proceed, reject, or wait; it never performs the gated call itself and
// keeps all bucket state in memory for the limiter's lifetime.
package ratelimit

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"
)

const (
	// DefaultRequestsPerMinute is the per-provider budget when the config
	// does not specify one.
	DefaultRequestsPerMinute = 10

	// DefaultMaxWait bounds WaitAndAcquire when callers have no budget of
	// their own.
	DefaultMaxWait = 30 * time.Second
)

// Config carries the limiter policy, normally decoded from the
// rate_limiting.* config keys.
type Config struct {
	Enabled           bool          `mapstructure:"enabled"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	BlockOnLimit      bool          `mapstructure:"block_on_limit"`
	WaitOnLimit       bool          `mapstructure:"wait_on_limit"`
	MaxWait           time.Duration `mapstructure:"max_wait"`
}

// Limiter owns a registry of provider-name keyed token buckets, created
// lazily on first use. Buckets live for the limiter's lifetime: Reset
// refills one but never removes it. Buckets for different providers are
// independent; no cross-provider locking happens.
type Limiter struct {
	enabled           bool
	blockOnLimit      bool
	requestsPerMinute int

	// Clock overrides the time source for bucket refills. Tests inject a
	// fake clock; nil means time.Now.
	Clock func() time.Time

	mu      sync.Mutex
	buckets map[string]*TokenBucket
}

// New builds a limiter from config. A non-positive requests-per-minute
// budget falls back to DefaultRequestsPerMinute.
func New(cfg Config) *Limiter {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = DefaultRequestsPerMinute
	}

	return &Limiter{
		enabled:           cfg.Enabled,
		blockOnLimit:      cfg.BlockOnLimit,
		requestsPerMinute: rpm,
		buckets:           make(map[string]*TokenBucket),
	}
}

// Acquire attempts to take one token for the named provider. It never
// blocks. When the bucket is exhausted it returns an *ExceededError if
// block_on_limit is set, otherwise a plain denial.
func (l *Limiter) Acquire(name string) (bool, error) {
	if !l.enabled {
		return true, nil
	}

	b := l.bucket(name)
	if b.Consume(1) {
		return true, nil
	}

	if l.blockOnLimit {
		return false, &ExceededError{Provider: name, WaitTime: b.TimeUntilNextToken()}
	}
	return false, nil
}

// CanAcquire reports whether a token is available without consuming one.
func (l *Limiter) CanAcquire(name string) bool {
	if !l.enabled {
		return true
	}
	return l.bucket(name).HasTokens(1)
}

// WaitAndAcquire waits up to maxWait for a token, then makes one final
// consume attempt. Timeout, cancellation, and exhaustion all surface as
// false; this path never returns an error. A non-positive maxWait
// degrades to a single non-blocking attempt.
func (l *Limiter) WaitAndAcquire(ctx context.Context, name string, maxWait time.Duration) bool {
	if !l.enabled {
		return true
	}
	if ctx == nil {
		ctx = context.Background()
	}

	b := l.bucket(name)
	deadline := l.now().Add(maxWait)

	for !b.HasTokens(1) {
		remaining := deadline.Sub(l.now())
		if remaining <= 0 {
			break
		}

		sleep := b.TimeUntilNextToken()
		if sleep > remaining {
			sleep = remaining
		}
		if sleep <= 0 {
			break
		}

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}
	}

	return b.Consume(1)
}

// WaitTime returns the estimated wait before the named provider can
// accept another request. Zero when limiting is disabled.
func (l *Limiter) WaitTime(name string) time.Duration {
	if !l.enabled {
		return 0
	}
	return l.bucket(name).TimeUntilNextToken()
}

// AvailableTokens returns the current token count for the named provider,
// or +Inf when limiting is disabled.
func (l *Limiter) AvailableTokens(name string) float64 {
	if !l.enabled {
		return math.Inf(1)
	}
	return l.bucket(name).AvailableTokens()
}

// Reset refills the named provider's bucket. Unknown names are a no-op.
func (l *Limiter) Reset(name string) {
	l.mu.Lock()
	b, ok := l.buckets[name]
	l.mu.Unlock()

	if ok {
		b.Reset()
	}
}

// ResetAll refills every registered bucket.
func (l *Limiter) ResetAll() {
	l.mu.Lock()
	all := make([]*TokenBucket, 0, len(l.buckets))
	for _, b := range l.buckets {
		all = append(all, b)
	}
	l.mu.Unlock()

	for _, b := range all {
		b.Reset()
	}
}

// Enabled reports whether rate limiting is active. Disabled limiters pass
// every request through without touching bucket state.
func (l *Limiter) Enabled() bool {
	return l.enabled
}

// BucketStatus is a read-only view of one provider bucket.
type BucketStatus struct {
	Provider   string        `json:"provider"`
	Capacity   int           `json:"capacity"`
	RefillRate float64       `json:"refill_rate"`
	Available  float64       `json:"available"`
	WaitTime   time.Duration `json:"wait_time"`
}

// Snapshot returns the current state of every registered bucket, sorted
// by provider name.
func (l *Limiter) Snapshot() []BucketStatus {
	l.mu.Lock()
	buckets := make(map[string]*TokenBucket, len(l.buckets))
	for name, b := range l.buckets {
		buckets[name] = b
	}
	l.mu.Unlock()

	names := make([]string, 0, len(buckets))
	for name := range buckets {
		names = append(names, name)
	}
	sort.Strings(names)

	statuses := make([]BucketStatus, 0, len(names))
	for _, name := range names {
		b := buckets[name]
		statuses = append(statuses, BucketStatus{
			Provider:   name,
			Capacity:   b.Capacity(),
			RefillRate: b.RefillRate(),
			Available:  b.AvailableTokens(),
			WaitTime:   b.TimeUntilNextToken(),
		})
	}
	return statuses
}

// bucket returns the named provider's bucket, creating it on first use.
// Creation is idempotent under concurrent first use: one instance wins.
func (l *Limiter) bucket(name string) *TokenBucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[name]
	if !ok {
		b = NewTokenBucket(l.bucketCapacity(), l.bucketRefillRate(), l.now)
		l.buckets[name] = b
	}
	return b
}

// bucketCapacity grants half the per-minute budget as burst allowance,
// never below one token.
func (l *Limiter) bucketCapacity() int {
	c := l.requestsPerMinute / 2
	if c < 1 {
		c = 1
	}
	return c
}

// bucketRefillRate converts the per-minute budget to tokens per second,
// rounded up so budgets under one per second still refill a whole token
// each second. The sustained rate can therefore exceed the configured
// per-minute figure.
func (l *Limiter) bucketRefillRate() float64 {
	return math.Ceil(float64(l.requestsPerMinute) / 60.0)
}

func (l *Limiter) now() time.Time {
	if l.Clock != nil {
		return l.Clock()
	}
	return time.Now()
}
