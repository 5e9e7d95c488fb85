package ratelimit

import (
	"math"
	"sync"
	"time"
)

// InfDuration is returned by TimeUntilNextToken when the bucket can never
// refill (zero refill rate with less than one token remaining).
const InfDuration = time.Duration(math.MaxInt64)

// TokenBucket is a continuous-refill token bucket. Fractional tokens
// accumulate smoothly with elapsed time, so sub-request-per-second rates
// work without discretization. Safe for concurrent use.
type TokenBucket struct {
	mu         sync.Mutex
	capacity   int
	refillRate float64 // tokens per second
	tokens     float64
	lastRefill time.Time
	now        func() time.Time
}

// NewTokenBucket returns a full bucket. Capacity values below 1 are raised
// to 1 and negative refill rates are clamped to 0. A nil clock uses
// time.Now.
func NewTokenBucket(capacity int, refillRate float64, clock func() time.Time) *TokenBucket {
	if capacity < 1 {
		capacity = 1
	}
	if refillRate < 0 {
		refillRate = 0
	}
	if clock == nil {
		clock = time.Now
	}

	return &TokenBucket{
		capacity:   capacity,
		refillRate: refillRate,
		tokens:     float64(capacity),
		lastRefill: clock(),
		now:        clock,
	}
}

// refill credits tokens for elapsed time, clamped at capacity. The caller
// must hold mu. lastRefill only advances when credit was actually added,
// so repeated calls with no real time passage are idempotent.
func (b *TokenBucket) refill() {
	now := b.now()
	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed <= 0 {
		return
	}

	credit := elapsed * b.refillRate
	if credit <= 0 {
		return
	}

	b.tokens = math.Min(float64(b.capacity), b.tokens+credit)
	b.lastRefill = now
}

// Consume takes n tokens if available. On failure the bucket is unchanged.
func (b *TokenBucket) Consume(n float64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill()
	if b.tokens < n {
		return false
	}
	b.tokens -= n
	return true
}

// HasTokens reports whether n tokens are currently available. It refills
// first so an immediately-following Consume sees the same state.
func (b *TokenBucket) HasTokens(n float64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill()
	return b.tokens >= n
}

// AvailableTokens returns the current token count after refill.
func (b *TokenBucket) AvailableTokens() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill()
	return b.tokens
}

// TimeUntilNextToken returns how long until one full token is available:
// 0 when a token is ready now, InfDuration when the bucket can never
// refill.
func (b *TokenBucket) TimeUntilNextToken() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill()
	if b.tokens >= 1 {
		return 0
	}
	if b.refillRate <= 0 {
		return InfDuration
	}

	seconds := (1 - b.tokens) / b.refillRate
	return time.Duration(seconds * float64(time.Second))
}

// Reset restores the bucket to full capacity.
func (b *TokenBucket) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tokens = float64(b.capacity)
	b.lastRefill = b.now()
}

// Capacity returns the bucket's burst capacity.
func (b *TokenBucket) Capacity() int {
	return b.capacity
}

// RefillRate returns tokens added per second.
func (b *TokenBucket) RefillRate() float64 {
	return b.refillRate
}
