package ratelimit

import (
	"fmt"
	"time"
)

// ExceededError is returned by Acquire when a provider's bucket is
// exhausted and block_on_limit is set. WaitTime is the estimated time
// until the next token becomes available, for caller-side backoff.
type ExceededError struct {
	Provider string
	WaitTime time.Duration
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("rate limit exceeded for provider %q, retry in %s", e.Provider, e.WaitTime)
}
