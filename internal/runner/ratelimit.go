// Package runner provides rate limiting utilities for program runners.
package runner

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter bounds the QPS at which a ProgramRunner may be called,
// wrapping golang.org/x/time/rate instead of a hand-rolled token bucket.
// requestsPerMinute <= 0 means no limiting.
type RateLimiter struct {
	mu                sync.RWMutex
	requestsPerMinute int
	limiter           *rate.Limiter
}

// NewRateLimiter creates a new rate limiter with the specified requests per minute.
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	rl := &RateLimiter{}
	rl.SetRate(requestsPerMinute)
	return rl
}

// Wait blocks until a request may proceed or the context is cancelled. When
// the wait would outlast ctx's deadline, it returns context.DeadlineExceeded
// at once.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	rl.mu.RLock()
	limiter := rl.limiter
	rl.mu.RUnlock()

	if limiter == nil {
		return nil
	}
	if err := limiter.Wait(ctx); err != nil {
		if _, hasDeadline := ctx.Deadline(); hasDeadline && ctx.Err() == nil {
			return context.DeadlineExceeded
		}
		return err
	}
	return nil
}

// Stop releases the rate limiter's resources. golang.org/x/time/rate needs
// no background goroutine to stop, but Stop is kept for API compatibility
// with callers that defer it.
func (rl *RateLimiter) Stop() {}

// SetRate updates the rate limit.
func (rl *RateLimiter) SetRate(requestsPerMinute int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.requestsPerMinute = requestsPerMinute
	if requestsPerMinute <= 0 {
		rl.limiter = nil
		return
	}

	ratePerSecond := rate.Limit(float64(requestsPerMinute) / 60.0)
	rl.limiter = rate.NewLimiter(ratePerSecond, requestsPerMinute)
}

// RequestsPerMinute returns the current rate limit.
func (rl *RateLimiter) RequestsPerMinute() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return rl.requestsPerMinute
}
