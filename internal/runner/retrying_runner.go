package runner

import (
	"context"
	"time"

	"github.com/dspygo/optimizer/internal/contracts"
)

// RetryingRunner retries an inner ProgramRunner's Forward call on
// retryable failures (rate limits, 5xx) with RetryConfig's exponential
// backoff, composing the same decorator shape as RateLimitedRunner and
// CachedRunner.
type RetryingRunner struct {
	inner  contracts.ProgramRunner
	config RetryConfig
}

// NewRetryingRunner wraps inner, retrying failed calls per config.
func NewRetryingRunner(inner contracts.ProgramRunner, config RetryConfig) *RetryingRunner {
	return &RetryingRunner{inner: inner, config: config}
}

// Forward implements contracts.ProgramRunner.
func (r *RetryingRunner) Forward(ctx context.Context, instruction string, demos []map[string]interface{}, inputs map[string]interface{}, opts contracts.CallOptions) (map[string]interface{}, error) {
	var lastErr error
	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		outputs, err := r.inner.Forward(ctx, instruction, demos, inputs, opts)
		if err == nil {
			return outputs, nil
		}
		lastErr = err
		if !r.config.ShouldRetryError(err) || attempt == r.config.MaxRetries {
			return nil, err
		}

		wait := r.config.GetWaitDuration(attempt)
		if clientErr, ok := err.(*ClientError); ok && clientErr.RetryAfter > 0 {
			wait = clientErr.RetryAfter
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}
