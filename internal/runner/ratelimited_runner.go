package runner

import (
	"context"

	"github.com/dspygo/optimizer/internal/contracts"
)

// RateLimitedRunner shapes the QPS at which an inner ProgramRunner is
// called, composing with the bounded-concurrency worker pools used by the
// DemonstrationMiner and the optimizer's evaluation workers.
type RateLimitedRunner struct {
	inner   contracts.ProgramRunner
	limiter *RateLimiter
}

// NewRateLimitedRunner wraps inner with a requestsPerMinute cap.
func NewRateLimitedRunner(inner contracts.ProgramRunner, requestsPerMinute int) *RateLimitedRunner {
	return &RateLimitedRunner{inner: inner, limiter: NewRateLimiter(requestsPerMinute)}
}

// Forward implements contracts.ProgramRunner.
func (r *RateLimitedRunner) Forward(ctx context.Context, instruction string, demos []map[string]interface{}, inputs map[string]interface{}, opts contracts.CallOptions) (map[string]interface{}, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.Forward(ctx, instruction, demos, inputs, opts)
}
