package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dspygo/optimizer/internal/contracts"
)

type failNTimesRunner struct {
	failures int
	calls    int
	err      error
}

func (f *failNTimesRunner) Forward(ctx context.Context, instruction string, demos []map[string]interface{}, inputs map[string]interface{}, opts contracts.CallOptions) (map[string]interface{}, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}
	return map[string]interface{}{"answer": "ok"}, nil
}

func TestRetryingRunnerRetriesRetryableErrors(t *testing.T) {
	inner := &failNTimesRunner{failures: 2, err: NewClientError(503, "busy", "", true)}
	cfg := DefaultRetryConfig()
	cfg.InitialWait = time.Millisecond
	cfg.MaxWait = 5 * time.Millisecond
	r := NewRetryingRunner(inner, cfg)

	outputs, err := r.Forward(context.Background(), "", nil, nil, contracts.CallOptions{})
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if outputs["answer"] != "ok" {
		t.Errorf("outputs = %v, want answer=ok", outputs)
	}
	if inner.calls != 3 {
		t.Errorf("calls = %d, want 3 (2 failures + 1 success)", inner.calls)
	}
}

func TestRetryingRunnerGivesUpOnNonRetryableError(t *testing.T) {
	inner := &failNTimesRunner{failures: 1, err: NewClientError(400, "bad request", "invalid_request_error", false)}
	r := NewRetryingRunner(inner, DefaultRetryConfig())

	_, err := r.Forward(context.Background(), "", nil, nil, contracts.CallOptions{})
	if err == nil {
		t.Fatal("expected the non-retryable error to surface immediately")
	}
	if inner.calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on non-retryable error)", inner.calls)
	}
}

func TestRetryingRunnerExhaustsMaxRetries(t *testing.T) {
	sentinel := errors.New("always fails")
	inner := &failNTimesRunner{failures: 100, err: NewClientError(500, sentinel.Error(), "", true)}
	cfg := RetryConfig{MaxRetries: 2, InitialWait: time.Millisecond, MaxWait: time.Millisecond, Multiplier: 2,
		ShouldRetry: func(error) bool { return true }}
	r := NewRetryingRunner(inner, cfg)

	_, err := r.Forward(context.Background(), "", nil, nil, contracts.CallOptions{})
	if err == nil {
		t.Fatal("expected an error after exhausting retries")
	}
	if inner.calls != 3 {
		t.Errorf("calls = %d, want 3 (1 initial + 2 retries)", inner.calls)
	}
}
