package runner

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dspygo/optimizer/internal/contracts"
	"github.com/dspygo/optimizer/internal/runner/cache"
)

// CachedRunner memoizes a ProgramRunner's Forward results in a disk-backed
// cache, so repeated evaluations of the same configuration against the same
// input within one optimize run — or across ContinuousController ticks —
// skip the underlying program call entirely.
type CachedRunner struct {
	inner   contracts.ProgramRunner
	cache   *cache.DiskCache
	ttl     time.Duration
	monitor contracts.Monitor
}

// NewCachedRunner wraps inner with a badger-backed memoization layer.
func NewCachedRunner(inner contracts.ProgramRunner, diskCache *cache.DiskCache, ttl time.Duration) *CachedRunner {
	return &CachedRunner{inner: inner, cache: diskCache, ttl: ttl, monitor: contracts.NoopMonitor{}}
}

// WithMonitor attaches a Monitor that records cache hit/miss events.
func (r *CachedRunner) WithMonitor(monitor contracts.Monitor) *CachedRunner {
	if monitor != nil {
		r.monitor = monitor
	}
	return r
}

type cachedCall struct {
	Instruction string                   `json:"instruction"`
	Demos       []map[string]interface{} `json:"demos"`
	Inputs      map[string]interface{}   `json:"inputs"`
}

// Forward implements contracts.ProgramRunner.
func (r *CachedRunner) Forward(ctx context.Context, instruction string, demos []map[string]interface{}, inputs map[string]interface{}, opts contracts.CallOptions) (map[string]interface{}, error) {
	key, keyErr := cache.GenerateCacheKey(cachedCall{Instruction: instruction, Demos: demos, Inputs: inputs})

	if keyErr == nil {
		if cached, found, err := r.cache.Get(ctx, key); err == nil && found {
			var outputs map[string]interface{}
			if err := json.Unmarshal(cached, &outputs); err == nil {
				r.monitor.RecordCacheHit("lm")
				return outputs, nil
			}
		}
	}
	r.monitor.RecordCacheMiss("lm")

	outputs, err := r.inner.Forward(ctx, instruction, demos, inputs, opts)
	if err != nil {
		return nil, err
	}

	if keyErr == nil {
		if encoded, err := json.Marshal(outputs); err == nil {
			_ = r.cache.Set(ctx, key, encoded, r.ttl)
		}
	}

	return outputs, nil
}
