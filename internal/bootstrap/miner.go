// Package bootstrap mines a pool of quality-scored demonstrations from a
// teacher program, the first stage of a Teleprompter compile run.
package bootstrap

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dspygo/optimizer/internal/contracts"
	"github.com/dspygo/optimizer/internal/obs"
	"github.com/dspygo/optimizer/internal/primitives"
)

// Options configures a Mine call.
type Options struct {
	QualityThreshold  float64
	MaxDemos          int
	Concurrency       int
	PerExampleTimeout time.Duration
}

// DefaultOptions returns the configuration-surface defaults from §6.
func DefaultOptions() Options {
	return Options{
		QualityThreshold:  0.7,
		MaxDemos:          4,
		Concurrency:       20,
		PerExampleTimeout: 60 * time.Second,
	}
}

type scored struct {
	index int
	demo  *primitives.Demonstration
}

// Mine runs teacher on every trainset input, scores the resulting prediction
// against the example's reference outputs with metric, and returns up to
// opts.MaxDemos demonstrations whose quality is at least opts.QualityThreshold
// — sorted by descending quality, ties broken by original trainset order.
//
// A teacher failure (timeout, transport error, malformed/missing output
// fields) drops only that example; Mine never returns an error. If every
// example fails, the returned pool is empty — the caller (Teleprompter)
// decides whether that is fatal.
func Mine(ctx context.Context, teacher primitives.Program, trainset []*primitives.Example, metric contracts.MetricFn, opts Options) []*primitives.Demonstration {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}

	results := make([]*scored, len(trainset))
	sem := make(chan struct{}, opts.Concurrency)
	var wg sync.WaitGroup

	for i, example := range trainset {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, example *primitives.Example) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = mineOne(ctx, teacher, example, metric, opts)
		}(i, example)
	}
	wg.Wait()

	pool := make([]*scored, 0, len(results))
	for i, r := range results {
		if r != nil {
			r.index = i
			pool = append(pool, r)
		}
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].demo.QualityScore() > pool[j].demo.QualityScore()
	})

	if opts.MaxDemos > 0 && len(pool) > opts.MaxDemos {
		pool = pool[:opts.MaxDemos]
	}

	demos := make([]*primitives.Demonstration, len(pool))
	for i, r := range pool {
		demos[i] = r.demo
	}

	obs.Infof("bootstrap: mined %d/%d demonstrations above threshold %.2f", len(demos), len(trainset), opts.QualityThreshold)
	return demos
}

func mineOne(ctx context.Context, teacher primitives.Program, example *primitives.Example, metric contracts.MetricFn, opts Options) *scored {
	callCtx := ctx
	var cancel context.CancelFunc
	if opts.PerExampleTimeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, opts.PerExampleTimeout)
		defer cancel()
	}

	prediction, err := teacher.Forward(callCtx, example.Inputs())
	if err != nil {
		return nil
	}

	if !hasAllOutputFields(example, prediction) {
		return nil
	}

	quality := metric(example, prediction)
	if quality < opts.QualityThreshold {
		return nil
	}

	demoExample := primitives.NewExample(example.Inputs(), prediction.Fields())
	return &scored{demo: primitives.NewDemonstration(demoExample, quality)}
}

// hasAllOutputFields reports whether prediction contains every field the
// example declares as a reference output; a teacher response missing one of
// them is treated as malformed, per §4.1.
func hasAllOutputFields(example *primitives.Example, prediction *primitives.Prediction) bool {
	for field := range example.Outputs() {
		if _, ok := prediction.Get(field); !ok {
			return false
		}
	}
	return true
}
