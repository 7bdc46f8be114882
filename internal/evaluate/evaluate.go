// Package evaluate scores a program against a dataset using a metric.
package evaluate

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dspygo/optimizer/internal/contracts"
	"github.com/dspygo/optimizer/internal/primitives"
)

// Evaluator evaluates a program on a dataset using a metric.
type Evaluator struct {
	metric          contracts.MetricFn
	numThreads      int
	perCallTimeout  time.Duration
	displayProgress bool
}

// NewEvaluator creates a new evaluator. The metric is wrapped in
// contracts.SafeMetric so a panicking caller-supplied metric degrades to a
// score of 0 instead of aborting the whole evaluation.
func NewEvaluator(metric contracts.MetricFn) *Evaluator {
	return &Evaluator{
		metric:          contracts.SafeMetric(metric),
		numThreads:      1,
		displayProgress: true,
	}
}

// WithNumThreads sets the number of parallel evaluation threads.
func (e *Evaluator) WithNumThreads(n int) *Evaluator {
	e.numThreads = n
	return e
}

// WithPerCallTimeout bounds each example's forward pass with its own
// context deadline, independent of the overall evaluation context. Zero
// means no per-call deadline.
func (e *Evaluator) WithPerCallTimeout(d time.Duration) *Evaluator {
	e.perCallTimeout = d
	return e
}

// WithDisplayProgress sets whether to display progress.
func (e *Evaluator) WithDisplayProgress(display bool) *Evaluator {
	e.displayProgress = display
	return e
}

// EvaluationResult contains the results of an evaluation.
type EvaluationResult struct {
	// TotalScore is the sum of all scores
	TotalScore float64

	// Count is the number of examples evaluated
	Count int

	// AverageScore is the average score across all examples
	AverageScore float64

	// Scores contains individual scores for each example
	Scores []float64

	// Failures counts examples whose forward pass itself failed (as opposed
	// to merely scoring low) — folded into a score of 0 per the failure
	// taxonomy, never surfaced as a Go error.
	Failures int
}

// Evaluate runs the evaluation on a dataset sequentially.
func (e *Evaluator) Evaluate(ctx context.Context, program primitives.Program, dataset []*primitives.Example) (*EvaluationResult, error) {
	if len(dataset) == 0 {
		return nil, fmt.Errorf("dataset is empty")
	}

	result := &EvaluationResult{
		Scores: make([]float64, len(dataset)),
	}

	for i, example := range dataset {
		score, failed := e.scoreOne(ctx, program, example)
		result.Scores[i] = score
		result.TotalScore += score
		result.Count++
		if failed {
			result.Failures++
		}

		if e.displayProgress && (i+1)%10 == 0 {
			fmt.Printf("Evaluated %d/%d examples\n", i+1, len(dataset))
		}
	}

	result.AverageScore = result.TotalScore / float64(result.Count)

	return result, nil
}

// EvaluateParallel runs the evaluation with a bounded worker pool.
func (e *Evaluator) EvaluateParallel(ctx context.Context, program primitives.Program, dataset []*primitives.Example) (*EvaluationResult, error) {
	if len(dataset) == 0 {
		return nil, fmt.Errorf("dataset is empty")
	}

	result := &EvaluationResult{
		Scores: make([]float64, len(dataset)),
	}

	type job struct {
		index   int
		example *primitives.Example
	}

	jobs := make(chan job, len(dataset))
	var failures int64

	numWorkers := e.numThreads
	if numWorkers < 1 {
		numWorkers = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				score, failed := e.scoreOne(ctx, program, j.example)
				result.Scores[j.index] = score
				if failed {
					atomic.AddInt64(&failures, 1)
				}
			}
		}()
	}

	for i, example := range dataset {
		jobs <- job{index: i, example: example}
	}
	close(jobs)
	wg.Wait()

	for _, score := range result.Scores {
		result.TotalScore += score
		result.Count++
	}
	result.Failures = int(failures)

	result.AverageScore = result.TotalScore / float64(result.Count)

	return result, nil
}

// scoreOne runs a program's forward pass on a single example and scores it.
// A forward-pass failure is a 0 score plus a counted Failure, not a
// propagated error — per-example failures never cross this boundary as Go
// errors.
func (e *Evaluator) scoreOne(ctx context.Context, program primitives.Program, example *primitives.Example) (score float64, failed bool) {
	if e.perCallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.perCallTimeout)
		defer cancel()
	}

	prediction, err := program.Forward(ctx, example.Inputs())
	if err != nil {
		return 0.0, true
	}
	return e.metric(example, prediction), false
}
