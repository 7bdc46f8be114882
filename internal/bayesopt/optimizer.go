// Package bayesopt drives the seed -> fit -> propose -> evaluate -> repeat
// search loop over (instruction, demo-subset) configurations.
package bayesopt

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/dspygo/optimizer/internal/acquisition"
	"github.com/dspygo/optimizer/internal/obs"
	"github.com/dspygo/optimizer/internal/primitives"
	"github.com/dspygo/optimizer/internal/surrogate"
)

// ObjectiveFn evaluates a single Configuration and returns its score. It is
// the only suspension point in the optimizer: every call is the result of
// installing a Configuration into a program clone and measuring it.
type ObjectiveFn func(ctx context.Context, config primitives.Configuration) (float64, error)

// Options configures one Optimize call. Acquisition defaults to
// ExpectedImprovement and ExplorationWeight to 2.0 when unset.
type Options struct {
	NumInitialSamples   int
	MaxIterations       int
	ConvergencePatience int
	Acquisition         acquisition.Kind
	ExplorationWeight   float64
	Concurrency         int
	PerCallTimeout      time.Duration
	OverallTimeout      time.Duration
	CandidatePoolSize   int

	// Rand, if set, makes the loop's random seeding and candidate
	// generation reproducible across runs. Defaults to a fixed seed.
	Rand *rand.Rand
}

// Result is what Optimize returns on success (including partial success
// after an overall timeout trips).
type Result struct {
	BestConfiguration    primitives.Configuration
	BestScore            float64
	Observations         []primitives.Observation
	ConvergenceIteration int
	Stats                map[string]interface{}
}

const defaultCandidatePoolSize = 20

// Optimize runs the loop described in §4.4 against space, calling objective
// for each proposed Configuration. Returns primitives.ErrNoCandidates if
// space is empty, or primitives.ErrNoInitialObservations if every seed
// evaluation failed.
func Optimize(ctx context.Context, space *primitives.SearchSpace, objective ObjectiveFn, opts Options) (*Result, error) {
	if space.Empty() {
		return nil, primitives.ErrNoCandidates
	}

	opts = withDefaults(opts)

	overallCtx := ctx
	if opts.OverallTimeout > 0 {
		var cancel context.CancelFunc
		overallCtx, cancel = context.WithTimeout(ctx, opts.OverallTimeout)
		defer cancel()
	}

	seen := NewSeenSet(0)
	clock := &logicalClock{base: time.Now()}

	observations, err := runSeeds(overallCtx, space, objective, opts, seen, clock)
	if err != nil {
		return nil, err
	}
	if len(observations) == 0 {
		return nil, primitives.ErrNoInitialObservations
	}

	best := bestOf(observations)
	convergenceCounter := 0
	convergenceIteration := -1
	iterationsRun := 0

	for iter := 0; iter < opts.MaxIterations; iter++ {
		select {
		case <-overallCtx.Done():
			obs.Warnf("bayesopt: overall timeout tripped after %d iterations, returning partial result", iter)
			return buildResult(best, observations, convergenceIteration, iterationsRun), nil
		default:
		}

		model := surrogate.Fit(observations)
		candidates := generateCandidatePool(space, seen, opts.Rand, opts.CandidatePoolSize)
		if len(candidates) == 0 {
			obs.Infof("bayesopt: candidate pool exhausted at iteration %d, halting", iter)
			break
		}

		chosen := pickBestCandidate(candidates, model, opts.Acquisition, best.Score, opts.ExplorationWeight)
		seen.Add(chosen)
		iterationsRun++

		callCtx := overallCtx
		var cancel context.CancelFunc
		if opts.PerCallTimeout > 0 {
			callCtx, cancel = context.WithTimeout(overallCtx, opts.PerCallTimeout)
		}
		score, evalErr := objective(callCtx, chosen)
		if cancel != nil {
			cancel()
		}

		if evalErr != nil {
			convergenceCounter++
		} else {
			newObs := primitives.NewObservation(chosen, score, clock.next())
			observations = append(observations, newObs)
			if score > best.Score {
				best = newObs
				convergenceCounter = 0
			} else {
				convergenceCounter++
			}
		}

		if convergenceCounter >= opts.ConvergencePatience {
			convergenceIteration = iter
			break
		}
	}

	return buildResult(best, observations, convergenceIteration, iterationsRun), nil
}

func withDefaults(opts Options) Options {
	if opts.Acquisition == "" {
		opts.Acquisition = acquisition.ExpectedImprovement
	}
	if opts.ExplorationWeight == 0 {
		opts.ExplorationWeight = 2.0
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.CandidatePoolSize <= 0 {
		opts.CandidatePoolSize = defaultCandidatePoolSize
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(1))
	}
	return opts
}

type seedResult struct {
	index       int
	config      primitives.Configuration
	score       float64
	err         error
	completedAt time.Time
}

// runSeeds draws opts.NumInitialSamples random configurations and evaluates
// them in parallel, bounded by opts.Concurrency. Successful evaluations are
// inserted into the observation log sorted by completion order (then seed
// index for ties), each stamped with a strictly increasing logical
// timestamp, per §5's ordering guarantee.
func runSeeds(ctx context.Context, space *primitives.SearchSpace, objective ObjectiveFn, opts Options, seen *SeenSet, clock *logicalClock) ([]primitives.Observation, error) {
	seeds := make([]primitives.Configuration, opts.NumInitialSamples)
	for i := range seeds {
		seeds[i] = randomConfiguration(space, opts.Rand)
	}

	results := make([]seedResult, len(seeds))
	sem := make(chan struct{}, opts.Concurrency)
	var wg sync.WaitGroup

	for i, config := range seeds {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, config primitives.Configuration) {
			defer wg.Done()
			defer func() { <-sem }()

			callCtx := ctx
			var cancel context.CancelFunc
			if opts.PerCallTimeout > 0 {
				callCtx, cancel = context.WithTimeout(ctx, opts.PerCallTimeout)
				defer cancel()
			}

			score, err := objective(callCtx, config)
			results[i] = seedResult{index: i, config: config, score: score, err: err, completedAt: time.Now()}
		}(i, config)
	}
	wg.Wait()

	successes := make([]seedResult, 0, len(results))
	for _, r := range results {
		if r.err == nil {
			successes = append(successes, r)
		}
	}

	sort.SliceStable(successes, func(i, j int) bool {
		if successes[i].completedAt.Equal(successes[j].completedAt) {
			return successes[i].index < successes[j].index
		}
		return successes[i].completedAt.Before(successes[j].completedAt)
	})

	observations := make([]primitives.Observation, 0, len(successes))
	for _, r := range successes {
		observations = append(observations, primitives.NewObservation(r.config, r.score, clock.next()))
		seen.Add(r.config)
	}

	obs.Infof("bayesopt: %d/%d seed evaluations succeeded", len(observations), len(seeds))
	return observations, nil
}

// logicalClock hands out strictly increasing timestamps regardless of the
// wall clock's actual resolution, so the observation log's monotonicity
// invariant holds even when evaluations complete faster than the clock can
// distinguish.
type logicalClock struct {
	base    time.Time
	counter int
}

func (c *logicalClock) next() time.Time {
	t := c.base.Add(time.Duration(c.counter) * time.Nanosecond)
	c.counter++
	return t
}

func bestOf(observations []primitives.Observation) primitives.Observation {
	best := observations[0]
	for _, o := range observations[1:] {
		if o.Score > best.Score {
			best = o
		}
	}
	return best
}

func pickBestCandidate(candidates []primitives.Configuration, model *surrogate.Model, kind acquisition.Kind, bestScore, explorationWeight float64) primitives.Configuration {
	bestIdx := 0
	bestAcqScore := math.Inf(-1)
	for i, c := range candidates {
		mean, variance := model.Predict(c)
		acqScore := acquisition.Score(kind, mean, variance, bestScore, explorationWeight)
		if acqScore > bestAcqScore {
			bestAcqScore = acqScore
			bestIdx = i
		}
	}
	return candidates[bestIdx]
}

func buildResult(best primitives.Observation, observations []primitives.Observation, convergenceIteration, iterationsRun int) *Result {
	return &Result{
		BestConfiguration:    best.Configuration,
		BestScore:            best.Score,
		Observations:         observations,
		ConvergenceIteration: convergenceIteration,
		Stats: map[string]interface{}{
			"total_observations": len(observations),
			"iterations_run":     iterationsRun,
		},
	}
}

// randomConfiguration draws a random instruction and a random demo subset of
// a uniformly random size in [0, min(max_demos, |demos|)], without
// replacement, per §4.4 step 1.
func randomConfiguration(space *primitives.SearchSpace, rng *rand.Rand) primitives.Configuration {
	instruction := space.Instructions[rng.Intn(len(space.Instructions))]

	maxSize := space.MaxDemosPerConfig
	if maxSize > len(space.Demos) {
		maxSize = len(space.Demos)
	}

	size := 0
	if maxSize > 0 {
		size = rng.Intn(maxSize + 1)
	}

	demoIDs := sampleDemoIDs(space.Demos, size, rng)
	return BuildConfiguration(instruction.InstructionID(), demoIDs, space.MaxDemosPerConfig)
}

func sampleDemoIDs(demos []*primitives.Demonstration, size int, rng *rand.Rand) []string {
	if size == 0 {
		return nil
	}
	perm := rng.Perm(len(demos))
	ids := make([]string, size)
	for i := 0; i < size; i++ {
		ids[i] = demos[perm[i]].DemoID()
	}
	return ids
}

// generateCandidatePool draws up to size fresh, distinct Configurations not
// already in seen, per §4.4 step 2b. Sampling stops early (returning a
// shorter or empty pool) once the space has been exhausted of unseen
// configurations.
func generateCandidatePool(space *primitives.SearchSpace, seen *SeenSet, rng *rand.Rand, size int) []primitives.Configuration {
	withinPool := make(map[string]bool, size)
	pool := make([]primitives.Configuration, 0, size)

	maxAttempts := size * 20
	for attempts := 0; attempts < maxAttempts && len(pool) < size; attempts++ {
		candidate := randomConfiguration(space, rng)
		key := candidate.Key()
		if seen.Contains(candidate) || withinPool[key] {
			continue
		}
		withinPool[key] = true
		pool = append(pool, candidate)
	}
	return pool
}
