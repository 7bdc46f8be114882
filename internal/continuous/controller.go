// Package continuous implements a long-lived, self re-optimizing program
// supervisor: a single actor goroutine owning one program and its
// optimization schedule, driven by tickers and commands rather than by a
// caller polling internal state.
package continuous

import (
	"context"
	"fmt"
	"time"

	"github.com/dspygo/optimizer/internal/contracts"
	"github.com/dspygo/optimizer/internal/evaluate"
	"github.com/dspygo/optimizer/internal/obs"
	"github.com/dspygo/optimizer/internal/primitives"
	"github.com/dspygo/optimizer/internal/teleprompt"
)

const retryBaseBackoff = time.Minute

// Controller owns the actor loop. Every field here is touched only from
// run's goroutine; external callers interact exclusively through a Handle.
type Controller struct {
	teleprompter *teleprompt.Teleprompter
	teleOpts     teleprompt.Options
	teacher      primitives.Program
	trainset     []*primitives.Example
	descriptor   contracts.Describer

	cmds chan command
	done chan struct{}

	st state
}

// Start launches the controller goroutine and returns a Handle to it.
// program is the initial current_program and also the original_program
// baseline §4.6's state names.
func Start(ctx context.Context, program, teacher primitives.Program, trainset []*primitives.Example, descriptor contracts.Describer, metric contracts.MetricFn, cfg Config) *Handle {
	cfg.Metric = metric
	if cfg.Monitor == nil {
		cfg.Monitor = contracts.NoopMonitor{}
	}
	if cfg.Events == nil {
		cfg.Events = contracts.NoopEventSink{}
	}

	c := &Controller{
		teleprompter: teleprompt.New(metric),
		teleOpts:     teleprompt.DefaultOptions(),
		teacher:      teacher,
		trainset:     trainset,
		descriptor:   descriptor,
		cmds:         make(chan command),
		done:         make(chan struct{}),
		st: state{
			currentProgram:  program,
			originalProgram: program,
			status:          StatusInitialized,
			config:          cfg,
		},
	}
	c.teleOpts.NumInstructionCandidates = cfg.NumInstructionCandidates
	c.teleOpts.BayesOpt.MaxIterations = cfg.MaxIterations

	go c.run(ctx)
	return &Handle{cmds: c.cmds, done: c.done}
}

func (c *Controller) run(ctx context.Context) {
	defer close(c.done)
	c.st.status = StatusRunning

	qualityTimer := time.NewTimer(c.st.config.QualityCheckInterval)
	defer qualityTimer.Stop()
	optTimer := time.NewTimer(c.st.config.OptimizationInterval)
	defer optTimer.Stop()
	retryTimer := time.NewTimer(time.Hour)
	retryTimer.Stop()
	defer retryTimer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case cmd := <-c.cmds:
			switch cmd.kind {
			case cmdGetStatus:
				cmd.reply <- c.st.snapshot()
			case cmdUpdateConfig:
				if cmd.configPatch != nil {
					c.st.config = cmd.configPatch(c.st.config)
				}
			case cmdTriggerOptimization:
				c.attemptOptimization(ctx, "manual", optTimer, retryTimer)
			case cmdStop:
				return
			}

		case <-qualityTimer.C:
			c.runQualityCheck(ctx, optTimer, retryTimer)
			qualityTimer.Reset(c.st.config.QualityCheckInterval)

		case <-optTimer.C:
			c.attemptOptimization(ctx, "scheduled", optTimer, retryTimer)

		case <-retryTimer.C:
			c.attemptOptimization(ctx, "retry", optTimer, retryTimer)
		}
	}
}

// runQualityCheck implements §4.6's quality-check tick: sample up to
// sampleSize validation examples, compute the mean score, append to
// history, and trigger an immediate optimization if any of the three
// named conditions hold.
func (c *Controller) runQualityCheck(ctx context.Context, optTimer, retryTimer *time.Timer) {
	now := time.Now()
	c.st.lastQualityCheckAt = now

	sample := c.st.config.ValidationSet
	if len(sample) > sampleSize {
		sample = sample[:sampleSize]
	}
	if len(sample) == 0 || c.st.config.Metric == nil {
		return
	}

	result, err := evaluate.NewEvaluator(c.st.config.Metric).WithDisplayProgress(false).Evaluate(ctx, c.st.currentProgram, sample)
	if err != nil {
		return
	}
	score := result.AverageScore
	c.st.recordQuality(score, now)

	stale := !c.st.lastOptimizationAt.IsZero() && now.Sub(c.st.lastOptimizationAt) > staleAfter
	trigger := score < c.st.config.QualityThreshold ||
		c.st.lastNScoresStrictlyDecreasing(decreasingWindow) ||
		stale

	obs.Infof("continuous: quality check score=%.3f trigger=%v", score, trigger)
	c.st.config.Events.OnEvent(ctx, "quality_check", map[string]interface{}{
		"score": score, "trigger": trigger, "sample_size": len(sample),
	})
	if trigger {
		c.attemptOptimization(ctx, "quality_triggered", optTimer, retryTimer)
	}
}

// attemptOptimization runs one optimization cycle and reacts to its
// outcome: on success it resets the scheduled-optimization timer and
// clears backoff; on failure it schedules a backed-off retry, per §4.6's
// "retry with exponentially backed-off delay capped at 30 min".
func (c *Controller) attemptOptimization(ctx context.Context, trigger string, optTimer, retryTimer *time.Timer) {
	if err := c.runOptimization(ctx, trigger); err != nil {
		obs.Errorf("continuous: optimization failed (trigger=%s): %v", trigger, err)
		c.st.status = StatusError
		c.scheduleRetry(retryTimer)
		return
	}
	c.st.backoff = 0
	retryTimer.Stop()
	optTimer.Reset(c.st.config.OptimizationInterval)
}

func (c *Controller) scheduleRetry(retryTimer *time.Timer) {
	if c.st.backoff == 0 {
		c.st.backoff = retryBaseBackoff
	} else {
		c.st.backoff *= 2
	}
	if c.st.backoff > c.st.config.MaxBackoff {
		c.st.backoff = c.st.config.MaxBackoff
	}
	retryTimer.Reset(c.st.backoff)
}

// runOptimization implements §4.6's scheduled-optimization body: adapt
// intensity from recent quality history, invoke Teleprompter.compile with a
// fresh correlation id, and adopt the result only if it clears the
// improvement threshold.
func (c *Controller) runOptimization(ctx context.Context, trigger string) error {
	c.st.status = StatusOptimizing
	correlationID := fmt.Sprintf("opt-%d-%d", c.st.optimizationCount+1, time.Now().UnixNano())
	obs.Infof("continuous: starting optimization (trigger=%s, correlation_id=%s)", trigger, correlationID)
	c.st.config.Events.OnEvent(ctx, "optimization_started", map[string]interface{}{
		"trigger": trigger, "correlation_id": correlationID,
	})

	opts := c.adaptedOptions()
	start := time.Now()

	result, err := c.teleprompter.Compile(ctx, c.st.currentProgram, c.teacher, c.trainset, c.descriptor, opts)
	c.st.optimizationCount++
	c.st.lastOptimizationAt = time.Now()
	if err != nil {
		c.st.config.Monitor.RecordOptimizationRound(time.Since(start), 0, false, err)
		c.st.config.Events.OnEvent(ctx, "optimization_failed", map[string]interface{}{
			"correlation_id": correlationID, "error": err.Error(),
		})
		return fmt.Errorf("correlation_id=%s: %w", correlationID, err)
	}

	adopted := c.adoptIfImproved(result)
	c.st.config.Monitor.RecordOptimizationRound(time.Since(start), result.BestScore, adopted, nil)
	c.st.config.Events.OnEvent(ctx, "optimization_completed", map[string]interface{}{
		"correlation_id": correlationID, "adopted": adopted, "best_score": result.BestScore,
	})
	if adopted {
		obs.Infof("continuous: adopted new program (correlation_id=%s, best_score=%.3f)", correlationID, result.BestScore)
	} else {
		obs.Warnf("continuous: optimization did not clear improvement threshold (correlation_id=%s, best_score=%.3f)", correlationID, result.BestScore)
	}
	c.st.status = StatusRunning
	return nil
}

// adaptedOptions scales num_instruction_candidates and max_iterations from
// recent quality history per §4.6's "adapt intensity" rule.
func (c *Controller) adaptedOptions() teleprompt.Options {
	opts := c.teleOpts
	opts.NumInstructionCandidates = c.st.config.NumInstructionCandidates
	opts.BayesOpt.MaxIterations = c.st.config.MaxIterations
	if c.st.config.Monitor != nil {
		opts.Monitor = c.st.config.Monitor
	}

	if last, ok := c.lastQualityScore(); ok {
		if last < 0.5 {
			opts.NumInstructionCandidates = int(float64(opts.NumInstructionCandidates) * 1.5)
		} else if last > 0.8 {
			opts.NumInstructionCandidates = int(float64(opts.NumInstructionCandidates) * 0.8)
		}
	}
	if c.st.recentLowQualityCount(decreasingWindow) >= 2 {
		opts.BayesOpt.MaxIterations = int(float64(opts.BayesOpt.MaxIterations) * 1.5)
	}
	if opts.NumInstructionCandidates < 1 {
		opts.NumInstructionCandidates = 1
	}
	return opts
}

func (c *Controller) lastQualityScore() (float64, bool) {
	if len(c.st.qualityHistory) == 0 {
		return 0, false
	}
	return c.st.qualityHistory[len(c.st.qualityHistory)-1].Score, true
}

// adoptIfImproved replaces current_program with result's configuration
// installed onto a fresh clone, but only when the relative improvement
// over the last recorded quality score is at least ImprovementThreshold.
func (c *Controller) adoptIfImproved(result *primitives.OptimizedProgram) bool {
	baseline, _ := c.lastQualityScore()

	improved := baseline <= 0 || (result.BestScore-baseline)/baseline >= c.st.config.ImprovementThreshold
	if !improved {
		return false
	}

	clone := c.st.currentProgram.Copy()
	configurable, ok := clone.(primitives.Configurable)
	if !ok {
		return false
	}
	configurable.SetInstruction(result.InstructionText)
	configurable.SetDemos(demosToMaps(result.Demonstrations))

	c.st.currentProgram = clone
	return true
}

func demosToMaps(demos []*primitives.Demonstration) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(demos))
	for _, d := range demos {
		out = append(out, d.Example().Data())
	}
	return out
}
