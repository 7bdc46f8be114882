// Package teleprompt implements the end-to-end compile operation: it wires
// DemonstrationMiner, instruction-candidate generation, and
// BayesianOptimizer together into one optimized program.
package teleprompt

import (
	"context"
	"fmt"
	"time"

	"github.com/dspygo/optimizer/internal/bayesopt"
	"github.com/dspygo/optimizer/internal/bootstrap"
	"github.com/dspygo/optimizer/internal/contracts"
	"github.com/dspygo/optimizer/internal/evaluate"
	"github.com/dspygo/optimizer/internal/obs"
	"github.com/dspygo/optimizer/internal/primitives"
)

// Options configures one Compile call. Zero-valued fields are replaced with
// the defaults DefaultOptions returns.
type Options struct {
	QualityThreshold         float64
	MaxDemos                 int
	NumInstructionCandidates int
	ValidationFraction       float64

	Concurrency    int
	PerCallTimeout time.Duration

	BayesOpt bayesopt.Options

	// InstructionRunner, if set, is prompted to generate instruction
	// candidates (§4.5 step 4). A nil value falls back to deterministic
	// paraphrase templates over the signature's own description.
	InstructionRunner contracts.ProgramRunner

	Progress contracts.ProgressCallback
	Monitor  contracts.Monitor
}

// DefaultOptions returns the options §4 names as defaults.
func DefaultOptions() Options {
	return Options{
		QualityThreshold:         0.7,
		MaxDemos:                 4,
		NumInstructionCandidates: 5,
		ValidationFraction:       defaultValidationFraction,
		Concurrency:              10,
		PerCallTimeout:           30 * time.Second,
		BayesOpt: bayesopt.Options{
			NumInitialSamples:   5,
			MaxIterations:       20,
			ConvergencePatience: 5,
		},
		Progress: contracts.NoopProgress(),
		Monitor:  contracts.NoopMonitor{},
	}
}

// Teleprompter orchestrates one compile run.
type Teleprompter struct {
	metric contracts.MetricFn
}

// New builds a Teleprompter scoring with metric.
func New(metric contracts.MetricFn) *Teleprompter {
	return &Teleprompter{metric: contracts.SafeMetric(metric)}
}

// Name identifies this optimizer, for logging and status reporting.
func (t *Teleprompter) Name() string {
	return "bayesian_teleprompter"
}

// Compile runs the full §4.5 pipeline. student and teacher must both
// implement primitives.Configurable for the objective function to install
// trial configurations; teacher additionally drives demonstration mining
// and (optionally, via opts.InstructionRunner) instruction generation.
func (t *Teleprompter) Compile(ctx context.Context, student, teacher primitives.Program, trainset []*primitives.Example, descriptor contracts.Describer, opts Options) (*primitives.OptimizedProgram, error) {
	opts = withOptionDefaults(opts)
	progress := opts.Progress
	if progress == nil {
		progress = contracts.NoopProgress()
	}

	progress(contracts.ProgressEvent{Phase: contracts.PhaseValidating, Message: "validating inputs"})
	if err := validateCompileInputs(student, teacher, trainset, t.metric); err != nil {
		return nil, err
	}

	progress(contracts.ProgressEvent{Phase: contracts.PhaseSplitting, Message: "splitting trainset"})
	demoSource, validation := splitTrainset(trainset, opts.ValidationFraction)

	progress(contracts.ProgressEvent{Phase: contracts.PhaseMiningDemos, Message: "mining demonstrations"})
	demoPool := bootstrap.Mine(ctx, teacher, demoSource, t.metric, bootstrap.Options{
		QualityThreshold:  opts.QualityThreshold,
		MaxDemos:          opts.MaxDemos,
		Concurrency:       opts.Concurrency,
		PerExampleTimeout: opts.PerCallTimeout,
	})
	if len(demoPool) == 0 && opts.MaxDemos > 0 {
		return nil, fmt.Errorf("teleprompter: %w", primitives.ErrNoBootstrappedDemos)
	}
	obs.Infof("teleprompter: mined %d demonstrations", len(demoPool))
	opts.Monitor.RecordDemosMined(len(demoPool), len(demoSource))

	progress(contracts.ProgressEvent{Phase: contracts.PhaseGeneratingInstructions, Message: "generating instruction candidates"})
	instructions := generateInstructionCandidates(ctx, opts.InstructionRunner, descriptor.Describe(), demoPool, opts.NumInstructionCandidates)

	progress(contracts.ProgressEvent{Phase: contracts.PhaseBuildingSearchSpace, Message: "building search space"})
	searchSpace := primitives.NewSearchSpace(instructions, demoPool, opts.MaxDemos)

	objective := buildObjective(student, searchSpace, validation, t.metric, opts)

	progress(contracts.ProgressEvent{Phase: contracts.PhaseOptimizing, Message: "optimizing"})
	bayesOpts := opts.BayesOpt
	bayesOpts.Concurrency = opts.Concurrency
	bayesOpts.PerCallTimeout = opts.PerCallTimeout
	result, err := bayesopt.Optimize(ctx, searchSpace, objective, bayesOpts)
	if err != nil {
		return nil, fmt.Errorf("teleprompter: %w: %v", primitives.ErrOptimizationFailed, err)
	}

	progress(contracts.ProgressEvent{
		Phase: contracts.PhaseAssembling, Message: "assembling optimized program",
		Iteration: result.ConvergenceIteration, BestScore: result.BestScore,
	})

	instruction, _ := searchSpace.InstructionByID(result.BestConfiguration.InstructionID)
	demos := searchSpace.DemosByIDs(result.BestConfiguration.DemoIDs)

	instructionText := ""
	if instruction != nil {
		instructionText = instruction.Text()
	}

	optimized := primitives.NewOptimizedProgram(instructionText, demos, result.BestScore, len(result.Observations))
	progress(contracts.ProgressEvent{Phase: contracts.PhaseDone, Message: "compile complete", BestScore: result.BestScore})
	return optimized, nil
}

func validateCompileInputs(student, teacher primitives.Program, trainset []*primitives.Example, metric contracts.MetricFn) error {
	if student == nil || teacher == nil {
		return fmt.Errorf("teleprompter: %w: student and teacher are required", primitives.ErrInvalidInputs)
	}
	if len(trainset) == 0 {
		return fmt.Errorf("teleprompter: %w: trainset must be non-empty", primitives.ErrInvalidInputs)
	}
	if metric == nil {
		return fmt.Errorf("teleprompter: %w: metric is required", primitives.ErrInvalidInputs)
	}
	if _, ok := student.(primitives.Configurable); !ok {
		return fmt.Errorf("teleprompter: %w: student does not implement Configurable", primitives.ErrInvalidInputs)
	}
	return nil
}

func withOptionDefaults(opts Options) Options {
	defaults := DefaultOptions()
	if opts.QualityThreshold == 0 {
		opts.QualityThreshold = defaults.QualityThreshold
	}
	if opts.MaxDemos == 0 {
		opts.MaxDemos = defaults.MaxDemos
	}
	if opts.NumInstructionCandidates == 0 {
		opts.NumInstructionCandidates = defaults.NumInstructionCandidates
	}
	if opts.ValidationFraction == 0 {
		opts.ValidationFraction = defaults.ValidationFraction
	}
	if opts.Concurrency == 0 {
		opts.Concurrency = defaults.Concurrency
	}
	if opts.PerCallTimeout == 0 {
		opts.PerCallTimeout = defaults.PerCallTimeout
	}
	if opts.BayesOpt.NumInitialSamples == 0 {
		opts.BayesOpt.NumInitialSamples = defaults.BayesOpt.NumInitialSamples
	}
	if opts.BayesOpt.MaxIterations == 0 {
		opts.BayesOpt.MaxIterations = defaults.BayesOpt.MaxIterations
	}
	if opts.BayesOpt.ConvergencePatience == 0 {
		opts.BayesOpt.ConvergencePatience = defaults.BayesOpt.ConvergencePatience
	}
	if opts.Progress == nil {
		opts.Progress = defaults.Progress
	}
	if opts.Monitor == nil {
		opts.Monitor = defaults.Monitor
	}
	return opts
}

// buildObjective returns the §4.5 step 5 objective: clone student, install
// the Configuration's instruction and demos, run it over validation with
// bounded concurrency and a per-example timeout, and return the mean
// metric score. A failed student call contributes 0, never an error.
func buildObjective(student primitives.Program, searchSpace *primitives.SearchSpace, validation []*primitives.Example, metric contracts.MetricFn, opts Options) bayesopt.ObjectiveFn {
	return func(ctx context.Context, config primitives.Configuration) (float64, error) {
		start := time.Now()
		clone := student.Copy()
		configurable, ok := clone.(primitives.Configurable)
		if !ok {
			err := fmt.Errorf("teleprompter: cloned student does not implement Configurable")
			opts.Monitor.RecordTrialEvaluation(time.Since(start), 0, true)
			return 0, err
		}

		instructionText := ""
		if instruction, found := searchSpace.InstructionByID(config.InstructionID); found {
			instructionText = instruction.Text()
		}
		configurable.SetInstruction(instructionText)
		configurable.SetDemos(demoMaps(searchSpace.DemosByIDs(config.DemoIDs)))

		score, err := evaluateConfiguration(ctx, clone, validation, metric, opts)
		opts.Monitor.RecordTrialEvaluation(time.Since(start), score, err != nil)
		return score, err
	}
}

// demoMaps converts resolved Demonstrations into the plain-map shape
// contracts.ProgramRunner.Forward expects for its demos argument.
func demoMaps(demos []*primitives.Demonstration) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(demos))
	for _, d := range demos {
		out = append(out, d.Example().Data())
	}
	return out
}

// evaluateConfiguration scores a cloned, configured student over validation
// using evaluate.Evaluator's bounded worker pool, each worker call bounded
// by its own per-call timeout independent of the trial's overall context.
func evaluateConfiguration(ctx context.Context, program primitives.Program, validation []*primitives.Example, metric contracts.MetricFn, opts Options) (float64, error) {
	if len(validation) == 0 {
		return 0, nil
	}

	result, err := evaluate.NewEvaluator(metric).
		WithNumThreads(opts.Concurrency).
		WithPerCallTimeout(opts.PerCallTimeout).
		WithDisplayProgress(false).
		EvaluateParallel(ctx, program, validation)
	if err != nil {
		return 0, err
	}
	return result.AverageScore, nil
}
