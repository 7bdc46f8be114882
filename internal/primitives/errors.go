package primitives

import "errors"

// Sentinel errors the optimization engine returns, checked with errors.Is.
// Per-example evaluation failures never surface as one of these — those are
// folded into a score of 0 and a failure counter, exactly as the error
// taxonomy specifies; these sentinels only mark structural failures of a
// whole operation.
var (
	// ErrInvalidInputs indicates the caller's student program, trainset, or
	// metric failed validation before any optimization work began.
	ErrInvalidInputs = errors.New("invalid inputs")

	// ErrNoBootstrappedDemos indicates the DemonstrationMiner could not
	// produce a single demonstration above the quality threshold.
	ErrNoBootstrappedDemos = errors.New("no bootstrapped demonstrations")

	// ErrNoInitialObservations indicates the Bayesian optimizer's seed phase
	// produced zero usable observations, so no surrogate model can be fit.
	ErrNoInitialObservations = errors.New("no initial observations")

	// ErrNoCandidates indicates a search space with an empty instruction or
	// demo-subset candidate list, making proposal impossible.
	ErrNoCandidates = errors.New("no candidate configurations")

	// ErrOptimizationFailed indicates the optimization loop ran but every
	// evaluated configuration failed or the loop was aborted without ever
	// producing an improving configuration.
	ErrOptimizationFailed = errors.New("optimization failed")
)
