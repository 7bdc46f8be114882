package contracts

// Phase names a stage of a Teleprompter compile run, reported through
// ProgressCallback so a caller can drive a UI or log line without polling
// internal state.
type Phase string

const (
	PhaseValidating          Phase = "validating"
	PhaseSplitting           Phase = "splitting"
	PhaseMiningDemos         Phase = "mining_demos"
	PhaseGeneratingInstructions Phase = "generating_instructions"
	PhaseBuildingSearchSpace Phase = "building_search_space"
	PhaseOptimizing          Phase = "optimizing"
	PhaseAssembling          Phase = "assembling"
	PhaseDone                Phase = "done"
)

// ProgressEvent describes one step of progress within a phase.
type ProgressEvent struct {
	Phase     Phase
	Message   string
	Iteration int
	Total     int
	BestScore float64
}

// ProgressCallback receives ProgressEvents as a compile run advances.
// Teleprompter.Compile replaces a nil callback with NoopProgress(); a nil
// ProgressCallback called directly panics.
type ProgressCallback func(event ProgressEvent)

// NoopProgress returns a ProgressCallback that discards every event.
func NoopProgress() ProgressCallback {
	return func(ProgressEvent) {}
}
