package primitives

import "context"

// Program is the interface every student or teacher program implements. The
// optimizer never inspects a program's internals — it only calls Forward
// (through a contracts.ProgramRunner wrapper) and clones it across trial
// configurations via Copy. Persisted state lives in OptimizedProgram's own
// JSON codec, not on Program itself.
type Program interface {
	// Forward executes the program with the given inputs.
	// Returns a Prediction containing the outputs.
	Forward(ctx context.Context, inputs map[string]interface{}) (*Prediction, error)

	// Copy creates a deep copy of the program.
	Copy() Program
}

// Configurable is implemented by programs the Teleprompter can install a
// trial Configuration into: an instruction string plus a demo set. Not every
// Program need implement it (a composite program might reject optimization
// entirely), but the reference Predict program does, and the Teleprompter's
// objective function type-asserts for it on the cloned student.
type Configurable interface {
	SetInstruction(text string)
	SetDemos(demos []map[string]interface{})
}
