package primitives

import (
	"encoding/json"
	"fmt"
)

// OptimizedProgram is the result a Teleprompter compile run assembles: the
// winning instruction text, the winning demonstration set, and metadata
// about the search that produced it. It is a plain in-memory value —
// persisting it across process runs is the caller's responsibility.
type OptimizedProgram struct {
	InstructionText string
	Demonstrations  []*Demonstration
	BestScore       float64
	IterationsRun   int
}

// NewOptimizedProgram assembles the result of a successful compile.
func NewOptimizedProgram(instructionText string, demos []*Demonstration, bestScore float64, iterationsRun int) *OptimizedProgram {
	return &OptimizedProgram{
		InstructionText: instructionText,
		Demonstrations:  demos,
		BestScore:       bestScore,
		IterationsRun:   iterationsRun,
	}
}

type optimizedProgramJSON struct {
	InstructionText string           `json:"instruction_text"`
	Demonstrations  []*Demonstration `json:"demonstrations"`
	Metadata        struct {
		BestScore     float64 `json:"best_score"`
		IterationsRun int     `json:"iterations_run"`
	} `json:"metadata"`
}

// MarshalJSON implements json.Marshaler.
func (o *OptimizedProgram) MarshalJSON() ([]byte, error) {
	var payload optimizedProgramJSON
	payload.InstructionText = o.InstructionText
	payload.Demonstrations = o.Demonstrations
	payload.Metadata.BestScore = o.BestScore
	payload.Metadata.IterationsRun = o.IterationsRun
	return json.Marshal(payload)
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *OptimizedProgram) UnmarshalJSON(raw []byte) error {
	var payload optimizedProgramJSON
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("unmarshal optimized program: %w", err)
	}
	o.InstructionText = payload.InstructionText
	o.Demonstrations = payload.Demonstrations
	o.BestScore = payload.Metadata.BestScore
	o.IterationsRun = payload.Metadata.IterationsRun
	return nil
}
