// Package predict provides the reference program implementation: a single
// Predict call that renders a signature plus its current demos/instruction
// into a forward pass through a contracts.ProgramRunner.
package predict

import (
	"context"
	"fmt"

	"github.com/dspygo/optimizer/internal/contracts"
	"github.com/dspygo/optimizer/internal/primitives"
	"github.com/dspygo/optimizer/internal/signatures"
)

// Predict is the basic prediction program: a signature, a runner that
// actually executes a forward pass, and the instruction/demos an
// optimization run may swap in.
type Predict struct {
	// Signature defines the input and output structure
	Signature *signatures.Signature

	// Runner executes the forward pass against an LM or test fake.
	Runner contracts.ProgramRunner

	// Instruction is the current instruction text (initially the
	// signature's own Instructions, replaceable by a Teleprompter).
	Instruction *primitives.Parameter

	// Demos contains few-shot examples
	Demos *primitives.Parameter

	// Config contains additional configuration
	Config map[string]interface{}
}

// New creates a new Predict program with the given signature and runner.
// The signature can be a string like "question -> answer" or a *Signature.
func New(sig interface{}, runner contracts.ProgramRunner) (*Predict, error) {
	var signature *signatures.Signature
	var err error

	switch s := sig.(type) {
	case string:
		signature, err = signatures.NewSignature(s)
		if err != nil {
			return nil, fmt.Errorf("failed to parse signature: %w", err)
		}
	case *signatures.Signature:
		signature = s
	default:
		return nil, fmt.Errorf("signature must be string or *Signature, got %T", sig)
	}

	return &Predict{
		Signature:   signature,
		Runner:      runner,
		Instruction: primitives.NewParameter(signature.Instructions),
		Demos:       primitives.NewParameter([]map[string]interface{}{}),
		Config:      make(map[string]interface{}),
	}, nil
}

// Forward executes the prediction with the given inputs.
func (p *Predict) Forward(ctx context.Context, inputs map[string]interface{}) (*primitives.Prediction, error) {
	if err := p.validateInputs(inputs); err != nil {
		return nil, err
	}
	if p.Runner == nil {
		return nil, fmt.Errorf("predict: no runner configured")
	}

	instruction, _ := p.Instruction.Value().(string)
	demos, _ := p.Demos.Value().([]map[string]interface{})

	outputs, err := p.Runner.Forward(ctx, instruction, demos, inputs, contracts.CallOptions{})
	if err != nil {
		return nil, fmt.Errorf("predict: forward pass failed: %w", err)
	}

	return primitives.NewPrediction(outputs), nil
}

// validateInputs checks if all required input fields are provided.
func (p *Predict) validateInputs(inputs map[string]interface{}) error {
	for _, field := range p.Signature.InputFields {
		if field.Required {
			if _, ok := inputs[field.Name]; !ok {
				return fmt.Errorf("required input field missing: %s", field.Name)
			}
		}
	}
	return nil
}

// Copy creates a deep copy of the Predict program.
func (p *Predict) Copy() primitives.Program {
	newPredict := &Predict{
		Signature:   p.Signature, // Signatures are immutable, safe to share
		Runner:      p.Runner,
		Instruction: primitives.NewParameter(p.Instruction.Value()),
		Demos:       primitives.NewParameter(p.Demos.Value()),
		Config:      make(map[string]interface{}),
	}

	for k, v := range p.Config {
		newPredict.Config[k] = v
	}

	return newPredict
}

// SetInstruction implements primitives.Configurable.
func (p *Predict) SetInstruction(text string) {
	p.Instruction.SetValue(text)
}

// SetDemos implements primitives.Configurable.
func (p *Predict) SetDemos(demos []map[string]interface{}) {
	p.Demos.SetValue(demos)
}
