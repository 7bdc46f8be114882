package predict

import (
	"context"
	"testing"

	"github.com/dspygo/optimizer/internal/contracts"
)

type fakeRunner struct {
	lastInstruction string
	lastDemos       []map[string]interface{}
	outputs         map[string]interface{}
	err             error
}

func (f *fakeRunner) Forward(ctx context.Context, instruction string, demos []map[string]interface{}, inputs map[string]interface{}, opts contracts.CallOptions) (map[string]interface{}, error) {
	f.lastInstruction = instruction
	f.lastDemos = demos
	if f.err != nil {
		return nil, f.err
	}
	return f.outputs, nil
}

func TestPredict_Forward(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]interface{}{"answer": "4"}}
	p, err := New("question -> answer", runner)
	if err != nil {
		t.Fatalf("failed to build predict: %v", err)
	}

	pred, err := p.Forward(context.Background(), map[string]interface{}{"question": "2+2"})
	if err != nil {
		t.Fatalf("forward failed: %v", err)
	}

	val, ok := pred.Get("answer")
	if !ok || val != "4" {
		t.Errorf("expected answer '4', got %v", val)
	}
}

func TestPredict_Forward_MissingRequiredInput(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]interface{}{}}
	p, err := New("question -> answer", runner)
	if err != nil {
		t.Fatalf("failed to build predict: %v", err)
	}

	_, err = p.Forward(context.Background(), map[string]interface{}{})
	if err == nil {
		t.Error("expected an error for missing required input")
	}
}

func TestPredict_InstructionAndDemosFlowToRunner(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]interface{}{"answer": "4"}}
	p, err := New("question -> answer", runner)
	if err != nil {
		t.Fatalf("failed to build predict: %v", err)
	}

	p.Instruction.SetValue("Answer concisely.")
	p.Demos.SetValue([]map[string]interface{}{{"question": "1+1", "answer": "2"}})

	if _, err := p.Forward(context.Background(), map[string]interface{}{"question": "2+2"}); err != nil {
		t.Fatalf("forward failed: %v", err)
	}

	if runner.lastInstruction != "Answer concisely." {
		t.Errorf("expected instruction to reach the runner, got %q", runner.lastInstruction)
	}
	if len(runner.lastDemos) != 1 {
		t.Errorf("expected 1 demo to reach the runner, got %d", len(runner.lastDemos))
	}
}

func TestPredict_Copy(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]interface{}{"answer": "4"}}
	p, err := New("question -> answer", runner)
	if err != nil {
		t.Fatalf("failed to build predict: %v", err)
	}
	p.Instruction.SetValue("Be terse.")

	copied := p.Copy().(*Predict)
	if copied.Instruction.Value() != "Be terse." {
		t.Error("expected copy to carry over the instruction value")
	}

	copied.Instruction.SetValue("Different.")
	if p.Instruction.Value() == "Different." {
		t.Error("expected copy to be independent of the original")
	}
}
