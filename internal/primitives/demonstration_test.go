package primitives

import (
	"encoding/json"
	"testing"
)

func TestNewDemonstration(t *testing.T) {
	ex := NewExample(
		map[string]interface{}{"question": "2+2"},
		map[string]interface{}{"answer": "4"},
	)

	d := NewDemonstration(ex, 0.9)

	if d.QualityScore() != 0.9 {
		t.Errorf("expected quality score 0.9, got %v", d.QualityScore())
	}
	if d.DemoID() == "" {
		t.Error("expected a non-empty demo ID")
	}
}

func TestDemonstration_StableID(t *testing.T) {
	ex1 := NewExample(
		map[string]interface{}{"question": "2+2"},
		map[string]interface{}{"answer": "4"},
	)
	ex2 := NewExample(
		map[string]interface{}{"question": "2+2"},
		map[string]interface{}{"answer": "4"},
	)

	d1 := NewDemonstration(ex1, 0.5)
	d2 := NewDemonstration(ex2, 0.9)

	if d1.DemoID() != d2.DemoID() {
		t.Errorf("expected identical content to yield identical demo IDs, got %q and %q", d1.DemoID(), d2.DemoID())
	}
}

func TestDemonstration_JSON(t *testing.T) {
	ex := NewExample(
		map[string]interface{}{"question": "2+2"},
		map[string]interface{}{"answer": "4"},
	)
	d := NewDemonstration(ex, 0.75)

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	var d2 Demonstration
	if err := json.Unmarshal(data, &d2); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if d2.QualityScore() != 0.75 {
		t.Errorf("expected quality score 0.75, got %v", d2.QualityScore())
	}
	if d2.DemoID() != d.DemoID() {
		t.Errorf("expected demo ID %q, got %q", d.DemoID(), d2.DemoID())
	}
}

func TestInstruction_Dedup(t *testing.T) {
	i1 := NewInstruction("Answer concisely.")
	i2 := NewInstruction("  answer concisely.  ")
	i3 := NewInstruction("Answer in detail.")

	if i1.InstructionID() != i2.InstructionID() {
		t.Error("expected normalized-equal text to produce the same instruction ID")
	}
	if i1.InstructionID() == i3.InstructionID() {
		t.Error("expected distinct text to produce distinct instruction IDs")
	}
}

func TestConfiguration_KeyIgnoresDemoOrder(t *testing.T) {
	c1 := NewConfiguration("instr-1", []string{"b", "a"}, nil)
	c2 := NewConfiguration("instr-1", []string{"a", "b"}, nil)
	c3 := NewConfiguration("instr-1", []string{"a"}, nil)

	if c1.Key() != c2.Key() {
		t.Errorf("expected reordered demo sets to produce the same key, got %q and %q", c1.Key(), c2.Key())
	}
	if c1.Key() == c3.Key() {
		t.Error("expected different demo sets to produce different keys")
	}
}

func TestSearchSpace_ClampsMaxDemos(t *testing.T) {
	ex := NewExample(map[string]interface{}{"q": "x"}, map[string]interface{}{"a": "y"})
	demos := []*Demonstration{NewDemonstration(ex, 1.0)}

	ss := NewSearchSpace([]*Instruction{NewInstruction("do it")}, demos, 99)
	if ss.MaxDemosPerConfig != 1 {
		t.Errorf("expected MaxDemosPerConfig clamped to 1, got %d", ss.MaxDemosPerConfig)
	}

	ss2 := NewSearchSpace(nil, nil, -5)
	if ss2.MaxDemosPerConfig != 0 {
		t.Errorf("expected MaxDemosPerConfig clamped to 0, got %d", ss2.MaxDemosPerConfig)
	}
	if !ss2.Empty() {
		t.Error("expected search space with no instructions to be empty")
	}
}

func TestOptimizedProgram_JSON(t *testing.T) {
	ex := NewExample(map[string]interface{}{"q": "x"}, map[string]interface{}{"a": "y"})
	demos := []*Demonstration{NewDemonstration(ex, 1.0)}
	op := NewOptimizedProgram("Be concise.", demos, 0.87, 12)

	data, err := json.Marshal(op)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	var op2 OptimizedProgram
	if err := json.Unmarshal(data, &op2); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if op2.InstructionText != "Be concise." {
		t.Errorf("expected instruction text round-trip, got %q", op2.InstructionText)
	}
	if op2.BestScore != 0.87 {
		t.Errorf("expected best score 0.87, got %v", op2.BestScore)
	}
	if op2.IterationsRun != 12 {
		t.Errorf("expected iterations run 12, got %d", op2.IterationsRun)
	}
	if len(op2.Demonstrations) != 1 {
		t.Errorf("expected 1 demonstration, got %d", len(op2.Demonstrations))
	}
}
