package teleprompt

import (
	"context"
	"fmt"

	"github.com/dspygo/optimizer/internal/contracts"
	"github.com/dspygo/optimizer/internal/primitives"
)

const instructionOutputField = "instruction"

// fallbackPhrasings are deterministic paraphrase templates applied to a
// signature's own description when no InstructionRunner is configured, so
// the candidate pool still has more than one member to search over.
var fallbackPhrasings = []string{
	"%s",
	"Carefully %s",
	"Given the inputs, %s Be precise and concise.",
}

// generateInstructionCandidates builds a deduplicated pool of instruction
// candidates, per §4.5 step 4. When runner is non-nil it is prompted with a
// meta-prompt built from descriptor and a sample of demoPool, once per
// requested candidate; otherwise the pool is built from deterministic
// paraphrase templates over the descriptor's own task description. Always
// returns at least one instruction.
func generateInstructionCandidates(ctx context.Context, runner contracts.ProgramRunner, descriptor contracts.ProgramDescriptor, demoPool []*primitives.Demonstration, numCandidates int) []*primitives.Instruction {
	var raw []string
	if runner != nil {
		raw = generateViaRunner(ctx, runner, descriptor, demoPool, numCandidates)
	} else {
		raw = generateViaTemplates(descriptor, numCandidates)
	}

	seen := make(map[string]bool, len(raw))
	candidates := make([]*primitives.Instruction, 0, len(raw))
	for _, text := range raw {
		if text == "" {
			continue
		}
		inst := primitives.NewInstruction(text)
		if seen[inst.InstructionID()] {
			continue
		}
		seen[inst.InstructionID()] = true
		candidates = append(candidates, inst)
	}

	if len(candidates) == 0 {
		candidates = append(candidates, defaultInstruction(descriptor))
	}
	return candidates
}

func generateViaRunner(ctx context.Context, runner contracts.ProgramRunner, descriptor contracts.ProgramDescriptor, demoPool []*primitives.Demonstration, numCandidates int) []string {
	metaInstruction := fmt.Sprintf(
		"Write a clear instruction for a task that takes %v and produces %v. Task: %s",
		descriptor.InputFields, descriptor.OutputFields, descriptor.TaskDescription,
	)
	demoMaps := sampleDemoMaps(demoPool, 3)

	texts := make([]string, 0, numCandidates)
	for i := 0; i < numCandidates; i++ {
		inputs := map[string]interface{}{
			"task_description": descriptor.TaskDescription,
			"variation_index":  i,
		}
		outputs, err := runner.Forward(ctx, metaInstruction, demoMaps, inputs, contracts.CallOptions{})
		if err != nil {
			continue
		}
		text, ok := outputs[instructionOutputField].(string)
		if !ok || text == "" {
			continue
		}
		texts = append(texts, text)
	}
	return texts
}

func generateViaTemplates(descriptor contracts.ProgramDescriptor, numCandidates int) []string {
	base := descriptor.TaskDescription
	if base == "" {
		base = fmt.Sprintf("produce %v from %v.", descriptor.OutputFields, descriptor.InputFields)
	}

	texts := make([]string, 0, numCandidates)
	for i := 0; i < numCandidates && i < len(fallbackPhrasings); i++ {
		texts = append(texts, fmt.Sprintf(fallbackPhrasings[i], base))
	}
	return texts
}

func sampleDemoMaps(demoPool []*primitives.Demonstration, n int) []map[string]interface{} {
	if n > len(demoPool) {
		n = len(demoPool)
	}
	out := make([]map[string]interface{}, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, demoPool[i].Example().Data())
	}
	return out
}

// defaultInstruction derives a minimal instruction directly from the
// signature's own fields, the fallback §4.5 step 4 guarantees is always
// valid.
func defaultInstruction(descriptor contracts.ProgramDescriptor) *primitives.Instruction {
	text := descriptor.TaskDescription
	if text == "" {
		text = fmt.Sprintf("Given %v, produce %v.", descriptor.InputFields, descriptor.OutputFields)
	}
	return primitives.NewInstruction(text)
}
