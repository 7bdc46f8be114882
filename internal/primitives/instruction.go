package primitives

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Instruction is a candidate natural-language instruction for a program,
// identified by a stable hash of its normalized text so two textually
// identical candidates from different generation rounds collapse to one ID.
type Instruction struct {
	instructionID string
	text          string
}

// NewInstruction derives an Instruction's ID from its text.
func NewInstruction(text string) *Instruction {
	return &Instruction{
		instructionID: instructionIDFor(text),
		text:          text,
	}
}

// InstructionID returns this instruction's stable identifier.
func (i *Instruction) InstructionID() string {
	return i.instructionID
}

// Text returns the instruction's literal text.
func (i *Instruction) Text() string {
	return i.text
}

// normalizedText is what two instructions are compared by for
// deduplication: trimmed and collapsed to a single case, so "Answer
// concisely." and "answer concisely." are treated as the same candidate.
func normalizedText(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

func instructionIDFor(text string) string {
	sum := sha256.Sum256([]byte(normalizedText(text)))
	return hex.EncodeToString(sum[:])[:16]
}
