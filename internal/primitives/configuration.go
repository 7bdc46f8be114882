package primitives

import (
	"sort"
	"strings"
)

// Configuration names one trial point in the search space: an instruction
// plus a demonstration subset, plus the numeric feature vector the
// surrogate model and acquisition function operate on.
type Configuration struct {
	InstructionID  string
	DemoIDs        []string
	FeatureVector  []float64
}

// NewConfiguration builds a Configuration, sorting DemoIDs so two
// Configurations naming the same demo set in a different order compare
// equal under Key.
func NewConfiguration(instructionID string, demoIDs []string, featureVector []float64) Configuration {
	sorted := append([]string(nil), demoIDs...)
	sort.Strings(sorted)
	return Configuration{
		InstructionID: instructionID,
		DemoIDs:       sorted,
		FeatureVector: featureVector,
	}
}

// Key returns a value-equality string for deduplication: same instruction
// and same demo set means the same Key, regardless of feature vector
// (feature vectors are derived, not identity-bearing).
func (c Configuration) Key() string {
	return c.InstructionID + "|" + strings.Join(c.DemoIDs, ",")
}
