package bayesopt

import (
	"hash/fnv"
	"math"
	"sort"
	"strings"

	"github.com/dspygo/optimizer/internal/primitives"
)

// ExtractFeatures builds the deterministic feature vector §4.4 requires: a
// stable hash of instructionID projected into [0,1], a demo count normalized
// by maxDemos, and a hash summary of the demo-id set (order-independent, so
// the same demo subset always yields the same vector regardless of draw
// order).
func ExtractFeatures(instructionID string, demoIDs []string, maxDemos int) []float64 {
	instructionComponent := stableHash01(instructionID)

	demoCountComponent := 0.0
	if maxDemos > 0 {
		demoCountComponent = float64(len(demoIDs)) / float64(maxDemos)
	}

	sorted := append([]string(nil), demoIDs...)
	sort.Strings(sorted)
	demoSetComponent := stableHash01(strings.Join(sorted, ","))

	return []float64{instructionComponent, demoCountComponent, demoSetComponent}
}

// BuildConfiguration assembles a Configuration with its feature vector
// populated from instructionID and demoIDs.
func BuildConfiguration(instructionID string, demoIDs []string, maxDemos int) primitives.Configuration {
	cfg := primitives.NewConfiguration(instructionID, demoIDs, nil)
	cfg.FeatureVector = ExtractFeatures(instructionID, cfg.DemoIDs, maxDemos)
	return cfg
}

// stableHash01 hashes s with FNV-1a and projects the result into [0,1].
// Hash collisions are acceptable noise, per §4.4.
func stableHash01(s string) float64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return float64(h.Sum64()) / float64(math.MaxUint64)
}
