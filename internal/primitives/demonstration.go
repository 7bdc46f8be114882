package primitives

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// Demonstration is an Example the DemonstrationMiner selected as a few-shot
// exemplar, carrying the score the teacher program earned on it and a
// stable identifier derived from its content.
type Demonstration struct {
	example      *Example
	qualityScore float64
	demoID       string
}

// NewDemonstration wraps an example with its quality score and derives a
// stable demo ID from the example's content, so the same (inputs, outputs)
// pair always yields the same ID regardless of which mining run produced it.
func NewDemonstration(example *Example, qualityScore float64) *Demonstration {
	return &Demonstration{
		example:      example,
		qualityScore: qualityScore,
		demoID:       demoIDFor(example),
	}
}

// Example returns the underlying example.
func (d *Demonstration) Example() *Example {
	return d.example
}

// QualityScore returns the score the teacher program earned on this
// demonstration's inputs, as judged by the metric used during mining.
func (d *Demonstration) QualityScore() float64 {
	return d.qualityScore
}

// DemoID returns this demonstration's stable identifier.
func (d *Demonstration) DemoID() string {
	return d.demoID
}

func demoIDFor(example *Example) string {
	data := example.ToMap()
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ordered := make(map[string]interface{}, len(data))
	for _, k := range keys {
		ordered[k] = data[k]
	}
	encoded, _ := json.Marshal(ordered)

	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:])[:16]
}

type demonstrationJSON struct {
	Example      *Example `json:"example"`
	QualityScore float64  `json:"quality_score"`
	DemoID       string   `json:"demo_id"`
}

// MarshalJSON implements json.Marshaler.
func (d *Demonstration) MarshalJSON() ([]byte, error) {
	return json.Marshal(demonstrationJSON{
		Example:      d.example,
		QualityScore: d.qualityScore,
		DemoID:       d.demoID,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Demonstration) UnmarshalJSON(raw []byte) error {
	var payload demonstrationJSON
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("unmarshal demonstration: %w", err)
	}
	d.example = payload.Example
	d.qualityScore = payload.QualityScore
	d.demoID = payload.DemoID
	return nil
}
