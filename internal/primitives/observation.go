package primitives

import "time"

// Observation records the score an evaluated Configuration earned, along
// with when it was observed. The Bayesian optimizer's observation log is a
// plain slice of these, owned and mutated only by the optimizer loop.
type Observation struct {
	Configuration Configuration
	Score         float64
	Timestamp     time.Time
}

// NewObservation constructs an Observation at the given time.
func NewObservation(config Configuration, score float64, timestamp time.Time) Observation {
	return Observation{
		Configuration: config,
		Score:         score,
		Timestamp:     timestamp,
	}
}
