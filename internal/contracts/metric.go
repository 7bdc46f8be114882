package contracts

import (
	"github.com/dspygo/optimizer/internal/primitives"
)

// MetricFn scores a prediction against an example's expected outputs, on a
// 0..1 scale where 1 is a perfect match. Every evaluation in this module
// goes through a MetricFn — the core never hardcodes a scoring rule.
type MetricFn func(example *primitives.Example, prediction *primitives.Prediction) float64

// SafeMetric wraps a MetricFn so a panicking metric degrades to a score of
// 0 instead of taking down the caller. A caller-provided metric is
// adversarial input as far as the optimizer loop is concerned: a single bad
// example must not fail the whole run.
func SafeMetric(metric MetricFn) MetricFn {
	return func(example *primitives.Example, prediction *primitives.Prediction) (score float64) {
		defer func() {
			if r := recover(); r != nil {
				score = 0.0
			}
		}()
		return metric(example, prediction)
	}
}
