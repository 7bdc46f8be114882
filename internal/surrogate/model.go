// Package surrogate fits a predictive model of metric score from
// configuration feature vectors, and exposes (mean, variance) predictions to
// the acquisition function.
package surrogate

import "github.com/dspygo/optimizer/internal/primitives"

const (
	priorVariance = 0.25
	noiseVariance = 0.05
	coldStartMean = 0.5
)

// Model is a fitted surrogate: a closure over whatever state Fit needed,
// exposing a pure, deterministic Predict.
type Model struct {
	observations []primitives.Observation
	slope        float64
	intercept    float64
}

// Fit builds a Model from the observations accumulated so far. With fewer
// than two observations it falls back to a flat mean/prior-variance model;
// otherwise it fits a simple linear regression over the first feature-vector
// dimension, per §4.2.
func Fit(observations []primitives.Observation) *Model {
	m := &Model{observations: observations}
	if len(observations) < 2 {
		return m
	}

	n := float64(len(observations))
	var sumX, sumY, sumXY, sumXX float64
	for _, o := range observations {
		x := firstFeature(o.Configuration)
		y := o.Score
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		m.slope = 0
		m.intercept = sumY / n
		return m
	}

	m.slope = (n*sumXY - sumX*sumY) / denom
	m.intercept = (sumY - m.slope*sumX) / n
	return m
}

// Predict returns (mean, variance) for candidate, per the model family
// described in §4.2. Pure and deterministic given the observations Fit was
// called with.
func (m *Model) Predict(candidate primitives.Configuration) (mean, variance float64) {
	if len(m.observations) < 2 {
		if len(m.observations) == 0 {
			return coldStartMean, priorVariance
		}
		return averageScore(m.observations), priorVariance
	}

	x := firstFeature(candidate)
	mean = m.slope*x + m.intercept
	variance = priorVariance + noiseVariance
	return mean, variance
}

func firstFeature(c primitives.Configuration) float64 {
	if len(c.FeatureVector) == 0 {
		return 0
	}
	return c.FeatureVector[0]
}

func averageScore(observations []primitives.Observation) float64 {
	if len(observations) == 0 {
		return coldStartMean
	}
	var sum float64
	for _, o := range observations {
		sum += o.Score
	}
	return sum / float64(len(observations))
}
