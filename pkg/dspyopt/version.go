// Package dspyopt is the public API for the prompt-optimization engine: a
// demonstration miner, a Bayesian search over instruction/demo
// configurations, and a continuous controller that keeps re-optimizing a
// deployed program as its inputs drift.
package dspyopt

// Version information.
const (
	// Version is the semantic version of this module.
	Version = "0.1.0"
)
