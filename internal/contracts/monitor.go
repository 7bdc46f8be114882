package contracts

import "time"

// Monitor records operational metrics for the optimization engine. It is
// intentionally narrow — just the events the BayesianOptimizer, Teleprompter,
// and ContinuousController actually emit — so any backend (Prometheus,
// StatsD, a test spy) can implement it without pulling in the others' shapes.
type Monitor interface {
	// RecordTrialEvaluation records one objective-function call: how long
	// it took, and the score it returned (or that it failed).
	RecordTrialEvaluation(duration time.Duration, score float64, failed bool)

	// RecordOptimizationRound records one Teleprompter.Compile invocation:
	// its outcome and, on success, the best score it found.
	RecordOptimizationRound(duration time.Duration, bestScore float64, adopted bool, err error)

	// RecordDemosMined records how many demonstrations a mining pass kept
	// out of how many candidates it considered.
	RecordDemosMined(kept, considered int)

	// RecordCacheHit and RecordCacheMiss record disk/LM cache effectiveness.
	RecordCacheHit(cacheType string)
	RecordCacheMiss(cacheType string)
}

// NoopMonitor discards every event. Components default to it so Monitor
// stays optional everywhere it's threaded through.
type NoopMonitor struct{}

func (NoopMonitor) RecordTrialEvaluation(time.Duration, float64, bool)       {}
func (NoopMonitor) RecordOptimizationRound(time.Duration, float64, bool, error) {}
func (NoopMonitor) RecordDemosMined(int, int)                                {}
func (NoopMonitor) RecordCacheHit(string)                                    {}
func (NoopMonitor) RecordCacheMiss(string)                                   {}
