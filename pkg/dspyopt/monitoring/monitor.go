// Package monitoring provides observability backends for the optimizer:
// implementations of internal/contracts.Monitor a caller can attach to a
// dspyopt.Optimizer.
package monitoring

import (
	"time"

	"github.com/dspygo/optimizer/internal/contracts"
)

// NoOpMonitor discards every event. Equivalent to contracts.NoopMonitor,
// kept here so callers that only import pkg/dspyopt/monitoring (not
// internal/contracts) still have a usable default.
type NoOpMonitor struct{}

func (NoOpMonitor) RecordTrialEvaluation(time.Duration, float64, bool)          {}
func (NoOpMonitor) RecordOptimizationRound(time.Duration, float64, bool, error) {}
func (NoOpMonitor) RecordDemosMined(int, int)                                  {}
func (NoOpMonitor) RecordCacheHit(string)                                      {}
func (NoOpMonitor) RecordCacheMiss(string)                                     {}

var _ contracts.Monitor = NoOpMonitor{}
