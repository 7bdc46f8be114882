package continuous

import (
	"context"
	"time"

	"github.com/dspygo/optimizer/internal/contracts"
	"github.com/dspygo/optimizer/internal/primitives"
)

// Config is the controller's tunable schedule and optimization intensity,
// mergeable at runtime via update_config.
type Config struct {
	QualityCheckInterval time.Duration
	OptimizationInterval time.Duration
	QualityThreshold     float64
	ImprovementThreshold float64 // relative improvement required to adopt a new program, e.g. 0.02
	MaxBackoff           time.Duration

	NumInstructionCandidates int
	MaxIterations            int

	ValidationSet []*primitives.Example
	Metric        contracts.MetricFn
	Monitor       contracts.Monitor
	Events        contracts.EventSink
}

// DefaultConfig returns the schedule §4.6 describes.
func DefaultConfig() Config {
	return Config{
		QualityCheckInterval:     10 * time.Minute,
		OptimizationInterval:     24 * time.Hour,
		QualityThreshold:         0.7,
		ImprovementThreshold:     0.02,
		MaxBackoff:               30 * time.Minute,
		NumInstructionCandidates: 5,
		MaxIterations:            20,
		Monitor:                  contracts.NoopMonitor{},
		Events:                   contracts.NoopEventSink{},
	}
}

// sampleSize caps how many validation examples one quality check samples.
const sampleSize = 20

// staleAfter is the "time since last optimization" trigger threshold (c).
const staleAfter = 48 * time.Hour

// decreasingWindow is how many recent scores trigger (b).
const decreasingWindow = 3

type commandKind int

const (
	cmdTriggerOptimization commandKind = iota
	cmdUpdateConfig
	cmdGetStatus
	cmdStop
)

type command struct {
	kind        commandKind
	configPatch func(Config) Config
	reply       chan Snapshot
}

// Handle is the opaque reference Start returns; all interaction with a
// running controller goes through it.
type Handle struct {
	cmds chan command
	done chan struct{}
}

// TriggerOptimization forces an immediate optimization tick, per §4.6's
// external command of the same name. It enqueues the request and returns
// without waiting for the optimization itself to finish.
func (h *Handle) TriggerOptimization(ctx context.Context) {
	select {
	case h.cmds <- command{kind: cmdTriggerOptimization}:
	case <-ctx.Done():
	case <-h.done:
	}
}

// UpdateConfig merges patch into the controller's live configuration.
func (h *Handle) UpdateConfig(ctx context.Context, patch func(Config) Config) {
	select {
	case h.cmds <- command{kind: cmdUpdateConfig, configPatch: patch}:
	case <-ctx.Done():
	case <-h.done:
	}
}

// GetStatus returns a snapshot of the controller's current state.
func (h *Handle) GetStatus(ctx context.Context) (Snapshot, bool) {
	reply := make(chan Snapshot, 1)
	select {
	case h.cmds <- command{kind: cmdGetStatus, reply: reply}:
	case <-ctx.Done():
		return Snapshot{}, false
	case <-h.done:
		return Snapshot{}, false
	}
	select {
	case snap := <-reply:
		return snap, true
	case <-ctx.Done():
		return Snapshot{}, false
	case <-h.done:
		return Snapshot{}, false
	}
}

// Stop requests graceful shutdown and blocks until the controller goroutine
// has exited.
func (h *Handle) Stop(ctx context.Context) {
	select {
	case h.cmds <- command{kind: cmdStop}:
	case <-h.done:
		return
	case <-ctx.Done():
		return
	}
	select {
	case <-h.done:
	case <-ctx.Done():
	}
}
