package dspyopt

import (
	"context"
	"sync"

	"github.com/dspygo/optimizer/internal/continuous"
	"github.com/dspygo/optimizer/internal/contracts"
	"github.com/dspygo/optimizer/internal/obs"
	"github.com/dspygo/optimizer/internal/primitives"
	"github.com/dspygo/optimizer/internal/teleprompt"
)

var (
	globalSettings *Settings
	settingsMux    sync.RWMutex
)

func init() {
	globalSettings = NewSettings()
}

// GetSettings returns the global settings instance. Thread-safe.
func GetSettings() *Settings {
	settingsMux.RLock()
	defer settingsMux.RUnlock()
	return globalSettings
}

// SetSettings replaces the global settings instance. Thread-safe.
func SetSettings(s *Settings) {
	settingsMux.Lock()
	defer settingsMux.Unlock()
	globalSettings = s
}

type settingsKey struct{}

// Context attaches request-scoped settings overrides to ctx: Optimizer.Compile
// called with that ctx uses them in place of the Optimizer's own snapshot, so
// a caller can pin a quality threshold or demo cap for one compile call
// without mutating the global settings.
func Context(ctx context.Context, opts ...SettingsOption) context.Context {
	settings := GetSettings().Copy()
	for _, opt := range opts {
		opt(settings)
	}
	return context.WithValue(ctx, settingsKey{}, settings)
}

// SettingsFromContext extracts settings from ctx, or returns the global
// settings if none were attached.
func SettingsFromContext(ctx context.Context) *Settings {
	if s, ok := ctx.Value(settingsKey{}).(*Settings); ok {
		return s
	}
	return GetSettings()
}

// Optimizer is the public facade over the Teleprompter and
// ContinuousController: a caller configures it once via Settings and then
// calls Compile (one-shot) or StartContinuous (long-lived) without touching
// internal/* directly.
type Optimizer struct {
	settings     *Settings
	teleprompter *teleprompt.Teleprompter
	monitor      contracts.Monitor
	events       contracts.EventSink
}

// NewOptimizer builds an Optimizer scoring trial configurations with metric,
// using a snapshot of the global Settings at construction time.
func NewOptimizer(metric contracts.MetricFn) *Optimizer {
	return &Optimizer{
		settings:     GetSettings().Copy(),
		teleprompter: teleprompt.New(metric),
		monitor:      contracts.NoopMonitor{},
		events:       contracts.NoopEventSink{},
	}
}

// WithMonitor attaches a Monitor (e.g. dspyopt/monitoring.NewPrometheusMonitor)
// that records trial, optimization-round, demo-mining, and cache metrics.
func (o *Optimizer) WithMonitor(monitor contracts.Monitor) *Optimizer {
	if monitor != nil {
		o.monitor = monitor
	}
	return o
}

// WithEventSink attaches an EventSink that a StartContinuous controller
// fires named lifecycle events through (quality_check,
// optimization_started/completed/failed), separately from Monitor's
// numeric metrics.
func (o *Optimizer) WithEventSink(sink contracts.EventSink) *Optimizer {
	if sink != nil {
		o.events = sink
	}
	return o
}

// Compile runs one Teleprompter.compile pass (§4.5) using this Optimizer's
// settings, or the settings Context attached to ctx when there are any.
func (o *Optimizer) Compile(ctx context.Context, student, teacher primitives.Program, trainset []*primitives.Example, descriptor contracts.Describer) (*primitives.OptimizedProgram, error) {
	call := *o
	if s, ok := ctx.Value(settingsKey{}).(*Settings); ok {
		call.settings = s
	}
	return o.teleprompter.Compile(ctx, student, teacher, trainset, descriptor, call.teleOptions())
}

// StartContinuous launches a ContinuousController (§4.6) that keeps
// re-optimizing program in the background, using this Optimizer's settings
// as the initial schedule and intensity.
func (o *Optimizer) StartContinuous(ctx context.Context, program, teacher primitives.Program, trainset, validationSet []*primitives.Example, descriptor contracts.Describer, metric contracts.MetricFn) *continuous.Handle {
	cfg := continuous.DefaultConfig()
	cfg.QualityThreshold = o.settings.QualityThreshold
	cfg.NumInstructionCandidates = o.settings.NumInstructionCandidates
	if o.settings.QualityCheckInterval > 0 {
		cfg.QualityCheckInterval = o.settings.QualityCheckInterval
	}
	if o.settings.OptimizationInterval > 0 {
		cfg.OptimizationInterval = o.settings.OptimizationInterval
	}
	cfg.ValidationSet = validationSet
	cfg.Monitor = o.monitor
	cfg.Events = o.events
	return continuous.Start(ctx, program, teacher, trainset, descriptor, metric, cfg)
}

func (o *Optimizer) teleOptions() teleprompt.Options {
	opts := teleprompt.DefaultOptions()
	s := o.settings

	opts.QualityThreshold = s.QualityThreshold
	opts.MaxDemos = s.MaxDemos
	opts.NumInstructionCandidates = s.NumInstructionCandidates
	opts.PerCallTimeout = s.Timeout
	opts.Monitor = o.monitor

	if s.Trace {
		opts.Progress = func(event contracts.ProgressEvent) {
			obs.Infof("dspyopt: phase=%s %s", event.Phase, event.Message)
		}
	}
	return opts
}
