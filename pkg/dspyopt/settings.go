package dspyopt

import (
	"sync"
	"time"

	"github.com/dspygo/optimizer/internal/contracts"
)

// Settings holds the global configuration for dspyopt. It is merged into
// per-call teleprompt.Options / continuous.Config by NewOptimizer and
// Context, the same way the teacher's global Settings fed per-call
// CallOptions.
type Settings struct {
	// LM is a ProgramRunner held in the settings for callers to read back.
	// Optimizer does not read it: trials run through the student Program
	// passed to Compile.
	LM contracts.ProgramRunner

	// Temperature and MaxTokens are default per-call tuning values. Optimizer
	// does not forward them: trial evaluations call the student Program,
	// whose Forward takes no CallOptions.
	Temperature float64
	MaxTokens   int

	// QualityThreshold is the minimum per-demo metric score the
	// DemonstrationMiner keeps, and the ContinuousController's trigger
	// threshold for an unprompted re-optimization.
	QualityThreshold float64

	// MaxDemos bounds how many demonstrations any one Configuration uses.
	MaxDemos int

	// NumInstructionCandidates is the instruction-candidate pool size a
	// compile run generates before search begins.
	NumInstructionCandidates int

	// QualityCheckInterval and OptimizationInterval schedule a
	// ContinuousController's two ticks (§4.6). Zero means "use
	// continuous.DefaultConfig's schedule".
	QualityCheckInterval time.Duration
	OptimizationInterval time.Duration

	// CacheConfig controls the disk-backed LM response cache.
	CacheConfig *CacheConfig

	// Timeout bounds a single trial evaluation call.
	Timeout time.Duration

	// MaxRetries is a default retry count for failed LM calls. Optimizer does
	// not read it.
	MaxRetries int

	// Trace enables verbose progress reporting (wired to
	// contracts.ProgressCallback instead of being discarded).
	Trace bool

	// Experimental holds feature flags not yet promoted to first-class
	// Settings fields.
	Experimental map[string]interface{}

	mu sync.RWMutex
}

// NewSettings creates a new Settings instance with the defaults §6 names.
func NewSettings() *Settings {
	cacheConfig := DefaultCacheConfig()
	return &Settings{
		Temperature:              0.0,
		MaxTokens:                1000,
		QualityThreshold:         0.7,
		MaxDemos:                 4,
		NumInstructionCandidates: 5,
		QualityCheckInterval:     10 * time.Minute,
		OptimizationInterval:     24 * time.Hour,
		CacheConfig:              cacheConfig,
		Timeout:                  30 * time.Second,
		MaxRetries:               3,
		Trace:                    false,
		Experimental:             make(map[string]interface{}),
	}
}

// Copy creates a deep copy of the settings.
func (s *Settings) Copy() *Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	exp := make(map[string]interface{}, len(s.Experimental))
	for k, v := range s.Experimental {
		exp[k] = v
	}

	var cacheConfig *CacheConfig
	if s.CacheConfig != nil {
		cacheConfig = &CacheConfig{
			Dir:       s.CacheConfig.Dir,
			MaxSizeMB: s.CacheConfig.MaxSizeMB,
			TTL:       s.CacheConfig.TTL,
			Enabled:   s.CacheConfig.Enabled,
		}
	}

	return &Settings{
		LM:                       s.LM,
		Temperature:              s.Temperature,
		MaxTokens:                s.MaxTokens,
		QualityThreshold:         s.QualityThreshold,
		MaxDemos:                 s.MaxDemos,
		NumInstructionCandidates: s.NumInstructionCandidates,
		QualityCheckInterval:     s.QualityCheckInterval,
		OptimizationInterval:     s.OptimizationInterval,
		CacheConfig:              cacheConfig,
		Timeout:                  s.Timeout,
		MaxRetries:               s.MaxRetries,
		Trace:                    s.Trace,
		Experimental:             exp,
	}
}

// SettingsOption is a functional option for configuring Settings.
type SettingsOption func(*Settings)

// WithLM sets Settings.LM.
func WithLM(lm contracts.ProgramRunner) SettingsOption {
	return func(s *Settings) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.LM = lm
	}
}

// WithTemperature sets the default sampling temperature.
func WithTemperature(temp float64) SettingsOption {
	return func(s *Settings) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.Temperature = temp
	}
}

// WithMaxTokens sets the default maximum number of tokens to generate.
func WithMaxTokens(max int) SettingsOption {
	return func(s *Settings) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.MaxTokens = max
	}
}

// WithQualityThreshold sets the demonstration-mining / quality-check
// threshold.
func WithQualityThreshold(threshold float64) SettingsOption {
	return func(s *Settings) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.QualityThreshold = threshold
	}
}

// WithMaxDemos sets the maximum demonstrations per configuration.
func WithMaxDemos(max int) SettingsOption {
	return func(s *Settings) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.MaxDemos = max
	}
}

// WithNumInstructionCandidates sets the instruction-candidate pool size.
func WithNumInstructionCandidates(n int) SettingsOption {
	return func(s *Settings) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.NumInstructionCandidates = n
	}
}

// WithQualityCheckInterval sets how often a ContinuousController samples the
// validation set.
func WithQualityCheckInterval(interval time.Duration) SettingsOption {
	return func(s *Settings) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.QualityCheckInterval = interval
	}
}

// WithOptimizationInterval sets how often a ContinuousController runs a
// scheduled optimization round regardless of quality.
func WithOptimizationInterval(interval time.Duration) SettingsOption {
	return func(s *Settings) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.OptimizationInterval = interval
	}
}

// WithTimeout sets the per-trial timeout.
func WithTimeout(timeout time.Duration) SettingsOption {
	return func(s *Settings) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.Timeout = timeout
	}
}

// WithMaxRetries sets the maximum number of retries.
func WithMaxRetries(max int) SettingsOption {
	return func(s *Settings) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.MaxRetries = max
	}
}

// WithTrace enables or disables verbose progress reporting.
func WithTrace(enabled bool) SettingsOption {
	return func(s *Settings) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.Trace = enabled
	}
}

// WithExperimental sets an experimental feature flag.
func WithExperimental(key string, value interface{}) SettingsOption {
	return func(s *Settings) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.Experimental[key] = value
	}
}
