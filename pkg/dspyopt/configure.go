package dspyopt

// Configure updates the global dspyopt settings. This is the primary way to
// set up default optimization intensity before calling NewOptimizer.
//
// Example:
//
//	dspyopt.Configure(
//	    dspyopt.WithLM(myRunner),
//	    dspyopt.WithQualityThreshold(0.8),
//	    dspyopt.WithMaxDemos(6),
//	)
func Configure(opts ...SettingsOption) {
	settings := GetSettings()
	for _, opt := range opts {
		opt(settings)
	}
}
