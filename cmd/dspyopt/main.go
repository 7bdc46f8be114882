// Command dspyopt compiles a student program against a teacher and a
// labeled trainset, or runs it as a long-lived, continuously
// re-optimizing service.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dspygo/optimizer/internal/contracts"
	"github.com/dspygo/optimizer/internal/evaluate"
	"github.com/dspygo/optimizer/internal/obs"
	"github.com/dspygo/optimizer/internal/predict"
	"github.com/dspygo/optimizer/internal/primitives"
	"github.com/dspygo/optimizer/internal/runner"
	"github.com/dspygo/optimizer/internal/runner/cache"
	"github.com/dspygo/optimizer/internal/signatures"
	"github.com/dspygo/optimizer/pkg/dspyopt"
	"github.com/dspygo/optimizer/pkg/dspyopt/monitoring"

	// Imported for their init() side effect: each self-registers with
	// runner.RegisterProvider so runner.NewLM can route to it by prefix.
	// anthropic is also used directly below, for reportUsage's cost estimate.
	"github.com/dspygo/optimizer/internal/runner/anthropic"
	_ "github.com/dspygo/optimizer/internal/runner/azure"
	_ "github.com/dspygo/optimizer/internal/runner/bedrock"
	_ "github.com/dspygo/optimizer/internal/runner/openai"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "version":
		fmt.Printf("dspyopt v%s\n", dspyopt.Version)
		return
	case "compile":
		err = runCompile(os.Args[2:])
	case "serve":
		err = runServe(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "dspyopt:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("dspyopt — prompt-optimization engine CLI")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  dspyopt version                    Show version information")
	fmt.Println("  dspyopt compile -signature ... -trainset ... -out ...")
	fmt.Println("                                      Run one compile pass and write the result")
	fmt.Println("  dspyopt serve -signature ... -trainset ... -validation ...")
	fmt.Println("                                      Start a continuously re-optimizing server")
}

// sharedFlags holds the flags compile and serve both need: how to build a
// student/teacher pair and how to talk to the backend LM.
type sharedFlags struct {
	signature    string
	trainset     string
	model        string
	apiKey       string
	quality      float64
	maxDemos     int
	candidates   int
	namespace    string
	requestsPerM int
	cacheDir     string
	noCache      bool
	metricExpr   string
	metricKind   string
	metricField  string
	maxRetries   int
}

func bindSharedFlags(fs *flag.FlagSet) *sharedFlags {
	f := &sharedFlags{}
	fs.StringVar(&f.signature, "signature", "question -> answer", "signature spec, e.g. 'question -> answer'")
	fs.StringVar(&f.trainset, "trainset", "", "path to a JSON file containing an array of examples")
	fs.StringVar(&f.model, "model", "openai/gpt-4o-mini", "model identifier passed to internal/runner.NewLM")
	fs.StringVar(&f.apiKey, "api-key", os.Getenv("DSPYOPT_API_KEY"), "API key for the backend provider")
	fs.Float64Var(&f.quality, "quality-threshold", 0.7, "minimum demo quality / quality-check trigger")
	fs.IntVar(&f.maxDemos, "max-demos", 4, "maximum demonstrations per configuration")
	fs.IntVar(&f.candidates, "instruction-candidates", 5, "instruction candidate pool size")
	fs.StringVar(&f.namespace, "metrics-namespace", "dspyopt", "Prometheus namespace for emitted metrics")
	fs.IntVar(&f.requestsPerM, "requests-per-minute", 0, "cap on LM requests per minute (0 = unlimited)")
	fs.StringVar(&f.cacheDir, "cache-dir", "", "disk cache directory (default: DSPYOPT_CACHE_DIR or os.TempDir())")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable the disk-backed LM response cache")
	fs.StringVar(&f.metricExpr, "metric", "", "govaluate expression scoring a prediction (overrides -metric-kind)")
	fs.StringVar(&f.metricKind, "metric-kind", "exact", "one of: exact (all fields), field-exact, field-contains, field-f1 (single -metric-field)")
	fs.StringVar(&f.metricField, "metric-field", "", "output field name for -metric-kind field-*")
	fs.IntVar(&f.maxRetries, "max-retries", 3, "retries for a rate-limited or server-error LM call (0 disables retrying)")
	return f
}

// buildMetric resolves the scoring metric: -metric (a govaluate expression)
// takes precedence, then -metric-kind, falling back to all-fields exact
// match.
func (f *sharedFlags) buildMetric() (contracts.MetricFn, error) {
	if f.metricExpr != "" {
		return evaluate.NewExpressionMetric(f.metricExpr)
	}
	switch f.metricKind {
	case "", "exact":
		return exactMatch, nil
	case "field-exact":
		return evaluate.ExactMatch(f.metricField), nil
	case "field-contains":
		return evaluate.ContainsMatch(f.metricField), nil
	case "field-f1":
		return evaluate.F1Score(f.metricField), nil
	default:
		return nil, fmt.Errorf("unknown -metric-kind %q", f.metricKind)
	}
}

func (f *sharedFlags) loadTrainset() ([]*primitives.Example, error) {
	if f.trainset == "" {
		return nil, fmt.Errorf("-trainset is required")
	}
	data, err := os.ReadFile(f.trainset)
	if err != nil {
		return nil, fmt.Errorf("reading trainset: %w", err)
	}
	var examples []*primitives.Example
	if err := json.Unmarshal(data, &examples); err != nil {
		return nil, fmt.Errorf("parsing trainset: %w", err)
	}
	if len(examples) == 0 {
		return nil, fmt.Errorf("trainset is empty")
	}
	return examples, nil
}

func (f *sharedFlags) buildProgram(sig *signatures.Signature, monitor contracts.Monitor) (*predict.Predict, *runner.LM, error) {
	lm, err := runner.NewLM(runner.LMOptions{Model: f.model, APIKey: f.apiKey})
	if err != nil {
		return nil, nil, fmt.Errorf("building LM client: %w", err)
	}
	var programRunner contracts.ProgramRunner = runner.NewLMProgramRunner(lm, sig.OutputFieldNames())

	if f.maxRetries > 0 {
		retryCfg := runner.DefaultRetryConfig()
		retryCfg.MaxRetries = f.maxRetries
		programRunner = runner.NewRetryingRunner(programRunner, retryCfg)
	}

	if f.requestsPerM > 0 {
		programRunner = runner.NewRateLimitedRunner(programRunner, f.requestsPerM)
	}

	if !f.noCache {
		cacheCfg := *dspyopt.GetSettings().CacheConfig
		if f.cacheDir != "" {
			cacheCfg.Dir = f.cacheDir
		}
		if cacheCfg.Enabled {
			diskCache, err := cache.NewDiskCache(cache.DiskCacheOptions{
				CachePath: cacheCfg.Dir,
				MaxSize:   cacheCfg.MaxSizeMB * 1024 * 1024,
				TTL:       cacheCfg.TTL,
			})
			if err != nil {
				return nil, nil, fmt.Errorf("opening disk cache: %w", err)
			}
			programRunner = runner.NewCachedRunner(programRunner, diskCache, cacheCfg.TTL).WithMonitor(monitor)
		}
	}

	program, err := predict.New(sig, programRunner)
	if err != nil {
		return nil, nil, err
	}
	return program, lm, nil
}

// exactMatch is the default metric: a 1.0 if every output field stringifies
// identically, 0.0 otherwise.
func exactMatch(example *primitives.Example, prediction *primitives.Prediction) float64 {
	for field, want := range example.Outputs() {
		got, ok := prediction.Get(field)
		if !ok || fmt.Sprint(got) != fmt.Sprint(want) {
			return 0.0
		}
	}
	return 1.0
}

func buildOptimizer(f *sharedFlags, monitor contracts.Monitor, metric contracts.MetricFn, extra ...dspyopt.SettingsOption) *dspyopt.Optimizer {
	opts := append([]dspyopt.SettingsOption{
		dspyopt.WithQualityThreshold(f.quality),
		dspyopt.WithMaxDemos(f.maxDemos),
		dspyopt.WithNumInstructionCandidates(f.candidates),
	}, extra...)
	dspyopt.Configure(opts...)
	return dspyopt.NewOptimizer(metric).WithMonitor(monitor)
}

func runCompile(args []string) error {
	fs := flag.NewFlagSet("compile", flag.ExitOnError)
	shared := bindSharedFlags(fs)
	out := fs.String("out", "", "path to write the optimized program as JSON (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sig, err := signatures.NewSignature(shared.signature)
	if err != nil {
		return fmt.Errorf("parsing signature: %w", err)
	}
	trainset, err := shared.loadTrainset()
	if err != nil {
		return err
	}
	metric, err := shared.buildMetric()
	if err != nil {
		return err
	}

	monitor := monitoring.NewPrometheusMonitor(shared.namespace)
	student, studentLM, err := shared.buildProgram(sig, monitor)
	if err != nil {
		return err
	}
	teacher, teacherLM, err := shared.buildProgram(sig, monitor)
	if err != nil {
		return err
	}

	optimizer := buildOptimizer(shared, monitor, metric)
	result, err := optimizer.Compile(context.Background(), student, teacher, trainset, sig)
	if err != nil {
		return fmt.Errorf("compile: %w", err)
	}
	reportUsage(studentLM, teacherLM)

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	if *out == "" {
		fmt.Println(string(encoded))
		return nil
	}
	return os.WriteFile(*out, encoded, 0o644)
}

// reportUsage prints the combined token usage tracked by the student and
// teacher LM clients, so a compile run's cost is visible without wiring a
// separate accounting system. For anthropic models it also estimates a
// dollar cost from anthropic.GetModelInfo's published per-token pricing.
func reportUsage(lms ...*runner.LM) {
	var total runner.UsageTracker
	var cost float64
	for _, lm := range lms {
		u := lm.Usage()
		total.TotalPromptTokens += u.TotalPromptTokens
		total.TotalCompletionTokens += u.TotalCompletionTokens
		total.TotalTokens += u.TotalTokens
		total.RequestCount += u.RequestCount

		if lm.Provider() == "anthropic" {
			info := anthropic.GetModelInfo(lm.Name())
			cost += float64(u.TotalPromptTokens) / 1_000_000 * info.CostPer1MInput
			cost += float64(u.TotalCompletionTokens) / 1_000_000 * info.CostPer1MOutput
		}
	}
	total.TotalCost = cost

	msg := fmt.Sprintf("dspyopt: %d LM requests, %d tokens (%d prompt, %d completion)",
		total.RequestCount, total.TotalTokens, total.TotalPromptTokens, total.TotalCompletionTokens)
	if total.TotalCost > 0 {
		msg += fmt.Sprintf(", ~$%.4f estimated (anthropic only)", total.TotalCost)
	}
	fmt.Fprintln(os.Stderr, msg)
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	shared := bindSharedFlags(fs)
	validationPath := fs.String("validation", "", "path to a JSON validation set (defaults to the trainset)")
	qualityCheckEvery := fs.Duration("quality-check-interval", 10*time.Minute, "how often to sample the validation set")
	optimizeEvery := fs.Duration("optimize-interval", 24*time.Hour, "how often to run a scheduled optimization")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sig, err := signatures.NewSignature(shared.signature)
	if err != nil {
		return fmt.Errorf("parsing signature: %w", err)
	}
	trainset, err := shared.loadTrainset()
	if err != nil {
		return err
	}

	validation := trainset
	if *validationPath != "" {
		data, err := os.ReadFile(*validationPath)
		if err != nil {
			return fmt.Errorf("reading validation set: %w", err)
		}
		if err := json.Unmarshal(data, &validation); err != nil {
			return fmt.Errorf("parsing validation set: %w", err)
		}
	}

	metric, err := shared.buildMetric()
	if err != nil {
		return err
	}

	monitor := monitoring.NewPrometheusMonitor(shared.namespace)
	program, programLM, err := shared.buildProgram(sig, monitor)
	if err != nil {
		return err
	}
	teacher, teacherLM, err := shared.buildProgram(sig, monitor)
	if err != nil {
		return err
	}

	events := contracts.NewMultiEventSink()
	events.Add(obs.NewEventSink())
	events.Add(monitoring.NewEventSink(shared.namespace))

	optimizer := buildOptimizer(shared, monitor, metric,
		dspyopt.WithQualityCheckInterval(*qualityCheckEvery),
		dspyopt.WithOptimizationInterval(*optimizeEvery),
	).WithEventSink(events)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handle := optimizer.StartContinuous(ctx, program, teacher, trainset, validation, sig, metric)

	fmt.Println("dspyopt: continuous controller running, press Ctrl+C to stop")
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	handle.Stop(stopCtx)
	reportUsage(programLM, teacherLM)
	return nil
}
