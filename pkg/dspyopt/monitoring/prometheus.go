package monitoring

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dspygo/optimizer/internal/contracts"
)

// PrometheusMonitor implements contracts.Monitor using Prometheus metrics.
type PrometheusMonitor struct {
	trialDuration   *prometheus.HistogramVec
	trialScore      *prometheus.HistogramVec
	trialFailures   prometheus.Counter
	roundDuration   *prometheus.HistogramVec
	roundsTotal     *prometheus.CounterVec
	roundBestScore  prometheus.Gauge
	demosMined      prometheus.Counter
	demosConsidered prometheus.Counter
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
}

// NewPrometheusMonitor creates a new Prometheus-backed Monitor.
func NewPrometheusMonitor(namespace string) *PrometheusMonitor {
	if namespace == "" {
		namespace = "dspyopt"
	}

	return &PrometheusMonitor{
		trialDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "trial_duration_seconds",
				Help:      "Duration of one objective-function trial evaluation.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 15),
			},
			[]string{"outcome"},
		),
		trialScore: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "trial_score",
				Help:      "Metric score a trial configuration achieved.",
				Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
			},
			[]string{"outcome"},
		),
		trialFailures: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "trial_failures_total",
				Help:      "Total number of trial evaluations that failed.",
			},
		),
		roundDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "optimization_round_duration_seconds",
				Help:      "Duration of one Teleprompter.Compile invocation.",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
			},
			[]string{"outcome"},
		),
		roundsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "optimization_rounds_total",
				Help:      "Total number of optimization rounds, by outcome.",
			},
			[]string{"outcome"},
		),
		roundBestScore: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "optimization_best_score",
				Help:      "Best score found by the most recent successful optimization round.",
			},
		),
		demosMined: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "demos_mined_total",
				Help:      "Total number of demonstrations kept across all mining passes.",
			},
		),
		demosConsidered: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "demos_considered_total",
				Help:      "Total number of trainset examples considered across all mining passes.",
			},
		),
		cacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Total number of cache hits.",
			},
			[]string{"cache_type"},
		),
		cacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Total number of cache misses.",
			},
			[]string{"cache_type"},
		),
	}
}

// RecordTrialEvaluation implements contracts.Monitor.
func (m *PrometheusMonitor) RecordTrialEvaluation(duration time.Duration, score float64, failed bool) {
	outcome := "ok"
	if failed {
		outcome = "failed"
		m.trialFailures.Inc()
	}
	m.trialDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	m.trialScore.WithLabelValues(outcome).Observe(score)
}

// RecordOptimizationRound implements contracts.Monitor.
func (m *PrometheusMonitor) RecordOptimizationRound(duration time.Duration, bestScore float64, adopted bool, err error) {
	outcome := "failed"
	if err == nil {
		outcome = "rejected"
		if adopted {
			outcome = "adopted"
			m.roundBestScore.Set(bestScore)
		}
	}
	m.roundDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	m.roundsTotal.WithLabelValues(outcome).Inc()
}

// RecordDemosMined implements contracts.Monitor.
func (m *PrometheusMonitor) RecordDemosMined(kept, considered int) {
	if kept > 0 {
		m.demosMined.Add(float64(kept))
	}
	if considered > 0 {
		m.demosConsidered.Add(float64(considered))
	}
}

// RecordCacheHit implements contracts.Monitor.
func (m *PrometheusMonitor) RecordCacheHit(cacheType string) {
	m.cacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss implements contracts.Monitor.
func (m *PrometheusMonitor) RecordCacheMiss(cacheType string) {
	m.cacheMisses.WithLabelValues(cacheType).Inc()
}

var _ contracts.Monitor = (*PrometheusMonitor)(nil)

// EventSink implements contracts.EventSink by counting events per name, so
// a ContinuousController's named lifecycle events (quality_check,
// optimization_started/completed/failed) show up as Prometheus counters
// alongside PrometheusMonitor's numeric metrics.
type EventSink struct {
	eventsTotal *prometheus.CounterVec
}

// NewEventSink creates a new Prometheus-backed EventSink.
func NewEventSink(namespace string) *EventSink {
	if namespace == "" {
		namespace = "dspyopt"
	}
	return &EventSink{
		eventsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Total number of controller lifecycle events, by name.",
			},
			[]string{"name"},
		),
	}
}

// OnEvent implements contracts.EventSink.
func (s *EventSink) OnEvent(_ context.Context, name string, _ map[string]interface{}) {
	s.eventsTotal.WithLabelValues(name).Inc()
}

var _ contracts.EventSink = (*EventSink)(nil)
