package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kirillkom/deductive-coding/internal/core/domain"
)

// AnalysisMetrics records tag analyses and runs. It satisfies ports.AnalysisRecorder.
type AnalysisMetrics struct {
	service string

	tagTotal     *prometheus.CounterVec
	tagDuration  *prometheus.HistogramVec
	runTotal     *prometheus.CounterVec
	runDuration  *prometheus.HistogramVec
	runTags      prometheus.Histogram
	runInFlight  prometheus.Gauge
	breakerState *prometheus.GaugeVec
}

func NewAnalysisMetrics(service string, registerer prometheus.Registerer) *AnalysisMetrics {
	tagTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "tag_total",
			Help:      "Total tag analyses by provider and resulting status.",
		},
		[]string{"service", "provider", "status"},
	)
	tagDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "tag_duration_seconds",
			Help:      "Provider call duration per tag in seconds.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"service", "provider"},
	)
	runTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "run_total",
			Help:      "Total finished analysis runs by outcome.",
		},
		[]string{"service", "status"},
	)
	runDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "run_duration_seconds",
			Help:      "Analysis run duration in seconds by outcome.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"service", "status"},
	)
	runTags := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "analysis",
			Name:        "run_tags",
			Help:        "Number of tags analyzed per run.",
			Buckets:     []float64{1, 2, 3, 5, 8, 13, 21, 34},
			ConstLabels: prometheus.Labels{"service": service},
		},
	)
	runInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "analysis",
			Name:        "runs_in_flight",
			Help:        "Number of analysis runs in progress.",
			ConstLabels: prometheus.Labels{"service": service},
		},
	)
	breakerState := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "breaker_open",
			Help:      "1 when the provider circuit breaker is open, 0.5 when half-open, 0 when closed.",
		},
		[]string{"service", "operation"},
	)

	registerer.MustRegister(tagTotal, tagDuration, runTotal, runDuration, runTags, runInFlight, breakerState)

	return &AnalysisMetrics{
		service:      service,
		tagTotal:     tagTotal,
		tagDuration:  tagDuration,
		runTotal:     runTotal,
		runDuration:  runDuration,
		runTags:      runTags,
		runInFlight:  runInFlight,
		breakerState: breakerState,
	}
}

func (m *AnalysisMetrics) StartRun() {
	m.runInFlight.Inc()
}

func (m *AnalysisMetrics) RecordTagAnalysis(provider string, status domain.TagStatus, duration time.Duration) {
	if provider == "" {
		provider = "unknown"
	}
	m.tagTotal.WithLabelValues(m.service, provider, string(status)).Inc()
	m.tagDuration.WithLabelValues(m.service, provider).Observe(duration.Seconds())
}

func (m *AnalysisMetrics) RecordRun(status string, analyzed int, duration time.Duration) {
	m.runInFlight.Dec()
	if status == "" {
		status = "unknown"
	}
	m.runTotal.WithLabelValues(m.service, status).Inc()
	m.runDuration.WithLabelValues(m.service, status).Observe(duration.Seconds())
	m.runTags.Observe(float64(analyzed))
}

// RecordBreakerState matches resilience.Config.OnStateChange.
func (m *AnalysisMetrics) RecordBreakerState(operation, _, to string) {
	value := 0.0
	switch to {
	case "open":
		value = 1
	case "half-open":
		value = 0.5
	}
	m.breakerState.WithLabelValues(m.service, operation).Set(value)
}
