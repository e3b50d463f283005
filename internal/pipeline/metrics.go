package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records stage and run counters. A nil *Metrics records nothing.
type Metrics struct {
	stageDuration *prometheus.HistogramVec
	stageFailures *prometheus.CounterVec
	stageRetries  *prometheus.CounterVec
	runs          *prometheus.CounterVec
}

// NewMetrics registers the pipeline metrics with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		stageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "factcheck",
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each workflow stage",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"stage"}),
		stageFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "factcheck",
			Name:      "stage_failures_total",
			Help:      "Stages that failed after exhausting retries",
		}, []string{"stage"}),
		stageRetries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "factcheck",
			Name:      "stage_retries_total",
			Help:      "Stage retry attempts",
		}, []string{"stage"}),
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "factcheck",
			Name:      "runs_total",
			Help:      "Completed workflow runs by route and status",
		}, []string{"route", "status"}),
	}
}

func (m *Metrics) observeStage(stage Stage, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(string(stage)).Observe(d.Seconds())
}

func (m *Metrics) stageFailed(stage Stage) {
	if m == nil {
		return
	}
	m.stageFailures.WithLabelValues(string(stage)).Inc()
}

func (m *Metrics) stageRetried(stage Stage) {
	if m == nil {
		return
	}
	m.stageRetries.WithLabelValues(string(stage)).Inc()
}

func (m *Metrics) runCompleted(route, status string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(route, status).Inc()
}
