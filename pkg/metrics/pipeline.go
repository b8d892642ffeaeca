package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics records per-stage timings and terminal outcomes for quote
// pipeline runs.
type PipelineMetrics struct {
	stageDuration *prometheus.HistogramVec
	outcomes      *prometheus.CounterVec
}

// NewPipelineMetrics registers the pipeline metrics on the provided registerer.
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	if reg == nil {
		return &PipelineMetrics{}
	}
	stageDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quote_stage_duration_seconds",
		Help:    "Duration of quote pipeline stages in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_pipeline_outcomes",
		Help: "Terminal outcomes of quote pipeline runs.",
	}, []string{"outcome"})
	reg.MustRegister(stageDuration, outcomes)
	return &PipelineMetrics{
		stageDuration: stageDuration,
		outcomes:      outcomes,
	}
}

// ObserveStage records the duration for the named pipeline stage.
func (p *PipelineMetrics) ObserveStage(stage string, duration time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(normalizeLabel(stage)).Observe(duration.Seconds())
}

// IncOutcome increments the counter for a terminal pipeline outcome.
func (p *PipelineMetrics) IncOutcome(outcome string) {
	if p == nil || p.outcomes == nil {
		return
	}
	p.outcomes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
