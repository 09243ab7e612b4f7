package runner

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the prometheus collectors a Runner feeds. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	StepDuration *prometheus.HistogramVec
	Steps        *prometheus.CounterVec
	Runs         *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "todobench",
				Name:      "step_duration_seconds",
				Help:      "Duration of suite steps by phase.",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
			},
			[]string{"phase"},
		),
		Steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "todobench",
				Name:      "steps_total",
				Help:      "Executed suite steps by phase and result.",
			},
			[]string{"phase", "result"},
		),
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "todobench",
				Name:      "runs_total",
				Help:      "Suite runs by result.",
			},
			[]string{"result"},
		),
	}
	reg.MustRegister(m.StepDuration, m.Steps, m.Runs)
	return m
}

func (m *Metrics) observeStep(res StepResult) {
	if m == nil {
		return
	}
	result := "ok"
	if res.Error != "" {
		result = "error"
	}
	m.StepDuration.WithLabelValues(res.Phase).Observe(res.Duration.Seconds())
	m.Steps.WithLabelValues(res.Phase, result).Inc()
}

func (m *Metrics) observeRun(result string) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(result).Inc()
}
