package metrics

import "github.com/prometheus/client_golang/prometheus"

// ContactMetrics exposes counters for the contact submission pipeline.
type ContactMetrics struct {
	submissionsTotal *prometheus.CounterVec
}

// NewContactMetrics registers and returns the pipeline counters. A nil
// registerer falls back to the default registry.
func NewContactMetrics(reg prometheus.Registerer) *ContactMetrics {
	m := &ContactMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smilepoint",
			Subsystem: "contact",
			Name:      "submissions_total",
			Help:      "Contact form submissions by pipeline outcome",
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal)
	return m
}

// ObserveSubmission records one submission outcome. Safe on a nil receiver so
// callers without metrics wired don't have to branch.
func (m *ContactMetrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(outcome).Inc()
}
