package triage

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the triage subsystem.
type Metrics struct {
	EvaluationsTotal *prometheus.CounterVec
	Confidence       prometheus.Histogram
	ClassifyDuration prometheus.Histogram
	ClassifyErrors   prometheus.Counter
}

// NewMetrics registers and returns triage metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EvaluationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "resolve_evaluations_total",
			Help: "Total complaint evaluations by outcome and decision reason.",
		}, []string{"outcome", "reason"}),
		Confidence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "resolve_verdict_confidence",
			Help:    "Final confidence of complaint verdicts.",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11), // 0.0 .. 1.0
		}),
		ClassifyDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "resolve_classify_duration_seconds",
			Help:    "Duration of individual classifier calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms .. ~20s
		}),
		ClassifyErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "resolve_classify_errors_total",
			Help: "Total failed classifier calls.",
		}),
	}

	reg.MustRegister(
		m.EvaluationsTotal,
		m.Confidence,
		m.ClassifyDuration,
		m.ClassifyErrors,
	)

	return m
}

// Hooks returns an EngineHooks that increments the corresponding metrics.
func (m *Metrics) Hooks() EngineHooks {
	return EngineHooks{
		OnClassify: func(duration float64, err error) {
			m.ClassifyDuration.Observe(duration)
			if err != nil {
				m.ClassifyErrors.Inc()
			}
		},
		OnVerdict: func(v *Verdict) {
			outcome := "rejected"
			if v.Valid {
				outcome = "accepted"
			}
			m.EvaluationsTotal.WithLabelValues(outcome, v.Reason).Inc()
			m.Confidence.Observe(v.Confidence)
		},
	}
}
