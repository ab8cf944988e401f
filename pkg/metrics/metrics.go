package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all reminder scheduler metrics
type Metrics struct {
	Ticks            prometheus.Counter
	TickErrors       prometheus.Counter
	TickDuration     prometheus.Histogram
	InterviewMatches prometheus.Counter
	ClaimsWon        prometheus.Counter
	ClaimsLost       prometheus.Counter
	Deliveries       *prometheus.CounterVec
}

// New creates all scheduler metrics and registers them with reg. Pass
// prometheus.DefaultRegisterer in production; tests use a fresh registry.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Ticks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Total number of scheduler ticks",
		}),
		TickErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tick_errors_total",
			Help:      "Total number of ticks that ended with an error",
		}),
		TickDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Time spent evaluating one tick",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}),
		InterviewMatches: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interview_matches_total",
			Help:      "Interviews that fell into the reminder window",
		}),
		ClaimsWon: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "claims_won_total",
			Help:      "Dedup claims won (notification authorized)",
		}),
		ClaimsLost: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "claims_lost_total",
			Help:      "Dedup claims lost to an earlier claimer",
		}),
		Deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Per-recipient delivery attempts by outcome",
		}, []string{"outcome"}),
	}
}
