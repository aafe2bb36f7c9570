package remote

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records poll outcomes per source. A nil *Metrics records nothing.
type Metrics struct {
	polls    *prometheus.CounterVec
	failures *prometheus.CounterVec
	updates  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	keys     *prometheus.GaugeVec
}

// NewMetrics registers the remote poll metrics with reg under namespace.
//
// Example:
//
//	m := remote.NewMetrics("myapp", prometheus.DefaultRegisterer)
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		polls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "remote",
				Name:      "polls_total",
				Help:      "Total number of remote polls",
			},
			[]string{"source"},
		),
		failures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "remote",
				Name:      "poll_failures_total",
				Help:      "Total number of failed remote polls",
			},
			[]string{"source"},
		),
		updates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "remote",
				Name:      "updates_total",
				Help:      "Total number of polls that changed the layer contents",
			},
			[]string{"source"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "remote",
				Name:      "poll_duration_seconds",
				Help:      "Remote poll duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		keys: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "remote",
				Name:      "keys",
				Help:      "Number of keys held for the source",
			},
			[]string{"source"},
		),
	}
}

func (m *Metrics) observePoll(source string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.polls.WithLabelValues(source).Inc()
	m.duration.WithLabelValues(source).Observe(d.Seconds())
	if err != nil {
		m.failures.WithLabelValues(source).Inc()
	}
}

func (m *Metrics) observeUpdate(source string, keys int) {
	if m == nil {
		return
	}
	m.updates.WithLabelValues(source).Inc()
	m.keys.WithLabelValues(source).Set(float64(keys))
}
