package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "promptshelf"

// Result labels for the toggle counter.
const (
	ResultActivated   = "activated"
	ResultDeactivated = "deactivated"
)

// Reactions holds the reaction subsystem's Prometheus collectors.
type Reactions struct {
	toggles         *prometheus.CounterVec
	toggleDuration  *prometheus.HistogramVec
	liveSubscribers prometheus.Gauge
}

// NewReactions registers the collectors with reg. A nil reg uses the default registerer.
func NewReactions(reg prometheus.Registerer) *Reactions {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Reactions{
		toggles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reaction_toggles_total",
			Help:      "Toggle attempts by reaction kind and result",
		}, []string{"kind", "result"}),
		toggleDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reaction_toggle_duration_seconds",
			Help:      "Time spent in the toggle procedure",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		liveSubscribers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_subscribers",
			Help:      "Open live membership subscriptions",
		}),
	}
}

// ObserveToggle records one toggle. result is ResultActivated, ResultDeactivated or a
// failure kind.
func (m *Reactions) ObserveToggle(kind, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.toggles.WithLabelValues(kind, result).Inc()
	m.toggleDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

func (m *Reactions) SubscriberOpened() {
	if m != nil {
		m.liveSubscribers.Inc()
	}
}

func (m *Reactions) SubscriberClosed() {
	if m != nil {
		m.liveSubscribers.Dec()
	}
}
