package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveToggle(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewReactions(reg)

	m.ObserveToggle("like", ResultActivated, 5*time.Millisecond)
	m.ObserveToggle("like", ResultActivated, 5*time.Millisecond)
	m.ObserveToggle("bookmark", "not_found", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.toggles.WithLabelValues("like", ResultActivated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.toggles.WithLabelValues("bookmark", "not_found")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.toggleDuration))
}

func TestLiveSubscribersGauge(t *testing.T) {
	m := NewReactions(prometheus.NewRegistry())

	m.SubscriberOpened()
	m.SubscriberOpened()
	m.SubscriberClosed()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.liveSubscribers))
}

func TestNilReactionsIsNoop(t *testing.T) {
	var m *Reactions
	assert.NotPanics(t, func() {
		m.ObserveToggle("like", ResultDeactivated, time.Millisecond)
		m.SubscriberOpened()
		m.SubscriberClosed()
	})
}
