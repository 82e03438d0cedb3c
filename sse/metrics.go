package sse

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the broker's prometheus collectors. A nil *Metrics records
// nothing.
type Metrics struct {
	published   *prometheus.CounterVec
	delivered   prometheus.Counter
	dropped     prometheus.Counter
	subscribers prometheus.Gauge
}

// NewMetrics creates the broker collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clinicq_sse_events_published_total",
			Help: "Events published, by event type.",
		}, []string{"type"}),
		delivered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clinicq_sse_deliveries_total",
			Help: "Events enqueued on subscriber channels.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clinicq_sse_deliveries_dropped_total",
			Help: "Events skipped because a subscriber channel was full or closed.",
		}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "clinicq_sse_subscribers",
			Help: "Currently registered subscriber channels.",
		}),
	}
	for _, c := range []prometheus.Collector{m.published, m.delivered, m.dropped, m.subscribers} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register sse metrics: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) observeDispatch(eventType string, r DispatchReport) {
	if m == nil {
		return
	}
	m.published.WithLabelValues(eventType).Inc()
	m.delivered.Add(float64(r.Delivered))
	m.dropped.Add(float64(r.Dropped))
}

func (m *Metrics) setSubscribers(n int) {
	if m == nil {
		return
	}
	m.subscribers.Set(float64(n))
}
