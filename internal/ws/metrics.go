package ws

import "github.com/prometheus/client_golang/prometheus"

const (
	resultDelivered = "delivered"
	resultFailed    = "failed"
	resultSkipped   = "skipped"
)

// Metrics instruments listener churn and delivery outcomes. A nil *Metrics
// records nothing.
type Metrics struct {
	listeners  prometheus.Gauge
	deliveries *prometheus.CounterVec
}

// NewMetrics creates hub metrics and registers them with reg. Collectors that
// are already registered are reused.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		listeners: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "giving",
			Subsystem: "live",
			Name:      "listeners",
			Help:      "Number of connected team listeners",
		}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "giving",
			Subsystem: "live",
			Name:      "deliveries_total",
			Help:      "Snapshot delivery attempts by outcome",
		}, []string{"result"}),
	}
	if reg == nil {
		return m
	}
	if err := reg.Register(m.listeners); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				m.listeners = existing
			}
		}
	}
	if err := reg.Register(m.deliveries); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				m.deliveries = existing
			}
		}
	}
	return m
}

func (m *Metrics) listenerAdded() {
	if m == nil {
		return
	}
	m.listeners.Inc()
}

func (m *Metrics) listenerRemoved() {
	if m == nil {
		return
	}
	m.listeners.Dec()
}

func (m *Metrics) delivery(result string) {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues(result).Inc()
}
