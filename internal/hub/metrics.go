package hub

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the room server's Prometheus collectors.
type Metrics struct {
	Rooms    prometheus.Gauge
	Clients  prometheus.Gauge
	Messages *prometheus.CounterVec
	Dropped  prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg when non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Rooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "studyhub",
			Name:      "rooms_active",
			Help:      "Rooms with at least one participant.",
		}),
		Clients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "studyhub",
			Name:      "clients_connected",
			Help:      "Open websocket connections.",
		}),
		Messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "studyhub",
			Name:      "messages_total",
			Help:      "Messages received from clients, by type.",
		}, []string{"type"}),
		Dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "studyhub",
			Name:      "messages_dropped_total",
			Help:      "Messages dropped because a client's send buffer was full.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Rooms, m.Clients, m.Messages, m.Dropped)
	}
	return m
}
