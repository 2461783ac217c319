package realtime

import (
	"github.com/prometheus/client_golang/prometheus"
)

type hubMetrics struct {
	openConnections prometheus.Gauge
	connectsTotal   prometheus.Counter
	evictionsTotal  prometheus.Counter
	delivered       prometheus.Counter
	dropped         *prometheus.CounterVec
}

func newHubMetrics(reg prometheus.Registerer) *hubMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &hubMetrics{
		openConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chatapp_ws_connections_open",
			Help: "Current number of open websocket connections.",
		}),
		connectsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chatapp_ws_connects_total",
			Help: "Total websocket connections accepted since start.",
		}),
		evictionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chatapp_ws_evictions_total",
			Help: "Connections evicted because the same user reconnected.",
		}),
		delivered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chatapp_ws_messages_delivered_total",
			Help: "newMessage events delivered to a live receiver connection.",
		}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chatapp_ws_events_dropped_total",
			Help: "Events dropped grouped by reason.",
		}, []string{"reason"}),
	}

	reg.MustRegister(
		m.openConnections,
		m.connectsTotal,
		m.evictionsTotal,
		m.delivered,
		m.dropped,
	)
	return m
}

func (m *hubMetrics) incConn() {
	if m == nil {
		return
	}
	m.openConnections.Inc()
	m.connectsTotal.Inc()
}

func (m *hubMetrics) decConn() {
	if m == nil {
		return
	}
	m.openConnections.Dec()
}

func (m *hubMetrics) recordEviction() {
	if m == nil {
		return
	}
	m.evictionsTotal.Inc()
}

func (m *hubMetrics) recordDelivered() {
	if m == nil {
		return
	}
	m.delivered.Inc()
}

func (m *hubMetrics) recordDropped(reason string) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "unknown"
	}
	m.dropped.WithLabelValues(reason).Inc()
}
