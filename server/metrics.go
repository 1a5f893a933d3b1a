package server

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	transitions *prometheus.CounterVec
	sessions    prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meshbrowse",
			Subsystem: "navigation",
			Name:      "transitions_total",
			Help:      "Navigation state transitions by target state.",
		}, []string{"state"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "meshbrowse",
			Subsystem: "server",
			Name:      "sessions",
			Help:      "Live viewer sessions.",
		}),
	}
	reg.MustRegister(m.transitions, m.sessions)
	return m
}
