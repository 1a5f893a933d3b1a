package daemon

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts daemon traffic. A nil *Metrics is valid and records nothing.
type Metrics struct {
	StatusChecks *prometheus.CounterVec
	Retrievals   *prometheus.CounterVec
}

// NewMetrics creates the daemon counters and registers them with reg.
// A nil registerer leaves them unregistered, which suits tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StatusChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meshbrowse",
			Subsystem: "daemon",
			Name:      "status_checks_total",
			Help:      "Daemon status checks by outcome.",
		}, []string{"connected"}),
		Retrievals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meshbrowse",
			Subsystem: "daemon",
			Name:      "retrievals_total",
			Help:      "Content retrievals by source, or error.",
		}, []string{"source"}),
	}
	if reg != nil {
		reg.MustRegister(m.StatusChecks, m.Retrievals)
	}
	return m
}

func (m *Metrics) observeStatus(connected bool) {
	if m == nil {
		return
	}
	label := "false"
	if connected {
		label = "true"
	}
	m.StatusChecks.WithLabelValues(label).Inc()
}

// observeRetrieve counts a successful retrieval. Sources the daemon
// invents are folded into "other" to keep the label set bounded.
func (m *Metrics) observeRetrieve(src Source) {
	if m == nil {
		return
	}
	label := "other"
	switch src {
	case SourceCache, SourcePeer, SourceUnknown:
		label = string(src)
	}
	m.Retrievals.WithLabelValues(label).Inc()
}

func (m *Metrics) observeRetrieveError() {
	if m == nil {
		return
	}
	m.Retrievals.WithLabelValues("error").Inc()
}
