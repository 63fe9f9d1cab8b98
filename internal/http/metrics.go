package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"examdesk/seating/internal/model"
)

// metrics uses a per-server registry so tests can build servers freely
// without colliding on the default registerer.
type metrics struct {
	registry     *prometheus.Registry
	runsTotal    *prometheus.CounterVec
	rejectedRows prometheus.Counter
}

func newMetrics() *metrics {
	registry := prometheus.NewRegistry()
	m := &metrics{
		registry: registry,
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seating_allocation_runs_total",
			Help: "Allocation runs by slot and outcome.",
		}, []string{"slot", "outcome"}),
		rejectedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seating_rejected_roster_rows_total",
			Help: "Roster rows rejected during ingest.",
		}),
	}
	registry.MustRegister(m.runsTotal, m.rejectedRows)
	registry.MustRegister(collectors.NewGoCollector())
	return m
}

func (m *metrics) observeRun(slot model.Slot, outcome string) {
	m.runsTotal.WithLabelValues(string(slot), outcome).Inc()
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
