package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the lifecycle counters exposed on /metrics.
type Metrics struct {
	registry *prometheus.Registry

	ObjectsCreated *prometheus.CounterVec
	ObjectsServed  prometheus.Counter
	AccessDenied   *prometheus.CounterVec
	SweepRuns      prometheus.Counter
	SweepCleaned   *prometheus.CounterVec
}

// New creates a registry with all lifecycle counters registered.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ObjectsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vanish_objects_created_total",
				Help: "Objects created, partitioned by configured guard.",
			},
			[]string{"guarded"},
		),
		ObjectsServed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "vanish_objects_served_total",
				Help: "Successful payload serves.",
			},
		),
		AccessDenied: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vanish_access_denied_total",
				Help: "Denied accesses by internal reason.",
			},
			[]string{"reason"},
		),
		SweepRuns: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "vanish_sweep_runs_total",
				Help: "Completed sweep passes.",
			},
		),
		SweepCleaned: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vanish_sweep_cleaned_total",
				Help: "Objects destroyed by the sweep, by reason.",
			},
			[]string{"reason"},
		),
	}

	m.registry.MustRegister(
		m.ObjectsCreated,
		m.ObjectsServed,
		m.AccessDenied,
		m.SweepRuns,
		m.SweepCleaned,
	)
	return m
}

// Handler exposes the registry in prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
