package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for projection runs. Each
// instance owns its registry so tests can build as many handlers as they
// like.
type Metrics struct {
	registry *prometheus.Registry

	Projections        *prometheus.CounterVec
	ProjectionDuration *prometheus.HistogramVec
	TimelineInstances  prometheus.Gauge
	SpareCapital       prometheus.Gauge
	DefinitionWrites   *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		Projections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cashflow_projections_total",
				Help: "Projection runs by endpoint and result",
			},
			[]string{"endpoint", "result"},
		),

		ProjectionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cashflow_projection_duration_seconds",
				Help:    "Duration of a projection run in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
			},
			[]string{"endpoint"},
		),

		TimelineInstances: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "cashflow_timeline_instances",
				Help: "Instances in the most recent projection",
			},
		),

		SpareCapital: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "cashflow_spare_capital",
				Help: "Wiggle of the first instance of the most recent horizon projection",
			},
		),

		DefinitionWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cashflow_definition_writes_total",
				Help: "Definition create/delete operations",
			},
			[]string{"op"},
		),
	}

	m.registry.MustRegister(
		m.Projections,
		m.ProjectionDuration,
		m.TimelineInstances,
		m.SpareCapital,
		m.DefinitionWrites,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveProjection records one run.
func (m *Metrics) ObserveProjection(endpoint string, started time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Projections.WithLabelValues(endpoint, result).Inc()
	m.ProjectionDuration.WithLabelValues(endpoint).Observe(time.Since(started).Seconds())
}
