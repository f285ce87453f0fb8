// Package observability defines the dashboard's Prometheus metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "typhoondash"

// Metrics holds the Prometheus collectors for dataset loading, caching,
// rendering and HTTP traffic.
type Metrics struct {
	DatasetLoads        *prometheus.CounterVec   // labels: backend, outcome={success,error}
	DatasetLoadDuration *prometheus.HistogramVec // labels: backend
	RecordsLoaded       prometheus.Gauge
	Cache               *prometheus.CounterVec // labels: result={hit,miss}

	DashboardRenders        *prometheus.CounterVec // labels: format={html,json,xlsx}
	DashboardRenderDuration prometheus.Histogram

	HTTPRequests *prometheus.CounterVec // labels: route, code
}

func newMetrics(withHelp bool) *Metrics {
	help := func(s string) string {
		if withHelp {
			return s
		}
		return ""
	}
	return &Metrics{
		DatasetLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_loads_total",
			Help:      help("Dataset loads by backend and outcome."),
		}, []string{"backend", "outcome"}),
		DatasetLoadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dataset_load_duration_seconds",
			Help:      help("Duration of a dataset load from its backend."),
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		}, []string{"backend"}),
		RecordsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records_loaded",
			Help:      help("Number of yearly records in the loaded table."),
		}),
		Cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_cache_total",
			Help:      help("Memoized dataset lookups by result."),
		}, []string{"result"}),
		DashboardRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dashboard_renders_total",
			Help:      help("Dashboard views built, by output format."),
		}, []string{"format"}),
		DashboardRenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dashboard_render_duration_seconds",
			Help:      help("Time to filter, aggregate and build one dashboard view."),
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      help("HTTP requests by route pattern and status code."),
		}, []string{"route", "code"}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics(true)
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates unregistered Metrics so tests can build as
// many as they need.
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.DatasetLoads,
		m.DatasetLoadDuration,
		m.RecordsLoaded,
		m.Cache,
		m.DashboardRenders,
		m.DashboardRenderDuration,
		m.HTTPRequests,
	}
}
