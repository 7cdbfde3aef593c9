// Package metrics defines the Prometheus metrics exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the API.
type Metrics struct {
	registry *prometheus.Registry

	// Upload metrics
	UploadsTotal *prometheus.CounterVec
	UploadRows   *prometheus.HistogramVec

	// Demand metrics
	DemandSnapshots *prometheus.CounterVec
	StreamClients   prometheus.Gauge

	// Simulation metrics
	SimulationRuns *prometheus.CounterVec
	AutopilotRuns  *prometheus.CounterVec

	// Ledger metrics
	LedgerEvents *prometheus.CounterVec

	// HTTP metrics
	RequestDuration *prometheus.HistogramVec
}

// New creates all metrics on a fresh registry, so several instances can
// coexist in one process (tests).
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		UploadsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "retailpilot_uploads_total",
				Help: "CSV uploads by category and result",
			},
			[]string{"category", "result"}, // result: ok, missing_field, invalid_type, empty, too_large, error
		),

		UploadRows: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "retailpilot_upload_rows",
				Help:    "Data rows per accepted upload",
				Buckets: prometheus.ExponentialBuckets(1, 4, 10),
			},
			[]string{"category"},
		),

		DemandSnapshots: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "retailpilot_demand_snapshots_total",
				Help: "Demand snapshots served",
			},
			[]string{"scope"}, // scope: all, region, stream
		),

		StreamClients: f.NewGauge(prometheus.GaugeOpts{
			Name: "retailpilot_demand_stream_clients",
			Help: "Open demand websocket streams",
		}),

		SimulationRuns: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "retailpilot_simulation_runs_total",
				Help: "Simulation runs by result",
			},
			[]string{"result"}, // result: ok, busy, invalid
		),

		AutopilotRuns: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "retailpilot_autopilot_runs_total",
				Help: "Autopilot enable requests by result",
			},
			[]string{"result"}, // result: started, busy, completed, error
		),

		LedgerEvents: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "retailpilot_ledger_events_total",
				Help: "Simulated ledger events recorded",
			},
			[]string{"type"},
		),

		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "retailpilot_http_request_duration_seconds",
				Help:    "HTTP request latency by route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method", "status"},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
