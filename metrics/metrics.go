// Package metrics defines the Prometheus collectors for ingestion runs and
// the HTTP API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run statuses.
const (
	StatusSuccess = "success"
	StatusNoData  = "no_data"
	StatusFailure = "failure"
)

// Metrics holds the collectors, registered with one Registerer.
type Metrics struct {
	RowsExtracted *prometheus.CounterVec
	Records       *prometheus.CounterVec
	NullCells     prometheus.Counter
	Runs          *prometheus.CounterVec
	RunDuration   *prometheus.HistogramVec
	TableRows     *prometheus.GaugeVec
	HTTPRequests  *prometheus.CounterVec
	HTTPDuration  *prometheus.HistogramVec
	RateLimited   prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RowsExtracted: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "census_rows_extracted_total",
				Help: "Rows recovered from source pages, before assembly",
			},
			[]string{"strategy"}, // text-line, grid, grid-strict
		),
		Records: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "census_records_total",
				Help: "Assembled rows by outcome",
			},
			[]string{"outcome"}, // accepted, empty_label, all_null
		),
		NullCells: f.NewCounter(prometheus.CounterOpts{
			Name: "census_null_cells_total",
			Help: "Cells that normalized to null",
		}),
		Runs: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "census_ingest_runs_total",
				Help: "Ingestion runs by final status",
			},
			[]string{"dataset", "status"},
		),
		RunDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "census_ingest_duration_seconds",
				Help:    "Duration of ingestion runs",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 14), // 10ms to ~163s
			},
			[]string{"dataset"},
		),
		TableRows: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "census_table_rows",
				Help: "Rows in each table after its last successful load",
			},
			[]string{"table"},
		),
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "census_http_requests_total",
				Help: "HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "census_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		RateLimited: f.NewCounter(prometheus.CounterOpts{
			Name: "census_http_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		}),
	}
}

// ObserveRun records one finished ingestion run.
func (m *Metrics) ObserveRun(dataset, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(dataset, status).Inc()
	m.RunDuration.WithLabelValues(dataset).Observe(d.Seconds())
}
