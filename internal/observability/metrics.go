package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for ingestion and the
// persistence gateway.
type Metrics struct {
	FilesRead        prometheus.Counter
	FilesSkipped     prometheus.Counter
	RecordsRejected  *prometheus.CounterVec // labels: reason={conversion,incomplete}
	RecordsInserted  prometheus.Counter
	StationsIngested prometheus.Counter
	PublishErrors    prometheus.Counter

	StationDuration prometheus.Histogram

	// Persistence gateway metrics.
	Statements      *prometheus.CounterVec // labels: kind={create,insert,select}
	StatementErrors *prometheus.CounterVec // labels: kind={create,insert,select}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FilesRead,
		m.FilesSkipped,
		m.RecordsRejected,
		m.RecordsInserted,
		m.StationsIngested,
		m.PublishErrors,
		m.StationDuration,
		m.Statements,
		m.StatementErrors,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FilesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_etl",
			Name:      "files_read_total",
			Help:      "Measurement files parsed successfully.",
		}),
		FilesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_etl",
			Name:      "files_skipped_total",
			Help:      "Measurement files skipped because they could not be read.",
		}),
		RecordsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_etl",
			Name:      "records_rejected_total",
			Help:      "Raw measurements dropped before insertion, by reason.",
		}, []string{"reason"}),
		RecordsInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_etl",
			Name:      "records_inserted_total",
			Help:      "Measurements committed to the store.",
		}),
		StationsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_etl",
			Name:      "stations_ingested_total",
			Help:      "Stations whose batch was processed.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_etl",
			Name:      "publish_errors_total",
			Help:      "Committed batches that could not be published downstream.",
		}),
		StationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weather_etl",
			Name:      "station_duration_seconds",
			Help:      "Duration of reading, normalizing, and storing one station.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		Statements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_etl",
			Subsystem: "store",
			Name:      "statements_total",
			Help:      "SQL statements executed by kind.",
		}, []string{"kind"}),
		StatementErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_etl",
			Subsystem: "store",
			Name:      "statement_errors_total",
			Help:      "SQL statements that failed by kind.",
		}, []string{"kind"}),
	}
}
