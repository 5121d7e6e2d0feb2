package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the airports API
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Database Metrics
	DBQueriesTotal  *prometheus.CounterVec
	DBQueryDuration *prometheus.HistogramVec

	// Cache Metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// LLM Metrics
	LLMRequestsTotal   *prometheus.CounterVec
	LLMRequestDuration prometheus.Histogram

	// Import Metrics
	ImportDuration prometheus.Histogram
	ImportRecords  *prometheus.CounterVec
}

// NewMetricsRegistry registers every metric on reg. Pass
// prometheus.DefaultRegisterer in production and a fresh
// prometheus.NewRegistry() in tests.
func NewMetricsRegistry(reg prometheus.Registerer) *MetricsRegistry {
	factory := promauto.With(reg)

	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "airports_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "airports_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "airports_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		// Database Metrics
		DBQueriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "airports_db_queries_total",
				Help: "Total database queries by operation type and outcome",
			},
			[]string{"query_type", "outcome"},
		),
		DBQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "airports_db_query_duration_seconds",
				Help:    "Database query execution time in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"query_type"},
		),

		// Cache Metrics
		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "airports_cache_hits_total",
				Help: "Total cache hits by key family",
			},
			[]string{"family"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "airports_cache_misses_total",
				Help: "Total cache misses by key family",
			},
			[]string{"family"},
		),

		// LLM Metrics
		LLMRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "airports_llm_requests_total",
				Help: "Main-airport advisor calls by outcome",
			},
			[]string{"outcome"},
		),
		LLMRequestDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "airports_llm_request_duration_seconds",
				Help:    "Main-airport advisor latency in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8},
			},
		),

		// Import Metrics
		ImportDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "airports_import_duration_seconds",
				Help:    "Catalog import execution time in seconds",
				Buckets: []float64{0.5, 1, 5, 10, 30, 60, 120, 300},
			},
		),
		ImportRecords: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "airports_import_records_total",
				Help: "Upstream CSV records processed by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// NewNopRegistry returns metrics registered on a private registry, for
// components constructed without a shared one.
func NewNopRegistry() *MetricsRegistry {
	return NewMetricsRegistry(prometheus.NewRegistry())
}
