// Package metrics provides Prometheus metrics for the assessment
// pipeline.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the pipeline.
type Metrics struct {
	// Row metrics
	RowsScored  *prometheus.CounterVec
	RowsSkipped *prometheus.CounterVec

	// Answer key metrics
	ItemsLoaded  *prometheus.CounterVec
	ItemsSkipped prometheus.Counter

	// Aggregation metrics
	SchoolsLoaded     prometheus.Gauge
	SchoolsAggregated prometheus.Gauge

	// Artifact metrics
	ArtifactsPublished *prometheus.CounterVec
	ArtifactBytes      *prometheus.HistogramVec

	// Timing metrics
	StageDuration *prometheus.HistogramVec

	// Error metrics
	StorageErrors *prometheus.CounterVec
	CatalogErrors prometheus.Counter
	NotifyErrors  prometheus.Counter
}

// Config holds metrics configuration.
type Config struct {
	Enabled bool
	Address string // Address for metrics HTTP server (e.g., ":9090")
}

var defaultMetrics *Metrics

// Init initializes the metrics package with global metrics.
// Call this once at startup.
func Init(namespace string) *Metrics {
	if namespace == "" {
		namespace = "assessment_pipeline"
	}

	m := &Metrics{
		RowsScored: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_scored_total",
				Help:      "Total number of response rows scored",
			},
			[]string{"grade"},
		),
		RowsSkipped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_skipped_total",
				Help:      "Total number of response rows skipped, by reason",
			},
			[]string{"grade", "reason"},
		),
		ItemsLoaded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "answer_key_items_total",
				Help:      "Total number of answer key items loaded, by bucket",
			},
			[]string{"bucket"},
		),
		ItemsSkipped: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "answer_key_items_skipped_total",
				Help:      "Total number of malformed answer key rows skipped",
			},
		),
		SchoolsLoaded: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "schools_loaded",
				Help:      "Number of schools loaded from the roster",
			},
		),
		SchoolsAggregated: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "schools_aggregated",
				Help:      "Number of schools with at least one scored student",
			},
		),
		ArtifactsPublished: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "artifacts_published_total",
				Help:      "Total number of artifacts published",
			},
			[]string{"file"},
		),
		ArtifactBytes: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "artifact_bytes",
				Help:      "Size of published artifacts in bytes",
				Buckets:   prometheus.ExponentialBuckets(1024, 2, 15), // 1KB to ~16MB
			},
			[]string{"file"},
		),
		StageDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Time spent in each pipeline stage",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
			},
			[]string{"stage"},
		),
		StorageErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "storage_errors_total",
				Help:      "Total number of storage write errors",
			},
			[]string{"backend"},
		),
		CatalogErrors: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "catalog_errors_total",
				Help:      "Total number of catalog write errors",
			},
		),
		NotifyErrors: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notify_errors_total",
				Help:      "Total number of event emission errors",
			},
		),
	}

	defaultMetrics = m
	return m
}

// Get returns the global metrics instance.
// Returns nil if Init has not been called.
func Get() *Metrics {
	return defaultMetrics
}

// StartServer starts an HTTP server for Prometheus metrics scraping.
// Blocks until the server exits.
func StartServer(address string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return http.ListenAndServe(address, mux)
}

// IncRowsScored increments the scored rows counter for a grade.
func (m *Metrics) IncRowsScored(grade int) {
	m.RowsScored.WithLabelValues(strconv.Itoa(grade)).Inc()
}

// IncRowsSkipped increments the skipped rows counter for a grade and
// reason.
func (m *Metrics) IncRowsSkipped(grade int, reason string) {
	m.RowsSkipped.WithLabelValues(strconv.Itoa(grade), reason).Inc()
}

// AddItemsLoaded adds to the answer key items counter for a bucket.
func (m *Metrics) AddItemsLoaded(bucket string, count float64) {
	m.ItemsLoaded.WithLabelValues(bucket).Add(count)
}

// ObserveArtifact records one published artifact.
func (m *Metrics) ObserveArtifact(file string, bytes float64) {
	m.ArtifactsPublished.WithLabelValues(file).Inc()
	m.ArtifactBytes.WithLabelValues(file).Observe(bytes)
}

// ObserveStageDuration records the time spent in a pipeline stage.
func (m *Metrics) ObserveStageDuration(stage string, seconds float64) {
	m.StageDuration.WithLabelValues(stage).Observe(seconds)
}

// IncStorageErrors increments the storage errors counter.
func (m *Metrics) IncStorageErrors(backend string) {
	m.StorageErrors.WithLabelValues(backend).Inc()
}
