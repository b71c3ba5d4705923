package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the rollcall service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Ingestion - what the normalizer kept and threw away
	rowsIngested        prometheus.Counter
	rowsDiscarded       *prometheus.CounterVec
	duplicatesCollapsed prometheus.Counter

	// Cached log shape
	logRecords prometheus.Gauge
	logUsers   prometheus.Gauge
	logDays    prometheus.Gauge

	// Refresh cycle
	refreshTotal       *prometheus.CounterVec
	refreshDuration    prometheus.Histogram
	refreshLastUnix    prometheus.Gauge
	sourceFetchLatency *prometheus.HistogramVec

	// Query side
	rangeValidations   *prometheus.CounterVec
	aggregationLatency *prometheus.HistogramVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "rollcall",
		subsystem:        "attendance",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	m.rowsIngested = auto.NewCounter(m.counterOpts("rows_ingested_total",
		"Total number of raw rows handed to the normalizer"))
	m.rowsDiscarded = auto.NewCounterVec(m.counterOpts("rows_discarded_total",
		"Total number of raw rows discarded during normalization"), []string{"reason"})
	m.duplicatesCollapsed = auto.NewCounter(m.counterOpts("duplicates_collapsed_total",
		"Total number of (name, date) duplicates collapsed"))

	m.logRecords = auto.NewGauge(m.gaugeOpts("log_records", "Records in the cached event log"))
	m.logUsers = auto.NewGauge(m.gaugeOpts("log_users", "Distinct attendees in the cached event log"))
	m.logDays = auto.NewGauge(m.gaugeOpts("log_days", "Distinct dates in the cached event log"))

	m.refreshTotal = auto.NewCounterVec(m.counterOpts("refresh_total",
		"Refresh attempts by outcome"), []string{"outcome"})
	m.refreshDuration = auto.NewHistogram(m.histogramOpts("refresh_duration_milliseconds",
		"Fetch plus normalization time of a refresh in milliseconds"))
	m.refreshLastUnix = auto.NewGauge(m.gaugeOpts("refresh_last_unix",
		"Unix timestamp of the last successful refresh"))
	m.sourceFetchLatency = auto.NewHistogramVec(m.histogramOpts("source_fetch_latency_milliseconds",
		"Source read latency in milliseconds"), []string{"source"})

	m.rangeValidations = auto.NewCounterVec(m.counterOpts("range_validations_total",
		"Date range validations by resulting status"), []string{"status"})
	m.aggregationLatency = auto.NewHistogramVec(m.histogramOpts("aggregation_latency_milliseconds",
		"Aggregator run time in milliseconds"), []string{"aggregator"})

	// HTTP Performance Metrics
	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"Total number of HTTP requests"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_seconds",
		"HTTP request duration in seconds"), []string{"endpoint", "method", "status_code"})

	// Error Metrics
	m.errorRateByComponent = auto.NewCounterVec(m.counterOpts("errors_by_component_total",
		"Total number of errors by component and type"), []string{"component", "error_type"})
	m.errorRateByEndpoint = auto.NewCounterVec(m.counterOpts("errors_by_endpoint_total",
		"Total number of errors by endpoint, method and type"), []string{"endpoint", "method", "error_type"})

	// System Performance Metrics
	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_bytes", "Heap memory in use in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutines", "Number of goroutines"))
}

// Enabled reports whether the manager records anything.
func (m *Manager) Enabled() bool { return m.enabled }

// RefreshInterval is how often periodic gauges (system stats) should be sampled.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

// Ingestion Metrics.

// RecordIngest records one normalization pass.
func (m *Manager) RecordIngest(input, missingDate, invalidDate, missingName, duplicates int) {
	if !m.enabled {
		return
	}
	m.rowsIngested.Add(float64(input))
	m.rowsDiscarded.WithLabelValues("missing_date").Add(float64(missingDate))
	m.rowsDiscarded.WithLabelValues("invalid_date").Add(float64(invalidDate))
	m.rowsDiscarded.WithLabelValues("missing_name").Add(float64(missingName))
	m.duplicatesCollapsed.Add(float64(duplicates))
}

// UpdateLogShape sets the cached log gauges.
func (m *Manager) UpdateLogShape(records, users, days int) {
	if !m.enabled {
		return
	}
	m.logRecords.Set(float64(records))
	m.logUsers.Set(float64(users))
	m.logDays.Set(float64(days))
}

// Refresh Metrics.

// RecordRefresh records a refresh attempt; outcome is "success", "failure" or "stale_served".
func (m *Manager) RecordRefresh(outcome string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.refreshTotal.WithLabelValues(outcome).Inc()
	m.refreshDuration.Observe(durationMs)
}

// UpdateRefreshLastUnix sets the last successful refresh time.
func (m *Manager) UpdateRefreshLastUnix(t time.Time) {
	if !m.enabled {
		return
	}
	m.refreshLastUnix.Set(float64(t.Unix()))
}

// RecordSourceFetchLatency records how long a source read took.
func (m *Manager) RecordSourceFetchLatency(source string, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.sourceFetchLatency.WithLabelValues(source).Observe(latencyMs)
}

// Query Metrics.

// RecordRangeValidation counts a validation result by status.
func (m *Manager) RecordRangeValidation(status string) {
	if !m.enabled {
		return
	}
	m.rangeValidations.WithLabelValues(status).Inc()
}

// RecordAggregationLatency records one aggregator run.
func (m *Manager) RecordAggregationLatency(aggregator string, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.aggregationLatency.WithLabelValues(aggregator).Observe(latencyMs)
}

// HTTP Metrics.

// RecordHTTPRequest records an HTTP request.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func (m *Manager) RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !m.enabled {
		return
	}
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error Metrics.

// RecordErrorByComponent records an error with component and type labels.
func (m *Manager) RecordErrorByComponent(component, errorType string) {
	if !m.enabled {
		return
	}
	m.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func (m *Manager) RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !m.enabled {
		return
	}
	m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System Metrics.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func (m *Manager) UpdateSystemMemoryUsage(bytes uint64) {
	if !m.enabled {
		return
	}
	m.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func (m *Manager) UpdateSystemGoroutineCount(count int) {
	if !m.enabled {
		return
	}
	m.systemGoroutineCount.Set(float64(count))
}

// Package-level helpers writing to the global manager.

// Default returns the global manager.
func Default() *Manager { return globalManager }

// RecordIngest records one normalization pass.
func RecordIngest(input, missingDate, invalidDate, missingName, duplicates int) {
	globalManager.RecordIngest(input, missingDate, invalidDate, missingName, duplicates)
}

// UpdateLogShape sets the cached log gauges.
func UpdateLogShape(records, users, days int) {
	globalManager.UpdateLogShape(records, users, days)
}

// RecordRefresh records a refresh attempt.
func RecordRefresh(outcome string, durationMs float64) {
	globalManager.RecordRefresh(outcome, durationMs)
}

// UpdateRefreshLastUnix sets the last successful refresh time.
func UpdateRefreshLastUnix(t time.Time) {
	globalManager.UpdateRefreshLastUnix(t)
}

// RecordSourceFetchLatency records how long a source read took.
func RecordSourceFetchLatency(source string, latencyMs float64) {
	globalManager.RecordSourceFetchLatency(source, latencyMs)
}

// RecordRangeValidation counts a validation result by status.
func RecordRangeValidation(status string) {
	globalManager.RecordRangeValidation(status)
}

// RecordAggregationLatency records one aggregator run.
func RecordAggregationLatency(aggregator string, latencyMs float64) {
	globalManager.RecordAggregationLatency(aggregator, latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode)
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.RecordHTTPRequestDuration(endpoint, method, statusCode, duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.RecordErrorByComponent(component, errorType)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.RecordErrorByEndpoint(endpoint, method, errorType)
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.UpdateSystemMemoryUsage(bytes)
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.UpdateSystemGoroutineCount(count)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
