// Package metrics provides Prometheus metrics for the kiosk analytics service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// latencyBuckets covers sub-millisecond file reads up to multi-second fleet scans.
var latencyBuckets = []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000}

// Manager owns every Prometheus collector for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Ingestion metrics
	filesLoaded     *prometheus.CounterVec
	rowsParsed      prometheus.Counter
	rowsRejected    prometheus.Counter
	fileLoadLatency prometheus.Histogram

	// Index metrics
	indexScanLatency prometheus.Histogram
	kiosksDiscovered prometheus.Gauge
	filesDiscovered  prometheus.Gauge

	// Query metrics
	queryDuration *prometheus.HistogramVec
	queryTimeouts prometheus.Counter
	queryNoData   *prometheus.CounterVec

	// Load pool metrics
	poolSize   prometheus.Gauge
	poolActive prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpRateLimited     prometheus.Counter
	errorRateByEndpoint *prometheus.CounterVec
	errorRateByType     *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(
		WithNamespace("kiosk"),
		WithSubsystem("analytics"),
		WithHistogramBuckets(latencyBuckets),
		WithPrometheusRegistry(customRegistry),
	)
}

// NewManager creates a metrics manager. Without options collectors are
// unprefixed, use Prometheus' default buckets and register globally.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.filesLoaded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "files_loaded_total",
		Help:      "Transaction file loads by outcome (ok, not_found, no_data, io_failure)",
	}, []string{"outcome"})
	m.rowsParsed = m.counter("rows_parsed_total", "Rows accepted by the record parser")
	m.rowsRejected = m.counter("rows_rejected_total", "Rows skipped as malformed")
	m.fileLoadLatency = m.histogram("file_load_latency_milliseconds", "Time to read and fold one transaction file", m.histogramBuckets)

	m.indexScanLatency = m.histogram("index_scan_latency_milliseconds", "Time to scan the data tree", m.histogramBuckets)
	m.kiosksDiscovered = m.gauge("kiosks_discovered", "Kiosk directories found by the last scan")
	m.filesDiscovered = m.gauge("files_discovered", "Transaction files found by the last full scan")

	m.queryDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "query_duration_milliseconds",
		Help:      "Query service latency by operation and outcome",
		Buckets:   m.histogramBuckets,
	}, []string{"operation", "outcome"})
	m.queryTimeouts = m.counter("query_timeouts_total", "Queries abandoned at the deadline")
	m.queryNoData = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "query_no_data_total",
		Help:      "Queries that matched no transaction data",
	}, []string{"operation"})

	m.poolSize = m.gauge("load_pool_size", "Maximum concurrent file loads")
	m.poolActive = m.gauge("load_pool_active", "File loads currently running")

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
	m.httpRateLimited = m.counter("http_rate_limited_total", "Requests rejected by the rate limiter")
	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_endpoint_total",
		Help:      "Errors by endpoint, method and error type",
	}, []string{"endpoint", "method", "error_type"})
	m.errorRateByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_type_total",
		Help:      "Errors by type and severity",
	}, []string{"error_type", "severity"})

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordFileLoad counts one file load with its outcome and latency.
func RecordFileLoad(outcome string, latencyMs float64) {
	globalManager.filesLoaded.WithLabelValues(outcome).Inc()
	globalManager.fileLoadLatency.Observe(latencyMs)
}

// RecordRows adds parsed and rejected row counts.
func RecordRows(parsed, rejected int) {
	globalManager.rowsParsed.Add(float64(parsed))
	globalManager.rowsRejected.Add(float64(rejected))
}

// RecordIndexScan records the latency of one directory scan.
func RecordIndexScan(latencyMs float64) {
	globalManager.indexScanLatency.Observe(latencyMs)
}

// UpdateKiosksDiscovered sets the kiosk count from the last scan.
func UpdateKiosksDiscovered(count int) {
	globalManager.kiosksDiscovered.Set(float64(count))
}

// UpdateFilesDiscovered sets the file count from the last full scan.
func UpdateFilesDiscovered(count int) {
	globalManager.filesDiscovered.Set(float64(count))
}

// RecordQuery records query latency by operation and outcome.
func RecordQuery(operation, outcome string, latencyMs float64) {
	globalManager.queryDuration.WithLabelValues(operation, outcome).Observe(latencyMs)
}

// RecordQueryTimeout increments the query timeout counter.
func RecordQueryTimeout() {
	globalManager.queryTimeouts.Inc()
}

// RecordQueryNoData counts a query that matched nothing.
func RecordQueryNoData(operation string) {
	globalManager.queryNoData.WithLabelValues(operation).Inc()
}

// UpdatePoolSize sets the load pool bound.
func UpdatePoolSize(size int) {
	globalManager.poolSize.Set(float64(size))
}

// PoolJobStarted and PoolJobFinished track in-flight loads.
func PoolJobStarted()  { globalManager.poolActive.Inc() }
func PoolJobFinished() { globalManager.poolActive.Dec() }

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordRateLimited increments the rate limited request counter.
func RecordRateLimited() {
	globalManager.httpRateLimited.Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
