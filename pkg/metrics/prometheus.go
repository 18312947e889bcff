// Package metrics provides Prometheus metrics for the gradpulse dashboard service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Dataset
	datasetLoadDuration *prometheus.HistogramVec
	datasetRows         *prometheus.GaugeVec
	datasetLoadErrors   *prometheus.CounterVec

	// Pages
	pageRenders      *prometheus.CounterVec
	pageLatency      *prometheus.HistogramVec
	pageEmptyResults *prometheus.CounterVec
	chartRenders     *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec
	errorRateByType     *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by package-level recorders

var customRegistry *prometheus.Registry //nolint:gochecknoglobals // private registry served on /metrics

func init() { //nolint:gochecknoinits // global metrics setup
	Init()
}

// Init replaces the private registry and the global manager, applying opts to
// the new manager. Call it before the /metrics handler is built; collectors
// recorded on the previous registry are dropped.
func Init(opts ...Option) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	all := append(append([]Option(nil), opts...), WithPrometheusRegistry(reg))
	globalManager = NewManager(all...)
	customRegistry = reg
}

// NewManager creates a new metrics manager. Collectors are registered on the
// configured registry, the default registerer unless overridden.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "gradpulse",
		subsystem:        "dashboard",
		histogramBuckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.datasetLoadDuration = auto.NewHistogramVec(
		m.histogramOpts("dataset_load_duration_milliseconds", "Time spent reading and decoding a workbook sheet"),
		[]string{"sheet"},
	)
	m.datasetRows = auto.NewGaugeVec(
		m.gaugeOpts("dataset_rows", "Rows decoded from the last load of a sheet"),
		[]string{"sheet"},
	)
	m.datasetLoadErrors = auto.NewCounterVec(
		m.counterOpts("dataset_load_errors_total", "Failed sheet loads by reason"),
		[]string{"sheet", "reason"},
	)

	m.pageRenders = auto.NewCounterVec(
		m.counterOpts("page_renders_total", "Page pipeline executions by page and outcome"),
		[]string{"page", "outcome"},
	)
	m.pageLatency = auto.NewHistogramVec(
		m.histogramOpts("page_render_duration_milliseconds", "Filter, aggregate and present latency per page"),
		[]string{"page"},
	)
	m.pageEmptyResults = auto.NewCounterVec(
		m.counterOpts("page_empty_results_total", "Renders where the filters left no rows"),
		[]string{"page"},
	)
	m.chartRenders = auto.NewCounterVec(
		m.counterOpts("chart_png_renders_total", "PNG chart renders by chart kind and outcome"),
		[]string{"kind", "outcome"},
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Total number of errors by type"),
		[]string{"error_type", "severity"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap memory in use"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
}

// RecordDatasetLoad records the duration and decoded row count of a sheet load.
func RecordDatasetLoad(sheet string, durationMs float64, rows int) {
	globalManager.datasetLoadDuration.WithLabelValues(sheet).Observe(durationMs)
	globalManager.datasetRows.WithLabelValues(sheet).Set(float64(rows))
}

// RecordDatasetLoadError counts a failed sheet load.
func RecordDatasetLoadError(sheet, reason string) {
	globalManager.datasetLoadErrors.WithLabelValues(sheet, reason).Inc()
}

// RecordPageRender counts a page pipeline execution. Outcome is "ok", "empty" or "error".
func RecordPageRender(page, outcome string) {
	globalManager.pageRenders.WithLabelValues(page, outcome).Inc()
}

// RecordPageLatency observes the page pipeline latency in milliseconds.
func RecordPageLatency(page string, latencyMs float64) {
	globalManager.pageLatency.WithLabelValues(page).Observe(latencyMs)
}

// RecordEmptyResult counts a render that ended in the no-data state.
func RecordEmptyResult(page string) {
	globalManager.pageEmptyResults.WithLabelValues(page).Inc()
}

// RecordChartRender counts a PNG render.
func RecordChartRender(kind, outcome string) {
	globalManager.chartRenders.WithLabelValues(kind, outcome).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// UpdateSystemMemoryUsage sets the heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
