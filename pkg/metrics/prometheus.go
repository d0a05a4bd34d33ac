// Package metrics provides Prometheus metrics for the tech event mentor service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	latencyBuckets   []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Completion endpoint
	completionCalls   *prometheus.CounterVec
	completionLatency *prometheus.HistogramVec

	// Analysis pipeline
	analysesTotal  *prometheus.CounterVec
	parseFailures  prometheus.Counter
	memoLookups    *prometheus.CounterVec
	storedAnalyses prometheus.Gauge
	postDrafts     *prometheus.CounterVec
	posterBytes    prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by the package-level recorders

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out of /healthz

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "techmentor",
		subsystem:        "analyzer",
		histogramBuckets: prometheus.DefBuckets,
		// completion calls take seconds, not milliseconds
		latencyBuckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 20000, 40000},
		constLabels:    prometheus.Labels{},
		registry:       prometheus.DefaultRegisterer,
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

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.completionCalls = auto.NewCounterVec(
		m.counterOpts("completion_calls_total", "Completion endpoint calls by kind (analysis, post) and outcome"),
		[]string{"kind", "outcome"},
	)
	m.completionLatency = auto.NewHistogramVec(
		m.histogramOpts("completion_latency_milliseconds", "Completion endpoint latency in milliseconds", m.latencyBuckets),
		[]string{"kind"},
	)

	m.analysesTotal = auto.NewCounterVec(
		m.counterOpts("analyses_total", "Analyse actions by mode (live, offline) and outcome"),
		[]string{"mode", "outcome"},
	)
	m.parseFailures = auto.NewCounter(
		m.counterOpts("parse_failures_total", "Model responses that were not a JSON object after fence stripping"),
	)
	m.memoLookups = auto.NewCounterVec(
		m.counterOpts("memo_lookups_total", "Analysis memo lookups by result (hit, miss)"),
		[]string{"result"},
	)
	m.storedAnalyses = auto.NewGauge(
		m.gaugeOpts("stored_analyses", "Sessions currently holding an analysis"),
	)
	m.postDrafts = auto.NewCounterVec(
		m.counterOpts("post_drafts_total", "Post draft requests by outcome"),
		[]string{"outcome"},
	)
	m.posterBytes = auto.NewHistogram(
		m.histogramOpts("poster_bytes", "Size of normalised poster images sent to the model",
			prometheus.ExponentialBuckets(16*1024, 2, 10)),
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "HTTP errors by endpoint, method and error type"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "Average GC pause in milliseconds", m.histogramBuckets),
	)
}

// RecordCompletion counts one completion call and observes its latency.
func RecordCompletion(kind, outcome string, latencyMs float64) {
	globalManager.completionCalls.WithLabelValues(kind, outcome).Inc()
	globalManager.completionLatency.WithLabelValues(kind).Observe(latencyMs)
}

// RecordAnalysis counts one analyse action.
func RecordAnalysis(mode, outcome string) {
	globalManager.analysesTotal.WithLabelValues(mode, outcome).Inc()
}

// RecordParseFailure counts a response that could not be decoded.
func RecordParseFailure() {
	globalManager.parseFailures.Inc()
}

// RecordMemoHit counts a memoised analysis served without a call.
func RecordMemoHit() {
	globalManager.memoLookups.WithLabelValues("hit").Inc()
}

// RecordMemoMiss counts a memo lookup that fell through to the endpoint.
func RecordMemoMiss() {
	globalManager.memoLookups.WithLabelValues("miss").Inc()
}

// UpdateStoredAnalyses sets the number of sessions holding a result.
func UpdateStoredAnalyses(count int) {
	globalManager.storedAnalyses.Set(float64(count))
}

// RecordPostDraft counts a post draft request.
func RecordPostDraft(outcome string) {
	globalManager.postDrafts.WithLabelValues(outcome).Inc()
}

// RecordPosterBytes observes the size of an encoded poster.
func RecordPosterBytes(n int) {
	globalManager.posterBytes.Observe(float64(n))
}

// RecordHTTPRequest increments the HTTP request counter.
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
