// Package metrics provides Prometheus metrics for the metarisk assessment service.
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

// probabilityBuckets straddle the tier thresholds.
var probabilityBuckets = []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1} //nolint:gochecknoglobals // static buckets

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Assessment metrics
	assessments       *prometheus.CounterVec
	assessmentLatency *prometheus.HistogramVec
	assessmentErrors  *prometheus.CounterVec
	probability       *prometheus.HistogramVec

	// Artifact metrics
	artifactLoads       *prometheus.CounterVec
	artifactLoadLatency prometheus.Histogram
	artifactCacheSize   prometheus.Gauge
	modelsRegistered    prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec
	errorLatency        *prometheus.HistogramVec

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
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "metarisk",
		subsystem:        "assessment",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// Enabled reports whether observations are recorded.
func (m *Manager) Enabled() bool { return m.enabled }

// RefreshInterval returns how often periodic gauges should be refreshed.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

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

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.assessments = auto.NewCounterVec(
		m.counterOpts("assessments_total", "Completed assessments by model and risk tier"),
		[]string{"model", "tier"},
	)
	m.assessmentLatency = auto.NewHistogramVec(
		m.histogramOpts("assessment_latency_milliseconds", "End-to-end pipeline latency per assessment", m.histogramBuckets),
		[]string{"model"},
	)
	m.assessmentErrors = auto.NewCounterVec(
		m.counterOpts("assessment_errors_total", "Aborted assessments by pipeline stage and error kind"),
		[]string{"model", "stage", "kind"},
	)
	m.probability = auto.NewHistogramVec(
		m.histogramOpts("probability", "Distribution of predicted positive-class probabilities", probabilityBuckets),
		[]string{"model"},
	)

	m.artifactLoads = auto.NewCounterVec(
		m.counterOpts("artifact_loads_total", "Scoring artifact load attempts by result"),
		[]string{"artifact", "result"},
	)
	m.artifactLoadLatency = auto.NewHistogram(
		m.histogramOpts("artifact_load_latency_milliseconds", "Time to read and validate a scoring artifact", m.histogramBuckets),
	)
	m.artifactCacheSize = auto.NewGauge(
		m.gaugeOpts("artifact_cache_size", "Scoring artifacts held in memory"),
	)
	m.modelsRegistered = auto.NewGauge(
		m.gaugeOpts("models_registered", "Models available for selection"),
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Total number of errors by type"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.errorLatency = auto.NewHistogramVec(
		m.histogramOpts("error_latency_milliseconds", "Latency of operations that resulted in errors", m.histogramBuckets),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// RecordAssessment counts a completed assessment.
func (m *Manager) RecordAssessment(model, tier string) {
	if m.enabled {
		m.assessments.WithLabelValues(model, tier).Inc()
	}
}

// RecordAssessmentLatency records pipeline latency in milliseconds.
func (m *Manager) RecordAssessmentLatency(model string, latencyMs float64) {
	if m.enabled {
		m.assessmentLatency.WithLabelValues(model).Observe(latencyMs)
	}
}

// RecordProbability records a predicted probability.
func (m *Manager) RecordProbability(model string, p float64) {
	if m.enabled {
		m.probability.WithLabelValues(model).Observe(p)
	}
}

// RecordAssessmentError counts an aborted assessment.
func (m *Manager) RecordAssessmentError(model, stage, kind string) {
	if m.enabled {
		m.assessmentErrors.WithLabelValues(model, stage, kind).Inc()
	}
}

// RecordArtifactLoad counts an artifact load attempt.
func (m *Manager) RecordArtifactLoad(artifact, result string) {
	if m.enabled {
		m.artifactLoads.WithLabelValues(artifact, result).Inc()
	}
}

// RecordArtifactLoadLatency records artifact load latency in milliseconds.
func (m *Manager) RecordArtifactLoadLatency(latencyMs float64) {
	if m.enabled {
		m.artifactLoadLatency.Observe(latencyMs)
	}
}

// UpdateArtifactCacheSize sets the number of cached artifacts.
func (m *Manager) UpdateArtifactCacheSize(n int) {
	if m.enabled {
		m.artifactCacheSize.Set(float64(n))
	}
}

// UpdateModelsRegistered sets the number of selectable models.
func (m *Manager) UpdateModelsRegistered(n int) {
	if m.enabled {
		m.modelsRegistered.Set(float64(n))
	}
}

// RecordHTTPRequest records an HTTP request.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string) {
	if m.enabled {
		m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records HTTP request duration.
func (m *Manager) RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if m.enabled {
		m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
	}
}

// RecordErrorByType records an error by type and severity.
func (m *Manager) RecordErrorByType(errorType, severity string) {
	if m.enabled {
		m.errorRateByType.WithLabelValues(errorType, severity).Inc()
	}
}

// RecordErrorByEndpoint records an error by endpoint.
func (m *Manager) RecordErrorByEndpoint(endpoint, method, errorType string) {
	if m.enabled {
		m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// RecordErrorLatency records the latency of a failed operation.
func (m *Manager) RecordErrorLatency(component, errorType string, latencyMs float64) {
	if m.enabled {
		m.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
	}
}

// UpdateSystemMemoryUsage sets the system memory usage.
func (m *Manager) UpdateSystemMemoryUsage(bytes uint64) {
	if m.enabled {
		m.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the goroutine count.
func (m *Manager) UpdateSystemGoroutineCount(count int) {
	if m.enabled {
		m.systemGoroutineCount.Set(float64(count))
	}
}

// RecordSystemGCPauseTime records GC pause time.
func (m *Manager) RecordSystemGCPauseTime(pauseMs float64) {
	if m.enabled {
		m.systemGCPauseTime.Observe(pauseMs)
	}
}

// Package-level helpers delegate to the global manager.

// RecordAssessment counts a completed assessment.
func RecordAssessment(model, tier string) { globalManager.RecordAssessment(model, tier) }

// RecordAssessmentLatency records pipeline latency in milliseconds.
func RecordAssessmentLatency(model string, latencyMs float64) {
	globalManager.RecordAssessmentLatency(model, latencyMs)
}

// RecordProbability records a predicted probability.
func RecordProbability(model string, p float64) { globalManager.RecordProbability(model, p) }

// RecordAssessmentError counts an aborted assessment.
func RecordAssessmentError(model, stage, kind string) {
	globalManager.RecordAssessmentError(model, stage, kind)
}

// RecordArtifactLoad counts an artifact load attempt.
func RecordArtifactLoad(artifact, result string) { globalManager.RecordArtifactLoad(artifact, result) }

// RecordArtifactLoadLatency records artifact load latency in milliseconds.
func RecordArtifactLoadLatency(latencyMs float64) { globalManager.RecordArtifactLoadLatency(latencyMs) }

// UpdateArtifactCacheSize sets the number of cached artifacts.
func UpdateArtifactCacheSize(n int) { globalManager.UpdateArtifactCacheSize(n) }

// UpdateModelsRegistered sets the number of selectable models.
func UpdateModelsRegistered(n int) { globalManager.UpdateModelsRegistered(n) }

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode)
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.RecordHTTPRequestDuration(endpoint, method, statusCode, duration)
}

// RecordErrorByType records an error by type and severity.
func RecordErrorByType(errorType, severity string) { globalManager.RecordErrorByType(errorType, severity) }

// RecordErrorByEndpoint records an error by endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.RecordErrorByEndpoint(endpoint, method, errorType)
}

// RecordErrorLatency records the latency of a failed operation.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.RecordErrorLatency(component, errorType, latencyMs)
}

// UpdateSystemMemoryUsage sets the system memory usage.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.UpdateSystemMemoryUsage(bytes) }

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) { globalManager.UpdateSystemGoroutineCount(count) }

// RecordSystemGCPauseTime records GC pause time.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.RecordSystemGCPauseTime(pauseMs) }

// RefreshInterval returns the refresh interval of the global manager.
func RefreshInterval() time.Duration { return globalManager.RefreshInterval() }

// GetRegistry returns the registry the global manager records into.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
