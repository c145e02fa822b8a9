// Package metrics provides Prometheus metrics for the nourish risk service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the nourish service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Core Business Metrics - assessment volume and outcomes
	assessmentsTotal   *prometheus.CounterVec
	assessmentLatency  prometheus.Histogram
	assessmentErrors   *prometheus.CounterVec
	unknownCategories  *prometheus.CounterVec
	extractionsTotal   prometheus.Counter
	recommendationsLen prometheus.Histogram

	// Ingest Pipeline Metrics
	ingestAccepted  prometheus.Counter
	ingestDuplicate prometheus.Counter

	// Operational Health Metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueues      prometheus.Counter
	queueDequeues      prometheus.Counter
	queueEnqueueErrors *prometheus.CounterVec
	workerCount        prometheus.Gauge
	workerLatency      prometheus.Histogram
	workerErrors       prometheus.Counter

	// Registry Metrics
	totalBeneficiaries    prometheus.Gauge
	riskCategoryCounts    *prometheus.GaugeVec
	registryShardCount    prometheus.Gauge
	registryUpdateLatency prometheus.Histogram
	registryQueryLatency  prometheus.Histogram

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
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
		namespace:        "nourish",
		subsystem:        "risk",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // metric declarations are intentionally exhaustive
	auto := promauto.With(m.registry)

	m.assessmentsTotal = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "assessments_total",
			Help:      "Total number of risk assessments by predicted category",
		},
		[]string{"category"},
	)

	m.assessmentLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "assessment_latency_milliseconds",
		Help:      "Histogram of end-to-end assessment latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.assessmentErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "assessment_errors_total",
			Help:      "Total number of failed assessments by error kind",
		},
		[]string{"kind"},
	)

	m.unknownCategories = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "unknown_categories_total",
			Help:      "Total number of rejected unseen categorical values by field",
		},
		[]string{"field"},
	)

	m.extractionsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "meal_extractions_total",
		Help:      "Total number of meal-text extractions",
	})

	m.recommendationsLen = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recommendations_per_assessment",
		Help:      "Histogram of recommendation list length per assessment",
		Buckets:   []float64{1, 2, 3, 4, 5, 6, 7},
	})

	m.ingestAccepted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ingest_accepted_total",
		Help:      "Total number of beneficiary submissions accepted for processing",
	})

	m.ingestDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ingest_duplicate_total",
		Help:      "Total number of duplicate beneficiary submissions detected",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current size of the ingest queue (backlog indicator)",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Configured capacity of the ingest queue",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_utilization_ratio",
		Help:      "Ingest queue utilization ratio (size / capacity)",
	})

	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueues_total",
		Help:      "Total number of successful enqueues",
	})

	m.queueDequeues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeues_total",
		Help:      "Total number of dequeues",
	})

	m.queueEnqueueErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "queue_enqueue_errors_total",
			Help:      "Total number of rejected enqueues by reason",
		},
		[]string{"reason"},
	)

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Current number of assessment workers (processing capacity)",
	})

	m.workerLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_processing_latency_milliseconds",
		Help:      "Histogram of per-record worker processing latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_errors_total",
		Help:      "Total number of worker processing errors",
	})

	m.totalBeneficiaries = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "total_beneficiaries",
		Help:      "Total number of beneficiaries in the registry",
	})

	m.riskCategoryCounts = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "beneficiaries_by_category",
			Help:      "Number of registered beneficiaries per risk category",
		},
		[]string{"category"},
	)

	m.registryShardCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "registry_shard_count",
		Help:      "Total number of registry shards",
	})

	m.registryUpdateLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "registry_update_latency_milliseconds",
		Help:      "Registry update operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.registryQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "registry_query_latency_milliseconds",
		Help:      "Registry query operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current heap allocation in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_milliseconds",
		Help:      "Histogram of average GC pause time in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// Package-level helpers operating on the global manager.

// RecordAssessment records one completed assessment with its predicted
// category, end-to-end latency, and recommendation count.
func RecordAssessment(category string, latencyMs float64, recommendations int) {
	globalManager.assessmentsTotal.WithLabelValues(category).Inc()
	globalManager.assessmentLatency.Observe(latencyMs)
	globalManager.recommendationsLen.Observe(float64(recommendations))
}

// RecordAssessmentError records one failed assessment by error kind.
func RecordAssessmentError(kind string) {
	globalManager.assessmentErrors.WithLabelValues(kind).Inc()
}

// RecordUnknownCategory records a rejected unseen categorical value.
func RecordUnknownCategory(field string) {
	globalManager.unknownCategories.WithLabelValues(field).Inc()
}

// RecordExtraction records one meal-text extraction.
func RecordExtraction() {
	globalManager.extractionsTotal.Inc()
}

// RecordIngestAccepted records one accepted beneficiary submission.
func RecordIngestAccepted() {
	globalManager.ingestAccepted.Inc()
}

// RecordIngestDuplicate records one duplicate beneficiary submission.
func RecordIngestDuplicate() {
	globalManager.ingestDuplicate.Inc()
}

// UpdateQueueSize updates the ingest queue size gauge.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity updates the ingest queue capacity gauge.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization updates the ingest queue utilization gauge.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue records one successful enqueue.
func RecordQueueEnqueue() {
	globalManager.queueEnqueues.Inc()
}

// RecordQueueDequeue records one dequeue.
func RecordQueueDequeue() {
	globalManager.queueDequeues.Inc()
}

// RecordQueueEnqueueError records one rejected enqueue by reason.
func RecordQueueEnqueueError(reason string) {
	globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc()
}

// UpdateWorkerCount updates the worker count gauge.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records per-record worker latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerLatency.Observe(latencyMs)
}

// RecordWorkerError records one worker processing error.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// UpdateTotalBeneficiaries updates the registry population gauge.
func UpdateTotalBeneficiaries(count int) {
	globalManager.totalBeneficiaries.Set(float64(count))
}

// UpdateRiskCategoryCount updates the per-category population gauge.
func UpdateRiskCategoryCount(category string, count int) {
	globalManager.riskCategoryCounts.WithLabelValues(category).Set(float64(count))
}

// UpdateRegistryShardCount updates the registry shard count gauge.
func UpdateRegistryShardCount(count int) {
	globalManager.registryShardCount.Set(float64(count))
}

// RecordRegistryUpdateLatency records a registry update latency.
func RecordRegistryUpdateLatency(latencyMs float64) {
	globalManager.registryUpdateLatency.Observe(latencyMs)
}

// RecordRegistryQueryLatency records a registry query latency.
func RecordRegistryQueryLatency(latencyMs float64) {
	globalManager.registryQueryLatency.Observe(latencyMs)
}

// RecordHTTPRequest records one HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records one HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// UpdateSystemMemoryUsage updates the heap allocation gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount updates the goroutine count gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records the average GC pause time.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used for serving.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
