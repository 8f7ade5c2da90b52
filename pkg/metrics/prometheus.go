// Package metrics provides Prometheus metrics for the taskmatch service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Engine
	recommendationsServed   prometheus.Counter
	recommendationLatency   prometheus.Histogram
	recommendationEmpty     prometheus.Counter
	candidatesRanked        prometheus.Histogram
	riskAssessments         *prometheus.CounterVec
	riskScore               prometheus.Histogram
	invalidTaskDescriptors  prometheus.Counter
	assignmentsDuplicate    prometheus.Counter
	assignmentsCreated      prometheus.Counter
	taskTransitions         *prometheus.CounterVec
	timerTicks              prometheus.Counter
	runningTasks            prometheus.Gauge
	rosterSize              prometheus.Gauge
	trackedTasks            prometheus.Gauge
	repositoryQueryLatency  prometheus.Histogram
	repositoryUpdateLatency prometheus.Histogram

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // process-wide metrics manager

// Dedicated registry so the default Go collectors stay out of /healthz.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process-wide registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "taskmatch",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      prometheus.Labels{},
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
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: buckets,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.recommendationsServed = m.counter("recommendations_served_total", "Number of ranking requests answered")
	m.recommendationLatency = m.histogram("recommendation_latency_milliseconds", "Ranking latency in milliseconds", m.histogramBuckets)
	m.recommendationEmpty = m.counter("recommendations_empty_total", "Ranking requests with no eligible employee")
	m.candidatesRanked = m.histogram("candidates_ranked", "Eligible candidates per ranking request", []float64{0, 1, 2, 5, 10, 25, 50, 100, 250})
	m.riskAssessments = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "risk_assessments_total",
		Help: "Risk assessments by resulting level",
	}, []string{"level"})
	m.riskScore = m.histogram("risk_score", "Distribution of risk scores", []float64{0, 15, 30, 45, 60, 90, 120, 160, 210})
	m.invalidTaskDescriptors = m.counter("invalid_task_descriptors_total", "Rejected task descriptors")
	m.assignmentsDuplicate = m.counter("assignments_duplicate_total", "Task assignments replayed with a known idempotency key")
	m.assignmentsCreated = m.counter("assignments_created_total", "Tasks created through assignment")
	m.taskTransitions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "task_transitions_total",
		Help: "Lifecycle actions applied to tasks",
	}, []string{"action"})
	m.timerTicks = m.counter("timer_ticks_total", "Timer ticks applied to running tasks")
	m.runningTasks = m.gauge("running_tasks", "Tasks whose timer is running")
	m.rosterSize = m.gauge("roster_size", "Employees in the roster")
	m.trackedTasks = m.gauge("tracked_tasks", "Tasks held by the task store")
	m.repositoryQueryLatency = m.histogram("repository_query_latency_milliseconds", "Repository read latency in milliseconds", m.histogramBuckets)
	m.repositoryUpdateLatency = m.histogram("repository_update_latency_milliseconds", "Repository write latency in milliseconds", m.histogramBuckets)

	m.queueSize = m.gauge("queue_size", "Task events waiting in the queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue size divided by capacity")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Task events enqueued")
	m.queueDequeued = m.counter("queue_dequeued_total", "Task events dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Task events rejected by the queue")

	m.workerCount = m.gauge("worker_count", "Task event workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Task event processing latency in milliseconds", m.histogramBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Task events that failed to apply")

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "http_requests_total",
		Help: "HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name:    "http_request_duration_milliseconds",
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "errors_by_component_total",
		Help: "Errors by component and type",
	}, []string{"component", "error_type"})
	m.errorsByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "errors_by_endpoint_total",
		Help: "HTTP errors by endpoint, method and type",
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "Average GC pause in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordRecommendation records one ranking request.
func RecordRecommendation(candidates int, latencyMs float64) {
	globalManager.recommendationsServed.Inc()
	globalManager.candidatesRanked.Observe(float64(candidates))
	globalManager.recommendationLatency.Observe(latencyMs)
	if candidates == 0 {
		globalManager.recommendationEmpty.Inc()
	}
}

// RecordRiskAssessment records one risk assessment.
func RecordRiskAssessment(level string, score int) {
	globalManager.riskAssessments.WithLabelValues(level).Inc()
	globalManager.riskScore.Observe(float64(score))
}

// RecordInvalidTaskDescriptor increments the rejected descriptor counter.
func RecordInvalidTaskDescriptor() {
	globalManager.invalidTaskDescriptors.Inc()
}

// RecordAssignmentDuplicate increments the replayed assignment counter.
func RecordAssignmentDuplicate() {
	globalManager.assignmentsDuplicate.Inc()
}

// RecordAssignmentCreated increments the created assignment counter.
func RecordAssignmentCreated() {
	globalManager.assignmentsCreated.Inc()
}

// RecordTaskTransition counts a lifecycle action.
func RecordTaskTransition(action string) {
	globalManager.taskTransitions.WithLabelValues(action).Inc()
}

// RecordTimerTick counts an applied timer tick.
func RecordTimerTick() {
	globalManager.timerTicks.Inc()
}

// UpdateRunningTasks sets the running task gauge.
func UpdateRunningTasks(count int) {
	globalManager.runningTasks.Set(float64(count))
}

// UpdateRosterSize sets the roster size gauge.
func UpdateRosterSize(count int) {
	globalManager.rosterSize.Set(float64(count))
}

// UpdateTrackedTasks sets the tracked task gauge.
func UpdateTrackedTasks(count int) {
	globalManager.trackedTasks.Set(float64(count))
}

// RecordRepositoryQueryLatency records a repository read.
func RecordRepositoryQueryLatency(latencyMs float64) {
	globalManager.repositoryQueryLatency.Observe(latencyMs)
}

// RecordRepositoryUpdateLatency records a repository write.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	globalManager.repositoryUpdateLatency.Observe(latencyMs)
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordHTTPRequest records an HTTP request and its duration.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an HTTP error.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap usage in bytes.
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

// GetRegistry returns the registry served from /healthz.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
