package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Recommendation pipeline
	recommendationsServed  prometheus.Counter
	recommendationLatency  prometheus.Histogram
	candidatesScored       prometheus.Counter
	candidatesSkipped      prometheus.Counter
	recommendationsDropped prometheus.Counter
	recommendationRequests *prometheus.CounterVec
	candidatesReturned     prometheus.Histogram

	// Code evaluation
	evaluations         *prometheus.CounterVec
	evaluationScore     prometheus.Histogram
	evaluationFallbacks prometheus.Counter

	// Admission control
	admissionQueueLength *prometheus.GaugeVec
	admissionRunning     *prometheus.GaugeVec
	admissionAdmitted    *prometheus.CounterVec
	admissionRejected    *prometheus.CounterVec
	admissionWait        *prometheus.HistogramVec

	// Persistence queue and workers
	queueSize               prometheus.Gauge
	queueCapacity           prometheus.Gauge
	queueEnqueued           prometheus.Counter
	queueEnqueueErrors      prometheus.Counter
	workerCount             prometheus.Gauge
	workerProcessed         prometheus.Counter
	workerErrors            prometheus.Counter
	workerProcessingLatency prometheus.Histogram

	// Storage and cache
	repositoryLatency *prometheus.HistogramVec
	repositoryErrors  *prometheus.CounterVec
	breakerState      *prometheus.GaugeVec
	cacheLookups      *prometheus.CounterVec

	errorsByComponent *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry keeps the default Go collectors out of /metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "techsync",
		subsystem:        "matching",
		histogramBuckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// NewMetricsManager is an alias of NewManager.
func NewMetricsManager(opts ...Option) *Manager {
	return NewManager(opts...)
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	return promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.recommendationsServed = m.counter("recommendations_served_total", "Recommendation requests answered")
	m.recommendationLatency = m.histogram("recommendation_latency_milliseconds",
		"End-to-end recommendation latency in milliseconds", m.histogramBuckets)
	m.candidatesScored = m.counter("candidates_scored_total", "Candidate projects scored")
	m.candidatesSkipped = m.counter("candidates_skipped_total", "Candidate projects skipped after a scoring failure")
	m.recommendationsDropped = m.counter("recommendations_persist_dropped_total",
		"Recommendation batches that could not be handed to the persistence queue")
	m.recommendationRequests = m.counterVec("recommendation_requests_total", "Recommendation requests by outcome", "outcome")
	m.candidatesReturned = m.histogram("candidates_returned", "Recommendations returned per request",
		[]float64{0, 1, 3, 5, 10, 20, 50})

	m.evaluations = m.counterVec("evaluations_total", "Code evaluations by evaluator", "evaluator")
	m.evaluationScore = m.histogram("evaluation_score", "Distribution of evaluation scores",
		[]float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100})
	m.evaluationFallbacks = m.counter("evaluation_fallbacks_total", "Evaluations answered with the neutral fallback")

	m.admissionQueueLength = m.gaugeVec("admission_queue_length", "Tasks waiting per admission queue", "queue")
	m.admissionRunning = m.gaugeVec("admission_running", "Tasks running per admission queue", "queue")
	m.admissionAdmitted = m.counterVec("admission_admitted_total", "Tasks admitted per queue", "queue")
	m.admissionRejected = m.counterVec("admission_rejected_total", "Tasks rejected per queue", "queue", "reason")
	m.admissionWait = m.histogramVec("admission_wait_milliseconds", "Time spent waiting before execution", "queue")

	m.queueSize = m.gauge("persist_queue_size", "Items waiting in the persistence queue")
	m.queueCapacity = m.gauge("persist_queue_capacity", "Capacity of the persistence queue")
	m.queueEnqueued = m.counter("persist_queue_enqueued_total", "Items enqueued for persistence")
	m.queueEnqueueErrors = m.counter("persist_queue_enqueue_errors_total", "Failed persistence enqueues")
	m.workerCount = m.gauge("persist_workers", "Persistence workers running")
	m.workerProcessed = m.counter("persist_worker_processed_total", "Items persisted by workers")
	m.workerErrors = m.counter("persist_worker_errors_total", "Persistence failures")
	m.workerProcessingLatency = m.histogram("persist_worker_latency_milliseconds",
		"Persistence latency in milliseconds", m.histogramBuckets)

	m.repositoryLatency = m.histogramVec("repository_latency_milliseconds", "Repository call latency", "backend", "op")
	m.repositoryErrors = m.counterVec("repository_errors_total", "Repository call failures", "backend", "op")
	m.breakerState = m.gaugeVec("breaker_state", "Circuit breaker state (0 closed, 1 half-open, 2 open)", "name")
	m.cacheLookups = m.counterVec("cache_lookups_total", "Cache lookups by backend and result", "backend", "result")
	m.errorsByComponent = m.counterVec("errors_total", "Errors by component and kind", "component", "kind")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration",
		"endpoint", "method", "status_code")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Heap memory in use")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Number of goroutines")
}

// RecordRecommendationServed counts an answered recommendation request.
func RecordRecommendationServed(latencyMs float64) {
	globalManager.recommendationsServed.Inc()
	globalManager.recommendationLatency.Observe(latencyMs)
}

// RecordCandidatesScored adds n scored candidates.
func RecordCandidatesScored(n int) {
	globalManager.candidatesScored.Add(float64(n))
}

// RecordCandidateSkipped counts a candidate dropped after a scoring failure.
func RecordCandidateSkipped() {
	globalManager.candidatesSkipped.Inc()
}

// RecordRecommendationsDropped counts a batch the persistence queue refused.
func RecordRecommendationsDropped() {
	globalManager.recommendationsDropped.Inc()
}

// RecordRecommendationRequest counts a request by outcome and the number returned.
func RecordRecommendationRequest(outcome string, returned int) {
	globalManager.recommendationRequests.WithLabelValues(outcome).Inc()
	globalManager.candidatesReturned.Observe(float64(returned))
}

// RecordEvaluation records one evaluation and its score.
func RecordEvaluation(evaluator string, score int) {
	globalManager.evaluations.WithLabelValues(evaluator).Inc()
	globalManager.evaluationScore.Observe(float64(score))
}

// RecordEvaluationFallback counts a neutral fallback result.
func RecordEvaluationFallback() {
	globalManager.evaluationFallbacks.Inc()
}

// UpdateAdmissionQueue publishes the waiting and running counts of a queue.
func UpdateAdmissionQueue(queue string, waiting, running int) {
	globalManager.admissionQueueLength.WithLabelValues(queue).Set(float64(waiting))
	globalManager.admissionRunning.WithLabelValues(queue).Set(float64(running))
}

// RecordAdmission counts an admitted task and its wait time.
func RecordAdmission(queue string, waitMs float64) {
	globalManager.admissionAdmitted.WithLabelValues(queue).Inc()
	globalManager.admissionWait.WithLabelValues(queue).Observe(waitMs)
}

// RecordAdmissionRejected counts a rejected task.
func RecordAdmissionRejected(queue, reason string) {
	globalManager.admissionRejected.WithLabelValues(queue, reason).Inc()
}

// UpdateQueueSize sets the current persistence queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the persistence queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the number of running persistence workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessed records a persisted item and its latency.
func RecordWorkerProcessed(latencyMs float64) {
	globalManager.workerProcessed.Inc()
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordRepositoryCall records repository latency and failure.
func RecordRepositoryCall(backend, op string, latencyMs float64, err error) {
	globalManager.repositoryLatency.WithLabelValues(backend, op).Observe(latencyMs)
	if err != nil {
		globalManager.repositoryErrors.WithLabelValues(backend, op).Inc()
	}
}

// UpdateBreakerState publishes a circuit breaker state.
func UpdateBreakerState(name string, state int) {
	globalManager.breakerState.WithLabelValues(name).Set(float64(state))
}

// RecordCacheLookup counts a cache hit or miss.
func RecordCacheLookup(backend string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	globalManager.cacheLookups.WithLabelValues(backend, result).Inc()
}

// RecordErrorByComponent counts an error of kind raised by component.
func RecordErrorByComponent(component, kind string) {
	globalManager.errorsByComponent.WithLabelValues(component, kind).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
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
