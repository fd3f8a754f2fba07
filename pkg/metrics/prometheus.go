// Package metrics provides Prometheus metrics for the swatch classification service.
package metrics

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	constLabels      map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Classification
	classifications       *prometheus.CounterVec
	classificationErrors  *prometheus.CounterVec
	needsConfirmation     prometheus.Counter
	pipelineLatency       prometheus.Histogram
	samplesAccepted       prometheus.Histogram
	gainsClamped          prometheus.Counter
	noisySamples          prometheus.Counter
	classificationConfVec prometheus.Histogram

	// Garment scoring
	garmentRatings   *prometheus.CounterVec
	garmentBatchSize prometheus.Histogram

	// Image fetch
	fetchLatency prometheus.Histogram
	fetchErrors  *prometheus.CounterVec

	// Result cache
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec

	// Job queue
	queueDepth    prometheus.Gauge
	queueRejected *prometheus.CounterVec

	// Worker pool
	workerActive  prometheus.Gauge
	workerJobs    prometheus.Counter
	workerLatency prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// The process-wide manager and the registry /metrics serves. Configure swaps both.
var (
	globalMu       sync.RWMutex         //nolint:gochecknoglobals // guards the singleton below
	globalManager  *Manager             //nolint:gochecknoglobals // intentional global for singleton metrics manager
	customRegistry *prometheus.Registry //nolint:gochecknoglobals // custom registry to avoid default Go metrics
)

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	Configure()
}

// Configure rebuilds the process-wide manager from opts on a fresh registry and
// returns it. Components capture Default when they are built, so call it first.
func Configure(opts ...Option) *Manager {
	reg := prometheus.NewRegistry()
	m := NewManager(append(opts, WithPrometheusRegistry(reg))...)

	globalMu.Lock()
	defer globalMu.Unlock()
	customRegistry, globalManager = reg, m
	return m
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "swatch",
		subsystem:        "classifier",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		constLabels:      make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) name(n string) string {
	return m.metricPrefix + n
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: m.name(name), Help: help, ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: m.name(name), Help: help, ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: m.name(name), Help: help, ConstLabels: m.constLabels,
		Buckets: buckets,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric
	auto := promauto.With(m.registry)

	m.classifications = auto.NewCounterVec(
		m.counterOpts("classifications_total", "Successful classifications by season and scoring branch"),
		[]string{"season", "branch"},
	)
	m.classificationErrors = auto.NewCounterVec(
		m.counterOpts("classification_errors_total", "Failed classifications by error code"),
		[]string{"code"},
	)
	m.needsConfirmation = auto.NewCounter(
		m.counterOpts("needs_confirmation_total", "Classifications flagged for user confirmation"),
	)
	m.pipelineLatency = auto.NewHistogram(
		m.histogramOpts("pipeline_latency_milliseconds", "End-to-end classification latency in milliseconds", m.histogramBuckets),
	)
	m.samplesAccepted = auto.NewHistogram(
		m.histogramOpts("samples_accepted", "Skin samples accepted per classification", prometheus.LinearBuckets(0, 100, 12)),
	)
	m.gainsClamped = auto.NewCounter(
		m.counterOpts("gains_clamped_total", "Classifications whose illumination gains hit the clamp"),
	)
	m.noisySamples = auto.NewCounter(
		m.counterOpts("noisy_samples_total", "Classifications whose samples were flagged noisy"),
	)
	m.classificationConfVec = auto.NewHistogram(
		m.histogramOpts("confidence", "Overall classification confidence", prometheus.LinearBuckets(0.1, 0.1, 10)),
	)

	m.garmentRatings = auto.NewCounterVec(
		m.counterOpts("garment_ratings_total", "Garment scores by rating"),
		[]string{"rating", "near_face"},
	)
	m.garmentBatchSize = auto.NewHistogram(
		m.histogramOpts("garment_batch_size", "Garments per batch scoring request", prometheus.ExponentialBuckets(1, 2, 8)),
	)

	m.fetchLatency = auto.NewHistogram(
		m.histogramOpts("fetch_latency_milliseconds", "Image fetch latency in milliseconds", m.histogramBuckets),
	)
	m.fetchErrors = auto.NewCounterVec(
		m.counterOpts("fetch_errors_total", "Image fetch failures by reason"),
		[]string{"reason"},
	)

	m.cacheHits = auto.NewCounterVec(
		m.counterOpts("cache_hits_total", "Classification cache hits by backend"),
		[]string{"backend"},
	)
	m.cacheMisses = auto.NewCounterVec(
		m.counterOpts("cache_misses_total", "Classification cache misses by backend"),
		[]string{"backend"},
	)

	m.queueDepth = auto.NewGauge(
		m.gaugeOpts("queue_depth", "Garment jobs waiting in the queue"),
	)
	m.queueRejected = auto.NewCounterVec(
		m.counterOpts("queue_rejected_total", "Jobs the queue refused by reason"),
		[]string{"reason"},
	)

	m.workerActive = auto.NewGauge(
		m.gaugeOpts("worker_active", "Workers currently scoring a garment"),
	)
	m.workerJobs = auto.NewCounter(
		m.counterOpts("worker_jobs_total", "Garment jobs completed by the worker pool"),
	)
	m.workerLatency = auto.NewHistogram(
		m.histogramOpts("worker_latency_milliseconds", "Per-job worker latency in milliseconds", m.histogramBuckets),
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.systemMemoryUsage = auto.NewGauge(
		m.gaugeOpts("system_memory_bytes", "Heap memory in use in bytes"),
	)
	m.systemGoroutineCount = auto.NewGauge(
		m.gaugeOpts("system_goroutines", "Current number of goroutines"),
	)
}

// RecordClassification records one successful classification.
func (m *Manager) RecordClassification(season, branch string, confidence float64, samples int, needsConfirmation, clamped, noisy bool, latency time.Duration) {
	if !m.enabled {
		return
	}
	m.classifications.WithLabelValues(season, branch).Inc()
	m.classificationConfVec.Observe(confidence)
	m.samplesAccepted.Observe(float64(samples))
	m.pipelineLatency.Observe(float64(latency.Microseconds()) / 1000)
	if needsConfirmation {
		m.needsConfirmation.Inc()
	}
	if clamped {
		m.gainsClamped.Inc()
	}
	if noisy {
		m.noisySamples.Inc()
	}
}

// RecordClassificationError records a failed classification by wire code.
func (m *Manager) RecordClassificationError(code string) {
	if m.enabled {
		m.classificationErrors.WithLabelValues(code).Inc()
	}
}

// RecordGarmentRating records one garment score.
func (m *Manager) RecordGarmentRating(rating string, nearFace bool) {
	if !m.enabled {
		return
	}
	nf := "false"
	if nearFace {
		nf = "true"
	}
	m.garmentRatings.WithLabelValues(rating, nf).Inc()
}

// RecordGarmentBatch records the size of a batch scoring request.
func (m *Manager) RecordGarmentBatch(size int) {
	if m.enabled {
		m.garmentBatchSize.Observe(float64(size))
	}
}

// RecordFetch records one image fetch; reason is "" on success.
func (m *Manager) RecordFetch(latency time.Duration, reason string) {
	if !m.enabled {
		return
	}
	m.fetchLatency.Observe(float64(latency.Microseconds()) / 1000)
	if reason != "" {
		m.fetchErrors.WithLabelValues(reason).Inc()
	}
}

// RecordCache records a cache lookup for backend.
func (m *Manager) RecordCache(backend string, hit bool) {
	if !m.enabled {
		return
	}
	if hit {
		m.cacheHits.WithLabelValues(backend).Inc()
		return
	}
	m.cacheMisses.WithLabelValues(backend).Inc()
}

// UpdateQueueDepth sets the number of queued jobs.
func (m *Manager) UpdateQueueDepth(n int) {
	if m.enabled {
		m.queueDepth.Set(float64(n))
	}
}

// RecordQueueRejected records a job the queue refused.
func (m *Manager) RecordQueueRejected(reason string) {
	if m.enabled {
		m.queueRejected.WithLabelValues(reason).Inc()
	}
}

// WorkerStarted marks a worker busy.
func (m *Manager) WorkerStarted() {
	if m.enabled {
		m.workerActive.Inc()
	}
}

// WorkerFinished marks a worker idle and records the job latency.
func (m *Manager) WorkerFinished(latency time.Duration) {
	if !m.enabled {
		return
	}
	m.workerActive.Dec()
	m.workerJobs.Inc()
	m.workerLatency.Observe(float64(latency.Microseconds()) / 1000)
}

// RecordHTTPRequest records an HTTP request and its duration in milliseconds.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// CollectSystem samples runtime gauges once.
func (m *Manager) CollectSystem() {
	if !m.enabled {
		return
	}
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.systemMemoryUsage.Set(float64(ms.HeapInuse))
	m.systemGoroutineCount.Set(float64(runtime.NumGoroutine()))
}

// RunSystemCollector samples runtime gauges every interval until ctx is done.
// A non-positive interval uses the manager's refresh interval.
func (m *Manager) RunSystemCollector(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = m.refreshInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	m.CollectSystem()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.CollectSystem()
		}
	}
}

// Default returns the process-wide manager registered on GetRegistry.
func Default() *Manager {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalManager
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return customRegistry
}
