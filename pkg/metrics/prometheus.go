// Package metrics provides Prometheus metrics for the Lingua assessment service.
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
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Session lifecycle
	sessionsStarted prometheus.Counter
	sessionsEnded   prometheus.Counter
	sessionsExpired prometheus.Counter
	sessionsByState *prometheus.GaugeVec
	sessionScore    prometheus.Histogram
	sessionTurns    prometheus.Histogram

	// Turns
	turnsAppended *prometheus.CounterVec
	turnsRejected *prometheus.CounterVec
	turnsReplayed prometheus.Counter

	// Placement
	placements    *prometheus.CounterVec
	placementBand prometheus.Histogram

	// Expiry sweeper
	sweepRuns     prometheus.Counter
	sweepDuration prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec

	// Repository
	repositoryShardCount      prometheus.Gauge
	repositoryRecordsPerShard *prometheus.GaugeVec
	repositoryLatency         *prometheus.HistogramVec

	// System
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

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "lingua",
		subsystem:        "assessment",
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
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: buckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	scoreBuckets := prometheus.LinearBuckets(0, 10, 11)
	bandBuckets := prometheus.LinearBuckets(4, 0.5, 11)

	m.sessionsStarted = m.counter("sessions_started_total", "Total number of sessions created")
	m.sessionsEnded = m.counter("sessions_ended_total", "Total number of sessions ended and scored")
	m.sessionsExpired = m.counter("sessions_expired_total", "Total number of idle sessions removed by the sweeper")
	m.sessionsByState = m.gaugeVec("sessions", "Sessions currently held in memory by state", "state")
	m.sessionScore = m.histogram("session_score", "Distribution of heuristic session scores (0-100)", scoreBuckets)
	m.sessionTurns = m.histogram("session_turns", "Number of turns in a session when it ends", prometheus.ExponentialBuckets(1, 2, 8))

	m.turnsAppended = m.counterVec("turns_appended_total", "Total number of turns appended by speaker", "who")
	m.turnsRejected = m.counterVec("turns_rejected_total", "Total number of rejected turn appends by reason", "reason")
	m.turnsReplayed = m.counter("turns_replayed_total", "Total number of retried turn appends recognised by key")

	m.placements = m.counterVec("placements_total", "Total number of placement results by overall level", "level")
	m.placementBand = m.histogram("placement_overall_band", "Distribution of overall placement bands", bandBuckets)

	m.sweepRuns = m.counter("sweep_runs_total", "Total number of expiry sweeps")
	m.sweepDuration = m.histogram("sweep_duration_milliseconds", "Duration of expiry sweeps in milliseconds", m.histogramBuckets)

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds",
		m.histogramBuckets, "endpoint", "method", "status_code")
	m.errorsByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by endpoint, method and error type",
		"endpoint", "method", "error_type")

	m.repositoryShardCount = m.gauge("repository_shard_count", "Number of session store shards")
	m.repositoryRecordsPerShard = m.gaugeVec("repository_records_per_shard", "Sessions per store shard", "shard")
	m.repositoryLatency = m.histogramVec("repository_operation_latency_milliseconds", "Session store operation latency in milliseconds",
		[]float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10}, "op")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// Session Metrics Functions.

// RecordSessionStarted increments the sessions started counter.
func RecordSessionStarted() {
	globalManager.sessionsStarted.Inc()
}

// RecordSessionEnded records a session's final score and turn count.
func RecordSessionEnded(score, turns int) {
	globalManager.sessionsEnded.Inc()
	globalManager.sessionScore.Observe(float64(score))
	globalManager.sessionTurns.Observe(float64(turns))
}

// RecordSessionsExpired adds n to the expired sessions counter.
func RecordSessionsExpired(n int) {
	globalManager.sessionsExpired.Add(float64(n))
}

// UpdateSessionCounts sets the in-memory session gauges.
func UpdateSessionCounts(active, ended int) {
	globalManager.sessionsByState.WithLabelValues("active").Set(float64(active))
	globalManager.sessionsByState.WithLabelValues("ended").Set(float64(ended))
}

// Turn Metrics Functions.

// RecordTurnAppended increments the appended counter for a speaker.
func RecordTurnAppended(who string) {
	globalManager.turnsAppended.WithLabelValues(who).Inc()
}

// RecordTurnRejected increments the rejected counter for a reason.
func RecordTurnRejected(reason string) {
	globalManager.turnsRejected.WithLabelValues(reason).Inc()
}

// RecordTurnReplayed increments the replayed turns counter.
func RecordTurnReplayed() {
	globalManager.turnsReplayed.Inc()
}

// Placement Metrics Functions.

// RecordPlacement records an overall placement outcome.
func RecordPlacement(level string, band float64) {
	globalManager.placements.WithLabelValues(level).Inc()
	globalManager.placementBand.Observe(band)
}

// Sweeper Metrics Functions.

// RecordSweep records one expiry sweep.
func RecordSweep(durationMs float64) {
	globalManager.sweepRuns.Inc()
	globalManager.sweepDuration.Observe(durationMs)
}

// HTTP Metrics Functions.

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
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// Repository Metrics Functions.

// UpdateRepositoryShardCount sets the total number of repository shards.
func UpdateRepositoryShardCount(count int) {
	globalManager.repositoryShardCount.Set(float64(count))
}

// UpdateRepositoryRecordsPerShard sets the number of sessions in a shard.
func UpdateRepositoryRecordsPerShard(shardID string, count int) {
	globalManager.repositoryRecordsPerShard.WithLabelValues(shardID).Set(float64(count))
}

// RecordRepositoryLatency records the latency of a store operation.
func RecordRepositoryLatency(op string, latencyMs float64) {
	globalManager.repositoryLatency.WithLabelValues(op).Observe(latencyMs)
}

// System Performance Metrics Functions.

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
