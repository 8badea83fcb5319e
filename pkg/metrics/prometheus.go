// Package metrics provides Prometheus metrics for the crossing service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the crossing service.
type Manager struct {
	namespace      string
	latencyBuckets []float64
	scoreBuckets   []float64
	constLabels    map[string]string
	registry       prometheus.Registerer

	// Relay metrics
	commandsReceived    *prometheus.CounterVec
	commandsOverwritten prometheus.Counter
	commandsDelivered   *prometheus.CounterVec
	commandPending      prometheus.Gauge
	streamSubscribers   prometheus.Gauge
	streamFrames        prometheus.Counter

	// Scorer metrics
	predictions       prometheus.Counter
	predictionErrors  *prometheus.CounterVec
	predictionLatency prometheus.Histogram
	difficultyScores  prometheus.Histogram

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpPanics          prometheus.Counter

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "crossing",
		latencyBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100},
		scoreBuckets:   prometheus.LinearBuckets(1, 1, 10),
		constLabels:    make(map[string]string),
		registry:       prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric definition
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.constLabels)

	m.commandsReceived = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "relay",
		Name:        "commands_received_total",
		Help:        "Total number of direction commands written to the relay",
		ConstLabels: labels,
	}, []string{"direction"})

	m.commandsOverwritten = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "relay",
		Name:        "commands_overwritten_total",
		Help:        "Commands replaced by a newer write before any consumer read them",
		ConstLabels: labels,
	})

	m.commandsDelivered = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "relay",
		Name:        "commands_delivered_total",
		Help:        "Commands consumed from the relay, by read mode",
		ConstLabels: labels,
	}, []string{"mode"})

	m.commandPending = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "relay",
		Name:        "command_pending",
		Help:        "1 when a command is waiting in the relay, 0 otherwise",
		ConstLabels: labels,
	})

	m.streamSubscribers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "relay",
		Name:        "stream_subscribers",
		Help:        "Number of connected controller stream consumers",
		ConstLabels: labels,
	})

	m.streamFrames = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "relay",
		Name:        "stream_frames_total",
		Help:        "Total number of event-stream frames written",
		ConstLabels: labels,
	})

	m.predictions = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "scorer",
		Name:        "predictions_total",
		Help:        "Total number of successful difficulty predictions",
		ConstLabels: labels,
	})

	m.predictionErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "scorer",
		Name:        "prediction_errors_total",
		Help:        "Failed difficulty predictions by error kind",
		ConstLabels: labels,
	}, []string{"kind"})

	m.predictionLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "scorer",
		Name:        "prediction_latency_milliseconds",
		Help:        "Time spent scaling and predicting one feature tuple",
		Buckets:     m.latencyBuckets,
		ConstLabels: labels,
	})

	m.difficultyScores = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "scorer",
		Name:        "difficulty_score",
		Help:        "Distribution of predicted difficulty values",
		Buckets:     m.scoreBuckets,
		ConstLabels: labels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "requests_total",
		Help:        "Total number of HTTP requests by endpoint, method and status",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.latencyBuckets,
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpPanics = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "panics_recovered_total",
		Help:        "Handler panics converted into failure envelopes",
		ConstLabels: labels,
	})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "memory_usage_bytes",
		Help:        "Current heap allocation in bytes",
		ConstLabels: labels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "goroutine_count",
		Help:        "Current number of goroutines",
		ConstLabels: labels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "gc_pause_time_milliseconds",
		Help:        "Average GC pause time in milliseconds",
		Buckets:     m.latencyBuckets,
		ConstLabels: labels,
	})
}

// DirectionOther labels every direction outside the known game tokens.
const DirectionOther = "other"

// knownDirections bounds the direction label; clients may post any string.
var knownDirections = map[string]struct{}{ //nolint:gochecknoglobals // fixed label set
	"up":    {},
	"down":  {},
	"left":  {},
	"right": {},
	"none":  {},
}

// DirectionLabel maps a direction to its metric label value.
func DirectionLabel(direction string) string {
	if _, ok := knownDirections[direction]; ok {
		return direction
	}
	return DirectionOther
}

// RecordCommandReceived counts a relay write.
func (m *Manager) RecordCommandReceived(direction string, overwrote bool) {
	m.commandsReceived.WithLabelValues(DirectionLabel(direction)).Inc()
	if overwrote {
		m.commandsOverwritten.Inc()
	}
}

// RecordCommandDelivered counts a consumed command for the given read mode.
func (m *Manager) RecordCommandDelivered(mode string) {
	m.commandsDelivered.WithLabelValues(mode).Inc()
}

// SetCommandPending reflects whether the relay slot holds a command.
func (m *Manager) SetCommandPending(pending bool) {
	if pending {
		m.commandPending.Set(1)
		return
	}
	m.commandPending.Set(0)
}

// StreamSubscribed adjusts the subscriber gauge by delta.
func (m *Manager) StreamSubscribed(delta int) {
	m.streamSubscribers.Add(float64(delta))
}

// RecordStreamFrame counts a written event-stream frame.
func (m *Manager) RecordStreamFrame() {
	m.streamFrames.Inc()
}

// RecordPrediction records a successful prediction and its latency.
func (m *Manager) RecordPrediction(score, latencyMs float64) {
	m.predictions.Inc()
	m.difficultyScores.Observe(score)
	m.predictionLatency.Observe(latencyMs)
}

// RecordPredictionError counts a failed prediction of the given kind.
func (m *Manager) RecordPredictionError(kind string) {
	m.predictionErrors.WithLabelValues(kind).Inc()
}

// RecordHTTPRequest records a finished HTTP request.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordHTTPPanic counts a recovered handler panic.
func (m *Manager) RecordHTTPPanic() {
	m.httpPanics.Inc()
}

// UpdateSystem sets the runtime gauges.
func (m *Manager) UpdateSystem(memBytes uint64, goroutines int) {
	m.systemMemoryUsage.Set(float64(memBytes))
	m.systemGoroutineCount.Set(float64(goroutines))
}

// RecordGCPause records an average GC pause in milliseconds.
func (m *Manager) RecordGCPause(pauseMs float64) {
	m.systemGCPauseTime.Observe(pauseMs)
}

// Default returns the process-wide manager registered on the custom registry.
func Default() *Manager {
	return globalManager
}

// RecordCommandReceived counts a relay write on the global manager.
func RecordCommandReceived(direction string, overwrote bool) {
	globalManager.RecordCommandReceived(direction, overwrote)
}

// RecordCommandDelivered counts a consumed command on the global manager.
func RecordCommandDelivered(mode string) {
	globalManager.RecordCommandDelivered(mode)
}

// SetCommandPending updates the pending gauge on the global manager.
func SetCommandPending(pending bool) {
	globalManager.SetCommandPending(pending)
}

// StreamSubscribed adjusts the subscriber gauge on the global manager.
func StreamSubscribed(delta int) {
	globalManager.StreamSubscribed(delta)
}

// RecordStreamFrame counts a frame on the global manager.
func RecordStreamFrame() {
	globalManager.RecordStreamFrame()
}

// RecordPrediction records a prediction on the global manager.
func RecordPrediction(score, latencyMs float64) {
	globalManager.RecordPrediction(score, latencyMs)
}

// RecordPredictionError counts a prediction failure on the global manager.
func RecordPredictionError(kind string) {
	globalManager.RecordPredictionError(kind)
}

// RecordHTTPRequest records a request on the global manager.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// RecordHTTPPanic counts a recovered panic on the global manager.
func RecordHTTPPanic() {
	globalManager.RecordHTTPPanic()
}

// UpdateSystem sets runtime gauges on the global manager.
func UpdateSystem(memBytes uint64, goroutines int) {
	globalManager.UpdateSystem(memBytes, goroutines)
}

// RecordGCPause records a GC pause on the global manager.
func RecordGCPause(pauseMs float64) {
	globalManager.RecordGCPause(pauseMs)
}

// Gatherer returns the registry this manager registers on, for scraping.
// Registerers that cannot be gathered fall back to the default gatherer.
func (m *Manager) Gatherer() prometheus.Gatherer {
	if g, ok := m.registry.(prometheus.Gatherer); ok {
		return g
	}
	return prometheus.DefaultGatherer
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
