// Package metrics provides Prometheus metrics for the rehabsim widgets.
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

// Label values for the widget label.
const (
	WidgetBalanceWalk = "balance_walk"
	WidgetReachGrab   = "reach_grab"
	WidgetReactionTap = "reaction_tap"
)

// defaultReactionBuckets covers human reaction times in milliseconds.
var defaultReactionBuckets = []float64{150, 200, 250, 300, 350, 400, 500, 750, 1000, 1500, 3000} //nolint:gochecknoglobals // fixed bucket layout

// Manager manages all Prometheus metrics for the simulation widgets.
type Manager struct {
	namespace       string
	subsystem       string
	reactionBuckets []float64
	latencyBuckets  []float64
	enabled         bool
	refreshInterval time.Duration
	constLabels     map[string]string
	metricPrefix    string
	registry        prometheus.Registerer

	// Widget activity
	kicks          prometheus.Counter
	restarts       *prometheus.CounterVec
	targetsSpawned *prometheus.CounterVec
	targetsHit     *prometheus.CounterVec
	targetsMissed  *prometheus.CounterVec
	duplicateHits  prometheus.Counter

	// Widget readouts
	reactionLatency prometheus.Histogram
	reactionScore   prometheus.Gauge
	reactionCombo   prometheus.Gauge
	reachAccuracy   prometheus.Gauge
	reachROM        prometheus.Gauge
	pendingTimers   *prometheus.GaugeVec

	// Event loop
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueErrors *prometheus.CounterVec
	commandsHandled    *prometheus.CounterVec
	commandLatency     prometheus.Histogram

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
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
		namespace:       "rehabsim",
		subsystem:       "widgets",
		reactionBuckets: defaultReactionBuckets,
		latencyBuckets:  prometheus.DefBuckets,
		enabled:         true,
		refreshInterval: defaultRefreshInterval,
		constLabels:     make(map[string]string),
		registry:        prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	constLabels := prometheus.Labels(m.constLabels)

	m.kicks = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("kicks_total"),
		Help:        "Kick sequences started by the balance-walk sequencer",
		ConstLabels: constLabels,
	})

	m.restarts = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("restarts_total"),
		Help:        "Restart or reset commands handled per widget",
		ConstLabels: constLabels,
	}, []string{"widget"})

	m.targetsSpawned = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("targets_spawned_total"),
		Help:        "Targets spawned per widget",
		ConstLabels: constLabels,
	}, []string{"widget"})

	m.targetsHit = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("targets_hit_total"),
		Help:        "Targets grabbed or tapped per widget",
		ConstLabels: constLabels,
	}, []string{"widget"})

	m.targetsMissed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("targets_missed_total"),
		Help:        "Targets that expired before a hit",
		ConstLabels: constLabels,
	}, []string{"widget"})

	m.duplicateHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("duplicate_hits_total"),
		Help:        "Hits ignored because the target was already hit",
		ConstLabels: constLabels,
	})

	m.reactionLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("reaction_latency_milliseconds"),
		Help:        "Reaction-tap latency between spawn and hit",
		Buckets:     m.reactionBuckets,
		ConstLabels: constLabels,
	})

	m.reactionScore = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("reaction_score"),
		Help:        "Current reaction-tap score",
		ConstLabels: constLabels,
	})

	m.reactionCombo = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("reaction_combo"),
		Help:        "Current reaction-tap combo multiplier",
		ConstLabels: constLabels,
	})

	m.reachAccuracy = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("reach_accuracy_percent"),
		Help:        "Current reach-and-grab accuracy",
		ConstLabels: constLabels,
	})

	m.reachROM = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("reach_rom_degrees"),
		Help:        "Last simulated range-of-motion sample",
		ConstLabels: constLabels,
	})

	m.pendingTimers = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("pending_timers"),
		Help:        "Outstanding scheduled callbacks per widget",
		ConstLabels: constLabels,
	}, []string{"widget"})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("queue_size"),
		Help:        "Commands waiting for the event loop",
		ConstLabels: constLabels,
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("queue_capacity"),
		Help:        "Maximum command queue capacity",
		ConstLabels: constLabels,
	})

	m.queueEnqueueErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("queue_enqueue_errors_total"),
		Help:        "Commands rejected by the queue",
		ConstLabels: constLabels,
	}, []string{"reason"})

	m.commandsHandled = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("commands_handled_total"),
		Help:        "Commands dispatched by the event loop",
		ConstLabels: constLabels,
	}, []string{"kind"})

	m.commandLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("command_latency_milliseconds"),
		Help:        "Time spent handling one command on the event loop",
		Buckets:     m.latencyBuckets,
		ConstLabels: constLabels,
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_requests_total"),
			Help:        "Total number of HTTP requests by endpoint and method",
			ConstLabels: constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_request_duration_milliseconds"),
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.latencyBuckets,
			ConstLabels: constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_memory_usage_bytes"),
		Help:        "System memory usage in bytes",
		ConstLabels: constLabels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_goroutine_count"),
		Help:        "Number of goroutines",
		ConstLabels: constLabels,
	})
}

// Enabled reports whether recording is switched on for the global manager.
func Enabled() bool {
	return globalManager.enabled
}

// RecordKick increments the kick counter.
func RecordKick() {
	if !globalManager.enabled {
		return
	}
	globalManager.kicks.Inc()
}

// RecordRestart increments the restart counter for widget.
func RecordRestart(widget string) {
	if !globalManager.enabled {
		return
	}
	globalManager.restarts.WithLabelValues(widget).Inc()
}

// RecordTargetSpawned increments the spawn counter for widget.
func RecordTargetSpawned(widget string) {
	if !globalManager.enabled {
		return
	}
	globalManager.targetsSpawned.WithLabelValues(widget).Inc()
}

// RecordTargetHit increments the hit counter for widget.
func RecordTargetHit(widget string) {
	if !globalManager.enabled {
		return
	}
	globalManager.targetsHit.WithLabelValues(widget).Inc()
}

// RecordTargetMissed increments the miss counter for widget.
func RecordTargetMissed(widget string) {
	if !globalManager.enabled {
		return
	}
	globalManager.targetsMissed.WithLabelValues(widget).Inc()
}

// RecordDuplicateHit increments the ignored duplicate hit counter.
func RecordDuplicateHit() {
	if !globalManager.enabled {
		return
	}
	globalManager.duplicateHits.Inc()
}

// RecordReactionLatency records a reaction-tap latency in milliseconds.
func RecordReactionLatency(latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.reactionLatency.Observe(latencyMs)
}

// UpdateReactionScore sets the current reaction-tap score and combo.
func UpdateReactionScore(score, combo int) {
	if !globalManager.enabled {
		return
	}
	globalManager.reactionScore.Set(float64(score))
	globalManager.reactionCombo.Set(float64(combo))
}

// UpdateReachAccuracy sets the current reach-and-grab accuracy percent.
func UpdateReachAccuracy(percent int) {
	if !globalManager.enabled {
		return
	}
	globalManager.reachAccuracy.Set(float64(percent))
}

// UpdateReachROM sets the last range-of-motion sample in degrees.
func UpdateReachROM(degrees int) {
	if !globalManager.enabled {
		return
	}
	globalManager.reachROM.Set(float64(degrees))
}

// UpdatePendingTimers sets the outstanding callback count for widget.
func UpdatePendingTimers(widget string, count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.pendingTimers.WithLabelValues(widget).Set(float64(count))
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	if !globalManager.enabled {
		return
	}
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	if !globalManager.enabled {
		return
	}
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError(reason string) {
	if !globalManager.enabled {
		return
	}
	globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc()
}

// RecordCommandHandled counts one dispatched command and its handling time.
func RecordCommandHandled(kind string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.commandsHandled.WithLabelValues(kind).Inc()
	globalManager.commandLatency.Observe(latencyMs)
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// RefreshInterval returns how often gauges sampled from outside the loop
// should be refreshed.
func RefreshInterval() time.Duration {
	return globalManager.refreshInterval
}
