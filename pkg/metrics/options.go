package metrics

import (
	"maps"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures a Manager.
type Option func(*Manager)

// WithPrometheusRegistry registers the metrics on r instead of the default
// registerer.
func WithPrometheusRegistry(r prometheus.Registerer) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}

// WithNamespace replaces the "rehabsim" namespace.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem replaces the "widgets" subsystem.
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithMetricPrefix prepends prefix to every metric name.
func WithMetricPrefix(prefix string) Option {
	return func(m *Manager) {
		m.metricPrefix = prefix
	}
}

// WithConstLabels attaches fixed labels, such as a clinic or kiosk id, to
// every metric.
func WithConstLabels(labels map[string]string) Option {
	return func(m *Manager) {
		maps.Copy(m.constLabels, labels)
	}
}

// WithReactionBuckets sets the reaction-latency histogram buckets, in ms.
func WithReactionBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.reactionBuckets = buckets
		}
	}
}

// WithLatencyBuckets sets the buckets of the command and HTTP duration
// histograms.
func WithLatencyBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.latencyBuckets = buckets
		}
	}
}

// WithMetricsEnabled switches recording on or off.
func WithMetricsEnabled(enabled bool) Option {
	return func(m *Manager) {
		m.enabled = enabled
	}
}

// WithRefreshInterval sets how often sampled gauges are refreshed.
func WithRefreshInterval(interval time.Duration) Option {
	return func(m *Manager) {
		if interval > 0 {
			m.refreshInterval = interval
		}
	}
}
