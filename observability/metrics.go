package observability

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type moduleMetrics struct {
	requests  *prometheus.CounterVec
	errors    *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	throttles *prometheus.CounterVec
}

type engineMetrics struct {
	invocations *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	writes      prometheus.Histogram
}

var (
	moduleMetricsOnce sync.Once
	moduleRegistry    *moduleMetrics

	engineMetricsOnce sync.Once
	engineRegistry    *engineMetrics
)

// ModuleMetrics returns the lazily-initialised metrics registry used to record
// gateway route activity.
func ModuleMetrics() *moduleMetrics {
	moduleMetricsOnce.Do(func() {
		moduleRegistry = &moduleMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "nftmarket",
				Subsystem: "gateway",
				Name:      "requests_total",
				Help:      "Total gateway requests segmented by module, route and outcome.",
			}, []string{"module", "method", "outcome"}),
			errors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "nftmarket",
				Subsystem: "gateway",
				Name:      "errors_total",
				Help:      "Total gateway errors segmented by module, route and status code.",
			}, []string{"module", "method", "status"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "nftmarket",
				Subsystem: "gateway",
				Name:      "request_duration_seconds",
				Help:      "Latency distribution for gateway handlers.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"module", "method"}),
			throttles: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "nftmarket",
				Subsystem: "gateway",
				Name:      "throttles_total",
				Help:      "Count of requests rejected due to throttling policies.",
			}, []string{"module", "reason"}),
		}
		prometheus.MustRegister(
			moduleRegistry.requests,
			moduleRegistry.errors,
			moduleRegistry.latency,
			moduleRegistry.throttles,
		)
	})
	return moduleRegistry
}

// Observe records the outcome of a request. The status code should be the
// HTTP status that was ultimately written to the response writer.
func (m *moduleMetrics) Observe(module, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	if module == "" {
		module = "unknown"
	}
	if method == "" {
		method = "unknown"
	}
	outcome := "success"
	if status >= 400 {
		outcome = "error"
	}
	m.requests.WithLabelValues(module, method, outcome).Inc()
	if status >= 400 {
		m.errors.WithLabelValues(module, method, fmt.Sprintf("%d", status)).Inc()
	}
	m.latency.WithLabelValues(module, method).Observe(duration.Seconds())
}

// RecordThrottle increments the throttle counter. Reasons should be stable
// strings such as "rate_limit" so dashboards remain consistent.
func (m *moduleMetrics) RecordThrottle(module, reason string) {
	if m == nil {
		return
	}
	if module == "" {
		module = "unknown"
	}
	if reason == "" {
		reason = "unspecified"
	}
	m.throttles.WithLabelValues(module, reason).Inc()
}

// EngineMetrics returns the registry tracking executor invocations.
func EngineMetrics() *engineMetrics {
	engineMetricsOnce.Do(func() {
		engineRegistry = &engineMetrics{
			invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "nftmarket",
				Subsystem: "engine",
				Name:      "invocations_total",
				Help:      "Engine invocations segmented by operation and failure reason.",
			}, []string{"operation", "reason"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "nftmarket",
				Subsystem: "engine",
				Name:      "invocation_duration_seconds",
				Help:      "Time spent inside the single-writer section per operation.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"operation"}),
			writes: prometheus.NewHistogram(prometheus.HistogramOpts{
				Namespace: "nftmarket",
				Subsystem: "engine",
				Name:      "committed_keys",
				Help:      "Number of state keys written per committed invocation.",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
			}),
		}
		prometheus.MustRegister(engineRegistry.invocations, engineRegistry.latency, engineRegistry.writes)
	})
	return engineRegistry
}

// Observe records one invocation. An empty reason means the invocation
// committed.
func (m *engineMetrics) Observe(operation, reason string, duration time.Duration) {
	if m == nil {
		return
	}
	if operation == "" {
		operation = "unknown"
	}
	if reason == "" {
		reason = "ok"
	}
	m.invocations.WithLabelValues(operation, reason).Inc()
	m.latency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCommit records how many keys a committed invocation wrote.
func (m *engineMetrics) RecordCommit(keys int) {
	if m == nil {
		return
	}
	m.writes.Observe(float64(keys))
}
