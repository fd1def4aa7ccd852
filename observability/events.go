package observability

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type eventMetrics struct {
	published   *prometheus.CounterVec
	subscribers prometheus.Gauge
	archived    *prometheus.CounterVec
}

var (
	eventMetricsOnce sync.Once
	eventRegistry    *eventMetrics
)

// Events returns the metrics registry tracking committed events.
func Events() *eventMetrics {
	eventMetricsOnce.Do(func() {
		eventRegistry = &eventMetrics{
			published: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "nftmarket",
				Subsystem: "events",
				Name:      "published_total",
				Help:      "Count of committed events segmented by type.",
			}, []string{"type"}),
			subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "nftmarket",
				Subsystem: "events",
				Name:      "stream_subscribers",
				Help:      "Number of connected event stream subscribers.",
			}),
			archived: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "nftmarket",
				Subsystem: "events",
				Name:      "archived_total",
				Help:      "Count of archive writes segmented by outcome.",
			}, []string{"outcome"}),
		}
		prometheus.MustRegister(eventRegistry.published, eventRegistry.subscribers, eventRegistry.archived)
	})
	return eventRegistry
}

// RecordPublished increments the counter for the supplied event type.
func (m *eventMetrics) RecordPublished(eventType string) {
	if m == nil {
		return
	}
	normalized := strings.TrimSpace(strings.ToLower(eventType))
	if normalized == "" {
		normalized = "unknown"
	}
	m.published.WithLabelValues(normalized).Inc()
}

// SubscriberDelta adjusts the live subscriber gauge.
func (m *eventMetrics) SubscriberDelta(delta int) {
	if m == nil {
		return
	}
	m.subscribers.Add(float64(delta))
}

// RecordArchive counts an archive write.
func (m *eventMetrics) RecordArchive(err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.archived.WithLabelValues(outcome).Inc()
}
