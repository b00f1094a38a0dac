// Package metrics exposes Prometheus counters for the notification
// pipeline. All recording helpers are nil-guarded so tests and brokerless
// runs can pass a nil *Metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	Dispatched     *prometheus.CounterVec
	Suppressed     *prometheus.CounterVec
	PublishFailed  prometheus.Counter
	UnreadCacheHit *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kolabo_notifications_dispatched_total",
			Help: "Notifications persisted, by type.",
		}, []string{"type"}),
		Suppressed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kolabo_notifications_suppressed_total",
			Help: "Notifications suppressed before persisting, by reason.",
		}, []string{"reason"}),
		PublishFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kolabo_notification_events_publish_failures_total",
			Help: "Event stream publish failures (best effort, request unaffected).",
		}),
		UnreadCacheHit: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kolabo_notification_unread_cache_total",
			Help: "Unread-count cache lookups, by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.Dispatched, m.Suppressed, m.PublishFailed, m.UnreadCacheHit)
	return m
}

func (m *Metrics) ObserveDispatched(typ string) {
	if m == nil {
		return
	}
	m.Dispatched.WithLabelValues(typ).Inc()
}

// ObserveSuppressed records a silent no-op; reason is "preference" or "duplicate".
func (m *Metrics) ObserveSuppressed(reason string) {
	if m == nil {
		return
	}
	m.Suppressed.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObservePublishFailure() {
	if m == nil {
		return
	}
	m.PublishFailed.Inc()
}

// ObserveUnreadCache records a cache lookup outcome, "hit" or "miss".
func (m *Metrics) ObserveUnreadCache(outcome string) {
	if m == nil {
		return
	}
	m.UnreadCacheHit.WithLabelValues(outcome).Inc()
}
