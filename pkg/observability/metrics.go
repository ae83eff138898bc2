// Package observability exposes Prometheus metrics for dispatches, table
// reloads and notifications.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/leonidyasin/tablebot/pkg/domain"
)

// Metrics collects dispatch counters and latency. Wire it into the engine
// through Hooks().
type Metrics struct {
	dispatches    *prometheus.CounterVec
	duration      prometheus.Histogram
	notifications prometheus.Counter
	reloads       prometheus.Counter
	tableRules    prometheus.Gauge
}

// NewMetrics creates and registers the metric set with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tablebot",
			Name:      "dispatches_total",
			Help:      "Dispatched events by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tablebot",
			Name:      "dispatch_duration_seconds",
			Help:      "Dispatch latency from event receipt to result.",
			Buckets:   prometheus.DefBuckets,
		}),
		notifications: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tablebot",
			Name:      "notifications_total",
			Help:      "Cross-chat notifications produced by effects.",
		}),
		reloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tablebot",
			Name:      "table_reloads_total",
			Help:      "Successful rule table reloads.",
		}),
		tableRules: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tablebot",
			Name:      "table_rules",
			Help:      "Rules in the active table snapshot.",
		}),
	}
	reg.MustRegister(m.dispatches, m.duration, m.notifications, m.reloads, m.tableRules)
	return m
}

// Hooks adapts the metric set to the engine's hook points.
func (m *Metrics) Hooks() domain.Hooks {
	return domain.Hooks{
		OnDispatch: func(_ context.Context, ev *domain.DispatchEvent) {
			m.dispatches.WithLabelValues(string(ev.Outcome)).Inc()
			m.duration.Observe(ev.Duration.Seconds())
		},
		OnNotification: func(context.Context, domain.Notification) {
			m.notifications.Inc()
		},
		OnReload: func(_ context.Context, rules int) {
			m.reloads.Inc()
			m.tableRules.Set(float64(rules))
		},
	}
}
