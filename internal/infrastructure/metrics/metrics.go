// Package metrics exposes the bot's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"rosterbot/internal/ports/output"
)

var _ output.Recorder = (*Metrics)(nil)

type Metrics struct {
	reactions  *prometheus.CounterVec
	suppressed prometheus.Counter
	threadSync *prometheus.CounterVec
	storeErrs  *prometheus.CounterVec
	pings      prometheus.Counter
	queueDepth prometheus.GaugeFunc
}

// New registers the collectors on reg. queueDepth may be nil.
func New(reg prometheus.Registerer, queueDepth func() float64) *Metrics {
	m := &Metrics{
		reactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rosterbot_reactions_total",
			Help: "RSVP reactions processed, by command and outcome.",
		}, []string{"command", "outcome"}),
		suppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rosterbot_suppressed_echoes_total",
			Help: "Reaction removal events recognised as the bot's own.",
		}),
		threadSync: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rosterbot_thread_sync_total",
			Help: "Thread membership changes, by action and result.",
		}, []string{"action", "result"}),
		storeErrs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rosterbot_store_errors_total",
			Help: "Failed persistent store operations.",
		}, []string{"op"}),
		pings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rosterbot_lineup_pings_total",
			Help: "Users pinged by lineup finalization.",
		}),
	}
	reg.MustRegister(m.reactions, m.suppressed, m.threadSync, m.storeErrs, m.pings)
	if queueDepth != nil {
		m.queueDepth = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "rosterbot_task_queue_depth",
			Help: "Background tasks waiting to run.",
		}, queueDepth)
		reg.MustRegister(m.queueDepth)
	}
	return m
}

func (m *Metrics) Reaction(command, outcome string) {
	m.reactions.WithLabelValues(command, outcome).Inc()
}

func (m *Metrics) SuppressedEcho() { m.suppressed.Inc() }

func (m *Metrics) ThreadSync(action, result string) {
	m.threadSync.WithLabelValues(action, result).Inc()
}

func (m *Metrics) StoreError(op string) { m.storeErrs.WithLabelValues(op).Inc() }

func (m *Metrics) LineupPings(n int) { m.pings.Add(float64(n)) }
