// Package obs holds the Prometheus instrumentation of the session client.
package obs

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors. Each instance owns its collectors, so tests
// can build one per registry.
type Metrics struct {
	BackendCalls    *prometheus.CounterVec
	BackendDuration *prometheus.HistogramVec
	Transitions     *prometheus.CounterVec
	Discarded       *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg (skipped when
// reg is nil).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BackendCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "session_backend_calls_total",
				Help: "Identity backend calls by operation and outcome.",
			},
			[]string{"op", "outcome"},
		),
		BackendDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "session_backend_call_duration_seconds",
				Help:    "Identity backend call latencies in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "session_state_transitions_total",
				Help: "Published session states by triggering operation.",
			},
			[]string{"op", "state"},
		),
		Discarded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "session_stale_results_total",
				Help: "Results dropped because a newer login or logout committed first.",
			},
			[]string{"op"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.BackendCalls, m.BackendDuration, m.Transitions, m.Discarded)
	}
	return m
}

// ObserveCall records one backend call.
func (m *Metrics) ObserveCall(op, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.BackendCalls.WithLabelValues(op, outcome).Inc()
	m.BackendDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// ObserveTransition records one published session state.
func (m *Metrics) ObserveTransition(op, state string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(op, state).Inc()
}

// ObserveDiscard records one stale result.
func (m *Metrics) ObserveDiscard(op string) {
	if m == nil {
		return
	}
	m.Discarded.WithLabelValues(op).Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
