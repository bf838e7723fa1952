// Package metrics exposes Prometheus collectors for task execution.
//
// Metrics:
//   - clarity_executions_total: finished executions by kind, backend and outcome
//   - clarity_failovers_total: primary failures that triggered a fallback attempt
//   - clarity_attempt_duration_seconds: backend attempt latency
//   - clarity_cost_usd_total: estimated cost of successful executions
//   - clarity_tokens_total: estimated tokens of successful executions
//   - clarity_handles_created_total: backend handles constructed by the pool
//   - clarity_cache_lookup_failures_total: context lookups that failed during failover
//
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "clarity"

// Execution outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeDegraded = "degraded"
	OutcomeFailed   = "failed"
	OutcomeInvalid  = "invalid"
)

// InvalidKind labels executions rejected with an unrecognized task kind.
const InvalidKind = "invalid"

// Metrics holds the registered collectors.
type Metrics struct {
	executions    *prometheus.CounterVec
	failovers     *prometheus.CounterVec
	attempts      *prometheus.HistogramVec
	cost          *prometheus.CounterVec
	tokens        *prometheus.CounterVec
	handles       *prometheus.CounterVec
	cacheFailures prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		executions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "executions_total",
				Help:      "Total task executions by kind, backend used and outcome",
			},
			[]string{"kind", "backend", "outcome"},
		),
		failovers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "failovers_total",
				Help:      "Primary backend failures that triggered a fallback attempt",
			},
			[]string{"primary", "class"},
		),
		attempts: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "attempt_duration_seconds",
				Help:      "Backend attempt latency in seconds",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"backend", "result"},
		),
		cost: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "cost_usd_total",
				Help:      "Estimated cost in USD of successful executions",
			},
			[]string{"backend"},
		),
		tokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "tokens_total",
				Help:      "Estimated tokens consumed by successful executions",
			},
			[]string{"backend"},
		),
		handles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "handles_created_total",
				Help:      "Backend handles constructed by the client pool",
			},
			[]string{"backend"},
		),
		cacheFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "cache_lookup_failures_total",
				Help:      "Context cache lookups that failed during failover",
			},
		),
	}

	reg.MustRegister(
		m.executions,
		m.failovers,
		m.attempts,
		m.cost,
		m.tokens,
		m.handles,
		m.cacheFailures,
	)
	return m
}

// ObserveExecution counts a finished execution.
func (m *Metrics) ObserveExecution(kind, backend, outcome string) {
	if m == nil {
		return
	}
	m.executions.WithLabelValues(kind, backend, outcome).Inc()
}

// ObserveFailover counts a primary failure of the given class.
func (m *Metrics) ObserveFailover(primary, class string) {
	if m == nil {
		return
	}
	m.failovers.WithLabelValues(primary, class).Inc()
}

// ObserveAttempt records one backend attempt.
func (m *Metrics) ObserveAttempt(backend string, ok bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.attempts.WithLabelValues(backend, result).Observe(elapsed.Seconds())
}

// ObserveUsage adds billed usage for backend.
func (m *Metrics) ObserveUsage(backend string, tokens int, cost float64) {
	if m == nil {
		return
	}
	m.tokens.WithLabelValues(backend).Add(float64(tokens))
	m.cost.WithLabelValues(backend).Add(cost)
}

// HandleCreated counts a constructed backend handle.
func (m *Metrics) HandleCreated(backend string) {
	if m == nil {
		return
	}
	m.handles.WithLabelValues(backend).Inc()
}

// CacheLookupFailed counts a failed context lookup.
func (m *Metrics) CacheLookupFailed() {
	if m == nil {
		return
	}
	m.cacheFailures.Inc()
}
