package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveExecution("chat", "claude-3-sonnet", OutcomeDegraded)
	m.ObserveExecution("chat", "claude-3-sonnet", OutcomeDegraded)
	m.ObserveFailover("claude-3-haiku", "timeout")
	m.ObserveUsage("claude-3-sonnet", 1000, 0.0066)
	m.ObserveAttempt("claude-3-haiku", false, 30*time.Second)
	m.HandleCreated("claude-3-haiku")
	m.CacheLookupFailed()

	if got := testutil.ToFloat64(m.executions.WithLabelValues("chat", "claude-3-sonnet", OutcomeDegraded)); got != 2 {
		t.Fatalf("expected 2 degraded executions, got %v", got)
	}
	if got := testutil.ToFloat64(m.failovers.WithLabelValues("claude-3-haiku", "timeout")); got != 1 {
		t.Fatalf("expected 1 failover, got %v", got)
	}
	if got := testutil.ToFloat64(m.tokens.WithLabelValues("claude-3-sonnet")); got != 1000 {
		t.Fatalf("expected 1000 tokens, got %v", got)
	}
	if got := testutil.ToFloat64(m.cacheFailures); got != 1 {
		t.Fatalf("expected 1 cache failure, got %v", got)
	}
	if got := testutil.CollectAndCount(m.attempts); got != 1 {
		t.Fatalf("expected 1 attempt series, got %d", got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveExecution("chat", "x", OutcomeSuccess)
	m.ObserveFailover("x", "timeout")
	m.ObserveAttempt("x", true, time.Second)
	m.ObserveUsage("x", 1, 1)
	m.HandleCreated("x")
	m.CacheLookupFailed()
}
