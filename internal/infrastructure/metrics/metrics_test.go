package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := New(registry)

	if m.Transactions == nil || m.Statements == nil || m.OutboxPublished == nil {
		t.Fatalf("expected key metrics to be initialized: %+v", m)
	}

	m.ObserveTransaction("d", "ok", 10*time.Millisecond)
	m.ObserveTransaction("d", "insufficient_funds", time.Millisecond)
	m.ObserveTransaction("d", "ok", time.Millisecond)
	m.ObserveStatement("not_found", time.Millisecond)

	if got := testutil.ToFloat64(m.Transactions.WithLabelValues("d", "ok")); got != 2 {
		t.Fatalf("expected 2 ok debits, got %v", got)
	}
	if got := testutil.ToFloat64(m.Transactions.WithLabelValues("d", "insufficient_funds")); got != 1 {
		t.Fatalf("expected 1 rejected debit, got %v", got)
	}
	if got := testutil.ToFloat64(m.Statements.WithLabelValues("not_found")); got != 1 {
		t.Fatalf("expected 1 not found statement, got %v", got)
	}

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}
}

func TestRegisterPoolStats(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.RegisterPoolStats(func() PoolStats {
		return PoolStats{Acquired: 3, Idle: 2, Max: 10}
	})

	count, err := testutil.GatherAndCount(registry,
		"creditledger_db_connections_acquired",
		"creditledger_db_connections_idle",
		"creditledger_db_connections_max",
	)
	if err != nil {
		t.Fatalf("failed to gather pool metrics: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 pool gauges, got %d", count)
	}
}
