package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"

	"github.com/moazalc/autostacks-app-sub000/internal/usecase"
)

var _ usecase.MetricsRecorder = (*Metrics)(nil)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.EntryMutated(usecase.OpCreateEntry)

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}
}

func TestRecorderCounts(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.EntryMutated(usecase.OpCreateEntry)
	m.EntryMutated(usecase.OpCreateEntry)
	m.EntryMutated(usecase.OpDeleteEntry)
	m.ConcurrencyConflict(usecase.OpUpdateEntry)
	m.Reconciled(usecase.OutcomeDrift)
	m.BalanceDrift("acc-1", decimal.RequireFromString("-10.5"))
	m.EventPublished()
	m.EventFailed()

	if got := testutil.ToFloat64(m.EntryMutations.WithLabelValues(usecase.OpCreateEntry)); got != 2 {
		t.Fatalf("expected 2 creates, got %v", got)
	}
	if got := testutil.ToFloat64(m.EntryMutations.WithLabelValues(usecase.OpDeleteEntry)); got != 1 {
		t.Fatalf("expected 1 delete, got %v", got)
	}
	if got := testutil.ToFloat64(m.ConcurrencyConflicts.WithLabelValues(usecase.OpUpdateEntry)); got != 1 {
		t.Fatalf("expected 1 conflict, got %v", got)
	}
	if got := testutil.ToFloat64(m.Reconciliations.WithLabelValues(usecase.OutcomeDrift)); got != 1 {
		t.Fatalf("expected 1 drift outcome, got %v", got)
	}
	if got := testutil.ToFloat64(m.AccountDrift.WithLabelValues("acc-1")); got != -10.5 {
		t.Fatalf("expected drift gauge -10.5, got %v", got)
	}
	if got := testutil.ToFloat64(m.BalanceDrifts); got != 1 {
		t.Fatalf("expected 1 drift, got %v", got)
	}
	if testutil.ToFloat64(m.OutboxPublished) != 1 || testutil.ToFloat64(m.OutboxFailures) != 1 {
		t.Fatal("expected outbox counters to be 1")
	}
}

func TestNewTwiceOnSameRegistryPanics(t *testing.T) {
	registry := prometheus.NewRegistry()
	New(registry)

	defer func() {
		if recover() == nil {
			t.Fatal("expected duplicate registration to panic")
		}
	}()
	New(registry)
}
