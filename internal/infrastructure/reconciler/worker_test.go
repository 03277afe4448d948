package reconciler

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moazalc/autostacks-app-sub000/internal/usecase"
)

type stubReconciler struct {
	report *usecase.ReconciliationReport
	err    error
	calls  atomic.Int32
}

func (s *stubReconciler) ReconcileAll(context.Context) (*usecase.ReconciliationReport, error) {
	s.calls.Add(1)
	return s.report, s.err
}

func TestRunOnceLogsDrift(t *testing.T) {
	var buf bytes.Buffer
	r := &stubReconciler{report: &usecase.ReconciliationReport{
		TotalAccounts:      2,
		ReconciledAccounts: 1,
		LedgerConsistent:   true,
		Discrepancies: []*usecase.ReconciliationResult{{
			AccountID:         "acc-2",
			StoredBalance:     decimal.RequireFromString("90"),
			RecomputedBalance: decimal.RequireFromString("100"),
			Drift:             decimal.RequireFromString("-10"),
		}},
	}}
	w := NewWorker(r, time.Minute, zerolog.New(&buf))

	report := w.RunOnce(context.Background())
	require.NotNil(t, report)

	out := buf.String()
	assert.Contains(t, out, `"account_id":"acc-2"`)
	assert.Contains(t, out, `"drift":"-10"`)
	assert.Equal(t, 2, strings.Count(out, `"level":"warn"`))
}

func TestRunOnceLogsError(t *testing.T) {
	var buf bytes.Buffer
	w := NewWorker(&stubReconciler{err: errors.New("db down")}, time.Minute, zerolog.New(&buf))

	assert.Nil(t, w.RunOnce(context.Background()))
	assert.Contains(t, buf.String(), "reconciliation failed")
}

func TestStartRunsOnIntervalUntilCancelled(t *testing.T) {
	r := &stubReconciler{report: &usecase.ReconciliationReport{LedgerConsistent: true}}
	w := NewWorker(r, 5*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	require.Eventually(t, func() bool { return r.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
