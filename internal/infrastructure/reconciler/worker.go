// Package reconciler periodically compares stored balances with their entries.
package reconciler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/moazalc/autostacks-app-sub000/internal/usecase"
)

// Reconciler runs a full reconciliation pass.
type Reconciler interface {
	ReconcileAll(ctx context.Context) (*usecase.ReconciliationReport, error)
}

// Worker runs Reconciler on a fixed interval. It reports drift but never
// repairs a balance.
type Worker struct {
	reconciler Reconciler
	interval   time.Duration
	logger     zerolog.Logger
}

// NewWorker creates a worker. interval must be positive.
func NewWorker(r Reconciler, interval time.Duration, logger zerolog.Logger) *Worker {
	return &Worker{
		reconciler: r,
		interval:   interval,
		logger:     logger.With().Str("component", "reconciler").Logger(),
	}
}

// Start runs until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info().Dur("interval", w.interval).Msg("reconciliation worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("reconciliation worker shutting down")
			return ctx.Err()
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce performs one pass and logs its outcome.
func (w *Worker) RunOnce(ctx context.Context) *usecase.ReconciliationReport {
	report, err := w.reconciler.ReconcileAll(ctx)
	if err != nil {
		w.logger.Error().Err(err).Msg("reconciliation failed")
		return nil
	}

	for _, d := range report.Discrepancies {
		w.logger.Warn().
			Str("account_id", d.AccountID).
			Str("stored", d.StoredBalance.String()).
			Str("recomputed", d.RecomputedBalance.String()).
			Str("drift", d.Drift.String()).
			Msg("balance drift detected")
	}

	event := w.logger.Info()
	if len(report.Discrepancies) > 0 || !report.LedgerConsistent {
		event = w.logger.Warn()
	}
	event.
		Int("accounts", report.TotalAccounts).
		Int("reconciled", report.ReconciledAccounts).
		Int("discrepancies", len(report.Discrepancies)).
		Bool("ledger_consistent", report.LedgerConsistent).
		Msg("reconciliation pass complete")

	return report
}
