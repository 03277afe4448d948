package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/moazalc/autostacks-app-sub000/internal/domain"
)

// ErrInconsistentLedger is returned when the sum of stored balances differs
// from the signed sum of all entries.
var ErrInconsistentLedger = errors.New("ledger is inconsistent: balances do not match entries")

// Reconciliation outcomes reported to MetricsRecorder.
const (
	OutcomeReconciled = "reconciled"
	OutcomeDrift      = "drift"
	OutcomeError      = "error"
)

// ReconciliationUseCase compares stored balances against entry history.
// It reports drift and never corrects it.
type ReconciliationUseCase struct {
	accountRepo AccountRepository
	ledgerRepo  LedgerRepository
	recorder    MetricsRecorder
	logger      zerolog.Logger
}

// NewReconciliationUseCase creates a new reconciliation use case.
func NewReconciliationUseCase(
	accountRepo AccountRepository,
	ledgerRepo LedgerRepository,
	recorder MetricsRecorder,
	logger zerolog.Logger,
) *ReconciliationUseCase {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &ReconciliationUseCase{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		recorder:    recorder,
		logger:      logger,
	}
}

// ReconciliationResult represents the result of a reconciliation check.
type ReconciliationResult struct {
	AccountID         string
	StoredBalance     decimal.Decimal
	RecomputedBalance decimal.Decimal
	Drift             decimal.Decimal
	CheckedAt         time.Time
}

// IsReconciled reports whether the stored balance matches the entries.
func (r *ReconciliationResult) IsReconciled() bool {
	return r.Drift.IsZero()
}

// Reconcile compares one account's stored balance with the sum of its entries.
// On drift it returns the result together with a *domain.BalanceDriftError.
func (uc *ReconciliationUseCase) Reconcile(ctx context.Context, accountID string) (*ReconciliationResult, error) {
	exists, err := uc.accountRepo.Exists(ctx, accountID)
	if err != nil {
		uc.recorder.Reconciled(OutcomeError)
		return nil, domain.WrapStorage("check account", err)
	}
	if !exists {
		return nil, domain.NewNotFoundError(domain.ResourceAccount, accountID)
	}

	stored, recomputed, err := uc.ledgerRepo.ReconcileAccount(ctx, accountID)
	if err != nil {
		uc.recorder.Reconciled(OutcomeError)
		return nil, domain.WrapStorage("reconcile account", err)
	}

	result := &ReconciliationResult{
		AccountID:         accountID,
		StoredBalance:     stored,
		RecomputedBalance: recomputed,
		Drift:             stored.Sub(recomputed),
		CheckedAt:         time.Now().UTC(),
	}

	if result.IsReconciled() {
		uc.recorder.Reconciled(OutcomeReconciled)
		return result, nil
	}

	uc.recorder.Reconciled(OutcomeDrift)
	uc.recorder.BalanceDrift(accountID, result.Drift)
	uc.logger.Error().
		Str("account_id", accountID).
		Str("stored", stored.String()).
		Str("recomputed", recomputed.String()).
		Str("drift", result.Drift.String()).
		Msg("balance drift detected")

	return result, &domain.BalanceDriftError{
		AccountID:  accountID,
		Stored:     stored,
		Recomputed: recomputed,
		Drift:      result.Drift,
	}
}

// ReconciliationReport summarizes a reconciliation run over every account.
type ReconciliationReport struct {
	TotalAccounts      int
	ReconciledAccounts int
	Discrepancies      []*ReconciliationResult
	LedgerConsistent   bool
	CheckedAt          time.Time
}

// ReconcileAll reconciles every account page by page and checks ledger-wide consistency.
// Drift is collected into the report and does not stop the run.
func (uc *ReconciliationUseCase) ReconcileAll(ctx context.Context) (*ReconciliationReport, error) {
	report := &ReconciliationReport{
		Discrepancies: make([]*ReconciliationResult, 0),
	}

	for offset := 0; ; offset += reconcilePageSize {
		accounts, err := uc.accountRepo.List(ctx, reconcilePageSize, offset)
		if err != nil {
			return nil, domain.WrapStorage("list accounts", err)
		}

		for _, account := range accounts {
			result, err := uc.Reconcile(ctx, account.ID)
			var driftErr *domain.BalanceDriftError
			switch {
			case err == nil:
				report.ReconciledAccounts++
			case errors.As(err, &driftErr):
				report.Discrepancies = append(report.Discrepancies, result)
			default:
				return nil, fmt.Errorf("failed to reconcile account %s: %w", account.ID, err)
			}
			report.TotalAccounts++
		}

		if len(accounts) < reconcilePageSize {
			break
		}
	}

	ledgerErr := uc.CheckLedgerConsistency(ctx)
	if ledgerErr != nil && !errors.Is(ledgerErr, ErrInconsistentLedger) {
		return nil, ledgerErr
	}

	report.LedgerConsistent = ledgerErr == nil
	report.CheckedAt = time.Now().UTC()

	return report, nil
}

// CheckLedgerConsistency verifies that the stored balances add up to the signed sum of all entries.
func (uc *ReconciliationUseCase) CheckLedgerConsistency(ctx context.Context) error {
	totalBalance, totalSigned, err := uc.ledgerRepo.CheckConsistency(ctx)
	if err != nil {
		return domain.WrapStorage("check consistency", err)
	}

	if !totalBalance.Equal(totalSigned) {
		uc.logger.Error().
			Str("total_balance", totalBalance.String()).
			Str("total_entries", totalSigned.String()).
			Msg("ledger inconsistency detected")
		return fmt.Errorf(
			"%w: balances=%s entries=%s difference=%s",
			ErrInconsistentLedger,
			totalBalance.String(),
			totalSigned.String(),
			totalBalance.Sub(totalSigned).String(),
		)
	}

	return nil
}
