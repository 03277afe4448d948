package postgres

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/moazalc/autostacks-app-sub000/internal/infrastructure/postgres/generated"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// CheckConsistency returns the sum of all balances and the signed sum of all entries.
func (r *LedgerRepository) CheckConsistency(ctx context.Context) (totalBalance decimal.Decimal, totalSigned decimal.Decimal, err error) {
	result, err := r.queries.CheckLedgerConsistency(ctx)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return numericToDecimal(result.TotalBalance), numericToDecimal(result.TotalSigned), nil
}

// ReconcileAccount reads both sides in a single statement, so they share one snapshot.
func (r *LedgerRepository) ReconcileAccount(ctx context.Context, accountID string) (stored decimal.Decimal, recomputed decimal.Decimal, err error) {
	result, err := r.queries.ReconcileAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return numericToDecimal(result.Stored), numericToDecimal(result.Recomputed), nil
}
