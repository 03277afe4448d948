package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moazalc/autostacks-app-sub000/internal/domain"
)

// BalanceMaintainer is the only writer of the balances table.
type BalanceMaintainer struct {
	balanceRepo BalanceRepository
	now         func() time.Time
}

// NewBalanceMaintainer creates a new BalanceMaintainer.
func NewBalanceMaintainer(balanceRepo BalanceRepository) *BalanceMaintainer {
	return &BalanceMaintainer{
		balanceRepo: balanceRepo,
		now:         utcNow,
	}
}

// utcNow matches the microsecond resolution Postgres stores, so a value
// read back compares equal to the one written.
func utcNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Apply adds signedDelta to the account's balance inside tx.
// The balance row stays locked until tx ends, so concurrent writers on the
// same account queue behind each other. A zero delta leaves the row untouched.
func (m *BalanceMaintainer) Apply(ctx context.Context, tx Transaction, accountID string, signedDelta decimal.Decimal) (*domain.Balance, error) {
	current, err := m.balanceRepo.GetForUpdate(ctx, tx, accountID)
	if err != nil {
		return nil, err
	}

	if signedDelta.IsZero() {
		return current, nil
	}

	next := &domain.Balance{
		AccountID: accountID,
		Amount:    current.Apply(signedDelta),
		Version:   current.Version + 1,
		UpdatedAt: m.now(),
	}

	return m.balanceRepo.Update(ctx, tx, next, current.Version)
}
