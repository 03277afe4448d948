package memory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/moazalc/autostacks-app-sub000/internal/domain"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	store *Store
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(store *Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

// CheckConsistency returns the sum of all balances and the signed sum of all entries.
func (r *LedgerRepository) CheckConsistency(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	totalBalance := decimal.Zero
	for _, b := range r.store.balances {
		totalBalance = totalBalance.Add(b.Amount)
	}

	totalSigned := decimal.Zero
	for _, e := range r.store.entries {
		signed, err := e.Signed()
		if err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		totalSigned = totalSigned.Add(signed)
	}

	return totalBalance, totalSigned, nil
}

// ReconcileAccount reads the stored balance and recomputes it from entries under one read lock.
func (r *LedgerRepository) ReconcileAccount(ctx context.Context, accountID string) (decimal.Decimal, decimal.Decimal, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	stored := decimal.Zero
	if b, ok := r.store.balances[accountID]; ok {
		stored = b.Amount
	}

	recomputed := decimal.Zero
	for _, e := range r.store.entries {
		if e.AccountID != accountID {
			continue
		}
		signed, err := e.Signed()
		if err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		recomputed = recomputed.Add(signed)
	}

	return stored, recomputed, nil
}

// OverwriteBalance replaces a committed balance without touching entries or
// the row version, the way an out-of-band SQL fix would.
func (s *Store) OverwriteBalance(accountID string, amount decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := domain.ZeroBalance(accountID)
	if current, ok := s.balances[accountID]; ok {
		c := *current
		b = &c
	}
	b.Amount = amount
	s.balances[accountID] = b
}
