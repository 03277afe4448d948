package memory

import (
	"context"

	"github.com/moazalc/autostacks-app-sub000/internal/domain"
	"github.com/moazalc/autostacks-app-sub000/internal/usecase"
)

// BalanceRepository implements usecase.BalanceRepository.
type BalanceRepository struct {
	store *Store
}

// NewBalanceRepository creates a new BalanceRepository.
func NewBalanceRepository(store *Store) *BalanceRepository {
	return &BalanceRepository{store: store}
}

// CreateTx stages a new balance row.
func (r *BalanceRepository) CreateTx(ctx context.Context, tx usecase.Transaction, balance *domain.Balance) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}
	if err := mtx.lock(ctx, balanceLockKey(balance.AccountID)); err != nil {
		return err
	}
	b := *balance
	return mtx.stage(func() {
		mtx.balances[b.AccountID] = &b
	})
}

// Get returns the committed balance of an account.
func (r *BalanceRepository) Get(ctx context.Context, accountID string) (*domain.Balance, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	b, ok := r.store.balances[accountID]
	if !ok {
		return nil, domain.NewNotFoundError(domain.ResourceAccount, accountID)
	}
	c := *b
	return &c, nil
}

// GetForUpdate locks the balance row for the rest of tx, staging a zero row if none exists.
func (r *BalanceRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction, accountID string) (*domain.Balance, error) {
	mtx, err := asTx(tx)
	if err != nil {
		return nil, err
	}
	if err := mtx.lock(ctx, balanceLockKey(accountID)); err != nil {
		return nil, err
	}

	var out domain.Balance
	err = mtx.stage(func() {
		if staged, ok := mtx.balances[accountID]; ok {
			out = *staged
			return
		}

		r.store.mu.RLock()
		committed, ok := r.store.balances[accountID]
		r.store.mu.RUnlock()

		if ok {
			out = *committed
			return
		}

		zero := domain.ZeroBalance(accountID)
		mtx.balances[accountID] = zero
		out = *zero
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Update stages balance if the row version tx sees still equals expectedVersion.
func (r *BalanceRepository) Update(ctx context.Context, tx usecase.Transaction, balance *domain.Balance, expectedVersion int64) (*domain.Balance, error) {
	current, err := r.GetForUpdate(ctx, tx, balance.AccountID)
	if err != nil {
		return nil, err
	}
	if current.Version != expectedVersion {
		return nil, &domain.ConcurrencyConflictError{
			AccountID: balance.AccountID,
			Err:       domain.ErrBalanceVersionMismatch,
		}
	}

	mtx, _ := asTx(tx)
	written := *balance
	if err := mtx.stage(func() {
		b := written
		mtx.balances[b.AccountID] = &b
	}); err != nil {
		return nil, err
	}
	return &written, nil
}
