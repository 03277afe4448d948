package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/moazalc/autostacks-app-sub000/internal/domain"
	"github.com/moazalc/autostacks-app-sub000/internal/infrastructure/postgres/generated"
	"github.com/moazalc/autostacks-app-sub000/internal/usecase"
)

// BalanceRepository implements usecase.BalanceRepository over the balances table.
type BalanceRepository struct {
	queries *generated.Queries
}

// NewBalanceRepository creates a new BalanceRepository.
func NewBalanceRepository(db generated.DBTX) *BalanceRepository {
	return &BalanceRepository{queries: generated.New(db)}
}

// CreateTx inserts a balance row within a transaction.
func (r *BalanceRepository) CreateTx(ctx context.Context, tx usecase.Transaction, balance *domain.Balance) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	return queries.CreateBalance(ctx, generated.CreateBalanceParams{
		AccountID: balance.AccountID,
		Amount:    decimalToNumeric(balance.Amount),
		Version:   balance.Version,
		UpdatedAt: timeToPgTimestamptz(balance.UpdatedAt),
	})
}

// Get returns the committed balance row.
func (r *BalanceRepository) Get(ctx context.Context, accountID string) (*domain.Balance, error) {
	row, err := r.queries.GetBalance(ctx, accountID)
	if err != nil {
		return nil, notFound(err, domain.ResourceAccount, accountID)
	}

	return rowToBalance(row), nil
}

// GetForUpdate inserts a zero row if needed and locks it with SELECT ... FOR UPDATE.
func (r *BalanceRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction, accountID string) (*domain.Balance, error) {
	queries, err := txQueries(tx)
	if err != nil {
		return nil, err
	}

	if err := queries.EnsureBalance(ctx, generated.EnsureBalanceParams{
		AccountID: accountID,
		UpdatedAt: timeToPgTimestamptz(time.Now().UTC()),
	}); err != nil {
		return nil, err
	}

	row, err := queries.GetBalanceForUpdate(ctx, accountID)
	if err != nil {
		return nil, notFound(err, domain.ResourceAccount, accountID)
	}

	return rowToBalance(row), nil
}

// Update writes balance guarded by expectedVersion. No matching row is a conflict.
func (r *BalanceRepository) Update(ctx context.Context, tx usecase.Transaction, balance *domain.Balance, expectedVersion int64) (*domain.Balance, error) {
	queries, err := txQueries(tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.UpdateBalance(ctx, generated.UpdateBalanceParams{
		AccountID:       balance.AccountID,
		Amount:          decimalToNumeric(balance.Amount),
		Version:         balance.Version,
		UpdatedAt:       timeToPgTimestamptz(balance.UpdatedAt),
		ExpectedVersion: expectedVersion,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.ConcurrencyConflictError{
			AccountID: balance.AccountID,
			Err:       domain.ErrBalanceVersionMismatch,
		}
	}
	if err != nil {
		return nil, err
	}

	return rowToBalance(row), nil
}

func rowToBalance(row generated.Balance) *domain.Balance {
	return &domain.Balance{
		AccountID: row.AccountID,
		Amount:    numericToDecimal(row.Amount),
		Version:   row.Version,
		UpdatedAt: row.UpdatedAt.Time,
	}
}
