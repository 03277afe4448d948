package postgres

import (
	"context"

	"github.com/moazalc/autostacks-app-sub000/internal/domain"
	"github.com/moazalc/autostacks-app-sub000/internal/infrastructure/postgres/generated"
	"github.com/moazalc/autostacks-app-sub000/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	queries *generated.Queries
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db generated.DBTX) *AccountRepository {
	return &AccountRepository{queries: generated.New(db)}
}

// CreateTx creates a new account within a transaction.
func (r *AccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	_, err = queries.CreateAccount(ctx, generated.CreateAccountParams{
		ID:        account.ID,
		Name:      account.Name,
		CreatedAt: timeToPgTimestamptz(account.CreatedAt),
		UpdatedAt: timeToPgTimestamptz(account.UpdatedAt),
	})

	return err
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	row, err := r.queries.GetAccountByID(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ResourceAccount, id)
	}

	return rowToAccount(row), nil
}

// Exists reports whether the account exists.
func (r *AccountRepository) Exists(ctx context.Context, id string) (bool, error) {
	return r.queries.AccountExists(ctx, id)
}

// List lists accounts in creation order.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.queries.ListAccounts(ctx, generated.ListAccountsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToAccount(row))
	}

	return accounts, nil
}

func rowToAccount(row generated.Account) *domain.Account {
	return &domain.Account{
		ID:        row.ID,
		Name:      row.Name,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
}

// CarRepository implements usecase.CarRepository.
type CarRepository struct {
	queries *generated.Queries
}

// NewCarRepository creates a new CarRepository.
func NewCarRepository(db generated.DBTX) *CarRepository {
	return &CarRepository{queries: generated.New(db)}
}

// GetByID retrieves a car by ID.
func (r *CarRepository) GetByID(ctx context.Context, id string) (*domain.Car, error) {
	row, err := r.queries.GetCarByID(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ResourceCar, id)
	}

	return &domain.Car{
		ID:        row.ID,
		AccountID: row.AccountID,
		Name:      row.Name,
		CreatedAt: row.CreatedAt.Time,
	}, nil
}
