package memory

import (
	"context"
	"sort"

	"github.com/moazalc/autostacks-app-sub000/internal/domain"
	"github.com/moazalc/autostacks-app-sub000/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	store *Store
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

// CreateTx stages a new account.
func (r *AccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}
	a := *account
	return mtx.stage(func() {
		mtx.accounts[a.ID] = &a
	})
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	a, ok := r.store.accounts[id]
	if !ok {
		return nil, domain.NewNotFoundError(domain.ResourceAccount, id)
	}
	c := *a
	return &c, nil
}

// Exists reports whether an account has been committed.
func (r *AccountRepository) Exists(ctx context.Context, id string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	_, ok := r.store.accounts[id]
	return ok, nil
}

// List lists accounts ordered by creation time.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	r.store.mu.RLock()
	accounts := make([]*domain.Account, 0, len(r.store.accounts))
	for _, a := range r.store.accounts {
		c := *a
		accounts = append(accounts, &c)
	}
	r.store.mu.RUnlock()

	sort.Slice(accounts, func(i, j int) bool {
		if !accounts[i].CreatedAt.Equal(accounts[j].CreatedAt) {
			return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
		}
		return accounts[i].ID < accounts[j].ID
	})

	if offset >= len(accounts) {
		return []*domain.Account{}, nil
	}
	accounts = accounts[offset:]
	if limit > 0 && limit < len(accounts) {
		accounts = accounts[:limit]
	}
	return accounts, nil
}

// CarRepository implements usecase.CarRepository.
type CarRepository struct {
	store *Store
}

// NewCarRepository creates a new CarRepository.
func NewCarRepository(store *Store) *CarRepository {
	return &CarRepository{store: store}
}

// Add registers a car. Car management is outside the engine; this exists for seeding.
func (r *CarRepository) Add(car *domain.Car) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c := *car
	r.store.cars[c.ID] = &c
}

// GetByID retrieves a car by ID.
func (r *CarRepository) GetByID(ctx context.Context, id string) (*domain.Car, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	c, ok := r.store.cars[id]
	if !ok {
		return nil, domain.NewNotFoundError(domain.ResourceCar, id)
	}
	out := *c
	return &out, nil
}
