package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moazalc/autostacks-app-sub000/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	CreateTx(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// CarRepository defines read access to cars. Car CRUD lives elsewhere.
type CarRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Car, error)
}

// EntryRepository defines data access for entries.
// List returns entries ordered by date, created_at, id.
type EntryRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.Entry) error
	GetByID(ctx context.Context, id string) (*domain.Entry, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Entry, error)
	Update(ctx context.Context, tx Transaction, entry *domain.Entry) error
	Delete(ctx context.Context, tx Transaction, id string) error
	List(ctx context.Context, filter domain.EntryFilter) ([]*domain.Entry, error)
	// SumBefore returns the signed total of the account's entries dated strictly before the given time.
	SumBefore(ctx context.Context, accountID string, before time.Time) (decimal.Decimal, error)
}

// BalanceRepository defines data access for the per-account balance row.
type BalanceRepository interface {
	CreateTx(ctx context.Context, tx Transaction, balance *domain.Balance) error
	Get(ctx context.Context, accountID string) (*domain.Balance, error)
	// GetForUpdate locks the account's balance row for the rest of tx,
	// inserting a zero row first if none exists.
	GetForUpdate(ctx context.Context, tx Transaction, accountID string) (*domain.Balance, error)
	// Update writes balance if its stored version still equals expectedVersion
	// and returns the row as written.
	Update(ctx context.Context, tx Transaction, balance *domain.Balance, expectedVersion int64) (*domain.Balance, error)
}

// LedgerRepository defines data access for ledger-wide operations.
type LedgerRepository interface {
	// CheckConsistency returns the sum of all stored balances and the signed sum of all entries.
	CheckConsistency(ctx context.Context) (totalBalance, totalSigned decimal.Decimal, err error)
	// ReconcileAccount reads the stored balance and the recomputed entry sum from one snapshot.
	ReconcileAccount(ctx context.Context, accountID string) (stored, recomputed decimal.Decimal, err error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error)
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier re-runs operation while it fails with a transient storage conflict.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// AccountLocker serializes work on one account across processes.
type AccountLocker interface {
	WithLock(ctx context.Context, accountID string, fn func(context.Context) error) error
}

// MetricsRecorder receives engine-level measurements.
type MetricsRecorder interface {
	EntryMutated(operation string)
	ConcurrencyConflict(operation string)
	BalanceDrift(accountID string, drift decimal.Decimal)
	Reconciled(outcome string)
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release forgets key so a failed request can be retried with it.
	Release(ctx context.Context, key string) error
}
