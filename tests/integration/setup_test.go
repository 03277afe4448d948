package integration

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/moazalc/autostacks-app-sub000/internal/adapter/repository/postgres"
	"github.com/moazalc/autostacks-app-sub000/internal/usecase"
	"github.com/moazalc/autostacks-app-sub000/tests/testutil"
)

// engine is the use case layer over a real database.
type engine struct {
	db         *testutil.TestDB
	accounts   *usecase.AccountUseCase
	entries    *usecase.EntryUseCase
	ledger     *usecase.LedgerUseCase
	reconciler *usecase.ReconciliationUseCase
	outbox     usecase.OutboxRepository
}

func newEngine(t *testing.T, opts ...usecase.EntryOption) *engine {
	t.Helper()

	db := testutil.NewTestDB(t)
	pool := db.Pool

	txManager := postgres.NewTxManager(pool)
	accountRepo := postgres.NewAccountRepository(pool)
	entryRepo := postgres.NewEntryRepository(pool)
	balanceRepo := postgres.NewBalanceRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)
	idGen := postgres.NewULIDGenerator()

	opts = append([]usecase.EntryOption{usecase.WithRetrier(postgres.NewRetrier(postgres.WithMaxRetries(10)))}, opts...)

	return &engine{
		db:       db,
		accounts: usecase.NewAccountUseCase(txManager, accountRepo, balanceRepo, outboxRepo, idGen),
		entries: usecase.NewEntryUseCase(
			txManager,
			entryRepo,
			accountRepo,
			postgres.NewCarRepository(pool),
			outboxRepo,
			usecase.NewBalanceMaintainer(balanceRepo),
			idGen,
			opts...,
		),
		ledger:     usecase.NewLedgerUseCase(accountRepo, entryRepo),
		reconciler: usecase.NewReconciliationUseCase(accountRepo, postgres.NewLedgerRepository(pool), nil, zerolog.Nop()),
		outbox:     outboxRepo,
	}
}
