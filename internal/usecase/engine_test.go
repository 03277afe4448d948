package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/moazalc/autostacks-app-sub000/internal/adapter/repository/memory"
	"github.com/moazalc/autostacks-app-sub000/internal/domain"
	"github.com/moazalc/autostacks-app-sub000/internal/usecase"
)

// sequentialIDs yields sortable IDs so tie-break order is predictable.
type sequentialIDs struct {
	n atomic.Int64
}

func (g *sequentialIDs) Generate() string {
	return fmt.Sprintf("id-%08d", g.n.Add(1))
}

type countingRecorder struct {
	mu        sync.Mutex
	mutations map[string]int
	conflicts map[string]int
	drifts    map[string]decimal.Decimal
	outcomes  map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		mutations: map[string]int{},
		conflicts: map[string]int{},
		drifts:    map[string]decimal.Decimal{},
		outcomes:  map[string]int{},
	}
}

func (r *countingRecorder) EntryMutated(op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mutations[op]++
}

func (r *countingRecorder) ConcurrencyConflict(op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conflicts[op]++
}

func (r *countingRecorder) BalanceDrift(accountID string, drift decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drifts[accountID] = drift
}

func (r *countingRecorder) Reconciled(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes[outcome]++
}

type engine struct {
	store    *memory.Store
	cars     *memory.CarRepository
	outbox   *memory.OutboxRepository
	recorder *countingRecorder

	accounts       *usecase.AccountUseCase
	entries        *usecase.EntryUseCase
	ledger         *usecase.LedgerUseCase
	reconciliation *usecase.ReconciliationUseCase
}

func newEngine(t *testing.T, opts ...usecase.EntryOption) *engine {
	t.Helper()

	store := memory.NewStore()
	txm := memory.NewTxManager(store)
	accountRepo := memory.NewAccountRepository(store)
	entryRepo := memory.NewEntryRepository(store)
	balanceRepo := memory.NewBalanceRepository(store)
	carRepo := memory.NewCarRepository(store)
	outboxRepo := memory.NewOutboxRepository(store)
	ledgerRepo := memory.NewLedgerRepository(store)
	ids := &sequentialIDs{}
	recorder := newCountingRecorder()

	opts = append([]usecase.EntryOption{usecase.WithMetrics(recorder)}, opts...)

	return &engine{
		store:    store,
		cars:     carRepo,
		outbox:   outboxRepo,
		recorder: recorder,
		accounts: usecase.NewAccountUseCase(txm, accountRepo, balanceRepo, outboxRepo, ids),
		entries: usecase.NewEntryUseCase(
			txm, entryRepo, accountRepo, carRepo, outboxRepo,
			usecase.NewBalanceMaintainer(balanceRepo), ids, opts...,
		),
		ledger:         usecase.NewLedgerUseCase(accountRepo, entryRepo),
		reconciliation: usecase.NewReconciliationUseCase(accountRepo, ledgerRepo, recorder, zerolog.Nop()),
	}
}

func (e *engine) mustAccount(t *testing.T, name string) *domain.Account {
	t.Helper()
	acc, err := e.accounts.CreateAccount(context.Background(), usecase.CreateAccountInput{Name: name})
	require.NoError(t, err)
	return acc
}

func (e *engine) mustCreate(t *testing.T, accountID string, amount int64, typ domain.EntryType, date time.Time) *usecase.EntryResult {
	t.Helper()
	res, err := e.entries.CreateEntry(context.Background(), usecase.CreateEntryInput{
		AccountID: accountID,
		Amount:    decimal.NewFromInt(amount),
		Type:      typ,
		Date:      date,
	})
	require.NoError(t, err)
	return res
}

func (e *engine) balance(t *testing.T, accountID string) decimal.Decimal {
	t.Helper()
	b, err := e.accounts.GetBalance(context.Background(), accountID)
	require.NoError(t, err)
	return b.Amount
}

// requireReconciled asserts the stored balance equals the signed sum of entries.
func (e *engine) requireReconciled(t *testing.T, accountID string) {
	t.Helper()
	res, err := e.reconciliation.Reconcile(context.Background(), accountID)
	require.NoError(t, err)
	require.True(t, res.Drift.IsZero(), "drift %s on %s", res.Drift, accountID)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}
