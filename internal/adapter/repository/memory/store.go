// Package memory is a transactional in-process storage driver.
//
// Writes made through a Tx are staged and become visible to other readers
// only on Commit. Row locks are per-key semaphores held until the Tx ends,
// mirroring SELECT ... FOR UPDATE.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/moazalc/autostacks-app-sub000/internal/domain"
	"github.com/moazalc/autostacks-app-sub000/internal/usecase"
)

// ErrTxDone is returned when a finished transaction is used again.
var ErrTxDone = errors.New("memory: transaction already committed or rolled back")

// ErrForeignTx is returned when a repository receives a transaction from another driver.
var ErrForeignTx = errors.New("memory: transaction was not started by this store")

// Store holds committed state.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
	cars     map[string]*domain.Car
	entries  map[string]*domain.Entry
	balances map[string]*domain.Balance
	outbox   map[string]*domain.OutboxEvent

	lockMu sync.Mutex
	locks  map[string]chan struct{}
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[string]*domain.Account),
		cars:     make(map[string]*domain.Car),
		entries:  make(map[string]*domain.Entry),
		balances: make(map[string]*domain.Balance),
		outbox:   make(map[string]*domain.OutboxEvent),
		locks:    make(map[string]chan struct{}),
	}
}

func (s *Store) semaphore(key string) chan struct{} {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()

	ch, ok := s.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[key] = ch
	}
	return ch
}

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	store *Store
}

// NewTxManager creates a new TxManager.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Tx{
		store:    m.store,
		held:     make(map[string]chan struct{}),
		accounts: make(map[string]*domain.Account),
		entries:  make(map[string]*domain.Entry),
		deleted:  make(map[string]struct{}),
		balances: make(map[string]*domain.Balance),
	}, nil
}

// Tx stages writes until Commit.
type Tx struct {
	store *Store
	mu    sync.Mutex
	done  bool

	held     map[string]chan struct{}
	accounts map[string]*domain.Account
	entries  map[string]*domain.Entry
	deleted  map[string]struct{}
	balances map[string]*domain.Balance
	outbox   []*domain.OutboxEvent
}

// Commit publishes staged writes atomically and releases all row locks.
func (t *Tx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		return ErrTxDone
	}
	if err := ctx.Err(); err != nil {
		t.finish()
		return err
	}

	s := t.store
	s.mu.Lock()
	for id, a := range t.accounts {
		s.accounts[id] = a
	}
	for id := range t.deleted {
		delete(s.entries, id)
	}
	for id, e := range t.entries {
		s.entries[id] = e
	}
	for id, b := range t.balances {
		s.balances[id] = b
	}
	for _, ev := range t.outbox {
		s.outbox[ev.ID] = ev
	}
	s.mu.Unlock()

	t.finish()
	return nil
}

// Rollback discards staged writes. It is a no-op after Commit.
func (t *Tx) Rollback(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		return nil
	}
	t.finish()
	return nil
}

func (t *Tx) finish() {
	t.done = true
	for key, ch := range t.held {
		<-ch
		delete(t.held, key)
	}
}

// lock acquires the row lock for key, blocking until it is free or ctx ends.
// Locks are reentrant within one Tx.
func (t *Tx) lock(ctx context.Context, key string) error {
	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		return ErrTxDone
	}
	if _, ok := t.held[key]; ok {
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()

	ch := t.store.semaphore(key)
	select {
	case ch <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		<-ch
		return ErrTxDone
	}
	t.held[key] = ch
	return nil
}

// stage runs fn with the Tx write set locked.
func (t *Tx) stage(fn func()) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return ErrTxDone
	}
	fn()
	return nil
}

func asTx(tx usecase.Transaction) (*Tx, error) {
	mtx, ok := tx.(*Tx)
	if !ok || mtx == nil {
		return nil, ErrForeignTx
	}
	return mtx, nil
}

func entryLockKey(id string) string   { return "entry:" + id }
func balanceLockKey(id string) string { return "balance:" + id }
