package lock

import (
	"context"
	"sync"
)

// LocalLocker serializes same-account work inside one process.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	sem  chan struct{}
	refs int
}

// NewLocalLocker creates an empty LocalLocker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*keyLock)}
}

// WithLock runs fn while holding the account's lock. Waiting honours ctx.
func (l *LocalLocker) WithLock(ctx context.Context, accountID string, fn func(context.Context) error) error {
	k := l.acquireRef(accountID)
	defer l.releaseRef(accountID, k)

	select {
	case k.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-k.sem }()

	return fn(ctx)
}

func (l *LocalLocker) acquireRef(key string) *keyLock {
	l.mu.Lock()
	defer l.mu.Unlock()

	k, ok := l.locks[key]
	if !ok {
		k = &keyLock{sem: make(chan struct{}, 1)}
		l.locks[key] = k
	}
	k.refs++
	return k
}

// releaseRef drops the entry once nobody holds or waits for it.
func (l *LocalLocker) releaseRef(key string, k *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	k.refs--
	if k.refs == 0 {
		delete(l.locks, key)
	}
}

// Len reports how many account locks are live. Used by tests.
func (l *LocalLocker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
