// Package lock provides usecase.AccountLocker implementations.
package lock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	goredislib "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/moazalc/autostacks-app-sub000/internal/domain"
)

const accountLockPrefix = "lock:account:"

// Options tunes distributed lock acquisition.
type Options struct {
	Expiry     time.Duration
	Tries      int
	RetryDelay time.Duration
}

// DefaultOptions returns options sized for a single entry mutation.
func DefaultOptions() Options {
	return Options{
		Expiry:     10 * time.Second,
		Tries:      32,
		RetryDelay: 50 * time.Millisecond,
	}
}

// RedisLocker serializes same-account work across processes with a redsync mutex.
// The database row lock stays authoritative; this only keeps writers from
// piling up on it.
type RedisLocker struct {
	rs     *redsync.Redsync
	opts   Options
	logger zerolog.Logger
}

// NewRedisLocker creates a RedisLocker on client.
func NewRedisLocker(client goredislib.UniversalClient, opts Options, logger zerolog.Logger) *RedisLocker {
	return &RedisLocker{
		rs:     redsync.New(goredis.NewPool(client)),
		opts:   opts,
		logger: logger,
	}
}

// WithLock runs fn while holding the account's lock.
// Failing to acquire the lock in time is reported as a concurrency conflict.
func (l *RedisLocker) WithLock(ctx context.Context, accountID string, fn func(context.Context) error) error {
	key := accountLockPrefix + accountID

	mutex := l.rs.NewMutex(
		key,
		redsync.WithExpiry(l.opts.Expiry),
		redsync.WithTries(l.opts.Tries),
		redsync.WithRetryDelay(l.opts.RetryDelay),
	)

	if err := mutex.LockContext(ctx); err != nil {
		if isLockContention(err) {
			return &domain.ConcurrencyConflictError{
				AccountID: accountID,
				Err:       fmt.Errorf("account lock busy: %w", err),
			}
		}
		return fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}

	defer func() {
		// Unlock must run even if ctx was cancelled by the caller.
		if ok, err := mutex.UnlockContext(context.WithoutCancel(ctx)); !ok || err != nil {
			l.logger.Warn().Err(err).Str("lock", key).Bool("ok", ok).Msg("failed to release account lock")
		}
	}()

	return fn(ctx)
}

func isLockContention(err error) bool {
	if errors.Is(err, redsync.ErrFailed) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "lock already taken") || strings.Contains(msg, "failed to acquire lock")
}
