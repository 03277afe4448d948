package redis

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/moazalc/autostacks-app-sub000/internal/usecase"
)

const accountExistsKeyPrefix = "account:exists:"

// CachedAccountRepository is a read-through cache over Exists.
// Only positive answers are cached: accounts are never deleted, so a cached
// hit cannot go stale, while a miss is always asked of the store again.
// Cache failures fall through to the wrapped repository.
type CachedAccountRepository struct {
	usecase.AccountRepository

	cache  usecase.Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedAccountRepository wraps repo with cache.
func NewCachedAccountRepository(repo usecase.AccountRepository, cache usecase.Cache, ttl time.Duration, logger zerolog.Logger) *CachedAccountRepository {
	return &CachedAccountRepository{
		AccountRepository: repo,
		cache:             cache,
		ttl:               ttl,
		logger:            logger,
	}
}

// Exists answers from the cache when it can.
func (r *CachedAccountRepository) Exists(ctx context.Context, id string) (bool, error) {
	key := accountExistsKeyPrefix + id

	_, err := r.cache.Get(ctx, key)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		r.logger.Warn().Err(err).Str("account_id", id).Msg("account cache read failed")
	}

	exists, err := r.AccountRepository.Exists(ctx, id)
	if err != nil || !exists {
		return exists, err
	}

	if err := r.cache.Set(ctx, key, []byte("1"), r.ttl); err != nil {
		r.logger.Warn().Err(err).Str("account_id", id).Msg("account cache write failed")
	}

	return true, nil
}
