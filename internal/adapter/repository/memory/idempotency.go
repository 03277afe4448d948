package memory

import (
	"context"
	"sync"
	"time"
)

const processingMarker = "processing"

type idempotencyRecord struct {
	value     []byte
	expiresAt time.Time
}

// IdempotencyStore implements usecase.IdempotencyStore for single-process runs.
type IdempotencyStore struct {
	mu      sync.Mutex
	records map[string]idempotencyRecord
	now     func() time.Time
}

// NewIdempotencyStore creates an empty IdempotencyStore.
func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{
		records: make(map[string]idempotencyRecord),
		now:     time.Now,
	}
}

// CheckAndSet claims key unless a live record exists, in which case that record is returned.
func (s *IdempotencyStore) CheckAndSet(_ context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)
	if rec, ok := s.records[key]; ok {
		return true, append([]byte(nil), rec.value...), nil
	}

	value := response
	if value == nil {
		value = []byte(processingMarker)
	}
	s.records[key] = idempotencyRecord{value: append([]byte(nil), value...), expiresAt: now.Add(ttl)}
	return false, nil, nil
}

// Update replaces key with the final response.
func (s *IdempotencyStore) Update(_ context.Context, key string, response []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[key] = idempotencyRecord{value: append([]byte(nil), response...), expiresAt: s.now().Add(ttl)}
	return nil
}

// Release forgets key.
func (s *IdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, key)
	return nil
}

// sweep drops expired records. Callers hold mu.
func (s *IdempotencyStore) sweep(now time.Time) {
	for key, rec := range s.records {
		if !now.Before(rec.expiresAt) {
			delete(s.records, key)
		}
	}
}
