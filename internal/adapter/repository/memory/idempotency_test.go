package memory

import (
	"context"
	"testing"
	"time"
)

func TestIdempotencyStore_ClaimUpdateRelease(t *testing.T) {
	store := NewIdempotencyStore()
	ctx := context.Background()

	exists, _, err := store.CheckAndSet(ctx, "k", nil, time.Minute)
	if err != nil || exists {
		t.Fatalf("first claim: exists=%v err=%v", exists, err)
	}

	exists, resp, _ := store.CheckAndSet(ctx, "k", nil, time.Minute)
	if !exists || string(resp) != processingMarker {
		t.Fatalf("second claim should see the marker, got exists=%v resp=%s", exists, resp)
	}

	_ = store.Update(ctx, "k", []byte("done"), time.Minute)
	_, resp, _ = store.CheckAndSet(ctx, "k", nil, time.Minute)
	if string(resp) != "done" {
		t.Fatalf("expected stored response, got %s", resp)
	}

	_ = store.Release(ctx, "k")
	exists, _, _ = store.CheckAndSet(ctx, "k", nil, time.Minute)
	if exists {
		t.Fatal("released key should be claimable")
	}
}

func TestIdempotencyStore_Expiry(t *testing.T) {
	store := NewIdempotencyStore()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	_, _, _ = store.CheckAndSet(ctx, "k", []byte("v"), time.Second)
	now = now.Add(2 * time.Second)

	exists, _, _ := store.CheckAndSet(ctx, "k", nil, time.Second)
	if exists {
		t.Fatal("expired key should be claimable")
	}
}

func TestIdempotencyStore_SweepsExpiredRecords(t *testing.T) {
	store := NewIdempotencyStore()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		_, _, _ = store.CheckAndSet(ctx, key, []byte("v"), time.Second)
	}
	_, _, _ = store.CheckAndSet(ctx, "long", []byte("v"), time.Hour)
	now = now.Add(2 * time.Second)

	_, _, _ = store.CheckAndSet(ctx, "fresh", nil, time.Second)

	if got := len(store.records); got != 2 {
		t.Fatalf("expected expired keys to be dropped, %d records left", got)
	}
	if _, ok := store.records["long"]; !ok {
		t.Fatal("unexpired record was swept")
	}
}
