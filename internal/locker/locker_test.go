package locker_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/coldreach/outreach-backend/internal/locker"
)

func newTestLock(t *testing.T, key string) (*locker.CycleLock, *locker.CycleLock, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	a := locker.NewCycleLock(client, key, time.Minute)
	b := locker.NewCycleLock(client, key, time.Minute)
	return a, b, mr
}

func TestCycleLockMutualExclusion(t *testing.T) {
	ctx := context.Background()
	a, b, _ := newTestLock(t, "dispatch:cycle")

	ok, err := a.Acquire(ctx)
	if err != nil || !ok {
		t.Fatalf("first acquire failed: ok=%v err=%v", ok, err)
	}

	ok, err = b.Acquire(ctx)
	if err != nil {
		t.Fatalf("second acquire errored: %v", err)
	}
	if ok {
		t.Fatal("second acquire must fail while lock is held")
	}

	if err := a.Release(ctx); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	ok, err = b.Acquire(ctx)
	if err != nil || !ok {
		t.Fatalf("acquire after release failed: ok=%v err=%v", ok, err)
	}
}

func TestCycleLockReleaseOnlyOwnToken(t *testing.T) {
	ctx := context.Background()
	a, b, mr := newTestLock(t, "dispatch:cycle")

	if ok, _ := a.Acquire(ctx); !ok {
		t.Fatal("acquire failed")
	}

	// b never acquired; releasing must not free a's lock.
	if err := b.Release(ctx); err != nil {
		t.Fatalf("release of unheld lock errored: %v", err)
	}
	if !mr.Exists("dispatch:cycle") {
		t.Fatal("lock was deleted by a non-holder")
	}
}

func TestCycleLockExpiresWithTTL(t *testing.T) {
	ctx := context.Background()
	a, b, mr := newTestLock(t, "dispatch:cycle")

	if ok, _ := a.Acquire(ctx); !ok {
		t.Fatal("acquire failed")
	}

	// A crashed holder's lock frees itself after the TTL.
	mr.FastForward(2 * time.Minute)

	if ok, _ := b.Acquire(ctx); !ok {
		t.Fatal("acquire after TTL expiry must succeed")
	}
}
