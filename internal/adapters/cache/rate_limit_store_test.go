package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*RedisRateLimitStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisRateLimitStore(client), mr
}

func TestHitCountsWithinWindow(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		count, err := store.Hit(ctx, "signup:ip:10.0.0.1", time.Minute)
		if err != nil {
			t.Fatalf("hit failed: %v", err)
		}
		if count != want {
			t.Fatalf("expected count %d, got %d", want, count)
		}
	}

	// A different key counts independently.
	count, err := store.Hit(ctx, "signup:ip:10.0.0.2", time.Minute)
	if err != nil {
		t.Fatalf("hit failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected fresh key to count from 1, got %d", count)
	}
}

func TestWindowExpiryResetsCount(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Hit(ctx, "reset:email:user@example.com", time.Minute); err != nil {
		t.Fatalf("hit failed: %v", err)
	}
	if _, err := store.Hit(ctx, "reset:email:user@example.com", time.Minute); err != nil {
		t.Fatalf("hit failed: %v", err)
	}

	mr.FastForward(61 * time.Second)

	count, err := store.Hit(ctx, "reset:email:user@example.com", time.Minute)
	if err != nil {
		t.Fatalf("hit failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected count to reset after the window, got %d", count)
	}
}

func TestClearRemovesKey(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Hit(ctx, "signup:ip:10.0.0.1", time.Minute); err != nil {
		t.Fatalf("hit failed: %v", err)
	}
	if err := store.Clear(ctx, "signup:ip:10.0.0.1"); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	count, err := store.Hit(ctx, "signup:ip:10.0.0.1", time.Minute)
	if err != nil {
		t.Fatalf("hit failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected cleared key to count from 1, got %d", count)
	}
}
