package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func testCounter(t *testing.T) (*Counter, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewCounter(client), srv
}

func TestCounterRoundTrip(t *testing.T) {
	counter, _ := testCounter(t)
	ctx := context.Background()
	managerID := uuid.New()

	if _, ok := counter.Get(ctx, managerID); ok {
		t.Fatal("expected miss before Set")
	}

	counter.Set(ctx, managerID, 7)
	count, ok := counter.Get(ctx, managerID)
	if !ok || count != 7 {
		t.Fatalf("Get = (%d, %v), want (7, true)", count, ok)
	}
}

func TestCounterInvalidate(t *testing.T) {
	counter, _ := testCounter(t)
	ctx := context.Background()
	managerID := uuid.New()

	counter.Set(ctx, managerID, 3)
	counter.Invalidate(ctx, managerID)

	if _, ok := counter.Get(ctx, managerID); ok {
		t.Fatal("expected miss after Invalidate")
	}
}

func TestCounterEntriesExpire(t *testing.T) {
	counter, srv := testCounter(t)
	ctx := context.Background()
	managerID := uuid.New()

	counter.Set(ctx, managerID, 12)
	srv.FastForward(ttl + 1)

	if _, ok := counter.Get(ctx, managerID); ok {
		t.Fatal("expected miss after TTL")
	}
}

func TestNilCounterIsNoOp(t *testing.T) {
	var counter *Counter
	ctx := context.Background()
	managerID := uuid.New()

	counter.Set(ctx, managerID, 1)
	counter.Invalidate(ctx, managerID)
	if _, ok := counter.Get(ctx, managerID); ok {
		t.Fatal("nil counter should always miss")
	}
}

func TestCountersAreManagerScoped(t *testing.T) {
	counter, _ := testCounter(t)
	ctx := context.Background()
	first, second := uuid.New(), uuid.New()

	counter.Set(ctx, first, 4)
	counter.Set(ctx, second, 9)
	counter.Invalidate(ctx, first)

	if _, ok := counter.Get(ctx, first); ok {
		t.Fatal("expected miss for invalidated manager")
	}
	if count, ok := counter.Get(ctx, second); !ok || count != 9 {
		t.Fatalf("second manager count = (%d, %v), want (9, true)", count, ok)
	}
}
