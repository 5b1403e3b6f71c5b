package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newLimiterTest(t *testing.T, cfg Config) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return New(rdb, cfg), mr
}

func TestAllowWithinBudget(t *testing.T) {
	l, _ := newLimiterTest(t, Config{MaxAttempts: 3, Window: time.Minute})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := l.Allow(ctx, "c1", ""); err != nil {
			t.Fatalf("attempt %d: %v", i+1, err)
		}
	}
	if err := l.Allow(ctx, "c1", ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if err := l.Allow(ctx, "c2", ""); err != nil {
		t.Fatalf("other client must not be limited: %v", err)
	}
}

func TestAllowWindowExpires(t *testing.T) {
	l, mr := newLimiterTest(t, Config{MaxAttempts: 1, Window: time.Minute})
	ctx := context.Background()

	if err := l.Allow(ctx, "c1", ""); err != nil {
		t.Fatalf("first attempt: %v", err)
	}
	if ttl := mr.TTL("gg:rl:client:c1"); ttl != time.Minute {
		t.Fatalf("expected 1m ttl, got %s", ttl)
	}
	if err := l.Allow(ctx, "c1", ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}

	mr.FastForward(time.Minute + time.Second)
	if err := l.Allow(ctx, "c1", ""); err != nil {
		t.Fatalf("window should have reset: %v", err)
	}
}

func TestAllowIPThrottle(t *testing.T) {
	l, _ := newLimiterTest(t, Config{Prefix: "pg:", MaxAttempts: 2, EnableIPThrottle: true})
	ctx := context.Background()

	_ = l.Allow(ctx, "a", "10.0.0.1")
	_ = l.Allow(ctx, "b", "10.0.0.1")
	if err := l.Allow(ctx, "c", "10.0.0.1"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ip limit, got %v", err)
	}
}

func TestResetAndAttempts(t *testing.T) {
	l, _ := newLimiterTest(t, Config{MaxAttempts: 5})
	ctx := context.Background()

	_ = l.Allow(ctx, "c1", "")
	_ = l.Allow(ctx, "c1", "")
	n, err := l.Attempts(ctx, "c1")
	if err != nil || n != 2 {
		t.Fatalf("attempts = %d, %v", n, err)
	}
	if err := l.Reset(ctx, "c1", ""); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if n, _ := l.Attempts(ctx, "c1"); n != 0 {
		t.Fatalf("expected 0 after reset, got %d", n)
	}
}

func TestDisabledLimiterNeverBlocks(t *testing.T) {
	l, _ := newLimiterTest(t, Config{MaxAttempts: 0})
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		if err := l.Allow(ctx, "c1", ""); err != nil {
			t.Fatalf("disabled limiter returned %v", err)
		}
	}

	var nilLimiter *Limiter
	if err := nilLimiter.Allow(ctx, "c1", ""); err != nil {
		t.Fatalf("nil limiter returned %v", err)
	}
}

func TestAllowRedisUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	addr := mr.Addr()
	mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: addr, MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	defer rdb.Close()

	l := New(rdb, Config{MaxAttempts: 1})
	if err := l.Allow(context.Background(), "c1", ""); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
}
