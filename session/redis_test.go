package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrEthical07/goGuard/permission"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStoreTest(t *testing.T, ttl time.Duration, sliding bool) (*RedisStore, *miniredis.Miniredis, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(rdb, "gg:client-1", ttl, sliding)
	return store, mr, func() {
		rdb.Close()
		mr.Close()
	}
}

func TestRedisStoreSetGetRemove(t *testing.T) {
	store, mr, done := newRedisStoreTest(t, 0, false)
	defer done()
	ctx := context.Background()

	if err := store.SetMany(ctx, map[string]string{KeyAccessToken: "abc", KeyRole: "admin"}); err != nil {
		t.Fatalf("SetMany failed: %v", err)
	}
	if got := mr.HGet("gg:client-1", KeyAccessToken); got != "abc" {
		t.Fatalf("expected token in hash, got %q", got)
	}

	v, ok, err := store.Get(ctx, KeyRole)
	if err != nil || !ok || v != "admin" {
		t.Fatalf("Get role = %q,%v,%v", v, ok, err)
	}

	values, err := store.GetMany(ctx, KeyAccessToken, KeyRole, KeyName)
	if err != nil {
		t.Fatalf("GetMany failed: %v", err)
	}
	if len(values) != 2 || values[KeyAccessToken] != "abc" || values[KeyRole] != "admin" {
		t.Fatalf("unexpected GetMany result: %v", values)
	}

	if err := store.Remove(ctx, KeyAccessToken, KeyRole, KeyName); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, ok, _ := store.Get(ctx, KeyAccessToken); ok {
		t.Fatal("expected token removed")
	}
	if mr.Exists("gg:client-1") {
		t.Fatal("expected empty hash to disappear")
	}
}

func TestRedisStoreRemoveIdempotent(t *testing.T) {
	store, _, done := newRedisStoreTest(t, 0, false)
	defer done()
	ctx := context.Background()

	if err := store.Remove(ctx, KeyAccessToken); err != nil {
		t.Fatalf("first remove: %v", err)
	}
	if err := store.Remove(ctx, KeyAccessToken); err != nil {
		t.Fatalf("second remove: %v", err)
	}
	if err := store.Remove(ctx); err != nil {
		t.Fatalf("empty remove: %v", err)
	}
}

func TestRedisStoreTTLAndSliding(t *testing.T) {
	store, mr, done := newRedisStoreTest(t, time.Minute, true)
	defer done()
	ctx := context.Background()

	if err := store.Set(ctx, KeyAccessToken, "abc"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if ttl := mr.TTL("gg:client-1"); ttl != time.Minute {
		t.Fatalf("expected ttl 1m after write, got %v", ttl)
	}

	mr.FastForward(40 * time.Second)
	if _, ok, err := store.Get(ctx, KeyAccessToken); err != nil || !ok {
		t.Fatalf("expected token before expiry, ok=%v err=%v", ok, err)
	}
	if ttl := mr.TTL("gg:client-1"); ttl != time.Minute {
		t.Fatalf("expected sliding read to refresh ttl, got %v", ttl)
	}

	mr.FastForward(2 * time.Minute)
	if _, ok, _ := store.Get(ctx, KeyAccessToken); ok {
		t.Fatal("expected hash to expire")
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	store, mr, done := newRedisStoreTest(t, 0, false)
	defer done()
	mr.Close()

	_, _, err := store.Get(context.Background(), KeyAccessToken)
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if err := store.Remove(context.Background(), KeyAccessToken); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable on remove, got %v", err)
	}
	if _, err := store.Take(context.Background(), KeyAccessToken); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable on take, got %v", err)
	}
}

func TestRedisStoreTake(t *testing.T) {
	store, mr, done := newRedisStoreTest(t, 0, false)
	defer done()
	ctx := context.Background()

	if err := store.SetMany(ctx, map[string]string{KeyAccessToken: "abc", KeyRole: "admin", KeyAdminData: "{}"}); err != nil {
		t.Fatalf("SetMany failed: %v", err)
	}

	values, err := store.Take(ctx, KeyAccessToken, KeyRole, KeyName)
	if err != nil {
		t.Fatalf("Take failed: %v", err)
	}
	if len(values) != 2 || values[KeyAccessToken] != "abc" || values[KeyRole] != "admin" {
		t.Fatalf("unexpected Take result: %v", values)
	}
	if mr.HGet("gg:client-1", KeyAccessToken) != "" || mr.HGet("gg:client-1", KeyRole) != "" {
		t.Fatal("taken fields must be deleted")
	}
	if mr.HGet("gg:client-1", KeyAdminData) != "{}" {
		t.Fatal("fields outside the take must be kept")
	}

	again, err := store.Take(ctx, KeyAccessToken, KeyRole)
	if err != nil || len(again) != 0 {
		t.Fatalf("second Take = %v,%v", again, err)
	}
}

func TestRedisProviderIsolatesClients(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	p := NewRedisProvider(rdb, "portal:", 0, false)
	ctx := context.Background()
	keys := DefaultKeys()

	if err := Save(ctx, p.For("a"), keys, Session{Token: "tok-a", Role: permission.RoleAdmin}, nil); err != nil {
		t.Fatalf("save a: %v", err)
	}

	sessB, err := Load(ctx, p.For("b"), keys)
	if err != nil {
		t.Fatalf("load b: %v", err)
	}
	if sessB.Authenticated() {
		t.Fatalf("client b must not see client a session: %+v", sessB)
	}
	if got := mr.HGet("portal:a", KeyAccessToken); got != "tok-a" {
		t.Fatalf("expected prefixed hash key, got %q", got)
	}
}
