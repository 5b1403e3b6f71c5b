package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps one client's credentials in a single Redis hash so every
// multi-key operation maps onto one atomic hash command.
type RedisStore struct {
	redis   *redis.Client
	key     string
	ttl     time.Duration
	sliding bool
}

// NewRedisStore returns a store backed by the hash at key. A positive ttl
// expires the hash after the last write; with sliding set, reads extend it too.
func NewRedisStore(rdb *redis.Client, key string, ttl time.Duration, sliding bool) *RedisStore {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStore{
		redis:   rdb,
		key:     key,
		ttl:     ttl,
		sliding: sliding && ttl > 0,
	}
}

// Key returns the Redis hash key this store writes to.
func (s *RedisStore) Key() string {
	return s.key
}

// Get reads a single field.
//
//	Performance: 1 Redis HGET (+1 EXPIRE when sliding).
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.redis.HGet(ctx, s.key, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err := s.touch(ctx); err != nil {
		return "", false, err
	}
	return v, true, nil
}

// GetMany reads several fields with one HMGET. Missing fields are omitted.
func (s *RedisStore) GetMany(ctx context.Context, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	values, err := s.redis.HMGet(ctx, s.key, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	collectFields(out, keys, values)
	if len(out) > 0 {
		if err := s.touch(ctx); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	return s.SetMany(ctx, map[string]string{key: value})
}

// SetMany writes all fields and refreshes the TTL inside one MULTI/EXEC.
//
//	Performance: 1 round-trip (HSET + optional EXPIRE, pipelined).
func (s *RedisStore) SetMany(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	args := make([]interface{}, 0, len(values)*2)
	for k, v := range values {
		args = append(args, k, v)
	}

	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.key, args...)
		if s.ttl > 0 {
			pipe.Expire(ctx, s.key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Remove deletes fields with one HDEL. Removing absent fields is not an error.
func (s *RedisStore) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.redis.HDel(ctx, s.key, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Take reads and deletes fields inside one MULTI/EXEC, so concurrent callers
// never both observe the same field.
//
//	Performance: 1 round-trip (HMGET + HDEL, transactional).
func (s *RedisStore) Take(ctx context.Context, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	var read *redis.SliceCmd
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		read = pipe.HMGet(ctx, s.key, keys...)
		pipe.HDel(ctx, s.key, keys...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	collectFields(out, keys, read.Val())
	return out, nil
}

func collectFields(out map[string]string, keys []string, values []interface{}) {
	for i, raw := range values {
		if raw == nil || i >= len(keys) {
			continue
		}
		switch v := raw.(type) {
		case string:
			out[keys[i]] = v
		case []byte:
			out[keys[i]] = string(v)
		}
	}
}

func (s *RedisStore) touch(ctx context.Context) error {
	if !s.sliding {
		return nil
	}
	if err := s.redis.Expire(ctx, s.key, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
