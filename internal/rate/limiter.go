package rate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds limiter tuning parameters.
type Config struct {
	Prefix           string
	EnableIPThrottle bool
	MaxAttempts      int
	Window           time.Duration
}

// Limiter counts attempts per client and, optionally, per IP.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a [Limiter] backed by the given Redis client. A non-positive
// MaxAttempts disables limiting.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	cfg.Prefix = strings.TrimSuffix(strings.TrimSpace(cfg.Prefix), ":")
	if cfg.Prefix == "" {
		cfg.Prefix = "gg"
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// Allow records one attempt for clientID and ip and reports ErrRateLimited
// when either counter exceeds the window budget.
func (l *Limiter) Allow(ctx context.Context, clientID, ip string) error {
	if l == nil || l.config.MaxAttempts <= 0 {
		return nil
	}

	if clientID != "" {
		if err := l.hit(ctx, l.clientKey(clientID)); err != nil {
			return err
		}
	}
	if l.config.EnableIPThrottle && ip != "" {
		if err := l.hit(ctx, l.ipKey(ip)); err != nil {
			return err
		}
	}
	return nil
}

// Reset clears the counters of clientID and ip.
func (l *Limiter) Reset(ctx context.Context, clientID, ip string) error {
	if l == nil {
		return nil
	}
	keys := make([]string, 0, 2)
	if clientID != "" {
		keys = append(keys, l.clientKey(clientID))
	}
	if l.config.EnableIPThrottle && ip != "" {
		keys = append(keys, l.ipKey(ip))
	}
	if len(keys) == 0 {
		return nil
	}

	if err := l.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Attempts returns the current counter of clientID. Missing keys count zero.
func (l *Limiter) Attempts(ctx context.Context, clientID string) (int, error) {
	count, err := l.redis.Get(ctx, l.clientKey(clientID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count < 0 {
		return 0, nil
	}
	return int(count), nil
}

func (l *Limiter) hit(ctx context.Context, key string) error {
	count, err := l.incrementWithTTL(ctx, key, l.config.Window)
	if err != nil {
		return err
	}
	if count > int64(l.config.MaxAttempts) {
		return ErrRateLimited
	}
	return nil
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// TTL is set on the first hit only, so the window never slides.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}

func (l *Limiter) clientKey(id string) string {
	return l.config.Prefix + ":rl:client:" + id
}

func (l *Limiter) ipKey(ip string) string {
	return l.config.Prefix + ":rl:ip:" + ip
}
