package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/MrEthical07/goGuard/internal/rate"
	"github.com/MrEthical07/goGuard/jwt"
	promexport "github.com/MrEthical07/goGuard/metrics/export/prometheus"
	"github.com/MrEthical07/goGuard/remote"
	"github.com/MrEthical07/goGuard/routes"
	"github.com/MrEthical07/goGuard/session"
)

// app holds the gateway dependencies shared by handlers.
type app struct {
	cfg        *Config
	logger     *zap.Logger
	guard      *goGuard.Guard
	table      *routes.Table
	provider   session.Provider
	remote     *remote.Client
	limiter    *rate.Limiter
	validate   *validator.Validate
	translator ut.Translator
	metrics    http.Handler
}

// newApp wires the gateway. The returned cleanup closes the guard and the
// Redis client; it is safe to call once.
func newApp(cfg *Config, logger *zap.Logger) (*app, func(), error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &app{cfg: cfg, logger: logger}
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	client, err := remote.NewClient(remote.Config{
		BaseURL: cfg.Remote.BaseURL,
		Timeout: cfg.Remote.Timeout,
	})
	if err != nil {
		return nil, cleanup, err
	}
	a.remote = client

	a.table = routes.Default()
	if cfg.Guard.RoutesFile != "" {
		if a.table, err = routes.LoadTOML(cfg.Guard.RoutesFile); err != nil {
			return nil, cleanup, fmt.Errorf("load routes: %w", err)
		}
	}

	switch cfg.Store.Driver {
	case storeDriverRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
		})
		closers = append(closers, func() { _ = rdb.Close() })

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			return nil, cleanup, fmt.Errorf("redis ping: %w", err)
		}

		a.provider = session.NewRedisProvider(rdb, cfg.Store.Prefix, cfg.Store.TTL, cfg.Store.Sliding)
		if cfg.RateLimit.MaxAttempts > 0 {
			a.limiter = rate.New(rdb, rate.Config{
				Prefix:           cfg.Store.Prefix,
				EnableIPThrottle: cfg.RateLimit.PerIP,
				MaxAttempts:      cfg.RateLimit.MaxAttempts,
				Window:           cfg.RateLimit.Window,
			})
		}
	default:
		a.provider = session.NewMemoryProvider()
	}

	gcfg := goGuard.DefaultConfig()
	gcfg.Logout.RemoteTimeout = cfg.Remote.Timeout
	gcfg.Logout.AwaitRemote = cfg.Guard.AwaitRemote
	gcfg.Session.CheckTokenExpiry = cfg.Guard.CheckTokenExpiry
	gcfg.Audit.Enabled = cfg.Observability.AuditLog
	gcfg.Metrics.Enabled = cfg.Observability.MetricsEnabled
	gcfg.Metrics.EnableLatencyHistograms = cfg.Observability.MetricsEnabled

	b := goGuard.New().
		WithConfig(gcfg).
		WithRemote(client).
		WithRoutes(a.table).
		WithLogger(logger).
		WithAuditSink(goGuard.NewZapSink(logger))
	if cfg.Guard.TokenSecret != "" {
		verifier, err := jwt.NewManager(jwt.Config{
			SigningMethod: jwt.MethodHS256,
			PrivateKey:    []byte(cfg.Guard.TokenSecret),
			Issuer:        cfg.Guard.TokenIssuer,
			Audience:      cfg.Guard.TokenAudience,
			Leeway:        cfg.Guard.TokenLeeway,
		})
		if err != nil {
			return nil, cleanup, fmt.Errorf("token verifier: %w", err)
		}
		b = b.WithTokenValidator(verifier)
	}

	g, err := b.Build()
	if err != nil {
		return nil, cleanup, fmt.Errorf("build guard: %w", err)
	}
	a.guard = g
	closers = append(closers, g.Close)

	if cfg.Observability.MetricsEnabled {
		if a.metrics, err = promexport.Handler(g); err != nil {
			return nil, cleanup, fmt.Errorf("metrics handler: %w", err)
		}
	}

	a.validate, a.translator = newValidator()
	return a, cleanup, nil
}
