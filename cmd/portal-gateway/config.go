package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the gateway configuration.
type Config struct {
	Environment   string
	Server        ServerConfig
	Remote        RemoteConfig
	Store         StoreConfig
	Guard         GuardConfig
	RateLimit     RateLimitConfig
	Observability ObservabilityConfig
	CORS          CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	SecureCookie    bool
}

// RemoteConfig points at the portal API.
type RemoteConfig struct {
	BaseURL string
	Timeout time.Duration
}

// StoreConfig selects the credential store backend.
type StoreConfig struct {
	Driver        string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Prefix        string
	TTL           time.Duration
	Sliding       bool
}

// GuardConfig holds guard behavior toggles.
type GuardConfig struct {
	RoutesFile       string
	AwaitRemote      bool
	CheckTokenExpiry bool
	// TokenSecret, when set, verifies HS256 token signatures on every
	// protected navigation instead of only reading the exp claim.
	TokenSecret   string
	TokenIssuer   string
	TokenAudience string
	TokenLeeway   time.Duration
}

// RateLimitConfig throttles POST /session. It needs the redis driver.
type RateLimitConfig struct {
	MaxAttempts int
	Window      time.Duration
	PerIP       bool
}

// ObservabilityConfig holds logging and metrics settings.
type ObservabilityConfig struct {
	LogLevel       string
	LogFormat      string
	MetricsEnabled bool
	AuditLog       bool
}

// CORSConfig holds the allowed browser origins.
type CORSConfig struct {
	AllowedOrigins []string
}

const (
	storeDriverMemory = "memory"
	storeDriverRedis  = "redis"
)

// LoadConfig reads the configuration from the environment. A .env file in the
// working directory is loaded first when present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")
	return configFromEnv()
}

func configFromEnv() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Addr:            getEnv("GATEWAY_ADDR", ":8080"),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			RequestTimeout:  getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 20*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			SecureCookie:    getEnvAsBool("SECURE_COOKIE", false),
		},
		Remote: RemoteConfig{
			BaseURL: getEnv("REMOTE_BASE_URL", "https://schedule.use-api-services.com/api"),
			Timeout: getEnvAsDuration("REMOTE_TIMEOUT", 10*time.Second),
		},
		Store: StoreConfig{
			Driver:        strings.ToLower(getEnv("STORE_DRIVER", storeDriverMemory)),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvAsInt("REDIS_DB", 0),
			Prefix:        getEnv("SESSION_PREFIX", "pg"),
			TTL:           getEnvAsDuration("SESSION_TTL", 0),
			Sliding:       getEnvAsBool("SESSION_SLIDING", false),
		},
		Guard: GuardConfig{
			RoutesFile:       getEnv("ROUTES_FILE", ""),
			AwaitRemote:      getEnvAsBool("AWAIT_REMOTE_LOGOUT", false),
			CheckTokenExpiry: getEnvAsBool("CHECK_TOKEN_EXPIRY", false),
			TokenSecret:      getEnv("JWT_SECRET", ""),
			TokenIssuer:      getEnv("JWT_ISSUER", ""),
			TokenAudience:    getEnv("JWT_AUDIENCE", ""),
			TokenLeeway:      getEnvAsDuration("JWT_LEEWAY", 30*time.Second),
		},
		RateLimit: RateLimitConfig{
			MaxAttempts: getEnvAsInt("SESSION_RATE_LIMIT", 0),
			Window:      getEnvAsDuration("SESSION_RATE_WINDOW", time.Minute),
			PerIP:       getEnvAsBool("SESSION_RATE_PER_IP", false),
		},
		Observability: ObservabilityConfig{
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			LogFormat:      getEnv("LOG_FORMAT", "json"),
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			AuditLog:       getEnvAsBool("AUDIT_LOG", true),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ORIGINS", []string{"http://localhost:*"}),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for startup errors.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("gateway address is required")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be > 0")
	}
	if c.Remote.BaseURL == "" {
		return fmt.Errorf("remote base url is required")
	}
	if c.Remote.Timeout <= 0 {
		return fmt.Errorf("remote timeout must be > 0")
	}

	switch c.Store.Driver {
	case storeDriverMemory:
		if c.IsProduction() {
			return fmt.Errorf("memory store driver is not allowed in production")
		}
	case storeDriverRedis:
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("redis address is required for the redis store driver")
		}
		if c.Store.RedisDB < 0 {
			return fmt.Errorf("redis db must be >= 0")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Store.TTL < 0 {
		return fmt.Errorf("session ttl must be >= 0")
	}

	if c.Guard.TokenSecret != "" && len(c.Guard.TokenSecret) < 32 {
		return fmt.Errorf("jwt secret must be at least 32 bytes")
	}
	if c.Guard.TokenLeeway < 0 || c.Guard.TokenLeeway > 2*time.Minute {
		return fmt.Errorf("jwt leeway must be between 0 and 2m")
	}

	if c.RateLimit.MaxAttempts > 0 {
		if c.Store.Driver != storeDriverRedis {
			return fmt.Errorf("session rate limit requires the redis store driver")
		}
		if c.RateLimit.Window <= 0 {
			return fmt.Errorf("session rate window must be > 0")
		}
	}

	switch c.Observability.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format %q", c.Observability.LogFormat)
	}
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
