package middleware

import (
	"net/http"

	"go.uber.org/zap"
)

// DefaultCookieName holds the per-browser client identifier.
const DefaultCookieName = "pg_client"

type options struct {
	cookieName   string
	cookieSecure bool
	fallbackPath string
	logger       *zap.Logger
}

// Option customizes the middleware in this package.
type Option func(*options)

func defaultOptions() options {
	return options{
		cookieName:   DefaultCookieName,
		fallbackPath: "/",
		logger:       zap.NewNop(),
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// WithCookieName overrides the client identifier cookie name.
func WithCookieName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.cookieName = name
		}
	}
}

// WithSecureCookie marks the client identifier cookie Secure.
func WithSecureCookie(secure bool) Option {
	return func(o *options) { o.cookieSecure = secure }
}

// WithFallbackPath sets the redirect used when a target route has no path.
func WithFallbackPath(path string) Option {
	return func(o *options) {
		if path != "" {
			o.fallbackPath = path
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func (o options) newCookie(id string) *http.Cookie {
	return &http.Cookie{
		Name:     o.cookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   o.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}
