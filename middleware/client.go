package middleware

import (
	"context"
	"net/http"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/MrEthical07/goGuard/session"
	"github.com/google/uuid"
)

type clientContextKey struct{}

type clientInfo struct {
	id    string
	store session.Store
}

// StoreFromContext returns the credential store resolved for the request.
func StoreFromContext(ctx context.Context) (session.Store, bool) {
	info, ok := ctx.Value(clientContextKey{}).(clientInfo)
	if !ok || info.store == nil {
		return nil, false
	}
	return info.store, true
}

// ClientIDFromContext returns the browser client identifier of the request.
func ClientIDFromContext(ctx context.Context) (string, bool) {
	info, ok := ctx.Value(clientContextKey{}).(clientInfo)
	return info.id, ok && info.id != ""
}

// Client resolves the per-browser credential store. A browser without a valid
// client cookie is issued a new random identifier.
func Client(provider session.Provider, opts ...Option) func(http.Handler) http.Handler {
	o := buildOptions(opts)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r = o.withClient(w, r, provider)
			next.ServeHTTP(w, r)
		})
	}
}

func (o options) withClient(w http.ResponseWriter, r *http.Request, provider session.Provider) *http.Request {
	if _, ok := StoreFromContext(r.Context()); ok {
		return r
	}

	id := clientIDFromCookie(r, o.cookieName)
	if id == "" {
		id = uuid.NewString()
		http.SetCookie(w, o.newCookie(id))
	}

	info := clientInfo{id: id}
	if provider != nil {
		info.store = provider.For(id)
	}
	ctx := context.WithValue(r.Context(), clientContextKey{}, info)
	ctx = goGuard.WithClientID(ctx, id)
	return r.WithContext(ctx)
}

func clientIDFromCookie(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return ""
	}
	return c.Value
}
