package middleware

import (
	"context"
	"net/http"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/MrEthical07/goGuard/routes"
	"github.com/MrEthical07/goGuard/session"
	"go.uber.org/zap"
)

type sessionContextKey struct{}

// SessionFromContext returns the session a proceeding navigation was decided on.
func SessionFromContext(ctx context.Context) (session.Session, bool) {
	sess, ok := ctx.Value(sessionContextKey{}).(session.Session)
	return sess, ok
}

// Navigation gates page requests through g.
//
// Paths missing from table pass through untouched. Proceed calls next with
// the session in the request context. Redirect and ForceLogout answer 302 to
// the path of the target route, or to the fallback path when the target has
// none.
func Navigation(g *goGuard.Guard, table *routes.Table, provider session.Provider, opts ...Option) func(http.Handler) http.Handler {
	o := buildOptions(opts)
	if table == nil {
		table = g.Routes()
	}
	if table == nil {
		table = routes.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			dest, ok := table.Match(r.URL.Path)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			r = o.withClient(w, r, provider)
			store, _ := StoreFromContext(r.Context())

			out := g.NavigateWith(r.Context(), store, dest)
			if out.Err != nil {
				o.logger.Warn("navigation completed with error",
					zap.String("path", r.URL.Path),
					zap.Stringer("kind", out.Decision.Kind),
					zap.Error(out.Err),
				)
			}

			if out.Proceed() {
				ctx := context.WithValue(r.Context(), sessionContextKey{}, out.Session)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			http.Redirect(w, r, o.resolvePath(table, out.Target), http.StatusFound)
		})
	}
}

func (o options) resolvePath(table *routes.Table, name string) string {
	if name == "" || table == nil {
		return o.fallbackPath
	}
	if p, ok := table.PathOf(name); ok && p != "" {
		return p
	}
	return o.fallbackPath
}

// RedirectPath resolves a route name to its path, or to the fallback path.
func RedirectPath(table *routes.Table, name string, opts ...Option) string {
	return buildOptions(opts).resolvePath(table, name)
}
