package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/MrEthical07/goGuard/session"
)

// RequireSession rejects API requests without a stored access token with 401
// and a JSON body naming the login path. It must run after Client.
func RequireSession(g *goGuard.Guard, opts ...Option) func(http.Handler) http.Handler {
	o := buildOptions(opts)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			store, ok := StoreFromContext(r.Context())
			if g == nil || !ok {
				writeRedirect(w, http.StatusUnauthorized, o.fallbackPath)
				return
			}

			sess, err := session.Load(r.Context(), store, g.Keys())
			if err != nil || !sess.Authenticated() {
				writeRedirect(w, http.StatusUnauthorized, o.resolvePath(g.Routes(), g.LoginFor(sess.Role)))
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RedirectBody is the JSON answer sent instead of a 302 to API clients.
type RedirectBody struct {
	Redirect string `json:"redirect"`
}

func writeRedirect(w http.ResponseWriter, status int, path string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(RedirectBody{Redirect: path})
}

// WriteRedirect answers an API client with status and a redirect path.
func WriteRedirect(w http.ResponseWriter, status int, path string) {
	writeRedirect(w, status, path)
}
