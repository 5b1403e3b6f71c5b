package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrEthical07/goGuard/middleware"
)

// newRouter configures all gateway routes and middleware.
func newRouter(a *app) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(a.cfg.Server.RequestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", a.healthz)
	if a.metrics != nil {
		r.Handle("/metrics", a.metrics)
	}

	opts := []middleware.Option{
		middleware.WithSecureCookie(a.cfg.Server.SecureCookie),
		middleware.WithLogger(a.logger),
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Client(a.provider, opts...))

		r.Post("/session", a.establishSession)
		r.Post("/logout", a.logout)

		r.Route("/api", func(r chi.Router) {
			r.Use(middleware.RequireSession(a.guard, opts...))
			r.HandleFunc("/*", a.proxyAPI)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Navigation(a.guard, a.table, a.provider, opts...))
			for _, dest := range a.table.All() {
				r.Get(dest.Path, a.page(dest.Name))
			}
		})

		if _, ok := a.table.Match("/"); !ok {
			r.Get("/", a.root)
		}
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "not_found", "the requested resource was not found")
	})

	return r
}
