// Package router sets up all HTTP routes and middleware chains for the
// MoonUI catalog API. It organizes routes into public and admin groups with
// appropriate middleware stacks.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"moonui/internal/handlers"
	"moonui/internal/middleware"
)

// Options carries the pieces of the router that come from configuration.
type Options struct {
	AdminToken string
	Limiter    *middleware.RateLimiter // nil disables rate limiting
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(opts Options, public *handlers.Public, admin *handlers.Admin) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", healthHandler)

	// Storefront API.
	r.Route("/api", func(r chi.Router) {
		if opts.Limiter != nil {
			r.Use(opts.Limiter.Middleware)
		}
		r.Route("/{kind}", func(r chi.Router) {
			r.Get("/", public.List)
			r.Get("/categories", public.Categories)
			r.Get("/{id}", public.Detail)
			r.Post("/{id}/download", public.Download)
		})
	})

	// Admin API, bearer token only.
	r.Route("/admin/api", func(r chi.Router) {
		r.Use(middleware.RequireAdminToken(opts.AdminToken))

		r.Post("/licenses", admin.LicenseCreate)
		r.Get("/cache-log", admin.CacheLog)

		r.Route("/{kind}", func(r chi.Router) {
			r.Get("/categories", admin.CategoryList)
			r.Post("/categories", admin.CategoryCreate)
			r.Put("/categories/{id}", admin.CategoryUpdate)
			r.Delete("/categories/{id}", admin.CategoryDelete)

			r.Get("/assets", admin.AssetList)
			r.Post("/assets", admin.AssetCreate)
			r.Get("/assets/{id}", admin.AssetGet)
			r.Put("/assets/{id}", admin.AssetUpdate)
			r.Delete("/assets/{id}", admin.AssetDelete)
			r.Post("/assets/{id}/file", admin.AssetUpload)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
