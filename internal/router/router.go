// Package router sets up all HTTP routes and middleware chains for the
// Adverpress server. It organizes routes into public and admin groups
// with appropriate middleware stacks.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"adverpress/internal/handlers"
	"adverpress/internal/middleware"
	"adverpress/internal/session"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. limiter guards the generation endpoints and
// may be nil in tests.
func New(sessionStore *session.Store, limiter *middleware.RateLimiter, admin *handlers.Admin, auth *handlers.Auth, generate *handlers.Generate, public *handlers.Public) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(sessionStore))

	// Health check — no auth.
	r.Get("/health", healthHandler)

	// Admin API — session gated.
	r.Route("/admin", func(r chi.Router) {
		// Login is the only route reachable without a session.
		r.Post("/login", auth.Login)
		r.Post("/logout", auth.Logout)

		// 2FA — requires auth but NOT a completed TOTP step.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/2fa/setup", auth.TwoFASetup)
			r.Post("/2fa/verify", auth.TwoFAVerify)
		})

		// Authenticated + 2FA-verified admin area.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)

			r.Get("/", admin.Dashboard)
			r.Get("/dashboard", admin.Dashboard)
			r.Get("/me", auth.Me)

			// Articles
			r.Route("/articles", func(r chi.Router) {
				r.Get("/", admin.ListArticles)
				r.Post("/", admin.CreateArticle)
				r.Get("/{id}", admin.GetArticle)
				r.Put("/{id}", admin.UpdateArticle)
				r.Delete("/{id}", admin.DeleteArticle)

				// Single-image regeneration hits the AI providers, so it
				// shares the generation rate limit.
				r.Group(func(r chi.Router) {
					if limiter != nil {
						r.Use(limiter.Middleware)
					}
					r.Post("/{id}/images/{slot}", generate.RegenerateImage)
				})
			})

			// Products
			r.Route("/products", func(r chi.Router) {
				r.Get("/", admin.ListProducts)
				r.Post("/", admin.CreateProduct)
				r.Get("/{id}", admin.GetProduct)
				r.Put("/{id}", admin.UpdateProduct)
				r.Delete("/{id}", admin.DeleteProduct)
			})

			// Categories
			r.Route("/categories", func(r chi.Router) {
				r.Post("/", admin.CreateCategory)
				r.Put("/{id}", admin.UpdateCategory)
				r.Delete("/{id}", admin.DeleteCategory)
			})

			// Generation — rate limited.
			r.Route("/generate", func(r chi.Router) {
				if limiter != nil {
					r.Use(limiter.Middleware)
				}
				r.Post("/product-link", generate.ProductLink)
				r.Post("/ad-creative", generate.AdCreative)
			})

			// User management — admin only.
			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/", admin.ListUsers)
				r.Post("/", admin.CreateUser)
				r.Post("/{id}/reset-2fa", admin.ResetUserTOTP)
				r.Delete("/{id}", admin.DeleteUser)
			})
		})
	})

	// Public reader API.
	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", public.Categories)
		r.Get("/articles", public.Articles)
		r.Get("/articles/{slug}", public.Article)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
