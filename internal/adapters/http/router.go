// Package http provides the inbound HTTP adapter including routing and server lifecycle.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/planagain/todo-api/internal/adapters/http/handlers"
	"github.com/planagain/todo-api/internal/adapters/http/middleware"
	"github.com/planagain/todo-api/internal/ports"
)

// NewRouter creates an HTTP handler with all application routes registered.
// Middleware is applied globally in the order given; authentication is
// applied per route group so health and sign-in stay public.
func NewRouter(
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	todoHandler *handlers.TodoHandler,
	healthHandler *handlers.HealthHandler,
	auth ports.AuthService,
	corsOrigins []string,
	middlewares ...func(http.Handler) http.Handler,
) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(middleware.Chain(middlewares...))

	authenticated := middleware.Authenticate(auth)

	// Health endpoints (always public).
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	// Auth endpoints. user-info and logout need a live session.
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/signin", authHandler.SignIn)
		r.Post("/google/callback", authHandler.GoogleCallback)

		r.Group(func(r chi.Router) {
			r.Use(authenticated)
			r.Get("/user-info", authHandler.UserInfo)
			r.Post("/logout", authHandler.Logout)
		})
	})

	// Profile and admin endpoints.
	r.Route("/user", func(r chi.Router) {
		r.Use(authenticated)
		r.Put("/profile", userHandler.UpdateProfile)
		r.Get("/", userHandler.List)
		r.Patch("/{id}", userHandler.ToggleRole)
	})

	// Todo CRUD, listing, and the notification feed.
	r.Route("/api/todos", func(r chi.Router) {
		r.Use(authenticated)
		r.Post("/add-todo", todoHandler.Create)
		r.Get("/", todoHandler.List)
		r.Get("/notifications", todoHandler.Notifications)
		r.Get("/{id}", todoHandler.Get)
		r.Patch("/{id}", todoHandler.Update)
		r.Delete("/{id}", todoHandler.Delete)
	})

	return r
}
