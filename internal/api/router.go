package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/alkubo/SafeVault/internal/auth"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.securityHeadersMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)
	r.Use(s.identityMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Auth endpoints (no auth required)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/register", s.handleRegister)

		// Legacy registration surface, kept for existing frontends
		r.Post("/users", s.handleLegacyRegister)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(s.requirePolicy(auth.PolicyAuthenticated))

			r.Post("/auth/password", s.handleChangePassword)
		})

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(s.requirePolicy(auth.PolicyAdminOnly))

			r.Get("/users", s.handleListUsers)
			r.Get("/users/search", s.handleSearchUsers)
			r.Get("/users/{username}", s.handleGetUser)
			r.Put("/users/{username}/role", s.handleSetUserRole)

			r.Get("/audit", s.handleListAuditEvents)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
