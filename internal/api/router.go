package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)
	r.Use(s.sessionMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Auth endpoints. Logout is deliberately outside the protected
		// group: it always succeeds, whatever token was presented.
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/logout", s.handleLogout)
		r.Get("/auth/session", s.handleSessionInfo)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Post("/auth/password", s.handleChangePassword)

			// Output endpoints
			r.Route("/outputs", func(r chi.Router) {
				r.Get("/", s.handleListOutputs)

				r.Route("/{name}", func(r chi.Router) {
					r.Get("/", s.handleGetOutput)
					r.Put("/", s.handleSetOutput)
					r.Get("/powerup", s.handleGetPowerUp)
					r.Put("/powerup", s.handleSetPowerUp)
				})
			})

			// Message log
			r.Get("/messages", s.handleListMessages)

			// Panel status (inputs, server time)
			r.Get("/status", s.handleStatus)

			// WebSocket event stream
			r.Get("/ws", s.handleWebSocket)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if s.db != nil {
		if err := s.db.HealthCheck(r.Context()); err != nil {
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  status,
		"version": s.version,
	})
}
