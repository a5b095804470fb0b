// Package server wires the HTTP endpoints into a chi router.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the relay's route table: health check at the root, the
// WebSocket endpoint, and the test console.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/", HealthHandler)
	r.Get("/ws", h.ServeWS)
	r.Get("/test", h.TestPage)

	return r
}
