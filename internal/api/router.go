package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(h *Handler, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Derived views.
	r.Get("/chain", h.Chain)
	r.Get("/graph", h.Graph)
	r.Get("/stats", h.Stats)
	r.Get("/history", h.History)

	// Durable log.
	r.Get("/calls/history", h.CallHistory)
	r.Get("/bills/history", h.BillHistory)

	// Scenario playback.
	r.Get("/scenarios", h.ListScenarios)
	r.Post("/scenarios/{name}/run", h.RunScenario)

	// Demo reset control.
	r.Post("/demo/reset", h.Reset)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
