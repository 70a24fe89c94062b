package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/marlowe/talenttrack/internal/auth"
	"github.com/marlowe/talenttrack/internal/live"
	"github.com/marlowe/talenttrack/internal/noteflow"
	"github.com/marlowe/talenttrack/internal/store"
)

// NewRouter creates a chi router with all API routes mounted. Auth routes
// are open; everything else requires a Bearer token.
func NewRouter(st *store.Store, flow *noteflow.Service, broker *live.Broker, tokens *auth.Manager) chi.Router {
	h := NewHandler(st, flow, tokens)
	eh := NewEventsHandler(broker)

	r := chi.NewRouter()

	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(tokens, st))

		r.Get("/users", h.ListUsers)

		r.Get("/candidates", h.ListCandidates)
		r.Post("/candidates", h.CreateCandidate)
		r.Get("/candidates/{id}", h.GetCandidate)
		r.Get("/candidates/{id}/notes", h.ListNotes)
		r.Post("/candidates/{id}/notes", h.AddNote)

		r.Get("/notifications", h.ListNotifications)
		r.Patch("/notifications/{id}/read", h.MarkNotificationRead)
		r.Post("/notifications/mark-all-read", h.MarkAllNotificationsRead)

		// Live channel: SSE stream plus topic control.
		r.Get("/events", eh.Stream)
		r.Post("/events/{session}/join", eh.Join)
		r.Post("/events/{session}/leave", eh.Leave)
	})

	return r
}
