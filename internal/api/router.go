package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/grille/internal/puzzleservice"
	"github.com/starford/grille/internal/session"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *puzzleservice.Service, sessions *session.Manager, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, sessions)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Puzzle catalog.
	r.Get("/puzzles", h.ListPuzzles)
	r.Post("/puzzles", h.CreatePuzzle)
	r.Get("/puzzles/{id}", h.GetPuzzle)
	r.Delete("/puzzles/{id}", h.DeletePuzzle)

	// Play sessions.
	r.Get("/sessions", h.ListSessions)
	r.Post("/sessions", h.StartSession)
	r.Get("/sessions/{id}", h.GetSession)
	r.Delete("/sessions/{id}", h.EndSession)
	r.Get("/sessions/{id}/moves", h.Moves)
	r.Post("/sessions/{id}/{op}", h.ApplyCommand)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
