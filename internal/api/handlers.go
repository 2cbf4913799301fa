package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/grille/internal/puzzleservice"
	"github.com/starford/grille/internal/session"
)

// Handler holds API route handlers.
type Handler struct {
	svc      *puzzleservice.Service
	sessions *session.Manager
}

// NewHandler creates a new Handler.
func NewHandler(svc *puzzleservice.Service, sessions *session.Manager) *Handler {
	return &Handler{svc: svc, sessions: sessions}
}

// ListPuzzles handles GET /api/puzzles.
//
//	@Summary		List puzzles with optional pagination, type filter or search
//	@Tags			puzzles
//	@Produce		json
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Param			type	query		string	false	"Filter by crossword type"
//	@Param			q		query		string	false	"Search puzzle names and clue text"
//	@Success		200		{object}	PuzzleListResponse
//	@Security		BearerAuth
//	@Router			/puzzles [get]
func (h *Handler) ListPuzzles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	if query := strings.TrimSpace(q.Get("q")); query != "" {
		results, err := h.svc.Search(r.Context(), query, limit)
		if err != nil {
			writeError(w, "search failed", err, slog.String("query", query))
			return
		}
		writeJSON(w, http.StatusOK, SearchResponse{Results: results})
		return
	}

	items, total, err := h.svc.ListPuzzles(r.Context(), limit, offset, q.Get("type"))
	if err != nil {
		writeError(w, "list puzzles failed", err)
		return
	}
	writeJSON(w, http.StatusOK, PuzzleListResponse{Puzzles: items, Total: total})
}

// GetPuzzle handles GET /api/puzzles/{id}.
//
//	@Summary		Get a puzzle without its solutions
//	@Tags			puzzles
//	@Produce		json
//	@Param			id	path		string	true	"Puzzle id"
//	@Success		200	{object}	PuzzleDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/puzzles/{id} [get]
func (h *Handler) GetPuzzle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.svc.GetPuzzle(r.Context(), id)
	if err != nil {
		writeError(w, "get puzzle failed", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// CreatePuzzle handles POST /api/puzzles.
//
//	@Summary		Import a puzzle definition
//	@Tags			puzzles
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreatePuzzleRequest	true	"Puzzle to import"
//	@Success		201		{object}	PuzzleDetail
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/puzzles [post]
func (h *Handler) CreatePuzzle(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req CreatePuzzleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}
	var ext string
	switch strings.ToLower(req.Format) {
	case "", "json":
		ext = ".json"
	case "yaml", "yml":
		ext = ".yaml"
	default:
		writeJSON(w, http.StatusBadRequest, errorBody("format must be json or yaml"))
		return
	}

	p, err := h.svc.CreatePuzzle(r.Context(), []byte(req.Content), ext)
	if err != nil {
		writeError(w, "create puzzle failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// DeletePuzzle handles DELETE /api/puzzles/{id}.
//
//	@Summary		Delete a puzzle
//	@Tags			puzzles
//	@Param			id	path	string	true	"Puzzle id"
//	@Success		204	"Puzzle deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/puzzles/{id} [delete]
func (h *Handler) DeletePuzzle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeletePuzzle(r.Context(), id); err != nil {
		writeError(w, "delete puzzle failed", err, slog.String("id", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
