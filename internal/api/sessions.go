package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/grille/internal/session"
)

// ListSessions handles GET /api/sessions.
//
//	@Summary		List live play sessions
//	@Tags			sessions
//	@Produce		json
//	@Success		200	{object}	SessionListResponse
//	@Security		BearerAuth
//	@Router			/sessions [get]
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SessionListResponse{Sessions: h.sessions.List()})
}

// StartSession handles POST /api/sessions.
//
//	@Summary		Start playing a puzzle
//	@Tags			sessions
//	@Accept			json
//	@Produce		json
//	@Param			body	body		StartSessionRequest	true	"Puzzle to play"
//	@Success		201		{object}	SessionSnapshot
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions [post]
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.PuzzleID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("puzzle_id is required"))
		return
	}
	s, err := h.sessions.Start(r.Context(), req.PuzzleID, req.Clue)
	if err != nil {
		writeError(w, "start session failed", err, slog.String("puzzle", req.PuzzleID))
		return
	}
	writeJSON(w, http.StatusCreated, s.Snapshot())
}

// GetSession handles GET /api/sessions/{id}.
//
//	@Summary		Get the current state of a session
//	@Tags			sessions
//	@Produce		json
//	@Param			id	path		string	true	"Session id"
//	@Success		200	{object}	SessionSnapshot
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{id} [get]
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s, err := h.sessions.Get(id)
	if err != nil {
		writeError(w, "get session failed", err, slog.String("session", id))
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

// EndSession handles DELETE /api/sessions/{id}.
//
//	@Summary		End a session
//	@Tags			sessions
//	@Param			id	path	string	true	"Session id"
//	@Success		204	"Session ended"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{id} [delete]
func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.sessions.End(id); err != nil {
		writeError(w, "end session failed", err, slog.String("session", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Moves handles GET /api/sessions/{id}/moves.
//
//	@Summary		Get the move log of a session
//	@Tags			sessions
//	@Produce		json
//	@Param			id		path		string	true	"Session id"
//	@Param			limit	query		int		false	"Most recent moves to return"
//	@Success		200		{object}	MovesResponse
//	@Security		BearerAuth
//	@Router			/sessions/{id}/moves [get]
func (h *Handler) Moves(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	moves, err := h.sessions.Moves(id, limit)
	if err != nil {
		writeError(w, "list moves failed", err, slog.String("session", id))
		return
	}
	writeJSON(w, http.StatusOK, MovesResponse{Moves: moves})
}

// ApplyCommand handles POST /api/sessions/{id}/{op}.
//
//	@Summary		Apply a play operation to a session
//	@Description	op is one of select, move, input, delete, next, previous, next-clue,
//	@Description	previous-clue, focus, blur, check, check-all, clear, clear-all.
//	@Description	check-all and clear-all require confirm=true.
//	@Tags			sessions
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Session id"
//	@Param			op		path		string			true	"Operation"
//	@Param			confirm	query		bool			false	"Confirm a grid-wide operation"
//	@Param			body	body		CommandRequest	false	"Operation arguments"
//	@Success		200		{object}	CommandResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{id}/{op} [post]
func (h *Handler) ApplyCommand(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	op := session.Op(chi.URLParam(r, "op"))
	if !slices.Contains(session.Ops, op) {
		writeJSON(w, http.StatusNotFound, errorBody("unknown operation"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var cmd CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	cmd.Op = op
	if confirm, err := strconv.ParseBool(r.URL.Query().Get("confirm")); err == nil && confirm {
		cmd.Confirm = true
	}

	res, err := h.sessions.Apply(id, cmd)
	if err != nil {
		writeError(w, "apply command failed", err, slog.String("session", id), slog.String("op", string(op)))
		return
	}
	writeJSON(w, http.StatusOK, res)
}
