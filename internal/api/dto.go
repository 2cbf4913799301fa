package api

import (
	"github.com/starford/grille/internal/models"
	"github.com/starford/grille/internal/puzzleservice"
	"github.com/starford/grille/internal/session"
	"github.com/starford/grille/internal/store"
)

// CreatePuzzleRequest is the request body for importing a puzzle.
type CreatePuzzleRequest struct {
	Format  string `json:"format" example:"json" enums:"json,yaml"`
	Content string `json:"content" example:"{\"id\":\"quick-1\",...}" validate:"required"`
}

// PuzzleDetail is the full puzzle response type (aliased from the domain layer).
type PuzzleDetail = puzzleservice.Detail

// PuzzleListResponse wraps paginated puzzle listings.
type PuzzleListResponse struct {
	Puzzles []models.PuzzleSummary `json:"puzzles" validate:"required"`
	Total   int                    `json:"total" example:"42" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []store.SearchResult `json:"results" validate:"required"`
}

// StartSessionRequest is the request body for starting a play session.
type StartSessionRequest struct {
	PuzzleID string `json:"puzzle_id" example:"quick-1" validate:"required"`
	Clue     string `json:"clue,omitempty" example:"1-across"`
}

// SessionListResponse wraps the live sessions.
type SessionListResponse struct {
	Sessions []session.Info `json:"sessions" validate:"required"`
}

// MovesResponse wraps a session move log.
type MovesResponse struct {
	Moves []models.MoveRecord `json:"moves" validate:"required"`
}

// CommandRequest carries the arguments of a play operation. The operation
// itself comes from the URL.
type CommandRequest = session.Command

// CommandResponse is the outcome of a play operation.
type CommandResponse = session.Result

// SessionSnapshot is the renderable state of a session.
type SessionSnapshot = session.Snapshot
