package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/grille/internal/models"
)

// LoadGrid returns the saved cell values of a puzzle. ok is false when the
// puzzle has never been saved.
func (db *DB) LoadGrid(puzzleID string) ([][]string, bool, error) {
	var raw string
	err := db.conn.QueryRow(`SELECT state FROM grid_states WHERE puzzle_id = ?`, puzzleID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: load grid: %w", err)
	}
	var values [][]string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, false, fmt.Errorf("store: decode grid %s: %w", puzzleID, err)
	}
	return values, true, nil
}

// SaveGrid replaces the saved cell values of a puzzle.
func (db *DB) SaveGrid(puzzleID string, values [][]string) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("store: encode grid: %w", err)
	}
	_, err = db.conn.Exec(`
		INSERT INTO grid_states (puzzle_id, state, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(puzzle_id) DO UPDATE SET
			state      = excluded.state,
			updated_at = excluded.updated_at
	`, puzzleID, string(raw), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("store: save grid: %w", err)
	}
	return nil
}

// RecordMove appends a cell change to the move log.
func (db *DB) RecordMove(m models.MoveRecord) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	_, err := db.conn.Exec(`
		INSERT INTO moves (session_id, puzzle_id, x, y, value, previous_value, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, m.SessionID, m.PuzzleID, m.X, m.Y, m.Value, m.PreviousValue, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("store: record move: %w", err)
	}
	return nil
}

// Moves returns the move log of a session, oldest first. A non-positive
// limit returns every move.
func (db *DB) Moves(sessionID string, limit int) ([]models.MoveRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.conn.Query(`
		SELECT id, session_id, puzzle_id, x, y, value, previous_value, created_at
		FROM moves
		WHERE session_id = ?
		ORDER BY id
		LIMIT ?
	`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("store: moves: %w", err)
	}
	defer rows.Close()

	out := []models.MoveRecord{}
	for rows.Next() {
		var m models.MoveRecord
		if err := rows.Scan(&m.ID, &m.SessionID, &m.PuzzleID, &m.X, &m.Y, &m.Value, &m.PreviousValue, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GridStates adapts the saved grid table to the engine's fire-and-forget
// state collaborator: failures are logged, never returned.
type GridStates struct {
	db     History
	logger *slog.Logger
}

// NewGridStates returns a GridStates over h.
func NewGridStates(h History, logger *slog.Logger) *GridStates {
	return &GridStates{db: h, logger: logger}
}

// Load returns the saved values of a puzzle.
func (g *GridStates) Load(puzzleID string) ([][]string, bool) {
	values, ok, err := g.db.LoadGrid(puzzleID)
	if err != nil {
		g.logger.Warn("grid state: load failed", slog.String("puzzle", puzzleID), slog.String("error", err.Error()))
		return nil, false
	}
	return values, ok
}

// Save stores the values of a puzzle.
func (g *GridStates) Save(puzzleID string, values [][]string) {
	if err := g.db.SaveGrid(puzzleID, values); err != nil {
		g.logger.Warn("grid state: save failed", slog.String("puzzle", puzzleID), slog.String("error", err.Error()))
	}
}
