// Package models defines the catalog and history types shared by the store,
// the API and the MCP tools.
package models

import "time"

// PuzzleFile is a puzzle definition file as found on disk.
type PuzzleFile struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PuzzleSummary is a catalog row: enough to list a puzzle without parsing its
// definition file.
type PuzzleSummary struct {
	ID           string    `json:"id"`
	Path         string    `json:"path"`
	Name         string    `json:"name,omitempty"`
	Type         string    `json:"crosswordType,omitempty"`
	Cols         int       `json:"cols"`
	Rows         int       `json:"rows"`
	Entries      int       `json:"entries"`
	HasSolutions bool      `json:"has_solutions"`
	Checksum     string    `json:"checksum"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MoveRecord is one committed cell change in the move log.
type MoveRecord struct {
	ID            int64     `json:"id"`
	SessionID     string    `json:"session_id"`
	PuzzleID      string    `json:"puzzle_id"`
	X             int       `json:"x"`
	Y             int       `json:"y"`
	Value         string    `json:"value"`
	PreviousValue string    `json:"previous_value"`
	CreatedAt     time.Time `json:"created_at"`
}
