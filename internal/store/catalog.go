package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/grille/internal/apperr"
	"github.com/starford/grille/internal/models"
)

// SearchResult represents one search hit.
type SearchResult struct {
	ID      string `json:"id"`
	Path    string `json:"path"`
	Name    string `json:"name"`
	Snippet string `json:"snippet"`
}

const summaryColumns = `path, id, name, type, cols, rows, entries, has_solutions, checksum, updated_at`

// UpsertPuzzle inserts or replaces the catalog row for p.Path along with its
// search entry. clues is the concatenated clue text used for search. A puzzle
// id already claimed by another file yields apperr.ErrAlreadyExists.
func (db *DB) UpsertPuzzle(p models.PuzzleSummary, clues string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	var owner string
	err = tx.QueryRow(`SELECT path FROM puzzles WHERE id = ?`, p.ID).Scan(&owner)
	switch {
	case err == nil && owner != p.Path:
		return fmt.Errorf("store: puzzle %q already defined by %s: %w", p.ID, owner, apperr.ErrAlreadyExists)
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("store: lookup id: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO puzzles (path, id, name, type, cols, rows, entries, has_solutions, checksum, clues, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			id            = excluded.id,
			name          = excluded.name,
			type          = excluded.type,
			cols          = excluded.cols,
			rows          = excluded.rows,
			entries       = excluded.entries,
			has_solutions = excluded.has_solutions,
			checksum      = excluded.checksum,
			clues         = excluded.clues,
			updated_at    = excluded.updated_at
	`, p.Path, p.ID, p.Name, p.Type, p.Cols, p.Rows, p.Entries, p.HasSolutions, p.Checksum, clues, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("store: upsert puzzle: %w", err)
	}

	if err := ftsUpsert(tx, p.Path, p.ID, p.Name, clues); err != nil {
		return err
	}
	return tx.Commit()
}

// DeletePuzzle removes the catalog row and search entry for a file. Saved
// grid state is kept: the file may come back.
func (db *DB) DeletePuzzle(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	if _, err := tx.Exec(`DELETE FROM puzzles WHERE path = ?`, path); err != nil {
		return fmt.Errorf("store: delete puzzle: %w", err)
	}
	return tx.Commit()
}

// GetChecksum returns the stored checksum for a file, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM puzzles WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// GetPuzzle returns the catalog row for a puzzle id.
func (db *DB) GetPuzzle(id string) (*models.PuzzleSummary, error) {
	row := db.conn.QueryRow(`SELECT `+summaryColumns+` FROM puzzles WHERE id = ?`, id)
	p, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("store: puzzle %q: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get puzzle: %w", err)
	}
	return p, nil
}

// ListPuzzles returns a page of the catalog ordered by name then id, along
// with the total row count. An empty crosswordType lists every type.
func (db *DB) ListPuzzles(limit, offset int, crosswordType string) ([]models.PuzzleSummary, int, error) {
	if limit <= 0 {
		limit = 50
	}
	where, args := "", []any{}
	if crosswordType != "" {
		where = ` WHERE type = ?`
		args = append(args, crosswordType)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM puzzles`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("store: count puzzles: %w", err)
	}

	rows, err := db.conn.Query(`SELECT `+summaryColumns+` FROM puzzles`+where+
		` ORDER BY name, id LIMIT ? OFFSET ?`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("store: list puzzles: %w", err)
	}
	defer rows.Close()

	out := []models.PuzzleSummary{}
	for rows.Next() {
		p, err := scanSummary(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

// AllChecksums maps every indexed file path to its checksum.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM puzzles`)
	if err != nil {
		return nil, fmt.Errorf("store: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(s scanner) (*models.PuzzleSummary, error) {
	var p models.PuzzleSummary
	err := s.Scan(&p.Path, &p.ID, &p.Name, &p.Type, &p.Cols, &p.Rows, &p.Entries,
		&p.HasSolutions, &p.Checksum, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
