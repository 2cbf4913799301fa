// Package puzzleservice coordinates the puzzle directory and the catalog:
// listing, loading, importing and removing puzzle definitions.
package puzzleservice

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/starford/grille/internal/apperr"
	"github.com/starford/grille/internal/checksum"
	"github.com/starford/grille/internal/clueindex"
	"github.com/starford/grille/internal/models"
	"github.com/starford/grille/internal/puzzle"
	"github.com/starford/grille/internal/storage"
	"github.com/starford/grille/internal/store"
)

// Detail is the playable representation of a puzzle: its catalog row, its
// entries with solutions removed and the separators to render.
type Detail struct {
	models.PuzzleSummary
	Entries    []puzzle.Clue                      `json:"entries"`
	Separators map[string]clueindex.SeparatorMark `json:"separators"`
}

// Service coordinates storage and catalog operations.
type Service struct {
	files storage.Provider
	db    *store.DB
}

// NewService creates a new puzzle service.
func NewService(files storage.Provider, db *store.DB) *Service {
	return &Service{files: files, db: db}
}

// ListPuzzles returns a page of the catalog with an optional type filter.
func (s *Service) ListPuzzles(_ context.Context, limit, offset int, crosswordType string) ([]models.PuzzleSummary, int, error) {
	return s.db.ListPuzzles(limit, offset, crosswordType)
}

// Search delegates puzzle search to the catalog.
func (s *Service) Search(_ context.Context, query string, limit int) ([]store.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Load reads and parses the definition of a catalogued puzzle.
func (s *Service) Load(_ context.Context, id string) (*puzzle.Puzzle, error) {
	row, err := s.db.GetPuzzle(id)
	if err != nil {
		return nil, err
	}
	data, err := s.files.Read(row.Path)
	if err != nil {
		return nil, err
	}
	p, err := puzzle.Parse(data, filepath.Ext(row.Path))
	if err != nil {
		return nil, err
	}
	if p.ID != id {
		// The file changed under the catalog; the watcher will catch up.
		return nil, fmt.Errorf("puzzle %q: %w", id, apperr.ErrNotFound)
	}
	return p, nil
}

// GetPuzzle returns the playable detail of a puzzle.
func (s *Service) GetPuzzle(ctx context.Context, id string) (*Detail, error) {
	row, err := s.db.GetPuzzle(id)
	if err != nil {
		return nil, err
	}
	p, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return buildDetail(*row, p)
}

// CreatePuzzle validates a puzzle definition, writes it to <id><ext> under
// the puzzles root and catalogs it.
func (s *Service) CreatePuzzle(_ context.Context, data []byte, ext string) (*Detail, error) {
	ext = strings.ToLower(ext)
	p, err := puzzle.Parse(data, ext)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.GetPuzzle(p.ID); err == nil {
		return nil, fmt.Errorf("puzzle %q: %w", p.ID, apperr.ErrAlreadyExists)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	path := p.ID + ext
	if _, err := s.files.Read(path); err == nil {
		return nil, fmt.Errorf("file %s: %w", path, apperr.ErrAlreadyExists)
	}
	if err := s.files.Write(path, data); err != nil {
		return nil, err
	}

	file := models.PuzzleFile{Path: path, Checksum: checksum.Sum(data), UpdatedAt: time.Now()}
	if err := store.IndexFile(s.db, file, data); err != nil {
		return nil, err
	}
	row, err := s.db.GetPuzzle(p.ID)
	if err != nil {
		return nil, err
	}
	return buildDetail(*row, p)
}

// DeletePuzzle removes a puzzle file and its catalog row. Saved grid state
// is kept.
func (s *Service) DeletePuzzle(_ context.Context, id string) error {
	row, err := s.db.GetPuzzle(id)
	if err != nil {
		return err
	}
	if err := s.files.Delete(row.Path); err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	return s.db.DeletePuzzle(row.Path)
}

func buildDetail(row models.PuzzleSummary, p *puzzle.Puzzle) (*Detail, error) {
	ix, err := clueindex.New(p)
	if err != nil {
		return nil, err
	}
	entries := make([]puzzle.Clue, len(p.Entries))
	for i, e := range p.Entries {
		e.Solution = ""
		entries[i] = e
	}
	return &Detail{
		PuzzleSummary: row,
		Entries:       entries,
		Separators:    ix.Separators(),
	}, nil
}
