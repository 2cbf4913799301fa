package store

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/starford/grille/internal/checksum"
	"github.com/starford/grille/internal/models"
	"github.com/starford/grille/internal/puzzle"
	"github.com/starford/grille/internal/storage"
)

// Sync walks the puzzles directory and brings the catalog up to date:
//   - new/changed files are parsed, validated and upserted
//   - files that fail to parse are logged and left out of the catalog,
//     losing any row an earlier valid version had
//   - files removed from disk are deleted from the catalog
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	files, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(files))
	for _, f := range files {
		disk[f.Path] = struct{}{}

		if checksums[f.Path] == f.Checksum {
			continue
		}

		data, err := store.Read(f.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", f.Path), slog.String("error", err.Error()))
			continue
		}
		if err := IndexFile(db, f, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", f.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", f.Path))
		}
	}

	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeletePuzzle(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// IndexFile parses data and upserts the catalog row for f. An empty
// f.Checksum is computed from data. When data no longer parses, any row
// already catalogued for f.Path is removed.
func IndexFile(db *DB, f models.PuzzleFile, data []byte) error {
	p, err := puzzle.Parse(data, filepath.Ext(f.Path))
	if err != nil {
		if delErr := db.DeletePuzzle(f.Path); delErr != nil {
			return errors.Join(err, delErr)
		}
		return err
	}
	if f.Checksum == "" {
		f.Checksum = checksum.Sum(data)
	}
	row := models.PuzzleSummary{
		ID:           p.ID,
		Path:         f.Path,
		Name:         p.Name,
		Type:         p.Type,
		Cols:         p.Cols(),
		Rows:         p.Rows(),
		Entries:      len(p.Entries),
		HasSolutions: p.HasSolutions(),
		Checksum:     f.Checksum,
		UpdatedAt:    f.UpdatedAt,
	}
	return db.UpsertPuzzle(row, clueText(p))
}

func clueText(p *puzzle.Puzzle) string {
	texts := make([]string, 0, len(p.Entries))
	for _, e := range p.Entries {
		if e.Text != "" {
			texts = append(texts, e.Text)
		}
	}
	return strings.Join(texts, "\n")
}
