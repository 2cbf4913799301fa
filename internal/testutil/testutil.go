// Package testutil provides shared test helpers for setting up puzzle
// directories, catalogs and sample puzzles.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/grille/internal/storage"
	"github.com/starford/grille/internal/store"
)

// CatCow is a 3x3 puzzle with 1 across CAT and 1 down COW sharing the top
// left cell.
const CatCow = `{
  "id": "cat-cow",
  "name": "Cat and cow",
  "crosswordType": "quick",
  "dimensions": {"cols": 3, "rows": 3},
  "entries": [
    {"id": "1-across", "number": 1, "clue": "Feline pet (3)", "direction": "across",
     "position": {"x": 0, "y": 0}, "length": 3, "solution": "CAT"},
    {"id": "1-down", "number": 1, "clue": "Dairy animal (3)", "direction": "down",
     "position": {"x": 0, "y": 0}, "length": 3, "solution": "COW"}
  ]
}`

// CatDog is a 4x3 puzzle whose 1 across CAT and 2 down DOG form one
// compound answer.
const CatDog = `{
  "id": "cat-dog",
  "name": "Cat and dog",
  "crosswordType": "quick",
  "dimensions": {"cols": 4, "rows": 3},
  "entries": [
    {"id": "1-across", "number": 1, "clue": "Pets (3,3)", "direction": "across",
     "position": {"x": 0, "y": 0}, "length": 3, "solution": "CAT",
     "group": ["1-across", "2-down"], "separatorLocations": {",": [3]}},
    {"id": "2-down", "number": 2, "clue": "See 1", "direction": "down",
     "position": {"x": 3, "y": 0}, "length": 3, "solution": "DOG",
     "group": ["1-across", "2-down"]}
  ]
}`

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "grille-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestPuzzles creates a temporary puzzles directory with a storage.Provider.
func TestPuzzles(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	fs, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, fs
}

// WritePuzzle writes content to name under dir.
func WritePuzzle(t *testing.T, dir, name, content string) {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
