package store

import "github.com/starford/grille/internal/models"

// Catalog defines the puzzle catalog operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type Catalog interface {
	UpsertPuzzle(p models.PuzzleSummary, clues string) error
	DeletePuzzle(path string) error
	GetChecksum(path string) (string, error)
	GetPuzzle(id string) (*models.PuzzleSummary, error)
	ListPuzzles(limit, offset int, crosswordType string) ([]models.PuzzleSummary, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// History defines saved grid state and move log operations.
type History interface {
	LoadGrid(puzzleID string) ([][]string, bool, error)
	SaveGrid(puzzleID string, values [][]string) error
	RecordMove(m models.MoveRecord) error
	Moves(sessionID string, limit int) ([]models.MoveRecord, error)
}

// Verify *DB satisfies both interfaces at compile time.
var (
	_ Catalog = (*DB)(nil)
	_ History = (*DB)(nil)
)
