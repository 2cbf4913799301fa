// Package storage defines the puzzle directory abstraction.
package storage

import "github.com/starford/grille/internal/models"

// Provider is the interface for puzzle file operations.
type Provider interface {
	// List returns metadata for every puzzle file under dir (relative to the puzzles root).
	List(dir string) ([]models.PuzzleFile, error)
	// Read returns the raw bytes of the file at path (relative to the puzzles root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to the puzzles root).
	Write(path string, content []byte) error
	// Delete removes the file at path (relative to the puzzles root).
	Delete(path string) error
}
