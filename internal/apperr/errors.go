// Package apperr holds the sentinel errors shared across packages.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidPuzzle marks malformed puzzle data detected while building
	// the grid or the clue index.
	ErrInvalidPuzzle = errors.New("invalid puzzle")

	// ErrConfirmationRequired is returned by surfaces that gate destructive
	// grid-wide operations behind an explicit confirmation.
	ErrConfirmationRequired = errors.New("confirmation required")

	// ErrInvalidCommand marks a malformed play command.
	ErrInvalidCommand = errors.New("invalid command")
)
