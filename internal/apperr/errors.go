// Package apperr defines the sentinel errors surfaced by the board core.
// Callers match them with errors.Is; call sites add context via %w wrapping.
package apperr

import "errors"

var (
	// ErrBoardFileNotFound means the board configuration file is absent.
	ErrBoardFileNotFound = errors.New("board file not found")

	// ErrInvalidBoardFile means the board configuration file exists but
	// could not be parsed.
	ErrInvalidBoardFile = errors.New("invalid board file")

	// ErrDirectoryNotFound means a required directory is missing.
	ErrDirectoryNotFound = errors.New("directory not found")

	// ErrDuplicateTitle means a card with the same title already exists
	// somewhere on the board, or a move/rename destination is occupied.
	ErrDuplicateTitle = errors.New("duplicate title")

	// ErrFileOperation covers filesystem-level write failures and
	// structural violations caught before any mutation.
	ErrFileOperation = errors.New("file operation failed")
)
