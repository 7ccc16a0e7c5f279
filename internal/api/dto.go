package api

import (
	"time"

	"github.com/starford/dagaz/internal/models"
)

// CreateCardRequest is the request body for creating a card.
type CreateCardRequest struct {
	Title    string `json:"title" example:"Fix the bug" validate:"required"`
	Column   string `json:"column" example:"todo" validate:"required"`
	Position string `json:"position" example:"m"`
	Content  string `json:"content" example:"Steps to reproduce..."`
}

// UpdateCardRequest is the request body for updating a card. PrevTitle and
// PrevColumn, when set, describe the previously persisted state and trigger
// file rename and move handling.
type UpdateCardRequest struct {
	Title      string    `json:"title" validate:"required"`
	Column     string    `json:"column" validate:"required"`
	Position   string    `json:"position"`
	Created    time.Time `json:"created"`
	Content    string    `json:"content"`
	SourceSlug string    `json:"sourceSlug"`
	PrevTitle  *string   `json:"prevTitle,omitempty"`
	PrevColumn *string   `json:"prevColumn,omitempty"`
}

// SaveBoardRequest is the request body for replacing the board configuration.
type SaveBoardRequest struct {
	Title   string          `json:"title" validate:"required"`
	Columns []models.Column `json:"columns" validate:"required"`
}

// ArchiveCardRequest identifies the card to archive.
type ArchiveCardRequest struct {
	Title      string `json:"title" validate:"required"`
	Column     string `json:"column" validate:"required"`
	SourceSlug string `json:"sourceSlug"`
}

// ArchiveCardResponse returns the path of the archived file, usable for undo.
type ArchiveCardResponse struct {
	ArchivePath string `json:"archivePath" example:"archive/2026-08-25-fix-the-bug.md" validate:"required"`
}

// UnarchiveCardRequest restores an archived card into a column.
type UnarchiveCardRequest struct {
	ArchivePath string      `json:"archivePath" validate:"required"`
	Card        models.Card `json:"card" validate:"required"`
}

// ArchiveListResponse wraps archived cards, newest first.
type ArchiveListResponse struct {
	Cards []models.Card `json:"cards" validate:"required"`
}

// SyncStatusResponse reports the sync state machine plus the derived action
// availability flags.
type SyncStatusResponse struct {
	State   string `json:"state" example:"localChanges" validate:"required"`
	Message string `json:"message,omitempty"`
	CanPush bool   `json:"canPush"`
	CanPull bool   `json:"canPull"`
}
