// Package models defines the domain types for Dagaz.
package models

import "time"

// ArchiveColumnID is the synthetic column id assigned to cards loaded from
// the archive namespace. It never appears in a board definition; the card's
// real column stays embedded in its payload for restoration.
const ArchiveColumnID = "archive"

// Column is a single lane on a board. The ID is a stable token used as the
// card subdirectory name; Name is what a UI displays.
type Column struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// Board is an ordered sequence of columns plus display metadata.
// Column ids are unique within a board.
type Board struct {
	Title       string   `yaml:"title" json:"title"`
	Columns     []Column `yaml:"columns" json:"columns"`
	Description string   `yaml:"-" json:"description,omitempty"`
}

// Column returns the column with the given id, or nil.
func (b *Board) Column(id string) *Column {
	for i := range b.Columns {
		if b.Columns[i].ID == id {
			return &b.Columns[i]
		}
	}
	return nil
}

// Card is one task record. Title is unique across the whole board, not just
// its column. Position is an opaque token ordered by plain string comparison.
//
// SourceSlug is the filename stem the card was loaded from or last written
// under. It is never serialized; it only preserves file identity so that
// body edits do not rename the file. Every mutation path must carry it
// forward, otherwise the old file is orphaned.
type Card struct {
	Title      string    `json:"title"`
	Column     string    `json:"column"`
	Position   string    `json:"position"`
	Created    time.Time `json:"created"`
	Content    string    `json:"content"`
	SourceSlug string    `json:"sourceSlug,omitempty"`
}

// LoadedBoard is a read-only snapshot of a board directory: the board, its
// cards sorted by position, and where they came from. It is valid only at
// the instant it was returned and never auto-refreshes.
type LoadedBoard struct {
	Board Board  `json:"board"`
	Cards []Card `json:"cards"`
	Dir   string `json:"dir"`
}
