// Package board implements the file-backed board storage engine: loading a
// board directory into memory, persisting card mutations with uniqueness
// and ordering guarantees, and maintaining the on-disk skeleton.
//
// On-disk layout:
//
//	boardDir/
//	  board.md
//	  cards/{columnId}/{slug}.md
//	  archive/{yyyy-MM-dd}-{slug}[-N].md
package board

import "path"

const (
	// BoardFile is the board configuration file name.
	BoardFile = "board.md"
	// CardsDir is the directory holding one subdirectory per column.
	CardsDir = "cards"
	// ArchiveDir is the namespace for archived cards.
	ArchiveDir = "archive"
	// Ext is the record file extension.
	Ext = ".md"
)

// columnDir returns the relative directory for a column's card files.
func columnDir(columnID string) string {
	return path.Join(CardsDir, columnID)
}

// cardPath returns the relative path of a card file.
func cardPath(columnID, slug string) string {
	return path.Join(CardsDir, columnID, slug+Ext)
}
