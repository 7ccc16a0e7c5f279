package board

import (
	"fmt"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/codec"
	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/storage"
)

// Writer persists the board configuration and the on-disk skeleton.
type Writer struct {
	store storage.Provider
}

// NewWriter creates a Writer.
func NewWriter(store storage.Provider) *Writer {
	return &Writer{store: store}
}

// Save serializes the board configuration and writes it atomically.
func (w *Writer) Save(b *models.Board) error {
	data, err := codec.SerializeBoard(b)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrFileOperation, err)
	}
	if err := w.store.Write(BoardFile, data); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrFileOperation, err)
	}
	return nil
}

// Create establishes the full skeleton for a new board in one call: the
// archive namespace, one card subdirectory per declared column, and the
// initial configuration file. The provider's root is the board directory;
// its identity never changes for the board's lifetime.
func (w *Writer) Create(b *models.Board) error {
	if err := w.store.MkdirAll(ArchiveDir); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrFileOperation, err)
	}
	for _, col := range b.Columns {
		if err := w.store.MkdirAll(columnDir(col.ID)); err != nil {
			return fmt.Errorf("%w: %v", apperr.ErrFileOperation, err)
		}
	}
	return w.Save(b)
}
