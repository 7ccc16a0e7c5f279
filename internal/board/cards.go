package board

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/codec"
	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/slug"
	"github.com/starford/dagaz/internal/storage"
)

// CardWriter persists card mutations. All operations are synchronous and
// run on the caller's goroutine; the board directory is assumed to have a
// single writer.
type CardWriter struct {
	store  storage.Provider
	logger *slog.Logger
	now    func() time.Time
}

// NewCardWriter creates a CardWriter. A nil logger falls back to
// slog.Default.
func NewCardWriter(store storage.Provider, logger *slog.Logger) *CardWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CardWriter{store: store, logger: logger, now: time.Now}
}

// SaveOptions describes how the card being saved relates to its previous
// persisted state. PrevTitle non-nil signals a possible rename, PrevColumn
// non-nil a possible move.
type SaveOptions struct {
	PrevTitle  *string
	PrevColumn *string
	IsNew      bool
}

// Save persists the card and updates its SourceSlug to the filename stem
// it was written under.
//
// Structural violations (empty column, duplicate title, a new card whose
// slug collides with an existing file, occupied move or rename
// destination) are rejected before any filesystem mutation. Title
// identity is the parsed title of existing records, not their filenames: a
// renamed card may keep its old filename, so filenames cannot witness
// uniqueness. Relocations write the new file first, verify it, and only
// then remove the old one, so an interruption can at worst leave both
// files behind, never neither.
func (w *CardWriter) Save(card *models.Card, opts SaveOptions) error {
	if card.Column == "" {
		return fmt.Errorf("%w: card %q has no column", apperr.ErrFileOperation, card.Title)
	}
	if err := w.store.MkdirAll(columnDir(card.Column)); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrFileOperation, err)
	}

	if opts.IsNew {
		if err := w.checkTitleUnique(card.Title); err != nil {
			return err
		}
	}

	titleChanged := opts.PrevTitle != nil && *opts.PrevTitle != card.Title
	moved := opts.PrevColumn != nil && *opts.PrevColumn != card.Column

	targetSlug := card.SourceSlug
	if opts.IsNew || titleChanged || targetSlug == "" {
		targetSlug = slug.Make(card.Title)
	}
	dest := cardPath(card.Column, targetSlug)

	// A new card has no claim on an existing file: two distinct titles can
	// slugify to the same stem, and writing through would destroy the
	// incumbent record.
	if opts.IsNew && w.store.Exists(dest) {
		return fmt.Errorf("%w: file %s already occupied", apperr.ErrDuplicateTitle, dest)
	}

	// Locate the previously written file for moves and renames.
	oldPath := ""
	if !opts.IsNew && (moved || titleChanged) {
		oldSlug := card.SourceSlug
		if oldSlug == "" {
			prev := card.Title
			if opts.PrevTitle != nil {
				prev = *opts.PrevTitle
			}
			oldSlug = slug.Make(prev)
		}
		oldCol := card.Column
		if moved {
			oldCol = *opts.PrevColumn
		}
		oldPath = cardPath(oldCol, oldSlug)
	}

	data, err := codec.SerializeCard(card)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrFileOperation, err)
	}

	if oldPath != "" && oldPath != dest {
		if w.store.Exists(oldPath) && w.store.Exists(dest) {
			return fmt.Errorf("%w: destination %s already occupied", apperr.ErrDuplicateTitle, dest)
		}
		if err := w.writeVerified(dest, data); err != nil {
			return err
		}
		if w.store.Exists(oldPath) {
			if err := w.store.Delete(oldPath); err != nil {
				return fmt.Errorf("%w: remove old file %s: %v", apperr.ErrFileOperation, oldPath, err)
			}
		}
	} else {
		if err := w.writeVerified(dest, data); err != nil {
			return err
		}
	}

	card.SourceSlug = targetSlug
	return nil
}

// Delete removes the card's file. A missing file is not an error.
func (w *CardWriter) Delete(card *models.Card) error {
	p := w.recordPath(card)
	if err := w.store.Delete(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: %v", apperr.ErrFileOperation, err)
	}
	return nil
}

// Archive moves the card's file into the archive namespace under a
// date-prefixed name, appending -2, -3, … on collisions. It returns the
// relative archive path so the caller can offer undo, and updates the
// card's SourceSlug to the archived filename stem. The record payload is
// not rewritten: the original column stays embedded for restoration.
func (w *CardWriter) Archive(card *models.Card) (string, error) {
	src := w.recordPath(card)
	if !w.store.Exists(src) {
		return "", fmt.Errorf("%w: card file %s not found", apperr.ErrFileOperation, src)
	}
	if err := w.store.MkdirAll(ArchiveDir); err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrFileOperation, err)
	}

	stem := w.now().Format("2006-01-02") + "-" + w.slugOf(card)
	target := path.Join(ArchiveDir, stem+Ext)
	for n := 2; w.store.Exists(target); n++ {
		target = path.Join(ArchiveDir, stem+"-"+strconv.Itoa(n)+Ext)
	}

	if err := w.store.Move(src, target); err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrFileOperation, err)
	}
	card.SourceSlug = strings.TrimSuffix(path.Base(target), Ext)
	return target, nil
}

// Unarchive moves the file at archivePath (relative to the board root, as
// returned by Archive) back into the card's column directory. The slug is
// recomputed from the card's current title, so a title edited while
// archived lands under its new name rather than the archived one.
func (w *CardWriter) Unarchive(archivePath string, card *models.Card) error {
	if card.Column == "" || card.Column == models.ArchiveColumnID {
		return fmt.Errorf("%w: card %q has no restore column", apperr.ErrFileOperation, card.Title)
	}
	if err := w.store.MkdirAll(columnDir(card.Column)); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrFileOperation, err)
	}
	s := slug.Make(card.Title)
	dest := cardPath(card.Column, s)
	if w.store.Exists(dest) {
		return fmt.Errorf("%w: destination %s already occupied", apperr.ErrDuplicateTitle, dest)
	}
	if err := w.store.Move(archivePath, dest); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrFileOperation, err)
	}
	card.SourceSlug = s
	return nil
}

// checkTitleUnique scans every record on the board and rejects an exact
// parsed-title match. The scan is O(total card count) per creation; the
// board sizes this engine targets keep that cheap, and parsed titles are
// the only correct identity since filenames can lag behind renames.
func (w *CardWriter) checkTitleUnique(title string) error {
	metas, err := w.store.List(CardsDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: scan for duplicates: %v", apperr.ErrFileOperation, err)
	}
	for _, m := range metas {
		data, err := w.store.Read(m.Path)
		if err != nil {
			continue
		}
		existing, err := codec.ParseCard(data)
		if err != nil {
			continue
		}
		if existing.Title == title {
			return fmt.Errorf("%w: %q", apperr.ErrDuplicateTitle, title)
		}
	}
	return nil
}

// writeVerified writes data atomically and reads it back before the caller
// removes any old copy.
func (w *CardWriter) writeVerified(dest string, data []byte) error {
	if err := w.store.Write(dest, data); err != nil {
		return fmt.Errorf("%w: write %s: %v", apperr.ErrFileOperation, dest, err)
	}
	got, err := w.store.Read(dest)
	if err != nil || !bytes.Equal(got, data) {
		return fmt.Errorf("%w: verify %s after write", apperr.ErrFileOperation, dest)
	}
	return nil
}

// recordPath resolves where the card's file currently lives, preferring
// SourceSlug over a freshly derived slug.
func (w *CardWriter) recordPath(card *models.Card) string {
	if card.Column == models.ArchiveColumnID {
		return path.Join(ArchiveDir, w.slugOf(card)+Ext)
	}
	return cardPath(card.Column, w.slugOf(card))
}

func (w *CardWriter) slugOf(card *models.Card) string {
	if card.SourceSlug != "" {
		return card.SourceSlug
	}
	return slug.Make(card.Title)
}
