package board

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/codec"
	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/storage"
)

// Loader materializes boards from a storage provider.
type Loader struct {
	store  storage.Provider
	logger *slog.Logger
}

// NewLoader creates a Loader. A nil logger falls back to slog.Default.
func NewLoader(store storage.Provider, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{store: store, logger: logger}
}

// Load reads the board configuration and every card file into a snapshot.
//
// A missing board file fails with apperr.ErrBoardFileNotFound and a parse
// failure with apperr.ErrInvalidBoardFile. Missing column directories are
// created as a repair side effect. A card file that fails to parse is
// skipped with a warning so one corrupt record never blocks the board.
// Cards are returned sorted ascending by position token (ordinal string
// comparison); equal positions keep column order, then filename order.
func (l *Loader) Load() (*models.LoadedBoard, error) {
	data, err := l.store.Read(BoardFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", apperr.ErrBoardFileNotFound, BoardFile)
		}
		return nil, fmt.Errorf("board: read %s: %w", BoardFile, err)
	}
	b, err := codec.ParseBoard(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidBoardFile, err)
	}

	var cards []models.Card
	for _, col := range b.Columns {
		dir := columnDir(col.ID)
		// Loading repairs missing column directories.
		if err := l.store.MkdirAll(dir); err != nil {
			return nil, fmt.Errorf("board: ensure column dir %s: %w", dir, err)
		}
		names, err := l.store.ListDir(dir)
		if err != nil {
			return nil, fmt.Errorf("board: list column %s: %w", col.ID, err)
		}
		for _, name := range names {
			card, ok := l.loadCard(dir+"/"+name, name)
			if !ok {
				continue
			}
			// The directory a card lives in is authoritative for its column.
			card.Column = col.ID
			cards = append(cards, *card)
		}
	}

	sort.SliceStable(cards, func(i, j int) bool {
		return cards[i].Position < cards[j].Position
	})

	return &models.LoadedBoard{Board: *b, Cards: cards, Dir: l.store.Root()}, nil
}

// LoadArchived returns archived cards, newest first. A missing archive
// directory yields an empty list, not an error. Each card's column is
// forced to models.ArchiveColumnID for display; the original column stays
// embedded in its payload untouched.
func (l *Loader) LoadArchived() ([]models.Card, error) {
	names, err := l.store.ListDir(ArchiveDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("board: list archive: %w", err)
	}

	// Date-prefixed names sort newest-first in descending order.
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	var cards []models.Card
	for _, name := range names {
		card, ok := l.loadCard(ArchiveDir+"/"+name, name)
		if !ok {
			continue
		}
		card.Column = models.ArchiveColumnID
		cards = append(cards, *card)
	}
	return cards, nil
}

// loadCard reads and parses one record, capturing its filename stem as
// SourceSlug. Parse and read failures are logged and skipped.
func (l *Loader) loadCard(relPath, name string) (*models.Card, bool) {
	data, err := l.store.Read(relPath)
	if err != nil {
		l.logger.Warn("board: skipping unreadable card",
			slog.String("path", relPath),
			slog.String("error", err.Error()))
		return nil, false
	}
	card, err := codec.ParseCard(data)
	if err != nil {
		l.logger.Warn("board: skipping unparseable card",
			slog.String("path", relPath),
			slog.String("error", err.Error()))
		return nil, false
	}
	card.SourceSlug = strings.TrimSuffix(name, Ext)
	return card, true
}
