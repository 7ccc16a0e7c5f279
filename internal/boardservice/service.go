// Package boardservice coordinates the storage engine and the sync
// provider behind one façade used by the HTTP and MCP surfaces.
package boardservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/dagaz/internal/board"
	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/storage"
	"github.com/starford/dagaz/internal/sync"
)

// Service exposes board operations. File operations run synchronously on
// the caller's goroutine; sync operations may block on the network.
type Service struct {
	store    storage.Provider
	loader   *board.Loader
	cards    *board.CardWriter
	boards   *board.Writer
	provider sync.Provider // nil when sync is not configured
}

// NewService creates a Service. provider may be nil.
func NewService(store storage.Provider, logger *slog.Logger, provider sync.Provider) *Service {
	return &Service{
		store:    store,
		loader:   board.NewLoader(store, logger),
		cards:    board.NewCardWriter(store, logger),
		boards:   board.NewWriter(store),
		provider: provider,
	}
}

// Load materializes the board snapshot.
func (s *Service) Load(_ context.Context) (*models.LoadedBoard, error) {
	return s.loader.Load()
}

// Archived returns archived cards, newest first.
func (s *Service) Archived(_ context.Context) ([]models.Card, error) {
	return s.loader.LoadArchived()
}

// SaveBoard persists the board configuration.
func (s *Service) SaveBoard(_ context.Context, b *models.Board) error {
	return s.boards.Save(b)
}

// CreateBoard establishes the on-disk skeleton for a new board.
func (s *Service) CreateBoard(_ context.Context, b *models.Board) error {
	return s.boards.Create(b)
}

// CreateCard persists a new card, enforcing board-wide title uniqueness.
// A zero Created timestamp is filled with the current time.
func (s *Service) CreateCard(_ context.Context, card *models.Card) error {
	if card.Created.IsZero() {
		card.Created = time.Now().UTC()
	}
	return s.cards.Save(card, board.SaveOptions{IsNew: true})
}

// UpdateCard persists an edit to an existing card. prevTitle and
// prevColumn describe the card's previous persisted state and trigger
// rename and move handling when they differ from the card's fields.
func (s *Service) UpdateCard(_ context.Context, card *models.Card, prevTitle, prevColumn *string) error {
	return s.cards.Save(card, board.SaveOptions{PrevTitle: prevTitle, PrevColumn: prevColumn})
}

// DeleteCard removes the card's file; a missing file is not an error.
func (s *Service) DeleteCard(_ context.Context, card *models.Card) error {
	return s.cards.Delete(card)
}

// ArchiveCard moves the card into the archive namespace and returns the
// archive path for undo.
func (s *Service) ArchiveCard(_ context.Context, card *models.Card) (string, error) {
	return s.cards.Archive(card)
}

// UnarchiveCard restores an archived card into its column.
func (s *Service) UnarchiveCard(_ context.Context, archivePath string, card *models.Card) error {
	return s.cards.Unarchive(archivePath, card)
}

// SyncStatus returns the provider's status, or notConfigured when no
// provider is wired.
func (s *Service) SyncStatus() sync.Status {
	if s.provider == nil {
		return sync.Status{State: sync.StateNotConfigured}
	}
	return s.provider.Status()
}

// CheckSync verifies the sync configuration.
func (s *Service) CheckSync(ctx context.Context) error {
	if s.provider == nil {
		return fmt.Errorf("%w: no provider", sync.ErrNotConfigured)
	}
	return s.provider.CheckConfiguration(ctx)
}

// Push uploads local changes. The caller should only offer it when
// SyncStatus().CanPush() holds; the provider rejects it otherwise.
func (s *Service) Push(ctx context.Context) error {
	if s.provider == nil {
		return fmt.Errorf("%w: no provider", sync.ErrNotConfigured)
	}
	return s.provider.Push(ctx)
}

// Pull downloads remote changes, mirroring Push.
func (s *Service) Pull(ctx context.Context) error {
	if s.provider == nil {
		return fmt.Errorf("%w: no provider", sync.ErrNotConfigured)
	}
	return s.provider.Sync(ctx)
}

// HasLocalChanges asks the provider whether local edits are pending.
func (s *Service) HasLocalChanges(ctx context.Context) (bool, error) {
	if s.provider == nil {
		return false, fmt.Errorf("%w: no provider", sync.ErrNotConfigured)
	}
	return s.provider.HasLocalChanges(ctx)
}
