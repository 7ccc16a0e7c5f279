package boardservice

import (
	"context"
	"errors"
	"testing"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/sync"
	"github.com/starford/dagaz/internal/testutil"
)

func testService(t *testing.T) *Service {
	t.Helper()
	_, store := testutil.TestBoard(t)
	return NewService(store, testutil.Logger(), nil)
}

func TestCardLifecycle(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	card := &models.Card{Title: "Ship It", Column: "todo", Position: "m", Content: "soon"}
	if err := svc.CreateCard(ctx, card); err != nil {
		t.Fatalf("CreateCard: %v", err)
	}
	if card.Created.IsZero() {
		t.Error("CreateCard should stamp Created")
	}
	if card.SourceSlug != "ship-it" {
		t.Errorf("SourceSlug = %q", card.SourceSlug)
	}

	// Move to done.
	prev := "todo"
	card.Column = "done"
	if err := svc.UpdateCard(ctx, card, nil, &prev); err != nil {
		t.Fatalf("UpdateCard: %v", err)
	}

	loaded, err := svc.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Cards) != 1 || loaded.Cards[0].Column != "done" {
		t.Fatalf("cards = %+v", loaded.Cards)
	}

	// Archive and restore.
	archivePath, err := svc.ArchiveCard(ctx, card)
	if err != nil {
		t.Fatalf("ArchiveCard: %v", err)
	}
	archived, err := svc.Archived(ctx)
	if err != nil || len(archived) != 1 {
		t.Fatalf("Archived = %+v, err = %v", archived, err)
	}

	restore := archived[0]
	restore.Column = "todo"
	if err := svc.UnarchiveCard(ctx, archivePath, &restore); err != nil {
		t.Fatalf("UnarchiveCard: %v", err)
	}
	loaded, _ = svc.Load(ctx)
	if len(loaded.Cards) != 1 || loaded.Cards[0].Column != "todo" {
		t.Errorf("cards after restore = %+v", loaded.Cards)
	}
}

func TestCreateCard_DuplicateTitle(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	if err := svc.CreateCard(ctx, &models.Card{Title: "Once", Column: "todo"}); err != nil {
		t.Fatal(err)
	}
	err := svc.CreateCard(ctx, &models.Card{Title: "Once", Column: "done"})
	if !errors.Is(err, apperr.ErrDuplicateTitle) {
		t.Errorf("err = %v, want ErrDuplicateTitle", err)
	}
}

func TestSyncOperations_NoProvider(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	st := svc.SyncStatus()
	if st.State != sync.StateNotConfigured {
		t.Errorf("state = %v, want notConfigured", st.State)
	}
	if err := svc.Push(ctx); !errors.Is(err, sync.ErrNotConfigured) {
		t.Errorf("Push err = %v", err)
	}
	if err := svc.Pull(ctx); !errors.Is(err, sync.ErrNotConfigured) {
		t.Errorf("Pull err = %v", err)
	}
	if err := svc.CheckSync(ctx); !errors.Is(err, sync.ErrNotConfigured) {
		t.Errorf("CheckSync err = %v", err)
	}
	if _, err := svc.HasLocalChanges(ctx); !errors.Is(err, sync.ErrNotConfigured) {
		t.Errorf("HasLocalChanges err = %v", err)
	}
}
