// Package testutil provides shared test helpers for setting up boards and
// registry databases.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/starford/dagaz/internal/board"
	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/registry"
	"github.com/starford/dagaz/internal/storage"
)

// Logger returns a silent structured logger for tests.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestRegistry creates a temporary catalog database that is automatically
// cleaned up.
func TestRegistry(t *testing.T) *registry.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "dagaz-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := registry.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestBoard creates a temporary board directory with the standard two-column
// skeleton and returns it with its storage provider.
func TestBoard(t *testing.T) (string, storage.Provider) {
	t.Helper()
	boardDir := t.TempDir()
	store, err := storage.NewFS(boardDir)
	if err != nil {
		t.Fatal(err)
	}
	w := board.NewWriter(store)
	if err := w.Create(&models.Board{
		Title: "Test Board",
		Columns: []models.Column{
			{ID: "todo", Name: "To Do"},
			{ID: "done", Name: "Done"},
		},
	}); err != nil {
		t.Fatal(err)
	}
	return boardDir, store
}
