package board

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/storage"
)

func testBoard() *models.Board {
	return &models.Board{
		Title: "Test Board",
		Columns: []models.Column{
			{ID: "todo", Name: "Todo"},
			{ID: "doing", Name: "Doing"},
			{ID: "done", Name: "Done"},
		},
	}
}

type fixture struct {
	dir    string
	store  storage.Provider
	loader *Loader
	cards  *CardWriter
	boards *Writer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	f := &fixture{
		dir:    dir,
		store:  store,
		loader: NewLoader(store, logger),
		cards:  NewCardWriter(store, logger),
		boards: NewWriter(store),
	}
	if err := f.boards.Create(testBoard()); err != nil {
		t.Fatalf("Create board: %v", err)
	}
	return f
}

func (f *fixture) mustSave(t *testing.T, card *models.Card, opts SaveOptions) {
	t.Helper()
	if err := f.cards.Save(card, opts); err != nil {
		t.Fatalf("Save %q: %v", card.Title, err)
	}
}

func strp(s string) *string { return &s }

func TestCreateBoard_Skeleton(t *testing.T) {
	f := newFixture(t)
	for _, p := range []string{"board.md", "archive", "cards/todo", "cards/doing", "cards/done"} {
		if _, err := os.Stat(filepath.Join(f.dir, p)); err != nil {
			t.Errorf("missing %s: %v", p, err)
		}
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	f := newFixture(t)
	card := &models.Card{
		Title:    "Fix bug",
		Column:   "todo",
		Position: "m",
		Created:  time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC),
		Content:  "Steps to reproduce.\n",
	}
	f.mustSave(t, card, SaveOptions{IsNew: true})

	if card.SourceSlug != "fix-bug" {
		t.Errorf("sourceSlug = %q, want fix-bug", card.SourceSlug)
	}

	lb, err := f.loader.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(lb.Cards) != 1 {
		t.Fatalf("len(cards) = %d, want 1", len(lb.Cards))
	}
	got := lb.Cards[0]
	if got.Title != card.Title || got.Column != "todo" || got.Position != "m" || got.Content != card.Content {
		t.Errorf("loaded card = %+v", got)
	}
	if !got.Created.Equal(card.Created) {
		t.Errorf("created = %v", got.Created)
	}
	if got.SourceSlug != "fix-bug" {
		t.Errorf("loaded sourceSlug = %q", got.SourceSlug)
	}
}

func TestLoad_MissingBoardFile(t *testing.T) {
	dir := t.TempDir()
	store, _ := storage.NewFS(dir)
	_, err := NewLoader(store, nil).Load()
	if !errors.Is(err, apperr.ErrBoardFileNotFound) {
		t.Errorf("err = %v, want ErrBoardFileNotFound", err)
	}
}

func TestLoad_InvalidBoardFile(t *testing.T) {
	dir := t.TempDir()
	store, _ := storage.NewFS(dir)
	_ = store.Write(BoardFile, []byte("no frontmatter at all"))
	_, err := NewLoader(store, nil).Load()
	if !errors.Is(err, apperr.ErrInvalidBoardFile) {
		t.Errorf("err = %v, want ErrInvalidBoardFile", err)
	}
}

func TestLoad_RepairsColumnDirs(t *testing.T) {
	f := newFixture(t)
	if err := os.RemoveAll(filepath.Join(f.dir, "cards", "doing")); err != nil {
		t.Fatal(err)
	}
	if _, err := f.loader.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := os.Stat(filepath.Join(f.dir, "cards", "doing")); err != nil {
		t.Errorf("column dir not repaired: %v", err)
	}
}

func TestLoad_SkipsCorruptCard(t *testing.T) {
	f := newFixture(t)
	f.mustSave(t, &models.Card{Title: "Good", Column: "todo"}, SaveOptions{IsNew: true})
	_ = f.store.Write("cards/todo/corrupt.md", []byte("not a card"))

	lb, err := f.loader.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(lb.Cards) != 1 || lb.Cards[0].Title != "Good" {
		t.Errorf("cards = %+v, want only Good", lb.Cards)
	}
}

func TestLoad_PositionOrdering(t *testing.T) {
	f := newFixture(t)
	for _, c := range []struct{ title, pos string }{
		{"Second", "b"}, {"Third", "c"}, {"First", "a"},
	} {
		f.mustSave(t, &models.Card{Title: c.title, Column: "todo", Position: c.pos}, SaveOptions{IsNew: true})
	}
	lb, err := f.loader.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var titles []string
	for _, c := range lb.Cards {
		titles = append(titles, c.Title)
	}
	want := []string{"First", "Second", "Third"}
	for i := range want {
		if titles[i] != want[i] {
			t.Fatalf("order = %v, want %v", titles, want)
		}
	}
}

func TestSave_EmptyColumnRejected(t *testing.T) {
	f := newFixture(t)
	err := f.cards.Save(&models.Card{Title: "No home"}, SaveOptions{IsNew: true})
	if !errors.Is(err, apperr.ErrFileOperation) {
		t.Errorf("err = %v, want ErrFileOperation", err)
	}
}

func TestSave_DuplicateTitleAcrossColumns(t *testing.T) {
	f := newFixture(t)
	f.mustSave(t, &models.Card{Title: "Fix bug", Column: "todo"}, SaveOptions{IsNew: true})

	err := f.cards.Save(&models.Card{Title: "Fix bug", Column: "done"}, SaveOptions{IsNew: true})
	if !errors.Is(err, apperr.ErrDuplicateTitle) {
		t.Fatalf("err = %v, want ErrDuplicateTitle", err)
	}
	if f.store.Exists("cards/done/fix-bug.md") {
		t.Error("no file may be created on a rejected save")
	}
}

func TestSave_DuplicateDetectedByParsedTitleNotFilename(t *testing.T) {
	f := newFixture(t)
	// A renamed card keeps its old filename, so the file stem no longer
	// matches the title.
	card := &models.Card{Title: "Old name", Column: "todo"}
	f.mustSave(t, card, SaveOptions{IsNew: true})
	card.Title = "New name"
	card.SourceSlug = "old-name"
	if err := f.store.Write("cards/todo/old-name.md", mustSerialize(t, card)); err != nil {
		t.Fatal(err)
	}

	err := f.cards.Save(&models.Card{Title: "New name", Column: "done"}, SaveOptions{IsNew: true})
	if !errors.Is(err, apperr.ErrDuplicateTitle) {
		t.Errorf("err = %v, want ErrDuplicateTitle for parsed-title match", err)
	}
}

func TestSave_NewCardSlugCollisionRejected(t *testing.T) {
	f := newFixture(t)
	f.mustSave(t, &models.Card{Title: "Fix bug", Column: "todo", Content: "original"}, SaveOptions{IsNew: true})

	// Distinct title, same slug: the title scan passes, but the file is
	// already claimed by the first card.
	err := f.cards.Save(&models.Card{Title: "Fix bug!", Column: "todo", Content: "clobber"}, SaveOptions{IsNew: true})
	if !errors.Is(err, apperr.ErrDuplicateTitle) {
		t.Fatalf("err = %v, want ErrDuplicateTitle", err)
	}
	data, readErr := f.store.Read("cards/todo/fix-bug.md")
	if readErr != nil {
		t.Fatalf("Read: %v", readErr)
	}
	if !containsBody(data, "original") || containsBody(data, "clobber") {
		t.Errorf("incumbent card overwritten: %s", data)
	}
}

func TestSave_BodyEditKeepsFilename(t *testing.T) {
	f := newFixture(t)
	card := &models.Card{Title: "Stable", Column: "todo", Content: "v1"}
	f.mustSave(t, card, SaveOptions{IsNew: true})

	card.Content = "v2"
	f.mustSave(t, card, SaveOptions{PrevTitle: strp("Stable"), PrevColumn: strp("todo")})

	if !f.store.Exists("cards/todo/stable.md") {
		t.Error("body edit must not rename the file")
	}
	data, _ := f.store.Read("cards/todo/stable.md")
	if want := "v2"; !containsBody(data, want) {
		t.Errorf("file not updated: %s", data)
	}
}

func TestScenario_CreateMoveRename(t *testing.T) {
	f := newFixture(t)

	card := &models.Card{Title: "Fix bug", Column: "todo", Position: "a"}
	f.mustSave(t, card, SaveOptions{IsNew: true})
	if !f.store.Exists("cards/todo/fix-bug.md") {
		t.Fatal("expected cards/todo/fix-bug.md")
	}

	// Move to done.
	prevCol := card.Column
	card.Column = "done"
	f.mustSave(t, card, SaveOptions{PrevTitle: strp("Fix bug"), PrevColumn: &prevCol})
	if f.store.Exists("cards/todo/fix-bug.md") {
		t.Error("old file must be removed after move")
	}
	if !f.store.Exists("cards/done/fix-bug.md") {
		t.Error("expected cards/done/fix-bug.md")
	}

	// Rename within done.
	prevTitle := card.Title
	card.Title = "Fix Big Bug"
	f.mustSave(t, card, SaveOptions{PrevTitle: &prevTitle, PrevColumn: strp("done")})
	if f.store.Exists("cards/done/fix-bug.md") {
		t.Error("old file must be removed after rename")
	}
	if !f.store.Exists("cards/done/fix-big-bug.md") {
		t.Error("expected cards/done/fix-big-bug.md")
	}
	if card.SourceSlug != "fix-big-bug" {
		t.Errorf("sourceSlug = %q", card.SourceSlug)
	}
}

func TestSave_MoveDestinationOccupied(t *testing.T) {
	f := newFixture(t)
	a := &models.Card{Title: "Clash", Column: "todo"}
	f.mustSave(t, a, SaveOptions{IsNew: true})
	// A different file already occupies the destination stem.
	_ = f.store.Write("cards/done/clash.md", mustSerialize(t, &models.Card{Title: "Other", Column: "done"}))

	prevCol := "todo"
	a.Column = "done"
	err := f.cards.Save(a, SaveOptions{PrevTitle: strp("Clash"), PrevColumn: &prevCol})
	if !errors.Is(err, apperr.ErrDuplicateTitle) {
		t.Errorf("err = %v, want ErrDuplicateTitle", err)
	}
	if !f.store.Exists("cards/todo/clash.md") {
		t.Error("source file must survive a rejected move")
	}
}

func TestDelete_MissingFileIsNotError(t *testing.T) {
	f := newFixture(t)
	if err := f.cards.Delete(&models.Card{Title: "Ghost", Column: "todo"}); err != nil {
		t.Errorf("Delete: %v", err)
	}
}

func TestDelete_RemovesFile(t *testing.T) {
	f := newFixture(t)
	card := &models.Card{Title: "Bye", Column: "todo"}
	f.mustSave(t, card, SaveOptions{IsNew: true})
	if err := f.cards.Delete(card); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if f.store.Exists("cards/todo/bye.md") {
		t.Error("file should be gone")
	}
}

func TestArchive_DatePrefixAndCollisions(t *testing.T) {
	f := newFixture(t)
	f.cards.now = func() time.Time { return time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC) }

	var paths []string
	for i := 0; i < 3; i++ {
		card := &models.Card{Title: "Same slug", Column: "todo"}
		// Distinct files that normalize to the same slug on the same day.
		_ = f.store.Write("cards/todo/same-slug.md", mustSerialize(t, card))
		p, err := f.cards.Archive(card)
		if err != nil {
			t.Fatalf("Archive #%d: %v", i, err)
		}
		paths = append(paths, p)
	}
	want := []string{
		"archive/2024-01-02-same-slug.md",
		"archive/2024-01-02-same-slug-2.md",
		"archive/2024-01-02-same-slug-3.md",
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
		if !f.store.Exists(want[i]) {
			t.Errorf("missing %s", want[i])
		}
	}
}

func TestLoadArchived_NewestFirst(t *testing.T) {
	f := newFixture(t)
	older := &models.Card{Title: "Older", Column: "todo"}
	newer := &models.Card{Title: "Newer", Column: "todo"}
	_ = f.store.Write("archive/2024-01-01-older.md", mustSerialize(t, older))
	_ = f.store.Write("archive/2024-01-02-newer.md", mustSerialize(t, newer))

	cards, err := f.loader.LoadArchived()
	if err != nil {
		t.Fatalf("LoadArchived: %v", err)
	}
	if len(cards) != 2 || cards[0].Title != "Newer" || cards[1].Title != "Older" {
		t.Errorf("cards = %+v, want newest first", cards)
	}
	for _, c := range cards {
		if c.Column != models.ArchiveColumnID {
			t.Errorf("column = %q, want %q", c.Column, models.ArchiveColumnID)
		}
	}
}

func TestLoadArchived_MissingDirIsEmpty(t *testing.T) {
	dir := t.TempDir()
	store, _ := storage.NewFS(dir)
	cards, err := NewLoader(store, nil).LoadArchived()
	if err != nil {
		t.Fatalf("LoadArchived: %v", err)
	}
	if len(cards) != 0 {
		t.Errorf("cards = %+v, want empty", cards)
	}
}

func TestArchiveUnarchiveRoundTrip(t *testing.T) {
	f := newFixture(t)
	card := &models.Card{Title: "Boomerang", Column: "doing", Content: "keep me\n"}
	f.mustSave(t, card, SaveOptions{IsNew: true})
	before, _ := f.store.Read("cards/doing/boomerang.md")

	archived, err := f.cards.Archive(card)
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if f.store.Exists("cards/doing/boomerang.md") {
		t.Fatal("source must be gone after archive")
	}

	// The archived payload still records the original column.
	restored := &models.Card{Title: card.Title, Column: "doing"}
	if err := f.cards.Unarchive(archived, restored); err != nil {
		t.Fatalf("Unarchive: %v", err)
	}
	after, err := f.store.Read("cards/doing/boomerang.md")
	if err != nil {
		t.Fatalf("read restored: %v", err)
	}
	if string(after) != string(before) {
		t.Errorf("restored content differs:\n%s\nvs\n%s", after, before)
	}
	if f.store.Exists(archived) {
		t.Error("archive file should be gone after unarchive")
	}
}

func TestUnarchive_TitleEditedWhileArchived(t *testing.T) {
	// The slug is recomputed from the current title, so a card renamed
	// while archived lands under the new name, not the archived one.
	f := newFixture(t)
	card := &models.Card{Title: "Old title", Column: "todo"}
	f.mustSave(t, card, SaveOptions{IsNew: true})
	archived, err := f.cards.Archive(card)
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}

	renamed := &models.Card{Title: "Brand new title", Column: "todo"}
	if err := f.cards.Unarchive(archived, renamed); err != nil {
		t.Fatalf("Unarchive: %v", err)
	}
	if !f.store.Exists("cards/todo/brand-new-title.md") {
		t.Error("expected file under recomputed slug")
	}
	if f.store.Exists("cards/todo/old-title.md") {
		t.Error("old slug must not reappear")
	}
}

func TestReadTitle(t *testing.T) {
	f := newFixture(t)
	title, ok := ReadTitle(f.dir)
	if !ok || title != "Test Board" {
		t.Errorf("ReadTitle = %q, %v", title, ok)
	}
}

func TestReadTitle_Failures(t *testing.T) {
	cases := map[string]string{
		"no header":    "just text\n",
		"no title":     "---\ncolumns: []\n---\n",
		"empty title":  "---\ntitle: \"\"\n---\n",
		"empty file":   "",
		"body first":   "body\n---\ntitle: X\n---\n",
	}
	for name, content := range cases {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, BoardFile), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, ok := ReadTitle(dir); ok {
			t.Errorf("%s: expected not found", name)
		}
	}
	if _, ok := ReadTitle(t.TempDir()); ok {
		t.Error("missing file: expected not found")
	}
}

func TestBoardWriter_Save(t *testing.T) {
	f := newFixture(t)
	b := testBoard()
	b.Title = "Renamed Board"
	if err := f.boards.Save(b); err != nil {
		t.Fatalf("Save: %v", err)
	}
	lb, err := f.loader.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if lb.Board.Title != "Renamed Board" {
		t.Errorf("title = %q", lb.Board.Title)
	}
}
