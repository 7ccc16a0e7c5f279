package codec

import (
	"testing"
	"time"

	"github.com/starford/dagaz/internal/models"
)

func TestCardRoundTrip(t *testing.T) {
	card := &models.Card{
		Title:    "Fix bug",
		Column:   "todo",
		Position: "m",
		Created:  time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		Content:  "# Notes\nReproduce with `go run .`\n",
	}
	data, err := SerializeCard(card)
	if err != nil {
		t.Fatalf("SerializeCard: %v", err)
	}
	got, err := ParseCard(data)
	if err != nil {
		t.Fatalf("ParseCard: %v", err)
	}
	if got.Title != card.Title || got.Column != card.Column || got.Position != card.Position {
		t.Errorf("header mismatch: %+v", got)
	}
	if !got.Created.Equal(card.Created) {
		t.Errorf("created = %v, want %v", got.Created, card.Created)
	}
	if got.Content != card.Content {
		t.Errorf("content = %q, want %q", got.Content, card.Content)
	}
	if got.SourceSlug != "" {
		t.Errorf("sourceSlug must not survive serialization, got %q", got.SourceSlug)
	}
}

func TestCardRoundTrip_EmptyBody(t *testing.T) {
	card := &models.Card{Title: "Empty", Column: "done"}
	data, err := SerializeCard(card)
	if err != nil {
		t.Fatalf("SerializeCard: %v", err)
	}
	got, err := ParseCard(data)
	if err != nil {
		t.Fatalf("ParseCard: %v", err)
	}
	if got.Content != "" {
		t.Errorf("content = %q, want empty", got.Content)
	}
}

func TestParseCard_Errors(t *testing.T) {
	cases := map[string]string{
		"no frontmatter":           "just a body\n",
		"unterminated frontmatter": "---\ntitle: x\n",
		"missing title":            "---\ncolumn: todo\n---\nbody\n",
		"invalid yaml":             "---\n: bad: {{{\n---\nbody\n",
	}
	for name, input := range cases {
		if _, err := ParseCard([]byte(input)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestBoardRoundTrip(t *testing.T) {
	board := &models.Board{
		Title: "Sprint",
		Columns: []models.Column{
			{ID: "todo", Name: "Todo"},
			{ID: "doing", Name: "In Progress"},
			{ID: "done", Name: "Done"},
		},
		Description: "Weekly sprint board.\n",
	}
	data, err := SerializeBoard(board)
	if err != nil {
		t.Fatalf("SerializeBoard: %v", err)
	}
	got, err := ParseBoard(data)
	if err != nil {
		t.Fatalf("ParseBoard: %v", err)
	}
	if got.Title != board.Title {
		t.Errorf("title = %q", got.Title)
	}
	if len(got.Columns) != 3 || got.Columns[1].Name != "In Progress" {
		t.Errorf("columns = %+v", got.Columns)
	}
	if got.Description != board.Description {
		t.Errorf("description = %q", got.Description)
	}
}

func TestParseBoard_DuplicateColumnID(t *testing.T) {
	input := "---\ntitle: B\ncolumns:\n  - id: todo\n    name: A\n  - id: todo\n    name: B\n---\n"
	if _, err := ParseBoard([]byte(input)); err == nil {
		t.Error("expected error for duplicate column id")
	}
}

func TestParseBoard_EmptyColumnID(t *testing.T) {
	input := "---\ntitle: B\ncolumns:\n  - id: \"\"\n    name: A\n---\n"
	if _, err := ParseBoard([]byte(input)); err == nil {
		t.Error("expected error for empty column id")
	}
}
