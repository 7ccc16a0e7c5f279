// Package codec converts boards and cards to and from their on-disk
// Markdown representation: a YAML frontmatter block between --- delimiters
// followed by the Markdown body.
//
// The codec round-trips every field except Card.SourceSlug, which is
// derived from disk state and never serialized.
package codec

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/starford/dagaz/internal/models"
)

const delim = "---"

type cardHeader struct {
	Title    string    `yaml:"title"`
	Column   string    `yaml:"column"`
	Position string    `yaml:"position,omitempty"`
	Created  time.Time `yaml:"created"`
}

type boardHeader struct {
	Title   string          `yaml:"title"`
	Columns []models.Column `yaml:"columns"`
}

// ParseCard decodes a card record.
func ParseCard(data []byte) (*models.Card, error) {
	var h cardHeader
	body, err := splitFrontmatter(data, &h)
	if err != nil {
		return nil, fmt.Errorf("codec: parse card: %w", err)
	}
	if h.Title == "" {
		return nil, fmt.Errorf("codec: parse card: missing title")
	}
	return &models.Card{
		Title:    h.Title,
		Column:   h.Column,
		Position: h.Position,
		Created:  h.Created,
		Content:  body,
	}, nil
}

// SerializeCard encodes a card record. SourceSlug is deliberately omitted.
func SerializeCard(c *models.Card) ([]byte, error) {
	return serialize(cardHeader{
		Title:    c.Title,
		Column:   c.Column,
		Position: c.Position,
		Created:  c.Created,
	}, c.Content)
}

// ParseBoard decodes a board configuration file. Duplicate column ids are
// a parse error: they would make card directories ambiguous.
func ParseBoard(data []byte) (*models.Board, error) {
	var h boardHeader
	body, err := splitFrontmatter(data, &h)
	if err != nil {
		return nil, fmt.Errorf("codec: parse board: %w", err)
	}
	if h.Title == "" {
		return nil, fmt.Errorf("codec: parse board: missing title")
	}
	seen := make(map[string]struct{}, len(h.Columns))
	for _, col := range h.Columns {
		if col.ID == "" {
			return nil, fmt.Errorf("codec: parse board: column with empty id")
		}
		if _, dup := seen[col.ID]; dup {
			return nil, fmt.Errorf("codec: parse board: duplicate column id %q", col.ID)
		}
		seen[col.ID] = struct{}{}
	}
	return &models.Board{
		Title:       h.Title,
		Columns:     h.Columns,
		Description: body,
	}, nil
}

// SerializeBoard encodes a board configuration file.
func SerializeBoard(b *models.Board) ([]byte, error) {
	return serialize(boardHeader{
		Title:   b.Title,
		Columns: b.Columns,
	}, b.Description)
}

// splitFrontmatter separates the YAML header (between leading ---
// delimiters) from the body and decodes it into header. Unlike a
// general-purpose Markdown reader this is strict: a record without a
// complete frontmatter block is not a valid board or card.
func splitFrontmatter(data []byte, header any) (string, error) {
	trimmed := bytes.TrimLeft(data, "\n\r")
	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return "", fmt.Errorf("missing frontmatter")
	}
	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return "", fmt.Errorf("unterminated frontmatter")
	}
	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	if err := yaml.Unmarshal(yamlBlock, header); err != nil {
		return "", err
	}
	return body, nil
}

func serialize(header any, body string) ([]byte, error) {
	head, err := yaml.Marshal(header)
	if err != nil {
		return nil, fmt.Errorf("codec: serialize: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString(delim + "\n")
	buf.Write(head)
	buf.WriteString(delim + "\n")
	if body != "" {
		buf.WriteString(body)
	}
	return buf.Bytes(), nil
}
