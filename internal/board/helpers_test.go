package board

import (
	"strings"
	"testing"

	"github.com/starford/dagaz/internal/codec"
	"github.com/starford/dagaz/internal/models"
)

func mustSerialize(t *testing.T, card *models.Card) []byte {
	t.Helper()
	data, err := codec.SerializeCard(card)
	if err != nil {
		t.Fatalf("SerializeCard: %v", err)
	}
	return data
}

func containsBody(data []byte, body string) bool {
	card, err := codec.ParseCard(data)
	if err != nil {
		return false
	}
	return strings.Contains(card.Content, body)
}
