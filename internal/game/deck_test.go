package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeck_NoRepeatUntilExhausted(t *testing.T) {
	// Given a shuffled deck of the built-in cards
	cards := DefaultCards()
	deck := NewDeck(cards)

	// When the whole deck is drawn
	seen := make(map[int]bool)
	for range cards {
		card := deck.Draw()
		require.False(t, seen[card.ID], "card %d drawn twice before exhaustion", card.ID)
		seen[card.ID] = true
	}

	// Then every card appeared exactly once and the next draw reshuffles
	// instead of panicking
	require.Len(t, seen, len(cards))
	require.NotZero(t, deck.Draw().ID)
}

func TestDeck_CopiesInput(t *testing.T) {
	cards := DefaultCards()
	deck := NewDeck(cards)
	cards[0].ID = -1

	for range cards {
		require.NotEqual(t, -1, deck.Draw().ID)
	}
}

func TestLoadCards(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(dir, "cards.json")
		payload := `[{"id":1,"categories":[{"id":1,"name":"n","question":"q","answer":"a"}]}]`
		require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

		cards, err := LoadCards(path)
		require.NoError(t, err)
		require.Len(t, cards, 1)
		require.Equal(t, "q", cards[0].Categories[0].Question)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadCards(filepath.Join(dir, "nope.json"))
		require.Error(t, err)
	})

	t.Run("empty deck", func(t *testing.T) {
		path := filepath.Join(dir, "empty.json")
		require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))

		_, err := LoadCards(path)
		require.ErrorContains(t, err, "no cards")
	})

	t.Run("card without categories", func(t *testing.T) {
		path := filepath.Join(dir, "bare.json")
		require.NoError(t, os.WriteFile(path, []byte(`[{"id":7,"categories":[]}]`), 0o644))

		_, err := LoadCards(path)
		require.ErrorContains(t, err, "no categories")
	})
}
