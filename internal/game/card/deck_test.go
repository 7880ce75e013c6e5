package card_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/unoverse/unoserver/internal/game/card"
)

// TestNewDeck_Composition verifies the 108-card build: 76 numbers, 24 colored
// action cards, 8 wilds, with the standard per-color multiplicities.
func TestNewDeck_Composition(t *testing.T) {
	deck := card.NewDeck()
	require.Equal(t, card.DeckSize, deck.Remaining())

	counts := make(map[card.Card]int)
	kinds := make(map[card.Kind]int)
	for _, c := range deck.Cards() {
		require.NoError(t, c.Validate(), "deck must contain only valid cards")
		counts[c]++
		kinds[c.Kind]++
	}

	assert.Equal(t, 76, kinds[card.Number])
	assert.Equal(t, 8, kinds[card.Skip])
	assert.Equal(t, 8, kinds[card.Reverse])
	assert.Equal(t, 8, kinds[card.DrawTwo])
	assert.Equal(t, 4, kinds[card.Wild])
	assert.Equal(t, 4, kinds[card.WildDrawFour])

	for _, color := range card.Colors {
		assert.Equal(t, 1, counts[card.MustNew(card.Number, color, 0)],
			"one %s zero", color)
		for value := 1; value <= 9; value++ {
			assert.Equal(t, 2, counts[card.MustNew(card.Number, color, value)],
				"two %s %d", color, value)
		}
	}
}

// TestDeck_Draw verifies LIFO draw order and exhaustion reporting.
func TestDeck_Draw(t *testing.T) {
	a := card.MustNew(card.Number, card.Red, 1)
	b := card.MustNew(card.Number, card.Blue, 2)
	deck := card.NewDeckFromCards([]card.Card{a, b})

	c, ok := deck.Draw()
	require.True(t, ok)
	assert.Equal(t, b, c, "draw must take from the top")

	c, ok = deck.Draw()
	require.True(t, ok)
	assert.Equal(t, a, c)

	_, ok = deck.Draw()
	assert.False(t, ok, "exhausted deck must report false")
}

// TestDeck_DrawN verifies DrawN stops early on exhaustion.
func TestDeck_DrawN(t *testing.T) {
	deck := card.NewDeckFromCards([]card.Card{
		card.MustNew(card.Number, card.Red, 1),
		card.MustNew(card.Number, card.Red, 2),
		card.MustNew(card.Number, card.Red, 3),
	})

	drawn := deck.DrawN(2)
	assert.Len(t, drawn, 2)
	assert.Equal(t, 1, deck.Remaining())

	drawn = deck.DrawN(5)
	assert.Len(t, drawn, 1, "DrawN must stop at exhaustion")
	assert.Equal(t, 0, deck.Remaining())
}

// TestDeck_MergePile verifies recycled cards rejoin the draw pile.
func TestDeck_MergePile(t *testing.T) {
	deck := card.NewDeckFromCards(nil)
	pile := []card.Card{
		card.MustNew(card.Number, card.Green, 4),
		card.MustNew(card.Skip, card.Yellow, card.NoValue),
	}

	deck.MergePile(pile, false)
	assert.Equal(t, 2, deck.Remaining())
	assert.Equal(t, pile, deck.Cards(), "unshuffled merge must preserve order")
}

// TestDeck_Shuffle_Property verifies shuffling preserves the multiset of
// cards for arbitrary shuffle counts.
func TestDeck_Shuffle_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		deck := card.NewDeck()
		shuffles := rapid.IntRange(1, 5).Draw(rt, "shuffles")
		for i := 0; i < shuffles; i++ {
			deck.Shuffle()
		}

		require.Equal(rt, card.DeckSize, deck.Remaining())
		counts := make(map[card.Card]int)
		for _, c := range deck.Cards() {
			counts[c]++
		}
		reference := make(map[card.Card]int)
		for _, c := range card.NewDeck().Cards() {
			reference[c]++
		}
		assert.Equal(rt, reference, counts,
			"shuffle must not add, drop, or alter cards")
	})
}
