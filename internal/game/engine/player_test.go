package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unoverse/unoserver/internal/game/card"
	"github.com/unoverse/unoserver/internal/game/engine"
)

// TestPlayer_RemoveCard verifies removal by value equality and the
// defect-class error for a card not in hand.
func TestPlayer_RemoveCard(t *testing.T) {
	red5 := card.MustNew(card.Number, card.Red, 5)
	blue3 := card.MustNew(card.Number, card.Blue, 3)

	p := engine.NewPlayer("p1", "Alice")
	p.AddCards([]card.Card{red5, blue3, red5})

	require.NoError(t, p.RemoveCard(red5))
	assert.Equal(t, []card.Card{blue3, red5}, p.Hand,
		"only the first matching card is removed")

	err := p.RemoveCard(card.MustNew(card.Number, card.Green, 9))
	require.ErrorIs(t, err, engine.ErrCardNotFound)
	assert.True(t, engine.IsDefect(err), "card-not-found is defect-class")
	assert.Len(t, p.Hand, 2, "failed removal must not alter the hand")
}

// TestPlayer_ValidPlays verifies filtering against a top card and override.
func TestPlayer_ValidPlays(t *testing.T) {
	red5 := card.MustNew(card.Number, card.Red, 5)
	blue5 := card.MustNew(card.Number, card.Blue, 5)
	green7 := card.MustNew(card.Number, card.Green, 7)
	wild := card.MustNew(card.Wild, card.ColorWild, card.NoValue)

	p := engine.NewPlayer("p1", "Alice")
	p.AddCards([]card.Card{red5, blue5, green7, wild})

	top := card.MustNew(card.Number, card.Red, 9)
	assert.Equal(t, []card.Card{red5, wild}, p.ValidPlays(top, ""),
		"red matches color, wild always plays")
	assert.True(t, p.HasPlayableCard(top, ""))

	assert.Equal(t, []card.Card{green7, wild}, p.ValidPlays(top, card.Green),
		"override restricts non-wilds to the chosen color")

	p2 := engine.NewPlayer("p2", "Bob")
	p2.AddCard(green7)
	assert.False(t, p2.HasPlayableCard(top, ""),
		"no color, kind, or wild match means no playable card")
}

// TestPlayer_Scoring verifies hand penalty calculation and accumulation
// across rounds.
func TestPlayer_Scoring(t *testing.T) {
	p := engine.NewPlayer("p1", "Alice")
	p.AddCards([]card.Card{
		card.MustNew(card.Number, card.Red, 7),
		card.MustNew(card.Skip, card.Blue, card.NoValue),
		card.MustNew(card.WildDrawFour, card.ColorWild, card.NoValue),
	})

	assert.Equal(t, 77, p.CalculateScore(), "7 + 20 + 50")

	p.UpdateScore()
	assert.Equal(t, 77, p.Score)
	p.UpdateScore()
	assert.Equal(t, 154, p.Score, "score accumulates across rounds")
}
