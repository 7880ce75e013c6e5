package engine

import "github.com/unoverse/unoserver/internal/game/card"

// Player is one seat in a game: identity, hand, connection status, and the
// accumulated round score. The hand is mutated only through the Game.
type Player struct {
	ID        string
	Name      string
	Hand      []card.Card
	Connected bool
	Score     int
}

// NewPlayer creates a connected player with an empty hand.
//
// Precondition: id must be unique within the game; name is display-only.
func NewPlayer(id, name string) *Player {
	return &Player{ID: id, Name: name, Connected: true}
}

// AddCard appends a card to the hand.
func (p *Player) AddCard(c card.Card) {
	p.Hand = append(p.Hand, c)
}

// AddCards appends cards to the hand preserving order.
func (p *Player) AddCards(cards []card.Card) {
	p.Hand = append(p.Hand, cards...)
}

// RemoveCard removes the first card equal to c from the hand.
//
// Postcondition: Returns ErrCardNotFound if no equal card is held. Validated
// plays never hit this path; see engine.IsDefect.
func (p *Player) RemoveCard(c card.Card) error {
	for i, held := range p.Hand {
		if held == c {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return nil
		}
	}
	return ErrCardNotFound
}

// ValidPlays returns the cards in hand playable on top given the color
// override, in hand order.
func (p *Player) ValidPlays(top card.Card, override card.Color) []card.Card {
	var plays []card.Card
	for _, c := range p.Hand {
		if c.CanBePlayedOn(top, override) {
			plays = append(plays, c)
		}
	}
	return plays
}

// HasPlayableCard reports whether any held card is playable on top.
func (p *Player) HasPlayableCard(top card.Card, override card.Color) bool {
	for _, c := range p.Hand {
		if c.CanBePlayedOn(top, override) {
			return true
		}
	}
	return false
}

// CalculateScore sums the penalty value of every card still in hand.
func (p *Player) CalculateScore() int {
	total := 0
	for _, c := range p.Hand {
		total += c.ScoreValue()
	}
	return total
}

// UpdateScore accumulates the current hand penalty into the player's score.
// Called once per finished round for every non-winner.
func (p *Player) UpdateScore() {
	p.Score += p.CalculateScore()
}

// CardCount returns the number of cards in hand.
func (p *Player) CardCount() int {
	return len(p.Hand)
}
