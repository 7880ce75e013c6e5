package card

import "math/rand"

// DeckSize is the number of cards in a freshly built UNO deck.
const DeckSize = 108

// Deck is an ordered draw pile. Draw removes from the end (LIFO). A Deck is
// owned by exactly one game and is not safe for concurrent use.
type Deck struct {
	cards []Card
}

// NewDeck builds the standard 108-card deck in canonical order: per color one
// zero, two each of 1-9, two each of SKIP/REVERSE/DRAW_TWO, then four WILD
// and four WILD_DRAW_FOUR.
//
// Postcondition: The returned deck holds exactly DeckSize cards.
func NewDeck() *Deck {
	cards := make([]Card, 0, DeckSize)
	for _, color := range Colors {
		cards = append(cards, Card{Kind: Number, Color: color, Value: 0})
		for value := 1; value <= 9; value++ {
			c := Card{Kind: Number, Color: color, Value: value}
			cards = append(cards, c, c)
		}
		for _, kind := range []Kind{Skip, Reverse, DrawTwo} {
			c := Card{Kind: kind, Color: color, Value: NoValue}
			cards = append(cards, c, c)
		}
	}
	for i := 0; i < 4; i++ {
		cards = append(cards,
			Card{Kind: Wild, Color: ColorWild, Value: NoValue},
			Card{Kind: WildDrawFour, Color: ColorWild, Value: NoValue},
		)
	}
	return &Deck{cards: cards}
}

// NewDeckFromCards builds a deck holding exactly the given cards in order.
// Used by snapshot restore and tests.
func NewDeckFromCards(cards []Card) *Deck {
	d := &Deck{cards: make([]Card, len(cards))}
	copy(d.cards, cards)
	return d
}

// Shuffle permutes the deck uniformly at random.
func (d *Deck) Shuffle() {
	rand.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Draw removes and returns the top card.
//
// Postcondition: Returns (card, true), or (zero, false) when the deck is
// exhausted. Reshuffling the discard pile back in is the caller's concern.
func (d *Deck) Draw() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	c := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return c, true
}

// DrawN draws up to n cards, stopping early if the deck runs out.
//
// Postcondition: len(result) <= n.
func (d *Deck) DrawN(n int) []Card {
	drawn := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		c, ok := d.Draw()
		if !ok {
			break
		}
		drawn = append(drawn, c)
	}
	return drawn
}

// Add returns a single card to the top of the deck.
func (d *Deck) Add(c Card) {
	d.cards = append(d.cards, c)
}

// MergePile folds a recycled pile into the deck, shuffling afterwards unless
// shuffle is false.
func (d *Deck) MergePile(cards []Card, shuffle bool) {
	d.cards = append(d.cards, cards...)
	if shuffle {
		d.Shuffle()
	}
}

// Remaining returns the number of cards left to draw.
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// Cards returns a copy of the deck contents in order, bottom first.
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}
