// Package card provides the UNO card value types and the draw deck.
package card

import "fmt"

// Kind identifies the rule behavior of a card.
type Kind string

// Card kinds.
const (
	Number       Kind = "NUMBER"
	Skip         Kind = "SKIP"
	Reverse      Kind = "REVERSE"
	DrawTwo      Kind = "DRAW_TWO"
	Wild         Kind = "WILD"
	WildDrawFour Kind = "WILD_DRAW_FOUR"
)

// Color is a card color. ColorWild marks colorless (wild) cards.
type Color string

// Card colors.
const (
	Red       Color = "RED"
	Blue      Color = "BLUE"
	Green     Color = "GREEN"
	Yellow    Color = "YELLOW"
	ColorWild Color = "WILD"
)

// Colors lists the four playable colors in deck-build order.
var Colors = []Color{Red, Blue, Green, Yellow}

// NoValue is the sentinel Value carried by every non-number card.
const NoValue = -1

// Card is an immutable UNO card value.
//
// Invariant: wild kinds have Color == ColorWild and Value == NoValue; Number
// cards have a playable color and Value in [0, 9]; other action kinds have a
// playable color and Value == NoValue. New enforces this.
type Card struct {
	Kind  Kind  `json:"type"`
	Color Color `json:"color"`
	Value int   `json:"value"`
}

// New constructs a Card, rejecting any combination that violates the card
// invariants.
//
// Postcondition: Returns a valid Card or a non-nil error.
func New(kind Kind, color Color, value int) (Card, error) {
	c := Card{Kind: kind, Color: color, Value: value}
	if err := c.Validate(); err != nil {
		return Card{}, err
	}
	return c, nil
}

// MustNew constructs a Card and panics on invariant violation. Intended for
// tests and deck construction with known-good inputs.
func MustNew(kind Kind, color Color, value int) Card {
	c, err := New(kind, color, value)
	if err != nil {
		panic("card: " + err.Error())
	}
	return c
}

// Validate checks the kind/color/value invariants.
//
// Postcondition: Returns nil iff the card is a legal UNO card.
func (c Card) Validate() error {
	switch c.Kind {
	case Wild, WildDrawFour:
		if c.Color != ColorWild {
			return fmt.Errorf("wild card must have color %s, got %s", ColorWild, c.Color)
		}
		if c.Value != NoValue {
			return fmt.Errorf("wild card must have value %d, got %d", NoValue, c.Value)
		}
	case Number:
		if !playableColor(c.Color) {
			return fmt.Errorf("number card has invalid color %q", c.Color)
		}
		if c.Value < 0 || c.Value > 9 {
			return fmt.Errorf("number card must have value 0-9, got %d", c.Value)
		}
	case Skip, Reverse, DrawTwo:
		if !playableColor(c.Color) {
			return fmt.Errorf("%s card has invalid color %q", c.Kind, c.Color)
		}
		if c.Value != NoValue {
			return fmt.Errorf("%s card must have value %d, got %d", c.Kind, NoValue, c.Value)
		}
	default:
		return fmt.Errorf("unknown card kind %q", c.Kind)
	}
	return nil
}

// IsWild reports whether the card is colorless and requires a chosen color
// when played.
func (c Card) IsWild() bool {
	return c.Kind == Wild || c.Kind == WildDrawFour
}

// CanBePlayedOn reports whether the card is a legal follow-up to top.
// A non-empty override is the color chosen by a preceding wild play and takes
// precedence over top's own color.
//
// Precondition: top must be a valid card.
func (c Card) CanBePlayedOn(top Card, override Color) bool {
	if c.IsWild() {
		return true
	}
	if override != "" {
		return c.Color == override
	}
	if c.Color == top.Color {
		return true
	}
	if c.Kind == top.Kind {
		if c.Kind == Number {
			return c.Value == top.Value
		}
		return true
	}
	return false
}

// ScoreValue returns the end-of-round penalty value of the card: face value
// for numbers, 50 for wilds, 20 for the remaining action cards.
func (c Card) ScoreValue() int {
	switch c.Kind {
	case Number:
		return c.Value
	case Wild, WildDrawFour:
		return 50
	default:
		return 20
	}
}

// String returns a short human-readable form, e.g. "RED 5" or "WILD_DRAW_FOUR".
func (c Card) String() string {
	if c.Kind == Number {
		return fmt.Sprintf("%s %d", c.Color, c.Value)
	}
	if c.IsWild() {
		return string(c.Kind)
	}
	return fmt.Sprintf("%s %s", c.Color, c.Kind)
}

// ParseColor validates a wire color name against the four playable colors.
//
// Postcondition: Returns a playable Color or an error; ColorWild is rejected.
func ParseColor(name string) (Color, error) {
	c := Color(name)
	if !playableColor(c) {
		return "", fmt.Errorf("invalid color %q", name)
	}
	return c, nil
}

func playableColor(c Color) bool {
	switch c {
	case Red, Blue, Green, Yellow:
		return true
	}
	return false
}
