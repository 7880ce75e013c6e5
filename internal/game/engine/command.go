package engine

import "github.com/unoverse/unoserver/internal/game/card"

// Command is a player action applied to a game through the room layer. The
// set is closed: PlayCardCommand and DrawCardCommand are the only variants,
// and dispatch sites switch over them exhaustively.
type Command interface {
	isCommand()
}

// PlayCardCommand plays a card from the acting player's hand. ChosenColor is
// required for wild cards and must be empty otherwise.
type PlayCardCommand struct {
	Card        card.Card
	ChosenColor card.Color
}

func (PlayCardCommand) isCommand() {}

// DrawCardCommand draws one card from the deck and ends the turn.
type DrawCardCommand struct{}

func (DrawCardCommand) isCommand() {}
