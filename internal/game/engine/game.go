// Package engine implements the authoritative UNO game state machine: seat
// management, dealing, turn order, card legality, and round scoring.
//
// A Game is not safe for concurrent use; the owning room serializes access.
package engine

import (
	"github.com/google/uuid"

	"github.com/unoverse/unoserver/internal/game/card"
)

// State is a game lifecycle phase.
type State string

// Game states. FINISHED is terminal.
const (
	StateWaiting  State = "WAITING"
	StatePlaying  State = "PLAYING"
	StateFinished State = "FINISHED"
)

// Player count and dealing constants.
const (
	MinPlayers      = 2
	MaxPlayers      = 4
	InitialHandSize = 7
)

// Game is one UNO game. Turn order is the player list order walked in the
// current direction.
//
// Invariant: current is a valid index whenever players is non-empty.
// Invariant: a non-empty discard pile implies state != StateWaiting.
type Game struct {
	id        string
	players   []*Player
	deck      *card.Deck
	discard   []card.Card
	current   int
	clockwise bool
	state     State
	// override is the color chosen by the last wild play. Empty means the
	// discard top's own color governs legality.
	override card.Color
}

// NewGame creates a game in StateWaiting with a full unshuffled deck. An
// empty id is replaced with a fresh UUID.
func NewGame(id string) *Game {
	if id == "" {
		id = uuid.NewString()
	}
	return &Game{
		id:        id,
		deck:      card.NewDeck(),
		clockwise: true,
		state:     StateWaiting,
	}
}

// ID returns the game identifier.
func (g *Game) ID() string { return g.id }

// State returns the current lifecycle phase.
func (g *Game) State() State { return g.state }

// PlayerCount returns the number of seated players, connected or not.
func (g *Game) PlayerCount() int { return len(g.players) }

// Players returns the seated players in join order. Callers must not mutate
// hands; all mutation goes through the engine.
func (g *Game) Players() []*Player { return g.players }

// CurrentPlayer returns the player whose turn it is, or nil before anyone
// has joined.
func (g *Game) CurrentPlayer() *Player {
	if len(g.players) == 0 {
		return nil
	}
	return g.players[g.current]
}

// CurrentColor returns the color governing legality: the wild-chosen override
// if set, else the discard top's color. Empty before the first card is dealt.
func (g *Game) CurrentColor() card.Color {
	if len(g.discard) == 0 {
		return ""
	}
	if g.override != "" {
		return g.override
	}
	return g.discard[len(g.discard)-1].Color
}

// TopCard returns the top of the discard pile.
//
// Postcondition: Returns (card, true), or (zero, false) when nothing has been
// played yet.
func (g *Game) TopCard() (card.Card, bool) {
	if len(g.discard) == 0 {
		return card.Card{}, false
	}
	return g.discard[len(g.discard)-1], true
}

// AddPlayer seats a player.
//
// Postcondition: Returns ErrNotInProgress if the game already started,
// ErrRoomFull at MaxPlayers seats, or ErrDuplicatePlayer on an ID collision.
func (g *Game) AddPlayer(p *Player) error {
	if g.state != StateWaiting {
		return ErrNotInProgress
	}
	if len(g.players) >= MaxPlayers {
		return ErrRoomFull
	}
	for _, seated := range g.players {
		if seated.ID == p.ID {
			return ErrDuplicatePlayer
		}
	}
	g.players = append(g.players, p)
	return nil
}

// RemovePlayer removes a seat, or during play only marks the player
// disconnected so the seat survives for reconnection.
func (g *Game) RemovePlayer(playerID string) {
	if g.state == StatePlaying {
		for _, p := range g.players {
			if p.ID == playerID {
				p.Connected = false
				return
			}
		}
		return
	}
	for i, p := range g.players {
		if p.ID == playerID {
			g.players = append(g.players[:i], g.players[i+1:]...)
			if g.current >= len(g.players) && len(g.players) > 0 {
				g.current = 0
			}
			return
		}
	}
}

// ReconnectPlayer marks a disconnected seat as connected again.
//
// Postcondition: Returns ErrUnknownPlayer if no seat has the given ID.
func (g *Game) ReconnectPlayer(playerID string) error {
	for _, p := range g.players {
		if p.ID == playerID {
			p.Connected = true
			return nil
		}
	}
	return ErrUnknownPlayer
}

// FindPlayer returns the seated player with the given ID, or nil.
func (g *Game) FindPlayer(playerID string) *Player {
	for _, p := range g.players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// Start shuffles, deals InitialHandSize cards to each player in join order,
// seeds the discard pile with a non-wild card, and begins play with the first
// seat, clockwise. Wild cards drawn while seeding are returned to the deck,
// which is reshuffled before retrying.
//
// Postcondition: Returns ErrNotInProgress unless the game was waiting, or
// ErrNotEnoughPlayers below MinPlayers. On success state == StatePlaying.
func (g *Game) Start() error {
	if g.state != StateWaiting {
		return ErrNotInProgress
	}
	if len(g.players) < MinPlayers {
		return ErrNotEnoughPlayers
	}

	g.deck.Shuffle()
	for _, p := range g.players {
		p.AddCards(g.deck.DrawN(InitialHandSize))
	}

	for {
		first, ok := g.deck.Draw()
		if !ok {
			break
		}
		if first.IsWild() {
			g.deck.Add(first)
			g.deck.Shuffle()
			continue
		}
		g.discard = append(g.discard, first)
		break
	}

	g.state = StatePlaying
	g.current = 0
	g.clockwise = true
	g.override = ""
	return nil
}

// IsValidPlay reports whether c is a legal follow-up to the discard top under
// the active color override. Any card is legal on an empty discard pile.
func (g *Game) IsValidPlay(c card.Card) bool {
	top, ok := g.TopCard()
	if !ok {
		return true
	}
	return c.CanBePlayedOn(top, g.override)
}

// PlayCard plays c from playerID's hand and applies its effect. chosenColor
// is required for wild cards and ignored otherwise.
//
// All validation happens before any mutation: a failed play leaves the hand,
// discard pile, and turn untouched. The game finishes the instant the acting
// player's hand empties; pending draw effects still apply first.
//
// Postcondition: Returns nil on success, a rule-violation Error otherwise,
// or ErrCardNotFound (defect-class) if validation passed but the hand did not
// contain the card.
func (g *Game) PlayCard(playerID string, c card.Card, chosenColor card.Color) error {
	if g.state != StatePlaying {
		return ErrNotInProgress
	}
	player := g.CurrentPlayer()
	if player.ID != playerID {
		return ErrNotYourTurn
	}
	if !g.IsValidPlay(c) {
		return ErrInvalidPlay
	}
	if c.IsWild() && chosenColor == "" {
		return ErrMissingColor
	}

	if err := player.RemoveCard(c); err != nil {
		return err
	}
	g.discard = append(g.discard, c)
	if !c.IsWild() {
		g.override = ""
	}

	advanced := false
	switch c.Kind {
	case card.Skip:
		g.advanceTurn()
		g.advanceTurn()
		advanced = true
	case card.Reverse:
		g.clockwise = !g.clockwise
		// With two players a reverse comes straight back around, so it
		// behaves as a skip.
		if len(g.players) == 2 {
			g.advanceTurn()
			g.advanceTurn()
			advanced = true
		}
	case card.DrawTwo:
		g.nextPlayer().AddCards(g.deck.DrawN(2))
		g.advanceTurn()
		g.advanceTurn()
		advanced = true
	case card.WildDrawFour:
		g.override = chosenColor
		g.nextPlayer().AddCards(g.deck.DrawN(4))
		g.advanceTurn()
		g.advanceTurn()
		advanced = true
	case card.Wild:
		g.override = chosenColor
	}

	if player.CardCount() == 0 {
		g.finish()
		return nil
	}
	if !advanced {
		g.advanceTurn()
	}
	return nil
}

// DrawCard draws one card for playerID and unconditionally ends their turn.
// When the deck is exhausted, all discards except the top card are reshuffled
// into a fresh deck and the draw is retried once.
//
// Postcondition: Returns the drawn card and true, or false when even the
// recycled deck was empty. The turn advances in every successful call.
func (g *Game) DrawCard(playerID string) (card.Card, bool, error) {
	if g.state != StatePlaying {
		return card.Card{}, false, ErrNotInProgress
	}
	player := g.CurrentPlayer()
	if player.ID != playerID {
		return card.Card{}, false, ErrNotYourTurn
	}

	drawn, ok := g.deck.Draw()
	if !ok && len(g.discard) > 1 {
		g.recycleDiscard()
		drawn, ok = g.deck.Draw()
	}
	if ok {
		player.AddCard(drawn)
	}

	g.advanceTurn()
	return drawn, ok, nil
}

// Winner returns the first zero-card player once the game is finished.
//
// Postcondition: Returns nil unless state == StateFinished.
func (g *Game) Winner() *Player {
	if g.state != StateFinished {
		return nil
	}
	for _, p := range g.players {
		if p.CardCount() == 0 {
			return p
		}
	}
	return nil
}

// finish ends the game and settles round scoring: every player still holding
// cards accumulates their hand penalty.
func (g *Game) finish() {
	g.state = StateFinished
	for _, p := range g.players {
		if p.CardCount() > 0 {
			p.UpdateScore()
		}
	}
}

// recycleDiscard rebuilds the deck from every discard except the top card and
// shuffles it.
func (g *Game) recycleDiscard() {
	top := g.discard[len(g.discard)-1]
	g.deck.MergePile(g.discard[:len(g.discard)-1], true)
	g.discard = []card.Card{top}
}

func (g *Game) advanceTurn() {
	if g.clockwise {
		g.current = (g.current + 1) % len(g.players)
	} else {
		g.current = (g.current - 1 + len(g.players)) % len(g.players)
	}
}

// nextPlayer returns the seat the turn would pass to, before advancing.
func (g *Game) nextPlayer() *Player {
	if g.clockwise {
		return g.players[(g.current+1)%len(g.players)]
	}
	return g.players[(g.current-1+len(g.players))%len(g.players)]
}
