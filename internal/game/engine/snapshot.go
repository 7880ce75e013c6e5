package engine

import (
	"fmt"

	"github.com/unoverse/unoserver/internal/game/card"
)

// PlayerInfo is the public view of one seat: no hand contents.
type PlayerInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CardCount   int    `json:"card_count"`
	IsConnected bool   `json:"is_connected"`
}

// Snapshot is the public game view broadcast to clients. YourHand is set only
// on views personalized for a single player.
type Snapshot struct {
	GameID             string       `json:"game_id"`
	State              State        `json:"state"`
	CurrentPlayerIndex int          `json:"current_player_index"`
	CurrentPlayerID    string       `json:"current_player_id"`
	DirectionClockwise bool         `json:"direction_clockwise"`
	CurrentColor       *card.Color  `json:"current_color"`
	TopCard            *card.Card   `json:"top_card"`
	DeckCount          int          `json:"deck_count"`
	Players            []PlayerInfo `json:"players"`
	YourHand           []card.Card  `json:"your_hand,omitempty"`
}

// Snapshot returns the public state: identifiers, turn position, direction,
// active color, discard top, deck count, and per-seat card counts. Hand
// contents are excluded.
func (g *Game) Snapshot() Snapshot {
	snap := Snapshot{
		GameID:             g.id,
		State:              g.state,
		CurrentPlayerIndex: g.current,
		DirectionClockwise: g.clockwise,
		DeckCount:          g.deck.Remaining(),
		Players:            make([]PlayerInfo, 0, len(g.players)),
	}
	if p := g.CurrentPlayer(); p != nil {
		snap.CurrentPlayerID = p.ID
	}
	if color := g.CurrentColor(); color != "" {
		snap.CurrentColor = &color
	}
	if top, ok := g.TopCard(); ok {
		snap.TopCard = &top
	}
	for _, p := range g.players {
		snap.Players = append(snap.Players, PlayerInfo{
			ID:          p.ID,
			Name:        p.Name,
			CardCount:   p.CardCount(),
			IsConnected: p.Connected,
		})
	}
	return snap
}

// PlayerView returns the public snapshot with the given player's own hand
// attached. An unknown player ID yields the plain public snapshot.
func (g *Game) PlayerView(playerID string) Snapshot {
	snap := g.Snapshot()
	if p := g.FindPlayer(playerID); p != nil {
		hand := make([]card.Card, len(p.Hand))
		copy(hand, p.Hand)
		snap.YourHand = hand
	}
	return snap
}

// PlayerState is the full per-seat state carried by FullState.
type PlayerState struct {
	PlayerID    string      `json:"player_id"`
	Name        string      `json:"name"`
	Hand        []card.Card `json:"hand"`
	IsConnected bool        `json:"is_connected"`
	Score       int         `json:"score"`
}

// FullState is the complete serializable game state, hands and deck order
// included. It exists for snapshot/restore round-trips; nothing in the server
// persists it.
type FullState struct {
	GameID             string        `json:"game_id"`
	Players            []PlayerState `json:"players"`
	Deck               []card.Card   `json:"deck"`
	DiscardPile        []card.Card   `json:"discard_pile"`
	CurrentPlayerIndex int           `json:"current_player_index"`
	DirectionClockwise bool          `json:"direction_clockwise"`
	State              State         `json:"state"`
	CurrentColor       *card.Color   `json:"current_color"`
}

// FullState captures the complete game state.
func (g *Game) FullState() FullState {
	fs := FullState{
		GameID:             g.id,
		Players:            make([]PlayerState, 0, len(g.players)),
		Deck:               g.deck.Cards(),
		DiscardPile:        append([]card.Card(nil), g.discard...),
		CurrentPlayerIndex: g.current,
		DirectionClockwise: g.clockwise,
		State:              g.state,
	}
	if g.override != "" {
		override := g.override
		fs.CurrentColor = &override
	}
	for _, p := range g.players {
		fs.Players = append(fs.Players, PlayerState{
			PlayerID:    p.ID,
			Name:        p.Name,
			Hand:        append([]card.Card(nil), p.Hand...),
			IsConnected: p.Connected,
			Score:       p.Score,
		})
	}
	return fs
}

// Restore rebuilds a game from a FullState.
//
// Postcondition: Returns a game whose FullState equals fs, or an error if fs
// contains an invalid card or state.
func Restore(fs FullState) (*Game, error) {
	switch fs.State {
	case StateWaiting, StatePlaying, StateFinished:
	default:
		return nil, fmt.Errorf("invalid game state %q", fs.State)
	}
	for _, c := range fs.Deck {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("invalid deck card: %w", err)
		}
	}
	for _, c := range fs.DiscardPile {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("invalid discard card: %w", err)
		}
	}

	g := NewGame(fs.GameID)
	g.deck = card.NewDeckFromCards(fs.Deck)
	g.discard = append([]card.Card(nil), fs.DiscardPile...)
	g.current = fs.CurrentPlayerIndex
	g.clockwise = fs.DirectionClockwise
	g.state = fs.State
	if fs.CurrentColor != nil {
		g.override = *fs.CurrentColor
	}
	for _, ps := range fs.Players {
		for _, c := range ps.Hand {
			if err := c.Validate(); err != nil {
				return nil, fmt.Errorf("invalid hand card for %s: %w", ps.PlayerID, err)
			}
		}
		p := NewPlayer(ps.PlayerID, ps.Name)
		p.Hand = append([]card.Card(nil), ps.Hand...)
		p.Connected = ps.IsConnected
		p.Score = ps.Score
		g.players = append(g.players, p)
	}
	if len(g.players) > 0 && (g.current < 0 || g.current >= len(g.players)) {
		return nil, fmt.Errorf("current player index %d out of range", g.current)
	}
	return g, nil
}
