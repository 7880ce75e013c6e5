// Package event defines the typed domain events emitted by rooms and the
// observer fanout that decouples game logic from network delivery.
package event

import "github.com/unoverse/unoserver/internal/game/engine"

// RoomUpdated reports a membership or pre-game state change.
type RoomUpdated struct {
	RoomID string
	State  engine.Snapshot
}

// GameStarted reports a successful game start.
type GameStarted struct {
	RoomID string
	State  engine.Snapshot
}

// GameUpdated reports an in-game state change after a successful action.
type GameUpdated struct {
	RoomID string
	State  engine.Snapshot
}

// GameEnded reports a finished game and its winner.
type GameEnded struct {
	RoomID   string
	WinnerID string
	State    engine.Snapshot
}

// ChatPosted reports a chat message appended to a room's history.
type ChatPosted struct {
	RoomID     string
	PlayerID   string
	PlayerName string
	Content    string
	Timestamp  float64
}

// RoomClosed reports that a room lost its last player.
type RoomClosed struct {
	RoomID string
}

// RoomObserver receives every room domain event. One method per event keeps
// registration explicit; a misspelled subscription cannot silently no-op.
type RoomObserver interface {
	OnRoomUpdated(RoomUpdated)
	OnGameStarted(GameStarted)
	OnGameUpdated(GameUpdated)
	OnGameEnded(GameEnded)
	OnChatPosted(ChatPosted)
	OnRoomClosed(RoomClosed)
}
