// Package gameserver wires inbound protocol messages to room operations and
// translates room domain events into outbound broadcasts. It owns the room
// registry and the player-to-room map.
package gameserver

import (
	"sync"

	"go.uber.org/zap"

	"github.com/unoverse/unoserver/internal/config"
	"github.com/unoverse/unoserver/internal/event"
	"github.com/unoverse/unoserver/internal/game/room"
	"github.com/unoverse/unoserver/internal/protocol"
	"github.com/unoverse/unoserver/internal/transport/ws"
)

// Transport is the outbound side of the connection server. *ws.Server
// implements it; tests substitute fakes.
type Transport interface {
	// Send queues a message for one connection; failures are swallowed.
	Send(connID string, msg any)
	// Broadcast queues a message for every connection in a room; a failure
	// for one member never blocks the others.
	Broadcast(roomID string, msg any)
	// Join binds a connection to a room.
	Join(connID, roomID string)
	// Leave unbinds a connection from its room.
	Leave(connID string)
	// Members lists the connections bound to a room.
	Members(roomID string) []ws.Client
}

// Orchestrator routes messages between connections and rooms. It implements
// ws.Handler for inbound traffic and event.RoomObserver for outbound fan-out.
type Orchestrator struct {
	cfg       config.GameConfig
	transport Transport
	events    *event.Fanout
	logger    *zap.Logger

	mu          sync.RWMutex
	rooms       map[string]*room.Room
	playerRooms map[string]string // player id → room id
}

// New creates an orchestrator subscribed to its own room events.
//
// Precondition: transport and logger must be non-nil.
func New(cfg config.GameConfig, transport Transport, logger *zap.Logger) *Orchestrator {
	o := &Orchestrator{
		cfg:         cfg,
		transport:   transport,
		events:      event.NewFanout(),
		logger:      logger,
		rooms:       make(map[string]*room.Room),
		playerRooms: make(map[string]string),
	}
	o.events.Register(o)
	return o
}

// RoomCount returns the number of active rooms.
func (o *Orchestrator) RoomCount() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.rooms)
}

// Room returns the active room with the given id.
func (o *Orchestrator) Room(roomID string) (*room.Room, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	r, ok := o.rooms[roomID]
	return r, ok
}

// PlayerRoom returns the room id a player is mapped to.
func (o *Orchestrator) PlayerRoom(playerID string) (string, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	roomID, ok := o.playerRooms[playerID]
	return roomID, ok
}

// HandleDisconnect removes a dropped connection's player from their room and
// tells the remaining members. A seat that survives as disconnected (game in
// progress) keeps its player-to-room mapping for reconnection; otherwise the
// mapping is purged. Room-closed cleanup rides the normal event path.
func (o *Orchestrator) HandleDisconnect(c ws.Client) {
	playerID := c.PlayerID()
	if playerID == "" {
		return
	}

	o.mu.RLock()
	roomID, ok := o.playerRooms[playerID]
	r := o.rooms[roomID]
	o.mu.RUnlock()
	if !ok || r == nil {
		return
	}

	r.RemovePlayer(playerID)
	o.transport.Broadcast(roomID, protocol.NewPlayerDisconnected(roomID, playerID))

	if !r.HasDisconnectedPlayer(playerID) {
		o.mu.Lock()
		delete(o.playerRooms, playerID)
		o.mu.Unlock()
	}

	o.logger.Info("player disconnected from room",
		zap.String("player_id", playerID),
		zap.String("room_id", roomID),
	)
}

// OnRoomUpdated broadcasts the public state after a membership change.
func (o *Orchestrator) OnRoomUpdated(e event.RoomUpdated) {
	o.transport.Broadcast(e.RoomID, protocol.NewGameState(e.RoomID, e.State))
}

// OnGameStarted sends each member a personalized GAME_STARTED carrying their
// own hand.
func (o *Orchestrator) OnGameStarted(e event.GameStarted) {
	o.sendPersonalized(e.RoomID, protocol.TypeGameStarted)
}

// OnGameUpdated sends each member a personalized GAME_STATE carrying their
// own hand.
func (o *Orchestrator) OnGameUpdated(e event.GameUpdated) {
	o.sendPersonalized(e.RoomID, protocol.TypeGameState)
}

// OnGameEnded broadcasts the winner and final public state.
func (o *Orchestrator) OnGameEnded(e event.GameEnded) {
	o.transport.Broadcast(e.RoomID, protocol.NewGameEnd(e.RoomID, e.WinnerID, e.State))
}

// OnChatPosted broadcasts the chat message verbatim.
func (o *Orchestrator) OnChatPosted(e event.ChatPosted) {
	o.transport.Broadcast(e.RoomID, protocol.NewChatBroadcast(
		e.RoomID, e.PlayerID, e.PlayerName, e.Content, e.Timestamp,
	))
}

// OnRoomClosed broadcasts closure, then purges the room and every player
// mapping pointing at it.
func (o *Orchestrator) OnRoomClosed(e event.RoomClosed) {
	o.transport.Broadcast(e.RoomID, protocol.NewRoomClosed(e.RoomID))

	o.mu.Lock()
	delete(o.rooms, e.RoomID)
	for playerID, roomID := range o.playerRooms {
		if roomID == e.RoomID {
			delete(o.playerRooms, playerID)
		}
	}
	o.mu.Unlock()

	o.logger.Info("room closed", zap.String("room_id", e.RoomID))
}

// sendPersonalized delivers the given state message type to every member of
// a room with that member's own hand attached.
func (o *Orchestrator) sendPersonalized(roomID string, msgType protocol.Type) {
	o.mu.RLock()
	r := o.rooms[roomID]
	o.mu.RUnlock()
	if r == nil {
		return
	}

	for _, member := range o.transport.Members(roomID) {
		view := r.PlayerView(member.PlayerID())
		msg := protocol.RoomState{Type: msgType, RoomID: roomID, State: view}
		o.transport.Send(member.ID(), msg)
	}
}
