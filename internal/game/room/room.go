// Package room couples one game instance to its chat history and emits the
// domain events the orchestrator fans out to connected clients.
package room

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unoverse/unoserver/internal/event"
	"github.com/unoverse/unoserver/internal/game/engine"
)

// ChatMessage is one entry in a room's append-only chat history. Timestamp is
// unix seconds with fractional precision, matching the wire contract.
type ChatMessage struct {
	PlayerID   string  `json:"player_id"`
	PlayerName string  `json:"player_name"`
	Content    string  `json:"content"`
	Timestamp  float64 `json:"timestamp"`
}

// Room is one lobby+game pairing. Game-engine failures of any kind are
// reported as boolean results; callers translate them to protocol errors.
//
// All mutating methods hold the room lock, so handlers running on separate
// connection goroutines never interleave inside the game engine.
type Room struct {
	mu       sync.Mutex
	id       string
	game     *engine.Game
	chat     []ChatMessage
	chatCap  int
	observer event.RoomObserver
	logger   *zap.Logger
}

// New creates a room wrapping a fresh waiting game. An empty id is replaced
// with a UUID, which also becomes the game id. chatCap bounds the retained
// chat history; 0 means unbounded.
//
// Precondition: observer and logger must be non-nil.
func New(id string, chatCap int, observer event.RoomObserver, logger *zap.Logger) *Room {
	if id == "" {
		id = uuid.NewString()
	}
	return &Room{
		id:       id,
		game:     engine.NewGame(id),
		chatCap:  chatCap,
		observer: observer,
		logger:   logger.With(zap.String("room_id", id)),
	}
}

// ID returns the room identifier.
func (r *Room) ID() string { return r.id }

// PlayerCount returns the number of seated players.
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.game.PlayerCount()
}

// IsFull reports whether the room has reached the seat limit.
func (r *Room) IsFull() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.game.PlayerCount() >= engine.MaxPlayers
}

// State returns the game lifecycle phase.
func (r *Room) State() engine.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.game.State()
}

// Snapshot returns the public game state.
func (r *Room) Snapshot() engine.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.game.Snapshot()
}

// PlayerView returns the public game state with playerID's own hand attached.
func (r *Room) PlayerView(playerID string) engine.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.game.PlayerView(playerID)
}

// ChatHistory returns a copy of the retained chat messages, oldest first.
func (r *Room) ChatHistory() []ChatMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ChatMessage(nil), r.chat...)
}

// AddPlayer seats a player and emits a room update on success. A full room
// or any rule violation reports false without surfacing the error.
func (r *Room) AddPlayer(p *engine.Player) bool {
	r.mu.Lock()
	err := r.game.AddPlayer(p)
	snap := r.game.Snapshot()
	r.mu.Unlock()

	if err != nil {
		r.logger.Debug("add player rejected",
			zap.String("player_id", p.ID),
			zap.Error(err),
		)
		return false
	}
	r.observer.OnRoomUpdated(event.RoomUpdated{RoomID: r.id, State: snap})
	return true
}

// RemovePlayer removes (or during play, disconnects) a seat. Emits a room
// closed event when the room is now empty, else a room update.
func (r *Room) RemovePlayer(playerID string) {
	r.mu.Lock()
	r.game.RemovePlayer(playerID)
	count := r.game.PlayerCount()
	snap := r.game.Snapshot()
	r.mu.Unlock()

	if count == 0 {
		r.observer.OnRoomClosed(event.RoomClosed{RoomID: r.id})
		return
	}
	r.observer.OnRoomUpdated(event.RoomUpdated{RoomID: r.id, State: snap})
}

// Reconnect marks a disconnected seat as connected again and emits a room
// update. Reports false if no seat has the given player ID.
func (r *Room) Reconnect(playerID string) bool {
	r.mu.Lock()
	err := r.game.ReconnectPlayer(playerID)
	snap := r.game.Snapshot()
	r.mu.Unlock()

	if err != nil {
		r.logger.Debug("reconnect rejected",
			zap.String("player_id", playerID),
			zap.Error(err),
		)
		return false
	}
	r.observer.OnRoomUpdated(event.RoomUpdated{RoomID: r.id, State: snap})
	return true
}

// HasDisconnectedPlayer reports whether playerID holds a seat that is
// currently marked disconnected.
func (r *Room) HasDisconnectedPlayer(playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.game.FindPlayer(playerID)
	return p != nil && !p.Connected
}

// StartGame deals and begins play, emitting a game started event on success.
// Reports false on any engine failure.
func (r *Room) StartGame() bool {
	r.mu.Lock()
	err := r.game.Start()
	snap := r.game.Snapshot()
	r.mu.Unlock()

	if err != nil {
		r.logger.Debug("start game rejected", zap.Error(err))
		return false
	}
	r.observer.OnGameStarted(event.GameStarted{RoomID: r.id, State: snap})
	return true
}

// HandleCommand applies a player command to the game. On success a game
// update is emitted; a finishing play additionally emits a game ended event
// first. Any engine failure reports false with no partial state applied.
//
// A CardNotFound failure means upstream validation is broken and is logged as
// a defect rather than an ordinary rejection.
func (r *Room) HandleCommand(playerID string, cmd engine.Command) bool {
	r.mu.Lock()
	var err error
	switch c := cmd.(type) {
	case engine.PlayCardCommand:
		err = r.game.PlayCard(playerID, c.Card, c.ChosenColor)
	case engine.DrawCardCommand:
		_, _, err = r.game.DrawCard(playerID)
	default:
		r.mu.Unlock()
		return false
	}
	finished := r.game.State() == engine.StateFinished
	var winnerID string
	if finished {
		if w := r.game.Winner(); w != nil {
			winnerID = w.ID
		}
	}
	snap := r.game.Snapshot()
	r.mu.Unlock()

	if err != nil {
		if engine.IsDefect(err) {
			r.logger.Error("game invariant violated",
				zap.String("player_id", playerID),
				zap.Error(err),
			)
		} else {
			r.logger.Debug("command rejected",
				zap.String("player_id", playerID),
				zap.Error(err),
			)
		}
		return false
	}

	if finished {
		r.observer.OnGameEnded(event.GameEnded{RoomID: r.id, WinnerID: winnerID, State: snap})
	}
	r.observer.OnGameUpdated(event.GameUpdated{RoomID: r.id, State: snap})
	return true
}

// AddChatMessage appends a chat message and emits it. History beyond the cap
// drops oldest entries first.
func (r *Room) AddChatMessage(playerID, playerName, content string) ChatMessage {
	msg := ChatMessage{
		PlayerID:   playerID,
		PlayerName: playerName,
		Content:    content,
		Timestamp:  float64(time.Now().UnixNano()) / float64(time.Second),
	}

	r.mu.Lock()
	r.chat = append(r.chat, msg)
	if r.chatCap > 0 && len(r.chat) > r.chatCap {
		r.chat = r.chat[len(r.chat)-r.chatCap:]
	}
	r.mu.Unlock()

	r.observer.OnChatPosted(event.ChatPosted{
		RoomID:     r.id,
		PlayerID:   msg.PlayerID,
		PlayerName: msg.PlayerName,
		Content:    msg.Content,
		Timestamp:  msg.Timestamp,
	})
	return msg
}
