// Package protocol defines the JSON message contract between clients and the
// server: the message type enumeration, client-to-server payloads with
// decode-time validation, and server-to-client payload constructors.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/unoverse/unoserver/internal/game/card"
	"github.com/unoverse/unoserver/internal/game/engine"
)

// Type is a wire message type tag.
type Type string

// Wire message types.
const (
	TypeAuthenticate  Type = "AUTHENTICATE"
	TypeAuthenticated Type = "AUTHENTICATED"

	TypeCreateRoom  Type = "CREATE_ROOM"
	TypeRoomCreated Type = "ROOM_CREATED"
	TypeJoinRoom    Type = "JOIN_ROOM"
	TypeRoomJoined  Type = "ROOM_JOINED"
	TypeLeaveRoom   Type = "LEAVE_ROOM"
	TypeRoomLeft    Type = "ROOM_LEFT"
	TypeRoomClosed  Type = "ROOM_CLOSED"

	TypeStartGame   Type = "START_GAME"
	TypeGameStarted Type = "GAME_STARTED"
	TypeGameState   Type = "GAME_STATE"
	TypePlayCard    Type = "PLAY_CARD"
	TypeDrawCard    Type = "DRAW_CARD"
	TypeGameEnd     Type = "GAME_END"

	TypeChatMessage Type = "CHAT_MESSAGE"

	TypePlayerDisconnected Type = "PLAYER_DISCONNECTED"
	TypePlayerReconnected  Type = "PLAYER_RECONNECTED"

	TypeError Type = "ERROR"

	TypeListRooms Type = "LIST_ROOMS"
	TypeRoomList  Type = "ROOM_LIST"
)

// Decode errors.
var (
	ErrMissingType = errors.New("message type not specified")
	ErrBadPayload  = errors.New("invalid message format")
)

// Message is a decoded client-to-server message. The set of implementations
// is closed; dispatch sites switch over it exhaustively.
type Message interface {
	// Validate reports a protocol error when a required field is absent or
	// malformed.
	Validate() error
}

// Authenticate binds a player identity to the connection.
type Authenticate struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
}

// Validate requires player_id and name.
func (m Authenticate) Validate() error {
	if m.PlayerID == "" || m.Name == "" {
		return errors.New("invalid authentication data")
	}
	return nil
}

// CreateRoom requests a new room with the sender as first player.
type CreateRoom struct {
	PlayerID string `json:"player_id"`
}

// Validate requires player_id.
func (m CreateRoom) Validate() error {
	if m.PlayerID == "" {
		return errors.New("player_id is required")
	}
	return nil
}

// JoinRoom requests a seat (or a reclaimed seat) in an existing room.
type JoinRoom struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
}

// Validate requires room_id and player_id.
func (m JoinRoom) Validate() error {
	if m.RoomID == "" || m.PlayerID == "" {
		return errors.New("room_id and player_id are required")
	}
	return nil
}

// LeaveRoom gives up the sender's seat.
type LeaveRoom struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
}

// Validate requires room_id and player_id.
func (m LeaveRoom) Validate() error {
	if m.RoomID == "" || m.PlayerID == "" {
		return errors.New("room_id and player_id are required")
	}
	return nil
}

// StartGame requests dealing and the first turn.
type StartGame struct {
	RoomID string `json:"room_id"`
}

// Validate requires room_id.
func (m StartGame) Validate() error {
	if m.RoomID == "" {
		return errors.New("room_id is required")
	}
	return nil
}

// PlayCard plays one card. ChosenColor accompanies wild cards.
type PlayCard struct {
	RoomID      string    `json:"room_id"`
	PlayerID    string    `json:"player_id"`
	Card        card.Card `json:"card"`
	ChosenColor string    `json:"chosen_color,omitempty"`
}

// Validate requires room_id, player_id, and a structurally valid card.
func (m PlayCard) Validate() error {
	if m.RoomID == "" || m.PlayerID == "" {
		return errors.New("room_id and player_id are required")
	}
	if err := m.Card.Validate(); err != nil {
		return fmt.Errorf("invalid card: %w", err)
	}
	return nil
}

// DrawCard draws one card and ends the turn.
type DrawCard struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
}

// Validate requires room_id and player_id.
func (m DrawCard) Validate() error {
	if m.RoomID == "" || m.PlayerID == "" {
		return errors.New("room_id and player_id are required")
	}
	return nil
}

// Chat posts a chat message to the sender's room.
type Chat struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
	Content  string `json:"content"`
}

// Validate requires room_id, player_id, and content.
func (m Chat) Validate() error {
	if m.RoomID == "" || m.PlayerID == "" || m.Content == "" {
		return errors.New("room_id, player_id, and content are required")
	}
	return nil
}

// ListRooms requests the lobby room list.
type ListRooms struct{}

// Validate always succeeds; LIST_ROOMS carries no fields.
func (ListRooms) Validate() error { return nil }

// Decode parses a wire frame into a typed client-to-server message. The
// returned message is not yet validated; callers decide whether a validation
// failure is fatal to the connection or answered with an ERROR reply.
//
// Postcondition: Returns ErrMissingType when the type field is absent, or an
// error wrapping ErrBadPayload for malformed JSON and unknown types.
func Decode(data []byte) (Message, error) {
	var env struct {
		Type Type `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if env.Type == "" {
		return nil, ErrMissingType
	}

	var msg Message
	switch env.Type {
	case TypeAuthenticate:
		msg = &Authenticate{}
	case TypeCreateRoom:
		msg = &CreateRoom{}
	case TypeJoinRoom:
		msg = &JoinRoom{}
	case TypeLeaveRoom:
		msg = &LeaveRoom{}
	case TypeStartGame:
		msg = &StartGame{}
	case TypePlayCard:
		msg = &PlayCard{}
	case TypeDrawCard:
		msg = &DrawCard{}
	case TypeChatMessage:
		msg = &Chat{}
	case TypeListRooms:
		msg = &ListRooms{}
	default:
		return nil, fmt.Errorf("%w: unknown message type %q", ErrBadPayload, env.Type)
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return deref(msg), nil
}

// deref returns the value behind the decoded pointer so dispatch sites can
// switch on value types.
func deref(m Message) Message {
	switch v := m.(type) {
	case *Authenticate:
		return *v
	case *CreateRoom:
		return *v
	case *JoinRoom:
		return *v
	case *LeaveRoom:
		return *v
	case *StartGame:
		return *v
	case *PlayCard:
		return *v
	case *DrawCard:
		return *v
	case *Chat:
		return *v
	case *ListRooms:
		return *v
	}
	return m
}

// Server-to-client payloads. Each constructor pins the type tag so replies
// can be marshalled and forwarded without further assembly.

// Authenticated confirms a successful AUTHENTICATE.
type Authenticated struct {
	Type     Type   `json:"type"`
	PlayerID string `json:"player_id"`
}

// NewAuthenticated builds an AUTHENTICATED reply.
func NewAuthenticated(playerID string) Authenticated {
	return Authenticated{Type: TypeAuthenticated, PlayerID: playerID}
}

// RoomState carries a room id plus a game snapshot; used by several replies.
type RoomState struct {
	Type   Type            `json:"type"`
	RoomID string          `json:"room_id"`
	State  engine.Snapshot `json:"state"`
}

// NewRoomCreated builds a ROOM_CREATED reply.
func NewRoomCreated(roomID string, state engine.Snapshot) RoomState {
	return RoomState{Type: TypeRoomCreated, RoomID: roomID, State: state}
}

// NewRoomJoined builds a ROOM_JOINED reply.
func NewRoomJoined(roomID string, state engine.Snapshot) RoomState {
	return RoomState{Type: TypeRoomJoined, RoomID: roomID, State: state}
}

// NewGameStarted builds a GAME_STARTED broadcast.
func NewGameStarted(roomID string, state engine.Snapshot) RoomState {
	return RoomState{Type: TypeGameStarted, RoomID: roomID, State: state}
}

// NewGameState builds a GAME_STATE message.
func NewGameState(roomID string, state engine.Snapshot) RoomState {
	return RoomState{Type: TypeGameState, RoomID: roomID, State: state}
}

// RoomRef carries only a room id.
type RoomRef struct {
	Type   Type   `json:"type"`
	RoomID string `json:"room_id"`
}

// NewRoomLeft builds a ROOM_LEFT reply.
func NewRoomLeft(roomID string) RoomRef {
	return RoomRef{Type: TypeRoomLeft, RoomID: roomID}
}

// NewRoomClosed builds a ROOM_CLOSED broadcast.
func NewRoomClosed(roomID string) RoomRef {
	return RoomRef{Type: TypeRoomClosed, RoomID: roomID}
}

// GameEnd reports a finished game.
type GameEnd struct {
	Type     Type            `json:"type"`
	RoomID   string          `json:"room_id"`
	WinnerID string          `json:"winner_id"`
	State    engine.Snapshot `json:"state"`
}

// NewGameEnd builds a GAME_END broadcast.
func NewGameEnd(roomID, winnerID string, state engine.Snapshot) GameEnd {
	return GameEnd{Type: TypeGameEnd, RoomID: roomID, WinnerID: winnerID, State: state}
}

// ChatBroadcast is the server-to-client form of CHAT_MESSAGE.
type ChatBroadcast struct {
	Type       Type    `json:"type"`
	RoomID     string  `json:"room_id"`
	PlayerID   string  `json:"player_id"`
	PlayerName string  `json:"player_name"`
	Content    string  `json:"content"`
	Timestamp  float64 `json:"timestamp"`
}

// NewChatBroadcast builds a CHAT_MESSAGE broadcast.
func NewChatBroadcast(roomID, playerID, playerName, content string, timestamp float64) ChatBroadcast {
	return ChatBroadcast{
		Type:       TypeChatMessage,
		RoomID:     roomID,
		PlayerID:   playerID,
		PlayerName: playerName,
		Content:    content,
		Timestamp:  timestamp,
	}
}

// PlayerConnection reports a player disconnecting from or reconnecting to a
// room.
type PlayerConnection struct {
	Type     Type   `json:"type"`
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
}

// NewPlayerDisconnected builds a PLAYER_DISCONNECTED broadcast.
func NewPlayerDisconnected(roomID, playerID string) PlayerConnection {
	return PlayerConnection{Type: TypePlayerDisconnected, RoomID: roomID, PlayerID: playerID}
}

// NewPlayerReconnected builds a PLAYER_RECONNECTED broadcast.
func NewPlayerReconnected(roomID, playerID string) PlayerConnection {
	return PlayerConnection{Type: TypePlayerReconnected, RoomID: roomID, PlayerID: playerID}
}

// ErrorReply reports a protocol error or rule violation to one sender.
type ErrorReply struct {
	Type    Type   `json:"type"`
	Message string `json:"message"`
}

// NewError builds an ERROR reply.
func NewError(message string) ErrorReply {
	return ErrorReply{Type: TypeError, Message: message}
}

// RoomInfo is one lobby listing entry.
type RoomInfo struct {
	RoomID      string       `json:"room_id"`
	PlayerCount int          `json:"player_count"`
	MaxPlayers  int          `json:"max_players"`
	State       engine.State `json:"state"`
}

// RoomList is the lobby listing reply.
type RoomList struct {
	Type  Type       `json:"type"`
	Rooms []RoomInfo `json:"rooms"`
}

// NewRoomList builds a ROOM_LIST reply.
func NewRoomList(rooms []RoomInfo) RoomList {
	return RoomList{Type: TypeRoomList, Rooms: rooms}
}
