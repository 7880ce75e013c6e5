package ws

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// SessionState is the lifecycle phase of one client connection.
type SessionState int

// Session states. Transitions only move forward except InRoom → Authenticated
// when the client leaves its room.
const (
	StateUnauthenticated SessionState = iota
	StateAuthenticated
	StateInRoom
)

// Client is the view of a session exposed to message handlers.
type Client interface {
	// ID is the connection identifier, unique per live connection.
	ID() string
	// PlayerID is the authenticated player identity; empty before AUTHENTICATE.
	PlayerID() string
	// Name is the authenticated display name.
	Name() string
}

// Session tracks one live connection: identity once authenticated, current
// room, and the outbound frame queue drained by the write pump.
type Session struct {
	id   string
	conn *websocket.Conn
	send chan []byte

	mu       sync.Mutex
	state    SessionState
	playerID string
	name     string
	roomID   string
	closed   bool
}

// newSession wraps an upgraded connection in an unauthenticated session.
func newSession(conn *websocket.Conn, sendBuffer int) *Session {
	return &Session{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
}

// ID returns the connection identifier.
func (s *Session) ID() string { return s.id }

// PlayerID returns the authenticated player ID, or empty.
func (s *Session) PlayerID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playerID
}

// Name returns the authenticated display name, or empty.
func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// RoomID returns the room this session is bound to, or empty.
func (s *Session) RoomID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roomID
}

// State returns the session lifecycle phase.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Authenticated reports whether the session passed AUTHENTICATE.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state != StateUnauthenticated
}

// authenticate transitions Unauthenticated → Authenticated, binding the
// player identity. Re-authentication just rebinds the identity.
func (s *Session) authenticate(playerID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playerID = playerID
	s.name = name
	if s.state == StateUnauthenticated {
		s.state = StateAuthenticated
	}
}

// enterRoom transitions Authenticated → InRoom.
func (s *Session) enterRoom(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roomID = roomID
	s.state = StateInRoom
}

// leaveRoom transitions InRoom → Authenticated.
func (s *Session) leaveRoom() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roomID = ""
	if s.state == StateInRoom {
		s.state = StateAuthenticated
	}
}

// push enqueues a marshalled frame for the write pump.
//
// Postcondition: Returns an error if the session is closed or the queue is
// full; the frame is dropped in both cases.
func (s *Session) push(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("session %s is closed", s.id)
	}
	select {
	case s.send <- data:
		return nil
	default:
		return fmt.Errorf("session %s send buffer full", s.id)
	}
}

// close marks the session closed and closes the send queue, stopping the
// write pump. Safe to call more than once.
func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.send)
	}
}
