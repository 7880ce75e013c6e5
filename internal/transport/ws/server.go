// Package ws is the websocket connection server: it upgrades HTTP requests,
// authenticates sessions, decodes inbound frames into protocol messages, and
// fans outbound messages out to rooms.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/unoverse/unoserver/internal/config"
	"github.com/unoverse/unoserver/internal/protocol"
)

// Handler consumes authenticated inbound messages and disconnects.
// HandleMessage is called once per decoded frame, in arrival order per
// connection; a handler therefore never sees two concurrent messages from
// the same client.
type Handler interface {
	HandleMessage(c Client, msg protocol.Message)
	HandleDisconnect(c Client)
}

// Server accepts websocket connections and maintains the connection and room
// membership registries. It implements server.Service.
type Server struct {
	cfg     config.ServerConfig
	wsCfg   config.WebsocketConfig
	handler Handler
	logger  *zap.Logger

	upgrader websocket.Upgrader
	httpSrv  *http.Server

	mu       sync.RWMutex
	sessions map[string]*Session            // connection id → session
	rooms    map[string]map[string]*Session // room id → connection id → session
}

// NewServer creates a websocket server. The handler is attached separately
// with SetHandler because the orchestrator needs the server first.
//
// Precondition: logger must be non-nil.
func NewServer(cfg config.ServerConfig, wsCfg config.WebsocketConfig, logger *zap.Logger) *Server {
	return &Server{
		cfg:    cfg,
		wsCfg:  wsCfg,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		sessions: make(map[string]*Session),
		rooms:    make(map[string]map[string]*Session),
	}
}

// SetHandler attaches the message handler. Must be called before Start.
//
// Precondition: h must be non-nil.
func (s *Server) SetHandler(h Handler) {
	s.handler = h
}

// Start listens for websocket upgrades on /ws and blocks until Stop.
//
// Postcondition: Returns nil after a graceful Stop, or the listener error.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWS)

	s.httpSrv = &http.Server{
		Addr:    s.cfg.Addr(),
		Handler: mux,
	}

	s.logger.Info("websocket server listening", zap.String("addr", s.cfg.Addr()))
	if err := s.httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the listener down and closes every live session.
func (s *Server) Stop() {
	if s.httpSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(ctx)
	}

	s.mu.Lock()
	for _, sess := range s.sessions {
		sess.close()
	}
	s.mu.Unlock()

	s.logger.Info("websocket server stopped")
}

// serveWS upgrades one HTTP request and runs its session to completion.
func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	sess := newSession(conn, s.wsCfg.SendBuffer)
	s.mu.Lock()
	s.sessions[sess.ID()] = sess
	s.mu.Unlock()

	s.logger.Info("client connected",
		zap.String("conn_id", sess.ID()),
		zap.String("remote_addr", r.RemoteAddr),
	)

	go s.writePump(sess)
	s.readPump(sess)

	s.disconnect(sess)
}

// readPump processes inbound frames until the connection drops. Each frame
// is handled to completion before the next is read.
func (s *Server) readPump(sess *Session) {
	conn := sess.conn
	conn.SetReadLimit(s.wsCfg.MaxMessageBytes)
	deadline := s.wsCfg.PingInterval + s.wsCfg.PongTimeout
	_ = conn.SetReadDeadline(time.Now().Add(deadline))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(deadline))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("read failed",
					zap.String("conn_id", sess.ID()),
					zap.Error(err),
				)
			}
			return
		}
		s.handleFrame(sess, data)
	}
}

// handleFrame decodes one frame, enforces authentication, and dispatches.
func (s *Server) handleFrame(sess *Session, data []byte) {
	msg, err := protocol.Decode(data)
	if err != nil {
		if errors.Is(err, protocol.ErrMissingType) {
			s.sendTo(sess, protocol.NewError("Message type not specified"))
		} else {
			s.sendTo(sess, protocol.NewError("Invalid message format"))
		}
		return
	}

	if auth, ok := msg.(protocol.Authenticate); ok {
		if err := auth.Validate(); err != nil {
			s.sendTo(sess, protocol.NewError("Invalid authentication data"))
			return
		}
		sess.authenticate(auth.PlayerID, auth.Name)
		s.logger.Info("client authenticated",
			zap.String("conn_id", sess.ID()),
			zap.String("player_id", auth.PlayerID),
		)
		s.sendTo(sess, protocol.NewAuthenticated(auth.PlayerID))
		return
	}

	if !sess.Authenticated() {
		s.sendTo(sess, protocol.NewError("Authentication required"))
		return
	}

	s.handler.HandleMessage(sess, msg)
}

// writePump drains the session send queue and keeps the connection alive
// with pings. Exits when the queue closes or a write fails.
func (s *Server) writePump(sess *Session) {
	ticker := time.NewTicker(s.wsCfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = sess.conn.Close()
	}()

	for {
		select {
		case data, ok := <-sess.send:
			_ = sess.conn.SetWriteDeadline(time.Now().Add(s.wsCfg.WriteTimeout))
			if !ok {
				_ = sess.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := sess.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = sess.conn.SetWriteDeadline(time.Now().Add(s.wsCfg.WriteTimeout))
			if err := sess.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// disconnect tears a session down: registry removal, room removal, handler
// notification, queue close.
func (s *Server) disconnect(sess *Session) {
	s.mu.Lock()
	delete(s.sessions, sess.ID())
	s.mu.Unlock()
	s.Leave(sess.ID())

	if s.handler != nil {
		s.handler.HandleDisconnect(sess)
	}
	sess.close()

	s.logger.Info("client disconnected",
		zap.String("conn_id", sess.ID()),
		zap.String("player_id", sess.PlayerID()),
	)
}

// Send marshals msg and queues it for one connection. A full queue or closed
// session drops the frame; the stalled client is detected by the transport
// keep-alive, not here.
func (s *Server) Send(connID string, msg any) {
	s.mu.RLock()
	sess, ok := s.sessions[connID]
	s.mu.RUnlock()
	if !ok {
		return
	}
	s.sendTo(sess, msg)
}

func (s *Server) sendTo(sess *Session, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("marshalling outbound message", zap.Error(err))
		return
	}
	if err := sess.push(data); err != nil {
		s.logger.Warn("dropping outbound message",
			zap.String("conn_id", sess.ID()),
			zap.Error(err),
		)
	}
}

// Broadcast sends msg to every connection in a room. Send failures are
// isolated per member and never abort delivery to the rest.
func (s *Server) Broadcast(roomID string, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("marshalling broadcast", zap.Error(err))
		return
	}

	s.mu.RLock()
	members := make([]*Session, 0, len(s.rooms[roomID]))
	for _, sess := range s.rooms[roomID] {
		members = append(members, sess)
	}
	s.mu.RUnlock()

	for _, sess := range members {
		if err := sess.push(data); err != nil {
			s.logger.Warn("dropping broadcast frame",
				zap.String("conn_id", sess.ID()),
				zap.String("room_id", roomID),
				zap.Error(err),
			)
		}
	}
}

// Join binds a connection to a room in the membership registry.
func (s *Server) Join(connID, roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[connID]
	if !ok {
		return
	}
	if s.rooms[roomID] == nil {
		s.rooms[roomID] = make(map[string]*Session)
	}
	s.rooms[roomID][connID] = sess
	sess.enterRoom(roomID)
}

// Leave removes a connection from its room, dropping the room entry when it
// empties.
func (s *Server) Leave(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[connID]
	if !ok {
		// Session already unregistered (disconnect path); scan rooms.
		for roomID, members := range s.rooms {
			if member, found := members[connID]; found {
				delete(members, connID)
				member.leaveRoom()
				if len(members) == 0 {
					delete(s.rooms, roomID)
				}
				return
			}
		}
		return
	}
	roomID := sess.RoomID()
	if roomID == "" {
		return
	}
	if members, ok := s.rooms[roomID]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(s.rooms, roomID)
		}
	}
	sess.leaveRoom()
}

// Members returns the sessions currently bound to a room.
func (s *Server) Members(roomID string) []Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	members := make([]Client, 0, len(s.rooms[roomID]))
	for _, sess := range s.rooms[roomID] {
		members = append(members, sess)
	}
	return members
}

// SessionCount returns the number of live connections.
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
