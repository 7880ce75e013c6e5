package gameserver

import (
	"go.uber.org/zap"

	"github.com/unoverse/unoserver/internal/game/card"
	"github.com/unoverse/unoserver/internal/game/engine"
	"github.com/unoverse/unoserver/internal/game/room"
	"github.com/unoverse/unoserver/internal/protocol"
	"github.com/unoverse/unoserver/internal/transport/ws"
)

// HandleMessage dispatches one authenticated inbound message. The message
// set is closed; every variant is handled here. Failures are answered with
// an ERROR reply to the sender only — nothing is broadcast on failure.
func (o *Orchestrator) HandleMessage(c ws.Client, msg protocol.Message) {
	if err := msg.Validate(); err != nil {
		o.transport.Send(c.ID(), protocol.NewError(err.Error()))
		return
	}

	switch m := msg.(type) {
	case protocol.CreateRoom:
		o.handleCreateRoom(c, m)
	case protocol.JoinRoom:
		o.handleJoinRoom(c, m)
	case protocol.LeaveRoom:
		o.handleLeaveRoom(c, m)
	case protocol.StartGame:
		o.handleStartGame(c, m)
	case protocol.PlayCard:
		o.handlePlayCard(c, m)
	case protocol.DrawCard:
		o.handleDrawCard(c, m)
	case protocol.Chat:
		o.handleChat(c, m)
	case protocol.ListRooms:
		o.handleListRooms(c)
	case protocol.Authenticate:
		// Authentication is owned by the connection layer; an authenticated
		// re-AUTHENTICATE never reaches this switch.
	}
}

func (o *Orchestrator) handleCreateRoom(c ws.Client, m protocol.CreateRoom) {
	o.mu.Lock()
	if o.cfg.MaxRooms > 0 && len(o.rooms) >= o.cfg.MaxRooms {
		o.mu.Unlock()
		o.transport.Send(c.ID(), protocol.NewError("Room limit reached"))
		return
	}
	r := room.New("", o.cfg.ChatHistoryLimit, o.events, o.logger)
	o.rooms[r.ID()] = r
	o.mu.Unlock()

	if !r.AddPlayer(engine.NewPlayer(m.PlayerID, c.Name())) {
		o.mu.Lock()
		delete(o.rooms, r.ID())
		o.mu.Unlock()
		o.transport.Send(c.ID(), protocol.NewError("Could not create room"))
		return
	}

	o.mu.Lock()
	o.playerRooms[m.PlayerID] = r.ID()
	o.mu.Unlock()
	o.transport.Join(c.ID(), r.ID())

	o.logger.Info("room created",
		zap.String("room_id", r.ID()),
		zap.String("player_id", m.PlayerID),
	)
	o.transport.Send(c.ID(), protocol.NewRoomCreated(r.ID(), r.PlayerView(m.PlayerID)))
}

func (o *Orchestrator) handleJoinRoom(c ws.Client, m protocol.JoinRoom) {
	r, ok := o.Room(m.RoomID)
	if !ok {
		o.transport.Send(c.ID(), protocol.NewError("Invalid room ID"))
		return
	}

	// A disconnected seat with the same player id is reclaimed rather than
	// re-seated.
	if r.HasDisconnectedPlayer(m.PlayerID) {
		if !r.Reconnect(m.PlayerID) {
			o.transport.Send(c.ID(), protocol.NewError("Could not rejoin room"))
			return
		}
		o.mu.Lock()
		o.playerRooms[m.PlayerID] = r.ID()
		o.mu.Unlock()
		o.transport.Join(c.ID(), r.ID())

		o.transport.Send(c.ID(), protocol.NewRoomJoined(r.ID(), r.PlayerView(m.PlayerID)))
		o.transport.Broadcast(r.ID(), protocol.NewPlayerReconnected(r.ID(), m.PlayerID))
		o.logger.Info("player reconnected",
			zap.String("room_id", r.ID()),
			zap.String("player_id", m.PlayerID),
		)
		return
	}

	if !r.AddPlayer(engine.NewPlayer(m.PlayerID, c.Name())) {
		o.transport.Send(c.ID(), protocol.NewError("Room is full"))
		return
	}

	o.mu.Lock()
	o.playerRooms[m.PlayerID] = r.ID()
	o.mu.Unlock()
	o.transport.Join(c.ID(), r.ID())

	o.logger.Info("player joined room",
		zap.String("room_id", r.ID()),
		zap.String("player_id", m.PlayerID),
	)
	o.transport.Send(c.ID(), protocol.NewRoomJoined(r.ID(), r.PlayerView(m.PlayerID)))
}

func (o *Orchestrator) handleLeaveRoom(c ws.Client, m protocol.LeaveRoom) {
	r, ok := o.Room(m.RoomID)
	if !ok {
		o.transport.Send(c.ID(), protocol.NewError("Invalid room ID"))
		return
	}

	o.transport.Leave(c.ID())
	o.mu.Lock()
	delete(o.playerRooms, m.PlayerID)
	o.mu.Unlock()

	o.transport.Send(c.ID(), protocol.NewRoomLeft(r.ID()))
	r.RemovePlayer(m.PlayerID)
}

func (o *Orchestrator) handleStartGame(c ws.Client, m protocol.StartGame) {
	r, ok := o.Room(m.RoomID)
	if !ok {
		o.transport.Send(c.ID(), protocol.NewError("Invalid room ID"))
		return
	}
	if !r.StartGame() {
		o.transport.Send(c.ID(), protocol.NewError("Cannot start game - minimum players not met"))
	}
}

func (o *Orchestrator) handlePlayCard(c ws.Client, m protocol.PlayCard) {
	r, ok := o.Room(m.RoomID)
	if !ok {
		o.transport.Send(c.ID(), protocol.NewError("Invalid room ID"))
		return
	}

	var chosen card.Color
	if m.ChosenColor != "" {
		parsed, err := card.ParseColor(m.ChosenColor)
		if err != nil {
			o.transport.Send(c.ID(), protocol.NewError("Invalid chosen color"))
			return
		}
		chosen = parsed
	}

	cmd := engine.PlayCardCommand{Card: m.Card, ChosenColor: chosen}
	if !r.HandleCommand(m.PlayerID, cmd) {
		o.transport.Send(c.ID(), protocol.NewError("Invalid card play"))
	}
}

func (o *Orchestrator) handleDrawCard(c ws.Client, m protocol.DrawCard) {
	r, ok := o.Room(m.RoomID)
	if !ok {
		o.transport.Send(c.ID(), protocol.NewError("Invalid room ID"))
		return
	}
	if !r.HandleCommand(m.PlayerID, engine.DrawCardCommand{}) {
		o.transport.Send(c.ID(), protocol.NewError("Cannot draw card"))
	}
}

func (o *Orchestrator) handleChat(c ws.Client, m protocol.Chat) {
	r, ok := o.Room(m.RoomID)
	if !ok {
		o.transport.Send(c.ID(), protocol.NewError("Invalid room ID"))
		return
	}
	r.AddChatMessage(m.PlayerID, c.Name(), m.Content)
}

func (o *Orchestrator) handleListRooms(c ws.Client) {
	o.mu.RLock()
	rooms := make([]*room.Room, 0, len(o.rooms))
	for _, r := range o.rooms {
		rooms = append(rooms, r)
	}
	o.mu.RUnlock()

	infos := make([]protocol.RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		infos = append(infos, protocol.RoomInfo{
			RoomID:      r.ID(),
			PlayerCount: r.PlayerCount(),
			MaxPlayers:  engine.MaxPlayers,
			State:       r.State(),
		})
	}
	o.transport.Send(c.ID(), protocol.NewRoomList(infos))
}
