package gameserver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unoverse/unoserver/internal/config"
	"github.com/unoverse/unoserver/internal/game/engine"
	"github.com/unoverse/unoserver/internal/gameserver"
	"github.com/unoverse/unoserver/internal/protocol"
	"github.com/unoverse/unoserver/internal/transport/ws"
)

type fakeClient struct {
	id       string
	playerID string
	name     string
}

func (c *fakeClient) ID() string { return c.id }
func (c *fakeClient) PlayerID() string { return c.playerID }
func (c *fakeClient) Name() string { return c.name }

type directed struct {
	connID string
	msg    any
}

type broadcast struct {
	roomID string
	msg    any
}

// fakeTransport records outbound traffic and tracks room membership the way
// the websocket server would.
type fakeTransport struct {
	clients    map[string]*fakeClient
	rooms      map[string]map[string]bool
	sent       []directed
	broadcasts []broadcast
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		clients: make(map[string]*fakeClient),
		rooms:   make(map[string]map[string]bool),
	}
}

func (f *fakeTransport) connect(playerID, name string) *fakeClient {
	c := &fakeClient{id: "conn-" + playerID, playerID: playerID, name: name}
	f.clients[c.id] = c
	return c
}

func (f *fakeTransport) Send(connID string, msg any) {
	f.sent = append(f.sent, directed{connID: connID, msg: msg})
}

func (f *fakeTransport) Broadcast(roomID string, msg any) {
	f.broadcasts = append(f.broadcasts, broadcast{roomID: roomID, msg: msg})
}

func (f *fakeTransport) Join(connID, roomID string) {
	if f.rooms[roomID] == nil {
		f.rooms[roomID] = make(map[string]bool)
	}
	f.rooms[roomID][connID] = true
}

func (f *fakeTransport) Leave(connID string) {
	for roomID, members := range f.rooms {
		if members[connID] {
			delete(members, connID)
			if len(members) == 0 {
				delete(f.rooms, roomID)
			}
		}
	}
}

func (f *fakeTransport) Members(roomID string) []ws.Client {
	var members []ws.Client
	for connID := range f.rooms[roomID] {
		if c, ok := f.clients[connID]; ok {
			members = append(members, c)
		}
	}
	return members
}

// lastSentTo returns the most recent message sent directly to connID.
func (f *fakeTransport) lastSentTo(t *testing.T, connID string) any {
	t.Helper()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if f.sent[i].connID == connID {
			return f.sent[i].msg
		}
	}
	t.Fatalf("no message sent to %s", connID)
	return nil
}

func newOrchestrator(cfg config.GameConfig) (*gameserver.Orchestrator, *fakeTransport) {
	transport := newFakeTransport()
	return gameserver.New(cfg, transport, zap.NewNop()), transport
}

// createRoom drives the CREATE_ROOM flow and returns the new room's id.
func createRoom(t *testing.T, o *gameserver.Orchestrator, tr *fakeTransport, c *fakeClient) string {
	t.Helper()
	o.HandleMessage(c, protocol.CreateRoom{PlayerID: c.playerID})
	created, ok := tr.lastSentTo(t, c.id).(protocol.RoomState)
	require.True(t, ok, "expected a ROOM_CREATED reply, got %T", tr.lastSentTo(t, c.id))
	require.Equal(t, protocol.TypeRoomCreated, created.Type)
	return created.RoomID
}

// TestCreateRoom verifies the happy path: registry entry, membership, and the
// ROOM_CREATED reply.
func TestCreateRoom(t *testing.T) {
	o, tr := newOrchestrator(config.GameConfig{})
	alice := tr.connect("p1", "Alice")

	roomID := createRoom(t, o, tr, alice)

	assert.Equal(t, 1, o.RoomCount())
	mapped, ok := o.PlayerRoom("p1")
	require.True(t, ok)
	assert.Equal(t, roomID, mapped)
	assert.True(t, tr.rooms[roomID]["conn-p1"], "creator joins the room channel")

	created := tr.lastSentTo(t, alice.id).(protocol.RoomState)
	assert.Equal(t, engine.StateWaiting, created.State.State)
	require.Len(t, created.State.Players, 1)
	assert.Equal(t, "Alice", created.State.Players[0].Name)
}

// TestCreateRoom_MissingPlayerID verifies a CREATE_ROOM without player_id is
// answered with an error and creates nothing.
func TestCreateRoom_MissingPlayerID(t *testing.T) {
	o, tr := newOrchestrator(config.GameConfig{})
	c := tr.connect("p1", "Alice")

	o.HandleMessage(c, protocol.CreateRoom{})

	errReply, ok := tr.lastSentTo(t, c.id).(protocol.ErrorReply)
	require.True(t, ok)
	assert.Equal(t, protocol.TypeError, errReply.Type)
	assert.Equal(t, 0, o.RoomCount(), "no room is created on a rejected request")
}

// TestCreateRoom_Limit verifies the room cap.
func TestCreateRoom_Limit(t *testing.T) {
	o, tr := newOrchestrator(config.GameConfig{MaxRooms: 1})
	alice := tr.connect("p1", "Alice")
	bob := tr.connect("p2", "Bob")

	createRoom(t, o, tr, alice)
	o.HandleMessage(bob, protocol.CreateRoom{PlayerID: "p2"})

	errReply, ok := tr.lastSentTo(t, bob.id).(protocol.ErrorReply)
	require.True(t, ok)
	assert.Equal(t, "Room limit reached", errReply.Message)
	assert.Equal(t, 1, o.RoomCount())
}

// TestJoinRoom verifies joining, the unknown-room error, and the full-room
// error.
func TestJoinRoom(t *testing.T) {
	o, tr := newOrchestrator(config.GameConfig{})
	alice := tr.connect("p1", "Alice")
	roomID := createRoom(t, o, tr, alice)

	t.Run("unknown room", func(t *testing.T) {
		bob := tr.connect("p2", "Bob")
		o.HandleMessage(bob, protocol.JoinRoom{RoomID: "nope", PlayerID: "p2"})
		errReply := tr.lastSentTo(t, bob.id).(protocol.ErrorReply)
		assert.Equal(t, "Invalid room ID", errReply.Message)
	})

	t.Run("joins", func(t *testing.T) {
		bob := tr.connect("p2", "Bob")
		o.HandleMessage(bob, protocol.JoinRoom{RoomID: roomID, PlayerID: "p2"})

		joined, ok := tr.lastSentTo(t, bob.id).(protocol.RoomState)
		require.True(t, ok)
		assert.Equal(t, protocol.TypeRoomJoined, joined.Type)
		assert.Len(t, joined.State.Players, 2)

		mapped, ok := o.PlayerRoom("p2")
		require.True(t, ok)
		assert.Equal(t, roomID, mapped)
	})

	t.Run("full", func(t *testing.T) {
		for _, id := range []string{"p3", "p4"} {
			c := tr.connect(id, "player")
			o.HandleMessage(c, protocol.JoinRoom{RoomID: roomID, PlayerID: id})
		}
		late := tr.connect("p5", "Late")
		o.HandleMessage(late, protocol.JoinRoom{RoomID: roomID, PlayerID: "p5"})

		errReply := tr.lastSentTo(t, late.id).(protocol.ErrorReply)
		assert.Equal(t, "Room is full", errReply.Message)
		_, ok := o.PlayerRoom("p5")
		assert.False(t, ok)
	})
}

// TestStartGame verifies the personalized GAME_STARTED deliveries: every
// member gets their own seven-card hand and nobody else's.
func TestStartGame(t *testing.T) {
	o, tr := newOrchestrator(config.GameConfig{})
	alice := tr.connect("p1", "Alice")
	bob := tr.connect("p2", "Bob")
	roomID := createRoom(t, o, tr, alice)
	o.HandleMessage(bob, protocol.JoinRoom{RoomID: roomID, PlayerID: "p2"})

	o.HandleMessage(alice, protocol.StartGame{RoomID: roomID})

	for _, c := range []*fakeClient{alice, bob} {
		started, ok := tr.lastSentTo(t, c.id).(protocol.RoomState)
		require.True(t, ok, "expected GAME_STARTED for %s", c.playerID)
		assert.Equal(t, protocol.TypeGameStarted, started.Type)
		assert.Equal(t, engine.StatePlaying, started.State.State)
		assert.Len(t, started.State.YourHand, engine.InitialHandSize,
			"%s receives their own hand", c.playerID)
	}
}

// TestStartGame_TooFewPlayers verifies the minimum-player error reply.
func TestStartGame_TooFewPlayers(t *testing.T) {
	o, tr := newOrchestrator(config.GameConfig{})
	alice := tr.connect("p1", "Alice")
	roomID := createRoom(t, o, tr, alice)

	o.HandleMessage(alice, protocol.StartGame{RoomID: roomID})

	errReply := tr.lastSentTo(t, alice.id).(protocol.ErrorReply)
	assert.Equal(t, "Cannot start game - minimum players not met", errReply.Message)
}

// TestDrawCard verifies an in-turn draw produces personalized GAME_STATE
// updates and an out-of-turn draw produces only an error reply.
func TestDrawCard(t *testing.T) {
	o, tr := newOrchestrator(config.GameConfig{})
	alice := tr.connect("p1", "Alice")
	bob := tr.connect("p2", "Bob")
	roomID := createRoom(t, o, tr, alice)
	o.HandleMessage(bob, protocol.JoinRoom{RoomID: roomID, PlayerID: "p2"})
	o.HandleMessage(alice, protocol.StartGame{RoomID: roomID})

	// p1 created the room, so p1 acts first.
	o.HandleMessage(bob, protocol.DrawCard{RoomID: roomID, PlayerID: "p2"})
	errReply, ok := tr.lastSentTo(t, bob.id).(protocol.ErrorReply)
	require.True(t, ok)
	assert.Equal(t, "Cannot draw card", errReply.Message)

	o.HandleMessage(alice, protocol.DrawCard{RoomID: roomID, PlayerID: "p1"})
	state, ok := tr.lastSentTo(t, alice.id).(protocol.RoomState)
	require.True(t, ok)
	assert.Equal(t, protocol.TypeGameState, state.Type)
	assert.Len(t, state.State.YourHand, engine.InitialHandSize+1)
	assert.Equal(t, "p2", state.State.CurrentPlayerID, "drawing passes the turn")
}

// TestPlayCard_Errors verifies bad chosen colors and illegal plays are
// answered without touching the game.
func TestPlayCard_Errors(t *testing.T) {
	o, tr := newOrchestrator(config.GameConfig{})
	alice := tr.connect("p1", "Alice")
	bob := tr.connect("p2", "Bob")
	roomID := createRoom(t, o, tr, alice)
	o.HandleMessage(bob, protocol.JoinRoom{RoomID: roomID, PlayerID: "p2"})
	o.HandleMessage(alice, protocol.StartGame{RoomID: roomID})

	r, ok := o.Room(roomID)
	require.True(t, ok)
	hand := r.PlayerView("p1").YourHand
	require.NotEmpty(t, hand)

	o.HandleMessage(alice, protocol.PlayCard{
		RoomID:      roomID,
		PlayerID:    "p1",
		Card:        hand[0],
		ChosenColor: "PURPLE",
	})
	errReply := tr.lastSentTo(t, alice.id).(protocol.ErrorReply)
	assert.Equal(t, "Invalid chosen color", errReply.Message)

	o.HandleMessage(bob, protocol.PlayCard{
		RoomID:   roomID,
		PlayerID: "p2",
		Card:     r.PlayerView("p2").YourHand[0],
	})
	errReply = tr.lastSentTo(t, bob.id).(protocol.ErrorReply)
	assert.Equal(t, "Invalid card play", errReply.Message, "out of turn")
}

// TestChat verifies a chat message is broadcast to the room with the sender's
// display name.
func TestChat(t *testing.T) {
	o, tr := newOrchestrator(config.GameConfig{})
	alice := tr.connect("p1", "Alice")
	roomID := createRoom(t, o, tr, alice)

	o.HandleMessage(alice, protocol.Chat{RoomID: roomID, PlayerID: "p1", Content: "hello"})

	last := tr.broadcasts[len(tr.broadcasts)-1]
	assert.Equal(t, roomID, last.roomID)
	chat, ok := last.msg.(protocol.ChatBroadcast)
	require.True(t, ok)
	assert.Equal(t, protocol.TypeChatMessage, chat.Type)
	assert.Equal(t, "hello", chat.Content)
	assert.Equal(t, "Alice", chat.PlayerName)
	assert.Positive(t, chat.Timestamp)
}

// TestLeaveRoom verifies the ROOM_LEFT reply and that the last departure
// closes and purges the room.
func TestLeaveRoom(t *testing.T) {
	o, tr := newOrchestrator(config.GameConfig{})
	alice := tr.connect("p1", "Alice")
	roomID := createRoom(t, o, tr, alice)

	o.HandleMessage(alice, protocol.LeaveRoom{RoomID: roomID, PlayerID: "p1"})

	left, ok := tr.lastSentTo(t, alice.id).(protocol.RoomRef)
	require.True(t, ok)
	assert.Equal(t, protocol.TypeRoomLeft, left.Type)

	closed := tr.broadcasts[len(tr.broadcasts)-1]
	closedMsg, ok := closed.msg.(protocol.RoomRef)
	require.True(t, ok)
	assert.Equal(t, protocol.TypeRoomClosed, closedMsg.Type)

	assert.Equal(t, 0, o.RoomCount(), "empty room is purged")
	_, ok = o.PlayerRoom("p1")
	assert.False(t, ok)
}

// TestDisconnect verifies the mid-game disconnect keeps the seat and the
// reconnection path reclaims it.
func TestDisconnect(t *testing.T) {
	o, tr := newOrchestrator(config.GameConfig{})
	alice := tr.connect("p1", "Alice")
	bob := tr.connect("p2", "Bob")
	roomID := createRoom(t, o, tr, alice)
	o.HandleMessage(bob, protocol.JoinRoom{RoomID: roomID, PlayerID: "p2"})
	o.HandleMessage(alice, protocol.StartGame{RoomID: roomID})

	tr.Leave(bob.id)
	o.HandleDisconnect(bob)

	disc := tr.broadcasts[len(tr.broadcasts)-1]
	discMsg, ok := disc.msg.(protocol.PlayerConnection)
	require.True(t, ok)
	assert.Equal(t, protocol.TypePlayerDisconnected, discMsg.Type)
	assert.Equal(t, "p2", discMsg.PlayerID)

	mapped, ok := o.PlayerRoom("p2")
	require.True(t, ok, "mid-game seat keeps its mapping for reconnection")
	assert.Equal(t, roomID, mapped)

	bob2 := tr.connect("p2", "Bob")
	o.HandleMessage(bob2, protocol.JoinRoom{RoomID: roomID, PlayerID: "p2"})

	joined, ok := tr.lastSentTo(t, bob2.id).(protocol.RoomState)
	require.True(t, ok)
	assert.Equal(t, protocol.TypeRoomJoined, joined.Type)
	assert.Len(t, joined.State.YourHand, engine.InitialHandSize,
		"the reclaimed seat still holds its hand")

	recon := tr.broadcasts[len(tr.broadcasts)-1]
	reconMsg, ok := recon.msg.(protocol.PlayerConnection)
	require.True(t, ok)
	assert.Equal(t, protocol.TypePlayerReconnected, reconMsg.Type)
}

// TestDisconnect_BeforeGame verifies a pre-game disconnect drops the seat and
// the mapping entirely.
func TestDisconnect_BeforeGame(t *testing.T) {
	o, tr := newOrchestrator(config.GameConfig{})
	alice := tr.connect("p1", "Alice")
	bob := tr.connect("p2", "Bob")
	roomID := createRoom(t, o, tr, alice)
	o.HandleMessage(bob, protocol.JoinRoom{RoomID: roomID, PlayerID: "p2"})

	tr.Leave(bob.id)
	o.HandleDisconnect(bob)

	_, ok := o.PlayerRoom("p2")
	assert.False(t, ok, "a vacated seat has no reconnection claim")

	r, found := o.Room(roomID)
	require.True(t, found)
	assert.Equal(t, 1, r.PlayerCount())
}

// TestDisconnect_Unmapped verifies disconnects from players outside any room
// are ignored.
func TestDisconnect_Unmapped(t *testing.T) {
	o, tr := newOrchestrator(config.GameConfig{})
	loner := tr.connect("p9", "Loner")
	assert.NotPanics(t, func() { o.HandleDisconnect(loner) })

	anon := &fakeClient{id: "conn-anon"}
	assert.NotPanics(t, func() { o.HandleDisconnect(anon) })
}

// TestListRooms verifies the lobby listing reflects live rooms.
func TestListRooms(t *testing.T) {
	o, tr := newOrchestrator(config.GameConfig{})
	alice := tr.connect("p1", "Alice")
	roomID := createRoom(t, o, tr, alice)

	viewer := tr.connect("p9", "Viewer")
	o.HandleMessage(viewer, protocol.ListRooms{})

	list, ok := tr.lastSentTo(t, viewer.id).(protocol.RoomList)
	require.True(t, ok)
	require.Len(t, list.Rooms, 1)
	assert.Equal(t, roomID, list.Rooms[0].RoomID)
	assert.Equal(t, 1, list.Rooms[0].PlayerCount)
	assert.Equal(t, engine.MaxPlayers, list.Rooms[0].MaxPlayers)
	assert.Equal(t, engine.StateWaiting, list.Rooms[0].State)
}
