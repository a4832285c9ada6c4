// Package hub is the room server: it tracks who is in which room, announces
// arrivals and departures, relays chat to the whole room and forwards signal
// messages to their target.
package hub

import (
	"context"
	"log/slog"

	"github.com/HarshithaPadmanabha/StudyHub/internal/signaling"
)

// MaxParticipants bounds the size of a room.
const MaxParticipants = 16

type envelope struct {
	client *Client
	msg    *signaling.Message
}

// Hub owns all rooms. Its state is only touched from the Run goroutine.
type Hub struct {
	rooms map[string]*Room

	register   chan *Client
	unregister chan *Client
	inbound    chan envelope
	inspect    chan func()
	done       chan struct{}

	metrics *Metrics
	log     *slog.Logger
}

func NewHub(metrics *Metrics, log *slog.Logger) *Hub {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Hub{
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan envelope),
		inspect:    make(chan func()),
		done:       make(chan struct{}),
		metrics:    metrics,
		log:        log,
	}
}

// Run processes registrations and messages until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case c := <-h.register:
			h.metrics.Clients.Inc()
			c.log.Debug("Client registered")

		case c := <-h.unregister:
			h.leave(c)
			close(c.send)
			h.metrics.Clients.Dec()
			c.log.Debug("Client unregistered")

		case env := <-h.inbound:
			h.metrics.Messages.WithLabelValues(messageLabel(env.msg.Type)).Inc()
			h.handle(env.client, env.msg)

		case fn := <-h.inspect:
			fn()

		case <-ctx.Done():
			return
		}
	}
}

// RoomSize returns the number of participants in roomID.
func (h *Hub) RoomSize(ctx context.Context, roomID string) int {
	result := make(chan int, 1)
	fn := func() {
		if r, ok := h.rooms[roomID]; ok {
			result <- r.size()
			return
		}
		result <- 0
	}
	select {
	case h.inspect <- fn:
		return <-result
	case <-ctx.Done():
	case <-h.done:
	}
	return 0
}

// messageLabel keeps the metric's label set fixed whatever clients send.
func messageLabel(typ string) string {
	switch typ {
	case signaling.MessageTypeJoinRoom, signaling.MessageTypeLeaveRoom,
		signaling.MessageTypeChat, signaling.MessageTypeSignal:
		return typ
	}
	return "unknown"
}

func (h *Hub) handle(c *Client, msg *signaling.Message) {
	switch msg.Type {
	case signaling.MessageTypeJoinRoom:
		h.join(c, msg)
	case signaling.MessageTypeLeaveRoom:
		h.leave(c)
	case signaling.MessageTypeChat:
		h.chat(c, msg)
	case signaling.MessageTypeSignal:
		h.signal(c, msg)
	default:
		c.log.Warn("Unknown message type", "type", msg.Type)
		c.sendError("Unknown message type: " + msg.Type)
	}
}

func (h *Hub) join(c *Client, msg *signaling.Message) {
	if msg.RoomID == "" || msg.Identity == "" {
		c.sendError("Room and identity are required")
		return
	}
	if c.roomID != "" {
		h.leave(c)
	}

	room, ok := h.rooms[msg.RoomID]
	if !ok {
		room = newRoom(msg.RoomID)
		h.rooms[msg.RoomID] = room
		h.metrics.Rooms.Inc()
		h.log.Info("Room created", "room", room.ID)
	}

	// A reconnecting participant may still have its previous connection in
	// the room. The new connection takes over its identity.
	if stale, ok := room.get(msg.Identity); ok && stale != c {
		stale.roomID = ""
		room.remove(stale.identity)
		// Its readPump fails and unregisters it; roomID is cleared so no
		// user-left goes out.
		stale.conn.Close()
		stale.log.Info("Connection replaced", "identity", stale.identity)
	} else if room.size() >= MaxParticipants {
		c.sendError("Room is full")
		return
	}

	c.roomID = room.ID
	c.identity = msg.Identity
	c.name = msg.Name
	room.add(c)

	snapshot, err := signaling.NewMessage(signaling.MessageTypeRoomJoined, room.snapshot())
	if err == nil {
		snapshot.RoomID = room.ID
		c.deliver(snapshot)
	}

	joined := &signaling.Message{
		Type:     signaling.MessageTypeUserJoined,
		RoomID:   room.ID,
		Identity: c.identity,
		Name:     c.name,
	}
	for _, other := range room.clients(c) {
		other.deliver(joined)
	}

	h.log.Info("Participant joined", "room", room.ID, "identity", c.identity, "participants", room.size())
}

func (h *Hub) leave(c *Client) {
	if c.roomID == "" {
		return
	}
	room, ok := h.rooms[c.roomID]
	c.roomID = ""
	if !ok {
		return
	}
	if current, ok := room.get(c.identity); !ok || current != c {
		return
	}

	room.remove(c.identity)
	left := &signaling.Message{
		Type:     signaling.MessageTypeUserLeft,
		RoomID:   room.ID,
		Identity: c.identity,
		Name:     c.name,
	}
	for _, other := range room.clients(nil) {
		other.deliver(left)
	}
	h.log.Info("Participant left", "room", room.ID, "identity", c.identity, "participants", room.size())

	if room.empty() {
		delete(h.rooms, room.ID)
		h.metrics.Rooms.Dec()
		h.log.Info("Room deleted", "room", room.ID)
	}
}

// chat relays to every member, the sender included.
func (h *Hub) chat(c *Client, msg *signaling.Message) {
	room, ok := h.roomOf(c)
	if !ok {
		return
	}

	msg.RoomID = room.ID
	msg.Identity = c.identity
	msg.Name = c.name
	msg.Target = ""
	for _, member := range room.clients(nil) {
		member.deliver(msg)
	}
}

func (h *Hub) signal(c *Client, msg *signaling.Message) {
	room, ok := h.roomOf(c)
	if !ok {
		return
	}

	target, ok := room.get(msg.Target)
	if !ok || target == c {
		c.log.Debug("Signal target not in room", "target", msg.Target)
		return
	}

	msg.RoomID = room.ID
	msg.Identity = c.identity
	msg.Name = c.name
	target.deliver(msg)
}

func (h *Hub) roomOf(c *Client) (*Room, bool) {
	if c.roomID == "" {
		c.sendError("You must join a room first")
		return nil, false
	}
	room, ok := h.rooms[c.roomID]
	if !ok {
		c.sendError("Room not found")
		return nil, false
	}
	return room, true
}
