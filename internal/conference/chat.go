package conference

import (
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/HarshithaPadmanabha/StudyHub/internal/signaling"
)

// Direction tells whether a chat message was sent or received locally.
type Direction string

const (
	DirectionSent     Direction = "sent"
	DirectionReceived Direction = "received"
)

// ChatMessage is one entry of the chat log.
type ChatMessage struct {
	SenderIdentity string
	SenderName     string
	Body           string
	Timestamp      string
	Direction      Direction
}

// Clock renders the timestamp as local hour and minute.
func (m ChatMessage) Clock() string {
	t, err := time.Parse(time.RFC3339Nano, m.Timestamp)
	if err != nil {
		return m.Timestamp
	}
	return t.Local().Format("15:04")
}

// ChatRelay sends local chat messages to the room and renders remote ones.
// The room server echoes messages back to their sender, so remote messages
// carrying the local identity are dropped.
type ChatRelay struct {
	roomID    string
	self      signaling.PeerInfo
	transport Transport
	notify    Notifier
	log       *slog.Logger
	now       func() time.Time

	sent     atomic.Int64
	received atomic.Int64
}

func NewChatRelay(roomID string, self signaling.PeerInfo, transport Transport, notify Notifier, log *slog.Logger) *ChatRelay {
	return &ChatRelay{
		roomID:    roomID,
		self:      self,
		transport: transport,
		notify:    notify,
		log:       log,
		now:       time.Now,
	}
}

// SendLocal transmits body to the room and appends it to the local log.
// Whitespace-only bodies are ignored and report false.
func (c *ChatRelay) SendLocal(body string) bool {
	body = strings.TrimSpace(body)
	if body == "" {
		return false
	}

	stamp := c.now().UTC().Format(time.RFC3339Nano)
	msg, err := signaling.NewMessage(signaling.MessageTypeChat, signaling.ChatPayload{Body: body, Timestamp: stamp})
	if err != nil {
		c.log.Error("Failed to encode chat message", "error", err)
		return false
	}
	msg.RoomID = c.roomID
	msg.Identity = c.self.Identity
	msg.Name = c.self.Name

	if err := c.transport.Send(msg); err != nil {
		c.log.Warn("Chat message not transmitted", "error", err)
	}

	c.sent.Add(1)
	c.notify.emit(ChatAppended{Message: ChatMessage{
		SenderIdentity: c.self.Identity,
		SenderName:     c.self.Name,
		Body:           body,
		Timestamp:      stamp,
		Direction:      DirectionSent,
	}})
	return true
}

// OnRemoteMessage appends a chat message received from the room. It reports
// false for self echoes and malformed payloads.
func (c *ChatRelay) OnRemoteMessage(msg *signaling.Message) bool {
	if msg.Identity == c.self.Identity {
		return false
	}

	var p signaling.ChatPayload
	if err := msg.DecodePayload(&p); err != nil {
		c.log.Warn("Dropping malformed chat message", "from", msg.Identity, "error", err)
		return false
	}

	name := strings.TrimSpace(msg.Name)
	if name == "" {
		name = DefaultDisplayName
	}

	c.received.Add(1)
	c.notify.emit(ChatAppended{Message: ChatMessage{
		SenderIdentity: msg.Identity,
		SenderName:     name,
		Body:           p.Body,
		Timestamp:      p.Timestamp,
		Direction:      DirectionReceived,
	}})
	return true
}

func (c *ChatRelay) Sent() int64 { return c.sent.Load() }

func (c *ChatRelay) Received() int64 { return c.received.Load() }
