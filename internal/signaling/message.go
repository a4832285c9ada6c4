package signaling

import (
	"encoding/json"
	"fmt"
)

// Message represents all WebSocket messages between the meeting client and the room server.
type Message struct {
	Type     string          `json:"type"`
	RoomID   string          `json:"room_id,omitempty"`
	Identity string          `json:"identity,omitempty"`
	Name     string          `json:"name,omitempty"`
	Target   string          `json:"target,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// Message type constants.
const (
	MessageTypeJoinRoom  = "join-room"
	MessageTypeLeaveRoom = "leave-room"
	MessageTypeChat      = "chat-message"
	MessageTypeSignal    = "signal"

	MessageTypeRoomJoined = "room-joined"
	MessageTypeUserJoined = "user-joined"
	MessageTypeUserLeft   = "user-left"
	MessageTypeError      = "error"

	// Synthesized locally by the Client, never sent on the wire.
	MessageTypeConnect    = "connect"
	MessageTypeDisconnect = "disconnect"
)

// ChatPayload is the body of a chat-message.
type ChatPayload struct {
	Body      string `json:"body"`
	Timestamp string `json:"timestamp"`
}

// SignalPayload represents WebRTC signaling data (SDP offer/answer or ICE candidate).
type SignalPayload struct {
	Type         string          `json:"type,omitempty"`
	SDP          string          `json:"sdp,omitempty"`
	ICECandidate json.RawMessage `json:"ice_candidate,omitempty"`
}

// PeerInfo identifies a room member.
type PeerInfo struct {
	Identity string `json:"identity"`
	Name     string `json:"name"`
}

// RoomStatePayload lists the members already present when joining.
type RoomStatePayload struct {
	Participants []PeerInfo `json:"participants"`
}

// ErrorPayload represents error messages from server.
type ErrorPayload struct {
	Error string `json:"error"`
}

// NewMessage builds a message of type t with payload encoded as JSON.
func NewMessage(t string, payload any) (*Message, error) {
	msg := &Message{Type: t}
	if payload == nil {
		return msg, nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", t, err)
	}
	msg.Payload = b
	return msg, nil
}

// DecodePayload decodes the message payload into v.
func (m *Message) DecodePayload(v any) error {
	if len(m.Payload) == 0 {
		return fmt.Errorf("%s: empty payload", m.Type)
	}
	if err := json.Unmarshal(m.Payload, v); err != nil {
		return fmt.Errorf("%s: decode payload: %w", m.Type, err)
	}
	return nil
}

// ErrorText returns the server error carried by an error message.
func (m *Message) ErrorText() string {
	var p ErrorPayload
	if err := m.DecodePayload(&p); err != nil || p.Error == "" {
		return "Unknown error from server"
	}
	return p.Error
}
