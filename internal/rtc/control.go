package rtc

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/HarshithaPadmanabha/StudyHub/internal/media"
)

const (
	controlLabel = "control"

	controlTypeMediaState = "media-state"
)

// controlMessage is the envelope sent on the control data channel.
type controlMessage struct {
	Type    string             `msgpack:"type"`
	Payload msgpack.RawMessage `msgpack:"payload"`
}

func (m controlMessage) DecodePayload(v any) error {
	return msgpack.Unmarshal(m.Payload, v)
}

func newControlMessage(t string, payload any) (controlMessage, error) {
	b, err := msgpack.Marshal(payload)
	if err != nil {
		return controlMessage{}, err
	}
	return controlMessage{Type: t, Payload: b}, nil
}

func encodeState(state media.State) ([]byte, error) {
	msg, err := newControlMessage(controlTypeMediaState, state)
	if err != nil {
		return nil, err
	}
	return msgpack.Marshal(msg)
}

func decodeControl(data []byte) (controlMessage, error) {
	var msg controlMessage
	err := msgpack.Unmarshal(data, &msg)
	return msg, err
}
