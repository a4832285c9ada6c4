package conference

import (
	"context"

	"github.com/HarshithaPadmanabha/StudyHub/internal/media"
	"github.com/HarshithaPadmanabha/StudyHub/internal/signaling"
)

//go:generate go run go.uber.org/mock/mockgen -source=contracts.go -destination=../mocks/mock_contracts.go -package=mocks

// Transport delivers messages to the room server.
type Transport interface {
	Send(msg *signaling.Message) error
}

// Session is the media connection with one remote participant.
//
// OnStream fires at most once per attached stream. Registering after the
// stream arrived fires immediately.
type Session interface {
	RemoteIdentity() string
	OnStream(fn func(media.RemoteStream))
	OnRemoteState(fn func(media.State))
	ReplaceVideoTrack(track *media.LocalTrack) error
	SendState(state media.State) error
	Close() error
}

// IncomingCall is a remote offer waiting to be answered.
type IncomingCall interface {
	RemoteIdentity() string
	RemoteName() string
	Answer(ctx context.Context, stream *media.Stream) (Session, error)
}

// Connector places outbound calls and surfaces inbound ones.
type Connector interface {
	Call(ctx context.Context, identity string, stream *media.Stream) (Session, error)
	OnIncomingCall(fn func(IncomingCall))
	HandleSignal(ctx context.Context, msg *signaling.Message) error
	Close() error
}
