package conference

import "github.com/HarshithaPadmanabha/StudyHub/internal/media"

// Event is a state change the renderer reacts to.
type Event interface {
	eventName() string
}

// Notifier receives events. Components call it after releasing their locks.
type Notifier func(Event)

func (n Notifier) emit(e Event) {
	if n != nil {
		n(e)
	}
}

type RosterChanged struct {
	Participants []Participant
}

type ChatAppended struct {
	Message ChatMessage
}

type StreamAdded struct {
	Identity string
	Stream   media.RemoteStream
}

type StreamRemoved struct {
	Identity string
}

// MediaChanged reports the local media state.
type MediaChanged struct {
	State media.State
}

type RemoteMediaChanged struct {
	Identity string
	State    media.State
}

type ConnectionChanged struct {
	Connected bool
}

type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a message for the user. Blocking notices need acknowledging.
type Notice struct {
	Level    NoticeLevel
	Text     string
	Blocking bool
}

// Left is emitted once the local user has left the meeting.
type Left struct{}

func (RosterChanged) eventName() string      { return "roster-changed" }
func (ChatAppended) eventName() string       { return "chat-appended" }
func (StreamAdded) eventName() string        { return "stream-added" }
func (StreamRemoved) eventName() string      { return "stream-removed" }
func (MediaChanged) eventName() string       { return "media-changed" }
func (RemoteMediaChanged) eventName() string { return "remote-media-changed" }
func (ConnectionChanged) eventName() string  { return "connection-changed" }
func (Notice) eventName() string             { return "notice" }
func (Left) eventName() string               { return "left" }

// EventName returns the stable name of e, used in logs.
func EventName(e Event) string {
	return e.eventName()
}
