package conference_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/HarshithaPadmanabha/StudyHub/internal/conference"
	"github.com/HarshithaPadmanabha/StudyHub/internal/logging"
	"github.com/HarshithaPadmanabha/StudyHub/internal/mocks"
	"github.com/HarshithaPadmanabha/StudyHub/internal/signaling"
)

type meetingFixture struct {
	meeting   *conference.Meeting
	transport *mocks.MockTransport
	connector *mocks.MockConnector
	incoming  func(conference.IncomingCall)
	sent      []*signaling.Message
}

func newMeetingFixture(t *testing.T) *meetingFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &meetingFixture{
		transport: mocks.NewMockTransport(ctrl),
		connector: mocks.NewMockConnector(ctrl),
	}

	f.transport.EXPECT().Send(gomock.Any()).DoAndReturn(func(msg *signaling.Message) error {
		f.sent = append(f.sent, msg)
		return nil
	}).AnyTimes()
	f.connector.EXPECT().OnIncomingCall(gomock.Any()).Do(func(fn func(conference.IncomingCall)) {
		f.incoming = fn
	})

	cfg := conference.MeetingConfig{RoomID: "room", Identity: "a", Name: "Alice"}
	f.meeting = conference.NewMeeting(cfg, f.transport, f.connector, newCapture(t), &fakeSource{}, logging.Discard())
	require.NotNil(t, f.incoming)
	return f
}

func (f *meetingFixture) dispatch(msg *signaling.Message) {
	f.meeting.Dispatch(context.Background(), msg)
}

func (f *meetingFixture) sentOfType(typ string) []*signaling.Message {
	var out []*signaling.Message
	for _, m := range f.sent {
		if m.Type == typ {
			out = append(out, m)
		}
	}
	return out
}

func rosterIDs(m *conference.Meeting) []string {
	var ids []string
	for _, p := range m.Roster().Participants() {
		ids = append(ids, p.Identity)
	}
	return ids
}

func TestMeeting_ConnectAddsSelfAndJoins(t *testing.T) {
	f := newMeetingFixture(t)

	f.dispatch(&signaling.Message{Type: signaling.MessageTypeConnect})

	assert.True(t, f.meeting.Connected())
	assert.Equal(t, []string{"a"}, rosterIDs(f.meeting))

	joins := f.sentOfType(signaling.MessageTypeJoinRoom)
	require.Len(t, joins, 1)
	assert.Equal(t, "room", joins[0].RoomID)
	assert.Equal(t, "a", joins[0].Identity)
	assert.Equal(t, "Alice", joins[0].Name)

	// A reconnect joins again without duplicating the local user.
	f.dispatch(&signaling.Message{Type: signaling.MessageTypeDisconnect})
	assert.False(t, f.meeting.Connected())
	f.dispatch(&signaling.Message{Type: signaling.MessageTypeConnect})
	assert.Len(t, f.sentOfType(signaling.MessageTypeJoinRoom), 2)
	assert.Equal(t, 1, f.meeting.Roster().Count())

	changes := eventsOf[conference.ConnectionChanged](drain(f.meeting.Events()))
	require.Len(t, changes, 3)
	assert.True(t, changes[2].Connected)
}

func TestMeeting_JoinAndLeaveScenario(t *testing.T) {
	f := newMeetingFixture(t)
	session := newFakeSession("b")
	f.connector.EXPECT().Call(gomock.Any(), "b", gomock.Any()).Return(session, nil)

	f.dispatch(&signaling.Message{Type: signaling.MessageTypeConnect})
	f.dispatch(&signaling.Message{Type: signaling.MessageTypeUserJoined, Identity: "b", Name: "Bob"})
	session.fireStream()

	assert.Equal(t, []string{"a", "b"}, rosterIDs(f.meeting))
	assert.True(t, f.meeting.Sessions().Attached("b"))

	f.dispatch(&signaling.Message{Type: signaling.MessageTypeUserLeft, Identity: "b"})

	assert.Equal(t, []string{"a"}, rosterIDs(f.meeting))
	assert.False(t, f.meeting.Sessions().Has("b"))
	assert.True(t, session.isClosed())

	events := drain(f.meeting.Events())
	assert.Len(t, eventsOf[conference.StreamAdded](events), 1)
	assert.Len(t, eventsOf[conference.StreamRemoved](events), 1)
	assert.Equal(t, 2, f.meeting.Summary().PeakParticipants)

	// A repeated leave for b changes nothing.
	f.dispatch(&signaling.Message{Type: signaling.MessageTypeUserLeft, Identity: "b"})

	assert.Equal(t, []string{"a"}, rosterIDs(f.meeting))
	assert.Zero(t, f.meeting.Sessions().Count())
	again := drain(f.meeting.Events())
	assert.Empty(t, eventsOf[conference.StreamRemoved](again))
	assert.Empty(t, eventsOf[conference.RosterChanged](again))
}

func TestMeeting_IgnoresOwnJoinAnnouncement(t *testing.T) {
	f := newMeetingFixture(t)

	f.dispatch(&signaling.Message{Type: signaling.MessageTypeUserJoined, Identity: "a", Name: "Alice"})
	f.dispatch(&signaling.Message{Type: signaling.MessageTypeUserLeft, Identity: "ghost"})

	assert.Zero(t, f.meeting.Roster().Count())
	assert.Zero(t, f.meeting.Sessions().Count())
}

func TestMeeting_IncomingCallFromUnknownAddsToRoster(t *testing.T) {
	f := newMeetingFixture(t)
	ctrl := gomock.NewController(t)

	session := newFakeSession("c")
	call := mocks.NewMockIncomingCall(ctrl)
	call.EXPECT().RemoteIdentity().Return("c").AnyTimes()
	call.EXPECT().RemoteName().Return("Carol")
	call.EXPECT().Answer(gomock.Any(), gomock.Any()).Return(session, nil)

	f.incoming(call)

	p, ok := f.meeting.Roster().Get("c")
	require.True(t, ok)
	assert.Equal(t, "Carol", p.DisplayName)
	assert.True(t, f.meeting.Sessions().Has("c"))
}

func TestMeeting_RoomSnapshotReconciles(t *testing.T) {
	f := newMeetingFixture(t)
	stale := newFakeSession("b")
	f.connector.EXPECT().Call(gomock.Any(), "b", gomock.Any()).Return(stale, nil)

	f.dispatch(&signaling.Message{Type: signaling.MessageTypeConnect})
	f.dispatch(&signaling.Message{Type: signaling.MessageTypeUserJoined, Identity: "b", Name: "Bob"})

	snapshot, err := signaling.NewMessage(signaling.MessageTypeRoomJoined, signaling.RoomStatePayload{
		Participants: []signaling.PeerInfo{{Identity: "a", Name: "Alice"}, {Identity: "c", Name: "Carol"}},
	})
	require.NoError(t, err)
	f.dispatch(snapshot)

	assert.Equal(t, []string{"a", "c"}, rosterIDs(f.meeting))
	assert.True(t, stale.isClosed())
}

func TestMeeting_SignalGoesToConnector(t *testing.T) {
	f := newMeetingFixture(t)
	msg := &signaling.Message{Type: signaling.MessageTypeSignal, Identity: "b", Target: "a", Payload: json.RawMessage(`{"type":"offer"}`)}
	f.connector.EXPECT().HandleSignal(gomock.Any(), msg).Return(nil)

	f.dispatch(msg)
}

func TestMeeting_ServerErrorBecomesNotice(t *testing.T) {
	f := newMeetingFixture(t)
	msg, err := signaling.NewMessage(signaling.MessageTypeError, signaling.ErrorPayload{Error: "room full"})
	require.NoError(t, err)

	f.dispatch(msg)

	notices := eventsOf[conference.Notice](drain(f.meeting.Events()))
	require.Len(t, notices, 1)
	assert.Equal(t, "room full", notices[0].Text)
}

func TestMeeting_ChatRoundTrip(t *testing.T) {
	f := newMeetingFixture(t)

	assert.True(t, f.meeting.SendChat("hi"))
	chats := f.sentOfType(signaling.MessageTypeChat)
	require.Len(t, chats, 1)

	// The server echoes the message back to its sender.
	f.dispatch(chats[0])

	appended := eventsOf[conference.ChatAppended](drain(f.meeting.Events()))
	require.Len(t, appended, 1)
	assert.Equal(t, conference.DirectionSent, appended[0].Message.Direction)

	s := f.meeting.Summary()
	assert.EqualValues(t, 1, s.MessagesSent)
	assert.Zero(t, s.MessagesReceived)
}

func TestMeeting_LeaveOnce(t *testing.T) {
	f := newMeetingFixture(t)
	session := newFakeSession("b")
	f.connector.EXPECT().Call(gomock.Any(), "b", gomock.Any()).Return(session, nil)
	f.connector.EXPECT().Close().Return(nil).Times(1)

	f.dispatch(&signaling.Message{Type: signaling.MessageTypeConnect})
	f.dispatch(&signaling.Message{Type: signaling.MessageTypeUserJoined, Identity: "b", Name: "Bob"})

	f.meeting.Leave()
	f.meeting.Leave()

	assert.Len(t, f.sentOfType(signaling.MessageTypeLeaveRoom), 1)
	assert.True(t, session.isClosed())
	assert.True(t, f.meeting.Media().Capture().FirstVideo().Stopped())
	assert.False(t, f.meeting.SendChat("too late"))

	select {
	case <-f.meeting.Done():
	default:
		t.Fatal("meeting not done after Leave")
	}

	events := drain(f.meeting.Events())
	assert.NotEmpty(t, eventsOf[conference.Left](events))

	err := f.meeting.Run(context.Background(), make(chan *signaling.Message))
	assert.NoError(t, err)
}

func TestMeeting_RunStopsWhenIncomingCloses(t *testing.T) {
	f := newMeetingFixture(t)
	incoming := make(chan *signaling.Message, 1)
	incoming <- &signaling.Message{Type: signaling.MessageTypeConnect}
	close(incoming)

	require.NoError(t, f.meeting.Run(context.Background(), incoming))
	assert.True(t, f.meeting.Connected())
}

func TestMeeting_GeneratesIdentity(t *testing.T) {
	ctrl := gomock.NewController(t)
	connector := mocks.NewMockConnector(ctrl)
	connector.EXPECT().OnIncomingCall(gomock.Any())

	m := conference.NewMeeting(conference.MeetingConfig{RoomID: "room"}, mocks.NewMockTransport(ctrl), connector, newCapture(t), &fakeSource{}, logging.Discard())
	assert.NotEmpty(t, m.Self().Identity)
	assert.Equal(t, conference.DefaultDisplayName, m.Self().Name)
}
