package conference_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/HarshithaPadmanabha/StudyHub/internal/conference"
	"github.com/HarshithaPadmanabha/StudyHub/internal/logging"
	"github.com/HarshithaPadmanabha/StudyHub/internal/media"
	"github.com/HarshithaPadmanabha/StudyHub/internal/mocks"
)

func newManager(t *testing.T, connector conference.Connector, rec *recorder) (*conference.SessionManager, *media.Stream) {
	t.Helper()
	capture := newCapture(t)
	return conference.NewSessionManager(connector, func() *media.Stream { return capture }, rec.notify, logging.Discard()), capture
}

func TestSessionManager_InitiateSessionOncePerIdentity(t *testing.T) {
	ctrl := gomock.NewController(t)
	connector := mocks.NewMockConnector(ctrl)
	rec := &recorder{}
	m, capture := newManager(t, connector, rec)

	session := newFakeSession("b")
	connector.EXPECT().Call(gomock.Any(), "b", capture).Return(session, nil).Times(1)

	require.NoError(t, m.InitiateSession(context.Background(), "b"))
	require.NoError(t, m.InitiateSession(context.Background(), "b"))

	assert.True(t, m.Has("b"))
	assert.Equal(t, 1, m.Count())
}

func TestSessionManager_StreamAttachedOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	connector := mocks.NewMockConnector(ctrl)
	rec := &recorder{}
	m, _ := newManager(t, connector, rec)

	session := newFakeSession("b")
	connector.EXPECT().Call(gomock.Any(), "b", gomock.Any()).Return(session, nil)
	require.NoError(t, m.InitiateSession(context.Background(), "b"))

	session.fireStream()
	session.fireStream()

	added := eventsOf[conference.StreamAdded](rec.all())
	require.Len(t, added, 1)
	assert.Equal(t, "b", added[0].Identity)
	assert.True(t, m.Attached("b"))
}

func TestSessionManager_CallFailureLeavesNoSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	connector := mocks.NewMockConnector(ctrl)
	m, _ := newManager(t, connector, &recorder{})

	boom := errors.New("ice failed")
	connector.EXPECT().Call(gomock.Any(), "b", gomock.Any()).Return(nil, boom)

	err := m.InitiateSession(context.Background(), "b")
	require.ErrorIs(t, err, boom)

	var meetErr *conference.MeetError
	require.ErrorAs(t, err, &meetErr)
	assert.Equal(t, "b", meetErr.Identity)
	assert.False(t, m.Has("b"))
}

func TestSessionManager_TeardownSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	connector := mocks.NewMockConnector(ctrl)
	rec := &recorder{}
	m, _ := newManager(t, connector, rec)

	session := newFakeSession("b")
	connector.EXPECT().Call(gomock.Any(), "b", gomock.Any()).Return(session, nil)
	require.NoError(t, m.InitiateSession(context.Background(), "b"))
	session.fireStream()

	assert.True(t, m.TeardownSession("b"))
	assert.False(t, m.TeardownSession("b"))
	assert.True(t, session.isClosed())
	assert.False(t, m.Has("b"))

	removed := eventsOf[conference.StreamRemoved](rec.all())
	require.Len(t, removed, 1)
	assert.Equal(t, "b", removed[0].Identity)
}

func TestSessionManager_IncomingCallReplacesExisting(t *testing.T) {
	ctrl := gomock.NewController(t)
	connector := mocks.NewMockConnector(ctrl)
	rec := &recorder{}
	m, capture := newManager(t, connector, rec)

	first := newFakeSession("b")
	connector.EXPECT().Call(gomock.Any(), "b", gomock.Any()).Return(first, nil)
	require.NoError(t, m.InitiateSession(context.Background(), "b"))
	first.fireStream()

	second := newFakeSession("b")
	call := mocks.NewMockIncomingCall(ctrl)
	call.EXPECT().RemoteIdentity().Return("b").AnyTimes()
	call.EXPECT().Answer(gomock.Any(), capture).Return(second, nil)

	require.NoError(t, m.OnIncomingCall(context.Background(), call))
	assert.True(t, first.isClosed())

	// Late events from the replaced session are ignored.
	first.fireStream()
	first.fireState(media.State{AudioMuted: true})
	second.fireStream()

	events := rec.all()
	assert.Len(t, eventsOf[conference.StreamAdded](events), 2)
	assert.Len(t, eventsOf[conference.StreamRemoved](events), 1)
	assert.Empty(t, eventsOf[conference.RemoteMediaChanged](events))
}

func TestSessionManager_ReplaceOutgoingVideoTrackJoinsErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	connector := mocks.NewMockConnector(ctrl)
	m, _ := newManager(t, connector, &recorder{})

	good := newFakeSession("b")
	bad := newFakeSession("c")
	bad.replaceErr = errors.New("sender gone")
	connector.EXPECT().Call(gomock.Any(), "b", gomock.Any()).Return(good, nil)
	connector.EXPECT().Call(gomock.Any(), "c", gomock.Any()).Return(bad, nil)
	require.NoError(t, m.InitiateSession(context.Background(), "b"))
	require.NoError(t, m.InitiateSession(context.Background(), "c"))

	screen := newScreen(t).FirstVideo()
	err := m.ReplaceOutgoingVideoTrack(screen)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "c")
	assert.Same(t, screen, good.videoTrack())
}

func TestSessionManager_BroadcastStateReachesNewSessions(t *testing.T) {
	ctrl := gomock.NewController(t)
	connector := mocks.NewMockConnector(ctrl)
	rec := &recorder{}
	m, _ := newManager(t, connector, rec)

	muted := media.State{AudioMuted: true}
	m.BroadcastState(muted)

	session := newFakeSession("b")
	connector.EXPECT().Call(gomock.Any(), "b", gomock.Any()).Return(session, nil)
	require.NoError(t, m.InitiateSession(context.Background(), "b"))
	assert.Equal(t, muted, session.lastState())

	session.fireState(media.State{VideoSuspended: true})
	changed := eventsOf[conference.RemoteMediaChanged](rec.all())
	require.Len(t, changed, 1)
	assert.True(t, changed[0].State.VideoSuspended)
}

func TestSessionManager_TeardownAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	connector := mocks.NewMockConnector(ctrl)
	m, _ := newManager(t, connector, &recorder{})

	sessions := map[string]*fakeSession{"b": newFakeSession("b"), "c": newFakeSession("c")}
	for id, s := range sessions {
		connector.EXPECT().Call(gomock.Any(), id, gomock.Any()).Return(s, nil)
		require.NoError(t, m.InitiateSession(context.Background(), id))
	}
	assert.Equal(t, []string{"b", "c"}, m.Identities())

	m.TeardownAll()
	assert.Zero(t, m.Count())
	for _, s := range sessions {
		assert.True(t, s.isClosed())
	}
}
