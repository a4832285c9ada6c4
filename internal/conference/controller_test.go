package conference_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/HarshithaPadmanabha/StudyHub/internal/conference"
	"github.com/HarshithaPadmanabha/StudyHub/internal/logging"
	"github.com/HarshithaPadmanabha/StudyHub/internal/media"
	"github.com/HarshithaPadmanabha/StudyHub/internal/mocks"
)

type controllerFixture struct {
	ctrl     *conference.MediaController
	sessions *conference.SessionManager
	capture  *media.Stream
	peer     *fakeSession
	rec      *recorder
}

// newControllerFixture wires a controller to a session manager with one peer.
func newControllerFixture(t *testing.T, source media.Source) *controllerFixture {
	t.Helper()
	mc := gomock.NewController(t)
	connector := mocks.NewMockConnector(mc)

	f := &controllerFixture{capture: newCapture(t), peer: newFakeSession("b"), rec: &recorder{}}
	f.sessions = conference.NewSessionManager(connector, func() *media.Stream { return f.ctrl.Outgoing() }, f.rec.notify, logging.Discard())
	f.ctrl = conference.NewMediaController(f.capture, source, f.sessions, f.rec.notify, logging.Discard())

	connector.EXPECT().Call(gomock.Any(), "b", gomock.Any()).Return(f.peer, nil)
	require.NoError(t, f.sessions.InitiateSession(context.Background(), "b"))
	return f
}

func TestMediaController_ToggleMuteTwiceRestores(t *testing.T) {
	f := newControllerFixture(t, &fakeSource{})
	mic := f.capture.AudioTracks()[0]

	assert.True(t, f.ctrl.ToggleMute())
	assert.False(t, mic.Enabled())
	assert.True(t, f.peer.lastState().AudioMuted)

	assert.False(t, f.ctrl.ToggleMute())
	assert.True(t, mic.Enabled())
	assert.False(t, f.peer.lastState().AudioMuted)

	assert.Len(t, eventsOf[conference.MediaChanged](f.rec.all()), 2)
}

func TestMediaController_ToggleVideoLeavesAudio(t *testing.T) {
	f := newControllerFixture(t, &fakeSource{})

	assert.True(t, f.ctrl.ToggleVideo())
	assert.False(t, f.capture.FirstVideo().Enabled())
	assert.True(t, f.capture.AudioTracks()[0].Enabled())
	assert.Equal(t, media.State{VideoSuspended: true}, f.ctrl.State())
}

func TestMediaController_ScreenShareEndRestoresCamera(t *testing.T) {
	screen := newScreen(t)
	f := newControllerFixture(t, &fakeSource{display: screen})
	camera := f.capture.FirstVideo()

	require.NoError(t, f.ctrl.StartScreenShare(context.Background()))
	assert.True(t, f.ctrl.State().ScreenSharing)
	assert.Same(t, screen.FirstVideo(), f.peer.videoTrack())
	assert.Same(t, screen.FirstVideo(), f.ctrl.Outgoing().FirstVideo())

	// The user stops sharing from outside the app.
	screen.FirstVideo().End()

	assert.False(t, f.ctrl.State().ScreenSharing)
	assert.Same(t, camera, f.peer.videoTrack())
	assert.Same(t, camera, f.ctrl.Outgoing().FirstVideo())
	assert.False(t, f.peer.lastState().ScreenSharing)
}

func TestMediaController_ScreenShareDeniedKeepsCamera(t *testing.T) {
	f := newControllerFixture(t, &fakeSource{displayErr: media.ErrPermissionDenied})

	err := f.ctrl.StartScreenShare(context.Background())
	require.ErrorIs(t, err, media.ErrPermissionDenied)
	assert.False(t, f.ctrl.State().ScreenSharing)
	assert.Nil(t, f.peer.videoTrack())

	notices := eventsOf[conference.Notice](f.rec.all())
	require.Len(t, notices, 1)
	assert.Equal(t, conference.NoticeWarning, notices[0].Level)
	assert.False(t, notices[0].Blocking)
}

func TestMediaController_StopScreenShareWhenIdle(t *testing.T) {
	f := newControllerFixture(t, &fakeSource{})

	f.ctrl.StopScreenShare()
	assert.Empty(t, eventsOf[conference.MediaChanged](f.rec.all()))
	assert.Nil(t, f.peer.videoTrack())
}

func TestMediaController_ToggleVideoWhileSharing(t *testing.T) {
	screen := newScreen(t)
	f := newControllerFixture(t, &fakeSource{display: screen})
	require.NoError(t, f.ctrl.StartScreenShare(context.Background()))

	f.ctrl.ToggleVideo()
	assert.True(t, screen.FirstVideo().Enabled())
	assert.False(t, f.capture.FirstVideo().Enabled())
}

func TestMediaController_CloseStopsTracks(t *testing.T) {
	screen := newScreen(t)
	f := newControllerFixture(t, &fakeSource{display: screen})
	require.NoError(t, f.ctrl.StartScreenShare(context.Background()))

	f.ctrl.Close()
	for _, tr := range f.capture.Tracks() {
		assert.True(t, tr.Stopped())
	}
	assert.True(t, screen.FirstVideo().Stopped())
	require.ErrorIs(t, f.ctrl.StartScreenShare(context.Background()), conference.ErrMeetingClosed)
}
