package conference_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/HarshithaPadmanabha/StudyHub/internal/conference"
	"github.com/HarshithaPadmanabha/StudyHub/internal/media"
)

type recorder struct {
	mu     sync.Mutex
	events []conference.Event
}

func (r *recorder) notify(e conference.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) all() []conference.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]conference.Event(nil), r.events...)
}

func eventsOf[T conference.Event](events []conference.Event) []T {
	var out []T
	for _, e := range events {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// drain returns the events currently buffered on ch.
func drain(ch <-chan conference.Event) []conference.Event {
	var out []conference.Event
	for {
		select {
		case e := <-ch:
			out = append(out, e)
		default:
			return out
		}
	}
}

type fakeSession struct {
	identity string

	mu         sync.Mutex
	onStream   func(media.RemoteStream)
	onState    func(media.State)
	video      *media.LocalTrack
	states     []media.State
	closed     bool
	replaceErr error
}

func newFakeSession(identity string) *fakeSession {
	return &fakeSession{identity: identity}
}

func (s *fakeSession) RemoteIdentity() string { return s.identity }

func (s *fakeSession) OnStream(fn func(media.RemoteStream)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onStream = fn
}

func (s *fakeSession) OnRemoteState(fn func(media.State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onState = fn
}

func (s *fakeSession) ReplaceVideoTrack(track *media.LocalTrack) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.replaceErr != nil {
		return s.replaceErr
	}
	s.video = track
	return nil
}

func (s *fakeSession) SendState(state media.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states = append(s.states, state)
	return nil
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSession) fireStream() {
	s.mu.Lock()
	fn := s.onStream
	s.mu.Unlock()
	fn(media.RemoteStream{ID: "stream-" + s.identity, Kinds: []media.Kind{media.KindAudio, media.KindVideo}})
}

func (s *fakeSession) fireState(state media.State) {
	s.mu.Lock()
	fn := s.onState
	s.mu.Unlock()
	fn(state)
}

func (s *fakeSession) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *fakeSession) videoTrack() *media.LocalTrack {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.video
}

func (s *fakeSession) lastState() media.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.states) == 0 {
		return media.State{}
	}
	return s.states[len(s.states)-1]
}

type fakeSource struct {
	display    *media.Stream
	displayErr error
}

func (f *fakeSource) UserMedia(context.Context) (*media.Stream, error) {
	return nil, media.ErrPermissionDenied
}

func (f *fakeSource) DisplayMedia(context.Context) (*media.Stream, error) {
	if f.displayErr != nil {
		return nil, f.displayErr
	}
	return f.display, nil
}

func newCapture(t *testing.T) *media.Stream {
	t.Helper()
	audio, err := media.NewLocalTrack(media.KindAudio, "mic", "capture")
	require.NoError(t, err)
	video, err := media.NewLocalTrack(media.KindVideo, "camera", "capture")
	require.NoError(t, err)
	return media.NewStream("capture", audio, video)
}

func newScreen(t *testing.T) *media.Stream {
	t.Helper()
	video, err := media.NewLocalTrack(media.KindVideo, "screen", "display")
	require.NoError(t, err)
	return media.NewStream("display", video)
}
