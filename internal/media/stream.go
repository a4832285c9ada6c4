package media

import "sync"

// Stream groups local tracks captured together.
type Stream struct {
	id string

	mu     sync.RWMutex
	tracks []*LocalTrack
}

func NewStream(id string, tracks ...*LocalTrack) *Stream {
	return &Stream{id: id, tracks: tracks}
}

func (s *Stream) ID() string { return s.id }

// Tracks returns a copy of the stream's tracks.
func (s *Stream) Tracks() []*LocalTrack {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*LocalTrack(nil), s.tracks...)
}

func (s *Stream) AudioTracks() []*LocalTrack { return s.byKind(KindAudio) }

func (s *Stream) VideoTracks() []*LocalTrack { return s.byKind(KindVideo) }

// FirstVideo returns the first video track or nil.
func (s *Stream) FirstVideo() *LocalTrack {
	if v := s.VideoTracks(); len(v) > 0 {
		return v[0]
	}
	return nil
}

func (s *Stream) byKind(kind Kind) []*LocalTrack {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*LocalTrack
	for _, t := range s.tracks {
		if t.Kind() == kind {
			out = append(out, t)
		}
	}
	return out
}

// Stop stops every track.
func (s *Stream) Stop() {
	for _, t := range s.Tracks() {
		t.Stop()
	}
}

// RemoteStream describes media arriving from a remote participant.
type RemoteStream struct {
	ID    string
	Kinds []Kind
}

// State is the local media state a participant announces to its peers.
type State struct {
	AudioMuted     bool `msgpack:"audioMuted" json:"audioMuted"`
	VideoSuspended bool `msgpack:"videoSuspended" json:"videoSuspended"`
	ScreenSharing  bool `msgpack:"screenSharing" json:"screenSharing"`
}
