package rtc

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	pion "github.com/pion/webrtc/v4"

	"github.com/HarshithaPadmanabha/StudyHub/internal/media"
	"github.com/HarshithaPadmanabha/StudyHub/internal/signaling"
)

var (
	ErrNoVideoSender = errors.New("session has no video sender")
	ErrSessionClosed = errors.New("session closed")
)

// Session is one peer connection with a remote participant.
type Session struct {
	identity  string
	name      string
	pc        *pion.PeerConnection
	connector *Connector
	log       *slog.Logger

	videoSender *pion.RTPSender

	mu            sync.Mutex
	control       *pion.DataChannel
	pendingState  *media.State
	remoteState   *media.State
	streams       []media.RemoteStream
	onStream      func(media.RemoteStream)
	onRemoteState func(media.State)

	// Candidates gathered before the local description was signalled, and
	// remote candidates received before the remote description was set.
	signalled     bool
	localPending  []pion.ICECandidateInit
	remoteReady   bool
	remotePending []pion.ICECandidateInit

	closeOnce sync.Once
	closed    bool
}

func newSession(c *Connector, identity, name string, stream *media.Stream) (*Session, error) {
	pc, err := c.api.NewPeerConnection(c.iceConfig)
	if err != nil {
		return nil, fmt.Errorf("create peer connection: %w", err)
	}

	s := &Session{
		identity:  identity,
		name:      name,
		pc:        pc,
		connector: c,
		log:       c.log.With("peer", identity),
	}

	if stream != nil {
		for _, track := range stream.Tracks() {
			sender, err := pc.AddTrack(track.Local())
			if err != nil {
				_ = pc.Close()
				return nil, fmt.Errorf("add %s track: %w", track.Kind(), err)
			}
			if track.Kind() == media.KindVideo && s.videoSender == nil {
				s.videoSender = sender
			}
			go drainRTCP(sender)
		}
	}

	pc.OnICECandidate(func(candidate *pion.ICECandidate) {
		if candidate == nil {
			return
		}
		s.sendCandidate(candidate.ToJSON())
	})
	pc.OnConnectionStateChange(func(state pion.PeerConnectionState) {
		s.log.Debug("Peer connection state changed", "state", state.String())
		if state == pion.PeerConnectionStateFailed {
			s.log.Warn("Peer connection failed")
		}
	})
	pc.OnTrack(func(track *pion.TrackRemote, _ *pion.RTPReceiver) {
		kind := media.KindVideo
		if track.Kind() == pion.RTPCodecTypeAudio {
			kind = media.KindAudio
		}
		s.log.Info("Remote track started", "kind", kind, "codec", track.Codec().MimeType)
		s.addStream(media.RemoteStream{ID: track.StreamID(), Kinds: []media.Kind{kind}})
		go drainRemote(track)
	})
	pc.OnDataChannel(func(dc *pion.DataChannel) {
		if dc.Label() == controlLabel {
			s.bindControl(dc)
		}
	})

	return s, nil
}

func drainRTCP(sender *pion.RTPSender) {
	buf := make([]byte, 1500)
	for {
		if _, _, err := sender.Read(buf); err != nil {
			return
		}
	}
}

// drainRemote consumes remote media. The terminal UI shows presence, not pixels.
func drainRemote(track *pion.TrackRemote) {
	buf := make([]byte, 1500)
	for {
		if _, _, err := track.Read(buf); err != nil {
			return
		}
	}
}

func (s *Session) RemoteIdentity() string { return s.identity }

// RemoteName is the display name the remote side announced in its offer.
func (s *Session) RemoteName() string { return s.name }

// OnStream registers fn for remote streams. Streams that already arrived are
// replayed.
func (s *Session) OnStream(fn func(media.RemoteStream)) {
	s.mu.Lock()
	s.onStream = fn
	seen := append([]media.RemoteStream(nil), s.streams...)
	s.mu.Unlock()

	for _, rs := range seen {
		fn(rs)
	}
}

func (s *Session) addStream(rs media.RemoteStream) {
	s.mu.Lock()
	s.streams = append(s.streams, rs)
	fn := s.onStream
	s.mu.Unlock()

	if fn != nil {
		fn(rs)
	}
}

// OnRemoteState registers fn for media state announcements from the peer.
func (s *Session) OnRemoteState(fn func(media.State)) {
	s.mu.Lock()
	s.onRemoteState = fn
	last := s.remoteState
	s.mu.Unlock()

	if last != nil {
		fn(*last)
	}
}

func (s *Session) ReplaceVideoTrack(track *media.LocalTrack) error {
	if s.isClosed() {
		return ErrSessionClosed
	}
	if s.videoSender == nil {
		return ErrNoVideoSender
	}
	return s.videoSender.ReplaceTrack(track.Local())
}

// SendState announces state on the control channel. Before the channel opens
// the latest state is kept and sent on open.
func (s *Session) SendState(state media.State) error {
	s.mu.Lock()
	dc := s.control
	if dc == nil || dc.ReadyState() != pion.DataChannelStateOpen {
		s.pendingState = &state
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	return sendState(dc, state)
}

func sendState(dc *pion.DataChannel, state media.State) error {
	b, err := encodeState(state)
	if err != nil {
		return fmt.Errorf("encode media state: %w", err)
	}
	return dc.Send(b)
}

func (s *Session) bindControl(dc *pion.DataChannel) {
	s.mu.Lock()
	s.control = dc
	s.mu.Unlock()

	dc.OnOpen(func() {
		s.mu.Lock()
		pending := s.pendingState
		s.pendingState = nil
		s.mu.Unlock()

		if pending != nil {
			if err := sendState(dc, *pending); err != nil {
				s.log.Debug("Media state not sent", "error", err)
			}
		}
	})
	dc.OnMessage(func(msg pion.DataChannelMessage) {
		s.handleControl(msg.Data)
	})
}

func (s *Session) handleControl(data []byte) {
	msg, err := decodeControl(data)
	if err != nil {
		s.log.Warn("Dropping malformed control message", "error", err)
		return
	}

	switch msg.Type {
	case controlTypeMediaState:
		var state media.State
		if err := msg.DecodePayload(&state); err != nil {
			s.log.Warn("Dropping malformed media state", "error", err)
			return
		}
		s.mu.Lock()
		s.remoteState = &state
		fn := s.onRemoteState
		s.mu.Unlock()
		if fn != nil {
			fn(state)
		}
	default:
		s.log.Debug("Ignoring control message", "type", msg.Type)
	}
}

// sendCandidate trickles a local candidate once the description went out.
func (s *Session) sendCandidate(candidate pion.ICECandidateInit) {
	s.mu.Lock()
	if !s.signalled {
		s.localPending = append(s.localPending, candidate)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.signalCandidate(candidate)
}

func (s *Session) signalCandidate(candidate pion.ICECandidateInit) {
	raw, err := json.Marshal(candidate)
	if err != nil {
		s.log.Debug("Encoding ICE candidate", "error", err)
		return
	}
	if err := s.connector.signal(s.identity, signaling.SignalPayload{ICECandidate: raw}); err != nil {
		s.log.Debug("ICE candidate not sent", "error", err)
	}
}

// markSignalled flushes candidates gathered before the description was sent.
func (s *Session) markSignalled() {
	s.mu.Lock()
	s.signalled = true
	pending := s.localPending
	s.localPending = nil
	s.mu.Unlock()

	for _, c := range pending {
		s.signalCandidate(c)
	}
}

func (s *Session) setRemoteDescription(desc pion.SessionDescription) error {
	if err := s.pc.SetRemoteDescription(desc); err != nil {
		return fmt.Errorf("set remote description: %w", err)
	}

	s.mu.Lock()
	s.remoteReady = true
	pending := s.remotePending
	s.remotePending = nil
	s.mu.Unlock()

	for _, c := range pending {
		if err := s.pc.AddICECandidate(c); err != nil {
			s.log.Debug("Adding buffered ICE candidate", "error", err)
		}
	}
	return nil
}

func (s *Session) addRemoteCandidate(candidate pion.ICECandidateInit) error {
	s.mu.Lock()
	if !s.remoteReady {
		s.remotePending = append(s.remotePending, candidate)
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	if err := s.pc.AddICECandidate(candidate); err != nil {
		return fmt.Errorf("add ICE candidate: %w", err)
	}
	return nil
}

// Close tears down the peer connection. Safe to call more than once.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		s.connector.forget(s)
		err = s.pc.Close()
	})
	return err
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
