// Package rtc carries meeting sessions over pion peer connections. Offers,
// answers and ICE candidates travel through the room server as signal
// messages addressed to one participant.
package rtc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	pion "github.com/pion/webrtc/v4"

	"github.com/HarshithaPadmanabha/StudyHub/internal/conference"
	"github.com/HarshithaPadmanabha/StudyHub/internal/config"
	"github.com/HarshithaPadmanabha/StudyHub/internal/media"
	"github.com/HarshithaPadmanabha/StudyHub/internal/signaling"
)

const (
	sdpTypeOffer  = "offer"
	sdpTypeAnswer = "answer"

	maxPendingCandidates = 64
)

var (
	ErrUnexpectedSignal = errors.New("unexpected signal type")
	ErrNoCallHandler    = errors.New("no incoming call handler")
	ErrConnectorClosed  = errors.New("connector closed")
)

// Connector implements conference.Connector over pion.
type Connector struct {
	api       *pion.API
	iceConfig pion.Configuration
	transport conference.Transport
	self      signaling.PeerInfo
	roomID    string
	log       *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	// Candidates from identities without a session yet, keyed by identity.
	pending  map[string][]pion.ICECandidateInit
	incoming func(conference.IncomingCall)
	closed   bool
}

type Option func(*options)

type options struct {
	settings   pion.SettingEngine
	forceRelay func() bool
}

// WithLoopback gathers loopback candidates, for peers on the same host.
func WithLoopback() Option {
	return func(o *options) {
		o.settings.SetIncludeLoopbackCandidate(true)
	}
}

// WithRelayHeuristic replaces the tunnel detection used to force relay.
func WithRelayHeuristic(fn func() bool) Option {
	return func(o *options) {
		o.forceRelay = fn
	}
}

func NewConnector(cfg *config.Config, transport conference.Transport, self signaling.PeerInfo, roomID string, log *slog.Logger, opts ...Option) (*Connector, error) {
	o := options{forceRelay: ShouldForceRelay}
	for _, opt := range opts {
		opt(&o)
	}

	api, err := newAPI(o.settings)
	if err != nil {
		return nil, fmt.Errorf("create webrtc api: %w", err)
	}

	return &Connector{
		api:       api,
		iceConfig: ICEConfiguration(cfg, o.forceRelay),
		transport: transport,
		self:      self,
		roomID:    roomID,
		log:       log,
		sessions:  make(map[string]*Session),
		pending:   make(map[string][]pion.ICECandidateInit),
	}, nil
}

// OnIncomingCall registers the handler for remote offers. It runs on the
// goroutine calling HandleSignal.
func (c *Connector) OnIncomingCall(fn func(conference.IncomingCall)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.incoming = fn
}

// Call offers stream to identity. The returned session is live once the
// answer arrives through HandleSignal.
func (c *Connector) Call(ctx context.Context, identity string, stream *media.Stream) (conference.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if identity == c.self.Identity {
		return nil, conference.ErrSelfCall
	}

	s, err := newSession(c, identity, "", stream)
	if err != nil {
		return nil, err
	}

	ordered := true
	dc, err := s.pc.CreateDataChannel(controlLabel, &pion.DataChannelInit{Ordered: &ordered})
	if err != nil {
		_ = s.pc.Close()
		return nil, fmt.Errorf("create control channel: %w", err)
	}
	s.bindControl(dc)

	offer, err := s.pc.CreateOffer(nil)
	if err != nil {
		_ = s.pc.Close()
		return nil, fmt.Errorf("create offer: %w", err)
	}
	if err := s.pc.SetLocalDescription(offer); err != nil {
		_ = s.pc.Close()
		return nil, fmt.Errorf("set local description: %w", err)
	}

	if err := c.register(s); err != nil {
		_ = s.pc.Close()
		return nil, err
	}
	if err := c.signal(identity, signaling.SignalPayload{Type: sdpTypeOffer, SDP: s.pc.LocalDescription().SDP}); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("send offer: %w", err)
	}
	s.markSignalled()

	c.log.Debug("Offer sent", "peer", identity)
	return s, nil
}

// HandleSignal routes a signal message to the session it belongs to. An offer
// from a new identity is surfaced as an incoming call.
func (c *Connector) HandleSignal(ctx context.Context, msg *signaling.Message) error {
	if msg.Target != "" && msg.Target != c.self.Identity {
		return nil
	}

	var p signaling.SignalPayload
	if err := msg.DecodePayload(&p); err != nil {
		return err
	}

	switch {
	case p.SDP != "":
		return c.handleDescription(msg, p)
	case len(p.ICECandidate) > 0:
		return c.handleCandidate(msg.Identity, p.ICECandidate)
	default:
		return nil
	}
}

func (c *Connector) handleDescription(msg *signaling.Message, p signaling.SignalPayload) error {
	switch p.Type {
	case sdpTypeOffer:
		c.mu.Lock()
		fn := c.incoming
		closed := c.closed
		c.mu.Unlock()
		if closed {
			return ErrConnectorClosed
		}
		if fn == nil {
			return ErrNoCallHandler
		}
		fn(&incomingCall{
			connector: c,
			identity:  msg.Identity,
			name:      msg.Name,
			offer:     pion.SessionDescription{Type: pion.SDPTypeOffer, SDP: p.SDP},
		})
		return nil

	case sdpTypeAnswer:
		s := c.session(msg.Identity)
		if s == nil {
			return fmt.Errorf("answer from %s: %w", msg.Identity, conference.ErrUnknownIdentity)
		}
		return s.setRemoteDescription(pion.SessionDescription{Type: pion.SDPTypeAnswer, SDP: p.SDP})

	default:
		return fmt.Errorf("%w: %s", ErrUnexpectedSignal, p.Type)
	}
}

func (c *Connector) handleCandidate(identity string, raw json.RawMessage) error {
	var candidate pion.ICECandidateInit
	if err := json.Unmarshal(raw, &candidate); err != nil {
		return fmt.Errorf("parse ICE candidate: %w", err)
	}

	if s := c.session(identity); s != nil {
		return s.addRemoteCandidate(candidate)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pending[identity]) < maxPendingCandidates {
		c.pending[identity] = append(c.pending[identity], candidate)
	}
	return nil
}

func (c *Connector) session(identity string) *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessions[identity]
}

// register makes s the session for its identity and hands it the candidates
// that arrived before it existed.
func (c *Connector) register(s *Session) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrConnectorClosed
	}
	c.sessions[s.identity] = s
	pending := c.pending[s.identity]
	delete(c.pending, s.identity)
	c.mu.Unlock()

	for _, candidate := range pending {
		if err := s.addRemoteCandidate(candidate); err != nil {
			s.log.Debug("Adding early ICE candidate", "error", err)
		}
	}
	return nil
}

func (c *Connector) forget(s *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sessions[s.identity] == s {
		delete(c.sessions, s.identity)
	}
}

func (c *Connector) signal(target string, payload signaling.SignalPayload) error {
	msg, err := signaling.NewMessage(signaling.MessageTypeSignal, payload)
	if err != nil {
		return err
	}
	msg.RoomID = c.roomID
	msg.Identity = c.self.Identity
	msg.Name = c.self.Name
	msg.Target = target
	return c.transport.Send(msg)
}

// Close closes every session and rejects further calls.
func (c *Connector) Close() error {
	c.mu.Lock()
	c.closed = true
	sessions := make([]*Session, 0, len(c.sessions))
	for _, s := range c.sessions {
		sessions = append(sessions, s)
	}
	c.pending = make(map[string][]pion.ICECandidateInit)
	c.mu.Unlock()

	var errs []error
	for _, s := range sessions {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type incomingCall struct {
	connector *Connector
	identity  string
	name      string
	offer     pion.SessionDescription
}

func (i *incomingCall) RemoteIdentity() string { return i.identity }

func (i *incomingCall) RemoteName() string { return i.name }

// Answer accepts the offer with stream.
func (i *incomingCall) Answer(ctx context.Context, stream *media.Stream) (conference.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := i.connector
	s, err := newSession(c, i.identity, i.name, stream)
	if err != nil {
		return nil, err
	}

	if err := c.register(s); err != nil {
		_ = s.pc.Close()
		return nil, err
	}
	if err := s.setRemoteDescription(i.offer); err != nil {
		_ = s.Close()
		return nil, err
	}

	answer, err := s.pc.CreateAnswer(nil)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("create answer: %w", err)
	}
	if err := s.pc.SetLocalDescription(answer); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("set local description: %w", err)
	}

	if err := c.signal(i.identity, signaling.SignalPayload{Type: sdpTypeAnswer, SDP: s.pc.LocalDescription().SDP}); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("send answer: %w", err)
	}
	s.markSignalled()

	c.log.Debug("Answer sent", "peer", i.identity)
	return s, nil
}
