package conference

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/samber/lo"

	"github.com/HarshithaPadmanabha/StudyHub/internal/media"
)

// SessionManager owns one Session per remote identity and attaches each remote
// stream to the renderer at most once.
type SessionManager struct {
	connector Connector
	outgoing  func() *media.Stream
	notify    Notifier
	log       *slog.Logger

	mu       sync.Mutex
	sessions map[string]Session
	attached map[string]bool
	state    media.State
}

// NewSessionManager creates a manager that offers the stream returned by
// outgoing to every new session.
func NewSessionManager(connector Connector, outgoing func() *media.Stream, notify Notifier, log *slog.Logger) *SessionManager {
	return &SessionManager{
		connector: connector,
		outgoing:  outgoing,
		notify:    notify,
		log:       log,
		sessions:  make(map[string]Session),
		attached:  make(map[string]bool),
	}
}

// InitiateSession calls identity. It is a no-op when a session already exists.
func (m *SessionManager) InitiateSession(ctx context.Context, identity string) error {
	if m.Has(identity) {
		m.log.Debug("Session already exists", "identity", identity)
		return nil
	}

	s, err := m.connector.Call(ctx, identity, m.outgoing())
	if err != nil {
		return NewPeerError("call", identity, err)
	}

	m.store(identity, s)
	m.log.Info("Session initiated", "identity", identity)
	return nil
}

// OnIncomingCall answers call with the outgoing stream. An existing session
// with the same identity is replaced.
func (m *SessionManager) OnIncomingCall(ctx context.Context, call IncomingCall) error {
	identity := call.RemoteIdentity()

	s, err := call.Answer(ctx, m.outgoing())
	if err != nil {
		return NewPeerError("answer", identity, err)
	}

	m.store(identity, s)
	m.log.Info("Session answered", "identity", identity)
	return nil
}

func (m *SessionManager) store(identity string, s Session) {
	m.mu.Lock()
	old := m.sessions[identity]
	hadStream := m.attached[identity]
	m.sessions[identity] = s
	delete(m.attached, identity)
	state := m.state
	m.mu.Unlock()

	if old != nil && old != s {
		if err := old.Close(); err != nil {
			m.log.Debug("Closing replaced session", "identity", identity, "error", err)
		}
		if hadStream {
			m.notify.emit(StreamRemoved{Identity: identity})
		}
	}

	s.OnStream(func(rs media.RemoteStream) { m.attach(identity, s, rs) })
	s.OnRemoteState(func(st media.State) {
		if m.current(identity, s) {
			m.notify.emit(RemoteMediaChanged{Identity: identity, State: st})
		}
	})

	if err := s.SendState(state); err != nil {
		m.log.Debug("Initial media state not sent", "identity", identity, "error", err)
	}
}

func (m *SessionManager) attach(identity string, s Session, rs media.RemoteStream) {
	m.mu.Lock()
	if m.sessions[identity] != s || m.attached[identity] {
		m.mu.Unlock()
		return
	}
	m.attached[identity] = true
	m.mu.Unlock()

	m.notify.emit(StreamAdded{Identity: identity, Stream: rs})
}

func (m *SessionManager) current(identity string, s Session) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[identity] == s
}

// TeardownSession closes the session with identity and removes its tile.
// It reports false when no session exists.
func (m *SessionManager) TeardownSession(identity string) bool {
	m.mu.Lock()
	s, ok := m.sessions[identity]
	if !ok {
		m.mu.Unlock()
		return false
	}
	delete(m.sessions, identity)
	delete(m.attached, identity)
	m.mu.Unlock()

	if err := s.Close(); err != nil {
		m.log.Debug("Closing session", "identity", identity, "error", err)
	}
	m.notify.emit(StreamRemoved{Identity: identity})
	m.log.Info("Session closed", "identity", identity)
	return true
}

func (m *SessionManager) TeardownAll() {
	for _, identity := range m.Identities() {
		m.TeardownSession(identity)
	}
}

// ReplaceOutgoingVideoTrack swaps the video sender track of every session.
// Sessions that fail keep their previous track.
func (m *SessionManager) ReplaceOutgoingVideoTrack(track *media.LocalTrack) error {
	var errs []error
	for identity, s := range m.snapshot() {
		if err := s.ReplaceVideoTrack(track); err != nil {
			errs = append(errs, NewPeerError("replace video track", identity, err))
		}
	}
	return errors.Join(errs...)
}

// BroadcastState sends state to every session and remembers it for sessions
// created later.
func (m *SessionManager) BroadcastState(state media.State) {
	m.mu.Lock()
	m.state = state
	m.mu.Unlock()

	for identity, s := range m.snapshot() {
		if err := s.SendState(state); err != nil {
			m.log.Debug("Media state not sent", "identity", identity, "error", err)
		}
	}
}

func (m *SessionManager) Has(identity string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[identity]
	return ok
}

// Attached reports whether the stream of identity is on screen.
func (m *SessionManager) Attached(identity string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attached[identity]
}

func (m *SessionManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Identities returns the identities with a session, sorted.
func (m *SessionManager) Identities() []string {
	m.mu.Lock()
	ids := lo.Keys(m.sessions)
	m.mu.Unlock()
	sort.Strings(ids)
	return ids
}

func (m *SessionManager) snapshot() map[string]Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return lo.Assign(m.sessions)
}
