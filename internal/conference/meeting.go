package conference

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/HarshithaPadmanabha/StudyHub/internal/media"
	"github.com/HarshithaPadmanabha/StudyHub/internal/signaling"
)

const eventBufferSize = 256

// MeetingConfig identifies the room and the local participant.
type MeetingConfig struct {
	RoomID   string
	Identity string
	Name     string
}

// Summary describes a finished meeting.
type Summary struct {
	RoomID           string
	Name             string
	Duration         time.Duration
	PeakParticipants int
	MessagesSent     int64
	MessagesReceived int64
}

// Meeting routes room server messages to the roster, chat and session layers
// and exposes the user actions. Dispatch and the incoming call callback are
// expected to run on one goroutine.
type Meeting struct {
	cfg       MeetingConfig
	self      signaling.PeerInfo
	transport Transport
	connector Connector
	log       *slog.Logger

	roster   *Roster
	chat     *ChatRelay
	sessions *SessionManager
	media    *MediaController

	ctx    context.Context
	cancel context.CancelFunc

	events    chan Event
	done      chan struct{}
	leaveOnce sync.Once

	mu        sync.Mutex
	startedAt time.Time
	endedAt   time.Time
	peak      int
	connected bool
}

// NewMeeting wires the components around an already acquired capture stream.
// An empty identity gets a random one.
func NewMeeting(cfg MeetingConfig, transport Transport, connector Connector, capture *media.Stream, source media.Source, log *slog.Logger) *Meeting {
	if cfg.Identity == "" {
		cfg.Identity = uuid.NewString()
	}
	if cfg.Name == "" {
		cfg.Name = DefaultDisplayName
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Meeting{
		cfg:       cfg,
		self:      signaling.PeerInfo{Identity: cfg.Identity, Name: cfg.Name},
		transport: transport,
		connector: connector,
		log:       log.With("room", cfg.RoomID),
		ctx:       ctx,
		cancel:    cancel,
		events:    make(chan Event, eventBufferSize),
		done:      make(chan struct{}),
		startedAt: time.Now(),
	}

	notify := Notifier(m.observe)
	m.roster = NewRoster(cfg.Identity, notify)
	m.chat = NewChatRelay(cfg.RoomID, m.self, transport, notify, m.log)
	m.sessions = NewSessionManager(connector, func() *media.Stream { return m.media.Outgoing() }, notify, m.log)
	m.media = NewMediaController(capture, source, m.sessions, notify, m.log)

	connector.OnIncomingCall(m.handleIncomingCall)
	return m
}

func (m *Meeting) observe(e Event) {
	if rc, ok := e.(RosterChanged); ok {
		m.mu.Lock()
		m.peak = max(m.peak, len(rc.Participants))
		m.mu.Unlock()
	}
	m.emit(e)
}

func (m *Meeting) emit(e Event) {
	select {
	case m.events <- e:
	case <-m.done:
	}
}

// Events delivers state changes in order.
func (m *Meeting) Events() <-chan Event { return m.events }

// Done is closed once the meeting has been left.
func (m *Meeting) Done() <-chan struct{} { return m.done }

func (m *Meeting) Self() signaling.PeerInfo { return m.self }

func (m *Meeting) RoomID() string { return m.cfg.RoomID }

func (m *Meeting) Roster() *Roster { return m.roster }

func (m *Meeting) Sessions() *SessionManager { return m.sessions }

func (m *Meeting) Media() *MediaController { return m.media }

// Run dispatches messages from incoming until it closes, ctx is cancelled or
// the meeting is left.
func (m *Meeting) Run(ctx context.Context, incoming <-chan *signaling.Message) error {
	for {
		select {
		case msg, ok := <-incoming:
			if !ok {
				return nil
			}
			m.Dispatch(ctx, msg)
		case <-ctx.Done():
			return ctx.Err()
		case <-m.done:
			return nil
		}
	}
}

// Dispatch applies one room server message.
func (m *Meeting) Dispatch(ctx context.Context, msg *signaling.Message) {
	if m.left() {
		return
	}

	switch msg.Type {
	case signaling.MessageTypeConnect:
		m.onConnect()

	case signaling.MessageTypeDisconnect:
		m.setConnected(false)
		m.log.Warn("Disconnected from room server")

	case signaling.MessageTypeRoomJoined:
		m.onRoomJoined(msg)

	case signaling.MessageTypeUserJoined:
		if msg.Identity == "" || msg.Identity == m.self.Identity {
			return
		}
		m.roster.Add(msg.Identity, msg.Name)
		if err := m.sessions.InitiateSession(ctx, msg.Identity); err != nil {
			m.log.Error("Failed to call participant", "identity", msg.Identity, "error", err)
		}

	case signaling.MessageTypeUserLeft:
		m.roster.Remove(msg.Identity)
		m.sessions.TeardownSession(msg.Identity)

	case signaling.MessageTypeChat:
		m.chat.OnRemoteMessage(msg)

	case signaling.MessageTypeSignal:
		if err := m.connector.HandleSignal(ctx, msg); err != nil {
			m.log.Warn("Failed to handle signal", "from", msg.Identity, "error", err)
		}

	case signaling.MessageTypeError:
		text := msg.ErrorText()
		m.log.Error("Room server error", "error", text)
		m.emit(Notice{Level: NoticeError, Text: text})

	default:
		m.log.Debug("Ignoring message", "type", msg.Type)
	}
}

// onConnect runs on the first connection and on every reconnection. The local
// user is added first so the roster is never empty while connected.
func (m *Meeting) onConnect() {
	m.setConnected(true)
	m.roster.Add(m.self.Identity, m.self.Name)

	msg := &signaling.Message{
		Type:     signaling.MessageTypeJoinRoom,
		RoomID:   m.cfg.RoomID,
		Identity: m.self.Identity,
		Name:     m.self.Name,
	}
	if err := m.transport.Send(msg); err != nil {
		m.log.Error("Failed to join room", "error", err)
		m.emit(Notice{Level: NoticeError, Text: "Failed to join room: " + err.Error()})
		return
	}
	m.log.Info("Joining room", "identity", m.self.Identity)
}

// onRoomJoined merges the server snapshot into the roster. Participants that
// left while the connection was down are dropped.
func (m *Meeting) onRoomJoined(msg *signaling.Message) {
	var p signaling.RoomStatePayload
	if len(msg.Payload) > 0 {
		if err := msg.DecodePayload(&p); err != nil {
			m.log.Warn("Ignoring malformed room snapshot", "error", err)
			return
		}
	}

	present := make(map[string]bool, len(p.Participants))
	for _, peer := range p.Participants {
		if peer.Identity == "" || peer.Identity == m.self.Identity {
			continue
		}
		present[peer.Identity] = true
		m.roster.Add(peer.Identity, peer.Name)
	}
	for _, identity := range m.roster.Remote() {
		if !present[identity] {
			m.roster.Remove(identity)
			m.sessions.TeardownSession(identity)
		}
	}
	m.log.Info("Joined room", "participants", m.roster.Count())
}

func (m *Meeting) handleIncomingCall(call IncomingCall) {
	identity := call.RemoteIdentity()
	if identity == "" || identity == m.self.Identity || m.left() {
		return
	}

	m.roster.Add(identity, call.RemoteName())
	if err := m.sessions.OnIncomingCall(m.ctx, call); err != nil {
		m.log.Error("Failed to answer call", "identity", identity, "error", err)
	}
}

func (m *Meeting) setConnected(connected bool) {
	m.mu.Lock()
	changed := m.connected != connected
	m.connected = connected
	m.mu.Unlock()

	if changed {
		m.emit(ConnectionChanged{Connected: connected})
	}
}

func (m *Meeting) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *Meeting) ToggleMute() bool { return m.media.ToggleMute() }

func (m *Meeting) ToggleVideo() bool { return m.media.ToggleVideo() }

// ToggleScreenShare starts a screen share, or stops the running one.
func (m *Meeting) ToggleScreenShare(ctx context.Context) error {
	if m.media.State().ScreenSharing {
		m.media.StopScreenShare()
		return nil
	}
	return m.media.StartScreenShare(ctx)
}

func (m *Meeting) SendChat(body string) bool {
	if m.left() {
		return false
	}
	return m.chat.SendLocal(body)
}

// Leave announces the departure, releases local media and closes every
// session. Only the first call has an effect. The signaling client stays open
// for its owner to close.
func (m *Meeting) Leave() {
	m.leaveOnce.Do(func() {
		msg := &signaling.Message{
			Type:     signaling.MessageTypeLeaveRoom,
			RoomID:   m.cfg.RoomID,
			Identity: m.self.Identity,
		}
		if err := m.transport.Send(msg); err != nil {
			m.log.Debug("Leave not announced", "error", err)
		}

		m.mu.Lock()
		m.endedAt = time.Now()
		m.mu.Unlock()

		select {
		case m.events <- Left{}:
		default:
		}
		close(m.done)

		m.media.Close()
		m.sessions.TeardownAll()
		if err := m.connector.Close(); err != nil {
			m.log.Debug("Closing connector", "error", err)
		}
		m.cancel()
		m.log.Info("Left meeting")
	})
}

func (m *Meeting) left() bool {
	select {
	case <-m.done:
		return true
	default:
		return false
	}
}

func (m *Meeting) Summary() Summary {
	m.mu.Lock()
	end := m.endedAt
	if end.IsZero() {
		end = time.Now()
	}
	s := Summary{
		RoomID:           m.cfg.RoomID,
		Name:             m.self.Name,
		Duration:         end.Sub(m.startedAt),
		PeakParticipants: m.peak,
	}
	m.mu.Unlock()

	s.MessagesSent = m.chat.Sent()
	s.MessagesReceived = m.chat.Received()
	return s
}
