package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HarshithaPadmanabha/StudyHub/internal/conference"
	"github.com/HarshithaPadmanabha/StudyHub/internal/media"
)

type fakeActions struct {
	mutes, videos, shares, leaves int
	chats                         []string
}

func (f *fakeActions) ToggleMute() bool  { f.mutes++; return f.mutes%2 == 1 }
func (f *fakeActions) ToggleVideo() bool { f.videos++; return f.videos%2 == 1 }
func (f *fakeActions) ToggleScreenShare(context.Context) error {
	f.shares++
	return nil
}
func (f *fakeActions) Leave() { f.leaves++ }
func (f *fakeActions) SendChat(body string) bool {
	if strings.TrimSpace(body) == "" {
		return false
	}
	f.chats = append(f.chats, body)
	return true
}

func newTestModel() (*MeetingModel, *fakeActions) {
	actions := &fakeActions{}
	m := NewMeetingModel(MeetingOptions{RoomID: "room", RoomLink: "https://example.org/meet/room", SelfIdentity: "a", SelfName: "Alice"},
		actions, make(chan conference.Event))
	return m, actions
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m *MeetingModel, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(key(k))
	}
	return cmd
}

func run(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	cmd()
}

func deliver(m *MeetingModel, events ...conference.Event) {
	for _, e := range events {
		m.Update(eventMsg{event: e})
	}
}

func TestMeetingModel_MediaKeysCallActions(t *testing.T) {
	m, actions := newTestModel()

	run(t, press(m, "m"))
	run(t, press(m, "v"))
	cmd := press(m, "s")
	require.NotNil(t, cmd)
	_, ok := cmd().(screenShareMsg)
	assert.True(t, ok)

	assert.Equal(t, 1, actions.mutes)
	assert.Equal(t, 1, actions.videos)
	assert.Equal(t, 1, actions.shares)
}

func TestMeetingModel_LocalStateFollowsEvents(t *testing.T) {
	m, _ := newTestModel()

	press(m, "m")
	assert.False(t, m.local.AudioMuted, "state only changes through events")

	deliver(m, conference.MediaChanged{State: media.State{AudioMuted: true, ScreenSharing: true}})
	view := m.View()
	assert.Contains(t, view, "m unmute")
	assert.Contains(t, view, "s stop sharing")
	assert.Contains(t, view, IconMuted)
}

func TestMeetingModel_PanelsAreExclusive(t *testing.T) {
	m, _ := newTestModel()

	press(m, "p")
	assert.Equal(t, panelParticipants, m.panel)

	press(m, "c")
	assert.Equal(t, panelChat, m.panel)
	assert.True(t, m.input.Focused())

	press(m, "esc")
	assert.Equal(t, panelNone, m.panel)

	press(m, "p", "p")
	assert.Equal(t, panelNone, m.panel)
}

func TestMeetingModel_ChatInput(t *testing.T) {
	m, actions := newTestModel()
	press(m, "c")

	press(m, "enter")
	press(m, " ", " ", "enter")
	assert.Empty(t, actions.chats)

	m.input.SetValue("hello")
	cmd := press(m, "enter")
	assert.Empty(t, m.input.Value())
	assert.Empty(t, actions.chats, "sent from a command")
	run(t, cmd)
	assert.Equal(t, []string{"hello"}, actions.chats)

	// Keys typed into the chat do not toggle media.
	press(m, "m")
	assert.Zero(t, actions.mutes)
}

func TestMeetingModel_ChatLogAndUnread(t *testing.T) {
	m, _ := newTestModel()
	stamp := time.Now().UTC().Format(time.RFC3339Nano)

	deliver(m, conference.ChatAppended{Message: conference.ChatMessage{SenderName: "Bob", Body: "hi there", Timestamp: stamp, Direction: conference.DirectionReceived}})
	assert.Equal(t, 1, m.unread)
	assert.Contains(t, m.View(), "c chat (1)")

	press(m, "c")
	assert.Zero(t, m.unread)
	assert.Contains(t, m.View(), "hi there")
}

func TestMeetingModel_TilesAndRoster(t *testing.T) {
	m, _ := newTestModel()

	deliver(m,
		conference.RosterChanged{Participants: []conference.Participant{
			{Identity: "a", DisplayName: "Alice", Self: true},
			{Identity: "b", DisplayName: "Bob"},
		}},
		conference.StreamAdded{Identity: "b", Stream: media.RemoteStream{Kinds: []media.Kind{media.KindAudio, media.KindVideo}}},
		conference.StreamAdded{Identity: "b"},
		conference.RemoteMediaChanged{Identity: "b", State: media.State{AudioMuted: true}},
		conference.ConnectionChanged{Connected: true},
	)

	require.Len(t, m.tiles, 1)
	assert.True(t, m.tiles[0].state.AudioMuted)

	view := m.View()
	assert.Contains(t, view, "Alice (You)")
	assert.Contains(t, view, "Bob")
	assert.Contains(t, view, "Connected")
	assert.NotContains(t, view, "Waiting for others")

	press(m, "p")
	assert.Contains(t, m.View(), "Participants (2)")

	deliver(m, conference.StreamRemoved{Identity: "b"})
	assert.Empty(t, m.tiles)
	assert.Contains(t, m.View(), "Waiting for others")
}

func TestMeetingModel_ParticipantsOpenOnFirstEntry(t *testing.T) {
	m, _ := newTestModel()
	self := conference.Participant{Identity: "a", DisplayName: "Alice", Self: true}

	deliver(m, conference.RosterChanged{Participants: []conference.Participant{self}})
	assert.Equal(t, panelParticipants, m.panel)
	assert.Contains(t, m.View(), "Participants (1)")

	// Later changes leave the user's panel choice alone.
	press(m, "esc")
	deliver(m, conference.RosterChanged{Participants: []conference.Participant{self, {Identity: "b", DisplayName: "Bob"}}})
	assert.Equal(t, panelNone, m.panel)

	// An open chat is not replaced.
	m2, _ := newTestModel()
	press(m2, "c")
	deliver(m2, conference.RosterChanged{Participants: []conference.Participant{self}})
	assert.Equal(t, panelChat, m2.panel)
}

func TestMeetingModel_Notices(t *testing.T) {
	m, _ := newTestModel()

	deliver(m, conference.Notice{Level: conference.NoticeWarning, Text: "Screen sharing unavailable"})
	assert.Nil(t, m.modal)
	assert.Contains(t, m.View(), "Screen sharing unavailable")

	m.Update(toastExpiredMsg{id: m.toastID})
	assert.Nil(t, m.toast)

	deliver(m, conference.Notice{Level: conference.NoticeError, Text: "Room is full", Blocking: true})
	require.NotNil(t, m.modal)
	assert.Contains(t, m.View(), "Press enter to dismiss")

	press(m, "m")
	assert.NotNil(t, m.modal, "other keys are swallowed by the modal")
	press(m, "enter")
	assert.Nil(t, m.modal)
}

func TestMeetingModel_LeaveNeedsConfirmation(t *testing.T) {
	m, actions := newTestModel()

	press(m, "q")
	assert.True(t, m.confirmLeave)
	assert.Contains(t, m.View(), "Leave the meeting?")

	press(m, "n")
	assert.False(t, m.confirmLeave)

	press(m, "q")
	cmd := press(m, "y")
	require.NotNil(t, cmd)
	assert.True(t, m.leaving)

	msg := cmd()
	assert.Equal(t, 1, actions.leaves)

	_, quit := m.Update(msg)
	require.NotNil(t, quit)
	assert.True(t, m.quitting)
	assert.Empty(t, m.View())
}

func TestMeetingModel_DoubleCtrlCLeaves(t *testing.T) {
	m, actions := newTestModel()

	assert.Nil(t, press(m, "ctrl+c"))
	cmd := press(m, "ctrl+c")
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, 1, actions.leaves)
}

func TestSummaryView(t *testing.T) {
	view := SummaryView(conference.Summary{
		RoomID:           "room",
		Name:             "Alice",
		Duration:         83 * time.Second,
		PeakParticipants: 3,
		MessagesSent:     2,
	})
	assert.Contains(t, view, "Meeting Summary")
	assert.Contains(t, view, "1m 23s")
	assert.Contains(t, view, "Peak participants")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0s", formatDuration(200*time.Millisecond))
	assert.Equal(t, "45s", formatDuration(45*time.Second))
	assert.Equal(t, "1h 02m 03s", formatDuration(time.Hour+2*time.Minute+3*time.Second))
}

func TestMeetingModel_FatalLeavesOnDismiss(t *testing.T) {
	m, actions := newTestModel()

	m.Update(FatalMsg{Err: errors.New("room server unreachable")})
	require.NotNil(t, m.modal)
	assert.Contains(t, m.View(), "room server unreachable")

	cmd := press(m, "enter")
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, 1, actions.leaves)
}

// stalledActions blocks every emitting action, as a meeting does while its
// event buffer is full.
type stalledActions struct {
	fakeActions
	release chan struct{}
}

func (s *stalledActions) ToggleMute() bool          { <-s.release; return true }
func (s *stalledActions) ToggleVideo() bool         { <-s.release; return true }
func (s *stalledActions) SendChat(body string) bool { <-s.release; return true }

func TestMeetingModel_ActionsDoNotBlockUpdates(t *testing.T) {
	actions := &stalledActions{release: make(chan struct{})}
	defer close(actions.release)
	m := NewMeetingModel(MeetingOptions{RoomID: "room", SelfIdentity: "a", SelfName: "Alice"},
		actions, make(chan conference.Event))

	updated := make(chan []tea.Cmd, 1)
	go func() {
		var cmds []tea.Cmd
		cmds = append(cmds, press(m, "m"), press(m, "v"))
		press(m, "c")
		m.input.SetValue("hello")
		cmds = append(cmds, press(m, "enter"))
		updated <- cmds
	}()

	select {
	case cmds := <-updated:
		for _, cmd := range cmds {
			assert.NotNil(t, cmd)
		}
	case <-time.After(time.Second):
		t.Fatal("key handling waited on a blocked action")
	}

	// Events keep flowing while the actions are still pending.
	deliver(m, conference.MediaChanged{State: media.State{AudioMuted: true}})
	assert.True(t, m.local.AudioMuted)
}
