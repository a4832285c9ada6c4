package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/HarshithaPadmanabha/StudyHub/internal/conference"
	"github.com/HarshithaPadmanabha/StudyHub/internal/media"
)

const toastDuration = 4 * time.Second

// Actions are the user controls of a meeting.
type Actions interface {
	ToggleMute() bool
	ToggleVideo() bool
	ToggleScreenShare(ctx context.Context) error
	SendChat(body string) bool
	Leave()
}

type MeetingOptions struct {
	RoomID       string
	RoomLink     string
	SelfIdentity string
	SelfName     string
}

type panel int

const (
	panelNone panel = iota
	panelChat
	panelParticipants
)

// FatalMsg reports an error that ends the meeting. The view shows it until
// dismissed, then leaves.
type FatalMsg struct{ Err error }

type (
	eventMsg        struct{ event conference.Event }
	eventsClosedMsg struct{}
	leftMsg         struct{}
	screenShareMsg  struct{ err error }
	toastExpiredMsg struct{ id int }
)

// tile is a remote participant whose media is attached.
type tile struct {
	identity string
	kinds    []media.Kind
	state    media.State
}

// MeetingModel renders a meeting from its event stream. It holds no meeting
// state of its own beyond what the events carried.
type MeetingModel struct {
	opts    MeetingOptions
	actions Actions
	events  <-chan conference.Event

	participants []conference.Participant
	tiles        []*tile
	local        media.State
	connected    bool
	messages     []conference.ChatMessage
	unread       int

	panel panel
	input textinput.Model
	log   viewport.Model

	modal        *conference.Notice
	toast        *conference.Notice
	toastID      int
	confirmLeave bool
	fatal        bool
	leaving      bool
	quitting     bool
	width        int
}

func NewMeetingModel(opts MeetingOptions, actions Actions, events <-chan conference.Event) *MeetingModel {
	input := textinput.New()
	input.Placeholder = "Type a message"
	input.CharLimit = 500
	input.Width = 50
	input.Prompt = IconChat + " "

	return &MeetingModel{
		opts:    opts,
		actions: actions,
		events:  events,
		input:   input,
		log:     viewport.New(60, 10),
		width:   80,
	}
}

func (m *MeetingModel) Init() tea.Cmd {
	return m.listenForEvents()
}

func (m *MeetingModel) listenForEvents() tea.Cmd {
	return func() tea.Msg {
		e, ok := <-m.events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg{event: e}
	}
}

func (m *MeetingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.log.Width = max(20, msg.Width-6)
		m.log.Height = max(5, msg.Height-18)
		m.input.Width = max(10, msg.Width-10)
		m.refreshLog()

	case eventMsg:
		cmd := m.apply(msg.event)
		if m.quitting {
			return m, tea.Quit
		}
		return m, tea.Batch(cmd, m.listenForEvents())

	case FatalMsg:
		m.fatal = true
		m.confirmLeave = false
		m.modal = &conference.Notice{Level: conference.NoticeError, Text: msg.Err.Error(), Blocking: true}

	case eventsClosedMsg, leftMsg:
		m.quitting = true
		return m, tea.Quit

	case screenShareMsg:
		// Failures arrive as notices on the event stream.

	case toastExpiredMsg:
		if msg.id == m.toastID {
			m.toast = nil
		}
	}
	return m, nil
}

func (m *MeetingModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.leaving {
		return m, nil
	}
	if msg.Type == tea.KeyCtrlC {
		if m.confirmLeave {
			return m, m.leave()
		}
		m.confirmLeave = true
		return m, nil
	}

	if m.modal != nil {
		switch msg.String() {
		case "enter", "esc", " ":
			m.modal = nil
			if m.fatal {
				return m, m.leave()
			}
		}
		return m, nil
	}

	if m.confirmLeave {
		switch msg.String() {
		case "y", "Y", "enter":
			return m, m.leave()
		case "n", "N", "esc", "q":
			m.confirmLeave = false
		}
		return m, nil
	}

	if m.panel == panelChat {
		switch msg.Type {
		case tea.KeyEnter:
			body := m.input.Value()
			if strings.TrimSpace(body) == "" {
				return m, nil
			}
			m.input.Reset()
			actions := m.actions
			return m, perform(func() { actions.SendChat(body) })
		case tea.KeyEsc:
			m.closePanel()
			return m, nil
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.log, cmd = m.log.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	actions := m.actions
	switch msg.String() {
	case "m":
		return m, perform(func() { actions.ToggleMute() })
	case "v":
		return m, perform(func() { actions.ToggleVideo() })
	case "s":
		return m, m.toggleScreenShare()
	case "c":
		return m, m.togglePanel(panelChat)
	case "p":
		return m, m.togglePanel(panelParticipants)
	case "esc":
		m.closePanel()
	case "q":
		m.confirmLeave = true
	}
	return m, nil
}

// perform runs an action off the update loop. Actions emit meeting events,
// and only the update loop drains them.
func perform(action func()) tea.Cmd {
	return func() tea.Msg {
		action()
		return nil
	}
}

func (m *MeetingModel) toggleScreenShare() tea.Cmd {
	actions := m.actions
	return func() tea.Msg {
		return screenShareMsg{err: actions.ToggleScreenShare(context.Background())}
	}
}

func (m *MeetingModel) leave() tea.Cmd {
	m.confirmLeave = false
	m.leaving = true
	actions := m.actions
	return func() tea.Msg {
		actions.Leave()
		return leftMsg{}
	}
}

// togglePanel opens p and closes the other panel, or closes p if open.
func (m *MeetingModel) togglePanel(p panel) tea.Cmd {
	if m.panel == p {
		m.closePanel()
		return nil
	}
	m.panel = p
	if p == panelChat {
		m.unread = 0
		m.refreshLog()
		return m.input.Focus()
	}
	m.input.Blur()
	return nil
}

func (m *MeetingModel) closePanel() {
	m.panel = panelNone
	m.input.Blur()
}

func (m *MeetingModel) apply(e conference.Event) tea.Cmd {
	switch e := e.(type) {
	case conference.RosterChanged:
		// The list opens by itself when its first entry appears.
		if len(m.participants) == 0 && len(e.Participants) == 1 && m.panel == panelNone {
			m.panel = panelParticipants
		}
		m.participants = e.Participants

	case conference.StreamAdded:
		if m.tile(e.Identity) == nil {
			m.tiles = append(m.tiles, &tile{identity: e.Identity, kinds: e.Stream.Kinds})
		}

	case conference.StreamRemoved:
		for i, t := range m.tiles {
			if t.identity == e.Identity {
				m.tiles = append(m.tiles[:i], m.tiles[i+1:]...)
				break
			}
		}

	case conference.MediaChanged:
		m.local = e.State

	case conference.RemoteMediaChanged:
		if t := m.tile(e.Identity); t != nil {
			t.state = e.State
		}

	case conference.ChatAppended:
		m.messages = append(m.messages, e.Message)
		if m.panel != panelChat {
			m.unread++
		}
		m.refreshLog()

	case conference.ConnectionChanged:
		m.connected = e.Connected

	case conference.Notice:
		if e.Blocking {
			m.modal = &e
			return nil
		}
		m.toastID++
		m.toast = &e
		id := m.toastID
		return tea.Tick(toastDuration, func(time.Time) tea.Msg { return toastExpiredMsg{id: id} })

	case conference.Left:
		m.quitting = true
	}
	return nil
}

func (m *MeetingModel) tile(identity string) *tile {
	for _, t := range m.tiles {
		if t.identity == identity {
			return t
		}
	}
	return nil
}

func (m *MeetingModel) refreshLog() {
	lines := make([]string, 0, len(m.messages))
	for _, msg := range m.messages {
		lines = append(lines, formatChatLine(msg))
	}
	m.log.SetContent(strings.Join(lines, "\n"))
	m.log.GotoBottom()
}

func formatChatLine(msg conference.ChatMessage) string {
	name := BoldStyle.Render(msg.SenderName)
	if msg.Direction == conference.DirectionSent {
		name = BoldStyle.Foreground(Primary).Render("You")
	}
	return fmt.Sprintf("%s %s: %s", MutedStyle.Render(msg.Clock()), name, msg.Body)
}

func (m *MeetingModel) displayName(identity string) string {
	for _, p := range m.participants {
		if p.Identity == identity {
			return p.DisplayName
		}
	}
	return conference.DefaultDisplayName
}

func (m *MeetingModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.headerView() + "\n\n")

	if m.modal != nil {
		style := ModalStyle
		if m.modal.Level == conference.NoticeError {
			style = ErrorModalStyle
		}
		b.WriteString(style.Render(m.modal.Text+"\n\n"+MutedStyle.Render("Press enter to dismiss")) + "\n")
		return b.String()
	}

	b.WriteString(m.tilesView() + "\n")

	switch m.panel {
	case panelChat:
		b.WriteString(m.chatView() + "\n")
	case panelParticipants:
		b.WriteString(m.participantsView() + "\n")
	}

	if m.toast != nil {
		icon, style := IconInfo, MutedStyle
		switch m.toast.Level {
		case conference.NoticeWarning:
			icon, style = IconWarning, WarningStyle
		case conference.NoticeError:
			icon, style = IconError, ErrorStyle
		}
		b.WriteString(style.Render(icon+" "+m.toast.Text) + "\n")
	}

	b.WriteString(m.footerView())
	return b.String()
}

func (m *MeetingModel) headerView() string {
	status := StatusStyle.Render("● Connected")
	if !m.connected {
		status = OfflineStatusStyle.Render("○ Reconnecting")
	}
	title := HeaderStyle.Render("StudyHub · " + m.opts.RoomID)
	count := MutedStyle.Render(fmt.Sprintf("%s %d", IconPeople, len(m.participants)))
	return lipgloss.JoinHorizontal(lipgloss.Center, title, " ", status, "  ", count)
}

func (m *MeetingModel) tilesView() string {
	boxes := []string{renderTile(m.opts.SelfName+" (You)", m.local, true, SelfTileStyle)}
	for _, t := range m.tiles {
		boxes = append(boxes, renderTile(m.displayName(t.identity), t.state, hasKind(t.kinds, media.KindVideo), TileStyle))
	}

	perRow := max(1, m.width/(TileStyle.GetWidth()+2))
	var rows []string
	for i := 0; i < len(boxes); i += perRow {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, boxes[i:min(i+perRow, len(boxes))]...))
	}

	view := lipgloss.JoinVertical(lipgloss.Left, rows...)
	if len(m.tiles) == 0 {
		view += "\n" + MutedStyle.Render(IconWaiting+" Waiting for others to join. Share "+m.opts.RoomLink)
	}
	return view
}

func renderTile(name string, state media.State, video bool, style lipgloss.Style) string {
	mic := IconMic
	if state.AudioMuted {
		mic = IconMuted
	}
	cam := IconCamera
	if state.VideoSuspended || !video {
		cam = IconCameraOff
	}
	line := mic + " " + cam
	if state.ScreenSharing {
		line += " " + IconScreen + " sharing"
	}
	return style.Render(BoldStyle.Render(truncate(name, 22)) + "\n\n" + line)
}

func hasKind(kinds []media.Kind, kind media.Kind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func (m *MeetingModel) chatView() string {
	title := TitleStyle.Render(IconChat + " Chat")
	body := m.log.View()
	if len(m.messages) == 0 {
		body = MutedStyle.Render("No messages yet")
	}
	return PanelStyle.Render(title + "\n" + body + "\n\n" + m.input.View())
}

func (m *MeetingModel) participantsView() string {
	rows := make([][]string, 0, len(m.participants))
	for i, p := range m.participants {
		rows = append(rows, []string{fmt.Sprintf("%d", i+1), p.Label()})
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Secondary)).
		Headers("#", "Name").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return TableHeaderStyle
			case row%2 == 0:
				return TableRowStyle
			default:
				return TableRowAltStyle
			}
		})

	title := TitleStyle.Render(fmt.Sprintf("%s Participants (%d)", IconPeople, len(m.participants)))
	return PanelStyle.Render(title + "\n" + tbl.Render())
}

func (m *MeetingModel) footerView() string {
	if m.leaving {
		return FooterStyle.Render(IconWave + " Leaving...")
	}
	if m.confirmLeave {
		return WarningStyle.Render("Leave the meeting? (y/n)")
	}

	mute := "m mute"
	if m.local.AudioMuted {
		mute = "m unmute"
	}
	video := "v stop video"
	if m.local.VideoSuspended {
		video = "v start video"
	}
	share := "s share screen"
	if m.local.ScreenSharing {
		share = "s stop sharing"
	}
	chat := "c chat"
	if m.unread > 0 {
		chat = fmt.Sprintf("c chat (%d)", m.unread)
	}
	if m.panel == panelChat {
		return FooterStyle.Render("enter send · esc close chat · pgup/pgdn scroll")
	}
	return FooterStyle.Render(strings.Join([]string{mute, video, share, chat, "p people", "q leave"}, " · "))
}
