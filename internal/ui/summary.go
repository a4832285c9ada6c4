package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/HarshithaPadmanabha/StudyHub/internal/conference"
)

// SummaryView renders the meeting summary shown after leaving.
func SummaryView(s conference.Summary) string {
	t := table.NewWriter()
	t.SetTitle(IconWave + " Meeting Summary")
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRows([]table.Row{
		{"Room", s.RoomID},
		{"Joined as", s.Name},
		{"Duration", formatDuration(s.Duration)},
		{"Peak participants", s.PeakParticipants},
		{"Messages sent", s.MessagesSent},
		{"Messages received", s.MessagesReceived},
	})

	t.SetStyle(table.StyleRounded)
	t.Style().Title.Align = text.AlignCenter
	t.Style().Color.Header = text.Colors{text.FgCyan, text.Bold}
	t.Style().Title.Colors = text.Colors{text.FgCyan, text.Bold}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Colors: text.Colors{text.FgHiBlack}},
		{Number: 2, Align: text.AlignRight},
	})
	return t.Render()
}

func RenderSummary(s conference.Summary) {
	fmt.Println(SummaryView(s))
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	sec := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %02dm %02ds", h, m, sec)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %02ds", m, sec)
	}
	return fmt.Sprintf("%ds", sec)
}

type RoomInfo struct {
	RoomID   string
	RoomLink string
}

func NewRoomInfo(roomID, roomLink string) *RoomInfo {
	return &RoomInfo{RoomID: roomID, RoomLink: roomLink}
}

func (r *RoomInfo) View() string {
	content := fmt.Sprintf("%s Meeting ready\n\n%s Room:  %s\n%s Link:  %s",
		IconSuccess,
		IconRoom, BoldStyle.Foreground(Primary).Render(r.RoomID),
		IconLink, MutedStyle.Render(r.RoomLink),
	)
	return SuccessBoxStyle.Render(content)
}

func (r *RoomInfo) Render() {
	fmt.Println(lipgloss.NewStyle().MarginBottom(1).Render(r.View()))
}
