package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/HarshithaPadmanabha/StudyHub/internal/conference"
	"github.com/HarshithaPadmanabha/StudyHub/internal/config"
	"github.com/HarshithaPadmanabha/StudyHub/internal/logging"
	"github.com/HarshithaPadmanabha/StudyHub/internal/media"
	"github.com/HarshithaPadmanabha/StudyHub/internal/roomid"
	"github.com/HarshithaPadmanabha/StudyHub/internal/rtc"
	"github.com/HarshithaPadmanabha/StudyHub/internal/ui"
)

var (
	flagJoinServer    string
	flagJoinName      string
	flagJoinSTUN      string
	flagJoinTURN      string
	flagJoinTURNUser  string
	flagJoinTURNPass  string
	flagJoinRelay     bool
	flagJoinLoopback  bool
	flagJoinVideo     string
	flagJoinAudio     string
	flagJoinScreen    string
	flagJoinReconnect int
	flagJoinLogFile   string
)

var joinCmd = &cobra.Command{
	Use:     "join [room-id|url]",
	Aliases: []string{"j"},
	Short:   "Join a study room",
	Long: `Join a study room and meet everyone in it over WebRTC.

Without a room ID a new room name is generated; share the printed link so
others can join. Camera, microphone and screen are played from local files
(VP8 .ivf and Opus .ogg); without files silent tracks are sent.

Examples:
  studyhub join
  studyhub join quiet-physics-notebook-otter
  studyhub join https://studyhub.example.org/meet/quiet-physics-notebook-otter
  studyhub join quiet-physics-notebook-otter --name Alice --video cam.ivf --audio mic.ogg`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		roomID := roomid.New(nil)
		if len(args) == 1 {
			var err error
			roomID, err = parseRoomInput(args[0])
			if err != nil {
				return err
			}
		}

		opts := config.Options{
			Server:     flagJoinServer,
			Name:       flagJoinName,
			STUNServer: flagJoinSTUN,
			TURNServer: flagJoinTURN,
			TURNUser:   flagJoinTURNUser,
			TURNPass:   flagJoinTURNPass,
			ForceRelay: flagJoinRelay,
			VideoFile:  flagJoinVideo,
			AudioFile:  flagJoinAudio,
			ScreenFile: flagJoinScreen,
		}
		if cmd.Flags().Changed("reconnect") {
			opts.ReconnectAttempts = &flagJoinReconnect
		}
		return joinRoom(cmd.Context(), roomID, opts)
	},
}

func joinRoom(ctx context.Context, roomID string, opts config.Options) error {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return err
	}

	log, closeLog, err := meetingLogger(flagJoinLogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	source := &media.FileSource{
		VideoFile:  cfg.VideoFile,
		AudioFile:  cfg.AudioFile,
		ScreenFile: cfg.ScreenFile,
		Log:        log,
	}

	fmt.Println()
	s := ui.NewSimpleSpinner("Opening camera and microphone...")
	s.Start()
	capture, err := source.UserMedia(ctx)
	if err != nil {
		s.Error("Could not open camera and microphone")
		return conference.NewError("open media", err)
	}
	s.Stop()

	s = ui.NewConnectionSpinner("Connecting to server...")
	s.Start()
	conn, err := NewConnectionContext(ctx, cfg, log)
	if err != nil {
		s.Error("Could not reach the room server")
		capture.Stop()
		return err
	}
	defer conn.Close()
	s.Stop()

	connectorOpts := []rtc.Option{}
	if flagJoinLoopback {
		connectorOpts = append(connectorOpts, rtc.WithLoopback())
	}
	connector, err := rtc.NewConnector(cfg, conn.Client, conn.Self, roomID, log, connectorOpts...)
	if err != nil {
		capture.Stop()
		return conference.NewError("create connector", err)
	}

	meeting := conference.NewMeeting(conference.MeetingConfig{
		RoomID:   roomID,
		Identity: conn.Self.Identity,
		Name:     conn.Self.Name,
	}, conn.Client, connector, capture, source, log)

	roomLink := cfg.GetRoomLink(roomID)
	ui.NewRoomInfo(roomID, roomLink).Render()

	model := ui.NewMeetingModel(ui.MeetingOptions{
		RoomID:       roomID,
		RoomLink:     roomLink,
		SelfIdentity: conn.Self.Identity,
		SelfName:     conn.Self.Name,
	}, meeting, meeting.Events())

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(runCtx))

	go func() {
		err := conn.Client.Run(runCtx)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error("signaling stopped", "err", err)
			program.Send(ui.FatalMsg{Err: fmt.Errorf("lost connection to the room server: %w", err)})
		}
	}()
	go meeting.Run(runCtx, conn.Client.Incoming())

	_, err = program.Run()
	meeting.Leave()
	cancel()
	conn.Close()

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return conference.NewError("run meeting", err)
	}

	fmt.Println()
	ui.RenderSummary(meeting.Summary())
	return nil
}

// meetingLogger sends logs to path, or drops them: the meeting view owns the
// terminal.
func meetingLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return logging.Discard(), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, conference.NewError("open log file", err)
	}
	return logging.InitWriter(f), func() { f.Close() }, nil
}

// parseRoomInput accepts a bare room ID or a room link; the room is the last
// path segment of the link.
func parseRoomInput(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("room ID cannot be empty")
	}

	if strings.Contains(input, "://") || strings.Contains(input, "/") {
		return extractRoomIDFromURL(input)
	}

	return input, nil
}

func extractRoomIDFromURL(urlStr string) (string, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return "", conference.NewError("parse URL", err)
	}

	path := strings.TrimRight(parsedURL.Path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		path = path[i+1:]
	}
	if path == "" {
		return "", fmt.Errorf("could not extract room ID from URL: %s", urlStr)
	}
	return path, nil
}

func init() {
	rootCmd.AddCommand(joinCmd)

	joinCmd.Flags().StringVarP(&flagJoinServer, "server", "S", "", "Room server address (host[:port] or URL)")
	joinCmd.Flags().StringVarP(&flagJoinName, "name", "n", "", "Display name shown to other participants")
	joinCmd.Flags().StringVar(&flagJoinSTUN, "stun", "", "STUN server URL")
	joinCmd.Flags().StringVar(&flagJoinTURN, "turn", "", "TURN server host")
	joinCmd.Flags().StringVar(&flagJoinTURNUser, "turn-user", "", "TURN username")
	joinCmd.Flags().StringVar(&flagJoinTURNPass, "turn-pass", "", "TURN password")
	joinCmd.Flags().BoolVar(&flagJoinRelay, "relay", false, "Force traffic through the TURN relay")
	joinCmd.Flags().BoolVar(&flagJoinLoopback, "loopback", false, "Offer loopback candidates, for peers on the same machine")
	joinCmd.Flags().StringVar(&flagJoinVideo, "video", "", "VP8 IVF file used as the camera")
	joinCmd.Flags().StringVar(&flagJoinAudio, "audio", "", "Opus Ogg file used as the microphone")
	joinCmd.Flags().StringVar(&flagJoinScreen, "screen", "", "VP8 IVF file used when sharing the screen")
	joinCmd.Flags().IntVar(&flagJoinReconnect, "reconnect", config.DefaultReconnectAttempts, "Reconnect attempts after losing the server (0 retries forever)")
	joinCmd.Flags().StringVar(&flagJoinLogFile, "log-file", "", "Write logs to this file")
}
