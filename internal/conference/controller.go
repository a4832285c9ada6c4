package conference

import (
	"context"
	"log/slog"
	"sync"

	"github.com/HarshithaPadmanabha/StudyHub/internal/media"
)

// OutgoingSessions is the part of the session layer the media controller
// drives.
type OutgoingSessions interface {
	ReplaceOutgoingVideoTrack(track *media.LocalTrack) error
	BroadcastState(state media.State)
}

// MediaController owns the local capture stream and the optional screen
// stream. Toggling mute or video flips the enabled flag on the shared capture
// tracks, so every peer and the local preview follow.
type MediaController struct {
	source   media.Source
	sessions OutgoingSessions
	notify   Notifier
	log      *slog.Logger

	mu       sync.Mutex
	capture  *media.Stream
	screen   *media.Stream
	state    media.State
	starting bool
	closed   bool
}

func NewMediaController(capture *media.Stream, source media.Source, sessions OutgoingSessions, notify Notifier, log *slog.Logger) *MediaController {
	return &MediaController{
		source:   source,
		sessions: sessions,
		notify:   notify,
		log:      log,
		capture:  capture,
	}
}

// ToggleMute flips the audio tracks and returns the new muted state.
func (c *MediaController) ToggleMute() bool {
	c.mu.Lock()
	c.state.AudioMuted = !c.state.AudioMuted
	for _, t := range c.capture.AudioTracks() {
		t.SetEnabled(!c.state.AudioMuted)
	}
	state := c.state
	c.mu.Unlock()

	c.changed(state)
	return state.AudioMuted
}

// ToggleVideo flips the camera tracks and returns the new suspended state.
// A running screen share is not affected.
func (c *MediaController) ToggleVideo() bool {
	c.mu.Lock()
	c.state.VideoSuspended = !c.state.VideoSuspended
	for _, t := range c.capture.VideoTracks() {
		t.SetEnabled(!c.state.VideoSuspended)
	}
	state := c.state
	c.mu.Unlock()

	c.changed(state)
	return state.VideoSuspended
}

// StartScreenShare acquires a display stream and sends it in place of the
// camera. The share stops on its own when the display track ends. Failure to
// acquire leaves the camera in place and surfaces a non-blocking notice.
func (c *MediaController) StartScreenShare(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrMeetingClosed
	}
	if c.state.ScreenSharing || c.starting {
		c.mu.Unlock()
		return nil
	}
	c.starting = true
	c.mu.Unlock()

	stream, err := c.source.DisplayMedia(ctx)

	c.mu.Lock()
	c.starting = false
	if err != nil {
		c.mu.Unlock()
		c.log.Warn("Screen share unavailable", "error", err)
		c.notify.emit(Notice{Level: NoticeWarning, Text: "Screen sharing unavailable: " + err.Error()})
		return NewError("start screen share", err)
	}
	track := stream.FirstVideo()
	if track == nil || c.closed {
		c.mu.Unlock()
		stream.Stop()
		if track == nil {
			return NewError("start screen share", ErrNoVideoTrack)
		}
		return ErrMeetingClosed
	}
	c.screen = stream
	c.state.ScreenSharing = true
	state := c.state
	c.mu.Unlock()

	if err := c.sessions.ReplaceOutgoingVideoTrack(track); err != nil {
		c.log.Warn("Screen track not sent to every peer", "error", err)
	}
	c.changed(state)

	track.OnEnded(c.StopScreenShare)
	c.log.Info("Screen share started")
	return nil
}

// StopScreenShare restores the camera track. It is safe to call when not
// sharing.
func (c *MediaController) StopScreenShare() {
	c.mu.Lock()
	screen := c.screen
	wasSharing := c.state.ScreenSharing
	c.screen = nil
	c.state.ScreenSharing = false
	camera := c.capture.FirstVideo()
	state := c.state
	closed := c.closed
	c.mu.Unlock()

	if screen != nil {
		screen.Stop()
		if camera != nil && !closed {
			if err := c.sessions.ReplaceOutgoingVideoTrack(camera); err != nil {
				c.log.Warn("Camera track not restored on every peer", "error", err)
			}
		}
	}
	if wasSharing && !closed {
		c.changed(state)
		c.log.Info("Screen share stopped")
	}
}

func (c *MediaController) changed(state media.State) {
	c.sessions.BroadcastState(state)
	c.notify.emit(MediaChanged{State: state})
}

func (c *MediaController) State() media.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Capture returns the camera and microphone stream used for the local preview.
func (c *MediaController) Capture() *media.Stream {
	return c.capture
}

// Outgoing returns the stream offered to new sessions: the capture audio plus
// the screen track while sharing, the camera track otherwise.
func (c *MediaController) Outgoing() *media.Stream {
	c.mu.Lock()
	defer c.mu.Unlock()

	tracks := c.capture.AudioTracks()
	video := c.capture.FirstVideo()
	if c.screen != nil {
		if v := c.screen.FirstVideo(); v != nil {
			video = v
		}
	}
	if video != nil {
		tracks = append(tracks, video)
	}
	return media.NewStream(c.capture.ID(), tracks...)
}

// Close stops every local track.
func (c *MediaController) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	screen := c.screen
	c.screen = nil
	c.mu.Unlock()

	if screen != nil {
		screen.Stop()
	}
	c.capture.Stop()
}
