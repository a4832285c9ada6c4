// Package media holds the local capture handles shared by the preview and every
// outgoing peer sender: tracks with an enabled flag and an end-of-life event,
// streams of tracks, and the sources that produce them.
package media

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/pion/webrtc/v4"
	pionmedia "github.com/pion/webrtc/v4/pkg/media"
)

// Kind is the media type of a track.
type Kind string

const (
	KindAudio Kind = "audio"
	KindVideo Kind = "video"
)

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrTrackStopped     = errors.New("track stopped")
)

// LocalTrack is a locally captured track. Disabled tracks drop samples instead of
// sending them, stopped tracks reject them.
type LocalTrack struct {
	kind  Kind
	local *webrtc.TrackLocalStaticSample

	enabled atomic.Bool

	mu      sync.Mutex
	stopped bool
	ended   bool
	onEnded []func()
	done    chan struct{}
}

// NewLocalTrack creates a VP8 video or Opus audio track.
func NewLocalTrack(kind Kind, id, streamID string) (*LocalTrack, error) {
	var codec webrtc.RTPCodecCapability
	switch kind {
	case KindAudio:
		codec = webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus, ClockRate: 48000, Channels: 2}
	case KindVideo:
		codec = webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8, ClockRate: 90000}
	default:
		return nil, fmt.Errorf("unknown track kind %q", kind)
	}

	local, err := webrtc.NewTrackLocalStaticSample(codec, id, streamID)
	if err != nil {
		return nil, fmt.Errorf("create %s track: %w", kind, err)
	}

	t := &LocalTrack{
		kind:  kind,
		local: local,
		done:  make(chan struct{}),
	}
	t.enabled.Store(true)
	return t, nil
}

func (t *LocalTrack) ID() string { return t.local.ID() }

func (t *LocalTrack) Kind() Kind { return t.kind }

// Local returns the pion track handed to peer connection senders.
func (t *LocalTrack) Local() webrtc.TrackLocal { return t.local }

func (t *LocalTrack) Enabled() bool { return t.enabled.Load() }

func (t *LocalTrack) SetEnabled(enabled bool) { t.enabled.Store(enabled) }

// WriteSample forwards a sample to every bound sender.
func (t *LocalTrack) WriteSample(s pionmedia.Sample) error {
	if t.Stopped() {
		return ErrTrackStopped
	}
	if !t.Enabled() {
		return nil
	}
	return t.local.WriteSample(s)
}

// OnEnded registers fn to run when the source ends the track. A local Stop does
// not fire it. Registering on an already ended track runs fn immediately.
func (t *LocalTrack) OnEnded(fn func()) {
	t.mu.Lock()
	if t.ended {
		t.mu.Unlock()
		fn()
		return
	}
	t.onEnded = append(t.onEnded, fn)
	t.mu.Unlock()
}

// Stop releases the track locally.
func (t *LocalTrack) Stop() {
	t.stop()
}

// End marks the track as ended by its source (device unplugged, share revoked)
// and runs the OnEnded callbacks once.
func (t *LocalTrack) End() {
	if !t.stop() {
		return
	}

	t.mu.Lock()
	t.ended = true
	callbacks := t.onEnded
	t.onEnded = nil
	t.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

func (t *LocalTrack) stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	close(t.done)
	return true
}

func (t *LocalTrack) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// Done is closed once the track is stopped or ended.
func (t *LocalTrack) Done() <-chan struct{} { return t.done }
