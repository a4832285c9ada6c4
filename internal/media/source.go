package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	pionmedia "github.com/pion/webrtc/v4/pkg/media"
	"github.com/pion/webrtc/v4/pkg/media/ivfreader"
	"github.com/pion/webrtc/v4/pkg/media/oggreader"
)

// Source hands out capture streams, the way a browser grants camera and screen access.
type Source interface {
	// UserMedia returns a stream with one audio and one video track.
	UserMedia(ctx context.Context) (*Stream, error)
	// DisplayMedia returns a stream with one screen video track.
	DisplayMedia(ctx context.Context) (*Stream, error)
}

const (
	oggPageDuration = 20 * time.Millisecond
	opusClockRate   = 48000
)

// FileSource plays IVF (VP8) and Ogg (Opus) files in place of real devices.
// Camera and microphone files loop; the screen file plays once and then ends the
// track, like a user revoking the share. Without files the tracks are silent.
type FileSource struct {
	VideoFile  string
	AudioFile  string
	ScreenFile string
	Log        *slog.Logger
}

func (s *FileSource) logger() *slog.Logger {
	if s.Log == nil {
		return slog.Default()
	}
	return s.Log
}

func (s *FileSource) UserMedia(ctx context.Context) (*Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	audio, err := NewLocalTrack(KindAudio, "audio", "camera")
	if err != nil {
		return nil, err
	}
	video, err := NewLocalTrack(KindVideo, "video", "camera")
	if err != nil {
		return nil, err
	}

	var audioFile, videoFile *os.File
	if s.AudioFile != "" {
		if audioFile, err = os.Open(s.AudioFile); err != nil {
			return nil, fmt.Errorf("%w: microphone: %v", ErrPermissionDenied, err)
		}
	}
	if s.VideoFile != "" {
		if videoFile, err = os.Open(s.VideoFile); err != nil {
			if audioFile != nil {
				audioFile.Close()
			}
			return nil, fmt.Errorf("%w: camera: %v", ErrPermissionDenied, err)
		}
	}

	if audioFile != nil {
		go s.playOgg(audio, audioFile)
	}
	if videoFile != nil {
		go s.playIVF(video, videoFile, true)
	}

	return NewStream("camera", audio, video), nil
}

func (s *FileSource) DisplayMedia(ctx context.Context) (*Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.ScreenFile == "" {
		return nil, fmt.Errorf("%w: no display source configured", ErrPermissionDenied)
	}

	f, err := os.Open(s.ScreenFile)
	if err != nil {
		return nil, fmt.Errorf("%w: display: %v", ErrPermissionDenied, err)
	}

	screen, err := NewLocalTrack(KindVideo, "screen", "screen")
	if err != nil {
		f.Close()
		return nil, err
	}

	go s.playIVF(screen, f, false)
	return NewStream("screen", screen), nil
}

var errStopped = errors.New("stopped")

func (s *FileSource) playIVF(t *LocalTrack, f *os.File, loop bool) {
	defer f.Close()
	log := s.logger().With("track", t.ID(), "file", f.Name())

	for {
		reader, header, err := ivfreader.NewWith(f)
		if err != nil {
			log.Warn("invalid ivf file", "err", err)
			t.End()
			return
		}

		interval := time.Duration(float64(time.Second) * float64(header.TimebaseNumerator) / float64(header.TimebaseDenominator))
		if interval <= 0 {
			interval = 33 * time.Millisecond
		}

		err = pace(t, interval, func() error {
			frame, _, err := reader.ParseNextFrame()
			if err != nil {
				return err
			}
			return t.WriteSample(pionmedia.Sample{Data: frame, Duration: interval})
		})

		if s.rewind(f, err, loop) {
			continue
		}
		s.finish(t, err, log)
		return
	}
}

func (s *FileSource) playOgg(t *LocalTrack, f *os.File) {
	defer f.Close()
	log := s.logger().With("track", t.ID(), "file", f.Name())

	for {
		reader, _, err := oggreader.NewWith(f)
		if err != nil {
			log.Warn("invalid ogg file", "err", err)
			t.End()
			return
		}

		var lastGranule uint64
		err = pace(t, oggPageDuration, func() error {
			page, header, err := reader.ParseNextPage()
			if err != nil {
				return err
			}
			samples := header.GranulePosition - lastGranule
			lastGranule = header.GranulePosition
			duration := time.Duration(float64(samples) / opusClockRate * float64(time.Second))
			return t.WriteSample(pionmedia.Sample{Data: page, Duration: duration})
		})

		if s.rewind(f, err, true) {
			continue
		}
		s.finish(t, err, log)
		return
	}
}

// pace runs step on every tick until it fails or the track stops.
func pace(t *LocalTrack, interval time.Duration, step func() error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.Done():
			return errStopped
		case <-ticker.C:
		}
		if err := step(); err != nil {
			return err
		}
	}
}

func (s *FileSource) rewind(f *os.File, err error, loop bool) bool {
	if !loop || !errors.Is(err, io.EOF) {
		return false
	}
	_, seekErr := f.Seek(0, io.SeekStart)
	return seekErr == nil
}

func (s *FileSource) finish(t *LocalTrack, err error, log *slog.Logger) {
	if errors.Is(err, errStopped) || errors.Is(err, ErrTrackStopped) {
		return
	}
	if !errors.Is(err, io.EOF) {
		log.Warn("media source failed", "err", err)
	}
	t.End()
}
