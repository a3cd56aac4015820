// Package ffmpegsource decodes video files by streaming raw RGBA frames from an ffmpeg
// child process. Stream properties come from the MP4 container via mp4probe.
package ffmpegsource

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"os"
	"os/exec"
	"strconv"

	"github.com/user/vidmark/pkg/adapters/mp4probe"
	"github.com/user/vidmark/pkg/ports"
)

// ErrClosed is returned when a closed source is used.
var ErrClosed = errors.New("ffmpegsource: source closed")

// Opener opens files for decoding with ffmpeg.
type Opener struct {
	logger ports.Logger
}

// NewOpener creates an Opener. Use SetFFmpegPath to pin the binary.
func NewOpener(logger ports.Logger) *Opener {
	return &Opener{logger: logger.WithComponent("ffmpeg")}
}

// Open implements ports.SourceOpener.
func (o *Opener) Open(path string) (ports.VideoSource, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrResourceUnavailable, err)
	}

	info, err := mp4probe.ProbeFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ports.ErrResourceUnavailable, path, err)
	}
	if info.Width <= 0 || info.Height <= 0 {
		return nil, fmt.Errorf("%w: %s: invalid dimensions %dx%d", ports.ErrResourceUnavailable, path, info.Width, info.Height)
	}

	ffmpegPath, err := FindFFmpeg()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrResourceUnavailable, err)
	}

	s := &Source{
		ffmpegPath: ffmpegPath,
		path:       path,
		logger:     o.logger,
		props: ports.SourceProperties{
			FrameRate:  info.FrameRate,
			FrameCount: info.FrameCount,
			Width:      info.Width,
			Height:     info.Height,
			Codec:      string(info.Codec),
		},
		last: -1,
	}
	if err := s.start(0); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ports.ErrResourceUnavailable, path, err)
	}
	o.logger.Debug("Decoding %s (%s, %dx%d) with %s", path, info.Codec, info.Width, info.Height, ffmpegPath)
	return s, nil
}

// Source is a running ffmpeg decode of one file.
type Source struct {
	ffmpegPath string
	path       string
	logger     ports.Logger
	props      ports.SourceProperties

	cmd    *exec.Cmd
	stdout io.ReadCloser
	reader *bufio.Reader
	stderr bytes.Buffer

	next   int // index of the next frame the pipe yields
	last   int // index of the last frame returned
	closed bool
}

// Properties implements ports.VideoSource.
func (s *Source) Properties() ports.SourceProperties {
	return s.props
}

func (s *Source) rate() float64 {
	if s.props.FrameRate <= 0 {
		return 30
	}
	return s.props.FrameRate
}

// start launches ffmpeg positioned at frame index.
func (s *Source) start(index int) error {
	args := []string{"-hide_banner", "-loglevel", "error", "-nostdin"}
	if index > 0 {
		args = append(args, "-ss", strconv.FormatFloat(float64(index)/s.rate(), 'f', 6, 64))
	}
	args = append(args,
		"-i", s.path,
		"-an",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", s.props.Width, s.props.Height),
		"pipe:1",
	)

	cmd := exec.Command(s.ffmpegPath, args...)
	s.stderr.Reset()
	cmd.Stderr = &s.stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	s.cmd = cmd
	s.stdout = stdout
	s.reader = bufio.NewReaderSize(stdout, s.frameBytes())
	s.next = index
	return nil
}

// stop kills the running ffmpeg process, if any, and reaps it.
func (s *Source) stop() {
	if s.cmd == nil {
		return
	}
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.cmd.Wait()
	s.cmd = nil
	s.stdout = nil
	s.reader = nil
}

func (s *Source) frameBytes() int {
	return s.props.Width * s.props.Height * 4
}

// ReadFrame implements ports.VideoSource.
func (s *Source) ReadFrame() (image.Image, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if s.reader == nil {
		return nil, ports.ErrEndOfStream
	}

	img := image.NewRGBA(image.Rect(0, 0, s.props.Width, s.props.Height))
	_, err := io.ReadFull(s.reader, img.Pix)
	switch {
	case err == nil:
		s.last = s.next
		s.next++
		return img, nil
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		// stderr is only complete, and safe to read, once the process is reaped.
		s.stop()
		stderr := s.stderr.String()
		if stderr != "" {
			s.logger.Debug("ffmpeg finished %s: %s", s.path, stderr)
		}
		return nil, ports.ErrEndOfStream
	default:
		return nil, fmt.Errorf("read frame: %w", err)
	}
}

// Seek implements ports.VideoSource by restarting ffmpeg at the nearest frame.
func (s *Source) Seek(seconds float64) error {
	if s.closed {
		return ErrClosed
	}
	index := int(math.Round(seconds * s.rate()))
	if s.props.FrameCount > 0 {
		index = min(index, s.props.FrameCount)
	}
	index = max(index, 0)

	s.stop()
	if err := s.start(index); err != nil {
		return fmt.Errorf("seek %s to %.3fs: %w", s.path, seconds, err)
	}
	return nil
}

// Position implements ports.VideoSource.
func (s *Source) Position() float64 {
	if s.last < 0 {
		return 0
	}
	return float64(s.last) / s.rate()
}

// Close implements ports.VideoSource.
func (s *Source) Close() error {
	if s.closed {
		return ErrClosed
	}
	s.closed = true
	s.stop()
	return nil
}

var (
	_ ports.SourceOpener = (*Opener)(nil)
	_ ports.VideoSource  = (*Source)(nil)
)
