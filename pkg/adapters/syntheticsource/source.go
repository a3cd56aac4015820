// Package syntheticsource provides generated video clips that behave like decoded files.
// Clips are addressed with URIs such as "synthetic:10s@10fps/320x240".
package syntheticsource

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/user/vidmark/pkg/ports"
)

// Scheme prefixes every synthetic URI.
const Scheme = "synthetic:"

// ErrClosed is returned when a closed source is used.
var ErrClosed = errors.New("syntheticsource: source closed")

// Clip describes a generated video.
type Clip struct {
	Duration  float64 // seconds
	FrameRate float64 // may be 0 to imitate a malformed file
	Width     int
	Height    int
}

// FrameCount returns the number of frames in the clip.
func (c Clip) FrameCount() int {
	if c.FrameRate <= 0 {
		return int(math.Round(c.Duration * 30))
	}
	return int(math.Round(c.Duration * c.FrameRate))
}

// URI returns the URI that ParseURI maps back to c.
func (c Clip) URI() string {
	return fmt.Sprintf("%s%ss@%sfps/%dx%d", Scheme,
		strconv.FormatFloat(c.Duration, 'f', -1, 64),
		strconv.FormatFloat(c.FrameRate, 'f', -1, 64),
		c.Width, c.Height)
}

// ParseURI parses "synthetic:<seconds>s@<fps>fps[/<w>x<h>]". The size defaults to 320x240.
func ParseURI(uri string) (Clip, error) {
	rest, ok := strings.CutPrefix(uri, Scheme)
	if !ok {
		return Clip{}, fmt.Errorf("not a synthetic uri: %q", uri)
	}

	clip := Clip{Width: 320, Height: 240}
	timing, size, hasSize := strings.Cut(rest, "/")

	dur, fps, ok := strings.Cut(timing, "@")
	if !ok {
		return Clip{}, fmt.Errorf("missing @ in %q", uri)
	}
	var err error
	if clip.Duration, err = strconv.ParseFloat(strings.TrimSuffix(dur, "s"), 64); err != nil || clip.Duration <= 0 {
		return Clip{}, fmt.Errorf("invalid duration in %q", uri)
	}
	if clip.FrameRate, err = strconv.ParseFloat(strings.TrimSuffix(fps, "fps"), 64); err != nil || clip.FrameRate < 0 {
		return Clip{}, fmt.Errorf("invalid frame rate in %q", uri)
	}

	if hasSize {
		w, h, ok := strings.Cut(size, "x")
		if !ok {
			return Clip{}, fmt.Errorf("invalid size in %q", uri)
		}
		if clip.Width, err = strconv.Atoi(w); err != nil || clip.Width <= 0 {
			return Clip{}, fmt.Errorf("invalid width in %q", uri)
		}
		if clip.Height, err = strconv.Atoi(h); err != nil || clip.Height <= 0 {
			return Clip{}, fmt.Errorf("invalid height in %q", uri)
		}
	}
	return clip, nil
}

// IsURI reports whether path uses the synthetic scheme.
func IsURI(path string) bool {
	return strings.HasPrefix(path, Scheme)
}

// Opener opens synthetic clips. Registered paths take precedence over URI parsing.
type Opener struct {
	mu    sync.Mutex
	clips map[string]Clip
}

// NewOpener creates an Opener that only understands synthetic URIs.
func NewOpener() *Opener {
	return &Opener{clips: make(map[string]Clip)}
}

// Register makes path open as clip.
func (o *Opener) Register(path string, clip Clip) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.clips[path] = clip
}

// Open implements ports.SourceOpener.
func (o *Opener) Open(path string) (ports.VideoSource, error) {
	o.mu.Lock()
	clip, ok := o.clips[path]
	o.mu.Unlock()

	if !ok {
		var err error
		if clip, err = ParseURI(path); err != nil {
			return nil, fmt.Errorf("%w: %v", ports.ErrResourceUnavailable, err)
		}
	}
	return New(clip), nil
}

// Source generates the frames of a Clip on demand.
type Source struct {
	clip   Clip
	frames int
	next   int // index of the next frame ReadFrame returns
	last   int // index of the last frame returned
	closed bool
}

// New creates a source positioned at the first frame.
func New(clip Clip) *Source {
	return &Source{clip: clip, frames: clip.FrameCount(), last: -1}
}

// Properties implements ports.VideoSource.
func (s *Source) Properties() ports.SourceProperties {
	return ports.SourceProperties{
		FrameRate:  s.clip.FrameRate,
		FrameCount: s.frames,
		Width:      s.clip.Width,
		Height:     s.clip.Height,
		Codec:      "synthetic",
	}
}

// ReadFrame implements ports.VideoSource.
func (s *Source) ReadFrame() (image.Image, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if s.next >= s.frames {
		return nil, ports.ErrEndOfStream
	}
	img := Render(s.clip.Width, s.clip.Height, s.next)
	s.last = s.next
	s.next++
	return img, nil
}

// Seek implements ports.VideoSource. The position snaps to the nearest frame.
func (s *Source) Seek(seconds float64) error {
	if s.closed {
		return ErrClosed
	}
	idx := int(math.Round(seconds * s.rate()))
	s.next = min(max(idx, 0), s.frames)
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
	return nil
}

func (s *Source) rate() float64 {
	if s.clip.FrameRate <= 0 {
		return 30
	}
	return s.clip.FrameRate
}

// Render draws frame n of a moving gradient.
func Render(width, height, n int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8((x*255/width + n*10) % 256),
				G: uint8((y*255/height + n*5) % 256),
				B: uint8((x + y + n*3) % 256),
				A: 255,
			})
		}
	}
	return img
}

var (
	_ ports.SourceOpener = (*Opener)(nil)
	_ ports.VideoSource  = (*Source)(nil)
)
