// Package ggsurface implements ports.Surface as an offscreen canvas. It keeps the most
// recent frame and composes snapshots with a timecode and progress bar on demand.
package ggsurface

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/user/vidmark/pkg/ports"
)

// Options configures the surface.
type Options struct {
	Width      int
	Height     int
	Background color.Color
	FontSize   float64
	FontPath   string
	Overlay    bool // draw timecode and progress bar on snapshots
}

// DefaultOptions returns a 1080x720 surface with the overlay enabled.
func DefaultOptions() Options {
	return Options{
		Width:      1080,
		Height:     720,
		Background: color.Black,
		FontSize:   20,
		Overlay:    true,
	}
}

const barHeight = 36

var (
	barColor      = color.RGBA{R: 20, G: 20, B: 20, A: 220}
	trackColor    = color.RGBA{R: 80, G: 80, B: 80, A: 255}
	progressColor = color.RGBA{R: 230, G: 60, B: 60, A: 255}
)

// Surface records what the playback controller shows.
type Surface struct {
	renderer ports.Renderer
	opts     Options

	mu       sync.Mutex
	info     ports.SurfaceInfo
	haveInfo bool
	frame    image.Image
	size     image.Point
	position float64
	shown    int
}

// New creates a Surface that draws with renderer.
func New(renderer ports.Renderer, opts Options) *Surface {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = DefaultOptions().Width, DefaultOptions().Height
	}
	if opts.Background == nil {
		opts.Background = color.Black
	}
	if opts.FontSize <= 0 {
		opts.FontSize = DefaultOptions().FontSize
	}
	return &Surface{renderer: renderer, opts: opts}
}

// ShowMetadata implements ports.Surface. It clears the previous video's frame.
func (s *Surface) ShowMetadata(info ports.SurfaceInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.info = info
	s.haveInfo = true
	s.frame = nil
	s.size = image.Point{}
	s.position = 0
	s.shown = 0
}

// ShowFrame implements ports.Surface.
func (s *Surface) ShowFrame(img image.Image, size image.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = img
	s.size = size
	s.shown++
}

// ShowPosition implements ports.Surface.
func (s *Surface) ShowPosition(seconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.position = seconds
}

// Info returns the metadata of the current video and whether any was shown.
func (s *Surface) Info() (ports.SurfaceInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info, s.haveInfo
}

// Position returns the last shown position.
func (s *Surface) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

// FramesShown returns how many frames were shown since the last metadata.
func (s *Surface) FramesShown() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shown
}

// Snapshot composes the current frame, letterboxed into the surface, with the overlay.
func (s *Surface) Snapshot() image.Image {
	s.mu.Lock()
	frame, size, info, position := s.frame, s.size, s.info, s.position
	s.mu.Unlock()

	canvas := s.renderer.CreateCanvas(s.opts.Width, s.opts.Height, s.opts.Background)

	if frame != nil {
		if size.X <= 0 || size.Y <= 0 {
			size = frame.Bounds().Size()
		}
		rect := fit(size, image.Pt(s.opts.Width, s.opts.Height))
		canvas.DrawImageScaled(frame, rect.Min.X, rect.Min.Y, rect.Dx(), rect.Dy())
	}

	if s.opts.Overlay {
		s.drawOverlay(canvas, position, info.Duration)
	}
	return canvas.ToImage()
}

func (s *Surface) drawOverlay(canvas ports.Canvas, position, duration float64) {
	w, h := s.opts.Width, s.opts.Height
	top := h - barHeight
	canvas.DrawRect(0, top, w, barHeight, barColor)

	label := fmt.Sprintf("%s / %s", clock(position), clock(duration))
	canvas.DrawText(label, 12, top+barHeight/2, ports.TextStyle{
		FontSize: s.opts.FontSize,
		FontPath: s.opts.FontPath,
		Color:    color.White,
		Align:    ports.AlignLeft,
	})

	trackX := w / 4
	trackW := w - trackX - 16
	if trackW <= 0 {
		return
	}
	trackY := top + barHeight/2 - 3
	canvas.DrawRect(trackX, trackY, trackW, 6, trackColor)
	if duration > 0 {
		done := int(math.Round(float64(trackW) * math.Min(1, math.Max(0, position/duration))))
		if done > 0 {
			canvas.DrawRect(trackX, trackY, done, 6, progressColor)
		}
	}
}

// SaveSnapshot writes the current snapshot as a PNG into dir and returns its path.
// The file is named after the video and the position.
func (s *Surface) SaveSnapshot(fs ports.FileSystem, dir string) (string, error) {
	s.mu.Lock()
	info, position := s.info, s.position
	s.mu.Unlock()

	data, err := s.renderer.EncodeImage(s.Snapshot(), ports.FormatPNG, 0)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	if err := fs.MkdirAll(dir); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	path := filepath.Join(dir, SnapshotName(info.Path, position))
	if err := fs.WriteFile(path, data); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// SnapshotName returns "<video stem>_<mm>m<ss>s<ms>.png".
func SnapshotName(videoPath string, position float64) string {
	stem := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	if stem == "" || stem == "." || stem == string(filepath.Separator) {
		stem = "snapshot"
	}
	stem = strings.NewReplacer(":", "_", "@", "_", "/", "_").Replace(stem)

	d := time.Duration(math.Max(0, position) * float64(time.Second))
	return fmt.Sprintf("%s_%02dm%02ds%03d.png", stem, int(d.Minutes()), int(d.Seconds())%60, d.Milliseconds()%1000)
}

// fit returns the largest rectangle with src's aspect ratio centred in dst.
func fit(src, dst image.Point) image.Rectangle {
	if src.X <= 0 || src.Y <= 0 {
		return image.Rectangle{Max: dst}
	}
	scale := math.Min(float64(dst.X)/float64(src.X), float64(dst.Y)/float64(src.Y))
	w := max(1, int(math.Round(float64(src.X)*scale)))
	h := max(1, int(math.Round(float64(src.Y)*scale)))
	x := (dst.X - w) / 2
	y := (dst.Y - h) / 2
	return image.Rect(x, y, x+w, y+h)
}

// clock formats seconds as mm:ss.
func clock(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

var _ ports.Surface = (*Surface)(nil)
