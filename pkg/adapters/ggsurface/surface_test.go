package ggsurface

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/user/vidmark/pkg/adapters/ggrenderer"
	"github.com/user/vidmark/pkg/mocks"
	"github.com/user/vidmark/pkg/ports"
)

func frame(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestSurface_RecordsState(t *testing.T) {
	s := New(&mocks.Renderer{}, DefaultOptions())

	if _, ok := s.Info(); ok {
		t.Error("expected no info before metadata")
	}
	s.ShowMetadata(ports.SurfaceInfo{Path: "a.mp4", Duration: 10})
	s.ShowFrame(frame(4, 4, color.RGBA{A: 255}), image.Pt(4, 4))
	s.ShowFrame(frame(4, 4, color.RGBA{A: 255}), image.Pt(4, 4))
	s.ShowPosition(2.5)

	info, ok := s.Info()
	if !ok || info.Path != "a.mp4" {
		t.Errorf("unexpected info %+v", info)
	}
	if s.FramesShown() != 2 || s.Position() != 2.5 {
		t.Errorf("expected 2 frames at 2.5, got %d at %v", s.FramesShown(), s.Position())
	}

	// New metadata starts a new video.
	s.ShowMetadata(ports.SurfaceInfo{Path: "b.mp4", Duration: 3})
	if s.FramesShown() != 0 || s.Position() != 0 {
		t.Error("expected counters reset by new metadata")
	}
}

func TestSurface_SnapshotLetterboxes(t *testing.T) {
	opts := DefaultOptions()
	opts.Width, opts.Height = 200, 100
	opts.Overlay = false
	s := New(ggrenderer.New(), opts)

	s.ShowMetadata(ports.SurfaceInfo{Path: "a.mp4", Duration: 10})
	s.ShowFrame(frame(50, 50, color.RGBA{R: 255, A: 255}), image.Pt(50, 50))

	img := s.Snapshot()
	if img.Bounds().Dx() != 200 || img.Bounds().Dy() != 100 {
		t.Fatalf("expected 200x100, got %v", img.Bounds())
	}
	if r, _, _, _ := img.At(100, 50).RGBA(); r == 0 {
		t.Error("expected the frame in the centre")
	}
	if r, _, _, _ := img.At(10, 50).RGBA(); r != 0 {
		t.Error("expected a black border left of a square frame")
	}
}

func TestSurface_SnapshotOverlay(t *testing.T) {
	renderer := &mocks.Renderer{}
	s := New(renderer, DefaultOptions())
	s.ShowMetadata(ports.SurfaceInfo{Path: "a.mp4", Duration: 125})
	s.ShowPosition(62)

	s.Snapshot()
	if len(renderer.Canvases) != 1 {
		t.Fatalf("expected 1 canvas, got %d", len(renderer.Canvases))
	}
	canvas := renderer.Canvases[0]
	if len(canvas.Texts) != 1 || canvas.Texts[0] != "01:02 / 02:05" {
		t.Errorf("unexpected overlay text %v", canvas.Texts)
	}
	if canvas.Rects != 3 {
		t.Errorf("expected bar, track and progress rects, got %d", canvas.Rects)
	}
}

func TestSurface_SaveSnapshot(t *testing.T) {
	fs := mocks.NewFileSystem()
	s := New(ggrenderer.New(), Options{Width: 64, Height: 48, Overlay: true})
	s.ShowMetadata(ports.SurfaceInfo{Path: "/videos/mouse-01.mp4", Duration: 90})
	s.ShowFrame(frame(32, 24, color.RGBA{G: 255, A: 255}), image.Pt(32, 24))
	s.ShowPosition(75.25)

	path, err := s.SaveSnapshot(fs, "/snaps")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := filepath.Join("/snaps", "mouse-01_01m15s250.png"); path != want {
		t.Errorf("expected %s, got %s", want, path)
	}
	data, ok := fs.GetFile(path)
	if !ok {
		t.Fatal("snapshot not written")
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 48 {
		t.Errorf("expected 64x48, got %v", img.Bounds())
	}
}

func TestSnapshotName(t *testing.T) {
	tests := []struct {
		path string
		pos  float64
		want string
	}{
		{"a.mp4", 0, "a_00m00s000.png"},
		{"/x/trial 3.mov", 61.5, "trial 3_01m01s500.png"},
		{"", 1, "snapshot_00m01s000.png"},
		{"clip.mp4", -4, "clip_00m00s000.png"},
	}
	for _, tt := range tests {
		if got := SnapshotName(tt.path, tt.pos); got != tt.want {
			t.Errorf("SnapshotName(%q, %v) = %q, expected %q", tt.path, tt.pos, got, tt.want)
		}
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		src, dst image.Point
		want     image.Rectangle
	}{
		{image.Pt(1920, 1080), image.Pt(1080, 720), image.Rect(0, 56, 1080, 664)},
		{image.Pt(50, 50), image.Pt(200, 100), image.Rect(50, 0, 150, 100)},
		{image.Pt(0, 0), image.Pt(10, 10), image.Rect(0, 0, 10, 10)},
	}
	for _, tt := range tests {
		if got := fit(tt.src, tt.dst); got != tt.want {
			t.Errorf("fit(%v, %v) = %v, expected %v", tt.src, tt.dst, got, tt.want)
		}
	}
}

func TestClock(t *testing.T) {
	for in, want := range map[float64]string{0: "00:00", 59.9: "00:59", 60: "01:00", 3725: "62:05", -1: "00:00"} {
		if got := clock(in); got != want {
			t.Errorf("clock(%v) = %q, expected %q", in, got, want)
		}
	}
}
