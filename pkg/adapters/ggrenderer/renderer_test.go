package ggrenderer

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/user/vidmark/pkg/ports"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestRenderer_CreateCanvas(t *testing.T) {
	r := New()
	img := r.CreateCanvas(120, 80, color.Black).ToImage()

	if img.Bounds().Dx() != 120 || img.Bounds().Dy() != 80 {
		t.Errorf("expected 120x80, got %v", img.Bounds())
	}
	if red, _, _, _ := img.At(5, 5).RGBA(); red != 0 {
		t.Error("expected black background")
	}
}

func TestRenderer_EncodePNG(t *testing.T) {
	r := New()
	data, err := r.EncodeImage(image.NewRGBA(image.Rect(0, 0, 30, 20)), ports.FormatPNG, 0)
	if err != nil {
		t.Fatalf("EncodeImage failed: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if decoded.Bounds().Dx() != 30 || decoded.Bounds().Dy() != 20 {
		t.Errorf("expected 30x20, got %v", decoded.Bounds())
	}
}

func TestRenderer_EncodeJPEG(t *testing.T) {
	r := New()
	data, err := r.EncodeImage(solid(50, 50, color.RGBA{R: 255, A: 255}), ports.FormatJPEG, 80)
	if err != nil {
		t.Fatalf("EncodeImage failed: %v", err)
	}
	if _, err := jpeg.Decode(bytes.NewReader(data)); err != nil {
		t.Fatalf("decode jpeg: %v", err)
	}
}

func TestRenderer_EncodeUnknownFormat(t *testing.T) {
	r := New()
	if _, err := r.EncodeImage(image.NewRGBA(image.Rect(0, 0, 1, 1)), ports.ImageFormat(99), 0); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestRenderer_ResizeImage(t *testing.T) {
	r := New()
	resized := r.ResizeImage(image.NewRGBA(image.Rect(0, 0, 100, 100)), 50, 25)
	if resized.Bounds().Dx() != 50 || resized.Bounds().Dy() != 25 {
		t.Errorf("expected 50x25, got %v", resized.Bounds())
	}
}

func TestCanvas_DrawRect(t *testing.T) {
	canvas := New().CreateCanvas(100, 100, color.White)
	canvas.DrawRect(10, 10, 30, 30, color.RGBA{R: 255, A: 255})

	img := canvas.ToImage()
	if _, g, _, _ := img.At(20, 20).RGBA(); g != 0 {
		t.Error("expected red pixel inside rectangle")
	}
	if _, g, _, _ := img.At(60, 60).RGBA(); g == 0 {
		t.Error("expected white pixel outside rectangle")
	}
}

func TestCanvas_DrawImageScaled(t *testing.T) {
	canvas := New().CreateCanvas(100, 100, color.White)
	canvas.DrawImageScaled(solid(10, 10, color.RGBA{B: 255, A: 255}), 0, 0, 50, 50)

	img := canvas.ToImage()
	if r, _, _, _ := img.At(40, 40).RGBA(); r != 0 {
		t.Error("expected blue pixel inside the scaled image")
	}
	if r, _, _, _ := img.At(75, 75).RGBA(); r == 0 {
		t.Error("expected white pixel outside the scaled image")
	}
}

func TestCanvas_DrawImage(t *testing.T) {
	canvas := New().CreateCanvas(100, 100, color.White)
	canvas.DrawImage(solid(20, 20, color.RGBA{R: 255, A: 255}), 10, 10)

	if _, g, _, _ := canvas.ToImage().At(15, 15).RGBA(); g != 0 {
		t.Error("expected red pixel from drawn image")
	}
}

func TestCanvas_DrawText(t *testing.T) {
	canvas := New().CreateCanvas(200, 50, color.Black)
	canvas.DrawText("00:42", 10, 25, ports.TextStyle{FontSize: 24, Color: color.White})

	img := canvas.ToImage()
	lit := 0
	for y := 0; y < 50; y++ {
		for x := 0; x < 200; x++ {
			if r, _, _, _ := img.At(x, y).RGBA(); r > 0 {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Error("expected text pixels on the canvas")
	}
}

func TestCanvas_DrawTextMissingFontFallsBack(t *testing.T) {
	canvas := New().CreateCanvas(200, 50, color.Black)
	style := ports.TextStyle{
		FontSize: 14,
		FontPath: filepath.Join(t.TempDir(), "missing.ttf"),
		Color:    color.White,
	}
	// Should not panic
	canvas.DrawText("fallback", 10, 25, style)
}

func TestRenderer_FaceCache(t *testing.T) {
	r := New()
	a, err := r.face("", 12)
	if err != nil {
		t.Fatalf("face: %v", err)
	}
	b, _ := r.face("", 12)
	if a != b {
		t.Error("expected cached face for the same size")
	}
	c, _ := r.face("", 18)
	if a == c {
		t.Error("expected a different face for a different size")
	}
}
