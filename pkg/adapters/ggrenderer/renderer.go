// Package ggrenderer implements ports.Renderer with the gg drawing library.
// Text uses the Go font family unless a TrueType file is given.
package ggrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/user/vidmark/pkg/ports"
)

// Renderer implements ports.Renderer using the gg library.
type Renderer struct {
	mu    sync.Mutex
	fonts map[string]*truetype.Font
	faces map[faceKey]font.Face
}

type faceKey struct {
	path string
	size float64
}

// New creates a new Renderer.
func New() *Renderer {
	return &Renderer{
		fonts: make(map[string]*truetype.Font),
		faces: make(map[faceKey]font.Face),
	}
}

// CreateCanvas creates a new drawing canvas filled with bg.
func (r *Renderer) CreateCanvas(width, height int, bg color.Color) ports.Canvas {
	dc := gg.NewContext(width, height)
	dc.SetColor(bg)
	dc.Clear()
	return &Canvas{dc: dc, renderer: r}
}

// EncodeImage encodes an image to the specified format.
func (r *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case ports.FormatJPEG:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encode JPEG: %w", err)
		}
	case ports.FormatPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode PNG: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %d", format)
	}

	return buf.Bytes(), nil
}

// ResizeImage resizes an image to the specified dimensions.
func (r *Renderer) ResizeImage(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

// face returns a cached face for the font at path, or the built-in mono font when path is empty.
func (r *Renderer) face(path string, size float64) (font.Face, error) {
	if size <= 0 {
		size = 14
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	key := faceKey{path: path, size: size}
	if f, ok := r.faces[key]; ok {
		return f, nil
	}

	ttf, ok := r.fonts[path]
	if !ok {
		data := gomono.TTF
		if path != "" {
			var err error
			if data, err = os.ReadFile(path); err != nil {
				return nil, fmt.Errorf("read font: %w", err)
			}
		}
		var err error
		if ttf, err = truetype.Parse(data); err != nil {
			return nil, fmt.Errorf("parse font: %w", err)
		}
		r.fonts[path] = ttf
	}

	f := truetype.NewFace(ttf, &truetype.Options{Size: size})
	r.faces[key] = f
	return f, nil
}

var _ ports.Renderer = (*Renderer)(nil)

// Canvas implements ports.Canvas using gg.Context.
type Canvas struct {
	dc       *gg.Context
	renderer *Renderer
}

// DrawImage draws an image at the specified position.
func (c *Canvas) DrawImage(img image.Image, x, y int) {
	c.dc.DrawImage(img, x, y)
}

// DrawImageScaled draws an image scaled to the specified dimensions.
func (c *Canvas) DrawImageScaled(img image.Image, x, y, width, height int) {
	bounds := img.Bounds()
	if bounds.Dx() == width && bounds.Dy() == height {
		c.dc.DrawImage(img, x, y)
		return
	}
	scaled := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, bounds, draw.Src, nil)
	c.dc.DrawImage(scaled, x, y)
}

// DrawRect draws a filled rectangle.
func (c *Canvas) DrawRect(x, y, w, h int, col color.Color) {
	c.dc.SetColor(col)
	c.dc.DrawRectangle(float64(x), float64(y), float64(w), float64(h))
	c.dc.Fill()
}

// DrawText draws text vertically centred on y. An unreadable font falls back to the built-in one.
func (c *Canvas) DrawText(text string, x, y int, style ports.TextStyle) {
	face, err := c.renderer.face(style.FontPath, style.FontSize)
	if err != nil {
		face, _ = c.renderer.face("", style.FontSize)
	}
	if face != nil {
		c.dc.SetFontFace(face)
	}
	col := style.Color
	if col == nil {
		col = color.White
	}
	c.dc.SetColor(col)

	ax := 0.0
	switch style.Align {
	case ports.AlignCenter:
		ax = 0.5
	case ports.AlignRight:
		ax = 1.0
	}
	c.dc.DrawStringAnchored(text, float64(x), float64(y), ax, 0.5)
}

// ToImage returns the canvas as an image.Image.
func (c *Canvas) ToImage() image.Image {
	return c.dc.Image()
}

var _ ports.Canvas = (*Canvas)(nil)
