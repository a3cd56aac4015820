package playback

import (
	"image"

	"golang.org/x/image/draw"
)

// presentationSize resolves the configured presentation size against the source size.
// Zero for both keeps the native size; zero for one keeps the aspect ratio.
func presentationSize(width, height, srcW, srcH int) (int, int) {
	switch {
	case width > 0 && height > 0:
		return width, height
	case width > 0 && srcW > 0:
		return width, max(1, width*srcH/srcW)
	case height > 0 && srcH > 0:
		return max(1, height*srcW/srcH), height
	default:
		return srcW, srcH
	}
}

// toRGBA converts a decoded frame into the exchange format, scaling it to the
// presentation size. Frames that already match are returned as is.
func toRGBA(img image.Image, width, height int) *image.RGBA {
	bounds := img.Bounds()
	width, height = presentationSize(width, height, bounds.Dx(), bounds.Dy())

	if rgba, ok := img.(*image.RGBA); ok && bounds.Min == (image.Point{}) &&
		bounds.Dx() == width && bounds.Dy() == height {
		return rgba
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	if bounds.Dx() == width && bounds.Dy() == height {
		draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
		return dst
	}
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}
