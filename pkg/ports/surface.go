package ports

import "image"

// SurfaceInfo carries the per-video values a presentation surface needs before the first frame.
type SurfaceInfo struct {
	Path           string
	Duration       float64 // seconds
	FrameRate      float64
	OriginalWidth  int
	OriginalHeight int
}

// Surface abstracts the presentation side of playback.
// All methods are called from the controller's tick, never from the decode goroutine.
type Surface interface {
	// ShowMetadata initialises duration and dimension dependent state for a new video.
	ShowMetadata(info SurfaceInfo)

	// ShowFrame renders a decoded frame at the given logical size.
	ShowFrame(img image.Image, size image.Point)

	// ShowPosition updates the current-position indicator, in seconds.
	ShowPosition(seconds float64)
}
