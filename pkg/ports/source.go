package ports

import (
	"errors"
	"image"
)

var (
	// ErrResourceUnavailable is returned when a video path cannot be opened for decoding.
	ErrResourceUnavailable = errors.New("video source unavailable")

	// ErrEndOfStream is returned by ReadFrame once every frame has been read.
	ErrEndOfStream = errors.New("end of stream")
)

// SourceProperties describes an opened video stream.
type SourceProperties struct {
	FrameRate  float64 // Frames per second, 0 when the container does not say
	FrameCount int
	Width      int
	Height     int
	Codec      string
}

// SourceOpener opens decode resources by path.
type SourceOpener interface {
	// Open opens the video at path. Failures wrap ErrResourceUnavailable.
	Open(path string) (VideoSource, error)
}

// VideoSource is a sequential decoder for a single video file.
// Implementations are not safe for concurrent use; one goroutine owns a source.
type VideoSource interface {
	// Properties returns the stream metadata read at open time.
	Properties() SourceProperties

	// ReadFrame decodes the next frame in presentation order.
	// It returns ErrEndOfStream when the stream is exhausted.
	// The returned image belongs to the caller and is not reused by the source.
	ReadFrame() (image.Image, error)

	// Seek repositions the stream so the next ReadFrame returns the frame at seconds.
	// Out-of-range positions are clamped by the source.
	Seek(seconds float64) error

	// Position returns the presentation timestamp, in seconds, of the last frame read.
	Position() float64

	// Close releases the decode resource.
	Close() error
}
