// Package playback implements the video playback engine: a Worker goroutine that owns one
// decode resource and paces frames at the video's rate, and a Controller that drains the
// Worker's events on the host's periodic tick and turns user actions into commands.
//
// The two halves share nothing but an event channel (Worker to Controller, bounded, lossy
// for frames) and a CommandQueue (Controller to Worker, unbounded, polled once per loop
// iteration).
package playback

import (
	"image"

	"github.com/user/vidmark/pkg/ports"
)

// EventKind tags a playback Event.
type EventKind int

const (
	// EventMetadata is published once per session, before any other event.
	EventMetadata EventKind = iota
	// EventFrame carries a decoded frame and its presentation timestamp.
	EventFrame
	// EventEOF reports that the stream was exhausted and rewound to zero.
	EventEOF
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventMetadata:
		return "metadata"
	case EventFrame:
		return "frame"
	case EventEOF:
		return "eof"
	default:
		return "unknown"
	}
}

// Metadata describes the video a session is playing.
type Metadata struct {
	Duration   float64 // seconds, 0 when the frame rate is unknown
	FrameRate  float64
	FrameCount int
	Width      int // original, before presentation scaling
	Height     int
	Codec      string
}

// Event is a message from the Worker to the Controller.
// Only the fields relevant to Kind are set.
type Event struct {
	Kind     EventKind
	Metadata Metadata
	Frame    *image.RGBA
	Position float64 // seconds
}

func metadataFrom(props ports.SourceProperties) Metadata {
	var duration float64
	if props.FrameRate > 0 {
		duration = float64(props.FrameCount) / props.FrameRate
	}
	return Metadata{
		Duration:   duration,
		FrameRate:  props.FrameRate,
		FrameCount: props.FrameCount,
		Width:      props.Width,
		Height:     props.Height,
		Codec:      props.Codec,
	}
}
