package mocks

import (
	"image"
	"sync"

	"github.com/user/vidmark/pkg/ports"
)

// Surface is a mock implementation of ports.Surface that records every call.
type Surface struct {
	mu sync.Mutex

	Infos     []ports.SurfaceInfo
	Frames    []image.Image
	Sizes     []image.Point
	Positions []float64
}

func (m *Surface) ShowMetadata(info ports.SurfaceInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Infos = append(m.Infos, info)
}

func (m *Surface) ShowFrame(img image.Image, size image.Point) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Frames = append(m.Frames, img)
	m.Sizes = append(m.Sizes, size)
}

func (m *Surface) ShowPosition(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Positions = append(m.Positions, seconds)
}

// FrameCount returns the number of rendered frames.
func (m *Surface) FrameCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Frames)
}

// LastInfo returns the most recent metadata, if any.
func (m *Surface) LastInfo() (ports.SurfaceInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Infos) == 0 {
		return ports.SurfaceInfo{}, false
	}
	return m.Infos[len(m.Infos)-1], true
}

var _ ports.Surface = (*Surface)(nil)
