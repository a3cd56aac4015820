package mocks

import (
	"fmt"
	"image"
	"sync"

	"github.com/user/vidmark/pkg/ports"
)

// SourceOpener is a mock implementation of ports.SourceOpener.
// By default it opens a VideoSource with the configured Properties for any path.
type SourceOpener struct {
	mu sync.Mutex

	Properties ports.SourceProperties
	OpenFunc   func(path string) (ports.VideoSource, error)

	// Recorded calls for verification
	OpenCalls []string
	Sources   []*VideoSource
}

func (m *SourceOpener) Open(path string) (ports.VideoSource, error) {
	m.mu.Lock()
	m.OpenCalls = append(m.OpenCalls, path)
	fn := m.OpenFunc
	props := m.Properties
	m.mu.Unlock()

	if fn != nil {
		src, err := fn(path)
		if err != nil {
			return nil, err
		}
		if vs, ok := src.(*VideoSource); ok {
			m.track(vs)
		}
		return src, nil
	}

	vs := &VideoSource{Props: props}
	m.track(vs)
	return vs, nil
}

func (m *SourceOpener) track(vs *VideoSource) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sources = append(m.Sources, vs)
}

// Opened returns how many sources were handed out.
func (m *SourceOpener) Opened() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sources)
}

// Closed returns how many of the handed-out sources have been closed at least once.
func (m *SourceOpener) Closed() int {
	m.mu.Lock()
	sources := append([]*VideoSource(nil), m.Sources...)
	m.mu.Unlock()

	n := 0
	for _, s := range sources {
		if s.CloseCount() > 0 {
			n++
		}
	}
	return n
}

var _ ports.SourceOpener = (*SourceOpener)(nil)

// VideoSource is a mock implementation of ports.VideoSource.
// Without hooks it yields Props.FrameCount solid frames and then ports.ErrEndOfStream.
type VideoSource struct {
	mu sync.Mutex

	Props         ports.SourceProperties
	ReadFrameFunc func(index int) (image.Image, error)
	SeekFunc      func(seconds float64) error
	CloseFunc     func() error

	next   int
	last   int
	reads  int
	seeks  []float64
	closes int
}

func (m *VideoSource) Properties() ports.SourceProperties {
	return m.Props
}

func (m *VideoSource) ReadFrame() (image.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reads++
	if m.closes > 0 {
		return nil, fmt.Errorf("read after close")
	}
	if m.next >= m.Props.FrameCount {
		return nil, ports.ErrEndOfStream
	}

	idx := m.next
	m.next++
	m.last = idx
	if m.ReadFrameFunc != nil {
		return m.ReadFrameFunc(idx)
	}
	w, h := m.Props.Width, m.Props.Height
	if w <= 0 || h <= 0 {
		w, h = 16, 16
	}
	return image.NewRGBA(image.Rect(0, 0, w, h)), nil
}

func (m *VideoSource) Seek(seconds float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seeks = append(m.seeks, seconds)
	if m.SeekFunc != nil {
		if err := m.SeekFunc(seconds); err != nil {
			return err
		}
	}
	fps := m.Props.FrameRate
	if fps <= 0 {
		fps = 30
	}
	idx := int(seconds*fps + 0.5)
	m.next = min(max(idx, 0), m.Props.FrameCount)
	return nil
}

func (m *VideoSource) Position() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	fps := m.Props.FrameRate
	if fps <= 0 {
		fps = 30
	}
	return float64(m.last) / fps
}

func (m *VideoSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closes++
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Reads returns the number of ReadFrame calls.
func (m *VideoSource) Reads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}

// Seeks returns the positions passed to Seek, in call order.
func (m *VideoSource) Seeks() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.seeks...)
}

// CloseCount returns the number of Close calls.
func (m *VideoSource) CloseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes
}

var _ ports.VideoSource = (*VideoSource)(nil)
