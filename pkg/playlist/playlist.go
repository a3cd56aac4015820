// Package playlist keeps the ordered list of videos a reviewer works through.
package playlist

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/user/vidmark/pkg/ports"
)

// DefaultExtensions are the file types listed when none are configured.
var DefaultExtensions = []string{".mp4"}

var (
	// ErrEmpty is returned when a playlist has no videos.
	ErrEmpty = errors.New("playlist: no videos")

	// ErrOutOfRange is returned by Select for an invalid index.
	ErrOutOfRange = errors.New("playlist: index out of range")
)

// Playlist is an ordered list of video paths with a cursor. It is not safe for concurrent use.
type Playlist struct {
	paths   []string
	current int
}

// New creates a playlist over paths in the given order.
func New(paths []string) *Playlist {
	return &Playlist{paths: append([]string(nil), paths...)}
}

// Load lists dir through fs and keeps the files whose extension matches exts,
// case-insensitively. The result is sorted by name.
func Load(fs ports.FileSystem, dir string, exts []string) (*Playlist, error) {
	names, err := fs.ListDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	allowed := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = true
	}

	var paths []string
	for _, name := range names {
		if allowed[strings.ToLower(filepath.Ext(name))] {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s (%s)", ErrEmpty, dir, strings.Join(exts, ", "))
	}
	return New(paths), nil
}

// Len returns the number of videos.
func (p *Playlist) Len() int {
	return len(p.paths)
}

// Paths returns a copy of the video paths.
func (p *Playlist) Paths() []string {
	return append([]string(nil), p.paths...)
}

// Index returns the cursor position.
func (p *Playlist) Index() int {
	return p.current
}

// Current returns the video under the cursor.
func (p *Playlist) Current() (string, error) {
	if len(p.paths) == 0 {
		return "", ErrEmpty
	}
	return p.paths[p.current], nil
}

// Next advances the cursor, wrapping to the first video.
func (p *Playlist) Next() (string, error) {
	if len(p.paths) == 0 {
		return "", ErrEmpty
	}
	p.current = (p.current + 1) % len(p.paths)
	return p.paths[p.current], nil
}

// Prev moves the cursor back, wrapping to the last video.
func (p *Playlist) Prev() (string, error) {
	if len(p.paths) == 0 {
		return "", ErrEmpty
	}
	p.current = (p.current - 1 + len(p.paths)) % len(p.paths)
	return p.paths[p.current], nil
}

// Select moves the cursor to i.
func (p *Playlist) Select(i int) (string, error) {
	if i < 0 || i >= len(p.paths) {
		return "", fmt.Errorf("%w: %d of %d", ErrOutOfRange, i, len(p.paths))
	}
	p.current = i
	return p.paths[i], nil
}
