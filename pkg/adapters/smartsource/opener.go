// Package smartsource provides a SourceOpener that picks the decoding backend per path:
// synthetic clips are generated in-process and everything else goes through ffmpeg.
package smartsource

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/user/vidmark/pkg/adapters/ffmpegsource"
	"github.com/user/vidmark/pkg/adapters/syntheticsource"
	"github.com/user/vidmark/pkg/ports"
)

// Backend represents the decoding backend used for a path.
type Backend string

const (
	// BackendSynthetic generates frames in-process.
	BackendSynthetic Backend = "synthetic"
	// BackendFFmpeg decodes with an ffmpeg child process.
	BackendFFmpeg Backend = "ffmpeg"
)

// Options configures backend selection.
type Options struct {
	// FFmpegPath is an optional custom path to the ffmpeg binary.
	FFmpegPath string
	// Extensions limits ffmpeg decoding to these file extensions. Empty allows any.
	Extensions []string
}

// ErrUnsupportedFile is returned for paths no backend accepts.
var ErrUnsupportedFile = errors.New("smartsource: unsupported file type")

// Opener dispatches Open to the backend that handles the path.
type Opener struct {
	synthetic *syntheticsource.Opener
	ffmpeg    ports.SourceOpener
	exts      map[string]bool
	logger    ports.Logger
}

// New creates an Opener.
func New(opts Options, logger ports.Logger) *Opener {
	if opts.FFmpegPath != "" {
		ffmpegsource.SetFFmpegPath(opts.FFmpegPath)
	}
	o := &Opener{
		synthetic: syntheticsource.NewOpener(),
		ffmpeg:    ffmpegsource.NewOpener(logger),
		logger:    logger.WithComponent("source"),
	}
	if len(opts.Extensions) > 0 {
		o.exts = make(map[string]bool, len(opts.Extensions))
		for _, ext := range opts.Extensions {
			o.exts[normalizeExt(ext)] = true
		}
	}
	return o
}

// BackendFor reports which backend Open would use for path.
func (o *Opener) BackendFor(path string) (Backend, error) {
	if syntheticsource.IsURI(path) {
		return BackendSynthetic, nil
	}
	if o.exts != nil && !o.exts[normalizeExt(filepath.Ext(path))] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFile, path)
	}
	return BackendFFmpeg, nil
}

// Open implements ports.SourceOpener.
func (o *Opener) Open(path string) (ports.VideoSource, error) {
	backend, err := o.BackendFor(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrResourceUnavailable, err)
	}
	o.logger.Debug("Opening %s with %s backend", path, backend)

	switch backend {
	case BackendSynthetic:
		return o.synthetic.Open(path)
	default:
		return o.ffmpeg.Open(path)
	}
}

// FFmpegAvailable reports whether files other than synthetic clips can be decoded.
func FFmpegAvailable() bool {
	return ffmpegsource.IsAvailable()
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

var _ ports.SourceOpener = (*Opener)(nil)
