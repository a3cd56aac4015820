// Package config loads the reviewer configuration from YAML or TOML and maps it onto the
// playback, surface and source options.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/user/vidmark/pkg/adapters/ggsurface"
	"github.com/user/vidmark/pkg/adapters/smartsource"
	"github.com/user/vidmark/pkg/playback"
	"github.com/user/vidmark/pkg/ports"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid value")

// Config represents the full configuration for vidmark.
type Config struct {
	// Input/Output
	VideoDir    string   `yaml:"video_dir" toml:"video_dir"`
	Extensions  []string `yaml:"extensions" toml:"extensions"`
	OutputDir   string   `yaml:"output_dir" toml:"output_dir"` // empty writes CSV next to the videos
	SnapshotDir string   `yaml:"snapshot_dir" toml:"snapshot_dir"`

	// Presentation
	Width      int     `yaml:"width" toml:"width"`
	Height     int     `yaml:"height" toml:"height"`
	Background string  `yaml:"background_color" toml:"background_color"`
	FontSize   float64 `yaml:"font_size" toml:"font_size"`
	FontPath   string  `yaml:"font_path" toml:"font_path"`
	Overlay    bool    `yaml:"overlay" toml:"overlay"`

	// Playback
	TickMs        int       `yaml:"tick_ms" toml:"tick_ms"`
	EventBuffer   int       `yaml:"event_buffer" toml:"event_buffer"`
	StopTimeoutMs int       `yaml:"stop_timeout_ms" toml:"stop_timeout_ms"`
	EndBehavior   string    `yaml:"end_behavior" toml:"end_behavior"`
	Speeds        []float64 `yaml:"speeds" toml:"speeds"`
	FFmpegPath    string    `yaml:"ffmpeg_path" toml:"ffmpeg_path"`

	// Annotation
	Session     int    `yaml:"session" toml:"session"`
	DefaultRole string `yaml:"default_role" toml:"default_role"`
	JournalPath string `yaml:"journal_path" toml:"journal_path"` // empty uses the user cache dir

	// Logging
	LogLevel string `yaml:"log_level" toml:"log_level"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		VideoDir:    ".",
		Extensions:  []string{".mp4"},
		SnapshotDir: "./snapshots",

		Width:      1080,
		Height:     720,
		Background: "#000000",
		FontSize:   20,
		Overlay:    true,

		TickMs:        10,
		EventBuffer:   playback.DefaultEventBuffer,
		StopTimeoutMs: 1000,
		EndBehavior:   "loop",
		Speeds:        []float64{0.5, 0.75, 1.0, 1.25, 1.5, 2.0},

		Session:     1,
		DefaultRole: "Indiv",

		LogLevel: "info",
	}
}

// LoadFromFile loads configuration over Defaults. Files ending in .toml are read as TOML,
// everything else as YAML.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	unmarshal := yaml.Unmarshal
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		unmarshal = toml.Unmarshal
	}
	if err := unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultJournalPath returns the journal location under the user cache directory.
func DefaultJournalPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "vidmark", "journal.db"), nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch {
	case c.Width < 0 || c.Height < 0:
		return fmt.Errorf("%w: size %dx%d", ErrInvalid, c.Width, c.Height)
	case c.TickMs <= 0:
		return fmt.Errorf("%w: tick_ms must be positive, got %d", ErrInvalid, c.TickMs)
	case c.EventBuffer <= playback.FrameBacklog:
		return fmt.Errorf("%w: event_buffer must exceed %d, got %d", ErrInvalid, playback.FrameBacklog, c.EventBuffer)
	case c.StopTimeoutMs <= 0:
		return fmt.Errorf("%w: stop_timeout_ms must be positive, got %d", ErrInvalid, c.StopTimeoutMs)
	case c.Session <= 0:
		return fmt.Errorf("%w: session must be positive, got %d", ErrInvalid, c.Session)
	}
	if _, err := playback.ParseEndBehavior(c.EndBehavior); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := ports.ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	for _, s := range c.Speeds {
		if s <= 0 || math.IsNaN(s) || math.IsInf(s, 0) {
			return fmt.Errorf("%w: speed %v", ErrInvalid, s)
		}
	}
	if _, err := ParseColor(c.Background); err != nil {
		return fmt.Errorf("%w: background_color: %v", ErrInvalid, err)
	}
	return nil
}

// TickInterval returns the controller tick as a duration.
func (c Config) TickInterval() time.Duration {
	return time.Duration(c.TickMs) * time.Millisecond
}

// ToControllerOptions converts Config to playback.ControllerOptions.
func (c Config) ToControllerOptions() playback.ControllerOptions {
	end, _ := playback.ParseEndBehavior(c.EndBehavior)
	return playback.ControllerOptions{
		Width:       c.Width,
		Height:      c.Height,
		EventBuffer: c.EventBuffer,
		StopTimeout: time.Duration(c.StopTimeoutMs) * time.Millisecond,
		EndBehavior: end,
	}
}

// ToSurfaceOptions converts Config to ggsurface.Options.
func (c Config) ToSurfaceOptions() ggsurface.Options {
	bg, err := ParseColor(c.Background)
	if err != nil {
		bg = color.Black
	}
	w, h := c.Width, c.Height
	if w == 0 || h == 0 {
		w, h = ggsurface.DefaultOptions().Width, ggsurface.DefaultOptions().Height
	}
	return ggsurface.Options{
		Width:      w,
		Height:     h,
		Background: bg,
		FontSize:   c.FontSize,
		FontPath:   c.FontPath,
		Overlay:    c.Overlay,
	}
}

// ToSourceOptions converts Config to smartsource.Options.
func (c Config) ToSourceOptions() smartsource.Options {
	return smartsource.Options{
		FFmpegPath: c.FFmpegPath,
		Extensions: c.Extensions,
	}
}

// Level returns the parsed log level, LevelInfo when invalid.
func (c Config) Level() ports.LogLevel {
	level, _ := ports.ParseLogLevel(c.LogLevel)
	return level
}

// NearestSpeed returns the configured speed closest to v.
func (c Config) NearestSpeed(v float64) float64 {
	if len(c.Speeds) == 0 {
		return v
	}
	best := c.Speeds[0]
	for _, s := range c.Speeds[1:] {
		if math.Abs(s-v) < math.Abs(best-v) {
			best = s
		}
	}
	return best
}

// ParseColor parses a "#rrggbb" hex color.
func ParseColor(hex string) (color.Color, error) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) != 6 {
		return color.Black, fmt.Errorf("expected #rrggbb, got %q", hex)
	}

	var rgb [3]uint8
	for i := range rgb {
		hi, ok1 := hexValue(s[2*i])
		lo, ok2 := hexValue(s[2*i+1])
		if !ok1 || !ok2 {
			return color.Black, fmt.Errorf("invalid hex digit in %q", hex)
		}
		rgb[i] = hi<<4 | lo
	}
	return color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255}, nil
}

func hexValue(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}
