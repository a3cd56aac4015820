package config

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/user/vidmark/pkg/playback"
	"github.com/user/vidmark/pkg/ports"
)

func TestDefaults_Valid(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should be valid: %v", err)
	}
	if cfg.Width != 1080 || cfg.Height != 720 {
		t.Errorf("expected 1080x720, got %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.TickInterval() != 10*time.Millisecond {
		t.Errorf("expected 10ms tick, got %s", cfg.TickInterval())
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vidmark.yaml")
	yaml := `
video_dir: /data/videos
extensions: [".mp4", ".mov"]
width: 640
height: 480
end_behavior: pause
stop_timeout_ms: 250
speeds: [1.0, 4.0]
log_level: debug
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.VideoDir != "/data/videos" || len(cfg.Extensions) != 2 {
		t.Errorf("unexpected input settings %+v", cfg)
	}
	// Unset fields keep their defaults.
	if cfg.TickMs != 10 || cfg.EventBuffer != playback.DefaultEventBuffer {
		t.Errorf("expected defaults for unset fields, got tick=%d buffer=%d", cfg.TickMs, cfg.EventBuffer)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	opts := cfg.ToControllerOptions()
	if opts.Width != 640 || opts.Height != 480 || opts.EndBehavior != playback.EndPause || opts.StopTimeout != 250*time.Millisecond {
		t.Errorf("unexpected controller options %+v", opts)
	}
	if cfg.Level() != ports.LevelDebug {
		t.Errorf("expected debug level, got %v", cfg.Level())
	}
	if cfg.NearestSpeed(3) != 4.0 || cfg.NearestSpeed(1.2) != 1.0 {
		t.Error("unexpected nearest speed")
	}
}

func TestLoadFromFile_Errors(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("width: [not a number"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"negative width", func(c *Config) { c.Width = -1 }},
		{"zero tick", func(c *Config) { c.TickMs = 0 }},
		{"tiny buffer", func(c *Config) { c.EventBuffer = playback.FrameBacklog }},
		{"zero stop timeout", func(c *Config) { c.StopTimeoutMs = 0 }},
		{"bad end behavior", func(c *Config) { c.EndBehavior = "rewind" }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
		{"bad speed", func(c *Config) { c.Speeds = []float64{1, 0} }},
		{"bad color", func(c *Config) { c.Background = "black" }},
		{"bad session", func(c *Config) { c.Session = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestToSurfaceOptions(t *testing.T) {
	cfg := Defaults()
	cfg.Background = "#102030"
	opts := cfg.ToSurfaceOptions()
	if opts.Width != 1080 || opts.Height != 720 || !opts.Overlay {
		t.Errorf("unexpected surface options %+v", opts)
	}
	if opts.Background != (color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 255}) {
		t.Errorf("unexpected background %v", opts.Background)
	}

	cfg.Width, cfg.Height = 0, 0
	if opts := cfg.ToSurfaceOptions(); opts.Width == 0 || opts.Height == 0 {
		t.Error("expected a concrete snapshot size when the presentation keeps the native size")
	}
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#4ade80")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != (color.RGBA{R: 0x4a, G: 0xde, B: 0x80, A: 255}) {
		t.Errorf("unexpected color %v", c)
	}
	if _, err := ParseColor("FFFFFF"); err != nil {
		t.Errorf("expected color without '#' to parse, got %v", err)
	}
	for _, bad := range []string{"", "#fff", "#gg0000"} {
		if _, err := ParseColor(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestLoadFromFile_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vidmark.toml")
	data := `
video_dir = "/data/videos"
end_behavior = "pause"
speeds = [0.25, 1.0]
session = 4
journal_path = "/tmp/journal.db"
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.VideoDir != "/data/videos" || cfg.EndBehavior != "pause" || cfg.Session != 4 || cfg.JournalPath != "/tmp/journal.db" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if len(cfg.Speeds) != 2 || cfg.Width != 1080 {
		t.Errorf("expected TOML values over defaults, got %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestDefaultJournalPath(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	path, err := DefaultJournalPath()
	if err != nil {
		t.Skipf("no user cache dir: %v", err)
	}
	if filepath.Base(path) != "journal.db" || filepath.Base(filepath.Dir(path)) != "vidmark" {
		t.Errorf("unexpected journal path %s", path)
	}
}
