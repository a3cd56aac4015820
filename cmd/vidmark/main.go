// Package main provides the CLI entry point for vidmark.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/ideamans/go-l10n"

	"github.com/user/vidmark/pkg/adapters/boltjournal"
	"github.com/user/vidmark/pkg/adapters/ffmpegsource"
	"github.com/user/vidmark/pkg/adapters/ggrenderer"
	"github.com/user/vidmark/pkg/adapters/ggsurface"
	"github.com/user/vidmark/pkg/adapters/logger"
	"github.com/user/vidmark/pkg/adapters/mp4probe"
	"github.com/user/vidmark/pkg/adapters/osfilesystem"
	"github.com/user/vidmark/pkg/adapters/smartsource"
	"github.com/user/vidmark/pkg/adapters/syntheticsource"
	"github.com/user/vidmark/pkg/annotation"
	"github.com/user/vidmark/pkg/config"
	"github.com/user/vidmark/pkg/playback"
	"github.com/user/vidmark/pkg/playlist"
	"github.com/user/vidmark/pkg/ports"
)

// CLI defines the command-line interface with subcommands.
type CLI struct {
	Review  ReviewCmd  `cmd:"" help:"Play a folder of videos and annotate behaviours."`
	Probe   ProbeCmd   `cmd:"" help:"Show the metadata of an MP4 file."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// ReviewCmd defines the review subcommand.
type ReviewCmd struct {
	// Required arguments
	Target string `arg:"" help:"Video directory, a single video file, or a synthetic:<dur>s@<fps>fps URI."`

	// Configuration
	Config string `short:"c" type:"path" help:"YAML configuration file."`

	// Output
	Output      *string `short:"o" help:"Directory for CSV records (default: the video directory)."`
	SnapshotDir *string `help:"Directory for PNG snapshots."`
	Session     *int    `short:"s" help:"Session number written to every record."`
	Journal     *string `help:"Journal database keeping unsaved records between runs."`
	NoJournal   bool    `help:"Keep unsaved records in memory only."`

	// Presentation
	Width  *int `short:"W" help:"Presentation width (0 keeps the native size)."`
	Height *int `short:"H" help:"Presentation height (0 keeps the native size)."`

	// Playback
	EndBehavior string   `short:"e" help:"What to do at the end of a video (loop or pause)."`
	Speed       *float64 `help:"Initial playback speed multiplier."`
	FFmpegPath  string   `help:"Path to the ffmpeg executable (falls back to PATH)."`

	// Logging options
	LogLevel string `short:"l" help:"Log level (debug, info, warn, error)."`
	Quiet    bool   `short:"Q" help:"Suppress all log output."`
}

// ProbeCmd defines the probe subcommand.
type ProbeCmd struct {
	File string `arg:"" type:"existingfile" help:"MP4 file to inspect."`
}

// VersionCmd shows version information.
type VersionCmd struct{}

var version = "dev"

func main() {
	cli := CLI{}

	ctx := kong.Parse(&cli,
		kong.Name("vidmark"),
		kong.Description(l10n.T("Review videos and record animal behaviour annotations.")),
		kong.UsageOnError(),
	)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// Run executes the review command.
func (cmd *ReviewCmd) Run() error {
	cfg, err := cmd.buildConfig()
	if err != nil {
		return err
	}

	// Create logger
	var log ports.Logger
	if cmd.Quiet {
		log = logger.NewNoop()
	} else {
		log = logger.NewConsole(cfg.Level())
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Interrupted, shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	// Create adapters
	fs := osfilesystem.New()
	opener := smartsource.New(cfg.ToSourceOptions(), log)
	surface := ggsurface.New(ggrenderer.New(), cfg.ToSurfaceOptions())

	list, err := cmd.loadPlaylist(fs, cfg)
	if err != nil {
		return err
	}
	log.Info("Loaded %d videos from %s", list.Len(), cmd.Target)

	ctrl := playback.NewController(opener, surface, log, cfg.ToControllerOptions())
	defer ctrl.Close()

	if cmd.Speed != nil {
		if err := ctrl.SetSpeed(*cmd.Speed); err != nil {
			return err
		}
	}

	journal, err := openJournal(cfg, cmd.NoJournal)
	if err != nil {
		return err
	}
	defer journal.Close()

	r := newReviewer(cfg, ctrl, surface, list, journal, fs, log, os.Stdout)
	if err := r.open(); err != nil {
		return err
	}

	go ctrl.Run(ctx, cfg.TickInterval())

	return r.console(ctx)
}

// buildConfig creates a Config from the optional file and CLI overrides.
func (cmd *ReviewCmd) buildConfig() (config.Config, error) {
	cfg := config.Defaults()
	if cmd.Config != "" {
		var err error
		if cfg, err = config.LoadFromFile(cmd.Config); err != nil {
			return cfg, err
		}
	}

	if cmd.Output != nil {
		cfg.OutputDir = *cmd.Output
	}
	if cmd.SnapshotDir != nil {
		cfg.SnapshotDir = *cmd.SnapshotDir
	}
	if cmd.Session != nil {
		cfg.Session = *cmd.Session
	}
	if cmd.Journal != nil {
		cfg.JournalPath = *cmd.Journal
	}
	if cmd.Width != nil {
		cfg.Width = *cmd.Width
	}
	if cmd.Height != nil {
		cfg.Height = *cmd.Height
	}
	if cmd.EndBehavior != "" {
		cfg.EndBehavior = cmd.EndBehavior
	}
	if cmd.FFmpegPath != "" {
		cfg.FFmpegPath = cmd.FFmpegPath
	}
	if cmd.LogLevel != "" {
		cfg.LogLevel = cmd.LogLevel
	}

	return cfg, cfg.Validate()
}

// loadPlaylist builds the playlist for the target: a synthetic URI or a single file
// plays alone, a directory is scanned for videos.
func (cmd *ReviewCmd) loadPlaylist(fs ports.FileSystem, cfg config.Config) (*playlist.Playlist, error) {
	if syntheticsource.IsURI(cmd.Target) {
		return playlist.New([]string{cmd.Target}), nil
	}

	info, err := os.Stat(cmd.Target)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return playlist.New([]string{cmd.Target}), nil
	}
	return playlist.Load(fs, cmd.Target, cfg.Extensions)
}

// openJournal opens the bbolt journal, or an in-memory one when disabled.
func openJournal(cfg config.Config, disabled bool) (annotation.Journal, error) {
	if disabled {
		return annotation.NewMemoryJournal(), nil
	}
	path := cfg.JournalPath
	if path == "" {
		var err error
		if path, err = config.DefaultJournalPath(); err != nil {
			return nil, fmt.Errorf("locate journal: %w", err)
		}
	}
	return boltjournal.Open(path)
}

// Run executes the probe command.
func (cmd *ProbeCmd) Run() error {
	info, err := mp4probe.ProbeFile(cmd.File)
	if err != nil {
		return err
	}
	fmt.Println(renderProbe(cmd.File, info))
	return nil
}

// Run executes the version command.
func (cmd *VersionCmd) Run() error {
	fmt.Println(l10n.F("vidmark version %s", version))
	if path, err := ffmpegsource.FindFFmpeg(); err == nil {
		fmt.Println(l10n.F("ffmpeg: %s", path))
	} else {
		fmt.Println(l10n.T("ffmpeg: not found, only synthetic clips can be played"))
	}
	return nil
}
