package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/ideamans/go-l10n"

	"github.com/user/vidmark/pkg/adapters/ggsurface"
	"github.com/user/vidmark/pkg/adapters/syntheticsource"
	"github.com/user/vidmark/pkg/annotation"
	"github.com/user/vidmark/pkg/config"
	"github.com/user/vidmark/pkg/playback"
	"github.com/user/vidmark/pkg/playlist"
	"github.com/user/vidmark/pkg/ports"
)

var errUnknownCommand = errors.New("unknown command")

// reviewer binds the transport console to a controller, a playlist and a recorder.
type reviewer struct {
	cfg      config.Config
	ctrl     *playback.Controller
	surface  *ggsurface.Surface
	list     *playlist.Playlist
	recorder *annotation.Recorder
	exporter *annotation.Exporter
	journal  annotation.Journal
	fs       ports.FileSystem
	log      ports.Logger
	out      io.Writer
}

func newReviewer(cfg config.Config, ctrl *playback.Controller, surface *ggsurface.Surface, list *playlist.Playlist, journal annotation.Journal, fs ports.FileSystem, log ports.Logger, out io.Writer) *reviewer {
	return &reviewer{
		cfg:      cfg,
		ctrl:     ctrl,
		surface:  surface,
		list:     list,
		recorder: annotation.NewRecorder(cfg.Session),
		exporter: annotation.NewExporter(fs, log),
		journal:  journal,
		fs:       fs,
		log:      log.WithComponent("review"),
		out:      out,
	}
}

// console reads commands until quit, EOF or ctx is done.
func (r *reviewer) console(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "vidmark> ",
		AutoComplete:    completer(),
		HistoryLimit:    500,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()
	r.out = rl.Stdout()

	go func() {
		<-ctx.Done()
		rl.Close()
	}()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if err != nil || ctx.Err() != nil {
			return nil
		}

		quit, err := r.execute(line)
		if err != nil {
			fmt.Fprintln(r.out, l10n.F("error: %v", err))
		}
		if quit {
			return nil
		}
	}
}

func completer() *readline.PrefixCompleter {
	items := make([]readline.PrefixCompleterInterface, 0, len(commandHelp))
	for _, c := range commandHelp {
		items = append(items, readline.PcItem(c[0]))
	}
	return readline.NewPrefixCompleter(items...)
}

// commandHelp lists console commands with their usage.
var commandHelp = [][3]string{
	{"play", "", "Resume playback"},
	{"pause", "", "Pause playback"},
	{"toggle", "", "Toggle play and pause"},
	{"seek", "<s|mm:ss|+s|-s>", "Jump to a position"},
	{"speed", "[multiplier]", "Show or set the playback speed"},
	{"next", "", "Open the next video"},
	{"prev", "", "Open the previous video"},
	{"open", "<n>", "Open video n of the list"},
	{"list", "", "List the videos"},
	{"status", "", "Show the playback state"},
	{"event", "<behaviour> [role=R] [tag=T] [note=...]", "Record an instantaneous behaviour"},
	{"state", "<behaviour> [role=R] [tag=T] [note=...]", "Open or close a lasting behaviour"},
	{"cancel", "", "Discard the open state"},
	{"records", "", "List the records of this video"},
	{"summary", "", "Summarise the records per behaviour"},
	{"save", "", "Write the records as CSV"},
	{"journal", "", "List videos with unsaved records"},
	{"snapshot", "", "Save the current frame as PNG"},
	{"help", "", "Show this help"},
	{"quit", "", "Leave vidmark"},
}

// execute runs one console line and reports whether the console should exit.
func (r *reviewer) execute(line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	switch name {
	case "play":
		return false, r.ctrl.Play()
	case "pause":
		return false, r.ctrl.Pause()
	case "toggle", "p":
		playing, err := r.ctrl.TogglePlay()
		if err == nil {
			r.printState(playing)
		}
		return false, err
	case "seek":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: seek <s|mm:ss|+s|-s>")
		}
		target, err := parsePosition(args[0], r.ctrl.Position())
		if err != nil {
			return false, err
		}
		return false, r.ctrl.Seek(target)
	case "speed":
		return false, r.speed(args)
	case "next":
		path, err := r.list.Next()
		if err != nil {
			return false, err
		}
		return false, r.switchTo(path)
	case "prev":
		path, err := r.list.Prev()
		if err != nil {
			return false, err
		}
		return false, r.switchTo(path)
	case "open":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: open <n>")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return false, fmt.Errorf("invalid video number %q", args[0])
		}
		path, err := r.list.Select(n - 1)
		if err != nil {
			return false, err
		}
		return false, r.switchTo(path)
	case "list":
		fmt.Fprintln(r.out, renderPlaylist(r.list))
	case "status":
		fmt.Fprintln(r.out, r.status())
	case "event":
		return false, r.mark(annotation.KindEvent, args)
	case "state":
		return false, r.mark(annotation.KindState, args)
	case "cancel":
		rec, err := r.recorder.Cancel()
		if err != nil {
			return false, err
		}
		fmt.Fprintln(r.out, l10n.F("Discarded open state %s", rec.Behaviour))
		r.persist()
	case "records":
		fmt.Fprintln(r.out, renderRecords(r.recorder.Records()))
	case "summary":
		fmt.Fprint(r.out, annotation.Markdown.Format(r.summary()))
	case "save":
		return false, r.save()
	case "snapshot":
		path, err := r.surface.SaveSnapshot(r.fs, r.cfg.SnapshotDir)
		if err != nil {
			return false, err
		}
		r.log.Info("Snapshot saved to %s", path)
	case "help", "?":
		fmt.Fprintln(r.out, renderHelp())
	case "journal":
		entries, err := r.journal.List()
		if err != nil {
			return false, err
		}
		fmt.Fprintln(r.out, renderJournal(entries))
	case "quit", "exit":
		r.persist()
		if n := r.recorder.Len(); n > 0 {
			fmt.Fprintln(r.out, l10n.F("%d unsaved records kept for the next review of %s", n, r.ctrl.Path()))
		}
		return true, nil
	default:
		return false, fmt.Errorf("%w %q, type help", errUnknownCommand, fields[0])
	}
	return false, nil
}

// open starts the playlist's current video.
func (r *reviewer) open() error {
	path, err := r.list.Current()
	if err != nil {
		return err
	}
	return r.start(path)
}

// switchTo opens path. Unsaved records of the previous video stay in the journal.
func (r *reviewer) switchTo(path string) error {
	r.persist()
	if n := r.recorder.Len(); n > 0 {
		r.log.Info("Unsaved records for %s kept in the journal", r.ctrl.Path())
	}
	return r.start(path)
}

// start opens path and restores its journal entry, resuming where the last review stopped.
func (r *reviewer) start(path string) error {
	r.recorder.Reset()
	if err := r.ctrl.Open(path); err != nil {
		return err
	}

	entry, found, err := r.journal.Load(path)
	if err != nil {
		r.log.Warn("Reading the journal for %s failed: %v", path, err)
		return nil
	}
	if !found {
		return nil
	}
	if !entry.Empty() {
		r.recorder.Restore(entry.Records, entry.Pending)
		fmt.Fprintln(r.out, l10n.F("Restored %d unsaved records", len(entry.Records)))
	}
	if entry.Position > 0 {
		if err := r.ctrl.Seek(entry.Position); err != nil {
			return err
		}
		fmt.Fprintln(r.out, l10n.F("Resuming at %s", annotation.FormatTime(entry.Position)))
	}
	return nil
}

// persist writes the current video's records and position to the journal.
func (r *reviewer) persist() {
	path := r.ctrl.Path()
	if path == "" {
		return
	}
	if err := r.journal.Store(annotation.EntryOf(path, r.recorder, r.ctrl.Position())); err != nil {
		r.log.Warn("Updating the journal for %s failed: %v", path, err)
	}
}

func (r *reviewer) speed(args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(r.out, l10n.F("Speed %.2fx (choices: %s)", r.ctrl.Speed(), formatSpeeds(r.cfg.Speeds)))
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "x"), 64)
	if err != nil {
		return fmt.Errorf("invalid speed %q", args[0])
	}
	if v <= 0 {
		return playback.ErrInvalidSpeed
	}
	return r.ctrl.SetSpeed(r.cfg.NearestSpeed(v))
}

// mark parses "<behaviour words> [role=R] [tag=T] [note=free text]" and records it
// at the current position.
func (r *reviewer) mark(kind annotation.Kind, args []string) error {
	m := annotation.Mark{
		Kind:     kind,
		Role:     r.cfg.DefaultRole,
		Position: r.ctrl.Position(),
	}

	var words []string
	for i, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		switch {
		case ok && key == "role":
			m.Role = value
		case ok && key == "tag":
			m.Tag = value
		case ok && key == "note":
			m.Observations = strings.TrimSpace(strings.Join(append([]string{value}, args[i+1:]...), " "))
		default:
			words = append(words, arg)
			continue
		}
		if key == "note" {
			break
		}
	}
	m.Behaviour = strings.Join(words, " ")

	rec, added, err := r.recorder.Mark(m)
	if err != nil {
		return err
	}
	r.persist()
	if added {
		fmt.Fprintln(r.out, l10n.F("Recorded %s", rec.String()))
	} else {
		fmt.Fprintln(r.out, l10n.F("State %s opened at %s", rec.Behaviour, annotation.FormatTime(rec.Start)))
	}
	return nil
}

func (r *reviewer) summary() annotation.Summary {
	return annotation.Summarize(filepath.Base(r.ctrl.Path()), r.recorder.Records())
}

// save writes the records and their summary, then starts a fresh record list.
// An open state stays open.
func (r *reviewer) save() error {
	var open *annotation.Record
	if pending, ok := r.recorder.Pending(); ok {
		fmt.Fprintln(r.out, l10n.F("State %s is still open and is not saved", pending.Behaviour))
		open = &pending
	}

	dir := r.outputDir()
	path, err := r.exporter.Save(dir, r.ctrl.Path(), r.recorder.Records())
	if err != nil {
		return err
	}
	summaryPath, err := r.exporter.WriteSummary(dir, r.summary(), annotation.Markdown)
	if err != nil {
		return err
	}
	r.log.Info("Summary saved to %s", summaryPath)
	fmt.Fprintln(r.out, l10n.F("Records written to %s", path))

	r.recorder.Restore(nil, open)
	r.persist()
	return nil
}

// outputDir is the configured output directory, or the directory of the current video.
func (r *reviewer) outputDir() string {
	if r.cfg.OutputDir != "" {
		return r.cfg.OutputDir
	}
	path := r.ctrl.Path()
	if path == "" || syntheticsource.IsURI(path) {
		return "."
	}
	return filepath.Dir(path)
}

func (r *reviewer) printState(playing bool) {
	if playing {
		fmt.Fprintln(r.out, l10n.T("Playing"))
	} else {
		fmt.Fprintln(r.out, l10n.T("Paused"))
	}
}

func (r *reviewer) status() string {
	meta, _ := r.ctrl.Metadata()
	stats := r.ctrl.Stats()
	state := l10n.T("Paused")
	if r.ctrl.Playing() {
		state = l10n.T("Playing")
	}

	pending := "-"
	if rec, ok := r.recorder.Pending(); ok {
		pending = fmt.Sprintf("%s @ %s", rec.Behaviour, annotation.FormatTime(rec.Start))
	}

	return renderTable([]string{l10n.T("Field"), l10n.T("Value")}, [][]string{
		{l10n.T("Video"), fmt.Sprintf("%s (%d/%d)", r.ctrl.Path(), r.list.Index()+1, r.list.Len())},
		{l10n.T("State"), state},
		{l10n.T("Position"), fmt.Sprintf("%s / %s", annotation.FormatTime(r.ctrl.Position()), annotation.FormatTime(meta.Duration))},
		{l10n.T("Speed"), fmt.Sprintf("%.2fx", r.ctrl.Speed())},
		{l10n.T("Loops"), strconv.Itoa(r.ctrl.Loops())},
		{l10n.T("Frames"), fmt.Sprintf("%d shown, %d dropped", stats.FramesEmitted, stats.FramesDropped)},
		{l10n.T("Open state"), pending},
		{l10n.T("Records"), strconv.Itoa(r.recorder.Len())},
	}, nil)
}

// parsePosition accepts seconds ("75.5"), a clock ("1:15.5") or an offset from
// current ("+5", "-10").
func parsePosition(arg string, current float64) (float64, error) {
	if arg == "" {
		return 0, fmt.Errorf("empty position")
	}
	if arg[0] == '+' || arg[0] == '-' {
		d, err := strconv.ParseFloat(arg[1:], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid offset %q", arg)
		}
		if arg[0] == '-' {
			d = -d
		}
		return max(0, current+d), nil
	}

	minutes, seconds, clock := strings.Cut(arg, ":")
	if !clock {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid position %q", arg)
		}
		return v, nil
	}
	m, err := strconv.Atoi(minutes)
	if err != nil || m < 0 {
		return 0, fmt.Errorf("invalid position %q", arg)
	}
	s, err := strconv.ParseFloat(seconds, 64)
	if err != nil || s < 0 || s >= 60 {
		return 0, fmt.Errorf("invalid position %q", arg)
	}
	return float64(m)*60 + s, nil
}

func formatSpeeds(speeds []float64) string {
	parts := make([]string, len(speeds))
	for i, s := range speeds {
		parts[i] = strconv.FormatFloat(s, 'f', -1, 64) + "x"
	}
	return strings.Join(parts, ", ")
}
