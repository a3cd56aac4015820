package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/user/vidmark/pkg/adapters/ggsurface"
	"github.com/user/vidmark/pkg/adapters/syntheticsource"
	"github.com/user/vidmark/pkg/annotation"
	"github.com/user/vidmark/pkg/config"
	"github.com/user/vidmark/pkg/mocks"
	"github.com/user/vidmark/pkg/playback"
	"github.com/user/vidmark/pkg/playlist"
)

const (
	firstClip  = "synthetic:10s@10fps"
	secondClip = "synthetic:4s@25fps/64x48"
)

type reviewFixture struct {
	r    *reviewer
	fs   *mocks.FileSystem
	log  *mocks.Logger
	out  *bytes.Buffer
	ctrl *playback.Controller

	journal *annotation.MemoryJournal
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()

	cfg := config.Defaults()
	cfg.OutputDir = "/out"
	cfg.SnapshotDir = "/snaps"
	cfg.Width, cfg.Height = 0, 0

	fs := mocks.NewFileSystem()
	log := mocks.NewLogger()
	journal := annotation.NewMemoryJournal()
	out := &bytes.Buffer{}
	surface := ggsurface.New(&mocks.Renderer{}, cfg.ToSurfaceOptions())
	ctrl := playback.NewController(syntheticsource.NewOpener(), surface, log, cfg.ToControllerOptions())
	t.Cleanup(ctrl.Close)

	r := newReviewer(cfg, ctrl, surface, playlist.New([]string{firstClip, secondClip}), journal, fs, log, out)
	if err := r.open(); err != nil {
		t.Fatalf("open: %v", err)
	}
	return &reviewFixture{r: r, fs: fs, log: log, out: out, ctrl: ctrl, journal: journal}
}

func (f *reviewFixture) run(t *testing.T, lines ...string) {
	t.Helper()
	for _, line := range lines {
		if _, err := f.r.execute(line); err != nil {
			t.Fatalf("%q: unexpected error: %v", line, err)
		}
	}
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		arg     string
		current float64
		want    float64
		wantErr bool
	}{
		{"75.5", 0, 75.5, false},
		{"1:15.5", 0, 75.5, false},
		{"0:05", 3, 5, false},
		{"+5", 10, 15, false},
		{"-20", 10, 0, false},
		{"1:75", 0, 0, true},
		{"abc", 0, 0, true},
		{"+x", 0, 0, true},
		{"", 0, 0, true},
	}
	for _, tt := range tests {
		got, err := parsePosition(tt.arg, tt.current)
		if (err != nil) != tt.wantErr {
			t.Errorf("parsePosition(%q): unexpected error state %v", tt.arg, err)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parsePosition(%q, %v) = %v, expected %v", tt.arg, tt.current, got, tt.want)
		}
	}
}

func TestReviewer_MarkAndSave(t *testing.T) {
	f := newReviewFixture(t)

	f.run(t,
		"pause",
		"seek 5",
		"event jump role=Mother tag=A",
		"seek 0:07",
		"state groom",
		"seek +2.5",
		"state groom note=partly hidden by a branch",
		"records",
	)

	records := f.r.recorder.Records()
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if r := records[0]; r.Behaviour != "jump" || r.Role != "Mother" || r.Tag != "A" || r.Start != 5 {
		t.Errorf("unexpected event %+v", r)
	}
	if r := records[1]; r.Start != 7 || r.End != 9.5 || r.Observations != "partly hidden by a branch" || r.Role != annotation.DefaultRole {
		t.Errorf("unexpected state %+v", r)
	}
	if !strings.Contains(f.out.String(), "groom") {
		t.Errorf("expected records table in output:\n%s", f.out.String())
	}

	f.run(t, "save")
	if f.r.recorder.Len() != 0 {
		t.Error("expected records cleared after save")
	}

	var csvFiles, summaries int
	for path := range f.fs.GetAllFiles() {
		if filepath.Dir(path) != "/out" {
			continue
		}
		switch {
		case strings.HasSuffix(path, "_summary.md"):
			summaries++
		case strings.HasSuffix(path, ".csv"):
			csvFiles++
		}
	}
	if csvFiles != 1 || summaries != 1 {
		t.Errorf("expected one CSV and one summary in /out, got %d and %d", csvFiles, summaries)
	}

	if _, err := f.r.execute("save"); !errors.Is(err, annotation.ErrNothingToSave) {
		t.Errorf("expected ErrNothingToSave, got %v", err)
	}
}

func TestReviewer_StateErrors(t *testing.T) {
	f := newReviewFixture(t)

	f.run(t, "seek 3", "state rest")
	if _, err := f.r.execute("state feed"); !errors.Is(err, annotation.ErrStateOpen) {
		t.Errorf("expected ErrStateOpen, got %v", err)
	}
	if _, err := f.r.execute("event"); !errors.Is(err, annotation.ErrNoBehaviour) {
		t.Errorf("expected ErrNoBehaviour, got %v", err)
	}
	f.run(t, "cancel")
	if _, ok := f.r.recorder.Pending(); ok {
		t.Error("expected no pending state after cancel")
	}
}

func TestReviewer_SwitchKeepsRecordsInJournal(t *testing.T) {
	f := newReviewFixture(t)

	f.run(t, "seek 4", "event jump", "state rest", "next")
	if f.ctrl.Path() != secondClip {
		t.Errorf("expected %s, got %s", secondClip, f.ctrl.Path())
	}
	if f.r.recorder.Len() != 0 {
		t.Error("expected an empty record list for the new video")
	}
	entry, found, _ := f.journal.Load(firstClip)
	if !found || len(entry.Records) != 1 || entry.Pending == nil || entry.Position != 4 {
		t.Fatalf("expected the first video's work in the journal, got %+v", entry)
	}

	f.out.Reset()
	f.run(t, "prev")
	if f.ctrl.Path() != firstClip {
		t.Errorf("expected %s, got %s", firstClip, f.ctrl.Path())
	}
	if f.r.recorder.Len() != 1 {
		t.Errorf("expected the record restored, got %d", f.r.recorder.Len())
	}
	if _, ok := f.r.recorder.Pending(); !ok {
		t.Error("expected the open state restored")
	}
	if f.ctrl.Position() != 4 {
		t.Errorf("expected playback resumed at 4s, got %v", f.ctrl.Position())
	}

	f.run(t, "open 2")
	if f.ctrl.Path() != secondClip {
		t.Errorf("expected %s after open 2, got %s", secondClip, f.ctrl.Path())
	}
	if _, err := f.r.execute("open 9"); !errors.Is(err, playlist.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}

	f.out.Reset()
	f.run(t, "journal")
	if !strings.Contains(f.out.String(), firstClip) {
		t.Errorf("expected journal listing, got:\n%s", f.out.String())
	}
}

func TestReviewer_Speed(t *testing.T) {
	f := newReviewFixture(t)

	f.run(t, "speed 1.9")
	if f.ctrl.Speed() != 2.0 {
		t.Errorf("expected speed snapped to 2.0, got %v", f.ctrl.Speed())
	}
	f.run(t, "speed 0.5x")
	if f.ctrl.Speed() != 0.5 {
		t.Errorf("expected 0.5, got %v", f.ctrl.Speed())
	}
	if _, err := f.r.execute("speed 0"); !errors.Is(err, playback.ErrInvalidSpeed) {
		t.Errorf("expected ErrInvalidSpeed, got %v", err)
	}
	if _, err := f.r.execute("speed fast"); err == nil {
		t.Error("expected error for a non-numeric speed")
	}

	f.out.Reset()
	f.run(t, "speed")
	if !strings.Contains(f.out.String(), "0.5x, 0.75x, 1x") {
		t.Errorf("expected speed choices in output, got %q", f.out.String())
	}
}

func TestReviewer_Transport(t *testing.T) {
	f := newReviewFixture(t)

	f.run(t, "pause")
	if f.ctrl.Playing() {
		t.Error("expected paused")
	}
	f.run(t, "toggle")
	if !f.ctrl.Playing() {
		t.Error("expected playing after toggle")
	}
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if f.ctrl.Tick().Metadata {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	f.run(t, "pause", "seek 99")
	if f.ctrl.Position() != 10 {
		t.Errorf("expected seek clamped to the 10s duration, got %v", f.ctrl.Position())
	}
	if _, err := f.r.execute("seek"); err == nil {
		t.Error("expected usage error")
	}
}

func TestReviewer_Snapshot(t *testing.T) {
	f := newReviewFixture(t)

	f.run(t, "snapshot")
	var found bool
	for path := range f.fs.GetAllFiles() {
		if filepath.Dir(path) == "/snaps" && strings.HasSuffix(path, ".png") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a PNG in /snaps, got %v", f.fs.GetAllFiles())
	}
}

func TestReviewer_Output(t *testing.T) {
	f := newReviewFixture(t)

	f.run(t, "status", "list", "help", "summary", "")
	out := f.out.String()
	for _, want := range []string{firstClip, secondClip, "seek", "Annotation Summary"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output", want)
		}
	}
}

func TestReviewer_QuitKeepsRecords(t *testing.T) {
	f := newReviewFixture(t)

	f.run(t, "seek 2", "event jump")
	quit, err := f.r.execute("quit")
	if err != nil || !quit {
		t.Fatalf("expected quit, got %v %v", quit, err)
	}
	if entry, found, _ := f.journal.Load(firstClip); !found || len(entry.Records) != 1 {
		t.Errorf("expected records kept in the journal, got %+v", entry)
	}
}

func TestReviewer_SaveClearsJournal(t *testing.T) {
	f := newReviewFixture(t)

	f.run(t, "seek 1", "event jump", "seek 2", "state rest", "save")
	entry, found, _ := f.journal.Load(firstClip)
	if !found || len(entry.Records) != 0 {
		t.Errorf("expected saved records removed from the journal, got %+v", entry)
	}
	if entry.Pending == nil || entry.Pending.Behaviour != "rest" {
		t.Errorf("expected the open state to survive the save, got %+v", entry.Pending)
	}
	if _, ok := f.r.recorder.Pending(); !ok {
		t.Error("expected the open state still open")
	}
}

func TestReviewer_UnknownCommand(t *testing.T) {
	f := newReviewFixture(t)
	if _, err := f.r.execute("rewind"); !errors.Is(err, errUnknownCommand) {
		t.Errorf("expected errUnknownCommand, got %v", err)
	}
}

func TestReviewCmd_BuildConfig(t *testing.T) {
	width, session := 640, 3
	cmd := &ReviewCmd{Width: &width, Session: &session, EndBehavior: "pause", LogLevel: "debug"}
	cfg, err := cmd.buildConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Width != 640 || cfg.Height != 720 || cfg.Session != 3 || cfg.EndBehavior != "pause" || cfg.LogLevel != "debug" {
		t.Errorf("unexpected config %+v", cfg)
	}

	cmd = &ReviewCmd{EndBehavior: "rewind"}
	if _, err := cmd.buildConfig(); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}
