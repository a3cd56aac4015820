package boltjournal

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/user/vidmark/pkg/annotation"
)

func openTemp(t *testing.T) (*Journal, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state", "journal.db")
	j, err := Open(path)
	if err != nil {
		t.Fatalf("Failed to open journal: %v", err)
	}
	return j, path
}

func TestJournal_StoreLoad(t *testing.T) {
	j, _ := openTemp(t)
	defer j.Close()

	if _, found, err := j.Load("/videos/a.mp4"); err != nil || found {
		t.Fatalf("expected no entry, got found=%v err=%v", found, err)
	}

	pending := annotation.Record{Session: 1, Role: "Indiv", Behaviour: "rest", Kind: annotation.KindState, Start: 4}
	entry := annotation.Entry{
		Video: "/videos/a.mp4",
		Records: []annotation.Record{
			{Session: 1, Role: "Mother", Behaviour: "jump", Kind: annotation.KindEvent, Start: 2.5, Tag: "A"},
		},
		Pending:  &pending,
		Position: 12.25,
	}
	if err := j.Store(entry); err != nil {
		t.Fatalf("store: %v", err)
	}

	got, found, err := j.Load("/videos/a.mp4")
	if err != nil || !found {
		t.Fatalf("expected entry, got found=%v err=%v", found, err)
	}
	if len(got.Records) != 1 || got.Records[0] != entry.Records[0] {
		t.Errorf("unexpected records %+v", got.Records)
	}
	if got.Pending == nil || *got.Pending != pending {
		t.Errorf("unexpected pending %+v", got.Pending)
	}
	if got.Position != 12.25 || got.UpdatedAt.IsZero() {
		t.Errorf("unexpected position or timestamp %+v", got)
	}
}

func TestJournal_DeleteAndList(t *testing.T) {
	j, _ := openTemp(t)
	defer j.Close()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, video := range []string{"a.mp4", "b.mp4", "c.mp4"} {
		if err := j.Store(annotation.Entry{Video: video, Position: float64(i), UpdatedAt: base.Add(time.Duration(i) * time.Minute)}); err != nil {
			t.Fatal(err)
		}
	}

	if err := j.Delete("b.mp4"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := j.Delete("missing.mp4"); err != nil {
		t.Errorf("expected deleting a missing entry to succeed, got %v", err)
	}

	entries, err := j.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 || entries[0].Video != "c.mp4" || entries[1].Video != "a.mp4" {
		t.Errorf("expected c.mp4 then a.mp4, got %+v", entries)
	}
}

func TestJournal_Reopen(t *testing.T) {
	j, path := openTemp(t)
	if err := j.Store(annotation.Entry{Video: "a.mp4", Position: 3}); err != nil {
		t.Fatal(err)
	}
	if err := j.Close(); err != nil {
		t.Fatal(err)
	}

	j, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer j.Close()
	if got, found, _ := j.Load("a.mp4"); !found || got.Position != 3 {
		t.Errorf("expected entry to survive reopening, got %+v found=%v", got, found)
	}
}

func TestJournal_EmptyVideo(t *testing.T) {
	j, _ := openTemp(t)
	defer j.Close()
	if err := j.Store(annotation.Entry{}); !errors.Is(err, ErrEmptyVideo) {
		t.Errorf("expected ErrEmptyVideo, got %v", err)
	}
}
