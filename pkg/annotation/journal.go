package annotation

import (
	"errors"
	"sort"
	"sync"
	"time"
)

// Entry is the unsaved work on one video.
type Entry struct {
	Video     string    `json:"video"`
	Records   []Record  `json:"records,omitempty"`
	Pending   *Record   `json:"pending,omitempty"`
	Position  float64   `json:"position"` // seconds, where review stopped
	UpdatedAt time.Time `json:"updated_at"`
}

// Empty reports whether the entry holds no records and no open state.
func (e Entry) Empty() bool {
	return len(e.Records) == 0 && e.Pending == nil
}

// Journal persists unsaved records between runs so a crash or an accidental quit does
// not lose a review session.
type Journal interface {
	// Load returns the entry for video and whether one exists.
	Load(video string) (Entry, bool, error)
	// Store replaces the entry for entry.Video.
	Store(entry Entry) error
	// Delete removes the entry for video. Deleting a missing entry is not an error.
	Delete(video string) error
	// List returns all entries, most recently updated first.
	List() ([]Entry, error)
	Close() error
}

// EntryOf captures the recorder's current state as an entry for video.
func EntryOf(video string, r *Recorder, position float64) Entry {
	e := Entry{
		Video:     video,
		Records:   r.Records(),
		Position:  position,
		UpdatedAt: time.Now(),
	}
	if p, ok := r.Pending(); ok {
		e.Pending = &p
	}
	return e
}

// MemoryJournal is a Journal that lives only as long as the process.
type MemoryJournal struct {
	mu      sync.Mutex
	entries map[string]Entry
}

// NewMemoryJournal creates an empty MemoryJournal.
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{entries: make(map[string]Entry)}
}

// Load implements Journal.
func (j *MemoryJournal) Load(video string) (Entry, bool, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	e, ok := j.entries[video]
	return e, ok, nil
}

// Store implements Journal.
func (j *MemoryJournal) Store(entry Entry) error {
	if entry.Video == "" {
		return errors.New("annotation: journal entry has no video")
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	entry.Records = append([]Record(nil), entry.Records...)
	j.entries[entry.Video] = entry
	return nil
}

// Delete implements Journal.
func (j *MemoryJournal) Delete(video string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	delete(j.entries, video)
	return nil
}

// List implements Journal.
func (j *MemoryJournal) List() ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	entries := make([]Entry, 0, len(j.entries))
	for _, e := range j.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(a, b int) bool {
		if entries[a].UpdatedAt.Equal(entries[b].UpdatedAt) {
			return entries[a].Video < entries[b].Video
		}
		return entries[a].UpdatedAt.After(entries[b].UpdatedAt)
	})
	return entries, nil
}

// Close implements Journal.
func (j *MemoryJournal) Close() error { return nil }

var _ Journal = (*MemoryJournal)(nil)
