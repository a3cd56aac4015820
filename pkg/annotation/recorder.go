package annotation

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	// ErrStateOpen is returned when a different state is marked while one is still open.
	ErrStateOpen = errors.New("annotation: another state is still open")

	// ErrNegativeDuration is returned when a state would end before it started.
	ErrNegativeDuration = errors.New("annotation: state ends before it starts")

	// ErrNoBehaviour is returned for marks without a behaviour name.
	ErrNoBehaviour = errors.New("annotation: behaviour is required")

	// ErrNothingPending is returned by Cancel when no state is open.
	ErrNothingPending = errors.New("annotation: no open state")
)

// Mark is a reviewer action at a playback position.
type Mark struct {
	Kind         Kind
	Behaviour    string
	Role         string // empty uses DefaultRole
	Tag          string
	Observations string
	Position     float64 // seconds
}

// Recorder collects the records of one video. It is safe for concurrent use.
type Recorder struct {
	session int

	mu      sync.Mutex
	records []Record
	pending *Record
}

// NewRecorder creates an empty Recorder for the given session number.
func NewRecorder(session int) *Recorder {
	if session <= 0 {
		session = 1
	}
	return &Recorder{session: session}
}

// Mark applies m. EVENT marks are recorded at once. The first STATE mark opens a state; the
// next mark of the same behaviour closes it. It returns the affected record and whether it
// was appended to the list.
func (r *Recorder) Mark(m Mark) (Record, bool, error) {
	m.Behaviour = strings.TrimSpace(m.Behaviour)
	if m.Behaviour == "" {
		return Record{}, false, ErrNoBehaviour
	}
	if m.Role == "" {
		m.Role = DefaultRole
	}
	if m.Position < 0 {
		m.Position = 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	switch m.Kind {
	case KindEvent:
		rec := Record{
			Session:      r.session,
			Role:         m.Role,
			Behaviour:    m.Behaviour,
			Tag:          m.Tag,
			Observations: m.Observations,
			Kind:         KindEvent,
			Start:        m.Position,
		}
		r.records = append(r.records, rec)
		return rec, true, nil

	case KindState:
		if r.pending == nil {
			r.pending = &Record{
				Session:      r.session,
				Role:         m.Role,
				Behaviour:    m.Behaviour,
				Tag:          m.Tag,
				Observations: m.Observations,
				Kind:         KindState,
				Start:        m.Position,
			}
			return *r.pending, false, nil
		}
		if r.pending.Behaviour != m.Behaviour {
			return *r.pending, false, fmt.Errorf("%w: %s", ErrStateOpen, r.pending.Behaviour)
		}
		if m.Position < r.pending.Start {
			return *r.pending, false, fmt.Errorf("%w: %s < %s",
				ErrNegativeDuration, FormatTime(m.Position), FormatTime(r.pending.Start))
		}

		rec := *r.pending
		rec.End = m.Position
		rec.Duration = m.Position - rec.Start
		rec.Closed = true
		// The closing mark may carry the tag or observations decided while watching.
		if m.Tag != "" {
			rec.Tag = m.Tag
		}
		if m.Observations != "" {
			rec.Observations = m.Observations
		}
		r.records = append(r.records, rec)
		r.pending = nil
		return rec, true, nil

	default:
		return Record{}, false, fmt.Errorf("unknown record kind %q", m.Kind)
	}
}

// Pending returns the open state, if any.
func (r *Recorder) Pending() (Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending == nil {
		return Record{}, false
	}
	return *r.pending, true
}

// Cancel discards the open state.
func (r *Recorder) Cancel() (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending == nil {
		return Record{}, ErrNothingPending
	}
	rec := *r.pending
	r.pending = nil
	return rec, nil
}

// Records returns a copy of the completed records in marking order.
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Record(nil), r.records...)
}

// Len returns the number of completed records.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// Reset discards all records and the open state, for example when switching videos.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = nil
	r.pending = nil
}

// Restore replaces the records and the open state, for example with a journal entry.
func (r *Recorder) Restore(records []Record, pending *Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append([]Record(nil), records...)
	r.pending = nil
	if pending != nil {
		p := *pending
		r.pending = &p
	}
}
