// Package annotation turns reviewer marks against the playback position into behaviour
// records, summarises them and exports them as CSV next to the video.
package annotation

import (
	"fmt"
	"math"
	"strings"
)

// Kind distinguishes instantaneous events from states with a start and an end.
type Kind string

const (
	KindEvent Kind = "EVENT"
	KindState Kind = "STATE"
)

// ParseKind accepts "event" or "state" in any case.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToUpper(strings.TrimSpace(s))) {
	case KindEvent:
		return KindEvent, nil
	case KindState:
		return KindState, nil
	default:
		return "", fmt.Errorf("unknown record kind %q", s)
	}
}

// DefaultRole is used when a mark carries no role.
const DefaultRole = "Indiv"

// Record is one annotated behaviour.
type Record struct {
	Session      int     `json:"session"`
	Role         string  `json:"role"`
	Behaviour    string  `json:"behaviour"`
	Tag          string  `json:"tag,omitempty"`
	Observations string  `json:"observations,omitempty"`
	Kind         Kind    `json:"kind"`
	Start        float64 `json:"start"`              // seconds
	End          float64 `json:"end,omitempty"`      // seconds, STATE only
	Duration     float64 `json:"duration,omitempty"` // End - Start for STATE, 0 for EVENT
	Closed       bool    `json:"closed,omitempty"`   // STATE has an end
}

// String renders a one-line summary of the record.
func (r Record) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s (%s)", FormatTime(r.Start), r.Kind, r.Behaviour, r.Role)
	if r.Kind == KindState {
		if r.Closed {
			fmt.Fprintf(&b, " until %s, %.2fs", FormatTime(r.End), r.Duration)
		} else {
			b.WriteString(" open")
		}
	}
	if r.Tag != "" {
		fmt.Fprintf(&b, " tag=%s", r.Tag)
	}
	if r.Observations != "" {
		fmt.Fprintf(&b, " obs=%q", r.Observations)
	}
	return b.String()
}

// FormatTime renders seconds as mm:ss. Minutes are not wrapped into hours.
func FormatTime(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	minutes := int(seconds / 60)
	secs := int(math.Mod(seconds, 60))
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}
