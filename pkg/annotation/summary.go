package annotation

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// BehaviourSummary aggregates the records of one behaviour.
type BehaviourSummary struct {
	Behaviour     string
	Events        int
	States        int
	TotalDuration float64 // seconds, closed states only
	FirstSeen     float64
}

// Summary aggregates a video's records.
type Summary struct {
	Video      string
	Records    int
	Events     int
	States     int
	StateTime  float64
	Behaviours []BehaviourSummary // sorted by behaviour name
}

// Summarize aggregates records per behaviour.
func Summarize(video string, records []Record) Summary {
	s := Summary{Video: video, Records: len(records)}
	byName := make(map[string]*BehaviourSummary)

	for _, r := range records {
		b, ok := byName[r.Behaviour]
		if !ok {
			b = &BehaviourSummary{Behaviour: r.Behaviour, FirstSeen: r.Start}
			byName[r.Behaviour] = b
		}
		if r.Start < b.FirstSeen {
			b.FirstSeen = r.Start
		}
		switch r.Kind {
		case KindEvent:
			b.Events++
			s.Events++
		case KindState:
			b.States++
			s.States++
			if r.Closed {
				b.TotalDuration += r.Duration
				s.StateTime += r.Duration
			}
		}
	}

	for _, b := range byName {
		s.Behaviours = append(s.Behaviours, *b)
	}
	sort.Slice(s.Behaviours, func(i, j int) bool {
		return s.Behaviours[i].Behaviour < s.Behaviours[j].Behaviour
	})
	return s
}

// Formatter converts a Summary to text.
type Formatter interface {
	Format(summary Summary) string
}

// FormatFunc is a function adapter for the Formatter interface.
type FormatFunc func(summary Summary) string

// Format implements the Formatter interface.
func (f FormatFunc) Format(summary Summary) string {
	return f(summary)
}

// Markdown renders a Summary as a Markdown document.
var Markdown Formatter = FormatFunc(formatMarkdown)

func formatMarkdown(s Summary) string {
	var b strings.Builder
	title := s.Video
	if title == "" {
		title = "video"
	}
	fmt.Fprintf(&b, "# Annotation Summary: %s\n\n", title)
	fmt.Fprintf(&b, "- Records: %d (%d events, %d states)\n", s.Records, s.Events, s.States)
	fmt.Fprintf(&b, "- Time in states: %.2f s\n\n", s.StateTime)

	if len(s.Behaviours) == 0 {
		b.WriteString("No behaviours recorded.\n")
		return b.String()
	}

	b.WriteString("| Behaviour | Events | States | Total duration | First seen |\n")
	b.WriteString("|---|---:|---:|---:|---:|\n")
	for _, bs := range s.Behaviours {
		fmt.Fprintf(&b, "| %s | %d | %d | %.2f s | %s |\n",
			bs.Behaviour, bs.Events, bs.States, bs.TotalDuration, FormatTime(bs.FirstSeen))
	}
	return b.String()
}

// WriteSummary formats summary and writes it next to the CSV as <stem>_summary.md.
func (e *Exporter) WriteSummary(dir string, summary Summary, formatter Formatter) (string, error) {
	if err := e.fs.MkdirAll(dir); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, Stem(summary.Video)+"_summary.md")
	if err := e.fs.WriteFile(path, []byte(formatter.Format(summary))); err != nil {
		return "", fmt.Errorf("write summary: %w", err)
	}
	return path, nil
}
