package mocks

import (
	"fmt"
	"strings"
	"sync"

	"github.com/user/vidmark/pkg/ports"
)

// LogEntry is one recorded log call.
type LogEntry struct {
	Level     ports.LogLevel
	Component string
	Message   string
}

// Logger is a mock implementation of ports.Logger that records formatted messages.
// Loggers derived with WithComponent share the parent's entries.
type Logger struct {
	component string
	log       *logBook
}

type logBook struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewLogger creates a recording Logger.
func NewLogger() *Logger {
	return &Logger{log: &logBook{}}
}

func (m *Logger) record(level ports.LogLevel, msg string, args []interface{}) {
	if m.log == nil {
		return
	}
	m.log.mu.Lock()
	defer m.log.mu.Unlock()
	m.log.entries = append(m.log.entries, LogEntry{
		Level:     level,
		Component: m.component,
		Message:   fmt.Sprintf(msg, args...),
	})
}

func (m *Logger) Debug(msg string, args ...interface{}) { m.record(ports.LevelDebug, msg, args) }
func (m *Logger) Info(msg string, args ...interface{})  { m.record(ports.LevelInfo, msg, args) }
func (m *Logger) Warn(msg string, args ...interface{})  { m.record(ports.LevelWarn, msg, args) }
func (m *Logger) Error(msg string, args ...interface{}) { m.record(ports.LevelError, msg, args) }

func (m *Logger) WithComponent(component string) ports.Logger {
	return &Logger{component: component, log: m.log}
}

// Entries returns all recorded entries.
func (m *Logger) Entries() []LogEntry {
	if m.log == nil {
		return nil
	}
	m.log.mu.Lock()
	defer m.log.mu.Unlock()
	return append([]LogEntry(nil), m.log.entries...)
}

// Count returns the number of entries at level.
func (m *Logger) Count(level ports.LogLevel) int {
	n := 0
	for _, e := range m.Entries() {
		if e.Level == level {
			n++
		}
	}
	return n
}

// Contains reports whether any message contains substr.
func (m *Logger) Contains(substr string) bool {
	for _, e := range m.Entries() {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

var _ ports.Logger = (*Logger)(nil)
