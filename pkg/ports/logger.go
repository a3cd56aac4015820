// Package ports defines the capability interfaces vidmark depends on:
// video sources, presentation surfaces, rendering, file system and logging.
package ports

import "fmt"

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	// LevelDebug is for per-frame and per-command detail from the playback worker.
	LevelDebug LogLevel = iota
	// LevelInfo is for session lifecycle messages (video opened, records saved).
	LevelInfo
	// LevelWarn is for recoverable problems such as a corrupt frame or a slow shutdown.
	LevelWarn
	// LevelError is for failures the reviewer has to act on.
	LevelError
	// LevelQuiet suppresses all log output.
	LevelQuiet
)

var levelNames = map[LogLevel]string{
	LevelDebug: "debug",
	LevelInfo:  "info",
	LevelWarn:  "warn",
	LevelError: "error",
	LevelQuiet: "quiet",
}

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "unknown"
}

// ParseLogLevel parses a level name. Unknown names return LevelInfo and an error.
func ParseLogLevel(s string) (LogLevel, error) {
	for level, name := range levelNames {
		if name == s {
			return level, nil
		}
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Logger abstracts logging operations.
// The msg parameter is a format string that doubles as a translation key.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})

	// WithComponent returns a Logger that prefixes messages with the component name.
	WithComponent(component string) Logger
}
