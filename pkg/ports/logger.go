// Package ports declares the interfaces the player and CLI depend on:
// file access, logging, debug output, rendering and frame codecs.
package ports

import "strings"

// LogLevel is the severity of a log message.
type LogLevel int

const (
	// LevelDebug covers per-frame detail: container boxes, decode requests,
	// superseded or discarded decodes in the frame cache.
	LevelDebug LogLevel = iota
	// LevelInfo covers player lifecycle and CLI progress: opened streams,
	// written files, benchmark totals.
	LevelInfo
	// LevelWarn covers problems playback survives, such as a frame that
	// failed to decode while the previous frame stays on screen.
	LevelWarn
	// LevelError covers failures that leave the player without a stream,
	// such as an unreadable or unparsable movie.
	LevelError
	// LevelQuiet suppresses all output.
	LevelQuiet
)

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelQuiet:
		return "quiet"
	default:
		return "unknown"
	}
}

// ParseLogLevel maps a config or flag value to a level, case-insensitively.
// Unknown values mean info.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "quiet":
		return LevelQuiet
	default:
		return LevelInfo
	}
}

// Logger writes leveled messages. msg is a translation key and a format
// string at once; args fill its verbs after translation.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	// WithComponent returns a logger whose messages are prefixed with
	// component, nested under this logger's own prefix
	// ("player 1234abcd/framecache").
	WithComponent(component string) Logger
}
