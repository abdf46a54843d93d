// Package logger implements ports.Logger for terminals, CLI writers and tests.
// Message keys are translated with go-l10n before formatting.
package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/ideamans/go-l10n"
	"github.com/mattn/go-isatty"

	"github.com/user/happlay/pkg/ports"
)

const (
	ansiReset     = "\033[0m"
	ansiComponent = "\033[36m"
)

// levelColors holds the ANSI colour per level; info stays uncoloured.
var levelColors = map[ports.LogLevel]string{
	ports.LevelDebug: "\033[90m",
	ports.LevelWarn:  "\033[33m",
	ports.LevelError: "\033[31m",
}

// ConsoleLogger writes debug and info lines to out, warnings and errors to
// errOut, each prefixed with its component path.
type ConsoleLogger struct {
	level     ports.LogLevel
	component string
	color     bool
	out       io.Writer
	errOut    io.Writer
}

// NewConsole logs to stdout and stderr, in colour when stdout is a terminal.
func NewConsole(level ports.LogLevel) *ConsoleLogger {
	fd := os.Stdout.Fd()
	l := NewWriter(level, os.Stdout, os.Stderr)
	l.color = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	return l
}

// NewWriter logs to the given writers without colour.
func NewWriter(level ports.LogLevel, out, errOut io.Writer) *ConsoleLogger {
	return &ConsoleLogger{level: level, out: out, errOut: errOut}
}

// NewNoop returns a logger that drops everything, for players created
// without one and for --quiet.
func NewNoop() *ConsoleLogger {
	return NewWriter(ports.LevelQuiet, io.Discard, io.Discard)
}

// Enabled reports whether messages at level are written.
func (l *ConsoleLogger) Enabled(level ports.LogLevel) bool {
	return level >= l.level && level < ports.LevelQuiet
}

func (l *ConsoleLogger) Debug(msg string, args ...any) { l.logf(ports.LevelDebug, msg, args) }
func (l *ConsoleLogger) Info(msg string, args ...any)  { l.logf(ports.LevelInfo, msg, args) }
func (l *ConsoleLogger) Warn(msg string, args ...any)  { l.logf(ports.LevelWarn, msg, args) }
func (l *ConsoleLogger) Error(msg string, args ...any) { l.logf(ports.LevelError, msg, args) }

// WithComponent nests component under the current prefix with a slash.
func (l *ConsoleLogger) WithComponent(component string) ports.Logger {
	child := *l
	if l.component != "" {
		child.component = l.component + "/" + component
	} else {
		child.component = component
	}
	return &child
}

func (l *ConsoleLogger) logf(level ports.LogLevel, msg string, args []any) {
	if !l.Enabled(level) {
		return
	}

	line := l10n.F(msg, args...)
	if l.component != "" {
		prefix := "[" + l.component + "]"
		if l.color {
			prefix = ansiComponent + prefix + ansiReset
		}
		line = prefix + " " + line
	}
	if c, ok := levelColors[level]; ok && l.color {
		line = c + line + ansiReset
	}

	w := l.out
	if level >= ports.LevelWarn {
		w = l.errOut
	}
	fmt.Fprintln(w, line)
}
