package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/user/happlay/pkg/ports"
)

func TestConsoleLogger_Levels(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewWriter(ports.LevelInfo, &out, &errOut)

	l.Debug("debug %d", 1)
	l.Info("info %d", 2)
	l.Warn("warn %d", 3)
	l.Error("error %d", 4)

	if strings.Contains(out.String(), "debug 1") {
		t.Error("debug message should be filtered at info level")
	}
	if got := out.String(); got != "info 2\n" {
		t.Errorf("unexpected stdout %q", got)
	}
	if got := errOut.String(); got != "warn 3\nerror 4\n" {
		t.Errorf("unexpected stderr %q", got)
	}
}

func TestConsoleLogger_Quiet(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewWriter(ports.LevelQuiet, &out, &errOut)

	l.Error("error %d", 1)
	if out.Len() != 0 || errOut.Len() != 0 {
		t.Error("quiet logger should write nothing")
	}
}

func TestConsoleLogger_WithComponent(t *testing.T) {
	var out bytes.Buffer
	l := NewWriter(ports.LevelDebug, &out, &out)

	l.WithComponent("player 1234abcd").WithComponent("framecache").Debug("frame %d", 7)

	if got := out.String(); got != "[player 1234abcd/framecache] frame 7\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestNoop(t *testing.T) {
	l := NewNoop()
	for level := ports.LevelDebug; level <= ports.LevelQuiet; level++ {
		if l.Enabled(level) {
			t.Errorf("noop logger enabled at %v", level)
		}
	}

	var pl ports.Logger = l
	pl.Error("ignored %d", 1)
	if pl.WithComponent("x") == nil {
		t.Error("WithComponent should return a logger")
	}
}

func TestConsoleLogger_Enabled(t *testing.T) {
	l := NewWriter(ports.LevelWarn, nil, nil)
	if l.Enabled(ports.LevelInfo) || !l.Enabled(ports.LevelWarn) || !l.Enabled(ports.LevelError) {
		t.Error("warn level should enable only warn and error")
	}
	if l.WithComponent("player").(*ConsoleLogger).Enabled(ports.LevelInfo) {
		t.Error("component logger should keep the parent level")
	}
}
