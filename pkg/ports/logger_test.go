package ports

import "testing"

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warn", LevelWarn},
		{" Warning ", LevelWarn},
		{"error", LevelError},
		{"quiet", LevelQuiet},
		{"verbose", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLogLevel_StringRoundTrip(t *testing.T) {
	for l := LevelDebug; l <= LevelQuiet; l++ {
		if got := ParseLogLevel(l.String()); got != l {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", l.String(), got, l)
		}
	}
}
