package mocks

import (
	"image"
	"sync"

	"github.com/user/happlay/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	StreamJSON    []byte
	DecodedFrames map[int]image.Image
	Sheet         image.Image
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled:       enabled,
		DecodedFrames: make(map[int]image.Image),
	}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveStreamJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StreamJSON = data
	return nil
}

func (m *DebugSink) SaveDecodedFrame(index int, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DecodedFrames[index] = img
	return nil
}

func (m *DebugSink) SaveSheet(img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sheet = img
	return nil
}

// FrameCount returns the number of saved decoded frames.
func (m *DebugSink) FrameCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.DecodedFrames)
}

var _ ports.DebugSink = (*DebugSink)(nil)
