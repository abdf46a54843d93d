package mocks

import (
	"context"
	"sync"

	"github.com/user/happlay/pkg/ports"
	"github.com/user/happlay/pkg/stream"
	"github.com/user/happlay/pkg/texture"
)

// FrameDecoder is a mock implementation of ports.FrameDecoder.
//
// Without a DecodeFrameFunc it writes an 8x4 Hap1 texture whose first plane
// byte holds the frame index.
type FrameDecoder struct {
	mu sync.Mutex

	DecodeFrameFunc func(ctx context.Context, index int, dst *texture.Texture) error

	// Recorded calls for verification
	calls []int
}

func (m *FrameDecoder) DecodeFrame(ctx context.Context, index int, dst *texture.Texture) error {
	m.mu.Lock()
	m.calls = append(m.calls, index)
	fn := m.DecodeFrameFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, index, dst)
	}
	FillIndexTexture(index, dst)
	return nil
}

// Calls returns the indexes passed to DecodeFrame, in order.
func (m *FrameDecoder) Calls() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.calls...)
}

// CallCount returns how many times DecodeFrame was called.
func (m *FrameDecoder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// FillIndexTexture writes a small texture tagged with index into dst.
func FillIndexTexture(index int, dst *texture.Texture) {
	src := texture.New(stream.VariantHap, 8, 4)
	src.Planes[0][0] = byte(index)
	dst.CopyFrom(src)
}

// TextureIndex reads back the tag written by FillIndexTexture.
func TextureIndex(t *texture.Texture) int {
	if t == nil || len(t.Planes) == 0 || len(t.Planes[0]) == 0 {
		return -1
	}
	return int(t.Planes[0][0])
}

var _ ports.FrameDecoder = (*FrameDecoder)(nil)
