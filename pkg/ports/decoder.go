package ports

import (
	"context"

	"github.com/user/happlay/pkg/texture"
)

// FrameDecoder decodes one frame of an open stream.
type FrameDecoder interface {
	// DecodeFrame reads and decodes the frame at index into dst.
	// On error dst must be left unchanged.
	DecodeFrame(ctx context.Context, index int, dst *texture.Texture) error
}
