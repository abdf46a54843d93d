package player

import (
	"context"
	"fmt"
	"io"

	"github.com/user/happlay/pkg/hap"
	"github.com/user/happlay/pkg/stream"
	"github.com/user/happlay/pkg/texture"
)

// fileDecoder reads frame payloads from an open movie and decodes them.
// It runs on the framecache worker only.
type fileDecoder struct {
	r    io.ReaderAt
	desc *stream.Descriptor
	dec  *hap.Decoder
	buf  []byte
}

func newFileDecoder(r io.ReaderAt, desc *stream.Descriptor, workers int) *fileDecoder {
	maxSize := desc.MaxFrameSize()
	dec := hap.NewDecoder(texturePlaneBytes(desc))
	dec.SetWorkers(workers)
	return &fileDecoder{
		r:    r,
		desc: desc,
		dec:  dec,
		buf:  make([]byte, maxSize),
	}
}

// texturePlaneBytes is the decoded size of one frame of desc.
func texturePlaneBytes(desc *stream.Descriptor) int {
	var n int
	for _, f := range desc.Variant.Formats() {
		n += f.PlaneSize(desc.Width, desc.Height)
	}
	return n
}

func (d *fileDecoder) DecodeFrame(ctx context.Context, index int, dst *texture.Texture) error {
	if index < 0 || index >= len(d.desc.Frames) {
		return &hap.DecodeError{Index: index, Err: fmt.Errorf("frame index out of range [0,%d)", len(d.desc.Frames))}
	}
	f := d.desc.Frames[index]

	if int64(cap(d.buf)) < f.Size {
		d.buf = make([]byte, f.Size)
	}
	payload := d.buf[:f.Size]
	if _, err := d.r.ReadAt(payload, f.Offset); err != nil {
		return &hap.DecodeError{Index: index, Err: fmt.Errorf("read payload: %w", err)}
	}

	if err := d.dec.Decode(ctx, payload, f.Flags, d.desc.Width, d.desc.Height, dst); err != nil {
		return &hap.DecodeError{Index: index, Err: err}
	}
	return nil
}
