package hap

import (
	"context"
	"encoding/binary"
	"fmt"
	"runtime"

	"github.com/klauspost/compress/s2"
	"golang.org/x/sync/errgroup"

	"github.com/user/happlay/pkg/stream"
	"github.com/user/happlay/pkg/texture"
)

// Decoder turns HAP frame payloads into textures. It keeps one scratch
// buffer across calls and is not safe for concurrent use.
type Decoder struct {
	scratch []byte
	planes  [][]byte
	workers int
}

// NewDecoder returns a decoder whose scratch buffer starts at capacity bytes.
// The buffer grows if a frame needs more.
func NewDecoder(capacity int) *Decoder {
	if capacity < 0 {
		capacity = 0
	}
	return &Decoder{
		scratch: make([]byte, 0, capacity),
		workers: runtime.GOMAXPROCS(0),
	}
}

// SetWorkers limits how many chunks of a complex section are decompressed
// at once. n <= 0 means GOMAXPROCS.
func (d *Decoder) SetWorkers(n int) {
	d.workers = n
}

// Decode decodes one frame into dst. The frame's sections must carry the
// texture formats of flags.Variant and decode to exactly the block layout
// of width x height. On error dst is left unchanged.
func (d *Decoder) Decode(ctx context.Context, payload []byte, flags stream.CodecFlags, width, height int, dst *texture.Texture) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrDimensions, width, height)
	}
	formats := flags.Variant.Formats()
	if len(formats) == 0 {
		return fmt.Errorf("%w: variant %v", ErrUnsupportedFormat, flags.Variant)
	}

	top, n, err := readSection(payload)
	if err != nil {
		return err
	}
	if n != len(payload) {
		return fmt.Errorf("%w: %d trailing bytes after frame section", ErrCorrupt, len(payload)-n)
	}

	images := []section{top}
	if top.typ == sectionMultipleImages {
		if images, err = readSections(top.body); err != nil {
			return err
		}
	}
	if len(images) != len(formats) {
		return fmt.Errorf("%w: frame has %d images, %v needs %d", ErrFormatMismatch, len(images), flags.Variant, len(formats))
	}

	// Lay the planes out back to back in scratch.
	total := 0
	for _, f := range formats {
		total += f.PlaneSize(width, height)
	}
	if cap(d.scratch) < total {
		d.scratch = make([]byte, 0, total)
	}
	d.scratch = d.scratch[:total]
	d.planes = d.planes[:0]
	off := 0
	for _, f := range formats {
		size := f.PlaneSize(width, height)
		d.planes = append(d.planes, d.scratch[off:off+size:off+size])
		off += size
	}

	filled := make([]bool, len(formats))
	for _, img := range images {
		f, err := textureFormat(img.format())
		if err != nil {
			return err
		}
		plane := -1
		for i, want := range formats {
			if want == f && !filled[i] {
				plane = i
				break
			}
		}
		if plane < 0 {
			return fmt.Errorf("%w: %v section in %v frame", ErrFormatMismatch, f, flags.Variant)
		}
		if err := d.decodeImage(ctx, img, d.planes[plane]); err != nil {
			return err
		}
		filled[plane] = true
	}

	dst.CopyFrom(&texture.Texture{
		Variant: flags.Variant,
		Width:   width,
		Height:  height,
		Planes:  d.planes,
	})
	return nil
}

// decodeImage decompresses one image section into out, which has exactly
// the expected plane size.
func (d *Decoder) decodeImage(ctx context.Context, s section, out []byte) error {
	switch s.compressor() {
	case compressorNone:
		if len(s.body) != len(out) {
			return fmt.Errorf("%w: uncompressed section is %d bytes, want %d", ErrSizeMismatch, len(s.body), len(out))
		}
		copy(out, s.body)
		return nil

	case compressorSnappy:
		return decodeSnappy(s.body, out)

	case compressorComplex:
		return d.decodeChunks(ctx, s.body, out)

	default:
		return fmt.Errorf("%w: 0x%X", ErrUnsupportedCompressor, s.compressor())
	}
}

func decodeSnappy(src, out []byte) error {
	n, err := s2.DecodedLen(src)
	if err != nil {
		return fmt.Errorf("%w: snappy: %v", ErrCorrupt, err)
	}
	if n != len(out) {
		return fmt.Errorf("%w: snappy block decodes to %d bytes, want %d", ErrSizeMismatch, n, len(out))
	}
	got, err := s2.Decode(out, src)
	if err != nil {
		return fmt.Errorf("%w: snappy: %v", ErrCorrupt, err)
	}
	if len(got) != len(out) {
		return fmt.Errorf("%w: snappy block decoded to %d bytes", ErrCorrupt, len(got))
	}
	return nil
}

// chunk is one independently compressed slice of a complex section.
type chunk struct {
	compressor byte
	src        []byte
	out        []byte
}

// decodeChunks handles a complex section: a decode instructions container
// followed by the chunk data. Chunks are decompressed concurrently into
// disjoint, consecutive regions of out.
func (d *Decoder) decodeChunks(ctx context.Context, body, out []byte) error {
	instr, n, err := readSection(body)
	if err != nil {
		return err
	}
	if instr.typ != sectionDecodeInstructions {
		return fmt.Errorf("%w: complex section starts with 0x%02X, want decode instructions", ErrCorrupt, instr.typ)
	}
	data := body[n:]

	parts, err := readSections(instr.body)
	if err != nil {
		return err
	}
	var compressors []byte
	var sizes, offsets []uint32
	for _, p := range parts {
		switch p.typ {
		case sectionChunkCompressors:
			compressors = p.body
		case sectionChunkSizes:
			if sizes, err = readUint32s(p.body); err != nil {
				return err
			}
		case sectionChunkOffsets:
			if offsets, err = readUint32s(p.body); err != nil {
				return err
			}
		}
	}
	if len(compressors) == 0 || len(sizes) != len(compressors) {
		return fmt.Errorf("%w: %d chunk compressors, %d chunk sizes", ErrCorrupt, len(compressors), len(sizes))
	}
	if offsets != nil && len(offsets) != len(compressors) {
		return fmt.Errorf("%w: %d chunk offsets for %d chunks", ErrCorrupt, len(offsets), len(compressors))
	}

	chunks := make([]chunk, len(compressors))
	var srcOff int64
	outOff := 0
	for i, c := range compressors {
		start := srcOff
		if offsets != nil {
			start = int64(offsets[i])
		}
		end := start + int64(sizes[i])
		if end > int64(len(data)) {
			return fmt.Errorf("%w: chunk %d spans [%d,%d) of %d bytes", ErrCorrupt, i, start, end, len(data))
		}
		src := data[start:end]
		srcOff = end

		var outLen int
		switch c {
		case chunkNone:
			outLen = len(src)
		case chunkSnappy:
			if outLen, err = s2.DecodedLen(src); err != nil {
				return fmt.Errorf("%w: chunk %d: %v", ErrCorrupt, i, err)
			}
		default:
			return fmt.Errorf("%w: chunk %d compressor 0x%X", ErrUnsupportedCompressor, i, c)
		}
		if outOff+outLen > len(out) {
			return fmt.Errorf("%w: chunks exceed %d bytes", ErrSizeMismatch, len(out))
		}
		chunks[i] = chunk{compressor: c, src: src, out: out[outOff : outOff+outLen]}
		outOff += outLen
	}
	if outOff != len(out) {
		return fmt.Errorf("%w: chunks decode to %d bytes, want %d", ErrSizeMismatch, outOff, len(out))
	}

	limit := d.workers
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range chunks {
		ch := chunks[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if ch.compressor == chunkNone {
				copy(ch.out, ch.src)
				return nil
			}
			if err := decodeSnappy(ch.src, ch.out); err != nil {
				return fmt.Errorf("chunk %d: %w", i, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func readUint32s(b []byte) ([]uint32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("%w: table length %d is not a multiple of 4", ErrCorrupt, len(b))
	}
	out := make([]uint32, len(b)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return out, nil
}
