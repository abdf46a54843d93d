package hap

import (
	"encoding/binary"
	"fmt"

	"github.com/klauspost/compress/s2"

	"github.com/user/happlay/pkg/texture"
)

// Compressor selects the second-stage compression of encoded frames.
type Compressor int

const (
	CompressorNone Compressor = iota
	CompressorSnappy
)

// ParseCompressor maps "none" or "snappy" to a Compressor.
func ParseCompressor(name string) (Compressor, error) {
	switch name {
	case "none", "":
		return CompressorNone, nil
	case "snappy":
		return CompressorSnappy, nil
	default:
		return CompressorNone, fmt.Errorf("%w: %q", ErrUnsupportedCompressor, name)
	}
}

func (c Compressor) String() string {
	if c == CompressorSnappy {
		return "snappy"
	}
	return "none"
}

// Encoder writes textures as HAP frames.
type Encoder struct {
	Compressor Compressor
	// Chunks > 1 splits each image into that many independently compressed
	// chunks inside a complex section.
	Chunks int
	// OmitChunkOffsets leaves out the optional chunk offset table.
	OmitChunkOffsets bool
}

// Encode serializes tex. Textures with two planes are written as a
// multiple-images container.
func (e *Encoder) Encode(tex *texture.Texture) ([]byte, error) {
	if err := tex.Validate(); err != nil {
		return nil, err
	}
	formats := tex.Variant.Formats()

	var images [][]byte
	for i, f := range formats {
		code, err := formatCode(f)
		if err != nil {
			return nil, err
		}
		images = append(images, e.encodeImage(code, tex.Planes[i]))
	}

	if len(images) == 1 {
		return images[0], nil
	}
	var body []byte
	for _, img := range images {
		body = append(body, img...)
	}
	return appendSection(nil, sectionMultipleImages, body), nil
}

func (e *Encoder) encodeImage(format byte, plane []byte) []byte {
	if e.Chunks > 1 {
		return e.encodeComplex(format, plane)
	}
	if e.Compressor == CompressorSnappy {
		if packed := s2.EncodeSnappy(nil, plane); len(packed) < len(plane) {
			return appendSection(nil, compressorSnappy<<4|format, packed)
		}
	}
	return appendSection(nil, compressorNone<<4|format, plane)
}

func (e *Encoder) encodeComplex(format byte, plane []byte) []byte {
	bounds := chunkBounds(len(plane), e.Chunks)

	compressors := make([]byte, 0, len(bounds)-1)
	var sizes, offsets, data []byte
	for i := 0; i+1 < len(bounds); i++ {
		src := plane[bounds[i]:bounds[i+1]]
		payload, code := src, byte(chunkNone)
		if e.Compressor == CompressorSnappy {
			if packed := s2.EncodeSnappy(nil, src); len(packed) < len(src) {
				payload, code = packed, chunkSnappy
			}
		}
		compressors = append(compressors, code)
		offsets = binary.LittleEndian.AppendUint32(offsets, uint32(len(data)))
		sizes = binary.LittleEndian.AppendUint32(sizes, uint32(len(payload)))
		data = append(data, payload...)
	}

	var instr []byte
	instr = appendSection(instr, sectionChunkCompressors, compressors)
	instr = appendSection(instr, sectionChunkSizes, sizes)
	if !e.OmitChunkOffsets {
		instr = appendSection(instr, sectionChunkOffsets, offsets)
	}

	body := appendSection(nil, sectionDecodeInstructions, instr)
	body = append(body, data...)
	return appendSection(nil, compressorComplex<<4|format, body)
}

// chunkBounds splits n bytes into at most count ranges aligned to 16 bytes.
func chunkBounds(n, count int) []int {
	const align = 16
	blocks := (n + align - 1) / align
	if count > blocks {
		count = blocks
	}
	if count < 1 {
		count = 1
	}
	bounds := make([]int, 0, count+1)
	for i := 0; i <= count; i++ {
		b := (blocks * i / count) * align
		if b > n {
			b = n
		}
		bounds = append(bounds, b)
	}
	return bounds
}
