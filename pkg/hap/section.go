// Package hap reads and writes HAP frames: length-prefixed typed sections
// holding block-compressed texture data, optionally Snappy compressed and
// optionally split into independently compressed chunks.
package hap

import (
	"encoding/binary"
	"fmt"

	"github.com/user/happlay/pkg/stream"
)

// Second-stage compressors (high nibble of an image section type).
const (
	compressorNone    = 0xA
	compressorSnappy  = 0xB
	compressorComplex = 0xC
)

// Texture formats (low nibble of an image section type).
const (
	formatRGBDXT1   = 0xB
	formatRGBADXT5  = 0xE
	formatYCoCgDXT5 = 0xF
	formatAlphaBC4  = 0x1
	formatRGBABC7   = 0xC
)

// Section types that are not image sections.
const (
	sectionMultipleImages     = 0x0D
	sectionDecodeInstructions = 0x01
	sectionChunkCompressors   = 0x02
	sectionChunkSizes         = 0x03
	sectionChunkOffsets       = 0x04
)

// Per-chunk compressor codes inside a complex section.
const (
	chunkNone   = 0x0A
	chunkSnappy = 0x0B
)

const (
	shortHeaderLen = 4
	longHeaderLen  = 8
	maxShortSize   = 0xFFFFFF
)

// section is one parsed section header plus its body.
type section struct {
	typ  byte
	body []byte
}

func (s section) compressor() byte { return s.typ >> 4 }
func (s section) format() byte     { return s.typ & 0x0F }

// readSection parses the section at the start of b and returns it together
// with the number of bytes it occupies.
func readSection(b []byte) (section, int, error) {
	if len(b) < shortHeaderLen {
		return section{}, 0, fmt.Errorf("%w: truncated section header (%d bytes)", ErrCorrupt, len(b))
	}
	size := int(b[0]) | int(b[1])<<8 | int(b[2])<<16
	typ := b[3]
	hdr := shortHeaderLen
	if size == 0 {
		if len(b) < longHeaderLen {
			return section{}, 0, fmt.Errorf("%w: truncated extended header", ErrCorrupt)
		}
		size = int(binary.LittleEndian.Uint32(b[4:8]))
		hdr = longHeaderLen
	}
	if size < 0 || size > len(b)-hdr {
		return section{}, 0, fmt.Errorf("%w: section 0x%02X declares %d bytes, %d available", ErrCorrupt, typ, size, len(b)-hdr)
	}
	return section{typ: typ, body: b[hdr : hdr+size]}, hdr + size, nil
}

// readSections parses consecutive sections filling b.
func readSections(b []byte) ([]section, error) {
	var out []section
	for len(b) > 0 {
		s, n, err := readSection(b)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
		b = b[n:]
	}
	return out, nil
}

// appendSection writes a section header and body.
func appendSection(dst []byte, typ byte, body []byte) []byte {
	n := len(body)
	if n == 0 || n > maxShortSize {
		dst = append(dst, 0, 0, 0, typ)
		dst = binary.LittleEndian.AppendUint32(dst, uint32(n))
	} else {
		dst = append(dst, byte(n), byte(n>>8), byte(n>>16), typ)
	}
	return append(dst, body...)
}

// textureFormat maps a section format nibble to a texture layout.
func textureFormat(code byte) (stream.TextureFormat, error) {
	switch code {
	case formatRGBDXT1:
		return stream.FormatDXT1, nil
	case formatRGBADXT5:
		return stream.FormatDXT5, nil
	case formatYCoCgDXT5:
		return stream.FormatYCoCgDXT5, nil
	case formatAlphaBC4:
		return stream.FormatBC4, nil
	case formatRGBABC7:
		return stream.FormatBC7, nil
	default:
		return stream.FormatUnknown, fmt.Errorf("%w: texture format 0x%X", ErrUnsupportedFormat, code)
	}
}

// formatCode is the inverse of textureFormat.
func formatCode(f stream.TextureFormat) (byte, error) {
	switch f {
	case stream.FormatDXT1:
		return formatRGBDXT1, nil
	case stream.FormatDXT5:
		return formatRGBADXT5, nil
	case stream.FormatYCoCgDXT5:
		return formatYCoCgDXT5, nil
	case stream.FormatBC4:
		return formatAlphaBC4, nil
	case stream.FormatBC7:
		return formatRGBABC7, nil
	default:
		return 0, fmt.Errorf("%w: %v", ErrUnsupportedFormat, f)
	}
}

// Probe reports the texture formats and top-level compressor of a frame
// without decompressing it.
func Probe(frame []byte) ([]stream.TextureFormat, []string, error) {
	top, _, err := readSection(frame)
	if err != nil {
		return nil, nil, err
	}
	images := []section{top}
	if top.typ == sectionMultipleImages {
		if images, err = readSections(top.body); err != nil {
			return nil, nil, err
		}
	}

	var formats []stream.TextureFormat
	var compressors []string
	for _, s := range images {
		f, err := textureFormat(s.format())
		if err != nil {
			return nil, nil, err
		}
		formats = append(formats, f)
		compressors = append(compressors, compressorName(s.compressor()))
	}
	return formats, compressors, nil
}

func compressorName(c byte) string {
	switch c {
	case compressorNone:
		return "none"
	case compressorSnappy:
		return "snappy"
	case compressorComplex:
		return "chunked"
	default:
		return fmt.Sprintf("0x%X", c)
	}
}
