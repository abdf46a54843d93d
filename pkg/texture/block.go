package texture

import (
	"encoding/binary"
	"image/color"
)

// rgb565 expands a packed 5:6:5 color to 8 bits per channel.
func rgb565(c uint16) (r, g, b uint8) {
	r5 := uint8(c>>11) & 0x1f
	g6 := uint8(c>>5) & 0x3f
	b5 := uint8(c) & 0x1f
	return r5<<3 | r5>>2, g6<<2 | g6>>4, b5<<3 | b5>>2
}

// pack565 quantizes an 8-bit color to 5:6:5 with rounding.
func pack565(r, g, b uint8) uint16 {
	r5 := (uint16(r)*31 + 127) / 255
	g6 := (uint16(g)*63 + 127) / 255
	b5 := (uint16(b)*31 + 127) / 255
	return r5<<11 | g6<<5 | b5
}

// colorPalette builds the four-entry palette of a BC1 color block.
// In BC3 blocks the color part always uses four-color mode.
func colorPalette(c0, c1 uint16, forceFourColor bool) [4]color.NRGBA {
	var p [4]color.NRGBA
	r0, g0, b0 := rgb565(c0)
	r1, g1, b1 := rgb565(c1)
	p[0] = color.NRGBA{R: r0, G: g0, B: b0, A: 255}
	p[1] = color.NRGBA{R: r1, G: g1, B: b1, A: 255}

	if forceFourColor || c0 > c1 {
		p[2] = color.NRGBA{
			R: uint8((2*uint16(r0) + uint16(r1)) / 3),
			G: uint8((2*uint16(g0) + uint16(g1)) / 3),
			B: uint8((2*uint16(b0) + uint16(b1)) / 3),
			A: 255,
		}
		p[3] = color.NRGBA{
			R: uint8((uint16(r0) + 2*uint16(r1)) / 3),
			G: uint8((uint16(g0) + 2*uint16(g1)) / 3),
			B: uint8((uint16(b0) + 2*uint16(b1)) / 3),
			A: 255,
		}
	} else {
		p[2] = color.NRGBA{
			R: uint8((uint16(r0) + uint16(r1)) / 2),
			G: uint8((uint16(g0) + uint16(g1)) / 2),
			B: uint8((uint16(b0) + uint16(b1)) / 2),
			A: 255,
		}
		p[3] = color.NRGBA{} // transparent black
	}
	return p
}

// decodeColorBlock decodes an 8-byte BC1 color block into 16 texels in
// row-major order.
func decodeColorBlock(b []byte, forceFourColor bool, out *[16]color.NRGBA) {
	c0 := binary.LittleEndian.Uint16(b[0:2])
	c1 := binary.LittleEndian.Uint16(b[2:4])
	bits := binary.LittleEndian.Uint32(b[4:8])
	p := colorPalette(c0, c1, forceFourColor)
	for i := 0; i < 16; i++ {
		out[i] = p[(bits>>(2*uint(i)))&3]
	}
}

// alphaPalette builds the eight-entry palette of a BC3 alpha / BC4 block.
func alphaPalette(a0, a1 uint8) [8]uint8 {
	var p [8]uint8
	p[0], p[1] = a0, a1
	if a0 > a1 {
		for k := 2; k < 8; k++ {
			p[k] = uint8(((8-k)*int(a0) + (k-1)*int(a1)) / 7)
		}
	} else {
		for k := 2; k < 6; k++ {
			p[k] = uint8(((6-k)*int(a0) + (k-1)*int(a1)) / 5)
		}
		p[6] = 0
		p[7] = 255
	}
	return p
}

// decodeAlphaBlock decodes an 8-byte BC3 alpha or BC4 block into 16 values.
func decodeAlphaBlock(b []byte, out *[16]uint8) {
	p := alphaPalette(b[0], b[1])
	var bits uint64
	for i := 7; i >= 2; i-- {
		bits = bits<<8 | uint64(b[i])
	}
	for i := 0; i < 16; i++ {
		out[i] = p[(bits>>(3*uint(i)))&7]
	}
}

// decodeDXT1Block decodes one BC1 block.
func decodeDXT1Block(b []byte, out *[16]color.NRGBA) {
	decodeColorBlock(b[:8], false, out)
}

// decodeDXT5Block decodes one BC3 block: alpha in bytes 0-7, color in 8-15.
func decodeDXT5Block(b []byte, out *[16]color.NRGBA) {
	var alpha [16]uint8
	decodeAlphaBlock(b[:8], &alpha)
	decodeColorBlock(b[8:16], true, out)
	for i := range out {
		out[i].A = alpha[i]
	}
}
