package texture

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"

	"github.com/user/happlay/pkg/stream"
)

// The encoders below pick block endpoints with a plain range fit. They are
// meant for synthesizing test material, not for production-quality output.

// Encode compresses img into a texture of the given variant.
func Encode(img image.Image, variant stream.Variant) (*Texture, error) {
	b := img.Bounds()
	t := &Texture{Variant: variant, Width: b.Dx(), Height: b.Dy()}
	for _, f := range variant.Formats() {
		var plane []byte
		switch f {
		case stream.FormatDXT1:
			plane = EncodeDXT1(img)
		case stream.FormatDXT5:
			plane = EncodeDXT5(img)
		case stream.FormatYCoCgDXT5:
			plane = EncodeYCoCgDXT5(img)
		case stream.FormatBC4:
			plane = EncodeBC4(img)
		default:
			return nil, fmt.Errorf("%w: cannot encode %v", ErrUnsupportedFormat, f)
		}
		t.Planes = append(t.Planes, plane)
	}
	if len(t.Planes) == 0 {
		return nil, fmt.Errorf("%w: variant %v", ErrUnsupportedFormat, variant)
	}
	return t, nil
}

// EncodeDXT1 compresses the RGB channels of img to BC1 blocks.
func EncodeDXT1(img image.Image) []byte {
	return encodePlane(img, stream.FormatDXT1, func(px *[16]color.NRGBA, dst []byte) {
		encodeColorBlock(px, dst, false)
	})
}

// EncodeDXT5 compresses img to BC3 blocks (alpha block, then color block).
func EncodeDXT5(img image.Image) []byte {
	return encodePlane(img, stream.FormatDXT5, func(px *[16]color.NRGBA, dst []byte) {
		var a [16]uint8
		for i, c := range px {
			a[i] = c.A
		}
		encodeAlphaBlock(&a, dst[:8])
		encodeColorBlock(px, dst[8:16], true)
	})
}

// EncodeYCoCgDXT5 converts img to scaled YCoCg and compresses it to BC3 blocks.
func EncodeYCoCgDXT5(img image.Image) []byte {
	return encodePlane(img, stream.FormatYCoCgDXT5, func(px *[16]color.NRGBA, dst []byte) {
		var ycocg [16]color.NRGBA
		var a [16]uint8
		for i, c := range px {
			co, cg, scale, y := rgbToScaledYCoCg(c.R, c.G, c.B)
			ycocg[i] = color.NRGBA{R: co, G: cg, B: scale, A: y}
			a[i] = y
		}
		encodeAlphaBlock(&a, dst[:8])
		encodeColorBlock(&ycocg, dst[8:16], true)
	})
}

// EncodeBC4 compresses the alpha channel of img to BC4 blocks.
func EncodeBC4(img image.Image) []byte {
	return encodePlane(img, stream.FormatBC4, func(px *[16]color.NRGBA, dst []byte) {
		var a [16]uint8
		for i, c := range px {
			a[i] = c.A
		}
		encodeAlphaBlock(&a, dst)
	})
}

// encodePlane walks img in 4x4 blocks, replicating edge pixels into
// partial blocks, and calls enc for each block.
func encodePlane(img image.Image, f stream.TextureFormat, enc func(px *[16]color.NRGBA, dst []byte)) []byte {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]byte, f.PlaneSize(w, h))
	if len(out) == 0 {
		return out
	}
	size := f.BlockSize()
	bw := (w + 3) / 4
	bh := (h + 3) / 4

	var px [16]color.NRGBA
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			for i := 0; i < 16; i++ {
				x := clampInt(bx*4+i%4, 0, w-1)
				y := clampInt(by*4+i/4, 0, h-1)
				px[i] = color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			}
			off := (by*bw + bx) * size
			enc(&px, out[off:off+size])
		}
	}
	return out
}

func encodeColorBlock(px *[16]color.NRGBA, dst []byte, fourColor bool) {
	// Endpoints are the two most distant texels of the block.
	e0, e1 := px[0], px[0]
	far := -1
	for i := range px {
		for j := i + 1; j < len(px); j++ {
			if d := colorDist(px[i], px[j]); d > far {
				far, e0, e1 = d, px[i], px[j]
			}
		}
	}

	c0 := pack565(e0.R, e0.G, e0.B)
	c1 := pack565(e1.R, e1.G, e1.B)
	if c0 < c1 {
		c0, c1 = c1, c0
	}
	palette := colorPalette(c0, c1, fourColor)
	choices := 4
	if !fourColor && c0 <= c1 {
		// Three-color mode: index 3 is transparent.
		choices = 3
	}

	var bits uint32
	for i, c := range px {
		best, bestDist := 0, -1
		for k := 0; k < choices; k++ {
			if d := colorDist(c, palette[k]); bestDist < 0 || d < bestDist {
				best, bestDist = k, d
			}
		}
		bits |= uint32(best) << (2 * uint(i))
	}

	binary.LittleEndian.PutUint16(dst[0:2], c0)
	binary.LittleEndian.PutUint16(dst[2:4], c1)
	binary.LittleEndian.PutUint32(dst[4:8], bits)
}

func encodeAlphaBlock(a *[16]uint8, dst []byte) {
	a0, a1 := uint8(0), uint8(255)
	for _, v := range a {
		a0, a1 = max(a0, v), min(a1, v)
	}
	palette := alphaPalette(a0, a1)

	var bits uint64
	if a0 != a1 {
		for i, v := range a {
			best, bestDist := 0, 256
			for k, p := range palette {
				d := int(v) - int(p)
				if d < 0 {
					d = -d
				}
				if d < bestDist {
					best, bestDist = k, d
				}
			}
			bits |= uint64(best) << (3 * uint(i))
		}
	}

	dst[0] = a0
	dst[1] = a1
	for i := 2; i < 8; i++ {
		dst[i] = byte(bits)
		bits >>= 8
	}
}

func colorDist(a, b color.NRGBA) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}
