// Package texture holds decoded HAP frames as GPU block-compressed planes and
// provides CPU sampling of those blocks.
package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/user/happlay/pkg/stream"
)

var (
	// ErrUnsupportedFormat is returned when sampling a layout with no CPU decoder (BC7).
	ErrUnsupportedFormat = errors.New("texture: unsupported format")
	// ErrPlaneSize is returned when plane data does not match the block layout.
	ErrPlaneSize = errors.New("texture: plane size mismatch")
)

// RGBAF is a non-premultiplied color with channels in [0, 1].
type RGBAF struct {
	R, G, B, A float32
}

// NRGBA converts to an 8-bit color.
func (c RGBAF) NRGBA() color.NRGBA {
	return color.NRGBA{R: to8(c.R), G: to8(c.G), B: to8(c.B), A: to8(c.A)}
}

// Texture is one decoded frame: the block data exactly as a GPU would
// receive it. HAP Q Alpha frames carry two planes (color, then alpha).
type Texture struct {
	Variant stream.Variant
	Width   int
	Height  int
	Planes  [][]byte
}

// New allocates a zeroed texture for the variant and dimensions.
func New(variant stream.Variant, width, height int) *Texture {
	t := &Texture{Variant: variant, Width: width, Height: height}
	for _, f := range variant.Formats() {
		t.Planes = append(t.Planes, make([]byte, f.PlaneSize(width, height)))
	}
	return t
}

// Format returns the layout of the first plane.
func (t *Texture) Format() stream.TextureFormat {
	formats := t.Variant.Formats()
	if len(formats) == 0 {
		return stream.FormatUnknown
	}
	return formats[0]
}

// Validate checks that every plane matches its block layout size.
func (t *Texture) Validate() error {
	formats := t.Variant.Formats()
	if len(formats) == 0 {
		return fmt.Errorf("%w: variant %v", ErrUnsupportedFormat, t.Variant)
	}
	if len(t.Planes) != len(formats) {
		return fmt.Errorf("%w: %d planes, want %d", ErrPlaneSize, len(t.Planes), len(formats))
	}
	for i, f := range formats {
		if want := f.PlaneSize(t.Width, t.Height); len(t.Planes[i]) != want {
			return fmt.Errorf("%w: plane %d is %d bytes, want %d", ErrPlaneSize, i, len(t.Planes[i]), want)
		}
	}
	return nil
}

// Size returns the total byte length of all planes.
func (t *Texture) Size() int {
	n := 0
	for _, p := range t.Planes {
		n += len(p)
	}
	return n
}

// Clone returns a deep copy.
func (t *Texture) Clone() *Texture {
	c := &Texture{Variant: t.Variant, Width: t.Width, Height: t.Height}
	c.Planes = make([][]byte, len(t.Planes))
	for i, p := range t.Planes {
		c.Planes[i] = append([]byte(nil), p...)
	}
	return c
}

// CopyFrom overwrites t with src, reusing t's plane storage where it is large enough.
func (t *Texture) CopyFrom(src *Texture) {
	t.Variant = src.Variant
	t.Width = src.Width
	t.Height = src.Height
	if cap(t.Planes) < len(src.Planes) {
		planes := make([][]byte, len(src.Planes))
		copy(planes, t.Planes)
		t.Planes = planes
	}
	t.Planes = t.Planes[:len(src.Planes)]
	for i, p := range src.Planes {
		t.Planes[i] = append(t.Planes[i][:0], p...)
	}
}

// ColorModel implements image.Image.
func (t *Texture) ColorModel() color.Model { return color.NRGBAModel }

// Bounds implements image.Image.
func (t *Texture) Bounds() image.Rectangle { return image.Rect(0, 0, t.Width, t.Height) }

// At implements image.Image. Unsupported layouts read as transparent.
func (t *Texture) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(t.Bounds())) {
		return color.NRGBA{}
	}
	c, err := t.Sample(x, y)
	if err != nil {
		return color.NRGBA{}
	}
	return c.NRGBA()
}

// Sample decodes the texel at (x, y). Coordinates outside the texture are
// clamped to the nearest edge.
func (t *Texture) Sample(x, y int) (RGBAF, error) {
	if t.Width <= 0 || t.Height <= 0 {
		return RGBAF{}, fmt.Errorf("%w: empty texture", ErrPlaneSize)
	}
	x = clampInt(x, 0, t.Width-1)
	y = clampInt(y, 0, t.Height-1)

	var block [16]RGBAF
	if err := t.decodeBlock(x/4, y/4, &block); err != nil {
		return RGBAF{}, err
	}
	return block[(y%4)*4+x%4], nil
}

// ToNRGBA decodes the whole texture into an 8-bit image.
func (t *Texture) ToNRGBA() (*image.NRGBA, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	img := image.NewNRGBA(t.Bounds())
	bw := (t.Width + 3) / 4
	bh := (t.Height + 3) / 4

	var block [16]RGBAF
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			if err := t.decodeBlock(bx, by, &block); err != nil {
				return nil, err
			}
			for i, c := range block {
				x := bx*4 + i%4
				y := by*4 + i/4
				if x < t.Width && y < t.Height {
					img.SetNRGBA(x, y, c.NRGBA())
				}
			}
		}
	}
	return img, nil
}

// blockAt returns the bytes of block (bx, by) in a plane.
func (t *Texture) blockAt(plane int, f stream.TextureFormat, bx, by int) ([]byte, error) {
	if plane >= len(t.Planes) {
		return nil, fmt.Errorf("%w: missing plane %d", ErrPlaneSize, plane)
	}
	size := f.BlockSize()
	off := (by*((t.Width+3)/4) + bx) * size
	p := t.Planes[plane]
	if off+size > len(p) {
		return nil, fmt.Errorf("%w: block (%d,%d) beyond plane %d", ErrPlaneSize, bx, by, plane)
	}
	return p[off : off+size], nil
}

func (t *Texture) decodeBlock(bx, by int, out *[16]RGBAF) error {
	formats := t.Variant.Formats()
	if len(formats) == 0 {
		return fmt.Errorf("%w: variant %v", ErrUnsupportedFormat, t.Variant)
	}

	var texels [16]color.NRGBA
	switch formats[0] {
	case stream.FormatDXT1, stream.FormatDXT5:
		b, err := t.blockAt(0, formats[0], bx, by)
		if err != nil {
			return err
		}
		if formats[0] == stream.FormatDXT1 {
			decodeDXT1Block(b, &texels)
		} else {
			decodeDXT5Block(b, &texels)
		}
		for i, c := range texels {
			out[i] = RGBAF{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255}
		}

	case stream.FormatYCoCgDXT5:
		b, err := t.blockAt(0, formats[0], bx, by)
		if err != nil {
			return err
		}
		decodeDXT5Block(b, &texels)
		for i, c := range texels {
			r, g, bl := scaledYCoCgToRGB(c.R, c.G, c.B, c.A)
			out[i] = RGBAF{r, g, bl, 1}
		}

	case stream.FormatBC4:
		// Alpha-only frames sample as a white matte.
		for i := range out {
			out[i] = RGBAF{1, 1, 1, 1}
		}

	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, formats[0])
	}

	// The last BC4 plane, if any, supplies alpha.
	if last := len(formats) - 1; formats[last] == stream.FormatBC4 {
		b, err := t.blockAt(last, stream.FormatBC4, bx, by)
		if err != nil {
			return err
		}
		var alpha [16]uint8
		decodeAlphaBlock(b, &alpha)
		for i := range out {
			out[i].A = float32(alpha[i]) / 255
		}
	}
	return nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
