// Package alphagradient builds the HAP alpha test movie: one frame whose hue
// sweeps 0..1 across x at full saturation and value, and whose alpha ramps
// 0..1 down y.
package alphagradient

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/user/happlay/pkg/ports"
	"github.com/user/happlay/pkg/stream"
	"github.com/user/happlay/pkg/texture"
)

const (
	DefaultSize   = 256
	MovieName     = "HapAlpha.mov"
	ReferenceName = "000001.png"
)

// Rate is the frame rate of the single-frame movie.
var Rate = stream.Rational{Num: 25, Den: 1}

// HSVToRGB converts a colour with all components in [0, 1]. Hue wraps.
func HSVToRGB(h, s, v float64) (r, g, b float64) {
	h = h - math.Floor(h)
	i := int(h * 6)
	f := h*6 - float64(i)
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	switch i % 6 {
	case 0:
		return v, t, p
	case 1:
		return q, v, p
	case 2:
		return p, v, t
	case 3:
		return p, q, v
	case 4:
		return t, p, v
	default:
		return v, p, q
	}
}

// Expected returns the source pixel at (x, y) of a size x size gradient.
func Expected(x, y, size int) color.NRGBA {
	den := float64(max(size-1, 1))
	r, g, b := HSVToRGB(float64(x)/den, 1, 1)
	return color.NRGBA{
		R: to8(r),
		G: to8(g),
		B: to8(b),
		A: to8(float64(y) / den),
	}
}

func to8(v float64) uint8 {
	return uint8(math.Min(255, math.Max(0, v*255+0.5)))
}

// Image renders the gradient.
func Image(size int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetNRGBA(x, y, Expected(x, y, size))
		}
	}
	return img
}

// Options describes the movie to generate.
type Options struct {
	Size    int
	Encoder ports.EncoderOptions // Variant defaults to hap_alpha
}

// Generate encodes the one-frame gradient movie with enc and returns its bytes.
func Generate(enc ports.VideoEncoder, opts Options) ([]byte, error) {
	if opts.Size <= 1 {
		return nil, fmt.Errorf("gradient size %d: need at least 2 pixels", opts.Size)
	}
	encOpts := opts.Encoder
	if encOpts.Variant == stream.VariantUnknown {
		encOpts.Variant = stream.VariantHapAlpha
	}
	if err := enc.Begin(opts.Size, opts.Size, Rate, encOpts); err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	if err := enc.EncodeFrame(Image(opts.Size)); err != nil {
		return nil, fmt.Errorf("encode gradient: %w", err)
	}
	return enc.End()
}

// Point is a texel position.
type Point struct{ X, Y int }

// SamplePoints returns texels whose 4x4 block lies inside one hue sextant,
// one column per sextant, on four rows from transparent to opaque. Inside
// such a block the colour varies linearly, so block compression reproduces
// it closely.
func SamplePoints(size int) []Point {
	if size < 2 {
		return nil
	}
	den := float64(size - 1)
	rows := []int{0, size / 3, 2 * size / 3, size - 1}

	var pts []Point
	for k := 0; k < 6; k++ {
		mid := (float64(k) + 0.5) / 6 * den
		bx := int(mid) / 4 * 4
		last := min(bx+3, size-1)
		if float64(bx)/den < float64(k)/6 || float64(last)/den > float64(k+1)/6 {
			continue
		}
		for _, y := range rows {
			pts = append(pts, Point{X: bx + 1, Y: y})
		}
	}
	return pts
}

// Mismatch reports a decoded texel too far from the source gradient.
type Mismatch struct {
	Point
	Want color.NRGBA
	Got  texture.RGBAF
}

func (m *Mismatch) Error() string {
	return fmt.Sprintf("texel (%d,%d): want R=%d G=%d B=%d A=%d, got R=%.3f G=%.3f B=%.3f A=%.3f",
		m.X, m.Y, m.Want.R, m.Want.G, m.Want.B, m.Want.A, m.Got.R, m.Got.G, m.Got.B, m.Got.A)
}

// Verify compares the decoded gradient tex against the source at
// SamplePoints. Every channel must be within tolerance (0..1). It returns the
// number of texels checked.
func Verify(tex *texture.Texture, tolerance float32) (int, error) {
	if tex == nil {
		return 0, fmt.Errorf("no decoded frame")
	}
	if tex.Width != tex.Height {
		return 0, fmt.Errorf("gradient is %dx%d, want a square", tex.Width, tex.Height)
	}

	checked := 0
	for _, pt := range SamplePoints(tex.Width) {
		got, err := tex.Sample(pt.X, pt.Y)
		if err != nil {
			return checked, fmt.Errorf("texel (%d,%d): %w", pt.X, pt.Y, err)
		}
		want := Expected(pt.X, pt.Y, tex.Width)
		if !near(got.R, want.R, tolerance) || !near(got.G, want.G, tolerance) ||
			!near(got.B, want.B, tolerance) || !near(got.A, want.A, tolerance) {
			return checked, &Mismatch{Point: pt, Want: want, Got: got}
		}
		checked++
	}
	return checked, nil
}

func near(got float32, want uint8, tolerance float32) bool {
	d := got - float32(want)/255
	return d <= tolerance && d >= -tolerance
}
