// Package rgbcycle builds and checks RGB-cycle test movies: frame i is a
// solid red, green or blue image for i mod 3 = 0, 1, 2, so a player that
// maps time to the wrong frame shows the wrong colour.
package rgbcycle

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/user/happlay/pkg/frameclock"
	"github.com/user/happlay/pkg/player"
	"github.com/user/happlay/pkg/ports"
	"github.com/user/happlay/pkg/stream"
	"github.com/user/happlay/pkg/texture"
)

// Channel is a colour channel.
type Channel int

const (
	Red Channel = iota
	Green
	Blue
)

func (c Channel) String() string {
	switch c {
	case Red:
		return "R"
	case Green:
		return "G"
	case Blue:
		return "B"
	default:
		return "?"
	}
}

// Thresholds of a correctly coloured sample.
const (
	OnLevel  = 0.8 // the expected channel must exceed this
	OffLevel = 0.2 // the other two must stay below this
)

// StandardRates are the frame rates of the reference test movies.
var StandardRates = []stream.Rational{
	{Num: 24, Den: 1},
	{Num: 24000, Den: 1001},
	{Num: 25, Den: 1},
	{Num: 30, Den: 1},
	{Num: 30000, Den: 1001},
	{Num: 50, Den: 1},
	{Num: 60, Den: 1},
	{Num: 60000, Den: 1001},
}

// Expected returns the channel frame i is painted with.
func Expected(i int) Channel {
	return Channel(i % 3)
}

// Frame returns the solid image for frame i.
func Frame(i, width, height int) image.Image {
	var c color.NRGBA
	switch Expected(i) {
	case Red:
		c = color.NRGBA{R: 255, A: 255}
	case Green:
		c = color.NRGBA{G: 255, A: 255}
	case Blue:
		c = color.NRGBA{B: 255, A: 255}
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

// Options describes a movie to generate.
type Options struct {
	Width    int
	Height   int
	Rate     stream.Rational
	Duration float64 // seconds
	Encoder  ports.EncoderOptions
}

// FrameCount returns ceil(duration*rate) frames, at least one. Products
// within 1e-9 of an integer are taken as that integer.
func FrameCount(duration float64, rate stream.Rational) int {
	if !rate.Valid() {
		return 1
	}
	n := math.Ceil(duration*float64(rate.Num)/float64(rate.Den) - 1e-9)
	if n < 1 {
		return 1
	}
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}

// CheckedFrames returns how many frames Verify checks for a scrub window:
// every frame starting at or before window, capped at frameCount.
func CheckedFrames(frameCount int, rate stream.Rational, window float64) int {
	if !rate.Valid() || window < 0 {
		return 0
	}
	n := int(math.Floor(window*float64(rate.Num)/float64(rate.Den)+1e-9)) + 1
	return min(n, frameCount)
}

// Generate encodes an RGB-cycle movie with enc and returns its bytes.
func Generate(enc ports.VideoEncoder, opts Options) ([]byte, error) {
	if err := enc.Begin(opts.Width, opts.Height, opts.Rate, opts.Encoder); err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	n := FrameCount(opts.Duration, opts.Rate)
	for i := 0; i < n; i++ {
		if err := enc.EncodeFrame(Frame(i, opts.Width, opts.Height)); err != nil {
			return nil, fmt.Errorf("encode frame %d: %w", i, err)
		}
	}
	return enc.End()
}

// Dominant returns the channel c is painted with, and whether it passes the
// On/Off thresholds.
func Dominant(c texture.RGBAF) (Channel, bool) {
	ch := [3]float32{c.R, c.G, c.B}
	best := Red
	for i := Green; i <= Blue; i++ {
		if ch[i] > ch[best] {
			best = i
		}
	}
	if ch[best] <= OnLevel {
		return best, false
	}
	for i := Red; i <= Blue; i++ {
		if i != best && ch[i] >= OffLevel {
			return best, false
		}
	}
	return best, true
}

// Mismatch reports a frame whose centre pixel has the wrong colour.
type Mismatch struct {
	Frame int
	Time  float64
	Want  Channel
	Got   texture.RGBAF
}

func (m *Mismatch) Error() string {
	return fmt.Sprintf("frame %d at %.6f s: want %s, got R=%.3f G=%.3f B=%.3f", m.Frame, m.Time, m.Want, m.Got.R, m.Got.G, m.Got.B)
}

// Verify scrubs the first window seconds of the movie open in p, one frame
// at a time at i*dt + 0.1*dt, and checks the centre pixel of every frame
// counted by CheckedFrames.
// It returns the number of frames checked.
func Verify(ctx context.Context, p *player.Player, window float64) (int, error) {
	if !p.IsValid() {
		return 0, player.ErrNotOpen
	}
	p.SetLoop(false)
	p.SetSpeed(0)
	p.Pause()

	rate := p.FrameRate()
	dt := rate.Inverse().Float64()
	cx, cy := p.FrameWidth()/2, p.FrameHeight()/2

	checked := 0
	for i := 0; i < CheckedFrames(p.FrameCount(), rate, window); i++ {
		t := frameclock.FrameTime(i, rate) + 0.1*dt
		p.SetTime(t)
		if err := p.UpdateNow(ctx); err != nil {
			return checked, err
		}
		if p.DecodeFailed() {
			return checked, fmt.Errorf("frame %d: %w", i, p.LastError())
		}
		if got := p.CurrentFrame(); got != i {
			return checked, fmt.Errorf("time %.6f s resolved to frame %d, want %d", t, got, i)
		}

		c, err := p.Texture().Sample(cx, cy)
		if err != nil {
			return checked, fmt.Errorf("frame %d: %w", i, err)
		}
		want := Expected(i)
		if got, ok := Dominant(c); !ok || got != want {
			return checked, &Mismatch{Frame: i, Time: t, Want: want, Got: c}
		}
		checked++
	}
	return checked, nil
}
