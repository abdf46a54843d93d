// Package frameclock maps playback time to frame indexes.
//
// All mapping is exact: the float64 time is converted to a rational without
// rounding, multiplied by the rational frame rate and floored. A stream at
// 24000/1001 fps therefore never drifts, however far or often it is scrubbed.
package frameclock

import (
	"math"
	"math/big"

	"github.com/user/happlay/pkg/stream"
)

// Index returns floor(t * rate) without clamping.
// NaN maps to 0; infinities saturate to the int64 range.
func Index(t float64, rate stream.Rational) int64 {
	if !rate.Valid() || math.IsNaN(t) {
		return 0
	}
	if math.IsInf(t, 1) {
		return math.MaxInt64
	}
	if math.IsInf(t, -1) {
		return math.MinInt64
	}

	var q big.Rat
	q.SetFloat64(t)
	q.Mul(&q, big.NewRat(rate.Num, rate.Den))
	return floorRat(&q)
}

// IndexTicks returns floor(ticks / timescale * rate) using integer math only.
func IndexTicks(ticks int64, timescale uint32, rate stream.Rational) int64 {
	if timescale == 0 || !rate.Valid() {
		return 0
	}
	num := new(big.Int).Mul(big.NewInt(ticks), big.NewInt(rate.Num))
	den := new(big.Int).Mul(big.NewInt(int64(timescale)), big.NewInt(rate.Den))
	// Div is Euclidean; with a positive divisor it floors.
	q := new(big.Int).Div(num, den)
	if !q.IsInt64() {
		if q.Sign() > 0 {
			return math.MaxInt64
		}
		return math.MinInt64
	}
	return q.Int64()
}

// Resolve maps t to a frame index in [0, frameCount-1].
// Negative time clamps to the first frame, time past the end to the last.
func Resolve(t float64, rate stream.Rational, frameCount int) int {
	if frameCount <= 0 {
		return 0
	}
	return Clamp(Index(t, rate), frameCount)
}

// Clamp limits an unbounded index to [0, frameCount-1].
func Clamp(index int64, frameCount int) int {
	if frameCount <= 0 || index < 0 {
		return 0
	}
	if index >= int64(frameCount) {
		return frameCount - 1
	}
	return int(index)
}

// Wrap folds an unbounded index into [0, frameCount-1] with a positive modulo.
func Wrap(index int64, frameCount int) int {
	if frameCount <= 0 {
		return 0
	}
	m := index % int64(frameCount)
	if m < 0 {
		m += int64(frameCount)
	}
	return int(m)
}

// FrameTime returns the presentation start time of frame index in seconds.
func FrameTime(index int, rate stream.Rational) float64 {
	if !rate.Valid() {
		return 0
	}
	t, _ := new(big.Rat).SetFrac64(int64(index)*rate.Den, rate.Num).Float64()
	return t
}

// Clock bundles the stream parameters a player needs to resolve time.
// The zero value resolves everything to frame 0.
type Clock struct {
	Rate       stream.Rational
	FrameCount int
	Loop       bool
}

// New returns a Clock for the descriptor.
func New(desc *stream.Descriptor, loop bool) Clock {
	return Clock{
		Rate:       desc.FrameRate,
		FrameCount: desc.FrameCount(),
		Loop:       loop,
	}
}

// Resolve maps t to a frame index, wrapping when looping and clamping otherwise.
func (c Clock) Resolve(t float64) int {
	idx := Index(t, c.Rate)
	if c.Loop {
		return Wrap(idx, c.FrameCount)
	}
	return Clamp(idx, c.FrameCount)
}

// Period returns the length of one loop in seconds (frameCount / rate).
func (c Clock) Period() float64 {
	return FrameTime(c.FrameCount, c.Rate)
}

func floorRat(q *big.Rat) int64 {
	num := q.Num()
	den := q.Denom()
	// Euclidean division floors for a positive denominator, which Rat guarantees.
	z := new(big.Int).Div(num, den)
	if !z.IsInt64() {
		if z.Sign() > 0 {
			return math.MaxInt64
		}
		return math.MinInt64
	}
	return z.Int64()
}
