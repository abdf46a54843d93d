package stream

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("stream: invalid descriptor")

// FrameDescriptor locates one encoded frame inside the container file.
type FrameDescriptor struct {
	Index      int
	Offset     int64 // absolute byte offset in the file
	Size       int64 // payload length in bytes
	Flags      CodecFlags
	DecodeTime int64 // in track timescale ticks
	Duration   int64 // in track timescale ticks
}

// End returns the offset one past the last payload byte.
func (f FrameDescriptor) End() int64 {
	return f.Offset + f.Size
}

// Descriptor is the parsed, immutable description of a video stream.
// It is safe for concurrent reads.
type Descriptor struct {
	Duration  Rational // seconds
	FrameRate Rational // frames per second
	Timescale uint32
	Width     int
	Height    int
	Variant   Variant
	FileSize  int64
	Frames    []FrameDescriptor
}

// FrameCount returns the number of frames in the stream.
func (d *Descriptor) FrameCount() int {
	if d == nil {
		return 0
	}
	return len(d.Frames)
}

// DurationSeconds returns the stream duration as float seconds.
func (d *Descriptor) DurationSeconds() float64 {
	if d == nil {
		return 0
	}
	return d.Duration.Float64()
}

// MaxFrameSize returns the largest encoded frame size in bytes.
func (d *Descriptor) MaxFrameSize() int64 {
	var max int64
	for _, f := range d.Frames {
		if f.Size > max {
			max = f.Size
		}
	}
	return max
}

// Validate checks the invariants every consumer relies on.
func (d *Descriptor) Validate() error {
	if d == nil {
		return fmt.Errorf("%w: nil descriptor", ErrInvalid)
	}
	if !d.FrameRate.Valid() {
		return fmt.Errorf("%w: frame rate %s", ErrInvalid, d.FrameRate)
	}
	if !d.Duration.Valid() {
		return fmt.Errorf("%w: duration %s", ErrInvalid, d.Duration)
	}
	if len(d.Frames) == 0 {
		return fmt.Errorf("%w: no frames", ErrInvalid)
	}
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalid, d.Width, d.Height)
	}

	for i, f := range d.Frames {
		if f.Index != i {
			return fmt.Errorf("%w: frame %d has index %d", ErrInvalid, i, f.Index)
		}
		if f.Offset < 0 || f.Size <= 0 {
			return fmt.Errorf("%w: frame %d has range [%d,+%d)", ErrInvalid, i, f.Offset, f.Size)
		}
		if d.FileSize > 0 && f.End() > d.FileSize {
			return fmt.Errorf("%w: frame %d ends at %d beyond file size %d", ErrInvalid, i, f.End(), d.FileSize)
		}
	}

	// Ranges may be stored out of temporal order, so check overlap on a sorted copy.
	byOffset := make([]FrameDescriptor, len(d.Frames))
	copy(byOffset, d.Frames)
	sort.Slice(byOffset, func(a, b int) bool { return byOffset[a].Offset < byOffset[b].Offset })
	for i := 1; i < len(byOffset); i++ {
		prev, cur := byOffset[i-1], byOffset[i]
		if cur.Offset < prev.End() {
			return fmt.Errorf("%w: frames %d and %d overlap", ErrInvalid, prev.Index, cur.Index)
		}
	}

	return nil
}
