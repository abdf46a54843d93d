// Package sheet renders contact sheets: a grid of thumbnails of frames
// sampled evenly across a stream, each labelled with its index and time.
package sheet

import (
	"image"
	"image/color"
)

// Options controls the sheet grid and colours.
type Options struct {
	Count       int // thumbnails to sample
	Columns     int
	ThumbWidth  int
	Gap         int
	Padding     int
	LabelHeight int // 0 disables labels
	FontPath    string
	Background  color.Color
	BorderColor color.Color
	LabelColor  color.Color
	FailedColor color.Color
}

// DefaultOptions returns a 4-column sheet of 12 thumbnails.
func DefaultOptions() Options {
	return Options{
		Count:       12,
		Columns:     4,
		ThumbWidth:  160,
		Gap:         8,
		Padding:     16,
		LabelHeight: 18,
		Background:  color.RGBA{R: 0x1a, G: 0x1a, B: 0x2e, A: 0xff},
		BorderColor: color.RGBA{R: 0x33, G: 0x33, B: 0x55, A: 0xff},
		LabelColor:  color.White,
		FailedColor: color.RGBA{R: 0xe5, G: 0x3e, B: 0x3e, A: 0xff},
	}
}

// Layout is the computed geometry of a sheet.
type Layout struct {
	Columns     int
	Rows        int
	ThumbWidth  int
	ThumbHeight int
	Width       int
	Height      int
	Cells       []image.Rectangle // thumbnail areas
	Labels      []image.Rectangle // label areas below each thumbnail
}

// ComputeLayout places count thumbnails of a frameWidth x frameHeight
// stream on a grid. Thumbnails keep the frame aspect ratio.
// This is a pure function.
func ComputeLayout(count, frameWidth, frameHeight int, opts Options) Layout {
	if count <= 0 || frameWidth <= 0 || frameHeight <= 0 {
		return Layout{}
	}
	cols := max(1, min(opts.Columns, count))
	rows := (count + cols - 1) / cols

	thumbW := max(1, opts.ThumbWidth)
	thumbH := max(1, frameHeight*thumbW/frameWidth)
	labelH := max(0, opts.LabelHeight)
	cellH := thumbH + labelH

	l := Layout{
		Columns:     cols,
		Rows:        rows,
		ThumbWidth:  thumbW,
		ThumbHeight: thumbH,
		Width:       opts.Padding*2 + cols*thumbW + (cols-1)*opts.Gap,
		Height:      opts.Padding*2 + rows*cellH + (rows-1)*opts.Gap,
		Cells:       make([]image.Rectangle, count),
		Labels:      make([]image.Rectangle, count),
	}
	for i := 0; i < count; i++ {
		x := opts.Padding + (i%cols)*(thumbW+opts.Gap)
		y := opts.Padding + (i/cols)*(cellH+opts.Gap)
		l.Cells[i] = image.Rect(x, y, x+thumbW, y+thumbH)
		l.Labels[i] = image.Rect(x, y+thumbH, x+thumbW, y+cellH)
	}
	return l
}

// SampleIndexes spreads count frame indexes evenly over [0, frameCount),
// always including the first and last frame. It returns every index when
// count >= frameCount.
func SampleIndexes(frameCount, count int) []int {
	if frameCount <= 0 || count <= 0 {
		return nil
	}
	if count >= frameCount {
		out := make([]int, frameCount)
		for i := range out {
			out[i] = i
		}
		return out
	}
	if count == 1 {
		return []int{0}
	}
	out := make([]int, count)
	for i := range out {
		out[i] = i * (frameCount - 1) / (count - 1)
	}
	return out
}
