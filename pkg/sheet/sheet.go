package sheet

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/user/happlay/pkg/frameclock"
	"github.com/user/happlay/pkg/ports"
	"github.com/user/happlay/pkg/stream"
	"github.com/user/happlay/pkg/texture"
)

// Source is the player surface a sheet is built from.
type Source interface {
	FrameCount() int
	FrameWidth() int
	FrameHeight() int
	FrameRate() stream.Rational
	SetTime(t float64)
	UpdateNow(ctx context.Context) error
	DecodeFailed() bool
	CurrentFrame() int
	Texture() *texture.Texture
}

// Thumb is one sampled frame. Image is nil when the frame could not be decoded.
type Thumb struct {
	Index int
	Time  float64
	Image image.Image
}

// Collect decodes the frames chosen by SampleIndexes from src.
func Collect(ctx context.Context, src Source, count int) ([]Thumb, error) {
	indexes := SampleIndexes(src.FrameCount(), count)
	if len(indexes) == 0 {
		return nil, errors.New("sheet: no frames to sample")
	}

	rate := src.FrameRate()
	thumbs := make([]Thumb, 0, len(indexes))
	for _, idx := range indexes {
		start := frameclock.FrameTime(idx, rate)
		mid := (start + frameclock.FrameTime(idx+1, rate)) / 2
		src.SetTime(mid)
		if err := src.UpdateNow(ctx); err != nil {
			return nil, fmt.Errorf("sheet: frame %d: %w", idx, err)
		}

		th := Thumb{Index: idx, Time: start}
		if !src.DecodeFailed() && src.CurrentFrame() == idx {
			// Sampling copies the texels; the texture is reused by the next decode.
			if img, err := src.Texture().ToNRGBA(); err == nil {
				th.Image = img
			}
		}
		thumbs = append(thumbs, th)
	}
	return thumbs, nil
}

// Build samples opts.Count frames of src and renders them.
func Build(ctx context.Context, src Source, r ports.Renderer, opts Options) (image.Image, error) {
	thumbs, err := Collect(ctx, src, opts.Count)
	if err != nil {
		return nil, err
	}
	l := ComputeLayout(len(thumbs), src.FrameWidth(), src.FrameHeight(), opts)
	return Render(r, l, thumbs, opts), nil
}

// Render draws thumbs into the cells of l. Frames without an image are
// crossed out and get a highlighted label.
func Render(r ports.Renderer, l Layout, thumbs []Thumb, opts Options) image.Image {
	canvas := r.CreateCanvas(l.Width, l.Height, opts.Background)

	for i, th := range thumbs {
		if i >= len(l.Cells) {
			break
		}
		cell := l.Cells[i]
		if th.Image != nil {
			canvas.DrawImageScaled(th.Image, cell.Min.X, cell.Min.Y, cell.Dx(), cell.Dy())
		} else {
			canvas.DrawLine(cell.Min.X, cell.Min.Y, cell.Max.X, cell.Max.Y, opts.FailedColor, 2)
			canvas.DrawLine(cell.Max.X, cell.Min.Y, cell.Min.X, cell.Max.Y, opts.FailedColor, 2)
		}
		canvas.DrawRectStroke(cell.Min.X, cell.Min.Y, cell.Dx(), cell.Dy(), opts.BorderColor, 1)

		if opts.LabelHeight > 0 {
			drawLabel(canvas, l.Labels[i], th, opts)
		}
	}
	return canvas.ToImage()
}

func drawLabel(canvas ports.Canvas, area image.Rectangle, th Thumb, opts Options) {
	if th.Image == nil {
		canvas.DrawRoundedRect(area.Min.X, area.Min.Y+2, area.Dx(), area.Dy()-2, 3, opts.FailedColor)
	}

	style := ports.TextStyle{
		FontSize: float64(opts.LabelHeight) * 0.7,
		FontPath: opts.FontPath,
		Color:    opts.LabelColor,
		Align:    ports.AlignCenter,
	}
	text := fmt.Sprintf("#%d  %s", th.Index, Timecode(th.Time))
	if w, _ := canvas.MeasureText(text, style); w > float64(area.Dx()) {
		text = fmt.Sprintf("#%d", th.Index)
	}
	canvas.DrawText(text, area.Min.X+area.Dx()/2, area.Min.Y+area.Dy()/2, style)
}

// Timecode formats seconds as mm:ss.mmm.
func Timecode(t float64) string {
	if t < 0 {
		t = 0
	}
	ms := int64(t*1000 + 0.5)
	return fmt.Sprintf("%02d:%02d.%03d", ms/60000, ms/1000%60, ms%1000)
}
