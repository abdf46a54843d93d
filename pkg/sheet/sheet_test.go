package sheet_test

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/happlay/pkg/adapters/ggrenderer"
	"github.com/user/happlay/pkg/adapters/hapencoder"
	"github.com/user/happlay/pkg/frameclock"
	"github.com/user/happlay/pkg/mocks"
	"github.com/user/happlay/pkg/player"
	"github.com/user/happlay/pkg/rgbcycle"
	"github.com/user/happlay/pkg/sheet"
	"github.com/user/happlay/pkg/stream"
	"github.com/user/happlay/pkg/texture"
)

// fakeSource resolves time to frames like a player but paints frame i with
// rgbcycle.Frame and fails the indexes in failed.
type fakeSource struct {
	frames int
	rate   stream.Rational
	failed map[int]bool
	err    error

	t       float64
	cur     int
	tex     *texture.Texture
	decFail bool
	times   []float64
}

func (s *fakeSource) FrameCount() int            { return s.frames }
func (s *fakeSource) FrameWidth() int            { return 16 }
func (s *fakeSource) FrameHeight() int           { return 8 }
func (s *fakeSource) FrameRate() stream.Rational { return s.rate }
func (s *fakeSource) SetTime(t float64)          { s.t = t; s.times = append(s.times, t) }
func (s *fakeSource) DecodeFailed() bool         { return s.decFail }
func (s *fakeSource) CurrentFrame() int          { return s.cur }
func (s *fakeSource) Texture() *texture.Texture  { return s.tex }

func (s *fakeSource) UpdateNow(ctx context.Context) error {
	if s.err != nil {
		return s.err
	}
	idx := int(frameclock.Index(s.t, s.rate))
	if s.failed[idx] {
		s.decFail = true
		return nil
	}
	tex, err := texture.Encode(rgbcycle.Frame(idx, 16, 8), stream.VariantHap)
	if err != nil {
		return err
	}
	s.decFail = false
	s.cur = idx
	s.tex = tex
	return nil
}

func TestComputeLayout(t *testing.T) {
	opts := sheet.DefaultOptions()
	l := sheet.ComputeLayout(6, 1920, 1080, opts)

	assert.Equal(t, 4, l.Columns)
	assert.Equal(t, 2, l.Rows)
	assert.Equal(t, 160, l.ThumbWidth)
	assert.Equal(t, 90, l.ThumbHeight)
	assert.Equal(t, 16*2+4*160+3*8, l.Width)
	assert.Equal(t, 16*2+2*(90+18)+8, l.Height)
	require.Len(t, l.Cells, 6)
	assert.Equal(t, image.Rect(16, 16, 176, 106), l.Cells[0])
	assert.Equal(t, image.Rect(16, 106, 176, 124), l.Labels[0])
	assert.Equal(t, image.Rect(16, 132, 176, 222), l.Cells[4])
	assert.Equal(t, image.Rect(184, 132, 344, 222), l.Cells[5])
}

func TestComputeLayout_FewerThanColumns(t *testing.T) {
	l := sheet.ComputeLayout(2, 64, 64, sheet.DefaultOptions())
	assert.Equal(t, 2, l.Columns)
	assert.Equal(t, 1, l.Rows)
}

func TestComputeLayout_Empty(t *testing.T) {
	assert.Equal(t, sheet.Layout{}, sheet.ComputeLayout(0, 64, 64, sheet.DefaultOptions()))
	assert.Equal(t, sheet.Layout{}, sheet.ComputeLayout(3, 0, 64, sheet.DefaultOptions()))
}

func TestSampleIndexes(t *testing.T) {
	tests := []struct {
		name   string
		frames int
		count  int
		want   []int
	}{
		{"spread", 30, 4, []int{0, 9, 19, 29}},
		{"all", 3, 5, []int{0, 1, 2}},
		{"single", 30, 1, []int{0}},
		{"no frames", 0, 4, nil},
		{"no count", 10, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sheet.SampleIndexes(tt.frames, tt.count))
		})
	}
}

func TestTimecode(t *testing.T) {
	assert.Equal(t, "00:00.000", sheet.Timecode(0))
	assert.Equal(t, "00:01.001", sheet.Timecode(1.001))
	assert.Equal(t, "01:05.250", sheet.Timecode(65.25))
	assert.Equal(t, "00:00.000", sheet.Timecode(-3))
}

func TestCollect(t *testing.T) {
	rate := stream.Rational{Num: 30000, Den: 1001}
	src := &fakeSource{frames: 30, rate: rate, cur: -1}

	thumbs, err := sheet.Collect(context.Background(), src, 4)
	require.NoError(t, err)
	require.Len(t, thumbs, 4)

	for i, idx := range []int{0, 9, 19, 29} {
		assert.Equal(t, idx, thumbs[i].Index)
		assert.InDelta(t, frameclock.FrameTime(idx, rate), thumbs[i].Time, 1e-9)
		require.NotNil(t, thumbs[i].Image)
		// The seek lands strictly inside the frame.
		assert.Greater(t, src.times[i], frameclock.FrameTime(idx, rate))
		assert.Less(t, src.times[i], frameclock.FrameTime(idx+1, rate))
	}
	r, g, b, _ := thumbs[1].Image.At(0, 0).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0, 0}, [3]uint32{r, g, b}, "frame 9 is red")
}

func TestCollect_FailedFrameHasNoImage(t *testing.T) {
	src := &fakeSource{frames: 30, rate: stream.Rational{Num: 30, Den: 1}, cur: -1, failed: map[int]bool{9: true}}

	thumbs, err := sheet.Collect(context.Background(), src, 4)
	require.NoError(t, err)
	assert.NotNil(t, thumbs[0].Image)
	assert.Nil(t, thumbs[1].Image)
	assert.NotNil(t, thumbs[2].Image)
}

func TestCollect_Errors(t *testing.T) {
	_, err := sheet.Collect(context.Background(), &fakeSource{rate: stream.Rational{Num: 30, Den: 1}}, 4)
	assert.Error(t, err)

	errStop := errors.New("stop")
	src := &fakeSource{frames: 10, rate: stream.Rational{Num: 30, Den: 1}, err: errStop}
	_, err = sheet.Collect(context.Background(), src, 4)
	assert.ErrorIs(t, err, errStop)
}

func TestRender_DrawsThumbsAndLabels(t *testing.T) {
	r := &mocks.Renderer{}
	opts := sheet.DefaultOptions()
	opts.ThumbWidth = 60
	thumbs := []sheet.Thumb{
		{Index: 0, Time: 0, Image: image.NewNRGBA(image.Rect(0, 0, 4, 4))},
		{Index: 15, Time: 0.5},
		{Index: 29, Time: 0.967, Image: image.NewNRGBA(image.Rect(0, 0, 4, 4))},
	}
	l := sheet.ComputeLayout(len(thumbs), 64, 48, opts)

	img := sheet.Render(r, l, thumbs, opts)
	assert.Equal(t, image.Rect(0, 0, l.Width, l.Height), img.Bounds())

	require.Len(t, r.Canvases, 1)
	c := r.Canvases[0]
	assert.Equal(t, []image.Rectangle{l.Cells[0], l.Cells[2]}, c.ScaledDraws)
	require.Len(t, c.Texts, 3)
	assert.Equal(t, "#15", c.Texts[1], "long label falls back to the index")
}

func TestRender_WideLabels(t *testing.T) {
	r := &mocks.Renderer{}
	opts := sheet.DefaultOptions()
	opts.ThumbWidth = 400
	thumbs := []sheet.Thumb{{Index: 3, Time: 0.1, Image: image.NewNRGBA(image.Rect(0, 0, 4, 4))}}

	sheet.Render(r, sheet.ComputeLayout(1, 64, 48, opts), thumbs, opts)
	assert.Equal(t, []string{"#3  00:00.100"}, r.Canvases[0].Texts)
}

func TestRender_NoLabels(t *testing.T) {
	r := &mocks.Renderer{}
	opts := sheet.DefaultOptions()
	opts.LabelHeight = 0
	thumbs := []sheet.Thumb{{Index: 0, Image: image.NewNRGBA(image.Rect(0, 0, 4, 4))}}

	sheet.Render(r, sheet.ComputeLayout(1, 64, 48, opts), thumbs, opts)
	assert.Empty(t, r.Canvases[0].Texts)
}

func TestBuild_FromPlayer(t *testing.T) {
	rate := stream.Rational{Num: 25, Den: 1}
	data, err := rgbcycle.Generate(hapencoder.New(), rgbcycle.Options{Width: 64, Height: 32, Rate: rate, Duration: 1})
	require.NoError(t, err)

	fsys := mocks.NewFileSystem()
	fsys.WriteFile("clip.mov", data)
	p := player.New(player.WithFileSystem(fsys))
	defer p.Close()
	require.NoError(t, p.Open("clip.mov", player.LocalFileSystem))

	opts := sheet.DefaultOptions()
	opts.Count = 4
	opts.Columns = 2
	opts.ThumbWidth = 32
	opts.LabelHeight = 0

	img, err := sheet.Build(context.Background(), p, ggrenderer.New(), opts)
	require.NoError(t, err)

	l := sheet.ComputeLayout(4, 64, 32, opts)
	require.Equal(t, image.Rect(0, 0, l.Width, l.Height), img.Bounds())

	for i, idx := range []int{0, 8, 16, 24} {
		cell := l.Cells[i]
		c := color.NRGBAModel.Convert(img.At(cell.Min.X+cell.Dx()/2, cell.Min.Y+cell.Dy()/2)).(color.NRGBA)
		ch := [3]uint8{c.R, c.G, c.B}
		want := rgbcycle.Expected(idx)
		for k := range ch {
			if rgbcycle.Channel(k) == want {
				assert.Greater(t, ch[k], uint8(200), "frame %d channel %s", idx, rgbcycle.Channel(k))
			} else {
				assert.Less(t, ch[k], uint8(50), "frame %d channel %s", idx, rgbcycle.Channel(k))
			}
		}
	}
}
