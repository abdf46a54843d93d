package ggrenderer

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/user/happlay/pkg/ports"
)

func redImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, A: 255})
		}
	}
	return img
}

func TestRenderer_CreateCanvas(t *testing.T) {
	canvas := New().CreateCanvas(100, 60, color.White)

	bounds := canvas.ToImage().Bounds()
	if bounds.Dx() != 100 || bounds.Dy() != 60 {
		t.Errorf("expected 100x60, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestRenderer_EncodeImage(t *testing.T) {
	decoders := map[ports.ImageFormat]func([]byte) (image.Image, error){
		ports.FormatJPEG: func(b []byte) (image.Image, error) { return jpeg.Decode(bytes.NewReader(b)) },
		ports.FormatPNG:  func(b []byte) (image.Image, error) { return png.Decode(bytes.NewReader(b)) },
		ports.FormatBMP:  func(b []byte) (image.Image, error) { return bmp.Decode(bytes.NewReader(b)) },
		ports.FormatTIFF: func(b []byte) (image.Image, error) { return tiff.Decode(bytes.NewReader(b)) },
	}
	r := New()
	src := redImage(24, 16)

	for format, decode := range decoders {
		data, err := r.EncodeImage(src, format, 90)
		if err != nil {
			t.Fatalf("EncodeImage(%d) failed: %v", format, err)
		}
		img, err := decode(data)
		if err != nil {
			t.Fatalf("decode format %d failed: %v", format, err)
		}
		if img.Bounds() != src.Bounds() {
			t.Errorf("format %d: expected %v, got %v", format, src.Bounds(), img.Bounds())
		}
		red, g, _, _ := img.At(12, 8).RGBA()
		if red < 0xf000 || g > 0x1000 {
			t.Errorf("format %d: expected red pixel, got %v", format, img.At(12, 8))
		}
	}

	if _, err := r.EncodeImage(src, ports.ImageFormat(99), 0); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestRenderer_ResizeImage(t *testing.T) {
	resized := New().ResizeImage(redImage(100, 100), 50, 25)

	bounds := resized.Bounds()
	if bounds.Dx() != 50 || bounds.Dy() != 25 {
		t.Errorf("expected 50x25, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestCanvas_DrawRectStroke(t *testing.T) {
	canvas := New().CreateCanvas(100, 100, color.White)
	canvas.DrawRectStroke(10, 10, 30, 30, color.RGBA{R: 255, A: 255}, 2)

	img := canvas.ToImage()
	if _, g, _, _ := img.At(10, 20).RGBA(); g > 0x8000 {
		t.Errorf("expected red on the border, got %v", img.At(10, 20))
	}
	if _, g, _, _ := img.At(25, 25).RGBA(); g != 0xffff {
		t.Errorf("expected background inside the outline, got %v", img.At(25, 25))
	}
}

func TestCanvas_DrawImageScaled(t *testing.T) {
	canvas := New().CreateCanvas(100, 100, color.White)
	canvas.DrawImageScaled(redImage(8, 8), 10, 20, 40, 30)

	img := canvas.ToImage()
	if _, g, _, _ := img.At(30, 35).RGBA(); g > 0x1000 {
		t.Errorf("expected red inside scaled image, got %v", img.At(30, 35))
	}
	if _, g, _, _ := img.At(5, 5).RGBA(); g != 0xffff {
		t.Errorf("expected background outside scaled image, got %v", img.At(5, 5))
	}
}

func TestCanvas_StrokeAndLine(t *testing.T) {
	canvas := New().CreateCanvas(100, 100, color.White)
	canvas.DrawRectStroke(10, 10, 30, 30, color.Black, 2)
	canvas.DrawLine(0, 70, 100, 70, color.Black, 2)
	canvas.DrawRoundedRect(60, 10, 30, 20, 4, color.Black)

	img := canvas.ToImage()
	for _, p := range []image.Point{{10, 20}, {50, 70}, {75, 20}} {
		if r, _, _, _ := img.At(p.X, p.Y).RGBA(); r == 0xffff {
			t.Errorf("expected dark pixel at %v", p)
		}
	}
}

func TestCanvas_Text(t *testing.T) {
	canvas := New().CreateCanvas(200, 50, color.White)
	style := ports.TextStyle{FontSize: 14, Color: color.Black, Align: ports.AlignCenter}

	w, h := canvas.MeasureText("frame 12", style)
	if w <= 0 || h <= 0 {
		t.Errorf("expected positive text size, got %vx%v", w, h)
	}
	wider, _ := canvas.MeasureText("frame 12345", style)
	if wider <= w {
		t.Errorf("expected longer text to be wider: %v <= %v", wider, w)
	}

	// Should not panic with a missing font file.
	style.FontPath = "/nonexistent/font.ttf"
	canvas.DrawText("frame 12", 100, 25, style)
}
