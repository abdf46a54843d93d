package hapencoder

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/user/happlay/pkg/container"
	"github.com/user/happlay/pkg/ports"
	"github.com/user/happlay/pkg/stream"
	"github.com/user/happlay/pkg/texture"
)

func solid(w, h int, c color.NRGBA) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestEncoder_ProducesParsableMovie(t *testing.T) {
	tests := []struct {
		name string
		opts ports.EncoderOptions
	}{
		{"default", ports.EncoderOptions{}},
		{"hap q snappy", ports.EncoderOptions{Variant: stream.VariantHapQ, Compressor: "snappy"}},
		{"hap alpha chunked", ports.EncoderOptions{Variant: stream.VariantHapAlpha, Compressor: "snappy", Chunks: 4}},
		{"fragmented", ports.EncoderOptions{Variant: stream.VariantHapQAlpha, Layout: "fragmented"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := New()
			rate := stream.Rational{Num: 30000, Den: 1001}
			if err := enc.Begin(32, 16, rate, tt.opts); err != nil {
				t.Fatalf("Begin failed: %v", err)
			}
			for i := 0; i < 3; i++ {
				if err := enc.EncodeFrame(solid(32, 16, color.NRGBA{R: uint8(i * 100), A: 255})); err != nil {
					t.Fatalf("EncodeFrame failed: %v", err)
				}
			}
			data, err := enc.End()
			if err != nil {
				t.Fatalf("End failed: %v", err)
			}

			desc, err := container.Parse(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			want := tt.opts.Variant
			if want == stream.VariantUnknown {
				want = stream.VariantHap
			}
			if desc.Variant != want {
				t.Errorf("expected variant %v, got %v", want, desc.Variant)
			}
			if desc.FrameCount() != 3 {
				t.Errorf("expected 3 frames, got %d", desc.FrameCount())
			}
			if desc.FrameRate != rate {
				t.Errorf("expected rate %s, got %s", rate, desc.FrameRate)
			}
		})
	}
}

func TestEncoder_Errors(t *testing.T) {
	rate := stream.Rational{Num: 30, Den: 1}

	enc := New()
	if err := enc.EncodeFrame(solid(4, 4, color.NRGBA{})); err == nil {
		t.Error("expected error before Begin")
	}
	if _, err := enc.End(); err == nil {
		t.Error("expected error from End before Begin")
	}
	if err := enc.Begin(0, 4, rate, ports.EncoderOptions{}); err == nil {
		t.Error("expected error for zero width")
	}
	if err := enc.Begin(4, 4, stream.Rational{}, ports.EncoderOptions{}); err == nil {
		t.Error("expected error for invalid rate")
	}
	if err := enc.Begin(4, 4, rate, ports.EncoderOptions{Compressor: "lz4"}); err == nil {
		t.Error("expected error for unknown compressor")
	}
	if err := enc.Begin(4, 4, rate, ports.EncoderOptions{Variant: stream.VariantHapR}); !errors.Is(err, texture.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}

	if err := enc.Begin(8, 8, rate, ports.EncoderOptions{}); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := enc.EncodeFrame(solid(4, 4, color.NRGBA{})); err == nil {
		t.Error("expected error for mismatched frame size")
	}
	if _, err := enc.End(); err == nil {
		t.Error("expected error when no frames were encoded")
	}
}
