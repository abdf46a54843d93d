// Package hapencoder writes HAP movies: frames are block-compressed with the
// texture encoders, packed into HAP sections and muxed into a QuickTime or
// fragmented MP4 container.
package hapencoder

import (
	"bytes"
	"fmt"
	"image"
	"sync"

	"github.com/user/happlay/pkg/container"
	"github.com/user/happlay/pkg/hap"
	"github.com/user/happlay/pkg/ports"
	"github.com/user/happlay/pkg/stream"
	"github.com/user/happlay/pkg/texture"
)

// Encoder implements ports.VideoEncoder.
type Encoder struct {
	mu sync.Mutex

	width   int
	height  int
	rate    stream.Rational
	variant stream.Variant
	layout  container.Layout
	hap     hap.Encoder
	started bool

	frames [][]byte
}

// New creates a new HAP encoder.
func New() *Encoder {
	return &Encoder{}
}

// Begin initializes the encoder.
func (e *Encoder) Begin(width, height int, rate stream.Rational, opts ports.EncoderOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d", width, height)
	}
	if !rate.Valid() {
		return fmt.Errorf("invalid frame rate %s", rate)
	}
	variant := opts.Variant
	if variant == stream.VariantUnknown {
		variant = stream.VariantHap
	}
	if variant == stream.VariantHapR {
		return fmt.Errorf("%w: no encoder for %v", texture.ErrUnsupportedFormat, variant)
	}
	compressor, err := hap.ParseCompressor(opts.Compressor)
	if err != nil {
		return err
	}
	layout, err := container.ParseLayout(opts.Layout)
	if err != nil {
		return err
	}

	e.width = width
	e.height = height
	e.rate = rate
	e.variant = variant
	e.layout = layout
	e.hap = hap.Encoder{Compressor: compressor, Chunks: opts.Chunks}
	e.frames = nil
	e.started = true
	return nil
}

// EncodeFrame compresses one frame. The image must match the Begin dimensions.
func (e *Encoder) EncodeFrame(img image.Image) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.started {
		return fmt.Errorf("encoder not initialized")
	}
	if b := img.Bounds(); b.Dx() != e.width || b.Dy() != e.height {
		return fmt.Errorf("frame %d is %dx%d, want %dx%d", len(e.frames), b.Dx(), b.Dy(), e.width, e.height)
	}

	tex, err := texture.Encode(img, e.variant)
	if err != nil {
		return fmt.Errorf("compress frame %d: %w", len(e.frames), err)
	}
	data, err := e.hap.Encode(tex)
	if err != nil {
		return fmt.Errorf("pack frame %d: %w", len(e.frames), err)
	}
	e.frames = append(e.frames, data)
	return nil
}

// End muxes the encoded frames and returns the movie bytes.
func (e *Encoder) End() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.started {
		return nil, fmt.Errorf("encoder not initialized")
	}
	e.started = false

	var buf bytes.Buffer
	err := container.Write(&buf, container.Movie{
		Variant:   e.variant,
		Width:     e.width,
		Height:    e.height,
		FrameRate: e.rate,
		Frames:    e.frames,
	}, container.WriteOptions{Layout: e.layout})
	e.frames = nil
	if err != nil {
		return nil, fmt.Errorf("mux: %w", err)
	}
	return buf.Bytes(), nil
}

// Ensure Encoder implements ports.VideoEncoder
var _ ports.VideoEncoder = (*Encoder)(nil)
