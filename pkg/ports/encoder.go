package ports

import (
	"image"

	"github.com/user/happlay/pkg/stream"
)

// VideoEncoder abstracts HAP movie encoding.
type VideoEncoder interface {
	// Begin initializes the encoder with the specified dimensions and frame rate.
	Begin(width, height int, rate stream.Rational, opts EncoderOptions) error

	// EncodeFrame compresses one frame and appends it to the movie.
	EncodeFrame(img image.Image) error

	// End finalizes encoding and returns the container bytes.
	End() ([]byte, error)
}

// EncoderOptions configures HAP encoding.
type EncoderOptions struct {
	Variant    stream.Variant
	Compressor string // "none" or "snappy"
	Chunks     int    // chunks per image section; <= 1 disables chunking
	Layout     string // "progressive" or "fragmented"
}
