package mocks

import (
	"image"

	"github.com/user/happlay/pkg/ports"
	"github.com/user/happlay/pkg/stream"
)

// VideoEncoder is a mock implementation of ports.VideoEncoder.
type VideoEncoder struct {
	BeginFunc       func(width, height int, rate stream.Rational, opts ports.EncoderOptions) error
	EncodeFrameFunc func(img image.Image) error
	EndFunc         func() ([]byte, error)

	// Recorded calls for verification
	BeginCalled bool
	BeginRate   stream.Rational
	BeginOpts   ports.EncoderOptions
	Frames      []image.Image
	EndCalled   bool
}

func (m *VideoEncoder) Begin(width, height int, rate stream.Rational, opts ports.EncoderOptions) error {
	m.BeginCalled = true
	m.BeginRate = rate
	m.BeginOpts = opts
	if m.BeginFunc != nil {
		return m.BeginFunc(width, height, rate, opts)
	}
	return nil
}

func (m *VideoEncoder) EncodeFrame(img image.Image) error {
	m.Frames = append(m.Frames, img)
	if m.EncodeFrameFunc != nil {
		return m.EncodeFrameFunc(img)
	}
	return nil
}

func (m *VideoEncoder) End() ([]byte, error) {
	m.EndCalled = true
	if m.EndFunc != nil {
		return m.EndFunc()
	}
	// Minimal QuickTime ftyp box
	return []byte{0, 0, 0, 8, 'f', 't', 'y', 'p'}, nil
}

var _ ports.VideoEncoder = (*VideoEncoder)(nil)
