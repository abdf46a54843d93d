package ports

import (
	"image"
)

// DebugSink abstracts debug output for intermediate results.
// It allows saving parsed stream metadata and decoded frames for inspection.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveStreamJSON saves the parsed stream descriptor as JSON.
	SaveStreamJSON(data []byte) error

	// SaveDecodedFrame saves a decoded frame.
	SaveDecodedFrame(index int, img image.Image) error

	// SaveSheet saves a rendered contact sheet.
	SaveSheet(img image.Image) error
}
