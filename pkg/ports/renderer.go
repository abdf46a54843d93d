package ports

import (
	"image"
	"image/color"
	"strings"
)

// Renderer turns decoded frames into files: scaled exports for the frame
// command and contact sheets drawn on a Canvas.
type Renderer interface {
	CreateCanvas(width, height int, bg color.Color) Canvas
	// EncodeImage encodes img; quality is used by JPEG only.
	EncodeImage(img image.Image, format ImageFormat, quality int) ([]byte, error)
	ResizeImage(img image.Image, width, height int) image.Image
}

// Canvas is the drawing surface of a contact sheet. Coordinates are pixels
// from the top-left corner.
type Canvas interface {
	// DrawImageScaled scales img to w x h and draws it at (x, y).
	DrawImageScaled(img image.Image, x, y, w, h int)
	// DrawRoundedRect fills a label background.
	DrawRoundedRect(x, y, w, h, radius int, c color.Color)
	// DrawRectStroke outlines a thumbnail cell.
	DrawRectStroke(x, y, w, h int, c color.Color, strokeWidth float64)
	// DrawLine is used for the cross over frames that failed to decode.
	DrawLine(x1, y1, x2, y2 int, c color.Color, width float64)
	// DrawText anchors text at (x, y) according to style.Align.
	DrawText(text string, x, y int, style TextStyle)
	MeasureText(text string, style TextStyle) (width, height float64)
	ToImage() image.Image
}

// TextStyle describes a label. An empty FontPath selects the built-in face.
type TextStyle struct {
	FontSize float64
	FontPath string
	Color    color.Color
	Align    TextAlign
}

// TextAlign is the horizontal anchor of DrawText.
type TextAlign int

const (
	AlignLeft TextAlign = iota
	AlignCenter
	AlignRight
)

// ImageFormat is an export encoding.
type ImageFormat int

const (
	FormatJPEG ImageFormat = iota
	FormatPNG
	FormatBMP
	FormatTIFF
)

// ParseImageFormat maps a file extension (with or without the dot) to a format.
func ParseImageFormat(ext string) (ImageFormat, bool) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "jpg", "jpeg":
		return FormatJPEG, true
	case "png":
		return FormatPNG, true
	case "bmp":
		return FormatBMP, true
	case "tif", "tiff":
		return FormatTIFF, true
	default:
		return FormatPNG, false
	}
}
