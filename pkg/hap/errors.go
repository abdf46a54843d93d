package hap

import (
	"errors"
	"fmt"
)

var (
	ErrCorrupt               = errors.New("hap: corrupt section")
	ErrUnsupportedFormat     = errors.New("hap: unsupported texture format")
	ErrUnsupportedCompressor = errors.New("hap: unsupported compressor")
	ErrFormatMismatch        = errors.New("hap: texture format does not match track")
	ErrSizeMismatch          = errors.New("hap: decoded size does not match dimensions")
	ErrDimensions            = errors.New("hap: invalid dimensions")
)

// DecodeError reports a failed decode of one frame.
type DecodeError struct {
	Index int
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("hap: decode frame %d: %v", e.Index, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
