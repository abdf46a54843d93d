package container

import (
	"errors"
	"fmt"
)

var (
	ErrMalformed        = errors.New("container: malformed file")
	ErrNoVideoTrack     = errors.New("container: no video track")
	ErrUnsupportedCodec = errors.New("container: unsupported codec")
	ErrNoFrames         = errors.New("container: no frames")
	ErrInvalidStream    = errors.New("container: invalid stream parameters")
)

// ParseError reports which step of container parsing failed.
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("container: %s: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func parseErr(op string, sentinel error, format string, args ...any) error {
	return &ParseError{Op: op, Err: fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...)}
}
