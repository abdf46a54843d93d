package player

import (
	"errors"
	"fmt"
)

// ErrNotOpen is returned by UpdateNow when no stream is open.
var ErrNotOpen = errors.New("player: no stream open")

// ResourceError reports a movie file that could not be located or read.
type ResourceError struct {
	Path string
	Err  error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("player: open %s: %v", e.Path, e.Err)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}
