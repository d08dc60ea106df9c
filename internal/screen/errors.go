package screen

import (
	"errors"
	"fmt"
)

// Sentinel errors for screen operations.
var (
	// ErrTerminalUnavailable indicates the process has no usable
	// terminal attached.
	ErrTerminalUnavailable = errors.New("terminal unavailable")

	// ErrOutOfBounds indicates requested window geometry does not fit
	// the current surface dimensions.
	ErrOutOfBounds = errors.New("window out of bounds")

	// ErrWindowClosed indicates an operation on a closed window.
	ErrWindowClosed = errors.New("window closed")

	// ErrSurfaceTornDown indicates an operation on a surface after
	// teardown.
	ErrSurfaceTornDown = errors.New("surface torn down")
)

// BoundsError reports window geometry that exceeds the surface.
type BoundsError struct {
	Rect   Rect
	Width  int
	Height int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("window rect %s exceeds surface %dx%d", e.Rect, e.Width, e.Height)
}

// Is makes BoundsError match ErrOutOfBounds in errors.Is checks.
func (e *BoundsError) Is(target error) bool {
	return target == ErrOutOfBounds
}
