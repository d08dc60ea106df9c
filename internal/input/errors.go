package input

import (
	"errors"
	"fmt"

	"github.com/dshills/termwin/internal/input/key"
)

// ErrReservedKey indicates an attempt to bind a reserved key.
var ErrReservedKey = errors.New("reserved key")

// ReservedKeyError reports which stroke was rejected at registration
// time. Reserved keys are handled before layered lookup and cannot be
// rebound in any layer.
type ReservedKeyError struct {
	Stroke key.Stroke
}

func (e *ReservedKeyError) Error() string {
	return fmt.Sprintf("reserved key %q cannot be rebound", e.Stroke)
}

// Is makes ReservedKeyError match ErrReservedKey in errors.Is checks.
func (e *ReservedKeyError) Is(target error) bool {
	return target == ErrReservedKey
}
