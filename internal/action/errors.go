package action

import (
	"errors"
	"fmt"
)

// ErrUnknownAction indicates dispatch of an identifier nothing is
// registered under.
var ErrUnknownAction = errors.New("unknown action")

// UnknownActionError reports which identifier failed to resolve.
type UnknownActionError struct {
	Name string
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("unknown action %q", e.Name)
}

// Is makes UnknownActionError match ErrUnknownAction in errors.Is
// checks.
func (e *UnknownActionError) Is(target error) bool {
	return target == ErrUnknownAction
}
