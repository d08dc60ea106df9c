package monitor

import (
	"errors"
	"fmt"
)

// Sentinel errors for bridge operations.
var (
	// ErrUnknownTask indicates a call against a task id that was
	// never registered.
	ErrUnknownTask = errors.New("unknown task")

	// ErrTaskExists indicates a duplicate registration.
	ErrTaskExists = errors.New("task already registered")
)

// UnknownTaskError reports which task id was not found.
type UnknownTaskError struct {
	TaskID string
}

func (e *UnknownTaskError) Error() string {
	return fmt.Sprintf("unknown task %q", e.TaskID)
}

// Is makes UnknownTaskError match ErrUnknownTask in errors.Is checks.
func (e *UnknownTaskError) Is(target error) bool {
	return target == ErrUnknownTask
}
