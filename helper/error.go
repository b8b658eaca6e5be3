package helper

import (
	"fmt"
)

// NewError wraps an error with the action that failed.
// The wrapped error stays available for errors.Is/As.
func NewError(action string, err error) error {
	return fmt.Errorf("error at %s: %w", action, err)
}
