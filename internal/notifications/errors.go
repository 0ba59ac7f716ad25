package notifications

import (
	"errors"
	"fmt"
)

// ErrProfileNotFound is returned when a user has no profile row.
var ErrProfileNotFound = errors.New("profile not found")

// UserError wraps a failure that aborted one user's evaluation.
type UserError struct {
	UserID string
	Err    error
}

func (e *UserError) Error() string {
	return fmt.Sprintf("user %s: %v", e.UserID, e.Err)
}

func (e *UserError) Unwrap() error { return e.Err }

// TriggerError records a trigger that could not run or whose draft could not
// be claimed. The remaining triggers for the user still run.
type TriggerError struct {
	Trigger string
	Ref     string
	Err     error
}

func (e *TriggerError) Error() string {
	if e.Ref != "" {
		return fmt.Sprintf("trigger %s (%s): %v", e.Trigger, e.Ref, e.Err)
	}
	return fmt.Sprintf("trigger %s: %v", e.Trigger, e.Err)
}

func (e *TriggerError) Unwrap() error { return e.Err }
