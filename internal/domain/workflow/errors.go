package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when the trigger is not permitted in the current state
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrGuardFailed is returned when every guarded transition for the trigger refused
	ErrGuardFailed = errors.New("guard condition failed")
)

// TransitionError records which trigger was refused and from where.
type TransitionError struct {
	From    State
	Trigger Trigger
	Err     error
}

func (e *TransitionError) Error() string {
	return e.Err.Error() + ": " + e.Trigger.String() + " from " + e.From.String()
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}
