package fsm

import (
	"errors"
	"fmt"
)

// ErrInvalidState is returned when a state has no name or no handler.
var ErrInvalidState = errors.New("invalid state")

// TransitionError reports a machine that could not enter a state.
type TransitionError struct {
	From string
	To   string
	Err  error
}

// Error implements the error interface.
func (e *TransitionError) Error() string {
	if e.From == "" {
		return fmt.Sprintf("initial state %q: %v", e.To, e.Err)
	}
	return fmt.Sprintf("transition from %q to %q: %v", e.From, e.To, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransitionError) Unwrap() error {
	return e.Err
}
