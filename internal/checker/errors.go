package checker

import (
	"errors"
	"fmt"

	"github.com/roach88/fsmcheck/internal/contract"
)

// ErrTooManyMessages is returned when a sequence exceeds the configured
// maximum number of steps. No message of the sequence is applied.
var ErrTooManyMessages = errors.New("message sequence exceeds max steps")

// StepError locates a failure within a check run.
//
// Err is either a *contract.Violation or an error returned by the machine
// itself (for example a handler returning an invalid state).
type StepError struct {
	// Step is the 1-indexed position of the failing message.
	Step int

	// Seq is the logical sequence number of the failing step.
	Seq int64

	// Message is a rendering of the failing message.
	Message string

	Err error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Step, e.Message, e.Err)
}

// Unwrap returns the underlying error.
func (e *StepError) Unwrap() error {
	return e.Err
}

// FailedStep returns the 1-indexed step at which err occurred,
// or 0 if err does not come from a check run.
func FailedStep(err error) int {
	var se *StepError
	if errors.As(err, &se) {
		return se.Step
	}
	return 0
}

// IsViolation reports whether err is a contract violation, as opposed to a
// machine error or a configuration error.
func IsViolation(err error) bool {
	return contract.IsViolation(err)
}
