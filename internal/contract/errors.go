package contract

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies which check produced a violation.
type Kind string

const (
	// KindPrecondition is a failed state precondition.
	KindPrecondition Kind = "precondition"

	// KindPostcondition is a failed state postcondition.
	KindPostcondition Kind = "postcondition"

	// KindInvariant is a failed global invariant.
	KindInvariant Kind = "invariant"

	// KindTransition is a failed (from, to) transition rule.
	KindTransition Kind = "transition"
)

// Violation is the single error taxonomy of the registry.
//
// It carries enough to diagnose a failure without reading the state
// handlers: which check failed, where, the label given at registration and
// a rendering of the context at the point of failure.
type Violation struct {
	// Kind is the check that failed.
	Kind Kind

	// State is the state name for precondition and postcondition violations.
	State string

	// From and To are the transition pair for transition violations.
	From string
	To   string

	// Label is the human-readable label supplied at registration.
	Label string

	// Index is the registration index of a failed invariant, -1 otherwise.
	Index int

	// Detail is the message returned by a failing transition rule.
	Detail string

	// Context is a rendering of the context when the check failed.
	Context string
}

// Error implements the error interface.
func (v *Violation) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "%s violated", v.Kind)
	switch v.Kind {
	case KindPrecondition, KindPostcondition:
		fmt.Fprintf(&buf, " in state %q", v.State)
	case KindInvariant:
		fmt.Fprintf(&buf, " (#%d)", v.Index)
	case KindTransition:
		fmt.Fprintf(&buf, " for %q -> %q", v.From, v.To)
	}
	if v.Label != "" {
		fmt.Fprintf(&buf, ": %s", v.Label)
	}
	if v.Detail != "" {
		fmt.Fprintf(&buf, ": %s", v.Detail)
	}
	fmt.Fprintf(&buf, " (context: %s)", v.Context)

	return buf.String()
}

// IsViolation reports whether err is or wraps a *Violation.
func IsViolation(err error) bool {
	var v *Violation
	return errors.As(err, &v)
}

// ViolationKind returns the kind of the *Violation wrapped by err,
// or "" if err does not wrap one.
func ViolationKind(err error) Kind {
	var v *Violation
	if errors.As(err, &v) {
		return v.Kind
	}
	return ""
}

// AsViolation returns the *Violation wrapped by err, if any.
func AsViolation(err error) (*Violation, bool) {
	var v *Violation
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// render produces the context rendering embedded in violations.
func render(ctx any) string {
	return fmt.Sprintf("%+v", ctx)
}
