package model

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownModel is returned by Catalog.Lookup for unregistered names.
	ErrUnknownModel = errors.New("unknown model")

	// ErrUnknownMessage is returned when a message kind has no decoder.
	ErrUnknownMessage = errors.New("unknown message kind")

	// ErrDuplicateModel is returned when registering a name twice.
	ErrDuplicateModel = errors.New("model already registered")
)

// DecodeError reports a message spec that could not be turned into a typed
// message.
type DecodeError struct {
	// Index is the 0-based position in the message list.
	Index int
	Kind  string
	Err   error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("messages[%d] (%s): %v", e.Index, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsDecodeError reports whether err is a message decoding failure.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
