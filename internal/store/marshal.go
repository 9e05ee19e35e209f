package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/fsmcheck/internal/canon"
)

// marshalErrors converts a mismatch list to canonical JSON TEXT.
func marshalErrors(errs []string) (string, error) {
	if errs == nil {
		errs = []string{}
	}
	data, err := canon.Marshal(errs)
	if err != nil {
		return "", fmt.Errorf("marshal errors: %w", err)
	}
	return string(data), nil
}

// unmarshalErrors parses JSON TEXT into a mismatch list.
// Returns nil for an empty list.
func unmarshalErrors(data string) ([]string, error) {
	if data == "" || data == "[]" {
		return nil, nil
	}
	var errs []string
	if err := json.Unmarshal([]byte(data), &errs); err != nil {
		return nil, fmt.Errorf("unmarshal errors: %w", err)
	}
	return errs, nil
}
