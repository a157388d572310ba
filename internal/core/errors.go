package core

import (
	"errors"
	"fmt"
)

// ErrMalformedInput matches every *MalformedInputError via errors.Is.
var ErrMalformedInput = errors.New("malformed input")

// MalformedInputError reports the first offending row of an ingested
// source. Row is 1-based over data rows; 0 means the header or document.
type MalformedInputError struct {
	Row    int
	Field  string
	Reason string
	Err    error
}

func (e *MalformedInputError) Error() string {
	switch {
	case e.Row > 0 && e.Field != "":
		return fmt.Sprintf("malformed input at row %d, field %q: %s", e.Row, e.Field, e.Reason)
	case e.Row > 0:
		return fmt.Sprintf("malformed input at row %d: %s", e.Row, e.Reason)
	case e.Field != "":
		return fmt.Sprintf("malformed input, field %q: %s", e.Field, e.Reason)
	default:
		return "malformed input: " + e.Reason
	}
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

func (e *MalformedInputError) Is(target error) bool {
	return target == ErrMalformedInput
}
