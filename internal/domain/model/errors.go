package model

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrMalformedInput = errors.New("malformed input")
)

// MalformedInputError reports a schema or range violation on a request field.
type MalformedInputError struct {
	Field  string
	Reason string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input: field %s: %s", e.Field, e.Reason)
}

func (e *MalformedInputError) Unwrap() error { return ErrMalformedInput }
