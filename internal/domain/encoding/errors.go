package encoding

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrUnknownCategory = errors.New("unknown category")
)

// UnknownCategoryError reports a categorical value absent from the fitted
// class set. It must surface to the caller; silently defaulting would let
// training and inference disagree about what a code means.
type UnknownCategoryError struct {
	Field string
	Value string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown category: field %s: value %q not seen at fit time", e.Field, e.Value)
}

func (e *UnknownCategoryError) Unwrap() error { return ErrUnknownCategory }
