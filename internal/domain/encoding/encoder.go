// Package encoding maps categorical field values to dense integer codes.
//
// An Encoder is fit once on the training corpus and loaded read-only at
// inference time. Code identity is meaningless; code stability between
// training and inference is the whole contract, so codes are assigned in
// sorted order of the distinct observed values. A value unseen at fit time
// is unrepresentable and fails with ErrUnknownCategory rather than mapping
// to a default code.
package encoding

import (
	"fmt"
	"sort"
)

// Encoder is a fitted value-to-code mapping for one categorical field.
// It is immutable after construction and safe for concurrent readers.
type Encoder struct {
	field   string
	classes []string
	codes   map[string]int
}

// Fit builds an Encoder from the observed values of a categorical field.
// Duplicates are collapsed; codes are assigned in sorted order starting at 0.
func Fit(field string, values []string) *Encoder {
	seen := make(map[string]struct{}, len(values))
	classes := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		classes = append(classes, v)
	}
	sort.Strings(classes)
	return fromSorted(field, classes)
}

// FromClasses rebuilds an Encoder from a persisted class list. The list must
// be the exact sorted class set produced by Fit at training time.
func FromClasses(field string, classes []string) (*Encoder, error) {
	if len(classes) == 0 {
		return nil, fmt.Errorf("encoder %s: empty class list", field)
	}
	if !sort.StringsAreSorted(classes) {
		return nil, fmt.Errorf("encoder %s: class list not sorted", field)
	}
	cp := make([]string, len(classes))
	copy(cp, classes)
	return fromSorted(field, cp), nil
}

func fromSorted(field string, classes []string) *Encoder {
	codes := make(map[string]int, len(classes))
	for i, c := range classes {
		codes[c] = i
	}
	return &Encoder{field: field, classes: classes, codes: codes}
}

// Encode returns the integer code for value. Values absent from the fitted
// class set fail with an UnknownCategoryError.
func (e *Encoder) Encode(value string) (int, error) {
	code, ok := e.codes[value]
	if !ok {
		return 0, &UnknownCategoryError{Field: e.field, Value: value}
	}
	return code, nil
}

// Field returns the categorical field name this encoder was fit for.
func (e *Encoder) Field() string { return e.field }

// Classes returns a copy of the sorted class set.
func (e *Encoder) Classes() []string {
	cp := make([]string, len(e.classes))
	copy(cp, e.classes)
	return cp
}

// Len returns the number of distinct classes.
func (e *Encoder) Len() int { return len(e.classes) }
