package models

import (
	"errors"
	"fmt"
)

// ErrMisalignedDataset indicates the parallel sequences differ in length.
var ErrMisalignedDataset = errors.New("misaligned dataset")

// ErrInvalidCount indicates a negative, NaN or infinite count.
var ErrInvalidCount = errors.New("invalid count")

// ErrEmptyDataset indicates a nil dataset was supplied.
var ErrEmptyDataset = errors.New("no dataset")

// ValidationError describes which part of a dataset failed validation.
type ValidationError struct {
	Field  string
	Index  int // -1 when the error is about the whole field
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("invalid dataset field %q at index %d: %s: %v", e.Field, e.Index, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid dataset field %q: %s: %v", e.Field, e.Reason, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func newMisaligned(field string, got, want int) *ValidationError {
	return &ValidationError{
		Field:  field,
		Index:  -1,
		Reason: fmt.Sprintf("has %d entries, categories has %d", got, want),
		Err:    ErrMisalignedDataset,
	}
}
