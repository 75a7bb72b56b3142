package trade

import (
	"errors"
	"fmt"
)

// ErrInvalidFill is matched by every InvalidFillError.
var ErrInvalidFill = errors.New("invalid fill")

// InvalidFillError reports a fill rejected at ingestion.
type InvalidFillError struct {
	Field  string
	Value  any
	Reason string
}

func (e *InvalidFillError) Error() string {
	return fmt.Sprintf("invalid fill: %s=%v: %s", e.Field, e.Value, e.Reason)
}

func (e *InvalidFillError) Is(target error) bool { return target == ErrInvalidFill }

func invalid(field string, value any, reason string) error {
	return &InvalidFillError{Field: field, Value: value, Reason: reason}
}
