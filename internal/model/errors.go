package model

import (
	"errors"
	"fmt"
)

// ErrInvalidGoalInput matches every *InvalidGoalInputError via errors.Is.
var ErrInvalidGoalInput = errors.New("invalid goal input")

// InvalidGoalInputError reports a goal field that is missing or malformed.
type InvalidGoalInputError struct {
	Field  string
	Reason string
	Cause  error
}

func (e *InvalidGoalInputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid goal input: %s %s: %v", e.Field, e.Reason, e.Cause)
	}
	return fmt.Sprintf("invalid goal input: %s %s", e.Field, e.Reason)
}

func (e *InvalidGoalInputError) Unwrap() error {
	return e.Cause
}

// Is lets callers test for the sentinel without unwrapping by hand.
func (e *InvalidGoalInputError) Is(target error) bool {
	return target == ErrInvalidGoalInput
}

func invalidField(field, reason string, cause error) *InvalidGoalInputError {
	return &InvalidGoalInputError{Field: field, Reason: reason, Cause: cause}
}
