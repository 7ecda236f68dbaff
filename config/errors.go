package config

import (
	"errors"
	"fmt"
)

// ErrInvalidParameter is the only error kind the simulator recognizes.
// Every precondition violation wraps it.
var ErrInvalidParameter = errors.New("invalid parameter")

// ParamError describes a rejected parameter value.
type ParamError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: %s = %v: %s", ErrInvalidParameter, e.Field, e.Value, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidParameter.
func (e *ParamError) Unwrap() error {
	return ErrInvalidParameter
}

// Invalid builds a ParamError.
func Invalid(field string, value any, reason string) error {
	return &ParamError{Field: field, Value: value, Reason: reason}
}
