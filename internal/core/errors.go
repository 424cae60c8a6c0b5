package core

import (
	"errors"
	"fmt"
)

// ErrUnknownAlgorithm is wrapped by lookups of unregistered algorithm names.
var ErrUnknownAlgorithm = errors.New("unknown algorithm")

// ConfigurationError reports invalid caller input: unknown algorithm, bad
// parameter, non-positive window, zero-area image.
type ConfigurationError struct {
	Field  string
	Reason string
	Err    error
}

func NewConfigurationError(field, reason string) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: reason}
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return "configuration error: " + e.Reason
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// IsConfigurationError reports whether err wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// InvariantError carries the diagnostic of an internal consistency failure.
// It indicates a bug, never bad input.
type InvariantError struct {
	Message string
}

func (e *InvariantError) Error() string {
	return "internal invariant violated: " + e.Message
}

// Invariant panics with an InvariantError. Binarizer recovers it at the call
// boundary so a single operation aborts without producing pixels.
func Invariant(format string, args ...any) {
	panic(&InvariantError{Message: fmt.Sprintf(format, args...)})
}

// RecoverInvariant converts a recovered InvariantError into err. Other panics
// are re-raised. Use as: defer core.RecoverInvariant(&err).
func RecoverInvariant(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if ie, ok := r.(*InvariantError); ok {
		*err = ie
		return
	}
	panic(r)
}
