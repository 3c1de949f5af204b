package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is the sentinel wrapped by every ConfigurationError.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrNumericalDegeneracy is the sentinel wrapped by every DegeneracyError.
	ErrNumericalDegeneracy = errors.New("numerical degeneracy")
)

// ConfigurationError reports an invalid profile, assumption set, or run option.
// Field names the offending input using its config key (e.g. "profile.retirement_age").
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// NewConfigurationError builds a ConfigurationError with a formatted reason.
func NewConfigurationError(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// DegeneracyError reports a non-finite intermediate value. Trial is -1 for
// deterministic runs.
type DegeneracyError struct {
	Quantity  string
	YearIndex int
	Trial     int
}

func (e *DegeneracyError) Error() string {
	if e.Trial >= 0 {
		return fmt.Sprintf("non-finite %s in year %d of trial %d", e.Quantity, e.YearIndex, e.Trial)
	}
	return fmt.Sprintf("non-finite %s in year %d", e.Quantity, e.YearIndex)
}

func (e *DegeneracyError) Unwrap() error { return ErrNumericalDegeneracy }
