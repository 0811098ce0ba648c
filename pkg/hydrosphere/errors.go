package hydrosphere

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration is returned when a parameter bundle can not
	// describe a runnable column.
	ErrInvalidConfiguration = errors.New("hydrosphere: invalid configuration")

	// ErrNumericDivergence marks a run whose profile stopped being finite.
	ErrNumericDivergence = errors.New("hydrosphere: profile diverged (NaN or Inf detected)")

	// ErrStopped is the cause recorded when a progress observer asks the
	// driver to stop early without giving a reason of its own.
	ErrStopped = errors.New("hydrosphere: run stopped by observer")
)

// ConfigError names the parameter that violated its bound.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v: %s %s", ErrInvalidConfiguration, e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfiguration
}

func invalid(field, format string, args ...any) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
