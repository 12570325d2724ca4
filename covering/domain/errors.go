package domain

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidConfig is returned when configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrTooLarge is returned when the requested parameters would require
	// enumerating more interactions or interaction sets than the configured
	// construction limits allow.
	ErrTooLarge = errors.New("parameter space too large")

	// ErrInvariant is returned when the engine detects that its internal
	// bookkeeping has become inconsistent. State is unreliable after this
	// error; callers must abandon the array.
	ErrInvariant = errors.New("internal invariant violated")

	// ErrBudgetExceeded is returned when generation hits the configured row
	// budget before all problems are solved.
	ErrBudgetExceeded = errors.New("row budget exceeded")

	// ErrRowMismatch is returned when a row dump doesn't match the declared
	// factor structure.
	ErrRowMismatch = errors.New("row does not match factor structure")
)
