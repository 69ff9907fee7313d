package vector

import "errors"

var (
	// ErrUnknownMode is returned when a mode name does not resolve to a
	// registered embedding mode.
	ErrUnknownMode = errors.New("unknown embedding mode")

	// ErrDimensionMismatch is returned when a vector's length does not
	// match its namespace's declared dimensionality.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
