package payload

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed is returned when a value does not have the structure the
	// caller expects (wrong kind, missing key).
	ErrMalformed = errors.New("malformed payload")

	// ErrUnsupported is returned by From when a Go value has no payload
	// representation (channels, funcs, structs, maps with non-string keys).
	ErrUnsupported = errors.New("unsupported value type")
)

// ShapeError describes where and how a value diverged from the expected shape.
type ShapeError struct {
	// Path is the key or index that was being accessed, if any.
	Path string

	// Want is the kind the caller expected.
	Want Kind

	// Got is the kind that was found.
	Got Kind

	// Missing is true when a mapping key was absent.
	Missing bool
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	if e.Missing {
		return fmt.Sprintf("%s: missing key %q", ErrMalformed, e.Path)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %q: expected %s, got %s", ErrMalformed, e.Path, e.Want, e.Got)
	}
	return fmt.Sprintf("%s: expected %s, got %s", ErrMalformed, e.Want, e.Got)
}

// Is reports whether target is ErrMalformed.
func (e *ShapeError) Is(target error) bool {
	return target == ErrMalformed
}
