package registry

import "errors"

var (
	// ErrSealed is returned when registering after the registry was sealed.
	ErrSealed = errors.New("registry is sealed")

	// ErrNilFactory is returned when registering a nil factory.
	ErrNilFactory = errors.New("nil formatter factory")

	// ErrInvalidFormat is returned when registering for a format that has
	// no generator (including format.None).
	ErrInvalidFormat = errors.New("format cannot be rendered")

	// ErrEmptyPlugin is returned when registering with an empty plugin identity.
	ErrEmptyPlugin = errors.New("empty plugin identity")
)
