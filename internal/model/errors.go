package model

import "errors"

var (
	// ErrDuplicatePlugin is returned when a plugin identity is added twice
	// to the same PluginResults.
	ErrDuplicatePlugin = errors.New("duplicate plugin identity")

	// ErrEmptyPlugin is returned when adding a result without an identity.
	ErrEmptyPlugin = errors.New("empty plugin identity")

	// ErrNoTarget is returned when a scan snapshot names no target URL.
	ErrNoTarget = errors.New("scan snapshot has no target")

	// ErrUnknownSeverity is returned when parsing an unrecognised severity.
	ErrUnknownSeverity = errors.New("unknown severity")

	// ErrInvalidTimeRange is returned when a scan finished before it started.
	ErrInvalidTimeRange = errors.New("scan finished before it started")
)
