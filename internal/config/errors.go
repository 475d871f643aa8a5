package config

import "errors"

// Configuration validation errors.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoSnapshot is returned when no scan snapshot file is given.
	ErrNoSnapshot = errors.New("no scan snapshot specified")

	// ErrNoFormat is returned when no report format is selected.
	ErrNoFormat = errors.New("no report format selected")

	// ErrNotRenderable is returned when "none" is requested as a document
	// format. It is only meaningful as a notification attachment choice.
	ErrNotRenderable = errors.New("format cannot be rendered as a document")

	// ErrDuplicateFormat is returned when a format is selected twice.
	ErrDuplicateFormat = errors.New("report format selected more than once")

	// ErrInvalidWidth is returned when the text report width is too narrow.
	ErrInvalidWidth = errors.New("invalid text width: must be at least 40")

	// ErrStdoutMultipleFormats is returned when several documents would be
	// printed to standard output at once.
	ErrStdoutMultipleFormats = errors.New("only one format can be written to standard output")

	// ErrInvalidExcludePattern is returned when the content-type exclusion
	// pattern is not a valid regular expression.
	ErrInvalidExcludePattern = errors.New("invalid content-type exclude pattern")
)
