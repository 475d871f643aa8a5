package render

import (
	"errors"
	"fmt"

	"github.com/nao1215/scanreport/internal/format"
	"github.com/nao1215/scanreport/internal/payload"
)

var (
	// ErrUnregisteredFormatter means no formatter is bound for a
	// (format, plugin) pair. It is never fatal to report generation.
	ErrUnregisteredFormatter = errors.New("no formatter registered")

	// ErrMalformedPayload means a formatter received a payload lacking the
	// structure it renders. It is the same sentinel payload accessors use,
	// so accessor errors satisfy errors.Is without re-wrapping.
	ErrMalformedPayload = payload.ErrMalformed

	// ErrFormatterPanic means a formatter panicked while rendering.
	ErrFormatterPanic = errors.New("formatter panicked")
)

// UnregisteredError names the (format, plugin) pair that has no binding.
type UnregisteredError struct {
	Format format.Format
	Plugin string
}

// Error implements the error interface.
func (e *UnregisteredError) Error() string {
	return fmt.Sprintf("%s for plugin %q in format %s", ErrUnregisteredFormatter, e.Plugin, e.Format)
}

// Is reports whether target is ErrUnregisteredFormatter.
func (e *UnregisteredError) Is(target error) bool {
	return target == ErrUnregisteredFormatter
}

// MalformedPayloadError records which plugin's payload could not be
// rendered and where the shape diverged.
type MalformedPayloadError struct {
	Plugin string
	Path   string
	Err    error
}

// Error implements the error interface.
func (e *MalformedPayloadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("plugin %q: %v", e.Plugin, e.Err)
	}
	return fmt.Sprintf("plugin %q at %s: %v", e.Plugin, e.Path, e.Err)
}

// Unwrap returns the underlying shape error.
func (e *MalformedPayloadError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrMalformedPayload, even when the wrapped
// error came from somewhere other than a payload accessor.
func (e *MalformedPayloadError) Is(target error) bool {
	return target == ErrMalformedPayload
}

// Malformed wraps err as a MalformedPayloadError for ctx's plugin.
// path locates the offending node, e.g. "map[2]" or "text/html[0].url".
func Malformed(ctx *Context, path string, err error) error {
	plugin := ""
	if ctx != nil {
		plugin = ctx.Plugin
	}
	return &MalformedPayloadError{Plugin: plugin, Path: path, Err: err}
}
