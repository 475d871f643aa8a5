// Package format enumerates the report output formats.
package format

import (
	"errors"
	"fmt"
	"strings"
)

// Format identifies a report output format and, with it, the family of
// plugin formatters that apply.
type Format string

// Output formats.
const (
	// HTML is a standalone markup document.
	HTML Format = "html"
	// Text is plain text for terminals and log files.
	Text Format = "text"
	// Markdown is GitHub Flavored Markdown.
	Markdown Format = "markdown"
	// JSON is a structured-data dump.
	JSON Format = "json"
	// YAML is a structured-data dump.
	YAML Format = "yaml"
	// None means "no report". It is a valid choice where a report is
	// optional (e-mail attachments) but never has a generator.
	None Format = "none"
)

// ErrUnknownFormat is returned by Parse for unrecognised names.
var ErrUnknownFormat = errors.New("unknown report format")

// aliases maps accepted spellings onto canonical formats.
var aliases = map[string]Format{
	"html":     HTML,
	"htm":      HTML,
	"text":     Text,
	"txt":      Text,
	"markdown": Markdown,
	"md":       Markdown,
	"json":     JSON,
	"yaml":     YAML,
	"yml":      YAML,
	"none":     None,
}

// All returns every renderable format in a stable order.
func All() []Format {
	return []Format{HTML, Text, Markdown, JSON, YAML}
}

// Parse converts a user-supplied name (case-insensitive, common file
// extensions accepted) into a Format.
func Parse(s string) (Format, error) {
	if f, ok := aliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w %q; valid formats: html, text, markdown, json, yaml, none", ErrUnknownFormat, s)
}

// String returns the canonical name.
func (f Format) String() string {
	return string(f)
}

// IsValid reports whether f is a known format, including None.
func (f Format) IsValid() bool {
	switch f {
	case HTML, Text, Markdown, JSON, YAML, None:
		return true
	default:
		return false
	}
}

// Renderable reports whether a document can be generated in f.
func (f Format) Renderable() bool {
	return f.IsValid() && f != None
}

// Extension returns the file extension for documents in f, without the dot.
func (f Format) Extension() string {
	switch f {
	case HTML:
		return "html"
	case Text:
		return "txt"
	case Markdown:
		return "md"
	case JSON:
		return "json"
	case YAML:
		return "yaml"
	default:
		return ""
	}
}

// MediaType returns the MIME type used when a document is attached to a message.
func (f Format) MediaType() string {
	switch f {
	case HTML:
		return "text/html; charset=utf-8"
	case Markdown:
		return "text/markdown; charset=utf-8"
	case JSON:
		return "application/json"
	case YAML:
		return "application/yaml"
	default:
		return "text/plain; charset=utf-8"
	}
}
