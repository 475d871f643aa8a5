package render

import (
	"github.com/nao1215/scanreport/internal/escape"
	"github.com/nao1215/scanreport/internal/format"
	"github.com/nao1215/scanreport/internal/payload"
)

// Fragment is rendered content in a target format. Generators embed it
// verbatim, so formatters are responsible for escaping what they write.
type Fragment string

// Formatter renders one plugin's payload in one format.
type Formatter interface {
	Render(p payload.Value, ctx *Context) (Fragment, error)
}

// FormatterFunc adapts an ordinary function to the Formatter interface.
type FormatterFunc func(p payload.Value, ctx *Context) (Fragment, error)

// Render calls f(p, ctx).
func (f FormatterFunc) Render(p payload.Value, ctx *Context) (Fragment, error) {
	return f(p, ctx)
}

// Factory creates a Formatter. Registries store factories rather than
// instances so every render call can get a fresh, unshared formatter.
type Factory func() Formatter

// Singleton returns a Factory that always yields f. It suits stateless
// formatters such as FormatterFunc values.
func Singleton(f Formatter) Factory {
	return func() Formatter { return f }
}

// Context carries the helpers a formatter of a given format may use.
type Context struct {
	// Format is the output format being produced.
	Format format.Format

	// Plugin is the identity of the plugin whose payload is rendered.
	Plugin string

	// Escape neutralizes untrusted text for Format. Every crawled URL,
	// parameter, header or other scan-derived string must pass through it.
	Escape escape.Func

	// StateClass maps a page state such as "safe" or "unsafe" to the
	// format's presentation token (a CSS class, a text marker).
	StateClass func(state string) string
}

// NewContext returns the Context for rendering plugin's payload in f.
func NewContext(f format.Format, plugin string) *Context {
	return &Context{
		Format:     f,
		Plugin:     plugin,
		Escape:     escape.For(f),
		StateClass: stateClassifier(f),
	}
}

// Page states understood by the shared classifiers.
const (
	StateSafe   = "safe"
	StateUnsafe = "unsafe"
)

// stateClassifier returns the presentation helper for page states in f.
// Unknown states map to a neutral token instead of being echoed back, so a
// plugin-supplied state can never inject markup.
func stateClassifier(f format.Format) func(string) string {
	var safe, unsafe, unknown string
	switch f {
	case format.HTML:
		safe, unsafe, unknown = "safe", "unsafe", "unknown"
	case format.Markdown:
		safe, unsafe, unknown = "✅", "⚠️", "❔"
	case format.Text:
		safe, unsafe, unknown = "[ OK ]", "[VULN]", "[ ?? ]"
	default:
		safe, unsafe, unknown = StateSafe, StateUnsafe, "unknown"
	}

	return func(state string) string {
		switch state {
		case StateSafe:
			return safe
		case StateUnsafe:
			return unsafe
		default:
			return unknown
		}
	}
}
