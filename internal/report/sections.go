package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/nao1215/scanreport/internal/format"
	"github.com/nao1215/scanreport/internal/model"
	"github.com/nao1215/scanreport/internal/payload"
	"github.com/nao1215/scanreport/internal/render"
)

// DiagnosticKind classifies why a plugin section was replaced.
type DiagnosticKind string

const (
	// DiagnosticUnregistered means no formatter is bound for the plugin in
	// the document's format.
	DiagnosticUnregistered DiagnosticKind = "unregistered"

	// DiagnosticMalformed means the formatter rejected the payload's shape.
	DiagnosticMalformed DiagnosticKind = "malformed"

	// DiagnosticFailed means the formatter returned another error or panicked.
	DiagnosticFailed DiagnosticKind = "failed"
)

// Diagnostic records a plugin section that could not be rendered.
type Diagnostic struct {
	Plugin  string         `json:"plugin" yaml:"plugin"`
	Kind    DiagnosticKind `json:"kind" yaml:"kind"`
	Message string         `json:"message" yaml:"message"`

	// Err is the underlying error, for errors.Is checks by callers.
	Err error `json:"-" yaml:"-"`
}

// ErrInvalidFragment is reported for a section whose formatter returned
// text that does not parse in a machine-readable document format.
var ErrInvalidFragment = errors.New("formatter produced an invalid fragment")

// section is one plugin's slot in a document. Exactly one of Fragment and
// Diagnostic is meaningful.
type section struct {
	Plugin     string
	Title      string
	Fragment   render.Fragment
	Diagnostic *Diagnostic
}

// failed reports whether the section needs a placeholder.
func (s section) failed() bool {
	return s.Diagnostic != nil
}

// renderSections resolves and runs a formatter for every plugin result, in
// result order. It never fails: problems become per-section diagnostics
// which are also logged.
func (g *baseGenerator) renderSections(results *model.PluginResults) ([]section, []Diagnostic) {
	if results == nil {
		return nil, nil
	}

	// A Caser keeps state, so each call gets its own.
	caser := cases.Title(language.English)

	sections := make([]section, 0, results.Len())
	var diags []Diagnostic
	for plugin, p := range results.All() {
		sec := section{
			Plugin: plugin,
			Title:  caser.String(strings.ReplaceAll(plugin, "_", " ")),
		}

		frag, err := g.renderOne(plugin, p)
		if err != nil {
			d := newDiagnostic(plugin, err)
			g.logger.Warn("plugin section replaced by placeholder",
				"plugin", plugin,
				"format", g.format.String(),
				"kind", string(d.Kind),
				"error", err,
			)
			sec.Diagnostic = &d
			diags = append(diags, d)
		} else {
			sec.Fragment = frag
		}
		sections = append(sections, sec)
	}
	return sections, diags
}

func (g *baseGenerator) renderOne(plugin string, p payload.Value) (render.Fragment, error) {
	f, ok := g.registry.Resolve(g.format, plugin)
	if !ok {
		return "", &render.UnregisteredError{Format: g.format, Plugin: plugin}
	}
	frag, err := render.Invoke(f, p, render.NewContext(g.format, plugin))
	if err != nil {
		return "", err
	}
	if err := checkFragment(g.format, frag); err != nil {
		return "", err
	}
	return frag, nil
}

// checkFragment rejects JSON and YAML fragments that would not nest under
// their plugin key. Markup formats embed fragments as text and are not checked.
func checkFragment(f format.Format, frag render.Fragment) error {
	switch f {
	case format.JSON:
		if !json.Valid([]byte(frag)) {
			return fmt.Errorf("%w: not valid json", ErrInvalidFragment)
		}
	case format.YAML:
		var n yaml.Node
		if err := yaml.Unmarshal([]byte(frag), &n); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidFragment, err)
		}
	}
	return nil
}

func newDiagnostic(plugin string, err error) Diagnostic {
	d := Diagnostic{Plugin: plugin, Message: err.Error(), Err: err}
	switch {
	case errors.Is(err, render.ErrUnregisteredFormatter):
		d.Kind = DiagnosticUnregistered
	case errors.Is(err, render.ErrMalformedPayload):
		d.Kind = DiagnosticMalformed
	default:
		d.Kind = DiagnosticFailed
	}
	return d
}

// placeholderText is the human-readable explanation shown in place of a
// plugin section. Callers escape it for their format.
func placeholderText(f string, d *Diagnostic) string {
	switch d.Kind {
	case DiagnosticUnregistered:
		return "No " + f + " formatter is available for plugin " + d.Plugin + "; its results are omitted."
	case DiagnosticMalformed:
		return "The results of plugin " + d.Plugin + " could not be rendered: " + d.Message
	default:
		return "Rendering the results of plugin " + d.Plugin + " failed: " + d.Message
	}
}
