// Package formatter wires the built-in plugin formatters into a registry.
//
// Each output format has its own subpackage (htmlfmt, textfmt, mdfmt,
// datafmt); payload decoding they share lives in shape. This package only
// knows which formatter serves which (format, plugin) pair.
package formatter

import (
	"errors"

	"github.com/nao1215/scanreport/internal/format"
	"github.com/nao1215/scanreport/internal/formatter/datafmt"
	"github.com/nao1215/scanreport/internal/formatter/htmlfmt"
	"github.com/nao1215/scanreport/internal/formatter/mdfmt"
	"github.com/nao1215/scanreport/internal/formatter/textfmt"
	"github.com/nao1215/scanreport/internal/model"
	"github.com/nao1215/scanreport/internal/registry"
	"github.com/nao1215/scanreport/internal/render"
)

// builtin lists the plugin-specific bindings shipped with scanreport.
var builtin = []struct {
	format  format.Format
	plugin  string
	factory render.Factory
}{
	{format.HTML, model.PluginContentTypes, htmlfmt.ContentTypes},
	{format.HTML, model.PluginHealthMap, htmlfmt.HealthMap},
	{format.Text, model.PluginContentTypes, textfmt.ContentTypes},
	{format.Text, model.PluginHealthMap, textfmt.HealthMap},
	{format.Markdown, model.PluginContentTypes, mdfmt.ContentTypes},
	{format.Markdown, model.PluginHealthMap, mdfmt.HealthMap},
}

// RegisterBuiltins adds the built-in formatters to r: the per-plugin
// document formatters and the structured dump as the JSON and YAML
// fallback. Call it before any custom registrations that should override
// a built-in pair.
func RegisterBuiltins(r *registry.Registry) error {
	var errs []error
	for _, b := range builtin {
		errs = append(errs, r.Register(b.format, b.plugin, b.factory))
	}
	for _, f := range []format.Format{format.JSON, format.YAML} {
		errs = append(errs, r.RegisterFallback(f, datafmt.Dump))
	}
	return errors.Join(errs...)
}

// NewDefaultRegistry returns an unsealed registry holding the built-ins.
func NewDefaultRegistry() (*registry.Registry, error) {
	r := registry.New()
	if err := RegisterBuiltins(r); err != nil {
		return nil, err
	}
	return r, nil
}
