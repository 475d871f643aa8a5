// Package datafmt renders plugin payloads for the structured report
// formats (JSON and YAML).
//
// Structured formats need no per-plugin layout: the payload itself is the
// fragment. Dump serializes any payload, so it is registered as the
// format-wide fallback and every plugin, including third-party ones, gets
// a section without a dedicated formatter.
package datafmt

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/nao1215/scanreport/internal/format"
	"github.com/nao1215/scanreport/internal/payload"
	"github.com/nao1215/scanreport/internal/render"
)

// Dump returns a formatter that serializes a payload as JSON or YAML,
// depending on the context's format, keeping mapping order.
func Dump() render.Formatter {
	return render.FormatterFunc(dump)
}

func dump(p payload.Value, ctx *render.Context) (render.Fragment, error) {
	switch ctx.Format {
	case format.JSON:
		data, err := p.MarshalJSON()
		if err != nil {
			return "", fmt.Errorf("failed to encode %s payload as json: %w", ctx.Plugin, err)
		}
		return render.Fragment(data), nil
	case format.YAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(p.YAMLNode()); err != nil {
			return "", fmt.Errorf("failed to encode %s payload as yaml: %w", ctx.Plugin, err)
		}
		if err := enc.Close(); err != nil {
			return "", fmt.Errorf("failed to encode %s payload as yaml: %w", ctx.Plugin, err)
		}
		return render.Fragment(buf.String()), nil
	default:
		return "", fmt.Errorf("%w: structured dump cannot produce %s", render.ErrUnregisteredFormatter, ctx.Format)
	}
}
