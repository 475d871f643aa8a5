// Package textfmt renders plugin payloads as plain text for terminals and
// log files.
package textfmt

import (
	"strings"

	"github.com/nao1215/scanreport/internal/formatter/shape"
	"github.com/nao1215/scanreport/internal/payload"
	"github.com/nao1215/scanreport/internal/render"
)

// indent is the nesting step used for responses and parameters.
const indent = "  "

// ContentTypes renders the content-type inventory as an indented outline.
func ContentTypes() render.Formatter {
	return render.FormatterFunc(renderContentTypes)
}

func renderContentTypes(p payload.Value, ctx *render.Context) (render.Fragment, error) {
	groups, err := shape.ContentTypes(p, ctx)
	if err != nil {
		return "", err
	}

	esc := ctx.Escape
	var sb strings.Builder
	for i, g := range groups {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(esc(g.Type))
		sb.WriteString("\n")
		for _, res := range g.Responses {
			sb.WriteString(indent + "URL:    " + esc(res.URL) + "\n")
			sb.WriteString(indent + "Method: " + esc(res.Method) + "\n")
			if res.ShowParams() {
				sb.WriteString(indent + "Parameters:\n")
				for _, param := range res.Params {
					sb.WriteString(indent + indent + esc(param.Name) + " = " + esc(param.Value) + "\n")
				}
			}
		}
	}
	return render.Fragment(sb.String()), nil
}

// HealthMap renders one line per page prefixed by its state marker, then
// the statistics.
func HealthMap() render.Formatter {
	return render.FormatterFunc(renderHealthMap)
}

func renderHealthMap(p payload.Value, ctx *render.Context) (render.Fragment, error) {
	hm, err := shape.HealthMapOf(p, ctx)
	if err != nil {
		return "", err
	}

	esc := ctx.Escape
	var sb strings.Builder
	for _, e := range hm.Entries {
		sb.WriteString(ctx.StateClass(e.State))
		sb.WriteString(" ")
		sb.WriteString(esc(e.URL))
		sb.WriteString("\n")
	}
	if len(hm.Entries) > 0 {
		sb.WriteString("\n")
	}

	sb.WriteString("Stats\n")
	sb.WriteString("Total:            " + esc(hm.Total) + "\n")
	sb.WriteString("Safe:             " + esc(hm.Safe) + "\n")
	sb.WriteString("Unsafe:           " + esc(hm.Unsafe) + "\n")
	sb.WriteString("Issue percentage: " + esc(hm.IssuePercentage) + "%\n")
	return render.Fragment(sb.String()), nil
}
