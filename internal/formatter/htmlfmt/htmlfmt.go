// Package htmlfmt renders plugin payloads as HTML fragments.
//
// Fragments are built with strings.Builder. Every scan-derived string
// (URLs, content types, methods, parameter names and values) goes through
// ctx.Escape, and state names only reach the markup through ctx.StateClass,
// which never echoes unknown input.
package htmlfmt

import (
	"strings"

	"github.com/nao1215/scanreport/internal/formatter/shape"
	"github.com/nao1215/scanreport/internal/payload"
	"github.com/nao1215/scanreport/internal/render"
)

// healthMapStyle colours safe and unsafe links differently.
const healthMapStyle = `<style type="text/css">
a.safe { color: blue }
a.unsafe { color: red }
</style>
`

// ContentTypes renders the content-type inventory as nested lists.
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
	for _, g := range groups {
		sb.WriteString("<ul>\n<li>")
		sb.WriteString(esc(g.Type))
		sb.WriteString("\n<ul>\n")
		for _, res := range g.Responses {
			sb.WriteString(`<li>URL: <a href="`)
			sb.WriteString(esc(res.URL))
			sb.WriteString(`">`)
			sb.WriteString(esc(res.URL))
			sb.WriteString("</a><br/>\nMethod: ")
			sb.WriteString(esc(res.Method))
			sb.WriteString("\n")
			if res.ShowParams() {
				sb.WriteString("<ul>\n<li>Parameters:</li>\n")
				for _, param := range res.Params {
					sb.WriteString("<li>")
					sb.WriteString(esc(param.Name))
					sb.WriteString(" = ")
					sb.WriteString(esc(param.Value))
					sb.WriteString("</li>\n")
				}
				sb.WriteString("</ul>\n")
			}
			sb.WriteString("</li>\n")
		}
		sb.WriteString("</ul>\n</li>\n</ul>\n")
	}
	return render.Fragment(sb.String()), nil
}

// HealthMap renders every audited page as a coloured link followed by the
// scan statistics.
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
	sb.WriteString(healthMapStyle)
	for _, e := range hm.Entries {
		sb.WriteString(`<a class="`)
		sb.WriteString(ctx.StateClass(e.State))
		sb.WriteString(`" href="`)
		sb.WriteString(esc(e.URL))
		sb.WriteString(`">`)
		sb.WriteString(esc(e.URL))
		sb.WriteString("</a> <br/>\n")
	}

	sb.WriteString("<br/>\n<h3>Stats</h3>\n")
	writeStat(&sb, "Total", esc(hm.Total))
	writeStat(&sb, "Safe", esc(hm.Safe))
	writeStat(&sb, "Unsafe", esc(hm.Unsafe))
	sb.WriteString("<strong>Issue percentage</strong>: ")
	sb.WriteString(esc(hm.IssuePercentage))
	sb.WriteString("%\n")
	return render.Fragment(sb.String()), nil
}

func writeStat(sb *strings.Builder, label, value string) {
	sb.WriteString("<strong>")
	sb.WriteString(label)
	sb.WriteString("</strong>: ")
	sb.WriteString(value)
	sb.WriteString(" <br/>\n")
}
