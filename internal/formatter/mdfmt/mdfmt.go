// Package mdfmt renders plugin payloads as GitHub-flavored Markdown.
//
// Design decision: We build fragments with nao1215/markdown, the same
// builder the Markdown report uses, so tables and code blocks match the
// surrounding document. The builder does not escape. Link text and table
// cells go through ctx.Escape and link targets through escape.MarkdownURL.
package mdfmt

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/scanreport/internal/escape"
	"github.com/nao1215/scanreport/internal/formatter/shape"
	"github.com/nao1215/scanreport/internal/payload"
	"github.com/nao1215/scanreport/internal/render"
)

// ContentTypes renders the content-type inventory as nested bullet lists.
func ContentTypes() render.Formatter {
	return render.FormatterFunc(renderContentTypes)
}

func renderContentTypes(p payload.Value, ctx *render.Context) (render.Fragment, error) {
	groups, err := shape.ContentTypes(p, ctx)
	if err != nil {
		return "", err
	}

	esc := ctx.Escape
	md := markdown.NewMarkdown(io.Discard)
	for _, g := range groups {
		md.PlainText("**" + esc(g.Type) + "**")
		md.PlainText("")
		for _, res := range g.Responses {
			md.PlainText("- URL: " + link(ctx, res.URL) + ", Method: " + esc(res.Method))
			if !res.ShowParams() {
				continue
			}
			md.PlainText("  - Parameters:")
			for _, param := range res.Params {
				md.PlainText("    - " + esc(param.Name) + " = " + esc(param.Value))
			}
		}
		md.PlainText("")
	}
	return render.Fragment(md.String()), nil
}

// HealthMap renders the pages as a table, the statistics as a second table
// and, when the counts are integers, a safe/unsafe pie chart.
func HealthMap() render.Formatter {
	return render.FormatterFunc(renderHealthMap)
}

func renderHealthMap(p payload.Value, ctx *render.Context) (render.Fragment, error) {
	hm, err := shape.HealthMapOf(p, ctx)
	if err != nil {
		return "", err
	}

	esc := ctx.Escape
	md := markdown.NewMarkdown(io.Discard)

	if len(hm.Entries) > 0 {
		rows := make([][]string, 0, len(hm.Entries))
		for _, e := range hm.Entries {
			rows = append(rows, []string{ctx.StateClass(e.State), link(ctx, e.URL)})
		}
		md.Table(markdown.TableSet{
			Header: []string{"State", "URL"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	md.PlainText("**Stats**")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Total", esc(hm.Total)},
			{"Safe", esc(hm.Safe)},
			{"Unsafe", esc(hm.Unsafe)},
			{"Issue percentage", esc(hm.IssuePercentage) + "%"},
		},
	})
	md.PlainText("")

	if chart, ok := pieChart(hm); ok {
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart)
		md.PlainText("")
	}
	return render.Fragment(md.String()), nil
}

// pieChart draws safe against unsafe pages. Statistics that are not plain
// non-negative integers are rendered in the table only.
func pieChart(hm shape.HealthMap) (string, bool) {
	safe, err := strconv.ParseUint(hm.Safe, 10, 64)
	if err != nil {
		return "", false
	}
	unsafe, err := strconv.ParseUint(hm.Unsafe, 10, 64)
	if err != nil || safe+unsafe == 0 {
		return "", false
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Page Health"),
		piechart.WithShowData(true),
	)
	chart.LabelAndIntValue("Safe", safe)
	chart.LabelAndIntValue("Unsafe", unsafe)
	return chart.String(), true
}

// link renders url as a link to itself. The text is escaped as Markdown
// and the target percent-encoded, so neither can close the link early.
func link(ctx *render.Context, url string) string {
	return "[" + ctx.Escape(url) + "](" + escape.MarkdownURL(url) + ")"
}
