package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/scanreport/internal/escape"
	"github.com/nao1215/scanreport/internal/format"
	"github.com/nao1215/scanreport/internal/model"
	"github.com/nao1215/scanreport/internal/registry"
)

// MarkdownGenerator produces GitHub-flavored Markdown.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Tables, lists and code blocks without hand-counted pipes
// 2. GitHub alerts for the severity call-out
// 3. Mermaid charts for the severity distribution
type MarkdownGenerator struct {
	baseGenerator
}

// NewMarkdownGenerator returns a MarkdownGenerator resolving formatters from reg.
func NewMarkdownGenerator(reg *registry.Registry, opts ...Option) *MarkdownGenerator {
	return &MarkdownGenerator{baseGenerator: newBaseGenerator(format.Markdown, reg, opts)}
}

// Generate implements Generator.
func (g *MarkdownGenerator) Generate(summary *model.ScanSummary, results *model.PluginResults) (*Document, error) {
	summary = orEmpty(summary)
	sections, diags := g.renderSections(results)

	md := markdown.NewMarkdown(io.Discard)
	g.writeHeader(md, summary)
	g.writeSummary(md, summary)
	g.writeIssues(md, summary)
	g.writePlugins(md, sections)
	g.writeFooter(md)

	return &Document{Format: g.format, Content: []byte(md.String()), Diagnostics: diags}, nil
}

func (g *MarkdownGenerator) writeHeader(md *markdown.Markdown, summary *model.ScanSummary) {
	md.H1(escape.Markdown(g.title))
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Target", escape.Markdown(summary.Target)},
			{"Started", formatTime(summary.StartedAt)},
			{"Finished", formatTime(summary.FinishedAt)},
			{"Duration", summary.Duration.String()},
			{"Pages Audited", strconv.Itoa(summary.PagesAudited)},
		},
	})
	md.PlainText("")
}

func (g *MarkdownGenerator) writeSummary(md *markdown.Markdown, summary *model.ScanSummary) {
	md.H2("Severity Summary")
	md.PlainText("")

	rows := make([][]string, 0, len(model.Severities())+1)
	for _, sev := range model.Severities() {
		rows = append(rows, []string{severityEmoji(sev) + " " + sev.String(), strconv.Itoa(summary.Count(sev))})
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(summary.TotalIssues()) + "**"})
	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	if summary.HasIssues() {
		g.writePieChart(md, summary)
	}
	g.writeAlert(md, summary)
}

// writePieChart writes a mermaid pie chart for the severity distribution.
func (g *MarkdownGenerator) writePieChart(md *markdown.Markdown, summary *model.ScanSummary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Issue Severity Distribution"),
		piechart.WithShowData(true),
	)
	for _, sev := range model.Severities() {
		if n := summary.Count(sev); n > 0 {
			chart.LabelAndIntValue(sev.String(), uint64(n))
		}
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert matching the most severe issue.
func (g *MarkdownGenerator) writeAlert(md *markdown.Markdown, summary *model.ScanSummary) {
	switch {
	case summary.Count(model.SeverityCritical) > 0:
		md.Cautionf("Critical issues detected! %d critical issue(s) require immediate attention.",
			summary.Count(model.SeverityCritical))
	case summary.Count(model.SeverityHigh) > 0:
		md.Warningf("High severity issues detected. %d issue(s) should be fixed before release.",
			summary.Count(model.SeverityHigh))
	case summary.Count(model.SeverityMedium) > 0:
		md.Importantf("Medium severity issues found. %d issue(s) need review.",
			summary.Count(model.SeverityMedium))
	case summary.HasIssues():
		md.Note("Only low severity and informational issues detected.")
	default:
		md.Tip("No issues were found.")
	}
	md.PlainText("")
}

func (g *MarkdownGenerator) writeIssues(md *markdown.Markdown, summary *model.ScanSummary) {
	md.H2("Issues")
	md.PlainText("")
	if !summary.HasIssues() {
		md.PlainText("No issues were found.")
		md.PlainText("")
		return
	}

	for _, sev := range model.Severities() {
		issues := summary.IssuesBySeverity(sev)
		if len(issues) == 0 {
			continue
		}
		md.H3(severityEmoji(sev) + " " + sev.String())
		md.PlainText("")

		rows := make([][]string, 0, len(issues))
		for _, issue := range issues {
			rows = append(rows, []string{
				escape.Markdown(truncateString(issue.Name, 60)),
				escape.Markdown(truncateString(issue.Location(), 60)),
				escape.Markdown(orDash(truncateString(issue.Remedy, 60))),
			})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Name", "Location", "Remedy"},
			Rows:   rows,
		})
		md.PlainText("")

		for _, issue := range issues {
			if issue.Description != "" {
				md.Details(escape.Markdown(issue.Name), escape.Markdown(issue.Description))
			}
		}
		md.PlainText("")
	}
}

func (g *MarkdownGenerator) writePlugins(md *markdown.Markdown, sections []section) {
	if len(sections) == 0 {
		return
	}

	md.H2("Plugins")
	md.PlainText("")
	for _, sec := range sections {
		md.H3(escape.Markdown(sec.Title))
		md.PlainText("")
		if sec.failed() {
			md.Warningf("%s", escape.Markdown(placeholderText("Markdown", sec.Diagnostic)))
		} else {
			md.PlainText(string(sec.Fragment))
		}
		md.PlainText("")
	}
}

func (g *MarkdownGenerator) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*" + escape.Markdown(g.footer()) + "*")
}

// severityEmoji returns the colour marker used in Markdown headings.
func severityEmoji(sev model.Severity) string {
	switch sev {
	case model.SeverityCritical:
		return "🔴"
	case model.SeverityHigh:
		return "🟠"
	case model.SeverityMedium:
		return "🟡"
	case model.SeverityLow:
		return "🔵"
	default:
		return "⚪"
	}
}

// truncateString shortens s to maxLen runes with an ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
