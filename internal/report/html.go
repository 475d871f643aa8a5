package report

import (
	"strconv"
	"strings"

	"github.com/nao1215/scanreport/internal/escape"
	"github.com/nao1215/scanreport/internal/format"
	"github.com/nao1215/scanreport/internal/model"
	"github.com/nao1215/scanreport/internal/registry"
)

// timeLayout formats scan timestamps in every document format.
const timeLayout = "2006-01-02 15:04:05 MST"

// htmlStyle is the stylesheet of HTML reports. Plugin fragments may add
// their own style blocks.
const htmlStyle = `body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; margin-bottom: 1em; }
th, td { border: 1px solid #ccc; padding: 4px 8px; text-align: left; }
.sev-critical { color: #a00; font-weight: bold; }
.sev-high { color: #d40; }
.sev-medium { color: #b80; }
.sev-low { color: #06c; }
.sev-informational { color: #666; }
.placeholder { border-left: 4px solid #d40; padding-left: 8px; color: #555; }
`

// HTMLGenerator produces a standalone HTML page.
//
// Design decision: We build markup with strings.Builder and escape every
// scan-derived string through escape.HTML instead of using html/template,
// because plugin fragments arrive pre-rendered and would have to be
// smuggled through template.HTML anyway. One escaping rule for document
// and fragments is easier to audit.
type HTMLGenerator struct {
	baseGenerator
}

// NewHTMLGenerator returns an HTMLGenerator resolving formatters from reg.
func NewHTMLGenerator(reg *registry.Registry, opts ...Option) *HTMLGenerator {
	return &HTMLGenerator{baseGenerator: newBaseGenerator(format.HTML, reg, opts)}
}

// Generate implements Generator.
func (g *HTMLGenerator) Generate(summary *model.ScanSummary, results *model.PluginResults) (*Document, error) {
	summary = orEmpty(summary)
	sections, diags := g.renderSections(results)

	var sb strings.Builder
	g.writeHead(&sb, summary)
	g.writeSummary(&sb, summary)
	g.writeIssues(&sb, summary)
	g.writePlugins(&sb, sections)
	g.writeFooter(&sb)

	return &Document{Format: g.format, Content: []byte(sb.String()), Diagnostics: diags}, nil
}

func (g *HTMLGenerator) writeHead(sb *strings.Builder, summary *model.ScanSummary) {
	title := escape.HTML(g.title + " - " + summary.Target)
	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	sb.WriteString("<title>" + title + "</title>\n")
	sb.WriteString("<style>\n" + htmlStyle + "</style>\n</head>\n<body>\n")
	sb.WriteString("<h1>" + escape.HTML(g.title) + "</h1>\n")
}

func (g *HTMLGenerator) writeSummary(sb *strings.Builder, summary *model.ScanSummary) {
	rows := [][2]string{
		{"Target", summary.Target},
		{"Started", formatTime(summary.StartedAt)},
		{"Finished", formatTime(summary.FinishedAt)},
		{"Duration", summary.Duration.String()},
		{"Pages audited", strconv.Itoa(summary.PagesAudited)},
		{"Issues", strconv.Itoa(summary.TotalIssues())},
	}

	sb.WriteString("<h2>Summary</h2>\n<table class=\"summary\">\n")
	for _, r := range rows {
		sb.WriteString("<tr><th>" + r[0] + "</th><td>" + escape.HTML(r[1]) + "</td></tr>\n")
	}
	sb.WriteString("</table>\n")

	sb.WriteString("<table class=\"severities\">\n<tr><th>Severity</th><th>Count</th></tr>\n")
	for _, sev := range model.Severities() {
		sb.WriteString("<tr><td class=\"" + severityClass(sev) + "\">" + sev.String() +
			"</td><td>" + strconv.Itoa(summary.Count(sev)) + "</td></tr>\n")
	}
	sb.WriteString("</table>\n")
}

func (g *HTMLGenerator) writeIssues(sb *strings.Builder, summary *model.ScanSummary) {
	sb.WriteString("<h2>Issues</h2>\n")
	if !summary.HasIssues() {
		sb.WriteString("<p>No issues were found.</p>\n")
		return
	}

	sb.WriteString("<table class=\"issues\">\n<thead><tr><th>Severity</th><th>Name</th><th>Location</th><th>Remedy</th></tr></thead>\n<tbody>\n")
	for _, issue := range summary.Issues {
		sb.WriteString("<tr><td class=\"" + severityClass(issue.Severity) + "\">" + issue.Severity.String() + "</td>")
		sb.WriteString("<td>" + escape.HTML(issue.Name))
		if issue.Description != "" {
			sb.WriteString("<details><summary>Details</summary>" + escape.HTML(issue.Description) + "</details>")
		}
		sb.WriteString("</td>")
		sb.WriteString("<td>" + escape.HTML(issue.Location()) + "</td>")
		sb.WriteString("<td>" + escape.HTML(issue.Remedy) + "</td></tr>\n")
	}
	sb.WriteString("</tbody>\n</table>\n")
}

func (g *HTMLGenerator) writePlugins(sb *strings.Builder, sections []section) {
	if len(sections) == 0 {
		return
	}

	sb.WriteString("<h2>Plugins</h2>\n")
	for _, sec := range sections {
		sb.WriteString("<section class=\"plugin\" id=\"plugin-" + escape.HTML(sec.Plugin) + "\">\n")
		sb.WriteString("<h3>" + escape.HTML(sec.Title) + "</h3>\n")
		if sec.failed() {
			sb.WriteString("<p class=\"placeholder\">" + escape.HTML(placeholderText("HTML", sec.Diagnostic)) + "</p>\n")
		} else {
			sb.WriteString(string(sec.Fragment))
			sb.WriteString("\n")
		}
		sb.WriteString("</section>\n")
	}
}

func (g *HTMLGenerator) writeFooter(sb *strings.Builder) {
	sb.WriteString("<hr>\n<footer>" + escape.HTML(g.footer()) + "</footer>\n</body>\n</html>\n")
}

// severityClass returns the CSS class for sev.
func severityClass(sev model.Severity) string {
	return "sev-" + strings.ToLower(sev.String())
}
