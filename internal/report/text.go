package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/nao1215/scanreport/internal/escape"
	"github.com/nao1215/scanreport/internal/format"
	"github.com/nao1215/scanreport/internal/model"
	"github.com/nao1215/scanreport/internal/registry"
)

// TextGenerator produces plain text with ruled sections.
//
// Design decision: We use ASCII rules and markers rather than ANSI colors
// because:
// 1. The same text is mailed, archived and piped to files
// 2. Crawled strings are stripped of control characters, and colour
// codes would be the one exception a reader has to trust
type TextGenerator struct {
	baseGenerator
}

// NewTextGenerator returns a TextGenerator resolving formatters from reg.
func NewTextGenerator(reg *registry.Registry, opts ...Option) *TextGenerator {
	return &TextGenerator{baseGenerator: newBaseGenerator(format.Text, reg, opts)}
}

// Generate implements Generator.
func (g *TextGenerator) Generate(summary *model.ScanSummary, results *model.PluginResults) (*Document, error) {
	summary = orEmpty(summary)
	sections, diags := g.renderSections(results)

	var sb strings.Builder
	g.writeHeader(&sb, summary)
	g.writeSummary(&sb, summary)
	g.writeIssues(&sb, summary)
	g.writePlugins(&sb, sections)
	g.writeFooter(&sb)

	return &Document{Format: g.format, Content: []byte(sb.String()), Diagnostics: diags}, nil
}

// rule writes a heading framed by lines of ch.
func (g *TextGenerator) rule(sb *strings.Builder, ch, heading string) {
	line := strings.Repeat(ch, g.width)
	sb.WriteString(line + "\n")
	sb.WriteString(heading + "\n")
	sb.WriteString(line + "\n\n")
}

func (g *TextGenerator) writeHeader(sb *strings.Builder, summary *model.ScanSummary) {
	title := strings.ToUpper(g.title)
	pad := max((g.width-len(title))/2, 0)

	sb.WriteString("\n")
	g.rule(sb, "=", strings.Repeat(" ", pad)+title)

	fmt.Fprintf(sb, "Target:         %s\n", escape.Text(summary.Target))
	fmt.Fprintf(sb, "Started:        %s\n", formatTime(summary.StartedAt))
	fmt.Fprintf(sb, "Finished:       %s\n", formatTime(summary.FinishedAt))
	fmt.Fprintf(sb, "Duration:       %s\n", summary.Duration)
	fmt.Fprintf(sb, "Pages audited:  %d\n", summary.PagesAudited)
	sb.WriteString("\n")
}

func (g *TextGenerator) writeSummary(sb *strings.Builder, summary *model.ScanSummary) {
	g.rule(sb, "-", "SEVERITY SUMMARY")
	for _, sev := range model.Severities() {
		fmt.Fprintf(sb, "  %-14s %d\n", sev.String()+":", summary.Count(sev))
	}
	sb.WriteString("\n")
	fmt.Fprintf(sb, "  %-14s %d issues\n\n", "TOTAL:", summary.TotalIssues())
}

func (g *TextGenerator) writeIssues(sb *strings.Builder, summary *model.ScanSummary) {
	g.rule(sb, "-", "ISSUES")
	if !summary.HasIssues() {
		sb.WriteString("  No issues were found.\n\n")
		return
	}

	for _, sev := range model.Severities() {
		issues := summary.IssuesBySeverity(sev)
		if len(issues) == 0 {
			continue
		}
		fmt.Fprintf(sb, "[%s] %s\n", severityIndicator(sev), sev)
		for _, issue := range issues {
			fmt.Fprintf(sb, "  * %s\n", escape.Text(issue.Name))
			fmt.Fprintf(sb, "    Location: %s\n", escape.Text(issue.Location()))
			if issue.Description != "" {
				fmt.Fprintf(sb, "    Description: %s\n", escape.Text(issue.Description))
			}
			if issue.Remedy != "" {
				fmt.Fprintf(sb, "    Remedy: %s\n", escape.Text(issue.Remedy))
			}
		}
		sb.WriteString("\n")
	}
}

func (g *TextGenerator) writePlugins(sb *strings.Builder, sections []section) {
	for _, sec := range sections {
		g.rule(sb, "-", strings.ToUpper(escape.Text(sec.Title)))
		if sec.failed() {
			sb.WriteString("[!] " + escape.Text(placeholderText("text", sec.Diagnostic)) + "\n\n")
			continue
		}
		body := string(sec.Fragment)
		sb.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
}

func (g *TextGenerator) writeFooter(sb *strings.Builder) {
	line := strings.Repeat("=", g.width)
	sb.WriteString(line + "\n")
	sb.WriteString(g.footer() + "\n")
	sb.WriteString(line + "\n")
}

// severityIndicator returns a visual marker for the severity level.
func severityIndicator(sev model.Severity) string {
	switch sev {
	case model.SeverityCritical:
		return "!!!"
	case model.SeverityHigh:
		return "!!"
	case model.SeverityMedium:
		return "!"
	case model.SeverityLow:
		return "-"
	default:
		return "i"
	}
}

// formatTime renders t in the report layout, or "-" when unknown.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(timeLayout)
}
