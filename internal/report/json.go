package report

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/nao1215/scanreport/internal/format"
	"github.com/nao1215/scanreport/internal/model"
	"github.com/nao1215/scanreport/internal/registry"
)

// JSONGenerator produces a JSON document for tool integration.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because:
// 1. Plugin fragments are already JSON and embed as json.RawMessage
// 2. Key order of the plugin object is written by hand, which no
// map-based encoder would keep
type JSONGenerator struct {
	baseGenerator
}

// NewJSONGenerator returns a JSONGenerator resolving formatters from reg.
// Output is indented unless WithCompact(true) is given.
func NewJSONGenerator(reg *registry.Registry, opts ...Option) *JSONGenerator {
	return &JSONGenerator{baseGenerator: newBaseGenerator(format.JSON, reg, opts)}
}

// jsonReport is the document layout shared by the JSON and YAML generators.
type jsonReport struct {
	Version     string             `json:"version,omitempty"`
	Summary     *model.ScanSummary `json:"summary"`
	Duration    string             `json:"duration"`
	Counts      severityCounts     `json:"counts"`
	Plugins     json.RawMessage    `json:"plugins"`
	Diagnostics []Diagnostic       `json:"diagnostics,omitempty"`
}

// severityCounts lists issue counts by lower-case severity name.
type severityCounts struct {
	Critical      int `json:"critical" yaml:"critical"`
	High          int `json:"high" yaml:"high"`
	Medium        int `json:"medium" yaml:"medium"`
	Low           int `json:"low" yaml:"low"`
	Informational int `json:"informational" yaml:"informational"`
	Total         int `json:"total" yaml:"total"`
}

func countSeverities(summary *model.ScanSummary) severityCounts {
	return severityCounts{
		Critical:      summary.Count(model.SeverityCritical),
		High:          summary.Count(model.SeverityHigh),
		Medium:        summary.Count(model.SeverityMedium),
		Low:           summary.Count(model.SeverityLow),
		Informational: summary.Count(model.SeverityInformational),
		Total:         summary.TotalIssues(),
	}
}

// Generate implements Generator. A plugin whose section failed is present
// in "plugins" as null and explained in "diagnostics".
func (g *JSONGenerator) Generate(summary *model.ScanSummary, results *model.PluginResults) (*Document, error) {
	summary = orEmpty(summary)
	sections, diags := g.renderSections(results)

	plugins, err := jsonPlugins(sections)
	if err != nil {
		return nil, err
	}

	doc := jsonReport{
		Version:     g.version,
		Summary:     summary,
		Duration:    summary.Duration.String(),
		Counts:      countSeverities(summary),
		Plugins:     plugins,
		Diagnostics: diags,
	}

	var data []byte
	if g.compact {
		data, err = json.Marshal(doc)
	} else {
		data, err = json.MarshalIndent(doc, "", "  ")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode json report: %w", err)
	}
	data = append(data, '\n')

	return &Document{Format: g.format, Content: data, Diagnostics: diags}, nil
}

// jsonPlugins writes the plugin object in result order.
func jsonPlugins(sections []section) (json.RawMessage, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, sec := range sections {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(sec.Plugin)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		if sec.failed() {
			buf.WriteString("null")
		} else {
			buf.WriteString(string(sec.Fragment))
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
