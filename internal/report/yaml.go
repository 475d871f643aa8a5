package report

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/nao1215/scanreport/internal/format"
	"github.com/nao1215/scanreport/internal/model"
	"github.com/nao1215/scanreport/internal/registry"
)

// YAMLGenerator produces a YAML document, mirroring the JSON layout.
type YAMLGenerator struct {
	baseGenerator
}

// NewYAMLGenerator returns a YAMLGenerator resolving formatters from reg.
func NewYAMLGenerator(reg *registry.Registry, opts ...Option) *YAMLGenerator {
	return &YAMLGenerator{baseGenerator: newBaseGenerator(format.YAML, reg, opts)}
}

type yamlReport struct {
	Version     string             `yaml:"version,omitempty"`
	Summary     *model.ScanSummary `yaml:"summary"`
	Duration    string             `yaml:"duration"`
	Counts      severityCounts     `yaml:"counts"`
	Plugins     *yaml.Node         `yaml:"plugins"`
	Diagnostics []Diagnostic       `yaml:"diagnostics,omitempty"`
}

// Generate implements Generator. A plugin whose section failed is present
// under "plugins" as null and explained in "diagnostics".
func (g *YAMLGenerator) Generate(summary *model.ScanSummary, results *model.PluginResults) (*Document, error) {
	summary = orEmpty(summary)
	sections, diags := g.renderSections(results)

	plugins, err := yamlPlugins(sections)
	if err != nil {
		return nil, err
	}

	doc := yamlReport{
		Version:     g.version,
		Summary:     summary,
		Duration:    summary.Duration.String(),
		Counts:      countSeverities(summary),
		Plugins:     plugins,
		Diagnostics: diags,
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode yaml report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode yaml report: %w", err)
	}

	return &Document{Format: g.format, Content: buf.Bytes(), Diagnostics: diags}, nil
}

// yamlPlugins builds the plugin mapping in result order, parsing each
// fragment back into a node so it nests under its key.
func yamlPlugins(sections []section) (*yaml.Node, error) {
	m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, sec := range sections {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: sec.Plugin}
		value := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}

		if !sec.failed() {
			var doc yaml.Node
			if err := yaml.Unmarshal([]byte(sec.Fragment), &doc); err != nil {
				return nil, fmt.Errorf("plugin %q produced invalid yaml: %w", sec.Plugin, err)
			}
			if len(doc.Content) > 0 {
				value = doc.Content[0]
			}
		}
		m.Content = append(m.Content, key, value)
	}
	return m, nil
}
