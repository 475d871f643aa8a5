package model

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nao1215/scanreport/internal/payload"
)

// Scan is a finished scan as recorded by the scanner. Report generation
// works from this snapshot only; it never talks to the scanned site.
type Scan struct {
	// Target is the URL the scan started from.
	Target string `yaml:"target"`

	// StartedAt is when the scan began.
	StartedAt time.Time `yaml:"started_at"`

	// FinishedAt is when the scan ended.
	FinishedAt time.Time `yaml:"finished_at"`

	// Issues are the vulnerabilities found by the audit modules.
	Issues []Issue `yaml:"issues,omitempty"`

	// Responses are the HTTP responses recorded by the crawler.
	Responses []Response `yaml:"responses,omitempty"`

	// Sitemap lists every crawled URL in discovery order.
	Sitemap []string `yaml:"sitemap,omitempty"`

	// Plugins holds results contributed by plugins that ran inside the
	// scanner itself rather than in this tool.
	Plugins []ExternalResult `yaml:"plugins,omitempty"`
}

// ExternalResult is a plugin payload recorded in a snapshot file.
type ExternalResult struct {
	Name   string        `yaml:"name"`
	Result payload.Value `yaml:"result"`
}

// LoadScan reads a YAML or JSON scan snapshot.
func LoadScan(path string) (*Scan, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided snapshot path is intentional
	if err != nil {
		return nil, err
	}
	return ParseScan(data)
}

// ParseScan decodes a YAML or JSON scan snapshot and validates it.
func ParseScan(data []byte) (*Scan, error) {
	var s Scan
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse scan snapshot: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the fields every report depends on.
func (s *Scan) Validate() error {
	if s.Target == "" {
		return ErrNoTarget
	}
	if !s.StartedAt.IsZero() && !s.FinishedAt.IsZero() && s.FinishedAt.Before(s.StartedAt) {
		return ErrInvalidTimeRange
	}
	for i, p := range s.Plugins {
		if p.Name == "" {
			return fmt.Errorf("plugins[%d]: %w", i, ErrEmptyPlugin)
		}
	}
	return nil
}

// Duration returns how long the scan ran, or zero when either timestamp
// is missing.
func (s *Scan) Duration() time.Duration {
	if s.StartedAt.IsZero() || s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
