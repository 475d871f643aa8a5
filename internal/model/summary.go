package model

import (
	"slices"
	"time"
)

// ScanSummary is the scan-wide header of a report: target, timing and the
// primary issue listing.
//
// Design decision: We build a separate summary rather than passing Scan to
// generators because:
// 1. Generators must not depend on crawler data (responses, sitemap) that
// only plugins interpret
// 2. Issues are sorted once here, so every format lists them identically
// 3. It serializes cleanly for the structured-data formats
type ScanSummary struct {
	// Target is the scanned URL.
	Target string `json:"target" yaml:"target"`

	// StartedAt is when the scan began.
	StartedAt time.Time `json:"started_at" yaml:"started_at"`

	// FinishedAt is when the scan ended.
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`

	// Duration is the scan's run time rounded to the second. Documents
	// print it with Duration.String, so it is not serialized as is.
	Duration time.Duration `json:"-" yaml:"-"`

	// Issues are sorted by descending severity; equal severities keep
	// their recorded order.
	Issues []Issue `json:"issues" yaml:"issues"`

	// PagesAudited is the number of crawled URLs.
	PagesAudited int `json:"pages_audited" yaml:"pages_audited"`
}

// NewScanSummary builds the summary of s.
func NewScanSummary(s *Scan) *ScanSummary {
	issues := slices.Clone(s.Issues)
	slices.SortStableFunc(issues, func(a, b Issue) int {
		return int(b.Severity) - int(a.Severity)
	})

	return &ScanSummary{
		Target:       s.Target,
		StartedAt:    s.StartedAt,
		FinishedAt:   s.FinishedAt,
		Duration:     s.Duration().Round(time.Second),
		Issues:       issues,
		PagesAudited: len(s.Sitemap),
	}
}

// TotalIssues returns the number of issues.
func (s *ScanSummary) TotalIssues() int {
	return len(s.Issues)
}

// HasIssues reports whether any issue was found.
func (s *ScanSummary) HasIssues() bool {
	return len(s.Issues) > 0
}

// Count returns the number of issues of the given severity.
func (s *ScanSummary) Count(sev Severity) int {
	n := 0
	for _, i := range s.Issues {
		if i.Severity == sev {
			n++
		}
	}
	return n
}

// IssuesBySeverity returns the issues of the given severity.
func (s *ScanSummary) IssuesBySeverity(sev Severity) []Issue {
	var out []Issue
	for _, i := range s.Issues {
		if i.Severity == sev {
			out = append(out, i)
		}
	}
	return out
}
