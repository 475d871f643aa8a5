package plugin

import (
	"context"
	"strings"

	"github.com/nao1215/scanreport/internal/model"
	"github.com/nao1215/scanreport/internal/payload"
)

// HealthMap classifies every audited page as safe or unsafe.
//
// A page is unsafe when an issue was reported for its URL, with or without
// the query string. The payload lists the pages in sitemap order followed
// by the totals:
//
//	map:
//	  - safe: http://example.com/
//	  - unsafe: http://example.com/login
//	total: 2
//	safe: 1
//	unsafe: 1
//	issue_percentage: 50
type HealthMap struct{}

// NewHealthMap creates the health map plugin.
func NewHealthMap() *HealthMap {
	return &HealthMap{}
}

// Name implements Plugin.
func (h *HealthMap) Name() string {
	return model.PluginHealthMap
}

// Run implements Plugin.
func (h *HealthMap) Run(_ context.Context, scan *model.Scan) (payload.Value, error) {
	vulnerable := make(map[string]struct{}, len(scan.Issues))
	for _, issue := range scan.Issues {
		vulnerable[issue.URL] = struct{}{}
		vulnerable[stripQuery(issue.URL)] = struct{}{}
	}

	entries := make([]payload.Value, 0, len(scan.Sitemap))
	var safe, unsafe int64
	for _, url := range scan.Sitemap {
		state := "safe"
		if _, ok := vulnerable[url]; ok {
			state = "unsafe"
			unsafe++
		} else {
			safe++
		}
		entries = append(entries, payload.Map(payload.Pair(state, payload.String(url))))
	}

	total := safe + unsafe
	return payload.Map(
		payload.Pair("map", payload.Seq(entries...)),
		payload.Pair("total", payload.Int(total)),
		payload.Pair("safe", payload.Int(safe)),
		payload.Pair("unsafe", payload.Int(unsafe)),
		payload.Pair("issue_percentage", payload.Int(IssuePercentage(unsafe, total))),
	), nil
}

// IssuePercentage returns the share of unsafe pages as a whole percent,
// truncated. An empty scan has 0%.
func IssuePercentage(unsafe, total int64) int64 {
	if total <= 0 {
		return 0
	}
	return unsafe * 100 / total
}

func stripQuery(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		return url[:i]
	}
	return url
}
