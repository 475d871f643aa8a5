// Package autofill guesses plausible values for untyped form parameters
// from their names, so audits submit forms that pass basic validation.
//
// This is a heuristic convenience for crawling, not a security control.
package autofill

import (
	"maps"
	"regexp"
)

// DefaultValue is used when no rule matches a parameter name.
const DefaultValue = "1"

// rule pairs a name pattern with the value it fills in.
type rule struct {
	pattern *regexp.Regexp
	value   string
}

// rules is ordered; the first match wins. mail comes first so names such as
// "user_email" get an address rather than a user name.
var rules = []rule{
	{regexp.MustCompile(`(?i)mail`), "scanreport@example.com"},
	{regexp.MustCompile(`(?i)name`), "scanreport_name"},
	{regexp.MustCompile(`(?i)user`), "scanreport_user"},
	{regexp.MustCompile(`(?i)usr`), "scanreport_user"},
	{regexp.MustCompile(`(?i)pass`), "5543!%scanreport_secret"},
	{regexp.MustCompile(`(?i)txt`), "scanreport_text"},
	{regexp.MustCompile(`(?i)num`), "132"},
	{regexp.MustCompile(`(?i)amount`), "100"},
	{regexp.MustCompile(`(?i)account`), "12"},
	{regexp.MustCompile(`(?i)id`), "1"},
}

// MatchDefaultValue returns the canned value for a parameter name, or false
// when no rule matches.
func MatchDefaultValue(name string) (string, bool) {
	for _, r := range rules {
		if r.pattern.MatchString(name) {
			return r.value, true
		}
	}
	return "", false
}

// ValueFor returns the value to submit for an empty parameter: the matched
// canned value, or DefaultValue.
func ValueFor(name string) string {
	if v, ok := MatchDefaultValue(name); ok && v != "" {
		return v
	}
	return DefaultValue
}

// Fill returns a copy of params in which every empty value is replaced by
// ValueFor its name. Non-empty values are kept as given.
func Fill(params map[string]string) map[string]string {
	out := maps.Clone(params)
	if out == nil {
		return map[string]string{}
	}
	for name, v := range out {
		if v == "" {
			out[name] = ValueFor(name)
		}
	}
	return out
}
