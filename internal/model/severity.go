package model

import (
	"fmt"
	"strings"
)

// Severity represents the risk level of an issue.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and sorting. The String() method provides
// human-readable output, and the text marshalling methods keep snapshot
// files readable.
type Severity int

const (
	// SeverityInformational marks findings with no direct security impact,
	// such as interesting files or disclosed software versions.
	SeverityInformational Severity = iota

	// SeverityLow marks minor weaknesses, such as missing security headers.
	SeverityLow

	// SeverityMedium marks issues that warrant attention, such as
	// unvalidated redirects or cookies without the Secure flag.
	SeverityMedium

	// SeverityHigh marks exploitable vulnerabilities, such as cross-site
	// scripting or SQL injection.
	SeverityHigh

	// SeverityCritical marks issues that compromise the application outright,
	// such as remote code execution.
	SeverityCritical
)

// Severities lists all levels from most to least severe, the order reports
// present them in.
func Severities() []Severity {
	return []Severity{
		SeverityCritical,
		SeverityHigh,
		SeverityMedium,
		SeverityLow,
		SeverityInformational,
	}
}

// String returns the upper-case name of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInformational:
		return "INFORMATIONAL"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity accepts the lower- or upper-case level name; "info" is an
// accepted short form of informational.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "informational", "info":
		return SeverityInformational, nil
	case "low":
		return SeverityLow, nil
	case "medium":
		return SeverityMedium, nil
	case "high":
		return SeverityHigh, nil
	case "critical":
		return SeverityCritical, nil
	default:
		return SeverityInformational, fmt.Errorf("%w: %q", ErrUnknownSeverity, s)
	}
}

// MarshalText encodes the severity as its lower-case name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(s.String())), nil
}

// UnmarshalText decodes a severity name.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
