package model

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/scantower/pkg/errors"
)

// Severity classifies an Issue. Higher values are more severe.
type Severity int

const (
	SeverityHint Severity = iota
	SeverityWarning
	SeverityError
)

var severityNames = map[Severity]string{
	SeverityHint:    "HINT",
	SeverityWarning: "WARNING",
	SeverityError:   "ERROR",
}

// String returns the upper-case name of the severity.
func (s Severity) String() string {
	if n, ok := severityNames[s]; ok {
		return n
	}
	return "UNKNOWN"
}

// ParseSeverity parses a severity name case-insensitively.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return SeverityError, true
	case "WARNING":
		return SeverityWarning, true
	case "HINT":
		return SeverityHint, true
	}
	return SeverityError, false
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes a severity name case-insensitively. Unknown names
// are rejected with code ErrCodeInvalidFormat.
func (s *Severity) UnmarshalText(b []byte) error {
	sev, ok := ParseSeverity(string(b))
	if !ok {
		return errors.New(errors.ErrCodeInvalidFormat, "unknown severity %q (want HINT, WARNING or ERROR)", b)
	}
	*s = sev
	return nil
}

// Issue is a recoverable problem attached to the identifier or result it
// concerns. Issues never abort processing of unrelated identifiers.
type Issue struct {
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Source    string    `json:"source" yaml:"source"`
	Message   string    `json:"message" yaml:"message"`
	Severity  Severity  `json:"severity" yaml:"severity"`
	// AffectedPath scopes the issue to a file or directory relative to the
	// scanned root. Empty means the issue concerns the whole result.
	AffectedPath string `json:"affected_path,omitempty" yaml:"affected_path,omitempty"`
}

// NewIssue returns an ERROR issue stamped with the current time.
func NewIssue(source, message string) Issue {
	return Issue{
		Timestamp: time.Now().UTC(),
		Source:    source,
		Message:   message,
		Severity:  SeverityError,
	}
}

// WithSeverity returns a copy of i with the given severity.
func (i Issue) WithSeverity(s Severity) Issue {
	i.Severity = s
	return i
}

// WithAffectedPath returns a copy of i with the given affected path.
func (i Issue) WithAffectedPath(path string) Issue {
	i.AffectedPath = path
	return i
}

// CompareIssues orders issues by timestamp, source, message, severity and
// affected path.
func CompareIssues(a, b Issue) int {
	if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Source, b.Source); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Message, b.Message); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Severity, b.Severity); c != 0 {
		return c
	}
	return cmp.Compare(a.AffectedPath, b.AffectedPath)
}

// issueKey identifies equal issues. time.Time is not safe to compare with ==
// across monotonic readings, so it is normalized first.
type issueKey struct {
	ts       int64
	source   string
	message  string
	severity Severity
	path     string
}

func keyOf(i Issue) issueKey {
	return issueKey{i.Timestamp.UnixNano(), i.Source, i.Message, i.Severity, i.AffectedPath}
}

// DedupeIssues returns issues without duplicates, keeping the first
// occurrence of each.
func DedupeIssues(issues []Issue) []Issue {
	if len(issues) == 0 {
		return nil
	}
	seen := make(map[issueKey]bool, len(issues))
	out := make([]Issue, 0, len(issues))
	for _, i := range issues {
		k := keyOf(i)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, i)
	}
	return out
}

// SortIssues sorts issues in place with [CompareIssues].
func SortIssues(issues []Issue) {
	slices.SortStableFunc(issues, CompareIssues)
}

// FilterBySeverity returns the issues at or above min.
func FilterBySeverity(issues []Issue, min Severity) []Issue {
	var out []Issue
	for _, i := range issues {
		if i.Severity >= min {
			out = append(out, i)
		}
	}
	return out
}
