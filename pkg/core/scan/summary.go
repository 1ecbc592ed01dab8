package scan

import (
	"slices"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/matzehuels/scantower/pkg/core/model"
)

// ScanSummary holds what one scanner found in one unit of source code.
type ScanSummary struct {
	StartTime         time.Time          `json:"start_time" yaml:"start_time"`
	EndTime           time.Time          `json:"end_time" yaml:"end_time"`
	FileCount         int                `json:"file_count" yaml:"file_count"`
	LicenseFindings   []LicenseFinding   `json:"license_findings,omitempty" yaml:"license_findings,omitempty"`
	CopyrightFindings []CopyrightFinding `json:"copyright_findings,omitempty" yaml:"copyright_findings,omitempty"`
	Issues            []model.Issue      `json:"issues,omitempty" yaml:"issues,omitempty"`
}

// Merge combines two summaries of the same scanner: the time window covers
// both, file counts add up, and findings and issues are the union of both.
// Neither input is modified and no finding or issue of either input is lost.
func (s ScanSummary) Merge(other ScanSummary) ScanSummary {
	out := ScanSummary{
		StartTime:         minTime(s.StartTime, other.StartTime),
		EndTime:           maxTime(s.EndTime, other.EndTime),
		FileCount:         s.FileCount + other.FileCount,
		LicenseFindings:   append(slices.Clone(s.LicenseFindings), other.LicenseFindings...),
		CopyrightFindings: append(slices.Clone(s.CopyrightFindings), other.CopyrightFindings...),
		Issues:            append(slices.Clone(s.Issues), other.Issues...),
	}
	return out.normalized()
}

// normalized returns a copy with sorted and deduplicated findings and
// issues.
func (s ScanSummary) normalized() ScanSummary {
	s.LicenseFindings = slices.Clone(s.LicenseFindings)
	s.CopyrightFindings = slices.Clone(s.CopyrightFindings)
	slices.SortFunc(s.LicenseFindings, CompareLicenseFindings)
	s.LicenseFindings = slices.Compact(s.LicenseFindings)
	slices.SortFunc(s.CopyrightFindings, CompareCopyrightFindings)
	s.CopyrightFindings = slices.Compact(s.CopyrightFindings)
	s.Issues = model.DedupeIssues(s.Issues)
	model.SortIssues(s.Issues)
	if len(s.LicenseFindings) == 0 {
		s.LicenseFindings = nil
	}
	if len(s.CopyrightFindings) == 0 {
		s.CopyrightFindings = nil
	}
	return s
}

// Equal reports whether both summaries hold the same data, regardless of the
// order of their findings and issues.
func (s ScanSummary) Equal(other ScanSummary) bool {
	a, b := s.normalized(), other.normalized()
	return a.StartTime.Equal(b.StartTime) &&
		a.EndTime.Equal(b.EndTime) &&
		a.FileCount == b.FileCount &&
		slices.Equal(a.LicenseFindings, b.LicenseFindings) &&
		slices.Equal(a.CopyrightFindings, b.CopyrightFindings) &&
		slices.EqualFunc(a.Issues, b.Issues, func(x, y model.Issue) bool { return model.CompareIssues(x, y) == 0 })
}

// FilterByPath narrows the summary to the directory dir. License findings
// are kept if they lie under dir or if a root license file applies to dir;
// copyright findings only if they lie under dir. Issues are kept if they are
// not scoped to a path or scoped to a path under dir. An empty dir returns
// the summary unchanged.
func (s ScanSummary) FilterByPath(dir string) ScanSummary {
	return s.FilterByPathWith(dir, NewRootLicenseMatcher())
}

// FilterByPathWith is FilterByPath with a custom root license matcher.
func (s ScanSummary) FilterByPathWith(dir string, m RootLicenseMatcher) ScanSummary {
	if isRootDir(dir) {
		return s
	}
	applicable := m.ApplicableFindings(s.LicenseFindings, dir)
	out := s
	out.LicenseFindings = nil
	for _, f := range s.LicenseFindings {
		if f.Location.IsUnder(dir) || slices.Contains(applicable, f) {
			out.LicenseFindings = append(out.LicenseFindings, f)
		}
	}
	out.CopyrightFindings = nil
	for _, f := range s.CopyrightFindings {
		if f.Location.IsUnder(dir) {
			out.CopyrightFindings = append(out.CopyrightFindings, f)
		}
	}
	out.Issues = nil
	for _, i := range s.Issues {
		if i.AffectedPath == "" || isUnder(i.AffectedPath, dir) {
			out.Issues = append(out.Issues, i)
		}
	}
	return out
}

// FilterByIgnorePatterns drops findings and path-scoped issues whose path
// matches one of the glob patterns.
func (s ScanSummary) FilterByIgnorePatterns(patterns []string) ScanSummary {
	if len(patterns) == 0 {
		return s
	}
	ignored := func(p string) bool {
		for _, pattern := range patterns {
			if ok, err := doublestar.Match(pattern, p); err == nil && ok {
				return true
			}
		}
		return false
	}
	out := s
	out.LicenseFindings = slices.DeleteFunc(slices.Clone(s.LicenseFindings), func(f LicenseFinding) bool {
		return ignored(f.Location.Path)
	})
	out.CopyrightFindings = slices.DeleteFunc(slices.Clone(s.CopyrightFindings), func(f CopyrightFinding) bool {
		return ignored(f.Location.Path)
	})
	out.Issues = slices.DeleteFunc(slices.Clone(s.Issues), func(i model.Issue) bool {
		return i.AffectedPath != "" && ignored(i.AffectedPath)
	})
	return out
}

// WithPathPrefix moves all findings and path-scoped issues below prefix.
func (s ScanSummary) WithPathPrefix(prefix string) ScanSummary {
	if isRootDir(prefix) {
		return s
	}
	out := s
	out.LicenseFindings = make([]LicenseFinding, len(s.LicenseFindings))
	for i, f := range s.LicenseFindings {
		f.Location = f.Location.WithPathPrefix(prefix)
		out.LicenseFindings[i] = f
	}
	out.CopyrightFindings = make([]CopyrightFinding, len(s.CopyrightFindings))
	for i, f := range s.CopyrightFindings {
		f.Location = f.Location.WithPathPrefix(prefix)
		out.CopyrightFindings[i] = f
	}
	out.Issues = make([]model.Issue, len(s.Issues))
	for i, issue := range s.Issues {
		if issue.AffectedPath != "" {
			issue.AffectedPath = prefixPath(prefix, issue.AffectedPath)
		}
		out.Issues[i] = issue
	}
	return out
}

// MapLicenses replaces detected license expressions found as keys of
// mapping with their values.
func (s ScanSummary) MapLicenses(mapping map[string]string) ScanSummary {
	if len(mapping) == 0 {
		return s
	}
	out := s
	out.LicenseFindings = make([]LicenseFinding, len(s.LicenseFindings))
	for i, f := range s.LicenseFindings {
		if mapped, ok := mapping[f.License]; ok {
			f.License = mapped
		}
		out.LicenseFindings[i] = f
	}
	return out.normalized()
}

func minTime(a, b time.Time) time.Time {
	switch {
	case a.IsZero():
		return b
	case b.IsZero():
		return a
	case b.Before(a):
		return b
	}
	return a
}

func maxTime(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
