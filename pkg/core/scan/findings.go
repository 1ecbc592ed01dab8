package scan

import (
	"cmp"
	"path"
	"strings"
)

// TextLocation is a line range in a file. Path is relative to the root of
// the scanned provenance and uses forward slashes.
type TextLocation struct {
	Path      string `json:"path" yaml:"path"`
	StartLine int    `json:"start_line" yaml:"start_line"`
	EndLine   int    `json:"end_line" yaml:"end_line"`
}

// CompareTextLocations orders locations by path, then line range.
func CompareTextLocations(a, b TextLocation) int {
	if c := cmp.Compare(a.Path, b.Path); c != 0 {
		return c
	}
	if c := cmp.Compare(a.StartLine, b.StartLine); c != 0 {
		return c
	}
	return cmp.Compare(a.EndLine, b.EndLine)
}

// WithPathPrefix returns the location moved below prefix.
func (l TextLocation) WithPathPrefix(prefix string) TextLocation {
	l.Path = prefixPath(prefix, l.Path)
	return l
}

// IsUnder reports whether the location lies in directory dir or is dir
// itself. Every location is under the empty directory.
func (l TextLocation) IsUnder(dir string) bool {
	return isUnder(l.Path, dir)
}

// LicenseFinding is a license detected at a location. License is an SPDX
// expression as reported by the scanner and is treated as opaque text.
type LicenseFinding struct {
	License  string       `json:"license" yaml:"license"`
	Location TextLocation `json:"location" yaml:"location"`
	Score    float64      `json:"score,omitempty" yaml:"score,omitempty"`
}

// CompareLicenseFindings orders findings by location, license and score.
func CompareLicenseFindings(a, b LicenseFinding) int {
	if c := CompareTextLocations(a.Location, b.Location); c != 0 {
		return c
	}
	if c := cmp.Compare(a.License, b.License); c != 0 {
		return c
	}
	return cmp.Compare(a.Score, b.Score)
}

// CopyrightFinding is a copyright statement detected at a location.
type CopyrightFinding struct {
	Statement string       `json:"statement" yaml:"statement"`
	Location  TextLocation `json:"location" yaml:"location"`
}

// CompareCopyrightFindings orders findings by location, then statement.
func CompareCopyrightFindings(a, b CopyrightFinding) int {
	if c := CompareTextLocations(a.Location, b.Location); c != 0 {
		return c
	}
	return cmp.Compare(a.Statement, b.Statement)
}

func prefixPath(prefix, p string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return p
	}
	if p == "" {
		return prefix
	}
	return path.Join(prefix, p)
}

func isUnder(p, dir string) bool {
	dir = strings.Trim(dir, "/")
	if dir == "" {
		return true
	}
	return p == dir || strings.HasPrefix(p, dir+"/")
}

// isRootDir reports whether dir denotes the root of a provenance.
func isRootDir(dir string) bool {
	return strings.Trim(dir, "/") == ""
}
