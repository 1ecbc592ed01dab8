package scan

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// LicenseFilePatterns classifies files that declare the license of the
// directory they are in and of everything below it. Patterns are globs
// matched against lower-cased base names.
type LicenseFilePatterns struct {
	LicenseFilenames      []string `json:"license_filenames" yaml:"license_filenames" toml:"license_filenames"`
	PatentFilenames       []string `json:"patent_filenames" yaml:"patent_filenames" toml:"patent_filenames"`
	OtherLicenseFilenames []string `json:"other_license_filenames" yaml:"other_license_filenames" toml:"other_license_filenames"`
}

// DefaultLicenseFilePatterns are the file names commonly used for license
// declarations.
var DefaultLicenseFilePatterns = LicenseFilePatterns{
	LicenseFilenames: []string{
		"copying*", "copyright", "licence*", "license*",
		"*.licence", "*.license", "unlicence", "unlicense",
	},
	PatentFilenames:       []string{"patents"},
	OtherLicenseFilenames: []string{"readme*"},
}

// RootLicenseMatcher decides which license findings in ancestor directories
// apply to a directory. For both license files and patent files the
// closest ancestor (including the directory itself) containing a matching
// file wins. Findings in "other" files such as READMEs are only used when no
// license or patent file applies.
type RootLicenseMatcher struct {
	Patterns LicenseFilePatterns
}

// NewRootLicenseMatcher returns a matcher using DefaultLicenseFilePatterns.
func NewRootLicenseMatcher() RootLicenseMatcher {
	return RootLicenseMatcher{Patterns: DefaultLicenseFilePatterns}
}

// ApplicableFindings returns the findings from findings that apply to dir.
func (m RootLicenseMatcher) ApplicableFindings(findings []LicenseFinding, dir string) []LicenseFinding {
	byDir := make(map[string][]LicenseFinding)
	for _, f := range findings {
		d := parentDir(f.Location.Path)
		byDir[d] = append(byDir[d], f)
	}
	dir = strings.Trim(dir, "/")

	var result []LicenseFinding
	result = append(result, closestMatching(byDir, m.Patterns.LicenseFilenames, dir)...)
	result = append(result, closestMatching(byDir, m.Patterns.PatentFilenames, dir)...)
	if len(result) == 0 {
		result = closestMatching(byDir, m.Patterns.OtherLicenseFilenames, dir)
	}
	return result
}

func closestMatching(byDir map[string][]LicenseFinding, patterns []string, dir string) []LicenseFinding {
	if len(patterns) == 0 {
		return nil
	}
	for cur := dir; ; cur = parentDir(cur) {
		var found []LicenseFinding
		for _, f := range byDir[cur] {
			if matchesAny(patterns, strings.ToLower(path.Base(f.Location.Path))) {
				found = append(found, f)
			}
		}
		if len(found) > 0 {
			return found
		}
		if cur == "" {
			return nil
		}
	}
}

// parentDir returns the directory of p, with "" for the root.
func parentDir(p string) string {
	d := path.Dir(strings.Trim(p, "/"))
	if d == "." || d == "/" {
		return ""
	}
	return d
}

func matchesAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}
