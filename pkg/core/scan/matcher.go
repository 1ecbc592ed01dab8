package scan

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/scantower/pkg/errors"
)

// ScannerMatcher decides whether stored results of a scanner are compatible
// with the scanner currently configured: the name must match a regular
// expression, the version must lie in [MinVersion, MaxVersion) and satisfy
// Versions, and, if set, the configuration must be equal.
type ScannerMatcher struct {
	NameRegex     string `json:"name_regex" yaml:"name_regex" toml:"name"`
	MinVersion    string `json:"min_version" yaml:"min_version" toml:"min_version"`
	MaxVersion    string `json:"max_version" yaml:"max_version" toml:"max_version"`
	Versions      string `json:"versions,omitempty" yaml:"versions,omitempty" toml:"versions"`
	Configuration string `json:"configuration,omitempty" yaml:"configuration,omitempty" toml:"configuration"`

	re         *regexp.Regexp
	constraint *semver.Constraints
}

// MatcherForScanner returns a matcher that accepts the given scanner with
// any patch release of its version.
func MatcherForScanner(d ScannerDetails) (*ScannerMatcher, error) {
	v, err := semver.NewVersion(d.Version)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "scanner %s has no semantic version", d.Name)
	}
	next := v.IncMinor()
	m := &ScannerMatcher{
		NameRegex:     "^" + regexp.QuoteMeta(d.Name) + "$",
		MinVersion:    v.String(),
		MaxVersion:    next.String(),
		Configuration: d.Configuration,
	}
	return m, m.Compile()
}

// ParseScannerMatcher parses "name" or "name@range", where range is a
// semantic version constraint such as ">=32.0.0, <33" or "~32.1". The name
// is matched exactly.
func ParseScannerMatcher(s string) (*ScannerMatcher, error) {
	name, versions, found := strings.Cut(strings.TrimSpace(s), "@")
	name, versions = strings.TrimSpace(name), strings.TrimSpace(versions)
	if name == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "scanner filter %q has no name", s)
	}
	if found && versions == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "scanner filter %q has an empty version range", s)
	}
	m := &ScannerMatcher{
		NameRegex: "^" + regexp.QuoteMeta(name) + "$",
		Versions:  versions,
	}
	return m, m.Compile()
}

// Compile validates the matcher. It is called implicitly by Matches but
// reports errors that Matches would treat as a mismatch.
func (m *ScannerMatcher) Compile() error {
	re, err := regexp.Compile(m.NameRegex)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPattern, err, "invalid scanner name pattern %q", m.NameRegex)
	}
	expr := ""
	if m.MinVersion != "" {
		expr = ">= " + m.MinVersion
	}
	if m.MaxVersion != "" {
		if expr != "" {
			expr += ", "
		}
		expr += "< " + m.MaxVersion
	}
	if m.Versions != "" {
		if expr != "" {
			expr += ", "
		}
		expr += m.Versions
	}
	if expr == "" {
		expr = "*"
	}
	c, err := semver.NewConstraint(expr)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid scanner version range %q", expr)
	}
	m.re, m.constraint = re, c
	return nil
}

// Matches reports whether results of d are compatible.
func (m *ScannerMatcher) Matches(d ScannerDetails) bool {
	if m.re == nil || m.constraint == nil {
		if err := m.Compile(); err != nil {
			return false
		}
	}
	if !m.re.MatchString(d.Name) {
		return false
	}
	v, err := semver.NewVersion(d.Version)
	if err != nil || !m.constraint.Check(v) {
		return false
	}
	return m.Configuration == "" || m.Configuration == d.Configuration
}

// String describes the matcher.
func (m *ScannerMatcher) String() string {
	if m.Versions != "" {
		return fmt.Sprintf("%s [%s, %s) %s", m.NameRegex, m.MinVersion, m.MaxVersion, m.Versions)
	}
	return fmt.Sprintf("%s [%s, %s)", m.NameRegex, m.MinVersion, m.MaxVersion)
}
