package model

import (
	"regexp"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/matzehuels/scantower/pkg/errors"
)

// PathExcludeReason documents why a path is excluded.
type PathExcludeReason string

const (
	PathReasonBuildTool     PathExcludeReason = "BUILD_TOOL_OF"
	PathReasonDocumentation PathExcludeReason = "DOCUMENTATION_OF"
	PathReasonExample       PathExcludeReason = "EXAMPLE_OF"
	PathReasonOther         PathExcludeReason = "OTHER"
	PathReasonTest          PathExcludeReason = "TEST_OF"
)

// PathExclude excludes all files matching a glob pattern, relative to the
// repository root.
type PathExclude struct {
	Pattern string            `json:"pattern" yaml:"pattern" toml:"pattern"`
	Reason  PathExcludeReason `json:"reason" yaml:"reason" toml:"reason"`
	Comment string            `json:"comment,omitempty" yaml:"comment,omitempty" toml:"comment"`
}

// Matches reports whether path matches the pattern.
func (e PathExclude) Matches(path string) bool {
	ok, err := doublestar.Match(e.Pattern, path)
	return err == nil && ok
}

// ScopeExclude excludes all scopes whose name matches a regular expression.
// The expression must match the whole name.
type ScopeExclude struct {
	Pattern string `json:"pattern" yaml:"pattern" toml:"pattern"`
	Reason  string `json:"reason" yaml:"reason" toml:"reason"`
	Comment string `json:"comment,omitempty" yaml:"comment,omitempty" toml:"comment"`
}

var (
	scopeRegexMu    sync.Mutex
	scopeRegexCache = map[string]*regexp.Regexp{}
)

func compileScopePattern(pattern string) (*regexp.Regexp, error) {
	scopeRegexMu.Lock()
	defer scopeRegexMu.Unlock()
	if re, ok := scopeRegexCache[pattern]; ok {
		return re, nil
	}
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, err
	}
	scopeRegexCache[pattern] = re
	return re, nil
}

// Matches reports whether the scope name matches the pattern.
func (e ScopeExclude) Matches(scope string) bool {
	re, err := compileScopePattern(e.Pattern)
	return err == nil && re.MatchString(scope)
}

// Excludes marks parts of a repository as not being distributed, so that
// their packages and issues can be left out of reports.
type Excludes struct {
	Paths  []PathExclude  `json:"paths,omitempty" yaml:"paths,omitempty" toml:"paths"`
	Scopes []ScopeExclude `json:"scopes,omitempty" yaml:"scopes,omitempty" toml:"scopes"`
}

// Validate checks all patterns.
func (e Excludes) Validate() error {
	for _, p := range e.Paths {
		if err := errors.ValidateGlob(p.Pattern); err != nil {
			return err
		}
	}
	for _, s := range e.Scopes {
		if _, err := compileScopePattern(s.Pattern); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPattern, err, "invalid scope exclude %q", s.Pattern)
		}
	}
	return nil
}

// IsPathExcluded reports whether any path exclude matches path.
func (e Excludes) IsPathExcluded(path string) bool {
	for _, p := range e.Paths {
		if p.Matches(path) {
			return true
		}
	}
	return false
}

// IsScopeExcluded reports whether any scope exclude matches scope.
func (e Excludes) IsScopeExcluded(scope string) bool {
	for _, s := range e.Scopes {
		if s.Matches(scope) {
			return true
		}
	}
	return false
}

// IsEmpty reports whether nothing is excluded.
func (e Excludes) IsEmpty() bool {
	return len(e.Paths) == 0 && len(e.Scopes) == 0
}
