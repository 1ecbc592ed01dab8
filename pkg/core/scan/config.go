package scan

import (
	"maps"
	"os"
	"runtime"
	"slices"
	"strings"

	"github.com/matzehuels/scantower/pkg/buildinfo"
)

// ScannerConfiguration is the configuration a scanner run was made with.
// Runs can only be merged if their configurations are equal.
type ScannerConfiguration struct {
	// SkipExcluded tells whether excluded projects and packages were left
	// out of the scan.
	SkipExcluded bool `json:"skip_excluded" yaml:"skip_excluded" toml:"skip_excluded"`
	// IgnorePatterns are globs of paths whose findings are dropped from
	// reconciled results.
	IgnorePatterns []string `json:"ignore_patterns,omitempty" yaml:"ignore_patterns,omitempty" toml:"ignore_patterns"`
	// DetectedLicenseMapping replaces license expressions reported by
	// scanners, typically scanner-specific references, by SPDX expressions.
	DetectedLicenseMapping map[string]string `json:"detected_license_mapping,omitempty" yaml:"detected_license_mapping,omitempty" toml:"detected_license_mapping"`
	// Options holds scanner-specific options keyed by scanner name.
	Options map[string]map[string]string `json:"options,omitempty" yaml:"options,omitempty" toml:"options"`
}

// Equal reports whether two configurations are the same. Nil and empty
// collections are equal.
func (c ScannerConfiguration) Equal(o ScannerConfiguration) bool {
	if c.SkipExcluded != o.SkipExcluded ||
		!slices.Equal(c.IgnorePatterns, o.IgnorePatterns) ||
		!maps.Equal(c.DetectedLicenseMapping, o.DetectedLicenseMapping) ||
		len(c.Options) != len(o.Options) {
		return false
	}
	for name, opts := range c.Options {
		other, ok := o.Options[name]
		if !ok || !maps.Equal(opts, other) {
			return false
		}
	}
	return true
}

// Environment describes the machine a run was made on.
type Environment struct {
	ToolVersion  string            `json:"tool_version" yaml:"tool_version"`
	GoVersion    string            `json:"go_version" yaml:"go_version"`
	OS           string            `json:"os" yaml:"os"`
	Processors   int               `json:"processors" yaml:"processors"`
	Variables    map[string]string `json:"variables,omitempty" yaml:"variables,omitempty"`
	ToolVersions map[string]string `json:"tool_versions,omitempty" yaml:"tool_versions,omitempty"`
}

// recordedVariables are the environment variables captured by
// CurrentEnvironment, if set.
var recordedVariables = []string{"HOME", "SHELL", "TERM", "CI", "GOPROXY", "HTTP_PROXY", "HTTPS_PROXY", "NO_PROXY"}

// CurrentEnvironment describes the running process.
func CurrentEnvironment() Environment {
	vars := make(map[string]string)
	for _, name := range recordedVariables {
		if v, ok := os.LookupEnv(name); ok {
			vars[name] = v
		}
	}
	return Environment{
		ToolVersion: buildinfo.Version,
		GoVersion:   strings.TrimPrefix(runtime.Version(), "go"),
		OS:          runtime.GOOS + "/" + runtime.GOARCH,
		Processors:  runtime.NumCPU(),
		Variables:   vars,
	}
}
