// Package pipeline provides the report pipeline for Scantower.
//
// This package implements the complete load → reconcile → report pipeline
// used by the CLI. Keeping it here keeps caching, hooks and logging in one
// place no matter which command runs it.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read one or more result files and merge their scanner runs
//  2. Reconcile: Derive per-package scan results and collect issues
//  3. Report: Encode the [Report] as JSON or YAML
//
// Reports are cached by the content hashes of the inputs and the report
// options, so a cache hit skips loading entirely.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Inputs: []string{"scan-result.yml"},
//	    Format: "json",
//	}
//	out, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.Stdout.Write(out.Data)
//
// Run individual stages:
//
//	// Load only
//	res, err := runner.Load(ctx, opts.Inputs)
//
//	// Build a report from a loaded result
//	report := pipeline.BuildReport(res, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/scantower/pkg/core/model"
	"github.com/matzehuels/scantower/pkg/core/scan"
	"github.com/matzehuels/scantower/pkg/errors"
	scio "github.com/matzehuels/scantower/pkg/io"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultFormat is the default report format.
	DefaultFormat = string(scio.FormatJSON)

	// DefaultMinSeverity includes every issue in the report.
	DefaultMinSeverity = "HINT"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the report pipeline.
type Options struct {
	// Load options
	Inputs []string `json:"inputs"`

	// Override options, applied to the loaded result. IgnorePatterns are
	// added to those of the scanner run; Excludes replace those of the
	// repository configuration.
	IgnorePatterns []string        `json:"ignore_patterns,omitempty"`
	Excludes       *model.Excludes `json:"excludes,omitempty"`

	// Report options. Scanners restricts the reported scan results to
	// scanners given as "name" or "name@range"; empty reports all.
	OmitExcluded bool     `json:"omit_excluded,omitempty"`
	MinSeverity  string   `json:"min_severity,omitempty"`
	Scanners     []string `json:"scanners,omitempty"`
	Format       string   `json:"format,omitempty"`
	Refresh      bool     `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
	severity  model.Severity
	matchers  []*scan.ScannerMatcher
}

// Output contains the outputs of a pipeline run.
type Output struct {
	// Report is the reconciled report.
	Report *Report

	// Data is the report encoded in the requested format.
	Data []byte

	// Stats contains timing information.
	Stats Stats

	// CacheHit reports whether the report came from the cache.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	InputCount    int
	LoadTime      time.Duration
	ReconcileTime time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a report format is valid.
func ValidateFormat(format string) error {
	if _, err := scio.ParseFormat(format); err != nil {
		return err
	}
	return nil
}

// ValidateSeverity checks that a severity name is valid.
func ValidateSeverity(s string) error {
	if _, ok := model.ParseSeverity(s); !ok {
		return errors.New(errors.ErrCodeInvalidInput, "invalid severity: %q (must be one of: HINT, WARNING, ERROR)", s)
	}
	return nil
}

// ValidateScanners checks that every scanner filter parses.
func ValidateScanners(filters []string) error {
	_, err := parseScanners(filters)
	return err
}

func parseScanners(filters []string) ([]*scan.ScannerMatcher, error) {
	var matchers []*scan.ScannerMatcher
	for _, f := range filters {
		m, err := scan.ParseScannerMatcher(f)
		if err != nil {
			return nil, err
		}
		matchers = append(matchers, m)
	}
	return matchers, nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Inputs) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "at least one input file is required")
	}
	if err := errors.ValidateGlobs(o.IgnorePatterns); err != nil {
		return err
	}
	if o.Excludes != nil {
		if err := o.Excludes.Validate(); err != nil {
			return err
		}
	}
	if o.Format == "" {
		o.Format = DefaultFormat
	}
	f, err := scio.ParseFormat(o.Format)
	if err != nil {
		return err
	}
	o.Format = string(f)
	if o.MinSeverity == "" {
		o.MinSeverity = DefaultMinSeverity
	}
	sev, ok := model.ParseSeverity(o.MinSeverity)
	if !ok {
		return ValidateSeverity(o.MinSeverity)
	}
	o.MinSeverity = sev.String()
	o.severity = sev
	matchers, err := parseScanners(o.Scanners)
	if err != nil {
		return err
	}
	o.matchers = matchers
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// HasOverrides reports whether the options change the loaded result.
func (o *Options) HasOverrides() bool {
	return len(o.IgnorePatterns) > 0 || o.Excludes != nil
}

// ScannerMatchers returns the parsed scanner filters. It is only meaningful
// after ValidateAndSetDefaults.
func (o *Options) ScannerMatchers() []*scan.ScannerMatcher {
	return o.matchers
}

// Severity returns the minimum issue severity. It is only meaningful after
// ValidateAndSetDefaults.
func (o *Options) Severity() model.Severity {
	return o.severity
}
