package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/scantower/pkg/core/dependency"
	"github.com/matzehuels/scantower/pkg/core/model"
	"github.com/matzehuels/scantower/pkg/core/result"
	"github.com/matzehuels/scantower/pkg/core/scan"
	scio "github.com/matzehuels/scantower/pkg/io"
)

// Report is the reconciled view of a result: one entry per project and
// package with what the scanners found in its source code, plus all issues.
type Report struct {
	Repository model.VcsInfo   `json:"repository" yaml:"repository"`
	Summary    Summary         `json:"summary" yaml:"summary"`
	Packages   []PackageReport `json:"packages" yaml:"packages"`
	Issues     []IssueReport   `json:"issues,omitempty" yaml:"issues,omitempty"`
}

// Summary counts the entries of a report.
type Summary struct {
	Projects   int            `json:"projects" yaml:"projects"`
	Packages   int            `json:"packages" yaml:"packages"`
	Excluded   int            `json:"excluded" yaml:"excluded"`
	Unresolved int            `json:"unresolved" yaml:"unresolved"`
	Issues     map[string]int `json:"issues,omitempty" yaml:"issues,omitempty"`
}

// PackageReport is the report entry of one project or package.
type PackageReport struct {
	ID               model.Identifier `json:"id" yaml:"id"`
	Purl             string           `json:"purl,omitempty" yaml:"purl,omitempty"`
	Project          bool             `json:"project,omitempty" yaml:"project,omitempty"`
	Excluded         bool             `json:"excluded,omitempty" yaml:"excluded,omitempty"`
	Provenance       string           `json:"provenance" yaml:"provenance"`
	Dependencies     int              `json:"dependencies" yaml:"dependencies"`
	DeclaredLicenses []string         `json:"declared_licenses,omitempty" yaml:"declared_licenses,omitempty"`
	DetectedLicenses []string         `json:"detected_licenses,omitempty" yaml:"detected_licenses,omitempty"`
	Scanners         []ScannerReport  `json:"scanners,omitempty" yaml:"scanners,omitempty"`
}

// ScannerReport condenses one reconciled scan result.
type ScannerReport struct {
	Scanner    scan.ScannerDetails `json:"scanner" yaml:"scanner"`
	FileCount  int                 `json:"file_count" yaml:"file_count"`
	Licenses   []string            `json:"licenses,omitempty" yaml:"licenses,omitempty"`
	Copyrights []string            `json:"copyrights,omitempty" yaml:"copyrights,omitempty"`
	Issues     int                 `json:"issues,omitempty" yaml:"issues,omitempty"`
}

// IssueReport is an issue with the identifier it belongs to.
type IssueReport struct {
	ID    model.Identifier `json:"id" yaml:"id"`
	Issue model.Issue      `json:"issue" yaml:"issue"`
}

// BuildReport reconciles res into a report. opts must have been validated.
func BuildReport(res *result.Result, opts Options) *Report {
	report := &Report{
		Repository: res.Repository.VcsProcessed,
		Packages:   []PackageReport{},
	}

	for _, p := range res.Projects(opts.OmitExcluded) {
		entry := packageReport(res, model.ProjectAsPackage(p), opts.matchers)
		entry.Project = true
		report.Packages = append(report.Packages, entry)
		report.Summary.Projects++
	}
	for _, p := range res.Packages(opts.OmitExcluded) {
		report.Packages = append(report.Packages, packageReport(res, p, opts.matchers))
		report.Summary.Packages++
	}
	slices.SortFunc(report.Packages, func(a, b PackageReport) int {
		return model.CompareIdentifiers(a.ID, b.ID)
	})
	for _, p := range report.Packages {
		if p.Excluded {
			report.Summary.Excluded++
		}
		if p.Provenance == (model.UnknownProvenance{}).String() {
			report.Summary.Unresolved++
		}
	}

	issues := res.Issues(opts.OmitExcluded, opts.Severity())
	for _, id := range slices.SortedFunc(maps.Keys(issues), model.CompareIdentifiers) {
		for _, issue := range issues[id] {
			report.Issues = append(report.Issues, IssueReport{ID: id, Issue: issue})
			if report.Summary.Issues == nil {
				report.Summary.Issues = make(map[string]int)
			}
			report.Summary.Issues[issue.Severity.String()]++
		}
	}
	return report
}

func packageReport(res *result.Result, pkg *model.Package, matchers []*scan.ScannerMatcher) PackageReport {
	entry := PackageReport{
		ID:               pkg.ID,
		Purl:             pkg.Purl,
		Excluded:         res.IsExcluded(pkg.ID),
		Provenance:       (model.UnknownProvenance{}).String(),
		Dependencies:     len(res.Dependencies(pkg.ID, dependency.Unbounded)),
		DeclaredLicenses: pkg.DeclaredLicenses,
	}
	if entry.Purl == "" {
		entry.Purl = pkg.ID.ToPurl()
	}
	if res.Scanner != nil {
		if pr, ok := res.Scanner.ProvenanceResolution(pkg.ID); ok && pr.PackageProvenance != nil {
			entry.Provenance = pr.PackageProvenance.String()
		}
	}

	detected := map[string]bool{}
	for _, sr := range res.ScanResultsMatching(pkg.ID, matchers...) {
		sc := ScannerReport{
			Scanner:    sr.Scanner,
			FileCount:  sr.Summary.FileCount,
			Licenses:   distinct(sr.Summary.LicenseFindings, func(f scan.LicenseFinding) string { return f.License }),
			Copyrights: distinct(sr.Summary.CopyrightFindings, func(f scan.CopyrightFinding) string { return f.Statement }),
			Issues:     len(sr.Summary.Issues),
		}
		for _, l := range sc.Licenses {
			detected[l] = true
		}
		entry.Scanners = append(entry.Scanners, sc)
	}
	if len(detected) > 0 {
		entry.DetectedLicenses = slices.Sorted(maps.Keys(detected))
	}
	return entry
}

func distinct[T any](items []T, key func(T) string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		seen[key(it)] = true
	}
	return slices.Sorted(maps.Keys(seen))
}

// MarshalReport encodes a report for the cache.
func MarshalReport(r *Report) ([]byte, error) {
	return json.Marshal(r)
}

// UnmarshalReport decodes a report written by MarshalReport.
func UnmarshalReport(data []byte) (*Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &r, nil
}

// EncodeReport writes a report in the given format.
func EncodeReport(r *Report, format string) ([]byte, error) {
	f, err := scio.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := scio.Encode(&buf, f, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
