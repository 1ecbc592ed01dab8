package scan

import (
	"maps"
	"slices"

	"github.com/matzehuels/scantower/pkg/core/model"
)

// ProvenanceResolverScanner is the scanner name of placeholder results for
// packages whose provenance could not be resolved.
const ProvenanceResolverScanner = "ProvenanceResolver"

func (r *ScannerRun) reconcileAll() {
	r.results = make(map[model.Identifier][]ScanResult, len(r.provenances))
	for i := range r.provenances {
		p := &r.provenances[i]
		if results := r.reconcile(p); len(results) > 0 {
			r.results[p.ID] = results
		}
	}
}

// pseudoResult carries a single issue in place of real scan results.
func (r *ScannerRun) pseudoResult(issue model.Issue) ScanResult {
	return ScanResult{
		Provenance: model.UnknownProvenance{},
		Scanner:    ScannerDetails{Name: ProvenanceResolverScanner},
		Summary: ScanSummary{
			StartTime: r.startTime,
			EndTime:   r.endTime,
			Issues:    []model.Issue{issue},
		},
	}
}

type pathResult struct {
	path   string
	result ScanResult
}

func (r *ScannerRun) reconcile(res *ProvenanceResolutionResult) []ScanResult {
	if issue := res.PackageProvenanceResolutionIssue; issue != nil {
		return []ScanResult{r.pseudoResult(*issue)}
	}

	scanners := r.scanners[res.ID]
	byPath := res.KnownProvenancesWithoutVcsPath()
	byScanner := make(map[string][]pathResult)
	// Sorted paths put the root first, so its scanner details win below.
	for _, path := range slices.Sorted(maps.Keys(byPath)) {
		for _, sr := range r.resultsByProvenance[byPath[path]] {
			if !slices.Contains(scanners, sr.Scanner.Name) {
				continue
			}
			byScanner[sr.Scanner.Name] = append(byScanner[sr.Scanner.Name], pathResult{path, sr})
		}
	}

	var results []ScanResult
	for _, name := range slices.Sorted(maps.Keys(byScanner)) {
		merged := mergeAcrossPaths(res.PackageProvenance, byScanner[name]).
			FilterByPath(res.VcsPath()).
			FilterByIgnorePatterns(r.config.IgnorePatterns)
		merged.Summary = merged.Summary.MapLicenses(r.config.DetectedLicenseMapping)
		results = append(results, merged)
	}

	if issue := res.NestedProvenanceResolutionIssue; issue != nil {
		if len(results) == 0 {
			return []ScanResult{r.pseudoResult(*issue)}
		}
		for i := range results {
			results[i].Summary.Issues = append(slices.Clone(results[i].Summary.Issues), *issue)
		}
	}
	return results
}

// mergeAcrossPaths folds the results of one scanner for the root and the
// sub-repositories of a package into a single result for the package
// provenance. Findings of sub-repositories are moved below their path.
func mergeAcrossPaths(provenance model.KnownProvenance, parts []pathResult) ScanResult {
	out := ScanResult{Provenance: provenance, Scanner: parts[0].result.Scanner}
	for i, p := range parts {
		summary := p.result.Summary.WithPathPrefix(p.path)
		if i == 0 {
			out.Summary = summary.normalized()
		} else {
			out.Summary = out.Summary.Merge(summary)
		}
		out.AdditionalData = mergeData(out.AdditionalData, p.result.AdditionalData)
	}
	return out
}

func (r *ScannerRun) buildFileLists() {
	r.fileLists = make(map[model.Identifier]FileList)
	for i := range r.provenances {
		res := &r.provenances[i]
		if !res.IsResolved() {
			continue
		}
		var files []FileEntry
		found := false
		for path, kp := range res.KnownProvenancesWithoutVcsPath() {
			fl, ok := r.filesByProvenance[kp]
			if !ok {
				continue
			}
			found = true
			for _, f := range fl.Files {
				files = append(files, FileEntry{Path: prefixPath(path, f.Path), SHA1: f.SHA1})
			}
		}
		if !found {
			continue
		}
		r.fileLists[res.ID] = FileList{Provenance: res.PackageProvenance, Files: sortFiles(files)}.
			FilterByPath(res.VcsPath()).
			FilterByIgnorePatterns(r.config.IgnorePatterns)
	}
}
