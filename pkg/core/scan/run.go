package scan

import (
	"cmp"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/matzehuels/scantower/pkg/core/model"
	"github.com/matzehuels/scantower/pkg/errors"
)

// RunData is the raw output of a scanner run, as produced by the scanning
// phase or read from a result file. Order of the slices does not matter.
type RunData struct {
	StartTime   time.Time
	EndTime     time.Time
	Environment Environment
	Config      ScannerConfiguration
	Provenances []ProvenanceResolutionResult
	ScanResults []ScanResult
	Files       []FileList
	// Scanners lists, per package, the names of the scanners that were run
	// for it. Stored results of other scanners are ignored for the package.
	Scanners map[model.Identifier][]string
}

type resultKey struct {
	provenance model.Provenance
	scanner    ScannerDetails
}

// ScannerRun holds all provenances, scan results and file lists of a run
// and reconciles them into one result per scanner and package.
//
// A ScannerRun is immutable. Derived views are computed on first access and
// cached; it is safe for concurrent use.
type ScannerRun struct {
	startTime   time.Time
	endTime     time.Time
	environment Environment
	config      ScannerConfiguration
	provenances []ProvenanceResolutionResult
	scanResults []ScanResult
	files       []FileList
	scanners    map[model.Identifier][]string

	byID                map[model.Identifier]*ProvenanceResolutionResult
	resultsByProvenance map[model.KnownProvenance][]ScanResult
	filesByProvenance   map[model.KnownProvenance]FileList

	resultsOnce sync.Once
	results     map[model.Identifier][]ScanResult
	fileOnce    sync.Once
	fileLists   map[model.Identifier]FileList
}

// NewScannerRun validates data and returns the run. The following rules are
// enforced, each violation reported with code ErrCodeInvariant:
//
//   - every provenance resolution result is valid and unique per identifier
//   - every scan result and file list refers to a known provenance at the
//     root of its repository: empty VCS path, revision equal to the resolved
//     revision
//   - there is at most one scan result per provenance and scanner, and at
//     most one file list per provenance
//   - every scan result and file list belongs to a provenance that some
//     resolution result resolved
//   - scanners are only listed for identifiers with a resolution result
func NewScannerRun(data RunData) (*ScannerRun, error) {
	r := &ScannerRun{
		startTime:           data.StartTime,
		endTime:             data.EndTime,
		environment:         data.Environment,
		config:              data.Config,
		byID:                make(map[model.Identifier]*ProvenanceResolutionResult, len(data.Provenances)),
		resultsByProvenance: make(map[model.KnownProvenance][]ScanResult),
		filesByProvenance:   make(map[model.KnownProvenance]FileList),
		scanners:            make(map[model.Identifier][]string, len(data.Scanners)),
	}

	resolved := make(map[model.KnownProvenance]bool)
	r.provenances = slices.Clone(data.Provenances)
	slices.SortFunc(r.provenances, func(a, b ProvenanceResolutionResult) int {
		return model.CompareIdentifiers(a.ID, b.ID)
	})
	for i := range r.provenances {
		p := &r.provenances[i]
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.byID[p.ID]; dup {
			return nil, errors.Invariant("duplicate provenance resolution result for %s", p.ID)
		}
		p.SubRepositories = maps.Clone(p.SubRepositories)
		r.byID[p.ID] = p
		for _, kp := range p.KnownProvenancesWithoutVcsPath() {
			resolved[kp] = true
		}
	}

	seen := make(map[resultKey]bool, len(data.ScanResults))
	for _, sr := range data.ScanResults {
		kp, err := rootProvenance(sr.Provenance, "scan result of "+sr.Scanner.Name)
		if err != nil {
			return nil, err
		}
		key := resultKey{kp, sr.Scanner}
		if seen[key] {
			return nil, errors.Invariant("duplicate scan result of %s for %s", sr.Scanner.Name, kp)
		}
		seen[key] = true
		if !resolved[kp] {
			return nil, errors.Invariant("scan result of %s for %s does not belong to any resolved provenance",
				sr.Scanner.Name, kp)
		}
		sr.AdditionalData = maps.Clone(sr.AdditionalData)
		sr.Summary = sr.Summary.normalized()
		r.scanResults = append(r.scanResults, sr)
		r.resultsByProvenance[kp] = append(r.resultsByProvenance[kp], sr)
	}
	slices.SortFunc(r.scanResults, CompareScanResults)
	for kp := range r.resultsByProvenance {
		slices.SortFunc(r.resultsByProvenance[kp], CompareScanResults)
	}

	for _, fl := range data.Files {
		kp, err := rootProvenance(fl.Provenance, "file list")
		if err != nil {
			return nil, err
		}
		if _, dup := r.filesByProvenance[kp]; dup {
			return nil, errors.Invariant("duplicate file list for %s", kp)
		}
		if !resolved[kp] {
			return nil, errors.Invariant("file list for %s does not belong to any resolved provenance", kp)
		}
		fl.Files = sortFiles(slices.Clone(fl.Files))
		r.files = append(r.files, fl)
		r.filesByProvenance[kp] = fl
	}
	slices.SortFunc(r.files, func(a, b FileList) int {
		return cmp.Compare(model.ProvenanceKey(a.Provenance), model.ProvenanceKey(b.Provenance))
	})

	for id, names := range data.Scanners {
		if _, ok := r.byID[id]; !ok {
			return nil, errors.Invariant("scanners listed for %s which has no provenance resolution result", id)
		}
		names = slices.Clone(names)
		slices.Sort(names)
		r.scanners[id] = slices.Compact(names)
	}
	return r, nil
}

// rootProvenance checks that p is a known provenance at the root of its
// repository.
func rootProvenance(p model.Provenance, what string) (model.KnownProvenance, error) {
	kp, ok := p.(model.KnownProvenance)
	if !ok {
		return nil, errors.Invariant("%s must refer to a known provenance, got %s", what, provenanceString(p))
	}
	if rp, ok := kp.(model.RepositoryProvenance); ok {
		if rp.VcsInfo.Path != "" {
			return nil, errors.Invariant("%s for %s must not have a VCS path, got %q", what, rp, rp.VcsInfo.Path)
		}
		if rp.VcsInfo.Revision != rp.ResolvedRevision {
			return nil, errors.Invariant("%s for %s has revision %q which differs from the resolved revision %q",
				what, rp, rp.VcsInfo.Revision, rp.ResolvedRevision)
		}
	}
	return kp, nil
}

// StartTime returns the start of the run.
func (r *ScannerRun) StartTime() time.Time { return r.startTime }

// EndTime returns the end of the run.
func (r *ScannerRun) EndTime() time.Time { return r.endTime }

// Environment returns the environment the run was made in.
func (r *ScannerRun) Environment() Environment { return r.environment }

// Config returns the scanner configuration of the run.
func (r *ScannerRun) Config() ScannerConfiguration { return r.config }

// Identifiers returns the sorted identifiers with a provenance resolution
// result.
func (r *ScannerRun) Identifiers() []model.Identifier {
	ids := make([]model.Identifier, len(r.provenances))
	for i, p := range r.provenances {
		ids[i] = p.ID
	}
	return ids
}

// WithConfig returns a copy of the run with a different configuration. The
// stored data is shared; reconciled views are derived anew.
func (r *ScannerRun) WithConfig(cfg ScannerConfiguration) (*ScannerRun, error) {
	return NewScannerRun(RunData{
		StartTime:   r.startTime,
		EndTime:     r.endTime,
		Environment: r.environment,
		Config:      cfg,
		Provenances: r.Provenances(),
		ScanResults: r.StoredScanResults(),
		Files:       r.StoredFileLists(),
		Scanners:    r.AllScanners(),
	})
}

// Provenances returns the provenance resolution results sorted by
// identifier.
func (r *ScannerRun) Provenances() []ProvenanceResolutionResult {
	return slices.Clone(r.provenances)
}

// StoredScanResults returns the scan results as recorded, sorted by
// provenance and scanner.
func (r *ScannerRun) StoredScanResults() []ScanResult {
	return slices.Clone(r.scanResults)
}

// StoredFileLists returns the file lists as recorded, sorted by provenance.
func (r *ScannerRun) StoredFileLists() []FileList {
	return slices.Clone(r.files)
}

// Scanners returns the sorted names of the scanners run for id.
func (r *ScannerRun) Scanners(id model.Identifier) []string {
	return slices.Clone(r.scanners[id])
}

// AllScanners returns the scanner names per identifier.
func (r *ScannerRun) AllScanners() map[model.Identifier][]string {
	out := make(map[model.Identifier][]string, len(r.scanners))
	for id, names := range r.scanners {
		out[id] = slices.Clone(names)
	}
	return out
}

// ProvenanceResolution returns the provenance resolution result for id.
func (r *ScannerRun) ProvenanceResolution(id model.Identifier) (ProvenanceResolutionResult, bool) {
	p, ok := r.byID[id]
	if !ok {
		return ProvenanceResolutionResult{}, false
	}
	return *p, true
}

// IsResolved reports whether the package provenance of id was resolved.
func (r *ScannerRun) IsResolved(id model.Identifier) bool {
	p, ok := r.byID[id]
	return ok && p.IsResolved()
}

// ScanResults returns the reconciled results for id, one per scanner. See
// [ScannerRun.AllScanResults].
func (r *ScannerRun) ScanResults(id model.Identifier) []ScanResult {
	r.resultsOnce.Do(r.reconcileAll)
	return slices.Clone(r.results[id])
}

// AllScanResults returns the reconciled results of every identifier.
//
// For a package whose provenance could not be resolved the only result is a
// placeholder of the scanner [ProvenanceResolverScanner] that carries the
// resolution issue. For all other packages the results stored for the
// repository root and for every sub-repository are merged per scanner, with
// the findings of sub-repositories moved below their path. The merged
// results are then narrowed to the directory of the package within the
// repository and stripped of findings matching the ignore patterns of the
// configuration.
func (r *ScannerRun) AllScanResults() map[model.Identifier][]ScanResult {
	r.resultsOnce.Do(r.reconcileAll)
	out := make(map[model.Identifier][]ScanResult, len(r.results))
	for id, results := range r.results {
		out[id] = slices.Clone(results)
	}
	return out
}

// ScanResultsMatching returns the reconciled results for id whose scanner
// is accepted by any of matchers. Without matchers every result is
// returned. Placeholders for unresolved provenances are always included.
func (r *ScannerRun) ScanResultsMatching(id model.Identifier, matchers ...*ScannerMatcher) []ScanResult {
	results := r.ScanResults(id)
	if len(matchers) == 0 {
		return results
	}
	var out []ScanResult
	for _, sr := range results {
		if sr.Scanner.Name == ProvenanceResolverScanner || slices.ContainsFunc(matchers, func(m *ScannerMatcher) bool {
			return m.Matches(sr.Scanner)
		}) {
			out = append(out, sr)
		}
	}
	return out
}

// FileList returns the merged file list for id with paths relative to the
// package root provenance. The boolean is false if no file list was
// recorded for any provenance of the package.
func (r *ScannerRun) FileList(id model.Identifier) (FileList, bool) {
	r.fileOnce.Do(r.buildFileLists)
	fl, ok := r.fileLists[id]
	if !ok {
		return FileList{}, false
	}
	fl.Files = slices.Clone(fl.Files)
	return fl, true
}

// Issues returns the issues of the reconciled results per identifier.
// Identifiers without issues are omitted.
func (r *ScannerRun) Issues() map[model.Identifier][]model.Issue {
	r.resultsOnce.Do(r.reconcileAll)
	out := make(map[model.Identifier][]model.Issue)
	for id, results := range r.results {
		var issues []model.Issue
		for _, sr := range results {
			issues = append(issues, sr.Summary.Issues...)
		}
		if issues = model.DedupeIssues(issues); len(issues) > 0 {
			out[id] = issues
		}
	}
	return out
}
