package scan

import (
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/scantower/pkg/core/model"
	"github.com/matzehuels/scantower/pkg/errors"
)

var (
	t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	appID    = model.MustParseIdentifier("Maven:com.example:app:1.0")
	moduleID = model.MustParseIdentifier("Maven:com.example:app-module:1.0")
	brokenID = model.MustParseIdentifier("NPM::left-pad:1.3.0")

	appVcs = model.VcsInfo{Type: model.VcsGit, URL: "https://github.com/example/app.git", Revision: "main"}
	libVcs = model.VcsInfo{Type: model.VcsGit, URL: "https://github.com/example/vendored.git", Revision: "def456"}

	// appRoot is the stored form of the app repository.
	appRoot = model.RepositoryProvenance{VcsInfo: appVcs.WithRevision("abc123"), ResolvedRevision: "abc123"}
	libRoot = model.RepositoryProvenance{VcsInfo: libVcs, ResolvedRevision: "def456"}

	scancode = ScannerDetails{Name: "ScanCode", Version: "32.1.0", Configuration: "--license"}
)

func appResolution() ProvenanceResolutionResult {
	return ProvenanceResolutionResult{
		ID:                appID,
		PackageProvenance: model.RepositoryProvenance{VcsInfo: appVcs, ResolvedRevision: "abc123"},
		SubRepositories:   map[string]model.VcsInfo{"lib/vendored": libVcs},
	}
}

func moduleResolution() ProvenanceResolutionResult {
	return ProvenanceResolutionResult{
		ID:                moduleID,
		PackageProvenance: model.RepositoryProvenance{VcsInfo: appVcs.WithPath("module"), ResolvedRevision: "abc123"},
		SubRepositories:   map[string]model.VcsInfo{"lib/vendored": libVcs},
	}
}

func brokenResolution() ProvenanceResolutionResult {
	issue := model.Issue{Timestamp: t0, Source: "Downloader", Message: "timeout cloning repo", Severity: model.SeverityError}
	return ProvenanceResolutionResult{ID: brokenID, PackageProvenanceResolutionIssue: &issue}
}

func rootResult() ScanResult {
	return ScanResult{
		Provenance: appRoot,
		Scanner:    scancode,
		Summary: ScanSummary{
			StartTime: t0,
			EndTime:   t0.Add(time.Minute),
			FileCount: 3,
			LicenseFindings: []LicenseFinding{
				lic("Apache-2.0", "LICENSE", 1),
				lic("MIT", "src/b.c", 1),
				lic("BSD-3-Clause", "module/x.c", 1),
				lic("GPL-2.0-only", "test/fixture.c", 1),
			},
		},
	}
}

func libResult() ScanResult {
	return ScanResult{
		Provenance: libRoot,
		Scanner:    scancode,
		Summary: ScanSummary{
			StartTime:       t0.Add(time.Minute),
			EndTime:         t0.Add(2 * time.Minute),
			FileCount:       1,
			LicenseFindings: []LicenseFinding{lic("Zlib", "src/a.c", 1)},
		},
	}
}

func testRunData() RunData {
	return RunData{
		StartTime:   t0,
		EndTime:     t0.Add(time.Hour),
		Config:      ScannerConfiguration{IgnorePatterns: []string{"test/**"}},
		Provenances: []ProvenanceResolutionResult{brokenResolution(), moduleResolution(), appResolution()},
		ScanResults: []ScanResult{libResult(), rootResult()},
		Files: []FileList{
			{Provenance: appRoot, Files: []FileEntry{{Path: "src/b.c", SHA1: "b"}, {Path: "module/x.c", SHA1: "x"}}},
			{Provenance: libRoot, Files: []FileEntry{{Path: "src/a.c", SHA1: "a"}}},
		},
		Scanners: map[model.Identifier][]string{
			appID:    {"ScanCode"},
			moduleID: {"ScanCode", "ScanCode"},
		},
	}
}

func mustRun(t *testing.T, data RunData) *ScannerRun {
	t.Helper()
	r, err := NewScannerRun(data)
	if err != nil {
		t.Fatalf("NewScannerRun() error = %v", err)
	}
	return r
}

func TestNewScannerRunSorts(t *testing.T) {
	r := mustRun(t, testRunData())
	want := []model.Identifier{appID, moduleID, brokenID}
	if got := r.Identifiers(); !slices.Equal(got, want) {
		t.Errorf("Identifiers() = %v, want %v", got, want)
	}
	if got := r.Scanners(moduleID); !slices.Equal(got, []string{"ScanCode"}) {
		t.Errorf("Scanners() = %v, want [ScanCode]", got)
	}
	if !r.IsResolved(appID) || r.IsResolved(brokenID) {
		t.Error("IsResolved() mismatch")
	}
}

func TestNewScannerRunInvariants(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*RunData)
	}{
		{"duplicate result", func(d *RunData) {
			d.ScanResults = append(d.ScanResults, rootResult())
		}},
		{"result with vcs path", func(d *RunData) {
			sr := rootResult()
			sr.Provenance = model.RepositoryProvenance{VcsInfo: appRoot.VcsInfo.WithPath("module"), ResolvedRevision: "abc123"}
			d.ScanResults = []ScanResult{sr}
		}},
		{"result with unpinned revision", func(d *RunData) {
			sr := rootResult()
			sr.Provenance = model.RepositoryProvenance{VcsInfo: appVcs, ResolvedRevision: "abc123"}
			d.ScanResults = []ScanResult{sr}
		}},
		{"result for unknown provenance", func(d *RunData) {
			sr := rootResult()
			sr.Provenance = model.UnknownProvenance{}
			d.ScanResults = []ScanResult{sr}
		}},
		{"orphan result", func(d *RunData) {
			sr := rootResult()
			sr.Provenance = model.ArtifactProvenance{SourceArtifact: model.RemoteArtifact{URL: "https://example.com/x.tgz"}}
			d.ScanResults = []ScanResult{sr}
		}},
		{"orphan file list", func(d *RunData) {
			d.Files = append(d.Files, FileList{Provenance: model.RepositoryProvenance{
				VcsInfo: libVcs.WithRevision("other"), ResolvedRevision: "other"}})
		}},
		{"duplicate file list", func(d *RunData) {
			d.Files = append(d.Files, FileList{Provenance: libRoot})
		}},
		{"duplicate provenance", func(d *RunData) {
			d.Provenances = append(d.Provenances, appResolution())
		}},
		{"invalid provenance", func(d *RunData) {
			p := appResolution()
			p.PackageProvenanceResolutionIssue = brokenResolution().PackageProvenanceResolutionIssue
			d.Provenances = []ProvenanceResolutionResult{p}
			d.ScanResults, d.Files, d.Scanners = nil, nil, nil
		}},
		{"scanners for unknown package", func(d *RunData) {
			d.Scanners[model.MustParseIdentifier("Go::example.com/x:v1")] = []string{"ScanCode"}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := testRunData()
			tt.modify(&data)
			if _, err := NewScannerRun(data); !errors.Is(err, errors.ErrCodeInvariant) {
				t.Errorf("NewScannerRun() error = %v, want %v", err, errors.ErrCodeInvariant)
			}
		})
	}
}

func TestScanResultsWithSubRepository(t *testing.T) {
	r := mustRun(t, testRunData())

	results := r.ScanResults(appID)
	if len(results) != 1 {
		t.Fatalf("ScanResults() returned %d results, want 1", len(results))
	}
	sr := results[0]
	if sr.Provenance != appResolution().PackageProvenance {
		t.Errorf("Provenance = %v, want package provenance", sr.Provenance)
	}
	if sr.Scanner != scancode {
		t.Errorf("Scanner = %+v, want %+v", sr.Scanner, scancode)
	}
	want := []string{"LICENSE", "lib/vendored/src/a.c", "module/x.c", "src/b.c"}
	if got := licensePaths(sr.Summary.LicenseFindings); !slices.Equal(got, want) {
		t.Errorf("license paths = %v, want %v", got, want)
	}
	if sr.Summary.FileCount != 4 {
		t.Errorf("FileCount = %d, want 4", sr.Summary.FileCount)
	}
	if !sr.Summary.StartTime.Equal(t0) || !sr.Summary.EndTime.Equal(t0.Add(2*time.Minute)) {
		t.Errorf("time window = [%v, %v]", sr.Summary.StartTime, sr.Summary.EndTime)
	}
}

func TestScanResultsNarrowedToPackagePath(t *testing.T) {
	r := mustRun(t, testRunData())
	results := r.ScanResults(moduleID)
	if len(results) != 1 {
		t.Fatalf("ScanResults() returned %d results, want 1", len(results))
	}
	want := []string{"LICENSE", "module/x.c"}
	if got := licensePaths(results[0].Summary.LicenseFindings); !slices.Equal(got, want) {
		t.Errorf("license paths = %v, want %v", got, want)
	}
	if got := model.VcsPath(results[0].Provenance); got != "module" {
		t.Errorf("VcsPath = %q, want %q", got, "module")
	}
}

func TestScanResultsUnresolved(t *testing.T) {
	r := mustRun(t, testRunData())
	results := r.ScanResults(brokenID)
	if len(results) != 1 {
		t.Fatalf("ScanResults() returned %d results, want 1", len(results))
	}
	sr := results[0]
	if sr.Scanner.Name != ProvenanceResolverScanner {
		t.Errorf("Scanner.Name = %q, want %q", sr.Scanner.Name, ProvenanceResolverScanner)
	}
	if model.IsKnown(sr.Provenance) {
		t.Errorf("Provenance = %v, want unknown", sr.Provenance)
	}
	if len(sr.Summary.LicenseFindings)+len(sr.Summary.CopyrightFindings) != 0 {
		t.Error("placeholder has findings")
	}
	if len(sr.Summary.Issues) != 1 || sr.Summary.Issues[0].Message != "timeout cloning repo" {
		t.Errorf("Issues = %v", sr.Summary.Issues)
	}
	if issues := r.Issues()[brokenID]; len(issues) != 1 {
		t.Errorf("Issues()[%s] = %v", brokenID, issues)
	}
}

func TestScanResultsOnlyListedScanners(t *testing.T) {
	data := testRunData()
	other := rootResult()
	other.Scanner = ScannerDetails{Name: "Licensee", Version: "9.16.0"}
	data.ScanResults = append(data.ScanResults, other)
	data.Scanners[moduleID] = []string{"Licensee"}
	r := mustRun(t, data)

	if got := r.ScanResults(appID); len(got) != 1 || got[0].Scanner.Name != "ScanCode" {
		t.Errorf("ScanResults(app) = %v, want only ScanCode", got)
	}
	if got := r.ScanResults(moduleID); len(got) != 1 || got[0].Scanner.Name != "Licensee" {
		t.Errorf("ScanResults(module) = %v, want only Licensee", got)
	}
}

func TestScanResultsNestedIssue(t *testing.T) {
	nested := model.Issue{Timestamp: t0, Source: "Downloader", Message: "submodule missing"}

	withResults := testRunData()
	withResults.Provenances[2].NestedProvenanceResolutionIssue = &nested
	r := mustRun(t, withResults)
	results := r.ScanResults(appID)
	if len(results) != 1 || !slices.ContainsFunc(results[0].Summary.Issues, func(i model.Issue) bool {
		return i.Message == nested.Message
	}) {
		t.Errorf("ScanResults() = %v, want nested issue attached", results)
	}

	withoutResults := testRunData()
	withoutResults.Provenances[2].NestedProvenanceResolutionIssue = &nested
	withoutResults.ScanResults = nil
	r = mustRun(t, withoutResults)
	results = r.ScanResults(appID)
	if len(results) != 1 || results[0].Scanner.Name != ProvenanceResolverScanner {
		t.Errorf("ScanResults() = %v, want placeholder", results)
	}
}

func TestScanResultsMatching(t *testing.T) {
	r := mustRun(t, testRunData())
	m, err := MatcherForScanner(ScannerDetails{Name: "ScanCode", Version: "31.0.0"})
	if err != nil {
		t.Fatal(err)
	}
	if got := r.ScanResultsMatching(appID, m); len(got) != 0 {
		t.Errorf("ScanResultsMatching(31.0) = %v, want none", got)
	}
	if got := r.ScanResultsMatching(brokenID, m); len(got) != 1 {
		t.Errorf("ScanResultsMatching() dropped the placeholder")
	}

	current, err := ParseScannerMatcher("ScanCode@~32.1")
	if err != nil {
		t.Fatal(err)
	}
	if got := r.ScanResultsMatching(appID, m, current); len(got) != len(r.ScanResults(appID)) {
		t.Errorf("ScanResultsMatching(31.0, ~32.1) = %d results, want %d", len(got), len(r.ScanResults(appID)))
	}
	if got := r.ScanResultsMatching(appID); len(got) != len(r.ScanResults(appID)) {
		t.Errorf("ScanResultsMatching() without matchers = %d results, want all", len(got))
	}
}

func TestWithConfig(t *testing.T) {
	r := mustRun(t, testRunData())
	narrowed, err := r.WithConfig(ScannerConfiguration{IgnorePatterns: []string{"test/**", "lib/**"}})
	if err != nil {
		t.Fatalf("WithConfig() error = %v", err)
	}

	paths := func(run *ScannerRun) []string {
		var out []string
		for _, sr := range run.ScanResults(appID) {
			for _, f := range sr.Summary.LicenseFindings {
				out = append(out, f.Location.Path)
			}
		}
		return out
	}
	if got := paths(narrowed); slices.Contains(got, "lib/vendored/src/a.c") {
		t.Errorf("findings = %v, want lib/** ignored", got)
	}
	if got := paths(r); !slices.Contains(got, "lib/vendored/src/a.c") {
		t.Errorf("original run changed: %v", got)
	}
	if len(narrowed.StoredScanResults()) != len(r.StoredScanResults()) {
		t.Error("WithConfig() dropped stored results")
	}
}

func TestFileList(t *testing.T) {
	r := mustRun(t, testRunData())

	fl, ok := r.FileList(appID)
	if !ok {
		t.Fatal("FileList() not found")
	}
	var paths []string
	for _, f := range fl.Files {
		paths = append(paths, f.Path)
	}
	if want := []string{"lib/vendored/src/a.c", "module/x.c", "src/b.c"}; !slices.Equal(paths, want) {
		t.Errorf("paths = %v, want %v", paths, want)
	}

	fl, _ = r.FileList(moduleID)
	if len(fl.Files) != 1 || fl.Files[0].Path != "module/x.c" {
		t.Errorf("FileList(module) = %v", fl.Files)
	}
	if _, ok := r.FileList(brokenID); ok {
		t.Error("FileList() found a list for an unresolved package")
	}
}

func TestMerge(t *testing.T) {
	a := testRunData()
	b := testRunData()
	b.StartTime, b.EndTime = t0.Add(-time.Hour), t0.Add(30*time.Minute)
	extra := rootResult()
	extra.Summary = ScanSummary{FileCount: 1, LicenseFindings: []LicenseFinding{lic("0BSD", "src/c.c", 1)}}
	b.ScanResults = []ScanResult{extra}
	b.Files = []FileList{{Provenance: appRoot, Files: []FileEntry{{Path: "src/c.c", SHA1: "c"}}}}

	merged, err := Merge(mustRun(t, a), mustRun(t, b))
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if !merged.StartTime().Equal(t0.Add(-time.Hour)) || !merged.EndTime().Equal(t0.Add(time.Hour)) {
		t.Errorf("time window = [%v, %v]", merged.StartTime(), merged.EndTime())
	}
	if got := len(merged.Provenances()); got != 3 {
		t.Errorf("len(Provenances()) = %d, want 3", got)
	}
	stored := merged.StoredScanResults()
	if len(stored) != 2 {
		t.Fatalf("len(StoredScanResults()) = %d, want 2", len(stored))
	}
	results := merged.ScanResults(appID)
	if got := licensePaths(results[0].Summary.LicenseFindings); !slices.Contains(got, "src/c.c") || !slices.Contains(got, "src/b.c") {
		t.Errorf("license paths = %v, want both src/b.c and src/c.c", got)
	}
	fl, _ := merged.FileList(appID)
	if len(fl.Files) != 4 {
		t.Errorf("len(FileList().Files) = %d, want 4", len(fl.Files))
	}
}

func TestMergeIdempotent(t *testing.T) {
	r := mustRun(t, testRunData())
	merged, err := Merge(r, r)
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}

	stored, want := merged.StoredScanResults(), r.StoredScanResults()
	if !slices.EqualFunc(stored, want, ScanResult.Equal) {
		t.Errorf("StoredScanResults() = %v, want %v", stored, want)
	}
	for id, results := range r.AllScanResults() {
		got := merged.ScanResults(id)
		if !slices.EqualFunc(got, results, ScanResult.Equal) {
			t.Errorf("ScanResults(%s) = %v, want %v", id, got, results)
		}
	}
	if got := merged.ScanResults(appID)[0].Summary.FileCount; got != r.ScanResults(appID)[0].Summary.FileCount {
		t.Errorf("FileCount after self-merge = %d, want %d", got, r.ScanResults(appID)[0].Summary.FileCount)
	}

	// A result that differs only in finding order is the same result.
	b := testRunData()
	shuffled := rootResult()
	slices.Reverse(shuffled.Summary.LicenseFindings)
	b.ScanResults = []ScanResult{libResult(), shuffled}
	merged, err = Merge(r, mustRun(t, b))
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if got := merged.StoredScanResults(); !slices.EqualFunc(got, want, ScanResult.Equal) {
		t.Errorf("StoredScanResults() = %v, want %v", got, want)
	}
}

func TestNewScannerRunNormalizesSummaries(t *testing.T) {
	a := mustRun(t, testRunData())
	data := testRunData()
	shuffled := rootResult()
	slices.Reverse(shuffled.Summary.LicenseFindings)
	data.ScanResults = []ScanResult{shuffled, libResult()}
	b := mustRun(t, data)

	for i, sr := range a.StoredScanResults() {
		other := b.StoredScanResults()[i]
		if !slices.Equal(sr.Summary.LicenseFindings, other.Summary.LicenseFindings) {
			t.Errorf("stored findings = %v, want %v", other.Summary.LicenseFindings, sr.Summary.LicenseFindings)
		}
	}
}

func TestMergeConfigMismatch(t *testing.T) {
	a := testRunData()
	b := testRunData()
	b.Config.SkipExcluded = true
	if _, err := Merge(mustRun(t, a), mustRun(t, b)); !errors.Is(err, errors.ErrCodeConfigMismatch) {
		t.Errorf("Merge() error = %v, want %v", err, errors.ErrCodeConfigMismatch)
	}
}

func TestMergeConflictingProvenances(t *testing.T) {
	a := testRunData()
	b := testRunData()
	b.Provenances = []ProvenanceResolutionResult{brokenResolution()}
	b.Provenances[0].ID = appID
	b.ScanResults, b.Files, b.Scanners = nil, nil, nil
	if _, err := Merge(mustRun(t, a), mustRun(t, b)); !errors.Is(err, errors.ErrCodeInvariant) {
		t.Errorf("Merge() error = %v, want %v", err, errors.ErrCodeInvariant)
	}
}
