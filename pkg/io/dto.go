package io

import (
	"maps"
	"slices"
	"time"

	"github.com/matzehuels/scantower/pkg/core/dependency"
	"github.com/matzehuels/scantower/pkg/core/model"
	"github.com/matzehuels/scantower/pkg/core/result"
	"github.com/matzehuels/scantower/pkg/core/scan"
	"github.com/matzehuels/scantower/pkg/errors"
)

// resultFile is the top-level document of a result file.
type resultFile struct {
	Repository result.Repository `json:"repository" yaml:"repository"`
	Analyzer   *analyzerRun      `json:"analyzer,omitempty" yaml:"analyzer,omitempty"`
	Scanner    *scannerRun       `json:"scanner,omitempty" yaml:"scanner,omitempty"`
	Labels     map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
}

type analyzerRun struct {
	StartTime   time.Time        `json:"start_time" yaml:"start_time"`
	EndTime     time.Time        `json:"end_time" yaml:"end_time"`
	Environment scan.Environment `json:"environment" yaml:"environment"`
	Result      analyzerResult   `json:"result" yaml:"result"`
}

type analyzerResult struct {
	Projects         []model.Project                         `json:"projects" yaml:"projects"`
	Packages         []model.Package                         `json:"packages" yaml:"packages"`
	Issues           map[string][]model.Issue                `json:"issues,omitempty" yaml:"issues,omitempty"`
	DependencyGraphs map[string]*dependency.DependencyGraph `json:"dependency_graphs,omitempty" yaml:"dependency_graphs,omitempty"`
}

type scannerRun struct {
	StartTime   time.Time                 `json:"start_time" yaml:"start_time"`
	EndTime     time.Time                 `json:"end_time" yaml:"end_time"`
	Environment scan.Environment          `json:"environment" yaml:"environment"`
	Config      scan.ScannerConfiguration `json:"config" yaml:"config"`
	Provenances []provenanceResolution    `json:"provenances" yaml:"provenances"`
	ScanResults []scanResult              `json:"scan_results" yaml:"scan_results"`
	Files       []fileList                `json:"files,omitempty" yaml:"files,omitempty"`
	Scanners    map[string][]string       `json:"scanners,omitempty" yaml:"scanners,omitempty"`
}

// provenance is the envelope of the provenance variants. An artifact sets
// SourceArtifact, a repository sets VcsInfo and ResolvedRevision, and an
// empty envelope is the unknown provenance.
type provenance struct {
	SourceArtifact   *model.RemoteArtifact `json:"source_artifact,omitempty" yaml:"source_artifact,omitempty"`
	VcsInfo          *model.VcsInfo        `json:"vcs_info,omitempty" yaml:"vcs_info,omitempty"`
	ResolvedRevision string                `json:"resolved_revision,omitempty" yaml:"resolved_revision,omitempty"`
}

type provenanceResolution struct {
	ID                               model.Identifier         `json:"id" yaml:"id"`
	PackageProvenance                *provenance              `json:"package_provenance,omitempty" yaml:"package_provenance,omitempty"`
	SubRepositories                  map[string]model.VcsInfo `json:"sub_repositories,omitempty" yaml:"sub_repositories,omitempty"`
	PackageProvenanceResolutionIssue *model.Issue             `json:"package_provenance_resolution_issue,omitempty" yaml:"package_provenance_resolution_issue,omitempty"`
	NestedProvenanceResolutionIssue  *model.Issue             `json:"nested_provenance_resolution_issue,omitempty" yaml:"nested_provenance_resolution_issue,omitempty"`
}

type scanResult struct {
	Provenance     provenance          `json:"provenance" yaml:"provenance"`
	Scanner        scan.ScannerDetails `json:"scanner" yaml:"scanner"`
	Summary        scan.ScanSummary    `json:"summary" yaml:"summary"`
	AdditionalData map[string]string   `json:"additional_data,omitempty" yaml:"additional_data,omitempty"`
}

type fileList struct {
	Provenance provenance       `json:"provenance" yaml:"provenance"`
	Files      []scan.FileEntry `json:"files" yaml:"files"`
}

func fromProvenance(p model.Provenance) provenance {
	switch p := p.(type) {
	case model.ArtifactProvenance:
		artifact := p.SourceArtifact
		return provenance{SourceArtifact: &artifact}
	case model.RepositoryProvenance:
		vcs := p.VcsInfo
		return provenance{VcsInfo: &vcs, ResolvedRevision: p.ResolvedRevision}
	}
	return provenance{}
}

func (p provenance) toModel() (model.Provenance, error) {
	switch {
	case p.SourceArtifact != nil && p.VcsInfo != nil:
		return nil, errors.New(errors.ErrCodeInvalidProvenance, "provenance has both a source artifact and VCS info")
	case p.SourceArtifact != nil:
		return model.ArtifactProvenance{SourceArtifact: *p.SourceArtifact}, nil
	case p.VcsInfo != nil:
		return model.NewRepositoryProvenance(*p.VcsInfo, p.ResolvedRevision)
	}
	return model.UnknownProvenance{}, nil
}

func (p provenance) toKnown() (model.KnownProvenance, error) {
	mp, err := p.toModel()
	if err != nil {
		return nil, err
	}
	kp, ok := mp.(model.KnownProvenance)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidProvenance, "provenance must be known")
	}
	return kp, nil
}

func fromResult(r *result.Result) resultFile {
	out := resultFile{Repository: r.Repository, Labels: r.Labels}
	if a := r.Analyzer; a != nil {
		run := &analyzerRun{
			StartTime:   a.StartTime,
			EndTime:     a.EndTime,
			Environment: a.Environment,
			Result: analyzerResult{
				Projects: slices.SortedFunc(slices.Values(a.Result.Projects), func(x, y model.Project) int {
					return model.CompareIdentifiers(x.ID, y.ID)
				}),
				Packages: slices.SortedFunc(slices.Values(a.Result.Packages), func(x, y model.Package) int {
					return model.CompareIdentifiers(x.ID, y.ID)
				}),
				DependencyGraphs: a.Result.DependencyGraphs,
			},
		}
		for i := range run.Result.Packages {
			run.Result.Packages[i].Normalize()
		}
		if len(a.Result.Issues) > 0 {
			run.Result.Issues = make(map[string][]model.Issue, len(a.Result.Issues))
			for id, issues := range a.Result.Issues {
				run.Result.Issues[id.String()] = issues
			}
		}
		out.Analyzer = run
	}
	if r.Scanner != nil {
		out.Scanner = fromScannerRun(r.Scanner)
	}
	return out
}

func fromScannerRun(s *scan.ScannerRun) *scannerRun {
	out := &scannerRun{
		StartTime:   s.StartTime(),
		EndTime:     s.EndTime(),
		Environment: s.Environment(),
		Config:      s.Config(),
		Provenances: []provenanceResolution{},
		ScanResults: []scanResult{},
	}
	for _, p := range s.Provenances() {
		pr := provenanceResolution{
			ID:                               p.ID,
			SubRepositories:                  p.SubRepositories,
			PackageProvenanceResolutionIssue: p.PackageProvenanceResolutionIssue,
			NestedProvenanceResolutionIssue:  p.NestedProvenanceResolutionIssue,
		}
		if p.PackageProvenance != nil {
			env := fromProvenance(p.PackageProvenance)
			pr.PackageProvenance = &env
		}
		out.Provenances = append(out.Provenances, pr)
	}
	for _, sr := range s.StoredScanResults() {
		out.ScanResults = append(out.ScanResults, scanResult{
			Provenance:     fromProvenance(sr.Provenance),
			Scanner:        sr.Scanner,
			Summary:        sr.Summary,
			AdditionalData: sr.AdditionalData,
		})
	}
	for _, fl := range s.StoredFileLists() {
		out.Files = append(out.Files, fileList{Provenance: fromProvenance(fl.Provenance), Files: fl.Files})
	}
	if scanners := s.AllScanners(); len(scanners) > 0 {
		out.Scanners = make(map[string][]string, len(scanners))
		for id, names := range scanners {
			out.Scanners[id.String()] = names
		}
	}
	return out
}

func (f *resultFile) toResult() (*result.Result, error) {
	res := &result.Result{Repository: f.Repository, Labels: f.Labels}
	if a := f.Analyzer; a != nil {
		run := &result.AnalyzerRun{
			StartTime:   a.StartTime,
			EndTime:     a.EndTime,
			Environment: a.Environment,
			Result: result.AnalyzerResult{
				Projects:         a.Result.Projects,
				Packages:         a.Result.Packages,
				DependencyGraphs: a.Result.DependencyGraphs,
			},
		}
		if len(a.Result.Issues) > 0 {
			run.Result.Issues = make(map[model.Identifier][]model.Issue, len(a.Result.Issues))
			for _, key := range slices.Sorted(maps.Keys(a.Result.Issues)) {
				id, err := model.ParseIdentifier(key)
				if err != nil {
					return nil, errors.Wrap(errors.ErrCodeInvalidIdentifier, err, "analyzer issues")
				}
				run.Result.Issues[id] = a.Result.Issues[key]
			}
		}
		for i := range run.Result.Packages {
			run.Result.Packages[i].Normalize()
		}
		res.Analyzer = run
	}
	if f.Scanner != nil {
		run, err := f.Scanner.toScannerRun()
		if err != nil {
			return nil, err
		}
		res.Scanner = run
	}
	if err := res.Validate(); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *scannerRun) toScannerRun() (*scan.ScannerRun, error) {
	data := scan.RunData{
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		Environment: s.Environment,
		Config:      s.Config,
		Scanners:    make(map[model.Identifier][]string, len(s.Scanners)),
	}
	for _, p := range s.Provenances {
		pr := scan.ProvenanceResolutionResult{
			ID:                               p.ID,
			SubRepositories:                  p.SubRepositories,
			PackageProvenanceResolutionIssue: p.PackageProvenanceResolutionIssue,
			NestedProvenanceResolutionIssue:  p.NestedProvenanceResolutionIssue,
		}
		if p.PackageProvenance != nil {
			kp, err := p.PackageProvenance.toKnown()
			if err != nil {
				return nil, errors.Wrap(errors.GetCode(err), err, "package provenance of %s", p.ID)
			}
			pr.PackageProvenance = kp
		}
		data.Provenances = append(data.Provenances, pr)
	}
	for _, sr := range s.ScanResults {
		p, err := sr.Provenance.toModel()
		if err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "scan result of %s", sr.Scanner.Name)
		}
		data.ScanResults = append(data.ScanResults, scan.ScanResult{
			Provenance:     p,
			Scanner:        sr.Scanner,
			Summary:        sr.Summary,
			AdditionalData: sr.AdditionalData,
		})
	}
	for _, fl := range s.Files {
		kp, err := fl.Provenance.toKnown()
		if err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "file list")
		}
		data.Files = append(data.Files, scan.FileList{Provenance: kp, Files: fl.Files})
	}
	for _, key := range slices.Sorted(maps.Keys(s.Scanners)) {
		id, err := model.ParseIdentifier(key)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidIdentifier, err, "scanners")
		}
		data.Scanners[id] = s.Scanners[key]
	}
	return scan.NewScannerRun(data)
}
