package result

import (
	"maps"
	"path"
	"slices"
	"sync"

	"github.com/matzehuels/scantower/pkg/core/dependency"
	"github.com/matzehuels/scantower/pkg/core/model"
	"github.com/matzehuels/scantower/pkg/core/scan"
	"github.com/matzehuels/scantower/pkg/errors"
)

// Result ties together the analyzed repository, the analyzer output and the
// scanner run. Analyzer and Scanner are optional.
//
// Queries build indexes on first use and keep them, so the fields must not
// be modified once a query was made. A Result is safe for concurrent
// queries.
type Result struct {
	Repository Repository
	Analyzer   *AnalyzerRun
	Scanner    *scan.ScannerRun
	Labels     map[string]string

	indexOnce sync.Once
	idx       *index

	includedOnce sync.Once
	included     map[model.Identifier]bool
}

type index struct {
	projects map[model.Identifier]*model.Project
	packages map[model.Identifier]*model.Package
	nav      *dependency.CompositeNavigator
	excluded map[model.Identifier]bool
}

// Validate checks the analyzer result and the repository configuration.
func (r *Result) Validate() error {
	if err := r.Repository.Config.Excludes.Validate(); err != nil {
		return err
	}
	if r.Analyzer == nil {
		return nil
	}
	if err := r.Analyzer.Result.Validate(); err != nil {
		return err
	}
	if r.Scanner == nil {
		return nil
	}
	for _, id := range r.Scanner.Identifiers() {
		if _, ok := r.index().projects[id]; ok {
			continue
		}
		if _, ok := r.index().packages[id]; !ok {
			return errors.Invariant("scanner run has results for %s which the analyzer did not find", id)
		}
	}
	return nil
}

func (r *Result) index() *index {
	r.indexOnce.Do(func() {
		idx := &index{
			projects: make(map[model.Identifier]*model.Project),
			packages: make(map[model.Identifier]*model.Package),
			excluded: make(map[model.Identifier]bool),
		}
		var graphs map[string]*dependency.DependencyGraph
		if r.Analyzer != nil {
			res := &r.Analyzer.Result
			graphs = res.DependencyGraphs
			for i := range res.Projects {
				p := &res.Projects[i]
				idx.projects[p.ID] = p
				idx.excluded[p.ID] = r.Repository.Config.Excludes.IsPathExcluded(r.definitionFilePath(p))
			}
			for i := range res.Packages {
				idx.packages[res.Packages[i].ID] = &res.Packages[i]
			}
		}
		idx.nav = dependency.NewCompositeNavigator(graphs)
		r.idx = idx
	})
	return r.idx
}

// definitionFilePath returns the path of the project's definition file
// relative to the root of the analyzed repository.
func (r *Result) definitionFilePath(p *model.Project) string {
	rel, _ := r.Repository.RelativePath(p.VcsProcessed)
	return path.Join(rel, p.DefinitionFilePath)
}

// Navigator returns the navigator over the dependencies of all projects.
func (r *Result) Navigator() dependency.Navigator {
	return r.index().nav
}

// Project returns the project with the given identifier.
func (r *Result) Project(id model.Identifier) (*model.Project, bool) {
	p, ok := r.index().projects[id]
	return p, ok
}

// Package returns the package with the given identifier. Projects are
// returned as packages too.
func (r *Result) Package(id model.Identifier) (*model.Package, bool) {
	if p, ok := r.index().packages[id]; ok {
		return p, true
	}
	if p, ok := r.index().projects[id]; ok {
		return model.ProjectAsPackage(p), true
	}
	return nil, false
}

// Projects returns the projects sorted by identifier, without excluded ones
// if omitExcluded is set.
func (r *Result) Projects(omitExcluded bool) []*model.Project {
	var out []*model.Project
	for _, p := range r.index().projects {
		if omitExcluded && r.IsProjectExcluded(p.ID) {
			continue
		}
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b *model.Project) int { return model.CompareIdentifiers(a.ID, b.ID) })
	return out
}

// Packages returns the packages sorted by identifier, without excluded ones
// if omitExcluded is set.
func (r *Result) Packages(omitExcluded bool) []*model.Package {
	var out []*model.Package
	for _, p := range r.index().packages {
		if omitExcluded && r.IsPackageExcluded(p.ID) {
			continue
		}
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b *model.Package) int { return model.CompareIdentifiers(a.ID, b.ID) })
	return out
}

// IsProjectExcluded reports whether the definition file of the project
// matches a path exclude. Unknown identifiers are not excluded.
func (r *Result) IsProjectExcluded(id model.Identifier) bool {
	return r.index().excluded[id]
}

// IsPackageExcluded reports whether the package is excluded: it is not a
// dependency in any scope that is not excluded of any project that is not
// excluded. Packages no project depends on are excluded.
func (r *Result) IsPackageExcluded(id model.Identifier) bool {
	r.includedOnce.Do(r.collectIncluded)
	return !r.included[id]
}

// IsExcluded reports whether the project or package is excluded.
func (r *Result) IsExcluded(id model.Identifier) bool {
	if _, ok := r.index().projects[id]; ok {
		return r.IsProjectExcluded(id)
	}
	return r.IsPackageExcluded(id)
}

func (r *Result) collectIncluded() {
	r.included = make(map[model.Identifier]bool)
	nav := r.Navigator()
	excludes := r.Repository.Config.Excludes
	for _, p := range r.Projects(true) {
		for _, scope := range nav.ScopeNames(p) {
			if excludes.IsScopeExcluded(scope) {
				continue
			}
			for _, id := range dependency.DependenciesForScope(nav, p, scope, dependency.Unbounded, nil) {
				r.included[id] = true
			}
		}
	}
}

// Dependencies returns the dependencies of a project or package up to
// maxDepth levels deep, with [dependency.Unbounded] for all levels. For a
// package the dependencies of all its occurrences in all projects are
// united. The result is sorted.
func (r *Result) Dependencies(id model.Identifier, maxDepth int) []model.Identifier {
	nav := r.Navigator()
	set := make(map[model.Identifier]struct{})
	for _, p := range r.Projects(false) {
		if p.ID == id {
			for _, dep := range dependency.ProjectDependencies(nav, p, maxDepth, nil) {
				set[dep] = struct{}{}
			}
		}
		for _, dep := range dependency.PackageDependencies(nav, p, id, maxDepth, nil) {
			set[dep] = struct{}{}
		}
	}
	return slices.SortedFunc(maps.Keys(set), model.CompareIdentifiers)
}

// ScanResults returns the reconciled scan results for id.
func (r *Result) ScanResults(id model.Identifier) []scan.ScanResult {
	if r.Scanner == nil {
		return nil
	}
	return r.Scanner.ScanResults(id)
}

// ScanResultsMatching returns the scan results for id whose scanner is
// accepted by any of matchers, see [scan.ScannerRun.ScanResultsMatching].
func (r *Result) ScanResultsMatching(id model.Identifier, matchers ...*scan.ScannerMatcher) []scan.ScanResult {
	if r.Scanner == nil {
		return nil
	}
	return r.Scanner.ScanResultsMatching(id, matchers...)
}

// FileList returns the file list for id.
func (r *Result) FileList(id model.Identifier) (scan.FileList, bool) {
	if r.Scanner == nil {
		return scan.FileList{}, false
	}
	return r.Scanner.FileList(id)
}

// Issues returns the issues of the analyzer, of the dependency trees of all
// projects and of the reconciled scan results, keyed by identifier. Issues
// below minSeverity are dropped, so are issues of excluded projects and
// packages if omitExcluded is set. Identifiers without issues are omitted.
func (r *Result) Issues(omitExcluded bool, minSeverity model.Severity) map[model.Identifier][]model.Issue {
	all := make(map[model.Identifier][]model.Issue)
	add := func(issues map[model.Identifier][]model.Issue) {
		for id, list := range issues {
			all[id] = append(all[id], list...)
		}
	}

	if r.Analyzer != nil {
		add(r.Analyzer.Result.Issues)
		nav := r.Navigator()
		for _, p := range r.Projects(false) {
			add(dependency.ProjectIssues(nav, p))
		}
	}
	if r.Scanner != nil {
		add(r.Scanner.Issues())
	}

	out := make(map[model.Identifier][]model.Issue, len(all))
	for id, list := range all {
		if omitExcluded && r.IsExcluded(id) {
			continue
		}
		list = model.FilterBySeverity(model.DedupeIssues(list), minSeverity)
		if len(list) == 0 {
			continue
		}
		model.SortIssues(list)
		out[id] = list
	}
	return out
}
