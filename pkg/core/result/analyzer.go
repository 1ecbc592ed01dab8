package result

import (
	"maps"
	"slices"
	"time"

	"github.com/matzehuels/scantower/pkg/core/dependency"
	"github.com/matzehuels/scantower/pkg/core/model"
	"github.com/matzehuels/scantower/pkg/core/scan"
	"github.com/matzehuels/scantower/pkg/errors"
)

// AnalyzerResult holds what the package manager integrations found.
// DependencyGraphs is keyed by package manager, which is the identifier type
// of the projects it serves.
type AnalyzerResult struct {
	Projects         []model.Project                         `json:"projects" yaml:"projects"`
	Packages         []model.Package                         `json:"packages" yaml:"packages"`
	Issues           map[model.Identifier][]model.Issue      `json:"issues,omitempty" yaml:"issues,omitempty"`
	DependencyGraphs map[string]*dependency.DependencyGraph `json:"dependency_graphs,omitempty" yaml:"dependency_graphs,omitempty"`
}

// Validate checks that identifiers are unique across projects and packages
// and that every dependency graph is consistent.
func (r *AnalyzerResult) Validate() error {
	seen := make(map[model.Identifier]bool, len(r.Projects)+len(r.Packages))
	for i := range r.Projects {
		id := r.Projects[i].ID
		if seen[id] {
			return errors.Invariant("duplicate project %s", id)
		}
		seen[id] = true
	}
	for i := range r.Packages {
		id := r.Packages[i].ID
		if seen[id] {
			return errors.Invariant("duplicate package %s", id)
		}
		seen[id] = true
	}
	for _, manager := range slices.Sorted(maps.Keys(r.DependencyGraphs)) {
		g := r.DependencyGraphs[manager]
		if g == nil {
			continue
		}
		if err := g.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInconsistentGraph, err, "dependency graph of %s", manager)
		}
	}
	return nil
}

// AnalyzerRun is an analyzer result with the circumstances it was produced
// in.
type AnalyzerRun struct {
	StartTime   time.Time        `json:"start_time" yaml:"start_time"`
	EndTime     time.Time        `json:"end_time" yaml:"end_time"`
	Environment scan.Environment `json:"environment" yaml:"environment"`
	Result      AnalyzerResult   `json:"result" yaml:"result"`
}
