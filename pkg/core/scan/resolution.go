package scan

import (
	"maps"
	"slices"

	"github.com/matzehuels/scantower/pkg/core/model"
	"github.com/matzehuels/scantower/pkg/errors"
)

// ProvenanceResolutionResult records where the source code of a package was
// found. Either PackageProvenance or PackageProvenanceResolutionIssue is
// set, never both. SubRepositories holds the nested repositories (such as
// Git submodules) of a resolved repository, keyed by their path relative to
// the repository root.
type ProvenanceResolutionResult struct {
	ID                               model.Identifier
	PackageProvenance                model.KnownProvenance
	SubRepositories                  map[string]model.VcsInfo
	PackageProvenanceResolutionIssue *model.Issue
	NestedProvenanceResolutionIssue  *model.Issue
}

// Validate checks the structural rules of the record. Violations are
// reported with code ErrCodeInvariant.
func (r *ProvenanceResolutionResult) Validate() error {
	resolved := r.PackageProvenance != nil
	failed := r.PackageProvenanceResolutionIssue != nil
	switch {
	case resolved && failed:
		return errors.Invariant("%s has both a package provenance and a resolution issue", r.ID)
	case !resolved && !failed:
		return errors.Invariant("%s has neither a package provenance nor a resolution issue", r.ID)
	}
	if !resolved && len(r.SubRepositories) > 0 {
		return errors.Invariant("%s has sub-repositories but no package provenance", r.ID)
	}
	if !resolved && r.NestedProvenanceResolutionIssue != nil {
		return errors.Invariant("%s has a nested resolution issue but its package provenance is unresolved", r.ID)
	}
	if rp, ok := r.PackageProvenance.(model.RepositoryProvenance); ok && rp.ResolvedRevision == "" {
		return errors.Invariant("%s has a repository provenance without resolved revision", r.ID)
	}
	for _, p := range slices.Sorted(maps.Keys(r.SubRepositories)) {
		if err := errors.ValidatePath(p); err != nil {
			return errors.Wrap(errors.ErrCodeInvariant, err, "%s has an invalid sub-repository path", r.ID)
		}
		vcs := r.SubRepositories[p]
		if vcs.Path != "" {
			return errors.Invariant("sub-repository %q of %s must not have a VCS path, got %q", p, r.ID, vcs.Path)
		}
		if vcs.Revision == "" {
			return errors.Invariant("sub-repository %q of %s has no revision", p, r.ID)
		}
	}
	return nil
}

// IsResolved reports whether the package provenance was resolved.
func (r *ProvenanceResolutionResult) IsResolved() bool {
	return r.PackageProvenance != nil
}

// KnownProvenancesWithoutVcsPath maps the root ("") and every sub-repository
// path to the provenance that scan results for it are stored under: the
// repository root with its VCS path cleared and its revision pinned. The map
// is empty if the package provenance was not resolved.
func (r *ProvenanceResolutionResult) KnownProvenancesWithoutVcsPath() map[string]model.KnownProvenance {
	out := make(map[string]model.KnownProvenance, len(r.SubRepositories)+1)
	switch p := r.PackageProvenance.(type) {
	case nil:
		return out
	case model.RepositoryProvenance:
		out[""] = p.ClearVcsPath()
	case model.ArtifactProvenance:
		out[""] = p
	}
	for path, vcs := range r.SubRepositories {
		out[path] = model.RepositoryProvenance{VcsInfo: vcs.WithPath(""), ResolvedRevision: vcs.Revision}
	}
	return out
}

// VcsPath returns the directory of the repository that holds the package,
// or "" if the package spans the whole provenance.
func (r *ProvenanceResolutionResult) VcsPath() string {
	return model.VcsPath(r.PackageProvenance)
}

// equal reports whether two records hold the same data.
func (r *ProvenanceResolutionResult) equal(o *ProvenanceResolutionResult) bool {
	return r.ID == o.ID &&
		r.PackageProvenance == o.PackageProvenance &&
		maps.Equal(r.SubRepositories, o.SubRepositories) &&
		equalIssue(r.PackageProvenanceResolutionIssue, o.PackageProvenanceResolutionIssue) &&
		equalIssue(r.NestedProvenanceResolutionIssue, o.NestedProvenanceResolutionIssue)
}

func equalIssue(a, b *model.Issue) bool {
	if a == nil || b == nil {
		return a == b
	}
	return model.CompareIssues(*a, *b) == 0
}
