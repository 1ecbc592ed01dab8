package result

import (
	"maps"
	"slices"

	"github.com/matzehuels/scantower/pkg/core/model"
)

// RepositoryConfiguration is the configuration kept in the analyzed
// repository.
type RepositoryConfiguration struct {
	Excludes model.Excludes `json:"excludes" yaml:"excludes" toml:"excludes"`
}

// Repository describes the analyzed repository and the repositories nested
// in it, keyed by their path relative to the repository root.
type Repository struct {
	Vcs                model.VcsInfo            `json:"vcs" yaml:"vcs"`
	VcsProcessed       model.VcsInfo            `json:"vcs_processed" yaml:"vcs_processed"`
	NestedRepositories map[string]model.VcsInfo `json:"nested_repositories,omitempty" yaml:"nested_repositories,omitempty"`
	Config             RepositoryConfiguration  `json:"config" yaml:"config"`
}

// RelativePath returns the path of the repository vcs points to, relative
// to the root of the analyzed repository. The VCS path of vcs is ignored.
// The boolean is false if vcs is neither the analyzed repository nor one of
// its nested repositories.
func (r Repository) RelativePath(vcs model.VcsInfo) (string, bool) {
	want := vcs.Normalize().WithPath("")
	if r.VcsProcessed.Normalize().WithPath("") == want {
		return "", true
	}
	for _, p := range slices.Sorted(maps.Keys(r.NestedRepositories)) {
		if r.NestedRepositories[p].Normalize().WithPath("") == want {
			return p, true
		}
	}
	return "", false
}
