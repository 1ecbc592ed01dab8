package model

import (
	"fmt"
	"strings"

	"github.com/matzehuels/scantower/pkg/errors"
)

// Provenance describes where the source code of a package came from.
//
// The set of implementations is closed: [UnknownProvenance],
// [ArtifactProvenance] and [RepositoryProvenance]. Consumers switch on the
// concrete type and must handle all three. All variants are comparable and
// can be used as map keys.
type Provenance interface {
	// Matches reports whether the provenance describes the source of pkg.
	Matches(pkg *Package) bool
	// String returns a stable, human-readable representation.
	String() string

	provenance()
}

// KnownProvenance is a provenance that points at actual source code:
// either an [ArtifactProvenance] or a [RepositoryProvenance].
type KnownProvenance interface {
	Provenance
	known()
}

// UnknownProvenance means no source code could be located.
type UnknownProvenance struct{}

func (UnknownProvenance) provenance() {}

// Matches always returns false.
func (UnknownProvenance) Matches(*Package) bool { return false }

// String returns "unknown".
func (UnknownProvenance) String() string { return "unknown" }

// ArtifactProvenance is source code downloaded as an archive.
type ArtifactProvenance struct {
	SourceArtifact RemoteArtifact
}

func (ArtifactProvenance) provenance() {}
func (ArtifactProvenance) known()      {}

// Matches reports whether pkg declares the same source artifact.
func (p ArtifactProvenance) Matches(pkg *Package) bool {
	return pkg != nil && pkg.SourceArtifact == p.SourceArtifact
}

// String returns "artifact:<url>".
func (p ArtifactProvenance) String() string {
	return "artifact:" + p.SourceArtifact.URL
}

// RepositoryProvenance is source code checked out from version control at a
// fixed revision.
type RepositoryProvenance struct {
	// VcsInfo is the VCS location as requested. Its Revision may be a branch
	// or tag name.
	VcsInfo VcsInfo
	// ResolvedRevision is the fixed revision (e.g. a commit hash) that
	// VcsInfo.Revision resolved to. It is never blank.
	ResolvedRevision string
}

// NewRepositoryProvenance validates that resolvedRevision is not blank.
// Whether it names a fixed revision rather than a moving ref can only be
// determined by the resolver that produced it.
func NewRepositoryProvenance(vcs VcsInfo, resolvedRevision string) (RepositoryProvenance, error) {
	if strings.TrimSpace(resolvedRevision) == "" {
		return RepositoryProvenance{}, errors.New(errors.ErrCodeInvalidProvenance,
			"resolved revision of %s must not be blank", vcs.URL)
	}
	return RepositoryProvenance{VcsInfo: vcs, ResolvedRevision: resolvedRevision}, nil
}

func (RepositoryProvenance) provenance() {}
func (RepositoryProvenance) known()      {}

// Matches reports whether the VCS info equals the package's processed VCS
// info.
func (p RepositoryProvenance) Matches(pkg *Package) bool {
	return pkg != nil && p.VcsInfo == pkg.VcsProcessed
}

// ClearVcsPath returns the provenance of the repository root: the path is
// cleared and the revision is pinned to the resolved revision. Scan results
// are always recorded against this form.
func (p RepositoryProvenance) ClearVcsPath() RepositoryProvenance {
	p.VcsInfo = p.VcsInfo.WithPath("").WithRevision(p.ResolvedRevision)
	return p
}

// IsRoot reports whether p already is in the form returned by ClearVcsPath.
func (p RepositoryProvenance) IsRoot() bool {
	return p.VcsInfo.Path == "" && p.VcsInfo.Revision == p.ResolvedRevision
}

// String returns "<type>:<url>@<resolved revision>[:<path>]".
func (p RepositoryProvenance) String() string {
	s := fmt.Sprintf("%s:%s@%s", p.VcsInfo.Type, p.VcsInfo.URL, p.ResolvedRevision)
	if p.VcsInfo.Path != "" {
		s += ":" + p.VcsInfo.Path
	}
	return s
}

// VcsPath returns the VCS path of a repository provenance and "" for all
// other provenances.
func VcsPath(p Provenance) string {
	if rp, ok := p.(RepositoryProvenance); ok {
		return rp.VcsInfo.Path
	}
	return ""
}

// ProvenanceKey returns a string that orders provenances deterministically:
// artifacts before repositories, then by location.
func ProvenanceKey(p Provenance) string {
	switch v := p.(type) {
	case nil:
		return "0"
	case UnknownProvenance:
		return "0"
	case ArtifactProvenance:
		return "1|" + v.SourceArtifact.URL + "|" + v.SourceArtifact.Hash.Algorithm + "|" + v.SourceArtifact.Hash.Value
	case RepositoryProvenance:
		return strings.Join([]string{"2", string(v.VcsInfo.Type), v.VcsInfo.URL, v.VcsInfo.Revision,
			v.VcsInfo.Path, v.ResolvedRevision}, "|")
	default:
		panic(fmt.Sprintf("unhandled provenance type %T", p))
	}
}

// IsKnown reports whether p is a non-nil KnownProvenance.
func IsKnown(p Provenance) bool {
	_, ok := p.(KnownProvenance)
	return ok
}
