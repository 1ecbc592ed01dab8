package model

import (
	"strings"
)

// VcsType names a version control system.
type VcsType string

// Known VCS types. VcsUnknown is the zero value.
const (
	VcsUnknown    VcsType = ""
	VcsGit        VcsType = "Git"
	VcsGitRepo    VcsType = "GitRepo"
	VcsMercurial  VcsType = "Mercurial"
	VcsSubversion VcsType = "Subversion"
)

var vcsAliases = map[string]VcsType{
	"git":        VcsGit,
	"gitrepo":    VcsGitRepo,
	"git-repo":   VcsGitRepo,
	"repo":       VcsGitRepo,
	"hg":         VcsMercurial,
	"mercurial":  VcsMercurial,
	"svn":        VcsSubversion,
	"subversion": VcsSubversion,
}

// ParseVcsType maps common spellings ("git", "hg", "svn", ...) to a VcsType.
// Unrecognized names are kept verbatim.
func ParseVcsType(s string) VcsType {
	s = strings.TrimSpace(s)
	if t, ok := vcsAliases[strings.ToLower(s)]; ok {
		return t
	}
	return VcsType(s)
}

// VcsInfo locates source code in a version control system. Path selects a
// sub-directory of the repository; an empty path means the whole repository.
type VcsInfo struct {
	Type     VcsType `json:"type" yaml:"type"`
	URL      string  `json:"url" yaml:"url"`
	Revision string  `json:"revision" yaml:"revision"`
	Path     string  `json:"path,omitempty" yaml:"path,omitempty"`
}

// EmptyVcsInfo carries no location.
var EmptyVcsInfo = VcsInfo{}

// IsEmpty reports whether v equals EmptyVcsInfo.
func (v VcsInfo) IsEmpty() bool { return v == EmptyVcsInfo }

// WithPath returns a copy of v with Path replaced.
func (v VcsInfo) WithPath(path string) VcsInfo {
	v.Path = path
	return v
}

// WithRevision returns a copy of v with Revision replaced.
func (v VcsInfo) WithRevision(revision string) VcsInfo {
	v.Revision = revision
	return v
}

// Normalize returns the processed form of v that provenance matching is
// based on: the type is canonicalized, surrounding whitespace is removed,
// the URL loses trailing slashes and the path is cleaned of leading and
// trailing slashes.
func (v VcsInfo) Normalize() VcsInfo {
	return VcsInfo{
		Type:     ParseVcsType(string(v.Type)),
		URL:      strings.TrimRight(strings.TrimSpace(v.URL), "/"),
		Revision: strings.TrimSpace(v.Revision),
		Path:     strings.Trim(strings.TrimSpace(v.Path), "/"),
	}
}

// Hash is a checksum of a remote artifact.
type Hash struct {
	Value     string `json:"value" yaml:"value"`
	Algorithm string `json:"algorithm" yaml:"algorithm"`
}

// RemoteArtifact is a downloadable file, for example a source archive.
type RemoteArtifact struct {
	URL  string `json:"url" yaml:"url"`
	Hash Hash   `json:"hash" yaml:"hash"`
}

// EmptyRemoteArtifact carries no location.
var EmptyRemoteArtifact = RemoteArtifact{}

// IsEmpty reports whether a equals EmptyRemoteArtifact.
func (a RemoteArtifact) IsEmpty() bool { return a == EmptyRemoteArtifact }
