package model

import "strings"

// PackageLinkage describes how a dependency is attached to its consumer.
type PackageLinkage string

const (
	LinkageDynamic        PackageLinkage = "DYNAMIC"
	LinkageStatic         PackageLinkage = "STATIC"
	LinkageProjectDynamic PackageLinkage = "PROJECT_DYNAMIC"
	LinkageProjectStatic  PackageLinkage = "PROJECT_STATIC"
)

// IsProjectLinkage reports whether the dependency is another project of the
// same multi-project build.
func (l PackageLinkage) IsProjectLinkage() bool {
	return l == LinkageProjectDynamic || l == LinkageProjectStatic
}

// OrDefault returns l, or LinkageDynamic when l is empty.
func (l PackageLinkage) OrDefault() PackageLinkage {
	if l == "" {
		return LinkageDynamic
	}
	return l
}

// PackageReference is one node of an explicit dependency tree. The same
// reference may appear below several parents; the tree must not contain
// cycles.
type PackageReference struct {
	ID           Identifier          `json:"id" yaml:"id"`
	Linkage      PackageLinkage      `json:"linkage,omitempty" yaml:"linkage,omitempty"`
	Dependencies []*PackageReference `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Issues       []Issue             `json:"issues,omitempty" yaml:"issues,omitempty"`
}

// Scope is a named dependency category of a project, such as "compile" or
// "test". Its dependencies are the roots of the scope's tree.
type Scope struct {
	Name         string              `json:"name" yaml:"name"`
	Dependencies []*PackageReference `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// Project is a buildable unit found by a package manager.
//
// A project stores its dependencies in one of two encodings: an explicit
// tree in Scopes, or only the scope names in ScopeNames with the
// dependencies kept in a shared dependency graph of the analyzer result.
type Project struct {
	ID                 Identifier `json:"id" yaml:"id"`
	DefinitionFilePath string     `json:"definition_file_path" yaml:"definition_file_path"`
	DeclaredLicenses   []string   `json:"declared_licenses,omitempty" yaml:"declared_licenses,omitempty"`
	Vcs                VcsInfo    `json:"vcs" yaml:"vcs"`
	VcsProcessed       VcsInfo    `json:"vcs_processed" yaml:"vcs_processed"`
	HomepageURL        string     `json:"homepage_url,omitempty" yaml:"homepage_url,omitempty"`
	Scopes             []Scope    `json:"scopes,omitempty" yaml:"scopes,omitempty"`
	ScopeNames         []string   `json:"scope_names,omitempty" yaml:"scope_names,omitempty"`
}

// UsesDependencyGraph reports whether the project's dependencies live in a
// shared dependency graph rather than in Scopes.
func (p *Project) UsesDependencyGraph() bool {
	return p.ScopeNames != nil
}

// Scope returns the scope with the given name.
func (p *Project) Scope(name string) (*Scope, bool) {
	for i := range p.Scopes {
		if p.Scopes[i].Name == name {
			return &p.Scopes[i], true
		}
	}
	return nil, false
}

// Package is a third-party component referenced by projects.
type Package struct {
	ID               Identifier     `json:"id" yaml:"id"`
	Purl             string         `json:"purl,omitempty" yaml:"purl,omitempty"`
	DeclaredLicenses []string       `json:"declared_licenses,omitempty" yaml:"declared_licenses,omitempty"`
	Description      string         `json:"description,omitempty" yaml:"description,omitempty"`
	HomepageURL      string         `json:"homepage_url,omitempty" yaml:"homepage_url,omitempty"`
	BinaryArtifact   RemoteArtifact `json:"binary_artifact" yaml:"binary_artifact"`
	SourceArtifact   RemoteArtifact `json:"source_artifact" yaml:"source_artifact"`
	Vcs              VcsInfo        `json:"vcs" yaml:"vcs"`
	VcsProcessed     VcsInfo        `json:"vcs_processed" yaml:"vcs_processed"`
	IsMetadataOnly   bool           `json:"is_metadata_only,omitempty" yaml:"is_metadata_only,omitempty"`
	IsModified       bool           `json:"is_modified,omitempty" yaml:"is_modified,omitempty"`
}

// Normalize fills derived fields: the purl from the identifier and the
// processed VCS info from the declared one.
func (p *Package) Normalize() {
	if strings.TrimSpace(p.Purl) == "" {
		p.Purl = p.ID.ToPurl()
	}
	if p.VcsProcessed.IsEmpty() {
		p.VcsProcessed = p.Vcs.Normalize()
	}
}

// ProjectAsPackage returns a package view of a project so that projects can
// be treated uniformly in scan and provenance queries.
func ProjectAsPackage(p *Project) *Package {
	pkg := &Package{
		ID:               p.ID,
		DeclaredLicenses: p.DeclaredLicenses,
		HomepageURL:      p.HomepageURL,
		Vcs:              p.Vcs,
		VcsProcessed:     p.VcsProcessed,
	}
	pkg.Normalize()
	return pkg
}
