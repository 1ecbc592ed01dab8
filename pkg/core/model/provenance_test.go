package model

import (
	"testing"

	"github.com/matzehuels/scantower/pkg/errors"
)

var testVcs = VcsInfo{
	Type:     VcsGit,
	URL:      "https://github.com/example/project.git",
	Revision: "main",
	Path:     "sub/dir",
}

func TestNewRepositoryProvenance(t *testing.T) {
	if _, err := NewRepositoryProvenance(testVcs, "  "); !errors.Is(err, errors.ErrCodeInvalidProvenance) {
		t.Errorf("NewRepositoryProvenance(blank) error = %v, want %v", err, errors.ErrCodeInvalidProvenance)
	}
	p, err := NewRepositoryProvenance(testVcs, "0123abcd")
	if err != nil {
		t.Fatalf("NewRepositoryProvenance() error = %v", err)
	}
	if p.ResolvedRevision != "0123abcd" {
		t.Errorf("ResolvedRevision = %q, want %q", p.ResolvedRevision, "0123abcd")
	}
}

func TestProvenanceMatches(t *testing.T) {
	artifact := RemoteArtifact{URL: "https://example.com/a.tgz", Hash: Hash{Value: "abc", Algorithm: "SHA-1"}}
	pkg := &Package{SourceArtifact: artifact, VcsProcessed: testVcs}

	tests := []struct {
		name string
		p    Provenance
		want bool
	}{
		{"unknown", UnknownProvenance{}, false},
		{"artifact equal", ArtifactProvenance{SourceArtifact: artifact}, true},
		{"artifact other hash", ArtifactProvenance{SourceArtifact: RemoteArtifact{URL: artifact.URL}}, false},
		{"repository equal", RepositoryProvenance{VcsInfo: testVcs, ResolvedRevision: "abc"}, true},
		{"repository other path", RepositoryProvenance{VcsInfo: testVcs.WithPath(""), ResolvedRevision: "abc"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Matches(pkg); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
			if tt.p.Matches(nil) {
				t.Error("Matches(nil) = true")
			}
		})
	}
}

func TestClearVcsPath(t *testing.T) {
	p := RepositoryProvenance{VcsInfo: testVcs, ResolvedRevision: "deadbeef"}
	if p.IsRoot() {
		t.Error("IsRoot() = true before ClearVcsPath")
	}
	root := p.ClearVcsPath()
	if root.VcsInfo.Path != "" {
		t.Errorf("Path = %q, want empty", root.VcsInfo.Path)
	}
	if root.VcsInfo.Revision != "deadbeef" {
		t.Errorf("Revision = %q, want %q", root.VcsInfo.Revision, "deadbeef")
	}
	if !root.IsRoot() {
		t.Error("IsRoot() = false after ClearVcsPath")
	}
	if p.VcsInfo.Path != "sub/dir" {
		t.Error("ClearVcsPath modified the receiver")
	}
}

func TestProvenanceAsMapKey(t *testing.T) {
	a := RepositoryProvenance{VcsInfo: testVcs, ResolvedRevision: "x"}
	b := RepositoryProvenance{VcsInfo: testVcs, ResolvedRevision: "x"}
	m := map[Provenance]int{a: 1}
	m[b]++
	m[UnknownProvenance{}]++
	if len(m) != 2 || m[a] != 2 {
		t.Errorf("map = %v", m)
	}
}

func TestProvenanceKeyOrder(t *testing.T) {
	unknown := ProvenanceKey(UnknownProvenance{})
	artifact := ProvenanceKey(ArtifactProvenance{SourceArtifact: RemoteArtifact{URL: "z"}})
	repo := ProvenanceKey(RepositoryProvenance{VcsInfo: VcsInfo{URL: "a"}, ResolvedRevision: "r"})
	if !(unknown < artifact && artifact < repo) {
		t.Errorf("keys not ordered: %q %q %q", unknown, artifact, repo)
	}
}

func TestIsKnown(t *testing.T) {
	if IsKnown(UnknownProvenance{}) || IsKnown(nil) {
		t.Error("IsKnown() = true for unknown provenance")
	}
	if !IsKnown(ArtifactProvenance{}) || !IsKnown(RepositoryProvenance{}) {
		t.Error("IsKnown() = false for known provenance")
	}
}

func TestVcsNormalize(t *testing.T) {
	v := VcsInfo{Type: "git", URL: " https://example.com/repo/ ", Revision: " v1 ", Path: "/lib/"}
	want := VcsInfo{Type: VcsGit, URL: "https://example.com/repo", Revision: "v1", Path: "lib"}
	if got := v.Normalize(); got != want {
		t.Errorf("Normalize() = %#v, want %#v", got, want)
	}
}
