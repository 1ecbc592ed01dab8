package dependency

import (
	"iter"
	"slices"
	"testing"

	"github.com/matzehuels/scantower/pkg/core/model"
	"github.com/matzehuels/scantower/pkg/errors"
)

var (
	idA   = model.MustParseIdentifier("Maven:org:a:1.0")
	idB   = model.MustParseIdentifier("Maven:org:b:1.0")
	idC   = model.MustParseIdentifier("Maven:org:c:1.0")
	idD   = model.MustParseIdentifier("Maven:org:d:1.0")
	idSub = model.MustParseIdentifier("Maven:org:sub:1.0")
	idApp = model.MustParseIdentifier("Maven:org:app:1.0")
)

func ref(id model.Identifier, deps ...*model.PackageReference) *model.PackageReference {
	return &model.PackageReference{ID: id, Dependencies: deps}
}

// treeProject builds:
//
//	compile: a -> b -> c -> d
//	         c
//	         sub (project linkage) -> d
//	test:    (empty)
func treeProject() *model.Project {
	d := ref(idD)
	c := ref(idC, d)
	b := ref(idB, c)
	a := ref(idA, b)
	sub := ref(idSub, d)
	sub.Linkage = model.LinkageProjectDynamic
	return &model.Project{
		ID: idApp,
		Scopes: []model.Scope{
			{Name: "compile", Dependencies: []*model.PackageReference{a, c, sub}},
			{Name: "test"},
		},
	}
}

// graphProject builds the same structure through the compact encoding.
func graphProject() (*model.Project, *GraphNavigator) {
	b := NewGraphBuilder().
		AddPackage(idSub, model.LinkageProjectDynamic).
		AddRoot(idApp, "compile", idA).
		AddRoot(idApp, "compile", idC).
		AddRoot(idApp, "compile", idSub).
		AddScope(idApp, "test").
		AddDependency(idA, idB).
		AddDependency(idB, idC).
		AddDependency(idC, idD).
		AddDependency(idSub, idD)
	project := &model.Project{ID: idApp, ScopeNames: b.ScopeNames(idApp)}
	return project, NewGraphNavigator(map[string]*DependencyGraph{"Maven": b.Build()})
}

type navCase struct {
	name    string
	nav     Navigator
	project *model.Project
}

func navigators() []navCase {
	gp, gn := graphProject()
	return []navCase{
		{"tree", TreeNavigator{}, treeProject()},
		{"graph", gn, gp},
	}
}

func TestScopeNames(t *testing.T) {
	for _, nc := range navigators() {
		t.Run(nc.name, func(t *testing.T) {
			got := nc.nav.ScopeNames(nc.project)
			if want := []string{"compile", "test"}; !slices.Equal(got, want) {
				t.Errorf("ScopeNames() = %v, want %v", got, want)
			}
		})
	}
}

func TestDependenciesForScope(t *testing.T) {
	tests := []struct {
		maxDepth int
		matcher  Matcher
		want     []model.Identifier
	}{
		{0, nil, nil},
		{1, nil, []model.Identifier{idA, idC, idSub}},
		{2, nil, []model.Identifier{idA, idB, idC, idD, idSub}},
		{Unbounded, nil, []model.Identifier{idA, idB, idC, idD, idSub}},
		{Unbounded, MatchSubProjects, []model.Identifier{idSub}},
		{Unbounded, Not(MatchSubProjects), []model.Identifier{idA, idB, idC, idD}},
	}
	for _, nc := range navigators() {
		t.Run(nc.name, func(t *testing.T) {
			for _, tt := range tests {
				got := DependenciesForScope(nc.nav, nc.project, "compile", tt.maxDepth, tt.matcher)
				if !slices.Equal(got, tt.want) {
					t.Errorf("DependenciesForScope(depth %d) = %v, want %v", tt.maxDepth, got, tt.want)
				}
			}
			if got := DependenciesForScope(nc.nav, nc.project, "missing", Unbounded, nil); got != nil {
				t.Errorf("DependenciesForScope(missing) = %v, want nil", got)
			}
		})
	}
}

// A node first reached deep in the tree must be expanded again when it is
// reached at a shallower level with more remaining depth.
func TestDependenciesForScopeRevisitsShallower(t *testing.T) {
	d := ref(idD)
	c := ref(idC, d)
	b := ref(idB, c)
	a := ref(idA, b)
	project := &model.Project{ID: idApp, Scopes: []model.Scope{
		{Name: "s", Dependencies: []*model.PackageReference{a, c}},
	}}
	got := DependenciesForScope(TreeNavigator{}, project, "s", 3, nil)
	want := []model.Identifier{idA, idB, idC, idD}
	if !slices.Equal(got, want) {
		t.Errorf("DependenciesForScope() = %v, want %v", got, want)
	}
}

func TestScopeAndProjectDependencies(t *testing.T) {
	for _, nc := range navigators() {
		t.Run(nc.name, func(t *testing.T) {
			scopes := ScopeDependencies(nc.nav, nc.project, Unbounded, nil)
			if len(scopes) != 2 || len(scopes["compile"]) != 5 || len(scopes["test"]) != 0 {
				t.Errorf("ScopeDependencies() = %v", scopes)
			}
			all := ProjectDependencies(nc.nav, nc.project, 1, nil)
			if want := []model.Identifier{idA, idC, idSub}; !slices.Equal(all, want) {
				t.Errorf("ProjectDependencies() = %v, want %v", all, want)
			}
		})
	}
}

func TestPackageDependencies(t *testing.T) {
	for _, nc := range navigators() {
		t.Run(nc.name, func(t *testing.T) {
			got := PackageDependencies(nc.nav, nc.project, idB, Unbounded, nil)
			if want := []model.Identifier{idC, idD}; !slices.Equal(got, want) {
				t.Errorf("PackageDependencies(b) = %v, want %v", got, want)
			}
			got = PackageDependencies(nc.nav, nc.project, idA, 1, nil)
			if want := []model.Identifier{idB}; !slices.Equal(got, want) {
				t.Errorf("PackageDependencies(a, 1) = %v, want %v", got, want)
			}
			if got := PackageDependencies(nc.nav, nc.project, idApp, Unbounded, nil); len(got) != 0 {
				t.Errorf("PackageDependencies(unknown) = %v, want empty", got)
			}
		})
	}
}

func TestShortestPaths(t *testing.T) {
	for _, nc := range navigators() {
		t.Run(nc.name, func(t *testing.T) {
			paths, err := ShortestPaths(nc.nav, nc.project)
			if err != nil {
				t.Fatalf("ShortestPaths() error = %v", err)
			}
			if len(paths["test"]) != 0 {
				t.Errorf("paths[test] = %v, want empty", paths["test"])
			}
			compile := paths["compile"]
			want := map[model.Identifier][]model.Identifier{
				idA:   {},
				idC:   {},
				idSub: {},
				idB:   {idA},
				// d is reachable as a->b->c->d, c->d and sub->d; the
				// shortest path goes through c, the first root in order.
				idD: {idC},
			}
			if len(compile) != len(want) {
				t.Fatalf("paths[compile] = %v, want %v", compile, want)
			}
			for id, w := range want {
				if got := compile[id]; !slices.Equal(got, w) {
					t.Errorf("path to %s = %v, want %v", id, got, w)
				}
			}
		})
	}
}

func TestShortestPathsEmptyProject(t *testing.T) {
	project := &model.Project{ID: idApp, Scopes: []model.Scope{{Name: "compile"}, {Name: "test"}}}
	paths, err := ShortestPaths(TreeNavigator{}, project)
	if err != nil {
		t.Fatalf("ShortestPaths() error = %v", err)
	}
	for _, scope := range []string{"compile", "test"} {
		if m, ok := paths[scope]; !ok || len(m) != 0 {
			t.Errorf("paths[%s] = %v, want empty map", scope, m)
		}
	}
}

// inconsistentNavigator reports different roots on every call, which breaks
// the consistency check.
type inconsistentNavigator struct{ calls *int }

func (inconsistentNavigator) ScopeNames(*model.Project) []string { return []string{"s"} }

func (n inconsistentNavigator) DirectDependencies(*model.Project, string) (iter.Seq[Node], bool) {
	*n.calls++
	if *n.calls == 1 {
		return referenceSeq([]*model.PackageReference{ref(idA)}), true
	}
	return referenceSeq([]*model.PackageReference{ref(idA, ref(idB))}), true
}

func TestShortestPathsInconsistent(t *testing.T) {
	calls := 0
	nav := inconsistentNavigator{&calls}
	_, err := ShortestPaths(nav, &model.Project{ID: idApp})
	if !errors.Is(err, errors.ErrCodeInconsistentGraph) {
		t.Errorf("ShortestPaths() error = %v, want %v", err, errors.ErrCodeInconsistentGraph)
	}
}

func TestDependencyTreeDepth(t *testing.T) {
	for _, nc := range navigators() {
		t.Run(nc.name, func(t *testing.T) {
			if got := DependencyTreeDepth(nc.nav, nc.project, "missing"); got != -1 {
				t.Errorf("depth(missing) = %d, want -1", got)
			}
			if got := DependencyTreeDepth(nc.nav, nc.project, "test"); got != 0 {
				t.Errorf("depth(test) = %d, want 0", got)
			}
			if got := DependencyTreeDepth(nc.nav, nc.project, "compile"); got != 4 {
				t.Errorf("depth(compile) = %d, want 4", got)
			}
		})
	}
}

func TestDependencyTreeDepthChain(t *testing.T) {
	for n := 1; n <= 5; n++ {
		var chain *model.PackageReference
		for i := n; i > 0; i-- {
			id := model.Identifier{Type: "NPM", Name: "p", Version: string(rune('0' + i))}
			if chain == nil {
				chain = ref(id)
			} else {
				chain = ref(id, chain)
			}
		}
		project := &model.Project{Scopes: []model.Scope{{Name: "s", Dependencies: []*model.PackageReference{chain}}}}
		if got := DependencyTreeDepth(TreeNavigator{}, project, "s"); got != n {
			t.Errorf("depth of chain %d = %d", n, got)
		}
	}
}

func TestCollectIssues(t *testing.T) {
	issue := model.NewIssue("Gradle", "could not resolve")
	d := ref(idD)
	d.Issues = []model.Issue{issue}
	c := ref(idC, d)
	project := &model.Project{ID: idApp, Scopes: []model.Scope{
		{Name: "compile", Dependencies: []*model.PackageReference{c, d}},
		{Name: "test", Dependencies: []*model.PackageReference{d}},
	}}
	got := ProjectIssues(TreeNavigator{}, project)
	if len(got) != 1 || len(got[idD]) != 1 || got[idD][0] != issue {
		t.Errorf("ProjectIssues() = %v", got)
	}
}

func TestCollectSubProjects(t *testing.T) {
	for _, nc := range navigators() {
		t.Run(nc.name, func(t *testing.T) {
			got := CollectSubProjects(nc.nav, nc.project)
			if want := []model.Identifier{idSub}; !slices.Equal(got, want) {
				t.Errorf("CollectSubProjects() = %v, want %v", got, want)
			}
		})
	}
}

func TestVisitDependencies(t *testing.T) {
	n := NewTreeNode(ref(idA, ref(idB), ref(idC)))
	count := VisitDependencies(n, func(deps iter.Seq[Node]) int {
		c := 0
		for range deps {
			c++
		}
		return c
	})
	if count != 2 {
		t.Errorf("VisitDependencies() = %d, want 2", count)
	}
}
