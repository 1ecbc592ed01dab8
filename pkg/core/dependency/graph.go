package dependency

import (
	"cmp"
	"fmt"
	"iter"
	"slices"
	"sync"

	"github.com/matzehuels/scantower/pkg/core/dag"
	"github.com/matzehuels/scantower/pkg/core/model"
	"github.com/matzehuels/scantower/pkg/errors"
)

// RootReference points at the node that is a direct dependency of a scope.
type RootReference struct {
	Root     int `json:"root" yaml:"root"`
	Fragment int `json:"fragment,omitempty" yaml:"fragment,omitempty"`
}

// GraphNode is one occurrence of a package in a [DependencyGraph]. A package
// that occurs with different dependencies in different places gets one node
// per variant, distinguished by Fragment.
type GraphNode struct {
	Pkg      int                  `json:"pkg" yaml:"pkg"`
	Fragment int                  `json:"fragment,omitempty" yaml:"fragment,omitempty"`
	Linkage  model.PackageLinkage `json:"linkage,omitempty" yaml:"linkage,omitempty"`
	Issues   []model.Issue        `json:"issues,omitempty" yaml:"issues,omitempty"`
}

// GraphEdge connects two nodes by their index in [DependencyGraph.Nodes].
type GraphEdge struct {
	From int `json:"from" yaml:"from"`
	To   int `json:"to" yaml:"to"`
}

// DependencyGraph is the compact encoding of the dependencies of all projects
// managed by one package manager. Every package is stored once in Packages;
// nodes reference packages by index and edges reference nodes by index.
// Scopes maps qualified scope names (see [QualifyScope]) to their roots.
//
// A graph is read-only once it is shared. The adjacency index is built on
// first use.
type DependencyGraph struct {
	Packages []model.Identifier         `json:"packages" yaml:"packages"`
	Scopes   map[string][]RootReference `json:"scopes" yaml:"scopes"`
	Nodes    []GraphNode                `json:"nodes" yaml:"nodes"`
	Edges    []GraphEdge                `json:"edges" yaml:"edges"`

	once     sync.Once
	dag      *dag.DAG
	nodeKeys map[nodeKey]int
	err      error
}

type nodeKey struct {
	pkg, fragment int
}

// QualifyScope returns the key under which the scope of a project is stored
// in a shared dependency graph.
func QualifyScope(project model.Identifier, scope string) string {
	return project.ToCoordinates() + ":" + scope
}

// Validate checks that all indices are in range, that no node is listed
// twice and that the graph is acyclic. Failures are reported with code
// ErrCodeInconsistentGraph.
func (g *DependencyGraph) Validate() error {
	g.once.Do(g.index)
	return g.err
}

func nodeID(k nodeKey) string {
	if k.fragment == 0 {
		return fmt.Sprint(k.pkg)
	}
	return fmt.Sprintf("%d_%d", k.pkg, k.fragment)
}

func (g *DependencyGraph) index() {
	g.dag = dag.New()
	g.nodeKeys = make(map[nodeKey]int, len(g.Nodes))
	fail := func(format string, args ...any) {
		g.err = errors.New(errors.ErrCodeInconsistentGraph, format, args...)
		g.dag = dag.New()
		g.nodeKeys = map[nodeKey]int{}
	}

	for i, n := range g.Nodes {
		if n.Pkg < 0 || n.Pkg >= len(g.Packages) {
			fail("node %d references unknown package %d", i, n.Pkg)
			return
		}
		k := nodeKey{n.Pkg, n.Fragment}
		if err := g.dag.AddNode(dag.Node{ID: nodeID(k), Payload: i}); err != nil {
			fail("node %d (%s): %v", i, g.Packages[n.Pkg], err)
			return
		}
		g.nodeKeys[k] = i
	}
	for _, e := range g.Edges {
		if e.From < 0 || e.From >= len(g.Nodes) || e.To < 0 || e.To >= len(g.Nodes) {
			fail("edge %d -> %d references unknown node", e.From, e.To)
			return
		}
		from := nodeKey{g.Nodes[e.From].Pkg, g.Nodes[e.From].Fragment}
		to := nodeKey{g.Nodes[e.To].Pkg, g.Nodes[e.To].Fragment}
		if err := g.dag.AddEdge(dag.Edge{From: nodeID(from), To: nodeID(to)}); err != nil {
			fail("edge %d -> %d: %v", e.From, e.To, err)
			return
		}
	}
	for scope, roots := range g.Scopes {
		for _, r := range roots {
			if _, ok := g.nodeKeys[nodeKey{r.Root, r.Fragment}]; !ok {
				fail("scope %q references unknown node %d/%d", scope, r.Root, r.Fragment)
				return
			}
		}
	}
	if err := g.dag.Validate(); err != nil {
		fail("%v", err)
		return
	}
	g.dag.SortChildren(func(a, b string) int {
		na, _ := g.dag.Node(a)
		nb, _ := g.dag.Node(b)
		return g.compareNodes(na.Payload, nb.Payload)
	})
}

// compareNodes orders nodes by package identifier, then fragment.
func (g *DependencyGraph) compareNodes(a, b int) int {
	na, nb := g.Nodes[a], g.Nodes[b]
	if c := model.CompareIdentifiers(g.Packages[na.Pkg], g.Packages[nb.Pkg]); c != 0 {
		return c
	}
	return cmp.Compare(na.Fragment, nb.Fragment)
}

// ScopeRoots yields the root nodes of a qualified scope, sorted by package
// identifier. It yields nothing for an unknown scope or an invalid graph.
func (g *DependencyGraph) ScopeRoots(qualifiedScope string) iter.Seq[Node] {
	g.once.Do(g.index)
	if g.err != nil {
		return emptySeq
	}
	var idx []int
	for _, r := range g.Scopes[qualifiedScope] {
		idx = append(idx, g.nodeKeys[nodeKey{r.Root, r.Fragment}])
	}
	slices.SortFunc(idx, g.compareNodes)
	idx = slices.Compact(idx)
	return func(yield func(Node) bool) {
		for _, i := range idx {
			if !yield(GraphNodeRef{graph: g, index: i}) {
				return
			}
		}
	}
}

// GraphNodeRef is a [Node] backed by a node of a [DependencyGraph].
type GraphNodeRef struct {
	graph *DependencyGraph
	index int
}

func (n GraphNodeRef) ID() model.Identifier {
	return n.graph.Packages[n.graph.Nodes[n.index].Pkg]
}

func (n GraphNodeRef) Linkage() model.PackageLinkage {
	return n.graph.Nodes[n.index].Linkage.OrDefault()
}

func (n GraphNodeRef) Issues() []model.Issue { return n.graph.Nodes[n.index].Issues }

// Dependencies yields the children in canonical order without copying the
// adjacency list.
func (n GraphNodeRef) Dependencies() iter.Seq[Node] {
	g := n.graph
	k := nodeKey{g.Nodes[n.index].Pkg, g.Nodes[n.index].Fragment}
	return func(yield func(Node) bool) {
		for _, child := range g.dag.Children(nodeID(k)) {
			c, _ := g.dag.Node(child)
			if !yield(GraphNodeRef{graph: g, index: c.Payload}) {
				return
			}
		}
	}
}

// GraphNavigator navigates projects whose dependencies are stored in shared
// dependency graphs, one graph per package manager. The package manager of
// a project is taken from its identifier type.
type GraphNavigator struct {
	graphs map[string]*DependencyGraph
}

// NewGraphNavigator returns a navigator over graphs keyed by package manager.
func NewGraphNavigator(graphs map[string]*DependencyGraph) *GraphNavigator {
	return &GraphNavigator{graphs: graphs}
}

// ScopeNames returns the sorted scope names declared by the project.
func (n *GraphNavigator) ScopeNames(project *model.Project) []string {
	names := slices.Clone(project.ScopeNames)
	slices.Sort(names)
	return slices.Compact(names)
}

// DirectDependencies yields the roots of the scope from the graph of the
// project's package manager.
func (n *GraphNavigator) DirectDependencies(project *model.Project, scope string) (iter.Seq[Node], bool) {
	if !slices.Contains(project.ScopeNames, scope) {
		return emptySeq, false
	}
	g, ok := n.graphs[project.ID.Type]
	if !ok {
		return emptySeq, true
	}
	return g.ScopeRoots(QualifyScope(project.ID, scope)), true
}

// Graph returns the dependency graph of a package manager.
func (n *GraphNavigator) Graph(manager string) (*DependencyGraph, bool) {
	g, ok := n.graphs[manager]
	return g, ok
}

// CompositeNavigator dispatches each project to the navigator matching the
// encoding the project uses.
type CompositeNavigator struct {
	Tree  TreeNavigator
	Graph *GraphNavigator
}

// NewCompositeNavigator returns a navigator that handles both encodings.
func NewCompositeNavigator(graphs map[string]*DependencyGraph) *CompositeNavigator {
	return &CompositeNavigator{Graph: NewGraphNavigator(graphs)}
}

func (c *CompositeNavigator) pick(project *model.Project) Navigator {
	if project.UsesDependencyGraph() && c.Graph != nil {
		return c.Graph
	}
	return c.Tree
}

// ScopeNames implements [Navigator].
func (c *CompositeNavigator) ScopeNames(project *model.Project) []string {
	return c.pick(project).ScopeNames(project)
}

// DirectDependencies implements [Navigator].
func (c *CompositeNavigator) DirectDependencies(project *model.Project, scope string) (iter.Seq[Node], bool) {
	return c.pick(project).DirectDependencies(project, scope)
}
