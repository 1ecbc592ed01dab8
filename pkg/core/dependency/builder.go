package dependency

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/matzehuels/scantower/pkg/core/dag"
	"github.com/matzehuels/scantower/pkg/core/model"
)

// cycleIssueSource is the issue source for edges removed to break cycles.
const cycleIssueSource = "DependencyGraphBuilder"

// GraphBuilder assembles a [DependencyGraph] from the facts a package
// manager reports: packages, the direct dependencies of each project scope
// and the dependencies between packages. Every package gets exactly one
// node.
//
// Package managers may report cyclic dependencies. Build removes the edges
// closing a cycle and records a WARNING issue on the dependent, so that the
// resulting graph satisfies the acyclicity that navigators rely on.
//
// A GraphBuilder is not safe for concurrent use.
type GraphBuilder struct {
	linkage map[model.Identifier]model.PackageLinkage
	issues  map[model.Identifier][]model.Issue
	edges   map[model.Identifier][]model.Identifier
	roots   map[string][]model.Identifier
	scopes  map[model.Identifier][]string
	now     time.Time
}

// NewGraphBuilder returns an empty builder.
func NewGraphBuilder() *GraphBuilder {
	return &GraphBuilder{
		linkage: make(map[model.Identifier]model.PackageLinkage),
		issues:  make(map[model.Identifier][]model.Issue),
		edges:   make(map[model.Identifier][]model.Identifier),
		roots:   make(map[string][]model.Identifier),
		scopes:  make(map[model.Identifier][]string),
	}
}

// WithTimestamp sets the timestamp of the issues Build records for removed
// cycle edges. It defaults to the zero time, which keeps equal inputs
// serializing identically.
func (b *GraphBuilder) WithTimestamp(t time.Time) *GraphBuilder {
	b.now = t
	return b
}

// AddPackage registers a package. Adding a package twice keeps the first
// non-empty linkage.
func (b *GraphBuilder) AddPackage(id model.Identifier, linkage model.PackageLinkage) *GraphBuilder {
	if cur, ok := b.linkage[id]; !ok || cur == "" {
		b.linkage[id] = linkage
	}
	return b
}

// AddIssue records an issue for a package, registering it if needed.
func (b *GraphBuilder) AddIssue(id model.Identifier, issue model.Issue) *GraphBuilder {
	b.AddPackage(id, "")
	b.issues[id] = append(b.issues[id], issue)
	return b
}

// AddScope declares a scope of a project, even if it ends up without
// dependencies.
func (b *GraphBuilder) AddScope(project model.Identifier, scope string) *GraphBuilder {
	if !slices.Contains(b.scopes[project], scope) {
		b.scopes[project] = append(b.scopes[project], scope)
	}
	key := QualifyScope(project, scope)
	if _, ok := b.roots[key]; !ok {
		b.roots[key] = nil
	}
	return b
}

// AddRoot declares id a direct dependency of a project scope.
func (b *GraphBuilder) AddRoot(project model.Identifier, scope string, id model.Identifier) *GraphBuilder {
	b.AddScope(project, scope)
	b.AddPackage(id, "")
	key := QualifyScope(project, scope)
	if !slices.Contains(b.roots[key], id) {
		b.roots[key] = append(b.roots[key], id)
	}
	return b
}

// AddDependency declares that from depends on to.
func (b *GraphBuilder) AddDependency(from, to model.Identifier) *GraphBuilder {
	b.AddPackage(from, "")
	b.AddPackage(to, "")
	if !slices.Contains(b.edges[from], to) {
		b.edges[from] = append(b.edges[from], to)
	}
	return b
}

// ScopeNames returns the sorted scope names declared for a project. Callers
// store them in [model.Project.ScopeNames].
func (b *GraphBuilder) ScopeNames(project model.Identifier) []string {
	names := slices.Clone(b.scopes[project])
	slices.Sort(names)
	return names
}

// Build returns the graph. Packages, nodes, edges and scope roots are sorted
// by identifier, so equal inputs always give the same structure regardless
// of the order facts were added in.
func (b *GraphBuilder) Build() *DependencyGraph {
	packages := slices.SortedFunc(maps.Keys(b.linkage), model.CompareIdentifiers)
	pos := make(map[model.Identifier]int, len(packages))
	for i, id := range packages {
		pos[id] = i
	}
	key := func(id model.Identifier) string { return fmt.Sprint(pos[id]) }

	g := dag.New()
	for i := range packages {
		_ = g.AddNode(dag.Node{ID: fmt.Sprint(i), Payload: i})
	}
	for _, from := range packages {
		targets := slices.Clone(b.edges[from])
		slices.SortFunc(targets, model.CompareIdentifiers)
		for _, to := range targets {
			_ = g.AddEdge(dag.Edge{From: key(from), To: key(to)})
		}
	}

	issues := make(map[model.Identifier][]model.Issue, len(b.issues))
	for id, list := range b.issues {
		issues[id] = slices.Clone(list)
	}
	for _, e := range dag.BreakCycles(g) {
		fromNode, _ := g.Node(e.From)
		toNode, _ := g.Node(e.To)
		from, to := packages[fromNode.Payload], packages[toNode.Payload]
		issue := model.Issue{
			Timestamp: b.now,
			Source:    cycleIssueSource,
			Message:   fmt.Sprintf("Removed dependency from %s on %s to break a cycle.", from, to),
			Severity:  model.SeverityWarning,
		}
		issues[from] = append(issues[from], issue)
	}

	out := &DependencyGraph{
		Packages: packages,
		Scopes:   make(map[string][]RootReference, len(b.roots)),
		Nodes:    make([]GraphNode, len(packages)),
		Edges:    make([]GraphEdge, 0, g.EdgeCount()),
	}
	for i, id := range packages {
		out.Nodes[i] = GraphNode{Pkg: i, Linkage: b.linkage[id], Issues: issues[id]}
	}
	for _, n := range g.Nodes() {
		for _, child := range g.Children(n.ID) {
			c, _ := g.Node(child)
			out.Edges = append(out.Edges, GraphEdge{From: n.Payload, To: c.Payload})
		}
	}
	for scope, roots := range b.roots {
		refs := make([]RootReference, 0, len(roots))
		for _, id := range roots {
			refs = append(refs, RootReference{Root: pos[id]})
		}
		slices.SortFunc(refs, func(x, y RootReference) int { return x.Root - y.Root })
		out.Scopes[scope] = refs
	}
	return out
}
