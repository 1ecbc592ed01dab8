package dependency

import (
	"iter"
	"maps"
	"slices"

	"github.com/matzehuels/scantower/pkg/core/model"
	"github.com/matzehuels/scantower/pkg/errors"
)

// Navigator gives access to the dependencies of projects independent of how
// they are stored. There is one implementation per storage encoding; the
// queries in this package work on any of them.
type Navigator interface {
	// ScopeNames returns the sorted names of the project's scopes.
	ScopeNames(project *model.Project) []string
	// DirectDependencies yields the roots of a scope. The boolean is false
	// if the project has no scope with that name.
	DirectDependencies(project *model.Project, scope string) (iter.Seq[Node], bool)
}

// Unbounded is the maxDepth value that disables the depth limit.
const Unbounded = -1

// DependenciesForScope returns the identifiers of all dependencies of a
// scope up to maxDepth levels deep (1 = direct dependencies only, negative =
// unbounded) that match m. A nil matcher matches everything. The result is
// sorted with [model.CompareIdentifiers].
func DependenciesForScope(nav Navigator, project *model.Project, scope string, maxDepth int, m Matcher) []model.Identifier {
	roots, ok := nav.DirectDependencies(project, scope)
	if !ok {
		return nil
	}
	return CollectDependencies(roots, maxDepth, m)
}

// ScopeDependencies returns the dependencies of every scope of the project,
// keyed by scope name.
func ScopeDependencies(nav Navigator, project *model.Project, maxDepth int, m Matcher) map[string][]model.Identifier {
	result := make(map[string][]model.Identifier)
	for _, scope := range nav.ScopeNames(project) {
		result[scope] = DependenciesForScope(nav, project, scope, maxDepth, m)
	}
	return result
}

// ProjectDependencies returns the union of the dependencies of all scopes.
func ProjectDependencies(nav Navigator, project *model.Project, maxDepth int, m Matcher) []model.Identifier {
	set := make(map[model.Identifier]struct{})
	for _, ids := range ScopeDependencies(nav, project, maxDepth, m) {
		for _, id := range ids {
			set[id] = struct{}{}
		}
	}
	return sortedIDs(set)
}

// PackageDependencies locates every occurrence of pkg in the project's
// dependency graph and returns the union of their dependencies, up to
// maxDepth levels below the occurrence.
func PackageDependencies(nav Navigator, project *model.Project, pkg model.Identifier, maxDepth int, m Matcher) []model.Identifier {
	var occurrences []Node
	seen := make(map[Node]bool)
	var walk func(iter.Seq[Node])
	walk = func(nodes iter.Seq[Node]) {
		for n := range nodes {
			if seen[n] {
				continue
			}
			seen[n] = true
			if n.ID() == pkg {
				occurrences = append(occurrences, n)
			}
			walk(n.Dependencies())
		}
	}
	for _, scope := range nav.ScopeNames(project) {
		if roots, ok := nav.DirectDependencies(project, scope); ok {
			walk(roots)
		}
	}

	set := make(map[model.Identifier]struct{})
	for _, n := range occurrences {
		for _, id := range CollectDependencies(n.Dependencies(), maxDepth, m) {
			set[id] = struct{}{}
		}
	}
	return sortedIDs(set)
}

// CollectDependencies returns the identifiers of nodes reachable from nodes
// within maxDepth levels, where nodes themselves are level 1.
func CollectDependencies(nodes iter.Seq[Node], maxDepth int, m Matcher) []model.Identifier {
	if m == nil {
		m = MatchAll
	}
	ids := make(map[model.Identifier]struct{})
	// budget records the remaining depth a node was expanded with; a later
	// visit with a budget that is not larger adds nothing.
	budget := make(map[Node]int)

	var walk func(iter.Seq[Node], int)
	walk = func(level iter.Seq[Node], remaining int) {
		if remaining == 0 {
			return
		}
		next := remaining - 1
		if remaining < 0 {
			next = remaining
		}
		for n := range level {
			if b, ok := budget[n]; ok && (b < 0 || (remaining > 0 && b >= remaining)) {
				continue
			}
			budget[n] = remaining
			if m(n) {
				ids[n.ID()] = struct{}{}
			}
			walk(n.Dependencies(), next)
		}
	}
	walk(nodes, maxDepth)
	return sortedIDs(ids)
}

// ShortestPaths computes, for every scope of the project, the shortest path
// from a direct dependency to each reachable dependency. A path lists the
// ancestors of the dependency starting at the direct dependency; direct
// dependencies have an empty path.
//
// The search is a breadth-first traversal from the scope's roots. The first
// time an identifier is dequeued its chain of ancestors is recorded and the
// identifier is settled. Ties between paths of equal length are broken by
// child order, which each encoding keeps canonical.
//
// An error with code ErrCodeInconsistentGraph is returned if a dependency
// reported by [DependenciesForScope] is never reached.
func ShortestPaths(nav Navigator, project *model.Project) (map[string]map[model.Identifier][]model.Identifier, error) {
	result := make(map[string]map[model.Identifier][]model.Identifier)
	for _, scope := range nav.ScopeNames(project) {
		roots, ok := nav.DirectDependencies(project, scope)
		if !ok {
			continue
		}
		targets := DependenciesForScope(nav, project, scope, Unbounded, MatchAll)
		paths, missing := shortestPathsForScope(roots, targets)
		if len(missing) > 0 {
			return nil, errors.New(errors.ErrCodeInconsistentGraph,
				"no path found in scope %q of %s for %v", scope, project.ID, missing)
		}
		result[scope] = paths
	}
	return result, nil
}

type queueItem struct {
	node   Node
	parent int
}

func shortestPathsForScope(roots iter.Seq[Node], targets []model.Identifier) (map[model.Identifier][]model.Identifier, []model.Identifier) {
	remaining := make(map[model.Identifier]struct{}, len(targets))
	for _, id := range targets {
		remaining[id] = struct{}{}
	}
	paths := make(map[model.Identifier][]model.Identifier, len(targets))

	var queue []queueItem
	for n := range roots {
		queue = append(queue, queueItem{node: n, parent: -1})
	}

	pathTo := func(i int) []model.Identifier {
		path := []model.Identifier{}
		for p := queue[i].parent; p >= 0; p = queue[p].parent {
			path = append(path, queue[p].node.ID())
		}
		slices.Reverse(path)
		return path
	}

	expanded := make(map[Node]bool)
	for head := 0; head < len(queue) && len(remaining) > 0; head++ {
		item := queue[head]
		id := item.node.ID()
		if _, ok := remaining[id]; ok {
			paths[id] = pathTo(head)
			delete(remaining, id)
		}
		if expanded[item.node] {
			continue
		}
		expanded[item.node] = true
		for child := range item.node.Dependencies() {
			queue = append(queue, queueItem{node: child, parent: head})
		}
	}
	return paths, sortedIDs(remaining)
}

// DependencyTreeDepth returns the number of levels of a scope's dependency
// tree: 0 for a scope without dependencies and -1 if the project has no such
// scope.
func DependencyTreeDepth(nav Navigator, project *model.Project, scope string) int {
	roots, ok := nav.DirectDependencies(project, scope)
	if !ok {
		return -1
	}
	memo := make(map[Node]int)
	var depth func(iter.Seq[Node]) int
	depth = func(level iter.Seq[Node]) int {
		deepest := 0
		for n := range level {
			d, ok := memo[n]
			if !ok {
				d = 1 + depth(n.Dependencies())
				memo[n] = d
			}
			deepest = max(deepest, d)
		}
		return deepest
	}
	return depth(roots)
}

// CollectIssues walks the graph below nodes once and gathers the issues of
// every node, keyed by identifier. Identifiers without issues are omitted.
func CollectIssues(nodes iter.Seq[Node]) map[model.Identifier][]model.Issue {
	result := make(map[model.Identifier][]model.Issue)
	seen := make(map[Node]bool)
	var walk func(iter.Seq[Node])
	walk = func(level iter.Seq[Node]) {
		for n := range level {
			if seen[n] {
				continue
			}
			seen[n] = true
			if issues := n.Issues(); len(issues) > 0 {
				result[n.ID()] = append(result[n.ID()], issues...)
			}
			walk(n.Dependencies())
		}
	}
	walk(nodes)
	for id, issues := range result {
		result[id] = model.DedupeIssues(issues)
	}
	return result
}

// ProjectIssues collects the issues of all dependencies of all scopes of the
// project.
func ProjectIssues(nav Navigator, project *model.Project) map[model.Identifier][]model.Issue {
	return CollectIssues(allRoots(nav, project))
}

// CollectSubProjects returns the dependencies that are projects of the same
// multi-project build.
func CollectSubProjects(nav Navigator, project *model.Project) []model.Identifier {
	return ProjectDependencies(nav, project, Unbounded, MatchSubProjects)
}

// allRoots chains the direct dependencies of all scopes.
func allRoots(nav Navigator, project *model.Project) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for _, scope := range nav.ScopeNames(project) {
			roots, ok := nav.DirectDependencies(project, scope)
			if !ok {
				continue
			}
			for n := range roots {
				if !yield(n) {
					return
				}
			}
		}
	}
}

func sortedIDs(set map[model.Identifier]struct{}) []model.Identifier {
	return slices.SortedFunc(maps.Keys(set), model.CompareIdentifiers)
}
