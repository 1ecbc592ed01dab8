package dependency

import (
	"iter"

	"github.com/matzehuels/scantower/pkg/core/model"
)

// Node is one occurrence of a package in a dependency graph.
//
// Implementations must be comparable values: two Node values are equal iff
// they denote the same occurrence, which lets algorithms keep visited sets
// keyed by Node. The graph reachable through Dependencies must be acyclic.
// That is the producer's responsibility; the algorithms in this package rely
// on it and only deduplicate visited nodes to avoid repeated work.
type Node interface {
	// ID identifies the package of this occurrence.
	ID() model.Identifier
	// Linkage tells how the package is attached to its dependent.
	Linkage() model.PackageLinkage
	// Issues returns the problems recorded for this occurrence.
	Issues() []model.Issue
	// Dependencies yields the direct children lazily. The sequence may be
	// iterated more than once and always yields the same order.
	Dependencies() iter.Seq[Node]
}

// VisitDependencies hands the direct children of n to f and returns f's
// result. Encodings that compute children on the fly never materialize a
// whole level this way.
func VisitDependencies[T any](n Node, f func(iter.Seq[Node]) T) T {
	return f(n.Dependencies())
}

// Matcher selects nodes to include in a query result. Non-matching nodes are
// still traversed.
type Matcher func(Node) bool

// MatchAll matches every node.
func MatchAll(Node) bool { return true }

// MatchSubProjects matches nodes that reference another project of the same
// multi-project build.
func MatchSubProjects(n Node) bool { return n.Linkage().IsProjectLinkage() }

// MatchLinkage returns a matcher for the given linkages.
func MatchLinkage(linkages ...model.PackageLinkage) Matcher {
	return func(n Node) bool {
		for _, l := range linkages {
			if n.Linkage() == l {
				return true
			}
		}
		return false
	}
}

// Not inverts a matcher.
func Not(m Matcher) Matcher {
	return func(n Node) bool { return !m(n) }
}

// emptySeq yields nothing.
func emptySeq(func(Node) bool) {}
