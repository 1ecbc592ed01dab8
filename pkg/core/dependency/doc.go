// Package dependency provides representation-independent navigation of
// project dependency graphs.
//
// # Encodings
//
// Package managers report dependencies in one of two forms:
//
//   - an explicit tree per project scope ([model.Project.Scopes]), navigated
//     by [TreeNavigator]
//   - a compact [DependencyGraph] shared by all projects of a package
//     manager, navigated by [GraphNavigator] and produced by [GraphBuilder]
//
// [CompositeNavigator] picks the right one per project, so callers never need
// to know which encoding a project uses.
//
// # Queries
//
// All queries are package functions over the [Navigator] interface:
//
//	nav := dependency.NewCompositeNavigator(graphs)
//	ids := dependency.ProjectDependencies(nav, project, dependency.Unbounded, nil)
//	paths, err := dependency.ShortestPaths(nav, project)
//	depth := dependency.DependencyTreeDepth(nav, project, "compile")
//
// # Acyclicity
//
// Every encoding must be acyclic. Producers guarantee this ([GraphBuilder]
// breaks cycles and records a WARNING issue per removed edge), so the queries
// carry no cycle guards of their own. They deduplicate visited nodes only to
// avoid redundant work on shared subgraphs.
//
// # Ordering
//
// Children are visited in a canonical order: trees keep the order the
// package manager produced, compact graphs are sorted by package identifier.
// Query results that are identifier sets are returned sorted with
// [model.CompareIdentifiers].
package dependency
