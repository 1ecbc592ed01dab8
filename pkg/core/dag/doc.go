// Package dag provides the adjacency-list graph that backs compact
// dependency graphs.
//
// # Overview
//
// A dependency graph shared by many projects is stored once, with every
// package occurrence as a node and every "depends on" relation as an edge.
// Nodes are addressed by string keys chosen by the caller; the payload is an
// index into the caller's own tables.
//
//	g := dag.New()
//	g.AddNode(dag.Node{ID: "0", Payload: 0})
//	g.AddNode(dag.Node{ID: "1", Payload: 1})
//	g.AddEdge(dag.Edge{From: "0", To: "1"})
//
// Query the structure with [DAG.Children] and [DAG.Sources].
// Consumers of dependency graphs assume they are acyclic. [DAG.Validate]
// checks that, and [BreakCycles] removes back-edges from graphs produced by
// package managers that allow cycles.
//
// # Ordering
//
// Nodes, edges and adjacency lists keep insertion order. [DAG.SortChildren]
// imposes a canonical order after building, which makes every traversal
// reproducible across runs.
package dag
