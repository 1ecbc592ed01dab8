package dag

// BreakCycles removes back-edges from the graph so that it becomes acyclic
// and returns the removed edges in the order they were found.
//
// BreakCycles uses depth-first search with white/gray/black coloring to detect
// cycles. When a gray node is encountered (indicating a back-edge that would
// complete a cycle), that edge is marked for removal.
//
// # Algorithm
//
// The DFS starts from all source nodes (nodes with in-degree 0) in insertion
// order, then visits any remaining unvisited nodes to handle components that
// consist only of cycles. A node is:
//   - white: not yet visited
//   - gray: currently being visited (on the DFS stack)
//   - black: fully processed (all descendants visited)
//
// Any edge pointing to a gray node creates a cycle and is removed.
//
// # Edge Selection
//
// The choice of removed edges is deterministic for a deterministic build but
// does not necessarily minimize the number of removed edges.
//
// BreakCycles panics if g is nil.
func BreakCycles(g *DAG) []Edge {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int)
	var backEdges []Edge

	var dfs func(node string)
	dfs = func(node string) {
		color[node] = gray
		for _, child := range g.Children(node) {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				backEdges = append(backEdges, Edge{From: node, To: child})
			}
		}
		color[node] = black
	}

	for _, n := range g.Sources() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}

	for _, n := range g.Nodes() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}

	for _, e := range backEdges {
		g.RemoveEdge(e.From, e.To)
	}
	return backEdges
}
