// Package search finds shortest paths in a [graph.Graph] one breadth-first
// level at a time.
//
// A [PathFinder] is bound to a start and a goal node. Each call to
// [PathFinder.Step] expands the whole current frontier, so callers can
// pause between levels, inspect [PathFinder.OpenNodes] to visualize
// progress, or stop early. [PathFinder.FindShortestPath] drives the search
// to completion and reconstructs a path with the fewest edges.
//
// # Tie-breaking
//
// Frontier nodes are expanded in discovery order and each node's neighbors
// in connection order; the first node to discover a neighbor becomes its
// predecessor. The result is a shortest path, not a canonical one: callers
// must not rely on which of several equally short paths is returned.
//
// # Obstacles and Staleness
//
// The search has no notion of obstacles. Remove nodes or edges from the
// graph before the first step and the search routes around them. Changing
// the topology after the first step makes the search stale; the next step
// fails with [ErrStaleSearch] instead of producing an inconsistent path.
//
// # Concurrency
//
// A PathFinder mutates its state in place and must not be shared between
// goroutines while stepping.
//
// [graph.Graph]: github.com/matzehuels/gridpath/pkg/graph
package search
