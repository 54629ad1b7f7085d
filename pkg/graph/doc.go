// Package graph provides a generic undirected graph that owns its nodes.
//
// # Overview
//
// A [Graph] is the substrate for path search: nodes carry a world-space
// position and an opaque payload, and edges are unweighted and undirected.
// The graph is an arena - nodes live in a store owned by the graph and
// reference each other by [ID] - so removing a node can be detected through
// the handles clients still hold instead of leaving dangling aliases.
//
// # Basic Usage
//
// Create a graph with [New], add nodes with [Graph.Add], and wire them with
// [Graph.Connect]:
//
//	g := graph.New[graph.Empty]()
//	a := g.Add(geom.V(0, 0, 0), graph.Empty{})
//	b := g.Add(geom.V(1, 0, 0), graph.Empty{})
//	if err := g.Connect(a, b); err != nil {
//	    return err
//	}
//
// Obstacles are plain topology changes: [Graph.Disconnect] drops a single
// edge, [Graph.Isolate] drops every edge of a node, and [Graph.Remove]
// deletes the node altogether.
//
// # IDs and Order
//
// IDs are assigned sequentially from 0 by [Graph.Add]. They are stable for
// the lifetime of the node and are never renumbered when other nodes are
// removed. [Graph.Nodes] reports nodes in insertion order, compacted on
// removal. Each node's neighbors are reported in the order the edges were
// created; path search relies on this for deterministic tie-breaking.
//
// # Payloads and Copies
//
// The payload type must implement [Cloner]. [Graph.Copy] clones every
// payload through it and replays the adjacency between the new nodes, which
// lets callers snapshot a canonical graph before carving obstacles into it.
// Graphs without payload use [Empty].
//
// # Concurrency
//
// Graph instances are not safe for concurrent use. Callers must synchronize
// access if multiple goroutines read or modify the same graph, or work on
// independent copies.
package graph
