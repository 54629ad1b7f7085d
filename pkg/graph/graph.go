package graph

import (
	"iter"
	"slices"

	errs "github.com/matzehuels/gridpath/pkg/errors"
	"github.com/matzehuels/gridpath/pkg/geom"
)

var (
	// ErrForeignNode is returned by [Graph.Connect], [Graph.Disconnect],
	// [Graph.Isolate] and [Graph.Remove] when a node handle does not belong to
	// the graph, either because it was created by another graph or because it
	// has already been removed.
	ErrForeignNode = errs.New(errs.ErrCodeInvalidArgument, "node does not belong to this graph")

	// ErrSelfLoop is returned by [Graph.Connect] when both endpoints are the
	// same node. Graphs are simple: no self-loops, no parallel edges.
	ErrSelfLoop = errs.New(errs.ErrCodeInvalidArgument, "cannot connect a node to itself")

	// ErrNilNode is returned when a nil handle is passed where a node is required.
	ErrNilNode = errs.New(errs.ErrCodeInvalidArgument, "nil node")

	// ErrNodeNotFound is returned by [Graph.Get] when no live node has the
	// requested ID.
	ErrNodeNotFound = errs.New(errs.ErrCodeNodeNotFound, "node not found")

	// ErrCorrupt is returned by [Graph.Validate] when an adjacency invariant
	// does not hold. This indicates a bug in this package.
	ErrCorrupt = errs.New(errs.ErrCodeInternal, "graph invariant violated")
)

// ID identifies a node within its graph. IDs are assigned sequentially by
// [Graph.Add] starting at 0 and are never reused or renumbered.
type ID int

// Cloner is the capability every node payload must provide so that
// [Graph.Copy] can deep-copy nodes without knowing their concrete type.
type Cloner[T any] interface {
	Clone() T
}

// Empty is a payload for graphs whose nodes carry no data.
type Empty struct{}

// Clone implements [Cloner].
func (Empty) Clone() Empty { return Empty{} }

// Node is a vertex owned by exactly one [Graph]. Client code only ever holds
// non-owning handles returned by [Graph.Add] or the query methods.
//
// Position and Data may be modified freely; they are not interpreted by the
// graph. Connections are kept as neighbor IDs resolved through the owning
// graph, so a handle to a removed node can be detected with [Node.Live]
// instead of dangling.
type Node[T Cloner[T]] struct {
	// Position is the node's world-space location. It is used by curve
	// interpolation only and has no effect on topology.
	Position geom.Vec3
	// Data is an opaque payload carried for the client.
	Data T

	id    ID
	adj   []ID // neighbor IDs in connection order
	owner *Graph[T]
}

// ID returns the identifier assigned when the node was added.
func (n *Node[T]) ID() ID { return n.id }

// Live reports whether the node still belongs to a graph.
// It returns false once the node has been removed.
func (n *Node[T]) Live() bool { return n != nil && n.owner != nil }

// Degree returns the number of edges incident to the node.
func (n *Node[T]) Degree() int { return len(n.adj) }

// NeighborIDs returns the IDs of adjacent nodes in connection order.
// The returned slice is a copy.
func (n *Node[T]) NeighborIDs() []ID { return slices.Clone(n.adj) }

// Adjacent iterates over adjacent nodes in connection order.
// The sequence is empty for a removed node. The graph must not be mutated
// while iterating.
func (n *Node[T]) Adjacent() iter.Seq[*Node[T]] {
	return func(yield func(*Node[T]) bool) {
		if n.owner == nil {
			return
		}
		for _, id := range n.adj {
			if !yield(n.owner.index[id]) {
				return
			}
		}
	}
}

// Neighbors returns adjacent nodes in connection order.
// Returns nil for a removed node or a node without edges.
func (n *Node[T]) Neighbors() []*Node[T] {
	if n.owner == nil || len(n.adj) == 0 {
		return nil
	}
	return slices.Collect(n.Adjacent())
}

// ConnectedTo reports whether an edge joins n and m.
func (n *Node[T]) ConnectedTo(m *Node[T]) bool {
	if !n.Live() || m == nil || m.owner != n.owner {
		return false
	}
	return slices.Contains(n.adj, m.id)
}

// Edge is an undirected connection between two nodes, reported once with
// A < B by [Graph.Edges].
type Edge struct {
	A, B ID
}

// Graph is an undirected, unweighted graph that owns its nodes.
//
// Nodes are kept in insertion order; removing a node compacts that order
// but never renumbers IDs. Adjacency is always symmetric and free of
// duplicates and self-loops.
//
// The zero value is not usable - use [New] to create a graph.
// Graph is not safe for concurrent use without external synchronization;
// independent [Graph.Copy] results may be used from different goroutines.
type Graph[T Cloner[T]] struct {
	nodes []*Node[T]
	index map[ID]*Node[T]
	next  ID
	edges int
	gen   uint64
}

// New creates an empty graph.
func New[T Cloner[T]]() *Graph[T] {
	return &Graph[T]{index: make(map[ID]*Node[T])}
}

// Add transfers a new node into the graph and returns its handle.
// The node receives the next unused sequential ID.
func (g *Graph[T]) Add(pos geom.Vec3, data T) *Node[T] {
	n := &Node[T]{
		Position: pos,
		Data:     data,
		id:       g.next,
		owner:    g,
	}
	g.next++
	g.nodes = append(g.nodes, n)
	g.index[n.id] = n
	return n
}

// Connect adds an undirected edge between a and b.
// Connecting an already connected pair has no effect.
//
// Returns [ErrForeignNode] if either node does not belong to g, or
// [ErrSelfLoop] if a and b are the same node.
func (g *Graph[T]) Connect(a, b *Node[T]) error {
	if err := g.check("connect", a, b); err != nil {
		return err
	}
	if a == b {
		return errs.Wrap("", ErrSelfLoop, "connect %d", a.id)
	}
	if slices.Contains(a.adj, b.id) {
		return nil
	}
	a.adj = append(a.adj, b.id)
	b.adj = append(b.adj, a.id)
	g.edges++
	g.gen++
	return nil
}

// Disconnect removes the edge between a and b in both directions.
// It is a no-op if the nodes are not connected.
//
// Returns [ErrForeignNode] if either node does not belong to g.
func (g *Graph[T]) Disconnect(a, b *Node[T]) error {
	if err := g.check("disconnect", a, b); err != nil {
		return err
	}
	g.unlink(a, b)
	return nil
}

// Isolate removes every edge incident to n, leaving n in the graph.
// This is how obstacles that should stay addressable are placed.
//
// Returns [ErrForeignNode] if n does not belong to g.
func (g *Graph[T]) Isolate(n *Node[T]) error {
	if err := g.check("isolate", n); err != nil {
		return err
	}
	g.isolate(n)
	return nil
}

// Remove disconnects n from all neighbors and deletes it from the graph.
// The handle is dead afterwards: [Node.Live] reports false and passing it
// to any graph method returns [ErrForeignNode]. Other nodes keep their IDs.
//
// Returns [ErrForeignNode] if n does not belong to g.
func (g *Graph[T]) Remove(n *Node[T]) error {
	if err := g.check("remove", n); err != nil {
		return err
	}
	g.isolate(n)
	delete(g.index, n.id)
	g.nodes = slices.DeleteFunc(g.nodes, func(m *Node[T]) bool { return m == n })
	n.owner = nil
	g.gen++
	return nil
}

// Exists reports whether a live node has the given ID.
func (g *Graph[T]) Exists(id ID) bool {
	_, ok := g.index[id]
	return ok
}

// Contains reports whether n is a live node of g.
func (g *Graph[T]) Contains(n *Node[T]) bool {
	return n != nil && n.owner == g
}

// Get returns the live node with the given ID.
// Returns [ErrNodeNotFound] if there is none.
func (g *Graph[T]) Get(id ID) (*Node[T], error) {
	n, ok := g.index[id]
	if !ok {
		return nil, errs.Wrap("", ErrNodeNotFound, "get %d", id)
	}
	return n, nil
}

// Nodes returns the live nodes in container order.
// The slice is a copy; the node pointers refer to the graph's nodes.
func (g *Graph[T]) Nodes() []*Node[T] { return slices.Clone(g.nodes) }

// All iterates over the live nodes in container order.
// The graph must not be mutated while iterating.
func (g *Graph[T]) All() iter.Seq[*Node[T]] { return slices.Values(g.nodes) }

// Edges returns every edge once, ordered by the container position of its
// lower-ID endpoint and then by connection order.
func (g *Graph[T]) Edges() []Edge {
	out := make([]Edge, 0, g.edges)
	for _, n := range g.nodes {
		for _, id := range n.adj {
			if n.id < id {
				out = append(out, Edge{A: n.id, B: id})
			}
		}
	}
	return out
}

// Len returns the number of live nodes.
func (g *Graph[T]) Len() int { return len(g.nodes) }

// EdgeCount returns the number of undirected edges.
func (g *Graph[T]) EdgeCount() int { return g.edges }

// Generation returns a counter that changes whenever the topology changes
// (an edge is added or removed, or a node is removed). Adding an unconnected
// node does not change it.
func (g *Graph[T]) Generation() uint64 { return g.gen }

// Copy returns a deep copy of the graph. Every node is duplicated through
// its payload's Clone method, keeping its ID and position, and the
// adjacency is replayed between the new nodes through the ID
// correspondence. The copy shares no nodes with g, and later nodes added to
// either graph receive the same IDs they would have received in the other.
func (g *Graph[T]) Copy() *Graph[T] {
	c := &Graph[T]{
		nodes: make([]*Node[T], 0, len(g.nodes)),
		index: make(map[ID]*Node[T], len(g.nodes)),
		next:  g.next,
		edges: g.edges,
	}
	for _, n := range g.nodes {
		cn := &Node[T]{
			Position: n.Position,
			Data:     n.Data.Clone(),
			id:       n.id,
			adj:      slices.Clone(n.adj),
			owner:    c,
		}
		c.nodes = append(c.nodes, cn)
		c.index[cn.id] = cn
	}
	return c
}

// Validate checks the structural invariants and returns nil if they hold:
//
//  1. Every node in container order is indexed under its ID and owned by g
//  2. Every neighbor ID refers to a live node
//  3. Adjacency is symmetric, without duplicates or self-loops
//  4. The edge count matches the adjacency lists
//
// Returns an error wrapping [ErrCorrupt] describing the first violation.
func (g *Graph[T]) Validate() error {
	if len(g.index) != len(g.nodes) {
		return errs.Wrap("", ErrCorrupt, "index holds %d nodes, container %d", len(g.index), len(g.nodes))
	}
	degrees := 0
	for _, n := range g.nodes {
		if g.index[n.id] != n || n.owner != g {
			return errs.Wrap("", ErrCorrupt, "node %d is not indexed", n.id)
		}
		seen := make(map[ID]bool, len(n.adj))
		for _, id := range n.adj {
			if id == n.id {
				return errs.Wrap("", ErrCorrupt, "self-loop on %d", n.id)
			}
			if seen[id] {
				return errs.Wrap("", ErrCorrupt, "duplicate edge %d-%d", n.id, id)
			}
			seen[id] = true
			m, ok := g.index[id]
			if !ok {
				return errs.Wrap("", ErrCorrupt, "edge %d-%d points at a removed node", n.id, id)
			}
			if !slices.Contains(m.adj, n.id) {
				return errs.Wrap("", ErrCorrupt, "edge %d-%d is not symmetric", n.id, id)
			}
		}
		degrees += len(n.adj)
	}
	if degrees != 2*g.edges {
		return errs.Wrap("", ErrCorrupt, "edge count %d does not match degree sum %d", g.edges, degrees)
	}
	return nil
}

func (g *Graph[T]) check(op string, nodes ...*Node[T]) error {
	for _, n := range nodes {
		if n == nil {
			return errs.Wrap("", ErrNilNode, "%s", op)
		}
		if n.owner != g {
			return errs.Wrap("", ErrForeignNode, "%s node %d", op, n.id)
		}
	}
	return nil
}

func (g *Graph[T]) unlink(a, b *Node[T]) {
	i := slices.Index(a.adj, b.id)
	if i < 0 {
		return
	}
	a.adj = slices.Delete(a.adj, i, i+1)
	b.adj = slices.DeleteFunc(b.adj, func(id ID) bool { return id == a.id })
	g.edges--
	g.gen++
}

func (g *Graph[T]) isolate(n *Node[T]) {
	for _, id := range slices.Clone(n.adj) {
		g.unlink(n, g.index[id])
	}
}
