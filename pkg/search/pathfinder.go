package search

import (
	"iter"
	"slices"

	errs "github.com/matzehuels/gridpath/pkg/errors"
	"github.com/matzehuels/gridpath/pkg/graph"
	"github.com/matzehuels/gridpath/pkg/observability"
)

var (
	// ErrNoPath is returned by [PathFinder.FindShortestPath] when the frontier
	// runs empty without reaching the goal.
	ErrNoPath = errs.New(errs.ErrCodeNoPath, "goal is unreachable from start")

	// ErrStaleSearch is returned by [PathFinder.Step] when the graph's topology
	// changed after the first step.
	ErrStaleSearch = errs.New(errs.ErrCodeInvalidArgument, "graph topology changed during search")

	// ErrEndpoint is returned when the start or goal is not a live node of
	// the searched graph.
	ErrEndpoint = errs.New(errs.ErrCodeInvalidArgument, "start and goal must be live nodes of the graph")
)

// Status is the state of a [PathFinder].
type Status int

const (
	// Searching means the frontier still has nodes to expand.
	Searching Status = iota
	// Found means the goal has been discovered. Terminal.
	Found
	// Exhausted means every node reachable from start was discovered without
	// meeting the goal. Terminal.
	Exhausted
)

func (s Status) String() string {
	switch s {
	case Searching:
		return "searching"
	case Found:
		return "found"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further progress is possible.
func (s Status) Terminal() bool { return s != Searching }

// PathFinder performs a breadth-first search from start to goal, one
// frontier level per [PathFinder.Step].
//
// The zero value is not usable - use [New].
type PathFinder[T graph.Cloner[T]] struct {
	g     *graph.Graph[T]
	start *graph.Node[T]
	goal  *graph.Node[T]

	visited  map[graph.ID]*graph.Node[T] // node -> predecessor, nil for start
	frontier []*graph.Node[T]
	status   Status
	depth    int

	stepped bool
	gen     uint64
}

// New creates a search from start to goal over g.
// If start and goal are the same node the search is already [Found].
//
// Returns [ErrEndpoint] if either node is not a live node of g.
func New[T graph.Cloner[T]](g *graph.Graph[T], start, goal *graph.Node[T]) (*PathFinder[T], error) {
	if g == nil || !g.Contains(start) || !g.Contains(goal) {
		return nil, ErrEndpoint
	}
	p := &PathFinder[T]{
		g:        g,
		start:    start,
		goal:     goal,
		visited:  map[graph.ID]*graph.Node[T]{start.ID(): nil},
		frontier: []*graph.Node[T]{start},
	}
	observability.Search().OnSearchStart(int(start.ID()), int(goal.ID()))
	if start == goal {
		p.status = Found
		p.frontier = nil
		observability.Search().OnSearchComplete(p.status.String(), 0, 1)
	}
	return p, nil
}

// Step expands every node of the current frontier and reports whether the
// goal has been found.
//
// Frontier nodes are expanded in order, and each node's neighbors in
// connection order. A neighbor seen for the first time records the
// expanding node as its predecessor and joins the next frontier. Finding
// the goal does not cut the level short. If the next frontier is empty and
// the goal was not found the search becomes [Exhausted].
//
// Once the search is terminal Step does nothing and returns the same answer.
// Returns [ErrStaleSearch] if the graph's topology changed since the first
// step, or [ErrEndpoint] if start or goal were removed before it.
func (p *PathFinder[T]) Step() (bool, error) {
	if p.status.Terminal() {
		return p.status == Found, nil
	}
	if err := p.checkGraph(); err != nil {
		return false, err
	}

	var next []*graph.Node[T]
	for _, n := range p.frontier {
		for m := range n.Adjacent() {
			if _, seen := p.visited[m.ID()]; seen {
				continue
			}
			p.visited[m.ID()] = n
			next = append(next, m)
			if m == p.goal {
				p.status = Found
			}
		}
	}
	p.frontier = next
	p.depth++

	if len(next) == 0 && p.status == Searching {
		p.status = Exhausted
	}
	if p.status.Terminal() {
		p.frontier = nil
	}

	hooks := observability.Search()
	hooks.OnStep(p.depth, len(p.frontier), len(p.visited), p.status.String())
	if p.status.Terminal() {
		hooks.OnSearchComplete(p.status.String(), p.depth, len(p.visited))
	}
	return p.status == Found, nil
}

func (p *PathFinder[T]) checkGraph() error {
	if !p.stepped {
		if !p.g.Contains(p.start) || !p.g.Contains(p.goal) {
			return ErrEndpoint
		}
		p.stepped = true
		p.gen = p.g.Generation()
		return nil
	}
	if p.g.Generation() != p.gen {
		return errs.Wrap("", ErrStaleSearch, "search %d -> %d at depth %d", p.start.ID(), p.goal.ID(), p.depth)
	}
	return nil
}

// FindShortestPath steps until the search is terminal and returns the
// nodes of a shortest path, start and goal included. The path has a single
// node when start and goal coincide.
//
// Returns an error wrapping [ErrNoPath] if the goal is unreachable, or any
// error returned by [PathFinder.Step].
func (p *PathFinder[T]) FindShortestPath() ([]*graph.Node[T], error) {
	for p.status == Searching {
		if _, err := p.Step(); err != nil {
			return nil, err
		}
	}
	if p.status == Exhausted {
		return nil, errs.Wrap("", ErrNoPath, "no path from %d to %d (%d nodes reachable)",
			p.start.ID(), p.goal.ID(), len(p.visited))
	}

	var path []*graph.Node[T]
	for n := p.goal; n != nil; n = p.visited[n.ID()] {
		path = append(path, n)
	}
	slices.Reverse(path)
	return path, nil
}

// OpenNodes iterates over the current frontier: nodes discovered by the
// last step but not yet expanded. Before the first step this is the start
// node. The sequence is empty once the search is terminal.
//
// The view reads the search state directly; it must not be used across a
// call to [PathFinder.Step].
func (p *PathFinder[T]) OpenNodes() iter.Seq[*graph.Node[T]] {
	return func(yield func(*graph.Node[T]) bool) {
		if p.status.Terminal() {
			return
		}
		for _, n := range p.frontier {
			if !yield(n) {
				return
			}
		}
	}
}

// OpenCount returns the number of nodes in the current frontier.
func (p *PathFinder[T]) OpenCount() int {
	if p.status.Terminal() {
		return 0
	}
	return len(p.frontier)
}

// Status returns the current search status.
func (p *PathFinder[T]) Status() Status { return p.status }

// Depth returns the number of completed expansions.
func (p *PathFinder[T]) Depth() int { return p.depth }

// VisitedCount returns the number of nodes discovered so far, start included.
func (p *PathFinder[T]) VisitedCount() int { return len(p.visited) }

// Visited reports whether n is a node of the searched graph that has been
// discovered.
func (p *PathFinder[T]) Visited(n *graph.Node[T]) bool {
	if !p.g.Contains(n) {
		return false
	}
	_, ok := p.visited[n.ID()]
	return ok
}

// Start returns the start node.
func (p *PathFinder[T]) Start() *graph.Node[T] { return p.start }

// Goal returns the goal node.
func (p *PathFinder[T]) Goal() *graph.Node[T] { return p.goal }
