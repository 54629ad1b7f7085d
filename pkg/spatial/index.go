// Package spatial resolves world coordinates to graph nodes.
//
// An [Index] is an R-tree over node positions, built once from a graph.
// It is a snapshot: nodes added later are not indexed, and nodes removed
// later are skipped by queries.
package spatial

import (
	"cmp"
	"slices"

	"github.com/dhconnelly/rtreego"

	"github.com/matzehuels/gridpath/pkg/geom"
	"github.com/matzehuels/gridpath/pkg/graph"
)

// R-tree node fan-out.
const (
	minChildren = 25
	maxChildren = 50
)

// tol is the half-size of the box stored for each point.
const tol = 1e-9

type entry[T graph.Cloner[T]] struct {
	node *graph.Node[T]
	rect rtreego.Rect
}

func (e *entry[T]) Bounds() rtreego.Rect { return e.rect }

// Index answers nearest-node and box queries over the nodes of one graph.
type Index[T graph.Cloner[T]] struct {
	g    *graph.Graph[T]
	tree *rtreego.Rtree
}

// NewIndex indexes the current nodes of g by position.
func NewIndex[T graph.Cloner[T]](g *graph.Graph[T]) *Index[T] {
	tree := rtreego.NewTree(3, minChildren, maxChildren)
	for n := range g.All() {
		tree.Insert(&entry[T]{node: n, rect: point(n.Position).ToRect(tol)})
	}
	return &Index[T]{g: g, tree: tree}
}

// Len returns the number of indexed nodes, including any removed since.
func (x *Index[T]) Len() int { return x.tree.Size() }

// Nearest returns the live node closest to p.
// Returns false if no indexed node is still live.
func (x *Index[T]) Nearest(p geom.Vec3) (*graph.Node[T], bool) {
	s := x.tree.NearestNeighbor(point(p))
	if s == nil {
		return nil, false
	}
	if n := s.(*entry[T]).node; x.g.Contains(n) {
		return n, true
	}
	// The closest node is gone; walk outwards in distance order.
	for _, s := range x.tree.NearestNeighbors(x.tree.Size(), point(p)) {
		if s == nil {
			break
		}
		if n := s.(*entry[T]).node; x.g.Contains(n) {
			return n, true
		}
	}
	return nil, false
}

// Within returns the live nodes inside the axis-aligned box spanned by lo
// and hi, in ID order. The corners may be given in any order.
func (x *Index[T]) Within(lo, hi geom.Vec3) []*graph.Node[T] {
	lo, hi = geom.V(min(lo.X, hi.X), min(lo.Y, hi.Y), min(lo.Z, hi.Z)),
		geom.V(max(lo.X, hi.X), max(lo.Y, hi.Y), max(lo.Z, hi.Z))

	// rtreego rejects zero-length sides, so flat boxes get a hair of depth.
	lengths := make([]float64, 3)
	for i, d := range hi.Sub(lo).Slice() {
		lengths[i] = d + 2*tol
	}
	rect, err := rtreego.NewRect(point(lo.Sub(geom.V(tol, tol, tol))), lengths)
	if err != nil {
		return nil
	}

	var out []*graph.Node[T]
	for _, s := range x.tree.SearchIntersect(rect) {
		if n := s.(*entry[T]).node; x.g.Contains(n) {
			out = append(out, n)
		}
	}
	slices.SortFunc(out, func(a, b *graph.Node[T]) int { return cmp.Compare(a.ID(), b.ID()) })
	return out
}

func point(v geom.Vec3) rtreego.Point { return rtreego.Point{v.X, v.Y, v.Z} }
