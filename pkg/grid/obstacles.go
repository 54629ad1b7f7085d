package grid

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	errs "github.com/matzehuels/gridpath/pkg/errors"
	"github.com/matzehuels/gridpath/pkg/graph"
)

// NoiseScale is the noise frequency per cell. Lower values give larger,
// smoother obstacle blobs.
const NoiseScale = 0.35

// Block isolates the nodes with the given IDs. Blocked nodes stay in the
// graph, keep their IDs and can still be looked up, but have no edges.
//
// Returns an error wrapping [graph.ErrNodeNotFound] for an unknown ID; nodes
// before it have already been blocked.
func Block[T graph.Cloner[T]](g *graph.Graph[T], ids ...graph.ID) error {
	for _, id := range ids {
		n, err := g.Get(id)
		if err != nil {
			return errs.Wrap("", err, "block")
		}
		if err := g.Isolate(n); err != nil {
			return err
		}
	}
	return nil
}

// Carve removes the nodes with the given IDs from the graph entirely.
//
// Returns an error wrapping [graph.ErrNodeNotFound] for an unknown ID; nodes
// before it have already been removed.
func Carve[T graph.Cloner[T]](g *graph.Graph[T], ids ...graph.ID) error {
	for _, id := range ids {
		n, err := g.Get(id)
		if err != nil {
			return errs.Wrap("", err, "carve")
		}
		if err := g.Remove(n); err != nil {
			return err
		}
	}
	return nil
}

// NoiseObstacles picks obstacle cells from 2D OpenSimplex noise. A cell is
// an obstacle when the noise at (col, row)·[NoiseScale] exceeds threshold;
// noise values fall roughly in [-1, 1], so a higher threshold means fewer
// obstacles. Cells listed in keep are never chosen.
//
// The result is a new slice in ascending ID order and depends only on the
// layout, seed, threshold and keep set.
func NoiseObstacles(l Layout, seed int64, threshold float64, keep ...graph.ID) []graph.ID {
	noise := opensimplex.New(seed)
	skip := make(map[graph.ID]struct{}, len(keep))
	for _, id := range keep {
		skip[id] = struct{}{}
	}
	var ids []graph.ID
	for col := range l.Cols {
		for row := range l.Rows {
			id := l.IDOf(col, row)
			if _, ok := skip[id]; ok {
				continue
			}
			if noise.Eval2(float64(col)*NoiseScale, float64(row)*NoiseScale) > threshold {
				ids = append(ids, id)
			}
		}
	}
	return ids
}
