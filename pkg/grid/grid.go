// Package grid builds rectangular, 4-connected graphs and places obstacles
// on them.
//
// Nodes are added column by column, so a cell's node ID is col*rows+row and
// its position is (col*spacing, row*spacing, 0). Each node is connected to
// its right and lower neighbor while the grid is built, which fixes the
// adjacency order and therefore the order in which a breadth-first search
// discovers neighbors.
//
//	g, layout, err := grid.Build(5, 5, 1)
//	start, _ := g.Get(layout.IDOf(0, 2))
package grid

import (
	"fmt"

	errs "github.com/matzehuels/gridpath/pkg/errors"
	"github.com/matzehuels/gridpath/pkg/geom"
	"github.com/matzehuels/gridpath/pkg/graph"
)

// Cell is the payload of a grid node: its column and row.
type Cell struct {
	Col int `json:"col" toml:"col"`
	Row int `json:"row" toml:"row"`
}

// Clone implements [graph.Cloner].
func (c Cell) Clone() Cell { return c }

func (c Cell) String() string { return fmt.Sprintf("[%d,%d]", c.Col, c.Row) }

// Layout describes the dimensions of a grid and maps between cells, node
// IDs and world positions.
type Layout struct {
	Cols    int
	Rows    int
	Spacing float64
}

// NewLayout validates the dimensions and returns the layout.
func NewLayout(cols, rows int, spacing float64) (Layout, error) {
	if err := errs.ValidateGridSize(cols, rows, spacing); err != nil {
		return Layout{}, err
	}
	return Layout{Cols: cols, Rows: rows, Spacing: spacing}, nil
}

// Len returns the number of cells.
func (l Layout) Len() int { return l.Cols * l.Rows }

// InBounds reports whether (col, row) is a cell of the layout.
func (l Layout) InBounds(col, row int) bool {
	return col >= 0 && col < l.Cols && row >= 0 && row < l.Rows
}

// IDOf returns the node ID of the cell at (col, row).
// The result is only meaningful for cells within bounds.
func (l Layout) IDOf(col, row int) graph.ID { return graph.ID(col*l.Rows + row) }

// CellOf is the inverse of IDOf.
func (l Layout) CellOf(id graph.ID) Cell {
	return Cell{Col: int(id) / l.Rows, Row: int(id) % l.Rows}
}

// Position returns the world position of the cell at (col, row).
func (l Layout) Position(col, row int) geom.Vec3 {
	return geom.V(float64(col)*l.Spacing, float64(row)*l.Spacing, 0)
}

// CellAt returns the cell closest to world position p, clamped to the grid.
func (l Layout) CellAt(p geom.Vec3) Cell {
	snap := func(v float64, n int) int {
		i := int(v/l.Spacing + 0.5)
		if v < 0 {
			i = 0
		}
		return min(max(i, 0), n-1)
	}
	return Cell{Col: snap(p.X, l.Cols), Row: snap(p.Y, l.Rows)}
}

// Graph creates the fully connected grid described by l.
func (l Layout) Graph() *graph.Graph[Cell] {
	g := graph.New[Cell]()
	nodes := make([]*graph.Node[Cell], 0, l.Len())
	for col := range l.Cols {
		for row := range l.Rows {
			nodes = append(nodes, g.Add(l.Position(col, row), Cell{Col: col, Row: row}))
		}
	}
	for col := range l.Cols {
		for row := range l.Rows {
			n := nodes[l.IDOf(col, row)]
			// Neighbors are distinct live nodes of g, so Connect cannot fail.
			if col+1 < l.Cols {
				_ = g.Connect(n, nodes[l.IDOf(col+1, row)])
			}
			if row+1 < l.Rows {
				_ = g.Connect(n, nodes[l.IDOf(col, row+1)])
			}
		}
	}
	return g
}

// Build validates the dimensions and creates a cols×rows grid.
func Build(cols, rows int, spacing float64) (*graph.Graph[Cell], Layout, error) {
	l, err := NewLayout(cols, rows, spacing)
	if err != nil {
		return nil, Layout{}, err
	}
	return l.Graph(), l, nil
}
