package export

import (
	"encoding/json"
	"io"

	errs "github.com/matzehuels/gridpath/pkg/errors"
	"github.com/matzehuels/gridpath/pkg/geom"
	"github.com/matzehuels/gridpath/pkg/graph"
)

// Trajectory is the JSON form of a sampled curve.
type Trajectory struct {
	RunID  string      `json:"run_id,omitempty"`
	Seed   int64       `json:"seed"`
	Degree int         `json:"degree"`
	Length float64     `json:"length"`
	Path   []graph.ID  `json:"path"`
	Points []geom.Vec3 `json:"points"`
}

// WriteTrajectoryJSON encodes t as indented JSON and writes it to w.
func WriteTrajectoryJSON(w io.Writer, t Trajectory) error {
	return writeJSON(w, t)
}

type graphJSON struct {
	Nodes []nodeJSON `json:"nodes"`
	Edges []edgeJSON `json:"edges"`
}

type nodeJSON struct {
	ID       graph.ID  `json:"id"`
	Position geom.Vec3 `json:"pos"`
	Data     any       `json:"data,omitempty"`
}

type edgeJSON struct {
	A graph.ID `json:"a"`
	B graph.ID `json:"b"`
}

// WriteGraphJSON encodes a graph's nodes, in container order, and its
// edges as JSON and writes it to w. Node payloads are encoded with
// encoding/json.
func WriteGraphJSON[T graph.Cloner[T]](w io.Writer, g *graph.Graph[T]) error {
	out := graphJSON{
		Nodes: make([]nodeJSON, 0, g.Len()),
		Edges: make([]edgeJSON, 0, g.EdgeCount()),
	}
	for n := range g.All() {
		out.Nodes = append(out.Nodes, nodeJSON{ID: n.ID(), Position: n.Position, Data: n.Data})
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, edgeJSON{A: e.A, B: e.B})
	}
	return writeJSON(w, out)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "encode")
	}
	return nil
}
