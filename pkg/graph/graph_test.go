package graph

import (
	"errors"
	"slices"
	"testing"

	errs "github.com/matzehuels/gridpath/pkg/errors"
	"github.com/matzehuels/gridpath/pkg/geom"
)

// label is a payload with a pointer field so copies can be told apart.
type label struct {
	name *string
}

func (l label) Clone() label {
	if l.name == nil {
		return label{}
	}
	s := *l.name
	return label{name: &s}
}

func newLabel(s string) label { return label{name: &s} }

func line(t *testing.T, n int) (*Graph[Empty], []*Node[Empty]) {
	t.Helper()
	g := New[Empty]()
	nodes := make([]*Node[Empty], n)
	for i := range nodes {
		nodes[i] = g.Add(geom.V(float64(i), 0, 0), Empty{})
		if i > 0 {
			if err := g.Connect(nodes[i-1], nodes[i]); err != nil {
				t.Fatalf("Connect: %v", err)
			}
		}
	}
	return g, nodes
}

func assertSymmetric[T Cloner[T]](t *testing.T, g *Graph[T]) {
	t.Helper()
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	for _, a := range g.Nodes() {
		for _, b := range g.Nodes() {
			if a.ConnectedTo(b) != b.ConnectedTo(a) {
				t.Fatalf("asymmetric edge %d-%d", a.ID(), b.ID())
			}
		}
	}
}

func TestAddAssignsSequentialIDs(t *testing.T) {
	g := New[Empty]()
	for i := range 4 {
		n := g.Add(geom.Vec3{}, Empty{})
		if n.ID() != ID(i) {
			t.Errorf("ID = %d, want %d", n.ID(), i)
		}
		if !n.Live() {
			t.Errorf("node %d not live after Add", i)
		}
	}
	if g.Len() != 4 {
		t.Errorf("Len = %d, want 4", g.Len())
	}
}

func TestConnect(t *testing.T) {
	g := New[Empty]()
	a := g.Add(geom.Vec3{}, Empty{})
	b := g.Add(geom.Vec3{}, Empty{})

	if err := g.Connect(a, b); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if !a.ConnectedTo(b) || !b.ConnectedTo(a) {
		t.Fatal("edge not symmetric after Connect")
	}

	gen := g.Generation()
	if err := g.Connect(b, a); err != nil {
		t.Fatalf("second Connect: %v", err)
	}
	if a.Degree() != 1 || b.Degree() != 1 {
		t.Errorf("degrees = %d,%d after repeated Connect, want 1,1", a.Degree(), b.Degree())
	}
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount = %d, want 1", g.EdgeCount())
	}
	if g.Generation() != gen {
		t.Error("idempotent Connect changed the generation")
	}
	assertSymmetric(t, g)
}

func TestConnectErrors(t *testing.T) {
	g := New[Empty]()
	a := g.Add(geom.Vec3{}, Empty{})
	other := New[Empty]()
	foreign := other.Add(geom.Vec3{}, Empty{})

	tests := []struct {
		name string
		a, b *Node[Empty]
		want error
	}{
		{"foreign second", a, foreign, ErrForeignNode},
		{"foreign first", foreign, a, ErrForeignNode},
		{"self loop", a, a, ErrSelfLoop},
		{"nil", a, nil, ErrNilNode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.Connect(tt.a, tt.b)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Connect error = %v, want %v", err, tt.want)
			}
			if !errs.Is(err, errs.ErrCodeInvalidArgument) {
				t.Errorf("code = %v, want %v", errs.GetCode(err), errs.ErrCodeInvalidArgument)
			}
		})
	}
	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount = %d after failed connects, want 0", g.EdgeCount())
	}
}

func TestDisconnect(t *testing.T) {
	g, n := line(t, 3)

	if err := g.Disconnect(n[1], n[0]); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	if n[0].ConnectedTo(n[1]) || n[1].ConnectedTo(n[0]) {
		t.Error("edge still present after Disconnect")
	}

	// Missing edge is a no-op.
	gen := g.Generation()
	if err := g.Disconnect(n[0], n[2]); err != nil {
		t.Errorf("Disconnect of missing edge = %v, want nil", err)
	}
	if g.Generation() != gen {
		t.Error("no-op Disconnect changed the generation")
	}

	other := New[Empty]()
	if err := g.Disconnect(n[0], other.Add(geom.Vec3{}, Empty{})); !errors.Is(err, ErrForeignNode) {
		t.Errorf("Disconnect foreign = %v, want ErrForeignNode", err)
	}
	assertSymmetric(t, g)
}

func TestIsolate(t *testing.T) {
	g := New[Empty]()
	hub := g.Add(geom.Vec3{}, Empty{})
	var spokes []*Node[Empty]
	for range 4 {
		s := g.Add(geom.Vec3{}, Empty{})
		spokes = append(spokes, s)
		if err := g.Connect(hub, s); err != nil {
			t.Fatal(err)
		}
	}

	if err := g.Isolate(hub); err != nil {
		t.Fatalf("Isolate: %v", err)
	}
	if hub.Degree() != 0 {
		t.Errorf("hub degree = %d, want 0", hub.Degree())
	}
	for _, s := range spokes {
		if s.Degree() != 0 {
			t.Errorf("spoke %d degree = %d, want 0", s.ID(), s.Degree())
		}
	}
	if !g.Contains(hub) {
		t.Error("Isolate removed the node")
	}
	assertSymmetric(t, g)
}

func TestRemoveKeepsIDs(t *testing.T) {
	g, n := line(t, 5)

	if err := g.Remove(n[2]); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	if n[2].Live() {
		t.Error("removed node still live")
	}
	if g.Exists(2) {
		t.Error("Exists(2) = true after Remove")
	}
	if g.Contains(n[2]) {
		t.Error("Contains(removed) = true")
	}

	var ids []ID
	for _, m := range g.Nodes() {
		ids = append(ids, m.ID())
	}
	if want := []ID{0, 1, 3, 4}; !slices.Equal(ids, want) {
		t.Errorf("ids after Remove = %v, want %v", ids, want)
	}

	if n[1].ConnectedTo(n[3]) {
		t.Error("Remove created an edge")
	}
	if n[1].Degree() != 1 || n[3].Degree() != 1 {
		t.Errorf("neighbor degrees = %d,%d, want 1,1", n[1].Degree(), n[3].Degree())
	}

	// Dead handles are rejected, not dereferenced.
	if err := g.Connect(n[2], n[3]); !errors.Is(err, ErrForeignNode) {
		t.Errorf("Connect(removed) = %v, want ErrForeignNode", err)
	}
	if err := g.Remove(n[2]); !errors.Is(err, ErrForeignNode) {
		t.Errorf("double Remove = %v, want ErrForeignNode", err)
	}
	if got := n[2].Neighbors(); got != nil {
		t.Errorf("Neighbors of removed node = %v, want nil", got)
	}

	// New nodes never reuse the removed ID.
	if m := g.Add(geom.Vec3{}, Empty{}); m.ID() != 5 {
		t.Errorf("ID after Remove = %d, want 5", m.ID())
	}
	assertSymmetric(t, g)
}

func TestGet(t *testing.T) {
	g, n := line(t, 3)

	got, err := g.Get(1)
	if err != nil {
		t.Fatalf("Get(1): %v", err)
	}
	if got != n[1] {
		t.Error("Get(1) returned a different handle")
	}

	if _, err := g.Get(42); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("Get(42) = %v, want ErrNodeNotFound", err)
	} else if !errs.Is(err, errs.ErrCodeNodeNotFound) {
		t.Errorf("code = %v, want %v", errs.GetCode(err), errs.ErrCodeNodeNotFound)
	}

	if !g.Exists(0) || g.Exists(-1) {
		t.Error("Exists reported wrong membership")
	}
}

func TestNeighborOrder(t *testing.T) {
	g := New[Empty]()
	c := g.Add(geom.Vec3{}, Empty{})
	var want []ID
	for range 4 {
		want = append(want, g.Add(geom.Vec3{}, Empty{}).ID())
	}
	// Connect in reverse to show order follows connection, not ID.
	slices.Reverse(want)
	for _, id := range want {
		m, _ := g.Get(id)
		if err := g.Connect(c, m); err != nil {
			t.Fatal(err)
		}
	}

	if got := c.NeighborIDs(); !slices.Equal(got, want) {
		t.Errorf("NeighborIDs = %v, want %v", got, want)
	}
	var seen []ID
	for m := range c.Adjacent() {
		seen = append(seen, m.ID())
	}
	if !slices.Equal(seen, want) {
		t.Errorf("Adjacent order = %v, want %v", seen, want)
	}
}

func TestEdges(t *testing.T) {
	g, n := line(t, 4)
	if err := g.Connect(n[3], n[0]); err != nil {
		t.Fatal(err)
	}

	want := []Edge{{0, 1}, {0, 3}, {1, 2}, {2, 3}}
	if got := g.Edges(); !slices.Equal(got, want) {
		t.Errorf("Edges = %v, want %v", got, want)
	}
}

func TestSymmetryUnderMutation(t *testing.T) {
	g := New[Empty]()
	var n []*Node[Empty]
	for range 8 {
		n = append(n, g.Add(geom.Vec3{}, Empty{}))
	}
	ops := []func() error{
		func() error { return g.Connect(n[0], n[1]) },
		func() error { return g.Connect(n[1], n[2]) },
		func() error { return g.Connect(n[2], n[0]) },
		func() error { return g.Connect(n[3], n[0]) },
		func() error { return g.Disconnect(n[1], n[0]) },
		func() error { return g.Connect(n[4], n[5]) },
		func() error { return g.Remove(n[2]) },
		func() error { return g.Connect(n[6], n[7]) },
		func() error { return g.Isolate(n[0]) },
		func() error { return g.Connect(n[7], n[5]) },
		func() error { return g.Remove(n[5]) },
	}
	for i, op := range ops {
		if err := op(); err != nil {
			t.Fatalf("op %d: %v", i, err)
		}
		assertSymmetric(t, g)
	}
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount = %d, want 1", g.EdgeCount())
	}
}

func TestGenerationTracksTopology(t *testing.T) {
	g := New[Empty]()
	a := g.Add(geom.Vec3{}, Empty{})
	b := g.Add(geom.Vec3{}, Empty{})
	start := g.Generation()

	g.Add(geom.Vec3{}, Empty{})
	if g.Generation() != start {
		t.Error("Add changed the generation")
	}

	steps := []func() error{
		func() error { return g.Connect(a, b) },
		func() error { return g.Disconnect(a, b) },
		func() error { return g.Remove(b) },
	}
	prev := g.Generation()
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatal(err)
		}
		if g.Generation() == prev {
			t.Errorf("step %d did not change the generation", i)
		}
		prev = g.Generation()
	}
}

func TestCopy(t *testing.T) {
	g := New[label]()
	var n []*Node[label]
	for i, name := range []string{"a", "b", "c", "d"} {
		n = append(n, g.Add(geom.V(float64(i), 1, 2), newLabel(name)))
	}
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(g.Connect(n[0], n[1]))
	must(g.Connect(n[0], n[2]))
	must(g.Connect(n[2], n[3]))
	must(g.Connect(n[3], n[1]))
	must(g.Remove(n[1]))

	c := g.Copy()

	if c.Len() != g.Len() {
		t.Fatalf("copy Len = %d, want %d", c.Len(), g.Len())
	}
	if c.EdgeCount() != g.EdgeCount() {
		t.Errorf("copy EdgeCount = %d, want %d", c.EdgeCount(), g.EdgeCount())
	}
	if !slices.Equal(c.Edges(), g.Edges()) {
		t.Errorf("copy Edges = %v, want %v", c.Edges(), g.Edges())
	}

	for i, orig := range g.Nodes() {
		cp := c.Nodes()[i]
		if cp == orig {
			t.Fatalf("node %d shared between graphs", orig.ID())
		}
		if cp.ID() != orig.ID() || cp.Position != orig.Position {
			t.Errorf("node %d copied as id=%d pos=%v", orig.ID(), cp.ID(), cp.Position)
		}
		if cp.Degree() != orig.Degree() {
			t.Errorf("node %d degree = %d, want %d", orig.ID(), cp.Degree(), orig.Degree())
		}
		if cp.Data.name == orig.Data.name {
			t.Errorf("node %d payload not cloned", orig.ID())
		}
		if *cp.Data.name != *orig.Data.name {
			t.Errorf("node %d payload = %q, want %q", orig.ID(), *cp.Data.name, *orig.Data.name)
		}
		if g.Contains(cp) || !c.Contains(cp) {
			t.Errorf("node %d owned by the wrong graph", orig.ID())
		}
	}
	assertSymmetric(t, c)

	// Mutating the copy leaves the original intact.
	c0, _ := c.Get(0)
	must(c.Isolate(c0))
	if n[0].Degree() != 1 {
		t.Errorf("original degree changed to %d", n[0].Degree())
	}

	// Both graphs continue numbering from the same point.
	if a, b := g.Add(geom.Vec3{}, label{}), c.Add(geom.Vec3{}, label{}); a.ID() != b.ID() {
		t.Errorf("next IDs differ: %d vs %d", a.ID(), b.ID())
	}
}

func TestValidateDetectsCorruption(t *testing.T) {
	g, n := line(t, 3)
	n[0].adj = append(n[0].adj, n[2].id) // one-sided edge

	err := g.Validate()
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("Validate = %v, want ErrCorrupt", err)
	}
	if !errs.Is(err, errs.ErrCodeInternal) {
		t.Errorf("code = %v, want %v", errs.GetCode(err), errs.ErrCodeInternal)
	}
}
