package search

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	errs "github.com/matzehuels/gridpath/pkg/errors"
	"github.com/matzehuels/gridpath/pkg/geom"
	"github.com/matzehuels/gridpath/pkg/graph"
	"github.com/matzehuels/gridpath/pkg/observability"
)

// grid builds a size×size 4-connected grid with node id col*size+row.
func grid(t *testing.T, size int) *graph.Graph[graph.Empty] {
	t.Helper()
	g := graph.New[graph.Empty]()
	for col := range size {
		for row := range size {
			g.Add(geom.V(float64(col), float64(row), 0), graph.Empty{})
		}
	}
	at := func(col, row int) *graph.Node[graph.Empty] {
		n, err := g.Get(graph.ID(col*size + row))
		if err != nil {
			t.Fatal(err)
		}
		return n
	}
	for col := range size {
		for row := range size {
			if col+1 < size {
				if err := g.Connect(at(col, row), at(col+1, row)); err != nil {
					t.Fatal(err)
				}
			}
			if row+1 < size {
				if err := g.Connect(at(col, row), at(col, row+1)); err != nil {
					t.Fatal(err)
				}
			}
		}
	}
	return g
}

func node[T graph.Cloner[T]](t *testing.T, g *graph.Graph[T], id graph.ID) *graph.Node[T] {
	t.Helper()
	n, err := g.Get(id)
	if err != nil {
		t.Fatalf("Get(%d): %v", id, err)
	}
	return n
}

func finder[T graph.Cloner[T]](t *testing.T, g *graph.Graph[T], start, goal graph.ID) *PathFinder[T] {
	t.Helper()
	p, err := New(g, node(t, g, start), node(t, g, goal))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func openIDs[T graph.Cloner[T]](p *PathFinder[T]) []graph.ID {
	var ids []graph.ID
	for n := range p.OpenNodes() {
		ids = append(ids, n.ID())
	}
	slices.Sort(ids)
	return ids
}

// distance is an independent breadth-first distance used as a reference.
func distance[T graph.Cloner[T]](g *graph.Graph[T], from, to graph.ID) int {
	dist := map[graph.ID]int{from: 0}
	queue := []graph.ID{from}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if id == to {
			return dist[id]
		}
		n, _ := g.Get(id)
		for _, m := range n.NeighborIDs() {
			if _, ok := dist[m]; !ok {
				dist[m] = dist[id] + 1
				queue = append(queue, m)
			}
		}
	}
	return -1
}

func assertValidPath[T graph.Cloner[T]](t *testing.T, path []*graph.Node[T], start, goal graph.ID) {
	t.Helper()
	if len(path) == 0 {
		t.Fatal("empty path")
	}
	if path[0].ID() != start || path[len(path)-1].ID() != goal {
		t.Fatalf("path runs %d -> %d, want %d -> %d", path[0].ID(), path[len(path)-1].ID(), start, goal)
	}
	for i := 1; i < len(path); i++ {
		if !path[i-1].ConnectedTo(path[i]) {
			t.Fatalf("path step %d -> %d is not an edge", path[i-1].ID(), path[i].ID())
		}
	}
}

func TestInitialState(t *testing.T) {
	g := grid(t, 5)
	p := finder(t, g, 2, 22)

	if p.Status() != Searching {
		t.Errorf("Status = %v, want searching", p.Status())
	}
	if got := openIDs(p); !slices.Equal(got, []graph.ID{2}) {
		t.Errorf("OpenNodes = %v, want [2]", got)
	}
	if p.VisitedCount() != 1 || !p.Visited(p.Start()) {
		t.Errorf("VisitedCount = %d, want only start", p.VisitedCount())
	}
	if p.Depth() != 0 {
		t.Errorf("Depth = %d, want 0", p.Depth())
	}
}

func TestFrontierDeterminism(t *testing.T) {
	g := grid(t, 5)
	p := finder(t, g, 2, 22)

	want := []bool{false, false, false, true}
	for i, w := range want {
		got, err := p.Step()
		if err != nil {
			t.Fatalf("Step %d: %v", i+1, err)
		}
		if got != w {
			t.Errorf("Step %d = %v, want %v", i+1, got, w)
		}
		if i == 0 {
			if ids := openIDs(p); !slices.Equal(ids, []graph.ID{1, 3, 7}) {
				t.Errorf("OpenNodes after one step = %v, want [1 3 7]", ids)
			}
			if p.OpenCount() != 3 {
				t.Errorf("OpenCount = %d, want 3", p.OpenCount())
			}
		}
	}
	if p.Status() != Found {
		t.Errorf("Status = %v, want found", p.Status())
	}
	if p.Depth() != 4 {
		t.Errorf("Depth = %d, want 4", p.Depth())
	}
}

func TestFindShortestPath(t *testing.T) {
	g := grid(t, 5)
	p := finder(t, g, 2, 22)

	path, err := p.FindShortestPath()
	if err != nil {
		t.Fatalf("FindShortestPath: %v", err)
	}
	if len(path) != 5 {
		t.Errorf("len(path) = %d, want 5", len(path))
	}
	assertValidPath(t, path, 2, 22)

	again, err := p.FindShortestPath()
	if err != nil || !slices.Equal(again, path) {
		t.Errorf("second FindShortestPath = %v, %v; want same path", again, err)
	}
}

func TestObstacleReroute(t *testing.T) {
	g := grid(t, 5)
	for id := graph.ID(10); id <= 13; id++ {
		if err := g.Isolate(node(t, g, id)); err != nil {
			t.Fatal(err)
		}
	}

	path, err := finder(t, g, 2, 22).FindShortestPath()
	if err != nil {
		t.Fatalf("FindShortestPath: %v", err)
	}
	if len(path) != 9 {
		t.Errorf("len(path) = %d, want 9", len(path))
	}
	assertValidPath(t, path, 2, 22)
	for _, n := range path {
		if n.ID() >= 10 && n.ID() <= 13 {
			t.Errorf("path crosses obstacle %d", n.ID())
		}
	}
}

func TestRemovedNodesAreRoutedAround(t *testing.T) {
	g := grid(t, 5)
	for _, id := range []graph.ID{7, 12, 17} {
		if err := g.Remove(node(t, g, id)); err != nil {
			t.Fatal(err)
		}
	}

	path, err := finder(t, g, 2, 22).FindShortestPath()
	if err != nil {
		t.Fatalf("FindShortestPath: %v", err)
	}
	assertValidPath(t, path, 2, 22)
	if want := distance(g, 2, 22) + 1; len(path) != want {
		t.Errorf("len(path) = %d, want %d", len(path), want)
	}
}

func TestNoPath(t *testing.T) {
	g := grid(t, 5)
	if err := g.Isolate(node(t, g, 22)); err != nil {
		t.Fatal(err)
	}

	p := finder(t, g, 2, 22)
	path, err := p.FindShortestPath()
	if !errors.Is(err, ErrNoPath) {
		t.Fatalf("FindShortestPath error = %v, want ErrNoPath", err)
	}
	if !errs.Is(err, errs.ErrCodeNoPath) {
		t.Errorf("code = %v, want %v", errs.GetCode(err), errs.ErrCodeNoPath)
	}
	if path != nil {
		t.Errorf("path = %v, want nil", path)
	}
	if p.Status() != Exhausted {
		t.Errorf("Status = %v, want exhausted", p.Status())
	}
	if p.VisitedCount() != 24 {
		t.Errorf("VisitedCount = %d, want 24", p.VisitedCount())
	}

	// Stepping a terminal search is not an error.
	for range 2 {
		found, err := p.Step()
		if found || err != nil {
			t.Errorf("Step after exhaustion = %v, %v; want false, nil", found, err)
		}
	}
	if ids := openIDs(p); len(ids) != 0 {
		t.Errorf("OpenNodes after exhaustion = %v, want empty", ids)
	}
}

func TestStartIsGoal(t *testing.T) {
	g := grid(t, 3)
	p := finder(t, g, 4, 4)

	if p.Status() != Found {
		t.Fatalf("Status = %v, want found", p.Status())
	}
	if ids := openIDs(p); len(ids) != 0 {
		t.Errorf("OpenNodes = %v, want empty", ids)
	}
	found, err := p.Step()
	if !found || err != nil {
		t.Errorf("Step = %v, %v; want true, nil", found, err)
	}
	path, err := p.FindShortestPath()
	if err != nil {
		t.Fatal(err)
	}
	if len(path) != 1 || path[0].ID() != 4 {
		t.Errorf("path = %v, want [4]", path)
	}
	if p.Depth() != 0 {
		t.Errorf("Depth = %d, want 0", p.Depth())
	}
}

func TestStepIdempotentAfterFound(t *testing.T) {
	g := grid(t, 5)
	p := finder(t, g, 0, 1)

	for i := range 3 {
		found, err := p.Step()
		if !found || err != nil {
			t.Errorf("Step %d = %v, %v; want true, nil", i, found, err)
		}
	}
	if p.Depth() != 1 {
		t.Errorf("Depth = %d, want 1", p.Depth())
	}
}

func TestLevelCompletesAfterGoal(t *testing.T) {
	g := grid(t, 5)
	p := finder(t, g, 12, 7)

	found, err := p.Step()
	if !found || err != nil {
		t.Fatalf("Step = %v, %v", found, err)
	}
	// All four neighbors of the center are recorded, not only the goal.
	if p.VisitedCount() != 5 {
		t.Errorf("VisitedCount = %d, want 5", p.VisitedCount())
	}
	for _, id := range []graph.ID{7, 11, 13, 17} {
		if !p.Visited(node(t, g, id)) {
			t.Errorf("node %d not visited", id)
		}
	}
}

func TestTieBreakFollowsDiscoveryOrder(t *testing.T) {
	g := graph.New[graph.Empty]()
	s := g.Add(geom.Vec3{}, graph.Empty{})
	a := g.Add(geom.Vec3{}, graph.Empty{})
	b := g.Add(geom.Vec3{}, graph.Empty{})
	goal := g.Add(geom.Vec3{}, graph.Empty{})
	for _, e := range [][2]*graph.Node[graph.Empty]{{s, b}, {s, a}, {a, goal}, {b, goal}} {
		if err := g.Connect(e[0], e[1]); err != nil {
			t.Fatal(err)
		}
	}

	p, err := New(g, s, goal)
	if err != nil {
		t.Fatal(err)
	}
	path, err := p.FindShortestPath()
	if err != nil {
		t.Fatal(err)
	}
	// b is connected to s first, so it is expanded first and claims goal.
	if path[1] != b {
		t.Errorf("path goes through %d, want %d", path[1].ID(), b.ID())
	}
}

func TestShortestPathIsOptimal(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	for trial := range 20 {
		g := graph.New[graph.Empty]()
		var nodes []*graph.Node[graph.Empty]
		for range 30 {
			nodes = append(nodes, g.Add(geom.Vec3{}, graph.Empty{}))
		}
		for range 45 {
			a, b := nodes[rng.IntN(len(nodes))], nodes[rng.IntN(len(nodes))]
			if a != b {
				if err := g.Connect(a, b); err != nil {
					t.Fatal(err)
				}
			}
		}

		from, to := nodes[0].ID(), nodes[len(nodes)-1].ID()
		want := distance(g, from, to)
		path, err := finder(t, g, from, to).FindShortestPath()

		if want < 0 {
			if !errors.Is(err, ErrNoPath) {
				t.Errorf("trial %d: error = %v, want ErrNoPath", trial, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("trial %d: %v", trial, err)
		}
		if len(path)-1 != want {
			t.Errorf("trial %d: path has %d edges, want %d", trial, len(path)-1, want)
		}
		assertValidPath(t, path, from, to)
	}
}

func TestMutationBeforeFirstStep(t *testing.T) {
	g := grid(t, 5)
	p := finder(t, g, 2, 22)

	// Obstacles placed after construction but before stepping are honored.
	for id := graph.ID(10); id <= 13; id++ {
		if err := g.Isolate(node(t, g, id)); err != nil {
			t.Fatal(err)
		}
	}
	path, err := p.FindShortestPath()
	if err != nil {
		t.Fatal(err)
	}
	if len(path) != 9 {
		t.Errorf("len(path) = %d, want 9", len(path))
	}
}

func TestStaleSearch(t *testing.T) {
	g := grid(t, 5)
	p := finder(t, g, 2, 22)

	if _, err := p.Step(); err != nil {
		t.Fatal(err)
	}
	if err := g.Disconnect(node(t, g, 7), node(t, g, 12)); err != nil {
		t.Fatal(err)
	}

	_, err := p.Step()
	if !errors.Is(err, ErrStaleSearch) {
		t.Fatalf("Step after mutation = %v, want ErrStaleSearch", err)
	}
	if !errs.Is(err, errs.ErrCodeInvalidArgument) {
		t.Errorf("code = %v, want %v", errs.GetCode(err), errs.ErrCodeInvalidArgument)
	}
	if _, err := p.FindShortestPath(); !errors.Is(err, ErrStaleSearch) {
		t.Errorf("FindShortestPath after mutation = %v, want ErrStaleSearch", err)
	}
	if p.Status() != Searching {
		t.Errorf("Status = %v, want searching", p.Status())
	}
}

func TestEndpointErrors(t *testing.T) {
	g := grid(t, 3)
	other := grid(t, 3)

	if _, err := New(g, node(t, g, 0), node(t, other, 8)); !errors.Is(err, ErrEndpoint) {
		t.Errorf("New with foreign goal = %v, want ErrEndpoint", err)
	}
	if _, err := New(g, nil, node(t, g, 8)); !errors.Is(err, ErrEndpoint) {
		t.Errorf("New with nil start = %v, want ErrEndpoint", err)
	}

	p := finder(t, g, 0, 8)
	if err := g.Remove(node(t, g, 8)); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Step(); !errors.Is(err, ErrEndpoint) {
		t.Errorf("Step after removing goal = %v, want ErrEndpoint", err)
	}
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		s    Status
		want string
	}{
		{Searching, "searching"},
		{Found, "found"},
		{Exhausted, "exhausted"},
		{Status(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}

type recordingHooks struct {
	observability.NoopSearchHooks
	starts    int
	steps     []int
	completed []string
}

func (r *recordingHooks) OnSearchStart(int, int) { r.starts++ }
func (r *recordingHooks) OnStep(depth, _, _ int, _ string) {
	r.steps = append(r.steps, depth)
}
func (r *recordingHooks) OnSearchComplete(status string, _, _ int) {
	r.completed = append(r.completed, status)
}

func TestSearchHooks(t *testing.T) {
	rec := &recordingHooks{}
	observability.SetSearchHooks(rec)
	t.Cleanup(observability.Reset)

	g := grid(t, 5)
	p := finder(t, g, 2, 22)
	if _, err := p.FindShortestPath(); err != nil {
		t.Fatal(err)
	}
	_, _ = p.Step()

	if rec.starts != 1 {
		t.Errorf("starts = %d, want 1", rec.starts)
	}
	if want := []int{1, 2, 3, 4}; !slices.Equal(rec.steps, want) {
		t.Errorf("steps = %v, want %v", rec.steps, want)
	}
	if want := []string{"found"}; !slices.Equal(rec.completed, want) {
		t.Errorf("completed = %v, want %v", rec.completed, want)
	}
}
