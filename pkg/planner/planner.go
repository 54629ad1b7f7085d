// Package planner finds paths across grids with generated obstacles.
//
// A planning run takes a canonical, obstacle-free grid and never mutates
// it. Each attempt works on its own [graph.Graph.Copy], places OpenSimplex
// noise obstacles on the copy and searches it; an attempt whose obstacles
// wall off the goal fails with [search.ErrNoPath] and the next seed is
// tried.
//
// # Usage
//
//	base, layout, _ := grid.Build(20, 20, 1)
//	p := planner.New(logger)
//	res, err := p.Plan(ctx, planner.Request{
//	    Base:   base,
//	    Layout: layout,
//	    Start:  layout.IDOf(0, 0),
//	    Goal:   layout.IDOf(19, 19),
//	})
//	if err != nil {
//	    return err
//	}
//	for _, p := range res.Curve.Samples(4) {
//	    fmt.Println(p)
//	}
//
// # Determinism
//
// Attempts run concurrently, but the attempt with seed Seed+i is always
// preferred over Seed+j for i < j, so a request always yields the same
// result no matter how the attempts are scheduled.
package planner

import (
	"context"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/gridpath/pkg/curve"
	errs "github.com/matzehuels/gridpath/pkg/errors"
	"github.com/matzehuels/gridpath/pkg/graph"
	"github.com/matzehuels/gridpath/pkg/grid"
	"github.com/matzehuels/gridpath/pkg/observability"
	"github.com/matzehuels/gridpath/pkg/search"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultAttempts is the number of obstacle layouts tried before giving up.
	DefaultAttempts = 8

	// DefaultSeed is the noise seed of the first attempt.
	DefaultSeed = int64(42)

	// DefaultThreshold is the noise level above which a cell is blocked.
	DefaultThreshold = 0.35
)

// =============================================================================
// Request and Result
// =============================================================================

// Request describes one planning run.
type Request struct {
	// Base is the canonical grid. It is copied, never modified.
	Base *graph.Graph[grid.Cell]

	// Layout describes Base's dimensions.
	Layout grid.Layout

	// Start and Goal are node IDs in Base. They are never blocked.
	Start graph.ID
	Goal  graph.ID

	// Keep lists further node IDs in Base that are never blocked.
	Keep []graph.ID

	// Seed is the noise seed of the first attempt; attempt i uses Seed+i.
	Seed int64

	// Threshold is the noise level above which a cell is blocked, in [-1, 1].
	Threshold float64

	// Attempts is the maximum number of obstacle layouts to try.
	Attempts int

	// Parallelism caps the number of concurrent attempts.
	// Zero means GOMAXPROCS.
	Parallelism int

	// Carve removes obstacle nodes instead of isolating them.
	Carve bool

	// NoObstacles searches Base's copy without placing any obstacles.
	NoObstacles bool
}

// Result is the outcome of a successful planning run.
type Result struct {
	// RunID identifies the run in logs and exported files.
	RunID string

	// Graph is the attempt's copy of Base with its obstacles in place.
	Graph *graph.Graph[grid.Cell]

	// Path is the shortest path from start to goal in Graph.
	Path []*graph.Node[grid.Cell]

	// Blocked lists the obstacle node IDs in ascending order.
	Blocked []graph.ID

	// Seed is the noise seed of the successful attempt.
	Seed int64

	// Attempt is the 1-based index of the successful attempt.
	Attempt int

	// Curve is the Bézier trajectory through Path.
	Curve *curve.Bezier

	// Stats contains search and timing information.
	Stats Stats
}

// Stats contains planning statistics.
type Stats struct {
	Depth    int
	Visited  int
	Duration time.Duration
}

// SetDefaults fills zero-valued fields with their defaults.
func (r *Request) SetDefaults() {
	if r.Attempts == 0 {
		r.Attempts = DefaultAttempts
	}
	if r.Parallelism <= 0 {
		r.Parallelism = runtime.GOMAXPROCS(0)
	}
}

// Validate checks the request against its base grid.
func (r *Request) Validate() error {
	if r.Base == nil {
		return errs.New(errs.ErrCodeInvalidArgument, "request has no base graph")
	}
	if r.Attempts < 1 || r.Attempts > errs.MaxAttempts {
		return errs.New(errs.ErrCodeInvalidArgument, "attempts must be within [1, %d], got %d", errs.MaxAttempts, r.Attempts)
	}
	if err := errs.ValidateThreshold(r.Threshold); err != nil {
		return err
	}
	for _, id := range []graph.ID{r.Start, r.Goal} {
		if !r.Base.Exists(id) {
			return errs.Wrap("", graph.ErrNodeNotFound, "endpoint %d", id)
		}
	}
	for _, id := range r.Keep {
		if !r.Base.Exists(id) {
			return errs.Wrap("", graph.ErrNodeNotFound, "kept cell %d", id)
		}
	}
	return nil
}

// =============================================================================
// Planner
// =============================================================================

// Planner runs planning requests. It holds no per-run state and may be
// shared between goroutines.
type Planner struct {
	Logger *log.Logger
}

// New creates a planner. If logger is nil, log.Default() is used.
func New(logger *log.Logger) *Planner {
	if logger == nil {
		logger = log.Default()
	}
	return &Planner{Logger: logger}
}

// Prepare returns attempt i's copy of the base grid with its obstacles
// placed, and the obstacle IDs.
func Prepare(req Request, i int) (*graph.Graph[grid.Cell], []graph.ID, error) {
	g := req.Base.Copy()
	if req.NoObstacles {
		return g, nil, nil
	}
	keep := append([]graph.ID{req.Start, req.Goal}, req.Keep...)
	blocked := grid.NoiseObstacles(req.Layout, req.Seed+int64(i), req.Threshold, keep...)
	// Only cells still present in Base become obstacles.
	live := slices.DeleteFunc(blocked, func(id graph.ID) bool { return !g.Exists(id) })
	place := grid.Block[grid.Cell]
	if req.Carve {
		place = grid.Carve[grid.Cell]
	}
	if err := place(g, live...); err != nil {
		return nil, nil, err
	}
	return g, live, nil
}

// Plan tries up to req.Attempts obstacle layouts and returns the result of
// the first one, in seed order, that leaves the goal reachable.
//
// Returns an error wrapping [search.ErrNoPath] if every attempt fails, or
// the context's error if ctx is cancelled.
func (p *Planner) Plan(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	req.SetDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	runID := uuid.New().String()
	logger := p.Logger.With("run", runID[:8])
	logger.Debug("planning",
		"start", req.Start,
		"goal", req.Goal,
		"seed", req.Seed,
		"attempts", req.Attempts)

	var (
		mu      sync.Mutex
		best    = req.Attempts
		results = make([]*Result, req.Attempts)
	)
	// skip reports whether a lower attempt has already succeeded.
	skip := func(i int) bool {
		mu.Lock()
		defer mu.Unlock()
		return i > best
	}

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(req.Parallelism)
	for i := range req.Attempts {
		eg.Go(func() error {
			if skip(i) {
				return nil
			}
			res, err := p.attempt(gctx, req, i)
			switch {
			case err == nil:
				mu.Lock()
				results[i] = res
				best = min(best, i)
				mu.Unlock()
				return nil
			case errs.Is(err, errs.ErrCodeNoPath):
				return nil
			default:
				return err
			}
		})
	}
	err := eg.Wait()

	var res *Result
	if err == nil {
		for _, r := range results {
			if r != nil {
				res = r
				break
			}
		}
		if res == nil {
			err = errs.Wrap("", search.ErrNoPath, "no path after %d attempts", req.Attempts)
		}
	}

	duration := time.Since(start)
	if err != nil {
		observability.Planner().OnPlanComplete(ctx, req.Attempts, 0, duration, err)
		logger.Warn("planning failed", "error", err, "duration", duration)
		return nil, err
	}

	res.RunID = runID
	res.Stats.Duration = duration
	observability.Planner().OnPlanComplete(ctx, res.Attempt, len(res.Path), duration, nil)
	logger.Info("planned path",
		"attempt", res.Attempt,
		"seed", res.Seed,
		"blocked", len(res.Blocked),
		"length", len(res.Path),
		"duration", duration)
	return res, nil
}

// attempt searches one obstacle layout, checking ctx between steps.
func (p *Planner) attempt(ctx context.Context, req Request, i int) (res *Result, err error) {
	seed := req.Seed + int64(i)
	var blocked []graph.ID
	defer func() {
		observability.Planner().OnAttempt(ctx, i+1, seed, len(blocked), err)
		p.Logger.Debug("attempt", "n", i+1, "seed", seed, "blocked", len(blocked), "error", err)
	}()

	g, blocked, err := Prepare(req, i)
	if err != nil {
		return nil, err
	}
	from, err := g.Get(req.Start)
	if err != nil {
		return nil, err
	}
	to, err := g.Get(req.Goal)
	if err != nil {
		return nil, err
	}
	pf, err := search.New(g, from, to)
	if err != nil {
		return nil, err
	}
	for !pf.Status().Terminal() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := pf.Step(); err != nil {
			return nil, err
		}
	}
	path, err := pf.FindShortestPath()
	if err != nil {
		return nil, err
	}
	c, err := curve.FromPath(path)
	if err != nil {
		return nil, err
	}
	return &Result{
		Graph:   g,
		Path:    path,
		Blocked: blocked,
		Seed:    seed,
		Attempt: i + 1,
		Curve:   c,
		Stats:   Stats{Depth: pf.Depth(), Visited: pf.VisitedCount()},
	}, nil
}
