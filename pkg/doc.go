// Package pkg provides the libraries behind gridpath, a stepwise grid path
// planner.
//
// # Overview
//
// Gridpath builds a grid of positioned nodes, scatters noise obstacles over a
// copy of it, finds a shortest path with a breadth-first search that can be
// advanced one frontier at a time, and fits a Bézier curve through the result.
// The pkg directory is organized into three areas:
//
//  1. Core - [graph], [search] and [curve]
//  2. Domain - [grid], [spatial], [planner] and [export]
//  3. Support - [config], [cache], [errors], [observability] and [buildinfo]
//
// # Architecture
//
// The typical data flow through gridpath:
//
//	grid.Build (canonical grid)
//	         ↓
//	Graph.Copy + grid.NoiseObstacles (one obstacle layout per attempt)
//	         ↓
//	search.PathFinder (Step until Found or Exhausted)
//	         ↓
//	curve.FromPath (Bézier through the node positions)
//	         ↓
//	DOT/SVG/PNG/PDF, JSON or GeoJSON output
//
// # Quick Start
//
// Search a grid and sample the trajectory:
//
//	import (
//	    "github.com/matzehuels/gridpath/pkg/curve"
//	    "github.com/matzehuels/gridpath/pkg/grid"
//	    "github.com/matzehuels/gridpath/pkg/search"
//	)
//
//	g, l, _ := grid.Build(10, 10, 1)
//	start, _ := g.Get(l.IDOf(0, 0))
//	goal, _ := g.Get(l.IDOf(9, 9))
//
//	pf, _ := search.New(g, start, goal)
//	path, _ := pf.FindShortestPath()
//
//	b, _ := curve.FromPath(path)
//	points := b.Samples(5)
//
// # Main Packages
//
// ## Core
//
// [graph] - Undirected graph of positioned nodes. Nodes are owned by their
// graph, carry stable IDs and report whether they are still live. Every
// topology change bumps a generation counter.
//
// [search] - Breadth-first PathFinder. [search.PathFinder.Step] expands one
// frontier; the open set, depth and visited count can be inspected between
// steps. A search notices when its graph changed underneath it.
//
// [curve] - De Casteljau evaluation of Bézier curves built from a path
// snapshot.
//
// ## Domain
//
// [grid] - Rectangular grids with 4-neighbor adjacency and OpenSimplex noise
// obstacles.
//
// [spatial] - R-tree index over node positions for nearest-node and box
// queries.
//
// [planner] - Runs obstacle layouts concurrently and keeps the lowest seed
// that reaches the goal.
//
// [export] - Graphviz DOT and SVG rendering, PDF/PNG conversion, trajectory
// JSON and GeoJSON.
//
// ## Support
//
// [config] - TOML configuration with defaults and validation.
//
// [cache] - File cache for rendered artifacts.
//
// [errors] - Coded errors shared by all packages.
//
// [observability] - Hooks for search and planner events.
//
// # Testing
//
// Run tests:
//
//	go test ./...                 # All tests
//	go test ./pkg/search/...      # Specific package
//	go test -run Example ./pkg/...
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/gridpath/pkg/graph
// [search]: https://pkg.go.dev/github.com/matzehuels/gridpath/pkg/search
// [curve]: https://pkg.go.dev/github.com/matzehuels/gridpath/pkg/curve
// [grid]: https://pkg.go.dev/github.com/matzehuels/gridpath/pkg/grid
// [spatial]: https://pkg.go.dev/github.com/matzehuels/gridpath/pkg/spatial
// [planner]: https://pkg.go.dev/github.com/matzehuels/gridpath/pkg/planner
// [export]: https://pkg.go.dev/github.com/matzehuels/gridpath/pkg/export
// [config]: https://pkg.go.dev/github.com/matzehuels/gridpath/pkg/config
// [cache]: https://pkg.go.dev/github.com/matzehuels/gridpath/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/gridpath/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/gridpath/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/gridpath/pkg/buildinfo
// [search.PathFinder.Step]: https://pkg.go.dev/github.com/matzehuels/gridpath/pkg/search#PathFinder.Step
package pkg
