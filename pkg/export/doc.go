// Package export writes graphs, search state and trajectories to files.
//
// # Graphviz
//
// [ToDOT] renders any graph as an undirected Graphviz DOT document with
// every node pinned to its world position, so the neato engine reproduces
// the grid's geometry instead of computing its own layout. A [Highlight]
// marks the nodes of a path, of a search frontier, of the visited set and
// of obstacles:
//
//	dot := export.ToDOT(g, export.Highlight{Path: ids, Blocked: res.Blocked})
//	svg, err := export.RenderSVG(ctx, dot)
//
// [RenderSVG] uses the embedded Graphviz build from go-graphviz and needs no
// system install. [ToPDF] and [ToPNG] convert the SVG with rsvg-convert.
//
// # Trajectories
//
// [TrajectoryGeoJSON] turns sampled curve points into a GeoJSON LineString
// feature on the X/Y plane, optionally simplified with Douglas-Peucker.
// Heights are kept in the feature's "z" property. [WriteTrajectoryJSON]
// writes the points with their run metadata as plain JSON, and
// [WriteGraphJSON] dumps a graph's nodes and edges.
package export
