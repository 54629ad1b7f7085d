// Package curve turns a discrete path into a smooth parametric trajectory.
//
// A [Bezier] holds the positions of a path's nodes as control points and
// evaluates the Bézier curve they define with De Casteljau's algorithm, so
// curves of any degree are supported: two points give a straight segment,
// three the textbook quadratic, and a path of n+1 nodes a degree-n curve.
// The curve starts at the first control point and ends at the last; it
// generally passes through none of the others.
//
// A Bezier is immutable after construction and safe for concurrent use.
package curve

import (
	"context"
	"math"
	"slices"

	errs "github.com/matzehuels/gridpath/pkg/errors"
	"github.com/matzehuels/gridpath/pkg/geom"
	"github.com/matzehuels/gridpath/pkg/graph"
)

// ErrNoControlPoints is returned when a curve is built from an empty
// sequence. A path always contains at least its start node.
var ErrNoControlPoints = errs.New(errs.ErrCodeInvalidArgument, "curve needs at least one control point")

// Bezier is a Bézier curve of arbitrary degree.
type Bezier struct {
	points []geom.Vec3
}

// NewBezier creates a curve through a private copy of points.
// Returns [ErrNoControlPoints] if points is empty.
func NewBezier(points []geom.Vec3) (*Bezier, error) {
	if len(points) == 0 {
		return nil, ErrNoControlPoints
	}
	return &Bezier{points: slices.Clone(points)}, nil
}

// FromPath creates a curve whose control points are the positions of path's
// nodes, in order. Positions are read once; moving the nodes afterwards
// does not change the curve.
func FromPath[T graph.Cloner[T]](path []*graph.Node[T]) (*Bezier, error) {
	if len(path) == 0 {
		return nil, ErrNoControlPoints
	}
	points := make([]geom.Vec3, len(path))
	for i, n := range path {
		points[i] = n.Position
	}
	return &Bezier{points: points}, nil
}

// Degree returns the polynomial degree, one less than the number of
// control points.
func (b *Bezier) Degree() int { return len(b.points) - 1 }

// ControlPoints returns a copy of the control points.
func (b *Bezier) ControlPoints() []geom.Vec3 { return slices.Clone(b.points) }

// At evaluates the curve at parameter t.
//
// The control polygon is collapsed Degree times, each pass replacing every
// pair of adjacent points with their linear interpolation at t; the single
// remaining point is the result. t outside [0, 1] extrapolates the curve
// and is not an error.
func (b *Bezier) At(t float64) geom.Vec3 {
	return b.eval(make([]geom.Vec3, len(b.points)), t)
}

// eval runs De Casteljau's algorithm in q, which must hold len(b.points)
// elements.
func (b *Bezier) eval(q []geom.Vec3, t float64) geom.Vec3 {
	copy(q, b.points)
	for k := len(q) - 1; k > 0; k-- {
		for i := range k {
			q[i] = q[i].Lerp(q[i+1], t)
		}
	}
	return q[0]
}

// Sample evaluates the curve at segments+1 evenly spaced parameters from 0
// to 1 inclusive. A segments value below 1 is treated as 1.
func (b *Bezier) Sample(segments int) []geom.Vec3 {
	pts, _ := b.SampleContext(context.Background(), segments)
	return pts
}

// cancelCheckInterval is the number of samples evaluated between context
// checks.
const cancelCheckInterval = 64

// SampleContext is like [Bezier.Sample] but stops early with ctx's error
// once ctx is done. Each sample costs O(Degree²), see [Bezier.Work].
func (b *Bezier) SampleContext(ctx context.Context, segments int) ([]geom.Vec3, error) {
	segments = max(segments, 1)
	out := make([]geom.Vec3, segments+1)
	q := make([]geom.Vec3, len(b.points))
	for i := range segments {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		out[i] = b.eval(q, float64(i)/float64(segments))
	}
	// Pin the end exactly; i/segments can round below 1.
	out[segments] = b.eval(q, 1)
	return out, nil
}

// Samples samples the curve at a doubling resolution: level 0 yields the two
// end points, and every further level doubles the number of segments.
// Negative levels are treated as 0.
func (b *Bezier) Samples(level int) []geom.Vec3 {
	level = max(level, 0)
	return b.Sample(1 << level)
}

// Work returns the number of point interpolations Sample(segments)
// performs.
func (b *Bezier) Work(segments int) int {
	d := b.Degree()
	return (max(segments, 1) + 1) * (d * (d + 1) / 2)
}

// Length approximates the arc length by the length of the polyline through
// segments+1 samples.
func (b *Bezier) Length(segments int) float64 {
	return PolylineLength(b.Sample(segments))
}

// PolylineLength returns the total length of the polyline through pts.
func PolylineLength(pts []geom.Vec3) float64 {
	var l float64
	for i := 1; i < len(pts); i++ {
		l += pts[i-1].Dist(pts[i])
	}
	return l
}

// Bounds returns the axis-aligned box enclosing the control points, which
// by the convex hull property also encloses the curve on [0, 1].
func (b *Bezier) Bounds() (lo, hi geom.Vec3) {
	lo = geom.V(math.Inf(1), math.Inf(1), math.Inf(1))
	hi = geom.V(math.Inf(-1), math.Inf(-1), math.Inf(-1))
	for _, p := range b.points {
		lo = geom.V(min(lo.X, p.X), min(lo.Y, p.Y), min(lo.Z, p.Z))
		hi = geom.V(max(hi.X, p.X), max(hi.Y, p.Y), max(hi.Z, p.Z))
	}
	return lo, hi
}
