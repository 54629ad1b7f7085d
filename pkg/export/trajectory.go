package export

import (
	"bytes"
	"context"

	"github.com/matzehuels/gridpath/pkg/config"
	"github.com/matzehuels/gridpath/pkg/curve"
	errs "github.com/matzehuels/gridpath/pkg/errors"
	"github.com/matzehuels/gridpath/pkg/geom"
	"github.com/matzehuels/gridpath/pkg/graph"
	"github.com/matzehuels/gridpath/pkg/grid"
	"github.com/matzehuels/gridpath/pkg/planner"
)

// MaxSampleWork bounds the De Casteljau interpolations spent sampling one
// trajectory, roughly a second of CPU time.
const MaxSampleWork = 1 << 28

// EncodeTrajectory samples the curve of a planning result at
// t.Resolution and encodes it in t.Format. Sampling stops with ctx's error
// once ctx is done.
//
// The json format is a [Trajectory]. The geojson format is a
// FeatureCollection holding the trajectory line, the path nodes and the
// obstacle cells; obstacle positions come from l because carved obstacles
// are no longer in the result's graph.
//
// A curve whose sampling would exceed [MaxSampleWork] is rejected with
// INVALID_CONFIG naming the highest resolution that fits.
func EncodeTrajectory(ctx context.Context, res *planner.Result, l grid.Layout, t config.Trajectory) ([]byte, error) {
	if err := errs.ValidateFormat(t.Format, config.TrajectoryFormats...); err != nil {
		return nil, err
	}
	segments, err := sampleSegments(res.Curve, t.Resolution)
	if err != nil {
		return nil, err
	}
	points, err := res.Curve.SampleContext(ctx, segments)
	if err != nil {
		return nil, err
	}

	switch t.Format {
	case config.FormatJSON:
		var buf bytes.Buffer
		err := WriteTrajectoryJSON(&buf, Trajectory{
			RunID:  res.RunID,
			Seed:   res.Seed,
			Degree: res.Curve.Degree(),
			Length: curve.PolylineLength(points),
			Path:   PathIDs(res.Path),
			Points: points,
		})
		return buf.Bytes(), err

	case config.FormatGeoJSON:
		line := TrajectoryGeoJSON(points, t.Tolerance)
		line.Properties["run_id"] = res.RunID
		line.Properties["seed"] = res.Seed
		fc := Collection(
			line,
			PointsGeoJSON("path", nodePositions(res.Path)),
			PointsGeoJSON("obstacles", cellPositions(l, res.Blocked)),
		)
		data, err := fc.MarshalJSON()
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInternal, err, "encode geojson")
		}
		return append(data, '\n'), nil
	}
	return nil, errs.New(errs.ErrCodeInvalidFormat, "unsupported trajectory format %q", t.Format)
}

// PathIDs returns the IDs of the nodes on path, in order.
func PathIDs[T graph.Cloner[T]](path []*graph.Node[T]) []graph.ID {
	ids := make([]graph.ID, len(path))
	for i, n := range path {
		ids[i] = n.ID()
	}
	return ids
}

func nodePositions[T graph.Cloner[T]](path []*graph.Node[T]) []geom.Vec3 {
	out := make([]geom.Vec3, len(path))
	for i, n := range path {
		out[i] = n.Position
	}
	return out
}

func cellPositions(l grid.Layout, ids []graph.ID) []geom.Vec3 {
	out := make([]geom.Vec3, len(ids))
	for i, id := range ids {
		c := l.CellOf(id)
		out[i] = l.Position(c.Col, c.Row)
	}
	return out
}

// sampleSegments returns the segment count for resolution, or an error when
// sampling b at that resolution exceeds MaxSampleWork.
func sampleSegments(b *curve.Bezier, resolution int) (int, error) {
	if err := errs.ValidateResolution(resolution); err != nil {
		return 0, err
	}
	if b.Work(1<<resolution) <= MaxSampleWork {
		return 1 << resolution, nil
	}
	fits := -1
	for level := range resolution {
		if b.Work(1<<level) <= MaxSampleWork {
			fits = level
		}
	}
	if fits < 0 {
		return 0, errs.New(errs.ErrCodeInvalidConfig,
			"path of %d nodes is too long to sample as a single curve", b.Degree()+1)
	}
	return 0, errs.New(errs.ErrCodeInvalidConfig,
		"path of %d nodes is too long to sample at resolution %d (max %d)", b.Degree()+1, resolution, fits)
}
