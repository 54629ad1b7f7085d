package export

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/simplify"

	"github.com/matzehuels/gridpath/pkg/geom"
)

// TrajectoryGeoJSON returns the points as a GeoJSON LineString feature on
// the X/Y plane. A positive tolerance simplifies the line with
// Douglas-Peucker; points closer than tolerance to the simplified line are
// dropped. The height of every remaining point is kept, in order, in the
// "z" property.
func TrajectoryGeoJSON(points []geom.Vec3, tolerance float64) *geojson.Feature {
	ls := make(orb.LineString, len(points))
	for i, p := range points {
		ls[i] = orb.Point{p.X, p.Y}
	}
	if tolerance > 0 && len(ls) > 2 {
		ls = simplify.DouglasPeucker(tolerance).LineString(ls.Clone())
	}

	f := geojson.NewFeature(ls)
	f.BBox = geojson.NewBBox(ls.Bound())
	f.Properties["kind"] = "trajectory"
	f.Properties["z"] = heights(points, ls)
	f.Properties["samples"] = len(points)
	return f
}

// heights returns the Z of each point of ls, which is a subsequence of
// points projected onto X/Y.
func heights(points []geom.Vec3, ls orb.LineString) []float64 {
	z := make([]float64, 0, len(ls))
	j := 0
	for _, p := range ls {
		for j < len(points) && (points[j].X != p[0] || points[j].Y != p[1]) {
			j++
		}
		if j == len(points) {
			break
		}
		z = append(z, points[j].Z)
		j++
	}
	return z
}

// PointsGeoJSON returns the points as a MultiPoint feature whose "kind"
// property is kind.
func PointsGeoJSON(kind string, points []geom.Vec3) *geojson.Feature {
	mp := make(orb.MultiPoint, len(points))
	for i, p := range points {
		mp[i] = orb.Point{p.X, p.Y}
	}
	f := geojson.NewFeature(mp)
	f.Properties["kind"] = kind
	return f
}

// Collection bundles features into a FeatureCollection.
func Collection(features ...*geojson.Feature) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, f := range features {
		fc.Append(f)
	}
	return fc
}
