package geodrill

import (
	"context"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Feature is one named geographic unit. Each Polygon is a ring-group: the
// outer boundary first, remaining rings are holes. Immutable once loaded.
type Feature struct {
	Name       string
	Polygons   []orb.Polygon
	Properties geojson.Properties
}

// DatasetSource supplies the two resolution tiers. Implementations must be
// safe to call from a background goroutine.
type DatasetSource interface {
	// Regions returns the coarse-resolution features.
	Regions(ctx context.Context) ([]*Feature, error)
	// SubRegions returns the full fine-resolution dataset, unfiltered.
	SubRegions(ctx context.Context) ([]*Feature, error)
}

// POISource supplies the points of interest that belong to one region.
type POISource interface {
	PointsOfInterest(ctx context.Context, region string) ([]PointOfInterest, error)
}

// FeatureFromGeoJSON converts a GeoJSON feature. The second result is false
// for geometries other than Polygon and MultiPolygon.
func FeatureFromGeoJSON(f *geojson.Feature) (*Feature, bool) {
	if f == nil || f.Geometry == nil {
		return nil, false
	}
	out := &Feature{
		Name:       f.Properties.MustString("name", ""),
		Properties: f.Properties,
	}
	switch g := f.Geometry.(type) {
	case orb.Polygon:
		out.Polygons = []orb.Polygon{g}
	case orb.MultiPolygon:
		out.Polygons = make([]orb.Polygon, len(g))
		copy(out.Polygons, g)
	default:
		return nil, false
	}
	return out, true
}

// Bound returns the geographic bounding box over every ring of every part.
func (f *Feature) Bound() orb.Bound {
	var b orb.Bound
	first := true
	for _, poly := range f.Polygons {
		for _, ring := range poly {
			for _, p := range ring {
				if first {
					b = orb.Bound{Min: p, Max: p}
					first = false
					continue
				}
				b = b.Extend(p)
			}
		}
	}
	return b
}

// Centroid returns the unweighted mean of every vertex of every ring. It
// approximates a visual center and is what the containment matcher tests.
func (f *Feature) Centroid() (orb.Point, bool) {
	var sx, sy float64
	n := 0
	for _, poly := range f.Polygons {
		for _, ring := range poly {
			for _, p := range ring {
				sx += p[0]
				sy += p[1]
				n++
			}
		}
	}
	if n == 0 {
		return orb.Point{}, false
	}
	return orb.Point{sx / float64(n), sy / float64(n)}, true
}

// Vertices returns every vertex of every ring in order.
func (f *Feature) Vertices() []orb.Point {
	var out []orb.Point
	for _, poly := range f.Polygons {
		for _, ring := range poly {
			out = append(out, ring...)
		}
	}
	return out
}

// CollectPoints gathers every vertex of every feature, the input a Projector
// is fitted to.
func CollectPoints(features []*Feature) []orb.Point {
	var out []orb.Point
	for _, f := range features {
		out = append(out, f.Vertices()...)
	}
	return out
}

// FindFeature returns the first feature with the given name.
func FindFeature(features []*Feature, name string) (*Feature, bool) {
	for _, f := range features {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}
