package geodrill

import (
	"github.com/golang/geo/r2"
	"github.com/paulmach/orb"
)

// RingContains reports whether pt lies inside ring using an even-odd ray
// cast. Points exactly on an edge may fall either way.
func RingContains(ring orb.Ring, pt orb.Point) bool {
	inside := false
	n := len(ring)
	if n < 3 {
		return false
	}
	x, y := pt[0], pt[1]
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// ContainsPoint reports whether pt lies inside the polygon's outer ring and
// outside every hole.
func ContainsPoint(poly orb.Polygon, pt orb.Point) bool {
	if len(poly) == 0 || !RingContains(poly[0], pt) {
		return false
	}
	for _, hole := range poly[1:] {
		if RingContains(hole, pt) {
			return false
		}
	}
	return true
}

// FeatureContains reports whether any ring-group of f contains pt.
func FeatureContains(f *Feature, pt orb.Point) bool {
	for _, poly := range f.Polygons {
		if ContainsPoint(poly, pt) {
			return true
		}
	}
	return false
}

// --- Scene-plane helpers ---

// planarRingContains is RingContains for projected rings.
func planarRingContains(ring []r2.Point, p r2.Point) bool {
	inside := false
	n := len(ring)
	if n < 3 {
		return false
	}
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := ring[i], ring[j]
		if (a.Y > p.Y) != (b.Y > p.Y) && p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}

// signedArea returns twice the signed area of ring; positive when the ring
// winds counter-clockwise.
func signedArea(ring []r2.Point) float64 {
	var sum float64
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		sum += ring[j].Cross(ring[i])
	}
	return sum
}

// ringBounds returns the bounding rectangle of ring.
func ringBounds(ring []r2.Point) r2.Rect {
	return r2.RectFromPoints(ring...)
}

// ringCentroid is the unweighted mean of ring's vertices.
func ringCentroid(ring []r2.Point) r2.Point {
	var c r2.Point
	if len(ring) == 0 {
		return c
	}
	for _, p := range ring {
		c = c.Add(p)
	}
	return c.Mul(1 / float64(len(ring)))
}

// segmentsCross reports whether segments ab and cd properly intersect, that
// is they cross at a single point interior to both.
func segmentsCross(a, b, c, d r2.Point) bool {
	d1 := orient(c, d, a)
	d2 := orient(c, d, b)
	d3 := orient(a, b, c)
	d4 := orient(a, b, d)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

// orient is the cross product of (b-a) and (c-a).
func orient(a, b, c r2.Point) float64 {
	return b.Sub(a).Cross(c.Sub(a))
}
