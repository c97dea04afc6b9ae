package geodrill

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/paulmach/orb"
)

// DefaultTargetSpan is the scene-plane size the larger geographic span of a
// tier is fitted to.
const DefaultTargetSpan = 240.0

// Projector maps geographic (lon, lat) points onto the scene plane with a
// uniform scale, centered on the fitted bounding box's midpoint.
type Projector struct {
	center orb.Point
	scale  float64
	bound  orb.Bound
}

// NewProjector fits a projector to points so the larger of the longitude and
// latitude spans maps to targetSpan. A zero span falls back to scale 1 and an
// empty point set yields an identity projector.
func NewProjector(points []orb.Point, targetSpan float64) *Projector {
	if len(points) == 0 {
		return &Projector{scale: 1}
	}
	if targetSpan <= 0 {
		targetSpan = DefaultTargetSpan
	}

	b := orb.Bound{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		b = b.Extend(p)
	}

	span := math.Max(b.Max[0]-b.Min[0], b.Max[1]-b.Min[1])
	scale := 1.0
	if span > 0 {
		scale = targetSpan / span
	}

	return &Projector{
		center: b.Center(),
		scale:  scale,
		bound:  b,
	}
}

// Project maps a geographic point to the scene plane.
func (p *Projector) Project(pt orb.Point) r2.Point {
	return r2.Point{
		X: (pt[0] - p.center[0]) * p.scale,
		Y: (pt[1] - p.center[1]) * p.scale,
	}
}

// ProjectRing maps a ring, dropping a closing vertex that repeats the first.
func (p *Projector) ProjectRing(ring orb.Ring) []r2.Point {
	n := len(ring)
	if n > 1 && ring[0].Equal(ring[n-1]) {
		n--
	}
	out := make([]r2.Point, n)
	for i := 0; i < n; i++ {
		out[i] = p.Project(ring[i])
	}
	return out
}

// Scale returns the scene units per degree.
func (p *Projector) Scale() float64 {
	return p.scale
}

// Center returns the geographic point that maps to the scene origin.
func (p *Projector) Center() orb.Point {
	return p.center
}

// Bound returns the geographic bounding box the projector was fitted to.
func (p *Projector) Bound() orb.Bound {
	return p.bound
}
