package geodrill

import (
	"math"

	"github.com/golang/geo/r3"
)

// Curve defaults for marker-to-label indicators.
const (
	DefaultCurveSegments = 50
	DefaultCurveLift     = 15.0
	DefaultDashLength    = 5.0
	DefaultGapLength     = 3.0
)

// Curve is a sampled quadratic Bézier drawn dashed from a marker to its label.
type Curve struct {
	ID     int
	Points []r3.Vector
	Dash   float64
	Gap    float64
	Color  Color

	disposed bool
}

// NewCurve samples a quadratic Bézier from start to end whose control point
// sits at the midpoint, lifted by lift above the higher endpoint.
func NewCurve(start, end r3.Vector, lift float64, segments int) *Curve {
	if segments < 1 {
		segments = DefaultCurveSegments
	}
	ctrl := start.Add(end).Mul(0.5)
	ctrl.Z = math.Max(start.Z, end.Z) + lift

	pts := make([]r3.Vector, segments+1)
	for i := 0; i <= segments; i++ {
		t := float64(i) / float64(segments)
		u := 1 - t
		pts[i] = start.Mul(u * u).Add(ctrl.Mul(2 * u * t)).Add(end.Mul(t * t))
	}
	return &Curve{
		Points: pts,
		Dash:   DefaultDashLength,
		Gap:    DefaultGapLength,
		Color:  CurveColor,
	}
}

// IsDisposed reports whether the curve has been destroyed.
func (c *Curve) IsDisposed() bool {
	return c.disposed
}

// Dispose releases the sampled points.
func (c *Curve) Dispose() {
	c.disposed = true
	c.Points = nil
}

// Length returns the arc length of the sampled polyline.
func (c *Curve) Length() float64 {
	var l float64
	for i := 1; i < len(c.Points); i++ {
		l += c.Points[i].Sub(c.Points[i-1]).Norm()
	}
	return l
}

// Dashes splits the polyline into visible dash segments measured along its
// arc length. Each returned pair is the start and end of one straight piece.
func (c *Curve) Dashes() [][2]r3.Vector {
	if len(c.Points) < 2 || c.Dash <= 0 {
		return nil
	}
	period := c.Dash + c.Gap
	var out [][2]r3.Vector
	var walked float64
	for i := 1; i < len(c.Points); i++ {
		a, b := c.Points[i-1], c.Points[i]
		segLen := b.Sub(a).Norm()
		if segLen == 0 {
			continue
		}
		pos := 0.0
		for pos < segLen {
			phase := math.Mod(walked+pos, period)
			if phase < c.Dash {
				run := math.Min(c.Dash-phase, segLen-pos)
				p0 := a.Add(b.Sub(a).Mul(pos / segLen))
				p1 := a.Add(b.Sub(a).Mul((pos + run) / segLen))
				out = append(out, [2]r3.Vector{p0, p1})
				pos += run
			} else {
				pos += period - phase
			}
		}
		walked += segLen
	}
	return out
}
