package geodrill

import (
	"math"
	"math/rand/v2"

	"github.com/golang/geo/r3"
)

// Background particle field defaults.
const (
	DefaultParticleCount  = 200
	DefaultParticleRadius = 600.0
	ParticleSpinY         = 0.0005 // radians per frame
	ParticleSpinX         = 0.0003 // radians per frame
	ParticleSize          = 2.0    // pixels
)

// ParticleField is a slowly rotating cloud of points drawn behind the map.
// It is decorative and never interactive.
type ParticleField struct {
	points []r3.Vector
	rotX   float64
	rotY   float64
	Color  Color
	Size   float64

	buf []r3.Vector
}

// NewParticleField scatters n points uniformly in a cube of half-size
// radius around the origin.
func NewParticleField(n int, radius float64, rng *rand.Rand) *ParticleField {
	if rng == nil {
		rng = rand.New(rand.NewPCG(1, 2))
	}
	pts := make([]r3.Vector, n)
	for i := range pts {
		pts[i] = r3.Vector{
			X: (rng.Float64()*2 - 1) * radius,
			Y: (rng.Float64()*2 - 1) * radius,
			Z: (rng.Float64()*2 - 1) * radius,
		}
	}
	return &ParticleField{points: pts, Color: ParticleColor, Size: ParticleSize}
}

// Len returns the number of particles.
func (p *ParticleField) Len() int {
	return len(p.points)
}

// Rotation returns the field's accumulated rotation about x and y.
func (p *ParticleField) Rotation() (x, y float64) {
	return p.rotX, p.rotY
}

// update advances the rotation by one frame.
func (p *ParticleField) update() {
	p.rotY += ParticleSpinY
	p.rotX += ParticleSpinX
}

// Positions returns the rotated world positions. The slice is reused
// between calls.
func (p *ParticleField) Positions() []r3.Vector {
	sx, cx := math.Sincos(p.rotX)
	sy, cy := math.Sincos(p.rotY)
	p.buf = p.buf[:0]
	for _, v := range p.points {
		// Rotate about y, then x.
		x := v.X*cy + v.Z*sy
		z := -v.X*sy + v.Z*cy
		y := v.Y*cx - z*sx
		z = v.Y*sx + z*cx
		p.buf = append(p.buf, r3.Vector{X: x, Y: y, Z: z})
	}
	return p.buf
}
