package geodrill

import (
	"fmt"
	"math/rand/v2"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/paulmach/orb"
)

// Extrusion and entrance defaults.
const (
	DefaultDepth          = 6.0
	DefaultBaseZ          = -3.0
	DefaultEntranceDelay  = 0.5 // seconds, upper bound of the random delay
	DefaultEntranceLength = 0.8 // seconds
	DefaultEntranceScale  = 0.8
)

// RegionMesh is the extruded solid for one ring-group of a feature. A
// MultiPolygon feature yields several meshes sharing one Name.
type RegionMesh struct {
	ID    int
	Name  string
	Part  int // ring-group index within the owning feature
	Level ViewLevel

	// BaseZ is the bottom of the solid at rest; Depth its height.
	BaseZ float64
	Depth float64
	// Z is the current raise above rest, animated by selection.
	Z float64

	BaseColor     Color
	BaseEdgeColor Color
	Color         Color
	EdgeColor     Color

	// Centroid is the unweighted mean of the projected outer ring, at z=0.
	Centroid r3.Vector
	// Bounds is the projected extent of the outer ring.
	Bounds r2.Rect

	// Visible meshes are drawn and, at the current level, interactive.
	Visible bool
	// Alpha and Scale are driven by the entrance animation.
	Alpha float64
	Scale float64

	outer    []r2.Point
	holes    [][]r2.Point
	capVerts []r2.Point
	capTris  []int

	highlighted bool
	disposed    bool

	entrance *TweenGroup
	pulse    *TweenGroup
}

// MeshOptions configures MeshBuilder output.
type MeshOptions struct {
	Depth         float64
	BaseZ         float64
	FillColor     Color
	EdgeColor     Color
	EntranceDelay float32 // max random delay in seconds
	EntranceTime  float32
	// Rand supplies entrance delays. Nil uses the global source.
	Rand *rand.Rand
}

// DefaultMeshOptions returns the standard extrusion and palette.
func DefaultMeshOptions() MeshOptions {
	return MeshOptions{
		Depth:         DefaultDepth,
		BaseZ:         DefaultBaseZ,
		FillColor:     DefaultFillColor,
		EdgeColor:     DefaultEdgeColor,
		EntranceDelay: DefaultEntranceDelay,
		EntranceTime:  DefaultEntranceLength,
	}
}

// MeshBuilder turns ring-groups into RegionMeshes with unique IDs.
type MeshBuilder struct {
	Options MeshOptions
	nextID  int
}

// NewMeshBuilder creates a builder with the given options.
func NewMeshBuilder(opts MeshOptions) *MeshBuilder {
	return &MeshBuilder{Options: opts}
}

// Build extrudes one ring-group. The first ring is the outer boundary and the
// rest are holes subtracted from the cap. It returns ErrDegenerateGeometry
// for an empty ring list or an outer ring with fewer than three vertices.
func (b *MeshBuilder) Build(name string, part int, rings orb.Polygon, proj *Projector, level ViewLevel) (*RegionMesh, error) {
	if len(rings) == 0 {
		return nil, fmt.Errorf("%w: %q part %d has no rings", ErrDegenerateGeometry, name, part)
	}
	outer := proj.ProjectRing(rings[0])
	if len(outer) < 3 {
		return nil, fmt.Errorf("%w: %q part %d outer ring has %d vertices", ErrDegenerateGeometry, name, part, len(outer))
	}

	var holes [][]r2.Point
	for _, ring := range rings[1:] {
		h := proj.ProjectRing(ring)
		if len(h) < 3 {
			continue
		}
		holes = append(holes, h)
	}

	verts, tris := triangulate(outer, holes)
	if len(tris) == 0 {
		return nil, fmt.Errorf("%w: %q part %d has zero area", ErrDegenerateGeometry, name, part)
	}

	opts := b.Options
	c := ringCentroid(outer)
	b.nextID++
	m := &RegionMesh{
		ID:            b.nextID,
		Name:          name,
		Part:          part,
		Level:         level,
		BaseZ:         opts.BaseZ,
		Depth:         opts.Depth,
		BaseColor:     opts.FillColor,
		BaseEdgeColor: opts.EdgeColor,
		Color:         opts.FillColor,
		EdgeColor:     opts.EdgeColor,
		Centroid:      r3.Vector{X: c.X, Y: c.Y},
		Bounds:        ringBounds(outer),
		Visible:       true,
		Alpha:         0,
		Scale:         DefaultEntranceScale,
		outer:         outer,
		holes:         holes,
		capVerts:      verts,
		capTris:       tris,
	}

	var delay float32
	if opts.EntranceDelay > 0 {
		if opts.Rand != nil {
			delay = opts.Rand.Float32() * opts.EntranceDelay
		} else {
			delay = rand.Float32() * opts.EntranceDelay
		}
	}
	m.entrance = TweenEntrance(m, delay, opts.EntranceTime)
	return m, nil
}

// BuildFeature extrudes every ring-group of f. Degenerate parts are returned
// as errors alongside the meshes that did build.
func (b *MeshBuilder) BuildFeature(f *Feature, proj *Projector, level ViewLevel) ([]*RegionMesh, []error) {
	var meshes []*RegionMesh
	var errs []error
	for i, poly := range f.Polygons {
		m, err := b.Build(f.Name, i, poly, proj, level)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		meshes = append(meshes, m)
	}
	if len(f.Polygons) == 0 {
		errs = append(errs, fmt.Errorf("%w: %q has no polygons", ErrDegenerateGeometry, f.Name))
	}
	return meshes, errs
}

// IsDisposed reports whether the mesh has been destroyed.
func (m *RegionMesh) IsDisposed() bool {
	return m.disposed
}

// Dispose releases the mesh geometry and stops its animations.
func (m *RegionMesh) Dispose() {
	m.disposed = true
	m.Visible = false
	m.capVerts = nil
	m.capTris = nil
	m.outer = nil
	m.holes = nil
	m.entrance = nil
	m.pulse = nil
}

// Highlighted reports whether the mesh currently shows selection emphasis.
func (m *RegionMesh) Highlighted() bool {
	return m.highlighted
}

// Outer returns the projected outer ring.
func (m *RegionMesh) Outer() []r2.Point {
	return m.outer
}

// Holes returns the projected hole rings.
func (m *RegionMesh) Holes() [][]r2.Point {
	return m.holes
}

// CapTriangles returns the cap vertices and counter-clockwise triangle
// indices into them.
func (m *RegionMesh) CapTriangles() ([]r2.Point, []int) {
	return m.capVerts, m.capTris
}

// TopZ is the height of the mesh's upper cap including any raise.
func (m *RegionMesh) TopZ() float64 {
	return m.BaseZ + m.Depth + m.Z
}

// BottomZ is the height of the mesh's lower cap including any raise.
func (m *RegionMesh) BottomZ() float64 {
	return m.BaseZ + m.Z
}

// Entering reports whether the entrance animation is still running.
func (m *RegionMesh) Entering() bool {
	return m.entrance != nil && !m.entrance.Done
}

// FinishEntrance jumps the entrance animation to its end state.
func (m *RegionMesh) FinishEntrance() {
	m.entrance.Finish()
}

// World maps a scene-plane point of this mesh at height z into world space,
// applying the entrance scale about the centroid.
func (m *RegionMesh) World(p r2.Point, z float64) r3.Vector {
	s := m.Scale
	return r3.Vector{
		X: m.Centroid.X + (p.X-m.Centroid.X)*s,
		Y: m.Centroid.Y + (p.Y-m.Centroid.Y)*s,
		Z: z * s,
	}
}

// ContainsPlanar reports whether the scene-plane point p lies on this mesh's
// cap, accounting for the entrance scale.
func (m *RegionMesh) ContainsPlanar(p r2.Point) bool {
	if m.disposed || m.Scale <= 0 {
		return false
	}
	local := r2.Point{
		X: m.Centroid.X + (p.X-m.Centroid.X)/m.Scale,
		Y: m.Centroid.Y + (p.Y-m.Centroid.Y)/m.Scale,
	}
	if !m.Bounds.ContainsPoint(local) || !planarRingContains(m.outer, local) {
		return false
	}
	for _, h := range m.holes {
		if planarRingContains(h, local) {
			return false
		}
	}
	return true
}

// update advances the mesh's entrance and raise animations.
func (m *RegionMesh) update(dt float32) {
	if m.entrance != nil {
		m.entrance.Update(dt)
		if m.entrance.Done {
			m.entrance = nil
		}
	}
	if m.pulse != nil {
		m.pulse.Update(dt)
		if m.pulse.Done {
			m.pulse = nil
		}
	}
}

// meshesBounds returns the union of the meshes' projected bounds.
func meshesBounds(meshes []*RegionMesh) r2.Rect {
	r := r2.EmptyRect()
	for _, m := range meshes {
		r = r.Union(m.Bounds)
	}
	return r
}
