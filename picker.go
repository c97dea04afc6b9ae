package geodrill

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

// InteractiveSet is the view's current set of selectable meshes.
type InteractiveSet interface {
	Interactive() []*RegionMesh
	InteractiveMesh(id int) (*RegionMesh, bool)
}

// HitKind reports what the pointer ray struck.
type HitKind uint8

const (
	HitNone HitKind = iota
	HitLabel
	HitMesh
)

// Hit is the resolved result of one pick.
type Hit struct {
	Kind     HitKind
	Mesh     *RegionMesh
	Label    *Label
	Distance float64
}

// Picker resolves pointer positions to interactive meshes. Labels are tested
// before geometry so a label in front of its mesh takes the hit.
type Picker struct {
	cam    *Camera
	labels *LabelEngine
}

// NewPicker creates a picker casting rays from cam.
func NewPicker(cam *Camera, labels *LabelEngine) *Picker {
	return &Picker{cam: cam, labels: labels}
}

// Pick casts a ray through screen pixel (sx, sy) and returns the nearest
// label or mesh hit whose owning mesh is in set.
func (p *Picker) Pick(sx, sy float64, set InteractiveSet) (Hit, bool) {
	origin, dir := p.cam.Ray(sx, sy)
	_, right, up := p.cam.basis()

	best := Hit{Distance: math.Inf(1)}
	meshes := set.Interactive()

	// Labels first; on equal distance a label keeps the hit.
	for _, m := range meshes {
		l, ok := p.labels.LabelFor(m.ID)
		if !ok || !l.Visible || l.Grow <= 0 {
			continue
		}
		dist, ok := rayBillboard(origin, dir, l, right, up)
		if !ok || dist >= best.Distance {
			continue
		}
		best = Hit{Kind: HitLabel, Label: l, Distance: dist}
	}

	for _, m := range meshes {
		if !m.Visible {
			continue
		}
		dist, ok := rayCap(origin, dir, m)
		if !ok || dist >= best.Distance {
			continue
		}
		best = Hit{Kind: HitMesh, Mesh: m, Distance: dist}
	}

	switch best.Kind {
	case HitLabel:
		ownerID, ok := p.labels.OwnerOf(best.Label.ID)
		if !ok {
			return Hit{}, false
		}
		m, ok := set.InteractiveMesh(ownerID)
		if !ok {
			return Hit{}, false
		}
		best.Mesh = m
		return best, true
	case HitMesh:
		if _, ok := set.InteractiveMesh(best.Mesh.ID); !ok {
			return Hit{}, false
		}
		return best, true
	}
	return Hit{}, false
}

// rayBillboard intersects the ray with a camera-facing label rectangle.
func rayBillboard(origin, dir r3.Vector, l *Label, right, up r3.Vector) (float64, bool) {
	normal := right.Cross(up)
	denom := dir.Dot(normal)
	if math.Abs(denom) < 1e-9 {
		return 0, false
	}
	t := l.Position.Sub(origin).Dot(normal) / denom
	if t <= 0 {
		return 0, false
	}
	hit := origin.Add(dir.Mul(t))
	off := hit.Sub(l.Position)
	w, h := l.Size()
	if math.Abs(off.Dot(right)) > w/2 || math.Abs(off.Dot(up)) > h/2 {
		return 0, false
	}
	return t, true
}

// rayCap intersects the ray with the mesh's top cap.
func rayCap(origin, dir r3.Vector, m *RegionMesh) (float64, bool) {
	if math.Abs(dir.Z) < 1e-9 {
		return 0, false
	}
	z := m.TopZ() * m.Scale
	t := (z - origin.Z) / dir.Z
	if t <= 0 {
		return 0, false
	}
	hit := origin.Add(dir.Mul(t))
	if !m.ContainsPlanar(r2.Point{X: hit.X, Y: hit.Y}) {
		return 0, false
	}
	return t, true
}
