package geodrill

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// disposable is implemented by scene objects whose tweens must stop once the
// object is destroyed.
type disposable interface {
	IsDisposed() bool
}

// TweenGroup animates up to 4 float64 fields simultaneously after an optional
// delay. Call Update(dt) each frame. If the target is disposed, the group
// stops immediately without writing.
type TweenGroup struct {
	tweens [4]*gween.Tween
	count  int
	fields [4]*float64
	ends   [4]float64
	target disposable
	delay  float32
	Done   bool
}

// Update advances all tweens by dt seconds and writes values to the target
// fields. Time spent inside the delay writes nothing.
func (g *TweenGroup) Update(dt float32) {
	if g == nil || g.Done {
		return
	}

	if g.target != nil && g.target.IsDisposed() {
		g.Done = true
		return
	}

	if g.delay > 0 {
		if dt <= g.delay {
			g.delay -= dt
			return
		}
		dt -= g.delay
		g.delay = 0
	}

	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		*g.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
}

// Finish jumps every field to its end value.
func (g *TweenGroup) Finish() {
	if g == nil || g.Done {
		return
	}
	g.delay = 0
	for i := 0; i < g.count; i++ {
		*g.fields[i] = g.ends[i]
	}
	g.Done = true
}

// tweenField pairs a field with its target value.
type tweenField struct {
	field *float64
	to    float64
}

// newTweenGroup tweens each field from its current value to its target.
func newTweenGroup(target disposable, delay, duration float32, fn ease.TweenFunc, fields ...tweenField) *TweenGroup {
	g := &TweenGroup{target: target, delay: delay}
	for i, f := range fields {
		if i == len(g.tweens) {
			break
		}
		g.tweens[i] = gween.New(float32(*f.field), float32(f.to), duration, fn)
		g.fields[i] = f.field
		g.ends[i] = f.to
		g.count++
	}
	return g
}

// TweenEntrance ramps a mesh from transparent and scaled down to fully
// visible at rest scale, starting after delay seconds.
func TweenEntrance(m *RegionMesh, delay, duration float32) *TweenGroup {
	return newTweenGroup(m, delay, duration, ease.OutCubic,
		tweenField{&m.Alpha, 1},
		tweenField{&m.Scale, 1},
	)
}

// TweenRaise animates a mesh's height offset to z with an overshooting ease,
// the emphasis pulse of a new selection.
func TweenRaise(m *RegionMesh, z float64, duration float32) *TweenGroup {
	return newTweenGroup(m, 0, duration, ease.OutBack, tweenField{&m.Z, z})
}

// TweenLabelIn grows a label from nothing to its target size and opacity.
func TweenLabelIn(l *Label, duration float32) *TweenGroup {
	return newTweenGroup(l, 0, duration, ease.OutQuad,
		tweenField{&l.Grow, 1},
		tweenField{&l.Alpha, l.Opacity},
	)
}
