package geodrill

import (
	"testing"
	"time"

	"github.com/golang/geo/r3"
)

func TestCameraProjectsTargetToCenter(t *testing.T) {
	cam := NewCamera(800, 600)
	sx, sy, depth, ok := cam.Project(cam.Target)
	if !ok {
		t.Fatal("target behind camera")
	}
	if !approxEqual(sx, 400, 1e-9) || !approxEqual(sy, 300, 1e-9) {
		t.Errorf("Project(target) = (%f, %f), want (400, 300)", sx, sy)
	}
	if !approxEqual(depth, cam.Target.Sub(cam.Position).Norm(), 1e-9) {
		t.Errorf("depth = %f", depth)
	}
}

func TestCameraProjectBehind(t *testing.T) {
	cam := NewCamera(800, 600)
	behind := cam.Position.Add(cam.Position.Sub(cam.Target))
	if _, _, _, ok := cam.Project(behind); ok {
		t.Error("point behind the camera projected")
	}
}

func TestCameraRayRoundTrip(t *testing.T) {
	cam := NewCamera(800, 600)
	p := r3.Vector{X: 30, Y: -20, Z: 5}
	sx, sy, depth, ok := cam.Project(p)
	if !ok {
		t.Fatal("point not visible")
	}
	origin, dir := cam.Ray(sx, sy)
	want := p.Sub(origin).Normalize()
	if !approxEqual(dir.Dot(want), 1, 1e-9) {
		t.Errorf("Ray dir = %v, want %v", dir, want)
	}
	fwd, _, _ := cam.basis()
	if !approxEqual(p.Sub(origin).Dot(fwd), depth, 1e-9) {
		t.Error("depth is not the distance along the view axis")
	}
}

func TestCameraNDC(t *testing.T) {
	cam := NewCamera(800, 600)
	tests := []struct {
		sx, sy, x, y float64
	}{
		{0, 0, -1, 1},
		{400, 300, 0, 0},
		{800, 600, 1, -1},
	}
	for _, tt := range tests {
		x, y := cam.NDC(tt.sx, tt.sy)
		if !approxEqual(x, tt.x, 1e-9) || !approxEqual(y, tt.y, 1e-9) {
			t.Errorf("NDC(%v, %v) = (%v, %v), want (%v, %v)", tt.sx, tt.sy, x, y, tt.x, tt.y)
		}
	}
}

func TestCameraPixelScale(t *testing.T) {
	cam := NewCamera(800, 600)
	if cam.PixelScale(0) != 0 {
		t.Error("PixelScale(0) != 0")
	}
	if near, far := cam.PixelScale(100), cam.PixelScale(200); !approxEqual(near, far*2, 1e-9) {
		t.Errorf("PixelScale not inverse to depth: %f %f", near, far)
	}
}

func TestTransitionCompletes(t *testing.T) {
	clock := newManualClock()
	cam := NewCamera(800, 600)
	tr := NewCameraTransition(cam, clock)
	pos, look := r3.Vector{X: 10, Y: -50, Z: 60}, r3.Vector{X: 10}

	if !tr.Start(pos, look, time.Second) {
		t.Fatal("Start = false on an idle transition")
	}
	clock.advance(500 * time.Millisecond)
	tr.Update()
	if !tr.Animating() {
		t.Fatal("finished early")
	}
	mid := cam.Position
	if mid == DefaultCameraPosition || mid == pos {
		t.Errorf("mid-way position = %v", mid)
	}

	clock.advance(600 * time.Millisecond)
	tr.Update()
	if tr.Animating() {
		t.Fatal("still animating after the duration")
	}
	if cam.Position.Sub(pos).Norm() > 1e-9 || cam.Target.Sub(look).Norm() > 1e-9 {
		t.Errorf("end pose = %v looking at %v, want %v at %v", cam.Position, cam.Target, pos, look)
	}
}

func TestTransitionDropsRequestsWhileAnimating(t *testing.T) {
	clock := newManualClock()
	cam := NewCamera(800, 600)
	tr := NewCameraTransition(cam, clock)
	first := r3.Vector{X: 1, Y: -100, Z: 100}

	tr.Start(first, r3.Vector{}, time.Second)
	if tr.Start(r3.Vector{X: 500, Y: -100, Z: 100}, r3.Vector{}, time.Second) {
		t.Error("second Start accepted while animating")
	}
	clock.advance(2 * time.Second)
	tr.Update()
	if cam.Position.Sub(first).Norm() > 1e-9 {
		t.Errorf("Position = %v, want first destination %v", cam.Position, first)
	}
	if !tr.Start(DefaultCameraPosition, DefaultCameraTarget, time.Second) {
		t.Error("Start refused after completion")
	}
}

func TestTransitionZeroDurationJumps(t *testing.T) {
	cam := NewCamera(800, 600)
	tr := NewCameraTransition(cam, newManualClock())
	pos := r3.Vector{X: 3, Y: -4, Z: 5}
	tr.Start(pos, r3.Vector{X: 3}, 0)
	if tr.Animating() || cam.Position != pos {
		t.Errorf("zero duration: animating=%v pos=%v", tr.Animating(), cam.Position)
	}
}

func TestFrameExtent(t *testing.T) {
	pos, look := FrameExtent(10, 20, 100)
	if look != (r3.Vector{X: 10, Y: 20}) {
		t.Errorf("look = %v", look)
	}
	d := 100 * TierFramingSpanFactor
	if !approxEqual(pos.Z, d*TierFramingOffsetFactor, 1e-9) || !approxEqual(pos.Y, 20-d*TierFramingOffsetFactor, 1e-9) {
		t.Errorf("pos = %v", pos)
	}
	small, _ := FrameExtent(0, 0, 1)
	if !approxEqual(small.Z, TierFramingMinDistance*TierFramingOffsetFactor, 1e-9) {
		t.Errorf("small extent Z = %f, want minimum distance", small.Z)
	}
}
