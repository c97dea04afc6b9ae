package geodrill

import (
	"math"
	"time"

	"github.com/golang/geo/r3"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Camera defaults.
var (
	DefaultCameraPosition = r3.Vector{X: 0, Y: -260, Z: 220}
	DefaultCameraTarget   = r3.Vector{}
)

const (
	DefaultFOV  = 45.0 // degrees, vertical
	DefaultNear = 0.1
	DefaultFar  = 5000.0
)

// Clock supplies wall-clock time so animations can be driven by a fake
// clock in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads time.Now.
var SystemClock Clock = systemClock{}

// Camera is a z-up perspective camera looking from Position at Target.
type Camera struct {
	Position r3.Vector
	Target   r3.Vector
	Up       r3.Vector
	// FOV is the vertical field of view in degrees.
	FOV  float64
	Near float64
	Far  float64
	// Width and Height are the viewport size in pixels.
	Width, Height float64
}

// NewCamera creates a camera at the default overview pose.
func NewCamera(width, height float64) *Camera {
	return &Camera{
		Position: DefaultCameraPosition,
		Target:   DefaultCameraTarget,
		Up:       r3.Vector{Z: 1},
		FOV:      DefaultFOV,
		Near:     DefaultNear,
		Far:      DefaultFar,
		Width:    width,
		Height:   height,
	}
}

// SetViewport updates the pixel size the camera projects into.
func (c *Camera) SetViewport(width, height float64) {
	c.Width, c.Height = width, height
}

// basis returns the camera's forward, right and up unit vectors.
func (c *Camera) basis() (fwd, right, up r3.Vector) {
	fwd = c.Target.Sub(c.Position)
	if fwd.Norm() == 0 {
		fwd = r3.Vector{Y: 1}
	}
	fwd = fwd.Normalize()
	worldUp := c.Up
	if math.Abs(fwd.Dot(worldUp.Normalize())) > 0.999 {
		worldUp = r3.Vector{Y: 1}
	}
	right = fwd.Cross(worldUp).Normalize()
	up = right.Cross(fwd)
	return fwd, right, up
}

// focal is the distance in pixels from the eye to the image plane.
func (c *Camera) focal() float64 {
	return (c.Height / 2) / math.Tan(c.FOV*math.Pi/360)
}

// Project maps a world point to screen pixels. depth is the distance along
// the view axis; ok is false for points behind the near plane.
func (c *Camera) Project(p r3.Vector) (sx, sy, depth float64, ok bool) {
	fwd, right, up := c.basis()
	d := p.Sub(c.Position)
	depth = d.Dot(fwd)
	if depth <= c.Near {
		return 0, 0, depth, false
	}
	f := c.focal()
	sx = c.Width/2 + d.Dot(right)*f/depth
	sy = c.Height/2 - d.Dot(up)*f/depth
	return sx, sy, depth, true
}

// PixelScale returns pixels per world unit at the given view depth.
func (c *Camera) PixelScale(depth float64) float64 {
	if depth <= 0 {
		return 0
	}
	return c.focal() / depth
}

// Ray returns the world-space ray through the screen pixel (sx, sy).
func (c *Camera) Ray(sx, sy float64) (origin, dir r3.Vector) {
	fwd, right, up := c.basis()
	f := c.focal()
	dx := (sx - c.Width/2) / f
	dy := (c.Height/2 - sy) / f
	dir = fwd.Add(right.Mul(dx)).Add(up.Mul(dy)).Normalize()
	return c.Position, dir
}

// NDC converts screen pixels to normalized device coordinates in [-1, 1].
func (c *Camera) NDC(sx, sy float64) (x, y float64) {
	if c.Width == 0 || c.Height == 0 {
		return 0, 0
	}
	return sx/c.Width*2 - 1, -(sy/c.Height*2 - 1)
}

// --- Transitions ---

// CameraTransition animates a camera's position and look-at point. Only one
// transition runs at a time: requests made while one is running are dropped.
type CameraTransition struct {
	cam   *Camera
	clock Clock

	active   bool
	last     time.Time
	progress *gween.Tween
	t        float64

	fromPos, toPos   r3.Vector
	fromLook, toLook r3.Vector
}

// NewCameraTransition creates a transition controller for cam.
func NewCameraTransition(cam *Camera, clock Clock) *CameraTransition {
	if clock == nil {
		clock = SystemClock
	}
	return &CameraTransition{cam: cam, clock: clock}
}

// Animating reports whether a transition is in flight.
func (t *CameraTransition) Animating() bool {
	return t.active
}

// Start begins moving the camera to pos looking at look over d. It returns
// false, leaving the running transition untouched, when one is in flight.
func (t *CameraTransition) Start(pos, look r3.Vector, d time.Duration) bool {
	if t.active {
		return false
	}
	if d <= 0 {
		t.cam.Position, t.cam.Target = pos, look
		return true
	}
	t.active = true
	t.last = t.clock.Now()
	t.t = 0
	t.progress = gween.New(0, 1, float32(d.Seconds()), ease.OutCubic)
	t.fromPos, t.toPos = t.cam.Position, pos
	t.fromLook, t.toLook = t.cam.Target, look
	return true
}

// Update advances the transition by the wall-clock time since the previous
// call and releases the guard on completion.
func (t *CameraTransition) Update() {
	if !t.active {
		return
	}
	now := t.clock.Now()
	dt := now.Sub(t.last)
	t.last = now

	v, done := t.progress.Update(float32(dt.Seconds()))
	t.t = float64(v)
	if done {
		t.t = 1
	}
	t.cam.Position = lerpVec(t.fromPos, t.toPos, t.t)
	t.cam.Target = lerpVec(t.fromLook, t.toLook, t.t)
	if done {
		t.active = false
		t.progress = nil
	}
}

func lerpVec(a, b r3.Vector, t float64) r3.Vector {
	return a.Add(b.Sub(a).Mul(t))
}

// --- Framing ---

// Framing offsets and durations for selection-driven camera moves.
var (
	RegionFocusOffset    = r3.Vector{X: 40, Y: -72, Z: 80}
	SubRegionFocusOffset = r3.Vector{X: 20, Y: -36, Z: 50}
)

const (
	OverviewDuration        = 1000 * time.Millisecond
	RegionFocusDuration     = 1000 * time.Millisecond
	SubRegionFocusDuration  = 800 * time.Millisecond
	TierFramingDuration     = 1500 * time.Millisecond
	TierFramingMinDistance  = 80.0
	TierFramingSpanFactor   = 1.8
	TierFramingOffsetFactor = 0.7
)

// FrameExtent returns a camera pose that frames a scene-plane extent given
// by its center and span: distance = max(span*1.8, 80), viewed from the
// south at 45 degrees.
func FrameExtent(cx, cy, span float64) (pos, look r3.Vector) {
	d := math.Max(span*TierFramingSpanFactor, TierFramingMinDistance)
	look = r3.Vector{X: cx, Y: cy}
	pos = r3.Vector{X: cx, Y: cy - d*TierFramingOffsetFactor, Z: d * TierFramingOffsetFactor}
	return pos, look
}
