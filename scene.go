package geodrill

import (
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/geodrill/internal/metrics"
)

// MaxFrameStep caps the animation step so a stalled frame does not skip
// whole animations.
const MaxFrameStep = 100 * time.Millisecond

// SceneConfig configures a Scene.
type SceneConfig struct {
	Width, Height int
	View          ViewConfig
	// Font draws labels and status text. Nil disables text.
	Font *TTFFont
	// Clock drives every animation. Nil uses the system clock.
	Clock     Clock
	Logger    *slog.Logger
	Particles int
	Rand      *rand.Rand
}

// DefaultSceneConfig returns a 1280x800 scene with the default view.
func DefaultSceneConfig() SceneConfig {
	return SceneConfig{
		Width:     1280,
		Height:    800,
		View:      DefaultViewConfig(),
		Particles: DefaultParticleCount,
	}
}

// Scene is the top-level object: it owns the camera, the view controller,
// the picker and the background, and implements ebiten.Game.
type Scene struct {
	// ScreenshotDir is where Screenshot writes. Empty uses
	// DefaultScreenshotDir.
	ScreenshotDir string

	logger *slog.Logger
	clock  Clock
	last   time.Time
	ticked bool
	debug  bool

	cam        *Camera
	transition *CameraTransition
	view       *ViewController
	picker     *Picker
	particles  *ParticleField
	font       *TTFFont

	// Input state
	handlers     handlerRegistry
	pointers     [maxPointers]pointerState
	touchMap     [maxPointers]ebiten.TouchID
	touchUsed    [maxPointers]bool
	prevTouchIDs []ebiten.TouchID
	injectQueue  []syntheticEvent
	script       *ScriptRunner

	screenshotQueue []string

	// Render state
	tris       []screenTri
	batchVerts []ebiten.Vertex
	batchInds  []uint32
	meshBuf    []*RegionMesh
	stats      debugStats
}

// NewScene wires a scene over source. pois may be nil. Call Start to load
// the region tier.
func NewScene(cfg SceneConfig, source DatasetSource, pois POISource) *Scene {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 1280, 800
	}

	cam := NewCamera(float64(cfg.Width), float64(cfg.Height))
	transition := NewCameraTransition(cam, clock)
	labels := NewLabelEngine(logger)
	if cfg.View.Mesh.Rand == nil {
		cfg.View.Mesh.Rand = cfg.Rand
	}
	view := NewViewController(cfg.View, source, pois, labels, transition, logger)

	s := &Scene{
		logger:     logger,
		clock:      clock,
		cam:        cam,
		transition: transition,
		view:       view,
		picker:     NewPicker(cam, labels),
		font:       cfg.Font,
	}
	if cfg.Particles > 0 {
		s.particles = NewParticleField(cfg.Particles, DefaultParticleRadius, cfg.Rand)
	}
	return s
}

// Start begins loading the region tier.
func (s *Scene) Start() {
	s.view.LoadRegions()
}

// Camera returns the scene camera.
func (s *Scene) Camera() *Camera {
	return s.cam
}

// Transition returns the camera transition controller.
func (s *Scene) Transition() *CameraTransition {
	return s.transition
}

// View returns the view controller.
func (s *Scene) View() *ViewController {
	return s.view
}

// Particles returns the background field, or nil.
func (s *Scene) Particles() *ParticleField {
	return s.particles
}

// OnStateChange registers fn to receive the map state after every change.
func (s *Scene) OnStateChange(fn func(MapState)) {
	s.view.OnStateChange(fn)
}

// SetDebugMode enables per-frame stats logging and the FPS overlay.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
}

// Update applies finished loads, processes input, and advances every
// animation. Injected events replace real input for the frame they are
// consumed in.
func (s *Scene) Update() error {
	t0 := time.Now()
	s.view.Update()
	if s.script != nil {
		s.script.step(s)
	}
	if !s.processInjectedInput() {
		s.pollInput()
	}
	s.advance()

	elapsed := time.Since(t0)
	metrics.FrameDurationMs.Observe(float64(elapsed.Microseconds()) / 1000)
	if s.debug {
		s.stats.updateTime = elapsed
	}
	return nil
}

// tick runs one frame without polling real devices.
func (s *Scene) tick() {
	s.view.Update()
	if s.script != nil {
		s.script.step(s)
	}
	s.processInjectedInput()
	s.advance()
}

// advance steps the camera, mesh and label animations and the background
// by the clock time since the previous frame.
func (s *Scene) advance() {
	now := s.clock.Now()
	var dt time.Duration
	if s.ticked {
		dt = now.Sub(s.last)
	}
	s.last = now
	s.ticked = true
	if dt < 0 {
		dt = 0
	}
	if dt > MaxFrameStep {
		dt = MaxFrameStep
	}

	s.transition.Update()
	s.view.animate(float32(dt.Seconds()))
	if s.particles != nil {
		s.particles.update()
	}
}

// Draw renders the scene.
func (s *Scene) Draw(screen *ebiten.Image) {
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}

	s.drawScene(screen)

	if s.debug {
		s.stats.drawTime = time.Since(t0)
		s.stats.labels = len(s.view.Labels().Labels())
		s.stats.markers = len(s.view.Labels().Markers())
		s.drawDebugOverlay(screen)
		s.debugLog()
	}
	s.flushScreenshots(screen)
}

// Layout adopts the window size so the view resizes with the window.
func (s *Scene) Layout(outsideWidth, outsideHeight int) (int, int) {
	s.cam.SetViewport(float64(outsideWidth), float64(outsideHeight))
	return outsideWidth, outsideHeight
}

// Close cancels background loads and disposes every mesh and label.
func (s *Scene) Close() {
	s.view.Close()
}
