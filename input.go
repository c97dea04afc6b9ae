package geodrill

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const maxPointers = 10 // pointer 0 = mouse, 1-9 = touch

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
)

// EventType identifies a kind of scene callback.
type EventType uint8

const (
	EventPointerDown EventType = iota // every press, hit or not
	EventSelect                       // a press dispatched to an interactive mesh
	EventBack                         // a request to leave the sub-region level
)

// PointerContext describes one pointer press.
type PointerContext struct {
	PointerID        int
	ScreenX, ScreenY float64
	Button           MouseButton
	// Hit is the pick result; its Kind is HitNone on a miss.
	Hit Hit
	// Gated is true when the press was ignored because the camera was moving.
	Gated bool
}

type pointerState struct {
	down bool
	x, y float64
}

type pointerHandler struct {
	id uint32
	fn func(PointerContext)
}

type selectHandler struct {
	id uint32
	fn func(*RegionMesh)
}

type backHandler struct {
	id uint32
	fn func()
}

type handlerRegistry struct {
	pointerDown []pointerHandler
	selected    []selectHandler
	back        []backHandler
	nextID      uint32
}

// CallbackHandle allows removing a registered scene callback.
type CallbackHandle struct {
	id    uint32
	reg   *handlerRegistry
	event EventType
}

// Remove unregisters the callback.
func (h CallbackHandle) Remove() {
	if h.reg == nil {
		return
	}
	switch h.event {
	case EventPointerDown:
		h.reg.pointerDown = removeByID(h.reg.pointerDown, h.id, func(p pointerHandler) uint32 { return p.id })
	case EventSelect:
		h.reg.selected = removeByID(h.reg.selected, h.id, func(p selectHandler) uint32 { return p.id })
	case EventBack:
		h.reg.back = removeByID(h.reg.back, h.id, func(p backHandler) uint32 { return p.id })
	}
}

func removeByID[T any](s []T, id uint32, key func(T) uint32) []T {
	for i, h := range s {
		if key(h) == id {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

// OnPointerDown registers fn for every pointer press.
func (s *Scene) OnPointerDown(fn func(PointerContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.pointerDown = append(s.handlers.pointerDown, pointerHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventPointerDown}
}

// OnSelect registers fn for presses that reach an interactive mesh.
func (s *Scene) OnSelect(fn func(*RegionMesh)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.selected = append(s.handlers.selected, selectHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventSelect}
}

// OnBack registers fn for accepted back requests.
func (s *Scene) OnBack(fn func()) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.back = append(s.handlers.back, backHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventBack}
}

// pollInput reads the real mouse, touch and keyboard state.
func (s *Scene) pollInput() {
	s.processMousePointer()
	s.processTouchPointers()
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		s.Back()
	}
}

func (s *Scene) processMousePointer() {
	mx, my := ebiten.CursorPosition()

	var pressed bool
	var button MouseButton
	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	middle := ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)
	if left || right || middle {
		pressed = true
		switch {
		case left:
			button = MouseButtonLeft
		case right:
			button = MouseButtonRight
		default:
			button = MouseButtonMiddle
		}
	}
	s.processPointer(0, float64(mx), float64(my), pressed, button)
}

func (s *Scene) processTouchPointers() {
	touchIDs := ebiten.AppendTouchIDs(s.prevTouchIDs[:0])
	s.prevTouchIDs = touchIDs

	var active [maxPointers]bool
	for _, tid := range touchIDs {
		slot := s.touchSlot(tid)
		if slot < 0 {
			continue
		}
		active[slot] = true
		tx, ty := ebiten.TouchPosition(tid)
		s.processPointer(slot, float64(tx), float64(ty), true, MouseButtonLeft)
	}

	for i := 1; i < maxPointers; i++ {
		if s.touchUsed[i] && !active[i] {
			ps := &s.pointers[i]
			s.processPointer(i, ps.x, ps.y, false, MouseButtonLeft)
			s.touchUsed[i] = false
			s.touchMap[i] = 0
		}
	}
}

// touchSlot maps a touch to a pointer slot (1-9), or -1 when all are taken.
func (s *Scene) touchSlot(tid ebiten.TouchID) int {
	for i := 1; i < maxPointers; i++ {
		if s.touchUsed[i] && s.touchMap[i] == tid {
			return i
		}
	}
	for i := 1; i < maxPointers; i++ {
		if !s.touchUsed[i] {
			s.touchUsed[i] = true
			s.touchMap[i] = tid
			return i
		}
	}
	return -1
}

// processPointer tracks one pointer and fires on the press edge.
func (s *Scene) processPointer(pointerID int, sx, sy float64, pressed bool, button MouseButton) {
	ps := &s.pointers[pointerID]
	wasDown := ps.down
	ps.down = pressed
	ps.x, ps.y = sx, sy
	if pressed && !wasDown {
		s.pointerDown(pointerID, sx, sy, button)
	}
}

// pointerDown picks under the pointer and dispatches a hit to the view.
// Presses are ignored while the camera is moving.
func (s *Scene) pointerDown(pointerID int, sx, sy float64, button MouseButton) {
	ctx := PointerContext{PointerID: pointerID, ScreenX: sx, ScreenY: sy, Button: button}
	if s.transition.Animating() {
		ctx.Gated = true
		s.logger.Debug("input_gated", "x", sx, "y", sy)
		s.firePointerDown(ctx)
		return
	}

	hit, ok := s.picker.Pick(sx, sy, s.view)
	if ok {
		ctx.Hit = hit
	}
	s.firePointerDown(ctx)
	if !ok || button != MouseButtonLeft {
		return
	}

	s.logger.Debug("pick", "mesh", hit.Mesh.Name, "id", hit.Mesh.ID, "via_label", hit.Kind == HitLabel)
	s.view.HandleSelect(hit.Mesh)
	for _, h := range s.handlers.selected {
		h.fn(hit.Mesh)
	}
}

func (s *Scene) firePointerDown(ctx PointerContext) {
	for _, h := range s.handlers.pointerDown {
		h.fn(ctx)
	}
}

// Back returns from the sub-region level to the region level. It is
// ignored while the camera is moving.
func (s *Scene) Back() {
	if s.transition.Animating() {
		s.logger.Debug("input_gated", "action", "back")
		return
	}
	if s.view.Level() == LevelRegion && !s.view.Pending() {
		return
	}
	s.view.ReturnToRegion()
	for _, h := range s.handlers.back {
		h.fn()
	}
}
