package geodrill

// syntheticEvent is one queued input event. Screen coordinates are used
// and picked exactly like real pointer input.
type syntheticEvent struct {
	screenX, screenY float64
	pressed          bool
	back             bool
}

// InjectPress queues a left-button press at the given screen coordinates.
// Events are consumed one per frame, in place of real input.
func (s *Scene) InjectPress(x, y float64) {
	s.injectQueue = append(s.injectQueue, syntheticEvent{screenX: x, screenY: y, pressed: true})
}

// InjectRelease queues a pointer release at the given screen coordinates.
func (s *Scene) InjectRelease(x, y float64) {
	s.injectQueue = append(s.injectQueue, syntheticEvent{screenX: x, screenY: y})
}

// InjectClick queues a press followed by a release. Consumes two frames.
func (s *Scene) InjectClick(x, y float64) {
	s.InjectPress(x, y)
	s.InjectRelease(x, y)
}

// InjectBack queues a back request, as if Escape were pressed.
func (s *Scene) InjectBack() {
	s.injectQueue = append(s.injectQueue, syntheticEvent{back: true})
}

// processInjectedInput pops one queued event and feeds it through the
// pointer path. It reports whether an event was consumed.
func (s *Scene) processInjectedInput() bool {
	if len(s.injectQueue) == 0 {
		return false
	}
	evt := s.injectQueue[0]
	copy(s.injectQueue, s.injectQueue[1:])
	s.injectQueue = s.injectQueue[:len(s.injectQueue)-1]

	if evt.back {
		s.Back()
		return true
	}
	s.processPointer(0, evt.screenX, evt.screenY, evt.pressed, MouseButtonLeft)
	return true
}
