package geodrill

import (
	"encoding/json"
	"fmt"

	"github.com/golang/geo/r2"
)

// scriptStep is one action of a scripted session.
type scriptStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	Target string  `json:"target,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

type script struct {
	Steps []scriptStep `json:"steps"`
}

// ScriptRunner replays a JSON session one step per frame: clicks at screen
// positions or on named meshes, back requests, waits and screenshots.
//
//	{"steps": [
//	  {"action": "settle"},
//	  {"action": "select", "target": "杭州市"},
//	  {"action": "settle"},
//	  {"action": "screenshot", "label": "drilled"},
//	  {"action": "back"}
//	]}
type ScriptRunner struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	settling  bool
	done      bool
	missed    []string
}

// LoadScript parses a session script.
func LoadScript(data []byte) (*ScriptRunner, error) {
	var sc script
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("parse script: no steps")
	}
	for i, st := range sc.Steps {
		switch st.Action {
		case "click", "select", "back", "wait", "settle", "screenshot":
		default:
			return nil, fmt.Errorf("parse script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &ScriptRunner{steps: sc.Steps}, nil
}

// SetScript attaches a runner. It is stepped from Update before input.
func (s *Scene) SetScript(r *ScriptRunner) {
	s.script = r
}

// Done reports whether every step has run.
func (r *ScriptRunner) Done() bool {
	return r.done
}

// Missed returns the select targets that named no interactive mesh.
func (r *ScriptRunner) Missed() []string {
	return r.missed
}

// step advances the runner by one frame.
func (r *ScriptRunner) step(s *Scene) {
	if r.done || len(s.injectQueue) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.settling {
		if s.view.Pending() || s.transition.Animating() {
			return
		}
		r.settling = false
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++
	switch st.Action {
	case "click":
		s.InjectClick(st.X, st.Y)
	case "select":
		x, y, ok := s.meshScreenPoint(st.Target)
		if !ok {
			s.logger.Warn("script_target_missing", "target", st.Target)
			r.missed = append(r.missed, st.Target)
			break
		}
		s.InjectClick(x, y)
	case "back":
		s.InjectBack()
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1
		}
	case "settle":
		r.settling = true
	case "screenshot":
		s.Screenshot(st.Label)
	}
}

// meshScreenPoint returns the screen position of the top-cap centroid of
// the first interactive mesh named name.
func (s *Scene) meshScreenPoint(name string) (x, y float64, ok bool) {
	for _, m := range s.view.Interactive() {
		if m.Name != name {
			continue
		}
		c := r2.Point{X: m.Centroid.X, Y: m.Centroid.Y}
		x, y, _, ok = s.cam.Project(m.World(c, m.TopZ()))
		return x, y, ok
	}
	return 0, 0, false
}
