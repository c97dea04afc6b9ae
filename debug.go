package geodrill

import (
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// debugStats holds per-frame timing and geometry counts. Only populated
// when the scene is in debug mode.
type debugStats struct {
	updateTime time.Duration
	drawTime   time.Duration
	meshes     int
	triangles  int
	labels     int
	markers    int
}

// debugLog writes the frame's stats at debug level.
func (s *Scene) debugLog() {
	if !s.debug {
		return
	}
	st := s.stats
	s.logger.Debug("frame",
		"update", st.updateTime,
		"draw", st.drawTime,
		"meshes", st.meshes,
		"triangles", st.triangles,
		"labels", st.labels,
		"markers", st.markers,
		"level", s.view.Level().String(),
		"interactive", len(s.view.Interactive()),
		"animating", s.transition.Animating(),
	)
}

// drawDebugOverlay prints FPS, TPS and counts in the bottom-left corner.
func (s *Scene) drawDebugOverlay(dst *ebiten.Image) {
	msg := fmt.Sprintf("FPS: %.1f  TPS: %.1f\nmeshes: %d  tris: %d  labels: %d",
		ebiten.ActualFPS(), ebiten.ActualTPS(), s.stats.meshes, s.stats.triangles, s.stats.labels)
	ebitenutil.DebugPrintAt(dst, msg, 8, int(s.cam.Height)-40)
}
