package geodrill

import "github.com/hajimehoshi/ebiten/v2"

// RunConfig configures the window Run opens.
type RunConfig struct {
	Title  string
	Width  int
	Height int
	// Debug enables per-frame stats logging and the FPS overlay.
	Debug bool
}

// Run opens a resizable window, starts loading the region tier and blocks
// until the window closes. The scene is closed on return.
func Run(s *Scene, cfg RunConfig) error {
	if cfg.Width > 0 && cfg.Height > 0 {
		ebiten.SetWindowSize(cfg.Width, cfg.Height)
	}
	if cfg.Title != "" {
		ebiten.SetWindowTitle(cfg.Title)
	}
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	s.SetDebugMode(cfg.Debug)
	s.Start()
	defer s.Close()
	return ebiten.RunGame(s)
}
