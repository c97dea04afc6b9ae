package geodrill

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/hajimehoshi/ebiten/v2"
)

// DefaultScreenshotDir is where queued screenshots are written.
const DefaultScreenshotDir = "screenshots"

// Screenshot queues a labeled capture of the next rendered frame. The PNG is
// written under ScreenshotDir with a timestamped name.
func (s *Scene) Screenshot(label string) {
	s.screenshotQueue = append(s.screenshotQueue, label)
}

// flushScreenshots writes the rendered frame once per queued label.
func (s *Scene) flushScreenshots(screen *ebiten.Image) {
	if len(s.screenshotQueue) == 0 {
		return
	}
	defer func() { s.screenshotQueue = s.screenshotQueue[:0] }()

	dir := s.ScreenshotDir
	if dir == "" {
		dir = DefaultScreenshotDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.logger.Warn("screenshot_failed", "dir", dir, "err", err)
		return
	}

	img := unpremultiply(screen)
	stamp := time.Now().Format("20060102_150405")
	for _, label := range s.screenshotQueue {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s_%s.png", stamp, s.view.Level().String(), sanitizeLabel(label)))
		if err := writePNG(path, img); err != nil {
			s.logger.Warn("screenshot_failed", "path", path, "err", err)
			continue
		}
		s.logger.Info("screenshot", "path", path)
	}
}

// unpremultiply reads screen back into a straight-alpha image.
func unpremultiply(screen *ebiten.Image) *image.NRGBA {
	b := screen.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := make([]byte, 4*w*h)
	screen.ReadPixels(pix)

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(pix); i += 4 {
		r, g, bl, a := pix[i], pix[i+1], pix[i+2], pix[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			bl = uint8(min(int(bl)*255/int(a), 255))
		}
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = r, g, bl, a
	}
	return img
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel keeps letters (any script), digits, '-' and '.', replacing
// everything else with '_'. Region names stay readable in file names.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}, label)
}
