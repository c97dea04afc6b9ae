package geodrill

import (
	"bytes"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

// Font sizes in pixels.
const (
	StatusFontSize = 16.0
	MinLabelFont   = 9.0
	MaxLabelFont   = 28.0
)

// TTFFont wraps a text/v2 face source so label text can be drawn at any
// size.
type TTFFont struct {
	source *text.GoTextFaceSource
	faces  map[int]*text.GoTextFace
}

// LoadTTFFont parses TrueType or OpenType data.
func LoadTTFFont(data []byte) (*TTFFont, error) {
	source, err := text.NewGoTextFaceSource(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("geodrill: failed to parse font data: %w", err)
	}
	return &TTFFont{source: source, faces: make(map[int]*text.GoTextFace)}, nil
}

// LoadFontFile reads a font from path. An empty path loads DefaultFont.
// Region names are usually CJK, which the default font does not cover.
func LoadFontFile(path string) (*TTFFont, error) {
	if path == "" {
		return DefaultFont()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("geodrill: read font: %w", err)
	}
	return LoadTTFFont(data)
}

// DefaultFont returns Go Regular.
func DefaultFont() (*TTFFont, error) {
	return LoadTTFFont(goregular.TTF)
}

// Face returns a face of the given pixel size, rounded to whole pixels so
// faces can be reused across frames.
func (f *TTFFont) Face(size float64) *text.GoTextFace {
	px := int(size + 0.5)
	if px < 1 {
		px = 1
	}
	if face, ok := f.faces[px]; ok {
		return face
	}
	face := &text.GoTextFace{Source: f.source, Size: float64(px)}
	f.faces[px] = face
	return face
}

// MeasureString returns the width and height of s at size.
func (f *TTFFont) MeasureString(s string, size float64) (width, height float64) {
	face := f.Face(size)
	m := face.Metrics()
	return text.Measure(s, face, m.HAscent+m.HDescent+m.HLineGap)
}
