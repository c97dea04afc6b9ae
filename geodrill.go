package geodrill

import "image/color"

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at render submission time.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default label text color.
var ColorWhite = Color{1, 1, 1, 1}

// ColorHex converts a 0xRRGGBB value to an opaque Color.
func ColorHex(hex uint32) Color {
	return Color{
		R: float64((hex>>16)&0xff) / 255,
		G: float64((hex>>8)&0xff) / 255,
		B: float64(hex&0xff) / 255,
		A: 1,
	}
}

// WithAlpha returns c with its alpha replaced.
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

// Scale multiplies the RGB components by f, leaving alpha untouched.
func (c Color) Scale(f float64) Color {
	return Color{R: c.R * f, G: c.G * f, B: c.B * f, A: c.A}
}

// RGBA converts c to a premultiplied color.RGBA.
func (c Color) RGBA() color.RGBA {
	a := clamp01(c.A)
	return color.RGBA{
		R: uint8(clamp01(c.R)*a*255 + 0.5),
		G: uint8(clamp01(c.G)*a*255 + 0.5),
		B: uint8(clamp01(c.B)*a*255 + 0.5),
		A: uint8(a*255 + 0.5),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Default palette for meshes, labels, and point-of-interest indicators.
var (
	DefaultFillColor    = ColorHex(0x0e5de8)
	DefaultEdgeColor    = ColorHex(0x7cf0ff)
	HighlightFillColor  = ColorHex(0xf59e0b)
	HighlightEdgeColor  = ColorHex(0xfbbf24)
	CurveColor          = ColorHex(0xffd700).WithAlpha(0.8)
	MarkerColor         = ColorHex(0xffd700)
	LabelPanelColor     = Color{R: 0.03, G: 0.09, B: 0.2, A: 1}
	HighlightPanelColor = Color{R: 0.35, G: 0.2, B: 0.02, A: 1}
	BackgroundColor     = ColorHex(0x020617)
	ParticleColor       = ColorHex(0x38bdf8)
)

// ViewLevel identifies one of the two resolution tiers.
type ViewLevel uint8

const (
	LevelRegion    ViewLevel = iota // coarse administrative units
	LevelSubRegion                  // subdivisions of one selected region
)

// String returns "region" or "sub-region".
func (l ViewLevel) String() string {
	switch l {
	case LevelRegion:
		return "region"
	case LevelSubRegion:
		return "sub-region"
	default:
		return "unknown"
	}
}

// LabelKind distinguishes region name labels from point-of-interest labels.
type LabelKind uint8

const (
	LabelRegion LabelKind = iota // bound 1:1 to a RegionMesh
	LabelPOI                     // bound to a Marker and a Curve
)

// MapState is the derived state published to external panels whenever the
// view level, selection, or status text changes.
type MapState struct {
	Level     ViewLevel `json:"-"`
	LevelName string    `json:"level"`
	Region    string    `json:"region,omitempty"`
	SubRegion string    `json:"subRegion,omitempty"`
	Status    string    `json:"status,omitempty"`
	Error     string    `json:"error,omitempty"`
}
