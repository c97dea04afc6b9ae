package geodrill

import (
	"image"
	"math"
	"sort"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Render tuning.
const (
	WallShade       = 0.55
	CapOpacity      = 0.92
	EdgeWidth       = 1.2
	CurveWidth      = 1.5
	LabelTextFactor = 0.6
	MarkerRadius    = 0.3 // of the marker's world scale
)

// screenTri is one projected triangle awaiting painter-ordered submission.
type screenTri struct {
	depth float64
	pts   [3][2]float32
	color Color
}

var whiteSubImage *ebiten.Image

// whiteSource returns the interior pixel of a white 3x3 image, the source
// for solid-colored triangles.
func whiteSource() *ebiten.Image {
	if whiteSubImage == nil {
		img := ebiten.NewImage(3, 3)
		img.Fill(ColorWhite.RGBA())
		whiteSubImage = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}
	return whiteSubImage
}

// drawScene renders the particle field, both tiers, curves, markers,
// labels and the status line.
func (s *Scene) drawScene(screen *ebiten.Image) {
	screen.Fill(BackgroundColor.RGBA())
	s.drawParticles(screen)

	s.tris = s.tris[:0]
	meshes := s.visibleMeshes()
	for _, m := range meshes {
		s.appendMeshTriangles(m)
	}
	sort.SliceStable(s.tris, func(i, j int) bool {
		return s.tris[i].depth > s.tris[j].depth
	})
	s.submitTriangles(screen)

	for _, m := range meshes {
		s.drawEdges(screen, m)
	}
	s.drawCurves(screen)
	s.drawMarkers(screen)
	s.drawLabels(screen)
	s.drawStatus(screen)

	s.stats.triangles = len(s.tris)
	s.stats.meshes = len(meshes)
}

func (s *Scene) visibleMeshes() []*RegionMesh {
	s.meshBuf = s.meshBuf[:0]
	for _, tier := range [][]*RegionMesh{s.view.RegionMeshes(), s.view.SubRegionMeshes()} {
		for _, m := range tier {
			if m.Visible && !m.disposed && m.Alpha > 0 {
				s.meshBuf = append(s.meshBuf, m)
			}
		}
	}
	return s.meshBuf
}

// appendMeshTriangles projects m's top cap and side walls.
func (s *Scene) appendMeshTriangles(m *RegionMesh) {
	top, bottom := m.TopZ(), m.BottomZ()
	capColor := m.Color.WithAlpha(m.Color.A * m.Alpha * CapOpacity)
	wallColor := m.Color.Scale(WallShade).WithAlpha(m.Color.A * m.Alpha)

	verts, idx := m.CapTriangles()
	for i := 0; i+2 < len(idx); i += 3 {
		s.appendTri(capColor,
			m.World(verts[idx[i]], top),
			m.World(verts[idx[i+1]], top),
			m.World(verts[idx[i+2]], top))
	}

	walls := func(ring []r2.Point) {
		for i := range ring {
			a, b := ring[i], ring[(i+1)%len(ring)]
			at, bt := m.World(a, top), m.World(b, top)
			ab, bb := m.World(a, bottom), m.World(b, bottom)
			s.appendTri(wallColor, at, bt, bb)
			s.appendTri(wallColor, at, bb, ab)
		}
	}
	walls(m.Outer())
	for _, h := range m.Holes() {
		walls(h)
	}
}

func (s *Scene) appendTri(c Color, a, b, d r3.Vector) {
	var t screenTri
	var depth float64
	for i, p := range [3]r3.Vector{a, b, d} {
		sx, sy, z, ok := s.cam.Project(p)
		if !ok {
			return
		}
		t.pts[i] = [2]float32{float32(sx), float32(sy)}
		depth += z
	}
	t.depth = depth / 3
	t.color = c
	s.tris = append(s.tris, t)
}

// submitTriangles draws every queued triangle in one DrawTriangles32 call.
// Triangles are rasterized in index order, which preserves painter order.
func (s *Scene) submitTriangles(target *ebiten.Image) {
	if len(s.tris) == 0 {
		return
	}
	s.batchVerts = s.batchVerts[:0]
	s.batchInds = s.batchInds[:0]
	for _, t := range s.tris {
		a := float32(clamp01(t.color.A))
		cr := float32(clamp01(t.color.R)) * a
		cg := float32(clamp01(t.color.G)) * a
		cb := float32(clamp01(t.color.B)) * a
		base := uint32(len(s.batchVerts))
		for _, p := range t.pts {
			s.batchVerts = append(s.batchVerts, ebiten.Vertex{
				DstX:   p[0],
				DstY:   p[1],
				SrcX:   1,
				SrcY:   1,
				ColorR: cr,
				ColorG: cg,
				ColorB: cb,
				ColorA: a,
			})
		}
		s.batchInds = append(s.batchInds, base, base+1, base+2)
	}

	var triOp ebiten.DrawTrianglesOptions
	triOp.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	target.DrawTriangles32(s.batchVerts, s.batchInds, whiteSource(), &triOp)
}

// drawEdges outlines the top cap of m.
func (s *Scene) drawEdges(dst *ebiten.Image, m *RegionMesh) {
	clr := m.EdgeColor.WithAlpha(m.EdgeColor.A * m.Alpha).RGBA()
	top := m.TopZ()
	stroke := func(ring []r2.Point) {
		for i := range ring {
			x0, y0, _, ok0 := s.cam.Project(m.World(ring[i], top))
			x1, y1, _, ok1 := s.cam.Project(m.World(ring[(i+1)%len(ring)], top))
			if !ok0 || !ok1 {
				continue
			}
			vector.StrokeLine(dst, float32(x0), float32(y0), float32(x1), float32(y1), EdgeWidth, clr, true)
		}
	}
	stroke(m.Outer())
	for _, h := range m.Holes() {
		stroke(h)
	}
}

func (s *Scene) drawCurves(dst *ebiten.Image) {
	for _, c := range s.view.Labels().Curves() {
		clr := c.Color.RGBA()
		for _, d := range c.Dashes() {
			x0, y0, _, ok0 := s.cam.Project(d[0])
			x1, y1, _, ok1 := s.cam.Project(d[1])
			if !ok0 || !ok1 {
				continue
			}
			vector.StrokeLine(dst, float32(x0), float32(y0), float32(x1), float32(y1), CurveWidth, clr, true)
		}
	}
}

// drawMarkers draws each marker as a disc with a rotated diamond outline.
func (s *Scene) drawMarkers(dst *ebiten.Image) {
	fill := MarkerColor.RGBA()
	edge := HighlightEdgeColor.RGBA()
	for _, mk := range s.view.Labels().Markers() {
		sx, sy, depth, ok := s.cam.Project(mk.Position)
		if !ok {
			continue
		}
		r := mk.Scale * MarkerRadius * s.cam.PixelScale(depth)
		if r < 1 {
			r = 1
		}
		vector.DrawFilledCircle(dst, float32(sx), float32(sy), float32(r), fill, true)

		var pts [4][2]float32
		for i := range pts {
			a := mk.Rotation + float64(i)*math.Pi/2
			sa, ca := math.Sincos(a)
			pts[i] = [2]float32{float32(sx + ca*r*1.6), float32(sy + sa*r*1.6)}
		}
		for i := range pts {
			p, q := pts[i], pts[(i+1)%4]
			vector.StrokeLine(dst, p[0], p[1], q[0], q[1], 1, edge, true)
		}
	}
}

// drawLabels draws every visible label back to front.
func (s *Scene) drawLabels(dst *ebiten.Image) {
	type placed struct {
		l     *Label
		x, y  float64
		depth float64
	}
	var order []placed
	for _, l := range s.view.Labels().Labels() {
		if !l.Visible || l.Grow <= 0 || l.Alpha <= 0 {
			continue
		}
		x, y, d, ok := s.cam.Project(l.Position)
		if !ok {
			continue
		}
		order = append(order, placed{l: l, x: x, y: y, depth: d})
	}
	sort.SliceStable(order, func(i, j int) bool { return order[i].depth > order[j].depth })

	for _, p := range order {
		l := p.l
		ps := s.cam.PixelScale(p.depth)
		ww, wh := l.Size()
		w, h := ww*ps, wh*ps
		if w < 2 || h < 2 {
			continue
		}
		x, y := p.x-w/2, p.y-h/2

		panel := LabelPanelColor
		border := DefaultEdgeColor
		if l.Highlighted {
			panel = HighlightPanelColor
			border = HighlightEdgeColor
		}
		vector.DrawFilledRect(dst, float32(x), float32(y), float32(w), float32(h),
			panel.WithAlpha(panel.A*l.Alpha).RGBA(), true)
		vector.StrokeRect(dst, float32(x), float32(y), float32(w), float32(h), 1,
			border.WithAlpha(border.A*l.Alpha).RGBA(), true)

		if s.font == nil {
			continue
		}
		size := clampRange(h*LabelTextFactor, MinLabelFont, MaxLabelFont)
		tw, th := s.font.MeasureString(l.Text, size)
		if tw > w*0.92 && tw > 0 {
			size = clampRange(size*w*0.92/tw, MinLabelFont, MaxLabelFont)
			tw, th = s.font.MeasureString(l.Text, size)
		}
		op := &text.DrawOptions{}
		op.GeoM.Translate(p.x-tw/2, p.y-th/2)
		op.ColorScale.ScaleAlpha(float32(l.Alpha))
		text.Draw(dst, l.Text, s.font.Face(size), op)
	}
}

func (s *Scene) drawParticles(dst *ebiten.Image) {
	if s.particles == nil {
		return
	}
	clr := s.particles.Color.RGBA()
	size := float32(s.particles.Size)
	for _, p := range s.particles.Positions() {
		sx, sy, _, ok := s.cam.Project(p)
		if !ok {
			continue
		}
		vector.DrawFilledRect(dst, float32(sx)-size/2, float32(sy)-size/2, size, size, clr, false)
	}
}

func (s *Scene) drawStatus(dst *ebiten.Image) {
	if s.font == nil {
		return
	}
	status, _ := s.view.Status()
	if s.view.Level() == LevelSubRegion {
		hint := "Esc: back to " + LevelRegion.String() + " view"
		if status != "" {
			status += "  |  " + hint
		} else {
			status = hint
		}
	}
	if status == "" {
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(16, 12)
	text.Draw(dst, status, s.font.Face(StatusFontSize), op)
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
