package geodrill

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

// Label sizing in world units. Heights follow LabelAspect.
const (
	RegionLabelWidth    = 30.0
	HighlightLabelWidth = 52.0
	POILabelWidth       = 35.0
	LabelAspect         = 0.5

	RegionLabelLift    = 20.0
	HighlightLabelLift = 40.0

	RegionLabelOpacity    = 0.85
	HighlightLabelOpacity = 1.0
	POILabelOpacity       = 0.95

	LabelEntranceTime = 0.6 // seconds

	MarkerBaseScale = 12.0
)

// Label is a camera-facing text panel. Width, Height and Opacity are targets;
// Grow and Alpha are the entrance animation's current values.
type Label struct {
	ID          int
	Kind        LabelKind
	Text        string
	Position    r3.Vector
	Width       float64
	Height      float64
	Opacity     float64
	Highlighted bool
	Visible     bool

	Grow  float64
	Alpha float64

	entrance *TweenGroup
	disposed bool
}

// IsDisposed reports whether the label has been destroyed.
func (l *Label) IsDisposed() bool {
	return l.disposed
}

// Size returns the label's current world size.
func (l *Label) Size() (w, h float64) {
	return l.Width * l.Grow, l.Height * l.Grow
}

// Marker is the glyph placed beside a sub-region centroid for one point of
// interest. Scale and Rotation breathe independently of other markers.
type Marker struct {
	ID        int
	Name      string
	Position  r3.Vector
	BaseScale float64
	Scale     float64
	Rotation  float64

	born     float64
	disposed bool
}

// IsDisposed reports whether the marker has been destroyed.
func (mk *Marker) IsDisposed() bool {
	return mk.disposed
}

// breathe sets the marker's scale and rotation for the given scene time.
func (mk *Marker) breathe(elapsed float64) {
	t := elapsed - mk.born
	mk.Scale = mk.BaseScale * (1 + math.Sin(t*2)*0.15)
	mk.Rotation = math.Sin(t*0.5) * 0.1
}

// PlacementConfig tunes point-of-interest label placement.
type PlacementConfig struct {
	// MarkerOffset is added to the owning mesh's centroid.
	MarkerOffset r3.Vector
	// MinSeparation is the distance a label must keep from every occupied
	// position.
	MinSeparation float64
	SearchStep    float64
	SearchRadius  float64
	// Lift raises candidate labels above the marker.
	Lift float64
	// BoundsPadding grows the sub-region extent labels must stay outside of.
	BoundsPadding float64
	// FallbackOffset is the distance beyond the extent's right edge used when
	// the search finds nothing.
	FallbackOffset float64
}

// DefaultPlacementConfig returns the standard placement constants.
func DefaultPlacementConfig() PlacementConfig {
	return PlacementConfig{
		MarkerOffset:   r3.Vector{X: 8, Y: -8, Z: 15},
		MinSeparation:  30,
		SearchStep:     15,
		SearchRadius:   100,
		Lift:           30,
		BoundsPadding:  20,
		FallbackOffset: 30,
	}
}

// searchDirections are tried in order at each radius: east, north, west,
// south, then the diagonals. Diagonals are not normalized.
var searchDirections = [8][2]float64{
	{1, 0}, {0, 1}, {-1, 0}, {0, -1},
	{1, 1}, {-1, 1}, {-1, -1}, {1, -1},
}

// PlacementResult summarizes one PlacePOIs pass.
type PlacementResult struct {
	Placed     int
	Fuzzy      int
	Fallbacks  int
	Unresolved []string
}

// LabelEngine owns every label, marker and curve. Region labels relate to
// their meshes through ID maps, never pointers, so a mesh can be released
// without the label keeping it alive.
type LabelEngine struct {
	Placement PlacementConfig
	Logger    *slog.Logger

	labels  map[int]*Label
	byMesh  map[int]int // mesh ID -> label ID
	owners  map[int]int // label ID -> mesh ID
	markers []*Marker
	curves  []*Curve
	poi     []*Label
	nextID  int
}

// NewLabelEngine creates an engine with the default placement config.
func NewLabelEngine(logger *slog.Logger) *LabelEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &LabelEngine{
		Placement: DefaultPlacementConfig(),
		Logger:    logger,
		labels:    make(map[int]*Label),
		byMesh:    make(map[int]int),
		owners:    make(map[int]int),
	}
}

func (e *LabelEngine) newLabel(kind LabelKind, text string, pos r3.Vector, width, opacity float64) *Label {
	e.nextID++
	l := &Label{
		ID:       e.nextID,
		Kind:     kind,
		Text:     text,
		Position: pos,
		Width:    width,
		Height:   width * LabelAspect,
		Opacity:  opacity,
		Visible:  true,
	}
	l.entrance = TweenLabelIn(l, LabelEntranceTime)
	e.labels[l.ID] = l
	return l
}

// --- Region labels ---

// PlaceRegionLabel disposes any label bound to m and builds a new one at its
// centroid. Highlighted labels sit higher and render larger and more opaque.
func (e *LabelEngine) PlaceRegionLabel(m *RegionMesh, highlighted bool) *Label {
	e.ReleaseMesh(m.ID)

	lift, width, opacity := RegionLabelLift, RegionLabelWidth, RegionLabelOpacity
	if highlighted {
		lift, width, opacity = HighlightLabelLift, HighlightLabelWidth, HighlightLabelOpacity
	}
	pos := m.Centroid
	pos.Z += lift

	l := e.newLabel(LabelRegion, m.Name, pos, width, opacity)
	l.Highlighted = highlighted
	l.Visible = m.Visible
	e.byMesh[m.ID] = l.ID
	e.owners[l.ID] = m.ID
	return l
}

// ReleaseMesh removes the relation for meshID and destroys its label.
func (e *LabelEngine) ReleaseMesh(meshID int) {
	id, ok := e.byMesh[meshID]
	if !ok {
		return
	}
	delete(e.byMesh, meshID)
	delete(e.owners, id)
	if l, ok := e.labels[id]; ok {
		l.disposed = true
		delete(e.labels, id)
	}
}

// LabelFor returns the region label bound to meshID.
func (e *LabelEngine) LabelFor(meshID int) (*Label, bool) {
	id, ok := e.byMesh[meshID]
	if !ok {
		return nil, false
	}
	l, ok := e.labels[id]
	return l, ok
}

// OwnerOf returns the mesh ID a region label is bound to.
func (e *LabelEngine) OwnerOf(labelID int) (int, bool) {
	id, ok := e.owners[labelID]
	return id, ok
}

// SetMeshLabelVisible shows or hides the label bound to meshID.
func (e *LabelEngine) SetMeshLabelVisible(meshID int, visible bool) {
	if l, ok := e.LabelFor(meshID); ok {
		l.Visible = visible
	}
}

// RegionLabels returns every region label ordered by ID.
func (e *LabelEngine) RegionLabels() []*Label {
	out := make([]*Label, 0, len(e.byMesh))
	for _, id := range e.byMesh {
		if l, ok := e.labels[id]; ok {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Labels returns every live label, region and point-of-interest, by ID.
func (e *LabelEngine) Labels() []*Label {
	out := make([]*Label, 0, len(e.labels))
	for _, l := range e.labels {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// --- Points of interest ---

// POILabels returns the point-of-interest labels in placement order.
func (e *LabelEngine) POILabels() []*Label {
	return e.poi
}

// Markers returns the point-of-interest markers in placement order.
func (e *LabelEngine) Markers() []*Marker {
	return e.markers
}

// Curves returns the marker-to-label curves in placement order.
func (e *LabelEngine) Curves() []*Curve {
	return e.curves
}

// ClearPOIs destroys every marker, curve and point-of-interest label.
func (e *LabelEngine) ClearPOIs() {
	for _, mk := range e.markers {
		mk.disposed = true
	}
	for _, c := range e.curves {
		c.Dispose()
	}
	for _, l := range e.poi {
		l.disposed = true
		delete(e.labels, l.ID)
	}
	e.markers = nil
	e.curves = nil
	e.poi = nil
}

// PlacePOIs replaces the current markers with one per point of interest,
// each anchored to the mesh its SubRegion names, and searches a free label
// slot outside the meshes' combined extent. Points of interest whose
// sub-region matches no mesh are logged and skipped.
func (e *LabelEngine) PlacePOIs(pois []PointOfInterest, meshes []*RegionMesh, elapsed float64) PlacementResult {
	e.ClearPOIs()

	var res PlacementResult
	if len(pois) == 0 || len(meshes) == 0 {
		return res
	}
	cfg := e.Placement
	if cfg.SearchStep <= 0 {
		cfg.SearchStep = DefaultPlacementConfig().SearchStep
	}

	occupied := make([]r3.Vector, 0, len(meshes)*2+len(pois)*2)
	for _, m := range meshes {
		if l, ok := e.LabelFor(m.ID); ok {
			occupied = append(occupied, l.Position)
		}
		occupied = append(occupied, m.Centroid.Add(r3.Vector{Z: RegionLabelLift}))
	}

	extent := meshesBounds(meshes)
	for _, m := range meshes {
		extent = extent.AddPoint(r2.Point{X: m.Centroid.X, Y: m.Centroid.Y})
	}
	extent = extent.ExpandedByMargin(cfg.BoundsPadding)

	for _, p := range pois {
		owner, how := FindMeshByName(p.SubRegion, meshes)
		switch how {
		case NameUnresolved:
			err := fmt.Errorf("%w: %q in %q", ErrUnresolvedJoin, p.SubRegion, p.Name)
			e.Logger.Warn("poi_unresolved", "poi", p.Name, "subregion", p.SubRegion, "err", err)
			res.Unresolved = append(res.Unresolved, p.Name)
			continue
		case NameFuzzy:
			e.Logger.Info("poi_fuzzy_match", "poi", p.Name, "subregion", p.SubRegion, "mesh", owner.Name)
			res.Fuzzy++
		}

		e.nextID++
		mk := &Marker{
			ID:        e.nextID,
			Name:      p.Name,
			Position:  owner.Centroid.Add(cfg.MarkerOffset),
			BaseScale: MarkerBaseScale,
			Scale:     MarkerBaseScale,
			born:      elapsed,
		}

		pos, found := findFreeSlot(mk.Position, extent, occupied, cfg)
		if !found {
			res.Fallbacks++
		}

		l := e.newLabel(LabelPOI, p.Name, pos, POILabelWidth, POILabelOpacity)
		e.poi = append(e.poi, l)
		e.markers = append(e.markers, mk)

		c := NewCurve(mk.Position, pos, DefaultCurveLift, DefaultCurveSegments)
		e.nextID++
		c.ID = e.nextID
		e.curves = append(e.curves, c)

		occupied = append(occupied, pos, mk.Position)
		res.Placed++
	}
	return res
}

// findFreeSlot searches outward from start in the eight search directions
// at increasing radii. The first radius with any valid candidate wins, and
// within it the candidate nearest start. A candidate is valid when it lies
// outside extent and farther than MinSeparation from every occupied point.
// When nothing qualifies the label goes FallbackOffset beyond the extent's
// right edge, stepped along y until it is clear.
func findFreeSlot(start r3.Vector, extent r2.Rect, occupied []r3.Vector, cfg PlacementConfig) (r3.Vector, bool) {
	z := start.Z + cfg.Lift
	for radius := cfg.SearchStep; radius <= cfg.SearchRadius; radius += cfg.SearchStep {
		best := r3.Vector{}
		bestDist := math.Inf(1)
		for _, d := range searchDirections {
			cand := r3.Vector{X: start.X + d[0]*radius, Y: start.Y + d[1]*radius, Z: z}
			if extent.ContainsPoint(r2.Point{X: cand.X, Y: cand.Y}) {
				continue
			}
			if !clearOf(cand, occupied, cfg.MinSeparation) {
				continue
			}
			if dist := cand.Distance(start); dist < bestDist {
				best, bestDist = cand, dist
			}
		}
		if !math.IsInf(bestDist, 1) {
			return best, true
		}
	}

	cand := r3.Vector{X: extent.X.Hi + cfg.FallbackOffset, Y: start.Y, Z: z}
	step := cfg.MinSeparation + 1
	for i := 0; i < 1000 && !clearOf(cand, occupied, cfg.MinSeparation); i++ {
		cand.Y -= step
	}
	return cand, false
}

func clearOf(p r3.Vector, occupied []r3.Vector, minDist float64) bool {
	for _, o := range occupied {
		if p.Distance(o) <= minDist {
			return false
		}
	}
	return true
}

// update advances label entrances and marker breathing.
func (e *LabelEngine) update(dt float32, elapsed float64) {
	for _, l := range e.labels {
		if l.entrance != nil {
			l.entrance.Update(dt)
			if l.entrance.Done {
				l.entrance = nil
			}
		}
	}
	for _, mk := range e.markers {
		mk.breathe(elapsed)
	}
}

// FinishEntrances jumps every label entrance to its end state.
func (e *LabelEngine) FinishEntrances() {
	for _, l := range e.labels {
		l.entrance.Finish()
		l.entrance = nil
	}
}
