package geodrill

// Selection emphasis.
const (
	HighlightRaise = 15.0
	PulseDuration  = 0.3 // seconds
)

// Selection tracks at most one highlighted mesh per view level and applies
// or restores the highlight appearance.
type Selection struct {
	labels   *LabelEngine
	selected map[ViewLevel]*RegionMesh

	// OnChange observes every select or deselect. m is nil on deselect.
	OnChange func(level ViewLevel, m *RegionMesh)
}

// NewSelection creates an empty selection that re-creates labels through
// labels on every highlight change.
func NewSelection(labels *LabelEngine) *Selection {
	return &Selection{
		labels:   labels,
		selected: make(map[ViewLevel]*RegionMesh),
	}
}

// Selected returns the highlighted mesh at level, or nil.
func (s *Selection) Selected(level ViewLevel) *RegionMesh {
	return s.selected[level]
}

// Select highlights m, first restoring any other mesh highlighted at the
// same level. Selecting the already-selected mesh changes nothing.
func (s *Selection) Select(m *RegionMesh) {
	if m == nil || m.disposed {
		return
	}
	prev := s.selected[m.Level]
	if prev == m {
		return
	}
	if prev != nil {
		s.restore(prev)
	}

	s.selected[m.Level] = m
	m.highlighted = true
	m.Color = HighlightFillColor
	m.EdgeColor = HighlightEdgeColor
	m.pulse = TweenRaise(m, HighlightRaise, PulseDuration)
	if s.labels != nil {
		s.labels.PlaceRegionLabel(m, true)
	}
	if s.OnChange != nil {
		s.OnChange(m.Level, m)
	}
}

// Deselect restores m if it is the highlighted mesh at its level.
func (s *Selection) Deselect(m *RegionMesh) {
	if m == nil || s.selected[m.Level] != m {
		return
	}
	delete(s.selected, m.Level)
	s.restore(m)
	if s.OnChange != nil {
		s.OnChange(m.Level, nil)
	}
}

// Toggle deselects m when it is selected and selects it otherwise. It
// reports whether m is selected afterwards.
func (s *Selection) Toggle(m *RegionMesh) bool {
	if m == nil {
		return false
	}
	if s.selected[m.Level] == m {
		s.Deselect(m)
		return false
	}
	s.Select(m)
	return true
}

// Clear restores every highlighted mesh at every level.
func (s *Selection) Clear() {
	for _, level := range []ViewLevel{LevelRegion, LevelSubRegion} {
		if m := s.selected[level]; m != nil {
			s.Deselect(m)
		}
	}
}

// Forget drops the selection at level without touching the mesh, used when
// the mesh is about to be destroyed.
func (s *Selection) Forget(level ViewLevel) {
	delete(s.selected, level)
}

// restore returns m to its base appearance and rest height and rebuilds its
// label at normal size.
func (s *Selection) restore(m *RegionMesh) {
	m.highlighted = false
	m.Color = m.BaseColor
	m.EdgeColor = m.BaseEdgeColor
	m.pulse = nil
	m.Z = 0
	if s.labels != nil && !m.disposed {
		s.labels.PlaceRegionLabel(m, false)
	}
}
