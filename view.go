package geodrill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phanxgames/geodrill/internal/metrics"
)

// ViewConfig configures a ViewController.
type ViewConfig struct {
	// TargetSpan is the scene size each tier's projector fits to.
	TargetSpan float64
	Mesh       MeshOptions
	Classifier AdminClassifier
	Matcher    *Matcher
	// FetchTimeout bounds one drill-down's dataset requests. Zero means no
	// limit beyond the controller's lifetime.
	FetchTimeout time.Duration
}

// DefaultViewConfig returns the standard configuration.
func DefaultViewConfig() ViewConfig {
	m := NewMatcher()
	m.Exclude = ExcludeRegionTier([]string{"市"}, []string{"县", "区"})
	return ViewConfig{
		TargetSpan:   DefaultTargetSpan,
		Mesh:         DefaultMeshOptions(),
		Classifier:   DefaultClassifier,
		Matcher:      m,
		FetchTimeout: 15 * time.Second,
	}
}

type loadKind uint8

const (
	loadRegions loadKind = iota
	loadDrill
)

// drillToken tags an asynchronous load with the request it answers.
type drillToken struct {
	gen    uint64
	region string
}

type loadResult struct {
	kind     loadKind
	token    drillToken
	features []*Feature
	pois     []PointOfInterest
	err      error
}

// ViewController owns the two-level view state machine, every mesh of both
// tiers, and the interactive set. All methods except the internal fetch jobs
// run on the frame loop's goroutine.
type ViewController struct {
	cfg        ViewConfig
	source     DatasetSource
	poiSource  POISource
	logger     *slog.Logger
	labels     *LabelEngine
	selection  *Selection
	transition *CameraTransition
	builder    *MeshBuilder

	level        ViewLevel
	regionMeshes []*RegionMesh
	subMeshes    []*RegionMesh
	interactive  []*RegionMesh
	byID         map[int]*RegionMesh

	gen     uint64
	pending *drillToken
	loading bool
	results chan loadResult
	ctx     context.Context
	cancel  context.CancelFunc
	jobs    sync.WaitGroup

	drilled   string
	status    string
	lastErr   error
	elapsed   float64
	listeners []func(MapState)
}

// NewViewController wires a controller. poiSource may be nil.
func NewViewController(cfg ViewConfig, source DatasetSource, poiSource POISource,
	labels *LabelEngine, transition *CameraTransition, logger *slog.Logger) *ViewController {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TargetSpan <= 0 {
		cfg.TargetSpan = DefaultTargetSpan
	}
	if cfg.Classifier == nil {
		cfg.Classifier = DefaultClassifier
	}
	if cfg.Matcher == nil {
		cfg.Matcher = NewMatcher()
	}
	if cfg.Matcher.Logger == nil {
		cfg.Matcher.Logger = logger
	}
	if cfg.Matcher.OnMatch == nil {
		cfg.Matcher.OnMatch = func(_ string, mode MatchMode) {
			metrics.ContainmentTotal.WithLabelValues(mode.String()).Inc()
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	v := &ViewController{
		cfg:        cfg,
		source:     source,
		poiSource:  poiSource,
		logger:     logger,
		labels:     labels,
		selection:  NewSelection(labels),
		transition: transition,
		builder:    NewMeshBuilder(cfg.Mesh),
		level:      LevelRegion,
		byID:       make(map[int]*RegionMesh),
		results:    make(chan loadResult, 4),
		ctx:        ctx,
		cancel:     cancel,
	}
	v.selection.OnChange = func(ViewLevel, *RegionMesh) { v.publish() }
	return v
}

// --- Queries ---

// Level returns the current view level.
func (v *ViewController) Level() ViewLevel {
	return v.level
}

// Interactive returns the meshes currently eligible for selection. The
// returned slice is replaced, never mutated, on a level change.
func (v *ViewController) Interactive() []*RegionMesh {
	return v.interactive
}

// InteractiveMesh looks up id in the interactive set.
func (v *ViewController) InteractiveMesh(id int) (*RegionMesh, bool) {
	m, ok := v.byID[id]
	return m, ok
}

// RegionMeshes returns the region tier, visible or not.
func (v *ViewController) RegionMeshes() []*RegionMesh {
	return v.regionMeshes
}

// SubRegionMeshes returns the live sub-region tier.
func (v *ViewController) SubRegionMeshes() []*RegionMesh {
	return v.subMeshes
}

// Selection returns the highlight manager.
func (v *ViewController) Selection() *Selection {
	return v.selection
}

// Labels returns the label engine.
func (v *ViewController) Labels() *LabelEngine {
	return v.labels
}

// Pending reports whether a load is in flight.
func (v *ViewController) Pending() bool {
	return v.pending != nil || v.loading
}

// DrilledRegion returns the region whose sub-regions are shown, if any.
func (v *ViewController) DrilledRegion() string {
	return v.drilled
}

// Status returns the user-facing status text and the last load error.
func (v *ViewController) Status() (string, error) {
	return v.status, v.lastErr
}

// State returns the derived state for external panels.
func (v *ViewController) State() MapState {
	s := MapState{
		Level:     v.level,
		LevelName: v.level.String(),
		Status:    v.status,
	}
	if v.lastErr != nil {
		s.Error = v.lastErr.Error()
	}
	if m := v.selection.Selected(LevelRegion); m != nil {
		s.Region = m.Name
	} else if v.drilled != "" {
		s.Region = v.drilled
	}
	if m := v.selection.Selected(LevelSubRegion); m != nil {
		s.SubRegion = m.Name
	}
	return s
}

// OnStateChange registers fn to receive MapState after every change.
func (v *ViewController) OnStateChange(fn func(MapState)) {
	v.listeners = append(v.listeners, fn)
}

func (v *ViewController) publish() {
	s := v.State()
	for _, fn := range v.listeners {
		fn(s)
	}
}

func (v *ViewController) setStatus(status string, err error) {
	v.status = status
	v.lastErr = err
	v.publish()
}

// --- Interactive set ---

// interactiveFor selects the visible, live meshes tagged with level.
func interactiveFor(level ViewLevel, tiers ...[]*RegionMesh) []*RegionMesh {
	var out []*RegionMesh
	for _, tier := range tiers {
		for _, m := range tier {
			if m.Level == level && m.Visible && !m.disposed {
				out = append(out, m)
			}
		}
	}
	return out
}

// recomputeInteractive rebuilds the interactive set from the current level
// and swaps it in whole.
func (v *ViewController) recomputeInteractive() {
	set := interactiveFor(v.level, v.regionMeshes, v.subMeshes)
	byID := make(map[int]*RegionMesh, len(set))
	for _, m := range set {
		byID[m.ID] = m
	}
	v.interactive = set
	v.byID = byID
}

// Register adds externally built meshes to the tier matching their level
// and recomputes the interactive set.
func (v *ViewController) Register(meshes ...*RegionMesh) {
	for _, m := range meshes {
		if m == nil || m.disposed {
			continue
		}
		switch m.Level {
		case LevelRegion:
			v.regionMeshes = append(v.regionMeshes, m)
		case LevelSubRegion:
			v.subMeshes = append(v.subMeshes, m)
		}
	}
	v.recomputeInteractive()
}

// --- Region tier ---

// LoadRegions fetches the region dataset in the background. The tier is
// built when Update applies the result.
func (v *ViewController) LoadRegions() {
	if v.loading {
		return
	}
	v.loading = true
	v.setStatus("Loading regions...", nil)
	v.jobs.Add(1)
	go func() {
		defer v.jobs.Done()
		ctx, cancel := v.jobContext()
		defer cancel()
		features, err := v.source.Regions(ctx)
		v.deliver(loadResult{kind: loadRegions, features: features, err: err})
	}()
}

// BuildRegions replaces the region tier with meshes and labels for
// features. Degenerate ring-groups are logged and skipped.
func (v *ViewController) BuildRegions(features []*Feature) error {
	points := CollectPoints(features)
	if len(points) == 0 {
		return fmt.Errorf("%w: region dataset has no coordinates", ErrEmptyDataset)
	}
	proj := NewProjector(points, v.cfg.TargetSpan)

	meshes := v.buildTier(features, proj, LevelRegion)
	if len(meshes) == 0 {
		return fmt.Errorf("%w: no region could be built", ErrEmptyDataset)
	}

	v.selection.Forget(LevelRegion)
	for _, m := range v.regionMeshes {
		v.labels.ReleaseMesh(m.ID)
		m.Dispose()
	}
	v.regionMeshes = meshes
	if v.level == LevelSubRegion {
		for _, m := range meshes {
			m.Visible = false
		}
	}
	for _, m := range meshes {
		v.labels.PlaceRegionLabel(m, false)
	}
	v.recomputeInteractive()
	v.logger.Info("regions_built", "features", len(features), "meshes", len(meshes))
	return nil
}

func (v *ViewController) buildTier(features []*Feature, proj *Projector, level ViewLevel) []*RegionMesh {
	var meshes []*RegionMesh
	for _, f := range features {
		built, errs := v.builder.BuildFeature(f, proj, level)
		for _, err := range errs {
			metrics.DegenerateGeometryTotal.Inc()
			v.logger.Warn("mesh_skipped", "name", f.Name, "level", level.String(), "err", err)
		}
		meshes = append(meshes, built...)
	}
	return meshes
}

// --- Selection entry point ---

// HandleSelect applies a pointer selection of m. Meshes outside the
// interactive set are ignored. At region level, selecting an
// administrative unit starts a drill-down; re-selecting the selected mesh
// deselects it and abandons its pending drill-down, as does selecting a
// non-administrative mesh.
func (v *ViewController) HandleSelect(m *RegionMesh) {
	if m == nil {
		return
	}
	if _, ok := v.byID[m.ID]; !ok {
		return
	}

	switch m.Level {
	case LevelRegion:
		if v.selection.Selected(LevelRegion) == m {
			v.selection.Deselect(m)
			v.cancelDrill(m.Name)
			v.transition.Start(DefaultCameraPosition, DefaultCameraTarget, OverviewDuration)
			return
		}
		v.selection.Select(m)
		if v.cfg.Classifier.IsAdministrative(m.Name) {
			v.RequestDrill(m.Name)
			return
		}
		if v.pending != nil {
			v.cancelDrill(v.pending.region)
		}
		v.transition.Start(m.Centroid.Add(RegionFocusOffset), m.Centroid, RegionFocusDuration)

	case LevelSubRegion:
		if v.selection.Toggle(m) {
			v.transition.Start(m.Centroid.Add(SubRegionFocusOffset), m.Centroid, SubRegionFocusDuration)
			return
		}
		v.frameSubTier()
	}
}

// --- Drill-down ---

// cancelDrill abandons the pending drill-down for region, if any. Its
// result is discarded when it arrives.
func (v *ViewController) cancelDrill(region string) {
	if v.pending == nil || v.pending.region != region {
		return
	}
	v.logger.Debug("drill_cancelled", "region", region, "gen", v.pending.gen)
	v.gen++
	v.pending = nil
	v.setStatus("", nil)
}

// RequestDrill starts loading the sub-regions of the named region. A
// request for the region already pending is ignored, and a request for a
// different region supersedes it. It reports whether a load started.
func (v *ViewController) RequestDrill(region string) bool {
	if v.level != LevelRegion {
		return false
	}
	if v.pending != nil && v.pending.region == region {
		return false
	}
	v.gen++
	tok := drillToken{gen: v.gen, region: region}
	v.pending = &tok
	metrics.DrillRequestsTotal.Inc()
	v.setStatus(fmt.Sprintf("Loading %s...", region), nil)

	v.jobs.Add(1)
	go func() {
		defer v.jobs.Done()
		v.deliver(v.fetchDrill(tok))
	}()
	return true
}

// fetchDrill runs off the frame loop. It re-fetches the region dataset to
// recover the selected polygon, fetches the fine dataset, and matches.
func (v *ViewController) fetchDrill(tok drillToken) loadResult {
	res := loadResult{kind: loadDrill, token: tok}
	ctx, cancel := v.jobContext()
	defer cancel()

	regions, err := v.source.Regions(ctx)
	if err != nil {
		res.err = err
		return res
	}
	region, ok := FindFeature(regions, tok.region)
	if !ok {
		res.err = fmt.Errorf("%w: %q", ErrRegionNotFound, tok.region)
		return res
	}
	fine, err := v.source.SubRegions(ctx)
	if err != nil {
		res.err = err
		return res
	}
	res.features = v.cfg.Matcher.Match(region, fine)
	if len(res.features) == 0 {
		res.err = fmt.Errorf("%w: no sub-regions inside %q", ErrEmptyDataset, tok.region)
		return res
	}

	if v.poiSource != nil {
		pois, err := v.poiSource.PointsOfInterest(ctx, ShortRegionName(tok.region))
		if err != nil {
			v.logger.Warn("poi_fetch_failed", "region", tok.region, "err", err)
		}
		res.pois = pois
	}
	return res
}

func (v *ViewController) jobContext() (context.Context, context.CancelFunc) {
	if v.cfg.FetchTimeout > 0 {
		return context.WithTimeout(v.ctx, v.cfg.FetchTimeout)
	}
	return context.WithCancel(v.ctx)
}

func (v *ViewController) deliver(res loadResult) {
	select {
	case v.results <- res:
	case <-v.ctx.Done():
	}
}

// Update applies every load result that has arrived. Call once per frame.
func (v *ViewController) Update() {
	for {
		select {
		case res := <-v.results:
			v.apply(res)
		default:
			return
		}
	}
}

// AwaitResult blocks until one load result arrives and applies it. It
// reports false when ctx ends first.
func (v *ViewController) AwaitResult(ctx context.Context) bool {
	select {
	case res := <-v.results:
		v.apply(res)
		return true
	case <-ctx.Done():
		return false
	}
}

func (v *ViewController) apply(res loadResult) {
	switch res.kind {
	case loadRegions:
		v.loading = false
		err := res.err
		if err == nil {
			err = v.BuildRegions(res.features)
		}
		if err != nil {
			v.fail("regions", err)
			return
		}
		v.setStatus("", nil)

	case loadDrill:
		if v.pending == nil || res.token != *v.pending || v.level != LevelRegion {
			metrics.StaleResultsTotal.Inc()
			v.logger.Info("drill_result_discarded", "region", res.token.region, "gen", res.token.gen, "current_gen", v.gen)
			return
		}
		v.pending = nil
		if res.err != nil {
			v.fail(res.token.region, res.err)
			return
		}
		if err := v.commitSubTier(res.token.region, res.features, res.pois); err != nil {
			v.fail(res.token.region, err)
		}
	}
}

// fail surfaces a load error as status text, leaving the scene as it was.
func (v *ViewController) fail(what string, err error) {
	metrics.DrillFailuresTotal.WithLabelValues(failureKind(err)).Inc()
	v.logger.Warn("load_failed", "what", what, "err", err)
	switch {
	case errors.Is(err, ErrEmptyDataset):
		v.setStatus(fmt.Sprintf("No data for %s", what), err)
	default:
		v.setStatus(fmt.Sprintf("Failed to load %s", what), err)
	}
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, ErrFetch):
		return "fetch"
	case errors.Is(err, ErrEmptyDataset):
		return "empty"
	case errors.Is(err, ErrRegionNotFound):
		return "not_found"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "other"
	}
}

// commitSubTier swaps the view to the sub-region level. The new tier is
// built before anything is torn down so a failed build leaves the region
// tier untouched.
func (v *ViewController) commitSubTier(region string, features []*Feature, pois []PointOfInterest) error {
	proj := NewProjector(CollectPoints(features), v.cfg.TargetSpan)
	meshes := v.buildTier(features, proj, LevelSubRegion)
	if len(meshes) == 0 {
		return fmt.Errorf("%w: no sub-region of %q could be built", ErrEmptyDataset, region)
	}

	for _, m := range v.regionMeshes {
		m.Visible = false
		v.labels.SetMeshLabelVisible(m.ID, false)
	}
	v.destroySubTier()

	v.level = LevelSubRegion
	v.drilled = region
	v.subMeshes = meshes
	for _, m := range meshes {
		v.labels.PlaceRegionLabel(m, false)
	}
	v.recomputeInteractive()

	placed := v.labels.PlacePOIs(pois, meshes, v.elapsed)
	for range placed.Unresolved {
		metrics.UnresolvedJoinsTotal.Inc()
	}
	v.logger.Info("subregions_built", "region", region, "features", len(features), "meshes", len(meshes),
		"pois", placed.Placed, "fuzzy", placed.Fuzzy, "fallbacks", placed.Fallbacks, "unresolved", len(placed.Unresolved))

	v.frameSubTier()
	v.setStatus(fmt.Sprintf("%s: %d sub-regions", region, len(features)), nil)
	return nil
}

// frameSubTier points the camera at the sub-region tier's extent.
func (v *ViewController) frameSubTier() {
	if len(v.subMeshes) == 0 {
		return
	}
	b := meshesBounds(v.subMeshes)
	c := b.Center()
	size := b.Size()
	span := size.X
	if size.Y > span {
		span = size.Y
	}
	pos, look := FrameExtent(c.X, c.Y, span)
	v.transition.Start(pos, look, TierFramingDuration)
}

// destroySubTier releases every sub-region mesh, label, marker and curve.
func (v *ViewController) destroySubTier() {
	v.selection.Forget(LevelSubRegion)
	for _, m := range v.subMeshes {
		v.labels.ReleaseMesh(m.ID)
		m.Dispose()
	}
	v.labels.ClearPOIs()
	v.subMeshes = nil
}

// ReturnToRegion leaves the sub-region level: it abandons any pending
// drill-down, destroys the sub-region tier, restores the region tier with
// fresh labels, clears the selection and returns the camera to the
// overview. It does nothing at region level with no load pending.
func (v *ViewController) ReturnToRegion() {
	if v.level == LevelRegion && v.pending == nil {
		return
	}
	v.gen++
	v.pending = nil

	v.destroySubTier()
	v.level = LevelRegion
	v.drilled = ""
	for _, m := range v.regionMeshes {
		m.Visible = true
	}
	v.selection.Clear()
	for _, m := range v.regionMeshes {
		v.labels.PlaceRegionLabel(m, false)
	}
	v.recomputeInteractive()

	v.transition.Start(DefaultCameraPosition, DefaultCameraTarget, OverviewDuration)
	v.setStatus("", nil)
}

// --- Frame step ---

// animate advances mesh and label animations by dt seconds.
func (v *ViewController) animate(dt float32) {
	v.elapsed += float64(dt)
	for _, m := range v.regionMeshes {
		m.update(dt)
	}
	for _, m := range v.subMeshes {
		m.update(dt)
	}
	v.labels.update(dt, v.elapsed)
}

// Close cancels in-flight loads, waits for them, and disposes both tiers.
func (v *ViewController) Close() {
	v.cancel()
	v.jobs.Wait()
	v.destroySubTier()
	for _, m := range v.regionMeshes {
		v.labels.ReleaseMesh(m.ID)
		m.Dispose()
	}
	v.regionMeshes = nil
	v.interactive = nil
	v.byID = map[int]*RegionMesh{}
}

