package geodrill

import (
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestView(t *testing.T, src DatasetSource, pois POISource) (*ViewController, *manualClock) {
	t.Helper()
	clock := newManualClock()
	tr := NewCameraTransition(NewCamera(800, 600), clock)
	cfg := DefaultViewConfig()
	cfg.Mesh.Rand = testRand()
	v := NewViewController(cfg, src, pois, NewLabelEngine(discardLogger()), tr, discardLogger())
	t.Cleanup(v.Close)
	return v, clock
}

// loadedView returns a controller with the region tier built.
func loadedView(t *testing.T, src *fakeSource, pois POISource) (*ViewController, *manualClock) {
	t.Helper()
	v, clock := newTestView(t, src, pois)
	v.LoadRegions()
	await(t, v)
	if len(v.RegionMeshes()) != 3 {
		t.Fatalf("region meshes = %d, want 3", len(v.RegionMeshes()))
	}
	return v, clock
}

func sortedNames(meshes []*RegionMesh) []string {
	names := meshNames(meshes)
	sort.Strings(names)
	return names
}

// checkInteractive asserts the interactive set is exactly the visible, live
// meshes of the current level.
func checkInteractive(t *testing.T, v *ViewController) {
	t.Helper()
	want := interactiveFor(v.Level(), v.RegionMeshes(), v.SubRegionMeshes())
	if diff := cmp.Diff(sortedNames(want), sortedNames(v.Interactive())); diff != "" {
		t.Errorf("interactive set mismatch (-want +got):\n%s", diff)
	}
	for _, m := range v.Interactive() {
		if m.Level != v.Level() {
			t.Errorf("interactive mesh %q has level %v at level %v", m.Name, m.Level, v.Level())
		}
		if got, ok := v.InteractiveMesh(m.ID); !ok || got != m {
			t.Errorf("InteractiveMesh(%d) missing", m.ID)
		}
	}
}

func TestLoadRegionsBuildsTier(t *testing.T) {
	v, _ := loadedView(t, newFakeSource(), nil)

	if v.Level() != LevelRegion {
		t.Errorf("Level = %v, want region", v.Level())
	}
	if v.Pending() {
		t.Error("Pending after regions applied")
	}
	if got := len(v.Labels().RegionLabels()); got != 3 {
		t.Errorf("region labels = %d, want 3", got)
	}
	for _, m := range v.RegionMeshes() {
		if _, ok := v.Labels().LabelFor(m.ID); !ok {
			t.Errorf("mesh %q has no label", m.Name)
		}
	}
	checkInteractive(t, v)
}

func TestLoadRegionsFailure(t *testing.T) {
	src := newFakeSource()
	src.regionErr = &FetchError{Paths: []string{"/data/province.json"}, Err: errors.New("404")}
	v, _ := newTestView(t, src, nil)
	v.LoadRegions()
	await(t, v)

	status, err := v.Status()
	if !errors.Is(err, ErrFetch) {
		t.Errorf("err = %v, want ErrFetch", err)
	}
	if status != "Failed to load regions" {
		t.Errorf("status = %q", status)
	}
	if len(v.Interactive()) != 0 {
		t.Errorf("interactive = %d, want 0", len(v.Interactive()))
	}
}

func TestDrillDownAndBack(t *testing.T) {
	src := newFakeSource()
	pois := testPOIs()
	v, _ := loadedView(t, src, pois)
	var states []MapState
	v.OnStateChange(func(s MapState) { states = append(states, s) })

	hz := meshNamed(v.Interactive(), "杭州市")
	v.HandleSelect(hz)
	if v.Selection().Selected(LevelRegion) != hz {
		t.Fatal("杭州市 not selected")
	}
	if !v.Pending() {
		t.Fatal("drill-down not pending after selecting an administrative region")
	}
	await(t, v)

	if v.Level() != LevelSubRegion {
		t.Fatalf("Level = %v, want sub-region", v.Level())
	}
	if v.DrilledRegion() != "杭州市" {
		t.Errorf("DrilledRegion = %q", v.DrilledRegion())
	}
	if diff := cmp.Diff([]string{"余杭区", "西湖区"}, sortedNames(v.SubRegionMeshes())); diff != "" {
		t.Errorf("sub-regions mismatch (-want +got):\n%s", diff)
	}
	for _, m := range v.RegionMeshes() {
		if m.Visible {
			t.Errorf("region mesh %q still visible", m.Name)
		}
		if l, ok := v.Labels().LabelFor(m.ID); ok && l.Visible {
			t.Errorf("region label %q still visible", l.Text)
		}
	}
	checkInteractive(t, v)

	if diff := cmp.Diff([]string{"杭州"}, pois.asked); diff != "" {
		t.Errorf("poi queries mismatch (-want +got):\n%s", diff)
	}
	if got := len(v.Labels().Markers()); got != 2 {
		t.Errorf("markers = %d, want 2 (one unresolved)", got)
	}
	if got := len(v.Labels().Curves()); got != 2 {
		t.Errorf("curves = %d, want 2", got)
	}
	status, _ := v.Status()
	if status != "杭州市: 2 sub-regions" {
		t.Errorf("status = %q", status)
	}
	last := states[len(states)-1]
	if last.LevelName != "sub-region" || last.Region != "杭州市" {
		t.Errorf("last state = %+v", last)
	}

	subs := v.SubRegionMeshes()
	v.ReturnToRegion()

	if v.Level() != LevelRegion {
		t.Errorf("Level = %v, want region", v.Level())
	}
	if len(v.SubRegionMeshes()) != 0 {
		t.Errorf("sub-region meshes = %d, want 0", len(v.SubRegionMeshes()))
	}
	for _, m := range subs {
		if !m.IsDisposed() {
			t.Errorf("sub-region %q not disposed", m.Name)
		}
		if _, ok := v.Labels().LabelFor(m.ID); ok {
			t.Errorf("sub-region %q still has a label", m.Name)
		}
	}
	if n := len(v.Labels().Markers()) + len(v.Labels().Curves()) + len(v.Labels().POILabels()); n != 0 {
		t.Errorf("point-of-interest objects left = %d", n)
	}
	if got := len(v.Labels().Labels()); got != 3 {
		t.Errorf("labels = %d, want 3 region labels", got)
	}
	for _, l := range v.Labels().RegionLabels() {
		if !l.Visible || l.Highlighted {
			t.Errorf("label %q visible=%v highlighted=%v", l.Text, l.Visible, l.Highlighted)
		}
	}
	if v.Selection().Selected(LevelRegion) != nil {
		t.Error("region selection survived return")
	}
	if hz.Highlighted() || hz.Color != hz.BaseColor {
		t.Error("杭州市 still highlighted")
	}
	checkInteractive(t, v)
	if s := v.State(); s.LevelName != "region" || s.Region != "" {
		t.Errorf("State = %+v", s)
	}
}

func TestStaleDrillResultDiscarded(t *testing.T) {
	src := newFakeSource()
	src.gate = make(chan struct{})
	v, _ := loadedView(t, src, nil)

	v.HandleSelect(meshNamed(v.Interactive(), "杭州市"))
	v.ReturnToRegion()
	if v.Pending() {
		t.Fatal("Pending after ReturnToRegion")
	}
	close(src.gate)
	await(t, v)

	if v.Level() != LevelRegion {
		t.Errorf("Level = %v, want region", v.Level())
	}
	if len(v.SubRegionMeshes()) != 0 {
		t.Errorf("stale result built %d sub-regions", len(v.SubRegionMeshes()))
	}
	checkInteractive(t, v)
}

func TestNewerDrillSupersedesOlder(t *testing.T) {
	src := newFakeSource()
	src.gate = make(chan struct{})
	v, _ := loadedView(t, src, nil)

	v.HandleSelect(meshNamed(v.Interactive(), "杭州市"))
	v.HandleSelect(meshNamed(v.Interactive(), "宁波市"))
	close(src.gate)
	await(t, v)
	await(t, v)

	if v.DrilledRegion() != "宁波市" {
		t.Errorf("DrilledRegion = %q, want 宁波市", v.DrilledRegion())
	}
	if diff := cmp.Diff([]string{"鄞州区"}, sortedNames(v.SubRegionMeshes())); diff != "" {
		t.Errorf("sub-regions mismatch (-want +got):\n%s", diff)
	}
}

func TestNonAdminSelectSupersedesPendingDrill(t *testing.T) {
	src := newFakeSource()
	src.gate = make(chan struct{})
	v, _ := loadedView(t, src, nil)

	v.HandleSelect(meshNamed(v.Interactive(), "杭州市"))
	zs := meshNamed(v.Interactive(), "舟山群岛")
	v.HandleSelect(zs)
	if v.Pending() {
		t.Error("drill-down still pending after selecting another region")
	}
	close(src.gate)
	await(t, v)

	if v.Level() != LevelRegion {
		t.Errorf("Level = %v, want region", v.Level())
	}
	if v.DrilledRegion() != "" {
		t.Errorf("DrilledRegion = %q, want empty", v.DrilledRegion())
	}
	if n := len(v.SubRegionMeshes()); n != 0 {
		t.Errorf("sub-region meshes = %d, want 0", n)
	}
	if got := v.Selection().Selected(LevelRegion); got != zs {
		t.Errorf("selected region = %v, want 舟山群岛", got)
	}
	if got := v.State().Region; got != "舟山群岛" {
		t.Errorf("State().Region = %q, want 舟山群岛", got)
	}
}

func TestReselectCancelsPendingDrill(t *testing.T) {
	src := newFakeSource()
	src.gate = make(chan struct{})
	v, _ := loadedView(t, src, nil)

	hz := meshNamed(v.Interactive(), "杭州市")
	v.HandleSelect(hz)
	v.HandleSelect(hz)

	if v.Selection().Selected(LevelRegion) != nil {
		t.Error("re-selecting did not deselect")
	}
	if v.Pending() {
		t.Error("drill-down still pending after re-select")
	}
	close(src.gate)
	await(t, v)

	if got := src.subCalls.Load(); got != 1 {
		t.Errorf("sub-region fetches = %d, want 1", got)
	}
	if v.Level() != LevelRegion {
		t.Errorf("Level = %v, want region", v.Level())
	}
}

func TestRequestDrillIgnoresDuplicate(t *testing.T) {
	src := newFakeSource()
	src.gate = make(chan struct{})
	v, _ := loadedView(t, src, nil)

	if !v.RequestDrill("杭州市") {
		t.Fatal("first request not started")
	}
	if v.RequestDrill("杭州市") {
		t.Error("duplicate request started a second load")
	}
	close(src.gate)
	await(t, v)
	if v.Level() != LevelSubRegion {
		t.Errorf("Level = %v, want sub-region", v.Level())
	}
	if v.RequestDrill("宁波市") {
		t.Error("request at sub-region level started a load")
	}
}

func TestDrillFailureKeepsRegionTier(t *testing.T) {
	tests := []struct {
		name       string
		region     string
		subErr     error
		wantErr    error
		wantStatus string
	}{
		{"fetch", "杭州市", &FetchError{Paths: []string{"a", "b"}, Err: errors.New("boom")}, ErrFetch, "Failed to load 杭州市"},
		{"empty", "宁波市", nil, ErrEmptyDataset, "No data for 宁波市"},
		{"unknown region", "温州市", nil, ErrRegionNotFound, "Failed to load 温州市"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newFakeSource()
			src.subErr = tt.subErr
			if tt.name == "empty" {
				src.subRegions = testSubRegions()[:2]
			}
			v, _ := loadedView(t, src, nil)

			v.RequestDrill(tt.region)
			await(t, v)

			status, err := v.Status()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if status != tt.wantStatus {
				t.Errorf("status = %q, want %q", status, tt.wantStatus)
			}
			if v.Level() != LevelRegion || v.Pending() {
				t.Errorf("Level = %v Pending = %v", v.Level(), v.Pending())
			}
			for _, m := range v.RegionMeshes() {
				if !m.Visible {
					t.Errorf("region mesh %q hidden after failure", m.Name)
				}
			}
			checkInteractive(t, v)
		})
	}
}

func TestSelectNonAdministrativeRegion(t *testing.T) {
	v, _ := loadedView(t, newFakeSource(), nil)
	zs := meshNamed(v.Interactive(), "舟山群岛")

	v.HandleSelect(zs)

	if v.Pending() {
		t.Error("non-administrative selection started a drill-down")
	}
	if !zs.Highlighted() {
		t.Error("舟山群岛 not highlighted")
	}
	if !v.transition.Animating() {
		t.Error("camera not framing the selection")
	}
	if l, _ := v.Labels().LabelFor(zs.ID); l == nil || !l.Highlighted {
		t.Error("label not rebuilt highlighted")
	}
}

func TestSubRegionToggle(t *testing.T) {
	v, _ := loadedView(t, newFakeSource(), nil)
	v.RequestDrill("杭州市")
	await(t, v)

	xh := meshNamed(v.Interactive(), "西湖区")
	yh := meshNamed(v.Interactive(), "余杭区")
	v.HandleSelect(xh)
	v.HandleSelect(yh)
	if xh.Highlighted() || !yh.Highlighted() {
		t.Errorf("highlight: 西湖区=%v 余杭区=%v, want false true", xh.Highlighted(), yh.Highlighted())
	}
	if s := v.State(); s.SubRegion != "余杭区" || s.Region != "杭州市" {
		t.Errorf("State = %+v", s)
	}
	v.HandleSelect(yh)
	if yh.Highlighted() || v.Selection().Selected(LevelSubRegion) != nil {
		t.Error("second select did not toggle off")
	}

	// Region meshes are not interactive at this level.
	hz := meshNamed(v.RegionMeshes(), "杭州市")
	v.HandleSelect(hz)
	if v.Level() != LevelSubRegion {
		t.Error("hidden region mesh responded at sub-region level")
	}
}

func TestRepeatedDrillCycles(t *testing.T) {
	v, _ := loadedView(t, newFakeSource(), testPOIs())
	for i := 0; i < 3; i++ {
		region := []string{"杭州市", "宁波市"}[i%2]
		t.Run(fmt.Sprintf("cycle %d", i), func(t *testing.T) {
			v.HandleSelect(meshNamed(v.Interactive(), region))
			await(t, v)
			if v.DrilledRegion() != region {
				t.Fatalf("DrilledRegion = %q, want %q", v.DrilledRegion(), region)
			}
			v.ReturnToRegion()
			if got := len(v.Labels().Labels()); got != 3 {
				t.Errorf("labels after return = %d, want 3", got)
			}
			checkInteractive(t, v)
		})
	}
}

func TestRegisterExternalMeshes(t *testing.T) {
	v, _ := newTestView(t, newFakeSource(), nil)
	proj := NewProjector(CollectPoints(testRegions()), DefaultTargetSpan)
	b := NewMeshBuilder(DefaultMeshOptions())
	m, err := b.Build("杭州市", 0, testRegions()[0].Polygons[0], proj, LevelRegion)
	if err != nil {
		t.Fatal(err)
	}
	sub, err := b.Build("西湖区", 0, testSubRegions()[0].Polygons[0], proj, LevelSubRegion)
	if err != nil {
		t.Fatal(err)
	}
	v.Register(m, sub)

	if diff := cmp.Diff([]string{"杭州市"}, meshNames(v.Interactive())); diff != "" {
		t.Errorf("interactive mismatch (-want +got):\n%s", diff)
	}
}
