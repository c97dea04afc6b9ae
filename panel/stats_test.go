package panel

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/phanxgames/geodrill"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

var pois = []geodrill.PointOfInterest{
	{Name: "避暑山庄", Region: "承德", SubRegion: "双桥区", Grade: Grade5A},
	{Name: "金山岭长城", Region: "承德", SubRegion: "滦平县", Grade: Grade5A},
	{Name: "普宁寺", Region: "承德", SubRegion: "双桥区", Grade: Grade4A},
	{Name: "磬锤峰", Region: "承德", SubRegion: "双桥区", Grade: Grade4A},
	{Name: "塞罕坝", Region: "承德", SubRegion: "围场县", Grade: GradeNature},
	{Name: "山海关", Region: "秦皇岛", SubRegion: "山海关区", Grade: Grade5A},
	{Name: "老龙头", Region: "秦皇岛", SubRegion: "山海关区", Grade: Grade4A},
	{Name: "西柏坡", Region: "石家庄", SubRegion: "平山县", Grade: Grade5A},
}

func TestStatsProvinceDefault(t *testing.T) {
	s := Stats(pois, "", "")
	if s.Scope != ScopeProvince {
		t.Errorf("Scope = %q, want %q", s.Scope, ScopeProvince)
	}
	if s.Count5A != 4 || s.Count4A != 3 || s.Total != 7 {
		t.Errorf("counts = %d/%d/%d, want 4/3/7", s.Count5A, s.Count4A, s.Total)
	}
	if !approxEqual(s.Percent5A, 400.0/7, 1e-9) {
		t.Errorf("Percent5A = %v, want %v", s.Percent5A, 400.0/7)
	}
	want := []Bar{
		{Label: "承德", A5: 2, A4: 2, Total: 4},
		{Label: "秦皇岛", A5: 1, A4: 1, Total: 2},
		{Label: "石家庄", A5: 1, A4: 0, Total: 1},
	}
	if diff := cmp.Diff(want, s.Series); diff != "" {
		t.Errorf("Series mismatch (-want +got):\n%s", diff)
	}
}

func TestStatsRegionScope(t *testing.T) {
	s := Stats(pois, "承德市", "")
	if s.Scope != ScopeRegion {
		t.Errorf("Scope = %q, want %q", s.Scope, ScopeRegion)
	}
	if s.Count5A != 2 || s.Count4A != 2 || s.Total != 4 {
		t.Errorf("counts = %d/%d/%d, want 2/2/4", s.Count5A, s.Count4A, s.Total)
	}
	if len(s.Records) != 5 {
		t.Errorf("Records = %d, want 5 including landmarks", len(s.Records))
	}
	want := []Bar{
		{Label: "双桥区", A5: 1, A4: 2, Total: 3},
		{Label: "滦平县", A5: 1, A4: 0, Total: 1},
	}
	if diff := cmp.Diff(want, s.Series); diff != "" {
		t.Errorf("Series mismatch (-want +got):\n%s", diff)
	}
}

func TestStatsSubRegionScope(t *testing.T) {
	s := Stats(pois, "承德市", "双桥区")
	if s.Scope != ScopeSubRegion {
		t.Errorf("Scope = %q, want %q", s.Scope, ScopeSubRegion)
	}
	if s.Count5A != 1 || s.Count4A != 2 {
		t.Errorf("counts = %d/%d, want 1/2", s.Count5A, s.Count4A)
	}
	if !approxEqual(s.Percent4A, 200.0/3, 1e-9) {
		t.Errorf("Percent4A = %v, want %v", s.Percent4A, 200.0/3)
	}
	// The series still compares every sub-region of the region.
	if len(s.Series) != 2 {
		t.Errorf("Series = %d bars, want 2", len(s.Series))
	}
}

func TestStatsUnknownRegionFallsBack(t *testing.T) {
	s := Stats(pois, "唐山市", "")
	if s.Scope != ScopeProvince {
		t.Errorf("Scope = %q, want province fallback", s.Scope)
	}
	if len(s.Records) != 0 {
		t.Errorf("Records = %v, want none", s.Records)
	}
}

func TestSubRegionSeriesTieBreak(t *testing.T) {
	in := []geodrill.PointOfInterest{
		{Region: "R", SubRegion: "a", Grade: Grade4A},
		{Region: "R", SubRegion: "a", Grade: Grade4A},
		{Region: "R", SubRegion: "b", Grade: Grade5A},
		{Region: "R", SubRegion: "b", Grade: Grade4A},
	}
	got := SubRegionSeries(in, "R")
	if got[0].Label != "b" {
		t.Errorf("first = %q, want b (more 5A on equal total)", got[0].Label)
	}
}

func TestStatsTopRegionsCap(t *testing.T) {
	var in []geodrill.PointOfInterest
	for i := 0; i < 12; i++ {
		in = append(in, geodrill.PointOfInterest{Region: string(rune('A' + i)), Grade: Grade4A})
	}
	if got := len(Stats(in, "", "").Series); got != DefaultTopRegions {
		t.Errorf("Series = %d, want %d", got, DefaultTopRegions)
	}
}
