package geodrill

import (
	"testing"

	"github.com/golang/geo/r2"
	"github.com/paulmach/orb"
)

func TestContainsPointWithHole(t *testing.T) {
	poly := orb.Polygon{rect(0, 0, 10, 10), rect(3, 3, 7, 7)}
	tests := []struct {
		pt   orb.Point
		want bool
	}{
		{orb.Point{1, 1}, true},
		{orb.Point{5, 5}, false},
		{orb.Point{8, 5}, true},
		{orb.Point{11, 5}, false},
		{orb.Point{-1, -1}, false},
	}
	for _, tt := range tests {
		if got := ContainsPoint(poly, tt.pt); got != tt.want {
			t.Errorf("ContainsPoint(%v) = %v, want %v", tt.pt, got, tt.want)
		}
	}
	if ContainsPoint(orb.Polygon{}, orb.Point{1, 1}) {
		t.Error("empty polygon contains a point")
	}
}

func TestFeatureContainsAnyPart(t *testing.T) {
	f := &Feature{Name: "群岛", Polygons: []orb.Polygon{
		{rect(0, 0, 1, 1)},
		{rect(5, 5, 6, 6)},
	}}
	if !FeatureContains(f, orb.Point{5.5, 5.5}) {
		t.Error("second part not tested")
	}
	if FeatureContains(f, orb.Point{3, 3}) {
		t.Error("gap between parts reported inside")
	}
}

func TestSignedAreaWinding(t *testing.T) {
	ccw := []r2.Point{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}}
	if got := signedArea(ccw); !approxEqual(got, 8, 1e-9) {
		t.Errorf("signedArea = %f, want 8", got)
	}
	cw := []r2.Point{ccw[0], ccw[3], ccw[2], ccw[1]}
	if got := signedArea(cw); !approxEqual(got, -8, 1e-9) {
		t.Errorf("signedArea = %f, want -8", got)
	}
}

func TestSegmentsCross(t *testing.T) {
	a, b := r2.Point{X: 0, Y: 0}, r2.Point{X: 2, Y: 2}
	if !segmentsCross(a, b, r2.Point{X: 0, Y: 2}, r2.Point{X: 2, Y: 0}) {
		t.Error("diagonals should cross")
	}
	if segmentsCross(a, b, r2.Point{X: 2, Y: 2}, r2.Point{X: 3, Y: 0}) {
		t.Error("shared endpoint is not a proper crossing")
	}
}
