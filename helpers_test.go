package geodrill

import (
	"context"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/paulmach/orb"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(7, 11))
}

// manualClock only moves when told to.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// rect returns a closed counter-clockwise ring.
func rect(x0, y0, x1, y1 float64) orb.Ring {
	return orb.Ring{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}, {x0, y0}}
}

func feature(name string, rings ...orb.Ring) *Feature {
	return &Feature{Name: name, Polygons: []orb.Polygon{orb.Polygon(rings)}}
}

// Two prefecture cities and an island group that is not an administrative
// unit, then their counties.
func testRegions() []*Feature {
	return []*Feature{
		feature("杭州市", rect(0, 0, 2, 2)),
		feature("宁波市", rect(2, 0, 4, 2)),
		feature("舟山群岛", rect(4, 0, 5, 1)),
	}
}

func testSubRegions() []*Feature {
	return []*Feature{
		feature("西湖区", rect(0.1, 0.1, 0.9, 0.9)),
		feature("余杭区", rect(1.1, 0.1, 1.9, 1.9)),
		feature("杭州市", rect(0, 0, 2, 2)),
		feature("鄞州区", rect(2.2, 0.2, 3.0, 1.0)),
	}
}

// fakeSource serves fixed features. When gate is non-nil SubRegions blocks
// until it is closed.
type fakeSource struct {
	regions    []*Feature
	subRegions []*Feature
	regionErr  error
	subErr     error
	gate       chan struct{}

	regionCalls atomic.Int32
	subCalls    atomic.Int32
}

func newFakeSource() *fakeSource {
	return &fakeSource{regions: testRegions(), subRegions: testSubRegions()}
}

func (s *fakeSource) Regions(ctx context.Context) ([]*Feature, error) {
	s.regionCalls.Add(1)
	if s.regionErr != nil {
		return nil, s.regionErr
	}
	return s.regions, nil
}

func (s *fakeSource) SubRegions(ctx context.Context) ([]*Feature, error) {
	s.subCalls.Add(1)
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.subErr != nil {
		return nil, s.subErr
	}
	return s.subRegions, nil
}

type fakePOIs struct {
	mu      sync.Mutex
	records []PointOfInterest
	asked   []string
}

func (p *fakePOIs) PointsOfInterest(_ context.Context, region string) ([]PointOfInterest, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.asked = append(p.asked, region)
	var out []PointOfInterest
	for _, r := range p.records {
		if r.Region == region {
			out = append(out, r)
		}
	}
	return out, nil
}

func testPOIs() *fakePOIs {
	return &fakePOIs{records: []PointOfInterest{
		{Name: "西湖风景区", Region: "杭州", SubRegion: "西湖区", Grade: "5A"},
		{Name: "良渚遗址", Region: "杭州", SubRegion: "余杭", Grade: "4A"},
		{Name: "无名景点", Region: "杭州", SubRegion: "临安区", Grade: "4A"},
		{Name: "天一阁", Region: "宁波", SubRegion: "海曙区", Grade: "5A"},
	}}
}

// await applies the next load result or fails the test.
func await(t *testing.T, v *ViewController) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if !v.AwaitResult(ctx) {
		t.Fatal("timed out waiting for a load result")
	}
}

func meshNamed(meshes []*RegionMesh, name string) *RegionMesh {
	for _, m := range meshes {
		if m.Name == name {
			return m
		}
	}
	return nil
}

func meshNames(meshes []*RegionMesh) []string {
	out := make([]string, len(meshes))
	for i, m := range meshes {
		out[i] = m.Name
	}
	return out
}

// staticSet is an InteractiveSet over a fixed slice.
type staticSet []*RegionMesh

func (s staticSet) Interactive() []*RegionMesh { return s }

func (s staticSet) InteractiveMesh(id int) (*RegionMesh, bool) {
	for _, m := range s {
		if m.ID == id {
			return m, true
		}
	}
	return nil, false
}
