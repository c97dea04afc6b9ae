package geodrill

import (
	"log/slog"
	"strings"

	"github.com/paulmach/orb"
)

// MatchMode records how a fine feature was accepted.
type MatchMode uint8

const (
	MatchNone     MatchMode = iota // rejected
	MatchCentroid                  // centroid inside the region
	MatchSampled                   // enough sampled vertices inside the region
)

// String returns the mode name used in logs and metrics.
func (m MatchMode) String() string {
	switch m {
	case MatchCentroid:
		return "centroid"
	case MatchSampled:
		return "sampled"
	default:
		return "none"
	}
}

// Matcher selects the fine-resolution features that lie inside one coarse
// region. It holds no state between calls.
type Matcher struct {
	// Tolerance pads the region's bounding box, in degrees, before the
	// centroid pre-filter.
	Tolerance float64
	// SampleCount is the approximate number of vertices tested when the
	// centroid test fails.
	SampleCount int
	// SampleFraction is the share of sampled vertices that must fall inside
	// for a sampled match; the comparison is strict.
	SampleFraction float64
	// Exclude, when set, drops fine features by name before testing.
	Exclude func(name string) bool
	// OnMatch, when set, observes every classified feature.
	OnMatch func(name string, mode MatchMode)

	Logger *slog.Logger
}

// NewMatcher returns a Matcher with the standard tolerance and sampling.
func NewMatcher() *Matcher {
	return &Matcher{
		Tolerance:      0.15,
		SampleCount:    10,
		SampleFraction: 0.2,
	}
}

// Match returns the features of fine that belong to region, in input order.
// An empty result is valid.
func (m *Matcher) Match(region *Feature, fine []*Feature) []*Feature {
	if region == nil || len(region.Polygons) == 0 {
		return nil
	}
	bound := region.Bound().Pad(m.Tolerance)

	var out []*Feature
	for _, f := range fine {
		mode := m.Classify(region, bound, f)
		if m.OnMatch != nil {
			m.OnMatch(f.Name, mode)
		}
		if mode == MatchNone {
			continue
		}
		if m.Logger != nil {
			m.Logger.Debug("subregion_match", "region", region.Name, "name", f.Name, "mode", mode.String())
		}
		out = append(out, f)
	}
	return out
}

// Classify tests one fine feature against region using a bound already
// padded by Tolerance.
func (m *Matcher) Classify(region *Feature, padded orb.Bound, f *Feature) MatchMode {
	if m.Exclude != nil && m.Exclude(f.Name) {
		return MatchNone
	}
	c, ok := f.Centroid()
	if !ok || !padded.Contains(c) {
		return MatchNone
	}
	if FeatureContains(region, c) {
		return MatchCentroid
	}

	samples := sampleVertices(f.Vertices(), m.SampleCount)
	if len(samples) == 0 {
		return MatchNone
	}
	inside := 0
	for _, p := range samples {
		if FeatureContains(region, p) {
			inside++
		}
	}
	if float64(inside)/float64(len(samples)) > m.SampleFraction {
		return MatchSampled
	}
	return MatchNone
}

// sampleVertices takes every step-th vertex, step = max(1, n/count), and
// keeps at most count of them.
func sampleVertices(pts []orb.Point, count int) []orb.Point {
	if count <= 0 || len(pts) == 0 {
		return nil
	}
	step := len(pts) / count
	if step < 1 {
		step = 1
	}
	out := make([]orb.Point, 0, count)
	for i := 0; i < len(pts) && len(out) < count; i += step {
		out = append(out, pts[i])
	}
	return out
}

// ExcludeRegionTier returns an Exclude func that drops fine features named
// like region-tier units, such as a city entry carried in a county dataset.
// A name is region-tier when it ends in one of regionSuffixes and contains
// none of subSuffixes.
func ExcludeRegionTier(regionSuffixes, subSuffixes []string) func(string) bool {
	return func(name string) bool {
		region := false
		for _, s := range regionSuffixes {
			if strings.HasSuffix(name, s) {
				region = true
				break
			}
		}
		if !region {
			return false
		}
		for _, s := range subSuffixes {
			if strings.Contains(name, s) {
				return false
			}
		}
		return true
	}
}
