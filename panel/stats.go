// Package panel derives the statistics shown beside the map and pushes them,
// with the map state, to websocket clients.
package panel

import (
	"sort"

	"github.com/phanxgames/geodrill"
)

// Grades recorded on points of interest. GradeNature records are landmarks
// and are never counted.
const (
	Grade5A     = "5A"
	Grade4A     = "4A"
	GradeNature = "自然"
)

// DefaultTopRegions is how many regions the province-wide series shows.
const DefaultTopRegions = 8

// Bar is one entry of a per-area series.
type Bar struct {
	Label string `json:"label"`
	A5    int    `json:"a5"`
	A4    int    `json:"a4"`
	Total int    `json:"total"`
}

// AreaStats summarizes the points of interest in scope.
type AreaStats struct {
	Scope     string                     `json:"scope"`
	Region    string                     `json:"region,omitempty"`
	SubRegion string                     `json:"subRegion,omitempty"`
	Count5A   int                        `json:"count5A"`
	Count4A   int                        `json:"count4A"`
	Total     int                        `json:"total"`
	Percent5A float64                    `json:"percent5A"`
	Percent4A float64                    `json:"percent4A"`
	Series    []Bar                      `json:"series"`
	Records   []geodrill.PointOfInterest `json:"records"`
}

// Scopes reported in AreaStats.
const (
	ScopeProvince  = "province"
	ScopeRegion    = "region"
	ScopeSubRegion = "sub-region"
)

// Stats computes the statistics for region and subRegion, either of which
// may be empty. Without a region that has graded records, the province
// totals and the top regions are reported instead. Region names may carry
// their administrative suffix.
func Stats(pois []geodrill.PointOfInterest, region, subRegion string) AreaStats {
	short := geodrill.ShortRegionName(region)

	var scoped []geodrill.PointOfInterest
	for _, p := range pois {
		if short != "" && p.Region != short {
			continue
		}
		if subRegion != "" && p.SubRegion != subRegion && !geodrill.FuzzyNameEqual(p.SubRegion, subRegion) {
			continue
		}
		scoped = append(scoped, p)
	}

	byRegion := regionSeries(pois)
	known := false
	for _, b := range byRegion {
		if b.Label == short {
			known = true
			break
		}
	}

	if short == "" || !known {
		s := AreaStats{Scope: ScopeProvince, Records: scoped}
		s.Count5A, s.Count4A = countGrades(pois)
		s.fill()
		if len(byRegion) > DefaultTopRegions {
			byRegion = byRegion[:DefaultTopRegions]
		}
		s.Series = byRegion
		return s
	}

	s := AreaStats{Scope: ScopeRegion, Region: region, SubRegion: subRegion, Records: scoped}
	if subRegion != "" {
		s.Scope = ScopeSubRegion
	}
	s.Count5A, s.Count4A = countGrades(scoped)
	s.fill()
	s.Series = SubRegionSeries(pois, short)
	return s
}

func (s *AreaStats) fill() {
	s.Total = s.Count5A + s.Count4A
	if s.Total > 0 {
		s.Percent5A = float64(s.Count5A) / float64(s.Total) * 100
		s.Percent4A = float64(s.Count4A) / float64(s.Total) * 100
	}
}

func countGrades(pois []geodrill.PointOfInterest) (a5, a4 int) {
	for _, p := range pois {
		switch p.Grade {
		case Grade5A:
			a5++
		case Grade4A:
			a4++
		}
	}
	return a5, a4
}

// SubRegionSeries counts graded records per sub-region of region, sorted
// by total then by 5A count, both descending.
func SubRegionSeries(pois []geodrill.PointOfInterest, region string) []Bar {
	return series(pois, func(p geodrill.PointOfInterest) (string, bool) {
		return p.SubRegion, p.Region == region
	}, true)
}

// regionSeries counts graded records per region, sorted by total.
func regionSeries(pois []geodrill.PointOfInterest) []Bar {
	return series(pois, func(p geodrill.PointOfInterest) (string, bool) {
		return p.Region, true
	}, false)
}

func series(pois []geodrill.PointOfInterest, key func(geodrill.PointOfInterest) (string, bool), by5A bool) []Bar {
	idx := make(map[string]int)
	var out []Bar
	for _, p := range pois {
		if p.Grade == GradeNature {
			continue
		}
		k, ok := key(p)
		if !ok {
			continue
		}
		i, seen := idx[k]
		if !seen {
			i = len(out)
			idx[k] = i
			out = append(out, Bar{Label: k})
		}
		switch p.Grade {
		case Grade5A:
			out[i].A5++
		case Grade4A:
			out[i].A4++
		}
		out[i].Total = out[i].A5 + out[i].A4
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Total != out[b].Total {
			return out[a].Total > out[b].Total
		}
		return by5A && out[a].A5 > out[b].A5
	})
	return out
}
