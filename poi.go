package geodrill

import (
	"strings"
)

// PointOfInterest is one attraction anchored to a sub-region by name.
type PointOfInterest struct {
	Name      string `json:"name"`
	Region    string `json:"city"`
	SubRegion string `json:"county"`
	Grade     string `json:"level"`
	Kind      string `json:"type,omitempty"`
}

// AdminSuffixes are the administrative suffixes stripped before names from
// independently sourced datasets are compared. Longer suffixes come first.
var AdminSuffixes = []string{"自治县", "自治旗", "县", "区", "市", "旗"}

// NormalizeAdminName strips one trailing administrative suffix.
func NormalizeAdminName(name string) string {
	name = strings.TrimSpace(name)
	for _, s := range AdminSuffixes {
		if strings.HasSuffix(name, s) && len(name) > len(s) {
			return strings.TrimSuffix(name, s)
		}
	}
	return name
}

// NameMatch describes how a name was resolved against a mesh.
type NameMatch uint8

const (
	NameUnresolved NameMatch = iota
	NameExact
	NameFuzzy
)

// String returns the match kind used in logs.
func (n NameMatch) String() string {
	switch n {
	case NameExact:
		return "exact"
	case NameFuzzy:
		return "fuzzy"
	default:
		return "unresolved"
	}
}

// FuzzyNameEqual reports whether a and b name the same unit once their
// administrative suffixes are stripped, allowing either to contain the other.
func FuzzyNameEqual(a, b string) bool {
	na, nb := NormalizeAdminName(a), NormalizeAdminName(b)
	if na == "" || nb == "" {
		return false
	}
	return na == nb || strings.Contains(a, nb) || strings.Contains(b, na)
}

// FindMeshByName resolves name to a mesh, preferring an exact name match and
// falling back to FuzzyNameEqual. Among several parts of a multi-part
// feature the first is returned.
func FindMeshByName(name string, meshes []*RegionMesh) (*RegionMesh, NameMatch) {
	for _, m := range meshes {
		if m.Name == name {
			return m, NameExact
		}
	}
	for _, m := range meshes {
		if FuzzyNameEqual(name, m.Name) {
			return m, NameFuzzy
		}
	}
	return nil, NameUnresolved
}

// AdminClassifier decides which region-level meshes are administrative units
// whose selection drills down into their sub-regions.
type AdminClassifier interface {
	IsAdministrative(name string) bool
}

// SuffixClassifier recognizes administrative units by name suffix. A name
// containing any Reject substring is never administrative.
type SuffixClassifier struct {
	Suffixes []string
	Reject   []string
}

// DefaultClassifier treats prefecture-level cities as drillable.
var DefaultClassifier = SuffixClassifier{
	Suffixes: []string{"市", "地区", "自治州", "盟"},
	Reject:   []string{"县", "区"},
}

// IsAdministrative implements AdminClassifier.
func (c SuffixClassifier) IsAdministrative(name string) bool {
	for _, s := range c.Suffixes {
		if !strings.HasSuffix(name, s) {
			continue
		}
		stem := strings.TrimSuffix(name, s)
		for _, r := range c.Reject {
			if strings.Contains(stem, r) {
				return false
			}
		}
		return true
	}
	return false
}

// ShortRegionName is the region name as points of interest record it, with
// its administrative suffix removed.
func ShortRegionName(name string) string {
	return NormalizeAdminName(name)
}
