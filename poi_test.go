package geodrill

import "testing"

func TestNormalizeAdminName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"西湖区", "西湖"},
		{"淳安县", "淳安"},
		{"景宁畲族自治县", "景宁畲族"},
		{"杭州市", "杭州"},
		{"区", "区"},
		{" 余杭 ", "余杭"},
	}
	for _, tt := range tests {
		if got := NormalizeAdminName(tt.in); got != tt.want {
			t.Errorf("NormalizeAdminName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFuzzyNameEqual(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"余杭", "余杭区", true},
		{"西湖区", "西湖区", true},
		{"临安市", "临安区", true},
		{"西湖区", "余杭区", false},
		{"", "余杭区", false},
	}
	for _, tt := range tests {
		if got := FuzzyNameEqual(tt.a, tt.b); got != tt.want {
			t.Errorf("FuzzyNameEqual(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestFindMeshByNamePrefersExact(t *testing.T) {
	meshes := []*RegionMesh{{ID: 1, Name: "余杭"}, {ID: 2, Name: "余杭区"}}
	m, how := FindMeshByName("余杭区", meshes)
	if m.ID != 2 || how != NameExact {
		t.Errorf("got mesh %d via %v, want 2 exact", m.ID, how)
	}
	m, how = FindMeshByName("余杭县", meshes[1:])
	if m == nil || how != NameFuzzy {
		t.Errorf("fuzzy lookup = %v via %v", m, how)
	}
	if m, how = FindMeshByName("萧山区", meshes); m != nil || how != NameUnresolved {
		t.Errorf("unmatched lookup = %v via %v", m, how)
	}
}

func TestSuffixClassifier(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"杭州市", true},
		{"恩施土家族苗族自治州", true},
		{"大兴安岭地区", true},
		{"锡林郭勒盟", true},
		{"西湖区", false},
		{"舟山群岛", false},
		{"县级市", false},
	}
	for _, tt := range tests {
		if got := DefaultClassifier.IsAdministrative(tt.name); got != tt.want {
			t.Errorf("IsAdministrative(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestShortRegionName(t *testing.T) {
	if got := ShortRegionName("杭州市"); got != "杭州" {
		t.Errorf("ShortRegionName = %q, want 杭州", got)
	}
}
