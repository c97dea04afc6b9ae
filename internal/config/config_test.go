package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	c := FromEnv(envMap(nil))
	if c.RegionDatasetURL != DefaultRegionDatasetURL {
		t.Errorf("RegionDatasetURL = %q, want %q", c.RegionDatasetURL, DefaultRegionDatasetURL)
	}
	if len(c.SubRegionDatasetURLs) != 3 {
		t.Errorf("SubRegionDatasetURLs = %v, want 3 candidates", c.SubRegionDatasetURLs)
	}
	if c.WindowWidth != DefaultWindowWidth || c.WindowHeight != DefaultWindowHeight {
		t.Errorf("window = %dx%d", c.WindowWidth, c.WindowHeight)
	}
	if c.CacheTTL != DefaultCacheTTL {
		t.Errorf("CacheTTL = %v, want %v", c.CacheTTL, DefaultCacheTTL)
	}
	if c.RedisAddr() != "" {
		t.Errorf("RedisAddr = %q, want empty", c.RedisAddr())
	}
}

func TestFromEnvOverrides(t *testing.T) {
	c := FromEnv(envMap(map[string]string{
		"SUBREGION_DATASET_URLS": " a.json , ,b.json",
		"REDIS_HOST":             "cache",
		"REDIS_DB":               "2",
		"FETCH_TIMEOUT_S":        "3",
		"WINDOW_WIDTH":           "bad",
		"ADMIN_SUFFIXES":         "市,州",
	}))
	if diff := cmp.Diff([]string{"a.json", "b.json"}, c.SubRegionDatasetURLs); diff != "" {
		t.Errorf("SubRegionDatasetURLs mismatch (-want +got):\n%s", diff)
	}
	if c.RedisAddr() != "cache:6379" {
		t.Errorf("RedisAddr = %q, want cache:6379", c.RedisAddr())
	}
	if c.RedisDB != 2 {
		t.Errorf("RedisDB = %d, want 2", c.RedisDB)
	}
	if c.FetchTimeout != 3*time.Second {
		t.Errorf("FetchTimeout = %v, want 3s", c.FetchTimeout)
	}
	if c.WindowWidth != DefaultWindowWidth {
		t.Errorf("WindowWidth = %d, want default on parse failure", c.WindowWidth)
	}
	if diff := cmp.Diff([]string{"市", "州"}, c.AdminSuffix); diff != "" {
		t.Errorf("AdminSuffix mismatch (-want +got):\n%s", diff)
	}
}
