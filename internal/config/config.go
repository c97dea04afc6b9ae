// Package config reads process configuration from the environment, after
// loading an optional .env file.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the typed process configuration. Empty strings disable the
// optional component they configure.
type Config struct {
	RegionDatasetURL     string
	SubRegionDatasetURLs []string
	DatasetBaseURL       string
	DatasetBaseDir       string
	POIFile              string
	PostgresDSN          string

	RedisHost string
	RedisPort string
	RedisPass string
	RedisDB   int
	CacheTTL  time.Duration

	PanelAddr    string
	MetricsAddr  string
	FontPath     string
	WindowWidth  int
	WindowHeight int
	AdminSuffix  []string
	FetchTimeout time.Duration

	// ScriptPath replays a JSON session script on start.
	ScriptPath    string
	ScreenshotDir string
}

// Defaults.
const (
	DefaultRegionDatasetURL = "/data/province.json"
	DefaultSubRegionURLs    = "/data/counties.json,/data/county.json,/data/districts.json"
	DefaultWindowWidth      = 1280
	DefaultWindowHeight     = 800
	DefaultCacheTTL         = 24 * time.Hour
	DefaultFetchTimeout     = 15 * time.Second
	DefaultAdminSuffixes    = "市,地区,自治州,盟"
)

// Load reads .env files (missing files are ignored) then the environment.
func Load(envFiles ...string) Config {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) Config {
	str := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}
	num := func(key string, def int) int {
		if v, err := strconv.Atoi(strings.TrimSpace(getenv(key))); err == nil {
			return v
		}
		return def
	}
	seconds := func(key string, def time.Duration) time.Duration {
		if v, err := strconv.Atoi(strings.TrimSpace(getenv(key))); err == nil && v >= 0 {
			return time.Duration(v) * time.Second
		}
		return def
	}

	return Config{
		RegionDatasetURL:     str("REGION_DATASET_URL", DefaultRegionDatasetURL),
		SubRegionDatasetURLs: SplitList(str("SUBREGION_DATASET_URLS", DefaultSubRegionURLs)),
		DatasetBaseURL:       str("DATASET_BASE_URL", ""),
		DatasetBaseDir:       str("DATASET_BASE_DIR", ""),
		POIFile:              str("POI_FILE", ""),
		PostgresDSN:          str("POSTGRES_DSN", ""),
		RedisHost:            str("REDIS_HOST", ""),
		RedisPort:            str("REDIS_PORT", "6379"),
		RedisPass:            str("REDIS_PASS", ""),
		RedisDB:              num("REDIS_DB", 0),
		CacheTTL:             seconds("DATASET_CACHE_TTL_S", DefaultCacheTTL),
		PanelAddr:            str("PANEL_ADDR", ""),
		MetricsAddr:          str("METRICS_ADDR", ""),
		FontPath:             str("LABEL_FONT_PATH", ""),
		WindowWidth:          num("WINDOW_WIDTH", DefaultWindowWidth),
		WindowHeight:         num("WINDOW_HEIGHT", DefaultWindowHeight),
		AdminSuffix:          SplitList(str("ADMIN_SUFFIXES", DefaultAdminSuffixes)),
		FetchTimeout:         seconds("FETCH_TIMEOUT_S", DefaultFetchTimeout),
		ScriptPath:           str("SCRIPT_PATH", ""),
		ScreenshotDir:        str("SCREENSHOT_DIR", ""),
	}
}

// RedisAddr returns host:port, or "" when no redis host is configured.
func (c Config) RedisAddr() string {
	if c.RedisHost == "" {
		return ""
	}
	return c.RedisHost + ":" + c.RedisPort
}

// SplitList splits a comma-separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
