package dataset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/phanxgames/geodrill"
	"github.com/phanxgames/geodrill/internal/metrics"
)

// Source fetches both tiers from candidate locations. A location is an
// http(s) URL, a file:// URL, or a path resolved against BaseURL and then
// BaseDir. Candidates are tried in order and the first one that downloads
// and parses wins. Safe for concurrent use.
type Source struct {
	RegionLocations    []string
	SubRegionLocations []string
	BaseURL            string
	BaseDir            string

	Client   *http.Client
	Cache    Cache
	CacheTTL time.Duration
	Logger   *slog.Logger

	mu   sync.Mutex
	memo map[string][]*geodrill.Feature
}

// NewSource creates a source with a default HTTP client.
func NewSource(regions, subRegions []string) *Source {
	return &Source{
		RegionLocations:    regions,
		SubRegionLocations: subRegions,
		Client:             &http.Client{Timeout: 30 * time.Second},
		Logger:             slog.Default(),
	}
}

// Regions implements geodrill.DatasetSource.
func (s *Source) Regions(ctx context.Context) ([]*geodrill.Feature, error) {
	return s.load(ctx, "regions", s.RegionLocations)
}

// SubRegions implements geodrill.DatasetSource.
func (s *Source) SubRegions(ctx context.Context) ([]*geodrill.Feature, error) {
	return s.load(ctx, "subregions", s.SubRegionLocations)
}

func (s *Source) load(ctx context.Context, tier string, candidates []string) ([]*geodrill.Feature, error) {
	start := time.Now()
	defer func() {
		metrics.FetchDurationMs.WithLabelValues(tier).Observe(float64(time.Since(start).Milliseconds()))
	}()

	var attempted []string
	var lastErr error
	for _, c := range candidates {
		for _, loc := range s.resolve(c) {
			if err := ctx.Err(); err != nil {
				metrics.FetchTotal.WithLabelValues(tier, "canceled").Inc()
				return nil, &geodrill.FetchError{Paths: attempted, Err: err}
			}
			if features, ok := s.memoized(loc); ok {
				metrics.FetchTotal.WithLabelValues(tier, "memo").Inc()
				return features, nil
			}
			attempted = append(attempted, loc)
			features, err := s.fetchOne(ctx, loc)
			if err != nil {
				lastErr = err
				s.logger().Debug("dataset_candidate_failed", "tier", tier, "location", loc, "err", err)
				continue
			}
			s.remember(loc, features)
			metrics.FetchTotal.WithLabelValues(tier, "ok").Inc()
			s.logger().Info("dataset_loaded", "tier", tier, "location", loc, "features", len(features))
			return features, nil
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no locations configured for %s", tier)
	}
	metrics.FetchTotal.WithLabelValues(tier, "error").Inc()
	return nil, &geodrill.FetchError{Paths: attempted, Err: lastErr}
}

// resolve expands one candidate into the concrete locations to attempt.
func (s *Source) resolve(candidate string) []string {
	switch {
	case strings.HasPrefix(candidate, "http://"), strings.HasPrefix(candidate, "https://"),
		strings.HasPrefix(candidate, "file://"):
		return []string{candidate}
	}
	var out []string
	if s.BaseURL != "" {
		out = append(out, strings.TrimRight(s.BaseURL, "/")+"/"+strings.TrimLeft(candidate, "/"))
	}
	if s.BaseDir != "" {
		out = append(out, "file://"+filepath.Join(s.BaseDir, filepath.FromSlash(strings.TrimLeft(candidate, "/"))))
	}
	if len(out) == 0 {
		out = append(out, "file://"+filepath.FromSlash(candidate))
	}
	return out
}

func (s *Source) fetchOne(ctx context.Context, loc string) ([]*geodrill.Feature, error) {
	data, err := s.cached(ctx, loc)
	if err != nil {
		return nil, err
	}
	features, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if len(features) == 0 {
		return nil, fmt.Errorf("%w: %s has no polygon features", geodrill.ErrEmptyDataset, loc)
	}
	return features, nil
}

// cached reads loc through the payload cache when one is configured. Cache
// failures degrade to a direct read.
func (s *Source) cached(ctx context.Context, loc string) ([]byte, error) {
	if s.Cache == nil {
		return s.read(ctx, loc)
	}
	data, ok, err := s.Cache.Get(ctx, loc)
	if err != nil {
		s.logger().Warn("dataset_cache_get_failed", "location", loc, "err", err)
	}
	if ok {
		metrics.CacheHitsTotal.Inc()
		return data, nil
	}
	metrics.CacheMissesTotal.Inc()
	data, err = s.read(ctx, loc)
	if err != nil {
		return nil, err
	}
	if err := s.Cache.Set(ctx, loc, data, s.CacheTTL); err != nil {
		s.logger().Warn("dataset_cache_set_failed", "location", loc, "err", err)
	}
	return data, nil
}

func (s *Source) read(ctx context.Context, loc string) ([]byte, error) {
	if path, ok := strings.CutPrefix(loc, "file://"); ok {
		return os.ReadFile(path)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc, nil)
	if err != nil {
		return nil, err
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %d", loc, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (s *Source) memoized(loc string) ([]*geodrill.Feature, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.memo[loc]
	return f, ok
}

func (s *Source) remember(loc string, features []*geodrill.Feature) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.memo == nil {
		s.memo = make(map[string][]*geodrill.Feature)
	}
	s.memo[loc] = features
}

// Forget drops memoized datasets so the next call downloads again.
func (s *Source) Forget() {
	s.mu.Lock()
	s.memo = nil
	s.mu.Unlock()
}

func (s *Source) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
