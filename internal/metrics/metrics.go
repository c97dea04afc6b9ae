// Package metrics holds the Prometheus collectors for dataset loading,
// drill-down and the state panel.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geodrill_fetch_total",
		Help: "Dataset fetches by dataset and outcome",
	}, []string{"dataset", "status"})
	FetchDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "geodrill_fetch_duration_ms",
		Help:    "Dataset fetch duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	}, []string{"dataset"})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geodrill_cache_hits_total",
		Help: "Total dataset cache hits",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geodrill_cache_misses_total",
		Help: "Total dataset cache misses",
	})
	DrillRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geodrill_drill_requests_total",
		Help: "Total drill-down requests started",
	})
	DrillFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geodrill_drill_failures_total",
		Help: "Failed loads by failure kind",
	}, []string{"kind"})
	StaleResultsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geodrill_stale_results_total",
		Help: "Drill-down results discarded as superseded",
	})
	ContainmentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geodrill_containment_total",
		Help: "Sub-region features accepted by match mode",
	}, []string{"mode"})
	DegenerateGeometryTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geodrill_degenerate_geometry_total",
		Help: "Ring groups skipped because no mesh could be built",
	})
	UnresolvedJoinsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geodrill_unresolved_joins_total",
		Help: "Points of interest whose sub-region name matched no mesh",
	})
	PanelClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "geodrill_panel_clients",
		Help: "Connected state panel websocket clients",
	})
	PanelBroadcastsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geodrill_panel_broadcasts_total",
		Help: "State snapshots pushed to panel clients",
	})
	FrameDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "geodrill_frame_duration_ms",
		Help:    "Scene update duration in milliseconds",
		Buckets: []float64{0.5, 1, 2, 4, 8, 16, 33, 66},
	})
)

func init() {
	prometheus.MustRegister(FetchTotal)
	prometheus.MustRegister(FetchDurationMs)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
	prometheus.MustRegister(DrillRequestsTotal)
	prometheus.MustRegister(DrillFailuresTotal)
	prometheus.MustRegister(StaleResultsTotal)
	prometheus.MustRegister(ContainmentTotal)
	prometheus.MustRegister(DegenerateGeometryTotal)
	prometheus.MustRegister(UnresolvedJoinsTotal)
	prometheus.MustRegister(PanelClients)
	prometheus.MustRegister(PanelBroadcastsTotal)
	prometheus.MustRegister(FrameDurationMs)
}

// Handler serves the registered collectors for scraping.
func Handler() http.Handler { return promhttp.Handler() }
