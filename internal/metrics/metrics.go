package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Tile request outcomes
const (
	OutcomeOK       = "ok"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
	OutcomeRejected = "rejected"
)

var (
	TileRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "densitytiles_tile_requests_total",
		Help: "Tile requests by outcome",
	}, []string{"outcome"})
	RenderDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "densitytiles_render_duration_ms",
		Help:    "Time from bbox lookup to encoded PNG in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	})
	TilePoints = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "densitytiles_tile_points",
		Help:    "Number of points aggregated into one tile",
		Buckets: prometheus.ExponentialBuckets(1, 4, 12),
	})
	IndexedPoints = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "densitytiles_indexed_points",
		Help: "Points held by the spatial index",
	})
	SkippedPoints = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "densitytiles_skipped_points",
		Help: "Records rejected at startup for invalid coordinates",
	})
)

func init() {
	prometheus.MustRegister(TileRequestsTotal)
	prometheus.MustRegister(RenderDurationMs)
	prometheus.MustRegister(TilePoints)
	prometheus.MustRegister(IndexedPoints)
	prometheus.MustRegister(SkippedPoints)
}

// Handler exposes the registered metrics for scraping
func Handler() http.Handler { return promhttp.Handler() }
