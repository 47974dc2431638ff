package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/apex/log"

	"github.com/ScottSyms/densitytiles/internal/density"
	"github.com/ScottSyms/densitytiles/internal/filter"
	"github.com/ScottSyms/densitytiles/internal/index"
	"github.com/ScottSyms/densitytiles/internal/metrics"
	"github.com/ScottSyms/densitytiles/internal/models"
	"github.com/ScottSyms/densitytiles/internal/render"
	"github.com/ScottSyms/densitytiles/internal/spatial"
)

var (
	// ErrInvalidRequest marks failures caused by client input
	ErrInvalidRequest = errors.New("invalid request")
	// ErrRender marks failures while producing the image
	ErrRender = errors.New("render failed")
)

const (
	DefaultPointLimit = 10000
	MaxPointLimit     = 100000
)

// TileService answers tile and point queries against the shared index.
// It keeps no per-request state.
type TileService struct {
	index    *index.Index
	renderer *render.Renderer
	maxZoom  uint8
	tileSize int
}

// NewTileService creates a new tile service
func NewTileService(ix *index.Index, renderer *render.Renderer, maxZoom uint8, tileSize int) *TileService {
	return &TileService{
		index:    ix,
		renderer: renderer,
		maxZoom:  maxZoom,
		tileSize: tileSize,
	}
}

// RenderTile produces the density PNG for one tile
func (s *TileService) RenderTile(req models.TileRequest) (*models.TileImage, error) {
	bbox, err := spatial.TileToBBox(req.Zoom, req.X, req.Y, s.maxZoom)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	tr, err := filter.ParseRange(req.Start, req.End)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	var scale render.ColorScale
	if req.Scale != "" {
		if scale, err = render.ScaleByName(req.Scale); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
	}

	start := time.Now()
	grid := density.Aggregate(s.index.Query(bbox, tr), bbox, s.tileSize)

	data, err := s.renderer.RenderWith(grid, scale)
	if err != nil {
		return nil, fmt.Errorf("%w: tile %d/%d/%d: %w", ErrRender, req.Zoom, req.X, req.Y, err)
	}
	elapsed := time.Since(start)

	metrics.RenderDurationMs.Observe(float64(elapsed.Microseconds()) / 1000)
	metrics.TilePoints.Observe(float64(grid.Total()))

	log.WithFields(log.Fields{
		"tile":      fmt.Sprintf("%d/%d/%d", req.Zoom, req.X, req.Y),
		"bbox":      fmt.Sprintf("%.6f,%.6f,%.6f,%.6f", bbox.MinLon, bbox.MinLat, bbox.MaxLon, bbox.MaxLat),
		"range":     tr.String(),
		"points":    grid.Total(),
		"max_count": grid.Max(),
		"bytes":     len(data),
		"elapsed":   elapsed,
	}).Debug("rendered tile")

	return &models.TileImage{
		Data:        data,
		ContentType: render.ContentType,
		Points:      int(grid.Total()),
		MaxCount:    grid.Max(),
	}, nil
}

// QueryPoints returns the raw points inside a bounding box and time range.
// An all-zero box selects the whole world.
func (s *TileService) QueryPoints(f models.PointFilter) (*models.PointsResponse, error) {
	bbox := spatial.BBox{MinLon: f.MinLon, MinLat: f.MinLat, MaxLon: f.MaxLon, MaxLat: f.MaxLat}
	if bbox == (spatial.BBox{}) {
		bbox = spatial.BBox{MinLon: -spatial.MaxLongitude, MinLat: -90, MaxLon: spatial.MaxLongitude, MaxLat: 90}
	}
	if !bbox.Valid() {
		return nil, fmt.Errorf("%w: bounding box %.6f,%.6f,%.6f,%.6f is inverted",
			ErrInvalidRequest, bbox.MinLon, bbox.MinLat, bbox.MaxLon, bbox.MaxLat)
	}

	tr, err := filter.ParseRange(f.Start, f.End)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	limit := f.Limit
	switch {
	case limit < 0:
		return nil, fmt.Errorf("%w: negative limit %d", ErrInvalidRequest, limit)
	case limit == 0:
		limit = DefaultPointLimit
	case limit > MaxPointLimit:
		limit = MaxPointLimit
	}

	// One extra match tells us whether the result was cut short
	matches := s.index.Collect(bbox, tr, limit+1)
	truncated := len(matches) > limit
	if truncated {
		matches = matches[:limit]
	}

	points := make([]models.Point, len(matches))
	for i, p := range matches {
		points[i] = *p
	}

	return &models.PointsResponse{
		Data:      points,
		Count:     len(points),
		Truncated: truncated,
	}, nil
}

// Stats summarises the indexed dataset
func (s *TileService) Stats() models.DatasetStats {
	st := s.index.Stats()
	out := models.DatasetStats{
		Points:   st.Points,
		Skipped:  st.Skipped,
		MinLon:   st.Extent.MinLon,
		MinLat:   st.Extent.MinLat,
		MaxLon:   st.Extent.MaxLon,
		MaxLat:   st.Extent.MaxLat,
		MaxZoom:  s.maxZoom,
		TileSize: s.tileSize,
	}
	if !st.Earliest.IsZero() {
		earliest := st.Earliest
		out.Earliest = &earliest
	}
	if !st.Latest.IsZero() {
		latest := st.Latest
		out.Latest = &latest
	}
	return out
}
