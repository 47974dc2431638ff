package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ScottSyms/densitytiles/internal/metrics"
	"github.com/ScottSyms/densitytiles/internal/models"
	"github.com/ScottSyms/densitytiles/internal/service"
	"github.com/ScottSyms/densitytiles/pkg/response"
)

// TileHandler handles HTTP requests for density tiles
type TileHandler struct {
	service     *service.TileService
	cacheMaxAge time.Duration
}

// NewTileHandler creates a new tile handler
func NewTileHandler(service *service.TileService, cacheMaxAge time.Duration) *TileHandler {
	return &TileHandler{service: service, cacheMaxAge: cacheMaxAge}
}

// GetTile handles GET /tiles/:z/:x/:y.png
func (h *TileHandler) GetTile(c *gin.Context) {
	req, err := parseTileRequest(c)
	if err != nil {
		metrics.TileRequestsTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		response.BadRequest(c, "Invalid tile coordinates", err)
		return
	}

	tile, err := h.service.RenderTile(req)
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		metrics.TileRequestsTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		response.BadRequest(c, "Invalid tile request", err)
		return
	case err != nil:
		metrics.TileRequestsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		response.InternalError(c, "Failed to render tile", err)
		return
	}

	metrics.TileRequestsTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	if h.cacheMaxAge > 0 {
		c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", int(h.cacheMaxAge.Seconds())))
	} else {
		c.Header("Cache-Control", "no-cache")
	}
	c.Header("X-Tile-Points", strconv.Itoa(tile.Points))
	c.Data(http.StatusOK, tile.ContentType, tile.Data)
}

func parseTileRequest(c *gin.Context) (models.TileRequest, error) {
	var query models.TileQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		return models.TileRequest{}, err
	}

	z, err := strconv.ParseUint(c.Param("z"), 10, 64)
	if err != nil {
		return models.TileRequest{}, fmt.Errorf("zoom %q is not a non-negative integer", c.Param("z"))
	}
	x, err := strconv.ParseUint(c.Param("x"), 10, 64)
	if err != nil {
		return models.TileRequest{}, fmt.Errorf("x %q is not a non-negative integer", c.Param("x"))
	}
	rawY := strings.TrimSuffix(c.Param("y"), ".png")
	y, err := strconv.ParseUint(rawY, 10, 64)
	if err != nil {
		return models.TileRequest{}, fmt.Errorf("y %q is not a non-negative integer", rawY)
	}

	return models.TileRequest{
		Zoom:  z,
		X:     x,
		Y:     y,
		Start: query.Start,
		End:   query.End,
		Scale: query.Scale,
	}, nil
}
