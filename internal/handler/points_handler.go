package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/ScottSyms/densitytiles/internal/models"
	"github.com/ScottSyms/densitytiles/internal/service"
	"github.com/ScottSyms/densitytiles/pkg/response"
)

// PointsHandler handles HTTP requests for raw points and dataset statistics
type PointsHandler struct {
	service *service.TileService
}

// NewPointsHandler creates a new points handler
func NewPointsHandler(service *service.TileService) *PointsHandler {
	return &PointsHandler{service: service}
}

// GetPoints handles GET /api/v1/points
func (h *PointsHandler) GetPoints(c *gin.Context) {
	var filter models.PointFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters", err)
		return
	}

	result, err := h.service.QueryPoints(filter)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			response.BadRequest(c, "Invalid points query", err)
			return
		}
		response.InternalError(c, "Failed to query points", err)
		return
	}

	response.Success(c, result)
}

// GetStats handles GET /api/v1/stats
func (h *PointsHandler) GetStats(c *gin.Context) {
	response.Success(c, h.service.Stats())
}
