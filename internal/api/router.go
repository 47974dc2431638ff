package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ScottSyms/densitytiles/internal/config"
	"github.com/ScottSyms/densitytiles/internal/handler"
	"github.com/ScottSyms/densitytiles/internal/metrics"
	"github.com/ScottSyms/densitytiles/internal/middleware"
	"github.com/ScottSyms/densitytiles/internal/service"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, tiles *service.TileService) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger())

	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowHeaders:    []string{"Origin", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders:   []string{middleware.RequestIDHeader, "X-Tile-Points"},
		MaxAge:          12 * time.Hour,
	}))

	r.Use(middleware.RateLimit(cfg.RateLimit, cfg.RateWindow))

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Density tile server is running",
			"points":  tiles.Stats().Points,
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	tileHandler := handler.NewTileHandler(tiles, cfg.CacheMaxAge)
	r.GET("/tiles/:z/:x/:y", middleware.MaxConcurrent(cfg.MaxConcurrentRenders), tileHandler.GetTile)

	pointsHandler := handler.NewPointsHandler(tiles)
	api := r.Group("/api/v1")
	{
		api.GET("/stats", pointsHandler.GetStats)
		api.GET("/points", pointsHandler.GetPoints)
	}

	// Static frontend for every path no route claims
	if cfg.StaticDir != "" {
		r.NoRoute(gin.WrapH(http.FileServer(http.Dir(cfg.StaticDir))))
	}

	return r
}
