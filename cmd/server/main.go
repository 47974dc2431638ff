package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"github.com/ScottSyms/densitytiles/internal/api"
	"github.com/ScottSyms/densitytiles/internal/config"
	"github.com/ScottSyms/densitytiles/internal/database"
	"github.com/ScottSyms/densitytiles/internal/index"
	"github.com/ScottSyms/densitytiles/internal/ingest"
	"github.com/ScottSyms/densitytiles/internal/logger"
	"github.com/ScottSyms/densitytiles/internal/metrics"
	"github.com/ScottSyms/densitytiles/internal/render"
	"github.com/ScottSyms/densitytiles/internal/repository"
	"github.com/ScottSyms/densitytiles/internal/service"
)

func main() {
	// 加载配置
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.LogFormat, cfg.Debug)
	gin.SetMode(cfg.GinMode)

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	renderer, err := newRenderer(cfg)
	if err != nil {
		log.WithError(err).Fatal("invalid renderer configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 初始化数据库
	var source ingest.PointSource
	if cfg.DBPath != "" {
		if err := database.Init(database.Config{Path: cfg.DBPath, ReadOnly: cfg.DBReadOnly}); err != nil {
			log.WithError(err).Fatal("failed to initialize database")
		}
		defer database.Close()

		if !cfg.DBReadOnly {
			if err := database.Migrate(database.GetDB()); err != nil {
				log.WithError(err).Fatal("failed to migrate database")
			}
		}

		repo := repository.NewPointRepository(database.GetDB())
		count, err := repo.Count(ctx)
		if err != nil {
			log.WithError(err).Fatal("failed to read database source")
		}
		log.WithFields(log.Fields{"path": cfg.DBPath, "points": count, "read_only": cfg.DBReadOnly}).Info("database source ready")
		source = repo
	}

	dataDir := cfg.DataDir
	if _, err := os.Stat(dataDir); err != nil && source != nil {
		log.WithField("dir", dataDir).Warn("data directory missing, using database only")
		dataDir = ""
	}

	points, summary, err := ingest.NewLoader(dataDir, cfg.IngestWorkers, source).Load(ctx)
	if err != nil {
		log.WithError(err).Fatal("failed to load points")
	}
	log.WithFields(log.Fields{
		"files":   summary.Files,
		"skipped": summary.FilesSkipped,
		"points":  summary.Points,
		"elapsed": summary.Elapsed,
	}).Info("points loaded")

	ix, err := index.Build(points, index.WithBranching(cfg.RTreeMinChildren, cfg.RTreeMaxChildren))
	if err != nil {
		log.WithError(err).Fatal("failed to build spatial index")
	}
	metrics.IndexedPoints.Set(float64(ix.Len()))
	metrics.SkippedPoints.Set(float64(ix.Skipped()))
	log.WithFields(log.Fields{
		"points":  ix.Len(),
		"skipped": ix.Skipped(),
	}).Info("spatial index built")

	tiles := service.NewTileService(ix, renderer, cfg.MaxZoom, cfg.TileSize)

	// 初始化路由
	router := api.SetupRouter(cfg, tiles)
	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.Port).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown failed")
	}
}

func newRenderer(cfg *config.Config) (*render.Renderer, error) {
	scale, err := render.ScaleByName(cfg.ColorScale)
	if err != nil {
		return nil, err
	}
	normalization, err := render.ParseNormalization(cfg.Normalization)
	if err != nil {
		return nil, err
	}
	compression, err := render.ParseCompression(cfg.PNGCompression)
	if err != nil {
		return nil, err
	}
	return render.NewRenderer(scale,
		render.WithNormalization(normalization),
		render.WithSaturation(cfg.Saturation),
		render.WithCompression(compression),
	), nil
}
