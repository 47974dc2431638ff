package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/apex/log"
	"golang.org/x/sync/errgroup"

	"github.com/ScottSyms/densitytiles/internal/models"
)

// ErrNoSource is returned when neither a data directory nor a database is configured
var ErrNoSource = errors.New("no point source configured")

// PointSource supplies points from outside the data directory
type PointSource interface {
	GetAll(ctx context.Context) ([]models.Point, error)
}

// FileReader loads the points of one file
type FileReader func(path string) ([]models.Point, error)

// Readers maps lower-case file extensions to their reader
var Readers = map[string]FileReader{
	".parquet": ReadParquetFile,
	".csv":     ReadCSVFile,
}

// Summary reports what a Load call read
type Summary struct {
	Files        int
	FilesSkipped int
	Points       int
	Elapsed      time.Duration
}

// Loader gathers points from a directory tree and an optional database
type Loader struct {
	dir     string
	workers int
	source  PointSource
}

// NewLoader creates a loader. dir may be empty when source is set, and
// source may be nil.
func NewLoader(dir string, workers int, source PointSource) *Loader {
	if workers < 1 {
		workers = 1
	}
	return &Loader{dir: dir, workers: workers, source: source}
}

// Load reads every supported file below the data directory concurrently,
// then appends the database points. Files that fail to read are logged and
// skipped; only cancellation, an unreadable directory or a database error
// fail the load.
func (l *Loader) Load(ctx context.Context) ([]models.Point, Summary, error) {
	start := time.Now()
	var summary Summary

	if l.dir == "" && l.source == nil {
		return nil, summary, ErrNoSource
	}

	var points []models.Point
	if l.dir != "" {
		files, err := l.discover()
		if err != nil {
			return nil, summary, err
		}

		batches := make([][]models.Point, len(files))
		var skipped atomic.Int64

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(l.workers)
		for i, path := range files {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				read := Readers[strings.ToLower(filepath.Ext(path))]
				batch, err := read(path)
				if err != nil {
					skipped.Add(1)
					log.WithError(err).WithField("file", path).Warn("skipping unreadable file")
					return nil
				}
				log.WithFields(log.Fields{"file": path, "points": len(batch)}).Debug("loaded file")
				batches[i] = batch
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, summary, fmt.Errorf("loading %s: %w", l.dir, err)
		}

		total := 0
		for _, b := range batches {
			total += len(b)
		}
		points = make([]models.Point, 0, total)
		for _, b := range batches {
			points = append(points, b...)
		}

		summary.Files = len(files)
		summary.FilesSkipped = int(skipped.Load())
	}

	if l.source != nil {
		rows, err := l.source.GetAll(ctx)
		if err != nil {
			return nil, summary, fmt.Errorf("loading database points: %w", err)
		}
		points = append(points, rows...)
	}

	summary.Points = len(points)
	summary.Elapsed = time.Since(start)
	return points, summary, nil
}

// discover lists supported files below the data directory in walk order
func (l *Loader) discover() ([]string, error) {
	var files []string
	err := filepath.WalkDir(l.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == l.dir {
				return err
			}
			log.WithError(err).WithField("path", path).Warn("skipping unreadable path")
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := Readers[strings.ToLower(filepath.Ext(path))]; ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking data directory %s: %w", l.dir, err)
	}
	return files, nil
}
