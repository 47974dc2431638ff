package index

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/dhconnelly/rtreego"

	"github.com/ScottSyms/densitytiles/internal/filter"
	"github.com/ScottSyms/densitytiles/internal/models"
	"github.com/ScottSyms/densitytiles/internal/spatial"
)

// ErrIndexBuild is returned when no usable point reaches the index
var ErrIndexBuild = errors.New("cannot build spatial index")

const (
	dimensions = 2

	// pointTolerance is the half-width of the degenerate rectangle stored for each point
	pointTolerance = 1e-9

	// searchMargin widens the candidate rectangle so edge points are never pruned
	searchMargin = 1e-7

	DefaultMinChildren = 25
	DefaultMaxChildren = 50
)

// entry is a leaf of the tree. It references the record in the point store.
type entry struct {
	point *models.Point
	rect  rtreego.Rect
}

// Bounds implements rtreego.Spatial
func (e *entry) Bounds() rtreego.Rect {
	return e.rect
}

// Index is an immutable R-tree over the point store. It is safe for
// concurrent queries without locking.
type Index struct {
	tree     *rtreego.Rtree
	size     int
	skipped  int
	extent   spatial.BBox
	earliest time.Time
	latest   time.Time
}

// Stats summarises the indexed data
type Stats struct {
	Points   int
	Skipped  int
	Extent   spatial.BBox
	Earliest time.Time
	Latest   time.Time
}

type options struct {
	minChildren int
	maxChildren int
}

// Option configures Build
type Option func(*options)

// WithBranching sets the minimum and maximum number of children per tree node
func WithBranching(minChildren, maxChildren int) Option {
	return func(o *options) {
		if minChildren > 0 && maxChildren >= 2*minChildren {
			o.minChildren = minChildren
			o.maxChildren = maxChildren
		}
	}
}

// Build bulk-loads the index from the point store. Records with invalid
// coordinates are skipped; the points slice must not be modified afterwards.
func Build(points []models.Point, opts ...Option) (*Index, error) {
	o := options{minChildren: DefaultMinChildren, maxChildren: DefaultMaxChildren}
	for _, opt := range opts {
		opt(&o)
	}

	if len(points) == 0 {
		return nil, fmt.Errorf("%w: point store is empty", ErrIndexBuild)
	}

	objs := make([]rtreego.Spatial, 0, len(points))
	extent := spatial.NewExtent()
	ix := &Index{}

	for i := range points {
		p := &points[i]
		if !spatial.ValidCoordinate(p.Longitude, p.Latitude) {
			ix.skipped++
			continue
		}

		objs = append(objs, &entry{
			point: p,
			rect:  rtreego.Point{p.Longitude, p.Latitude}.ToRect(pointTolerance),
		})
		extent.Add(p.Longitude, p.Latitude)

		if p.HasTimestamp() {
			if ix.earliest.IsZero() || p.Timestamp.Before(ix.earliest) {
				ix.earliest = p.Timestamp
			}
			if p.Timestamp.After(ix.latest) {
				ix.latest = p.Timestamp
			}
		}
	}

	if len(objs) == 0 {
		return nil, fmt.Errorf("%w: all %d records have invalid coordinates", ErrIndexBuild, len(points))
	}

	ix.tree = rtreego.NewTree(dimensions, o.minChildren, o.maxChildren, objs...)
	ix.size = len(objs)
	ix.extent = extent.BBox()
	return ix, nil
}

// Query returns every point inside bbox whose timestamp satisfies tr.
// Points are yielded in unspecified order while the tree is traversed;
// stopping the iteration aborts the traversal.
func (ix *Index) Query(bbox spatial.BBox, tr filter.TimeRange) iter.Seq[*models.Point] {
	return func(yield func(*models.Point) bool) {
		if !bbox.Valid() {
			return
		}

		search := bbox.Expand(searchMargin)
		rect, err := rtreego.NewRectFromPoints(
			rtreego.Point{search.MinLon, search.MinLat},
			rtreego.Point{search.MaxLon, search.MaxLat},
		)
		if err != nil {
			return
		}

		// The filter sees every candidate whose rectangle intersects the search
		// window. It applies the exact predicates and hands matches to yield,
		// refusing them all so the tree never accumulates a result slice.
		// Abort only ends the current leaf, so stopped guards the other nodes.
		stopped := false
		visit := func(_ []rtreego.Spatial, obj rtreego.Spatial) (refuse, abort bool) {
			if stopped {
				return true, true
			}
			p := obj.(*entry).point
			if !bbox.Contains(p.Longitude, p.Latitude) {
				return true, false
			}
			if !tr.Contains(p.Timestamp) {
				return true, false
			}
			if !yield(p) {
				stopped = true
			}
			return true, stopped
		}

		ix.tree.SearchIntersect(rect, visit)
	}
}

// Collect gathers up to limit matches of Query; limit <= 0 means no limit
func (ix *Index) Collect(bbox spatial.BBox, tr filter.TimeRange, limit int) []*models.Point {
	if limit <= 0 {
		return slices.Collect(ix.Query(bbox, tr))
	}

	result := make([]*models.Point, 0, min(limit, 1024))
	for p := range ix.Query(bbox, tr) {
		result = append(result, p)
		if len(result) >= limit {
			break
		}
	}
	return result
}

// Len returns the number of indexed points
func (ix *Index) Len() int {
	return ix.size
}

// Skipped returns the number of records rejected during Build
func (ix *Index) Skipped() int {
	return ix.skipped
}

// Stats returns a summary of the indexed data
func (ix *Index) Stats() Stats {
	return Stats{
		Points:   ix.size,
		Skipped:  ix.skipped,
		Extent:   ix.extent,
		Earliest: ix.earliest,
		Latest:   ix.latest,
	}
}
