package density

import (
	"iter"
	"math"

	"github.com/ScottSyms/densitytiles/internal/models"
	"github.com/ScottSyms/densitytiles/internal/spatial"
)

// Grid holds per-pixel point counts for one tile. It is owned by a single
// request and never shared.
type Grid struct {
	size   int
	counts []uint32
	max    uint32
	total  uint64
}

// NewGrid creates an all-zero size×size grid
func NewGrid(size int) *Grid {
	return &Grid{
		size:   size,
		counts: make([]uint32, size*size),
	}
}

// Size returns the edge length of the grid in pixels
func (g *Grid) Size() int {
	return g.size
}

// Add increments the count at (px, py), saturating at math.MaxUint32
func (g *Grid) Add(px, py int) {
	if px < 0 || py < 0 || px >= g.size || py >= g.size {
		return
	}

	idx := py*g.size + px
	if c := g.counts[idx]; c < math.MaxUint32 {
		c++
		g.counts[idx] = c
		if c > g.max {
			g.max = c
		}
	}
	g.total++
}

// At returns the count at (px, py)
func (g *Grid) At(px, py int) uint32 {
	return g.counts[py*g.size+px]
}

// Max returns the densest pixel's count
func (g *Grid) Max() uint32 {
	return g.max
}

// Total returns the number of points added, including saturated increments
func (g *Grid) Total() uint64 {
	return g.total
}

// Sum adds up all cells
func (g *Grid) Sum() uint64 {
	var sum uint64
	for _, c := range g.counts {
		sum += uint64(c)
	}
	return sum
}

// Counts exposes the row-major cell slice for rendering
func (g *Grid) Counts() []uint32 {
	return g.counts
}

// Aggregate bins every point into the pixel it projects to inside bbox.
// An empty sequence yields an all-zero grid.
func Aggregate(points iter.Seq[*models.Point], bbox spatial.BBox, size int) *Grid {
	grid := NewGrid(size)
	proj := spatial.NewProjector(bbox, size)

	for p := range points {
		px, py := proj.Pixel(p.Longitude, p.Latitude)
		grid.Add(px, py)
	}

	return grid
}
