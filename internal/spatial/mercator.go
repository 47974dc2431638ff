package spatial

import (
	"errors"
	"fmt"
	"math"

	"github.com/andrepxx/sydney/coordinates"
	"github.com/andrepxx/sydney/projection"
	"github.com/paulmach/orb/maptile"
)

// ErrInvalidTile is returned for tile coordinates outside the pyramid
var ErrInvalidTile = errors.New("invalid tile coordinate")

// MaxSupportedZoom bounds the configurable maximum zoom level
const MaxSupportedZoom = 30

// NewTile validates zoom/x/y against the configured maximum zoom and builds the tile
func NewTile(z, x, y uint64, maxZoom uint8) (maptile.Tile, error) {
	if maxZoom > MaxSupportedZoom {
		maxZoom = MaxSupportedZoom
	}
	if z > uint64(maxZoom) {
		return maptile.Tile{}, fmt.Errorf("%w: zoom level %d not allowed (maximum: %d)", ErrInvalidTile, z, maxZoom)
	}

	tilesPerAxis := uint64(1) << z
	if x >= tilesPerAxis || y >= tilesPerAxis {
		return maptile.Tile{}, fmt.Errorf("%w: tile (%d, %d) out of range, maximum tile ID is (%d, %d) at zoom level %d",
			ErrInvalidTile, x, y, tilesPerAxis-1, tilesPerAxis-1, z)
	}

	return maptile.New(uint32(x), uint32(y), maptile.Zoom(z)), nil
}

// TileToBBox converts a slippy-map tile into its geographic bounding box
// using the inverse Web Mercator projection
func TileToBBox(z, x, y uint64, maxZoom uint8) (BBox, error) {
	t, err := NewTile(z, x, y, maxZoom)
	if err != nil {
		return BBox{}, err
	}
	return BoundOf(t), nil
}

// ValidateTile checks an existing tile against the configured maximum zoom
func ValidateTile(t maptile.Tile, maxZoom uint8) error {
	_, err := NewTile(uint64(t.Z), uint64(t.X), uint64(t.Y), maxZoom)
	return err
}

// BoundOf returns the bounding box of an already validated tile
func BoundOf(t maptile.Tile) BBox {
	b := t.Bound()
	return BBox{
		MinLon: b.Min[0],
		MinLat: b.Min[1],
		MaxLon: b.Max[0],
		MaxLat: b.Max[1],
	}
}

var mercator = projection.Mercator()

// forward projects degrees onto the unit Mercator plane, x and y in
// [-0.5, 0.5]. Latitudes beyond the projection cut-off are clamped to it.
func forward(lon, lat float64) coordinates.Cartesian {
	lat = max(-MaxLatitude, min(lat, MaxLatitude))
	geo := coordinates.CreateGeographic(lon*math.Pi/180, lat*math.Pi/180)
	return mercator.Forward(geo)
}

// MercatorY returns the Web Mercator northing of a latitude in degrees,
// normalised so the projection cut-off maps to ±0.5
func MercatorY(lat float64) float64 {
	return forward(0, lat).Y()
}

// Projector maps geographic coordinates to pixels of one tile raster
type Projector struct {
	size   int
	left   float64
	top    float64
	scaleX float64
	scaleY float64
}

// NewProjector precomputes the projection of bbox onto a size×size raster
func NewProjector(bbox BBox, size int) *Projector {
	nw := forward(bbox.MinLon, bbox.MaxLat)
	se := forward(bbox.MaxLon, bbox.MinLat)
	return &Projector{
		size:   size,
		left:   nw.X(),
		top:    nw.Y(),
		scaleX: float64(size) / (se.X() - nw.X()),
		scaleY: float64(size) / (nw.Y() - se.Y()),
	}
}

// Pixel projects lon/lat into the raster. The lower edge of every pixel is
// inclusive and the upper edge exclusive; results are clamped to [0, size).
func (p *Projector) Pixel(lon, lat float64) (int, int) {
	c := forward(lon, lat)
	fx := math.Floor((c.X() - p.left) * p.scaleX)
	fy := math.Floor((p.top - c.Y()) * p.scaleY)
	return clampPixel(fx, p.size), clampPixel(fy, p.size)
}

// LonLatToPixel projects a geographic point into pixel space relative to the
// tile bounding box
func LonLatToPixel(lon, lat float64, bbox BBox, tileSize int) (int, int) {
	return NewProjector(bbox, tileSize).Pixel(lon, lat)
}

func clampPixel(v float64, size int) int {
	// !(v >= 0) also catches NaN
	if !(v >= 0) {
		return 0
	}
	if v >= float64(size) {
		return size - 1
	}
	return int(v)
}
