package spatial

import (
	"math"

	"github.com/golang/geo/s2"
)

// Constants
const (
	MaxLongitude = 180.0
	MaxLatitude  = 85.05112877980659 // Web Mercator cut-off, atan(sinh(π)) in degrees

	// worldEdgeTolerance absorbs rounding between MaxLatitude and the
	// latitude a tile bound computes for its outer edge.
	worldEdgeTolerance = 1e-9
)

// BBox is a geographic bounding box in degrees
//
// Membership is half-open: the west and north edges are inclusive, the east
// and south edges exclusive, except where an edge lies on the boundary of the
// projected world. Adjacent tiles therefore partition the plane.
type BBox struct {
	MinLon float64 `json:"min_lon"`
	MinLat float64 `json:"min_lat"`
	MaxLon float64 `json:"max_lon"`
	MaxLat float64 `json:"max_lat"`
}

// Contains reports whether the point lies inside the box under the half-open rule
func (b BBox) Contains(lon, lat float64) bool {
	if lon < b.MinLon {
		return false
	}

	// East edge is exclusive unless it is the antimeridian
	if lon >= b.MaxLon && !(b.MaxLon >= MaxLongitude && lon <= MaxLongitude) {
		return false
	}

	// North edge is inclusive
	if lat > b.MaxLat && !(b.MaxLat >= MaxLatitude-worldEdgeTolerance && lat <= b.MaxLat+worldEdgeTolerance) {
		return false
	}

	// South edge is exclusive unless it is the bottom of the world
	if lat <= b.MinLat {
		return b.MinLat <= -MaxLatitude+worldEdgeTolerance && lat >= b.MinLat-worldEdgeTolerance
	}

	return true
}

// Expand returns the box grown by margin degrees on every side
func (b BBox) Expand(margin float64) BBox {
	return BBox{
		MinLon: b.MinLon - margin,
		MinLat: b.MinLat - margin,
		MaxLon: b.MaxLon + margin,
		MaxLat: b.MaxLat + margin,
	}
}

// Valid reports whether the box has a non-negative extent on both axes
func (b BBox) Valid() bool {
	return b.MinLon <= b.MaxLon && b.MinLat <= b.MaxLat &&
		!math.IsNaN(b.MinLon) && !math.IsNaN(b.MinLat) &&
		!math.IsNaN(b.MaxLon) && !math.IsNaN(b.MaxLat)
}

// ValidCoordinate reports whether lon/lat is a finite position on the sphere.
// NaN and infinite values fail the range check.
func ValidCoordinate(lon, lat float64) bool {
	return s2.LatLngFromDegrees(lat, lon).IsValid()
}
