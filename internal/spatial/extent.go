package spatial

import "github.com/golang/geo/s2"

// Extent accumulates the geographic extent of a point set
type Extent struct {
	rect s2.Rect
}

// NewExtent creates an empty extent
func NewExtent() *Extent {
	return &Extent{rect: s2.EmptyRect()}
}

// Add grows the extent to include lon/lat
func (e *Extent) Add(lon, lat float64) {
	e.rect = e.rect.AddPoint(s2.LatLngFromDegrees(lat, lon))
}

// IsEmpty reports whether no point has been added
func (e *Extent) IsEmpty() bool {
	return e.rect.IsEmpty()
}

// BBox returns the extent as a bounding box in degrees. MinLon exceeds
// MaxLon when the extent crosses the antimeridian.
func (e *Extent) BBox() BBox {
	if e.rect.IsEmpty() {
		return BBox{}
	}
	lo := e.rect.Lo()
	hi := e.rect.Hi()
	return BBox{
		MinLon: lo.Lng.Degrees(),
		MinLat: lo.Lat.Degrees(),
		MaxLon: hi.Lng.Degrees(),
		MaxLat: hi.Lat.Degrees(),
	}
}
