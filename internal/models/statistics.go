package models

import "time"

// DatasetStats summarises the indexed point store
type DatasetStats struct {
	Points   int        `json:"points"`
	Skipped  int        `json:"skipped"` // Records rejected for invalid coordinates
	MinLon   float64    `json:"min_lon"`
	MinLat   float64    `json:"min_lat"`
	MaxLon   float64    `json:"max_lon"`
	MaxLat   float64    `json:"max_lat"`
	Earliest *time.Time `json:"earliest,omitempty"`
	Latest   *time.Time `json:"latest,omitempty"`
	MaxZoom  uint8      `json:"max_zoom"`
	TileSize int        `json:"tile_size"`
}
