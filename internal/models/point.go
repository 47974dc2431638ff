package models

import "time"

// Point is a single location record loaded at startup
type Point struct {
	Longitude float64   `json:"longitude"`
	Latitude  float64   `json:"latitude"`
	Timestamp time.Time `json:"timestamp,omitzero"` // zero when the source had no time column
}

// HasTimestamp reports whether the record carries a time value
func (p *Point) HasTimestamp() bool {
	return !p.Timestamp.IsZero()
}

// PointsResponse represents the points query API response
type PointsResponse struct {
	Data      []Point `json:"data"`
	Count     int     `json:"count"`
	Truncated bool    `json:"truncated"`
}
