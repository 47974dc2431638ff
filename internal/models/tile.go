package models

// TileRequest carries the raw inputs of one tile request
type TileRequest struct {
	Zoom  uint64
	X     uint64
	Y     uint64
	Start string // YYYY-MM-DD or RFC 3339, empty when unbounded
	End   string
	Scale string // colour scale name, empty for the configured default
}

// TileImage is a rendered tile ready to be written to the client
type TileImage struct {
	Data        []byte
	ContentType string
	Points      int    // Number of points aggregated into the tile
	MaxCount    uint32 // Densest pixel
}
