package models

// TileQuery represents the optional query parameters of a tile request
type TileQuery struct {
	Start string `form:"start"` // YYYY-MM-DD or RFC 3339
	End   string `form:"end"`   // YYYY-MM-DD or RFC 3339
	Scale string `form:"scale"` // redblue, heat, grayscale
}

// PointFilter represents filter parameters for querying raw points
type PointFilter struct {
	MinLon float64 `form:"minLon"`
	MinLat float64 `form:"minLat"`
	MaxLon float64 `form:"maxLon"`
	MaxLat float64 `form:"maxLat"`
	Start  string  `form:"start"`
	End    string  `form:"end"`
	Limit  int     `form:"limit"` // Max points to return
}
