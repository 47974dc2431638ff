package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ScottSyms/densitytiles/internal/index"
	"github.com/ScottSyms/densitytiles/internal/models"
	"github.com/ScottSyms/densitytiles/internal/render"
	"github.com/ScottSyms/densitytiles/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, tileSize int) *gin.Engine {
	t.Helper()
	ix, err := index.Build([]models.Point{
		{Longitude: 0, Latitude: 0, Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Longitude: 10, Latitude: 10},
		{Longitude: -10, Latitude: -10},
	})
	require.NoError(t, err)

	tiles := service.NewTileService(ix, render.NewRenderer(nil), 19, tileSize)
	tileHandler := NewTileHandler(tiles, time.Hour)
	pointsHandler := NewPointsHandler(tiles)

	r := gin.New()
	r.GET("/tiles/:z/:x/:y", tileHandler.GetTile)
	r.GET("/api/v1/points", pointsHandler.GetPoints)
	r.GET("/api/v1/stats", pointsHandler.GetStats)
	return r
}

func get(r http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestGetTile(t *testing.T) {
	r := newTestRouter(t, 256)

	w := get(r, "/tiles/0/0/0.png")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=3600", w.Header().Get("Cache-Control"))
	assert.Equal(t, "3", w.Header().Get("X-Tile-Points"))
	assert.Equal(t, []byte("\x89PNG"), w.Body.Bytes()[:4])
}

func TestGetTileWithoutExtension(t *testing.T) {
	r := newTestRouter(t, 256)

	w := get(r, "/tiles/1/1/0")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetTileBadRequests(t *testing.T) {
	r := newTestRouter(t, 256)

	for _, target := range []string{
		"/tiles/1/5/0.png",
		"/tiles/20/0/0.png",
		"/tiles/a/0/0.png",
		"/tiles/0/-1/0.png",
		"/tiles/0/0/zero.png",
		"/tiles/0/0/0.png?start=yesterday",
		"/tiles/0/0/0.png?start=2024-02-01&end=2024-01-01",
		"/tiles/0/0/0.png?scale=rainbow",
	} {
		w := get(r, target)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)

		env := decodeEnvelope(t, w)
		assert.Equal(t, http.StatusBadRequest, env.Code, target)
		assert.NotEmpty(t, env.Error, target)
	}
}

func TestGetTileRenderFailure(t *testing.T) {
	r := newTestRouter(t, 0)

	w := get(r, "/tiles/0/0/0.png")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	env := decodeEnvelope(t, w)
	assert.Equal(t, http.StatusInternalServerError, env.Code)
	assert.Equal(t, "Failed to render tile", env.Message)
}

func TestGetPoints(t *testing.T) {
	r := newTestRouter(t, 256)

	w := get(r, "/api/v1/points?minLon=-1&minLat=-1&maxLon=1&maxLat=1")
	require.Equal(t, http.StatusOK, w.Code)

	var res models.PointsResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &res))
	require.Equal(t, 1, res.Count)
	assert.Equal(t, 0.0, res.Data[0].Longitude)
	assert.False(t, res.Truncated)

	w = get(r, "/api/v1/points?limit=1")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &res))
	assert.Equal(t, 1, res.Count)
	assert.True(t, res.Truncated)
}

func TestGetPointsBadRequests(t *testing.T) {
	r := newTestRouter(t, 256)

	for _, target := range []string{
		"/api/v1/points?minLon=west",
		"/api/v1/points?minLon=5&maxLon=-5",
		"/api/v1/points?start=2024-13-45",
	} {
		w := get(r, target)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestGetStats(t *testing.T) {
	r := newTestRouter(t, 256)

	w := get(r, "/api/v1/stats")
	require.Equal(t, http.StatusOK, w.Code)

	var st models.DatasetStats
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &st))
	assert.Equal(t, 3, st.Points)
	assert.Equal(t, 256, st.TileSize)
	require.NotNil(t, st.Earliest)
	require.NotNil(t, st.Latest)
	assert.True(t, st.Earliest.Equal(*st.Latest))
}
