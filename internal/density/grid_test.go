package density

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ScottSyms/densitytiles/internal/models"
	"github.com/ScottSyms/densitytiles/internal/spatial"
)

func TestGridAdd(t *testing.T) {
	g := NewGrid(4)
	g.Add(1, 2)
	g.Add(1, 2)
	g.Add(3, 3)

	assert.Equal(t, uint32(2), g.At(1, 2))
	assert.Equal(t, uint32(1), g.At(3, 3))
	assert.Equal(t, uint32(0), g.At(0, 0))
	assert.Equal(t, uint32(2), g.Max())
	assert.Equal(t, uint64(3), g.Total())
	assert.Equal(t, uint64(3), g.Sum())
}

func TestGridAddIgnoresOutOfRange(t *testing.T) {
	g := NewGrid(2)
	g.Add(-1, 0)
	g.Add(0, 2)
	assert.Equal(t, uint64(0), g.Total())
	assert.Equal(t, uint32(0), g.Max())
}

func TestGridSaturates(t *testing.T) {
	g := NewGrid(2)
	g.counts[0] = math.MaxUint32 - 1
	g.Add(0, 0)
	g.Add(0, 0)

	assert.Equal(t, uint32(math.MaxUint32), g.At(0, 0))
	assert.Equal(t, uint32(math.MaxUint32), g.Max())
	assert.Equal(t, uint64(2), g.Total())
}

func TestAggregateEmpty(t *testing.T) {
	bbox, err := spatial.TileToBBox(0, 0, 0, 19)
	require.NoError(t, err)

	g := Aggregate(slices.Values([]*models.Point(nil)), bbox, 256)
	assert.Equal(t, 256, g.Size())
	assert.Equal(t, uint64(0), g.Sum())
	assert.Equal(t, uint32(0), g.Max())
}

func TestAggregateCountsEveryPointOnce(t *testing.T) {
	bbox, err := spatial.TileToBBox(0, 0, 0, 19)
	require.NoError(t, err)

	points := []*models.Point{
		{Longitude: 0.1, Latitude: -0.1},
		{Longitude: 0.2, Latitude: -0.2},
		{Longitude: -180, Latitude: spatial.MaxLatitude},
		{Longitude: 180, Latitude: -spatial.MaxLatitude},
		{Longitude: 45, Latitude: 30},
	}

	g := Aggregate(slices.Values(points), bbox, 256)
	assert.Equal(t, uint64(len(points)), g.Sum())
	assert.Equal(t, uint64(len(points)), g.Total())
	assert.Equal(t, uint32(2), g.At(128, 128))
	assert.Equal(t, uint32(1), g.At(0, 0))
	assert.Equal(t, uint32(1), g.At(255, 255))
	assert.Equal(t, uint32(2), g.Max())
}
