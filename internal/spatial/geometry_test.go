package spatial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidCoordinate(t *testing.T) {
	assert.True(t, ValidCoordinate(0, 0))
	assert.True(t, ValidCoordinate(-180, -90))
	assert.True(t, ValidCoordinate(180, 90))
	assert.False(t, ValidCoordinate(180.5, 0))
	assert.False(t, ValidCoordinate(0, -90.1))
	assert.False(t, ValidCoordinate(math.NaN(), 0))
	assert.False(t, ValidCoordinate(0, math.Inf(1)))
	assert.False(t, ValidCoordinate(math.Inf(-1), 0))
	assert.False(t, ValidCoordinate(0, math.NaN()))
}

func TestBBoxValid(t *testing.T) {
	assert.True(t, BBox{MinLon: -1, MinLat: -1, MaxLon: 1, MaxLat: 1}.Valid())
	assert.True(t, BBox{}.Valid())
	assert.False(t, BBox{MinLon: 1, MaxLon: -1}.Valid())
	assert.False(t, BBox{MinLat: math.NaN()}.Valid())
}

func TestBBoxExpand(t *testing.T) {
	b := BBox{MinLon: 1, MinLat: 2, MaxLon: 3, MaxLat: 4}.Expand(0.5)
	assert.Equal(t, BBox{MinLon: 0.5, MinLat: 1.5, MaxLon: 3.5, MaxLat: 4.5}, b)
}

func TestExtent(t *testing.T) {
	e := NewExtent()
	assert.True(t, e.IsEmpty())
	assert.Equal(t, BBox{}, e.BBox())

	e.Add(10, 20)
	e.Add(-5, 40)
	e.Add(3, -1)
	assert.False(t, e.IsEmpty())

	b := e.BBox()
	assert.InDelta(t, -5, b.MinLon, 1e-9)
	assert.InDelta(t, -1, b.MinLat, 1e-9)
	assert.InDelta(t, 10, b.MaxLon, 1e-9)
	assert.InDelta(t, 40, b.MaxLat, 1e-9)
}
