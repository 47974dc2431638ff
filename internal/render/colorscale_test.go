package render

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScaleByName(t *testing.T) {
	for _, name := range []string{"redblue", "heat", "grayscale", " HEAT "} {
		s, err := ScaleByName(name)
		require.NoError(t, err, name)
		assert.NotNil(t, s)
	}

	_, err := ScaleByName("rainbow")
	assert.ErrorIs(t, err, ErrUnknownScale)
	assert.Contains(t, err.Error(), "redblue")
}

func TestScaleNames(t *testing.T) {
	assert.Equal(t, []string{
		"blue", "brightblue", "cyan", "gray", "grayscale", "green", "heat",
		"magenta", "red", "redblue", "spectrum", "white", "yellow",
	}, ScaleNames())
}

func TestMappedScaleColor(t *testing.T) {
	spectrum, err := ScaleByName("spectrum")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, spectrum.Color(1))
	assert.Equal(t, color.NRGBA{R: 0, G: 0, B: 255, A: 255}, spectrum.Color(1e-9))

	red, err := ScaleByName("red")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, red.Color(0.3))
	assert.Equal(t, Transparent, red.Color(0))

	_, ok := red.(GridMapping)
	assert.True(t, ok)
}

func TestScalesTransparentAtZero(t *testing.T) {
	for _, name := range ScaleNames() {
		s, err := ScaleByName(name)
		require.NoError(t, err)
		assert.Equal(t, Transparent, s.Color(0), name)
		assert.Equal(t, Transparent, s.Color(-1), name)
	}
}

func TestRedBlueEndpoints(t *testing.T) {
	top := RedBlue.Color(1)
	assert.Equal(t, uint8(255), top.R)
	assert.Equal(t, uint8(0), top.B)
	assert.Equal(t, uint8(255), top.A)

	// sqrt(0.25) = 0.5
	mid := RedBlue.Color(0.25)
	assert.Equal(t, uint8(127), mid.R)
	assert.Equal(t, uint8(128), mid.B)
}

// Each scale moves monotonically along its ramp: redness for redblue,
// opacity for the gradients
func TestScalesMonotonic(t *testing.T) {
	cases := map[string]func(v float64) int{
		"redblue":   func(v float64) int { return int(RedBlue.Color(v).R) },
		"heat":      func(v float64) int { return int(Heat.Color(v).A) },
		"grayscale": func(v float64) int { return int(Grayscale.Color(v).A) },
	}

	for name, key := range cases {
		prev := -1
		for i := 1; i <= 1000; i++ {
			k := key(float64(i) / 1000)
			assert.GreaterOrEqual(t, k, prev, "%s at %d", name, i)
			prev = k
		}
	}
}

func TestGradientInterpolates(t *testing.T) {
	g := Gradient{
		{At: 0, Color: Transparent},
		{At: 1, Color: RedBlue.Color(1)},
	}
	c := g.Color(0.5)
	assert.Equal(t, uint8(128), c.R)
	assert.Equal(t, uint8(128), c.A)
	assert.Equal(t, RedBlue.Color(1), g.Color(2))
}
