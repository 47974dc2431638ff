package render

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"sort"
	"strings"

	sydcolor "github.com/andrepxx/sydney/color"
)

// ErrUnknownScale is returned for a colour scale name that is not registered
var ErrUnknownScale = errors.New("unknown colour scale")

// Transparent is the colour of empty pixels
var Transparent = color.NRGBA{}

// ColorScale maps a normalised density v in (0, 1] to a colour.
// Implementations must be monotonic: a larger v never maps to a lower
// position on the scale.
type ColorScale interface {
	Color(v float64) color.NRGBA
}

// ColorScaleFunc adapts a function to ColorScale
type ColorScaleFunc func(v float64) color.NRGBA

// Color implements ColorScale
func (f ColorScaleFunc) Color(v float64) color.NRGBA {
	return f(v)
}

// RedBlue fades from opaque blue at low density to opaque red at high
// density along a square-root curve
var RedBlue = ColorScaleFunc(func(v float64) color.NRGBA {
	if !(v > 0) {
		return Transparent
	}
	intensity := math.Min(math.Sqrt(v), 1)
	r := uint8(255 * intensity)
	return color.NRGBA{R: r, G: 0, B: 255 - r, A: 255}
})

// Stop is one anchor of a Gradient
type Stop struct {
	At    float64
	Color color.NRGBA
}

// Gradient interpolates linearly between stops sorted by At
type Gradient []Stop

// Color implements ColorScale
func (g Gradient) Color(v float64) color.NRGBA {
	if !(v > 0) || len(g) == 0 {
		return Transparent
	}
	if v >= g[len(g)-1].At {
		return g[len(g)-1].Color
	}
	if v <= g[0].At {
		return g[0].Color
	}

	i := sort.Search(len(g), func(i int) bool { return g[i].At >= v })
	lo, hi := g[i-1], g[i]
	t := (v - lo.At) / (hi.At - lo.At)
	return color.NRGBA{
		R: lerp(lo.Color.R, hi.Color.R, t),
		G: lerp(lo.Color.G, hi.Color.G, t),
		B: lerp(lo.Color.B, hi.Color.B, t),
		A: lerp(lo.Color.A, hi.Color.A, t),
	}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

// Heat runs from translucent blue through cyan, green and yellow to opaque red
var Heat = Gradient{
	{At: 0.00, Color: color.NRGBA{R: 0, G: 0, B: 255, A: 96}},
	{At: 0.25, Color: color.NRGBA{R: 0, G: 255, B: 255, A: 160}},
	{At: 0.50, Color: color.NRGBA{R: 0, G: 255, B: 0, A: 200}},
	{At: 0.75, Color: color.NRGBA{R: 255, G: 255, B: 0, A: 230}},
	{At: 1.00, Color: color.NRGBA{R: 255, G: 0, B: 0, A: 255}},
}

// Grayscale darkens and becomes more opaque with density
var Grayscale = Gradient{
	{At: 0.00, Color: color.NRGBA{R: 160, G: 160, B: 160, A: 48}},
	{At: 1.00, Color: color.NRGBA{R: 0, G: 0, B: 0, A: 255}},
}

// GridMapping colours a whole tile at once from its raw counts.
// sydney's color.Mapping satisfies it.
type GridMapping interface {
	Map(counts []uint64) []color.NRGBA
}

// mappedResolution is the reference maximum used when a MappedScale has to
// colour a single normalised value
const mappedResolution = 1 << 16

// MappedScale wraps a sydney colour mapping. The renderer hands it the
// counts of the whole tile, so the mapping applies its own normalisation.
type MappedScale struct {
	mapping sydcolor.Mapping
}

// NewMappedScale wraps mapping as a colour scale
func NewMappedScale(mapping sydcolor.Mapping) MappedScale {
	return MappedScale{mapping: mapping}
}

// Map implements GridMapping
func (m MappedScale) Map(counts []uint64) []color.NRGBA {
	return m.mapping.Map(counts)
}

// Color implements ColorScale by placing v on a distribution whose maximum
// is mappedResolution
func (m MappedScale) Color(v float64) color.NRGBA {
	if !(v > 0) {
		return Transparent
	}
	count := uint64(math.Round(math.Min(v, 1) * mappedResolution))
	if count == 0 {
		count = 1
	}
	return m.mapping.Map([]uint64{count, mappedResolution})[0]
}

var scales = map[string]ColorScale{
	"redblue":    RedBlue,
	"heat":       Heat,
	"grayscale":  Grayscale,
	"spectrum":   NewMappedScale(sydcolor.DefaultMapping()),
	"red":        NewMappedScale(sydcolor.SimpleMapping(255, 0, 0)),
	"green":      NewMappedScale(sydcolor.SimpleMapping(0, 255, 0)),
	"blue":       NewMappedScale(sydcolor.SimpleMapping(0, 0, 255)),
	"yellow":     NewMappedScale(sydcolor.SimpleMapping(255, 255, 0)),
	"cyan":       NewMappedScale(sydcolor.SimpleMapping(0, 255, 255)),
	"magenta":    NewMappedScale(sydcolor.SimpleMapping(255, 0, 255)),
	"gray":       NewMappedScale(sydcolor.SimpleMapping(127, 127, 127)),
	"brightblue": NewMappedScale(sydcolor.SimpleMapping(127, 127, 255)),
	"white":      NewMappedScale(sydcolor.SimpleMapping(255, 255, 255)),
}

// ScaleByName looks up a built-in colour scale
func ScaleByName(name string) (ColorScale, error) {
	s, ok := scales[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownScale, name, strings.Join(ScaleNames(), ", "))
	}
	return s, nil
}

// ScaleNames lists the built-in colour scales in sorted order
func ScaleNames() []string {
	names := make([]string, 0, len(scales))
	for name := range scales {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
