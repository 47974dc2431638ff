package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"
	"sync"

	"github.com/ScottSyms/densitytiles/internal/density"
)

// ContentType of every rendered tile
const ContentType = "image/png"

// ErrEncode is returned when the image encoder fails
var ErrEncode = errors.New("tile encoding failed")

// Normalization selects how counts are compressed into (0, 1]
type Normalization int

const (
	// Log maps c to ln(1+c)/ln(1+max)
	Log Normalization = iota
	// Linear maps c to c/max
	Linear
)

// ParseNormalization accepts "log" or "linear"
func ParseNormalization(name string) (Normalization, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "log":
		return Log, nil
	case "linear":
		return Linear, nil
	}
	return Log, fmt.Errorf("unknown normalization %q", name)
}

// ParseCompression maps speed, default, best and none to png levels
func ParseCompression(name string) (png.CompressionLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "speed":
		return png.BestSpeed, nil
	case "default":
		return png.DefaultCompression, nil
	case "best":
		return png.BestCompression, nil
	case "none":
		return png.NoCompression, nil
	}
	return png.BestSpeed, fmt.Errorf("unknown png compression %q", name)
}

// bufferPool recycles encoder scratch buffers. Each Encode call holds its
// buffer exclusively until it returns it.
type bufferPool struct {
	pool sync.Pool
}

func (p *bufferPool) Get() *png.EncoderBuffer {
	b, _ := p.pool.Get().(*png.EncoderBuffer)
	return b
}

func (p *bufferPool) Put(b *png.EncoderBuffer) {
	p.pool.Put(b)
}

// Renderer turns density grids into PNG images. It holds no per-request
// state and may be shared between goroutines.
type Renderer struct {
	scale         ColorScale
	normalization Normalization
	saturation    uint32
	encoder       *png.Encoder
}

// Option configures a Renderer
type Option func(*Renderer)

// WithNormalization selects log or linear count compression
func WithNormalization(n Normalization) Option {
	return func(r *Renderer) { r.normalization = n }
}

// WithSaturation fixes the count that maps to the top of the scale.
// Zero uses the densest pixel of each tile.
func WithSaturation(count uint32) Option {
	return func(r *Renderer) { r.saturation = count }
}

// WithCompression sets the png compression level
func WithCompression(level png.CompressionLevel) Option {
	return func(r *Renderer) { r.encoder.CompressionLevel = level }
}

// NewRenderer creates a renderer with a default colour scale
func NewRenderer(scale ColorScale, opts ...Option) *Renderer {
	if scale == nil {
		scale = RedBlue
	}
	r := &Renderer{
		scale:         scale,
		normalization: Log,
		encoder: &png.Encoder{
			CompressionLevel: png.BestSpeed,
			BufferPool:       &bufferPool{},
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render colours the grid with the default scale and encodes it
func (r *Renderer) Render(grid *density.Grid) ([]byte, error) {
	return r.RenderWith(grid, nil)
}

// RenderWith colours the grid with scale, or the default scale when nil, and encodes it
func (r *Renderer) RenderWith(grid *density.Grid, scale ColorScale) ([]byte, error) {
	if scale == nil {
		scale = r.scale
	}

	img := r.Colorize(grid, scale)

	var buf bytes.Buffer
	if err := r.encoder.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return buf.Bytes(), nil
}

// Colorize maps every cell of the grid through scale into an NRGBA raster
func (r *Renderer) Colorize(grid *density.Grid, scale ColorScale) *image.NRGBA {
	size := grid.Size()
	img := image.NewNRGBA(image.Rect(0, 0, size, size))

	top := r.saturation
	if top == 0 {
		top = grid.Max()
	}
	if top == 0 {
		return img
	}

	if m, ok := scale.(GridMapping); ok {
		r.colorizeMapped(img, grid, m, top)
		return img
	}

	for i, c := range grid.Counts() {
		if c == 0 {
			continue
		}
		setPixel(img, i, scale.Color(r.intensity(c, top)))
	}
	return img
}

// colorizeMapped feeds the saturated counts of the tile to m in one call.
// Normalisation is left to the mapping.
func (r *Renderer) colorizeMapped(img *image.NRGBA, grid *density.Grid, m GridMapping, top uint32) {
	cells := grid.Counts()
	counts := make([]uint64, len(cells))
	for i, c := range cells {
		counts[i] = uint64(min(c, top))
	}

	colors := m.Map(counts)
	for i, c := range cells {
		if c == 0 || i >= len(colors) {
			continue
		}
		setPixel(img, i, colors[i])
	}
}

func setPixel(img *image.NRGBA, i int, col color.NRGBA) {
	px := img.Pix[i*4 : i*4+4 : i*4+4]
	px[0] = col.R
	px[1] = col.G
	px[2] = col.B
	px[3] = col.A
}

func (r *Renderer) intensity(c, top uint32) float64 {
	if c >= top {
		return 1
	}
	if r.normalization == Linear {
		return float64(c) / float64(top)
	}
	return math.Log1p(float64(c)) / math.Log1p(float64(top))
}
