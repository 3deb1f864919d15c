package renderer

import (
	"image"
	"image/color"
	"math"

	"github.com/df07/go-sphere-tracer/pkg/core"
)

// maxChannel keeps a fully saturated channel below 1 so that ×256 still fits a byte
const maxChannel = 0.999

// Canvas holds tone-mapped 8-bit RGB pixels in top-to-bottom row order
type Canvas struct {
	width, height int
	pix           []uint8 // 3 bytes per pixel, row-major from the top
}

// NewCanvas creates a black canvas
func NewCanvas(width, height int) *Canvas {
	return &Canvas{
		width:  width,
		height: height,
		pix:    make([]uint8, 3*width*height),
	}
}

// Width returns the canvas width in pixels
func (c *Canvas) Width() int { return c.width }

// Height returns the canvas height in pixels
func (c *Canvas) Height() int { return c.height }

// ToneMap averages an accumulated linear color, applies gamma 2 (square root),
// clamps to [0, 0.999] and quantizes each channel to a byte
func ToneMap(sum core.Color, samples int) [3]uint8 {
	scale := 1.0 / float64(samples)
	avg := sum.Multiply(scale)
	return [3]uint8{toByte(avg.X), toByte(avg.Y), toByte(avg.Z)}
}

func toByte(c float64) uint8 {
	// NaN fails every comparison and would survive clamping
	if !(c > 0) {
		return 0
	}
	g := math.Sqrt(c)
	if g > maxChannel {
		g = maxChannel
	}
	return uint8(256 * g)
}

// SetPixel stores a tone-mapped pixel at image coordinates (row 0 is the top)
func (c *Canvas) SetPixel(x, row int, rgb [3]uint8) {
	i := 3 * (row*c.width + x)
	c.pix[i], c.pix[i+1], c.pix[i+2] = rgb[0], rgb[1], rgb[2]
}

// SetRenderPixel stores a pixel given in render coordinates, where y = 0 is the bottom row
func (c *Canvas) SetRenderPixel(x, y int, rgb [3]uint8) {
	c.SetPixel(x, c.height-1-y, rgb)
}

// Pixel returns the pixel at image coordinates
func (c *Canvas) Pixel(x, row int) [3]uint8 {
	i := 3 * (row*c.width + x)
	return [3]uint8{c.pix[i], c.pix[i+1], c.pix[i+2]}
}

// RGB returns a copy of the interleaved RGB bytes, 3·width·height long
func (c *Canvas) RGB() []byte {
	out := make([]byte, len(c.pix))
	copy(out, c.pix)
	return out
}

// Packed returns one 0xRRGGBB value per pixel, width·height long
func (c *Canvas) Packed() []uint32 {
	out := make([]uint32, c.width*c.height)
	for i := range out {
		r, g, b := c.pix[3*i], c.pix[3*i+1], c.pix[3*i+2]
		out[i] = uint32(r)<<16 | uint32(g)<<8 | uint32(b)
	}
	return out
}

// Image converts the canvas to an opaque RGBA image for encoders
func (c *Canvas) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	for row := 0; row < c.height; row++ {
		for x := 0; x < c.width; x++ {
			p := c.Pixel(x, row)
			img.SetRGBA(x, row, color.RGBA{R: p[0], G: p[1], B: p[2], A: 255})
		}
	}
	return img
}

// Clone returns an independent copy of the canvas
func (c *Canvas) Clone() *Canvas {
	return &Canvas{width: c.width, height: c.height, pix: c.RGB()}
}

// AverageLuminance returns the mean Rec. 709 luminance of the stored bytes, in [0, 1]
func (c *Canvas) AverageLuminance() float64 {
	pixels := c.width * c.height
	if pixels == 0 {
		return 0
	}

	var sum float64
	for i := 0; i < len(c.pix); i += 3 {
		sum += core.NewVec3(float64(c.pix[i]), float64(c.pix[i+1]), float64(c.pix[i+2])).Luminance()
	}
	return sum / 255.0 / float64(pixels)
}
