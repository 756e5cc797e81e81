package renderer

import (
	"image"
	"image/color"

	"github.com/df07/go-sphere-tracer/pkg/core"
)

// Frame holds gamma-corrected pixel colors in row-major order, top row first
type Frame struct {
	Width  int
	Height int
	Pixels []core.Color
}

// NewFrame allocates a black frame
func NewFrame(width, height int) *Frame {
	return &Frame{
		Width:  width,
		Height: height,
		Pixels: make([]core.Color, width*height),
	}
}

// At returns the color at column x, row y (row 0 is the top)
func (f *Frame) At(x, y int) core.Color {
	return f.Pixels[y*f.Width+x]
}

// Set stores the color at column x, row y
func (f *Frame) Set(x, y int, c core.Color) {
	f.Pixels[y*f.Width+x] = c
}

// ToByte maps a color component to 0..255: int(256 * clamp(c, 0, 0.999))
func ToByte(c float64) uint8 {
	return uint8(256 * max(0.0, min(0.999, c)))
}

// ToRGBA converts the frame to an 8-bit image for encoding
func (f *Frame) ToRGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			c := f.At(x, y)
			img.SetRGBA(x, y, color.RGBA{
				R: ToByte(c.X),
				G: ToByte(c.Y),
				B: ToByte(c.Z),
				A: 255,
			})
		}
	}
	return img
}

// Luminances returns the luminance of every pixel in frame order
func (f *Frame) Luminances() []float64 {
	lums := make([]float64, len(f.Pixels))
	for i, c := range f.Pixels {
		lums[i] = c.Luminance()
	}
	return lums
}
