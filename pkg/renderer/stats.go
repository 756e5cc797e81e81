package renderer

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/df07/go-sphere-tracer/pkg/core"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalPixels     int           // Total number of pixels rendered
	TotalSamples    int           // Total number of samples taken
	SamplesPerPixel int           // Samples accumulated in every pixel
	MaxDepth        int           // Bounce limit used
	Duration        time.Duration // Wall time spent rendering
	MeanLuminance   float64       // Mean luminance of the gamma-corrected frame
	LuminanceStdDev float64       // Standard deviation of that luminance
}

// PixelStats tracks sampling statistics for a single pixel
type PixelStats struct {
	ColorAccum  core.Vec3 // RGB accumulator for final result
	SampleCount int       // Number of samples taken
}

// AddSample adds a new color sample to the pixel statistics
func (ps *PixelStats) AddSample(color core.Vec3) {
	ps.ColorAccum = ps.ColorAccum.Add(color)
	ps.SampleCount++
}

// GetColor returns the current average color for this pixel
func (ps *PixelStats) GetColor() core.Vec3 {
	if ps.SampleCount == 0 {
		return core.Vec3{X: 0, Y: 0, Z: 0}
	}
	return ps.ColorAccum.Multiply(1.0 / float64(ps.SampleCount))
}

// computeStats fills in the frame-derived statistics
func computeStats(frame *Frame, samplesPerPixel, maxDepth int, duration time.Duration) RenderStats {
	stats := RenderStats{
		TotalPixels:     len(frame.Pixels),
		TotalSamples:    len(frame.Pixels) * samplesPerPixel,
		SamplesPerPixel: samplesPerPixel,
		MaxDepth:        maxDepth,
		Duration:        duration,
	}
	switch lums := frame.Luminances(); len(lums) {
	case 0:
	case 1:
		// The sample standard deviation is undefined for one value
		stats.MeanLuminance = lums[0]
	default:
		stats.MeanLuminance, stats.LuminanceStdDev = stat.MeanStdDev(lums, nil)
	}
	return stats
}
