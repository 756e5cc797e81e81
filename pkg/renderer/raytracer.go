package renderer

import (
	"context"
	"time"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/integrator"
	"github.com/df07/go-sphere-tracer/pkg/scene"
)

// DefaultSeed seeds the sampler of a new Raytracer
const DefaultSeed = 42

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	SamplesPerPixel int // Number of rays per pixel
	MaxDepth        int // Maximum ray bounce depth
}

// DefaultSamplingConfig returns sensible default values
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		SamplesPerPixel: 100,
		MaxDepth:        50,
	}
}

// ProgressFunc is called after each finished row
type ProgressFunc func(rowsDone, totalRows int)

// Raytracer handles the rendering process
type Raytracer struct {
	scene      *scene.Scene
	width      int
	height     int
	config     SamplingConfig
	sampler    core.Sampler
	integrator integrator.Integrator
	logger     core.Logger
	progress   ProgressFunc
}

// NewRaytracer creates a new raytracer
func NewRaytracer(scene *scene.Scene, width, height int) *Raytracer {
	rt := &Raytracer{
		scene:   scene,
		width:   width,
		height:  height,
		sampler: core.NewSeededSampler(DefaultSeed), // Deterministic for testing
		logger:  core.NopLogger{},
	}
	rt.SetSamplingConfig(DefaultSamplingConfig())
	return rt
}

// SetSamplingConfig updates the sampling configuration
func (rt *Raytracer) SetSamplingConfig(config SamplingConfig) {
	rt.config = config
	rt.integrator = integrator.NewPathTracingIntegrator(scene.SamplingConfig{
		Width:           rt.width,
		Height:          rt.height,
		SamplesPerPixel: config.SamplesPerPixel,
		MaxDepth:        config.MaxDepth,
	})
}

// SetSeed restarts the random sequence from seed
func (rt *Raytracer) SetSeed(seed int64) {
	rt.sampler = core.NewSeededSampler(seed)
}

// SetLogger sets the logger used for progress output
func (rt *Raytracer) SetLogger(logger core.Logger) {
	if logger == nil {
		logger = core.NopLogger{}
	}
	rt.logger = logger
}

// SetProgress installs a per-row progress callback
func (rt *Raytracer) SetProgress(progress ProgressFunc) {
	rt.progress = progress
}

// RenderPass renders every pixel with the configured sample count. It stops
// between rows once ctx is done and returns ctx's error.
func (rt *Raytracer) RenderPass(ctx context.Context) (*Frame, RenderStats, error) {
	start := time.Now()
	pixelStats := make([]PixelStats, rt.width*rt.height)

	if err := rt.accumulate(ctx, pixelStats, rt.config.SamplesPerPixel); err != nil {
		return nil, RenderStats{}, err
	}

	frame := rt.resolve(pixelStats)
	stats := computeStats(frame, rt.config.SamplesPerPixel, rt.config.MaxDepth, time.Since(start))
	rt.logger.Printf("Rendered %dx%d at %d samples/pixel in %v\n",
		rt.width, rt.height, rt.config.SamplesPerPixel, stats.Duration)
	return frame, stats, nil
}

// accumulate adds samples to every pixel, scanning rows top to bottom and
// columns left to right. Cancellation is checked between rows.
func (rt *Raytracer) accumulate(ctx context.Context, pixelStats []PixelStats, samples int) error {
	camera := rt.scene.GetCamera()
	sDenom := float64(max(rt.width-1, 1))
	tDenom := float64(max(rt.height-1, 1))

	for row := 0; row < rt.height; row++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		// Image rows run top-down, camera t runs bottom-up
		j := rt.height - 1 - row
		for i := 0; i < rt.width; i++ {
			pixel := &pixelStats[row*rt.width+i]
			for sample := 0; sample < samples; sample++ {
				jitter := rt.sampler.Get2D()
				s := (float64(i) + jitter.X) / sDenom
				t := (float64(j) + jitter.Y) / tDenom

				ray := camera.GetRay(s, t, rt.sampler)
				pixel.AddSample(rt.integrator.RayColor(ray, rt.scene, rt.sampler))
			}
		}

		if rt.progress != nil {
			rt.progress(row+1, rt.height)
		}
	}
	return nil
}

// resolve averages the accumulated samples and applies gamma 2.0
func (rt *Raytracer) resolve(pixelStats []PixelStats) *Frame {
	frame := NewFrame(rt.width, rt.height)
	for i := range pixelStats {
		frame.Pixels[i] = pixelStats[i].GetColor().GammaCorrect(2.0)
	}
	return frame
}
