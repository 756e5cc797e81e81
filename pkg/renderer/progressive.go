package renderer

import (
	"context"
	"time"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/scene"
)

// ProgressiveConfig contains configuration for progressive rendering
type ProgressiveConfig struct {
	InitialSamples     int   // Samples for first pass (1 recommended)
	MaxSamplesPerPixel int   // Maximum total samples per pixel
	MaxPasses          int   // Maximum number of passes
	MaxDepth           int   // Maximum ray bounce depth
	Seed               int64 // Sampler seed
}

// DefaultProgressiveConfig returns sensible default values
func DefaultProgressiveConfig() ProgressiveConfig {
	return ProgressiveConfig{
		InitialSamples:     1,
		MaxSamplesPerPixel: 64,
		MaxPasses:          7, // 1, 2, 4, 8, 16, 32, 64
		MaxDepth:           50,
		Seed:               DefaultSeed,
	}
}

// PassResult contains the result of a single pass
type PassResult struct {
	PassNumber int
	Frame      *Frame
	Stats      RenderStats
	IsLast     bool
}

// ProgressiveRaytracer renders passes of increasing sample counts into a
// shared accumulation grid, so every pass refines the previous image
type ProgressiveRaytracer struct {
	width, height int
	config        ProgressiveConfig
	pixelStats    []PixelStats // Accumulated samples, frame order
	samplesSoFar  int          // Samples already in every pixel
	raytracer     *Raytracer   // Base raytracer for actual rendering
	logger        core.Logger  // Logger for rendering output
}

// NewProgressiveRaytracer creates a new progressive raytracer
func NewProgressiveRaytracer(scene *scene.Scene, width, height int, config ProgressiveConfig, logger core.Logger) *ProgressiveRaytracer {
	if logger == nil {
		logger = core.NopLogger{}
	}

	raytracer := NewRaytracer(scene, width, height)
	raytracer.SetSeed(config.Seed)
	raytracer.SetSamplingConfig(SamplingConfig{
		SamplesPerPixel: config.MaxSamplesPerPixel,
		MaxDepth:        config.MaxDepth,
	})

	return &ProgressiveRaytracer{
		width:      width,
		height:     height,
		config:     config,
		pixelStats: make([]PixelStats, width*height),
		raytracer:  raytracer,
		logger:     logger,
	}
}

// getSamplesForPass calculates the target total samples for a given pass:
// InitialSamples doubling each pass, capped at MaxSamplesPerPixel. The
// final allowed pass always reaches the maximum.
func (pr *ProgressiveRaytracer) getSamplesForPass(passNumber int) int {
	if passNumber >= pr.config.MaxPasses {
		return pr.config.MaxSamplesPerPixel
	}

	target := max(pr.config.InitialSamples, 1)
	for pass := 1; pass < passNumber && target < pr.config.MaxSamplesPerPixel; pass++ {
		target *= 2
	}
	return min(target, pr.config.MaxSamplesPerPixel)
}

// RenderPass renders a single progressive pass, topping every pixel up to
// the pass's target sample count
func (pr *ProgressiveRaytracer) RenderPass(ctx context.Context, passNumber int) (*Frame, RenderStats, error) {
	start := time.Now()

	targetSamples := pr.getSamplesForPass(passNumber)
	pr.logger.Printf("Pass %d: Target %d samples per pixel...\n", passNumber, targetSamples)

	if extra := targetSamples - pr.samplesSoFar; extra > 0 {
		if err := pr.raytracer.accumulate(ctx, pr.pixelStats, extra); err != nil {
			return nil, RenderStats{}, err
		}
		pr.samplesSoFar = targetSamples
	}

	frame := pr.raytracer.resolve(pr.pixelStats)
	stats := computeStats(frame, pr.samplesSoFar, pr.config.MaxDepth, time.Since(start))
	return frame, stats, nil
}

// RenderProgressive runs passes until the sample cap or pass limit is hit,
// calling onPass after each one. A callback error stops rendering.
func (pr *ProgressiveRaytracer) RenderProgressive(ctx context.Context, onPass func(PassResult) error) error {
	pr.logger.Printf("Starting progressive rendering with up to %d passes...\n", pr.config.MaxPasses)

	for pass := 1; pass <= pr.config.MaxPasses; pass++ {
		if err := ctx.Err(); err != nil {
			pr.logger.Printf("Rendering cancelled before pass %d\n", pass)
			return err
		}

		frame, stats, err := pr.RenderPass(ctx, pass)
		if err != nil {
			pr.logger.Printf("Rendering stopped during pass %d: %v\n", pass, err)
			return err
		}

		pr.logger.Printf("Pass %d completed in %v (%d samples/pixel)\n",
			pass, stats.Duration, stats.SamplesPerPixel)

		isLast := pass == pr.config.MaxPasses || pr.samplesSoFar >= pr.config.MaxSamplesPerPixel
		if onPass != nil {
			if err := onPass(PassResult{PassNumber: pass, Frame: frame, Stats: stats, IsLast: isLast}); err != nil {
				return err
			}
		}

		if isLast {
			break
		}
	}
	return nil
}
