package integrator

import (
	"math"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/scene"
)

// PathTracingIntegrator implements unidirectional path tracing against a sky gradient
type PathTracingIntegrator struct {
	config scene.SamplingConfig
}

// NewPathTracingIntegrator creates a new path tracing integrator
func NewPathTracingIntegrator(config scene.SamplingConfig) *PathTracingIntegrator {
	return &PathTracingIntegrator{
		config: config,
	}
}

// RayColor computes the color for a single camera ray
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, scene *scene.Scene, sampler core.Sampler) core.Color {
	return pt.Trace(ray, scene, sampler, pt.config.MaxDepth)
}

// Trace follows a path for at most depth bounces. Each scatter multiplies
// the throughput by the material attenuation; a miss returns throughput
// times the background, absorption or an exhausted depth returns black.
func (pt *PathTracingIntegrator) Trace(ray core.Ray, scene *scene.Scene, sampler core.Sampler, depth int) core.Color {
	throughput := core.NewVec3(1, 1, 1)

	for ; depth > 0; depth-- {
		hit, isHit := scene.Hit(ray, TMin, math.Inf(1))
		if !isHit {
			return throughput.MultiplyVec(BackgroundGradient(ray, scene))
		}

		scatter, didScatter := scene.Scatter(ray, *hit, sampler)
		if !didScatter {
			return core.Color{}
		}

		throughput = throughput.MultiplyVec(scatter.Attenuation)
		ray = scatter.Scattered
	}

	// If we've exceeded the ray bounce limit, no more light is gathered
	return core.Color{}
}

// BackgroundGradient blends the scene's bottom color into its top color by
// the height of the normalized ray direction
func BackgroundGradient(r core.Ray, scene *scene.Scene) core.Color {
	topColor, bottomColor := scene.GetBackgroundColors()

	unitDirection := r.Direction.Normalize()

	// Map y from [-1,1] to [0,1]
	t := 0.5 * (unitDirection.Y + 1.0)

	return bottomColor.Multiply(1.0 - t).Add(topColor.Multiply(t))
}
