package integrator

import (
	"math"
	"testing"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/geometry"
	"github.com/df07/go-sphere-tracer/pkg/material"
	"github.com/df07/go-sphere-tracer/pkg/scene"
)

// createTestScene creates an empty scene with the default sky gradient
func createTestScene() *scene.Scene {
	return scene.New("test", geometry.CameraConfig{
		LookFrom:    core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        90,
		AspectRatio: 1,
	}, scene.SamplingConfig{Width: 10, Height: 10, SamplesPerPixel: 1, MaxDepth: 10})
}

func assertColor(t *testing.T, got, want core.Color) {
	t.Helper()
	tolerance := 1e-9
	if math.Abs(got.X-want.X) > tolerance || math.Abs(got.Y-want.Y) > tolerance || math.Abs(got.Z-want.Z) > tolerance {
		t.Errorf("Expected color %v, got %v", want, got)
	}
}

func TestBackgroundGradient(t *testing.T) {
	sc := createTestScene()

	tests := []struct {
		name      string
		direction core.Vec3
		expected  core.Color
	}{
		{"straight up", core.NewVec3(0, 1, 0), scene.SkyBlue},
		{"straight down", core.NewVec3(0, -1, 0), scene.White},
		{"horizon", core.NewVec3(0, 0, -1), core.NewVec3(0.75, 0.85, 1.0)},
		{"unnormalized up", core.NewVec3(0, 7, 0), scene.SkyBlue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(core.NewVec3(0, 0, 0), tt.direction)
			assertColor(t, BackgroundGradient(ray, sc), tt.expected)
		})
	}
}

func TestPathTracingDepthTermination(t *testing.T) {
	sc := createTestScene()
	sampler := core.NewSeededSampler(42)

	// Even a ray that would escape to the sky gathers nothing at depth 0
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0))

	integrator := NewPathTracingIntegrator(scene.SamplingConfig{MaxDepth: 0})
	assertColor(t, integrator.RayColor(ray, sc, sampler), core.Color{})

	integrator = NewPathTracingIntegrator(scene.SamplingConfig{MaxDepth: -3})
	assertColor(t, integrator.RayColor(ray, sc, sampler), core.Color{})

	integrator = NewPathTracingIntegrator(scene.SamplingConfig{MaxDepth: 1})
	assertColor(t, integrator.RayColor(ray, sc, sampler), scene.SkyBlue)
}

func TestPathTracingMirrorAttenuation(t *testing.T) {
	sc := createTestScene()
	mirror := sc.AddMaterial(material.NewMetal(core.NewVec3(0.5, 0.5, 0.5), 0))
	sc.AddSphere(core.NewVec3(0, 0, -2), 0.5, mirror)

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
	sampler := core.NewSeededSampler(1)

	// One bounce is spent on the mirror, none left to reach the sky
	integrator := NewPathTracingIntegrator(scene.SamplingConfig{MaxDepth: 1})
	assertColor(t, integrator.RayColor(ray, sc, sampler), core.Color{})

	// Reflected straight back toward +z: horizon color times albedo
	integrator = NewPathTracingIntegrator(scene.SamplingConfig{MaxDepth: 2})
	assertColor(t, integrator.RayColor(ray, sc, sampler), core.NewVec3(0.375, 0.425, 0.5))
}

func TestPathTracingThroughputProduct(t *testing.T) {
	sc := createTestScene()
	red := sc.AddMaterial(material.NewMetal(core.NewVec3(1, 0.5, 0.5), 0))
	blue := sc.AddMaterial(material.NewMetal(core.NewVec3(0.5, 0.5, 1), 0))

	// Mirrors tilted at 45 degrees: the first turns a -z ray upward at (0,0,-1),
	// the second turns it toward +z at (0,2,-1)
	r := 0.5
	offset := r / math.Sqrt2
	sc.AddSphere(core.NewVec3(0, -offset, -1-offset), r, red)
	sc.AddSphere(core.NewVec3(0, 2+offset, -1-offset), r, blue)

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
	integrator := NewPathTracingIntegrator(scene.SamplingConfig{MaxDepth: 10})
	color := integrator.RayColor(ray, sc, core.NewSeededSampler(3))

	// red * blue * horizon
	expected := core.NewVec3(0.5*0.75, 0.25*0.85, 0.5*1.0)
	tolerance := 1e-6
	if math.Abs(color.X-expected.X) > tolerance || math.Abs(color.Y-expected.Y) > tolerance || math.Abs(color.Z-expected.Z) > tolerance {
		t.Errorf("Expected %v, got %v", expected, color)
	}

	// Three bounces are needed; two leave the path unfinished
	integrator = NewPathTracingIntegrator(scene.SamplingConfig{MaxDepth: 2})
	assertColor(t, integrator.RayColor(ray, sc, core.NewSeededSampler(3)), core.Color{})
}

func TestPathTracingAbsorption(t *testing.T) {
	sc := createTestScene()

	// A material ID the arena does not hold absorbs every ray
	sc.AddSphere(core.NewVec3(0, 0, -1), 0.5, material.ID(99))

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
	integrator := NewPathTracingIntegrator(scene.SamplingConfig{MaxDepth: 10})
	assertColor(t, integrator.RayColor(ray, sc, core.NewSeededSampler(1)), core.Color{})
}

func TestPathTracingSelfIntersection(t *testing.T) {
	sc := createTestScene()
	gray := sc.AddMaterial(material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))
	sc.AddSphere(core.NewVec3(0, -100.5, -1), 100, gray)

	// Scattered rays must leave the surface they start on
	integrator := NewPathTracingIntegrator(scene.SamplingConfig{MaxDepth: 50})
	sampler := core.NewSeededSampler(5)
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, -1, -1))

	var sum core.Color
	n := 200
	for i := 0; i < n; i++ {
		sum = sum.Add(integrator.RayColor(ray, sc, sampler))
	}
	mean := sum.Divide(float64(n))
	if mean.Luminance() < 0.2 {
		t.Errorf("Expected ground to be lit by the sky, mean color %v", mean)
	}
}
