package scene

import (
	"math"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/geometry"
	"github.com/df07/go-sphere-tracer/pkg/material"
)

const (
	gridSize   = 20  // spheres per side
	gridExtent = 9.0 // world units covered by one side
	gridCenter = 4.5
)

// oklchToRGB converts an OKLCH color (lightness 0-1, chroma, hue in degrees)
// to clamped linear RGB
func oklchToRGB(l, c, h float64) core.Color {
	hRad := h * math.Pi / 180.0
	a := c * math.Cos(hRad)
	b := c * math.Sin(hRad)

	// OKLAB to cone response, cubed
	lc := math.Pow(l+0.3963377774*a+0.2158037573*b, 3)
	mc := math.Pow(l-0.1055613458*a-0.0638541728*b, 3)
	sc := math.Pow(l-0.0894841775*a-1.2914855480*b, 3)

	rgb := core.NewVec3(
		+4.0767416621*lc-3.3077115913*mc+0.2309699292*sc,
		-1.2684380046*lc+2.6097574011*mc-0.3413193965*sc,
		-0.0041960863*lc-0.7034186147*mc+1.7076147010*sc,
	)
	return rgb.Clamp(0, 1)
}

// gridMaterial picks the metal for cell (i, j): hue sweeps along x, chroma along z
func gridMaterial(i, j int) material.Material {
	u := float64(i) / float64(gridSize-1)
	v := float64(j) / float64(gridSize-1)

	lightness := 0.65 + 0.1*math.Sin(float64(i+j)*0.5)
	albedo := oklchToRGB(lightness, 0.05+0.2*v, 360*u)
	fuzz := 0.05 + 0.05*float64((i+j)%3)
	return material.NewMetal(albedo, fuzz)
}

// NewSphereGridScene creates a square grid of small metal spheres on a gray
// ground, one material per sphere
func NewSphereGridScene(cameraOverrides ...geometry.CameraConfig) *Scene {
	cameraConfig := geometry.CameraConfig{
		LookFrom:    core.NewVec3(gridCenter, 6, 18),
		LookAt:      core.NewVec3(gridCenter, 0.8, gridCenter),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        40.0,
		AspectRatio: 16.0 / 9.0,
		Aperture:    0.02,
	}
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(cameraConfig, cameraOverrides[0])
	}

	width := 800
	s := New("sphere-grid", cameraConfig, SamplingConfig{
		Width:           width,
		Height:          HeightForWidth(width, cameraConfig.AspectRatio),
		SamplesPerPixel: 100,
		MaxDepth:        40,
	})

	// Ground top touches y=0
	ground := s.AddMaterial(material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))
	s.AddSphere(core.NewVec3(gridCenter, -10000, gridCenter), 10000, ground)

	spacing := gridExtent / float64(gridSize-1)
	radius := math.Max(0.02, math.Min(0.35, spacing*0.35))
	origin := gridCenter - gridExtent/2

	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			center := core.NewVec3(origin+float64(i)*spacing, radius, origin+float64(j)*spacing)
			s.AddSphere(center, radius, s.AddMaterial(gridMaterial(i, j)))
		}
	}

	return s
}
