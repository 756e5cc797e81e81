package scene

import (
	"errors"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/geometry"
	"github.com/df07/go-sphere-tracer/pkg/material"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Name           string
	Camera         *geometry.Camera
	CameraConfig   geometry.CameraConfig
	Shapes         *geometry.ShapeList // Objects in the scene
	Materials      *material.Arena     // Materials referenced by the shapes
	TopColor       core.Color          // Background color straight up
	BottomColor    core.Color          // Background color straight down
	SamplingConfig SamplingConfig
}

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	Width           int // Image width
	Height          int // Image height
	SamplesPerPixel int // Number of rays per pixel
	MaxDepth        int // Maximum ray bounce depth
}

// ErrUnknownScene is returned by Create for IDs that match no built-in or YAML scene
var ErrUnknownScene = errors.New("unknown scene")

// Default background endpoints
var (
	SkyBlue = core.NewVec3(0.5, 0.7, 1.0)
	White   = core.NewVec3(1.0, 1.0, 1.0)
)

// New creates an empty scene with the default sky gradient
func New(name string, cameraConfig geometry.CameraConfig, samplingConfig SamplingConfig) *Scene {
	return &Scene{
		Name:           name,
		Camera:         geometry.NewCamera(cameraConfig),
		CameraConfig:   cameraConfig,
		Shapes:         geometry.NewShapeList(),
		Materials:      material.NewArena(),
		TopColor:       SkyBlue,
		BottomColor:    White,
		SamplingConfig: samplingConfig,
	}
}

// HeightForWidth derives an image height from a width and aspect ratio
func HeightForWidth(width int, aspectRatio float64) int {
	return max(1, int(float64(width)/aspectRatio))
}

// AddMaterial stores a material so several spheres can share it
func (s *Scene) AddMaterial(m material.Material) material.ID {
	return s.Materials.Add(m)
}

// AddSphere adds a sphere using a previously added material
func (s *Scene) AddSphere(center core.Point3, radius float64, mat material.ID) *geometry.Sphere {
	sphere := geometry.NewSphere(center, radius, mat)
	s.Shapes.Add(sphere)
	return sphere
}

// Hit finds the closest intersection in the scene
func (s *Scene) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	return s.Shapes.Hit(ray, tMin, tMax)
}

// Scatter dispatches to the material that was hit
func (s *Scene) Scatter(rayIn core.Ray, hit material.HitRecord, sampler core.Sampler) (material.ScatterResult, bool) {
	return s.Materials.Scatter(rayIn, hit, sampler)
}

// GetCamera returns the scene camera
func (s *Scene) GetCamera() *geometry.Camera {
	return s.Camera
}

// GetBackgroundColors returns the gradient endpoints
func (s *Scene) GetBackgroundColors() (topColor, bottomColor core.Color) {
	return s.TopColor, s.BottomColor
}

// GetSamplingConfig returns the scene's recommended sampling configuration
func (s *Scene) GetSamplingConfig() SamplingConfig {
	return s.SamplingConfig
}

// GetPrimitiveCount returns the number of shapes in the scene
func (s *Scene) GetPrimitiveCount() int {
	return s.Shapes.Len()
}

