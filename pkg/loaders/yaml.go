package loaders

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/df07/go-sphere-tracer/pkg/core"
)

// Scene file validation errors
var (
	ErrUnknownMaterial = errors.New("sphere references unknown material")
	ErrInvalidMaterial = errors.New("invalid material")
	ErrInvalidVector   = errors.New("vector must have exactly three components")
	ErrNoSpheres       = errors.New("scene file contains no spheres")
	ErrInvalidCamera   = errors.New("invalid camera")
)

// Camera vectors used when a scene file leaves them unset
var (
	DefaultLookFrom = core.NewVec3(0, 0, 0)
	DefaultLookAt   = core.NewVec3(0, 0, -1)
	DefaultUp       = core.NewVec3(0, 1, 0)
)

// Triple is a YAML sequence of three numbers: [x, y, z]
type Triple []float64

// Vec3 converts the triple to a vector
func (t Triple) Vec3() (core.Vec3, error) {
	if len(t) != 3 {
		return core.Vec3{}, fmt.Errorf("%w, got %d", ErrInvalidVector, len(t))
	}
	return core.NewVec3(t[0], t[1], t[2]), nil
}

// SceneFile is the YAML representation of a sphere scene
type SceneFile struct {
	Name        string                  `yaml:"name"`
	Description string                  `yaml:"description"`
	Group       string                  `yaml:"group"`
	Camera      CameraSpec              `yaml:"camera"`
	Sampling    SamplingSpec            `yaml:"sampling"`
	Background  *BackgroundSpec         `yaml:"background"`
	Materials   map[string]MaterialSpec `yaml:"materials"`
	Spheres     []SphereSpec            `yaml:"spheres"`
}

// CameraSpec describes the camera
type CameraSpec struct {
	LookFrom      Triple  `yaml:"look_from"`
	LookAt        Triple  `yaml:"look_at"`
	Up            Triple  `yaml:"up"`
	VFov          float64 `yaml:"vfov"`
	AspectRatio   float64 `yaml:"aspect_ratio"`
	Aperture      float64 `yaml:"aperture"`
	FocusDistance float64 `yaml:"focus_distance"`
}

// Vectors returns look_from, look_at and up, with unset fields defaulted
func (c CameraSpec) Vectors() (lookFrom, lookAt, up core.Vec3, err error) {
	lookFrom, lookAt, up = DefaultLookFrom, DefaultLookAt, DefaultUp
	fields := []struct {
		name   string
		triple Triple
		target *core.Vec3
	}{
		{"look_from", c.LookFrom, &lookFrom},
		{"look_at", c.LookAt, &lookAt},
		{"up", c.Up, &up},
	}
	for _, field := range fields {
		if field.triple == nil {
			continue
		}
		vec, err := field.triple.Vec3()
		if err != nil {
			return lookFrom, lookAt, up, fmt.Errorf("camera %s: %w", field.name, err)
		}
		*field.target = vec
	}
	return lookFrom, lookAt, up, nil
}

// validate rejects camera placements that cannot build an orthonormal basis
func (c CameraSpec) validate() error {
	lookFrom, lookAt, up, err := c.Vectors()
	if err != nil {
		return err
	}

	view := lookAt.Subtract(lookFrom)
	if view.NearZero() {
		return fmt.Errorf("%w: look_from and look_at coincide", ErrInvalidCamera)
	}
	if up.NearZero() {
		return fmt.Errorf("%w: up must be non-zero", ErrInvalidCamera)
	}
	if view.Normalize().Cross(up.Normalize()).NearZero() {
		return fmt.Errorf("%w: up is parallel to the view direction", ErrInvalidCamera)
	}
	return nil
}

// SamplingSpec holds the scene's recommended render settings
type SamplingSpec struct {
	Width           int `yaml:"width"`
	SamplesPerPixel int `yaml:"samples_per_pixel"`
	MaxDepth        int `yaml:"max_depth"`
}

// BackgroundSpec overrides the sky gradient endpoints
type BackgroundSpec struct {
	Top    Triple `yaml:"top"`
	Bottom Triple `yaml:"bottom"`
}

// MaterialSpec describes one named material
type MaterialSpec struct {
	Type            string  `yaml:"type"`
	Albedo          Triple  `yaml:"albedo"`
	Fuzz            float64 `yaml:"fuzz"`
	RefractiveIndex float64 `yaml:"refractive_index"`
}

// SphereSpec places a sphere with a named material.
// Radius may be negative for the inner wall of a hollow shell.
type SphereSpec struct {
	Center   Triple  `yaml:"center"`
	Radius   float64 `yaml:"radius"`
	Material string  `yaml:"material"`
}

// LoadSceneFile reads and validates a YAML scene file
func LoadSceneFile(filename string) (*SceneFile, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer file.Close()

	sceneFile, err := ParseSceneFile(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return sceneFile, nil
}

// ParseSceneFile decodes and validates a YAML scene from r
func ParseSceneFile(r io.Reader) (*SceneFile, error) {
	var sceneFile SceneFile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&sceneFile); err != nil {
		return nil, fmt.Errorf("failed to parse scene file: %w", err)
	}

	if err := sceneFile.Validate(); err != nil {
		return nil, err
	}
	return &sceneFile, nil
}

// ReadSceneHeader decodes only the descriptive fields, skipping validation
func ReadSceneHeader(filename string) (*SceneFile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}

	var header struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		Group       string `yaml:"group"`
	}
	if err := yaml.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("failed to parse scene header: %w", err)
	}
	return &SceneFile{Name: header.Name, Description: header.Description, Group: header.Group}, nil
}

// Validate checks vectors, material definitions and material references
func (f *SceneFile) Validate() error {
	if len(f.Spheres) == 0 {
		return ErrNoSpheres
	}

	for _, name := range f.MaterialNames() {
		if err := f.Materials[name].validate(); err != nil {
			return fmt.Errorf("material %q: %w", name, err)
		}
	}

	for i, sphere := range f.Spheres {
		if _, err := sphere.Center.Vec3(); err != nil {
			return fmt.Errorf("sphere %d center: %w", i, err)
		}
		if sphere.Radius == 0 {
			return fmt.Errorf("sphere %d: radius must be non-zero", i)
		}
		if _, ok := f.Materials[sphere.Material]; !ok {
			return fmt.Errorf("sphere %d: %w %q", i, ErrUnknownMaterial, sphere.Material)
		}
	}

	if err := f.Camera.validate(); err != nil {
		return err
	}

	if f.Background != nil {
		if _, err := f.Background.Top.Vec3(); err != nil {
			return fmt.Errorf("background top: %w", err)
		}
		if _, err := f.Background.Bottom.Vec3(); err != nil {
			return fmt.Errorf("background bottom: %w", err)
		}
	}

	return nil
}

// MaterialNames returns material names in a stable order
func (f *SceneFile) MaterialNames() []string {
	names := make([]string, 0, len(f.Materials))
	for name := range f.Materials {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m MaterialSpec) validate() error {
	switch m.Type {
	case "lambertian", "diffuse", "metal":
		if _, err := m.Albedo.Vec3(); err != nil {
			return fmt.Errorf("%w: albedo: %v", ErrInvalidMaterial, err)
		}
		if m.Fuzz < 0 || m.Fuzz > 1 {
			return fmt.Errorf("%w: fuzz %.3f outside [0,1]", ErrInvalidMaterial, m.Fuzz)
		}
	case "dielectric", "glass":
		if m.RefractiveIndex <= 0 {
			return fmt.Errorf("%w: refractive_index must be positive", ErrInvalidMaterial)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidMaterial, m.Type)
	}
	return nil
}
