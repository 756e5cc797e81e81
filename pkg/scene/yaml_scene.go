package scene

import (
	"path/filepath"
	"strings"

	"github.com/df07/go-sphere-tracer/pkg/geometry"
	"github.com/df07/go-sphere-tracer/pkg/loaders"
	"github.com/df07/go-sphere-tracer/pkg/material"
)

// Defaults applied to YAML scenes that leave fields unset
const (
	defaultYAMLWidth           = 400
	defaultYAMLSamplesPerPixel = 50
	defaultYAMLMaxDepth        = 20
	defaultYAMLVFov            = 90.0
	defaultYAMLAspectRatio     = 16.0 / 9.0
)

// NewYAMLScene loads a sphere scene from a YAML file
func NewYAMLScene(path string, cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	sceneFile, err := loaders.LoadSceneFile(path)
	if err != nil {
		return nil, err
	}
	return FromSceneFile(sceneFile, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), cameraOverrides...)
}

// FromSceneFile builds a scene from an already-validated scene file.
// fallbackName is used when the file does not name itself.
func FromSceneFile(sceneFile *loaders.SceneFile, fallbackName string, cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	lookFrom, lookAt, up, err := sceneFile.Camera.Vectors()
	if err != nil {
		return nil, err
	}
	cameraConfig := geometry.CameraConfig{
		LookFrom:      lookFrom,
		LookAt:        lookAt,
		Up:            up,
		VFov:          defaultYAMLVFov,
		AspectRatio:   defaultYAMLAspectRatio,
		Aperture:      sceneFile.Camera.Aperture,
		FocusDistance: sceneFile.Camera.FocusDistance,
	}
	if sceneFile.Camera.VFov > 0 {
		cameraConfig.VFov = sceneFile.Camera.VFov
	}
	if sceneFile.Camera.AspectRatio > 0 {
		cameraConfig.AspectRatio = sceneFile.Camera.AspectRatio
	}

	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(cameraConfig, cameraOverrides[0])
	}

	width := sceneFile.Sampling.Width
	if width <= 0 {
		width = defaultYAMLWidth
	}
	samplingConfig := SamplingConfig{
		Width:           width,
		Height:          HeightForWidth(width, cameraConfig.AspectRatio),
		SamplesPerPixel: sceneFile.Sampling.SamplesPerPixel,
		MaxDepth:        sceneFile.Sampling.MaxDepth,
	}
	if samplingConfig.SamplesPerPixel <= 0 {
		samplingConfig.SamplesPerPixel = defaultYAMLSamplesPerPixel
	}
	if samplingConfig.MaxDepth <= 0 {
		samplingConfig.MaxDepth = defaultYAMLMaxDepth
	}

	name := sceneFile.Name
	if name == "" {
		name = fallbackName
	}
	s := New(name, cameraConfig, samplingConfig)

	if sceneFile.Background != nil {
		top, err := sceneFile.Background.Top.Vec3()
		if err != nil {
			return nil, err
		}
		bottom, err := sceneFile.Background.Bottom.Vec3()
		if err != nil {
			return nil, err
		}
		s.TopColor, s.BottomColor = top, bottom
	}

	ids := make(map[string]material.ID, len(sceneFile.Materials))
	for _, matName := range sceneFile.MaterialNames() {
		mat, err := buildMaterial(sceneFile.Materials[matName])
		if err != nil {
			return nil, err
		}
		ids[matName] = s.AddMaterial(mat)
	}

	for _, sphere := range sceneFile.Spheres {
		center, err := sphere.Center.Vec3()
		if err != nil {
			return nil, err
		}
		id, ok := ids[sphere.Material]
		if !ok {
			return nil, loaders.ErrUnknownMaterial
		}
		s.AddSphere(center, sphere.Radius, id)
	}

	return s, nil
}

func buildMaterial(spec loaders.MaterialSpec) (material.Material, error) {
	kind, err := material.ParseKind(spec.Type)
	if err != nil {
		return material.Material{}, err
	}

	switch kind {
	case material.KindDielectric:
		return material.NewDielectric(spec.RefractiveIndex), nil
	case material.KindMetal:
		albedo, err := spec.Albedo.Vec3()
		if err != nil {
			return material.Material{}, err
		}
		return material.NewMetal(albedo, spec.Fuzz), nil
	default:
		albedo, err := spec.Albedo.Vec3()
		if err != nil {
			return material.Material{}, err
		}
		return material.NewLambertian(albedo), nil
	}
}
