package material

import (
	"fmt"

	"github.com/df07/go-sphere-tracer/pkg/core"
)

// Kind tags the variant held by a Material
type Kind uint8

const (
	KindLambertian Kind = iota
	KindMetal
	KindDielectric
)

// String returns the lower-case name used in scene files
func (k Kind) String() string {
	switch k {
	case KindLambertian:
		return "lambertian"
	case KindMetal:
		return "metal"
	case KindDielectric:
		return "dielectric"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind maps a scene-file material name to its Kind
func ParseKind(name string) (Kind, error) {
	switch name {
	case "lambertian", "diffuse":
		return KindLambertian, nil
	case "metal":
		return KindMetal, nil
	case "dielectric", "glass":
		return KindDielectric, nil
	default:
		return 0, fmt.Errorf("unknown material type %q", name)
	}
}

// Material is a closed set of surface models. Only the fields of the
// active Kind are meaningful; values are immutable once built.
type Material struct {
	Kind            Kind
	Albedo          core.Color // lambertian, metal
	Fuzz            float64    // metal, in [0,1]
	RefractiveIndex float64    // dielectric
}

// Scatter produces the attenuation and scattered ray for rayIn at hit,
// or false if the ray is absorbed.
func (m Material) Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	switch m.Kind {
	case KindLambertian:
		return m.scatterLambertian(hit, sampler)
	case KindMetal:
		return m.scatterMetal(rayIn, hit, sampler)
	case KindDielectric:
		return m.scatterDielectric(rayIn, hit, sampler)
	default:
		return ScatterResult{}, false
	}
}

