package material

import (
	"testing"

	"github.com/df07/go-sphere-tracer/pkg/core"
)

// fixedSampler returns the same values on every draw
type fixedSampler struct {
	v1 float64
	v2 core.Vec2
	v3 core.Vec3
}

func (f fixedSampler) Get1D() float64   { return f.v1 }
func (f fixedSampler) Get2D() core.Vec2 { return f.v2 }
func (f fixedSampler) Get3D() core.Vec3 { return f.v3 }

func TestParseKind(t *testing.T) {
	tests := []struct {
		input    string
		expected Kind
		wantErr  bool
	}{
		{"lambertian", KindLambertian, false},
		{"diffuse", KindLambertian, false},
		{"metal", KindMetal, false},
		{"dielectric", KindDielectric, false},
		{"glass", KindDielectric, false},
		{"emissive", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			kind, err := ParseKind(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if kind != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, kind)
			}
			if kind.String() == "" {
				t.Error("Kind should have a name")
			}
		})
	}
}

func TestMaterial_UnknownKindAbsorbs(t *testing.T) {
	m := Material{Kind: Kind(42)}
	hit := HitRecord{Normal: core.NewVec3(0, 1, 0)}
	ray := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0))

	if _, ok := m.Scatter(ray, hit, core.NewSeededSampler(1)); ok {
		t.Error("Unknown material kind should absorb")
	}
}

func TestArena_SharedMaterials(t *testing.T) {
	arena := NewArena()
	gray := arena.Add(NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))
	glass := arena.Add(NewDielectric(1.5))

	if gray == glass {
		t.Fatal("Distinct materials must receive distinct IDs")
	}
	if arena.Len() != 2 {
		t.Errorf("Expected 2 materials, got %d", arena.Len())
	}

	m, ok := arena.Get(glass)
	if !ok || m.Kind != KindDielectric {
		t.Errorf("Expected dielectric at ID %d, got %v (ok=%t)", glass, m, ok)
	}

	if _, ok := arena.Get(ID(7)); ok {
		t.Error("Out of range ID should not resolve")
	}
	if _, ok := arena.Get(ID(-1)); ok {
		t.Error("Negative ID should not resolve")
	}
}

func TestArena_ScatterDispatch(t *testing.T) {
	arena := NewArena()
	albedo := core.NewVec3(0.2, 0.4, 0.6)
	id := arena.Add(NewLambertian(albedo))

	hit := HitRecord{
		Point:     core.NewVec3(0, 0, 0),
		Normal:    core.NewVec3(0, 1, 0),
		FrontFace: true,
		Material:  id,
	}
	ray := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0))

	result, ok := arena.Scatter(ray, hit, core.NewSeededSampler(5))
	if !ok {
		t.Fatal("Lambertian should scatter through the arena")
	}
	if result.Attenuation != albedo {
		t.Errorf("Expected attenuation %v, got %v", albedo, result.Attenuation)
	}

	hit.Material = ID(99)
	if _, ok := arena.Scatter(ray, hit, core.NewSeededSampler(5)); ok {
		t.Error("Unknown material ID should absorb")
	}
}

func TestHitRecord_SetFaceNormal(t *testing.T) {
	outward := core.NewVec3(0, 0, 1)

	var front HitRecord
	front.SetFaceNormal(core.NewRay(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1)), outward)
	if !front.FrontFace || front.Normal != outward {
		t.Errorf("Expected front face with outward normal, got %+v", front)
	}

	var back HitRecord
	back.SetFaceNormal(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1)), outward)
	if back.FrontFace || back.Normal != outward.Negate() {
		t.Errorf("Expected back face with flipped normal, got %+v", back)
	}
}
