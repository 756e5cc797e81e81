package material

import (
	"github.com/df07/go-sphere-tracer/pkg/core"
)

// Arena owns every material in a scene. Geometry refers to entries by ID,
// so one material can be shared by any number of shapes.
type Arena struct {
	materials []Material
}

// NewArena creates an empty arena
func NewArena() *Arena {
	return &Arena{}
}

// Add stores a material and returns its ID
func (a *Arena) Add(m Material) ID {
	a.materials = append(a.materials, m)
	return ID(len(a.materials) - 1)
}

// Get returns the material for id
func (a *Arena) Get(id ID) (Material, bool) {
	if id < 0 || int(id) >= len(a.materials) {
		return Material{}, false
	}
	return a.materials[id], true
}

// Len returns the number of stored materials
func (a *Arena) Len() int {
	return len(a.materials)
}

// Scatter dispatches to the material referenced by the hit record.
// An unknown ID absorbs the ray.
func (a *Arena) Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	m, ok := a.Get(hit.Material)
	if !ok {
		return ScatterResult{}, false
	}
	return m.Scatter(rayIn, hit, sampler)
}
