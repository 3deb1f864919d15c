package material

import (
	"fmt"
)

// Handle addresses a material stored in a Registry
type Handle int32

// Registry owns every material of a scene. Shapes refer to materials by Handle,
// so one material can be shared by any number of shapes.
type Registry struct {
	materials []Material
}

// NewRegistry creates an empty material registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Add stores a material and returns its handle
func (r *Registry) Add(m Material) Handle {
	r.materials = append(r.materials, m)
	return Handle(len(r.materials) - 1)
}

// Get returns the material for a handle. The handle must come from this registry.
func (r *Registry) Get(h Handle) *Material {
	return &r.materials[h]
}

// Contains reports whether h addresses a stored material
func (r *Registry) Contains(h Handle) bool {
	return h >= 0 && int(h) < len(r.materials)
}

// Len returns the number of stored materials
func (r *Registry) Len() int {
	return len(r.materials)
}

// Validate checks every stored material
func (r *Registry) Validate() error {
	for i := range r.materials {
		if err := r.materials[i].Validate(); err != nil {
			return fmt.Errorf("material %d: %w", i, err)
		}
	}
	return nil
}
