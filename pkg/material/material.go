package material

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-sphere-tracer/pkg/core"
)

// Kind identifies one of the supported material families
type Kind uint8

const (
	KindLambertian Kind = iota + 1
	KindMetal
	KindDielectric
)

// String returns the configuration name of the kind
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

// ErrInvalidMaterial is returned by Validate for materials that cannot be rendered
var ErrInvalidMaterial = errors.New("invalid material")

// Material is a closed set of surface models. Only the fields used by Kind are meaningful:
// Albedo for Lambertian and Metal, Fuzzness for Metal, RefractiveIndex for Dielectric.
type Material struct {
	Kind            Kind
	Albedo          core.Color // Diffuse/specular color
	Fuzzness        float64    // 0.0 = perfect mirror, 1.0 = very fuzzy
	RefractiveIndex float64    // Index of refraction (e.g., 1.5 for glass)
}

// Scatter produces the attenuation and outgoing ray for rayIn at hit.
// It returns false when the material absorbs the ray.
func (m *Material) Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
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

// Validate reports whether the material parameters are usable for rendering
func (m *Material) Validate() error {
	switch m.Kind {
	case KindLambertian, KindMetal:
		if !m.Albedo.IsFinite() || m.Albedo.X < 0 || m.Albedo.Y < 0 || m.Albedo.Z < 0 {
			return fmt.Errorf("%w: %s albedo %v must be finite and non-negative", ErrInvalidMaterial, m.Kind, m.Albedo)
		}
	case KindDielectric:
		if math.IsNaN(m.RefractiveIndex) || math.IsInf(m.RefractiveIndex, 0) || m.RefractiveIndex <= 0 {
			return fmt.Errorf("%w: refractive index %g must be positive", ErrInvalidMaterial, m.RefractiveIndex)
		}
	default:
		return fmt.Errorf("%w: unknown %s", ErrInvalidMaterial, m.Kind)
	}
	return nil
}

// String describes the material for logs
func (m Material) String() string {
	switch m.Kind {
	case KindMetal:
		return fmt.Sprintf("metal(albedo=%v, fuzz=%g)", m.Albedo, m.Fuzzness)
	case KindDielectric:
		return fmt.Sprintf("dielectric(ior=%g)", m.RefractiveIndex)
	default:
		return fmt.Sprintf("%s(albedo=%v)", m.Kind, m.Albedo)
	}
}
