package integrator

import (
	"github.com/df07/go-sphere-tracer/pkg/core"
)

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor estimates the linear radiance arriving along ray using at most depth bounces
	RayColor(ray core.Ray, depth int, sampler core.Sampler) core.Color
}
