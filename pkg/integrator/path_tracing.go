package integrator

import (
	"math"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/scene"
)

// shadowAcneEpsilon keeps scattered rays from re-hitting the surface they left
const shadowAcneEpsilon = 0.001

// PathTracingIntegrator implements unidirectional path tracing
type PathTracingIntegrator struct {
	scene *scene.Scene
}

// NewPathTracingIntegrator creates a new path tracing integrator over a read-only scene
func NewPathTracingIntegrator(s *scene.Scene) *PathTracingIntegrator {
	return &PathTracingIntegrator{scene: s}
}

// RayColor computes the color for a single ray using unidirectional path tracing.
// Each bounce multiplies the running throughput by the material attenuation;
// the path ends on escape (background), absorption (black) or when depth runs out (black).
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, depth int, sampler core.Sampler) core.Color {
	throughput := core.NewVec3(1, 1, 1)

	for ; depth > 0; depth-- {
		hit, isHit := pt.scene.Hit(ray, shadowAcneEpsilon, math.Inf(1))
		if !isHit {
			return throughput.MultiplyVec(pt.scene.Background.At(ray.Direction))
		}

		mat := pt.scene.Materials.Get(hit.Material)
		scatter, didScatter := mat.Scatter(ray, *hit, sampler)
		if !didScatter {
			return core.Vec3{}
		}

		throughput = throughput.MultiplyVec(scatter.Attenuation)
		ray = scatter.Scattered
	}

	// If we've exceeded the ray bounce limit, no more light is gathered
	return core.Vec3{}
}
