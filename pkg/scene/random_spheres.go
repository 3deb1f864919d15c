package scene

import (
	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/geometry"
	"github.com/df07/go-sphere-tracer/pkg/material"
)

// NewRandomSpheresScene creates the classic field of small random spheres around three large ones.
// The layout is a pure function of seed.
func NewRandomSpheresScene(seed int64, cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	defaultCameraConfig := geometry.CameraConfig{
		Center:        core.NewVec3(13, 2, 3),
		LookAt:        core.NewVec3(0, 0, 0),
		Up:            core.NewVec3(0, 1, 0),
		AspectRatio:   3.0 / 2.0,
		VFov:          20.0,
		Aperture:      0.1,
		FocusDistance: 10.0,
	}

	cameraConfig := defaultCameraConfig
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(defaultCameraConfig, cameraOverrides[0])
	}

	samplingConfig := SamplingConfig{
		Width:           600,
		Height:          400,
		SamplesPerPixel: 50,
		MaxDepth:        50,
		RowStep:         1,
	}

	s, err := NewScene(cameraConfig, samplingConfig)
	if err != nil {
		return nil, err
	}

	ground := s.AddMaterial(material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))
	s.AddSphere(core.NewVec3(0, -1000, 0), 1000, ground)

	// All glass spheres share one material
	glass := s.AddMaterial(material.NewDielectric(1.5))

	sampler := core.NewSeededSampler(seed)
	clearing := core.NewVec3(4, 0.2, 0)

	for a := -11; a < 11; a++ {
		for b := -11; b < 11; b++ {
			chooseMat := sampler.Get1D()
			center := core.NewVec3(float64(a)+0.9*sampler.Get1D(), 0.2, float64(b)+0.9*sampler.Get1D())

			// Keep the area around the large metal sphere clear
			if center.Subtract(clearing).Length() <= 0.9 {
				continue
			}

			switch {
			case chooseMat < 0.8:
				albedo := core.RandomVec3(sampler, 0, 1).MultiplyVec(core.RandomVec3(sampler, 0, 1))
				s.AddSphere(center, 0.2, s.AddMaterial(material.NewLambertian(albedo)))
			case chooseMat < 0.95:
				albedo := core.RandomVec3(sampler, 0.5, 1)
				fuzz := 0.5 * sampler.Get1D()
				s.AddSphere(center, 0.2, s.AddMaterial(material.NewMetal(albedo, fuzz)))
			default:
				s.AddSphere(center, 0.2, glass)
			}
		}
	}

	s.AddSphere(core.NewVec3(0, 1, 0), 1.0, glass)
	s.AddSphere(core.NewVec3(-4, 1, 0), 1.0, s.AddMaterial(material.NewLambertian(core.NewVec3(0.4, 0.2, 0.1))))
	s.AddSphere(core.NewVec3(4, 1, 0), 1.0, s.AddMaterial(material.NewMetal(core.NewVec3(0.7, 0.6, 0.5), 0.0)))

	return s, nil
}
