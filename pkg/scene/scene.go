package scene

import (
	"errors"
	"fmt"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/geometry"
	"github.com/df07/go-sphere-tracer/pkg/material"
)

// ErrInvalidSamplingConfig is returned by SamplingConfig.Validate
var ErrInvalidSamplingConfig = errors.New("invalid sampling config")

// Scene contains all the elements needed for rendering
type Scene struct {
	Camera         *geometry.Camera
	CameraConfig   geometry.CameraConfig
	Shapes         []*geometry.Sphere // Objects in the scene, in insertion order
	Materials      *material.Registry // Materials shared by handle
	Background     Background
	SamplingConfig SamplingConfig
	OutputPath     string // Preferred image path from a scene file, may be empty
}

// Background is the sky gradient seen by rays that escape the scene
type Background struct {
	Top    core.Color // Color straight up
	Bottom core.Color // Color straight down
}

// DefaultBackground blends white at the horizon into a light blue sky
func DefaultBackground() Background {
	return Background{
		Top:    core.NewVec3(0.5, 0.7, 1.0),
		Bottom: core.NewVec3(1.0, 1.0, 1.0),
	}
}

// At returns the gradient color for a ray direction
func (b Background) At(direction core.Vec3) core.Color {
	k := 0.5 * (direction.Normalize().Y + 1.0)
	return b.Bottom.Multiply(1.0 - k).Add(b.Top.Multiply(k))
}

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	Width           int // Image width
	Height          int // Image height
	SamplesPerPixel int // Number of rays per pixel
	MaxDepth        int // Maximum ray bounce depth
	RowStep         int // Render every RowStep-th image row; 1 renders all rows
}

// Validate checks that the request can be rendered
func (c SamplingConfig) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: image size %dx%d must be positive", ErrInvalidSamplingConfig, c.Width, c.Height)
	case c.SamplesPerPixel <= 0:
		return fmt.Errorf("%w: samples per pixel %d must be positive", ErrInvalidSamplingConfig, c.SamplesPerPixel)
	case c.MaxDepth < 0:
		return fmt.Errorf("%w: max depth %d must not be negative", ErrInvalidSamplingConfig, c.MaxDepth)
	case c.RowStep < 1:
		return fmt.Errorf("%w: row step %d must be at least 1", ErrInvalidSamplingConfig, c.RowStep)
	}
	return nil
}

// NewScene creates an empty scene viewed through the given camera
func NewScene(cameraConfig geometry.CameraConfig, samplingConfig SamplingConfig) (*Scene, error) {
	camera, err := geometry.NewCamera(cameraConfig)
	if err != nil {
		return nil, err
	}

	return &Scene{
		Camera:         camera,
		CameraConfig:   cameraConfig,
		Shapes:         make([]*geometry.Sphere, 0),
		Materials:      material.NewRegistry(),
		Background:     DefaultBackground(),
		SamplingConfig: samplingConfig,
	}, nil
}

// AddMaterial registers a material and returns its handle
func (s *Scene) AddMaterial(m material.Material) material.Handle {
	return s.Materials.Add(m)
}

// AddSphere appends a sphere using a previously registered material
func (s *Scene) AddSphere(center core.Point3, radius float64, mat material.Handle) *geometry.Sphere {
	sphere := geometry.NewSphere(center, radius, mat)
	s.Shapes = append(s.Shapes, sphere)
	return sphere
}

// Validate rejects scenes that would produce degenerate math while rendering
func (s *Scene) Validate() error {
	if s.Camera == nil {
		return fmt.Errorf("scene has no camera")
	}
	if err := s.Materials.Validate(); err != nil {
		return err
	}
	for i, sphere := range s.Shapes {
		if err := sphere.Validate(); err != nil {
			return fmt.Errorf("shape %d: %w", i, err)
		}
		if !s.Materials.Contains(sphere.Material) {
			return fmt.Errorf("shape %d: unknown material handle %d", i, sphere.Material)
		}
	}
	return nil
}

// Hit returns the closest intersection in [tMin, tMax] over all shapes.
// On exactly equal t the earlier shape wins.
func (s *Scene) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	var closest *material.HitRecord
	closestSoFar := tMax

	for _, shape := range s.Shapes {
		if hit, isHit := shape.Hit(ray, tMin, closestSoFar); isHit {
			// Equal t would be accepted again by the shrunken range
			if closest != nil && hit.T >= closest.T {
				continue
			}
			closest = hit
			closestSoFar = hit.T
		}
	}

	return closest, closest != nil
}

// GetPrimitiveCount returns the number of shapes in the scene
func (s *Scene) GetPrimitiveCount() int {
	return len(s.Shapes)
}
