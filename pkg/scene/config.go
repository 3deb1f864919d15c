package scene

import (
	"fmt"
	"sort"

	"github.com/df07/go-sphere-tracer/pkg/geometry"
	"github.com/df07/go-sphere-tracer/pkg/loaders"
	"github.com/df07/go-sphere-tracer/pkg/material"
)

// NewSceneFromConfig builds a scene from a parsed JSON scene description.
// Named materials are registered once and shared by every shape that references them.
func NewSceneFromConfig(config *loaders.SceneConfig) (*Scene, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	cameraConfig, err := cameraConfigFromLoader(config)
	if err != nil {
		return nil, err
	}

	samplingConfig := SamplingConfig{
		Width:           config.Width,
		Height:          config.Height(),
		SamplesPerPixel: config.SamplesPerPixel,
		MaxDepth:        config.MaxDepth(),
		RowStep:         config.RowStep(),
	}

	s, err := NewScene(cameraConfig, samplingConfig)
	if err != nil {
		return nil, fmt.Errorf("camera: %w", err)
	}

	s.OutputPath = config.OutputPath

	if config.Background != nil {
		// Validate already checked both vectors
		top, _ := config.Background.Top.Vec3()
		bottom, _ := config.Background.Bottom.Vec3()
		s.Background = Background{Top: top, Bottom: bottom}
	}

	named := make(map[string]material.Handle, len(config.Materials))
	// Sorted so handles do not depend on map order
	names := make([]string, 0, len(config.Materials))
	for name := range config.Materials {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		mat, err := config.Materials[name].Material()
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", name, err)
		}
		named[name] = s.AddMaterial(mat)
	}

	for i, shapeConfig := range config.Shapes {
		if err := s.addShapeFromConfig(shapeConfig, named); err != nil {
			return nil, fmt.Errorf("shape %d: %w", i, err)
		}
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadScene loads a JSON scene file and builds the scene
func LoadScene(filename string) (*Scene, error) {
	config, err := loaders.LoadSceneConfig(filename)
	if err != nil {
		return nil, err
	}
	return NewSceneFromConfig(config)
}

func cameraConfigFromLoader(config *loaders.SceneConfig) (geometry.CameraConfig, error) {
	center, err := config.Camera.Position.Vec3()
	if err != nil {
		return geometry.CameraConfig{}, fmt.Errorf("camera position: %w", err)
	}
	lookAt, err := config.Camera.LookAt.Vec3()
	if err != nil {
		return geometry.CameraConfig{}, fmt.Errorf("camera lookAt: %w", err)
	}
	up, err := config.Camera.UpVec3()
	if err != nil {
		return geometry.CameraConfig{}, fmt.Errorf("camera up: %w", err)
	}

	return geometry.CameraConfig{
		Center:        center,
		LookAt:        lookAt,
		Up:            up,
		AspectRatio:   config.AspectRatio,
		VFov:          config.Camera.FovDeg,
		Aperture:      config.Camera.Aperture,
		FocusDistance: config.Camera.FocusDistance,
	}, nil
}

func (s *Scene) addShapeFromConfig(shapeConfig loaders.ShapeConfig, named map[string]material.Handle) error {
	var handle material.Handle
	if shapeConfig.MaterialRef != "" {
		h, ok := named[shapeConfig.MaterialRef]
		if !ok {
			return fmt.Errorf("%w: unknown materialRef %q", loaders.ErrUnsupportedMaterial, shapeConfig.MaterialRef)
		}
		handle = h
	} else {
		mat, err := shapeConfig.Material.Material()
		if err != nil {
			return err
		}
		handle = s.AddMaterial(mat)
	}

	center, err := shapeConfig.Transform.Position.Vec3()
	if err != nil {
		return fmt.Errorf("transform.position: %w", err)
	}

	s.AddSphere(center, shapeConfig.Transform.Size[0], handle)
	return nil
}
