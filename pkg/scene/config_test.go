package scene

import (
	"errors"
	"strings"
	"testing"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/geometry"
	"github.com/df07/go-sphere-tracer/pkg/loaders"
	"github.com/df07/go-sphere-tracer/pkg/material"
)

const sharedMaterialJSON = `{
  "width": 300, "aspectRatio": 1.5, "outputPath": "out/glass.png", "rayStep": 4, "samplesPerPixel": 10, "rayMaxDepth": 8,
  "camera": {"fovDeg": 20, "position": [13, 2, 3], "lookAt": [0, 0, 0], "aperture": 0.1},
  "background": {"top": [0, 0, 1], "bottom": [1, 0, 0]},
  "materials": {
    "glass": {"type": "dielectric", "refractionIndex": 1.5},
    "chrome": {"type": "metal", "diffuse": [0.9, 0.9, 0.9], "fuzz": 0.1}
  },
  "shapes": [
    {"type": "sphere", "materialRef": "glass", "transform": {"position": [0, 1, 0], "size": [1]}},
    {"type": "sphere", "materialRef": "glass", "transform": {"position": [-4, 1, 0], "size": [0.5]}},
    {"type": "sphere", "material": {"type": "lambertian", "diffuse": [0.4, 0.2, 0.1]},
     "transform": {"position": [4, 1, 0], "size": [1]}}
  ]
}`

func TestNewSceneFromConfig(t *testing.T) {
	config, err := loaders.ParseSceneConfig(strings.NewReader(sharedMaterialJSON))
	if err != nil {
		t.Fatalf("ParseSceneConfig failed: %v", err)
	}

	s, err := NewSceneFromConfig(config)
	if err != nil {
		t.Fatalf("NewSceneFromConfig failed: %v", err)
	}

	expectedSampling := SamplingConfig{Width: 300, Height: 200, SamplesPerPixel: 10, MaxDepth: 8, RowStep: 4}
	if s.SamplingConfig != expectedSampling {
		t.Errorf("Expected sampling %+v, got %+v", expectedSampling, s.SamplingConfig)
	}

	if s.OutputPath != "out/glass.png" {
		t.Errorf("Expected output path out/glass.png, got %q", s.OutputPath)
	}

	if len(s.Shapes) != 3 {
		t.Fatalf("Expected 3 shapes, got %d", len(s.Shapes))
	}
	// Two named materials plus one inline
	if s.Materials.Len() != 3 {
		t.Errorf("Expected 3 registered materials, got %d", s.Materials.Len())
	}
	if s.Shapes[0].Material != s.Shapes[1].Material {
		t.Errorf("Shapes referencing the same name should share a handle: %d vs %d",
			s.Shapes[0].Material, s.Shapes[1].Material)
	}
	if got := s.Materials.Get(s.Shapes[0].Material); got.Kind != material.KindDielectric {
		t.Errorf("Expected dielectric, got %v", got)
	}
	if s.Shapes[1].Radius != 0.5 || s.Shapes[1].Center != core.NewVec3(-4, 1, 0) {
		t.Errorf("Unexpected second sphere %+v", s.Shapes[1])
	}

	if s.Background.Top != core.NewVec3(0, 0, 1) || s.Background.Bottom != core.NewVec3(1, 0, 0) {
		t.Errorf("Unexpected background %+v", s.Background)
	}

	// Focus distance defaults to |position - lookAt|
	if s.CameraConfig.FocusDistance != 0 || s.Camera.LensRadius() != 0.05 {
		t.Errorf("Unexpected camera config %+v", s.CameraConfig)
	}
}

func TestNewSceneFromConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name: "zero radius",
			input: `{"width": 10, "aspectRatio": 1, "samplesPerPixel": 1, "rayMaxDepth": 1,
			  "camera": {"fovDeg": 90, "position": [0, 0, 1], "lookAt": [0, 0, 0]},
			  "shapes": [{"type": "sphere", "material": {"type": "lambertian", "diffuse": [1, 1, 1]},
			    "transform": {"position": [0, 0, 0], "size": [0]}}]}`,
			wantErr: geometry.ErrInvalidSphere,
		},
		{
			name: "degenerate camera",
			input: `{"width": 10, "aspectRatio": 1, "samplesPerPixel": 1, "rayMaxDepth": 1,
			  "camera": {"fovDeg": 90, "position": [0, 0, 1], "lookAt": [0, 0, 1]}, "shapes": []}`,
			wantErr: geometry.ErrInvalidCamera,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := loaders.ParseSceneConfig(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("ParseSceneConfig failed: %v", err)
			}
			if _, err := NewSceneFromConfig(config); !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
