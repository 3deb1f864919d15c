package loaders

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/material"
)

var (
	// ErrUnsupportedShape is returned for shape types other than "sphere"
	ErrUnsupportedShape = errors.New("unsupported shape type")
	// ErrUnsupportedMaterial is returned for unknown material types or unknown material references
	ErrUnsupportedMaterial = errors.New("unsupported material")
	// ErrMissingField is returned when a required field is absent or zero
	ErrMissingField = errors.New("missing required field")
	// ErrInvalidVector is returned when a vector field has the wrong number of components
	ErrInvalidVector = errors.New("invalid vector")
	// ErrTrailingData is returned when anything but whitespace follows the scene object
	ErrTrailingData = errors.New("unexpected data after scene object")
)

// SceneConfig is the JSON scene description
type SceneConfig struct {
	Width           int                       `json:"width"`
	AspectRatio     float64                   `json:"aspectRatio"`
	OutputPath      string                    `json:"outputPath,omitempty"`
	RayStep         int                       `json:"rayStep,omitempty"` // 0 means every row
	SamplesPerPixel int                       `json:"samplesPerPixel"`
	RayMaxDepth     *int                      `json:"rayMaxDepth"`
	Camera          *CameraConfig             `json:"camera"`
	Background      *BackgroundConfig         `json:"background,omitempty"`
	Materials       map[string]MaterialConfig `json:"materials,omitempty"`
	Shapes          []ShapeConfig             `json:"shapes"`
}

// CameraConfig describes the camera in scene files
type CameraConfig struct {
	FovDeg        float64 `json:"fovDeg"`
	Position      Vector  `json:"position"`
	LookAt        Vector  `json:"lookAt"`
	Up            Vector  `json:"up,omitempty"` // Defaults to +Y
	Aperture      float64 `json:"aperture,omitempty"`
	FocusDistance float64 `json:"focusDistance,omitempty"` // 0 focuses on lookAt
}

// BackgroundConfig overrides the sky gradient
type BackgroundConfig struct {
	Top    Vector `json:"top"`
	Bottom Vector `json:"bottom"`
}

// MaterialConfig describes one material
type MaterialConfig struct {
	Type            string   `json:"type"`
	Diffuse         Vector   `json:"diffuse,omitempty"`
	Fuzz            *float64 `json:"fuzz,omitempty"`
	RefractionIndex *float64 `json:"refractionIndex,omitempty"`
}

// ShapeConfig describes one shape. Exactly one of Material and MaterialRef is set.
type ShapeConfig struct {
	Type        string          `json:"type"`
	Material    *MaterialConfig `json:"material,omitempty"`
	MaterialRef string          `json:"materialRef,omitempty"`
	Transform   TransformConfig `json:"transform"`
}

// TransformConfig places a shape. For spheres Size[0] is the radius.
type TransformConfig struct {
	Position Vector    `json:"position"`
	Size     []float64 `json:"size"`
}

// Vector is a JSON number array of three components
type Vector []float64

// Vec3 converts the array, rejecting anything but three finite components
func (v Vector) Vec3() (core.Vec3, error) {
	if len(v) != 3 {
		return core.Vec3{}, fmt.Errorf("%w: expected 3 components, got %d", ErrInvalidVector, len(v))
	}
	result := core.NewVec3(v[0], v[1], v[2])
	if !result.IsFinite() {
		return core.Vec3{}, fmt.Errorf("%w: %v is not finite", ErrInvalidVector, []float64(v))
	}
	return result, nil
}

// ParseSceneConfig decodes and validates a scene description from an io.Reader
func ParseSceneConfig(reader io.Reader) (*SceneConfig, error) {
	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()

	var config SceneConfig
	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("failed to decode scene config: %w", err)
	}
	// A scene file holds exactly one object
	var trailing json.RawMessage
	if err := decoder.Decode(&trailing); err != io.EOF {
		return nil, fmt.Errorf("failed to decode scene config: %w", ErrTrailingData)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadSceneConfig loads and parses a JSON scene file
func LoadSceneConfig(filename string) (*SceneConfig, error) {
	if err := validateFilePath(filename); err != nil {
		return nil, err
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer file.Close()

	config, err := ParseSceneConfig(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return config, nil
}

// validateFilePath checks that a scene path looks like a JSON file
func validateFilePath(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}
	if !strings.EqualFold(filepath.Ext(filename), ".json") {
		return fmt.Errorf("invalid file extension %q: only .json files are allowed", filepath.Ext(filename))
	}
	return nil
}

// Validate checks required fields and every material and shape
func (c *SceneConfig) Validate() error {
	switch {
	case c.Width <= 0:
		return fmt.Errorf("%w: width", ErrMissingField)
	case !(c.AspectRatio > 0) || math.IsInf(c.AspectRatio, 0):
		return fmt.Errorf("%w: aspectRatio", ErrMissingField)
	case c.SamplesPerPixel <= 0:
		return fmt.Errorf("%w: samplesPerPixel", ErrMissingField)
	case c.RayMaxDepth == nil:
		return fmt.Errorf("%w: rayMaxDepth", ErrMissingField)
	case *c.RayMaxDepth < 0:
		return fmt.Errorf("rayMaxDepth %d must not be negative", *c.RayMaxDepth)
	case c.RayStep < 0:
		return fmt.Errorf("rayStep %d must not be negative", c.RayStep)
	case c.Camera == nil:
		return fmt.Errorf("%w: camera", ErrMissingField)
	}

	if err := c.Camera.validate(); err != nil {
		return fmt.Errorf("camera: %w", err)
	}
	if c.Background != nil {
		if _, err := c.Background.Top.Vec3(); err != nil {
			return fmt.Errorf("background top: %w", err)
		}
		if _, err := c.Background.Bottom.Vec3(); err != nil {
			return fmt.Errorf("background bottom: %w", err)
		}
	}

	for name, mat := range c.Materials {
		if _, err := mat.Material(); err != nil {
			return fmt.Errorf("material %q: %w", name, err)
		}
	}

	for i, shape := range c.Shapes {
		if err := c.validateShape(shape); err != nil {
			return fmt.Errorf("shape %d: %w", i, err)
		}
	}
	return nil
}

// Height derives the image height from width and aspect ratio
func (c *SceneConfig) Height() int {
	return max(1, int(float64(c.Width)/c.AspectRatio))
}

// MaxDepth returns the bounce limit
func (c *SceneConfig) MaxDepth() int {
	if c.RayMaxDepth == nil {
		return 0
	}
	return *c.RayMaxDepth
}

// RowStep returns the configured row step, treating 0 as 1
func (c *SceneConfig) RowStep() int {
	return max(1, c.RayStep)
}

func (c CameraConfig) validate() error {
	if c.FovDeg == 0 {
		return fmt.Errorf("%w: fovDeg", ErrMissingField)
	}
	if c.Position == nil {
		return fmt.Errorf("%w: position", ErrMissingField)
	}
	if c.LookAt == nil {
		return fmt.Errorf("%w: lookAt", ErrMissingField)
	}
	if _, err := c.Position.Vec3(); err != nil {
		return fmt.Errorf("position: %w", err)
	}
	if _, err := c.LookAt.Vec3(); err != nil {
		return fmt.Errorf("lookAt: %w", err)
	}
	if _, err := c.UpVec3(); err != nil {
		return fmt.Errorf("up: %w", err)
	}
	return nil
}

// UpVec3 returns the up vector, defaulting to +Y when omitted
func (c CameraConfig) UpVec3() (core.Vec3, error) {
	if c.Up == nil {
		return core.NewVec3(0, 1, 0), nil
	}
	return c.Up.Vec3()
}

func (c *SceneConfig) validateShape(shape ShapeConfig) error {
	if shape.Type != "sphere" {
		return fmt.Errorf("%w: %q", ErrUnsupportedShape, shape.Type)
	}

	switch {
	case shape.Material != nil && shape.MaterialRef != "":
		return fmt.Errorf("material and materialRef are mutually exclusive")
	case shape.Material != nil:
		if _, err := shape.Material.Material(); err != nil {
			return err
		}
	case shape.MaterialRef != "":
		if _, ok := c.Materials[shape.MaterialRef]; !ok {
			return fmt.Errorf("%w: unknown materialRef %q", ErrUnsupportedMaterial, shape.MaterialRef)
		}
	default:
		return fmt.Errorf("%w: material", ErrMissingField)
	}

	if shape.Transform.Position == nil {
		return fmt.Errorf("%w: transform.position", ErrMissingField)
	}
	if _, err := shape.Transform.Position.Vec3(); err != nil {
		return fmt.Errorf("transform.position: %w", err)
	}
	if len(shape.Transform.Size) == 0 {
		return fmt.Errorf("%w: transform.size", ErrMissingField)
	}
	return nil
}

// Material converts the description into an engine material
func (m MaterialConfig) Material() (material.Material, error) {
	switch m.Type {
	case "lambertian":
		albedo, err := m.diffuse()
		if err != nil {
			return material.Material{}, err
		}
		return material.NewLambertian(albedo), nil
	case "metal":
		albedo, err := m.diffuse()
		if err != nil {
			return material.Material{}, err
		}
		fuzz := 0.0
		if m.Fuzz != nil {
			fuzz = *m.Fuzz
		}
		return material.NewMetal(albedo, fuzz), nil
	case "dielectric":
		if m.RefractionIndex == nil {
			return material.Material{}, fmt.Errorf("%w: refractionIndex", ErrMissingField)
		}
		return material.NewDielectric(*m.RefractionIndex), nil
	case "":
		return material.Material{}, fmt.Errorf("%w: material type", ErrMissingField)
	default:
		return material.Material{}, fmt.Errorf("%w: %q", ErrUnsupportedMaterial, m.Type)
	}
}

func (m MaterialConfig) diffuse() (core.Color, error) {
	if m.Diffuse == nil {
		return core.Color{}, fmt.Errorf("%w: diffuse", ErrMissingField)
	}
	albedo, err := m.Diffuse.Vec3()
	if err != nil {
		return core.Color{}, fmt.Errorf("diffuse: %w", err)
	}
	return albedo, nil
}
