package server

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/geometry"
	"github.com/df07/go-sphere-tracer/pkg/material"
	"github.com/df07/go-sphere-tracer/pkg/scene"
)

// inspectEpsilon matches the integrator's minimum hit distance
const inspectEpsilon = 0.001

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	MaterialType string                 `json:"materialType"`
	ShapeIndex   int                    `json:"shapeIndex"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	FrontFace    bool                   `json:"frontFace"`
	Properties   map[string]interface{} `json:"properties"`
}

// InspectResult contains information about the sphere hit by an inspection ray
type InspectResult struct {
	Hit        bool
	HitRecord  *material.HitRecord
	Shape      *geometry.Sphere
	ShapeIndex int
}

// extractMaterialInfo describes a material for the inspector panel
func extractMaterialInfo(mat *material.Material) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch mat.Kind {
	case material.KindLambertian:
		properties["albedo"] = vecJSON(mat.Albedo)
		properties["color"] = hexColor(mat.Albedo)

	case material.KindMetal:
		properties["albedo"] = vecJSON(mat.Albedo)
		properties["color"] = hexColor(mat.Albedo)
		properties["fuzzness"] = mat.Fuzzness

	case material.KindDielectric:
		properties["refractiveIndex"] = mat.RefractiveIndex
		properties["color"] = "#ffffff" // Clear glass
	}

	return mat.Kind.String(), properties
}

// hexColor formats a color as #rrggbb, clamping each channel to [0, 1]
func hexColor(c core.Color) string {
	channel := func(v float64) int {
		return int(math.Max(0, math.Min(1, v)) * 255)
	}
	return fmt.Sprintf("#%02x%02x%02x", channel(c.X), channel(c.Y), channel(c.Z))
}

// inspectPixel casts a ray through the center of an image pixel, where pixelY = 0 is the top row
func inspectPixel(sceneObj *scene.Scene, width, height, pixelX, pixelY int) InspectResult {
	// A fixed seed keeps lens samples stable between requests
	sampler := core.NewSeededSampler(0)

	y := height - 1 - pixelY
	s := (float64(pixelX) + 0.5) / float64(max(width-1, 1))
	t := (float64(y) + 0.5) / float64(max(height-1, 1))
	ray := sceneObj.Camera.GetRay(s, t, sampler)

	hit, isHit := sceneObj.Hit(ray, inspectEpsilon, math.Inf(1))
	if !isHit {
		return InspectResult{Hit: false, ShapeIndex: -1}
	}

	// Scene.Hit does not report the shape, so find the first one with the same hit distance
	for i, shape := range sceneObj.Shapes {
		if shapeHit, shapeIsHit := shape.Hit(ray, inspectEpsilon, hit.T+inspectEpsilon); shapeIsHit && shapeHit.T == hit.T {
			return InspectResult{Hit: true, HitRecord: hit, Shape: shape, ShapeIndex: i}
		}
	}

	return InspectResult{Hit: true, HitRecord: hit, ShapeIndex: -1}
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	inspectReq := &RenderRequest{Depth: -1}
	values := r.URL.Query()

	if err := parseSceneParams(values, inspectReq); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid scene parameters: " + err.Error()})
		return
	}

	pixelX, err := strconv.Atoi(values.Get("x"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid x coordinate"})
		return
	}
	pixelY, err := strconv.Atoi(values.Get("y"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid y coordinate"})
		return
	}

	sceneObj, err := s.createScene(inspectReq.Scene, inspectReq.Seed)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := applyRequest(sceneObj, inspectReq); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	width, height := sceneObj.SamplingConfig.Width, sceneObj.SamplingConfig.Height
	if pixelX < 0 || pixelX >= width || pixelY < 0 || pixelY >= height {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Pixel coordinates out of bounds"})
		return
	}

	result := inspectPixel(sceneObj, width, height, pixelX, pixelY)
	if !result.Hit {
		writeJSON(w, http.StatusOK, InspectResponse{Hit: false, ShapeIndex: -1})
		return
	}

	materialType, materialProps := extractMaterialInfo(sceneObj.Materials.Get(result.HitRecord.Material))

	allProperties := map[string]interface{}{
		"material": materialProps,
	}
	if result.Shape != nil {
		allProperties["geometry"] = map[string]interface{}{
			"center": vecJSON(result.Shape.Center),
			"radius": result.Shape.Radius,
		}
	}

	writeJSON(w, http.StatusOK, InspectResponse{
		Hit:          true,
		MaterialType: materialType,
		ShapeIndex:   result.ShapeIndex,
		Point:        vecJSON(result.HitRecord.Point),
		Normal:       vecJSON(result.HitRecord.Normal),
		Distance:     result.HitRecord.T,
		FrontFace:    result.HitRecord.FrontFace,
		Properties:   allProperties,
	})
}
