package server

import (
	"fmt"
	"math"
	"net/http"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/geometry"
	"github.com/df07/go-sphere-tracer/pkg/integrator"
	"github.com/df07/go-sphere-tracer/pkg/material"
	"github.com/df07/go-sphere-tracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	MaterialType string                 `json:"materialType"`
	GeometryType string                 `json:"geometryType"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	FrontFace    bool                   `json:"frontFace"`
	Properties   map[string]interface{} `json:"properties"`
}

// InspectResult is the closest hit along a pixel's center ray
type InspectResult struct {
	Hit       bool
	HitRecord *material.HitRecord
	Sphere    *geometry.Sphere // The sphere that was hit, if it could be identified
}

// extractMaterialInfo describes a material for the inspector
func extractMaterialInfo(mat material.Material) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch mat.Kind {
	case material.KindLambertian, material.KindMetal:
		properties["albedo"] = [3]float64{mat.Albedo.X, mat.Albedo.Y, mat.Albedo.Z}
		properties["color"] = fmt.Sprintf("#%02x%02x%02x",
			int(mat.Albedo.X*255), int(mat.Albedo.Y*255), int(mat.Albedo.Z*255))
		if mat.Kind == material.KindMetal {
			properties["fuzz"] = mat.Fuzz
		}
	case material.KindDielectric:
		properties["refractiveIndex"] = mat.RefractiveIndex
		properties["color"] = "#ffffff" // Clear glass
	}

	return mat.Kind.String(), properties
}

// inspectPixel traces the center ray of a pixel (row 0 at the top) without
// lens jitter and reports what it hits first
func inspectPixel(sceneObj *scene.Scene, width, height, pixelX, pixelY int) InspectResult {
	s := (float64(pixelX) + 0.5) / float64(max(width-1, 1))
	t := (float64(height-1-pixelY) + 0.5) / float64(max(height-1, 1))

	// Pinhole copy of the camera so the inspected ray is the chief ray
	config := sceneObj.CameraConfig
	config.Aperture = 0
	camera := geometry.NewCamera(config)
	ray := camera.GetRay(s, t, core.NewSeededSampler(0))

	hit, isHit := sceneObj.Hit(ray, integrator.TMin, math.Inf(1))
	if !isHit {
		return InspectResult{Hit: false}
	}

	for _, shape := range sceneObj.Shapes.Shapes {
		sphere, ok := shape.(*geometry.Sphere)
		if !ok {
			continue
		}
		if shapeHit, shapeIsHit := sphere.Hit(ray, integrator.TMin, hit.T+1e-9); shapeIsHit && shapeHit.T == hit.T {
			return InspectResult{Hit: true, HitRecord: hit, Sphere: sphere}
		}
	}

	return InspectResult{Hit: true, HitRecord: hit}
}

// handleInspect reports the sphere and material under a pixel
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()

	params, err := parseSceneParams(values)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid scene parameters: "+err.Error())
		return
	}

	sceneObj, err := s.createScene(&params)
	if err != nil {
		writeJSONError(w, sceneErrorStatus(err), err.Error())
		return
	}

	pixelX, err := parseIntParam(values, "x", -1, 0, params.Width-1)
	if err != nil || pixelX < 0 {
		writeJSONError(w, http.StatusBadRequest, "Invalid x coordinate")
		return
	}
	pixelY, err := parseIntParam(values, "y", -1, 0, params.Height-1)
	if err != nil || pixelY < 0 {
		writeJSONError(w, http.StatusBadRequest, "Invalid y coordinate")
		return
	}

	writeJSON(w, http.StatusOK, inspectResponse(sceneObj, inspectPixel(sceneObj, params.Width, params.Height, pixelX, pixelY)))
}

// inspectResponse describes an inspection result as JSON
func inspectResponse(sceneObj *scene.Scene, result InspectResult) InspectResponse {
	if !result.Hit {
		return InspectResponse{Hit: false}
	}

	materialType := "unknown"
	materialProps := make(map[string]interface{})
	if mat, ok := sceneObj.Materials.Get(result.HitRecord.Material); ok {
		materialType, materialProps = extractMaterialInfo(mat)
	}

	geometryType := "unknown"
	geometryProps := make(map[string]interface{})
	if result.Sphere != nil {
		geometryType = "sphere"
		geometryProps["center"] = [3]float64{result.Sphere.Center.X, result.Sphere.Center.Y, result.Sphere.Center.Z}
		geometryProps["radius"] = result.Sphere.Radius
	}

	return InspectResponse{
		Hit:          true,
		MaterialType: materialType,
		GeometryType: geometryType,
		Point:        [3]float64{result.HitRecord.Point.X, result.HitRecord.Point.Y, result.HitRecord.Point.Z},
		Normal:       [3]float64{result.HitRecord.Normal.X, result.HitRecord.Normal.Y, result.HitRecord.Normal.Z},
		Distance:     result.HitRecord.T,
		FrontFace:    result.HitRecord.FrontFace,
		Properties: map[string]interface{}{
			"material": materialProps,
			"geometry": geometryProps,
		},
	}
}
