package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/df07/go-sphere-tracer/pkg/geometry"
)

// ErrUnknownScene is returned by Create for names that match no built-in or JSON scene
var ErrUnknownScene = errors.New("unknown scene")

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`                 // Unique identifier
	Name        string `json:"name"`               // Scene name
	DisplayName string `json:"displayName"`        // UI display name
	Description string `json:"description"`        // Optional description
	Group       string `json:"group"`              // Grouping category
	Type        string `json:"type"`               // "builtin" or "json"
	FilePath    string `json:"filePath,omitempty"` // Path to JSON file (json type only)
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ScenesResponse represents the complete response for /api/scenes
type ScenesResponse struct {
	Groups []SceneGroup `json:"groups"`
}

const builtInGroup = "Built-in Scenes"

// builtInScenes lists the scenes constructed in code
var builtInScenes = []SceneInfo{
	{
		ID:          "default",
		Name:        "Default Scene",
		DisplayName: "Default Scene",
		Description: "Metal, glass and diffuse spheres on a large ground sphere",
		Group:       builtInGroup,
		Type:        "builtin",
	},
	{
		ID:          "random-spheres",
		Name:        "Random Spheres",
		DisplayName: "Random Spheres",
		Description: "Field of small random spheres around three large ones",
		Group:       builtInGroup,
		Type:        "builtin",
	},
	{
		ID:          "sphere-grid",
		Name:        "Sphere Grid",
		DisplayName: "Sphere Grid",
		Description: "20x20 grid of rainbow-colored metallic spheres",
		Group:       builtInGroup,
		Type:        "builtin",
	},
}

// BuiltInScenes returns the scenes constructed in code
func BuiltInScenes() []SceneInfo {
	return append([]SceneInfo(nil), builtInScenes...)
}

// Create builds a scene by name. Names are built-in IDs, paths to .json files,
// or the base name of a JSON file in scenesDir. Callers taking names from
// untrusted input should use CreateListed instead.
func Create(name, scenesDir string, seed int64, cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	switch name {
	case "default":
		return NewDefaultScene(cameraOverrides...)
	case "random-spheres":
		return NewRandomSpheresScene(seed, cameraOverrides...)
	case "sphere-grid", "spheregrid":
		return NewSphereGridScene(cameraOverrides...)
	case "":
		return nil, fmt.Errorf("%w: empty scene name", ErrUnknownScene)
	}

	path := name
	if !strings.EqualFold(filepath.Ext(name), ".json") {
		// Bare names resolve inside scenesDir only
		if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
			return nil, fmt.Errorf("%w: %s", ErrUnknownScene, name)
		}
		path = filepath.Join(scenesDir, name+".json")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownScene, name)
	}

	return LoadScene(path)
}

// CreateListed builds a scene only if name is a built-in ID or the ID of a JSON
// scene found in scenesDir. Any other name, including paths, is ErrUnknownScene.
func CreateListed(name, scenesDir string, seed int64, cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	if !isListed(name, scenesDir) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownScene, name)
	}
	return Create(name, scenesDir, seed, cameraOverrides...)
}

func isListed(name, scenesDir string) bool {
	for _, info := range builtInScenes {
		if info.ID == name {
			return true
		}
	}
	jsonScenes, err := ListJSONScenes(scenesDir)
	if err != nil {
		return false
	}
	for _, info := range jsonScenes {
		if info.ID == name {
			return true
		}
	}
	return false
}

// ListJSONScenes scans dir and returns discovered JSON scenes sorted by display name.
// A missing directory yields an empty list.
func ListJSONScenes(dir string) ([]SceneInfo, error) {
	if _, err := os.Stat(dir); err != nil {
		return []SceneInfo{}, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	scenes := make([]SceneInfo, 0, len(files))
	for _, filePath := range files {
		nameWithoutExt := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
		scenes = append(scenes, SceneInfo{
			ID:          nameWithoutExt,
			Name:        titleCase(nameWithoutExt),
			DisplayName: titleCase(nameWithoutExt),
			Group:       "JSON Scenes",
			Type:        "json",
			FilePath:    filePath,
		})
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})

	return scenes, nil
}

// ListAllScenes returns both built-in and JSON scenes, grouped by category
func ListAllScenes(dir string) (ScenesResponse, error) {
	var response ScenesResponse

	jsonScenes, err := ListJSONScenes(dir)
	if err != nil {
		return response, fmt.Errorf("failed to list JSON scenes: %w", err)
	}

	// Combine all scenes
	allScenes := append(BuiltInScenes(), jsonScenes...)

	// Group scenes by their Group field
	groupMap := make(map[string][]SceneInfo)
	for _, scene := range allScenes {
		groupMap[scene.Group] = append(groupMap[scene.Group], scene)
	}

	// Create ordered groups (Built-in first, then alphabetical)
	var groupNames []string
	for groupName := range groupMap {
		if groupName != builtInGroup {
			groupNames = append(groupNames, groupName)
		}
	}
	sort.Strings(groupNames)

	if scenes, exists := groupMap[builtInGroup]; exists {
		response.Groups = append(response.Groups, SceneGroup{
			Name:   builtInGroup,
			Scenes: scenes,
		})
	}

	for _, groupName := range groupNames {
		response.Groups = append(response.Groups, SceneGroup{
			Name:   groupName,
			Scenes: groupMap[groupName],
		})
	}

	return response, nil
}

// titleCase converts a filename-style string to title case
// e.g., "three-spheres" -> "Three Spheres"
func titleCase(s string) string {
	// Replace hyphens and underscores with spaces
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	// Title case each word
	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}

	return strings.Join(words, " ")
}
