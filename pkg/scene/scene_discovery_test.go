package scene

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const minimalSceneJSON = `{
  "width": 20, "aspectRatio": 2, "samplesPerPixel": 2, "rayMaxDepth": 3,
  "camera": {"fovDeg": 60, "position": [0, 0, 3], "lookAt": [0, 0, 0]},
  "shapes": [
    {"type": "sphere", "material": {"type": "lambertian", "diffuse": [0.5, 0.5, 0.5]},
     "transform": {"position": [0, 0, 0], "size": [1]}}
  ]
}`

func writeScene(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

func TestTitleCase(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"three-spheres", "Three Spheres"},
		{"glass_marbles", "Glass Marbles"},
		{"my-custom-scene", "My Custom Scene"},
		{"simple", "Simple"},
		{"UPPER-case", "Upper Case"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			result := titleCase(tc.input)
			if result != tc.expected {
				t.Errorf("titleCase(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

func TestListJSONScenes(t *testing.T) {
	dir := t.TempDir()
	writeScene(t, dir, "zebra-spheres.json", minimalSceneJSON)
	writeScene(t, dir, "apple.json", minimalSceneJSON)
	writeScene(t, dir, "notes.txt", "not a scene")

	scenes, err := ListJSONScenes(dir)
	if err != nil {
		t.Fatalf("ListJSONScenes() error: %v", err)
	}
	if len(scenes) != 2 {
		t.Fatalf("Expected 2 scenes, got %d", len(scenes))
	}
	if scenes[0].DisplayName != "Apple" || scenes[1].DisplayName != "Zebra Spheres" {
		t.Errorf("Unexpected order: %q, %q", scenes[0].DisplayName, scenes[1].DisplayName)
	}
	if scenes[1].ID != "zebra-spheres" || scenes[1].Type != "json" {
		t.Errorf("Unexpected scene info: %+v", scenes[1])
	}
	if scenes[1].FilePath != filepath.Join(dir, "zebra-spheres.json") {
		t.Errorf("Unexpected file path %q", scenes[1].FilePath)
	}
}

func TestListJSONScenes_MissingDirectory(t *testing.T) {
	scenes, err := ListJSONScenes(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Errorf("ListJSONScenes() error: %v", err)
	}
	if scenes == nil || len(scenes) != 0 {
		t.Errorf("Expected empty slice, got %v", scenes)
	}
}

func TestListAllScenes(t *testing.T) {
	dir := t.TempDir()
	writeScene(t, dir, "three-spheres.json", minimalSceneJSON)

	response, err := ListAllScenes(dir)
	if err != nil {
		t.Fatalf("ListAllScenes() error: %v", err)
	}
	if len(response.Groups) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(response.Groups))
	}

	builtIn := response.Groups[0]
	if builtIn.Name != "Built-in Scenes" {
		t.Errorf("First group should be built-in scenes, got %q", builtIn.Name)
	}

	expectedScenes := []string{"default", "random-spheres", "sphere-grid"}
	if len(builtIn.Scenes) != len(expectedScenes) {
		t.Errorf("Built-in scenes count = %d, want %d", len(builtIn.Scenes), len(expectedScenes))
	}
	sceneIDs := make(map[string]bool)
	for _, scene := range builtIn.Scenes {
		sceneIDs[scene.ID] = true
	}
	for _, expectedID := range expectedScenes {
		if !sceneIDs[expectedID] {
			t.Errorf("Missing expected built-in scene: %s", expectedID)
		}
	}

	jsonGroup := response.Groups[1]
	if len(jsonGroup.Scenes) != 1 || jsonGroup.Scenes[0].ID != "three-spheres" {
		t.Errorf("Unexpected JSON group: %+v", jsonGroup)
	}
}

func TestCreate(t *testing.T) {
	dir := t.TempDir()
	path := writeScene(t, dir, "three-spheres.json", minimalSceneJSON)

	tests := []struct {
		name      string
		sceneName string
		wantErr   bool
	}{
		{"default scene", "default", false},
		{"random spheres", "random-spheres", false},
		{"sphere grid", "sphere-grid", false},
		{"json by name", "three-spheres", false},
		{"json by path", path, false},
		{"unknown scene", "nonexistent", true},
		{"missing json path", filepath.Join(dir, "nonexistent.json"), true},
		{"empty scene name", "", true},
		{"parent directory name", "../three-spheres", true},
		{"nested name", "sub/three-spheres", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Create(tt.sceneName, dir, 1)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownScene) {
					t.Errorf("Expected ErrUnknownScene, got %v", err)
				}
				if s != nil {
					t.Errorf("Expected nil scene, got %v", s)
				}
				return
			}
			if err != nil {
				t.Fatalf("Create(%q) error: %v", tt.sceneName, err)
			}
			if err := s.Validate(); err != nil {
				t.Errorf("Scene %q failed validation: %v", tt.sceneName, err)
			}
			if err := s.SamplingConfig.Validate(); err != nil {
				t.Errorf("Scene %q has invalid sampling config: %v", tt.sceneName, err)
			}
		})
	}
}

func TestCreateListed(t *testing.T) {
	root := t.TempDir()
	scenesDir := filepath.Join(root, "scenes")
	if err := os.Mkdir(scenesDir, 0o755); err != nil {
		t.Fatalf("Failed to create scenes dir: %v", err)
	}
	writeScene(t, scenesDir, "three-spheres.json", minimalSceneJSON)
	private := writeScene(t, root, "private.json", minimalSceneJSON)

	tests := []struct {
		name      string
		sceneName string
		wantErr   bool
	}{
		{"built-in", "default", false},
		{"listed json", "three-spheres", false},
		{"parent directory", "../private", true},
		{"absolute path to existing file", private, true},
		{"absolute path to missing file", filepath.Join(root, "missing.json"), true},
		{"listed json by path", filepath.Join(scenesDir, "three-spheres.json"), true},
		{"unlisted alias", "spheregrid", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := CreateListed(tt.sceneName, scenesDir, 1)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownScene) {
					t.Errorf("Expected ErrUnknownScene, got %v", err)
				}
				if s != nil {
					t.Errorf("Expected nil scene, got %v", s)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateListed(%q) error: %v", tt.sceneName, err)
			}
		})
	}
}
