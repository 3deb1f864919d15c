package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-sphere-tracer/pkg/scene"
)

func newTestServer() *Server {
	return NewServer(0, "../../scenes", "../static")
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	rec := get(t, newTestServer(), "/api/health")

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("Expected status ok, got %q", body["status"])
	}
}

func TestHandleScenes(t *testing.T) {
	rec := get(t, newTestServer(), "/api/scenes")

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	var body scene.ScenesResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(body.Groups) != 2 {
		t.Fatalf("Expected built-in and JSON groups, got %d groups", len(body.Groups))
	}
	if body.Groups[0].Name != "Built-in Scenes" {
		t.Errorf("Expected built-in group first, got %q", body.Groups[0].Name)
	}

	found := false
	for _, info := range body.Groups[1].Scenes {
		if info.ID == "three-spheres" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected three-spheres in JSON group, got %+v", body.Groups[1].Scenes)
	}
}

func TestHandleSceneConfig(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		wantStatus int
	}{
		{"default scene", "/api/scene-config", http.StatusOK},
		{"built-in by name", "/api/scene-config?scene=sphere-grid", http.StatusOK},
		{"JSON scene", "/api/scene-config?scene=glass-marbles", http.StatusOK},
		{"unknown scene", "/api/scene-config?scene=nonexistent", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, newTestServer(), tt.target)
			if rec.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHandleRenderStreamsEveryPass(t *testing.T) {
	params := url.Values{
		"scene":   {"default"},
		"width":   {"16"},
		"height":  {"9"},
		"samples": {"1"},
		"depth":   {"3"},
		"rowStep": {"4"},
		"workers": {"2"},
	}
	rec := get(t, newTestServer(), "/api/render?"+params.Encode())

	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("Expected event stream content type, got %q", got)
	}

	body := rec.Body.String()
	if n := strings.Count(body, "event: progress\n"); n != 3 {
		t.Errorf("Expected 3 progress events for row step 4, got %d", n)
	}
	if !strings.Contains(body, "event: complete\n") {
		t.Errorf("Expected complete event, body:\n%s", body)
	}
	if strings.Contains(body, "event: error\n") {
		t.Errorf("Unexpected error event, body:\n%s", body)
	}
	if !strings.Contains(body, "event: console\n") {
		t.Errorf("Expected console events from the web logger")
	}

	// The last progress event reports a complete image
	var last ProgressUpdate
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, "data: {\"passNumber\"") {
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &last); err != nil {
				t.Fatalf("Failed to decode progress event: %v", err)
			}
		}
	}
	if !last.IsComplete || last.PassNumber != 3 || last.TotalPasses != 3 {
		t.Errorf("Expected final pass 3/3, got %+v", last)
	}
	if last.Stats.RenderedRows != 9 || last.Stats.TotalPixels != 16*9 {
		t.Errorf("Expected all 9 rows of 144 pixels, got %+v", last.Stats)
	}
	if last.ImageData == "" {
		t.Error("Expected image data")
	}
}

func TestHandleRenderErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"invalid width", "/api/render?width=abc"},
		{"width out of range", "/api/render?width=5000"},
		{"unknown scene", "/api/render?scene=nonexistent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := get(t, newTestServer(), tt.target).Body.String()
			if !strings.Contains(body, "event: error\n") {
				t.Errorf("Expected error event, body:\n%s", body)
			}
			if strings.Contains(body, "event: progress\n") {
				t.Errorf("Unexpected progress event, body:\n%s", body)
			}
		})
	}
}

func TestSceneNamesOutsideScenesDirRejected(t *testing.T) {
	root := t.TempDir()
	scenesDir := filepath.Join(root, "scenes")
	if err := os.Mkdir(scenesDir, 0o755); err != nil {
		t.Fatalf("Failed to create scenes dir: %v", err)
	}
	sceneJSON, err := os.ReadFile("../../scenes/three-spheres.json")
	if err != nil {
		t.Fatalf("Failed to read scene: %v", err)
	}
	for _, path := range []string{filepath.Join(scenesDir, "listed.json"), filepath.Join(root, "private.json")} {
		if err := os.WriteFile(path, sceneJSON, 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", path, err)
		}
	}
	s := NewServer(0, scenesDir, "../static")

	if rec := get(t, s, "/api/scene-config?scene=listed"); rec.Code != http.StatusOK {
		t.Fatalf("Expected listed scene to load, got %d: %s", rec.Code, rec.Body.String())
	}

	names := []struct {
		name      string
		sceneName string
	}{
		{"parent directory", "../private"},
		{"parent directory missing file", "../missing"},
		{"absolute path", filepath.Join(root, "private.json")},
		{"absolute path missing file", filepath.Join(root, "missing.json")},
	}

	for _, tt := range names {
		t.Run(tt.name, func(t *testing.T) {
			query := url.QueryEscape(tt.sceneName)
			wantMessage := "unknown scene: " + tt.sceneName

			for _, endpoint := range []string{"/api/scene-config?scene=", "/api/inspect?x=0&y=0&scene="} {
				rec := get(t, s, endpoint+query)
				if rec.Code != http.StatusBadRequest {
					t.Fatalf("%s: expected status 400, got %d", endpoint, rec.Code)
				}
				var body map[string]string
				if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
					t.Fatalf("%s: failed to decode response: %v", endpoint, err)
				}
				if body["error"] != wantMessage {
					t.Errorf("%s: expected error %q, got %q", endpoint, wantMessage, body["error"])
				}
			}

			body := get(t, s, "/api/render?scene="+query).Body.String()
			if !strings.Contains(body, "event: error\n") || !strings.Contains(body, wantMessage) {
				t.Errorf("Expected error event with %q, body:\n%s", wantMessage, body)
			}
			if strings.Contains(body, "event: progress\n") {
				t.Errorf("Unexpected progress event, body:\n%s", body)
			}
		})
	}
}

func TestHandleInspect(t *testing.T) {
	tests := []struct {
		name         string
		target       string
		wantStatus   int
		wantHit      bool
		wantMaterial string
		wantShape    int
	}{
		{"center hits red sphere", "/api/inspect?scene=default&x=200&y=112", http.StatusOK, true, "lambertian", 1},
		{"top corner sees sky", "/api/inspect?scene=default&x=0&y=0", http.StatusOK, false, "", -1},
		{"out of bounds", "/api/inspect?scene=default&x=400&y=0", http.StatusBadRequest, false, "", 0},
		{"missing coordinate", "/api/inspect?scene=default&x=1", http.StatusBadRequest, false, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, newTestServer(), tt.target)
			if rec.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var response InspectResponse
			if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if response.Hit != tt.wantHit {
				t.Fatalf("Expected hit %v, got %+v", tt.wantHit, response)
			}
			if response.MaterialType != tt.wantMaterial {
				t.Errorf("Expected material %q, got %q", tt.wantMaterial, response.MaterialType)
			}
			if response.ShapeIndex != tt.wantShape {
				t.Errorf("Expected shape %d, got %d", tt.wantShape, response.ShapeIndex)
			}
		})
	}
}

func TestParseIntParam(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    int
		wantErr bool
	}{
		{"missing uses default", "", 7, false},
		{"valid value", "n=12", 12, false},
		{"lower bound", "n=1", 1, false},
		{"below range", "n=0", 0, true},
		{"above range", "n=101", 0, true},
		{"not a number", "n=abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, _ := url.ParseQuery(tt.query)
			got, err := parseIntParam(values, "n", 7, 1, 100)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestApplyRequest(t *testing.T) {
	tests := []struct {
		name       string
		req        RenderRequest
		wantWidth  int
		wantHeight int
		wantDepth  int
	}{
		{"scene defaults", RenderRequest{Depth: -1}, 400, 225, 50},
		{"width keeps aspect", RenderRequest{Width: 160, Depth: -1}, 160, 90, 50},
		{"height keeps aspect", RenderRequest{Height: 90, Depth: -1}, 160, 90, 50},
		{"explicit size", RenderRequest{Width: 10, Height: 10, Depth: 0}, 10, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := scene.NewDefaultScene()
			if err != nil {
				t.Fatalf("NewDefaultScene failed: %v", err)
			}
			if err := applyRequest(s, &tt.req); err != nil {
				t.Fatalf("applyRequest failed: %v", err)
			}

			config := s.SamplingConfig
			if config.Width != tt.wantWidth || config.Height != tt.wantHeight {
				t.Errorf("Expected %dx%d, got %dx%d", tt.wantWidth, tt.wantHeight, config.Width, config.Height)
			}
			if config.MaxDepth != tt.wantDepth {
				t.Errorf("Expected depth %d, got %d", tt.wantDepth, config.MaxDepth)
			}
		})
	}
}
