package server

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/scene"
)

// Request limits shared by the render and inspect endpoints
const (
	minImageSize   = 1
	maxImageSize   = 2000
	maxSamples     = 10000
	maxDepth       = 1000
	maxRowStep     = 256
	defaultRowStep = 8
)

// Server handles web requests for the sphere tracer
type Server struct {
	port      int
	scenesDir string // Directory scanned for JSON scenes
	staticDir string // Directory served at /
}

// NewServer creates a new web server
func NewServer(port int, scenesDir, staticDir string) *Server {
	return &Server{port: port, scenesDir: scenesDir, staticDir: staticDir}
}

// RenderRequest represents a render request from the client.
// Zero values for Width, Height, Samples and Depth mean "use the scene default".
type RenderRequest struct {
	Scene   string `json:"scene"`   // Scene name (e.g., "default", "three-spheres")
	Width   int    `json:"width"`   // Image width
	Height  int    `json:"height"`  // Image height
	Samples int    `json:"samples"` // Samples per pixel
	Depth   int    `json:"depth"`   // Maximum bounce depth, -1 for scene default
	RowStep int    `json:"rowStep"` // Row step of the first progressive pass
	Seed    int64  `json:"seed"`    // Base random seed
	Workers int    `json:"workers"` // Parallel workers, 0 = auto-detect
}

// Handler returns the routes served by the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Serve static files
	mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))

	// API endpoints
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/scene-config", s.handleSceneConfig)
	mux.HandleFunc("/api/inspect", s.handleInspect)

	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists built-in and JSON scenes grouped for the scene picker
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	response, err := scene.ListAllScenes(s.scenesDir)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// handleSceneConfig returns the default configuration for a scene
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	sceneName := r.URL.Query().Get("scene")
	if sceneName == "" {
		sceneName = "default"
	}

	sceneObj, err := s.createScene(sceneName, 0)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	config := sceneObj.SamplingConfig
	response := map[string]interface{}{
		"scene":      sceneName,
		"primitives": sceneObj.GetPrimitiveCount(),
		"defaults": map[string]interface{}{
			"width":           config.Width,
			"height":          config.Height,
			"samplesPerPixel": config.SamplesPerPixel,
			"maxDepth":        config.MaxDepth,
			"rowStep":         max(config.RowStep, defaultRowStep),
		},
		"limits": map[string]interface{}{
			"width":   map[string]int{"min": minImageSize, "max": maxImageSize},
			"height":  map[string]int{"min": minImageSize, "max": maxImageSize},
			"samples": map[string]int{"min": 1, "max": maxSamples},
			"depth":   map[string]int{"min": 0, "max": maxDepth},
			"rowStep": map[string]int{"min": 1, "max": maxRowStep},
		},
	}

	writeJSON(w, http.StatusOK, response)
}

// parseSceneParams parses the parameters shared by render and inspect requests
func parseSceneParams(values url.Values, req *RenderRequest) error {
	req.Scene = values.Get("scene")
	if req.Scene == "" {
		req.Scene = "default"
	}

	var err error
	if req.Width, err = parseIntParam(values, "width", 0, minImageSize, maxImageSize); err != nil {
		return err
	}
	if req.Height, err = parseIntParam(values, "height", 0, minImageSize, maxImageSize); err != nil {
		return err
	}
	if req.Seed, err = parseInt64Param(values, "seed", 42); err != nil {
		return err
	}
	return nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseInt64Param parses an unbounded 64-bit integer parameter
func parseInt64Param(values url.Values, key string, defaultValue int64) (int64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// createScene builds a scene listed by /api/scenes; client names never become file paths
func (s *Server) createScene(sceneName string, seed int64) (*scene.Scene, error) {
	return scene.CreateListed(sceneName, s.scenesDir, seed)
}

// applyRequest overrides the scene's sampling config with the non-zero request fields
func applyRequest(sceneObj *scene.Scene, req *RenderRequest) error {
	config := sceneObj.SamplingConfig

	switch {
	case req.Width > 0 && req.Height > 0:
		config.Width, config.Height = req.Width, req.Height
	case req.Width > 0:
		config.Width = req.Width
		config.Height = max(1, int(float64(req.Width)/sceneObj.CameraConfig.AspectRatio))
	case req.Height > 0:
		config.Height = req.Height
		config.Width = max(1, int(math.Round(float64(req.Height)*sceneObj.CameraConfig.AspectRatio)))
	}
	if req.Samples > 0 {
		config.SamplesPerPixel = req.Samples
	}
	if req.Depth >= 0 {
		config.MaxDepth = req.Depth
	}
	if req.RowStep > 0 {
		config.RowStep = req.RowStep
	}

	if err := config.Validate(); err != nil {
		return err
	}
	sceneObj.SamplingConfig = config
	return nil
}

// vecJSON flattens a vector for JSON responses
func vecJSON(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// writeJSON writes v with the given status code
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
