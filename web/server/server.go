package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/df07/go-sphere-tracer/pkg/scene"
)

// Parameter limits shared by the render endpoints
const (
	minWidth   = 1
	maxWidth   = 2000
	maxSamples = 10000
	maxPasses  = 32
	maxDepth   = 1000
)

// Server handles web requests for the sphere tracer
type Server struct {
	port      int
	scenesDir string
	router    *mux.Router
}

// NewServer creates a new web server. YAML scenes are looked up in scenesDir.
func NewServer(port int, scenesDir string) *Server {
	s := &Server{port: port, scenesDir: scenesDir}

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/scenes", s.handleScenes).Methods(http.MethodGet)
	api.HandleFunc("/render", s.handleRender).Methods(http.MethodGet)
	api.HandleFunc("/render/{scene}.{format:ppm|png}", s.handleRenderImage).Methods(http.MethodGet)
	api.HandleFunc("/inspect", s.handleInspect).Methods(http.MethodGet)
	s.router = r

	return s
}

// Handler returns the routed HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.router)
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists built-in and YAML scenes grouped by category
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	response, err := scene.ListAllScenes(s.scenesDir, log.Default())
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// sceneParams are the query parameters common to every scene endpoint
type sceneParams struct {
	Scene  string
	Width  int // 0 means the scene's own width
	Height int
}

// parseSceneParams reads scene and width; height follows from the scene's aspect ratio
func parseSceneParams(values url.Values) (sceneParams, error) {
	params := sceneParams{Scene: values.Get("scene")}
	if params.Scene == "" {
		params.Scene = "default"
	}

	var err error
	if params.Width, err = parseIntParam(values, "width", 0, minWidth, maxWidth); err != nil {
		return params, err
	}
	return params, nil
}

// createScene builds the requested scene and resolves the image size
func (s *Server) createScene(params *sceneParams) (*scene.Scene, error) {
	sceneObj, err := scene.CreateInDir(params.Scene, s.scenesDir)
	if err != nil {
		return nil, err
	}

	if params.Width == 0 {
		params.Width = sceneObj.SamplingConfig.Width
	}
	params.Height = scene.HeightForWidth(params.Width, sceneObj.CameraConfig.AspectRatio)
	return sceneObj, nil
}

// sceneErrorStatus maps scene creation errors to HTTP status codes
func sceneErrorStatus(err error) int {
	if errors.Is(err, scene.ErrUnknownScene) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
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

// parseSeedParam parses the optional sampler seed
func parseSeedParam(values url.Values, defaultValue int64) (int64, error) {
	if value := values.Get("seed"); value != "" {
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid seed: %s", value)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
