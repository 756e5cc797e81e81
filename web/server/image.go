package server

import (
	"bytes"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/df07/go-sphere-tracer/pkg/output"
	"github.com/df07/go-sphere-tracer/pkg/renderer"
)

// handleRenderImage renders a scene in one pass and returns PPM or PNG bytes
func (s *Server) handleRenderImage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	values := r.URL.Query()

	params, err := parseSceneParams(values)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	params.Scene = vars["scene"]

	format, err := output.ParseFormat(vars["format"])
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	sceneObj, err := s.createScene(&params)
	if err != nil {
		writeJSONError(w, sceneErrorStatus(err), err.Error())
		return
	}

	defaults := sceneObj.GetSamplingConfig()
	samples, err := parseIntParam(values, "samples", defaults.SamplesPerPixel, 1, maxSamples)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	depth, err := parseIntParam(values, "maxDepth", defaults.MaxDepth, 0, maxDepth)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	seed, err := parseSeedParam(values, renderer.DefaultSeed)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	raytracer := renderer.NewRaytracer(sceneObj, params.Width, params.Height)
	raytracer.SetSamplingConfig(renderer.SamplingConfig{SamplesPerPixel: samples, MaxDepth: depth})
	raytracer.SetSeed(seed)
	raytracer.SetLogger(log.Default())

	frame, stats, err := raytracer.RenderPass(r.Context())
	if err != nil {
		// Client disconnected
		log.Printf("Render of %s abandoned: %v", params.Scene, err)
		return
	}

	var buf bytes.Buffer
	if err := output.Encode(&buf, frame, format); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", output.ContentType(format))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Render-Samples", strconv.Itoa(stats.TotalSamples))
	w.Header().Set("X-Render-Duration-Ms", strconv.FormatInt(stats.Duration.Milliseconds(), 10))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("Error writing image response: %v", err)
	}
}
