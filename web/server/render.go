package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/df07/go-sphere-tracer/pkg/output"
	"github.com/df07/go-sphere-tracer/pkg/renderer"
	"github.com/df07/go-sphere-tracer/pkg/scene"
)

// RenderRequest represents a progressive render request from the client
type RenderRequest struct {
	sceneParams
	MaxSamples int   // Maximum samples per pixel
	MaxPasses  int   // Maximum number of passes
	MaxDepth   int   // Maximum ray bounce depth
	Seed       int64 // Sampler seed
}

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string `json:"type"` // "console", "passComplete", "error", "complete"
	Data string `json:"data"` // JSON-encoded data
}

// PassUpdate is the payload of a passComplete event
type PassUpdate struct {
	PassNumber      int     `json:"passNumber"`
	TotalPasses     int     `json:"totalPasses"`
	ImageData       string  `json:"imageData"` // Base64 encoded PNG
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	ElapsedMs       int64   `json:"elapsedMs"`
	TotalPixels     int     `json:"totalPixels"`
	TotalSamples    int     `json:"totalSamples"`
	SamplesPerPixel int     `json:"samplesPerPixel"`
	MeanLuminance   float64 `json:"meanLuminance"`
	LuminanceStdDev float64 `json:"luminanceStdDev"`
	PrimitiveCount  int     `json:"primitiveCount"`
	IsLast          bool    `json:"isLast"`
}

// handleRender handles progressive rendering with pass-by-pass streaming via SSE
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	s.setSSEHeaders(w)
	ctx := r.Context()

	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeSSE(w, SSEEvent{Type: "error", Data: fmt.Sprintf("Invalid request: %v", err)})
		return
	}

	sceneObj, err := s.createScene(&req.sceneParams)
	if err != nil {
		writeSSE(w, SSEEvent{Type: "error", Data: err.Error()})
		return
	}
	if req.MaxDepth == 0 {
		req.MaxDepth = sceneObj.GetSamplingConfig().MaxDepth
	}

	consoleChan := make(chan ConsoleMessage, 50)
	webLogger := NewWebLogger(fmt.Sprintf("render-%d", time.Now().UnixNano()), consoleChan)

	// Single writer goroutine owns the ResponseWriter until events is closed
	sseEventChan := make(chan SSEEvent, 16)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeSSEEvents(ctx, w, sseEventChan, consoleChan)
	}()

	raytracer := renderer.NewProgressiveRaytracer(sceneObj, req.Width, req.Height, renderer.ProgressiveConfig{
		InitialSamples:     1,
		MaxSamplesPerPixel: req.MaxSamples,
		MaxPasses:          req.MaxPasses,
		MaxDepth:           req.MaxDepth,
		Seed:               req.Seed,
	}, webLogger)

	startTime := time.Now()
	err = raytracer.RenderProgressive(ctx, func(result renderer.PassResult) error {
		data, err := s.passUpdate(result, req, sceneObj, startTime)
		if err != nil {
			return err
		}
		return sendEvent(ctx, sseEventChan, SSEEvent{Type: "passComplete", Data: data})
	})

	switch {
	case ctx.Err() != nil:
		// Client disconnected
	case err != nil:
		sendEvent(ctx, sseEventChan, SSEEvent{Type: "error", Data: fmt.Sprintf("Rendering failed: %v", err)})
	default:
		sendEvent(ctx, sseEventChan, SSEEvent{Type: "complete", Data: "Rendering completed"})
	}

	close(sseEventChan)
	<-writerDone
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// writeSSEEvents writes all SSE events in a single goroutine. Pending console
// messages are flushed ahead of each render event.
func (s *Server) writeSSEEvents(ctx context.Context, w http.ResponseWriter, sseEventChan <-chan SSEEvent, consoleChan <-chan ConsoleMessage) {
	flushConsole := func() bool {
		for {
			select {
			case msg := <-consoleChan:
				if !writeConsole(w, msg) {
					return false
				}
			default:
				return true
			}
		}
	}

	for {
		select {
		case event, ok := <-sseEventChan:
			if !flushConsole() {
				return
			}
			if !ok {
				return
			}
			if !writeSSE(w, event) {
				return
			}

		case msg := <-consoleChan:
			if !writeConsole(w, msg) {
				return
			}

		case <-ctx.Done():
			// Client disconnected
			return
		}
	}
}

func writeConsole(w http.ResponseWriter, msg ConsoleMessage) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling console message: %v", err)
		return true
	}
	return writeSSE(w, SSEEvent{Type: "console", Data: string(data)})
}

// writeSSE writes one event and flushes; false means the client is gone
func writeSSE(w http.ResponseWriter, event SSEEvent) bool {
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
		return false
	}
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
	return true
}

// sendEvent queues an event unless the client has disconnected
func sendEvent(ctx context.Context, sseEventChan chan<- SSEEvent, event SSEEvent) error {
	select {
	case sseEventChan <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// passUpdate encodes a finished pass as a JSON payload
func (s *Server) passUpdate(result renderer.PassResult, req *RenderRequest, sceneObj *scene.Scene, startTime time.Time) (string, error) {
	imageData, err := frameToBase64PNG(result.Frame)
	if err != nil {
		return "", fmt.Errorf("failed to encode pass %d: %w", result.PassNumber, err)
	}

	update := PassUpdate{
		PassNumber:      result.PassNumber,
		TotalPasses:     req.MaxPasses,
		ImageData:       imageData,
		Width:           result.Frame.Width,
		Height:          result.Frame.Height,
		ElapsedMs:       time.Since(startTime).Milliseconds(),
		TotalPixels:     result.Stats.TotalPixels,
		TotalSamples:    result.Stats.TotalSamples,
		SamplesPerPixel: result.Stats.SamplesPerPixel,
		MeanLuminance:   result.Stats.MeanLuminance,
		LuminanceStdDev: result.Stats.LuminanceStdDev,
		PrimitiveCount:  sceneObj.GetPrimitiveCount(),
		IsLast:          result.IsLast,
	}

	data, err := json.Marshal(update)
	if err != nil {
		return "", fmt.Errorf("failed to marshal pass update: %w", err)
	}
	return string(data), nil
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	values := r.URL.Query()

	params, err := parseSceneParams(values)
	if err != nil {
		return nil, err
	}
	req := &RenderRequest{sceneParams: params}

	if req.MaxSamples, err = parseIntParam(values, "maxSamples", 64, 1, maxSamples); err != nil {
		return nil, err
	}
	if req.MaxPasses, err = parseIntParam(values, "maxPasses", 7, 1, maxPasses); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(values, "maxDepth", 0, 0, maxDepth); err != nil {
		return nil, err
	}
	if req.Seed, err = parseSeedParam(values, renderer.DefaultSeed); err != nil {
		return nil, err
	}

	// Performance warning
	if req.Width > 800 && req.MaxSamples > 100 {
		log.Printf("Render warning: Large image with high samples may render slowly")
	}

	return req, nil
}

// frameToBase64PNG converts a frame to base64-encoded PNG
func frameToBase64PNG(frame *renderer.Frame) (string, error) {
	var buf bytes.Buffer
	if err := output.WritePNG(&buf, frame); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
