package renderer

import (
	"context"
	"errors"
	"testing"

	"github.com/df07/go-sphere-tracer/pkg/scene"
)

func TestProgressiveSampleCalculation(t *testing.T) {
	tests := []struct {
		name     string
		config   ProgressiveConfig
		expected []int
	}{
		{
			name:     "power of two cap",
			config:   ProgressiveConfig{InitialSamples: 1, MaxSamplesPerPixel: 64, MaxPasses: 7},
			expected: []int{1, 2, 4, 8, 16, 32, 64},
		},
		{
			name:     "last pass reaches cap",
			config:   ProgressiveConfig{InitialSamples: 1, MaxSamplesPerPixel: 50, MaxPasses: 7},
			expected: []int{1, 2, 4, 8, 16, 32, 50},
		},
		{
			name:     "cap reached early",
			config:   ProgressiveConfig{InitialSamples: 1, MaxSamplesPerPixel: 10, MaxPasses: 7},
			expected: []int{1, 2, 4, 8, 10, 10, 10},
		},
		{
			name:     "single pass",
			config:   ProgressiveConfig{InitialSamples: 1, MaxSamplesPerPixel: 20, MaxPasses: 1},
			expected: []int{20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pr := &ProgressiveRaytracer{config: tt.config}
			for pass := 1; pass <= len(tt.expected); pass++ {
				if got := pr.getSamplesForPass(pass); got != tt.expected[pass-1] {
					t.Errorf("Pass %d: expected %d total samples, got %d", pass, tt.expected[pass-1], got)
				}
			}
		})
	}
}

func TestProgressiveConfig(t *testing.T) {
	config := DefaultProgressiveConfig()

	if config.InitialSamples != 1 {
		t.Errorf("Expected default initial samples 1, got %d", config.InitialSamples)
	}
	if config.MaxSamplesPerPixel != 64 {
		t.Errorf("Expected default max samples 64, got %d", config.MaxSamplesPerPixel)
	}
	if config.MaxPasses != 7 {
		t.Errorf("Expected default max passes 7, got %d", config.MaxPasses)
	}
}

func newTestProgressive(maxSamples, maxPasses int) *ProgressiveRaytracer {
	config := ProgressiveConfig{
		InitialSamples:     1,
		MaxSamplesPerPixel: maxSamples,
		MaxPasses:          maxPasses,
		MaxDepth:           5,
		Seed:               3,
	}
	return NewProgressiveRaytracer(scene.NewSingleSphereScene(), 8, 6, config, nil)
}

func TestRenderProgressive(t *testing.T) {
	pr := newTestProgressive(10, 7)

	var results []PassResult
	err := pr.RenderProgressive(context.Background(), func(result PassResult) error {
		results = append(results, result)
		return nil
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// 1, 2, 4, 8, 10
	if len(results) != 5 {
		t.Fatalf("Expected 5 passes, got %d", len(results))
	}
	for i, result := range results {
		if result.PassNumber != i+1 {
			t.Errorf("Result %d has pass number %d", i, result.PassNumber)
		}
		if result.IsLast != (i == len(results)-1) {
			t.Errorf("Pass %d: IsLast = %v", result.PassNumber, result.IsLast)
		}
		if result.Frame.Width != 8 || result.Frame.Height != 6 {
			t.Errorf("Pass %d: unexpected frame size", result.PassNumber)
		}
	}
	if got := results[len(results)-1].Stats.SamplesPerPixel; got != 10 {
		t.Errorf("Expected final pass at 10 samples/pixel, got %d", got)
	}
	if got := results[1].Stats.TotalSamples; got != 8*6*2 {
		t.Errorf("Expected second pass to hold %d samples, got %d", 8*6*2, got)
	}
}

func TestRenderProgressive_Cancelled(t *testing.T) {
	pr := newTestProgressive(10, 7)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := pr.RenderProgressive(ctx, func(PassResult) error {
		calls++
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if calls != 0 {
		t.Errorf("Expected no passes after cancellation, got %d", calls)
	}
}

func TestRenderProgressive_CallbackError(t *testing.T) {
	pr := newTestProgressive(10, 7)
	stop := errors.New("client gone")

	calls := 0
	err := pr.RenderProgressive(context.Background(), func(PassResult) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Errorf("Expected callback error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected rendering to stop after the first pass, got %d calls", calls)
	}
}
