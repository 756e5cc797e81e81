package output

import (
	"bytes"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/renderer"
)

func testFrame() *renderer.Frame {
	frame := renderer.NewFrame(2, 2)
	frame.Set(0, 0, core.NewVec3(1, 0, 0))
	frame.Set(1, 0, core.NewVec3(0, 1, 0))
	frame.Set(0, 1, core.NewVec3(0, 0, 1))
	frame.Set(1, 1, core.NewVec3(0.5, 0.25, -1))
	return frame
}

func TestWritePPM(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePPM(&buf, testFrame()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := strings.Join([]string{
		"P3",
		"2 2",
		"255",
		"255 0 0",
		"0 255 0",
		"0 0 255",
		"128 64 0",
		"",
	}, "\n")
	if buf.String() != expected {
		t.Errorf("Unexpected PPM output:\n%s\nwant:\n%s", buf.String(), expected)
	}
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePNG(&buf, testFrame()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("Failed to decode PNG: %v", err)
	}
	if img.Bounds().Dx() != 2 || img.Bounds().Dy() != 2 {
		t.Errorf("Unexpected bounds %v", img.Bounds())
	}

	r, g, b, _ := img.At(1, 1).RGBA()
	if r>>8 != 128 || g>>8 != 64 || b>>8 != 0 {
		t.Errorf("Unexpected pixel (%d,%d,%d)", r>>8, g>>8, b>>8)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{"ppm", FormatPPM, false},
		{"PNG", FormatPNG, false},
		{".png", FormatPNG, false},
		{"jpeg", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownFormat) {
					t.Errorf("Expected ErrUnknownFormat, got %v", err)
				}
				return
			}
			if err != nil || got != tt.expected {
				t.Errorf("ParseFormat(%q) = %q, %v", tt.input, got, err)
			}
		})
	}
}

func TestEncodeDispatch(t *testing.T) {
	var ppm, pngBuf bytes.Buffer
	if err := Encode(&ppm, testFrame(), "ppm"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.HasPrefix(ppm.String(), "P3\n") {
		t.Error("Expected PPM output")
	}

	if err := Encode(&pngBuf, testFrame(), "png"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !bytes.HasPrefix(pngBuf.Bytes(), []byte("\x89PNG")) {
		t.Error("Expected PNG signature")
	}

	if err := Encode(&ppm, testFrame(), "gif"); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestSaveFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "frame.ppm")

	if err := SaveFile(path, testFrame(), FormatPPM); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	if !strings.HasPrefix(string(data), "P3\n2 2\n255\n") {
		t.Errorf("Unexpected file content %q", data)
	}
}

func TestDefaultPath(t *testing.T) {
	now := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	got := DefaultPath("default", FormatPNG, now)
	expected := filepath.Join("output", "default", "render_20240305_140709.png")
	if got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}
