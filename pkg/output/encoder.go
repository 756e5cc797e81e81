package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-sphere-tracer/pkg/renderer"
)

// Supported image formats
const (
	FormatPPM = "ppm"
	FormatPNG = "png"
)

// ErrUnknownFormat is returned for formats other than ppm and png
var ErrUnknownFormat = errors.New("unknown image format")

// ParseFormat normalizes a format name
func ParseFormat(format string) (string, error) {
	switch f := strings.ToLower(strings.TrimPrefix(format, ".")); f {
	case FormatPPM, FormatPNG:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// ContentType returns the MIME type for a format
func ContentType(format string) string {
	if format == FormatPNG {
		return "image/png"
	}
	return "image/x-portable-pixmap"
}

// Encode writes the frame in the given format
func Encode(w io.Writer, frame *renderer.Frame, format string) error {
	f, err := ParseFormat(format)
	if err != nil {
		return err
	}
	if f == FormatPNG {
		return WritePNG(w, frame)
	}
	return WritePPM(w, frame)
}

// DefaultPath returns output/<scene>/render_<timestamp>.<format>
func DefaultPath(sceneName, format string, now time.Time) string {
	return filepath.Join("output", sceneName, fmt.Sprintf("render_%s.%s", now.Format("20060102_150405"), format))
}

// SaveFile creates parent directories and writes the frame to path
func SaveFile(path string, frame *renderer.Frame, format string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := Encode(file, frame, format); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
