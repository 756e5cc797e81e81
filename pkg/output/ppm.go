package output

import (
	"bufio"
	"fmt"
	"io"

	"github.com/df07/go-sphere-tracer/pkg/renderer"
)

// WritePPM writes the frame as plain-text PPM (P3): a header followed by one
// "R G B" line per pixel, top row first
func WritePPM(w io.Writer, frame *renderer.Frame) error {
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintf(bw, "P3\n%d %d\n255\n", frame.Width, frame.Height); err != nil {
		return fmt.Errorf("failed to write PPM header: %w", err)
	}

	for _, c := range frame.Pixels {
		if _, err := fmt.Fprintf(bw, "%d %d %d\n",
			renderer.ToByte(c.X), renderer.ToByte(c.Y), renderer.ToByte(c.Z)); err != nil {
			return fmt.Errorf("failed to write PPM pixel: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush PPM: %w", err)
	}
	return nil
}
