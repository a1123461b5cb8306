package frontend

import (
	"image/color"
	"strings"

	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrochip8/internal/scheduler"
)

// Colors of lit and dark pixels.
var (
	ForegroundColor = color.RGBA{R: 0xE0, G: 0xE0, B: 0xE0, A: 0xFF}
	BackgroundColor = color.RGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xFF}
)

// FrameText renders the frame as text, one line per row with '#' for lit
// and '.' for dark pixels.
func FrameText(frame display.Frame) string {
	var sb strings.Builder
	sb.Grow((display.Width + 1) * display.Height)

	for y := range display.Height {
		for x := range display.Width {
			if frame.Pixel(x, y) {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FramePixels writes the frame as RGBA pixels into dst, which must hold
// display.Width*display.Height*4 bytes.
func FramePixels(frame display.Frame, dst []byte) {
	for y := range display.Height {
		for x := range display.Width {
			c := BackgroundColor
			if frame.Pixel(x, y) {
				c = ForegroundColor
			}
			offset := (y*display.Width + x) * 4
			dst[offset] = c.R
			dst[offset+1] = c.G
			dst[offset+2] = c.B
			dst[offset+3] = c.A
		}
	}
}

// statusLabel returns the overlay text for the execution status, empty
// while the machine runs.
func statusLabel(status scheduler.Status) string {
	switch {
	case status.Fault:
		return "HALTED"
	case status.State == scheduler.Paused:
		return "PAUSED"
	}
	return ""
}

// windowTitle appends the status label to the title.
func windowTitle(title string, status scheduler.Status) string {
	if label := statusLabel(status); label != "" {
		return title + " [" + label + "]"
	}
	return title
}
