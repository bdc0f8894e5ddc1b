package ffmpeg

import (
	"fmt"
	"strconv"
	"strings"
)

// FilterBuilder helps construct ffmpeg filter chains
type FilterBuilder struct {
	filters []string
}

// NewFilterBuilder creates a new filter builder
func NewFilterBuilder() *FilterBuilder {
	return &FilterBuilder{
		filters: make([]string, 0),
	}
}

// Scale adds a scale filter
func (fb *FilterBuilder) Scale(width, height int) *FilterBuilder {
	if width <= 0 || height <= 0 {
		// Return self without adding filter - allows chaining to continue
		return fb
	}
	fb.filters = append(fb.filters, fmt.Sprintf("scale=%d:%d", width, height))
	return fb
}

// EvenSize rounds odd dimensions down to even ones, which yuv420p requires
func (fb *FilterBuilder) EvenSize() *FilterBuilder {
	fb.filters = append(fb.filters, "scale=trunc(iw/2)*2:trunc(ih/2)*2")
	return fb
}

// Pad centres the input on a width x height canvas
func (fb *FilterBuilder) Pad(width, height int) *FilterBuilder {
	if width <= 0 || height <= 0 {
		return fb
	}
	fb.filters = append(fb.filters, fmt.Sprintf("pad=%d:%d:(ow-iw)/2:(oh-ih)/2", width, height))
	return fb
}

// FPS adds an fps filter
func (fb *FilterBuilder) FPS(fps float64) *FilterBuilder {
	if fps <= 0 {
		return fb
	}
	fb.filters = append(fb.filters, "fps="+strconv.FormatFloat(fps, 'f', -1, 64))
	return fb
}

// Rotate turns the picture counter-clockwise by 90, 180 or 270 degrees.
// Other angles add nothing.
func (fb *FilterBuilder) Rotate(angle int) *FilterBuilder {
	switch angle {
	case 90:
		fb.filters = append(fb.filters, "transpose=2")
	case 180:
		fb.filters = append(fb.filters, "hflip", "vflip")
	case 270:
		fb.filters = append(fb.filters, "transpose=1")
	}
	return fb
}

// SquarePixels resets the sample aspect ratio so inputs can be concatenated
func (fb *FilterBuilder) SquarePixels() *FilterBuilder {
	fb.filters = append(fb.filters, "setsar=1")
	return fb
}

// Format converts to a pixel format
func (fb *FilterBuilder) Format(pixFmt string) *FilterBuilder {
	if pixFmt == "" {
		return fb
	}
	fb.filters = append(fb.filters, "format="+pixFmt)
	return fb
}

// Custom adds a custom filter string; empty strings are skipped
func (fb *FilterBuilder) Custom(filter string) *FilterBuilder {
	if filter == "" {
		return fb
	}
	fb.filters = append(fb.filters, filter)
	return fb
}

// Build returns the complete filter string joined with commas
func (fb *FilterBuilder) Build() string {
	if len(fb.filters) == 0 {
		return ""
	}
	return strings.Join(fb.filters, ",")
}

// BuildAll returns all filters as a slice
func (fb *FilterBuilder) BuildAll() []string {
	return fb.filters
}
