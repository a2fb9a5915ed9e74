package canvas

import (
	"fmt"

	"github.com/example/cvcanvas/internal/raster"
)

// RectMode selects how the four numeric arguments of a rectangle are read.
type RectMode int

const (
	// Corner reads (x, y) as the top-left corner and (p1, p2) as width and height.
	Corner RectMode = iota
	// Center reads (x, y) as the centre and (p1, p2) as width and height.
	Center
	// Corners reads (x, y) and (p1, p2) as two opposite corners.
	Corners
)

func (m RectMode) String() string {
	switch m {
	case Corner:
		return "corner"
	case Center:
		return "center"
	case Corners:
		return "corners"
	}
	return fmt.Sprintf("RectMode(%d)", int(m))
}

// DrawState is the pen used by shape primitives. It is only changed through
// the Canvas setters and always copied by value.
type DrawState struct {
	StrokeColor raster.Color
	// StrokeWidth of zero disables strokes for the default-width entry points.
	StrokeWidth int
	FillColor   raster.Color
	FillEnabled bool
	RectMode    RectMode
}

// DefaultDrawState returns the state a new canvas starts with.
func DefaultDrawState() DrawState {
	return DrawState{
		StrokeWidth: 1,
		FillEnabled: true,
		RectMode:    Corner,
	}
}

// State returns a copy of the current draw state.
func (c *Canvas) State() DrawState { return c.state }

// Stroke sets the stroke colour. It does not re-enable a zero stroke width.
func (c *Canvas) Stroke(col raster.Color) { c.state.StrokeColor = col }

// StrokeWeight sets the stroke width in pixels.
func (c *Canvas) StrokeWeight(w int) { c.state.StrokeWidth = w }

// NoStroke disables outlines and default-width lines.
func (c *Canvas) NoStroke() { c.state.StrokeWidth = 0 }

// Fill sets the fill colour and enables filling.
func (c *Canvas) Fill(col raster.Color) {
	c.state.FillEnabled = true
	c.state.FillColor = col
}

// NoFill disables rectangle interiors.
func (c *Canvas) NoFill() { c.state.FillEnabled = false }

// RectMode selects how Rect interprets its arguments.
func (c *Canvas) RectMode(m RectMode) { c.state.RectMode = m }
