// Package palette provides named colour sets that sketches draw with.
package palette

import "github.com/example/cvcanvas/internal/raster"

// Palette is a named set of drawing colours.
type Palette struct {
	Name string

	Background raster.Color
	Stroke     raster.Color
	Fill       raster.Color
	Accent     raster.Color
	Text       raster.Color
}

// Default returns the built-in palette used when nothing is configured:
// black background, white stroke, red fill.
func Default() *Palette {
	return &Palette{
		Name:       "classic",
		Background: raster.Gray(0),
		Stroke:     raster.Gray(255),
		Fill:       raster.RGB(255, 0, 0),
		Accent:     raster.RGB(255, 215, 0),
		Text:       raster.Gray(255),
	}
}
