package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/example/cvcanvas/internal/palette"
	"github.com/example/cvcanvas/internal/raster"
)

// Canvas holds the default canvas geometry and timing.
type Canvas struct {
	Width      int
	Height     int
	FPS        int
	Background raster.Color
}

// Window holds display window settings.
type Window struct {
	Title string
}

// Notify holds notification toggles.
type Notify struct {
	Grab bool
	Save bool
	Copy bool
}

// Config holds the application configuration.
type Config struct {
	Sketch   string
	Palette  string
	SaveDir  string
	Canvas   Canvas
	Window   Window
	Notify   Notify
	Palettes map[string]*palette.Palette
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		Sketch: "bounce",
		Canvas: Canvas{
			Width:      640,
			Height:     480,
			FPS:        30,
			Background: raster.Gray(0),
		},
		Window:   Window{Title: "cvcanvas"},
		Palettes: make(map[string]*palette.Palette),
	}
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	if c.Sketch != "" {
		fmt.Fprintf(&sb, "sketch = %s\n", c.Sketch)
	}
	if c.Palette != "" {
		fmt.Fprintf(&sb, "palette = %s\n", c.Palette)
	}
	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}
	sb.WriteString("\n")

	sb.WriteString("[canvas]\n")
	fmt.Fprintf(&sb, "width = %d\n", c.Canvas.Width)
	fmt.Fprintf(&sb, "height = %d\n", c.Canvas.Height)
	fmt.Fprintf(&sb, "fps = %d\n", c.Canvas.FPS)
	fmt.Fprintf(&sb, "background = %s\n", palette.Hex(c.Canvas.Background))
	sb.WriteString("\n")

	sb.WriteString("[window]\n")
	fmt.Fprintf(&sb, "title = %s\n", c.Window.Title)
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "grab = %v\n", c.Notify.Grab)
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	sb.WriteString("\n")

	names := make([]string, 0, len(c.Palettes))
	for name := range c.Palettes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p := c.Palettes[name]
		fmt.Fprintf(&sb, "[palette.%s]\n", name)
		fmt.Fprintf(&sb, "Name: %s\n", p.Name)
		for _, f := range palette.Fields(p) {
			fmt.Fprintf(&sb, "%s: %s\n", f.Name, palette.Hex(f.Color))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
