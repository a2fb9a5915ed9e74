// Package sketch holds the demo programs run by the cvcanvas command.
package sketch

import (
	"image"
	"image/color"
	"sort"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/example/cvcanvas/internal/canvas"
	"github.com/example/cvcanvas/internal/palette"
	"github.com/example/cvcanvas/internal/raster"
)

// Env carries the settings a sketch is built with.
type Env struct {
	Width   int
	Height  int
	FPS     int
	Palette *palette.Palette
	// Source supplies frames for sketches that display foreign images.
	Source func() (*raster.Mat, error)
}

func (e Env) withDefaults(w, h, fps int) Env {
	if e.Width <= 0 {
		e.Width = w
	}
	if e.Height <= 0 {
		e.Height = h
	}
	if e.FPS <= 0 {
		e.FPS = fps
	}
	if e.Palette == nil {
		e.Palette = palette.Default()
	}
	return e
}

// Sketch is a named constructor for canvas hooks.
type Sketch struct {
	Name        string
	Description string
	New         func(env Env) canvas.Hooks
}

var registry = map[string]Sketch{}

func register(s Sketch) { registry[s.Name] = s }

// Lookup returns the sketch called name.
func Lookup(name string) (Sketch, bool) {
	s, ok := registry[name]
	return s, ok
}

// All returns every sketch sorted by name.
func All() []Sketch {
	out := make([]Sketch, 0, len(registry))
	for _, s := range registry {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// WithShortcuts wraps h so that typed keys listed in keys run their action
// instead of the sketch's KeyTyped hook.
func WithShortcuts(h canvas.Hooks, keys map[rune]func(c *canvas.Canvas)) canvas.Hooks {
	typed := h.KeyTyped
	h.KeyTyped = func(c *canvas.Canvas) {
		if fn, ok := keys[c.Key()]; ok {
			fn(c)
			return
		}
		if typed != nil {
			typed(c)
		}
	}
	return h
}

// DrawText writes s with its baseline-left corner at (x, y).
func DrawText(b *raster.Buffer, x, y int, col raster.Color, s string) {
	d := &font.Drawer{
		Dst:  b,
		Src:  image.NewUniform(color.Color(col)),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
