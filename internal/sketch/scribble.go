package sketch

import (
	"image"

	"github.com/example/cvcanvas/internal/canvas"
)

const maxScribbleWidth = 32

func init() {
	register(Sketch{
		Name:        "scribble",
		Description: "draw with the mouse; c clears, + and - change the pen",
		New:         newScribble,
	})
}

func newScribble(env Env) canvas.Hooks {
	env = env.withDefaults(640, 480, 30)
	var last image.Point
	return canvas.Hooks{
		Setup: func(c *canvas.Canvas) {
			_ = c.Resize(env.Width, env.Height)
			_ = c.FrameRate(env.FPS)
			c.Background(env.Palette.Background)
			c.Stroke(env.Palette.Stroke)
			c.StrokeWeight(3)
		},
		MousePressed: func(c *canvas.Canvas) {
			last = c.Mouse()
		},
		MouseDragged: func(c *canvas.Canvas) {
			p := c.Mouse()
			c.Line(last.X, last.Y, p.X, p.Y)
			last = p
		},
		KeyTyped: func(c *canvas.Canvas) {
			w := c.State().StrokeWidth
			switch c.Key() {
			case 'c':
				c.Background(env.Palette.Background)
			case '+':
				if w < maxScribbleWidth {
					c.StrokeWeight(w + 1)
				}
			case '-':
				if w > 1 {
					c.StrokeWeight(w - 1)
				}
			}
		},
	}
}
