package sketch

import (
	"fmt"
	"log"

	"github.com/example/cvcanvas/internal/canvas"
)

func init() {
	register(Sketch{
		Name:        "bounce",
		Description: "a 10x10 square sweeping the canvas row by row",
		New:         newBounce,
	})
}

func newBounce(env Env) canvas.Hooks {
	env = env.withDefaults(640, 480, 60)
	var x, y int
	return canvas.Hooks{
		Setup: func(c *canvas.Canvas) {
			if err := c.Resize(env.Width, env.Height); err != nil {
				log.Printf("bounce: %v", err)
			}
			c.Fill(env.Palette.Fill)
			c.Stroke(env.Palette.Stroke)
			c.RectMode(canvas.Center)
			if err := c.FrameRate(env.FPS); err != nil {
				log.Printf("bounce: %v", err)
			}
		},
		Draw: func(c *canvas.Canvas) {
			c.Background(env.Palette.Background)
			x++
			if x == c.Width() {
				x = 0
				y++
			}
			if y == c.Height() {
				y = 0
			}
			c.Rect(x, y, 10, 10)
			DrawText(c.Buffer(), 4, 14, env.Palette.Text, fmt.Sprintf("%.1f fps", c.MeasuredFrameRate()))
		},
		Closing: func(c *canvas.Canvas) {
			log.Printf("bounce: closed after %d frames", c.FrameCount())
		},
	}
}
