package sketch

import (
	"fmt"
	"image"
	"log"

	"github.com/example/cvcanvas/internal/canvas"
	"github.com/example/cvcanvas/internal/raster"
)

func init() {
	register(Sketch{
		Name:        "mirror",
		Description: "a live frame source beside its 16-bit luma rendition",
		New:         newMirror,
	})
}

func newMirror(env Env) canvas.Hooks {
	env = env.withDefaults(640, 480, 30)
	var lastErr string
	return canvas.Hooks{
		Setup: func(c *canvas.Canvas) {
			_ = c.Resize(env.Width*2, env.Height)
			_ = c.FrameRate(env.FPS)
			c.Background(env.Palette.Fill)
		},
		Draw: func(c *canvas.Canvas) {
			if env.Source == nil {
				return
			}
			m, err := env.Source()
			if err != nil {
				if msg := err.Error(); msg != lastErr {
					log.Printf("mirror: %v", err)
					lastErr = msg
				}
				DrawText(c.Buffer(), 4, 14, env.Palette.Text, fmt.Sprintf("no frame: %v", err))
				return
			}
			lastErr = ""
			m = m.Sub(image.Rect(0, 0, env.Width, env.Height))
			c.Image(m, 0, 0)
			if luma := Luma16(m); luma != nil {
				c.Image(luma, env.Width, 0)
			}
		},
	}
}

// Luma16 converts a 3 or 4 channel 8-bit Mat into a single channel 16-bit
// Mat holding luma scaled by 255, the layout depth sensors produce.
func Luma16(m *raster.Mat) *raster.Mat {
	if m.Depth != raster.Depth8U || (m.Channels != 3 && m.Channels != 4) {
		return nil
	}
	out, err := raster.NewMat(m.Width, m.Height, 1, raster.Depth16U)
	if err != nil {
		return nil
	}
	ri, bi := 2, 0
	if m.Order == raster.OrderRGB {
		ri, bi = 0, 2
	}
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			r, g, b := m.At(x, y, ri), m.At(x, y, 1), m.At(x, y, bi)
			l := (19595*r + 38470*g + 7471*b + 1<<15) / (1 << 16)
			out.Set(x, y, 0, float64(int(l))*255)
		}
	}
	return out
}
