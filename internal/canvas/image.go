package canvas

import (
	"fmt"
	"image"

	"github.com/example/cvcanvas/internal/imageio"
	"github.com/example/cvcanvas/internal/raster"
)

// Image blits src with its top-left corner at (x, y). Only the part that
// overlaps the canvas is converted. Sources that miss the canvas entirely
// or have an unsupported channel count are ignored.
func (c *Canvas) Image(src *raster.Mat, x, y int) {
	Composite(c.buf, src, x, y)
}

// Composite converts the overlapping part of src into BGR and copies it
// into dst at (x, y).
func Composite(dst *raster.Buffer, src *raster.Mat, x, y int) {
	if src == nil || x > dst.Width || y > dst.Height {
		return
	}
	// overlap in source coordinates
	vis := image.Rect(-x, -y, dst.Width-x, dst.Height-y).Intersect(src.Bounds())
	if vis.Empty() {
		return
	}
	conv, err := raster.ToDrawable(src.Sub(vis))
	if err != nil {
		return
	}
	dst.CopyRegion(conv, conv.Bounds(), image.Pt(x+vis.Min.X, y+vis.Min.Y))
}

// LoadImage reads an image file into a Mat suitable for Image.
func (c *Canvas) LoadImage(path string) (*raster.Mat, error) {
	return imageio.Load(path)
}

// Save writes the current buffer to path. The format follows the file
// extension.
func (c *Canvas) Save(path string) error {
	if err := imageio.Save(path, c.buf.Image()); err != nil {
		return fmt.Errorf("save canvas: %w", err)
	}
	return nil
}

// SaveMat writes a foreign image to path after depth normalization.
func SaveMat(path string, m *raster.Mat) error {
	img, err := raster.MatToImage(m)
	if err != nil {
		return fmt.Errorf("save mat: %w", err)
	}
	return imageio.Save(path, img)
}
