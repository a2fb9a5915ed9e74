package canvas

import (
	"image"
	"math"

	"golang.org/x/image/vector"

	"github.com/example/cvcanvas/internal/raster"
)

// capSegments is the number of polygon sides used for round line caps.
const capSegments = 16

// DrawLine rasterizes an anti-aliased segment of the given width with round
// caps. Coordinates address pixel centres. A width of zero or less draws
// nothing.
func DrawLine(b *raster.Buffer, p1, p2 image.Point, width int, col raster.Color) {
	if width <= 0 {
		return
	}
	hw := float32(width) / 2
	pad := int(math.Ceil(float64(hw))) + 1
	area := image.Rect(p1.X, p1.Y, p2.X, p2.Y).Canon()
	area.Max = area.Max.Add(image.Pt(1, 1))
	area = area.Inset(-pad).Intersect(b.Bounds())
	if area.Empty() {
		return
	}

	z := vector.NewRasterizer(area.Dx(), area.Dy())
	ox := float32(area.Min.X) - 0.5
	oy := float32(area.Min.Y) - 0.5
	x1, y1 := float32(p1.X)-ox, float32(p1.Y)-oy
	x2, y2 := float32(p2.X)-ox, float32(p2.Y)-oy

	dx, dy := x2-x1, y2-y1
	if l := float32(math.Hypot(float64(dx), float64(dy))); l > 0 {
		nx, ny := -dy/l*hw, dx/l*hw
		addPolygon(z, [][2]float32{
			{x1 + nx, y1 + ny},
			{x2 + nx, y2 + ny},
			{x2 - nx, y2 - ny},
			{x1 - nx, y1 - ny},
		})
	}
	addCircle(z, x1, y1, hw)
	addCircle(z, x2, y2, hw)
	z.Draw(b, area, image.NewUniform(col), image.Point{})
}

// addPolygon adds a closed path with positive winding so that overlapping
// pieces accumulate instead of cancelling.
func addPolygon(z *vector.Rasterizer, pts [][2]float32) {
	var area float32
	for i := range pts {
		j := (i + 1) % len(pts)
		area += pts[i][0]*pts[j][1] - pts[j][0]*pts[i][1]
	}
	if area < 0 {
		for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
	}
	z.MoveTo(pts[0][0], pts[0][1])
	for _, p := range pts[1:] {
		z.LineTo(p[0], p[1])
	}
	z.ClosePath()
}

func addCircle(z *vector.Rasterizer, cx, cy, r float32) {
	pts := make([][2]float32, capSegments)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / capSegments
		pts[i] = [2]float32{cx + r*float32(math.Cos(a)), cy + r*float32(math.Sin(a))}
	}
	addPolygon(z, pts)
}

// ResolveRect turns rectangle arguments into two opposite corners. For
// Center the half extents are computed in floating point and the resulting
// corners truncated. ok is false for an unknown mode.
func ResolveRect(x, y, p1, p2 int, mode RectMode) (a, b image.Point, ok bool) {
	switch mode {
	case Corner:
		return image.Pt(x, y), image.Pt(x+p1, y+p2), true
	case Center:
		hx := float64(p1) / 2
		hy := float64(p2) / 2
		fx, fy := float64(x), float64(y)
		return image.Pt(int(fx-hx), int(fy-hy)), image.Pt(int(fx+hx), int(fy+hy)), true
	case Corners:
		return image.Pt(x, y), image.Pt(p1, p2), true
	}
	return image.Point{}, image.Point{}, false
}

// FillRect fills the rectangle spanned by two corners, both inclusive.
func FillRect(b *raster.Buffer, a, c image.Point, col raster.Color) {
	r := image.Rectangle{Min: a, Max: c}.Canon()
	r.Max = r.Max.Add(image.Pt(1, 1))
	b.FillRect(r, col)
}

// StrokeRect outlines the rectangle spanned by two corners.
func StrokeRect(b *raster.Buffer, a, c image.Point, width int, col raster.Color) {
	r := image.Rectangle{Min: a, Max: c}.Canon()
	tl, br := r.Min, r.Max
	tr, bl := image.Pt(br.X, tl.Y), image.Pt(tl.X, br.Y)
	DrawLine(b, tl, tr, width, col)
	DrawLine(b, tr, br, width, col)
	DrawLine(b, br, bl, width, col)
	DrawLine(b, bl, tl, width, col)
}

// Background fills the whole canvas with col.
func (c *Canvas) Background(col raster.Color) { c.buf.Fill(col) }

// Line draws with the current stroke colour and width. It does nothing
// after NoStroke.
func (c *Canvas) Line(x1, y1, x2, y2 int) {
	c.LineColor(x1, y1, x2, y2, c.state.StrokeColor)
}

// LineColor draws with an explicit colour and the current stroke width. It
// does nothing after NoStroke.
func (c *Canvas) LineColor(x1, y1, x2, y2 int, col raster.Color) {
	if c.state.StrokeWidth == 0 {
		return
	}
	DrawLine(c.buf, image.Pt(x1, y1), image.Pt(x2, y2), c.state.StrokeWidth, col)
}

// LineWidth draws with an explicit width and colour, regardless of
// NoStroke.
func (c *Canvas) LineWidth(x1, y1, x2, y2, width int, col raster.Color) {
	DrawLine(c.buf, image.Pt(x1, y1), image.Pt(x2, y2), width, col)
}

// Rect draws a rectangle using the current mode and fill colour.
func (c *Canvas) Rect(x, y, p1, p2 int) {
	c.RectWith(x, y, p1, p2, c.state.RectMode, c.state.FillColor)
}

// RectWith draws a rectangle with an explicit mode and fill colour without
// changing the draw state. The fill is only painted when filling is enabled
// and the outline only when the stroke width is positive.
func (c *Canvas) RectWith(x, y, p1, p2 int, mode RectMode, fill raster.Color) {
	a, b, ok := ResolveRect(x, y, p1, p2, mode)
	if !ok {
		return
	}
	if c.state.FillEnabled {
		FillRect(c.buf, a, b, fill)
	}
	if c.state.StrokeWidth > 0 {
		StrokeRect(c.buf, a, b, c.state.StrokeWidth, c.state.StrokeColor)
	}
}
