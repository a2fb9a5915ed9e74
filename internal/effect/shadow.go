// Package effect holds image effects applied to frames before they are
// composited onto a canvas.
package effect

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/example/cvcanvas/internal/raster"
)

// Shadow configures a blurred drop shadow.
type Shadow struct {
	Radius  int
	Offset  image.Point
	Opacity float64
}

// DefaultShadow is a soft shadow down and to the right.
func DefaultShadow() Shadow {
	return Shadow{Radius: 12, Offset: image.Pt(8, 8), Opacity: 0.6}
}

// Enabled reports whether s would paint anything.
func (s Shadow) Enabled() bool { return s.Opacity > 0 }

// Apply renders m over a blurred copy of its alpha mask and flattens the
// result onto bg. The returned Mat is 8-bit RGBA, fully opaque, and grown
// to fit the shadow. origin is where m's top-left pixel landed in it.
// A disabled shadow returns m unchanged.
func (s Shadow) Apply(m *raster.Mat, bg raster.Color) (out *raster.Mat, origin image.Point, err error) {
	if !s.Enabled() || m.Width <= 0 || m.Height <= 0 {
		return m, image.Point{}, nil
	}
	img, err := raster.MatToImage(m)
	if err != nil {
		return nil, image.Point{}, err
	}
	opacity := s.Opacity
	if opacity > 1 {
		opacity = 1
	}
	radius := max(s.Radius, 0)

	src := img.Bounds()
	padded := src.Inset(-radius)
	shadowAt := padded.Add(s.Offset)
	total := src.Union(shadowAt)
	origin = src.Min.Sub(total.Min)

	mask := image.NewAlpha(padded.Sub(padded.Min))
	for y := src.Min.Y; y < src.Max.Y; y++ {
		for x := src.Min.X; x < src.Max.X; x++ {
			_, _, _, a := img.At(x, y).RGBA()
			mask.Pix[(y-padded.Min.Y)*mask.Stride+(x-padded.Min.X)] = uint8(a >> 8)
		}
	}
	blurred := boxBlur(mask, radius)

	dst := image.NewNRGBA(total.Sub(total.Min))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.Color(bg)), image.Point{}, draw.Src)
	tint := image.NewUniform(color.NRGBA{A: uint8(opacity*255 + 0.5)})
	draw.DrawMask(dst, blurred.Bounds().Add(shadowAt.Min.Sub(total.Min)), tint, image.Point{}, blurred, image.Point{}, draw.Over)
	draw.Draw(dst, src.Sub(total.Min), img, src.Min, draw.Over)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return raster.FromImage(dst), origin, nil
}

// boxBlur runs a separable box filter of the given radius over the mask,
// clamping the window at the edges.
func boxBlur(src *image.Alpha, radius int) *image.Alpha {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	out := image.NewAlpha(src.Rect)
	if radius <= 0 {
		copy(out.Pix, src.Pix)
		return out
	}
	tmp := make([]uint8, w*h)
	blur1D(w, h, radius, func(i, j int) uint8 { return src.Pix[i*src.Stride+j] }, func(i, j int, v uint8) { tmp[i*w+j] = v })
	blur1D(h, w, radius, func(i, j int) uint8 { return tmp[j*w+i] }, func(i, j int, v uint8) { out.Pix[j*out.Stride+i] = v })
	return out
}

// blur1D averages n samples along each of rows lines using prefix sums.
func blur1D(n, rows, radius int, get func(row, i int) uint8, set func(row, i int, v uint8)) {
	prefix := make([]int, n+1)
	for r := 0; r < rows; r++ {
		for i := 0; i < n; i++ {
			prefix[i+1] = prefix[i] + int(get(r, i))
		}
		for i := 0; i < n; i++ {
			lo := max(i-radius, 0)
			hi := min(i+radius, n-1)
			set(r, i, uint8((prefix[hi+1]-prefix[lo])/(hi-lo+1)))
		}
	}
}
