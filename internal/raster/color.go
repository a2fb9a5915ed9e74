package raster

import "image/color"

// Color holds four channels in B, G, R, A order. Values are stored as given
// and only saturated when written into a Buffer. Alpha is carried but never
// blended.
type Color struct {
	B, G, R, A int
}

var _ color.Color = Color{}

// Gray returns an opaque color with every colour channel set to v.
func Gray(v int) Color { return Color{B: v, G: v, R: v, A: 255} }

// RGB returns an opaque color.
func RGB(r, g, b int) Color { return Color{B: b, G: g, R: r, A: 255} }

// RGBA returns a color with an explicit alpha component.
func RGBA(r, g, b, a int) Color { return Color{B: b, G: g, R: r, A: a} }

// RGBA implements color.Color. The result is always fully opaque so that
// drawing through image/draw never blends with the destination.
func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(saturate(c.R))
	g = uint32(saturate(c.G))
	b = uint32(saturate(c.B))
	return r | r<<8, g | g<<8, b | b<<8, 0xffff
}

// BGR returns the saturated colour channels as stored in a Buffer.
func (c Color) BGR() [3]byte {
	return [3]byte{saturate(c.B), saturate(c.G), saturate(c.R)}
}

// FromColor converts any color.Color into a Color, dropping premultiplication.
func FromColor(c color.Color) Color {
	if cc, ok := c.(Color); ok {
		return cc
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGBA(int(n.R), int(n.G), int(n.B), int(n.A))
}

func saturate(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
