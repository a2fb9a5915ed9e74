package raster

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// Format is a presentation pixel layout required by a display surface.
type Format int

const (
	// FormatRGBA is 4 bytes per pixel R, G, B, A with synthesized opacity.
	FormatRGBA Format = iota
	// FormatGray is one luma byte per pixel.
	FormatGray
	// FormatBGR is the canvas's own layout.
	FormatBGR
)

func (f Format) String() string {
	switch f {
	case FormatRGBA:
		return "rgba"
	case FormatGray:
		return "gray"
	case FormatBGR:
		return "bgr"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// depthScale holds the convertTo factors that map each sample depth onto
// 8-bit unsigned output: o = v*scale + shift.
var depthScale = map[Depth][2]float64{
	Depth64F: {255, 0},
	Depth32F: {255, 0},
	Depth32S: {1.0 / 16777216.0, -128},
	Depth16S: {1.0 / 255.0, -128},
	Depth16U: {1.0 / 255.0, 0},
	Depth8S:  {1, -128},
	Depth8U:  {1, 0},
}

// Normalize maps a sample of the given depth onto an 8-bit value, rounding
// half to even and saturating.
func Normalize(v float64, d Depth) byte {
	if d == Depth8U {
		return saturateFloat(v)
	}
	k, ok := depthScale[d]
	if !ok {
		return 0
	}
	return saturateFloat(v*k[0] + k[1])
}

func saturateFloat(v float64) byte {
	if math.IsNaN(v) {
		return 0
	}
	v = math.RoundToEven(v)
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return byte(v)
}

// ToDrawable converts m into a new 3-channel 8-bit Buffer. One channel
// sources are replicated, four channel sources lose their alpha, and RGB
// ordered data is swapped into BGR.
func ToDrawable(m *Mat) (*Buffer, error) {
	switch m.Channels {
	case 1, 3, 4:
	default:
		return nil, fmt.Errorf("%d channels: %w", m.Channels, ErrUnsupportedChannels)
	}
	out, err := NewBuffer(m.Width, m.Height)
	if err != nil {
		return nil, err
	}
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			i := out.PixOffset(x, y)
			if m.Channels == 1 {
				v := Normalize(m.At(x, y, 0), m.Depth)
				out.Pix[i], out.Pix[i+1], out.Pix[i+2] = v, v, v
				continue
			}
			c0 := Normalize(m.At(x, y, 0), m.Depth)
			c1 := Normalize(m.At(x, y, 1), m.Depth)
			c2 := Normalize(m.At(x, y, 2), m.Depth)
			if m.Order == OrderRGB {
				c0, c2 = c2, c0
			}
			out.Pix[i], out.Pix[i+1], out.Pix[i+2] = c0, c1, c2
		}
	}
	return out, nil
}

// NewPresentation allocates a presentation image of the given format.
func NewPresentation(f Format, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%dx%d: %w", width, height, ErrInvalidDimension)
	}
	r := image.Rect(0, 0, width, height)
	switch f {
	case FormatRGBA:
		return image.NewRGBA(r), nil
	case FormatGray:
		return image.NewGray(r), nil
	case FormatBGR:
		return NewBuffer(width, height)
	}
	return nil, fmt.Errorf("unknown presentation format %v", f)
}

// Present converts b into dst, which must have the same size as b.
func Present(b *Buffer, dst image.Image) error {
	if dst.Bounds().Size() != b.Bounds().Size() {
		return fmt.Errorf("present %v into %v: size mismatch", b.Bounds().Size(), dst.Bounds().Size())
	}
	switch d := dst.(type) {
	case *image.RGBA:
		presentRGBA(b, d.Pix, d.Stride)
	case *image.NRGBA:
		presentRGBA(b, d.Pix, d.Stride)
	case *image.Gray:
		for y := 0; y < b.Height; y++ {
			row := d.Pix[y*d.Stride:]
			for x := 0; x < b.Width; x++ {
				i := b.PixOffset(x, y)
				g := color.GrayModel.Convert(color.RGBA{R: b.Pix[i+2], G: b.Pix[i+1], B: b.Pix[i], A: 0xff}).(color.Gray)
				row[x] = g.Y
			}
		}
	case *Buffer:
		copy(d.Pix, b.Pix)
	default:
		return fmt.Errorf("unsupported presentation target %T", dst)
	}
	return nil
}

func presentRGBA(b *Buffer, pix []byte, stride int) {
	for y := 0; y < b.Height; y++ {
		src := b.Pix[y*b.Stride : (y+1)*b.Stride]
		dst := pix[y*stride:]
		for x, j := 0, 0; x < len(src); x, j = x+3, j+4 {
			dst[j] = src[x+2]
			dst[j+1] = src[x+1]
			dst[j+2] = src[x]
			dst[j+3] = 0xff
		}
	}
}

// MatToImage normalizes m to 8 bits per sample and returns a displayable
// image: *image.Gray for one channel, *image.NRGBA otherwise. Three channel
// data gets full opacity, four channel data keeps its alpha.
func MatToImage(m *Mat) (image.Image, error) {
	r := image.Rect(0, 0, m.Width, m.Height)
	switch m.Channels {
	case 1:
		g := image.NewGray(r)
		for y := 0; y < m.Height; y++ {
			for x := 0; x < m.Width; x++ {
				g.Pix[y*g.Stride+x] = Normalize(m.At(x, y, 0), m.Depth)
			}
		}
		return g, nil
	case 3, 4:
		n := image.NewNRGBA(r)
		for y := 0; y < m.Height; y++ {
			for x := 0; x < m.Width; x++ {
				c0 := Normalize(m.At(x, y, 0), m.Depth)
				c1 := Normalize(m.At(x, y, 1), m.Depth)
				c2 := Normalize(m.At(x, y, 2), m.Depth)
				if m.Order == OrderBGR {
					c0, c2 = c2, c0
				}
				a := byte(0xff)
				if m.Channels == 4 {
					a = Normalize(m.At(x, y, 3), m.Depth)
				}
				i := n.PixOffset(x, y)
				n.Pix[i], n.Pix[i+1], n.Pix[i+2], n.Pix[i+3] = c0, c1, c2, a
			}
		}
		return n, nil
	}
	return nil, fmt.Errorf("%d channels: %w", m.Channels, ErrUnsupportedChannels)
}
