package raster

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
)

// Depth describes the sample type of a Mat.
type Depth int

const (
	Depth8U Depth = iota
	Depth8S
	Depth16U
	Depth16S
	Depth32S
	Depth32F
	Depth64F
)

// Size returns the number of bytes per sample.
func (d Depth) Size() int {
	switch d {
	case Depth8U, Depth8S:
		return 1
	case Depth16U, Depth16S:
		return 2
	case Depth32S, Depth32F:
		return 4
	case Depth64F:
		return 8
	}
	return 0
}

func (d Depth) String() string {
	switch d {
	case Depth8U:
		return "8U"
	case Depth8S:
		return "8S"
	case Depth16U:
		return "16U"
	case Depth16S:
		return "16S"
	case Depth32S:
		return "32S"
	case Depth32F:
		return "32F"
	case Depth64F:
		return "64F"
	}
	return fmt.Sprintf("Depth(%d)", int(d))
}

// Order is the colour channel order of 3 and 4 channel data.
type Order int

const (
	OrderBGR Order = iota
	OrderRGB
)

// Mat is a foreign image: interleaved little-endian samples of any depth.
type Mat struct {
	Width    int
	Height   int
	Channels int
	Depth    Depth
	Order    Order
	// Stride is the distance in bytes between vertically adjacent pixels.
	Stride int
	Data   []byte
}

// NewMat allocates a zeroed Mat in BGR order.
func NewMat(width, height, channels int, depth Depth) (*Mat, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%dx%d: %w", width, height, ErrInvalidDimension)
	}
	if channels <= 0 || depth.Size() == 0 {
		return nil, fmt.Errorf("%d channels of %v: %w", channels, depth, ErrUnsupportedChannels)
	}
	stride := width * channels * depth.Size()
	return &Mat{
		Width:    width,
		Height:   height,
		Channels: channels,
		Depth:    depth,
		Stride:   stride,
		Data:     make([]byte, stride*height),
	}, nil
}

// Bounds returns the rectangle covered by the Mat, anchored at the origin.
func (m *Mat) Bounds() image.Rectangle { return image.Rect(0, 0, m.Width, m.Height) }

func (m *Mat) offset(x, y, ch int) int {
	return y*m.Stride + (x*m.Channels+ch)*m.Depth.Size()
}

// At returns sample ch of the pixel at (x, y) as a float64.
func (m *Mat) At(x, y, ch int) float64 {
	i := m.offset(x, y, ch)
	d := m.Data[i:]
	switch m.Depth {
	case Depth8U:
		return float64(d[0])
	case Depth8S:
		return float64(int8(d[0]))
	case Depth16U:
		return float64(binary.LittleEndian.Uint16(d))
	case Depth16S:
		return float64(int16(binary.LittleEndian.Uint16(d)))
	case Depth32S:
		return float64(int32(binary.LittleEndian.Uint32(d)))
	case Depth32F:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(d)))
	case Depth64F:
		return math.Float64frombits(binary.LittleEndian.Uint64(d))
	}
	return 0
}

// Set stores v into sample ch of the pixel at (x, y), truncating to the
// Mat's depth.
func (m *Mat) Set(x, y, ch int, v float64) {
	i := m.offset(x, y, ch)
	d := m.Data[i:]
	switch m.Depth {
	case Depth8U:
		d[0] = uint8(v)
	case Depth8S:
		d[0] = byte(int8(v))
	case Depth16U:
		binary.LittleEndian.PutUint16(d, uint16(v))
	case Depth16S:
		binary.LittleEndian.PutUint16(d, uint16(int16(v)))
	case Depth32S:
		binary.LittleEndian.PutUint32(d, uint32(int32(v)))
	case Depth32F:
		binary.LittleEndian.PutUint32(d, math.Float32bits(float32(v)))
	case Depth64F:
		binary.LittleEndian.PutUint64(d, math.Float64bits(v))
	}
}

// Sub returns a view of r sharing the Mat's data. r is clipped to the Mat.
func (m *Mat) Sub(r image.Rectangle) *Mat {
	r = r.Intersect(m.Bounds())
	if r.Empty() {
		return &Mat{Channels: m.Channels, Depth: m.Depth, Order: m.Order, Stride: m.Stride}
	}
	start := m.offset(r.Min.X, r.Min.Y, 0)
	return &Mat{
		Width:    r.Dx(),
		Height:   r.Dy(),
		Channels: m.Channels,
		Depth:    m.Depth,
		Order:    m.Order,
		Stride:   m.Stride,
		Data:     m.Data[start:],
	}
}

// FromImage copies a decoded image into a Mat, preserving sample depth for
// 16-bit sources.
func FromImage(img image.Image) *Mat {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return &Mat{Channels: 4, Order: OrderRGB}
	}
	switch src := img.(type) {
	case *image.Gray:
		m, _ := NewMat(w, h, 1, Depth8U)
		for y := 0; y < h; y++ {
			so := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(m.Data[y*m.Stride:(y+1)*m.Stride], src.Pix[so:so+w])
		}
		return m
	case *image.Gray16:
		m, _ := NewMat(w, h, 1, Depth16U)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				m.Set(x, y, 0, float64(src.Gray16At(b.Min.X+x, b.Min.Y+y).Y))
			}
		}
		return m
	case *image.RGBA64, *image.NRGBA64:
		m, _ := NewMat(w, h, 4, Depth16U)
		m.Order = OrderRGB
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c := color.NRGBA64Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA64)
				m.Set(x, y, 0, float64(c.R))
				m.Set(x, y, 1, float64(c.G))
				m.Set(x, y, 2, float64(c.B))
				m.Set(x, y, 3, float64(c.A))
			}
		}
		return m
	}
	n, ok := img.(*image.NRGBA)
	if !ok || b.Min != (image.Point{}) {
		n = image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.Draw(n, n.Bounds(), img, b.Min, draw.Src)
	}
	m, _ := NewMat(w, h, 4, Depth8U)
	m.Order = OrderRGB
	for y := 0; y < h; y++ {
		copy(m.Data[y*m.Stride:(y+1)*m.Stride], n.Pix[y*n.Stride:y*n.Stride+w*4])
	}
	return m
}
