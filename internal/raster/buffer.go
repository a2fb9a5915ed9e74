package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// BytesPerPixel is the size of one Buffer pixel.
const BytesPerPixel = 3

var (
	// ErrInvalidDimension reports a non-positive width or height.
	ErrInvalidDimension = errors.New("invalid dimension")
	// ErrUnsupportedChannels reports a source channel count outside {1, 3, 4}.
	ErrUnsupportedChannels = errors.New("unsupported channel count")
)

// Buffer is the canvas pixel store. Pixels are packed B, G, R.
type Buffer struct {
	Width  int
	Height int
	Stride int
	Pix    []byte
}

var _ draw.Image = (*Buffer)(nil)

// NewBuffer allocates a black buffer of the given size.
func NewBuffer(width, height int) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%dx%d: %w", width, height, ErrInvalidDimension)
	}
	stride := width * BytesPerPixel
	return &Buffer{
		Width:  width,
		Height: height,
		Stride: stride,
		Pix:    make([]byte, stride*height),
	}, nil
}

// Bounds implements image.Image.
func (b *Buffer) Bounds() image.Rectangle { return image.Rect(0, 0, b.Width, b.Height) }

// ColorModel implements image.Image.
func (b *Buffer) ColorModel() color.Model { return color.RGBAModel }

// PixOffset returns the index of the first byte of the pixel at (x, y).
func (b *Buffer) PixOffset(x, y int) int { return y*b.Stride + x*BytesPerPixel }

// At implements image.Image.
func (b *Buffer) At(x, y int) color.Color {
	return b.RGBAAt(x, y)
}

// RGBAAt returns the opaque pixel at (x, y), or the zero colour outside the buffer.
func (b *Buffer) RGBAAt(x, y int) color.RGBA {
	if !image.Pt(x, y).In(b.Bounds()) {
		return color.RGBA{}
	}
	i := b.PixOffset(x, y)
	return color.RGBA{R: b.Pix[i+2], G: b.Pix[i+1], B: b.Pix[i], A: 0xff}
}

// Set implements draw.Image. Alpha is discarded.
func (b *Buffer) Set(x, y int, c color.Color) {
	if !image.Pt(x, y).In(b.Bounds()) {
		return
	}
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	i := b.PixOffset(x, y)
	b.Pix[i] = rgba.B
	b.Pix[i+1] = rgba.G
	b.Pix[i+2] = rgba.R
}

// SetBGR writes a Color without going through color.Color conversion.
func (b *Buffer) SetBGR(x, y int, c Color) {
	if !image.Pt(x, y).In(b.Bounds()) {
		return
	}
	px := c.BGR()
	i := b.PixOffset(x, y)
	copy(b.Pix[i:i+BytesPerPixel], px[:])
}

// Fill sets every pixel to c.
func (b *Buffer) Fill(c Color) {
	b.FillRect(b.Bounds(), c)
}

// FillRect sets every pixel inside r, clipped to the buffer, to c.
func (b *Buffer) FillRect(r image.Rectangle, c Color) {
	r = r.Intersect(b.Bounds())
	if r.Empty() {
		return
	}
	px := c.BGR()
	// Build one row then replicate it.
	first := b.PixOffset(r.Min.X, r.Min.Y)
	rowLen := r.Dx() * BytesPerPixel
	row := b.Pix[first : first+rowLen]
	for i := 0; i < rowLen; i += BytesPerPixel {
		copy(row[i:], px[:])
	}
	for y := r.Min.Y + 1; y < r.Max.Y; y++ {
		off := b.PixOffset(r.Min.X, y)
		copy(b.Pix[off:off+rowLen], row)
	}
}

// CopyRegion copies srcRect of src so that its top-left corner lands on dst.
// Both sides are clipped; nothing happens when they do not overlap.
func (b *Buffer) CopyRegion(src *Buffer, srcRect image.Rectangle, dst image.Point) {
	srcRect = srcRect.Intersect(src.Bounds())
	if srcRect.Empty() {
		return
	}
	target := srcRect.Sub(srcRect.Min).Add(dst)
	clipped := target.Intersect(b.Bounds())
	if clipped.Empty() {
		return
	}
	sp := srcRect.Min.Add(clipped.Min.Sub(target.Min))
	rowLen := clipped.Dx() * BytesPerPixel
	for dy := 0; dy < clipped.Dy(); dy++ {
		so := src.PixOffset(sp.X, sp.Y+dy)
		do := b.PixOffset(clipped.Min.X, clipped.Min.Y+dy)
		copy(b.Pix[do:do+rowLen], src.Pix[so:so+rowLen])
	}
}

// Image returns an opaque RGBA copy of the buffer suitable for encoding.
func (b *Buffer) Image() *image.RGBA {
	img := image.NewRGBA(b.Bounds())
	presentRGBA(b, img.Pix, img.Stride)
	return img
}
