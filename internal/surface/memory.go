package surface

import (
	"image"
	"image/draw"
	"sync"

	"github.com/example/cvcanvas/internal/raster"
)

// Memory is a headless surface that keeps the last presented frame.
type Memory struct {
	mu     sync.Mutex
	format raster.Format
	frames int
	last   image.Image
	size   image.Point

	// OnPresent, when set, is called with each frame number and a copy of
	// the frame.
	OnPresent func(n int, img image.Image)
}

// NewMemory returns a surface that accepts frames in format f.
func NewMemory(f raster.Format) *Memory {
	return &Memory{format: f}
}

// Format implements canvas.Surface.
func (m *Memory) Format() raster.Format { return m.format }

// Present implements canvas.Surface.
func (m *Memory) Present(img image.Image) error {
	cp := clone(img)
	m.mu.Lock()
	m.frames++
	m.last = cp
	n, fn := m.frames, m.OnPresent
	m.mu.Unlock()
	if fn != nil {
		fn(n, cp)
	}
	return nil
}

// Resize implements canvas.Surface.
func (m *Memory) Resize(width, height int) error {
	m.mu.Lock()
	m.size = image.Pt(width, height)
	m.mu.Unlock()
	return nil
}

// Frames returns how many frames have been presented.
func (m *Memory) Frames() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frames
}

// Last returns the most recent frame or nil.
func (m *Memory) Last() image.Image {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// Size returns the size passed to the last Resize.
func (m *Memory) Size() image.Point {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.size
}

func clone(img image.Image) image.Image {
	switch src := img.(type) {
	case *image.Gray:
		out := image.NewGray(src.Bounds())
		copy(out.Pix, src.Pix)
		return out
	case *raster.Buffer:
		out := *src
		out.Pix = append([]byte(nil), src.Pix...)
		return &out
	}
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out
}
