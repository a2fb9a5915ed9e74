// Package surface provides display targets for a canvas: a shiny desktop
// window and an in-memory recorder.
package surface

import (
	"image"
	"image/color"
	"image/draw"
	"log"
	"sync"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/cvcanvas/internal/canvas"
	"github.com/example/cvcanvas/internal/raster"
)

// KeyUndefined is reported for keys without a character.
const KeyUndefined rune = -1

// Options describe a new window.
type Options struct {
	Title  string
	Width  int
	Height int
}

// Run starts the platform driver and calls fn with the screen. It returns
// once fn returns.
func Run(fn func(s screen.Screen)) { driver.Main(fn) }

type closeEvent struct{}

// Window is a canvas surface backed by a shiny window. Frames are scaled to
// the window size keeping their aspect ratio.
type Window struct {
	s screen.Screen
	w screen.Window

	mu       sync.Mutex
	frame    *image.RGBA
	viewport image.Point

	updateCh chan struct{}
	stop     chan struct{}
	once     sync.Once

	pressed bool
}

// NewWindow opens a window sized for a canvas.
func NewWindow(s screen.Screen, opts Options) (*Window, error) {
	w, err := s.NewWindow(&screen.NewWindowOptions{
		Title:  opts.Title,
		Width:  opts.Width,
		Height: opts.Height,
	})
	if err != nil {
		return nil, err
	}
	win := &Window{
		s:        s,
		w:        w,
		viewport: image.Pt(opts.Width, opts.Height),
		updateCh: make(chan struct{}, 1),
		stop:     make(chan struct{}),
	}
	go win.forward()
	return win, nil
}

func (w *Window) forward() {
	for {
		select {
		case <-w.updateCh:
			w.w.Send(paint.Event{})
		case <-w.stop:
			return
		}
	}
}

// Format implements canvas.Surface.
func (w *Window) Format() raster.Format { return raster.FormatRGBA }

// Present stores a copy of img and schedules a repaint. It never waits for
// the window.
func (w *Window) Present(img image.Image) error {
	w.mu.Lock()
	if w.frame == nil || w.frame.Bounds() != img.Bounds() {
		w.frame = image.NewRGBA(img.Bounds())
	}
	if src, ok := img.(*image.RGBA); ok {
		copy(w.frame.Pix, src.Pix)
	} else {
		draw.Draw(w.frame, w.frame.Bounds(), img, img.Bounds().Min, draw.Src)
	}
	w.mu.Unlock()
	select {
	case w.updateCh <- struct{}{}:
	default:
	}
	return nil
}

// Resize implements canvas.Surface. The next Present carries the new size.
func (w *Window) Resize(width, height int) error {
	w.mu.Lock()
	w.frame = nil
	w.mu.Unlock()
	return nil
}

// Close makes Pump return.
func (w *Window) Close() { w.w.Send(closeEvent{}) }

// Release frees the window. Pump must have returned.
func (w *Window) Release() {
	w.once.Do(func() {
		close(w.stop)
		w.w.Release()
	})
}

// Pump delivers window events to sink until the window is closed by the
// user or by Close.
func (w *Window) Pump(sink func(canvas.Event)) {
	for {
		switch e := w.w.NextEvent().(type) {
		case closeEvent:
			return
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				return
			}
		case size.Event:
			w.mu.Lock()
			w.viewport = e.Size()
			w.mu.Unlock()
			w.w.Send(paint.Event{})
		case paint.Event:
			w.paint()
		case mouse.Event:
			if ev, ok := w.mouseEvent(e); ok {
				sink(ev)
			}
		case key.Event:
			for _, ev := range keyEvents(e) {
				sink(ev)
			}
		case error:
			log.Printf("window: %v", e)
		}
	}
}

func (w *Window) paint() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.viewport.X <= 0 || w.viewport.Y <= 0 {
		return
	}
	b, err := w.s.NewBuffer(w.viewport)
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()
	dst := b.RGBA()
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	if w.frame != nil {
		r := fitRect(w.frame.Bounds().Size(), w.viewport)
		xdraw.NearestNeighbor.Scale(dst, r, w.frame, w.frame.Bounds(), draw.Src, nil)
	}
	w.w.Upload(image.Point{}, b, b.Bounds())
	w.w.Publish()
}

func (w *Window) mouseEvent(e mouse.Event) (canvas.Event, bool) {
	if e.Button.IsWheel() {
		return canvas.Event{}, false
	}
	w.mu.Lock()
	p := image.Pt(int(e.X), int(e.Y))
	if w.frame != nil {
		p = toCanvas(p, w.frame.Bounds().Size(), w.viewport)
	}
	w.mu.Unlock()
	ev := canvas.Event{Device: canvas.DeviceMouse, X: p.X, Y: p.Y}
	switch e.Direction {
	case mouse.DirPress:
		w.pressed = true
		ev.Action = canvas.Press
	case mouse.DirRelease:
		w.pressed = false
		ev.Action = canvas.Release
	case mouse.DirNone:
		if !w.pressed {
			return canvas.Event{}, false
		}
		ev.Action = canvas.Drag
	default:
		return canvas.Event{}, false
	}
	return ev, true
}

func keyRune(e key.Event) rune {
	switch e.Code {
	case key.CodeEscape:
		return canvas.KeyEscape
	case key.CodeReturnEnter:
		return '\n'
	case key.CodeTab:
		return '\t'
	case key.CodeDeleteBackspace:
		return '\b'
	case key.CodeDeleteForward:
		return 127
	}
	if e.Rune >= 0 {
		return e.Rune
	}
	return KeyUndefined
}

// keyEvents translates a key event. A press of a character key is followed
// by a Type record.
func keyEvents(e key.Event) []canvas.Event {
	r := keyRune(e)
	ev := canvas.Event{Device: canvas.DeviceKey, Key: r}
	switch e.Direction {
	case key.DirPress, key.DirNone:
		ev.Action = canvas.Press
		out := []canvas.Event{ev}
		if r != KeyUndefined && r != canvas.KeyEscape {
			typed := ev
			typed.Action = canvas.Type
			out = append(out, typed)
		}
		return out
	case key.DirRelease:
		ev.Action = canvas.Release
		return []canvas.Event{ev}
	}
	return nil
}

// fitRect centres a frame of size src in the viewport at the largest scale
// that keeps its aspect ratio.
func fitRect(src, viewport image.Point) image.Rectangle {
	if src.X <= 0 || src.Y <= 0 {
		return image.Rectangle{}
	}
	w, h := viewport.X, src.Y*viewport.X/src.X
	if h > viewport.Y {
		w, h = src.X*viewport.Y/src.Y, viewport.Y
	}
	off := image.Pt((viewport.X-w)/2, (viewport.Y-h)/2)
	return image.Rect(0, 0, w, h).Add(off)
}

// toCanvas maps a window position back into frame coordinates.
func toCanvas(p, src, viewport image.Point) image.Point {
	r := fitRect(src, viewport)
	if r.Dx() == 0 || r.Dy() == 0 {
		return p
	}
	return image.Pt((p.X-r.Min.X)*src.X/r.Dx(), (p.Y-r.Min.Y)*src.Y/r.Dy())
}
