package surface

import (
	"image"
	"testing"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/cvcanvas/internal/canvas"
	"github.com/example/cvcanvas/internal/raster"
)

var _ canvas.Surface = (*Window)(nil)
var _ canvas.Surface = (*Memory)(nil)

func TestMemoryRecordsCopies(t *testing.T) {
	m := NewMemory(raster.FormatGray)
	var seen []int
	m.OnPresent = func(n int, img image.Image) { seen = append(seen, n) }
	src := image.NewGray(image.Rect(0, 0, 2, 2))
	src.Pix[0] = 7
	if err := m.Present(src); err != nil {
		t.Fatalf("Present: %v", err)
	}
	src.Pix[0] = 9
	if got := m.Last().(*image.Gray).Pix[0]; got != 7 {
		t.Fatalf("stored frame aliases source: %d", got)
	}
	_ = m.Present(src)
	if m.Frames() != 2 || len(seen) != 2 || seen[1] != 2 {
		t.Fatalf("frames=%d seen=%v", m.Frames(), seen)
	}
}

func TestMemoryWithCanvas(t *testing.T) {
	m := NewMemory(raster.FormatBGR)
	c, err := canvas.New(6, 4, canvas.WithSurface(m), canvas.WithoutLoop(), canvas.WithHooks(canvas.Hooks{
		Setup: func(c *canvas.Canvas) { c.Background(raster.RGB(1, 2, 3)) },
	}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	b := m.Last().(*raster.Buffer)
	if b.Pix[0] != 3 || b.Pix[1] != 2 || b.Pix[2] != 1 {
		t.Fatalf("pixel %v", b.Pix[:3])
	}
	c.Do(func(c *canvas.Canvas) { _ = c.Resize(3, 3) })
	if m.Size() != image.Pt(3, 3) {
		t.Fatalf("size %v", m.Size())
	}
}

func TestFitRect(t *testing.T) {
	cases := []struct {
		src, vp image.Point
		want    image.Rectangle
	}{
		{image.Pt(100, 50), image.Pt(100, 50), image.Rect(0, 0, 100, 50)},
		{image.Pt(100, 50), image.Pt(200, 200), image.Rect(0, 50, 200, 150)},
		{image.Pt(50, 100), image.Pt(200, 100), image.Rect(75, 0, 125, 100)},
	}
	for _, tc := range cases {
		if got := fitRect(tc.src, tc.vp); got != tc.want {
			t.Errorf("fitRect(%v, %v) = %v, want %v", tc.src, tc.vp, got, tc.want)
		}
	}
	if got := toCanvas(image.Pt(100, 100), image.Pt(100, 50), image.Pt(200, 200)); got != image.Pt(50, 25) {
		t.Errorf("toCanvas = %v", got)
	}
}

func TestKeyEvents(t *testing.T) {
	evs := keyEvents(key.Event{Rune: 'q', Code: key.CodeQ, Direction: key.DirPress})
	if len(evs) != 2 || evs[0].Action != canvas.Press || evs[1].Action != canvas.Type || evs[1].Key != 'q' {
		t.Fatalf("press q = %+v", evs)
	}
	evs = keyEvents(key.Event{Rune: -1, Code: key.CodeEscape, Direction: key.DirPress})
	if len(evs) != 1 || evs[0].Key != canvas.KeyEscape {
		t.Fatalf("escape = %+v", evs)
	}
	evs = keyEvents(key.Event{Rune: -1, Code: key.CodeLeftShift, Direction: key.DirRelease})
	if len(evs) != 1 || evs[0].Action != canvas.Release || evs[0].Key != KeyUndefined {
		t.Fatalf("shift release = %+v", evs)
	}
}

func TestMouseDragNeedsPress(t *testing.T) {
	w := &Window{}
	if _, ok := w.mouseEvent(mouse.Event{X: 1, Y: 1, Direction: mouse.DirNone}); ok {
		t.Fatalf("move without press reported")
	}
	ev, ok := w.mouseEvent(mouse.Event{X: 2, Y: 3, Button: mouse.ButtonLeft, Direction: mouse.DirPress})
	if !ok || ev.Action != canvas.Press || ev.X != 2 || ev.Y != 3 {
		t.Fatalf("press = %+v %v", ev, ok)
	}
	if ev, ok = w.mouseEvent(mouse.Event{X: 4, Y: 5, Direction: mouse.DirNone}); !ok || ev.Action != canvas.Drag {
		t.Fatalf("drag = %+v %v", ev, ok)
	}
	if ev, ok = w.mouseEvent(mouse.Event{X: 4, Y: 5, Button: mouse.ButtonLeft, Direction: mouse.DirRelease}); !ok || ev.Action != canvas.Release {
		t.Fatalf("release = %+v %v", ev, ok)
	}
	if _, ok = w.mouseEvent(mouse.Event{Button: mouse.ButtonWheelUp, Direction: mouse.DirStep}); ok {
		t.Fatalf("wheel reported")
	}
}
