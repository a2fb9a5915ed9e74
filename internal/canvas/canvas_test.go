package canvas

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/example/cvcanvas/internal/raster"
)

type recordSurface struct {
	mu     sync.Mutex
	frames int
	last   *image.RGBA
	size   image.Point
}

func (s *recordSurface) Present(img image.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames++
	src := img.(*image.RGBA)
	s.last = image.NewRGBA(src.Bounds())
	copy(s.last.Pix, src.Pix)
	return nil
}

func (s *recordSurface) Resize(w, h int) error {
	s.mu.Lock()
	s.size = image.Pt(w, h)
	s.mu.Unlock()
	return nil
}

func (s *recordSurface) Format() raster.Format { return raster.FormatRGBA }

func newTestCanvas(t *testing.T, w, h int, opts ...Option) *Canvas {
	t.Helper()
	c, err := New(w, h, append([]Option{WithoutLoop()}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func frameCount(c *Canvas) int {
	var n int
	c.Do(func(c *Canvas) { n = c.FrameCount() })
	return n
}

func waitFrames(t *testing.T, c *Canvas, n int, limit time.Duration) {
	t.Helper()
	deadline := time.Now().Add(limit)
	for frameCount(c) < n {
		if time.Now().After(deadline) {
			t.Fatalf("only %d of %d frames after %v", frameCount(c), n, limit)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func checkRegion(t *testing.T, b *raster.Buffer, r image.Rectangle, in, out raster.Color) {
	t.Helper()
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			want := out
			if image.Pt(x, y).In(r) {
				want = in
			}
			i := b.PixOffset(x, y)
			bgr := want.BGR()
			if b.Pix[i] != bgr[0] || b.Pix[i+1] != bgr[1] || b.Pix[i+2] != bgr[2] {
				t.Fatalf("(%d,%d) = %v, want %v", x, y, b.Pix[i:i+3], bgr)
			}
		}
	}
}

func TestNewRejectsBadArguments(t *testing.T) {
	if _, err := New(0, 10); !errors.Is(err, raster.ErrInvalidDimension) {
		t.Errorf("New(0,10) err = %v", err)
	}
	if _, err := New(10, 10, WithFrameRate(0)); !errors.Is(err, ErrInvalidFrameRate) {
		t.Errorf("New fps 0 err = %v", err)
	}
}

func TestDefaultState(t *testing.T) {
	c := newTestCanvas(t, 4, 4)
	want := DrawState{StrokeWidth: 1, FillEnabled: true, RectMode: Corner}
	if got := c.State(); got != want {
		t.Fatalf("State() = %+v, want %+v", got, want)
	}
	if c.TargetFrameRate() != DefaultFrameRate {
		t.Fatalf("fps = %d", c.TargetFrameRate())
	}
}

func TestRectCenterBounds(t *testing.T) {
	c := newTestCanvas(t, 200, 200)
	red := raster.RGB(255, 0, 0)
	c.Do(func(c *Canvas) {
		c.Fill(red)
		c.NoStroke()
		c.RectMode(Center)
		c.Rect(100, 100, 20, 10)
	})
	checkRegion(t, c.Buffer(), image.Rect(90, 95, 111, 106), red, raster.Gray(0))
}

func TestRectCornersBounds(t *testing.T) {
	c := newTestCanvas(t, 40, 40)
	blue := raster.RGB(0, 0, 255)
	c.Do(func(c *Canvas) {
		c.Fill(blue)
		c.NoStroke()
		c.RectMode(Corners)
		c.Rect(15, 25, 5, 5)
	})
	checkRegion(t, c.Buffer(), image.Rect(5, 5, 16, 26), blue, raster.Gray(0))
}

func TestRectWithLeavesStateAlone(t *testing.T) {
	c := newTestCanvas(t, 20, 20)
	c.Do(func(c *Canvas) {
		c.NoStroke()
		before := c.State()
		c.RectWith(2, 2, 3, 3, Corner, raster.Gray(9))
		if c.State() != before {
			t.Fatalf("RectWith changed state")
		}
	})
	checkRegion(t, c.Buffer(), image.Rect(2, 2, 6, 6), raster.Gray(9), raster.Gray(0))
}

func TestNoFillDrawsOutlineOnly(t *testing.T) {
	c := newTestCanvas(t, 30, 30)
	c.Do(func(c *Canvas) {
		c.NoFill()
		c.Stroke(raster.Gray(255))
		c.Rect(5, 5, 10, 10)
	})
	b := c.Buffer()
	if b.RGBAAt(10, 5).R == 0 {
		t.Errorf("top edge not stroked")
	}
	if b.RGBAAt(10, 10).R != 0 {
		t.Errorf("interior painted with fill disabled")
	}
}

func TestNoStrokeSkipsDefaultWidthLines(t *testing.T) {
	c := newTestCanvas(t, 20, 20)
	white := raster.Gray(255)
	c.Do(func(c *Canvas) {
		c.NoStroke()
		c.Stroke(white)
		c.Line(0, 10, 19, 10)
		c.LineColor(0, 10, 19, 10, white)
	})
	for _, v := range c.Buffer().Pix {
		if v != 0 {
			t.Fatalf("line drawn after NoStroke")
		}
	}
	c.Do(func(c *Canvas) { c.LineWidth(0, 10, 19, 10, 3, white) })
	if got := c.Buffer().RGBAAt(10, 10).R; got != 255 {
		t.Fatalf("explicit width line centre = %d, want 255", got)
	}
	if got := c.Buffer().RGBAAt(10, 2).R; got != 0 {
		t.Fatalf("explicit width line too wide: %d", got)
	}
}

func TestDrawLineNonPositiveWidth(t *testing.T) {
	b, _ := raster.NewBuffer(8, 8)
	DrawLine(b, image.Pt(0, 0), image.Pt(7, 7), 0, raster.Gray(255))
	DrawLine(b, image.Pt(0, 0), image.Pt(7, 7), -2, raster.Gray(255))
	for _, v := range b.Pix {
		if v != 0 {
			t.Fatalf("non-positive width drew pixels")
		}
	}
}

func TestResolveRect(t *testing.T) {
	cases := []struct {
		x, y, p1, p2 int
		mode         RectMode
		a, b         image.Point
	}{
		{10, 20, 5, 6, Corner, image.Pt(10, 20), image.Pt(15, 26)},
		{100, 100, 20, 10, Center, image.Pt(90, 95), image.Pt(110, 105)},
		{10, 10, 5, 3, Center, image.Pt(7, 8), image.Pt(12, 11)},
		{5, 5, 15, 25, Corners, image.Pt(5, 5), image.Pt(15, 25)},
	}
	for _, tc := range cases {
		a, b, ok := ResolveRect(tc.x, tc.y, tc.p1, tc.p2, tc.mode)
		if !ok || a != tc.a || b != tc.b {
			t.Errorf("ResolveRect(%d,%d,%d,%d,%v) = %v %v %v, want %v %v", tc.x, tc.y, tc.p1, tc.p2, tc.mode, a, b, ok, tc.a, tc.b)
		}
	}
	if _, _, ok := ResolveRect(0, 0, 1, 1, RectMode(9)); ok {
		t.Errorf("unknown mode resolved")
	}
}

func TestImageGrayReplicates(t *testing.T) {
	c := newTestCanvas(t, 100, 100)
	m, _ := raster.NewMat(100, 100, 1, raster.Depth8U)
	for i := range m.Data {
		m.Data[i] = byte(i % 251)
	}
	c.Do(func(c *Canvas) { c.Image(m, 0, 0) })
	b := c.Buffer()
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			v := m.Data[y*m.Stride+x]
			i := b.PixOffset(x, y)
			if b.Pix[i] != v || b.Pix[i+1] != v || b.Pix[i+2] != v {
				t.Fatalf("(%d,%d) = %v, want %d", x, y, b.Pix[i:i+3], v)
			}
		}
	}
}

func TestImageClipsAtBottomRight(t *testing.T) {
	c := newTestCanvas(t, 100, 100)
	m, _ := raster.NewMat(30, 30, 3, raster.Depth8U)
	for i := range m.Data {
		m.Data[i] = 200
	}
	c.Do(func(c *Canvas) { c.Image(m, 80, 90) })
	checkRegion(t, c.Buffer(), image.Rect(80, 90, 100, 100), raster.Gray(200), raster.Gray(0))
}

func TestImageIgnoresMissesAndBadChannels(t *testing.T) {
	c := newTestCanvas(t, 10, 10)
	m, _ := raster.NewMat(4, 4, 3, raster.Depth8U)
	for i := range m.Data {
		m.Data[i] = 99
	}
	two, _ := raster.NewMat(4, 4, 2, raster.Depth8U)
	for i := range two.Data {
		two.Data[i] = 99
	}
	c.Do(func(c *Canvas) {
		c.Image(m, 11, 0)
		c.Image(m, 0, 11)
		c.Image(m, -4, 0)
		c.Image(two, 0, 0)
	})
	for _, v := range c.Buffer().Pix {
		if v != 0 {
			t.Fatalf("ignored blit wrote pixels")
		}
	}
}

func TestResizeKeepsStateAndClears(t *testing.T) {
	s := &recordSurface{}
	c := newTestCanvas(t, 20, 20, WithSurface(s))
	var before DrawState
	c.Do(func(c *Canvas) {
		c.Fill(raster.RGB(1, 2, 3))
		c.StrokeWeight(4)
		c.Background(raster.Gray(255))
		before = c.State()
		if err := c.Resize(50, 40); err != nil {
			t.Fatalf("Resize: %v", err)
		}
		if err := c.Resize(0, 40); err == nil {
			t.Fatalf("Resize(0,40) succeeded")
		}
	})
	if c.Width() != 50 || c.Height() != 40 {
		t.Fatalf("size %dx%d", c.Width(), c.Height())
	}
	if c.State() != before {
		t.Fatalf("state changed by resize")
	}
	for _, v := range c.Buffer().Pix {
		if v != 0 {
			t.Fatalf("resized buffer not black")
		}
	}
	if s.size != image.Pt(50, 40) {
		t.Fatalf("surface size %v", s.size)
	}
}

func TestStartPresentsSetupFrame(t *testing.T) {
	s := &recordSurface{}
	c := newTestCanvas(t, 8, 8, WithSurface(s), WithHooks(Hooks{
		Setup: func(c *Canvas) { c.Background(raster.RGB(255, 0, 0)) },
	}))
	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if s.frames != 1 {
		t.Fatalf("frames = %d, want 1", s.frames)
	}
	if got := s.last.RGBAAt(3, 3); got.R != 255 || got.B != 0 || got.A != 255 {
		t.Fatalf("presented pixel %+v", got)
	}
}

func TestMeasuredFrameRate(t *testing.T) {
	c, err := New(16, 16, WithWarmup(0), WithFrameRate(30))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer c.Stop()
	waitFrames(t, c, 25, 3*time.Second)
	var rate float64
	c.Do(func(c *Canvas) { rate = c.MeasuredFrameRate() })
	if rate < 27 || rate > 33 {
		t.Fatalf("measured %.2f fps, want 30 +/- 10%%", rate)
	}
}

func TestStopHaltsTicks(t *testing.T) {
	c, _ := New(8, 8, WithWarmup(0), WithFrameRate(200))
	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitFrames(t, c, 3, time.Second)
	c.Stop()
	n := frameCount(c)
	time.Sleep(50 * time.Millisecond)
	if got := frameCount(c); got != n {
		t.Fatalf("ticks after Stop: %d -> %d", n, got)
	}
}

func TestNoLoopFromDrawHook(t *testing.T) {
	c, _ := New(8, 8, WithWarmup(0), WithFrameRate(200), WithHooks(Hooks{
		Draw: func(c *Canvas) {
			if c.FrameCount() == 2 {
				c.NoLoop()
			}
		},
	}))
	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitFrames(t, c, 3, time.Second)
	time.Sleep(50 * time.Millisecond)
	if got := frameCount(c); got != 3 {
		t.Fatalf("frames = %d, want 3", got)
	}
	if c.loop.Running() {
		t.Fatalf("loop still running")
	}
}

func TestFrameRateFromDrawHookRestarts(t *testing.T) {
	c, _ := New(8, 8, WithWarmup(0), WithFrameRate(100), WithHooks(Hooks{
		Draw: func(c *Canvas) {
			if c.FrameCount() == 1 {
				if err := c.FrameRate(200); err != nil {
					t.Errorf("FrameRate: %v", err)
				}
			}
		},
	}))
	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer c.Stop()
	waitFrames(t, c, 10, 2*time.Second)
	if c.TargetFrameRate() != 200 {
		t.Fatalf("fps = %d", c.TargetFrameRate())
	}
}

func TestDispatchRunsHooks(t *testing.T) {
	var got []string
	c := newTestCanvas(t, 10, 10, WithHooks(Hooks{
		KeyPressed:   func(c *Canvas) { got = append(got, "press "+string(c.Key())) },
		KeyTyped:     func(c *Canvas) { got = append(got, "type "+string(c.Key())) },
		MouseDragged: func(c *Canvas) { got = append(got, "drag") },
		Closing:      func(c *Canvas) { got = append(got, "closing") },
	}))
	c.Dispatch(Event{Device: DeviceKey, Action: Press, Key: 'a'})
	c.Dispatch(Event{Device: DeviceKey, Action: Type, Key: 'b'})
	c.Dispatch(Event{Device: DeviceMouse, Action: Drag, X: 3, Y: 4})
	if c.Mouse() != image.Pt(3, 4) {
		t.Fatalf("mouse = %v", c.Mouse())
	}
	c.Dispatch(Event{Device: DeviceKey, Action: Press, Key: KeyEscape})
	select {
	case <-c.Done():
	default:
		t.Fatalf("escape did not close the canvas")
	}
	c.Dispatch(Event{Device: DeviceKey, Action: Press, Key: 'z'})
	want := []string{"press a", "type b", "drag", "closing"}
	if len(got) != len(want) {
		t.Fatalf("hooks = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("hooks = %q, want %q", got, want)
		}
	}
}

func TestTimingWindow(t *testing.T) {
	var w TimingWindow
	base := time.Unix(0, 0)
	for i := 0; i < timingSlots; i++ {
		if r := w.Record(base.Add(time.Duration(i) * 100 * time.Millisecond)); r != 0 {
			t.Fatalf("rate %v before the window filled", r)
		}
	}
	if r := w.Record(base.Add(time.Second)); r != 10 {
		t.Fatalf("rate = %v, want 10", r)
	}
}

func TestLoopRejectsBadRate(t *testing.T) {
	l := NewLoop(0)
	if err := l.Start(0, func(context.Context) {}); !errors.Is(err, ErrInvalidFrameRate) {
		t.Fatalf("err = %v", err)
	}
	if l.Running() {
		t.Fatalf("loop running after rejected start")
	}
	l.Stop()
}

func TestPeriod(t *testing.T) {
	if got := Period(30); got != 33*time.Millisecond {
		t.Errorf("Period(30) = %v", got)
	}
	if got := Period(5000); got != time.Millisecond {
		t.Errorf("Period(5000) = %v", got)
	}
}

func TestStepRunsDrawAndPresents(t *testing.T) {
	s := &recordSurface{}
	calls := 0
	c := newTestCanvas(t, 4, 4, WithSurface(s), WithHooks(Hooks{
		Draw: func(c *Canvas) { calls++ },
	}))
	for i := 0; i < 3; i++ {
		c.Step()
	}
	if calls != 3 || c.FrameCount() != 3 || s.frames != 3 {
		t.Fatalf("calls=%d frames=%d presented=%d", calls, c.FrameCount(), s.frames)
	}
}
