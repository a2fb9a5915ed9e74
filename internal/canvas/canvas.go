// Package canvas implements an immediate-mode raster canvas: a BGR pixel
// buffer with a drawing API, presented to a surface on a fixed-rate timer
// and driven by user hooks.
package canvas

import (
	"context"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"github.com/example/cvcanvas/internal/raster"
)

// DefaultFrameRate is the target frame rate of a new canvas.
const DefaultFrameRate = 30

// Surface displays presentation images produced by the canvas.
type Surface interface {
	// Present shows img, which is in the surface's Format.
	Present(img image.Image) error
	// Resize adapts the surface to a new canvas size.
	Resize(width, height int) error
	// Format is the pixel layout Present expects.
	Format() raster.Format
}

// Hooks are the user callbacks driven by the canvas. Each runs with
// exclusive access to the canvas, so the drawing API may be used freely
// inside them. Nil hooks are skipped.
type Hooks struct {
	Setup   func(c *Canvas)
	Draw    func(c *Canvas)
	Closing func(c *Canvas)

	KeyPressed  func(c *Canvas)
	KeyReleased func(c *Canvas)
	KeyTyped    func(c *Canvas)

	MousePressed  func(c *Canvas)
	MouseReleased func(c *Canvas)
	MouseDragged  func(c *Canvas)
}

// Canvas owns the pixel buffer, draw state and render loop.
//
// Drawing methods are not safe for concurrent use. They must be called from
// a hook or from a function passed to Do.
type Canvas struct {
	sem chan struct{}

	buf     *raster.Buffer
	present image.Image
	state   DrawState

	hooks   Hooks
	surface Surface
	loop    *Loop
	fps     int
	looping bool
	ticking bool

	timing TimingWindow
	frames int

	key   rune
	mouse image.Point

	closeOnce sync.Once
	done      chan struct{}
}

// Option configures a Canvas.
type Option func(*Canvas)

// WithHooks sets the user callbacks.
func WithHooks(h Hooks) Option { return func(c *Canvas) { c.hooks = h } }

// WithSurface sets the display surface. Without one the canvas renders
// off-screen only.
func WithSurface(s Surface) Option { return func(c *Canvas) { c.surface = s } }

// WithFrameRate sets the initial target frame rate.
func WithFrameRate(fps int) Option { return func(c *Canvas) { c.fps = fps } }

// WithWarmup sets the delay before the first tick of every schedule.
func WithWarmup(d time.Duration) Option { return func(c *Canvas) { c.loop = NewLoop(d) } }

// WithoutLoop makes Start run Setup only; Loop can start ticking later.
func WithoutLoop() Option { return func(c *Canvas) { c.looping = false } }

// New creates a black canvas of the given size.
func New(width, height int, opts ...Option) (*Canvas, error) {
	buf, err := raster.NewBuffer(width, height)
	if err != nil {
		return nil, fmt.Errorf("new canvas: %w", err)
	}
	c := &Canvas{
		sem:     make(chan struct{}, 1),
		buf:     buf,
		state:   DefaultDrawState(),
		loop:    NewLoop(DefaultWarmup),
		fps:     DefaultFrameRate,
		looping: true,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.fps <= 0 {
		return nil, fmt.Errorf("new canvas at %d fps: %w", c.fps, ErrInvalidFrameRate)
	}
	if err := c.allocPresentation(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Canvas) allocPresentation() error {
	if c.surface == nil {
		return nil
	}
	p, err := raster.NewPresentation(c.surface.Format(), c.buf.Width, c.buf.Height)
	if err != nil {
		return fmt.Errorf("presentation buffer: %w", err)
	}
	c.present = p
	return nil
}

func (c *Canvas) acquire() { c.sem <- struct{}{} }
func (c *Canvas) release() { <-c.sem }

// Start runs the Setup hook, presents the first frame and, unless the
// canvas was created WithoutLoop or Setup called NoLoop, starts ticking.
func (c *Canvas) Start() error {
	c.acquire()
	if c.hooks.Setup != nil {
		c.hooks.Setup(c)
	}
	c.redraw()
	looping, fps := c.looping, c.fps
	c.release()
	if !looping {
		return nil
	}
	return c.loop.Start(fps, c.tick)
}

func (c *Canvas) tick(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	case c.sem <- struct{}{}:
	}
	defer c.release()
	if ctx.Err() != nil {
		return
	}
	c.ticking = true
	defer func() { c.ticking = false }()
	c.frame()
}

func (c *Canvas) frame() {
	if c.hooks.Draw != nil {
		c.hooks.Draw(c)
	}
	c.redraw()
	c.frames++
	c.timing.Record(time.Now())
}

// Step runs a single frame synchronously. It is meant for headless
// rendering with the loop stopped.
func (c *Canvas) Step() {
	c.acquire()
	defer c.release()
	c.frame()
}

// Stop halts the render loop and waits for the current tick to finish. It
// must not be called from a hook; use NoLoop there.
func (c *Canvas) Stop() {
	c.loop.Stop()
}

// Close stops the loop, runs the Closing hook once and marks the canvas
// done.
func (c *Canvas) Close() {
	c.closeOnce.Do(func() {
		c.loop.Stop()
		c.acquire()
		if c.hooks.Closing != nil {
			c.hooks.Closing(c)
		}
		c.release()
		close(c.done)
	})
}

// Done is closed after Close has run the Closing hook.
func (c *Canvas) Done() <-chan struct{} { return c.done }

// Do runs fn with exclusive access to the canvas.
func (c *Canvas) Do(fn func(c *Canvas)) {
	c.acquire()
	defer c.release()
	fn(c)
}

// Redraw converts the buffer into the surface format and presents it.
func (c *Canvas) Redraw() { c.redraw() }

func (c *Canvas) redraw() {
	if c.surface == nil || c.present == nil {
		return
	}
	if err := raster.Present(c.buf, c.present); err != nil {
		log.Printf("present: %v", err)
		return
	}
	if err := c.surface.Present(c.present); err != nil {
		log.Printf("present: %v", err)
	}
}

// Resize replaces the buffer with a black one of the new size. The draw
// state is kept. On error the previous buffer stays in place.
func (c *Canvas) Resize(width, height int) error {
	buf, err := raster.NewBuffer(width, height)
	if err != nil {
		return fmt.Errorf("resize canvas: %w", err)
	}
	old, oldPresent := c.buf, c.present
	c.buf = buf
	if err := c.allocPresentation(); err != nil {
		c.buf, c.present = old, oldPresent
		return err
	}
	if c.surface != nil {
		if err := c.surface.Resize(width, height); err != nil {
			log.Printf("resize surface: %v", err)
		}
	}
	return nil
}

// Loop resumes ticking at the current frame rate.
func (c *Canvas) Loop() {
	c.looping = true
	if c.loop.Running() {
		return
	}
	if err := c.restart(); err != nil {
		log.Printf("loop: %v", err)
	}
}

// NoLoop stops ticking after the current frame.
func (c *Canvas) NoLoop() {
	c.looping = false
	done := c.loop.Cancel()
	if !c.ticking {
		<-done
	}
}

// FrameRate sets the target frame rate, restarting the schedule if it is
// running.
func (c *Canvas) FrameRate(fps int) error {
	if fps <= 0 {
		return fmt.Errorf("frame rate %d: %w", fps, ErrInvalidFrameRate)
	}
	c.fps = fps
	if !c.loop.Running() {
		return nil
	}
	c.timing.Reset()
	return c.restart()
}

func (c *Canvas) restart() error {
	if c.ticking {
		return c.loop.Replace(c.fps, c.tick)
	}
	return c.loop.Start(c.fps, c.tick)
}

// TargetFrameRate returns the requested frames per second.
func (c *Canvas) TargetFrameRate() int { return c.fps }

// MeasuredFrameRate returns the achieved frames per second over the last
// ten ticks, or zero before ten ticks have run.
func (c *Canvas) MeasuredFrameRate() float64 { return c.timing.Rate() }

// FrameCount returns the number of completed ticks.
func (c *Canvas) FrameCount() int { return c.frames }

// Width returns the buffer width.
func (c *Canvas) Width() int { return c.buf.Width }

// Height returns the buffer height.
func (c *Canvas) Height() int { return c.buf.Height }

// Buffer exposes the pixel buffer for direct access.
func (c *Canvas) Buffer() *raster.Buffer { return c.buf }

// Key returns the key of the most recent key event.
func (c *Canvas) Key() rune { return c.key }

// Mouse returns the position of the most recent mouse event.
func (c *Canvas) Mouse() image.Point { return c.mouse }
