package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/cvcanvas/internal/canvas"
	"github.com/example/cvcanvas/internal/raster"
	"github.com/example/cvcanvas/internal/surface"
)

type renderCmd struct {
	*root
	fs     *flag.FlagSet
	sketch string
	width  int
	height int
	frames int
	source string
	output string
}

func (c *renderCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseRenderCmd(args []string, r *root) (*renderCmd, error) {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	c := &renderCmd{root: r.subcommand("render"), fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.sketch, "sketch", "", "sketch to render (see the sketches command)")
	fs.IntVar(&c.width, "width", 0, "canvas width; 0 uses the configured width")
	fs.IntVar(&c.height, "height", 0, "canvas height; 0 uses the configured height")
	fs.IntVar(&c.frames, "frames", 1, "number of frames to draw before saving")
	fs.StringVar(&c.source, "source", "none", "frame source for the mirror sketch: screen, none or an image file")
	fs.StringVar(&c.output, "output", "frame.png", "write the last frame to this file path")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if c.frames < 0 {
		return nil, fmt.Errorf("-frames must not be negative, got %d", c.frames)
	}
	return c, nil
}

// Run draws the sketch without a window: Setup, then the requested number
// of frames, then the buffer is written to disk.
func (c *renderCmd) Run() error {
	sk, err := lookupSketch(c.sketchName(c.sketch))
	if err != nil {
		return err
	}
	env := c.sketchEnv(c.width, c.height, 0)
	if env.Source, err = frameSource(c.source, env.Width, env.Height); err != nil {
		return err
	}
	mem := surface.NewMemory(raster.FormatBGR)
	cv, err := canvas.New(env.Width, env.Height,
		canvas.WithHooks(sk.New(env)),
		canvas.WithSurface(mem),
		canvas.WithFrameRate(env.FPS),
		canvas.WithoutLoop(),
	)
	if err != nil {
		return err
	}
	defer cv.Close()
	if err := cv.Start(); err != nil {
		return err
	}
	for i := 0; i < c.frames; i++ {
		cv.Step()
	}
	var saveErr error
	cv.Do(func(cv *canvas.Canvas) { saveErr = cv.Save(c.output) })
	if saveErr != nil {
		return saveErr
	}
	saved := c.output
	if abs, err := filepath.Abs(c.output); err == nil {
		saved = abs
	}
	fmt.Fprintf(os.Stderr, "saved %s (%d frames, %d presented)\n", saved, cv.FrameCount(), mem.Frames())
	c.notifySave(saved)
	return nil
}
