package main

import (
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/example/cvcanvas/internal/canvas"
	"github.com/example/cvcanvas/internal/effect"
	"github.com/example/cvcanvas/internal/imageio"
	"github.com/example/cvcanvas/internal/palette"
	"github.com/example/cvcanvas/internal/raster"
)

type composeCmd struct {
	*root
	fs            *flag.FlagSet
	output        string
	at            string
	gap           int
	width         int
	height        int
	background    string
	shadow        bool
	shadowRadius  int
	shadowOffset  string
	shadowOpacity float64

	origin      image.Point
	shadowPoint image.Point
}

func (c *composeCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseComposeCmd(args []string, r *root) (*composeCmd, error) {
	fs := flag.NewFlagSet("compose", flag.ExitOnError)
	c := &composeCmd{root: r.subcommand("compose"), fs: fs}
	fs.Usage = usageFunc(c)
	defaults := effect.DefaultShadow()
	fs.StringVar(&c.output, "output", "composite.png", "write the composite to this file path")
	fs.StringVar(&c.at, "at", "0,0", "position of the first image as x,y")
	fs.IntVar(&c.gap, "gap", 0, "horizontal space between images")
	fs.IntVar(&c.width, "width", 0, "canvas width; 0 fits the images")
	fs.IntVar(&c.height, "height", 0, "canvas height; 0 fits the images")
	fs.StringVar(&c.background, "background", "", "background colour; empty uses the palette")
	fs.BoolVar(&c.shadow, "shadow", false, "draw a drop shadow under each image")
	fs.IntVar(&c.shadowRadius, "shadow-radius", defaults.Radius, "drop shadow blur radius in pixels")
	fs.StringVar(&c.shadowOffset, "shadow-offset", formatPoint(defaults.Offset), "drop shadow offset as dx,dy")
	fs.Float64Var(&c.shadowOpacity, "shadow-opacity", defaults.Opacity, "drop shadow opacity between 0 and 1")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() == 0 {
		return nil, &UsageError{of: c}
	}
	var err error
	if c.origin, err = parsePoint(c.at); err != nil {
		return nil, err
	}
	if c.shadowPoint, err = parsePoint(c.shadowOffset); err != nil {
		return nil, fmt.Errorf("invalid shadow offset: %w", err)
	}
	return c, nil
}

func (c *composeCmd) shadowOptions() effect.Shadow {
	s := effect.Shadow{Radius: max(c.shadowRadius, 0), Offset: c.shadowPoint}
	if c.shadow {
		s.Opacity = min(max(c.shadowOpacity, 0), 1)
	}
	return s
}

// Run lays the images out left to right starting at -at and blits them
// onto a canvas filled with the background colour.
func (c *composeCmd) Run() error {
	bg := c.activePalette.Background
	if c.background != "" {
		col, err := palette.ParseColor(c.background)
		if err != nil {
			return err
		}
		bg = col
	}
	if !imageio.Supported(c.output) {
		return fmt.Errorf("output %q: %w", c.output, imageio.ErrUnknownFormat)
	}
	shadow := c.shadowOptions()

	type placed struct {
		m  *raster.Mat
		at image.Point
	}
	var (
		items  []placed
		extent image.Rectangle
	)
	x := c.origin.X
	for _, path := range c.fs.Args() {
		m, err := imageio.Load(path)
		if err != nil {
			return err
		}
		out, shift, err := shadow.Apply(m, bg)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		at := image.Pt(x-shift.X, c.origin.Y-shift.Y)
		items = append(items, placed{m: out, at: at})
		extent = extent.Union(image.Rect(at.X, at.Y, at.X+out.Width, at.Y+out.Height))
		x += m.Width + c.gap
		if shadow.Enabled() {
			x += max(shadow.Offset.X+shadow.Radius, 0)
		}
	}

	w := firstPositive(c.width, extent.Max.X)
	h := firstPositive(c.height, extent.Max.Y)
	cv, err := canvas.New(w, h, canvas.WithoutLoop())
	if err != nil {
		return err
	}
	defer cv.Close()
	var saveErr error
	cv.Do(func(cv *canvas.Canvas) {
		cv.Background(bg)
		for _, it := range items {
			cv.Image(it.m, it.at.X, it.at.Y)
		}
		saveErr = cv.Save(c.output)
	})
	if saveErr != nil {
		return saveErr
	}
	saved := c.output
	if abs, err := filepath.Abs(c.output); err == nil {
		saved = abs
	}
	fmt.Fprintf(os.Stderr, "saved %s (%dx%d, %d images)\n", saved, w, h, len(items))
	c.notifySave(saved)
	return nil
}
