package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"path/filepath"
	"sync"

	"golang.org/x/exp/shiny/screen"

	"github.com/example/cvcanvas/internal/canvas"
	"github.com/example/cvcanvas/internal/imageio"
	"github.com/example/cvcanvas/internal/raster"
	"github.com/example/cvcanvas/internal/surface"
	"github.com/example/cvcanvas/internal/windows"
)

type showCmd struct {
	*root
	fs *flag.FlagSet
}

func (c *showCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseShowCmd(args []string, r *root) (*showCmd, error) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	c := &showCmd{root: r.subcommand("show"), fs: fs}
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() == 0 {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

// Run opens one window per image, named after the file, and returns once
// every window has been closed. Escape or q closes a window.
func (c *showCmd) Run() error {
	mats := make([]*raster.Mat, 0, c.fs.NArg())
	for _, path := range c.fs.Args() {
		m, err := imageio.Load(path)
		if err != nil {
			return err
		}
		mats = append(mats, m)
	}

	var runErr error
	runScreenFn(func(s screen.Screen) {
		runErr = c.showAll(s, mats)
	})
	return runErr
}

func (c *showCmd) showAll(s screen.Screen, mats []*raster.Mat) error {
	var (
		wg   sync.WaitGroup
		reg  *windows.Registry
		next image.Point
	)
	reg = windows.NewRegistry(func(name string) (canvas.Surface, error) {
		win, err := surface.NewWindow(s, surface.Options{Title: name, Width: next.X, Height: next.Y})
		if err != nil {
			return nil, err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer win.Release()
			win.Pump(func(ev canvas.Event) {
				if ev.Device == canvas.DeviceKey && ev.Action == canvas.Press && (ev.Key == canvas.KeyEscape || ev.Key == 'q') {
					reg.Destroy(name)
				}
			})
			reg.Destroy(name)
		}()
		return win, nil
	})

	shown := 0
	for i, m := range mats {
		name := filepath.Base(c.fs.Arg(i))
		next = image.Pt(m.Width, m.Height)
		if reg.Show(name, m) {
			shown++
			continue
		}
		log.Printf("show: %s could not be displayed", name)
	}
	wg.Wait()
	if shown == 0 {
		return fmt.Errorf("show: no image could be displayed")
	}
	return nil
}
