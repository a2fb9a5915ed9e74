package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/exp/shiny/screen"

	"github.com/example/cvcanvas/internal/canvas"
	"github.com/example/cvcanvas/internal/clipboard"
	"github.com/example/cvcanvas/internal/sketch"
	"github.com/example/cvcanvas/internal/surface"
)

var (
	runScreenFn  = surface.Run
	copyBufferFn = clipboard.WriteBuffer
	nowFn        = time.Now
)

type runCmd struct {
	*root
	fs     *flag.FlagSet
	sketch string
	width  int
	height int
	fps    int
	source string
}

func (c *runCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseRunCmd(args []string, r *root) (*runCmd, error) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	c := &runCmd{root: r.subcommand("run"), fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.sketch, "sketch", "", "sketch to run (see the sketches command)")
	fs.IntVar(&c.width, "width", 0, "canvas width; 0 uses the configured width")
	fs.IntVar(&c.height, "height", 0, "canvas height; 0 uses the configured height")
	fs.IntVar(&c.fps, "fps", 0, "target frame rate; 0 uses the configured rate")
	fs.StringVar(&c.source, "source", "screen", "frame source for the mirror sketch: screen, none or an image file")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 && c.sketch == "" {
		c.sketch = fs.Arg(0)
	}
	return c, nil
}

func (c *runCmd) Run() error {
	name := c.sketchName(c.sketch)
	sk, err := lookupSketch(name)
	if err != nil {
		return err
	}
	env := c.sketchEnv(c.width, c.height, c.fps)
	if env.Source, err = frameSource(c.source, env.Width, env.Height); err != nil {
		return err
	}

	var runErr error
	runScreenFn(func(s screen.Screen) {
		runErr = c.runWindow(s, sk, env)
	})
	return runErr
}

func (c *runCmd) runWindow(s screen.Screen, sk sketch.Sketch, env sketch.Env) error {
	title := c.config.Window.Title
	if title == "" {
		title = "cvcanvas"
	}
	win, err := surface.NewWindow(s, surface.Options{
		Title:  fmt.Sprintf("%s: %s", title, sk.Name),
		Width:  env.Width,
		Height: env.Height,
	})
	if err != nil {
		return fmt.Errorf("open window: %w", err)
	}
	defer win.Release()

	hooks := sketch.WithShortcuts(sk.New(env), c.shortcuts(sk.Name))
	cv, err := canvas.New(env.Width, env.Height,
		canvas.WithHooks(hooks),
		canvas.WithSurface(win),
		canvas.WithFrameRate(env.FPS),
	)
	if err != nil {
		return err
	}
	if err := cv.Start(); err != nil {
		return err
	}
	go func() {
		<-cv.Done()
		win.Close()
	}()
	win.Pump(cv.Dispatch)
	cv.Close()
	return nil
}

// shortcuts binds S to saving the frame and C to copying it.
func (c *runCmd) shortcuts(name string) map[rune]func(*canvas.Canvas) {
	return map[rune]func(*canvas.Canvas){
		'S': func(cv *canvas.Canvas) {
			path := c.framePath(name)
			if dir := filepath.Dir(path); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					fmt.Fprintf(os.Stderr, "create save directory: %v\n", err)
					return
				}
			}
			if err := cv.Save(path); err != nil {
				fmt.Fprintln(os.Stderr, err)
				return
			}
			fmt.Fprintf(os.Stderr, "saved %s\n", path)
			c.notifySave(path)
		},
		'C': func(cv *canvas.Canvas) {
			if err := copyBufferFn(cv.Buffer()); err != nil {
				fmt.Fprintf(os.Stderr, "copy frame to clipboard: %v\n", err)
				return
			}
			detail := fmt.Sprintf("%s frame %d", name, cv.FrameCount())
			fmt.Fprintf(os.Stderr, "copied %s to clipboard\n", detail)
			c.notifyCopy(detail)
		},
	}
}

// framePath names a snapshot file in the configured save directory.
func (c *runCmd) framePath(name string) string {
	file := fmt.Sprintf("%s-%s.png", name, nowFn().Format("20060102-150405.000"))
	return filepath.Join(c.config.SaveDir, file)
}
