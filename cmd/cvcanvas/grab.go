package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/cvcanvas/internal/canvas"
	"github.com/example/cvcanvas/internal/effect"
	"github.com/example/cvcanvas/internal/grab"
	"github.com/example/cvcanvas/internal/raster"
)

type grabCmd struct {
	*root
	fs            *flag.FlagSet
	output        string
	monitor       string
	rect          string
	portal        bool
	interactive   bool
	list          bool
	toClipboard   bool
	shadow        bool
	shadowRadius  int
	shadowOffset  string
	shadowOpacity float64

	region      image.Rectangle
	shadowPoint image.Point
}

func (c *grabCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseGrabCmd(args []string, r *root) (*grabCmd, error) {
	fs := flag.NewFlagSet("grab", flag.ExitOnError)
	c := &grabCmd{root: r.subcommand("grab"), fs: fs}
	fs.Usage = usageFunc(c)
	defaults := effect.DefaultShadow()
	fs.StringVar(&c.output, "output", "", "write the grab to this file path (default: a timestamped file in save_dir)")
	fs.StringVar(&c.monitor, "monitor", "", "grab one monitor: primary, an index, or part of its name")
	fs.StringVar(&c.rect, "rect", "", "grab the rectangle x,y,w,h")
	fs.BoolVar(&c.portal, "portal", false, "use the desktop screenshot portal instead of X11")
	fs.BoolVar(&c.interactive, "interactive", false, "let the portal ask which area to grab")
	fs.BoolVar(&c.list, "list", false, "list monitors and exit")
	fs.BoolVar(&c.toClipboard, "to-clipboard", false, "copy the grab to the clipboard instead of saving it")
	fs.BoolVar(&c.toClipboard, "to-clip", false, "copy the grab to the clipboard (alias)")
	fs.BoolVar(&c.shadow, "shadow", false, "apply a drop shadow to the grabbed image")
	fs.IntVar(&c.shadowRadius, "shadow-radius", defaults.Radius, "drop shadow blur radius in pixels")
	fs.StringVar(&c.shadowOffset, "shadow-offset", formatPoint(defaults.Offset), "drop shadow offset as dx,dy")
	fs.Float64Var(&c.shadowOpacity, "shadow-opacity", defaults.Opacity, "drop shadow opacity between 0 and 1")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if c.monitor != "" && c.rect != "" {
		return nil, fmt.Errorf("-monitor cannot be used with -rect")
	}
	if c.portal && (c.monitor != "" || c.rect != "") {
		return nil, fmt.Errorf("-portal cannot be used with -monitor or -rect")
	}
	if c.rect != "" {
		rect, err := grab.ParseRect(c.rect)
		if err != nil {
			return nil, err
		}
		c.region = rect
	}
	pt, err := parsePoint(c.shadowOffset)
	if err != nil {
		return nil, fmt.Errorf("invalid shadow offset: %w", err)
	}
	c.shadowPoint = pt
	return c, nil
}

func (c *grabCmd) Run() error {
	if c.list {
		return c.listMonitors()
	}
	m, err := c.grab()
	if err != nil {
		return fmt.Errorf("failed to grab %s: %w", c.describe(), err)
	}
	if c.shadow {
		s := effect.Shadow{
			Radius:  max(c.shadowRadius, 0),
			Offset:  c.shadowPoint,
			Opacity: min(max(c.shadowOpacity, 0), 1),
		}
		if m, _, err = s.Apply(m, c.activePalette.Background); err != nil {
			return err
		}
	}
	if img, err := raster.MatToImage(m); err == nil {
		c.notifyGrab(c.describe(), img)
	}
	if c.toClipboard {
		b, err := raster.ToDrawable(m)
		if err != nil {
			return err
		}
		if err := copyBufferFn(b); err != nil {
			return fmt.Errorf("copy grab to clipboard: %w", err)
		}
		fmt.Fprintf(os.Stderr, "copied %s to clipboard\n", c.describe())
		c.notifyCopy(c.describe())
		return nil
	}

	output := c.output
	if output == "" {
		output = filepath.Join(c.config.SaveDir, fmt.Sprintf("grab-%s.png", nowFn().Format("20060102-150405")))
	}
	if err := canvas.SaveMat(output, m); err != nil {
		return fmt.Errorf("write grab to %q: %w", output, err)
	}
	saved := output
	if abs, err := filepath.Abs(output); err == nil {
		saved = abs
	}
	fmt.Fprintf(os.Stderr, "saved %s\n", saved)
	c.notifySave(saved)
	return nil
}

// grab reads the requested area. A whole-screen X11 grab falls back to the
// portal on Wayland sessions.
func (c *grabCmd) grab() (*raster.Mat, error) {
	switch {
	case c.portal:
		return grabPortalFn(c.interactive)
	case c.rect != "":
		return grabRegionFn(c.region)
	case c.monitor != "":
		return grabMonitorFn(c.monitor)
	}
	m, err := grabScreenFn()
	if err != nil && !errors.Is(err, grab.ErrUnsupported) && os.Getenv("WAYLAND_DISPLAY") != "" {
		if pm, perr := grabPortalFn(c.interactive); perr == nil {
			return pm, nil
		}
	}
	return m, err
}

func (c *grabCmd) describe() string {
	switch {
	case c.portal:
		return "portal screenshot"
	case c.rect != "":
		return fmt.Sprintf("region %s", strings.TrimSpace(c.rect))
	case c.monitor != "":
		return fmt.Sprintf("monitor %s", strings.TrimSpace(c.monitor))
	}
	return "screen"
}

func (c *grabCmd) listMonitors() error {
	monitors, err := listMonitorFn()
	if err != nil {
		return fmt.Errorf("list monitors: %w", err)
	}
	for _, m := range monitors {
		primary := ""
		if m.Primary {
			primary = " (primary)"
		}
		fmt.Printf("%d\t%s\t%dx%d+%d+%d%s\n", m.Index, m.Name, m.Rect.Dx(), m.Rect.Dy(), m.Rect.Min.X, m.Rect.Min.Y, primary)
	}
	return nil
}
