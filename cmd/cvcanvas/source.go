package main

import (
	"fmt"
	"image"
	"os"
	"strconv"
	"strings"

	"github.com/example/cvcanvas/internal/grab"
	"github.com/example/cvcanvas/internal/imageio"
	"github.com/example/cvcanvas/internal/raster"
	"github.com/example/cvcanvas/internal/sketch"
)

var (
	grabScreenFn  = grab.Screen
	grabRegionFn  = grab.Region
	grabMonitorFn = grab.Monitor
	grabPortalFn  = grab.Portal
	listMonitorFn = grab.ListMonitors
)

// frameSource builds the Source of a sketch environment. "screen" grabs the
// top-left corner of the display each frame, anything else names an image
// file that is read once.
func frameSource(spec string, width, height int) (func() (*raster.Mat, error), error) {
	switch strings.TrimSpace(spec) {
	case "", "none":
		return nil, nil
	case "screen":
		r := image.Rect(0, 0, width, height)
		return func() (*raster.Mat, error) { return grabRegionFn(r) }, nil
	}
	m, err := imageio.Load(spec)
	if err != nil {
		return nil, fmt.Errorf("frame source: %w", err)
	}
	return func() (*raster.Mat, error) { return m, nil }, nil
}

// sketchEnv merges command line geometry with the configured defaults.
func (r *root) sketchEnv(width, height, fps int) sketch.Env {
	c := r.config.Canvas
	return sketch.Env{
		Width:   firstPositive(width, c.Width),
		Height:  firstPositive(height, c.Height),
		FPS:     firstPositive(fps, c.FPS),
		Palette: r.activePalette,
	}
}

// sketchName applies CLI > CVCANVAS_SKETCH > config precedence.
func (r *root) sketchName(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv("CVCANVAS_SKETCH"); v != "" {
		return v
	}
	return r.config.Sketch
}

func lookupSketch(name string) (sketch.Sketch, error) {
	sk, ok := sketch.Lookup(name)
	if !ok {
		names := make([]string, 0)
		for _, s := range sketch.All() {
			names = append(names, s.Name)
		}
		return sketch.Sketch{}, fmt.Errorf("unknown sketch %q (available: %s)", name, strings.Join(names, ", "))
	}
	return sk, nil
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

func parsePoint(val string) (image.Point, error) {
	parts := strings.Split(val, ",")
	if len(parts) != 2 {
		return image.Point{}, fmt.Errorf("invalid point %q", val)
	}
	vals := make([]int, 2)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Point{}, fmt.Errorf("invalid point %q", val)
		}
		vals[i] = v
	}
	return image.Pt(vals[0], vals[1]), nil
}

func formatPoint(pt image.Point) string {
	return fmt.Sprintf("%d,%d", pt.X, pt.Y)
}
