package main

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/exp/shiny/screen"

	"github.com/example/cvcanvas/internal/imageio"
	"github.com/example/cvcanvas/internal/raster"
)

// newTestRoot isolates the config and environment lookups of a root.
func newTestRoot(t *testing.T) *root {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("CVCANVAS_PALETTE", "")
	t.Setenv("CVCANVAS_SKETCH", "")
	t.Setenv("WAYLAND_DISPLAY", "")
	chdirForTest(t, dir)
	return newRoot()
}

func solidMat(t *testing.T, w, h int, c raster.Color) *raster.Mat {
	t.Helper()
	m, err := raster.NewMat(w, h, 3, raster.Depth8U)
	if err != nil {
		t.Fatalf("NewMat: %v", err)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.Set(x, y, 0, float64(c.B))
			m.Set(x, y, 1, float64(c.G))
			m.Set(x, y, 2, float64(c.R))
		}
	}
	return m
}

func loadBuffer(t *testing.T, path string) *raster.Buffer {
	t.Helper()
	m, err := imageio.Load(path)
	if err != nil {
		t.Fatalf("load %s: %v", path, err)
	}
	b, err := raster.ToDrawable(m)
	if err != nil {
		t.Fatalf("ToDrawable: %v", err)
	}
	return b
}

func TestRootRequiresCommand(t *testing.T) {
	r := newTestRoot(t)
	err := r.Run(nil)
	var uerr *UsageError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected usage error, got %v", err)
	}
	help := uerr.Error()
	for _, want := range []string{"Commands:", "bounce", "-notify-grab"} {
		if !strings.Contains(help, want) {
			t.Errorf("help text missing %q:\n%s", want, help)
		}
	}
}

func TestRootRejectsUnknownCommand(t *testing.T) {
	r := newTestRoot(t)
	var uerr *UsageError
	if err := r.Run([]string{"paint"}); !errors.As(err, &uerr) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestSubcommandHelpRenders(t *testing.T) {
	for _, args := range [][]string{{"show"}, {"compose"}, {"config"}} {
		err := newTestRoot(t).Run(args)
		if err == nil {
			t.Fatalf("%v: expected usage error", args)
		}
		if !strings.Contains(err.Error(), "Usage: cvcanvas "+args[0]) {
			t.Errorf("%v: help = %q", args, err.Error())
		}
	}
}

func TestGrabSavesOutput(t *testing.T) {
	orig := grabScreenFn
	t.Cleanup(func() { grabScreenFn = orig })
	grabScreenFn = func() (*raster.Mat, error) {
		return solidMat(t, 4, 3, raster.RGB(10, 20, 30)), nil
	}

	r := newTestRoot(t)
	out := filepath.Join(t.TempDir(), "g.bmp")
	if err := r.Run([]string{"grab", "-output", out}); err != nil {
		t.Fatalf("grab: %v", err)
	}
	b := loadBuffer(t, out)
	if b.Width != 4 || b.Height != 3 {
		t.Fatalf("size %dx%d", b.Width, b.Height)
	}
	if got := b.RGBAAt(3, 2); got.R != 10 || got.G != 20 || got.B != 30 {
		t.Fatalf("pixel %+v", got)
	}
}

func TestGrabRegionErrorIsWrapped(t *testing.T) {
	sentinel := errors.New("boom")
	orig := grabRegionFn
	t.Cleanup(func() { grabRegionFn = orig })
	var got image.Rectangle
	grabRegionFn = func(r image.Rectangle) (*raster.Mat, error) {
		got = r
		return nil, sentinel
	}

	r := newTestRoot(t)
	err := r.Run([]string{"grab", "-rect", "1,2,3,4"})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped sentinel, got %v", err)
	}
	if !strings.Contains(err.Error(), "region 1,2,3,4") {
		t.Fatalf("error %q should name the region", err)
	}
	if got != image.Rect(1, 2, 4, 6) {
		t.Fatalf("grabbed %v", got)
	}
}

func TestGrabToClipboard(t *testing.T) {
	origGrab, origCopy := grabMonitorFn, copyBufferFn
	t.Cleanup(func() { grabMonitorFn, copyBufferFn = origGrab, origCopy })
	var selector string
	grabMonitorFn = func(sel string) (*raster.Mat, error) {
		selector = sel
		return solidMat(t, 5, 2, raster.Gray(77)), nil
	}
	var copied *raster.Buffer
	copyBufferFn = func(b *raster.Buffer) error {
		copied = b
		return nil
	}

	r := newTestRoot(t)
	if err := r.Run([]string{"grab", "-monitor", "primary", "-to-clipboard"}); err != nil {
		t.Fatalf("grab: %v", err)
	}
	if selector != "primary" {
		t.Fatalf("selector %q", selector)
	}
	if copied == nil || copied.Width != 5 || copied.Height != 2 || copied.RGBAAt(0, 0).G != 77 {
		t.Fatalf("copied buffer %+v", copied)
	}
}

func TestGrabRejectsConflictingTargets(t *testing.T) {
	r := newTestRoot(t)
	if err := r.Run([]string{"grab", "-monitor", "0", "-rect", "0,0,1,1"}); err == nil {
		t.Fatal("expected error for -monitor with -rect")
	}
	if err := r.Run([]string{"grab", "-portal", "-rect", "0,0,1,1"}); err == nil {
		t.Fatal("expected error for -portal with -rect")
	}
}

func TestRenderWritesSketchFrame(t *testing.T) {
	r := newTestRoot(t)
	out := filepath.Join(t.TempDir(), "frame.png")
	if err := r.Run([]string{"render", "-sketch", "bounce", "-frames", "2", "-width", "40", "-height", "30", "-output", out}); err != nil {
		t.Fatalf("render: %v", err)
	}
	b := loadBuffer(t, out)
	if b.Width != 40 || b.Height != 30 {
		t.Fatalf("size %dx%d", b.Width, b.Height)
	}
	if got := b.RGBAAt(2, 2); got.R != 255 || got.G != 0 {
		t.Fatalf("square pixel %+v, want red", got)
	}
}

func TestRenderUnknownSketch(t *testing.T) {
	r := newTestRoot(t)
	err := r.Run([]string{"render", "-sketch", "nope"})
	if err == nil || !strings.Contains(err.Error(), "unknown sketch") {
		t.Fatalf("expected unknown sketch error, got %v", err)
	}
}

func TestRunOpensWindowThroughSeam(t *testing.T) {
	orig := runScreenFn
	t.Cleanup(func() { runScreenFn = orig })
	calls := 0
	runScreenFn = func(func(screen.Screen)) { calls++ }

	r := newTestRoot(t)
	if err := r.Run([]string{"run", "-source", "none", "bounce"}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if calls != 1 {
		t.Fatalf("runScreenFn called %d times", calls)
	}

	if err := newTestRoot(t).Run([]string{"run", "-sketch", "nope"}); err == nil {
		t.Fatal("expected unknown sketch error")
	}
	if calls != 1 {
		t.Fatalf("window opened for an unknown sketch")
	}
}

func TestComposeLaysOutImages(t *testing.T) {
	dir := t.TempDir()
	red := filepath.Join(dir, "red.png")
	blue := filepath.Join(dir, "blue.png")
	for path, col := range map[string]raster.Color{red: raster.RGB(255, 0, 0), blue: raster.RGB(0, 0, 255)} {
		img, _ := raster.MatToImage(solidMat(t, 10, 10, col))
		if err := imageio.Save(path, img); err != nil {
			t.Fatalf("save %s: %v", path, err)
		}
	}

	r := newTestRoot(t)
	out := filepath.Join(dir, "out.png")
	if err := r.Run([]string{"compose", "-gap", "5", "-background", "white", "-output", out, red, blue}); err != nil {
		t.Fatalf("compose: %v", err)
	}
	b := loadBuffer(t, out)
	if b.Width != 25 || b.Height != 10 {
		t.Fatalf("size %dx%d, want 25x10", b.Width, b.Height)
	}
	if got := b.RGBAAt(5, 5); got.R != 255 || got.B != 0 {
		t.Errorf("left pixel %+v, want red", got)
	}
	if got := b.RGBAAt(12, 5); got.R != 255 || got.G != 255 || got.B != 255 {
		t.Errorf("gap pixel %+v, want white", got)
	}
	if got := b.RGBAAt(20, 5); got.B != 255 || got.R != 0 {
		t.Errorf("right pixel %+v, want blue", got)
	}
}

func TestComposeRejectsUnknownOutput(t *testing.T) {
	r := newTestRoot(t)
	out := filepath.Join(t.TempDir(), "out.xyz")
	err := r.Run([]string{"compose", "-output", out, "missing.png"})
	if !errors.Is(err, imageio.ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestPalettePrecedence(t *testing.T) {
	r := newTestRoot(t)
	t.Setenv("CVCANVAS_PALETTE", "night")
	if err := r.Run([]string{"-palette", "paper", "sketches"}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if r.activePalette.Name != "paper" {
		t.Fatalf("flag palette = %q, want paper", r.activePalette.Name)
	}

	r = newRoot()
	if err := r.Run([]string{"sketches"}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if r.activePalette.Name != "night" {
		t.Fatalf("env palette = %q, want night", r.activePalette.Name)
	}
}

func TestConfigSaveWritesDefaultPath(t *testing.T) {
	r := newTestRoot(t)
	if err := r.Run([]string{"config", "save"}); err != nil {
		t.Fatalf("config save: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "cvcanvas", "config.rc"))
	if err != nil {
		t.Fatalf("read saved config: %v", err)
	}
	if !strings.Contains(string(data), "sketch = bounce") {
		t.Fatalf("saved config:\n%s", data)
	}
}

func TestParsePoint(t *testing.T) {
	if pt, err := parsePoint(" 3, -4"); err != nil || pt != image.Pt(3, -4) {
		t.Fatalf("parsePoint = %v, %v", pt, err)
	}
	for _, bad := range []string{"", "1", "1,2,3", "a,b"} {
		if _, err := parsePoint(bad); err == nil {
			t.Errorf("parsePoint(%q) should fail", bad)
		}
	}
}

// chdirForTest changes the working directory for the duration of the test
// and restores it on cleanup (equivalent of testing.T.Chdir, Go 1.24+).
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
