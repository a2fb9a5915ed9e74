//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package grab

import (
	"image"

	"github.com/example/cvcanvas/internal/raster"
)

func Screen() (*raster.Mat, error) { return nil, ErrUnsupported }

func Region(image.Rectangle) (*raster.Mat, error) { return nil, ErrUnsupported }

func Monitor(string) (*raster.Mat, error) { return nil, ErrUnsupported }

func ListMonitors() ([]MonitorInfo, error) { return nil, ErrUnsupported }

func Portal(bool) (*raster.Mat, error) { return nil, ErrUnsupported }
