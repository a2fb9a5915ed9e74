// Package clipboard moves canvas frames to and from the system clipboard.
package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/example/cvcanvas/internal/imageio"
	"github.com/example/cvcanvas/internal/raster"
)

var (
	errNoDisplay   = errors.New("clipboard initialization requires DISPLAY or WAYLAND_DISPLAY")
	errNoImage     = errors.New("clipboard does not contain image data")
	errUnsupported = errors.New("clipboard image operations are not supported on this platform")
)

// backend is the platform clipboard. read returns encoded image data.
type backend interface {
	write(img image.Image) error
	read() ([]byte, error)
}

var (
	initOnce sync.Once
	initErr  error
	active   backend
)

func ensureInit() error {
	initOnce.Do(func() {
		if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
			initErr = errNoDisplay
			return
		}
		active, initErr = newBackend()
	})
	return initErr
}

// WriteImage publishes img to the clipboard.
func WriteImage(img image.Image) error {
	if err := ensureInit(); err != nil {
		return err
	}
	return active.write(img)
}

// ReadImage decodes the clipboard image.
func ReadImage() (image.Image, error) {
	if err := ensureInit(); err != nil {
		return nil, err
	}
	data, err := active.read()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errNoImage
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}

// WriteBuffer publishes a canvas buffer to the clipboard.
func WriteBuffer(b *raster.Buffer) error {
	if err := WriteImage(b.Image()); err != nil {
		return fmt.Errorf("copy canvas to clipboard: %w", err)
	}
	return nil
}

// ReadMat returns the clipboard image as a Mat ready for blitting.
func ReadMat() (*raster.Mat, error) {
	img, err := ReadImage()
	if err != nil {
		return nil, fmt.Errorf("read clipboard image: %w", err)
	}
	return raster.FromImage(img), nil
}

func encode(img image.Image, ext string) ([]byte, error) {
	var buf bytes.Buffer
	if err := imageio.Encode(&buf, ext, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
