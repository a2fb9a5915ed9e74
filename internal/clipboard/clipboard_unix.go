//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && cgo

package clipboard

import (
	"image"

	"golang.design/x/clipboard"
)

// systemClipboard delegates to the native clipboard library.
type systemClipboard struct{}

func newBackend() (backend, error) {
	if err := clipboard.Init(); err != nil {
		return nil, err
	}
	return systemClipboard{}, nil
}

func (systemClipboard) write(img image.Image) error {
	data, err := encode(img, ".png")
	if err != nil {
		return err
	}
	clipboard.Write(clipboard.FmtImage, data)
	return nil
}

func (systemClipboard) read() ([]byte, error) {
	return clipboard.Read(clipboard.FmtImage), nil
}
