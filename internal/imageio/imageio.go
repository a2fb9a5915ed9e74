// Package imageio loads and saves images chosen by file extension.
package imageio

import (
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/example/cvcanvas/internal/raster"
)

// ErrUnknownFormat is returned for file extensions with no encoder.
var ErrUnknownFormat = errors.New("unknown image format")

// JPEGQuality is used for .jpg and .jpeg output.
const JPEGQuality = 95

// Load decodes the image at path into a Mat. Any format registered with
// the image package is accepted, including webp.
func Load(path string) (*raster.Mat, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image %q: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			log.Printf("close %s: %v", path, cerr)
		}
	}()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %q: %w", path, err)
	}
	return raster.FromImage(img), nil
}

// Encode writes img to w in the format named by ext (with or without the
// leading dot).
func Encode(w io.Writer, ext string, img image.Image) error {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "png":
		return png.Encode(w, img)
	case "jpg", "jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
	case "gif":
		return gif.Encode(w, img, nil)
	case "bmp":
		return bmp.Encode(w, img)
	case "tif", "tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
	return fmt.Errorf("%q: %w", ext, ErrUnknownFormat)
}

// Supported reports whether Save can write files with path's extension.
func Supported(path string) bool {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "png", "jpg", "jpeg", "gif", "bmp", "tif", "tiff":
		return true
	}
	return false
}

// Save writes img to path, choosing the encoder from the extension.
func Save(path string, img image.Image) error {
	if !Supported(path) {
		return fmt.Errorf("save %q: %w", path, ErrUnknownFormat)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output %q: %w", path, err)
	}
	if err := Encode(f, filepath.Ext(path), img); err != nil {
		f.Close()
		return fmt.Errorf("write image to %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %q: %w", path, err)
	}
	return nil
}
