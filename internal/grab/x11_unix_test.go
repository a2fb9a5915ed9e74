//go:build linux || freebsd || openbsd || netbsd || dragonfly

package grab

import (
	"testing"

	"github.com/jezek/xgb/xproto"

	"github.com/example/cvcanvas/internal/raster"
)

func TestXImageToMatDepth24(t *testing.T) {
	setup := &xproto.SetupInfo{PixmapFormats: []xproto.Format{{Depth: 24, BitsPerPixel: 32}}}
	reply := &xproto.GetImageReply{Depth: 24, Data: []byte{
		1, 2, 3, 0, 4, 5, 6, 0,
		7, 8, 9, 0, 10, 11, 12, 0,
	}}
	m, err := ximageToMat(setup, reply, 2, 2)
	if err != nil {
		t.Fatalf("ximageToMat: %v", err)
	}
	if m.Channels != 4 || m.Order != raster.OrderBGR {
		t.Fatalf("mat %+v", m)
	}
	if m.At(1, 1, 0) != 10 || m.At(1, 1, 3) != 255 {
		t.Fatalf("pixel (1,1) = %v,%v", m.At(1, 1, 0), m.At(1, 1, 3))
	}
	b, err := raster.ToDrawable(m)
	if err != nil {
		t.Fatalf("ToDrawable: %v", err)
	}
	if got := b.RGBAAt(0, 0); got.B != 1 || got.G != 2 || got.R != 3 {
		t.Fatalf("drawable pixel %+v", got)
	}
}

func TestXImageToMatRejectsShallowDepth(t *testing.T) {
	setup := &xproto.SetupInfo{PixmapFormats: []xproto.Format{{Depth: 16, BitsPerPixel: 16}}}
	reply := &xproto.GetImageReply{Depth: 16, Data: make([]byte, 8)}
	if _, err := ximageToMat(setup, reply, 2, 2); err == nil {
		t.Fatalf("16 bpp accepted")
	}
}
