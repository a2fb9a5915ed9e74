//go:build linux || freebsd || openbsd || netbsd || dragonfly

package grab

import (
	"fmt"
	"image"
	"strings"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"

	"github.com/example/cvcanvas/internal/raster"
)

type display struct {
	conn  *xgb.Conn
	setup *xproto.SetupInfo
	root  *xproto.ScreenInfo
}

func open() (*display, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect X server: %w", err)
	}
	setup := xproto.Setup(conn)
	if setup == nil {
		conn.Close()
		return nil, fmt.Errorf("xproto setup unavailable")
	}
	root := setup.DefaultScreen(conn)
	if root == nil {
		conn.Close()
		return nil, fmt.Errorf("xproto screen unavailable")
	}
	return &display{conn: conn, setup: setup, root: root}, nil
}

func (d *display) bounds() image.Rectangle {
	return image.Rect(0, 0, int(d.root.WidthInPixels), int(d.root.HeightInPixels))
}

func (d *display) grab(r image.Rectangle) (*raster.Mat, error) {
	r = r.Intersect(d.bounds())
	if r.Empty() {
		return nil, fmt.Errorf("grab %v: outside the screen", r)
	}
	reply, err := xproto.GetImage(d.conn, xproto.ImageFormatZPixmap, xproto.Drawable(d.root.Root),
		int16(r.Min.X), int16(r.Min.Y), uint16(r.Dx()), uint16(r.Dy()), 0xffffffff).Reply()
	if err != nil {
		return nil, fmt.Errorf("get image: %w", err)
	}
	return ximageToMat(d.setup, reply, r.Dx(), r.Dy())
}

// Screen grabs the whole root window.
func Screen() (*raster.Mat, error) {
	d, err := open()
	if err != nil {
		return nil, err
	}
	defer d.conn.Close()
	return d.grab(d.bounds())
}

// Region grabs part of the root window.
func Region(r image.Rectangle) (*raster.Mat, error) {
	d, err := open()
	if err != nil {
		return nil, err
	}
	defer d.conn.Close()
	return d.grab(r)
}

// Monitor grabs the monitor matched by selector.
func Monitor(selector string) (*raster.Mat, error) {
	d, err := open()
	if err != nil {
		return nil, err
	}
	defer d.conn.Close()
	monitors, err := d.monitors()
	if err != nil {
		return nil, err
	}
	mon, err := FindMonitor(monitors, selector)
	if err != nil {
		return nil, err
	}
	return d.grab(mon.Rect)
}

// ListMonitors returns the connected monitors reported by RandR.
func ListMonitors() ([]MonitorInfo, error) {
	d, err := open()
	if err != nil {
		return nil, err
	}
	defer d.conn.Close()
	return d.monitors()
}

func (d *display) monitors() ([]MonitorInfo, error) {
	if err := randr.Init(d.conn); err != nil {
		return nil, fmt.Errorf("init randr: %w", err)
	}
	res, err := randr.GetScreenResources(d.conn, d.root.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("randr screen resources: %w", err)
	}
	primary := randr.Output(0)
	if p, err := randr.GetOutputPrimary(d.conn, d.root.Root).Reply(); err == nil {
		primary = p.Output
	}
	var out []MonitorInfo
	for _, output := range res.Outputs {
		info, err := randr.GetOutputInfo(d.conn, output, res.ConfigTimestamp).Reply()
		if err != nil || info.Connection != randr.ConnectionConnected || info.Crtc == 0 {
			continue
		}
		crtc, err := randr.GetCrtcInfo(d.conn, info.Crtc, res.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		out = append(out, MonitorInfo{
			Index:   len(out),
			Name:    strings.TrimSpace(string(info.Name)),
			Rect:    image.Rect(int(crtc.X), int(crtc.Y), int(crtc.X)+int(crtc.Width), int(crtc.Y)+int(crtc.Height)),
			Primary: output == primary,
		})
	}
	if len(out) == 0 {
		return nil, errNoMonitors
	}
	return out, nil
}

// ximageToMat wraps ZPixmap data as an 8-bit BGR Mat. 32 bpp data becomes
// four channels; the padding byte of depth 24 visuals is forced opaque.
func ximageToMat(setup *xproto.SetupInfo, reply *xproto.GetImageReply, width, height int) (*raster.Mat, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("grab has empty geometry")
	}
	if reply == nil || len(reply.Data) == 0 {
		return nil, fmt.Errorf("grab pixels: empty image data")
	}
	bitsPerPixel := 0
	for _, format := range setup.PixmapFormats {
		if format.Depth == reply.Depth {
			bitsPerPixel = int(format.BitsPerPixel)
			break
		}
	}
	bpp := bitsPerPixel / 8
	if bpp != 3 && bpp != 4 {
		return nil, fmt.Errorf("unsupported grab pixel format depth %d, %d bpp", reply.Depth, bitsPerPixel)
	}
	stride := len(reply.Data) / height
	if stride*height != len(reply.Data) || stride < width*bpp {
		return nil, fmt.Errorf("grab pixels: unexpected stride")
	}
	m, err := raster.NewMat(width, height, bpp, raster.Depth8U)
	if err != nil {
		return nil, err
	}
	for y := 0; y < height; y++ {
		row := m.Data[y*m.Stride : (y+1)*m.Stride]
		copy(row, reply.Data[y*stride:y*stride+width*bpp])
		if bpp == 4 && reply.Depth != 32 {
			for x := 3; x < len(row); x += 4 {
				row[x] = 0xff
			}
		}
	}
	return m, nil
}
