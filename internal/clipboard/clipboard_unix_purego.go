//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && !cgo

package clipboard

import (
	"errors"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// readTimeout bounds how long a selection owner may take to answer.
const readTimeout = 2 * time.Second

// offered maps the image targets served by the selection owner to the
// extension used to encode them. The first entry is preferred for reads.
var offered = []struct{ target, ext string }{
	{"image/png", ".png"},
	{"image/bmp", ".bmp"},
}

func newBackend() (backend, error) {
	return newSelectionOwner()
}

// selectionOwner holds the CLIPBOARD selection from a hidden window and
// encodes the current frame on demand for each requested target.
type selectionOwner struct {
	conn  *xgb.Conn
	win   xproto.Window
	atoms map[string]xproto.Atom

	mu      sync.Mutex
	frame   image.Image
	encoded map[xproto.Atom][]byte
}

func newSelectionOwner() (*selectionOwner, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("x11 connect: %w", err)
	}
	screen := xproto.Setup(conn).DefaultScreen(conn)
	win, err := xproto.NewWindowId(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	mask := []uint32{xproto.EventMaskPropertyChange | xproto.EventMaskStructureNotify}
	if err := xproto.CreateWindowChecked(conn, screen.RootDepth, win, screen.Root, 0, 0, 1, 1, 0,
		xproto.WindowClassInputOutput, screen.RootVisual, xproto.CwEventMask, mask).Check(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("clipboard window: %w", err)
	}
	names := []string{"CLIPBOARD", "TARGETS", "CVCANVAS_CLIPBOARD"}
	for _, o := range offered {
		names = append(names, o.target)
	}
	atoms, err := intern(conn, names)
	if err != nil {
		xproto.DestroyWindow(conn, win)
		conn.Close()
		return nil, err
	}
	o := &selectionOwner{conn: conn, win: win, atoms: atoms}
	go o.serve()
	return o, nil
}

func intern(conn *xgb.Conn, names []string) (map[string]xproto.Atom, error) {
	atoms := make(map[string]xproto.Atom, len(names))
	for _, name := range names {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			return nil, fmt.Errorf("intern %s: %w", name, err)
		}
		atoms[name] = reply.Atom
	}
	return atoms, nil
}

func (o *selectionOwner) write(img image.Image) error {
	o.mu.Lock()
	o.frame = img
	o.encoded = map[xproto.Atom][]byte{}
	o.mu.Unlock()
	return xproto.SetSelectionOwnerChecked(o.conn, o.win, o.atoms["CLIPBOARD"], xproto.TimeCurrentTime).Check()
}

func (o *selectionOwner) serve() {
	for {
		ev, err := o.conn.WaitForEvent()
		if err != nil {
			log.Printf("clipboard: %v", err)
			continue
		}
		if ev == nil {
			return
		}
		switch e := ev.(type) {
		case xproto.SelectionRequestEvent:
			o.answer(e)
		case xproto.SelectionClearEvent:
			o.mu.Lock()
			o.frame, o.encoded = nil, nil
			o.mu.Unlock()
		}
	}
}

// payload returns the property type, format and bytes for target, or ok
// false when the target cannot be served.
func (o *selectionOwner) payload(target xproto.Atom) (typ xproto.Atom, format byte, data []byte, ok bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if target == o.atoms["TARGETS"] {
		list := []xproto.Atom{o.atoms["TARGETS"]}
		if o.frame != nil {
			for _, of := range offered {
				list = append(list, o.atoms[of.target])
			}
		}
		return xproto.AtomAtom, 32, atomBytes(list), true
	}
	if o.frame == nil {
		return 0, 0, nil, false
	}
	for _, of := range offered {
		if o.atoms[of.target] != target {
			continue
		}
		if cached, hit := o.encoded[target]; hit {
			return target, 8, cached, true
		}
		b, err := encode(o.frame, of.ext)
		if err != nil {
			log.Printf("clipboard: encode %s: %v", of.target, err)
			return 0, 0, nil, false
		}
		o.encoded[target] = b
		return target, 8, b, true
	}
	return 0, 0, nil, false
}

func (o *selectionOwner) answer(e xproto.SelectionRequestEvent) {
	prop := e.Property
	if prop == xproto.AtomNone {
		prop = e.Target
	}
	if typ, format, data, ok := o.payload(e.Target); ok {
		n := uint32(len(data))
		if format == 32 {
			n /= 4
		}
		xproto.ChangeProperty(o.conn, xproto.PropModeReplace, e.Requestor, prop, typ, format, n, data)
	} else {
		prop = xproto.AtomNone
	}
	reply := xproto.SelectionNotifyEvent{
		Time:      e.Time,
		Requestor: e.Requestor,
		Selection: e.Selection,
		Target:    e.Target,
		Property:  prop,
	}
	xproto.SendEvent(o.conn, false, e.Requestor, 0, string(reply.Bytes()))
}

// read converts the selection to the preferred image target on a fresh
// connection, so it also works while this process owns the selection.
func (o *selectionOwner) read() ([]byte, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("x11 connect: %w", err)
	}
	defer conn.Close()

	screen := xproto.Setup(conn).DefaultScreen(conn)
	win, err := xproto.NewWindowId(conn)
	if err != nil {
		return nil, err
	}
	if err := xproto.CreateWindowChecked(conn, 0, win, screen.Root, 0, 0, 1, 1, 0,
		xproto.WindowClassInputOnly, 0, xproto.CwEventMask, []uint32{xproto.EventMaskPropertyChange}).Check(); err != nil {
		return nil, err
	}
	defer xproto.DestroyWindow(conn, win)

	prop := o.atoms["CVCANVAS_CLIPBOARD"]
	target := o.atoms[offered[0].target]
	if err := xproto.ConvertSelectionChecked(conn, win, o.atoms["CLIPBOARD"], target, prop, xproto.TimeCurrentTime).Check(); err != nil {
		return nil, err
	}

	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		for {
			ev, err := conn.WaitForEvent()
			if ev == nil && err == nil {
				done <- result{err: errors.New("x11 connection closed")}
				return
			}
			if err != nil {
				continue
			}
			e, ok := ev.(xproto.SelectionNotifyEvent)
			if !ok {
				continue
			}
			if e.Property == xproto.AtomNone {
				done <- result{err: errNoImage}
				return
			}
			reply, perr := xproto.GetProperty(conn, true, win, prop, xproto.GetPropertyTypeAny, 0, (1<<31)-1).Reply()
			if perr != nil {
				done <- result{err: perr}
				return
			}
			done <- result{data: append([]byte(nil), reply.Value...)}
			return
		}
	}()
	select {
	case r := <-done:
		return r.data, r.err
	case <-time.After(readTimeout):
		return nil, errors.New("clipboard owner did not answer")
	}
}

func atomBytes(atoms []xproto.Atom) []byte {
	buf := make([]byte, len(atoms)*4)
	for i, a := range atoms {
		xgb.Put32(buf[i*4:], uint32(a))
	}
	return buf
}
