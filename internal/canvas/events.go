package canvas

import "image"

// Device identifies the origin of an input event.
type Device int

const (
	DeviceKey Device = iota
	DeviceMouse
)

// Action is what happened on a device.
type Action int

const (
	Press Action = iota
	Release
	Drag
	Type
)

// KeyEscape closes the canvas when pressed.
const KeyEscape rune = 27

// Event is a raw input record delivered by a surface.
type Event struct {
	Device Device
	Action Action
	Key    rune
	X, Y   int
}

// Dispatch records the event and runs the matching hook with exclusive
// access to the canvas. Pressing Escape closes the canvas instead. Events
// arriving after Close are dropped.
func (c *Canvas) Dispatch(ev Event) {
	select {
	case <-c.done:
		return
	default:
	}
	if ev.Device == DeviceKey && ev.Action == Press && ev.Key == KeyEscape {
		c.Close()
		return
	}
	c.acquire()
	defer c.release()

	var hook func(*Canvas)
	switch ev.Device {
	case DeviceKey:
		c.key = ev.Key
		switch ev.Action {
		case Press:
			hook = c.hooks.KeyPressed
		case Release:
			hook = c.hooks.KeyReleased
		case Type:
			hook = c.hooks.KeyTyped
		}
	case DeviceMouse:
		c.mouse = image.Pt(ev.X, ev.Y)
		switch ev.Action {
		case Press:
			hook = c.hooks.MousePressed
		case Release:
			hook = c.hooks.MouseReleased
		case Drag:
			hook = c.hooks.MouseDragged
		}
	}
	if hook != nil {
		hook(c)
	}
}
