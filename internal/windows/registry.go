// Package windows keeps named display surfaces for showing foreign images
// without a canvas.
package windows

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/example/cvcanvas/internal/canvas"
	"github.com/example/cvcanvas/internal/raster"
)

// ErrExists is returned when creating a window whose name is taken.
var ErrExists = errors.New("window already exists")

// Factory opens a surface for the named window.
type Factory func(name string) (canvas.Surface, error)

type entry struct {
	surface canvas.Surface
	onClose func()
}

// Registry maps window names to surfaces.
type Registry struct {
	mu      sync.Mutex
	factory Factory
	windows map[string]*entry
}

// NewRegistry returns an empty registry that opens surfaces with f.
func NewRegistry(f Factory) *Registry {
	return &Registry{factory: f, windows: map[string]*entry{}}
}

// Create opens a window called name.
func (r *Registry) Create(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.windows[name]; ok {
		return fmt.Errorf("create %q: %w", name, ErrExists)
	}
	s, err := r.factory(name)
	if err != nil {
		return fmt.Errorf("create %q: %w", name, err)
	}
	r.windows[name] = &entry{surface: s}
	return nil
}

// SetOnClose registers a callback run when the window is closed or
// destroyed. It reports whether the window exists.
func (r *Registry) SetOnClose(name string, fn func()) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.windows[name]
	if ok {
		e.onClose = fn
	}
	return ok
}

// Show displays m in the named window, creating it if needed. It reports
// whether the image was shown.
func (r *Registry) Show(name string, m *raster.Mat) bool {
	img, err := raster.MatToImage(m)
	if err != nil {
		log.Printf("show %s: %v", name, err)
		return false
	}
	r.mu.Lock()
	e, ok := r.windows[name]
	r.mu.Unlock()
	if !ok {
		if err := r.Create(name); err != nil && !errors.Is(err, ErrExists) {
			log.Printf("show %s: %v", name, err)
			return false
		}
		r.mu.Lock()
		e = r.windows[name]
		r.mu.Unlock()
	}
	if err := e.surface.Resize(m.Width, m.Height); err != nil {
		log.Printf("show %s: %v", name, err)
		return false
	}
	if err := e.surface.Present(img); err != nil {
		log.Printf("show %s: %v", name, err)
		return false
	}
	return true
}

// Has reports whether a window called name is open.
func (r *Registry) Has(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.windows[name]
	return ok
}

// Len returns the number of open windows.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.windows)
}

// Destroy removes the window and runs its close callback.
func (r *Registry) Destroy(name string) bool {
	r.mu.Lock()
	e, ok := r.windows[name]
	delete(r.windows, name)
	r.mu.Unlock()
	if !ok {
		return false
	}
	closeEntry(e)
	return true
}

// DestroyAll removes every window.
func (r *Registry) DestroyAll() {
	r.mu.Lock()
	all := r.windows
	r.windows = map[string]*entry{}
	r.mu.Unlock()
	for _, e := range all {
		closeEntry(e)
	}
}

func closeEntry(e *entry) {
	if c, ok := e.surface.(interface{ Close() }); ok {
		c.Close()
	}
	if e.onClose != nil {
		e.onClose()
	}
}
