package palette

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:embed defaults/*.palette
var embedded embed.FS

// Loader finds palettes by name or path.
type Loader struct {
	ConfigDir string
	SystemDir string
	// Inline holds palettes defined in the configuration file.
	Inline map[string]*Palette
}

// NewLoader creates a Loader with the standard search directories.
func NewLoader() *Loader {
	home, _ := os.UserHomeDir()
	return &Loader{
		ConfigDir: filepath.Join(home, ".config", "cvcanvas", "palettes"),
		SystemDir: "/usr/share/cvcanvas/palettes",
	}
}

// Load resolves name in order: existing file path, inline palettes,
// embedded defaults, ConfigDir, SystemDir. An empty name yields Default.
func (l *Loader) Load(name string) (*Palette, error) {
	if name == "" {
		return Default(), nil
	}
	if _, err := os.Stat(name); err == nil {
		return parseFile(name)
	}
	if p, ok := l.Inline[name]; ok {
		cp := *p
		return &cp, nil
	}
	filename := name
	if !strings.HasSuffix(filename, ".palette") {
		filename += ".palette"
	}
	if f, err := embedded.Open("defaults/" + filename); err == nil {
		defer f.Close()
		return Parse(f)
	}
	for _, dir := range []string{l.ConfigDir, l.SystemDir} {
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, filename)
		if _, err := os.Stat(path); err == nil {
			return parseFile(path)
		}
	}
	return nil, fmt.Errorf("palette %q not found", name)
}

// Names lists the embedded palettes.
func Names() []string {
	entries, _ := embedded.ReadDir("defaults")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".palette"))
	}
	return names
}

func parseFile(path string) (*Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	p, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("palette %s: %w", path, err)
	}
	return p, nil
}
