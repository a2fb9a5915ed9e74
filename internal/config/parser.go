package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/cvcanvas/internal/palette"
)

// Parse reads configuration from an io.Reader.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	var section string
	var current *palette.Palette
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.ToLower(strings.TrimSuffix(strings.TrimPrefix(line, "["), "]"))
			current = nil
			if name, ok := strings.CutPrefix(section, "palette."); ok {
				current = palette.Default()
				current.Name = name
				cfg.Palettes[name] = current
			}
			continue
		}

		var parts []string
		if strings.Contains(line, "=") {
			parts = strings.SplitN(line, "=", 2)
		} else if strings.Contains(line, ":") {
			parts = strings.SplitN(line, ":", 2)
		} else {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(parts[0]))
		value := strings.TrimSpace(parts[1])
		if strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") && len(value) >= 2 {
			value = value[1 : len(value)-1]
		}

		var err error
		switch {
		case current != nil:
			err = palette.Set(current, key, value)
		case section == "":
			setRootField(cfg, key, value)
		case section == "canvas":
			err = setCanvasField(&cfg.Canvas, key, value)
		case section == "window":
			if key == "title" {
				cfg.Window.Title = value
			}
		case section == "notify":
			err = setNotifyField(&cfg.Notify, key, value)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d in section [%s]: %w", lineNo, section, err)
		}
	}

	return cfg, scanner.Err()
}

func setRootField(cfg *Config, key, value string) {
	switch key {
	case "sketch":
		cfg.Sketch = value
	case "palette":
		cfg.Palette = value
	case "save_dir":
		cfg.SaveDir = value
	}
}

func setCanvasField(c *Canvas, key, value string) error {
	if key == "background" {
		col, err := palette.ParseColor(value)
		if err != nil {
			return fmt.Errorf("background: %w", err)
		}
		c.Background = col
		return nil
	}
	var dst *int
	switch key {
	case "width":
		dst = &c.Width
	case "height":
		dst = &c.Height
	case "fps":
		dst = &c.FPS
	default:
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid integer for key %s: %w", key, err)
	}
	if n <= 0 {
		return fmt.Errorf("%s must be positive, got %d", key, n)
	}
	*dst = n
	return nil
}

func setNotifyField(n *Notify, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	switch key {
	case "grab":
		n.Grab = b
	case "save":
		n.Save = b
	case "copy":
		n.Copy = b
	}
	return nil
}
