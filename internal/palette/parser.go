package palette

import (
	"bufio"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/example/cvcanvas/internal/raster"
)

var colorType = reflect.TypeOf(raster.Color{})

// Parse reads a palette definition of "Key: colour" lines. Keys not in
// Palette are ignored. Missing keys keep their Default value.
func Parse(r io.Reader) (*Palette, error) {
	p := Default()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		if err := Set(p, strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])); err != nil {
			return nil, err
		}
	}
	return p, scanner.Err()
}

// Set assigns one field by case-insensitive name.
func Set(p *Palette, key, value string) error {
	if strings.EqualFold(key, "Name") {
		p.Name = value
		return nil
	}
	val := reflect.ValueOf(p).Elem()
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if !strings.EqualFold(f.Name, key) || f.Type != colorType {
			continue
		}
		c, err := ParseColor(value)
		if err != nil {
			return fmt.Errorf("invalid color for key %s: %w", key, err)
		}
		val.Field(i).Set(reflect.ValueOf(c))
		return nil
	}
	return nil
}

// Fields returns the colour fields of p in declaration order.
func Fields(p *Palette) []Field {
	val := reflect.ValueOf(p).Elem()
	typ := val.Type()
	var out []Field
	for i := 0; i < typ.NumField(); i++ {
		if typ.Field(i).Type == colorType {
			out = append(out, Field{Name: typ.Field(i).Name, Color: val.Field(i).Interface().(raster.Color)})
		}
	}
	return out
}

// Field is a named palette colour.
type Field struct {
	Name  string
	Color raster.Color
}

// ParseColor accepts an SVG colour name, #RRGGBB or #RRGGBBAA.
func ParseColor(s string) (raster.Color, error) {
	spec := strings.ToLower(strings.TrimSpace(s))
	if spec == "" {
		return raster.Color{}, fmt.Errorf("color cannot be empty")
	}
	if c, ok := colornames.Map[spec]; ok {
		return raster.RGBA(int(c.R), int(c.G), int(c.B), int(c.A)), nil
	}
	if !strings.HasPrefix(spec, "#") || (len(spec) != 7 && len(spec) != 9) {
		return raster.Color{}, fmt.Errorf("invalid color %q", s)
	}
	var v [4]int
	v[3] = 255
	for i := 0; i*2+1 < len(spec); i++ {
		n, err := strconv.ParseUint(spec[1+i*2:3+i*2], 16, 8)
		if err != nil {
			return raster.Color{}, fmt.Errorf("invalid color %q", s)
		}
		v[i] = int(n)
	}
	return raster.RGBA(v[0], v[1], v[2], v[3]), nil
}

// Hex formats c as #RRGGBB, or #RRGGBBAA when it is not opaque.
func Hex(c raster.Color) string {
	bgr := c.BGR()
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", bgr[2], bgr[1], bgr[0])
	}
	a := c.A
	if a < 0 {
		a = 0
	} else if a > 255 {
		a = 255
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", bgr[2], bgr[1], bgr[0], a)
}
