package main

import (
	"flag"
	"fmt"

	"github.com/example/cvcanvas/internal/palette"
	"github.com/example/cvcanvas/internal/sketch"
)

type sketchesCmd struct {
	*root
	fs *flag.FlagSet
}

func (c *sketchesCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseSketchesCmd(args []string, r *root) (*sketchesCmd, error) {
	fs := flag.NewFlagSet("sketches", flag.ExitOnError)
	c := &sketchesCmd{root: r.subcommand("sketches"), fs: fs}
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *sketchesCmd) Run() error {
	for _, s := range sketch.All() {
		fmt.Printf("%-10s %s\n", s.Name, s.Description)
	}
	return nil
}

type palettesCmd struct {
	*root
	fs *flag.FlagSet
}

func (c *palettesCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parsePalettesCmd(args []string, r *root) (*palettesCmd, error) {
	fs := flag.NewFlagSet("palettes", flag.ExitOnError)
	c := &palettesCmd{root: r.subcommand("palettes"), fs: fs}
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return c, nil
}

// Run lists the built-in palettes, those defined in the config file, and
// the fields of the active one.
func (c *palettesCmd) Run() error {
	for _, name := range palette.Names() {
		fmt.Println(name)
	}
	for name := range c.config.Palettes {
		fmt.Printf("%s (config)\n", name)
	}
	fmt.Printf("\nactive: %s\n", c.activePalette.Name)
	for _, f := range palette.Fields(c.activePalette) {
		fmt.Printf("  %s: %s\n", f.Name, palette.Hex(f.Color))
	}
	return nil
}
