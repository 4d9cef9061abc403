// Package app hosts the windowed viewer.
package app

import "flag"

// Config holds the viewer's window settings. World settings come from
// internal/config.
type Config struct {
	Width  int
	Height int
	Scale  int
	Panel  int
	TPS    int
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{Width: 128, Height: 96, Scale: 6, Panel: 240, TPS: 10}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.IntVar(&c.Width, "width", c.Width, "raster width in cells")
	fs.IntVar(&c.Height, "height", c.Height, "raster height in cells")
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixel scale multiplier")
	fs.IntVar(&c.Panel, "panel", c.Panel, "side panel width in pixels, 0 hides it")
	fs.IntVar(&c.TPS, "view-tps", c.TPS, "window ticks per second")
}
