// Package render converts world rasters into pixels.
package render

import "image/color"

// Palette maps cell values to colours: empty, singles by generation and
// colliding cells.
var Palette = []color.RGBA{
	{R: 8, G: 8, B: 12, A: 255},
	{R: 240, G: 240, B: 240, A: 255},
	{R: 120, G: 200, B: 255, A: 255},
	{R: 90, G: 230, B: 140, A: 255},
	{R: 250, G: 220, B: 90, A: 255},
	{R: 250, G: 150, B: 60, A: 255},
	{R: 200, G: 110, B: 220, A: 255},
	{R: 255, G: 60, B: 60, A: 255},
}

// fillPaletteRGBA converts cell values into RGBA pixels using a palette. When
// the palette is empty the buffer is cleared to transparent black. Values past
// the end of the palette use its last colour.
func fillPaletteRGBA(buf []byte, cells []uint8, palette []color.RGBA) {
	if len(palette) == 0 {
		clear(buf[:len(cells)*4])
		return
	}

	last := len(palette) - 1
	for i, c := range cells {
		col := palette[min(int(c), last)]
		base := i * 4
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}
