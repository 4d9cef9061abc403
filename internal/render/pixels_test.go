package render

import (
	"image/color"
	"testing"
)

func TestFillPaletteRGBA(t *testing.T) {
	pal := []color.RGBA{{A: 255}, {R: 10, A: 255}, {G: 20, A: 255}}
	cells := []uint8{0, 1, 2, 9}
	buf := make([]byte, 4*len(cells))
	fillPaletteRGBA(buf, cells, pal)

	want := []byte{
		0, 0, 0, 255,
		10, 0, 0, 255,
		0, 20, 0, 255,
		0, 20, 0, 255,
	}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("byte %d = %d, want %d", i, buf[i], want[i])
		}
	}
}

func TestFillPaletteEmptyClears(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	fillPaletteRGBA(buf, []uint8{1, 1}, nil)
	for i, b := range buf {
		if b != 0 {
			t.Fatalf("byte %d not cleared", i)
		}
	}
}

func TestPaletteCoversCellValues(t *testing.T) {
	if len(Palette) < 8 {
		t.Fatalf("palette has %d colours, cells go up to 7", len(Palette))
	}
}
