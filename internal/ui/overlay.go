//go:build ebiten

package ui

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Overlay prints the status line over the world. H toggles it.
type Overlay struct {
	src    statsProvider
	hidden bool
	line   string
}

// NewOverlay returns an overlay reading from src, which may be nil.
func NewOverlay(src any) *Overlay {
	o := &Overlay{}
	if p, ok := src.(statsProvider); ok {
		o.src = p
	}
	return o
}

// Update refreshes the status line.
func (o *Overlay) Update(paused bool) {
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		o.hidden = !o.hidden
	}
	if o.src != nil {
		o.line = StatusLine(o.src.Stats(), paused)
	}
}

// Draw prints the status line at the top-left corner.
func (o *Overlay) Draw(screen *ebiten.Image) {
	if o.hidden || o.line == "" {
		return
	}
	ebitenutil.DebugPrint(screen, o.line)
}
