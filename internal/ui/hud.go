//go:build ebiten

package ui

import (
	"image/color"
	"strings"

	"tickframe/internal/core"
	"tickframe/internal/sim"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

type parameterProvider interface {
	Parameters() core.ParameterSnapshot
}

type statsProvider interface {
	Stats() sim.Stats
}

// HUD renders the parameter and ledger panel to the right of the world view.
// Tab switches between the two pages.
type HUD struct {
	sim        core.Sim
	width      int
	panel      *ebiten.Image
	lastHeight int
	title      string

	showLedger bool
	params     []string
	ledger     []string
}

// NewHUD constructs a HUD for the provided world and panel width.
func NewHUD(s core.Sim, width int) *HUD {
	return &HUD{sim: s, width: max(width, 0), title: strings.ToUpper(s.Name())}
}

// Update refreshes the cached text from the world.
func (h *HUD) Update() {
	if h == nil || h.width == 0 {
		return
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		h.showLedger = !h.showLedger
	}
	if p, ok := h.sim.(parameterProvider); ok {
		h.params = ParameterLines(p.Parameters())
	}
	if p, ok := h.sim.(statsProvider); ok {
		h.ledger = LedgerLines(p.Stats())
	}
}

// Draw paints the panel at offsetX.
func (h *HUD) Draw(screen *ebiten.Image, offsetX int, scale int) {
	if h == nil || h.width == 0 {
		return
	}
	height := h.sim.Size().H * max(scale, 1)
	if height <= 0 {
		return
	}
	if h.panel == nil || h.lastHeight != height {
		h.panel = ebiten.NewImage(h.width, height)
		h.lastHeight = height
	}
	h.panel.Fill(color.RGBA{R: 16, G: 16, B: 20, A: 255})

	face := basicfont.Face7x13
	y := panelPadding + headerBaseline
	header := "Parameters"
	lines := h.params
	if h.showLedger {
		header, lines = "Ledger", h.ledger
	}
	text.Draw(h.panel, h.title, face, panelPadding, y, color.RGBA{R: 200, G: 200, B: 210, A: 255})
	y += lineHeight
	text.Draw(h.panel, header+" (tab)", face, panelPadding, y, color.RGBA{R: 160, G: 160, B: 170, A: 255})
	y += lineHeight + lineHeight/2
	for _, line := range lines {
		if y > height-panelPadding {
			break
		}
		text.Draw(h.panel, line, face, panelPadding, y, color.RGBA{R: 220, G: 220, B: 230, A: 255})
		y += lineHeight
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(offsetX), 0)
	screen.DrawImage(h.panel, op)
}

const (
	panelPadding   = 12
	lineHeight     = 16
	headerBaseline = 12
)
