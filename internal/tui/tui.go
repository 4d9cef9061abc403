// Package tui draws a world in a terminal with tcell.
package tui

import (
	"context"
	"time"

	"tickframe/internal/core"
	"tickframe/internal/render"
	"tickframe/internal/sim"
	"tickframe/internal/ui"

	"github.com/gdamore/tcell/v2"
)

type statsProvider interface {
	Stats() sim.Stats
}

// Viewer renders a world into the top rows of a screen and keeps a status
// line on the last row.
type Viewer struct {
	screen tcell.Screen
	world  core.Sim
	seed   int64
	timer  core.FixedStep

	paused bool
	styles []tcell.Style
}

// New builds a viewer. tps <= 0 steps on every frame.
func New(screen tcell.Screen, world core.Sim, seed int64, tps int) *Viewer {
	v := &Viewer{screen: screen, world: world, seed: seed}
	v.timer.SetTPS(tps)
	for _, c := range render.Palette {
		col := tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
		v.styles = append(v.styles, tcell.StyleDefault.Foreground(col))
	}
	return v
}

func glyph(c uint8) rune {
	switch {
	case c == sim.CellEmpty:
		return ' '
	case c >= sim.CellColliding:
		return '*'
	case c == sim.CellSingle:
		return 'o'
	}
	return rune('0' + c - sim.CellSingle)
}

// Draw paints the current raster and status line.
func (v *Viewer) Draw() {
	v.screen.Clear()
	sw, sh := v.screen.Size()
	size := v.world.Size()
	cells := v.world.Cells()
	rows := min(size.H, sh-1)
	cols := min(size.W, sw)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			c := cells[y*size.W+x]
			if c == sim.CellEmpty {
				continue
			}
			style := v.styles[min(int(c), len(v.styles)-1)]
			v.screen.SetContent(x, y, glyph(c), nil, style)
		}
	}
	if p, ok := v.world.(statsProvider); ok && sh > 0 {
		line := []rune(ui.StatusLine(p.Stats(), v.paused))
		for x := 0; x < sw && x < len(line); x++ {
			v.screen.SetContent(x, sh-1, line[x], nil, tcell.StyleDefault.Reverse(true))
		}
	}
	v.screen.Show()
}

// Handle applies a key or resize event. It reports whether the viewer should
// quit.
func (v *Viewer) Handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		v.screen.Sync()
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return true
		}
		if ev.Key() != tcell.KeyRune {
			return false
		}
		switch ev.Rune() {
		case 'q':
			return true
		case ' ':
			v.paused = !v.paused
		case 'n':
			v.world.Step()
		case 'r':
			v.world.Reset(v.seed)
		case 's':
			v.seed = time.Now().UnixNano()
			v.world.Reset(v.seed)
		}
	}
	return false
}

// Run polls events and steps the world until ctx ends or the user quits.
func (v *Viewer) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	go v.screen.ChannelEvents(events, quit)

	frame := time.NewTicker(time.Second / 30)
	defer frame.Stop()
	v.Draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if ev == nil || v.Handle(ev) {
				return nil
			}
			v.Draw()
		case <-frame.C:
			if !v.paused && v.timer.ShouldStep() {
				v.world.Step()
				v.Draw()
			}
		}
	}
}
