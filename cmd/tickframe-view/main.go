//go:build ebiten

package main

import (
	"errors"
	"flag"
	"log"

	"tickframe/internal/app"
	"tickframe/internal/config"
	"tickframe/internal/engine"
	"tickframe/internal/sim"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	log.SetPrefix("[tickframe-view] ")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	view := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	view.Bind(flag.CommandLine)
	flag.Parse()

	// The window paces ticks; the scheduler steps once per frame.
	world, err := sim.NewWorld(cfg, view.Width, view.Height, engine.Options{Logf: log.Printf})
	if err != nil {
		log.Fatal(err)
	}

	game := app.New(world, view.Scale, view.Panel, cfg.Seed)
	size := world.Size()

	ebiten.SetWindowTitle("tickframe - " + world.Name())
	ebiten.SetTPS(view.TPS)
	ebiten.SetWindowSize(size.W*view.Scale+view.Panel, size.H*view.Scale)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
