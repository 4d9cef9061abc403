package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"tickframe/internal/config"
	"tickframe/internal/engine"
	"tickframe/internal/sim"
	"tickframe/internal/tui"

	"github.com/gdamore/tcell/v2"
)

func main() {
	log.SetPrefix("[tickframe-tui] ")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	cfg.Bind(flag.CommandLine)
	tps := flag.Int("view-tps", 10, "ticks per second, 0 steps every frame")
	flag.Parse()

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatal(err)
	}
	if err := screen.Init(); err != nil {
		log.Fatal(err)
	}
	w, h := screen.Size()

	// Scheduler logs would scribble over the screen.
	world, err := sim.NewWorld(cfg, w, max(h-1, 1), engine.Options{Logf: func(string, ...any) {}})
	if err != nil {
		screen.Fini()
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = tui.New(screen, world, cfg.Seed, *tps).Run(ctx)
	screen.Fini()
	if err != nil {
		log.Fatal(err)
	}
	if ferr := world.Err(); ferr != nil {
		log.Printf("world halted: %v", ferr)
	}
}
