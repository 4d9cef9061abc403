package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"time"

	"tickframe/internal/collision"
	"tickframe/internal/config"
	"tickframe/internal/sweep"
)

func main() {
	log.SetPrefix("[tickframe-sweep] ")
	log.SetFlags(0)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	cfg.Bind(flag.CommandLine)
	workers := flag.Int("sweep-workers", runtime.NumCPU(), "number of worlds run in parallel")
	policies := flag.String("policies", "", "comma-separated policies to sweep (default: all registered)")
	merges := flag.String("merge-costs", "1,2,4,8", "comma-separated merge costs")
	divisions := flag.String("divisions", "4,8,16", "comma-separated division thresholds")
	top := flag.Int("top", 5, "number of ranked results to print")
	flag.Parse()

	grid := sweep.Grid{Policies: collision.Names()}
	if *policies != "" {
		grid.Policies = splitList(*policies)
	}
	if grid.MergeCosts, err = config.ParseInts(*merges); err != nil {
		log.Fatalf("merge costs: %v", err)
	}
	if grid.Divisions, err = config.ParseInts(*divisions); err != nil {
		log.Fatalf("divisions: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cases := grid.Cases()
	fmt.Printf("Sweeping %d parameter sets (%d workers, %d ticks)\n", len(cases), *workers, cfg.MaxTicks)
	start := time.Now()
	outs := sweep.Run(ctx, cfg, cases, *workers)
	elapsed := time.Since(start)

	for _, o := range outs {
		if o.Err != nil {
			fmt.Printf("FAILED %s: %v\n", o.Case, o.Err)
		}
	}

	ranked := sweep.Rank(outs)
	fmt.Printf("\nTop %d results (elapsed %s):\n", *top, elapsed.Round(time.Millisecond))
	for i := 0; i < len(ranked) && i < *top; i++ {
		o := ranked[i]
		if o.Err != nil {
			break
		}
		r := o.Result
		fmt.Printf("%2d) entities=%d energy=%d tick=%d reason=%s collisions=%d births=%d annihilated=%d dissipated=%d %s\n",
			i+1, r.Entities, r.Energy, r.LastTick, r.Reason, r.Ledger.Collisions, r.Ledger.Births, r.Ledger.Annihilated, r.Ledger.Dissipated, o.Case)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
