// Command tickframe runs a world headless and exports its snapshots.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tickframe/internal/config"
	"tickframe/internal/engine"
	"tickframe/internal/export"
	"tickframe/internal/sim"
	"tickframe/internal/telemetry"
)

func main() {
	log.SetPrefix("[tickframe] ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Printf("%v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) (err error) {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("tickframe", flag.ContinueOnError)
	cfg.Bind(fs)
	set := fs.String("set", "", "comma-separated key=value overrides applied after flags")
	jsonOut := fs.Bool("json", false, "print the result as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *set != "" {
		kv, err := config.ParseKV(*set)
		if err != nil {
			return err
		}
		if err := cfg.Apply(kv); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	shutdown, err := telemetry.Setup(ctx, "tickframe")
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if serr := shutdown(sctx); serr != nil {
			log.Printf("telemetry shutdown: %v", serr)
		}
	}()

	sinks, err := openSinks(ctx, cfg)
	if err != nil {
		return err
	}
	base := engine.Options{Logf: log.Printf}
	var exporter *export.Exporter
	if len(sinks) > 0 {
		r, rerr := sim.Rules(cfg)
		if rerr == nil {
			exporter, rerr = export.NewExporter(cfg.ExportInterval, r.Offsets, sinks...)
		}
		if rerr != nil {
			closeSinks(sinks)
			return rerr
		}
		defer func() { err = errors.Join(err, exporter.Close()) }()
		meta := export.RunMeta{Name: cfg.Name, Started: time.Now().UTC(), Params: cfg.Parameters()}
		if err := exporter.Begin(ctx, meta); err != nil {
			return err
		}
		base.Observers = append(base.Observers, exporter)
	}

	sched, _, err := sim.Build(cfg, base)
	if err != nil {
		return err
	}
	res, runErr := sched.Run(ctx)
	if exporter != nil && runErr == nil {
		if err := exporter.Final(context.WithoutCancel(ctx), sched.Snapshot(), sched.Ledger()); err != nil {
			return err
		}
	}
	if err := report(stdout, res, *jsonOut); err != nil {
		return err
	}
	return runErr
}

func openSinks(ctx context.Context, cfg config.Config) ([]export.Sink, error) {
	var sinks []export.Sink
	if cfg.ExportJSONL != "" {
		j, err := export.CreateJSONL(cfg.ExportJSONL)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, j)
	}
	if cfg.ExportSQLite != "" {
		st, err := export.OpenStore(ctx, cfg.ExportSQLite)
		if err != nil {
			closeSinks(sinks)
			return nil, err
		}
		sinks = append(sinks, st)
	}
	return sinks, nil
}

func closeSinks(sinks []export.Sink) {
	for _, s := range sinks {
		_ = s.Close()
	}
}

type resultJSON struct {
	Reason      string           `json:"reason"`
	LastTick    int64            `json:"last_tick"`
	Ticks       int64            `json:"ticks"`
	Entities    int              `json:"entities"`
	Energy      int64            `json:"energy"`
	Collisions  int64            `json:"collisions"`
	Births      int64            `json:"births"`
	Annihilated int64            `json:"annihilated"`
	Dissipated  int64            `json:"dissipated"`
	Contained   int64            `json:"contained"`
	Outcomes    map[string]int64 `json:"outcomes"`
	Fault       string           `json:"fault,omitempty"`
}

func report(w io.Writer, res engine.Result, asJSON bool) error {
	l := res.Ledger
	if asJSON {
		out := resultJSON{
			Reason: string(res.Reason), LastTick: res.LastTick, Ticks: res.Ticks,
			Entities: res.Entities, Energy: res.Energy,
			Collisions: l.Collisions, Births: l.Births, Annihilated: l.Annihilated,
			Dissipated: l.Dissipated, Contained: l.Contained,
			Outcomes: make(map[string]int64, len(l.Outcomes)),
		}
		for o, n := range l.Outcomes {
			out.Outcomes[o.String()] = n
		}
		if res.Fault != nil {
			out.Fault = res.Fault.Error()
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	_, err := fmt.Fprintf(w, "reason=%s tick=%d ticks=%d entities=%d energy=%d collisions=%d births=%d annihilated=%d dissipated=%d contained=%d\n",
		res.Reason, res.LastTick, res.Ticks, res.Entities, res.Energy, l.Collisions, l.Births, l.Annihilated, l.Dissipated, l.Contained)
	return err
}
